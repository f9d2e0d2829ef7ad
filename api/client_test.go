package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	sessionFile := filepath.Join(t.TempDir(), "session")
	return NewClient(server.URL, 5*time.Second, sessionFile), sessionFile
}

func writeEnvelope(w http.ResponseWriter, data any) {
	raw, _ := json.Marshal(data)
	json.NewEncoder(w).Encode(map[string]any{"success": true, "data": json.RawMessage(raw)})
}

func TestSendMessageNewConversation(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chat/send", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "hello", req["message"])
		_, hasID := req["conversation_id"]
		require.False(t, hasID, "no conversation_id field for a new conversation")

		writeEnvelope(w, map[string]string{"reply": "hi there", "conversation_id": "64f1c2aa"})
	}))

	reply, err := client.SendMessage(context.Background(), "hello", "")
	require.NoError(t, err)
	require.Equal(t, "hi there", reply.Text)
	require.Equal(t, "64f1c2aa", reply.ConversationID)
}

func TestSendMessageExistingConversation(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "64f1c2aa", req["conversation_id"])

		writeEnvelope(w, map[string]string{"reply": "hi again", "conversation_id": "64f1c2aa"})
	}))

	reply, err := client.SendMessage(context.Background(), "hello again", "64f1c2aa")
	require.NoError(t, err)
	require.Equal(t, "hi again", reply.Text)
	require.Empty(t, reply.ConversationID, "known conversations never trigger an upgrade")
}

func TestSendMessageEmptyReplyFallback(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]string{"reply": "", "conversation_id": "64f1c2aa"})
	}))

	reply, err := client.SendMessage(context.Background(), "hello", "")
	require.NoError(t, err)
	require.Equal(t, "...", reply.Text)
}

func TestFetchHistory(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/chat/history", r.URL.Path)
		writeEnvelope(w, map[string]any{
			"conversations": []map[string]any{
				{
					"id":    "d-2",
					"title": "Recent",
					"messages": []map[string]any{
						{"sender": "user", "text": "question"},
						{"sender": "ai", "text": "answer"},
					},
				},
				{"id": "d-1", "title": "Older", "messages": []map[string]any{}},
			},
		})
	}))

	conversations, err := client.FetchHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	require.Equal(t, "d-2", conversations[0].ID)
	require.Equal(t, "Recent", conversations[0].Title)
	require.Len(t, conversations[0].Messages, 2)
	require.Equal(t, "question", conversations[0].Messages[0].Text)
	require.NotEmpty(t, conversations[0].Messages[0].ID, "message render keys minted locally")
	require.Equal(t, "d-1", conversations[1].ID)
}

func TestDeleteConversation(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		gotPath = r.URL.Path
		writeEnvelope(w, map[string]bool{"deleted": true})
	}))

	require.NoError(t, client.DeleteConversation(context.Background(), "64f1c2aa"))
	require.Equal(t, "/api/chat/64f1c2aa", gotPath)
}

func TestErrorEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "session expired"})
	}))

	_, err := client.FetchHistory(context.Background())
	require.Error(t, err)
	apiErr, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Contains(t, apiErr.Message, "session expired")
	require.False(t, apiErr.NetworkFailure())
}

func TestNetworkFailure(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 500*time.Millisecond, "")

	_, err := client.FetchHistory(context.Background())
	require.Error(t, err)
	apiErr, ok := err.(*Error)
	require.True(t, ok)
	require.True(t, apiErr.NetworkFailure())
}

func TestLoginCapturesSession(t *testing.T) {
	client, sessionFile := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok-123"})
		writeEnvelope(w, map[string]any{"user": map[string]string{"id": "u1", "name": "Asha", "email": "asha@example.com"}})
	}))
	require.False(t, client.HasSession())

	user, err := client.Login(context.Background(), "asha@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, "Asha", user.Name)
	require.True(t, client.HasSession())

	data, err := os.ReadFile(sessionFile)
	require.NoError(t, err)
	require.Equal(t, "tok-123", string(data))
}

func TestSessionLoadedFromFileAndSent(t *testing.T) {
	var gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil {
			gotCookie = c.Value
		}
		writeEnvelope(w, map[string]any{"user": map[string]string{"id": "u1"}})
	}))
	defer server.Close()

	sessionFile := filepath.Join(t.TempDir(), "session")
	require.NoError(t, os.WriteFile(sessionFile, []byte("tok-456\n"), 0o600))

	client := NewClient(server.URL, 5*time.Second, sessionFile)
	require.True(t, client.HasSession())

	_, err := client.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-456", gotCookie)
}

func TestCheckSessionExpiredClearsCookie(t *testing.T) {
	client, sessionFile := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "not authenticated"})
	}))
	require.NoError(t, os.WriteFile(sessionFile, []byte("stale"), 0o600))
	client.session = "stale"

	ok, err := client.CheckSession(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, client.HasSession())
	_, statErr := os.Stat(sessionFile)
	require.True(t, os.IsNotExist(statErr))
}

func TestCheckSessionWithoutCookie(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second, "")
	ok, err := client.CheckSession(context.Background())
	require.NoError(t, err)
	require.False(t, ok, "no round trip without a persisted cookie")
}

func TestUpdateMessageStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/api/messages/m1", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, MessageStatusRead, req["status"])
		writeEnvelope(w, map[string]any{"message": map[string]string{"id": "m1", "status": "read"}})
	}))

	msg, err := client.UpdateMessageStatus(context.Background(), "m1", MessageStatusRead)
	require.NoError(t, err)
	require.Equal(t, MessageStatusRead, msg.Status)
}

func TestJoinWaitlist(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/waitlist", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "asha@example.com", req["email"])
		writeEnvelope(w, map[string]bool{"joined": true})
	}))

	require.NoError(t, client.JoinWaitlist(context.Background(), "asha@example.com"))
}
