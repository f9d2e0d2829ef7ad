package conversation

import (
	"strings"

	"github.com/google/uuid"
)

// Identity classifies a conversation identifier.
type Identity int

const (
	// Provisional identifiers are minted locally and have no backend-side
	// record; they must never be sent to the backend as a reference.
	Provisional Identity = iota
	// Durable identifiers are issued by the backend and are safe to
	// reference in later requests.
	Durable
)

func (i Identity) String() string {
	if i == Provisional {
		return "provisional"
	}
	return "durable"
}

// Provisional identifiers carry a reserved prefix so that classification is
// purely structural: no lookup, no network round trip.
const provisionalPrefix = "local-"

// MintProvisionalID returns a fresh provisional conversation identifier,
// unique within the process lifetime.
func MintProvisionalID() string {
	return provisionalPrefix + uuid.New().String()[:8]
}

// Classify reports whether an identifier is provisional or durable.
func Classify(id string) Identity {
	if strings.HasPrefix(id, provisionalPrefix) {
		return Provisional
	}
	return Durable
}

// IsDurable reports whether id may be referenced server-side.
func IsDurable(id string) bool {
	return Classify(id) == Durable
}
