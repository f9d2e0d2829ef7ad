package configuration

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/nextunitech/madhav/internal/file"
)

var defaultConfig = Config{
	BackendURL:     "http://localhost:8000",
	RequestTimeout: 60,
	SessionFile:    "~/.config/madhav/session",

	Chat: &ChatConfig{
		RenderMarkdown: true,
	},
}

// Config holds configuration for the madhav tool.
type Config struct {
	// Base URL of the NextUnitech backend.
	BackendURL string `json:"backend_url"`
	// Timeout applied to backend calls, in seconds.
	RequestTimeout int `json:"request_timeout"`
	// Path of the file holding the session cookie.
	SessionFile string `json:"session_file"`

	Chat *ChatConfig `json:"chat"`
}

// ChatConfig holds configuration for madhav chat.
type ChatConfig struct {
	// Render assistant replies as markdown.
	RenderMarkdown bool `json:"render_markdown"`
}

// Parse a configuration file.
func Parse(path string) (*Config, error) {
	path, err := file.ExpandPath(path)
	if err != nil {
		return nil, errors.Wrap(err, "expanding path")
	}

	if err := initializeIfNotPresent(path); err != nil {
		return nil, errors.Wrap(err, "initializing configuration")
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	config := &Config{}
	if err = json.Unmarshal(bytes, config); err != nil {
		return nil, errors.Wrap(err, "unmarshaling into config")
	}
	if config.Chat == nil {
		config.Chat = defaultConfig.Chat
	}

	expandedSessionFilePath, err := file.ExpandPath(config.SessionFile)
	if err != nil {
		return nil, errors.Wrap(err, "expanding session file path")
	}
	config.SessionFile = expandedSessionFilePath
	return config, nil
}

// save a configuration file.
func (c *Config) save(path string) error {
	bytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	err = os.WriteFile(path, bytes, 0644)
	if err != nil {
		return errors.Wrap(err, "writing file")
	}

	return nil
}

// initializeIfNotPresent initializes a config if it does not exist.
func initializeIfNotPresent(path string) error {
	exists, err := file.Exists(path)
	if err != nil {
		return errors.Wrap(err, "checking config presence")
	}
	if exists {
		return nil
	}

	// Create the directories.
	dir, _ := filepath.Split(path)
	if err := file.CreateDirectoryIfNotExist(dir); err != nil {
		return errors.Wrap(err, "creating folders")
	}

	if err := defaultConfig.save(path); err != nil {
		return errors.Wrap(err, "saving default config")
	}
	return nil
}
