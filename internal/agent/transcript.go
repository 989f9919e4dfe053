// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package agent

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Transcript is the persisted form of a session.
type Transcript struct {
	SessionID string    `json:"session_id"`
	AgentID   string    `json:"agent_id,omitempty"`
	ThreadID  string    `json:"thread_id,omitempty"`
	SavedAt   time.Time `json:"saved_at"`
	Messages  []Message `json:"messages"`
}

func (s *Session) Transcript() Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]Message, len(s.history))
	copy(messages, s.history)

	return Transcript{
		SessionID: s.id,
		AgentID:   s.agentID,
		ThreadID:  s.threadID,
		SavedAt:   s.clock.Now().UTC(),
		Messages:  messages,
	}
}

// SaveTranscript writes the session transcript to path as indented JSON.
func (s *Session) SaveTranscript(path string) error {
	data, err := json.MarshalIndent(s.Transcript(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling transcript: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating transcript directory: %w", err)
		}
	}

	lockPath := path + ".lock"
	fl := flock.New(lockPath)

	if err := fl.Lock(); err != nil {
		return fmt.Errorf("locking file %s: %w", lockPath, err)
	}
	defer func() {
		if err := fl.Unlock(); err != nil {
			log.Printf("failed to release file lock: %v", err)
		}
	}()

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}

	return nil
}

// LoadTranscript reads a transcript written by SaveTranscript.
func LoadTranscript(path string) (*Transcript, error) {
	lockPath := path + ".lock"
	fl := flock.New(lockPath)

	if err := fl.RLock(); err != nil {
		return nil, fmt.Errorf("locking file %s: %w", lockPath, err)
	}
	defer func() {
		if err := fl.Unlock(); err != nil {
			log.Printf("failed to release file lock: %v", err)
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}

	var transcript Transcript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, fmt.Errorf("parsing transcript %s: %w", path, err)
	}

	return &transcript, nil
}
