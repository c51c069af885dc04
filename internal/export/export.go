// Package export writes and reads the portable backup document: the full
// syncable state wrapped in a versioned envelope, optionally encrypted
// with a passphrase.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jtroost/packmule/internal/persist"
	"github.com/jtroost/packmule/internal/state"
)

const (
	// CurrentVersion is the envelope version written by Export.
	CurrentVersion = 3
	// MinVersion is the oldest envelope Import still accepts.
	MinVersion = 1
)

var (
	ErrUnsupportedVersion = errors.New("unsupported export version")
	ErrInvalidDocument    = errors.New("invalid export document")
)

// Document is the export envelope. Envelope version N wraps a state
// document at schema version N-1, so older exports go through the same
// migration chain as older on-device slots.
type Document struct {
	Version    int             `json:"version"`
	ExportedAt string          `json:"exportedAt"`
	State      state.Persisted `json:"state"`
}

// Export serializes the state into a version 3 envelope.
func Export(p state.Persisted) ([]byte, error) {
	doc := Document{
		Version:    CurrentVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		State:      p,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return data, nil
}

// Import parses an envelope, upgrades older versions, and validates that
// the document carries a usable list before the caller replaces anything.
func Import(data []byte) (state.Persisted, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return state.Persisted{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Version < MinVersion || doc.Version > CurrentVersion {
		return state.Persisted{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}
	if len(doc.State.Categories) == 0 || len(doc.State.MasterItems) == 0 {
		return state.Persisted{}, fmt.Errorf("%w: missing categories or master items", ErrInvalidDocument)
	}

	p := persist.Migrate(doc.State, doc.Version-1)
	p.Initialized = true
	return p, nil
}

// WriteFile exports to a file. A non-empty passphrase encrypts the
// document; otherwise it is written as plain JSON.
func WriteFile(path string, p state.Persisted, passphrase string) error {
	data, err := Export(p)
	if err != nil {
		return err
	}
	if passphrase != "" {
		if data, err = Encrypt(data, passphrase); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// ReadFile imports from a file written by WriteFile. The passphrase must
// match how the file was written: non-empty for encrypted files, empty
// for plain ones.
func ReadFile(path, passphrase string) (state.Persisted, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return state.Persisted{}, fmt.Errorf("read export: %w", err)
	}
	if passphrase != "" {
		if data, err = Decrypt(data, passphrase); err != nil {
			return state.Persisted{}, err
		}
	}
	return Import(data)
}
