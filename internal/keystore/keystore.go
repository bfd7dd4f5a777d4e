// Package keystore persists the remote API credential in a local file.
package keystore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotConfigured is returned by Load when no credential has been saved yet.
var ErrNotConfigured = errors.New("api key not configured")

type Keystore struct {
	path string
}

func New(path string) *Keystore {
	return &Keystore{path: path}
}

// Save writes the credential, creating the data directory if needed.
// The file is owner-readable only.
func (k *Keystore) Save(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("empty api key")
	}
	if err := os.MkdirAll(filepath.Dir(k.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(k.path, []byte(key+"\n"), 0o600)
}

func (k *Keystore) Load() (string, error) {
	b, err := os.ReadFile(k.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotConfigured
		}
		return "", err
	}
	key := strings.TrimSpace(string(b))
	if key == "" {
		return "", ErrNotConfigured
	}
	return key, nil
}

// Mask redacts the middle of a credential for display: first 8 and last 8
// runes are kept. Short keys are fully redacted.
func Mask(key string) string {
	r := []rune(key)
	if len(r) <= 20 {
		return strings.Repeat("*", len(r))
	}
	return string(r[:8]) + "..." + string(r[len(r)-8:])
}
