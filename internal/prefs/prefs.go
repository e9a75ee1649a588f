// Package prefs stores non-sensitive client preferences as JSON under the
// user config dir.
package prefs

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const prefsFile = "prefs.json"

// Prefs never holds credentials.
type Prefs struct {
	LastEmail string `json:"last_email,omitempty"`
}

func prefsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "clubbies")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, prefsFile), nil
}

func Load() (Prefs, error) {
	path, err := prefsPath()
	if err != nil {
		return Prefs{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Prefs{}, nil
		}
		return Prefs{}, err
	}
	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return Prefs{}, err
	}
	return p, nil
}

func Save(p Prefs) error {
	path, err := prefsPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadLastEmail returns the email of the last successful sign-in, or "".
func LoadLastEmail() (string, error) {
	p, err := Load()
	return p.LastEmail, err
}

func SaveLastEmail(email string) error {
	p, err := Load()
	if err != nil {
		p = Prefs{}
	}
	p.LastEmail = strings.TrimSpace(email)
	return Save(p)
}
