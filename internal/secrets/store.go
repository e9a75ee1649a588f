// Package secrets keeps the session access token in a per-user file
// (0600) sealed with AES-GCM. It is not a replacement for an OS keychain but
// keeps the token out of plain text.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/jforbes02/Clubbies/internal/session"
)

const fileName = "session.json"

type tokenFile struct {
	Token   string    `json:"token"` // base64(nonce|ciphertext)
	SavedAt time.Time `json:"saved_at"`
}

// TokenFile implements session.TokenStore.
type TokenFile struct {
	path string
	mu   sync.Mutex
}

var _ session.TokenStore = (*TokenFile)(nil)

// NewTokenFile stores the token at path.
func NewTokenFile(path string) *TokenFile {
	return &TokenFile{path: path}
}

// DefaultPath is session.json under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "clubbies", fileName), nil
}

func (f *TokenFile) Path() string { return f.path }

func (f *TokenFile) Load() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", session.ErrNoToken
		}
		return "", fmt.Errorf("read token file: %w", err)
	}
	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return "", fmt.Errorf("decode token file: %w", err)
	}
	if tf.Token == "" {
		return "", session.ErrNoToken
	}
	raw, err := base64.StdEncoding.DecodeString(tf.Token)
	if err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	pt, err := decrypt(raw)
	if err != nil {
		return "", fmt.Errorf("open token: %w", err)
	}
	return string(pt), nil
}

func (f *TokenFile) Save(token string) error {
	if token == "" {
		return f.Clear()
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	ct, err := encrypt([]byte(token))
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenFile{
		Token:   base64.StdEncoding.EncodeToString(ct),
		SavedAt: time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("mkdir token dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// Clear removes the file. A missing file is not an error.
func (f *TokenFile) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func masterKey() []byte {
	base := fmt.Sprintf("clubbies-%s-%s", runtime.GOOS, os.Getenv("USER"))
	hash := sha256.Sum256([]byte(base))
	return hash[:]
}

func newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func encrypt(plain []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	body := ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}
