// Package secrets keeps remote API keys in a per-user file (0600) sealed
// with AES-GCM. Not a replacement for OS keychains but avoids plain-text
// config.
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
	"strings"
)

// ErrNotFound is returned when no key is stored for a provider.
var ErrNotFound = errors.New("secrets: key not found")

const fileName = "keys.json"

type secretFile struct {
	Keys map[string]string `json:"keys"` // provider -> base64(nonce+ciphertext)
}

// Store is a key file inside one directory.
type Store struct {
	dir string
}

// NewStore returns a store under dir. An empty dir means the user config
// directory.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("secrets: %w", err)
		}
		dir = filepath.Join(base, "catswitch")
	}
	return &Store{dir: dir}, nil
}

// Path is the key file location.
func (s *Store) Path() string {
	return filepath.Join(s.dir, fileName)
}

// Put stores key for provider, replacing any previous one.
func (s *Store) Put(provider, key string) error {
	if provider = norm(provider); provider == "" {
		return errors.New("secrets: provider required")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("secrets: key is empty")
	}
	sf, err := s.load()
	if err != nil {
		return err
	}
	ct, err := seal([]byte(key))
	if err != nil {
		return fmt.Errorf("secrets: seal: %w", err)
	}
	sf.Keys[provider] = base64.StdEncoding.EncodeToString(ct)
	return s.save(sf)
}

// Get returns the key stored for provider.
func (s *Store) Get(provider string) (string, error) {
	if provider = norm(provider); provider == "" {
		return "", errors.New("secrets: provider required")
	}
	sf, err := s.load()
	if err != nil {
		return "", err
	}
	enc, ok := sf.Keys[provider]
	if !ok {
		return "", ErrNotFound
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("secrets: decode %s: %w", provider, err)
	}
	pt, err := unseal(raw)
	if err != nil {
		return "", fmt.Errorf("secrets: open %s: %w", provider, err)
	}
	return string(pt), nil
}

// Delete removes the key for provider. Deleting a missing key is not an
// error.
func (s *Store) Delete(provider string) error {
	if provider = norm(provider); provider == "" {
		return errors.New("secrets: provider required")
	}
	sf, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := sf.Keys[provider]; !ok {
		return nil
	}
	delete(sf.Keys, provider)
	return s.save(sf)
}

func (s *Store) load() (secretFile, error) {
	sf := secretFile{Keys: map[string]string{}}
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return sf, nil
		}
		return sf, fmt.Errorf("secrets: read: %w", err)
	}
	if err := json.Unmarshal(data, &sf); err != nil {
		return sf, fmt.Errorf("secrets: parse %s: %w", s.Path(), err)
	}
	if sf.Keys == nil {
		sf.Keys = map[string]string{}
	}
	return sf, nil
}

func (s *Store) save(sf secretFile) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("secrets: mkdir: %w", err)
	}
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("secrets: write: %w", err)
	}
	return os.Rename(tmp, s.Path())
}

func norm(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// masterKey ties the sealed keys to the OS user.
func masterKey() []byte {
	hash := sha256.Sum256([]byte(fmt.Sprintf("catswitch-%s-%s", runtime.GOOS, os.Getenv("USER"))))
	return hash[:]
}

func newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func seal(plain []byte) ([]byte, error) {
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

func unseal(ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}
