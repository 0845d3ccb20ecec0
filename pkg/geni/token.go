package geni

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// tokenExpiryBuffer is the margin added when checking token validity.
// This accounts for clock skew and long-running operations.
const tokenExpiryBuffer = 60 * time.Second

// TokenRecord is a stored access token with metadata.
type TokenRecord struct {
	// AccessToken is the bearer token used for authorization.
	AccessToken string `json:"access_token"`

	// TokenType is typically "Bearer".
	TokenType string `json:"token_type,omitempty"`

	// Expiry is when the access token expires. Zero means no expiry.
	Expiry time.Time `json:"expiry,omitempty"`

	// Raw holds any extra fields returned by the token endpoint.
	Raw map[string]any `json:"raw,omitempty"`

	// CreatedAt is when the token was stored.
	CreatedAt time.Time `json:"created_at"`
}

// Valid reports whether the token exists and has not expired, with a safety
// margin.
func (r *TokenRecord) Valid() bool {
	if r == nil || r.AccessToken == "" {
		return false
	}
	if r.Expiry.IsZero() {
		return true
	}
	return time.Now().Add(tokenExpiryBuffer).Before(r.Expiry)
}

// Token converts the record to an oauth2.Token.
func (r *TokenRecord) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: r.AccessToken,
		TokenType:   r.TokenType,
		Expiry:      r.Expiry,
	}
}

func newTokenRecord(token *oauth2.Token) *TokenRecord {
	return &TokenRecord{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		Expiry:      token.Expiry,
		CreatedAt:   time.Now(),
	}
}

// TokenStore persists the SDK's single token record. Implementations must be
// safe for concurrent use.
type TokenStore interface {
	// Get returns the stored record, or nil when none exists.
	Get() (*TokenRecord, error)

	// Set stores the record, replacing any previous one.
	Set(record *TokenRecord) error

	// Clear removes the stored record. Clearing an empty store is a no-op.
	Clear() error
}

// memoryTokenStore keeps the token in process memory only.
type memoryTokenStore struct {
	mu     sync.RWMutex
	record *TokenRecord
}

// NewMemoryTokenStore creates an in-memory token store. Tokens are lost when
// the process exits.
func NewMemoryTokenStore() TokenStore {
	return &memoryTokenStore{}
}

func (s *memoryTokenStore) Get() (*TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record, nil
}

func (s *memoryTokenStore) Set(record *TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = record
	return nil
}

func (s *memoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = nil
	return nil
}

// fileTokenStore persists the token as a JSON file.
//
// SECURITY: the file is created with 0600 permissions, its directory with
// 0700, and token values are never logged.
type fileTokenStore struct {
	mu   sync.Mutex
	path string
}

// NewFileTokenStore creates a token store backed by a JSON file at path.
// The parent directory is created if needed.
func NewFileTokenStore(path string) (TokenStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create token storage directory: %w", err)
	}
	return &fileTokenStore{path: path}, nil
}

func (s *fileTokenStore) Get() (*TokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var record TokenRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &record, nil
}

func (s *fileTokenStore) Set(record *TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		slog.Warn("token persistence failed",
			"path", s.path,
			"error", err.Error(),
		)
		return fmt.Errorf("failed to write token file: %w", err)
	}

	slog.Info("token stored",
		"path", s.path,
		"expiry", record.Expiry.Format(time.RFC3339),
	)
	return nil
}

func (s *fileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err == nil {
		slog.Info("token deleted", "path", s.path)
	}
	return err
}
