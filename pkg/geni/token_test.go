package geni

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenRecord_Valid(t *testing.T) {
	cases := []struct {
		name   string
		record *TokenRecord
		want   bool
	}{
		{"nil record", nil, false},
		{"empty token", &TokenRecord{}, false},
		{"no expiry", &TokenRecord{AccessToken: "t"}, true},
		{"future expiry", &TokenRecord{AccessToken: "t", Expiry: time.Now().Add(time.Hour)}, true},
		{"past expiry", &TokenRecord{AccessToken: "t", Expiry: time.Now().Add(-time.Hour)}, false},
		{"within expiry buffer", &TokenRecord{AccessToken: "t", Expiry: time.Now().Add(10 * time.Second)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.record.Valid(); got != tc.want {
				t.Errorf("Valid() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTokenRecord_Token(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	record := &TokenRecord{AccessToken: "abc", TokenType: "Bearer", Expiry: expiry}

	token := record.Token()
	if token.AccessToken != "abc" || token.TokenType != "Bearer" || !token.Expiry.Equal(expiry) {
		t.Errorf("unexpected oauth2 token: %+v", token)
	}
}

func TestMemoryTokenStore_Lifecycle(t *testing.T) {
	store := NewMemoryTokenStore()

	record, err := store.Get()
	if err != nil || record != nil {
		t.Fatalf("empty store: got (%v, %v)", record, err)
	}

	want := newTokenRecord(&oauth2.Token{AccessToken: "tok", TokenType: "Bearer"})
	if err := store.Set(want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	record, err = store.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if record.AccessToken != "tok" {
		t.Errorf("expected stored token, got %+v", record)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	record, _ = store.Get()
	if record != nil {
		t.Error("expected nil after clear")
	}

	// Clearing an empty store is a no-op.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}

func TestFileTokenStore_Lifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens", "token.json")
	store, err := NewFileTokenStore(path)
	if err != nil {
		t.Fatalf("NewFileTokenStore() error = %v", err)
	}

	record, err := store.Get()
	if err != nil || record != nil {
		t.Fatalf("missing file: got (%v, %v)", record, err)
	}

	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	if err := store.Set(&TokenRecord{AccessToken: "persisted", Expiry: expiry, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("token file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file permissions = %o, want 0600", perm)
	}

	// A fresh store instance reads the same file.
	reopened, err := NewFileTokenStore(path)
	if err != nil {
		t.Fatalf("NewFileTokenStore() error = %v", err)
	}
	record, err = reopened.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if record.AccessToken != "persisted" {
		t.Errorf("expected persisted token, got %+v", record)
	}
	if !record.Expiry.Equal(expiry) {
		t.Errorf("expiry round-trip mismatch: %v != %v", record.Expiry, expiry)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected token file removed after clear")
	}
	if err := store.Clear(); err != nil {
		t.Errorf("clearing a missing file should be a no-op, got %v", err)
	}
}

func TestFileTokenStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte("{corrupt"), 0600); err != nil {
		t.Fatal(err)
	}

	store, err := NewFileTokenStore(path)
	if err != nil {
		t.Fatalf("NewFileTokenStore() error = %v", err)
	}

	if _, err := store.Get(); err == nil {
		t.Error("expected error reading corrupt token file")
	}
}
