package cameriere

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Storage keys for the token pair, shared by every TokenStore.
const (
	AccessTokenKey  = "adminToken"
	RefreshTokenKey = "adminRefreshToken"
)

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

func (t TokenPair) LoggedIn() bool {
	return t.Access != "" || t.Refresh != ""
}

// AccessExpiry reads the exp claim of the access token without checking the
// signature. Only for display; the server stays the judge of validity.
func (t TokenPair) AccessExpiry() (time.Time, error) {
	if t.Access == "" {
		return time.Time{}, errors.New("no access token")
	}
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(t.Access, claims)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode access token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, errors.New("access token has no exp claim")
	}
	return exp.Time, nil
}

// TokenStore persists the admin token pair. A missing token is not an error.
type TokenStore interface {
	Tokens(ctx context.Context) (TokenPair, error)
	// Save stores the pair. An empty Refresh keeps the stored one.
	Save(ctx context.Context, tokens TokenPair) error
	Clear(ctx context.Context) error
}

type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens TokenPair
}

var _ TokenStore = (*MemoryTokenStore)(nil)

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (m *MemoryTokenStore) Tokens(context.Context) (TokenPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens, nil
}

func (m *MemoryTokenStore) Save(_ context.Context, tokens TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens.Access = tokens.Access
	if tokens.Refresh != "" {
		m.tokens.Refresh = tokens.Refresh
	}
	return nil
}

func (m *MemoryTokenStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = TokenPair{}
	return nil
}

// FileTokenStore keeps the pair in a small JSON document keyed like the
// browser's local storage.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

var _ TokenStore = (*FileTokenStore)(nil)

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (f *FileTokenStore) Path() string { return f.path }

func (f *FileTokenStore) Tokens(context.Context) (TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

func (f *FileTokenStore) Save(_ context.Context, tokens TokenPair) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.read()
	if err != nil {
		return err
	}
	current.Access = tokens.Access
	if tokens.Refresh != "" {
		current.Refresh = tokens.Refresh
	}
	return f.write(current)
}

func (f *FileTokenStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

func (f *FileTokenStore) read() (TokenPair, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return TokenPair{}, nil
	}
	if err != nil {
		return TokenPair{}, fmt.Errorf("read token file: %w", err)
	}

	stored := map[string]string{}
	if err := json.Unmarshal(data, &stored); err != nil {
		return TokenPair{}, fmt.Errorf("decode token file: %w", err)
	}
	return TokenPair{Access: stored[AccessTokenKey], Refresh: stored[RefreshTokenKey]}, nil
}

func (f *FileTokenStore) write(tokens TokenPair) error {
	stored := map[string]string{}
	if tokens.Access != "" {
		stored[AccessTokenKey] = tokens.Access
	}
	if tokens.Refresh != "" {
		stored[RefreshTokenKey] = tokens.Refresh
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".tokens-*")
	if err != nil {
		return fmt.Errorf("create token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write token file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
