package transport

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"wabridge/pkg/logger"
)

var credsKey = []byte("session:creds")

// CredentialDB is a pebble-backed CredentialStore. The blob is stored
// under a single key; writes are synced so a crash never loses a pairing.
type CredentialDB struct {
	db *pebble.DB
}

// OpenCredentialDB opens (or creates) the credential database at path.
func OpenCredentialDB(path string) (*CredentialDB, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("credstore_open_failed", "path", path, "error", err)
		return nil, fmt.Errorf("open credential db at %s: %w", path, err)
	}
	logger.Info("credstore_opened", "path", path)
	return &CredentialDB{db: db}, nil
}

// Load returns the stored credential blob, or nil when none exists.
func (c *CredentialDB) Load() ([]byte, error) {
	v, closer, err := c.db.Get(credsKey)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer closer.Close()
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Save overwrites the stored credential blob.
func (c *CredentialDB) Save(blob []byte) error {
	return c.db.Set(credsKey, blob, pebble.Sync)
}

// Close closes the underlying database.
func (c *CredentialDB) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// MemoryCredentials is an in-process CredentialStore for tests and for
// deployments that accept re-pairing on every start. The session's
// persistence worker writes while transport startup reads, so access is
// serialized.
type MemoryCredentials struct {
	mu   sync.Mutex
	blob []byte
}

func (m *MemoryCredentials) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blob, nil
}

func (m *MemoryCredentials) Save(blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob = append([]byte(nil), blob...)
	return nil
}
