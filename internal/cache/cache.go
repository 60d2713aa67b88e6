// Package cache stores lowered SPIR-V binaries keyed by module content
// hash. Best effort: a cache failure never fails the build.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Schema version - increment when the payload format changes.
const schemaVersion uint16 = 1

// Digest is a SHA-256 content hash.
type Digest [sha256.Size]byte

// Key derives the cache key for a serialized module and target settings.
func Key(moduleBytes []byte, targetTag string) Digest {
	h := sha256.New()
	h.Write(moduleBytes)
	h.Write([]byte{0})
	h.Write([]byte(targetTag))
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Payload is the cached artifact.
type Payload struct {
	Schema uint16
	Binary []byte
}

// DiskCache stores lowered artifacts under the user cache directory.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Open initializes a disk cache at the standard location for app.
func Open(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "spv", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and writes an artifact to the cache atomically.
func (c *DiskCache) Put(key Digest, binary []byte) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()
	if err := msgpack.NewEncoder(f).Encode(&Payload{Schema: schemaVersion, Binary: binary}); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads an artifact from the cache. A missing entry or a schema
// mismatch is a miss, not an error.
func (c *DiskCache) Get(key Digest) ([]byte, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer func() {
		_ = f.Close()
	}()
	var p Payload
	if err := msgpack.NewDecoder(f).Decode(&p); err != nil {
		return nil, false, err
	}
	if p.Schema != schemaVersion {
		return nil, false, nil
	}
	return p.Binary, true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "spv"))
}
