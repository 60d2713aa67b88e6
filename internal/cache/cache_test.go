package cache_test

import (
	"bytes"
	"testing"

	"spvir/internal/cache"
)

func TestKey_Separation(t *testing.T) {
	mod := []byte("module bytes")
	a := cache.Key(mod, "1.3")
	b := cache.Key(mod, "1.6")
	if a == b {
		t.Error("different targets share a key")
	}
	c := cache.Key([]byte("other bytes"), "1.3")
	if a == c {
		t.Error("different modules share a key")
	}
	if a != cache.Key(mod, "1.3") {
		t.Error("key not deterministic")
	}
}

func TestDiskCache_PutGet(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c, err := cache.Open("spvir-test")
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	key := cache.Key([]byte("m"), "1.3")
	bin := []byte{0x03, 0x02, 0x23, 0x07}
	if err := c.Put(key, bin); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, hit, err := c.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !hit {
		t.Fatal("expected a hit")
	}
	if !bytes.Equal(got, bin) {
		t.Errorf("got %x, want %x", got, bin)
	}
}

func TestDiskCache_Miss(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c, err := cache.Open("spvir-test")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_, hit, err := c.Get(cache.Key([]byte("never stored"), "1.3"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if hit {
		t.Error("hit for an absent entry")
	}
}

func TestDiskCache_DropAll(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c, err := cache.Open("spvir-test")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := cache.Key([]byte("m"), "1.3")
	if err := c.Put(key, []byte{1}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	_, hit, err := c.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if hit {
		t.Error("entry survived DropAll")
	}
}

func TestDiskCache_NilSafe(t *testing.T) {
	var c *cache.DiskCache
	if err := c.Put(cache.Digest{}, nil); err != nil {
		t.Errorf("nil Put: %v", err)
	}
	if _, hit, err := c.Get(cache.Digest{}); err != nil || hit {
		t.Errorf("nil Get: hit=%v err=%v", hit, err)
	}
	if err := c.DropAll(); err != nil {
		t.Errorf("nil DropAll: %v", err)
	}
}
