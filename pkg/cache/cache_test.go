package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("miss: hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("svg bytes"), 0); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("get: hit=%v err=%v", hit, err)
	}
	if string(data) != "svg bytes" {
		t.Errorf("data = %q", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted key still present")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("double delete: %v", err)
	}
}

func TestFileCacheExpiration(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned as hit")
	}
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("null cache should never hit")
	}
}

func TestOpenDispatch(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, "off")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*NullCache); !ok {
		t.Errorf("off spec = %T, want *NullCache", c)
	}

	c, err = Open(ctx, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*FileCache); !ok {
		t.Errorf("dir spec = %T, want *FileCache", c)
	}
}

func TestArtifactKey(t *testing.T) {
	a := ArtifactKey([]byte("source"), "svg")
	b := ArtifactKey([]byte("source"), "png")
	if a == b {
		t.Error("formats must key separately")
	}
	if a != ArtifactKey([]byte("source"), "svg") {
		t.Error("key must be deterministic")
	}
	if !strings.HasPrefix(a, "artifact:svg:") {
		t.Errorf("key = %q", a)
	}
	if len(Hash([]byte("x"))) != 64 {
		t.Error("hash should be 64 hex chars")
	}
}
