package storage

import (
	"os"
	"testing"
)

func TestBoltStoreMarksAndResetsArticles(t *testing.T) {
	storeRaw, err := openBolt(t.TempDir())
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	seen, err := store.SeenArticle("id1")
	if err != nil || seen {
		t.Fatalf("expected unseen article, seen=%v err=%v", seen, err)
	}

	if err := store.MarkArticle("id1", 2); err != nil {
		t.Fatalf("MarkArticle: %v", err)
	}

	seen, err = store.SeenArticle("id1")
	if err != nil || !seen {
		t.Fatalf("expected article marked as seen, got seen=%v err=%v", seen, err)
	}
	page, ok, err := store.ArticlePage("id1")
	if err != nil || !ok || page != 2 {
		t.Fatalf("ArticlePage = %d, %v, %v", page, ok, err)
	}
	if n, err := store.Count(); err != nil || n != 1 {
		t.Fatalf("Count = %d, %v", n, err)
	}

	if err := store.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	seen, err = store.SeenArticle("id1")
	if err != nil || seen {
		t.Fatalf("expected article forgotten after reset, seen=%v err=%v", seen, err)
	}
	if n, err := store.Count(); err != nil || n != 0 {
		t.Fatalf("Count after reset = %d, %v", n, err)
	}
}

func TestBoltStoreRemovesFileOnClose(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore("bbolt", dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	path := store.(*boltStore).path
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("session file missing: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected session file removed, stat err=%v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if seen, err := store.SeenArticle("x"); err != nil || seen {
		t.Fatalf("closed store should report unseen, got %v %v", seen, err)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "")
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.MarkArticle("x", 1); err != nil {
		t.Fatalf("noop store MarkArticle: %v", err)
	}
	if seen, _ := store.SeenArticle("x"); seen {
		t.Fatalf("noop store should never report seen")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", ""); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
