package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/montage-editor/montage/store"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()
	projects := &store.FileStore{Dir: t.TempDir()}
	created, err := projects.Create(ctx, "holiday")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	p, saver, err := load(ctx, projects, created.ID)
	if err != nil || p.ID != created.ID {
		t.Fatalf("load by id = %v, %v", p.ID, err)
	}
	if saver == nil {
		t.Fatal("project loaded by id is not autosaved back")
	}
	path := filepath.Join(t.TempDir(), "song.yml")
	if err := os.WriteFile(path, []byte("id: file\nname: song\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, saver, err = load(ctx, projects, path)
	if err != nil || p.Name != "song" || saver != nil {
		t.Fatalf("load by path = %+v, %v, %v", p, saver, err)
	}
	if _, _, err := load(ctx, nil, "missing"); err == nil {
		t.Fatal("missing file without a projects directory loaded")
	}
}
