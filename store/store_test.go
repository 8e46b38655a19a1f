package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/montage-editor/montage"
	"github.com/montage-editor/montage/store"
	"github.com/montage-editor/montage/timeline"
)

func sampleProject(s store.Store, t *testing.T) montage.Project {
	t.Helper()
	p, err := s.Create(context.Background(), "holiday")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	p, track := timeline.AddTrack(p, montage.VideoTrack, timeline.TrackOptions{})
	p, _ = timeline.AddClip(p, track, "beach", 0, 4)
	p, _ = timeline.AddEffectTrack(p, montage.BeatZoomEffect, 1, 2, track)
	return p
}

func TestStores(t *testing.T) {
	for name, s := range map[string]store.Store{
		"mem":  store.NewMemStore(),
		"file": store.FileStore{Dir: t.TempDir()},
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			p := sampleProject(s, t)
			if err := s.Save(ctx, p); err != nil {
				t.Fatalf("save failed: %v", err)
			}
			got, err := s.Load(ctx, p.ID)
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if !reflect.DeepEqual(got, p) {
				t.Fatalf("loaded project differs:\n%+v\n%+v", got, p)
			}
			if _, err := s.Load(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestMemStoreKeepsCopies(t *testing.T) {
	s := store.NewMemStore()
	p := sampleProject(s, t)
	if err := s.Save(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	p.Tracks[0].Name = "changed"
	got, _ := s.Load(context.Background(), p.ID)
	if got.Tracks[0].Name == "changed" {
		t.Fatal("store shares memory with the caller")
	}
	if s.Saves() != 2 {
		t.Fatalf("%d saves, expected 2", s.Saves())
	}
}

func TestFileStoreReadsJSON(t *testing.T) {
	dir := t.TempDir()
	p := sampleProject(store.NewMemStore(), t)
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, p.ID+".yml"), b, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := store.FileStore{Dir: dir}.Load(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Fatal("JSON project did not load unchanged")
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := store.FileStore{Dir: dir}
	p := sampleProject(s, t)
	for i := 0; i < 3; i++ {
		if err := s.Save(context.Background(), p); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != p.ID+".yml" {
		t.Fatalf("unexpected files in store: %v", entries)
	}
}

func TestFileStoreRejectsPaths(t *testing.T) {
	s := store.FileStore{Dir: t.TempDir()}
	for _, id := range []string{"", "../x", "a/b"} {
		if _, err := s.Load(context.Background(), id); err == nil || errors.Is(err, store.ErrNotFound) {
			t.Errorf("id %q: expected an invalid id error, got %v", id, err)
		}
	}
}
