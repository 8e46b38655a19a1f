package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/montage-editor/montage"
	"github.com/montage-editor/montage/timeline"
)

// FileStore keeps every project in Dir/<id>.yml. Files written by hand may
// also be JSON; both are read.
type FileStore struct {
	Dir string
}

func (s FileStore) Create(ctx context.Context, name string) (montage.Project, error) {
	p := timeline.Recompute(montage.NewProject(name))
	if err := s.Save(ctx, p); err != nil {
		return montage.Project{}, err
	}
	return p, nil
}

func (s FileStore) Load(ctx context.Context, id string) (montage.Project, error) {
	if err := ctx.Err(); err != nil {
		return montage.Project{}, err
	}
	path, err := s.path(id)
	if err != nil {
		return montage.Project{}, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return montage.Project{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return montage.Project{}, fmt.Errorf("cannot read project %s: %w", id, err)
	}
	return Decode(b)
}

// Save writes the project to a temporary file first and renames it over the
// old one, so a crash never leaves a truncated project behind.
func (s FileStore) Save(ctx context.Context, p montage.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(p.ID)
	if err != nil {
		return err
	}
	contents, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("cannot marshal project %s: %w", p.ID, err)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("cannot create project directory: %w", err)
	}
	f, err := os.CreateTemp(s.Dir, "."+p.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("cannot create temporary file: %w", err)
	}
	defer os.Remove(f.Name()) // no-op after a successful rename
	if _, err := f.Write(contents); err != nil {
		f.Close()
		return fmt.Errorf("cannot write project %s: %w", p.ID, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cannot write project %s: %w", p.ID, err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("cannot replace project %s: %w", p.ID, err)
	}
	return nil
}

func (s FileStore) path(id string) (string, error) {
	name := id + ".yml"
	if id == "" || !filepath.IsLocal(name) || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid project id %q", id)
	}
	return filepath.Join(s.Dir, name), nil
}

// Decode parses a project file, trying JSON first and then YAML.
func Decode(b []byte) (montage.Project, error) {
	var p montage.Project
	if errJSON := json.Unmarshal(b, &p); errJSON != nil {
		p = montage.Project{}
		if errYaml := yaml.Unmarshal(b, &p); errYaml != nil {
			return montage.Project{}, fmt.Errorf("cannot unmarshal project: %v / %v", errYaml, errJSON)
		}
	}
	return p, nil
}

// ReadFile reads a project file from an arbitrary path.
func ReadFile(path string) (montage.Project, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return montage.Project{}, fmt.Errorf("cannot read project file: %w", err)
	}
	return Decode(b)
}
