package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// fileBackend stores one JSON document per run.
type fileBackend struct {
	dir string
}

func newFileBackend(dir string) (*fileBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history dir: %w", err)
	}
	return &fileBackend{dir: dir}, nil
}

func (b *fileBackend) name() string { return "file" }

func (b *fileBackend) path(id string) string {
	return filepath.Join(b.dir, id+".json")
}

func (b *fileBackend) insert(_ context.Context, run Run) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	// Write then rename so a reader never sees a partial file.
	tmp := b.path(run.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, b.path(run.ID))
}

func (b *fileBackend) load(path string) (Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Run{}, err
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return Run{}, fmt.Errorf("failed to unmarshal %s: %w", filepath.Base(path), err)
	}
	return run, nil
}

func (b *fileBackend) get(_ context.Context, id string) (Run, error) {
	run, err := b.load(b.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return Run{}, ErrRunNotFound
	}
	return run, err
}

func (b *fileBackend) list(ctx context.Context, ticker string, limit int) ([]Run, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, err
	}

	runs := []Run{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		run, err := b.load(filepath.Join(b.dir, entry.Name()))
		if err != nil {
			// Skip corrupt entries
			continue
		}
		if ticker != "" && run.Ticker != ticker {
			continue
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
