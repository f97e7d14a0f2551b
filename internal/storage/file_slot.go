package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// FileSlot keeps one value as a JSON file under the state directory. It is
// the single-profile install backend: one logical writer per profile,
// concurrent processes are not coordinated and the last writer wins.
type FileSlot struct {
	mu   sync.Mutex
	path string
}

func NewFileSlot(dir, key string) *FileSlot {
	return &FileSlot{path: filepath.Join(dir, key+".json")}
}

func (s *FileSlot) Load(_ context.Context, dst any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read slot %s: %w", s.path, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		// Corrupt state heals to the caller's default on the next Save.
		log.Printf("slot %s holds corrupt data, ignoring: %v", s.path, err)
		return false, nil
	}
	return true, nil
}

func (s *FileSlot) Save(_ context.Context, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal slot value: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	// Write-then-rename so a crash mid-write never leaves a torn file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write slot %s: %w", s.path, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace slot %s: %w", s.path, err)
	}
	return nil
}

func (s *FileSlot) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove slot %s: %w", s.path, err)
	}
	return nil
}
