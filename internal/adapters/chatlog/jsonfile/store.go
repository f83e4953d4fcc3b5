// Package jsonfile keeps the chat log as a single JSON array on disk.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/voxlate/internal/domain"
	"github.com/bnema/voxlate/internal/ports"
)

const (
	DefaultPath     = "chatLogs.json"
	logFileMode     = 0o644
	logDirMode      = 0o755
	tempFilePattern = ".chatlog-*.json.tmp"
)

// Store appends by loading the whole array, appending and rewriting it
// through a temp file and a rename. Appends within the process are
// serialized per path.
type Store struct {
	path string
	mu   *sync.Mutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.Mutex{}
)

var _ ports.ChatLog = (*Store)(nil)

func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve chat log path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	return &Store{path: absPath, mu: lockForPath(absPath)}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Append(ctx context.Context, entry domain.LogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readEntries()
	if err != nil {
		return err
	}
	entries = append(entries, toSchema(entry))

	return s.writeEntries(entries)
}

func (s *Store) List(ctx context.Context) ([]domain.LogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.readEntries()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LogEntry, 0, len(raw))
	for i, item := range raw {
		entry, err := fromSchema(item)
		if err != nil {
			return nil, fmt.Errorf("decode chat log entry %d: %w", i, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (s *Store) readEntries() ([]entrySchema, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []entrySchema{}, nil
		}
		return nil, fmt.Errorf("read chat log: %w", err)
	}
	if len(data) == 0 {
		return []entrySchema{}, nil
	}

	var entries []entrySchema
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode chat log: %w", err)
	}

	return entries, nil
}

func (s *Store) writeEntries(entries []entrySchema) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, logDirMode); err != nil {
		return fmt.Errorf("create chat log directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode chat log: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp chat log: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp chat log: %w", err)
	}

	if err := tempFile.Chmod(logFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp chat log: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp chat log: %w", err)
	}

	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace chat log: %w", err)
	}

	cleanup = false
	return nil
}

func lockForPath(path string) *sync.Mutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.Mutex{}
	pathLockMap[path] = mu
	return mu
}
