// Package storage persists backup snapshots as files on the local
// filesystem.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage errors
var (
	ErrPathTraversal    = errors.New("path traversal detected")
	ErrSnapshotNotFound = errors.New("snapshot file not found")
)

const snapshotExt = ".json"

// SnapshotStorage defines the interface for snapshot persistence. Names
// are opaque to callers; Save generates one.
type SnapshotStorage interface {
	Save(data []byte) (string, error)
	Get(name string) ([]byte, error)
	List() ([]SnapshotInfo, error)
	Delete(name string) error
}

// SnapshotInfo describes a stored snapshot file
type SnapshotInfo struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	CreatedAt int64  `json:"created_at"`
}

// localSnapshotStorage implements SnapshotStorage on the local filesystem
type localSnapshotStorage struct {
	basePath string
}

// NewLocalSnapshotStorage creates a snapshot store rooted at basePath
func NewLocalSnapshotStorage(basePath string) (SnapshotStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &localSnapshotStorage{basePath: basePath}, nil
}

// validateName ensures a snapshot name cannot escape the base directory
func (s *localSnapshotStorage) validateName(name string) (string, error) {
	cleanName := filepath.Clean(name)
	if filepath.IsAbs(cleanName) || strings.Contains(cleanName, "..") ||
		strings.ContainsRune(cleanName, filepath.Separator) {
		return "", ErrPathTraversal
	}
	return filepath.Join(s.basePath, cleanName), nil
}

// Save writes snapshot data under a generated timestamped name and
// returns the name.
func (s *localSnapshotStorage) Save(data []byte) (string, error) {
	stamp := time.Now().Format("20060102_150405")
	name := fmt.Sprintf("sms_backup_%s_%s%s", stamp, uuid.New().String()[:8], snapshotExt)

	fullPath := filepath.Join(s.basePath, name)
	tmpPath := fullPath + ".tmp"

	// Write-then-rename so a crashed backup never leaves a readable
	// half-written snapshot behind.
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to finalize snapshot: %w", err)
	}
	return name, nil
}

// Get reads a snapshot by name
func (s *localSnapshotStorage) Get(name string) ([]byte, error) {
	fullPath, err := s.validateName(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

// List returns stored snapshots, newest first
func (s *localSnapshotStorage) List() ([]SnapshotInfo, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	infos := make([]SnapshotInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), snapshotExt) {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, SnapshotInfo{
			Name:      entry.Name(),
			SizeBytes: fi.Size(),
			CreatedAt: fi.ModTime().UnixMilli(),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt > infos[j].CreatedAt
	})
	return infos, nil
}

// Delete removes a snapshot by name
func (s *localSnapshotStorage) Delete(name string) error {
	fullPath, err := s.validateName(name)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return ErrSnapshotNotFound
		}
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
