package filestorage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/registrar/internal/pkg/logger"
)

// LocalStorage saves files to the local filesystem.
type LocalStorage struct {
	basePath string
}

var _ FileStorage = (*LocalStorage)(nil)

// NewLocalStorage creates basePath if needed and returns a storage rooted there.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath}, nil
}

// Save writes data under subPath with a uuid filename
func (ls *LocalStorage) Save(subPath, ext string, data []byte) (string, error) {
	dir, err := ls.FullPath(subPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := uuid.NewString() + ext
	dst := filepath.Join(dir, name)

	if err := os.WriteFile(dst, data, 0o644); err != nil {
		logger.Error().Err(err).Str("path", dst).Msg("Failed to write file")
		_ = os.Remove(dst)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	rel := filepath.ToSlash(filepath.Join(subPath, name))
	logger.Debug().Str("path", rel).Int("bytes", len(data)).Msg("File saved")
	return rel, nil
}

// Delete removes a stored file
func (ls *LocalStorage) Delete(relPath string) error {
	if relPath == "" {
		return nil
	}

	full, err := ls.FullPath(relPath)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", full).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", full).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// FullPath joins relPath to the root, rejecting paths that escape it.
func (ls *LocalStorage) FullPath(relPath string) (string, error) {
	full := filepath.Join(ls.basePath, filepath.FromSlash(relPath))
	root := filepath.Clean(ls.basePath)
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid file path: %s", relPath)
	}
	return full, nil
}
