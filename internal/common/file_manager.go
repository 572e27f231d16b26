package common

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileReadOptions controls how a file is read.
type FileReadOptions struct {
	// MaxSize limits the accepted file size in bytes. Zero means no limit.
	MaxSize int64
}

// DefaultFileReadOptions returns read options with no size limit.
func DefaultFileReadOptions() FileReadOptions {
	return FileReadOptions{}
}

// FileWriteOptions controls how a file is written.
type FileWriteOptions struct {
	Permissions fs.FileMode
	// CreateDirs creates missing parent directories before writing.
	CreateDirs bool
	// Atomic writes to a temp file in the target directory and renames it
	// into place, so readers never observe a torn file.
	Atomic bool
}

// DefaultFileWriteOptions returns write options suitable for most outputs.
func DefaultFileWriteOptions() FileWriteOptions {
	return FileWriteOptions{
		Permissions: 0644,
		CreateDirs:  true,
	}
}

// FileManager provides high-level file operations with standardized error
// handling and logging.
type FileManager struct {
	logger zerolog.Logger
}

// NewFileManager creates a new FileManager instance
func NewFileManager(logger zerolog.Logger) *FileManager {
	return &FileManager{
		logger: logger.With().Str("component", "FileManager").Logger(),
	}
}

// FileExists checks if a file or directory exists
func (fm *FileManager) FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// EnsureDirectory creates a directory and its parents if they don't exist
func (fm *FileManager) EnsureDirectory(path string, perm fs.FileMode) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return NewValidationError("path", path, "exists but is not a directory")
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return WrapError(err, "failed to check directory: "+path)
	}

	if err := os.MkdirAll(path, perm); err != nil {
		return WrapError(err, "failed to create directory: "+path)
	}

	fm.logger.Debug().Str("path", path).Msg("Created directory")
	return nil
}

// ReadFile reads a file with the given options
func (fm *FileManager) ReadFile(path string, opts FileReadOptions) ([]byte, error) {
	if opts.MaxSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, WrapError(err, "failed to stat file: "+path)
		}
		if info.Size() > opts.MaxSize {
			return nil, NewValidationError("path", path, "file exceeds maximum allowed size")
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapError(err, "failed to read file: "+path)
	}
	return data, nil
}

// WriteFile writes data to a file with the given options
func (fm *FileManager) WriteFile(path string, data []byte, opts FileWriteOptions) error {
	if opts.Permissions == 0 {
		opts.Permissions = 0644
	}

	if opts.CreateDirs {
		if err := fm.EnsureDirectory(filepath.Dir(path), 0755); err != nil {
			return WrapError(err, "failed to create parent directories for: "+path)
		}
	}

	var err error
	if opts.Atomic {
		err = fm.writeFileAtomic(path, data, opts.Permissions)
	} else {
		err = os.WriteFile(path, data, opts.Permissions)
	}
	if err != nil {
		return WrapErrorf(err, "failed to write file: %s", path)
	}

	fm.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("File written successfully")
	return nil
}

// writeFileAtomic writes to a temp file next to the target and renames it
// into place. The temp file is removed on any failure.
func (fm *FileManager) writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		if removeErr := os.Remove(tmpPath); removeErr != nil && !os.IsNotExist(removeErr) {
			fm.logger.Warn().Err(removeErr).Str("path", tmpPath).Msg("Failed to remove temp file")
		}
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
