package filesystem

import (
	"errors"
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
// This provides compatibility with the fs.FS ecosystem while maintaining
// a stable local type for our abstraction layer.
type FileInfo = fs.FileInfo

// File represents an individual file with its metadata and content accessor
type File interface {
	// Path returns the absolute path to the file
	Path() string

	// RelativePath returns the path relative to the walked directory,
	// always with forward slashes
	RelativePath() string

	// Info returns file metadata
	Info() FileInfo

	// ReadContent returns the file's content
	ReadContent() ([]byte, error)
}

// Directory represents a directory that can be traversed to discover files
type Directory interface {
	// Path returns the absolute path to the directory
	Path() string

	// Walk traverses the directory tree in lexical order, calling the provided
	// function for each file and directory. If the function returns an error,
	// walking stops.
	Walk(fn func(File, error) error) error
}

// FileSystemProvider is the read side of a course directory.
type FileSystemProvider interface {
	// Open opens a directory at the specified path
	Open(path string) (Directory, error)

	// ReadFile reads a specific file at the given path.
	// Missing files report an error matching fs.ErrNotExist.
	ReadFile(path string) ([]byte, error)

	// ReadDir reads the directory entries at the given path, sorted by name.
	ReadDir(path string) ([]FileInfo, error)

	// Stat returns file information for the given path.
	// Missing paths report an error matching fs.ErrNotExist.
	Stat(path string) (FileInfo, error)
}

// FileSystem adds the mutations a commit needs.
type FileSystem interface {
	FileSystemProvider

	// WriteFile replaces the file at path, creating parent directories.
	// The OS implementation writes to a temporary sibling and renames it
	// into place, so readers never observe a partial file.
	WriteFile(path string, data []byte) error

	// Rename moves a file, creating the destination's parent directories.
	Rename(oldPath, newPath string) error

	// Remove deletes a single file.
	Remove(path string) error
}

// Exists reports whether path exists. Errors other than "not found" are
// treated as existing so callers do not overwrite what they cannot see.
func Exists(fsys FileSystemProvider, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

// IsDir reports whether path exists and is a directory.
func IsDir(fsys FileSystemProvider, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && info.IsDir()
}

// IsFile reports whether path exists and is a regular file.
func IsFile(fsys FileSystemProvider, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && !info.IsDir()
}
