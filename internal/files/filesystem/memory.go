package filesystem

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
)

// memoryFile implements File interface for in-memory files
type memoryFile struct {
	absPath string
	relPath string
	info    FileInfo
	fs      billy.Filesystem
}

func (f *memoryFile) Path() string         { return f.absPath }
func (f *memoryFile) RelativePath() string { return f.relPath }
func (f *memoryFile) Info() FileInfo       { return f.info }

func (f *memoryFile) ReadContent() ([]byte, error) {
	return util.ReadFile(f.fs, f.absPath)
}

// memoryDirectory implements Directory interface for in-memory filesystem
type memoryDirectory struct {
	absPath string
	mfs     *MemoryFileSystem
}

func (d *memoryDirectory) Path() string { return d.absPath }

func (d *memoryDirectory) Walk(fn func(File, error) error) error {
	info, err := d.mfs.fs.Stat(d.absPath)
	if err != nil {
		return fn(nil, err)
	}
	return d.walk(d.absPath, info, fn)
}

func (d *memoryDirectory) walk(absPath string, info FileInfo, fn func(File, error) error) error {
	relPath := "."
	if absPath != d.absPath {
		relPath = strings.TrimPrefix(absPath, strings.TrimSuffix(d.absPath, "/")+"/")
	}
	entry := &memoryFile{absPath: absPath, relPath: relPath, info: info, fs: d.mfs.fs}

	// Recover from panics in callback to prevent crashing the entire walk
	var callbackErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				callbackErr = fmt.Errorf("walk callback panicked at %s: %v", absPath, r)
			}
		}()
		callbackErr = fn(entry, nil)
	}()
	if callbackErr != nil || !info.IsDir() {
		return callbackErr
	}

	children, err := d.mfs.ReadDir(absPath)
	if err != nil {
		return fn(nil, err)
	}
	for _, child := range children {
		if err := d.walk(path.Join(absPath, child.Name()), child, fn); err != nil {
			return err
		}
	}
	return nil
}

// MemoryFileSystem implements FileSystem on top of go-billy's memfs.
// Paths may be absolute or relative to the root given at construction.
type MemoryFileSystem struct {
	fs   billy.Filesystem
	root string
}

// NewMemoryFileSystem creates a new in-memory filesystem.
// The root path is normalized to use forward slashes for virtual filesystem consistency.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	root = path.Clean(filepath.ToSlash(root))
	mfs := &MemoryFileSystem{fs: memfs.New(), root: root}
	if err := mfs.fs.MkdirAll(root, 0755); err != nil {
		panic(fmt.Sprintf("memory filesystem: cannot create root %s: %v", root, err))
	}
	return mfs
}

// Root returns the directory relative paths are resolved against.
func (mfs *MemoryFileSystem) Root() string {
	return mfs.root
}

// AddFile adds a file to the in-memory filesystem, creating parent
// directories. It panics on failure; it is meant for test setup.
func (mfs *MemoryFileSystem) AddFile(filePath string, content string) {
	if err := mfs.WriteFile(filePath, []byte(content)); err != nil {
		panic(fmt.Sprintf("memory filesystem: cannot add %s: %v", filePath, err))
	}
}

func (mfs *MemoryFileSystem) resolve(p string) string {
	p = filepath.ToSlash(p)
	if p == "" || p == "." {
		return mfs.root
	}
	if path.IsAbs(p) {
		return path.Clean(p)
	}
	return path.Join(mfs.root, p)
}

// Open implements FileSystemProvider.Open
func (mfs *MemoryFileSystem) Open(openPath string) (Directory, error) {
	absPath := mfs.resolve(openPath)
	info, err := mfs.fs.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("directory not found: %s: %w", openPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", openPath)
	}
	return &memoryDirectory{absPath: absPath, mfs: mfs}, nil
}

// ReadFile implements FileSystemProvider.ReadFile
func (mfs *MemoryFileSystem) ReadFile(filePath string) ([]byte, error) {
	absPath := mfs.resolve(filePath)
	info, err := mfs.fs.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("file not found: %s: %w", filePath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}
	return util.ReadFile(mfs.fs, absPath)
}

// ReadDir implements FileSystemProvider.ReadDir
func (mfs *MemoryFileSystem) ReadDir(dirPath string) ([]FileInfo, error) {
	entries, err := mfs.fs.ReadDir(mfs.resolve(dirPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// Stat implements FileSystemProvider.Stat
func (mfs *MemoryFileSystem) Stat(statPath string) (FileInfo, error) {
	return mfs.fs.Stat(mfs.resolve(statPath))
}

// WriteFile implements FileSystem.WriteFile
func (mfs *MemoryFileSystem) WriteFile(filePath string, data []byte) error {
	return util.WriteFile(mfs.fs, mfs.resolve(filePath), data, 0644)
}

// Rename implements FileSystem.Rename
func (mfs *MemoryFileSystem) Rename(oldPath, newPath string) error {
	return mfs.fs.Rename(mfs.resolve(oldPath), mfs.resolve(newPath))
}

// Remove implements FileSystem.Remove
func (mfs *MemoryFileSystem) Remove(filePath string) error {
	return mfs.fs.Remove(mfs.resolve(filePath))
}
