package scanner

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/pmitros/edxml-tools/internal/checksum"
	"github.com/pmitros/edxml-tools/internal/files/filesystem"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

// skippedDirectories never hold fragments even when they contain XML.
var skippedDirectories = map[string]bool{
	"static":   true,
	"policies": true,
}

// Scanner inventories the fragment and asset files of a course directory.
// Scanner is safe for concurrent use by multiple goroutines as long as
// the provided calculator and fsProvider are also thread-safe.
type Scanner struct {
	calculator checksum.Calculator
	fsProvider filesystem.FileSystemProvider
}

// NewScanner creates a new file scanner with the given checksum calculator.
// Uses OS filesystem by default.
// Panics if calculator is nil.
func NewScanner(calculator checksum.Calculator) *Scanner {
	if calculator == nil {
		panic("calculator cannot be nil")
	}
	return &Scanner{
		calculator: calculator,
		fsProvider: filesystem.NewOSFileSystem(),
	}
}

// NewScannerWithFS creates a new file scanner with a custom filesystem provider.
// This is primarily useful for testing with in-memory filesystems.
// Panics if calculator or fsProvider is nil.
func NewScannerWithFS(calculator checksum.Calculator, fsProvider filesystem.FileSystemProvider) *Scanner {
	if calculator == nil {
		panic("calculator cannot be nil")
	}
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	return &Scanner{
		calculator: calculator,
		fsProvider: fsProvider,
	}
}

// ScanCourse walks sourcePath and inventories every <category>/<name>.xml
// fragment and every <dir>/<name>.html asset one level below it. Files at
// other depths, hidden directories and the static and policies trees are
// ignored.
func (s *Scanner) ScanCourse(sourcePath string) (edxml.Inventory, error) {
	dir, err := s.fsProvider.Open(sourcePath)
	if err != nil {
		return edxml.Inventory{}, fmt.Errorf("failed to open directory: %w", err)
	}

	var inv edxml.Inventory
	err = dir.Walk(func(file filesystem.File, err error) error {
		if err != nil {
			return fmt.Errorf("error walking path: %w", err)
		}
		if file.Info().IsDir() {
			return nil
		}

		relPath := filepath.ToSlash(file.RelativePath())
		category, name, ok := splitFragmentPath(relPath)
		if !ok {
			return nil
		}

		switch path.Ext(name) {
		case edxml.FragmentExtension:
			fragment, err := s.processFragment(file, relPath, category, name)
			if err != nil {
				return fmt.Errorf("failed to process file %s: %w", relPath, err)
			}
			inv.Fragments = append(inv.Fragments, fragment)
		case edxml.AssetExtension:
			inv.Assets = append(inv.Assets, relPath)
		}
		return nil
	})
	if err != nil {
		return edxml.Inventory{}, err
	}

	return inv, nil
}

// splitFragmentPath splits "category/name.ext" and rejects every other
// shape.
func splitFragmentPath(relPath string) (category, name string, ok bool) {
	parts := strings.Split(relPath, "/")
	if len(parts) != 2 {
		return "", "", false
	}
	category, name = parts[0], parts[1]
	if strings.HasPrefix(category, ".") || skippedDirectories[category] || strings.HasPrefix(name, ".") {
		return "", "", false
	}
	return category, name, true
}

func (s *Scanner) processFragment(file filesystem.File, relPath, category, name string) (edxml.FragmentFile, error) {
	content, err := file.ReadContent()
	if err != nil {
		return edxml.FragmentFile{}, fmt.Errorf("failed to read file: %w", err)
	}

	info := file.Info()
	return edxml.FragmentFile{
		Path:        relPath,
		Category:    category,
		URLName:     strings.TrimSuffix(name, edxml.FragmentExtension),
		SizeBytes:   info.Size(),
		Checksum:    s.calculator.CalculateNormalized(content),
		ChecksumRaw: s.calculator.CalculateRaw(content),
		ModifiedAt:  info.ModTime(),
	}, nil
}

// ValidateRoot checks that the root document exists in the course directory.
func (s *Scanner) ValidateRoot(sourcePath, rootDocument string) error {
	rootPath := path.Join(filepath.ToSlash(sourcePath), rootDocument)
	info, err := s.fsProvider.Stat(rootPath)
	if err != nil {
		return fmt.Errorf("%s: %w", rootPath, edxml.ErrRootNotFound)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory: %w", rootPath, edxml.ErrRootNotFound)
	}
	return nil
}

// Verify Scanner implements the interface at compile time
var _ edxml.FragmentScanner = (*Scanner)(nil)
