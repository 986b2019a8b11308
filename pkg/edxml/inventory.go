package edxml

import (
	"sort"
	"time"
)

// FragmentScanner discovers the stored fragments of a course directory.
// Implementations must be safe for concurrent use by multiple goroutines.
type FragmentScanner interface {
	// ScanCourse walks the course directory and inventories fragment and
	// asset files.
	ScanCourse(sourcePath string) (Inventory, error)

	// ValidateRoot checks that the root document exists and is a file.
	ValidateRoot(sourcePath, rootDocument string) error
}

// FragmentFile is one stored subtree, <category>/<url_name>.xml.
// Paths use forward slashes and are relative to the course directory.
type FragmentFile struct {
	Path     string // "problem/p1.xml"
	Category string // "problem"
	URLName  string // "p1"

	SizeBytes int64

	// Checksums
	Checksum    string // SHA-256 of NORMALIZED content (formatting-independent)
	ChecksumRaw string // SHA-256 of RAW content

	ModifiedAt time.Time
}

// Inventory is the result of scanning a course directory.
type Inventory struct {
	Fragments []FragmentFile
	Assets    []string // <dir>/<name>.html files
}

// Categories returns the number of fragments per category.
func (inv Inventory) Categories() map[string]int {
	out := make(map[string]int)
	for _, f := range inv.Fragments {
		out[f.Category]++
	}
	return out
}

// Orphans returns the fragments for which consumed reports false, sorted.
func (inv Inventory) Orphans(consumed func(path string) bool) []string {
	var out []string
	for _, f := range inv.Fragments {
		if !consumed(f.Path) {
			out = append(out, f.Path)
		}
	}
	sort.Strings(out)
	return out
}

// IdenticalContent groups fragments whose normalized content is the same.
// Only groups of two or more are returned, each sorted, ordered by their
// first path.
func (inv Inventory) IdenticalContent() [][]string {
	groups := make(map[string][]string)
	for _, f := range inv.Fragments {
		groups[f.Checksum] = append(groups[f.Checksum], f.Path)
	}

	var out [][]string
	for _, paths := range groups {
		if len(paths) > 1 {
			sort.Strings(paths)
			out = append(out, paths)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
