// Package scanner inventories the stored fragments of an exported course.
//
// The scanner package is responsible for:
//   - Discovering <category>/<url_name>.xml fragment files
//   - Recording size, modification time and checksums per fragment
//   - Listing the HTML assets next to them
//   - Validating the presence of the root document
//
// After a course is loaded, fragments the loader never consumed are
// orphans: files no node references. They are reported, never deleted.
//
// The scanner is designed to be filesystem-agnostic through the use of
// filesystem.FileSystemProvider interface, enabling both production use
// with the OS filesystem and testing with in-memory filesystems.
package scanner
