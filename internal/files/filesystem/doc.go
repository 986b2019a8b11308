// Package filesystem provides filesystem abstraction interfaces and implementations.
//
// This package defines interfaces for file and directory operations, enabling
// testability through in-memory implementations while maintaining compatibility
// with the OS filesystem.
//
// Key interfaces:
//   - FileSystemProvider: Read access used by the loader and scanner
//   - FileSystem: Adds WriteFile, Rename and Remove for the commit step
//   - Directory: Represents a directory that can be traversed
//   - File: Represents an individual file with metadata and content
//
// Implementations:
//   - OSFileSystem: Production implementation using the OS filesystem,
//     with atomic replacement of written files
//   - MemoryFileSystem: In-memory implementation backed by go-billy's memfs
package filesystem
