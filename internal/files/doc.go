// Package files groups the course-file sub-packages:
//   - filesystem: OS and in-memory file systems behind one interface
//   - scanner: inventory of fragment files and HTML assets with checksums
//   - loader: assembly of course.xml and its fragments into one tree
//
// # Usage
//
//	fsys := filesystem.NewOSFileSystem()
//
//	inv, err := scanner.NewScannerWithFS(checksum.New(), fsys).ScanCourse("./course")
//
//	res, err := loader.NewLoader(fsys, logger).Load(ctx, "./course", "course.xml")
//	orphans := inv.Orphans(res.IsConsumed)
package files
