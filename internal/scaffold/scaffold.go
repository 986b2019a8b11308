// Package scaffold writes starter configuration into a course export.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/pmitros/edxml-tools/internal/files/filesystem"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

//go:embed templates
var templatesFS embed.FS

const configTemplate = "templates/edxml.yaml"

// Scaffolder writes templates into course directories.
type Scaffolder struct {
	fs     filesystem.FileSystem
	logger edxml.Logger
}

// NewScaffolder creates a new Scaffolder.
//
// Panics if fsys or logger is nil.
func NewScaffolder(fsys filesystem.FileSystem, logger edxml.Logger) *Scaffolder {
	if fsys == nil {
		panic("filesystem cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Scaffolder{fs: fsys, logger: logger}
}

// ConfigTemplate returns the starter edxml.yaml for courseName.
func ConfigTemplate(courseName string) ([]byte, error) {
	content, err := templatesFS.ReadFile(configTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", configTemplate, err)
	}
	return []byte(processTemplate(string(content), courseName)), nil
}

// WriteConfig writes edxml.yaml into the course at sourcePath and returns
// its path. An existing file is kept unless overwrite is set.
func (s *Scaffolder) WriteConfig(sourcePath, courseName string, overwrite bool) (string, error) {
	if !filesystem.IsDir(s.fs, sourcePath) {
		return "", fmt.Errorf("course directory %s: %w", sourcePath, fs.ErrNotExist)
	}

	target := path.Join(sourcePath, edxml.ConfigFileName)
	if filesystem.Exists(s.fs, target) && !overwrite {
		return "", fmt.Errorf("%s already exists; use --force to replace it: %w", target, fs.ErrExist)
	}

	content, err := ConfigTemplate(courseName)
	if err != nil {
		return "", err
	}
	s.logger.Verbose("Creating file: %s", target)
	if err := s.fs.WriteFile(target, content); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}
	return target, nil
}

// processTemplate replaces template variables in content.
func processTemplate(content, courseName string) string {
	return strings.ReplaceAll(content, "{{COURSE_NAME}}", courseName)
}
