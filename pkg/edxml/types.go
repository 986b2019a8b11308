package edxml

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// CleanConfig contains all parameters needed for a clean run.
type CleanConfig struct {
	// SourcePath is the exported course directory containing course.xml
	SourcePath string

	// RootDocument is the root document name relative to SourcePath
	RootDocument string

	// AssetDirectory holds <filename>.html assets, relative to SourcePath
	AssetDirectory string

	// MappingPath is the preferred location of the new -> old identifier map,
	// relative to SourcePath
	MappingPath string

	// ExtractCategories are the tags re-split into fragment files on save
	ExtractCategories []string

	// ExtractXPath overrides ExtractCategories with an explicit selector
	ExtractXPath string

	// DiscussionCategories receive sibling-derived metadata
	DiscussionCategories []string

	// VideoInfoDir is an optional cache of <youtube id>.json video metadata
	VideoInfoDir string

	// ReportPath is an optional run report location, relative to SourcePath
	ReportPath string

	// MetricsFile is an optional Prometheus textfile written after the run
	MetricsFile string

	// DryRun plans every change but writes nothing
	DryRun bool

	// Force bypasses interactive approval of the destructive commit
	Force bool

	// Verbose enables detailed logging
	Verbose bool

	// Timeout is the global timeout for the entire run
	Timeout time.Duration
}

var categoryPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// ApplyDefaults fills unset fields with the conventional export layout.
func (c *CleanConfig) ApplyDefaults() {
	if c.RootDocument == "" {
		c.RootDocument = DefaultRootDocument
	}
	if c.AssetDirectory == "" {
		c.AssetDirectory = DefaultAssetDirectory
	}
	if c.MappingPath == "" {
		c.MappingPath = DefaultMappingPath
	}
	if len(c.ExtractCategories) == 0 && c.ExtractXPath == "" {
		c.ExtractCategories = append([]string(nil), DefaultExtractCategories...)
	}
	if len(c.DiscussionCategories) == 0 {
		c.DiscussionCategories = append([]string(nil), DefaultDiscussionCategories...)
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}

// Validate checks if the CleanConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *CleanConfig) Validate() error {
	var errs []error

	if c.SourcePath == "" {
		errs = append(errs, fmt.Errorf("SourcePath is required: %w", ErrInvalidConfig))
	}

	if c.RootDocument == "" {
		errs = append(errs, fmt.Errorf("RootDocument is required: %w", ErrInvalidConfig))
	}

	if !strings.HasSuffix(c.MappingPath, ".json") {
		errs = append(errs, fmt.Errorf("mapping path %q must end in .json: %w", c.MappingPath, ErrInvalidConfig))
	}

	for _, category := range c.ExtractCategories {
		if !categoryPattern.MatchString(category) {
			errs = append(errs, fmt.Errorf("extract category %q is not a valid tag name: %w", category, ErrInvalidConfig))
		}
	}

	for _, category := range c.DiscussionCategories {
		if !categoryPattern.MatchString(category) {
			errs = append(errs, fmt.Errorf("discussion category %q is not a valid tag name: %w", category, ErrInvalidConfig))
		}
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// RunResult summarizes one clean run.
type RunResult struct {
	RunID string

	// Tree statistics
	NodeCount         int
	FragmentsConsumed int
	Extracted         int

	// Propagation counters
	IdentifiersRenamed int
	AssetsRenamed      int
	TargetsInferred    int
	TitlesFilled       int

	// MappingPath is where the identifier map was (or would be) written;
	// empty when no identifier changed
	MappingPath string

	// Orphans are fragment files no node referenced
	Orphans []string

	// DuplicateIDs are clean url_name values used by more than one node
	DuplicateIDs []string

	// Committed is false for dry runs
	Committed bool

	Duration time.Duration
}

// Cleaner runs the load -> propagate -> serialize -> commit pipeline.
type Cleaner interface {
	Clean(ctx context.Context, config CleanConfig) (RunResult, error)
}
