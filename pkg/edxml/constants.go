package edxml

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Run completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or extraction selector
	ExitRootMissing     = 11 // course.xml not found
	ExitStructuralError = 12 // Malformed or vanished fragment
	ExitApprovalDenied  = 13 // User denied the destructive commit
	ExitCommitFailed    = 14 // Writing the cleaned course failed midway
)

// Well-known file and directory names of an exported course.
const (
	// DefaultRootDocument is the root document of an exported course.
	DefaultRootDocument = "course.xml"

	// FragmentExtension is the extension of stored fragment files.
	FragmentExtension = ".xml"

	// DefaultAssetDirectory holds the HTML assets referenced by filename.
	DefaultAssetDirectory = "html"

	// AssetExtension is appended to a node's filename attribute.
	AssetExtension = ".html"

	// DefaultMappingPath is where the new -> old identifier map is written.
	// When occupied, urlname_mapping_0.json, urlname_mapping_1.json, ... are tried.
	DefaultMappingPath = "static/urlname_mapping.json"

	// ConfigFileName is the optional per-course configuration file.
	ConfigFileName = "edxml.yaml"
)

// Attribute names with special meaning to the propagation rules.
const (
	AttrURLName          = "url_name"
	AttrDisplayName      = "display_name"
	AttrFilename         = "filename"
	AttrDiscussionTarget = "discussion_target"
	AttrYouTubeID        = "youtube_id_1_0"
)

// DefaultExtractCategories are re-split into fragment files on save.
var DefaultExtractCategories = []string{"problem"}

// DefaultDiscussionCategories receive sibling-derived metadata.
var DefaultDiscussionCategories = []string{"discussion"}

const (
	// DefaultForceApprovalCountdown is the countdown duration before force approval proceeds.
	DefaultForceApprovalCountdown = 5 * time.Second

	// DefaultTimeout bounds a whole run, including the approval prompt.
	DefaultTimeout = 10 * time.Minute

	// DefaultCommitRetries is how often a busy file is retried during commit.
	DefaultCommitRetries = 3
)
