package feed

import (
	"fmt"
	"sort"

	"github.com/pmitros/edxml-tools/pkg/edxml"
)

// Format describes one media encoding a feed can point at.
type Format struct {
	Name        string
	Extension   string
	MimeType    string
	CodecName   string
	Description string
}

var formats = map[string]Format{
	"mp4": {
		Name:        "mp4",
		Extension:   "mp4",
		MimeType:    "video/mp4",
		CodecName:   "MPEG Video",
		Description: "This RSS feed is for MPEG videos. This is the most common video format and should work with most software.",
	},
	"webm": {
		Name:        "webm",
		Extension:   "webm",
		MimeType:    "video/webm",
		CodecName:   "WebM Video",
		Description: "This RSS feed is using WebM videos. WebM is an advanced video format developed by Google. This is the recommended feed if your software supports it.",
	},
	"3gp": {
		Name:        "3gp",
		Extension:   "3gp",
		MimeType:    "video/3gpp",
		CodecName:   "3GPP Video",
		Description: "This RSS feed is for video files in the 3gpp format, a low-bandwidth format commonly used for video delivered to cell phones.",
	},
	"m4a": {
		Name:        "m4a",
		Extension:   "m4a",
		MimeType:    "audio/mp4a-latm",
		CodecName:   "AAC Audio",
		Description: "This is an audio-only RSS feed. It uses the AAC audio codec.",
	},
}

// DefaultFormat is used when no format is requested.
const DefaultFormat = "webm"

// LookupFormat returns the named format. Unknown names wrap
// edxml.ErrInvalidConfig.
func LookupFormat(name string) (Format, error) {
	if name == "" {
		name = DefaultFormat
	}
	f, ok := formats[name]
	if !ok {
		return Format{}, fmt.Errorf("unknown feed format %q (expected one of %v): %w", name, FormatNames(), edxml.ErrInvalidConfig)
	}
	return f, nil
}

// FormatNames lists the supported format names, sorted.
func FormatNames() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
