// Package feed builds an RSS 2.0 podcast of a course's videos from the
// assembled course tree.
package feed

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pmitros/edxml-tools/internal/files/filesystem"
	"github.com/pmitros/edxml-tools/internal/propagate"
	"github.com/pmitros/edxml-tools/internal/xmltree"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

// ErrInvalidVideoID is returned for youtube_id_1_0 values that are not
// safe to splice into URLs and file names.
var ErrInvalidVideoID = errors.New("invalid YouTube id")

// DefaultCourseURL is linked when no course about page is given.
const DefaultCourseURL = "https://www.edx.org/"

const (
	managingEditor = "edX Learning Sciences"
	generator      = "edxml-tools"
	videoTag       = "video"
	watchURL       = "https://www.youtube.com/watch?v="
)

// RSS is the document root.
type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel Channel  `xml:"channel"`
}

// Channel describes the podcast.
type Channel struct {
	Title          string `xml:"title"`
	Link           string `xml:"link"`
	Description    string `xml:"description"`
	LastBuildDate  string `xml:"lastBuildDate"`
	ManagingEditor string `xml:"managingEditor,omitempty"`
	Generator      string `xml:"generator,omitempty"`
	Items          []Item `xml:"item"`
}

// Item is one video.
type Item struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	GUID        GUID      `xml:"guid"`
	Enclosure   Enclosure `xml:"enclosure"`
}

// GUID identifies an item by its url_name, which is not a URL.
type GUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// Enclosure points at the media file.
type Enclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

// Encode renders the feed with an XML declaration and two-space indent.
func (r *RSS) Encode() ([]byte, error) {
	out, err := xml.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode feed: %w", err)
	}
	return []byte(xml.Header + string(out) + "\n"), nil
}

// Course identifies the course a feed is built for, read from the root
// element's attributes.
type Course struct {
	Org    string
	Number string
	Run    string // url_name of the root element
	Name   string
}

// CourseInfo reads org, course and url_name from the root element. They
// name the output file, so all three are required.
func CourseInfo(tree *xmltree.Tree) (Course, error) {
	root := tree.Root()
	if root == xmltree.NoNode {
		return Course{}, fmt.Errorf("empty course tree: %w", edxml.ErrInvalidConfig)
	}
	c := Course{
		Org:    tree.AttrValue(root, "org"),
		Number: tree.AttrValue(root, "course"),
		Run:    tree.AttrValue(root, edxml.AttrURLName),
		Name:   tree.AttrValue(root, edxml.AttrDisplayName),
	}

	var missing []string
	if c.Org == "" {
		missing = append(missing, "org")
	}
	if c.Number == "" {
		missing = append(missing, "course")
	}
	if c.Run == "" {
		missing = append(missing, edxml.AttrURLName)
	}
	if len(missing) > 0 {
		return Course{}, fmt.Errorf("<%s> lacks %s: %w", tree.Tag(root), strings.Join(missing, ", "), edxml.ErrInvalidConfig)
	}
	if c.Name == "" {
		c.Name = c.Number
	}
	return c, nil
}

// FileName returns <org>_<course>_<url_name>_<format>.rss.
func FileName(c Course, f Format) string {
	return fmt.Sprintf("%s_%s_%s_%s.rss", c.Org, c.Number, c.Run, f.Name)
}

// Options configures a feed.
type Options struct {
	URLBase   string // where media files are hosted
	CourseURL string // course about page, DefaultCourseURL when empty
	Format    Format
	MediaDir  string // local copies of the media, for enclosure lengths
	Now       func() time.Time
}

// Builder turns course trees into feeds.
type Builder struct {
	fs     filesystem.FileSystemProvider
	videos propagate.VideoSource
	logger edxml.Logger
}

// NewBuilder creates a feed builder. videos may be nil, in which case
// items carry only what the tree knows.
//
// Panics if fsys or logger is nil.
func NewBuilder(fsys filesystem.FileSystemProvider, videos propagate.VideoSource, logger edxml.Logger) *Builder {
	if fsys == nil {
		panic("filesystem provider cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Builder{fs: fsys, videos: videos, logger: logger}
}

// Build creates one item per video carrying a YouTube id, newest (last
// in the course) first.
func (b *Builder) Build(ctx context.Context, tree *xmltree.Tree, opts Options) (*RSS, error) {
	course, err := CourseInfo(tree)
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(opts.URLBase)
	if err != nil || opts.URLBase == "" {
		return nil, fmt.Errorf("url base %q is not a valid URL: %w", opts.URLBase, edxml.ErrInvalidConfig)
	}
	if opts.CourseURL == "" {
		opts.CourseURL = DefaultCourseURL
	}
	if opts.Format.Name == "" {
		if opts.Format, err = LookupFormat(DefaultFormat); err != nil {
			return nil, err
		}
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	var items []Item
	var walkErr error
	tree.Walk(tree.Root(), func(id xmltree.NodeID) bool {
		if walkErr != nil {
			return false
		}
		if tree.Tag(id) != videoTag {
			return true
		}
		youtubeID, ok := tree.Attr(id, edxml.AttrYouTubeID)
		if !ok {
			return true
		}
		item, err := b.item(ctx, tree, id, youtubeID, base, course, opts)
		if err != nil {
			walkErr = err
			return false
		}
		items = append(items, item)
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}

	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}

	b.logger.Verbose("Feed for %s/%s: %d video(s)", course.Org, course.Number, len(items))
	return &RSS{
		Version: "2.0",
		Channel: Channel{
			Title:          fmt.Sprintf("Videos from %s : %s on edX", course.Org, course.Name),
			Link:           opts.CourseURL,
			Description:    channelDescription(course, opts),
			LastBuildDate:  now().UTC().Format(time.RFC1123Z),
			ManagingEditor: managingEditor,
			Generator:      generator,
			Items:          items,
		},
	}, nil
}

func (b *Builder) item(ctx context.Context, tree *xmltree.Tree, id xmltree.NodeID, youtubeID string, base *url.URL, course Course, opts Options) (Item, error) {
	urlName := tree.AttrValue(id, edxml.AttrURLName)
	if youtubeID == "" || !propagate.ValidYouTubeID.MatchString(youtubeID) {
		return Item{}, fmt.Errorf("video %s: %q: %w", urlName, youtubeID, ErrInvalidVideoID)
	}

	var info propagate.VideoInfo
	var known bool
	if b.videos != nil {
		var err error
		info, known, err = b.videos.Lookup(ctx, youtubeID)
		if err != nil {
			return Item{}, fmt.Errorf("video %s: %w", urlName, err)
		}
	}

	title := tree.AttrValue(id, edxml.AttrDisplayName)
	if (title == "" || strings.EqualFold(title, videoTag)) && known {
		title = info.Title
	}
	if title == "" {
		title = "Video"
	}

	media := youtubeID + "." + opts.Format.Extension
	length, size := b.mediaSize(media, opts.MediaDir)
	duration := "unknown length"
	if known {
		duration = info.DurationString()
	}

	var desc strings.Builder
	if known && info.Description != "" {
		desc.WriteString(strings.TrimSpace(info.Description))
		desc.WriteByte(' ')
	}
	fmt.Fprintf(&desc, "%s. This is a podcast of the videos from %s. The full course is available free-of-charge at %s. (%s, %s, %s)",
		strings.Join(Location(tree, id), " / "), course.Name, opts.CourseURL, size, duration, opts.Format.CodecName)

	return Item{
		Title:       title,
		Link:        watchURL + youtubeID,
		Description: desc.String(),
		GUID:        GUID{Value: urlName},
		Enclosure: Enclosure{
			URL:    base.ResolveReference(&url.URL{Path: media}).String(),
			Length: length,
			Type:   opts.Format.MimeType,
		},
	}, nil
}

// mediaSize returns the byte length of the local media file and its
// human-readable form. Missing files have length 0.
func (b *Builder) mediaSize(name, dir string) (int64, string) {
	if dir == "" {
		return 0, "size unknown"
	}
	info, err := b.fs.Stat(path.Join(dir, name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			b.logger.Warn("Cannot stat %s: %v", name, err)
		}
		return 0, "size unknown"
	}
	return info.Size(), humanize.Bytes(uint64(info.Size()))
}

// Location returns the display names from the root down to id, skipping
// nodes without one.
func Location(tree *xmltree.Tree, id xmltree.NodeID) []string {
	var names []string
	for _, n := range append(tree.Ancestors(id), id) {
		if name, ok := tree.Attr(n, edxml.AttrDisplayName); ok && name != "" {
			names = append(names, name)
		}
	}
	return names
}

func channelDescription(c Course, opts Options) string {
	return fmt.Sprintf("A podcast of the videos from %s, a course from %s on edX. "+
		"The full course, including assessments, is available free-of-charge at %s. %s "+
		"Some videos may be difficult to follow without the integrated assessments, simulations or other interactions of the full course.",
		c.Name, c.Org, opts.CourseURL, opts.Format.Description)
}
