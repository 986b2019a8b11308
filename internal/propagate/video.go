package propagate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/pmitros/edxml-tools/internal/files/filesystem"
	"github.com/pmitros/edxml-tools/internal/slug"
	"github.com/pmitros/edxml-tools/internal/xmltree"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

// VideoInfo is the cached metadata of one hosted video.
type VideoInfo struct {
	Title       string
	Duration    float64 // seconds
	Description string
}

// DurationString formats the duration the way course titles show it.
func (v VideoInfo) DurationString() string {
	return FormatDuration(v.Duration)
}

// VideoSource looks up video metadata by YouTube ID. ok is false when the
// source has nothing for the ID.
type VideoSource interface {
	Lookup(ctx context.Context, youtubeID string) (info VideoInfo, ok bool, err error)
}

// ValidYouTubeID matches the IDs that may be used in file names and URLs.
var ValidYouTubeID = regexp.MustCompile(`^[0-9A-Za-z_-]*$`)

var (
	titlePath       = jp.MustParseString("$.title")
	durationPath    = jp.MustParseString("$.duration")
	descriptionPath = jp.MustParseString("$.description")
)

// CacheSource reads <dir>/<youtube id>.json documents.
type CacheSource struct {
	fsys filesystem.FileSystemProvider
	dir  string
}

// NewCacheSource creates a source over a directory of cached video
// documents.
func NewCacheSource(fsys filesystem.FileSystemProvider, dir string) *CacheSource {
	if fsys == nil {
		panic("fsys cannot be nil - use filesystem.NewOSFileSystem() for production")
	}
	return &CacheSource{fsys: fsys, dir: dir}
}

// Lookup implements VideoSource.
func (c *CacheSource) Lookup(ctx context.Context, youtubeID string) (VideoInfo, bool, error) {
	if err := ctx.Err(); err != nil {
		return VideoInfo{}, false, err
	}
	if youtubeID == "" || !ValidYouTubeID.MatchString(youtubeID) {
		return VideoInfo{}, false, nil
	}

	file := path.Join(c.dir, youtubeID+".json")
	data, err := c.fsys.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return VideoInfo{}, false, nil
		}
		return VideoInfo{}, false, fmt.Errorf("read video info %s: %w", file, err)
	}

	doc, err := oj.Parse(data)
	if err != nil {
		return VideoInfo{}, false, fmt.Errorf("parse video info %s: %w", file, err)
	}

	info := VideoInfo{
		Title:       firstString(titlePath.Get(doc)),
		Description: firstString(descriptionPath.Get(doc)),
	}
	if found := durationPath.Get(doc); len(found) > 0 {
		switch d := found[0].(type) {
		case int64:
			info.Duration = float64(d)
		case float64:
			info.Duration = d
		}
	}
	if info.Title == "" {
		return VideoInfo{}, false, nil
	}
	return info, true, nil
}

func firstString(found []any) string {
	if len(found) == 0 {
		return ""
	}
	s, _ := found[0].(string)
	return s
}

// FormatDuration renders seconds as h:mm:ss with leading zeros and colons
// removed: 225 -> "3:45", 3723 -> "1:02:03", 0 -> "0".
func FormatDuration(seconds float64) string {
	total := int64(seconds)
	if total < 0 {
		total = 0
	}
	s := fmt.Sprintf("%d:%02d:%02d", total/3600, total/60%60, total%60)
	s = strings.TrimLeft(s, "0:")
	if s == "" {
		return "0"
	}
	return s
}

// VideoTitleRule fills placeholder video titles from a VideoSource.
type VideoTitleRule struct {
	Source VideoSource
	Tag    string // element name of videos, "video" when empty
}

func (VideoTitleRule) Name() string { return "video-title" }

func (r VideoTitleRule) Apply(ctx context.Context, st *State) (int, error) {
	if r.Source == nil {
		return 0, nil
	}
	tag := r.Tag
	if tag == "" {
		tag = "video"
	}

	var targets []xmltree.NodeID
	st.Tree.Walk(st.Tree.Root(), func(id xmltree.NodeID) bool {
		if st.Tree.Tag(id) == tag && placeholderTitle(st.Tree, id) {
			if _, ok := st.Tree.Attr(id, edxml.AttrYouTubeID); ok {
				targets = append(targets, id)
			}
		}
		return true
	})

	changed := 0
	for _, id := range targets {
		youtubeID := st.Tree.AttrValue(id, edxml.AttrYouTubeID)
		info, ok, err := r.Source.Lookup(ctx, youtubeID)
		if err != nil {
			return changed, err
		}
		if !ok {
			st.Logger.Verbose("No video info for %s", youtubeID)
			continue
		}
		title := fmt.Sprintf("%s (%s)", info.Title, info.DurationString())
		st.Tree.SetAttr(id, edxml.AttrDisplayName, title)
		changed++
	}
	return changed, nil
}

func placeholderTitle(t *xmltree.Tree, id xmltree.NodeID) bool {
	display, ok := t.Attr(id, edxml.AttrDisplayName)
	if !ok {
		return true
	}
	return slug.IsMachineGenerated(display) || strings.EqualFold(strings.TrimSpace(display), "video")
}
