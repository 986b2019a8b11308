package feed

import (
	"context"
	"encoding/xml"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmitros/edxml-tools/internal/files/filesystem"
	"github.com/pmitros/edxml-tools/internal/logging"
	"github.com/pmitros/edxml-tools/internal/propagate"
	"github.com/pmitros/edxml-tools/internal/xmltree"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

const course = `<course org="MITx" course="6002x" url_name="2013_Spring" display_name="Circuits and Electronics">
  <chapter display_name="Week 1">
    <sequential display_name="Basics">
      <video url_name="intro" display_name="Video" youtube_id_1_0="abc_123"/>
      <video url_name="no_youtube" display_name="Local"/>
      <video url_name="kvl" display_name="KVL" youtube_id_1_0="def-456"/>
    </sequential>
  </chapter>
</course>`

type stubVideos map[string]propagate.VideoInfo

func (s stubVideos) Lookup(_ context.Context, id string) (propagate.VideoInfo, bool, error) {
	info, ok := s[id]
	return info, ok, nil
}

type brokenVideos struct{}

func (brokenVideos) Lookup(context.Context, string) (propagate.VideoInfo, bool, error) {
	return propagate.VideoInfo{}, false, errors.New("cache unreadable")
}

func parse(t *testing.T, doc string) *xmltree.Tree {
	t.Helper()
	tree := xmltree.New()
	root, err := tree.ParseFragment(strings.NewReader(doc), "course.xml")
	require.NoError(t, err)
	tree.SetRoot(root)
	return tree
}

func webm(t *testing.T) Format {
	t.Helper()
	f, err := LookupFormat("webm")
	require.NoError(t, err)
	return f
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestBuild(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/work")
	mfs.AddFile("media/abc_123.webm", strings.Repeat("x", 2048))
	videos := stubVideos{
		"abc_123": {Title: "Welcome", Duration: 225, Description: "Course overview."},
	}
	b := NewBuilder(mfs, videos, logging.NewNullLogger())

	rss, err := b.Build(context.Background(), parse(t, course), Options{
		URLBase:  "https://media.example.org/feeds/",
		Format:   webm(t),
		MediaDir: "media",
		Now:      fixedNow,
	})
	require.NoError(t, err)

	assert.Equal(t, "2.0", rss.Version)
	ch := rss.Channel
	assert.Equal(t, "Videos from MITx : Circuits and Electronics on edX", ch.Title)
	assert.Equal(t, DefaultCourseURL, ch.Link)
	assert.Equal(t, "Sun, 01 Mar 2026 12:00:00 +0000", ch.LastBuildDate)
	require.Len(t, ch.Items, 2)

	// reverse document order
	kvl, intro := ch.Items[0], ch.Items[1]

	assert.Equal(t, "KVL", kvl.Title)
	assert.Equal(t, "kvl", kvl.GUID.Value)
	assert.Equal(t, "https://www.youtube.com/watch?v=def-456", kvl.Link)
	assert.Equal(t, "https://media.example.org/feeds/def-456.webm", kvl.Enclosure.URL)
	assert.Equal(t, int64(0), kvl.Enclosure.Length)
	assert.Contains(t, kvl.Description, "size unknown, unknown length")

	assert.Equal(t, "Welcome", intro.Title, "placeholder titles come from video info")
	assert.Equal(t, int64(2048), intro.Enclosure.Length)
	assert.Equal(t, "video/webm", intro.Enclosure.Type)
	assert.True(t, strings.HasPrefix(intro.Description,
		"Course overview. Circuits and Electronics / Week 1 / Basics / Video."), intro.Description)
	assert.Contains(t, intro.Description, "(2.0 kB, 3:45, WebM Video)")
}

func TestBuild_Errors(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem("/work")
	opts := Options{URLBase: "https://media.example.org/", Now: fixedNow}

	t.Run("invalid youtube id", func(t *testing.T) {
		b := NewBuilder(mfs, nil, logging.NewNullLogger())
		_, err := b.Build(context.Background(),
			parse(t, `<course org="o" course="c" url_name="r"><video url_name="v" youtube_id_1_0="../etc"/></course>`), opts)
		assert.ErrorIs(t, err, ErrInvalidVideoID)
	})

	t.Run("missing course attributes", func(t *testing.T) {
		b := NewBuilder(mfs, nil, logging.NewNullLogger())
		_, err := b.Build(context.Background(), parse(t, `<course org="o"/>`), opts)
		require.Error(t, err)
		assert.ErrorIs(t, err, edxml.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "course, url_name")
	})

	t.Run("missing url base", func(t *testing.T) {
		b := NewBuilder(mfs, nil, logging.NewNullLogger())
		_, err := b.Build(context.Background(), parse(t, course), Options{})
		assert.ErrorIs(t, err, edxml.ErrInvalidConfig)
	})

	t.Run("video source failure", func(t *testing.T) {
		b := NewBuilder(mfs, brokenVideos{}, logging.NewNullLogger())
		_, err := b.Build(context.Background(), parse(t, course), opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache unreadable")
	})
}

func TestBuild_DefaultsWithoutVideoInfo(t *testing.T) {
	b := NewBuilder(filesystem.NewMemoryFileSystem("/work"), nil, logging.NewNullLogger())
	rss, err := b.Build(context.Background(),
		parse(t, `<course org="o" course="c" url_name="r"><video url_name="v" youtube_id_1_0="x1"/></course>`),
		Options{URLBase: "https://h/", Now: fixedNow})
	require.NoError(t, err)

	require.Len(t, rss.Channel.Items, 1)
	item := rss.Channel.Items[0]
	assert.Equal(t, "Video", item.Title)
	assert.Equal(t, "https://h/x1.webm", item.Enclosure.URL)
	assert.Contains(t, rss.Channel.Title, ": c on edX", "course number stands in for a missing display name")
}

func TestEncode(t *testing.T) {
	rss := &RSS{
		Version: "2.0",
		Channel: Channel{
			Title: "T & C",
			Items: []Item{{
				Title:     "One",
				GUID:      GUID{Value: "one"},
				Enclosure: Enclosure{URL: "https://h/a.mp4", Length: 10, Type: "video/mp4"},
			}},
		},
	}
	out, err := rss.Encode()
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, xml.Header+`<rss version="2.0">`))
	assert.Contains(t, s, "<title>T &amp; C</title>")
	assert.Contains(t, s, `<guid isPermaLink="false">one</guid>`)
	assert.Contains(t, s, `<enclosure url="https://h/a.mp4" length="10" type="video/mp4"></enclosure>`)
}

func TestFileName(t *testing.T) {
	c := Course{Org: "MITx", Number: "6002x", Run: "2013_Spring"}
	assert.Equal(t, "MITx_6002x_2013_Spring_m4a.rss", FileName(c, formats["m4a"]))
}

func TestLookupFormat(t *testing.T) {
	for _, name := range []string{"mp4", "webm", "3gp", "m4a"} {
		f, err := LookupFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, f.Name)
		assert.NotEmpty(t, f.MimeType)
	}

	f, err := LookupFormat("")
	require.NoError(t, err)
	assert.Equal(t, DefaultFormat, f.Name)

	_, err = LookupFormat("avi")
	assert.ErrorIs(t, err, edxml.ErrInvalidConfig)
	assert.Equal(t, []string{"3gp", "m4a", "mp4", "webm"}, FormatNames())
}

func TestLocation(t *testing.T) {
	tree := parse(t, course)
	var kvl xmltree.NodeID
	tree.Walk(tree.Root(), func(id xmltree.NodeID) bool {
		if tree.AttrValue(id, edxml.AttrURLName) == "kvl" {
			kvl = id
		}
		return true
	})
	assert.Equal(t, []string{"Circuits and Electronics", "Week 1", "Basics", "KVL"}, Location(tree, kvl))
}
