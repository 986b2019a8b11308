package propagate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmitros/edxml-tools/internal/changeset"
	"github.com/pmitros/edxml-tools/internal/files/filesystem"
	"github.com/pmitros/edxml-tools/internal/logging"
	"github.com/pmitros/edxml-tools/internal/slug"
	"github.com/pmitros/edxml-tools/internal/xmltree"
)

const (
	hashA = "0123456789abcdef0123456789abcdef"
	hashB = "fedcba9876543210fedcba9876543210"
	hashC = "00000000000000000000000000000abc"
)

func newState(t *testing.T, doc string, files map[string]string) (*State, *filesystem.MemoryFileSystem) {
	t.Helper()
	tree := xmltree.New()
	root, err := tree.ParseFragment(strings.NewReader(doc), "course.xml")
	require.NoError(t, err)
	tree.SetRoot(root)

	mfs := filesystem.NewMemoryFileSystem("/course")
	for name, content := range files {
		mfs.AddFile(name, content)
	}

	reg := slug.NewRegistry()
	Seed(tree, reg)
	return &State{
		Tree:     tree,
		Registry: reg,
		Changes:  changeset.New(mfs, "/course"),
		Logger:   logging.NewNullLogger(),
	}, mfs
}

func standard() *Engine {
	return NewEngine(StandardRules(Options{
		AssetDirectory:       "html",
		DiscussionCategories: []string{"discussion"},
	})...)
}

func render(st *State) string {
	return string(st.Tree.Format(st.Tree.Root(), xmltree.FormatOptions{}))
}

func find(st *State, tag string) xmltree.NodeID {
	found := xmltree.NoNode
	st.Tree.Walk(st.Tree.Root(), func(id xmltree.NodeID) bool {
		if found == xmltree.NoNode && st.Tree.Tag(id) == tag {
			found = id
		}
		return found == xmltree.NoNode
	})
	return found
}

func changedBy(results []RuleResult) map[string]int {
	out := make(map[string]int, len(results))
	for _, r := range results {
		out[r.Rule] = r.Changed
	}
	return out
}

func TestEngine_DiscussionInference(t *testing.T) {
	st, _ := newState(t, `<vertical>
  <video url_name="abc123" display_name="Intro"/>
  <discussion url_name="`+hashA+`"/>
</vertical>`, nil)

	results, err := standard().Run(context.Background(), st)
	require.NoError(t, err)

	discussion := find(st, "discussion")
	assert.Equal(t, "abc123_discussion", st.Tree.AttrValue(discussion, "url_name"))
	assert.Equal(t, "Intro", st.Tree.AttrValue(discussion, "discussion_target"))
	assert.Equal(t, map[string]string{"abc123_discussion": hashA}, st.Registry.Mapping())
	assert.Equal(t, 1, changedBy(results)["discussion"])
}

func TestEngine_SecondRunIsNoop(t *testing.T) {
	st, _ := newState(t, `<course>
  <chapter url_name="`+hashA+`" display_name="Week 1">
    <html url_name="`+hashB+`" display_name="Welcome" filename="`+hashB+`"/>
    <discussion url_name="`+hashC+`"/>
  </chapter>
</course>`, map[string]string{"html/" + hashB + ".html": "<p>hi</p>"})

	engine := standard()
	first, err := engine.Run(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"display-name": 2, "asset-filename": 1, "discussion": 1}, changedBy(first))

	want := `<course>
  <chapter url_name="Week_1" display_name="Week 1">
    <html url_name="Welcome" display_name="Welcome" filename="Welcome"/>
    <discussion url_name="Welcome_discussion" discussion_target="Welcome"/>
  </chapter>
</course>
`
	assert.Equal(t, want, render(st))

	second, err := engine.Run(context.Background(), st)
	require.NoError(t, err)
	for _, r := range second {
		assert.Zero(t, r.Changed, r.Rule)
	}
	assert.Equal(t, want, render(st))
}

func TestEngine_StopsAtFailingRule(t *testing.T) {
	st, _ := newState(t, `<course/>`, nil)
	boom := errors.New("boom")

	results, err := NewEngine(DisplayNameRule{}, failingRule{err: boom}, DiscussionRule{}).Run(context.Background(), st)

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "rule failing")
	assert.Len(t, results, 1)
}

func TestEngine_Cancelled(t *testing.T) {
	st, _ := newState(t, `<course/>`, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := standard().Run(ctx, st)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_IncompleteState(t *testing.T) {
	_, err := standard().Run(context.Background(), &State{})
	assert.Error(t, err)
}

func TestStandardRules_Order(t *testing.T) {
	names := func(rules []Rule) []string {
		var out []string
		for _, r := range rules {
			out = append(out, r.Name())
		}
		return out
	}

	assert.Equal(t, []string{"display-name", "asset-filename", "discussion"}, names(StandardRules(Options{})))
	assert.Equal(t,
		[]string{"video-title", "display-name", "asset-filename", "discussion"},
		names(StandardRules(Options{Videos: stubVideos{}})))
}

func TestSeed(t *testing.T) {
	st, _ := newState(t, `<course url_name="2024"><chapter url_name="intro"/><chapter/></course>`, nil)

	assert.True(t, st.Registry.Taken("2024"))
	assert.True(t, st.Registry.Taken("intro"))
	assert.Equal(t, 2, st.Registry.Len())
	assert.Equal(t, "intro_0", st.Registry.Unique("intro"))
}

func TestDuplicates(t *testing.T) {
	st, _ := newState(t, `<course>
  <chapter url_name="intro"/>
  <chapter url_name="intro"/>
  <problem url_name="`+hashA+`"/>
  <problem url_name="`+hashA+`"/>
  <problem url_name="p1"/>
</course>`, nil)

	assert.Equal(t, []string{"intro"}, Duplicates(st.Tree))
}

type failingRule struct{ err error }

func (failingRule) Name() string { return "failing" }

func (r failingRule) Apply(context.Context, *State) (int, error) { return 0, r.err }
