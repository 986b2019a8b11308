package xmltree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmitros/edxml-tools/pkg/edxml"
)

const selectDoc = `<course>
  <chapter url_name="ch">
    <problem url_name="p1"/>
    <html url_name="h1"/>
    <problem/>
    <vertical>
      <problem url_name="p2"><problem url_name="p3"/></problem>
    </vertical>
  </chapter>
</course>`

func urlNames(tr *Tree, ids []NodeID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, tr.AttrValue(id, "url_name"))
	}
	return out
}

func TestSelector_CategorySelector(t *testing.T) {
	tr := New()
	root := parse(t, tr, selectDoc)

	sel, err := CompileSelector(CategorySelector([]string{"problem"}, "url_name"))
	require.NoError(t, err)

	assert.Equal(t, []string{"p1", "p2", "p3"}, urlNames(tr, sel.Select(tr, root)))
}

func TestSelector_UnionInDocumentOrder(t *testing.T) {
	tr := New()
	root := parse(t, tr, selectDoc)

	sel, err := CompileSelector(CategorySelector([]string{"html", "problem"}, "url_name"))
	require.NoError(t, err)

	assert.Equal(t, []string{"p1", "h1", "p2", "p3"}, urlNames(tr, sel.Select(tr, root)))
}

func TestSelector_AttributeValuePredicate(t *testing.T) {
	tr := New()
	root := parse(t, tr, selectDoc)

	sel, err := CompileSelector(`//vertical/problem[@url_name='p2']`)
	require.NoError(t, err)

	assert.Equal(t, []string{"p2"}, urlNames(tr, sel.Select(tr, root)))
}

func TestSelector_AttributeMatchSelectsOwner(t *testing.T) {
	tr := New()
	root := parse(t, tr, selectDoc)

	sel, err := CompileSelector(`//html/@url_name`)
	require.NoError(t, err)

	assert.Equal(t, []string{"h1"}, urlNames(tr, sel.Select(tr, root)))
}

func TestSelector_Subtree(t *testing.T) {
	tr := New()
	root := parse(t, tr, selectDoc)
	sel, err := CompileSelector(`//problem[@url_name]`)
	require.NoError(t, err)

	// locate the vertical and search only beneath it
	var vertical NodeID = NoNode
	tr.Walk(root, func(id NodeID) bool {
		if tr.Tag(id) == "vertical" {
			vertical = id
		}
		return true
	})
	require.NotEqual(t, NoNode, vertical)

	assert.Equal(t, []string{"p2", "p3"}, urlNames(tr, sel.Select(tr, vertical)))
}

func TestCompileSelector_Invalid(t *testing.T) {
	_, err := CompileSelector("//problem[")

	require.Error(t, err)
	assert.True(t, errors.Is(err, edxml.ErrInvalidXPath))
}
