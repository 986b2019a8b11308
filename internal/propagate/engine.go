// Package propagate rewrites course metadata with an ordered list of rules.
//
// Every rule is a full pass over the tree and only acts when its
// precondition holds, so a tree that went through the engine once comes
// out of a second run unchanged.
package propagate

import (
	"context"
	"fmt"
	"sort"

	"github.com/pmitros/edxml-tools/internal/changeset"
	"github.com/pmitros/edxml-tools/internal/slug"
	"github.com/pmitros/edxml-tools/internal/xmltree"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

// State is what rules read and mutate during one run.
type State struct {
	Tree     *xmltree.Tree
	Registry *slug.Registry
	Changes  *changeset.Set
	Logger   edxml.Logger
}

// Rule is one rewrite pass.
type Rule interface {
	// Name identifies the rule in logs and reports.
	Name() string

	// Apply runs the pass and returns how many nodes it changed.
	Apply(ctx context.Context, st *State) (int, error)
}

// RuleResult records what one rule did.
type RuleResult struct {
	Rule    string
	Changed int
}

// Engine runs rules in order.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine running rules in the given order.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the configured rules.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Run applies every rule in order and stops at the first error.
func (e *Engine) Run(ctx context.Context, st *State) ([]RuleResult, error) {
	if st.Tree == nil || st.Registry == nil || st.Logger == nil {
		return nil, fmt.Errorf("propagation state is incomplete")
	}

	results := make([]RuleResult, 0, len(e.rules))
	for _, rule := range e.rules {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		changed, err := rule.Apply(ctx, st)
		if err != nil {
			return results, fmt.Errorf("rule %s: %w", rule.Name(), err)
		}
		st.Logger.Verbose("Rule %s changed %d node(s)", rule.Name(), changed)
		results = append(results, RuleResult{Rule: rule.Name(), Changed: changed})
	}
	return results, nil
}

// Seed registers every url_name in the tree so issued slugs never collide
// with identifiers that already exist.
func Seed(tree *xmltree.Tree, reg *slug.Registry) {
	tree.Walk(tree.Root(), func(id xmltree.NodeID) bool {
		if v, ok := tree.Attr(id, edxml.AttrURLName); ok {
			reg.Observe(v)
		}
		return true
	})
}

// Duplicates returns clean url_name values carried by more than one node,
// sorted. They are reported, never rewritten.
func Duplicates(tree *xmltree.Tree) []string {
	counts := make(map[string]int)
	tree.Walk(tree.Root(), func(id xmltree.NodeID) bool {
		if v, ok := tree.Attr(id, edxml.AttrURLName); ok && !slug.IsMachineGenerated(v) {
			counts[v]++
		}
		return true
	})

	var dups []string
	for v, n := range counts {
		if n > 1 {
			dups = append(dups, v)
		}
	}
	sort.Strings(dups)
	return dups
}

// renameNode gives id a fresh identifier derived from seed and records the
// change.
func renameNode(st *State, id xmltree.NodeID, seed string) string {
	old := st.Tree.AttrValue(id, edxml.AttrURLName)
	issued := st.Registry.Unique(seed)
	st.Registry.Rename(issued, old)
	st.Tree.SetAttr(id, edxml.AttrURLName, issued)
	st.Logger.Verbose("url_name %s -> %s on <%s>", old, issued, st.Tree.Tag(id))
	return issued
}

// Options configures the standard rule set.
type Options struct {
	AssetDirectory       string
	DiscussionCategories []string
	Videos               VideoSource // video-title runs only when set
}

// StandardRules returns the rules of a clean run in execution order. The
// video pass comes first so the titles it fills also name the nodes.
func StandardRules(opts Options) []Rule {
	var rules []Rule
	if opts.Videos != nil {
		rules = append(rules, VideoTitleRule{Source: opts.Videos})
	}
	return append(rules,
		DisplayNameRule{},
		AssetFilenameRule{Directory: opts.AssetDirectory},
		DiscussionRule{Categories: opts.DiscussionCategories},
	)
}
