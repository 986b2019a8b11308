// Package mapping writes the new -> old identifier map of a run so later
// tooling can relate renamed nodes to their original identifiers.
package mapping

import (
	"fmt"
	"path"
	"strings"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"

	"github.com/pmitros/edxml-tools/internal/changeset"
)

var jsonOptions = func() ojg.Options {
	opts := ojg.DefaultOptions
	opts.Indent = 2
	opts.Sort = true
	return opts
}()

// Encode renders m as a JSON object with sorted keys and two-space indent.
func Encode(m map[string]string) []byte {
	obj := make(map[string]any, len(m))
	for k, v := range m {
		obj[k] = v
	}
	return []byte(oj.JSON(obj, &jsonOptions) + "\n")
}

// Decode parses a mapping artifact. Non-string values are rejected.
func Decode(data []byte) (map[string]string, error) {
	doc, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid mapping: %w", err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid mapping: expected an object, got %T", doc)
	}
	out := make(map[string]string, len(obj))
	for k, v := range obj {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("invalid mapping: value of %q is %T", k, v)
		}
		out[k] = s
	}
	return out, nil
}

// ChoosePath returns preferred when it is free, otherwise the first free
// <stem>_<i><ext> for i = 0, 1, ...
func ChoosePath(preferred string, exists func(string) bool) string {
	if !exists(preferred) {
		return preferred
	}
	ext := path.Ext(preferred)
	stem := strings.TrimSuffix(preferred, ext)
	for i := 0; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if !exists(candidate) {
			return candidate
		}
	}
}

// Plan queues m into changes at the first free path and returns it. An
// empty mapping is not written and yields "".
func Plan(changes *changeset.Set, preferred string, m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	target := ChoosePath(preferred, changes.Exists)
	changes.Write(changeset.PhaseMapping, target, Encode(m))
	return target
}

// Artifacts lists the mapping files already present, in the order they
// were written.
func Artifacts(preferred string, exists func(string) bool) []string {
	var found []string
	if exists(preferred) {
		found = append(found, preferred)
	}
	ext := path.Ext(preferred)
	stem := strings.TrimSuffix(preferred, ext)
	for i := 0; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if !exists(candidate) {
			break
		}
		found = append(found, candidate)
	}
	return found
}
