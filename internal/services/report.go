package services

import (
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"

	"github.com/pmitros/edxml-tools/internal/changeset"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

var reportOptions = func() ojg.Options {
	opts := ojg.DefaultOptions
	opts.Indent = 2
	opts.Sort = true
	return opts
}()

// buildReport renders the run report. ops are the operations planned
// before the report itself was queued; removals are listed separately so
// an interrupted commit can be finished by hand.
func buildReport(config edxml.CleanConfig, result edxml.RunResult, ops []changeset.Op) []byte {
	var planned, pending []any
	for _, op := range ops {
		entry := map[string]any{"op": string(op.Kind), "path": op.Path}
		switch op.Kind {
		case changeset.KindRename:
			entry["target"] = op.Target
		case changeset.KindWrite:
			entry["phase"] = op.Phase.String()
			entry["bytes"] = int64(op.Size)
		case changeset.KindRemove:
			pending = append(pending, op.Path)
		}
		planned = append(planned, entry)
	}

	doc := map[string]any{
		"run_id":        result.RunID,
		"root_document": config.RootDocument,
		"dry_run":       config.DryRun,
		"nodes":         int64(result.NodeCount),
		"fragments": map[string]any{
			"consumed":  int64(result.FragmentsConsumed),
			"extracted": int64(result.Extracted),
			"orphaned":  stringList(result.Orphans),
		},
		"changes": map[string]any{
			"identifiers_renamed": int64(result.IdentifiersRenamed),
			"assets_renamed":      int64(result.AssetsRenamed),
			"targets_inferred":    int64(result.TargetsInferred),
			"titles_filled":       int64(result.TitlesFilled),
		},
		"duplicate_ids": stringList(result.DuplicateIDs),
		"mapping":       result.MappingPath,
		"operations":    nonNil(planned),
		"deletions":     nonNil(pending),
	}
	return []byte(oj.JSON(doc, &reportOptions) + "\n")
}

func stringList(in []string) []any {
	out := make([]any, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}

func nonNil(in []any) []any {
	if in == nil {
		return []any{}
	}
	return in
}
