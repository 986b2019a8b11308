package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pmitros/edxml-tools/internal/changeset"
	"github.com/pmitros/edxml-tools/internal/files/filesystem"
	"github.com/pmitros/edxml-tools/internal/files/loader"
	"github.com/pmitros/edxml-tools/internal/mapping"
	"github.com/pmitros/edxml-tools/internal/metrics"
	"github.com/pmitros/edxml-tools/internal/propagate"
	"github.com/pmitros/edxml-tools/internal/retry"
	"github.com/pmitros/edxml-tools/internal/serializer"
	"github.com/pmitros/edxml-tools/internal/slug"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

// textfileWriter is implemented by recorders that can persist their
// samples for a node_exporter textfile collector.
type textfileWriter interface {
	WriteTextfile(path string) error
}

// CleanService implements the Cleaner interface.
// Thread-Safety: NOT safe for concurrent Clean() calls on the same instance.
// Create separate instances for concurrent runs.
type CleanService struct {
	fs       filesystem.FileSystem
	scanner  edxml.FragmentScanner
	approver edxml.Approver
	logger   edxml.Logger
	recorder metrics.Recorder
	now      func() time.Time
}

var _ edxml.Cleaner = (*CleanService)(nil)

// NewCleanService creates a new CleanService with all dependencies injected.
// A nil recorder disables metrics.
//
// Panics on nil dependencies: these are wiring mistakes that should fail at
// startup rather than halfway through a run.
func NewCleanService(
	fsys filesystem.FileSystem,
	scanner edxml.FragmentScanner,
	approver edxml.Approver,
	logger edxml.Logger,
	recorder metrics.Recorder,
) *CleanService {
	if fsys == nil {
		panic("filesystem cannot be nil")
	}
	if scanner == nil {
		panic("scanner cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &CleanService{
		fs:       fsys,
		scanner:  scanner,
		approver: approver,
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
	}
}

// Clean executes one load -> propagate -> serialize -> commit pass over the
// course directory in config.SourcePath.
func (s *CleanService) Clean(ctx context.Context, config edxml.CleanConfig) (edxml.RunResult, error) {
	started := s.now()
	result := edxml.RunResult{RunID: uuid.NewString()}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return result, fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	s.logger.Verbose("Run %s: cleaning %s", result.RunID, config.SourcePath)

	outcome, err := s.run(ctx, config, &result)
	if err != nil {
		outcome = metrics.OutcomeFailed
		if errors.Is(err, edxml.ErrApprovalDenied) {
			outcome = metrics.OutcomeDenied
		}
	}

	result.Duration = s.now().Sub(started)
	s.recorder.ObserveRunDuration(result.Duration)
	s.recorder.IncRunOutcome(outcome)
	if werr := s.writeMetrics(config.MetricsFile); werr != nil {
		s.logger.Warn("Failed to write metrics file %s: %v", config.MetricsFile, werr)
	}

	if err != nil {
		return result, err
	}
	s.logger.Verbose("Run %s finished in %s (%s)", result.RunID, result.Duration.Round(time.Millisecond), outcome)
	return result, nil
}

func (s *CleanService) run(ctx context.Context, config edxml.CleanConfig, result *edxml.RunResult) (metrics.OutcomeLabel, error) {
	base := config.SourcePath

	if err := s.scanner.ValidateRoot(base, config.RootDocument); err != nil {
		return "", err
	}
	inventory, err := s.scanner.ScanCourse(base)
	if err != nil {
		return "", fmt.Errorf("failed to scan course: %w", err)
	}

	// Load
	stage := s.now()
	res, err := loader.NewLoader(s.fs, s.logger).Load(ctx, base, config.RootDocument)
	if err != nil {
		return "", err
	}
	s.recorder.ObserveStageDuration("load", s.now().Sub(stage))

	result.NodeCount = res.Tree.Count()
	result.FragmentsConsumed = len(res.Consumed)
	result.Orphans = inventory.Orphans(res.IsConsumed)
	s.recorder.SetTreeNodes(result.NodeCount)
	s.recorder.AddFragments(metrics.FragmentConsumed, result.FragmentsConsumed)
	s.recorder.AddFragments(metrics.FragmentOrphaned, len(result.Orphans))
	for _, orphan := range result.Orphans {
		s.logger.Warn("Fragment %s is not referenced from %s", orphan, config.RootDocument)
	}

	// Propagate
	stage = s.now()
	changes := changeset.New(s.fs, base)
	changes.RetryWith(retry.NewExecutor(retry.NewFileSystemClassifier(), retry.NewExponentialBackoff(edxml.DefaultCommitRetries)).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			s.logger.Warn("Commit retry %d/%d in %v: %v", attempt+1, edxml.DefaultCommitRetries, delay.Round(time.Millisecond), err)
		}))
	registry := slug.NewRegistry()
	propagate.Seed(res.Tree, registry)
	reserveOrphans(registry, result.Orphans, config)
	s.logger.Verbose("%d identifier(s) reserved before propagation", registry.Len())

	opts := propagate.Options{
		AssetDirectory:       config.AssetDirectory,
		DiscussionCategories: config.DiscussionCategories,
	}
	if config.VideoInfoDir != "" {
		opts.Videos = propagate.NewCacheSource(s.fs, config.VideoInfoDir)
	}
	ruleResults, err := propagate.NewEngine(propagate.StandardRules(opts)...).Run(ctx, &propagate.State{
		Tree:     res.Tree,
		Registry: registry,
		Changes:  changes,
		Logger:   s.logger,
	})
	if err != nil {
		return "", err
	}
	s.recorder.ObserveStageDuration("propagate", s.now().Sub(stage))
	s.applyRuleResults(ruleResults, result)
	result.IdentifiersRenamed = len(registry.Mapping())

	result.DuplicateIDs = propagate.Duplicates(res.Tree)
	for _, id := range result.DuplicateIDs {
		s.logger.Warn("url_name %q is used by more than one node; left unchanged", id)
	}

	// Serialize
	stage = s.now()
	selector, err := serializer.NewSelector(config.ExtractCategories, config.ExtractXPath)
	if err != nil {
		return "", err
	}
	out := serializer.New(selector, s.logger).Serialize(res.Tree, changes, config.RootDocument)
	for _, rel := range res.Consumed {
		changes.Remove(rel)
	}
	result.Extracted = len(out.Extracted)
	s.recorder.AddFragments(metrics.FragmentExtracted, result.Extracted)
	result.MappingPath = mapping.Plan(changes, config.MappingPath, registry.Mapping())
	if config.ReportPath != "" {
		changes.Write(changeset.PhaseReport, config.ReportPath, buildReport(config, *result, changes.Ops()))
	}
	s.recorder.ObserveStageDuration("serialize", s.now().Sub(stage))

	s.logPlan(changes)

	if config.DryRun {
		s.logger.Info("Dry run: %d operation(s) planned, nothing written", len(changes.Ops()))
		return metrics.OutcomeDryRun, nil
	}
	if changes.Empty() {
		return metrics.OutcomeUnchanged, nil
	}

	plan := changes.Plan()
	if plan.Destructive() {
		approved, err := s.approver.RequestApproval(ctx, plan)
		if err != nil {
			return "", fmt.Errorf("approval request failed: %w", err)
		}
		if !approved {
			return "", edxml.ErrApprovalDenied
		}
	}

	// Commit
	stage = s.now()
	if err := changes.Apply(ctx); err != nil {
		return "", err
	}
	s.recorder.ObserveStageDuration("commit", s.now().Sub(stage))
	result.Committed = true

	s.logger.Info("✓ Cleaned %s: %d renamed, %d fragment(s) merged, %d extracted",
		path.Base(base), result.IdentifiersRenamed, result.FragmentsConsumed, result.Extracted)
	return metrics.OutcomeCommitted, nil
}

// reserveOrphans marks the names of unreferenced fragments in extracted
// categories as taken, so no extracted node is written over them.
func reserveOrphans(registry *slug.Registry, orphans []string, config edxml.CleanConfig) {
	extracted := make(map[string]bool, len(config.ExtractCategories))
	for _, c := range config.ExtractCategories {
		extracted[c] = true
	}
	for _, rel := range orphans {
		// An XPath selector can pick any category.
		if config.ExtractXPath == "" && !extracted[path.Dir(rel)] {
			continue
		}
		registry.Observe(strings.TrimSuffix(path.Base(rel), path.Ext(rel)))
	}
}

func (s *CleanService) applyRuleResults(results []propagate.RuleResult, result *edxml.RunResult) {
	for _, r := range results {
		s.recorder.AddRuleChanges(r.Rule, r.Changed)
		switch r.Rule {
		case propagate.AssetFilenameRule{}.Name():
			result.AssetsRenamed = r.Changed
		case propagate.DiscussionRule{}.Name():
			result.TargetsInferred = r.Changed
		case propagate.VideoTitleRule{}.Name():
			result.TitlesFilled = r.Changed
		}
	}
}

func (s *CleanService) logPlan(changes *changeset.Set) {
	for _, op := range changes.Ops() {
		switch op.Kind {
		case changeset.KindRename:
			s.logger.Verbose("  rename %s -> %s", op.Path, op.Target)
		case changeset.KindWrite:
			s.logger.Verbose("  write  %s (%s, %d bytes)", op.Path, op.Phase, op.Size)
		case changeset.KindRemove:
			s.logger.Verbose("  remove %s", op.Path)
		}
	}
}

func (s *CleanService) writeMetrics(file string) error {
	if file == "" {
		return nil
	}
	w, ok := s.recorder.(textfileWriter)
	if !ok {
		return nil
	}
	return w.WriteTextfile(file)
}
