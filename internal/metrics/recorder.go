package metrics

import "time"

// OutcomeLabel enumerates how a run ended.
type OutcomeLabel string

const (
	OutcomeCommitted OutcomeLabel = "committed"
	OutcomeDryRun    OutcomeLabel = "dry_run"
	OutcomeUnchanged OutcomeLabel = "unchanged"
	OutcomeDenied    OutcomeLabel = "denied"
	OutcomeFailed    OutcomeLabel = "failed"
)

// FragmentLabel enumerates what happened to fragment files.
type FragmentLabel string

const (
	FragmentConsumed  FragmentLabel = "consumed"
	FragmentExtracted FragmentLabel = "extracted"
	FragmentOrphaned  FragmentLabel = "orphaned"
)

// Recorder defines observability hooks for clean runs.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	AddRuleChanges(rule string, n int)
	AddFragments(label FragmentLabel, n int)
	SetTreeNodes(n int)
	IncRunOutcome(outcome OutcomeLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) AddRuleChanges(string, int)                 {}
func (NoopRecorder) AddFragments(FragmentLabel, int)            {}
func (NoopRecorder) SetTreeNodes(int)                           {}
func (NoopRecorder) IncRunOutcome(OutcomeLabel)                 {}
