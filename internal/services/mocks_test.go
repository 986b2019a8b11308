package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pmitros/edxml-tools/internal/metrics"
	"github.com/pmitros/edxml-tools/pkg/edxml"
)

type mockApprover struct {
	approved bool
	err      error
	calls    int
	plan     edxml.CommitPlan
}

func (m *mockApprover) RequestApproval(_ context.Context, plan edxml.CommitPlan) (bool, error) {
	m.calls++
	m.plan = plan
	return m.approved, m.err
}

type mockScanner struct {
	inventory   edxml.Inventory
	scanErr     error
	validateErr error
}

func (m *mockScanner) ScanCourse(_ string) (edxml.Inventory, error) {
	return m.inventory, m.scanErr
}

func (m *mockScanner) ValidateRoot(_, _ string) error {
	return m.validateErr
}

type mockLogger struct {
	mu       sync.Mutex
	warnings []string
}

func (m *mockLogger) Verbose(_ string, _ ...interface{}) {}
func (m *mockLogger) Info(_ string, _ ...interface{})    {}
func (m *mockLogger) Error(_ string, _ ...interface{})   {}

func (m *mockLogger) Warn(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnings = append(m.warnings, fmt.Sprintf(format, args...))
}

type mockRecorder struct {
	metrics.NoopRecorder
	outcomes  []metrics.OutcomeLabel
	rules     map[string]int
	fragments map[metrics.FragmentLabel]int
	stages    []string
	nodes     int
	textfile  string
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{
		rules:     make(map[string]int),
		fragments: make(map[metrics.FragmentLabel]int),
	}
}

func (m *mockRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	m.stages = append(m.stages, stage)
}

func (m *mockRecorder) AddRuleChanges(rule string, n int) { m.rules[rule] += n }

func (m *mockRecorder) AddFragments(label metrics.FragmentLabel, n int) { m.fragments[label] += n }

func (m *mockRecorder) SetTreeNodes(n int) { m.nodes = n }

func (m *mockRecorder) IncRunOutcome(outcome metrics.OutcomeLabel) {
	m.outcomes = append(m.outcomes, outcome)
}

func (m *mockRecorder) WriteTextfile(path string) error {
	m.textfile = path
	return nil
}
