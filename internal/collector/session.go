package collector

import (
	"context"
	"fmt"
	"sync"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/types"
)

// Session remembers the preset an interactive user picked between submissions.
type Session struct {
	collector *Collector
	mu        sync.Mutex
	preset    string
}

// NewSession creates a session with no preset selected.
func NewSession(c *Collector) *Session {
	return &Session{collector: c}
}

// SelectPreset selects a preset for the following submissions.
func (s *Session) SelectPreset(name string) error {
	preset, ok := s.collector.catalog.Preset(name)
	if !ok {
		return fmt.Errorf("unknown preset %q", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preset = preset.Name
	return nil
}

// ClearPreset removes the selection.
func (s *Session) ClearPreset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preset = ""
}

// Preset returns the selected preset name, or "".
func (s *Session) Preset() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preset
}

// Submit collects sub, applying the selected preset when sub names none.
func (s *Session) Submit(ctx context.Context, sub types.Submission) Result {
	sub = sub.Clone()
	if sub.Preset == "" {
		sub.Preset = s.Preset()
	}
	return s.collector.Collect(ctx, sub)
}
