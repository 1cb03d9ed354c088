// Package pipeline provides the high-level orchestration for one onboarding plan submission.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/collector"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/llm"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/metrics"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/synthesis"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/types"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/validation"
)

// State is a step in the life of a submission.
type State string

// Submission states. Invalid, Error, Accepted and Warning are terminal.
const (
	StateCollecting       State = "collecting"
	StateValidatingInput  State = "validating_input"
	StateInvalid          State = "invalid"
	StateDispatching      State = "dispatching"
	StateError            State = "error"
	StateValidatingOutput State = "validating_output"
	StateAccepted         State = "accepted"
	StateWarning          State = "warning"
)

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	switch s {
	case StateInvalid, StateError, StateAccepted, StateWarning:
		return true
	default:
		return false
	}
}

// ProgressEvent represents a state transition during a run
type ProgressEvent struct {
	SubmissionID string `json:"submission_id"`
	State        State  `json:"state"`
	Message      string `json:"message"`
	Content      any    `json:"content,omitempty"`
}

// ProgressCallback is called on every state transition
type ProgressCallback func(event ProgressEvent)

// Options holds the request parameters and hooks shared by every run.
type Options struct {
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration
	Metrics         *metrics.Recorder
	Verbose         bool
	OnProgress      ProgressCallback
}

// DefaultOptions returns the default oracle request parameters.
func DefaultOptions() Options {
	return Options{
		Temperature:     llm.DefaultTemperature,
		MaxOutputTokens: llm.DefaultMaxOutputTokens,
		Timeout:         llm.DefaultTimeout,
	}
}

// Outcome is the terminal result of one submission. Exactly one of Plan and Err is set
// for dispatched submissions; invalid submissions carry FieldErrors and Err.
type Outcome struct {
	ID          uuid.UUID              `json:"id"`
	State       State                  `json:"state"`
	Context     *types.RoleContext     `json:"context,omitempty"`
	Instruction *synthesis.Instruction `json:"-"`
	Plan        *types.GeneratedPlan   `json:"plan,omitempty"`
	Warnings    []string               `json:"warnings,omitempty"`
	FieldErrors []types.FieldError     `json:"field_errors,omitempty"`
	Err         error                  `json:"-"`
}

// Message returns the single line shown to the user for a failed outcome, or "".
func (o *Outcome) Message() string {
	if o.Err == nil {
		return ""
	}
	var oracleErr *llm.Error
	var rejected *validation.RejectedError
	switch {
	case errors.As(o.Err, &oracleErr):
		return oracleErr.Kind.UserMessage()
	case errors.As(o.Err, &rejected):
		if rejected.Result.Guidance != "" {
			return rejected.Result.Message + " " + rejected.Result.Guidance
		}
		return rejected.Result.Message
	case o.State == StateInvalid:
		return "Please correct the highlighted fields and submit again."
	default:
		return o.Err.Error()
	}
}

// Pipeline runs submissions through collection, rendering, one oracle call and
// response validation. It is safe for concurrent use when its oracle is.
type Pipeline struct {
	collector *collector.Collector
	renderer  *synthesis.Synthesizer
	oracle    llm.Oracle
	opts      Options
}

// New creates a Pipeline. A zero token limit or timeout falls back to DefaultOptions;
// temperature is used as given.
func New(c *collector.Collector, r *synthesis.Synthesizer, oracle llm.Oracle, opts Options) *Pipeline {
	defaults := DefaultOptions()
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = defaults.MaxOutputTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if c == nil {
		c = collector.New(nil, nil)
	}
	if r == nil {
		r = synthesis.New(c.Catalog())
	}
	return &Pipeline{collector: c, renderer: r, oracle: oracle, opts: opts}
}

// Collector returns the pipeline's collector.
func (p *Pipeline) Collector() *collector.Collector {
	return p.collector
}

// run carries the state of one submission through Run.
type run struct {
	p       *Pipeline
	outcome *Outcome
}

func (r *run) transition(state State, message string, content any) {
	r.outcome.State = state
	if r.p.opts.Verbose {
		log.Printf("[VERBOSE] %s %s: %s", r.outcome.ID, state, message)
	}
	if r.p.opts.OnProgress != nil {
		r.p.opts.OnProgress(ProgressEvent{
			SubmissionID: r.outcome.ID.String(),
			State:        state,
			Message:      message,
			Content:      content,
		})
	}
}

func (r *run) fail(state State, err error) *Outcome {
	r.outcome.Err = err
	r.transition(state, err.Error(), nil)
	r.p.opts.Metrics.ObserveSubmission(string(state))
	return r.outcome
}

func (r *run) finish(state State, message string) *Outcome {
	r.transition(state, message, r.outcome.Plan)
	r.p.opts.Metrics.ObserveSubmission(string(state))
	return r.outcome
}

// Run processes one submission to a terminal state. It makes at most one oracle call and
// never retries.
func (p *Pipeline) Run(ctx context.Context, sub types.Submission) *Outcome {
	r := &run{p: p, outcome: &Outcome{ID: uuid.New()}}
	r.transition(StateCollecting, "Collecting role context", nil)

	collected := p.collector.Collect(ctx, sub)
	rc := collected.Context
	r.outcome.Context = &rc
	r.outcome.Warnings = append(r.outcome.Warnings, collected.Warnings...)
	r.transition(StateValidatingInput, "Validating role context", nil)

	if !collected.Valid() {
		r.outcome.FieldErrors = collected.FieldErrors
		return r.fail(StateInvalid, collected.Err())
	}

	instruction, err := p.renderer.Render(rc)
	if err != nil {
		return r.fail(StateError, fmt.Errorf("rendering instruction failed: %w", err))
	}
	r.outcome.Instruction = &instruction

	if p.oracle == nil {
		return r.fail(StateError, errors.New("no oracle configured"))
	}

	req := llm.CompletionRequest{
		System:          instruction.System,
		User:            instruction.User,
		Temperature:     p.opts.Temperature,
		MaxOutputTokens: p.opts.MaxOutputTokens,
		Timeout:         p.opts.Timeout,
	}
	promptTokens := req.PromptTokens()
	r.transition(StateDispatching, fmt.Sprintf("Requesting plan from %s (~%d prompt tokens)", p.oracle.Model(), promptTokens), nil)

	start := time.Now()
	completion, err := p.oracle.Complete(ctx, req)
	if err != nil {
		kind := llm.KindOf(err)
		p.opts.Metrics.ObserveOracle(providerOf(err), p.oracle.Model(), string(kind), promptTokens, time.Since(start))
		return r.fail(StateError, err)
	}
	p.opts.Metrics.ObserveOracle(string(completion.Provider), completion.Model, "", promptTokens, completion.Duration)

	r.transition(StateValidatingOutput, fmt.Sprintf("Validating %d characters of plan text", len(completion.Text)), nil)
	assessment := validation.Assess(completion.Text, instruction.Vocabulary)
	p.opts.Metrics.ObservePlan(string(assessment.Result.Verdict), string(rc.Seniority), assessment.Score)

	if err := validation.AsError(assessment.Result); err != nil {
		log.Printf("[validation] Submission %s rejected: %s", r.outcome.ID, assessment.Result.Verdict)
		return r.fail(StateError, err)
	}

	r.outcome.Plan = &types.GeneratedPlan{
		SubmissionID:     r.outcome.ID.String(),
		Text:             completion.Text,
		Provider:         string(completion.Provider),
		Model:            completion.Model,
		PromptTokens:     promptTokens,
		OracleDuration:   completion.Duration,
		Metrics:          assessment.Metrics,
		Validation:       assessment.Result,
		QualityScore:     assessment.Score,
		UsesNamedTools:   instruction.UsesNamedTools,
		ExpectedToolList: instruction.Vocabulary,
	}

	if assessment.Result.Verdict == types.VerdictWarningMissingToolNames {
		r.outcome.Warnings = append(r.outcome.Warnings, assessment.Result.Message)
		return r.finish(StateWarning, assessment.Result.Message)
	}
	return r.finish(StateAccepted, fmt.Sprintf("Plan accepted with quality score %d", assessment.Score))
}

func providerOf(err error) string {
	var oracleErr *llm.Error
	if errors.As(err, &oracleErr) {
		return string(oracleErr.Provider)
	}
	return "unknown"
}
