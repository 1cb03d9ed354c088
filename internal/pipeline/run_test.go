package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/collector"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/fetch"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/llm"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/metrics"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/types"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/validation"
)

type fakeOracle struct {
	text     string
	err      error
	calls    int
	requests []llm.CompletionRequest
}

func (f *fakeOracle) Complete(_ context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	f.calls++
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{Text: f.text, Provider: llm.ProviderGemini, Model: "fake-model", Duration: 2 * time.Second}, nil
}

func (f *fakeOracle) Model() string { return "fake-model" }
func (f *fakeOracle) Close() error  { return nil }

type failingFetcher struct{}

func (failingFetcher) FetchSummary(_ context.Context, rawURL string) (*fetch.Summary, error) {
	return nil, &fetch.Error{URL: rawURL, Message: "connection refused"}
}

type staticFetcher struct{}

func (staticFetcher) FetchSummary(_ context.Context, rawURL string) (*fetch.Summary, error) {
	return &fetch.Summary{URL: rawURL, Title: "Acme", Description: "Billing software.", Source: fetch.SourceHTTP}, nil
}

func planText(weeks int, tool string) string {
	var sb strings.Builder
	sb.WriteString("# Onboarding Plan\n\n## Executive Summary\n")
	sb.WriteString("The hire ramps from learning to owning a book of accounts over the first quarter, ")
	sb.WriteString("with clear checkpoints for the manager at the end of each phase.\n\n")
	for w := 1; w <= weeks; w++ {
		switch w {
		case 1:
			sb.WriteString("## Phase 1: Foundation (Weeks 1-4)\n\n")
		case 5:
			sb.WriteString("## Phase 2: Application (Weeks 5-8)\n\n")
		case 9:
			sb.WriteString("## Phase 3: Ownership (Weeks 9-12)\n\n")
		}
		fmt.Fprintf(&sb, "### Week %d: Steady progress\n", w)
		sb.WriteString("🎯 Learning Objectives: Understand how customers use the product day to day, which signals show healthy adoption, ")
		sb.WriteString("and how the team decides where to spend time during this part of the ramp.\n")
		sb.WriteString("✅ Meet two teammates and record the top questions customers bring to them each week.\n")
		fmt.Fprintf(&sb, "✅ Work through a guided exercise in %s and review the notes with the manager.\n", tool)
		sb.WriteString("✅ Join three customer calls and summarize the biggest risk mentioned in each conversation.\n")
		sb.WriteString("🚩 Red Flag: Stays blocked on access, context, or priorities for more than a day without asking for help.\n")
		sb.WriteString("💡 Coaching Notes: Have the hire walk through one customer problem in their own words, give direct feedback ")
		sb.WriteString("on clarity, and agree on one habit to practice before the next one-on-one meeting.\n\n")
	}
	return sb.String()
}

func validSubmission() types.Submission {
	return types.Submission{
		Preset:       "Entry-level Customer Success Manager",
		CompanyStage: types.StringPtr("series_a"),
	}
}

func collectStates(events *[]ProgressEvent) ProgressCallback {
	return func(e ProgressEvent) { *events = append(*events, e) }
}

func statesOf(events []ProgressEvent) []State {
	out := make([]State, 0, len(events))
	for _, e := range events {
		out = append(out, e.State)
	}
	return out
}

func TestRun_Accepted(t *testing.T) {
	oracle := &fakeOracle{text: planText(12, "Attio")}
	var events []ProgressEvent
	opts := DefaultOptions()
	opts.OnProgress = collectStates(&events)

	outcome := New(nil, nil, oracle, opts).Run(context.Background(), validSubmission())

	require.NoError(t, outcome.Err)
	assert.Equal(t, StateAccepted, outcome.State)
	assert.Equal(t, 1, oracle.calls)
	require.NotNil(t, outcome.Plan)
	assert.Equal(t, types.VerdictAccepted, outcome.Plan.Validation.Verdict)
	assert.Equal(t, 100, outcome.Plan.QualityScore)
	assert.Equal(t, []string{"Attio", "Pylon.ai", "Intercom"}, outcome.Plan.ExpectedToolList)
	assert.True(t, outcome.Plan.UsesNamedTools)
	assert.Equal(t, outcome.ID.String(), outcome.Plan.SubmissionID)
	assert.Equal(t, "gemini", outcome.Plan.Provider)
	assert.Positive(t, outcome.Plan.PromptTokens)
	assert.Empty(t, outcome.Message())

	assert.Equal(t, []State{
		StateCollecting, StateValidatingInput, StateDispatching, StateValidatingOutput, StateAccepted,
	}, statesOf(events))
	for _, e := range events {
		assert.Equal(t, outcome.ID.String(), e.SubmissionID)
	}
}

func TestRun_RequestParameters(t *testing.T) {
	oracle := &fakeOracle{text: planText(12, "Attio")}
	outcome := New(nil, nil, oracle, Options{Temperature: 0.2}).Run(context.Background(), validSubmission())
	require.NoError(t, outcome.Err)

	require.Len(t, oracle.requests, 1)
	req := oracle.requests[0]
	assert.Equal(t, outcome.Instruction.System, req.System)
	assert.Equal(t, outcome.Instruction.User, req.User)
	assert.InDelta(t, 0.2, req.Temperature, 1e-9)
	assert.Equal(t, llm.DefaultMaxOutputTokens, req.MaxOutputTokens)
	assert.Equal(t, llm.DefaultTimeout, req.Timeout)
}

func TestRun_InvalidNeverDispatches(t *testing.T) {
	oracle := &fakeOracle{text: planText(12, "Attio")}
	var events []ProgressEvent
	opts := DefaultOptions()
	opts.OnProgress = collectStates(&events)

	outcome := New(nil, nil, oracle, opts).Run(context.Background(), types.Submission{
		Role:      types.StringPtr("Analyst"),
		Seniority: types.StringPtr("mid"),
	})

	assert.Equal(t, StateInvalid, outcome.State)
	assert.Zero(t, oracle.calls)
	assert.NotEmpty(t, outcome.FieldErrors)
	assert.Nil(t, outcome.Plan)
	assert.Nil(t, outcome.Instruction)

	var verr *collector.ValidationError
	require.ErrorAs(t, outcome.Err, &verr)
	assert.NotEmpty(t, outcome.Message())
	assert.Equal(t, []State{StateCollecting, StateValidatingInput, StateInvalid}, statesOf(events))
}

func TestRun_WarningMissingTools(t *testing.T) {
	oracle := &fakeOracle{text: planText(12, "the shared workspace")}
	outcome := New(nil, nil, oracle, DefaultOptions()).Run(context.Background(), validSubmission())

	require.NoError(t, outcome.Err)
	assert.Equal(t, StateWarning, outcome.State)
	require.NotNil(t, outcome.Plan)
	assert.Equal(t, types.VerdictWarningMissingToolNames, outcome.Plan.Validation.Verdict)
	assert.Contains(t, outcome.Warnings, outcome.Plan.Validation.Message)
	assert.Equal(t, 90, outcome.Plan.QualityScore)
}

func TestRun_RejectedResponses(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		verdict types.Verdict
	}{
		{"too short", "Week 1: say hello.", types.VerdictRejectedTooShort},
		{"incomplete", planText(9, "Attio"), types.VerdictRejectedIncompleteStructure},
		{"shortcut", planText(4, "Attio") + "\nRepeat this format for weeks 5 through 12.\n", types.VerdictRejectedContainsShortcut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := &fakeOracle{text: tt.text}
			outcome := New(nil, nil, oracle, DefaultOptions()).Run(context.Background(), validSubmission())

			assert.Equal(t, StateError, outcome.State)
			assert.Equal(t, 1, oracle.calls)
			assert.Nil(t, outcome.Plan)

			var rejected *validation.RejectedError
			require.ErrorAs(t, outcome.Err, &rejected)
			assert.Equal(t, tt.verdict, rejected.Result.Verdict)
			assert.Contains(t, outcome.Message(), rejected.Result.Message)
		})
	}
}

func TestRun_OracleFailure(t *testing.T) {
	tests := []struct {
		name string
		kind llm.Kind
	}{
		{"rate limited", llm.KindRateLimited},
		{"auth", llm.KindAuthInvalid},
		{"timeout", llm.KindTimeout},
		{"connection", llm.KindConnectionError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := &fakeOracle{err: &llm.Error{Kind: tt.kind, Provider: llm.ProviderOpenAI, Message: "request failed"}}
			outcome := New(nil, nil, oracle, DefaultOptions()).Run(context.Background(), validSubmission())

			assert.Equal(t, StateError, outcome.State)
			assert.Equal(t, 1, oracle.calls, "failures are never retried")
			assert.Nil(t, outcome.Plan)
			assert.Equal(t, tt.kind, llm.KindOf(outcome.Err))
			assert.Equal(t, tt.kind.UserMessage(), outcome.Message())
		})
	}
}

func TestRun_NoOracle(t *testing.T) {
	outcome := New(nil, nil, nil, DefaultOptions()).Run(context.Background(), validSubmission())
	assert.Equal(t, StateError, outcome.State)
	assert.Error(t, outcome.Err)
	assert.NotNil(t, outcome.Instruction)
}

func TestRun_WebsiteFailureUsesStageTools(t *testing.T) {
	oracle := &fakeOracle{text: planText(12, "Intercom")}
	sub := validSubmission()
	sub.Website = "acme.example"

	outcome := New(collector.New(nil, failingFetcher{}), nil, oracle, DefaultOptions()).Run(context.Background(), sub)

	require.NoError(t, outcome.Err)
	assert.Equal(t, StateAccepted, outcome.State)
	assert.True(t, outcome.Instruction.UsesNamedTools)
	assert.Contains(t, outcome.Instruction.User, "Intercom")
	require.Len(t, outcome.Warnings, 1)
	assert.Contains(t, outcome.Warnings[0], "https://acme.example")
}

func TestRun_WebsiteSummaryUsesGenericTools(t *testing.T) {
	oracle := &fakeOracle{text: planText(12, "the CRM system")}
	sub := validSubmission()
	sub.Website = "acme.example"

	outcome := New(collector.New(nil, staticFetcher{}), nil, oracle, DefaultOptions()).Run(context.Background(), sub)

	require.NoError(t, outcome.Err)
	assert.Equal(t, StateAccepted, outcome.State)
	assert.False(t, outcome.Instruction.UsesNamedTools)
	assert.NotContains(t, outcome.Instruction.User, "Attio")
	assert.Equal(t, "Acme: Billing software.", outcome.Context.WebsiteSummary)
}

func TestRun_Metrics(t *testing.T) {
	rec := metrics.NewRecorder()
	opts := DefaultOptions()
	opts.Metrics = rec

	p := New(nil, nil, &fakeOracle{text: planText(12, "Attio")}, opts)
	p.Run(context.Background(), validSubmission())
	p.Run(context.Background(), types.Submission{})

	failing := New(nil, nil, &fakeOracle{err: &llm.Error{Kind: llm.KindTimeout, Provider: llm.ProviderGemini}}, opts)
	failing.Run(context.Background(), validSubmission())

	count, err := testutil.GatherAndCount(rec.Registry(), "onboarding_submissions_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count, "one series per terminal state")

	count, err = testutil.GatherAndCount(rec.Registry(), "onboarding_oracle_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestOutcome_MessageFallsBackToError(t *testing.T) {
	o := &Outcome{State: StateError, Err: errors.New("rendering instruction failed: boom")}
	assert.Equal(t, "rendering instruction failed: boom", o.Message())
}

func TestState_Terminal(t *testing.T) {
	for _, s := range []State{StateInvalid, StateError, StateAccepted, StateWarning} {
		assert.True(t, s.Terminal(), s)
	}
	for _, s := range []State{StateCollecting, StateValidatingInput, StateDispatching, StateValidatingOutput} {
		assert.False(t, s.Terminal(), s)
	}
}
