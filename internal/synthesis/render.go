// Package synthesis renders a validated RoleContext into the fixed instruction sent to the oracle.
package synthesis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/catalog"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/prompts"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/types"
)

const notProvided = "Not provided"

// Instruction is the rendered request for one submission.
type Instruction struct {
	System string `json:"system"`
	User   string `json:"user"`
	// Vocabulary lists the tool terms the response is expected to mention.
	Vocabulary []string `json:"vocabulary"`
	// UsesNamedTools is false when the generic category labels were used instead of tool names.
	UsesNamedTools bool `json:"uses_named_tools"`
}

// Text joins the system and user instructions for display and token counting.
func (i Instruction) Text() string {
	return i.System + "\n\n" + i.User
}

// Synthesizer renders instructions from a catalog. It holds no mutable state.
type Synthesizer struct {
	catalog *catalog.Catalog
}

// New creates a Synthesizer. A nil catalog uses the embedded default.
func New(cat *catalog.Catalog) *Synthesizer {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Synthesizer{catalog: cat}
}

// Render produces the instruction for rc. It is deterministic: the same context
// always yields byte-identical output. rc must already be valid.
func (s *Synthesizer) Render(rc types.RoleContext) (Instruction, error) {
	vocab, toolsKey, named, err := s.vocabulary(rc)
	if err != nil {
		return Instruction{}, err
	}

	system, err := prompts.Get(prompts.Onboarding, "system")
	if err != nil {
		return Instruction{}, err
	}

	toolGuidance, err := prompts.Render(prompts.Onboarding, toolsKey, map[string]string{
		"CRM":       vocab.CRM,
		"Analytics": vocab.Analytics,
		"Support":   vocab.Support,
	})
	if err != nil {
		return Instruction{}, err
	}

	roleBlock, err := prompts.Render(prompts.Onboarding, "role_context", roleContextValues(rc))
	if err != nil {
		return Instruction{}, err
	}

	user, err := prompts.Render(prompts.Onboarding, "plan", map[string]string{
		"ToolGuidance":   toolGuidance,
		"SeniorityLabel": rc.Seniority.Label(),
		"Coaching":       bulletList(s.catalog.Coaching(rc.Seniority)),
		"RedFlags":       bulletList(s.catalog.RedFlags()),
		"RoleContext":    roleBlock,
	})
	if err != nil {
		return Instruction{}, err
	}

	return Instruction{
		System:         system,
		User:           user,
		Vocabulary:     vocab.Terms(),
		UsesNamedTools: named,
	}, nil
}

// vocabulary picks exactly one of the two tool vocabularies.
func (s *Synthesizer) vocabulary(rc types.RoleContext) (catalog.ToolVocabulary, string, bool, error) {
	if rc.HasWebsiteSummary() {
		return s.catalog.GenericTools(), "tools_generic", false, nil
	}
	tools, ok := s.catalog.StageTools(rc.CompanyStage)
	if !ok {
		return catalog.ToolVocabulary{}, "", false, fmt.Errorf("no tool vocabulary for company stage %q", rc.CompanyStage)
	}
	return tools, "tools_named", true, nil
}

func roleContextValues(rc types.RoleContext) map[string]string {
	seniority := rc.Seniority.Label()
	if rc.Seniority.IsIndividualContributor() {
		seniority += " (individual contributor)"
	}
	return map[string]string{
		"Role":              rc.Role,
		"Seniority":         seniority,
		"Function":          rc.Function.Label(),
		"CompanyName":       orNotProvided(rc.CompanyName),
		"CompanyStage":      rc.CompanyStage.Label(),
		"CompanySize":       rc.CompanySize.Label(),
		"TeamSize":          strconv.Itoa(rc.TeamSize),
		"CustomerFacing":    yesNo(rc.CustomerFacing),
		"ManagerPriorities": rc.ManagerPriorities,
		"KnownConstraints":  orNotProvided(rc.KnownConstraints),
		"WebsiteURL":        orNotProvided(rc.WebsiteURL),
		"WebsiteSummary":    orNotProvided(rc.WebsiteSummary),
	}
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "- " + notProvided
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return notProvided
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
