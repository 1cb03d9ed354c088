// Package catalog holds the immutable configuration tables used to build role contexts
// and render instructions: named presets, stage defaults, tool vocabularies and coaching notes.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/types"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// Preset is a partial RoleContext for a common role.
type Preset struct {
	Name              string          `yaml:"name" json:"name"`
	Role              string          `yaml:"role" json:"role"`
	Seniority         types.Seniority `yaml:"seniority" json:"seniority"`
	Function          types.Function  `yaml:"function" json:"function"`
	TeamSize          int             `yaml:"team_size,omitempty" json:"team_size,omitempty"`
	CustomerFacing    *bool           `yaml:"customer_facing,omitempty" json:"customer_facing,omitempty"`
	ManagerPriorities string          `yaml:"manager_priorities" json:"manager_priorities"`
	KnownConstraints  string          `yaml:"known_constraints,omitempty" json:"known_constraints,omitempty"`
}

// ToolVocabulary names one tool per category.
type ToolVocabulary struct {
	CRM       string `yaml:"crm" json:"crm"`
	Analytics string `yaml:"analytics" json:"analytics"`
	Support   string `yaml:"support" json:"support"`
}

// Terms returns the vocabulary in a fixed order: CRM, analytics, support.
func (v ToolVocabulary) Terms() []string {
	return []string{v.CRM, v.Analytics, v.Support}
}

func (v ToolVocabulary) complete() bool {
	return strings.TrimSpace(v.CRM) != "" && strings.TrimSpace(v.Analytics) != "" && strings.TrimSpace(v.Support) != ""
}

type stageEntry struct {
	Stage       types.CompanyStage `yaml:"stage"`
	DefaultSize types.CompanySize  `yaml:"default_size"`
	Tools       ToolVocabulary     `yaml:"tools"`
}

type document struct {
	Presets      []Preset                     `yaml:"presets"`
	Stages       []stageEntry                 `yaml:"stages"`
	GenericTools ToolVocabulary               `yaml:"generic_tools"`
	Coaching     map[types.Seniority][]string `yaml:"coaching"`
	RedFlags     []string                     `yaml:"red_flags"`
}

// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	presets  []Preset
	byName   map[string]int
	stages   map[types.CompanyStage]stageEntry
	generic  ToolVocabulary
	coaching map[types.Seniority][]string
	redFlags []string
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Parse(embedded)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded catalog is invalid: %v", err))
	}
	return c
})

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	return defaultCatalog()
}

// Parse decodes and validates a catalog YAML document.
func Parse(data []byte) (*Catalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("catalog: document is empty")
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}

	c := &Catalog{
		presets:  doc.Presets,
		byName:   make(map[string]int, len(doc.Presets)),
		stages:   make(map[types.CompanyStage]stageEntry, len(doc.Stages)),
		generic:  doc.GenericTools,
		coaching: doc.Coaching,
		redFlags: doc.RedFlags,
	}
	for i, p := range doc.Presets {
		c.byName[normalizeName(p.Name)] = i
	}
	for _, s := range doc.Stages {
		c.stages[s.Stage] = s
	}
	return c, nil
}

// LoadFile reads a catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return c, nil
}

func (d *document) validate() error {
	seen := make(map[string]bool, len(d.Presets))
	for i, p := range d.Presets {
		key := normalizeName(p.Name)
		switch {
		case key == "":
			return fmt.Errorf("catalog: preset %d has no name", i)
		case seen[key]:
			return fmt.Errorf("catalog: duplicate preset %q", p.Name)
		case strings.TrimSpace(p.Role) == "":
			return fmt.Errorf("catalog: preset %q has no role", p.Name)
		case p.Seniority != "" && !p.Seniority.Valid():
			return fmt.Errorf("catalog: preset %q has unknown seniority %q", p.Name, p.Seniority)
		case p.Function != "" && !p.Function.Valid():
			return fmt.Errorf("catalog: preset %q has unknown function %q", p.Name, p.Function)
		case p.TeamSize < 0 || p.TeamSize > types.MaxTeamSize:
			return fmt.Errorf("catalog: preset %q has team size %d out of range", p.Name, p.TeamSize)
		}
		seen[key] = true
	}

	stages := make(map[types.CompanyStage]bool, len(d.Stages))
	for _, s := range d.Stages {
		if !s.Stage.Valid() {
			return fmt.Errorf("catalog: unknown stage %q", s.Stage)
		}
		if !s.DefaultSize.Valid() {
			return fmt.Errorf("catalog: stage %q has unknown default size %q", s.Stage, s.DefaultSize)
		}
		if !s.Tools.complete() {
			return fmt.Errorf("catalog: stage %q has an incomplete tool vocabulary", s.Stage)
		}
		stages[s.Stage] = true
	}
	for _, s := range types.AllStages {
		if !stages[s] {
			return fmt.Errorf("catalog: stage %q is missing", s)
		}
	}
	if !d.GenericTools.complete() {
		return fmt.Errorf("catalog: generic tool vocabulary is incomplete")
	}
	for level := range d.Coaching {
		if !level.Valid() {
			return fmt.Errorf("catalog: coaching for unknown seniority %q", level)
		}
	}
	return nil
}

// Presets returns all presets sorted by name.
func (c *Catalog) Presets() []Preset {
	out := make([]Preset, len(c.presets))
	for i, p := range c.presets {
		out[i] = p.clone()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Preset looks up a preset by name, case-insensitively.
func (c *Catalog) Preset(name string) (Preset, bool) {
	i, ok := c.byName[normalizeName(name)]
	if !ok {
		return Preset{}, false
	}
	return c.presets[i].clone(), true
}

// DefaultSize returns the company size usually associated with a stage.
func (c *Catalog) DefaultSize(stage types.CompanyStage) (types.CompanySize, bool) {
	s, ok := c.stages[stage]
	return s.DefaultSize, ok
}

// StageTools returns the named tools typical for a stage.
func (c *Catalog) StageTools(stage types.CompanyStage) (ToolVocabulary, bool) {
	s, ok := c.stages[stage]
	return s.Tools, ok
}

// GenericTools returns the category labels used when a website summary is present.
func (c *Catalog) GenericTools() ToolVocabulary {
	return c.generic
}

// Coaching returns coaching focus points for a seniority level.
func (c *Catalog) Coaching(level types.Seniority) []string {
	return append([]string(nil), c.coaching[level]...)
}

// RedFlags returns the warning signs that apply to every role.
func (c *Catalog) RedFlags() []string {
	return append([]string(nil), c.redFlags...)
}

func (p Preset) clone() Preset {
	if p.CustomerFacing != nil {
		v := *p.CustomerFacing
		p.CustomerFacing = &v
	}
	return p
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
