package types

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Team size bounds accepted by RoleContext.
const (
	MinTeamSize = 1
	MaxTeamSize = 10000
	// MinPrioritiesLength is the minimum trimmed length of ManagerPriorities.
	MinPrioritiesLength = 10
)

// RoleContext is the validated, immutable description of a new hire's situation.
// It is the only input to instruction rendering.
type RoleContext struct {
	Role              string       `json:"role" validate:"trimmed_min=1"`
	Seniority         Seniority    `json:"seniority" validate:"enum"`
	Function          Function     `json:"function" validate:"enum"`
	CompanyStage      CompanyStage `json:"company_stage" validate:"enum"`
	CompanySize       CompanySize  `json:"company_size" validate:"enum"`
	TeamSize          int          `json:"team_size" validate:"min=1,max=10000"`
	CustomerFacing    bool         `json:"customer_facing"`
	ManagerPriorities string       `json:"manager_priorities" validate:"trimmed_min=10"`
	KnownConstraints  string       `json:"known_constraints,omitempty"`
	CompanyName       string       `json:"company_name,omitempty"`
	WebsiteURL        string       `json:"website_url,omitempty"`
	// WebsiteSummary is set only by the website summary collaborator.
	WebsiteSummary string `json:"website_summary,omitempty"`
}

// HasWebsiteSummary reports whether a company website summary is available.
func (c *RoleContext) HasWebsiteSummary() bool {
	return strings.TrimSpace(c.WebsiteSummary) != ""
}

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type enumValue interface {
	Valid() bool
}

var roleValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("trimmed_min", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len([]rune(strings.TrimSpace(fl.Field().String()))) >= n
	})
	_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(enumValue)
		return ok && e.Valid()
	})
	return v
})

// Validate checks every RoleContext invariant and returns the violations in field order.
// A nil result means the context may be rendered.
func (c *RoleContext) Validate() []FieldError {
	err := roleValidator().Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "(root)", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Field() {
	case "role":
		return "role is required"
	case "manager_priorities":
		if strings.TrimSpace(fe.Value().(string)) == "" {
			return "manager priorities are required"
		}
		return fmt.Sprintf("manager priorities must be at least %d characters", MinPrioritiesLength)
	case "team_size":
		return fmt.Sprintf("team size must be between %d and %d", MinTeamSize, MaxTeamSize)
	}
	if fe.Tag() == "enum" {
		if fmt.Sprint(fe.Value()) == "" {
			return fmt.Sprintf("%s is required", strings.ReplaceAll(fe.Field(), "_", " "))
		}
		return fmt.Sprintf("unknown %s %q", strings.ReplaceAll(fe.Field(), "_", " "), fe.Value())
	}
	return fmt.Sprintf("failed %s check", fe.Tag())
}
