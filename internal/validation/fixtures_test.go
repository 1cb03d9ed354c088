package validation

import (
	"fmt"
	"strings"
)

var phaseTitles = map[int]string{
	1: "## Phase 1: Foundation (Weeks 1-4)",
	5: "## Phase 2: Application (Weeks 5-8)",
	9: "## Phase 3: Ownership (Weeks 9-12)",
}

// samplePlan builds a well-formed plan covering weeks 1..weeks that mentions tool.
func samplePlan(weeks int, tool string) string {
	var sb strings.Builder
	sb.WriteString("# Onboarding Plan: Customer Success Manager\n\n")
	sb.WriteString("## Executive Summary\n")
	sb.WriteString("By the end of the quarter the new hire runs renewal conversations on their own, ")
	sb.WriteString("owns a book of accounts, and contributes improvements to the team playbook. ")
	sb.WriteString("The plan moves from learning the product, to applying it with customers, to full ownership.\n\n")

	for w := 1; w <= weeks; w++ {
		if title, ok := phaseTitles[w]; ok {
			sb.WriteString(title + "\n\n")
		}
		fmt.Fprintf(&sb, "### Week %d: Building momentum\n", w)
		sb.WriteString("🎯 Learning Objectives: Understand how customers adopt the product, which workflows matter most to them, ")
		sb.WriteString("and how the team measures account health during this stage of the ramp.\n")
		sb.WriteString("✅ Meet with two peers and write down the questions customers ask them most often.\n")
		fmt.Fprintf(&sb, "✅ Complete a hands-on exercise in %s and share short notes with the manager.\n", tool)
		sb.WriteString("✅ Shadow three customer calls and summarize the main risk raised in each one.\n")
		sb.WriteString("🚩 Red Flag: The hire has not asked for help while blocked on access, context, or priorities for more than a day.\n")
		sb.WriteString("💡 Coaching Notes: Ask the hire to explain one customer problem in their own words, then give direct feedback ")
		sb.WriteString("on clarity and confidence, and agree on one concrete habit to practice before the next check-in.\n\n")
	}
	return sb.String()
}
