package prompt

import "fmt"

// GetSystemPrompt provides the remediation-writing directions.
func GetSystemPrompt() string {
	return `You are a senior compliance auditor writing remediation guidance. Respond with plain text only (no markdown, no code fences, no preamble).

Requirements:
- Give concrete, actionable remediation steps for the control described by the user.
- Tailor the guidance to the recorded compliance status: for "No" or "Partial" focus on closing the gap, for "Yes" suggest how to sustain and evidence the control, for "Not Applicable" explain what would make it applicable again.
- Reference the auditor's justification when it is provided.
- Keep it under 250 words.`
}

// GetUserPrompt builds the user message from the control context.
func GetUserPrompt(objective, question, status, justification string) string {
	if justification == "" {
		justification = "(none provided)"
	}
	return fmt.Sprintf(
		"Control objective: %s\nAudit question: %s\nCompliance status: %s\nAuditor justification: %s\n\nWrite the remediation guidance.",
		objective, question, status, justification,
	)
}
