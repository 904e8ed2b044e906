package advisor

import "strings"

// buildAdvicePrompt wraps the rendered report in the instructions the model
// needs to return structured advice.
func buildAdvicePrompt(reportText string) string {
	var b strings.Builder

	b.WriteString("You are a personal finance advisor reviewing a daily budget report.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Read the report below and identify what matters most.\n")
	b.WriteString("- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n")
	b.WriteString("- Output a single JSON object.\n\n")
	b.WriteString("The object must have these fields:\n")
	b.WriteString("- \"headline\": string, one sentence on the overall state of this budget\n")
	b.WriteString("- \"insights\": array of strings, 2-4 observations grounded in figures from the report\n")
	b.WriteString("- \"actions\": array of strings, 2-4 concrete steps ordered by impact\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Only reference amounts and categories that appear in the report.\n")
	b.WriteString("- Do not invent balances, accounts, or transactions.\n")
	b.WriteString("- Keep each string under 200 characters.\n")
	b.WriteString("Return ONLY valid raw JSON.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	b.WriteString("Do NOT use ```json or any Markdown.\n")
	b.WriteString("Output must begin with \"{\" and end with \"}\".\n\n")
	b.WriteString("REPORT:\n")
	b.WriteString(reportText)

	return b.String()
}
