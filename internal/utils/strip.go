package utils

import "strings"

// StripFences removes a surrounding markdown code fence from LLM output.
// Models frequently wrap JSON in ```json ... ``` despite being told not to.
func StripFences(s string) string {
	out := strings.TrimSpace(s)
	if !strings.HasPrefix(out, "```") {
		return out
	}

	out = strings.TrimPrefix(out, "```")
	if idx := strings.Index(out, "\n"); idx >= 0 {
		// drop the language tag line ("json", "JSON", ...)
		out = out[idx+1:]
	}
	out = strings.TrimSuffix(strings.TrimSpace(out), "```")
	return strings.TrimSpace(out)
}
