package llm

import (
	"fmt"
	"strings"
	"text/template"
)

// WarmUpPrompt is sent once at startup so the first real request does not pay model load time
const WarmUpPrompt = "You write concise and informative Git commit messages. Reply with OK."

var commitPrompt = template.Must(template.New("commit").Parse(`Write a clear {{.CommitType}} Git commit title in imperative mood for the diff below.

Rules:
- A single line, at most {{.MaxChars}} characters
- Focus on the main technical change
- Be concise and specific
- No quotes, no filler words, no explanation
- Return only the title

Git diff:
{{.Diff}}`))

// PromptData holds the values embedded in the commit prompt
type PromptData struct {
	CommitType string
	MaxChars   int
	Diff       string
}

// BuildPrompt renders the commit prompt; the diff is embedded verbatim
func BuildPrompt(data PromptData) (string, error) {
	var sb strings.Builder
	if err := commitPrompt.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return sb.String(), nil
}
