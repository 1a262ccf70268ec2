package ai

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed prompts/*.md
var prompts embed.FS

// BuildPrompt renders the system instruction and the user message for a request.
func BuildPrompt(req Request) (string, string, error) {
	system, err := prompts.ReadFile("prompts/system.md")
	if err != nil {
		return "", "", fmt.Errorf("read system prompt: %w", err)
	}

	var name string
	switch req.Task {
	case TaskGenerateQuestion, TaskExtractClaims:
		name = "prompts/" + string(req.Task) + ".md"
	default:
		return "", "", fmt.Errorf("unknown task %q", req.Task)
	}

	template, err := prompts.ReadFile(name)
	if err != nil {
		return "", "", fmt.Errorf("read %s prompt: %w", req.Task, err)
	}

	contextJSON, err := json.MarshalIndent(req.Context, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("marshal prompt context: %w", err)
	}

	message := strings.NewReplacer(
		"{{CONTEXT_JSON}}", string(contextJSON),
		"{{KIND}}", contextString(req.Context, "kind"),
		"{{TARGET}}", contextString(req.Context, "target"),
		"{{ROLE}}", contextString(req.Context, "role"),
	).Replace(string(template))

	return strings.TrimSpace(string(system)), strings.TrimSpace(message), nil
}

func contextString(ctx map[string]any, key string) string {
	if v, ok := ctx[key]; ok && v != nil {
		if s := coerceString(v); s != "" {
			return s
		}
	}
	return "unspecified"
}
