package llm

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Prompts holds the templates parsed from docs/prompts.md.
type Prompts struct {
	ChatSystem         string
	ToneUser           string
	ClaimSystem        string
	ClaimUser          string
	FeedbackBatchUser  string
	FeedbackDeepSystem string
	FeedbackDeepUser   string
}

// LoadPrompts parses a markdown file where each template is a
// "## name" heading followed by a fenced code block.
func LoadPrompts(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}

	sections := parsePromptSections(string(data))

	get := func(name string) (string, error) {
		v, ok := sections[name]
		if !ok {
			return "", fmt.Errorf("prompt section %q not found in %s", name, path)
		}
		return v, nil
	}

	p := &Prompts{}
	if p.ChatSystem, err = get("chat_system"); err != nil {
		return nil, err
	}
	if p.ToneUser, err = get("tone_user"); err != nil {
		return nil, err
	}
	if p.ClaimSystem, err = get("claim_system"); err != nil {
		return nil, err
	}
	if p.ClaimUser, err = get("claim_user"); err != nil {
		return nil, err
	}
	if p.FeedbackBatchUser, err = get("feedback_batch_user"); err != nil {
		return nil, err
	}
	if p.FeedbackDeepSystem, err = get("feedback_deep_system"); err != nil {
		return nil, err
	}
	if p.FeedbackDeepUser, err = get("feedback_deep_user"); err != nil {
		return nil, err
	}

	return p, nil
}

var sectionHeaderRe = regexp.MustCompile(`(?m)^## (.+)$`)

func parsePromptSections(content string) map[string]string {
	sections := make(map[string]string)

	matches := sectionHeaderRe.FindAllStringSubmatchIndex(content, -1)
	for i, match := range matches {
		name := strings.TrimSpace(content[match[2]:match[3]])

		start := match[1]
		end := len(content)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		sections[name] = extractCodeBlock(content[start:end])
	}

	return sections
}

func extractCodeBlock(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inBlock := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inBlock {
				break
			}
			inBlock = true
			continue
		}
		if inBlock {
			result = append(result, line)
		}
	}
	return strings.TrimSpace(strings.Join(result, "\n"))
}

// RenderTemplate replaces {{key}} placeholders in a template string.
func RenderTemplate(tmpl string, vars map[string]string) string {
	result := tmpl
	for k, v := range vars {
		result = strings.ReplaceAll(result, "{{"+k+"}}", v)
	}
	return result
}
