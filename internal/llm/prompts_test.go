package llm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePrompts = "# Prompts\n\n" +
	"Intro text that is not part of any template.\n\n" +
	"## chat_system\n\n```\nYou answer in {{language}}.\n```\n\n" +
	"## tone_user\n\nSome explanation above the block.\n\n```\nClassify: {{message}}\n```\n\n" +
	"## claim_system\n\n```\nSystem A\n```\n\n" +
	"## claim_user\n\n```\n{{claim_context}}\n```\n\n" +
	"## feedback_batch_user\n\n```\n{{policies}}\n```\n\n" +
	"## feedback_deep_system\n\n```\nSystem B\n```\n\n" +
	"## feedback_deep_user\n\n```\n{{claim_context}}\n{{policies}}\n```\n"

func writePrompts(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompts.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPrompts(t *testing.T) {
	p, err := LoadPrompts(writePrompts(t, samplePrompts))
	require.NoError(t, err)

	assert.Equal(t, "You answer in {{language}}.", p.ChatSystem)
	assert.Equal(t, "Classify: {{message}}", p.ToneUser)
	assert.Equal(t, "System A", p.ClaimSystem)
	assert.Equal(t, "System B", p.FeedbackDeepSystem)
	assert.Equal(t, "{{claim_context}}\n{{policies}}", p.FeedbackDeepUser)
}

func TestLoadPrompts_MissingSection(t *testing.T) {
	content := "## chat_system\n\n```\nhello\n```\n"
	_, err := LoadPrompts(writePrompts(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tone_user")
}

func TestLoadPrompts_MissingFile(t *testing.T) {
	_, err := LoadPrompts(filepath.Join(t.TempDir(), "nope.md"))
	assert.Error(t, err)
}

// The real prompt file must always parse.
func TestLoadPrompts_RepoFile(t *testing.T) {
	p, err := LoadPrompts(filepath.Join("..", "..", "docs", "prompts.md"))
	require.NoError(t, err)

	assert.Contains(t, p.ChatSystem, "{{language}}")
	assert.Contains(t, p.ToneUser, "{{message}}")
	assert.Contains(t, p.ClaimUser, "{{claim_context}}")
	assert.Contains(t, p.ClaimUser, "{{policies}}")
	assert.Contains(t, p.FeedbackBatchUser, "{{policies}}")
	assert.Contains(t, p.FeedbackDeepUser, "{{claim_context}}")
}

func TestRenderTemplate(t *testing.T) {
	got := RenderTemplate("Hello {{name}}, you have {{count}} items. {{name}} again.", map[string]string{
		"name":  "Rosalie",
		"count": "3",
	})
	assert.Equal(t, "Hello Rosalie, you have 3 items. Rosalie again.", got)
}

func TestRenderTemplate_UnknownPlaceholderLeftIntact(t *testing.T) {
	got := RenderTemplate("{{known}} and {{unknown}}", map[string]string{"known": "x"})
	assert.Equal(t, "x and {{unknown}}", got)
}
