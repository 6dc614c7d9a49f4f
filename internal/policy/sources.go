package policy

import (
	"regexp"
	"strings"
)

// Responses cite policy section names, never the PDF filename the
// chunk was ingested from.
var sectionPatterns = []*regexp.Regexp{
	// "0.-Global Procedure", "5.1.-Validation of Contract Number"
	regexp.MustCompile(`(\d+\.?\d*\.-[A-Za-z0-9 ]+)`),
	// "1. Verify Law 25 Compliance"
	regexp.MustCompile(`(\d+\. ?[A-Z][A-Za-z0-9 ]+)`),
}

var spaceRe = regexp.MustCompile(`\s+`)

// ExtractSectionTitle pulls a section title out of chunk content.
// Returns "" when nothing title-like is found.
func ExtractSectionTitle(content string) string {
	for _, pattern := range sectionPatterns {
		if m := pattern.FindStringSubmatch(content); m != nil {
			title := strings.TrimSpace(m[1])
			title = spaceRe.ReplaceAllString(title, " ")
			if len(title) > 10 {
				return truncate(title, 80)
			}
		}
	}

	// Fall back to the first line if it looks like a header.
	firstLine := strings.TrimSpace(strings.SplitN(content, "\n", 2)[0])
	if firstLine != "" && len(firstLine) < 100 && !strings.HasSuffix(firstLine, ".") {
		return truncate(firstLine, 80)
	}

	return ""
}

// Sources returns the deduplicated section names for a set of chunks.
// PDF filenames in chunk metadata are skipped in favor of a title
// extracted from the content.
func Sources(chunks []Chunk) []string {
	sources := []string{}
	seen := make(map[string]bool)

	for _, c := range chunks {
		source := ""
		if c.Source != "" && !strings.HasSuffix(strings.ToLower(c.Source), ".pdf") {
			source = c.Source
		}
		if source == "" {
			source = ExtractSectionTitle(c.Content)
		}
		if source == "" || seen[source] {
			continue
		}
		seen[source] = true
		sources = append(sources, source)
	}

	return sources
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
