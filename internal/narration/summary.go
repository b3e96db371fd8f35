// Package narration extracts a plain-text summary from the loosely
// structured narration artifacts published alongside the forecast.
package narration

import (
	"strings"

	"spotwatch/internal/domain"
)

const (
	// MaxSummaryLength bounds the summary, ellipsis included.
	MaxSummaryLength = 255
	summaryEllipsis  = "..."
)

// BuildSection normalizes raw artifact text into a narration section.
// Returns nil for empty or whitespace-only content.
func BuildSection(content, sourceURL string) *domain.NarrationSection {
	normalized := strings.TrimSpace(content)
	if normalized == "" {
		return nil
	}
	return &domain.NarrationSection{
		Content:   normalized,
		Summary:   Summarize(normalized),
		SourceURL: sourceURL,
	}
}

// Summarize returns the first non-empty, non-table line of content with
// leading markdown emphasis stripped and internal whitespace collapsed,
// truncated to MaxSummaryLength with an ellipsis when longer.
func Summarize(content string) string {
	for _, line := range strings.Split(content, "\n") {
		candidate := strings.TrimSpace(line)
		if candidate == "" {
			continue
		}
		if strings.HasPrefix(candidate, "|") {
			continue
		}
		cleaned := strings.Trim(candidate, "* _")
		compact := strings.Join(strings.Fields(cleaned), " ")
		runes := []rune(compact)
		if len(runes) <= MaxSummaryLength {
			return compact
		}
		cut := MaxSummaryLength - len(summaryEllipsis)
		return strings.TrimRight(string(runes[:cut]), " ") + summaryEllipsis
	}
	return ""
}
