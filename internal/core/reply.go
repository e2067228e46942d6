package core

import (
	"regexp"
	"strings"

	"visionmate.app/multimodal-mate/internal/speech"
)

const navigationPrefix = "opening directions for"

var navigationPattern = regexp.MustCompile(`(?i)^opening directions for\s*(.+?)[.\n]`)

// Match records how a navigation location was found.
type Match int

const (
	NoMatch Match = iota
	MatchedByPattern
	MatchedByFallback
)

func (m Match) String() string {
	switch m {
	case MatchedByPattern:
		return "pattern"
	case MatchedByFallback:
		return "fallback"
	default:
		return "none"
	}
}

type NavigationResult struct {
	IsNavigation bool
	Location     string
	Match        Match
}

// ParseNavigation detects a reply that starts with "Opening directions for"
// (any case) and extracts the destination up to the first period or newline.
func ParseNavigation(reply string) NavigationResult {
	if len(reply) < len(navigationPrefix) || !strings.EqualFold(reply[:len(navigationPrefix)], navigationPrefix) {
		return NavigationResult{}
	}

	if m := navigationPattern.FindStringSubmatch(reply); m != nil {
		return NavigationResult{
			IsNavigation: true,
			Location:     strings.TrimSpace(m[1]),
			Match:        MatchedByPattern,
		}
	}

	rest := strings.TrimSpace(reply[len(navigationPrefix):])
	if i := strings.IndexAny(rest, ".\n"); i >= 0 {
		rest = rest[:i]
	}
	return NavigationResult{
		IsNavigation: true,
		Location:     strings.TrimSpace(rest),
		Match:        MatchedByFallback,
	}
}

// SplitLanguage separates the trailing language name from a reply such as
// "Hello there. English." and returns the spoken content with the lower-cased
// language. Replies without a period, or naming a language with no voice,
// are spoken in English.
func SplitLanguage(reply string) (content, language string) {
	clean := strings.TrimSpace(reply)
	for clean != "" && strings.ContainsAny(clean[len(clean)-1:], ".\n") {
		clean = strings.TrimSpace(clean[:len(clean)-1])
	}

	i := strings.LastIndex(clean, ".")
	if i < 0 {
		return clean, speech.DefaultLanguage
	}

	tag := strings.ToLower(strings.TrimSpace(clean[i+1:]))
	tag = strings.TrimPrefix(tag, "in ")
	language, _ = speech.NormalizeLanguage(tag)
	return strings.TrimSpace(clean[:i]), language
}
