package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNavigation(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  NavigationResult
	}{
		{
			name:  "mixed case with language tag",
			reply: "Opening Directions For Central Park. in english.",
			want:  NavigationResult{IsNavigation: true, Location: "Central Park", Match: MatchedByPattern},
		},
		{
			name:  "newline terminates location",
			reply: "opening directions for the nearest Walmart\nEnglish",
			want:  NavigationResult{IsNavigation: true, Location: "the nearest Walmart", Match: MatchedByPattern},
		},
		{
			name:  "no terminator uses fallback",
			reply: "OPENING DIRECTIONS FOR Paris",
			want:  NavigationResult{IsNavigation: true, Location: "Paris", Match: MatchedByFallback},
		},
		{
			name:  "prefix must be at the start",
			reply: "Sure. Opening directions for Paris.",
			want:  NavigationResult{},
		},
		{
			name:  "ordinary reply",
			reply: "There is a red car in front of you. English.",
			want:  NavigationResult{},
		},
		{
			name:  "short reply",
			reply: "Hi.",
			want:  NavigationResult{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNavigation(tt.reply))
		})
	}
}

func TestSplitLanguage(t *testing.T) {
	tests := []struct {
		reply        string
		wantContent  string
		wantLanguage string
	}{
		{"Hello there.english", "Hello there", "english"},
		{"No period here", "No period here", "english"},
		{"Hay un coche rojo. Spanish.", "Hay un coche rojo", "spanish"},
		{"Il y a une porte.\nFrench.\n\n", "Il y a une porte", "french"},
		{"Opening Directions For Central Park. in english.", "Opening Directions For Central Park", "english"},
		{"Es gibt eine Treppe. Klingon", "Es gibt eine Treppe", "english"},
		{"  ...  ", "", "english"},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			content, language := SplitLanguage(tt.reply)
			assert.Equal(t, tt.wantContent, content)
			assert.Equal(t, tt.wantLanguage, language)
		})
	}
}

func TestMatchString(t *testing.T) {
	assert.Equal(t, "pattern", MatchedByPattern.String())
	assert.Equal(t, "fallback", MatchedByFallback.String())
	assert.Equal(t, "none", NoMatch.String())
}
