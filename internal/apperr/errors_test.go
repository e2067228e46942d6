package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap("Gemini.Generate", ErrUpstream, cause)

	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Gemini.Generate: upstream service failure: connection reset", err.Error())
}

func TestWrapKeepsInnermostKind(t *testing.T) {
	inner := New("Resolver.Resolve", ErrNotFound, "no results")
	outer := Wrap("handler", ErrUpstream, fmt.Errorf("resolve: %w", inner))

	assert.ErrorIs(t, outer, ErrNotFound)
	assert.NotErrorIs(t, outer, ErrUpstream)
	assert.Equal(t, ErrNotFound, KindOf(outer))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap("op", ErrUpstream, nil))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"tagged", Newf("op", ErrConfig, "missing %s", "KEY"), ErrConfig},
		{"bare sentinel", fmt.Errorf("chat: %w", ErrInvalidRequest), ErrInvalidRequest},
		{"untyped", errors.New("boom"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}
