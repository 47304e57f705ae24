package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCarriesCode(t *testing.T) {
	err := New(CodeNotFound, "project not found")

	require.Error(t, err)
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeConflict))
	assert.Equal(t, "project not found", err.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to load project")

	assert.True(t, HasCode(err, CodeInternal))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load project: connection refused", err.Error())
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "unused"))
}

func TestHasCodeSeesThroughFmtWrapping(t *testing.T) {
	inner := New(CodeConflict, "duplicate role name")
	outer := fmt.Errorf("create role: %w", inner)

	assert.True(t, HasCode(outer, CodeConflict))
	assert.Equal(t, CodeConflict, CodeOf(outer))
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestErrorIsMatchesByCodeAndMessage(t *testing.T) {
	err := New(CodeUnauthorized, "token has expired")

	assert.ErrorIs(t, err, New(CodeUnauthorized, "token has expired"))
	assert.NotErrorIs(t, err, New(CodeUnauthorized, "invalid token"))
	assert.NotErrorIs(t, err, New(CodeForbidden, "token has expired"))
}

func TestOuterCodeWins(t *testing.T) {
	// Services re-code store errors; the outermost classification is the one
	// handlers must act on.
	inner := New(CodeNotFound, "row missing")
	outer := Wrap(inner, CodeInternal, "unexpected absence")

	assert.Equal(t, CodeInternal, CodeOf(outer))
	assert.True(t, HasCode(outer, CodeInternal))
}
