package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolioErrorMessage(t *testing.T) {
	testCases := []struct {
		name     string
		err      *FolioError
		expected string
	}{
		{
			name:     "message only",
			err:      &FolioError{Message: "boom"},
			expected: "boom",
		},
		{
			name:     "code and component",
			err:      NewConfigError(ErrCodeConfigInvalid, "bad port").WithComponent("config"),
			expected: "[ERR_CONFIG_INVALID] component:config bad port",
		},
		{
			name:     "path and cause",
			err:      NewIOError(ErrCodeFileNotFound, "open content", fs.ErrNotExist).WithPath("content/portfolio.yaml"),
			expected: "[ERR_FILE_NOT_FOUND] content/portfolio.yaml open content: file does not exist",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.err.Error())
		})
	}
}

func TestConstructorsSetType(t *testing.T) {
	cause := errors.New("cause")
	testCases := []struct {
		err         *FolioError
		errType     ErrorType
		recoverable bool
	}{
		{NewValidationError(ErrCodeValidationFailed, "invalid"), ErrorTypeValidation, true},
		{NewContentError(ErrCodeContentParse, "parse", cause), ErrorTypeContent, true},
		{NewIOError(ErrCodeFileNotFound, "read", cause), ErrorTypeIO, false},
		{NewNetworkError(ErrCodeRequestFailed, "post", cause), ErrorTypeNetwork, true},
		{NewConfigError(ErrCodeConfigInvalid, "config"), ErrorTypeConfig, false},
		{NewInternalError(ErrCodeInternalError, "internal", cause), ErrorTypeInternal, false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.errType), func(t *testing.T) {
			assert.True(t, IsType(tc.err, tc.errType))
			assert.Equal(t, tc.recoverable, IsRecoverable(tc.err))

			wrapped := fmt.Errorf("outer: %w", tc.err)
			assert.True(t, IsType(wrapped, tc.errType), "type survives fmt wrapping")
		})
	}

	assert.False(t, IsType(cause, ErrorTypeIO))
	assert.False(t, IsRecoverable(cause))
}

func TestIsMatchesTypeAndCode(t *testing.T) {
	err := NewNetworkError(ErrCodeBadStatus, "status 500", nil)
	wrapped := fmt.Errorf("send: %w", err)

	assert.ErrorIs(t, wrapped, &FolioError{Type: ErrorTypeNetwork, Code: ErrCodeBadStatus})
	assert.NotErrorIs(t, wrapped, &FolioError{Type: ErrorTypeNetwork, Code: ErrCodeRequestFailed})
	assert.NotErrorIs(t, wrapped, &FolioError{Type: ErrorTypeIO, Code: ErrCodeBadStatus})
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeIO, ErrCodeStoreFailed, "nothing"))

	t.Run("plain error", func(t *testing.T) {
		cause := fs.ErrPermission
		fe := WrapIO(cause, ErrCodeStoreFailed, "save message", ".folio/inbox.db")
		require.NotNil(t, fe)
		assert.Equal(t, ".folio/inbox.db", fe.Path)
		assert.ErrorIs(t, fe, fs.ErrPermission)
		assert.False(t, fe.Recoverable)
	})

	t.Run("folio error keeps context", func(t *testing.T) {
		inner := NewContentError(ErrCodeContentInvalid, "bad slug", nil).
			WithComponent("content").
			WithContext("slug", "Bad Slug")
		fe := Wrap(inner, ErrorTypeInternal, ErrCodeInternalError, "reload")

		assert.Equal(t, "content", fe.Component)
		assert.Equal(t, "Bad Slug", fe.Context["slug"])
		assert.True(t, fe.Recoverable)
		assert.ErrorIs(t, fe, &FolioError{Type: ErrorTypeContent, Code: ErrCodeContentInvalid})
	})

	t.Run("network errors are recoverable", func(t *testing.T) {
		fe := WrapNetwork(errors.New("connection refused"), ErrCodeRequestFailed, "post")
		assert.True(t, IsRecoverable(fe))
	})

	t.Run("content errors carry the path", func(t *testing.T) {
		fe := WrapContent(errors.New("line 3"), ErrCodeContentParse, "parse", "site.toml")
		assert.Equal(t, "site.toml", fe.Path)
		assert.Contains(t, fe.Error(), "line 3")
	})
}
