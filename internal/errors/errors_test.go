package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrGateway,
		ErrParse,
		ErrTimeout,
		ErrLimit,
		ErrFilter,
		ErrProcess,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Invalid configuration in .procmon.yaml",
			suggestion: "Check your configuration file syntax",
		},
		{
			name:       "gateway error",
			code:       ErrGateway,
			message:    "Command not in allow-list: rm",
			suggestion: "Only read-only inspection tools can be run",
		},
		{
			name:       "filter error",
			code:       ErrFilter,
			message:    "Invalid range filter [10,",
			suggestion: "Use [min,max], e.g. [100MB,1GB]",
		},
		{
			name:       "process error",
			code:       ErrProcess,
			message:    "Refusing to terminate system process 1",
			suggestion: "Pass --force to override",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name:          "basic error formatting",
			err:           New(ErrConfig, "Invalid configuration", "Check .procmon.yaml syntax"),
			expectedParts: []string{"✗", "Invalid configuration", "Check .procmon.yaml syntax"},
		},
		{
			name:          "error without suggestion",
			err:           New(ErrParse, "Unexpected output", ""),
			expectedParts: []string{"Unexpected output"},
			notExpected:   []string{"\n\n  \n"},
		},
		{
			name:          "error with cause",
			err:           WrapWithCode(fmt.Errorf("exit status 1"), ErrGateway, "vm_stat failed", ""),
			expectedParts: []string{"vm_stat failed", "exit status 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.err.Error()
			for _, part := range tt.expectedParts {
				assert.Contains(t, output, part)
			}
			for _, part := range tt.notExpected {
				assert.NotContains(t, output, part)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("executable file not found in $PATH")
	wrapped := Wrap(cause, "nettop failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrGateway, wrapped.Code, "Wrap should default to ErrGateway code")
	assert.Equal(t, "nettop failed", wrapped.Message)
	assert.Equal(t, cause, wrapped.Cause)
	assert.True(t, errors.Is(wrapped, cause))
}

func TestWrapWithCode(t *testing.T) {
	cause := errors.New("file not found")
	wrapped := WrapWithCode(cause, ErrConfig, "Failed to load config", "Run: procmon config init")

	assert.Equal(t, ErrConfig, wrapped.Code)
	assert.Equal(t, "Run: procmon config init", wrapped.Suggestion)
	assert.Equal(t, cause, wrapped.Unwrap())
	assert.Contains(t, wrapped.Error(), "file not found")
}

func TestNewUnsupported(t *testing.T) {
	err := NewUnsupported("network", "linux")

	assert.Equal(t, ErrGateway, err.Code)
	assert.Contains(t, err.Message, "network")
	assert.Contains(t, err.Message, "linux")
}

func TestIsCode(t *testing.T) {
	err := New(ErrConfig, "Config error", "")

	assert.True(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(err, ErrGateway))
	assert.False(t, IsCode(errors.New("standard error"), ErrConfig))
	assert.False(t, IsCode(nil, ErrConfig))
	assert.True(t, IsCode(fmt.Errorf("outer: %w", err), ErrConfig))
}

func TestCode(t *testing.T) {
	assert.Equal(t, ErrFilter, Code(New(ErrFilter, "bad", "")))
	assert.Equal(t, ErrTimeout, Code(fmt.Errorf("cycle: %w", New(ErrTimeout, "slow", ""))))
	assert.Equal(t, "", Code(errors.New("plain")))
	assert.Equal(t, "", Code(nil))
}

func TestErrorMessageStructure(t *testing.T) {
	err := WrapWithCode(
		errors.New("context deadline exceeded"),
		ErrTimeout,
		"Collection cycle exceeded its budget",
		"Raise collector.cycle_budget",
	)

	lines := strings.Split(err.Error(), "\n")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[0]), "✗"))
	assert.Contains(t, lines[0], "Collection cycle exceeded its budget")
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOk   bool
	}{
		{name: "ExitError returns code", err: NewExitError(42), wantCode: 42, wantOk: true},
		{name: "wrapped ExitError", err: fmt.Errorf("kill: %w", NewExitError(3)), wantCode: 3, wantOk: true},
		{name: "standard error", err: errors.New("standard error"), wantOk: false},
		{name: "nil error", err: nil, wantOk: false},
		{name: "structured Error", err: New(ErrProcess, "test", ""), wantOk: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := GetExitCode(tt.err)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestExitError_Message(t *testing.T) {
	assert.Equal(t, "exit code 137", NewExitError(137).Error())
}

func TestHeadline(t *testing.T) {
	assert.Equal(t, "", Headline(nil))
	assert.Equal(t, "boom", Headline(errors.New("boom")))

	err := WrapWithCode(errors.New("exit status 1"), ErrProcess, "Couldn't send SIGTERM", "try sudo")
	assert.Equal(t, "Couldn't send SIGTERM", Headline(err))
	assert.Equal(t, "Couldn't send SIGTERM", Headline(fmt.Errorf("kill: %w", err)))
}
