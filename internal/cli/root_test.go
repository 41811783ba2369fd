package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUnknownCommandError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "unknown command error", err: errors.New(`unknown command "foo" for "procmon"`), want: true},
		{name: "unknown flag error", err: errors.New(`unknown flag: --foo`), want: true},
		{name: "unknown shorthand", err: errors.New(`unknown shorthand flag: 'z' in -z`), want: true},
		{name: "other error", err: errors.New("collection failed"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUnknownCommandError(tt.err))
		})
	}
}

func TestExtractUnknownCommand(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "standard cobra format", err: errors.New(`unknown command "foo" for "procmon"`), want: "foo"},
		{name: "command with hyphen", err: errors.New(`unknown command "top-ten" for "procmon"`), want: "top-ten"},
		{name: "no quotes returns empty", err: errors.New("unknown command foo"), want: ""},
		{name: "single quote returns empty", err: errors.New(`unknown command "foo`), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractUnknownCommand(tt.err))
		})
	}
}

func TestUnknownCommandSuggestion(t *testing.T) {
	assert.Contains(t, unknownCommandSuggestion("4242"), "procmon kill 4242")
	assert.Contains(t, unknownCommandSuggestion("top"), "procmon --help")
	assert.Contains(t, unknownCommandSuggestion(""), "procmon --help")
}
