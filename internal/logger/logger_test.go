package logger

import (
	"bytes"
	"log"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvLogger_Debug(t *testing.T) {
	tests := []struct {
		name      string
		envValue  string
		expectLog bool
	}{
		{name: "logs when PROCMON_DEBUG is set", envValue: "1", expectLog: true},
		{name: "logs when PROCMON_DEBUG is any value", envValue: "true", expectLog: true},
		{name: "does not log when PROCMON_DEBUG is empty", envValue: "", expectLog: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log.SetOutput(&buf)
			defer log.SetOutput(os.Stderr)

			t.Setenv(DebugEnv, tt.envValue)

			l := NewEnvLogger("[test]")
			l.Debug("test message %s", "arg")

			if tt.expectLog {
				assert.Contains(t, buf.String(), "[test] test message arg")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestEnvLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	l := NewEnvLogger("[gateway]")
	l.Info("ran %s", "vm_stat")
	l.Warn("slow command")
	l.Error("rejected")

	out := buf.String()
	assert.Contains(t, out, "[gateway] ran vm_stat")
	assert.Contains(t, out, "[gateway] WARN: slow command")
	assert.Contains(t, out, "[gateway] ERROR: rejected")
}

func TestWriterLogger(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		wantDebug bool
	}{
		{name: "debug enabled", debug: true, wantDebug: true},
		{name: "debug disabled", debug: false, wantDebug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewWriterLogger(&buf, "[collector]", tt.debug)

			l.Debug("cycle %d", 7)
			l.Warn("source %s failed", "gpu")

			out := buf.String()
			assert.Contains(t, out, "[collector] ")
			assert.Contains(t, out, "WARN: source gpu failed")
			if tt.wantDebug {
				assert.Contains(t, out, "DEBUG: cycle 7")
			} else {
				assert.NotContains(t, out, "cycle 7")
			}
		})
	}
}

func TestNoopLogger(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	l := Noop()
	l.Debug("debug")
	l.Info("info")
	l.Warn("warn")
	l.Error("error")

	assert.Empty(t, buf.String())
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("debug %s", "msg")
	l.Info("info %s", "msg")
	l.Warn("warn %s", "msg")
	l.Error("error %s", "msg")

	require.Len(t, l.Messages, 4)
	assert.Equal(t, LogMessage{Level: "debug", Message: "debug msg"}, l.Messages[0])
	assert.Equal(t, LogMessage{Level: "error", Message: "error msg"}, l.Messages[3])

	assert.True(t, l.HasLevel("warn"))
	assert.True(t, l.Contains("info", "info"))
	assert.False(t, l.Contains("info", "debug"))

	l.Clear()
	assert.Empty(t, l.Entries())
	assert.False(t, l.HasLevel("debug"))
}

func TestBufferLogger_Concurrent(t *testing.T) {
	l := NewBufferLogger()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.Debug("worker %d line %d", n, j)
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, l.Entries(), 400)
}

func TestDefault(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	assert.NotNil(t, Default())

	buf := NewBufferLogger()
	SetDefault(buf)
	assert.Equal(t, buf, Default())
}
