package collector

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceResult_Lifecycle(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	slot := NewSourceResult[int]("test")

	v := slot.Read()
	assert.Equal(t, StateIdle, v.State)
	assert.False(t, v.HasPayload)
	assert.Equal(t, "test", slot.Name())

	slot.Begin()
	assert.Equal(t, StateRunning, slot.Read().State)

	slot.Complete(42, t0)
	v = slot.Read()
	assert.Equal(t, StateCompleted, v.State)
	assert.Equal(t, 42, v.Payload)
	assert.True(t, v.HasPayload)
	assert.Equal(t, t0, v.UpdatedAt)
	assert.False(t, v.Stale)

	slot.Begin()
	v = slot.Read()
	assert.Equal(t, StateRunning, v.State)
	assert.Equal(t, 42, v.Payload, "running keeps the last payload readable")

	boom := errors.New("boom")
	slot.Fail(boom)
	v = slot.Read()
	assert.Equal(t, StateFailed, v.State)
	assert.Equal(t, 42, v.Payload)
	assert.Equal(t, t0, v.UpdatedAt, "failure does not touch the timestamp")
	assert.True(t, v.Stale)
	assert.ErrorIs(t, v.Err, boom)

	slot.Begin()
	slot.Complete(43, t0.Add(time.Second))
	v = slot.Read()
	assert.Equal(t, 43, v.Payload)
	assert.NoError(t, v.Err)
	assert.False(t, v.Stale)
}

func TestSourceResult_FailWithoutPayload(t *testing.T) {
	slot := NewSourceResult[string]("test")
	slot.Begin()
	slot.Fail(errors.New("nope"))

	v := slot.Read()
	assert.Equal(t, StateFailed, v.State)
	assert.False(t, v.HasPayload)
	assert.False(t, v.Stale)
}

func TestSourceView_Usable(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	staleAfter := 10 * time.Second

	tests := []struct {
		name string
		view SourceView[int]
		want bool
	}{
		{
			name: "never completed",
			view: SourceView[int]{State: StateIdle},
			want: false,
		},
		{
			name: "fresh completion",
			view: SourceView[int]{State: StateCompleted, HasPayload: true, UpdatedAt: now.Add(-time.Second)},
			want: true,
		},
		{
			name: "running keeps payload but is not overlaid",
			view: SourceView[int]{State: StateRunning, HasPayload: true, UpdatedAt: now.Add(-2 * time.Second)},
			want: false,
		},
		{
			name: "failed keeps payload but is not overlaid",
			view: SourceView[int]{State: StateFailed, HasPayload: true, UpdatedAt: now.Add(-time.Second)},
			want: false,
		},
		{
			name: "too old",
			view: SourceView[int]{State: StateCompleted, HasPayload: true, UpdatedAt: now.Add(-11 * time.Second)},
			want: false,
		},
		{
			name: "exactly at the limit",
			view: SourceView[int]{State: StateCompleted, HasPayload: true, UpdatedAt: now.Add(-staleAfter)},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.view.Usable(now, staleAfter))
		})
	}
}

func TestSourceView_AgeNeverCompleted(t *testing.T) {
	var v SourceView[int]
	require.Greater(t, v.Age(time.Now()), 100*365*24*time.Hour)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "completed", StateCompleted.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(99).String())
}
