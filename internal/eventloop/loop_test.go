package eventloop

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wagiedev/ipclink-go/internal/errors"
)

type destroyable struct {
	destroyed int
}

func (d *destroyable) Destroy() { d.destroyed++ }

func TestLoop_ProcessPendingRunsInOrder(t *testing.T) {
	loop := New(slog.Default())

	var got []int

	loop.CallLater(func() { got = append(got, 1) })
	loop.CallLater(func() { got = append(got, 2) })

	require.Equal(t, 2, loop.Pending())
	require.Equal(t, 2, loop.ProcessPending())
	require.Equal(t, []int{1, 2}, got)
	require.Zero(t, loop.Pending())
}

func TestLoop_TasksPostedDuringTurnRunNextTurn(t *testing.T) {
	loop := New(slog.Default())

	var got []string

	loop.CallLater(func() {
		got = append(got, "outer")
		loop.CallLater(func() { got = append(got, "inner") })
	})

	require.Equal(t, 1, loop.ProcessPending())
	require.Equal(t, []string{"outer"}, got)

	require.Equal(t, 1, loop.ProcessPending())
	require.Equal(t, []string{"outer", "inner"}, got)
}

func TestLoop_DeleteLater(t *testing.T) {
	loop := New(slog.Default())
	d := &destroyable{}

	loop.DeleteLater(d)
	require.Zero(t, d.destroyed)

	loop.ProcessPending()
	require.Equal(t, 1, d.destroyed)
}

func TestLoop_RunExecutesTasksFromOtherGoroutines(t *testing.T) {
	loop := New(slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup

	count := 0

	for range 10 {
		wg.Go(func() {
			loop.CallLater(func() { count++ })
		})
	}

	go func() {
		wg.Wait()
		loop.CallLater(loop.Quit)
	}()

	err := loop.Run(ctx)
	require.ErrorIs(t, err, errors.ErrLoopStopped)
	require.Equal(t, 10, count)
}

func TestLoop_RunStopsOnContextCancel(t *testing.T) {
	loop := New(slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, loop.Run(ctx), context.Canceled)
}

func TestLoop_QuitMultipleTimes(t *testing.T) {
	loop := New(slog.Default())

	require.NotPanics(t, func() {
		loop.Quit()
		loop.Quit()
	})
}
