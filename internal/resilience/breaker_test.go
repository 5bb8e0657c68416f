package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	var transitions []string
	b := New(Settings{
		Failures: 2,
		Cooldown: time.Minute,
		Now:      clock.Now,
		OnStateChange: func(from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	require.NoError(t, b.Allow())
	b.Done(false)
	require.Equal(t, StateClosed, b.State())

	require.NoError(t, b.Allow())
	b.Done(false)
	require.Equal(t, StateOpen, b.State())
	require.ErrorIs(t, b.Allow(), ErrOpen)

	clock.now = clock.now.Add(time.Minute)
	require.Equal(t, StateHalfOpen, b.State())

	// Only one probe while half-open.
	require.NoError(t, b.Allow())
	require.ErrorIs(t, b.Allow(), ErrOpen)
	b.Done(true)
	require.Equal(t, StateClosed, b.State())

	require.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := New(Settings{Failures: 1, Cooldown: time.Second, Now: clock.Now})

	require.NoError(t, b.Allow())
	b.Done(false)
	clock.now = clock.now.Add(time.Second)

	require.NoError(t, b.Allow())
	b.Done(false)
	require.Equal(t, StateOpen, b.State())
	require.ErrorIs(t, b.Allow(), ErrOpen)
}

func TestBreakerSuccessResetsCount(t *testing.T) {
	b := New(Settings{Failures: 2})
	require.NoError(t, b.Allow())
	b.Done(false)
	require.NoError(t, b.Allow())
	b.Done(true)
	require.NoError(t, b.Allow())
	b.Done(false)
	require.Equal(t, StateClosed, b.State())
}

func TestBreakerDisabled(t *testing.T) {
	b := New(Settings{})
	for i := 0; i < 10; i++ {
		require.NoError(t, b.Allow())
		b.Done(false)
	}

	var nilBreaker *Breaker
	require.NoError(t, nilBreaker.Allow())
	nilBreaker.Done(false)
}

func TestBreakerCancelRecordsNothing(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := New(Settings{Failures: 1, Cooldown: time.Second, Now: clock.Now})

	require.NoError(t, b.Allow())
	b.Cancel()
	require.Equal(t, StateClosed, b.State())

	require.NoError(t, b.Allow())
	b.Done(false)
	clock.now = clock.now.Add(time.Second)

	// An abandoned probe frees the slot without reopening.
	require.NoError(t, b.Allow())
	b.Cancel()
	require.Equal(t, StateHalfOpen, b.State())
	require.NoError(t, b.Allow())
	b.Done(true)
	require.Equal(t, StateClosed, b.State())

	var nilBreaker *Breaker
	nilBreaker.Cancel()
}
