package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	tberrors "git.home.luguber.info/inful/texbuilder/internal/errors"
)

type tickEvent struct {
	Value int
}

func TestBus_PublishSubscribe(t *testing.T) {
	b := NewBus()
	defer b.Close()

	ch, unsubscribe := Subscribe[RebuildRequested](b, 1)
	defer unsubscribe()

	require.NoError(t, b.Publish(context.Background(), RebuildRequested{Path: "src/main.tex"}))

	select {
	case got := <-ch:
		require.Equal(t, "src/main.tex", got.Path)
	case <-time.After(250 * time.Millisecond):
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_OtherTypesAreNotDelivered(t *testing.T) {
	b := NewBus()
	defer b.Close()

	ch, unsubscribe := Subscribe[RebuildNow](b, 1)
	defer unsubscribe()

	require.NoError(t, b.Publish(context.Background(), RebuildRequested{}))
	select {
	case <-ch:
		t.Fatal("unexpected delivery")
	default:
	}
}

func TestBus_PublishBackpressure(t *testing.T) {
	b := NewBus()
	defer b.Close()

	_, unsubscribe := Subscribe[tickEvent](b, 0) // unbuffered; no receiver => blocks
	defer unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := b.Publish(ctx, tickEvent{Value: 1})
	require.Error(t, err)
	require.True(t, tberrors.IsCategory(err, tberrors.CategoryInterrupted))
	require.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestBus_UnsubscribeReleasesBlockedPublish(t *testing.T) {
	b := NewBus()
	defer b.Close()

	ch, unsubscribe := Subscribe[tickEvent](b, 0)

	published := make(chan error, 1)
	go func() { published <- b.Publish(context.Background(), tickEvent{Value: 1}) }()

	time.Sleep(20 * time.Millisecond)
	unsubscribe()

	select {
	case err := <-published:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("publish still blocked after unsubscribe")
	}
	_, ok := <-ch
	require.False(t, ok)
}

func TestBus_UnsubscribeDuringPublishDoesNotPanic(t *testing.T) {
	for range 200 {
		b := NewBus()
		unsubs := make([]func(), 0, 100)
		for range 100 {
			_, unsub := Subscribe[tickEvent](b, 1)
			unsubs = append(unsubs, unsub)
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for _, u := range unsubs {
				u()
			}
		}()
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			for range 3 {
				_ = b.Publish(ctx, tickEvent{Value: 1})
			}
		}()
		wg.Wait()
		b.Close()
	}
}

func TestBus_Close(t *testing.T) {
	b := NewBus()

	ch, _ := Subscribe[tickEvent](b, 1)
	b.Close()

	// Channel must be closed on bus close.
	_, ok := <-ch
	require.False(t, ok)

	err := b.Publish(context.Background(), tickEvent{Value: 1})
	require.ErrorIs(t, err, ErrBusClosed)

	late, _ := Subscribe[tickEvent](b, 1)
	_, ok = <-late
	require.False(t, ok)
}

func TestBus_PublishValidation(t *testing.T) {
	b := NewBus()
	defer b.Close()

	require.Error(t, b.Publish(context.Background(), nil))
	//nolint:staticcheck // nil context is the case under test
	require.Error(t, b.Publish(nil, tickEvent{}))
}
