package mock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

func req(ref string) domain.ResolveRequest {
	return domain.ResolveRequest{Reference: ref, Purpose: domain.PurposePlayback}
}

func TestResolveDefaults(t *testing.T) {
	r := NewResolver()

	res, err := r.Resolve(context.Background(), req("a"))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, AudioFor("a"), res.Audio)

	r.SetAudio("b", []byte{1, 2, 3})
	res, err = r.Resolve(context.Background(), req("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, res.Audio)

	assert.Equal(t, 2, r.CallCount())
	assert.Equal(t, 1, r.CallsFor("a"))
}

func TestResolveFailureKnobs(t *testing.T) {
	r := NewResolver()
	boom := errors.New("boom")

	r.SetRefuse("a", true)
	res, err := r.Resolve(context.Background(), req("a"))
	require.NoError(t, err)
	assert.False(t, res.Success)

	r.SetError("b", boom)
	_, err = r.Resolve(context.Background(), req("b"))
	assert.ErrorIs(t, err, boom)

	r.SetError("b", nil)
	_, err = r.Resolve(context.Background(), req("b"))
	assert.NoError(t, err)

	r.SetPanic("c", true)
	assert.Panics(t, func() { _, _ = r.Resolve(context.Background(), req("c")) })
}

func TestHoldAndRelease(t *testing.T) {
	r := NewResolver()
	r.Hold("a")

	done := make(chan domain.ResolveResult, 1)
	go func() {
		res, _ := r.Resolve(context.Background(), req("a"))
		done <- res
	}()

	entered := <-r.Entered()
	assert.Equal(t, "a", entered.Reference)

	// other references pass
	res, err := r.Resolve(context.Background(), req("b"))
	require.NoError(t, err)
	assert.True(t, res.Success)
	<-r.Entered()

	select {
	case <-done:
		t.Fatal("held call returned early")
	case <-time.After(20 * time.Millisecond):
	}

	r.Release("a")
	select {
	case res := <-done:
		assert.True(t, res.Success)
	case <-time.After(time.Second):
		t.Fatal("held call not released")
	}
}

func TestHoldHonoursContext(t *testing.T) {
	r := NewResolver()
	r.Hold(AnyReference)
	defer r.ReleaseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := r.Resolve(ctx, req("a"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
