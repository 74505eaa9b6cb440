package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reposcope/internal/core/domain"
)

func TestDecodeWorker_DecodesUnicode(t *testing.T) {
	w := NewDecodeWorker()
	defer w.Close()

	res := <-w.Decode(context.Background(), domain.DecodeRequest{Payload: Base64EncodeUnicode("grüße")})
	require.NoError(t, res.Err)
	assert.Equal(t, "grüße", res.Text)
}

func TestDecodeWorker_RawMode(t *testing.T) {
	w := NewDecodeWorker()
	defer w.Close()

	res := <-w.Decode(context.Background(), domain.DecodeRequest{
		Payload: encodeBytes([]byte{0xC0, 0xFF}),
		Raw:     true,
	})
	require.NoError(t, res.Err)
	assert.Equal(t, "Àÿ", res.Text)
}

func TestDecodeWorker_ReportsDecodeFailure(t *testing.T) {
	w := NewDecodeWorker()
	defer w.Close()

	res := <-w.Decode(context.Background(), domain.DecodeRequest{Payload: encodeBytes([]byte{0xFF, 0xFE, 0x00})})
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, domain.ErrDecodeFailed)
	assert.Empty(t, res.Text)
}

func TestDecodeWorker_ConcurrentRequestsGetOwnResults(t *testing.T) {
	w := NewDecodeWorker()
	defer w.Close()

	const n = 50
	var wg sync.WaitGroup
	results := make([]domain.DecodeResult, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := Base64EncodeUnicode(fmt.Sprintf("file-%d", i))
			results[i] = <-w.Decode(context.Background(), domain.DecodeRequest{Payload: payload})
		}(i)
	}
	wg.Wait()

	for i, res := range results {
		require.NoError(t, res.Err)
		assert.Equal(t, fmt.Sprintf("file-%d", i), res.Text)
	}
}

func TestDecodeWorker_DecodeAfterClose(t *testing.T) {
	w := NewDecodeWorker()
	require.NoError(t, w.Close())
	assert.True(t, w.Closed())

	res := <-w.Decode(context.Background(), domain.DecodeRequest{Payload: Base64EncodeUnicode("late")})
	assert.ErrorIs(t, res.Err, domain.ErrWorkerClosed)
}

func TestDecodeWorker_CloseIsIdempotent(t *testing.T) {
	w := NewDecodeWorker()
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

func TestDecodeWorker_CancelledContext(t *testing.T) {
	w := NewDecodeWorker()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := <-w.Decode(ctx, domain.DecodeRequest{Payload: Base64EncodeUnicode("x")})
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestDecodeWorker_EveryRequestAnsweredAcrossClose(t *testing.T) {
	w := NewDecodeWorker()

	const n = 100
	chans := make([]<-chan domain.DecodeResult, 0, n)
	for i := 0; i < n; i++ {
		chans = append(chans, w.Decode(context.Background(), domain.DecodeRequest{Payload: Base64EncodeUnicode("x")}))
	}
	require.NoError(t, w.Close())

	for _, ch := range chans {
		res := <-ch
		if res.Err != nil {
			assert.ErrorIs(t, res.Err, domain.ErrWorkerClosed)
		} else {
			assert.Equal(t, "x", res.Text)
		}
	}
}

func TestDecoderFactory_ReturnsIndependentWorkers(t *testing.T) {
	factory := NewDecoderFactory()
	a := factory()
	b := factory()
	require.NoError(t, a.Close())

	res := <-b.Decode(context.Background(), domain.DecodeRequest{Payload: Base64EncodeUnicode("ok")})
	require.NoError(t, res.Err)
	assert.Equal(t, "ok", res.Text)
	require.NoError(t, b.Close())
}
