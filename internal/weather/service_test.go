package weather

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeProvider returns a fixed summary or error after an optional delay.
type fakeProvider struct {
	source  Source
	summary Summary
	err     error
	delay   time.Duration
	calls   atomic.Int32
}

func (f *fakeProvider) Source() Source { return f.source }

func (f *fakeProvider) Fetch(ctx context.Context, window TimeWindow) (Summary, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return Summary{}, f.err
	}
	return f.summary, nil
}

func okProvider(src Source, avg float64) *fakeProvider {
	return &fakeProvider{
		source: src,
		summary: Summary{
			Source:  src.DisplayName(),
			AvgTemp: avg, MinTemp: avg - 1, MaxTemp: avg + 1,
		},
	}
}

func testWindow(t *testing.T) TimeWindow {
	t.Helper()
	w, err := NextHours(base, 24)
	require.NoError(t, err)
	return w
}

func TestRunSingleSource(t *testing.T) {
	om := okProvider(SourceOpenMeteo, 10)
	wa := okProvider(SourceWeatherAPI, 20)
	svc := NewService(zap.NewNop().Sugar(), []Provider{om, wa})

	got, err := svc.Run(context.Background(), testWindow(t), SourceWeatherAPI, true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "WeatherAPI", got[0].Source)
	assert.Equal(t, int32(0), om.calls.Load())
}

func TestRunAllKeepsCallOrderAndAppendsAggregate(t *testing.T) {
	// The first provider finishes last; output order must not follow completion order.
	om := okProvider(SourceOpenMeteo, 10)
	om.delay = 30 * time.Millisecond
	wa := okProvider(SourceWeatherAPI, 20)
	vc := okProvider(SourceVisualCrossing, 30)
	svc := NewService(zap.NewNop().Sugar(), []Provider{om, wa, vc})

	got, err := svc.Run(context.Background(), testWindow(t), SourceAll, true)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "Open-Meteo", got[0].Source)
	assert.Equal(t, "WeatherAPI", got[1].Source)
	assert.Equal(t, "Visual Crossing", got[2].Source)
	assert.Equal(t, AggregateSource, got[3].Source)
	assert.Equal(t, 20.0, got[3].AvgTemp)
}

func TestRunDropsFailedSources(t *testing.T) {
	om := okProvider(SourceOpenMeteo, 10)
	wa := &fakeProvider{source: SourceWeatherAPI, err: fmt.Errorf("timeout: %w", ErrSourceUnavailable)}
	vc := &fakeProvider{source: SourceVisualCrossing, err: fmt.Errorf("vc: %w", ErrNoData)}
	svc := NewService(zap.NewNop().Sugar(), []Provider{om, wa, vc})

	got, err := svc.Run(context.Background(), testWindow(t), SourceAll, true)
	require.NoError(t, err)
	// A single survivor is never aggregated.
	require.Len(t, got, 1)
	assert.Equal(t, "Open-Meteo", got[0].Source)
}

func TestRunWithoutAggregate(t *testing.T) {
	svc := NewService(zap.NewNop().Sugar(), []Provider{
		okProvider(SourceOpenMeteo, 10),
		okProvider(SourceWeatherAPI, 20),
	})

	got, err := svc.Run(context.Background(), testWindow(t), SourceAll, false)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRunAllSourcesFailed(t *testing.T) {
	svc := NewService(zap.NewNop().Sugar(), []Provider{
		&fakeProvider{source: SourceOpenMeteo, err: ErrSourceUnavailable},
		&fakeProvider{source: SourceWeatherAPI, err: ErrSourceUnavailable},
	})

	got, err := svc.Run(context.Background(), testWindow(t), SourceAll, true)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRunRejectsBadInput(t *testing.T) {
	svc := NewService(zap.NewNop().Sugar(), []Provider{okProvider(SourceOpenMeteo, 10)})

	_, err := svc.Run(context.Background(), TimeWindow{Start: base, End: base}, SourceAll, false)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = svc.Run(context.Background(), testWindow(t), Source("nope"), false)
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestRunUnconfiguredSource(t *testing.T) {
	svc := NewService(zap.NewNop().Sugar(), []Provider{okProvider(SourceOpenMeteo, 10)})

	got, err := svc.Run(context.Background(), testWindow(t), SourceVisualCrossing, false)
	require.NoError(t, err)
	assert.Empty(t, got)
}
