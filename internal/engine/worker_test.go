package engine_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/CaiJingLong/Tally/internal/engine"
	"github.com/CaiJingLong/Tally/internal/metrics"
	"github.com/CaiJingLong/Tally/internal/resource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu    sync.Mutex
	calls int
	last  []resource.Summary
}

func (p *recordingPublisher) Publish(_ []byte, list []resource.Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.last = list
}

func (p *recordingPublisher) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestWorker_SyncOnce(t *testing.T) {
	gen, _ := webGenerator(t, backupJSON(entryJSON("cert", "", unixDay(2025, 6, 5))))
	pub := &recordingPublisher{}
	m := metrics.New(prometheus.NewRegistry())

	w := &engine.Worker{Generator: gen, Config: webCfg, Publisher: pub, Metrics: m}

	require.NoError(t, w.SyncOnce(context.Background()))
	assert.Equal(t, 1, pub.Calls())
	require.Len(t, pub.last, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resources))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Expiring))
}

func TestWorker_SyncOnce_FailureKeepsLastSnapshot(t *testing.T) {
	f := new(MockFetcher)
	f.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("down"))

	pub := &recordingPublisher{}
	m := metrics.New(prometheus.NewRegistry())
	w := &engine.Worker{
		Generator: &engine.Generator{Clock: MockClock{CurrentTime: syncNow}, Fetcher: f},
		Config:    webCfg,
		Publisher: pub,
		Metrics:   m,
	}

	assert.Error(t, w.SyncOnce(context.Background()))
	assert.Equal(t, 0, pub.Calls(), "failed sync must not publish")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncTotal.WithLabelValues(metrics.ResultFailure)))
}

func TestWorker_Run_TriggerAndStop(t *testing.T) {
	gen := &engine.Generator{Clock: MockClock{CurrentTime: syncNow}, Fetcher: freshBodyFetcher{}}

	pub := &recordingPublisher{}
	trigger := make(chan struct{})
	w := &engine.Worker{Generator: gen, Config: webCfg, Publisher: pub, Trigger: trigger}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	assert.Eventually(t, func() bool { return pub.Calls() == 1 }, time.Second, 5*time.Millisecond, "initial sync")

	trigger <- struct{}{}
	assert.Eventually(t, func() bool { return pub.Calls() == 2 }, time.Second, 5*time.Millisecond, "triggered sync")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

func TestWorker_Run_Interval(t *testing.T) {
	gen := &engine.Generator{Clock: MockClock{CurrentTime: syncNow}, Fetcher: freshBodyFetcher{}}
	pub := &recordingPublisher{}
	w := &engine.Worker{Generator: gen, Config: webCfg, Publisher: pub, Interval: 10 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	assert.Eventually(t, func() bool { return pub.Calls() >= 3 }, time.Second, 5*time.Millisecond)
}

// freshBodyFetcher returns a new reader on every call so repeated syncs
// never see an exhausted body.
type freshBodyFetcher struct{}

func (freshBodyFetcher) Fetch(context.Context, string, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(backupJSON())), nil
}
