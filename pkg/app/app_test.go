package app

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	started  atomic.Bool
	stopped  atomic.Bool
	graceful atomic.Bool
}

func (s *fakeServer) Start() error {
	s.started.Store(true)
	return nil
}

func (s *fakeServer) Stop() error {
	s.stopped.Store(true)
	return nil
}

type fakeGracefulServer struct {
	fakeServer
}

func (s *fakeGracefulServer) GracefulStop() error {
	s.graceful.Store(true)
	s.stopped.Store(true)
	return nil
}

type orderedCloser struct {
	name  string
	mu    *sync.Mutex
	order *[]string
}

func (c *orderedCloser) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	*c.order = append(*c.order, c.name)
	return nil
}

func TestBaseAppRunAndShutdown(t *testing.T) {
	a := NewBaseApp(
		WithName("test-app"),
		WithVersion("v0.0.1"),
		WithStopTimeout(2*time.Second),
	)

	srv := &fakeServer{}
	gsrv := &fakeGracefulServer{}
	a.AppendServer(srv, gsrv)

	var mu sync.Mutex
	var order []string
	a.AppendCloser(
		&orderedCloser{name: "first", mu: &mu, order: &order},
		&orderedCloser{name: "second", mu: &mu, order: &order},
		&orderedCloser{name: "third", mu: &mu, order: &order},
	)

	runErr := make(chan error, 1)
	go func() {
		runErr <- a.Run()
	}()

	require.Eventually(t, func() bool {
		return srv.started.Load() && gsrv.started.Load()
	}, 2*time.Second, 10*time.Millisecond, "servers should start")

	require.NoError(t, a.Shutdown())

	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}

	assert.True(t, srv.stopped.Load())
	assert.True(t, gsrv.stopped.Load())
	assert.True(t, gsrv.graceful.Load(), "graceful server should use GracefulStop")

	// Closer 按注册的逆序关闭
	assert.Equal(t, []string{"third", "second", "first"}, order)
}

func TestBaseAppRunTwice(t *testing.T) {
	a := NewBaseApp(WithName("twice"))

	go func() {
		_ = a.Run()
	}()

	require.Eventually(t, func() bool {
		return a.started.Load()
	}, 2*time.Second, 10*time.Millisecond)

	err := a.Run()
	assert.ErrorIs(t, err, ErrAppAlreadyRunning)

	require.NoError(t, a.Shutdown())
}

func TestBaseAppShutdownIdempotent(t *testing.T) {
	a := NewBaseApp(WithName("idempotent"))
	require.NoError(t, a.Shutdown())
	require.NoError(t, a.Shutdown())
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, 30*time.Second, o.StopTimeout)
	assert.NotNil(t, o.Logger)
}

func TestWithOptions(t *testing.T) {
	o := DefaultOptions()
	for _, opt := range []Option{
		WithID("custom-id"),
		WithName("custom"),
		WithVersion("v9.9.9"),
		WithStopTimeout(time.Second),
	} {
		opt(&o)
	}

	assert.Equal(t, "custom-id", o.ID)
	assert.Equal(t, "custom", o.Name)
	assert.Equal(t, "v9.9.9", o.Version)
	assert.Equal(t, time.Second, o.StopTimeout)
}

func TestGetInfo(t *testing.T) {
	info := GetInfo()
	assert.NotEmpty(t, info.AppName)
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.Platform)
	assert.Contains(t, info.String(), info.AppName)
	assert.Contains(t, info.String(), info.Version)
}
