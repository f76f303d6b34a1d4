package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/peertrade/escrowd/internal/config"
	"github.com/peertrade/escrowd/internal/escrow"
	testhelpers "github.com/peertrade/escrowd/internal/test"
	"github.com/peertrade/escrowd/internal/worker"
)

// idleStream blocks until cancellation, standing in for the kafka feed.
type idleStream struct{}

func (idleStream) Run(ctx context.Context, handler escrow.Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func newTestManager(facade *TradeFacade) *worker.SubscriptionManager {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return worker.NewSubscriptionManager(facade, idleStream{}, 10*time.Millisecond, logger)
}

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.Config{RunAddress: ":9999"}
	router := gin.New()
	server := newHTTPServer(serverParams{Config: cfg, Router: router})
	if server.Addr != ":9999" {
		t.Fatalf("expected address :9999, got %q", server.Addr)
	}
	if server.Handler != router {
		t.Fatalf("expected handler to be router")
	}
}

func TestNewSubscriptionManager(t *testing.T) {
	f := newFacadeFixture()
	manager := newSubscriptionManager(managerParams{
		Facade: f.facade,
		Stream: idleStream{},
		Logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
	if manager == nil {
		t.Fatal("expected subscription manager instance")
	}
}

func TestRegisterLifecycleStartStop(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
	f := newFacadeFixture()
	manager := newTestManager(f.facade)
	cfg := &config.Config{ShutdownTimeout: 100 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registerLifecycle(lifecycleParams{
		Ctx:        ctx,
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     logger,
		Server:     server,
		Facade:     f.facade,
		Manager:    manager,
		Config:     cfg,
	})

	if len(recorder.Hooks) != 1 {
		t.Fatalf("expected one hook registered, got %d", len(recorder.Hooks))
	}

	hook := recorder.Hooks[0]
	if err := hook.OnStart(context.Background()); err != nil {
		t.Fatalf("on start failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hook.OnStop(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected on stop to finish")
	}
}

func TestRegisterLifecycleBindsWatcher(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	f := newFacadeFixture()
	manager := newTestManager(f.facade)

	registerLifecycle(lifecycleParams{
		Ctx:        context.Background(),
		Lifecycle:  recorder,
		Shutdowner: &testhelpers.ShutdownerStub{},
		Logger:     slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Server:     &http.Server{Addr: "127.0.0.1:0"},
		Facade:     f.facade,
		Manager:    manager,
		Config:     &config.Config{ShutdownTimeout: time.Second},
	})

	if f.facade.watcher != manager {
		t.Fatal("expected manager bound as hold watcher")
	}
}

func TestRegisterLifecycleShutdownOnServerError(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	server := &http.Server{Addr: "bad addr"}
	f := newFacadeFixture()
	manager := newTestManager(f.facade)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registerLifecycle(lifecycleParams{
		Ctx:        ctx,
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     logger,
		Server:     server,
		Facade:     f.facade,
		Manager:    manager,
		Config:     &config.Config{ShutdownTimeout: time.Second},
	})

	hook := recorder.Hooks[0]
	if err := hook.OnStart(context.Background()); err != nil {
		t.Fatalf("on start returned error: %v", err)
	}

	select {
	case <-shutdowner.Called:
	case <-time.After(time.Second):
		t.Fatal("expected shutdown to be triggered on server error")
	}

	_ = hook.OnStop(context.Background())
}

var _ escrow.Stream = idleStream{}
