package main

import (
	"errors"
	"net/http"
	"os"
	osSignal "os/signal"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type countingReloader struct {
	calls atomic.Int32
	err   error
}

func (c *countingReloader) Reload() error {
	c.calls.Add(1)
	return c.err
}

func TestShutdownSignals(t *testing.T) {
	t.Cleanup(func() {
		signalNotify = osSignal.Notify
	})

	signalNotify = func(ch chan<- os.Signal, sig ...os.Signal) {
		go func() {
			ch <- syscall.SIGTERM
		}()
	}

	server := &http.Server{}
	called := make(chan struct{}, 1)
	server.RegisterOnShutdown(func() {
		called <- struct{}{}
	})

	reloads := &countingReloader{}
	waitForSignals(reloads, server, time.Millisecond, zaptest.NewLogger(t))

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatalf("expected server shutdown callback to execute")
	}
	if reloads.calls.Load() != 0 {
		t.Fatalf("expected no reloads, got %d", reloads.calls.Load())
	}
}

func TestReloadSignal(t *testing.T) {
	t.Cleanup(func() {
		signalNotify = osSignal.Notify
	})

	signalNotify = func(ch chan<- os.Signal, sig ...os.Signal) {
		go func() {
			ch <- syscall.SIGHUP
			ch <- syscall.SIGHUP
			ch <- syscall.SIGINT
		}()
	}

	server := &http.Server{}
	reloads := &countingReloader{err: errors.New("bad routes file")}
	waitForSignals(reloads, server, time.Millisecond, zaptest.NewLogger(t))

	if got := reloads.calls.Load(); got != 2 {
		t.Fatalf("expected 2 reloads, got %d", got)
	}
}
