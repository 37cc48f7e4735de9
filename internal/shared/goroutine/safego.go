// Package goroutine provides utilities for safely launching goroutines with panic recovery.
package goroutine

import (
	"fmt"
	"runtime/debug"
	"time"

	"tgnotify/internal/shared/logger"
)

// SafeGo launches a goroutine with panic recovery. If the goroutine panics,
// the panic is caught and logged with stack trace instead of crashing the process.
func SafeGo(log logger.Interface, name string, fn func()) {
	go func() {
		defer recoverAndLog(log, name)
		fn()
	}()
}

// Every runs fn on each tick of interval until done is closed. A panic inside
// fn is logged and the loop keeps ticking. The returned channel is closed once
// the loop has exited.
func Every(log logger.Interface, name string, interval time.Duration, done <-chan struct{}, fn func()) <-chan struct{} {
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				runOnce(log, name, fn)
			case <-done:
				return
			}
		}
	}()
	return exited
}

func runOnce(log logger.Interface, name string, fn func()) {
	defer recoverAndLog(log, name)
	fn()
}

func recoverAndLog(log logger.Interface, name string) {
	if r := recover(); r != nil {
		log.Errorw("goroutine panicked",
			"goroutine", name,
			"panic", fmt.Sprintf("%v", r),
			"stack", string(debug.Stack()),
		)
	}
}
