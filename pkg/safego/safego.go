// Package safego starts goroutines that log panics instead of crashing
// the process.
package safego

import (
	"runtime/debug"
	"sync"

	"github.com/grovetools/luminashot/logging"
)

// PanicHandler receives details of a recovered panic.
type PanicHandler func(name string, recovered any, stack []byte)

var (
	panicHandlerMu sync.RWMutex
	panicHandler   PanicHandler
)

// SetPanicHandler registers a handler called after every recovered panic.
// Pass nil to remove it.
func SetPanicHandler(handler PanicHandler) {
	panicHandlerMu.Lock()
	panicHandler = handler
	panicHandlerMu.Unlock()
}

// Run calls fn and recovers a panic it raises. Runtime-fatal errors such as
// concurrent map writes are not recoverable.
func Run(name string, fn func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if name == "" {
			name = "goroutine"
		}
		stack := debug.Stack()
		logging.NewLogger("safego").
			WithField("goroutine", name).
			WithField("panic", r).
			Errorf("Recovered panic\n%s", stack)

		panicHandlerMu.RLock()
		handler := panicHandler
		panicHandlerMu.RUnlock()
		if handler != nil {
			func() {
				defer func() { _ = recover() }()
				handler(name, r, stack)
			}()
		}
	}()
	fn()
}

// Go runs fn in a new goroutine with panic recovery.
func Go(name string, fn func()) {
	go Run(name, fn)
}
