// Package profiling records how long each phase of a capture takes.
package profiling

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// Stopper ends a timed span.
type Stopper interface {
	Stop()
}

type span struct {
	name     string
	start    time.Time
	duration time.Duration
	children []*span
	profiler *Profiler
}

func (s *span) Stop() {
	s.profiler.endSpan(s)
}

// Profiler collects nested spans. The zero value is disabled.
type Profiler struct {
	mu      sync.Mutex
	enabled bool
	now     func() time.Time
	root    *span
	stack   []*span
}

var defaultProfiler = &Profiler{}

// Enable turns on the global profiler.
func Enable() {
	defaultProfiler.Enable()
}

// Enabled reports whether the global profiler records spans.
func Enabled() bool {
	defaultProfiler.mu.Lock()
	defer defaultProfiler.mu.Unlock()
	return defaultProfiler.enabled
}

// Reset disables the global profiler and drops recorded spans.
func Reset() {
	defaultProfiler.mu.Lock()
	defer defaultProfiler.mu.Unlock()
	defaultProfiler.enabled = false
	defaultProfiler.root = nil
	defaultProfiler.stack = nil
}

// Start opens a span on the global profiler, nested under the innermost open
// span. Use it as defer profiling.Start("capture").Stop().
func Start(name string) Stopper {
	return defaultProfiler.Start(name)
}

// Summarize writes the global profile to w.
func Summarize(w io.Writer) {
	defaultProfiler.Summarize(w)
}

// Enable starts recording. Calling it twice keeps the existing spans.
func (p *Profiler) Enable() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enabled {
		return
	}
	if p.now == nil {
		p.now = time.Now
	}
	p.enabled = true
	p.root = &span{name: "total", start: p.now(), profiler: p}
	p.stack = []*span{p.root}
}

// Start opens a span.
func (p *Profiler) Start(name string) Stopper {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return noopStopper{}
	}

	parent := p.stack[len(p.stack)-1]
	s := &span{name: name, start: p.now(), profiler: p}
	parent.children = append(parent.children, s)
	p.stack = append(p.stack, s)
	return s
}

func (p *Profiler) endSpan(s *span) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s.duration == 0 {
		s.duration = p.now().Sub(s.start)
	}
	// Pop s and anything opened under it that was never stopped.
	for i := len(p.stack) - 1; i > 0; i-- {
		if p.stack[i] == s {
			p.stack = p.stack[:i]
			return
		}
	}
}

// Summarize writes one line per span, indented by depth, with its share of
// the total run.
func (p *Profiler) Summarize(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled || p.root == nil {
		return
	}

	total := p.now().Sub(p.root.start)
	fmt.Fprintln(w, "--- Timing ---")
	for _, child := range p.root.children {
		writeSpan(w, child, 0, total)
	}
	fmt.Fprintf(w, "total %v\n", total.Round(100*time.Microsecond))
}

func writeSpan(w io.Writer, s *span, depth int, total time.Duration) {
	share := 0.0
	if total > 0 {
		share = float64(s.duration) / float64(total) * 100
	}
	fmt.Fprintf(w, "%s- %s (%v, %.1f%%)\n", strings.Repeat("  ", depth), s.name, s.duration.Round(100*time.Microsecond), share)

	children := append([]*span(nil), s.children...)
	sort.SliceStable(children, func(i, j int) bool {
		return children[i].start.Before(children[j].start)
	})
	for _, child := range children {
		writeSpan(w, child, depth+1, total)
	}
}

type noopStopper struct{}

func (noopStopper) Stop() {}
