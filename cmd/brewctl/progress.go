package main

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/term"
)

const (
	progressUpdateInterval = 100 * time.Millisecond
	clearLineSequence      = "\r\033[K"
)

// ProgressPrinter shows a "prefix (phase Ns)" line with elapsed time while a
// blocking step runs. It prints nothing unless out is a terminal.
//
// A ProgressPrinter is single-use: Start at most once, Stop any number of times.
type ProgressPrinter struct {
	out       io.Writer
	prefix    string
	phase     string
	startTime time.Time
	ticker    atomic.Pointer[time.Ticker]
	stopChan  chan struct{}
	done      chan struct{}
	started   atomic.Bool
	enabled   bool
}

// NewProgressPrinter creates a count-up progress printer writing to out
func NewProgressPrinter(out io.Writer, prefix string, phase string) *ProgressPrinter {
	p := &ProgressPrinter{
		out:     out,
		prefix:  prefix,
		phase:   phase,
		enabled: isTerminal(out),
	}
	return p
}

// Start begins displaying progress updates in a background goroutine.
// Panics if called more than once.
func (p *ProgressPrinter) Start() {
	if !p.started.CompareAndSwap(false, true) {
		panic("ProgressPrinter.Start called more than once")
	}
	if !p.enabled {
		return
	}

	p.done = make(chan struct{})
	p.stopChan = make(chan struct{})
	p.startTime = time.Now()
	ticker := time.NewTicker(progressUpdateInterval)
	p.ticker.Store(ticker)

	fmt.Fprintf(p.out, "\r%s (%s...)   ", p.prefix, p.phase)

	go func() {
		defer close(p.done)
		for {
			select {
			case <-p.stopChan:
				return
			case <-ticker.C:
				seconds := int(time.Since(p.startTime).Seconds())
				if seconds > 0 {
					fmt.Fprintf(p.out, "\r%s (%s %ds)   ", p.prefix, p.phase, seconds)
				} else {
					fmt.Fprintf(p.out, "\r%s (%s...)   ", p.prefix, p.phase)
				}
			}
		}
	}()
}

// Stop stops the display and clears the line
func (p *ProgressPrinter) Stop() {
	ticker := p.ticker.Swap(nil)
	if ticker == nil {
		return
	}

	ticker.Stop()
	close(p.stopChan)
	<-p.done

	fmt.Fprint(p.out, clearLineSequence)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
