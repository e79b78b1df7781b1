package input

import (
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/term-snake/core"
	"github.com/lixenwraith/term-snake/status"
)

// EventSource delivers terminal events until quit is closed, then closes ch
// tcell.Screen satisfies it
type EventSource interface {
	ChannelEvents(ch chan<- tcell.Event, quit <-chan struct{})
}

type controlMsg uint8

const (
	controlDied controlMsg = iota // Round ended, forget the last forwarded key
)

const (
	eventBufferSize   = 64
	controlBufferSize = 8
)

// Capture reads terminal events on its own goroutine, translates them to logical keys
// and forwards them to a Queue, dropping immediate repeats of the last forwarded key
type Capture struct {
	src   EventSource
	table *KeyTable
	queue *Queue
	log   zerolog.Logger

	control chan controlMsg
	quit    chan struct{}
	done    chan struct{}

	started  atomic.Bool
	stopOnce sync.Once
	onResize func()

	// Owned by the capture goroutine
	last core.Key

	statForwarded *atomic.Int64
	statDebounced *atomic.Int64
	statIgnored   *atomic.Int64
}

// NewCapture creates a stopped capture writing into queue
func NewCapture(src EventSource, queue *Queue, logger zerolog.Logger, metrics *status.Registry) *Capture {
	if metrics == nil {
		metrics = status.NewRegistry()
	}
	return &Capture{
		src:           src,
		table:         DefaultKeyTable(),
		queue:         queue,
		log:           logger.With().Str("component", "input").Logger(),
		control:       make(chan controlMsg, controlBufferSize),
		quit:          make(chan struct{}),
		done:          make(chan struct{}),
		statForwarded: metrics.Ints.Get(status.KeysForwarded),
		statDebounced: metrics.Ints.Get(status.KeysDebounced),
		statIgnored:   metrics.Ints.Get(status.KeysIgnored),
	}
}

// SetKeyTable replaces the bindings, must be called before Start
func (c *Capture) SetKeyTable(kt *KeyTable) {
	c.table = kt
}

// OnResize registers fn to run on the capture goroutine for each resize event
// Must be called before Start
func (c *Capture) OnResize(fn func()) {
	c.onResize = fn
}

// Start launches the event pump and the capture loop
func (c *Capture) Start() {
	if !c.started.CompareAndSwap(false, true) {
		return
	}

	events := make(chan tcell.Event, eventBufferSize)
	core.Go(func() {
		c.src.ChannelEvents(events, c.quit)
	})
	core.Go(func() {
		c.loop(events)
	})
	c.log.Debug().Msg("capture started")
}

// NotifyDied resets debounce so the first key of the next round is never dropped
// Safe from any goroutine; a no-op after Stop
func (c *Capture) NotifyDied() {
	select {
	case c.control <- controlDied:
	case <-c.done:
	case <-c.quit:
	}
}

// Stop signals the capture goroutine and waits for it to exit
func (c *Capture) Stop() {
	c.stopOnce.Do(func() {
		close(c.quit)
	})
	if c.started.Load() {
		<-c.done
	}
}

// Done is closed once the capture loop has exited
func (c *Capture) Done() <-chan struct{} {
	return c.done
}

func (c *Capture) loop(events <-chan tcell.Event) {
	defer close(c.done)
	defer c.queue.Close()

	for {
		select {
		case <-c.quit:
			return

		case msg := <-c.control:
			c.apply(msg)

		case ev, ok := <-events:
			if !ok {
				c.log.Debug().Msg("event source closed")
				return
			}
			// Control messages sent before this event must take effect first
			c.drainControl()
			c.handle(ev)
		}
	}
}

func (c *Capture) drainControl() {
	for {
		select {
		case msg := <-c.control:
			c.apply(msg)
		default:
			return
		}
	}
}

func (c *Capture) apply(msg controlMsg) {
	switch msg {
	case controlDied:
		c.last = core.KeyNone
	}
}

func (c *Capture) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		key := c.table.Translate(ev)
		if key == core.KeyNone {
			c.statIgnored.Add(1)
			return
		}
		if key == c.last {
			c.statDebounced.Add(1)
			return
		}
		c.last = key
		if c.queue.Push(key) {
			c.statForwarded.Add(1)
		}

	case *tcell.EventResize:
		if c.onResize != nil {
			c.onResize()
		}
	}
}
