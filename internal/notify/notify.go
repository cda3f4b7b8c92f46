// Package notify is the single-slot toast channel of the storefront. Showing a
// message replaces whatever is on screen, and each message hides itself after
// its duration unless something newer took its place first.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultDuration = 5 * time.Second

type Notification struct {
	Message  string        `json:"message"`
	Visible  bool          `json:"visible"`
	Duration time.Duration `json:"-"`
}

// Listener must not call Show or Dismiss synchronously; it runs while the
// transition that produced it is still being delivered.
type Listener func(Notification)

type Notifier struct {
	// deliver is held from a transition until its broadcast returns, so
	// listeners see transitions in the order they were applied. Taken
	// before mu.
	deliver sync.Mutex

	mu     sync.Mutex
	cur    Notification
	seq    uint64
	timer  *time.Timer
	subs   map[int]Listener
	nextID int
	closed bool
	log    *zap.Logger
}

func New(log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{subs: make(map[int]Listener), log: log}
}

// Show pre-empts the current message and its timer. d <= 0 means DefaultDuration.
func (n *Notifier) Show(message string, d time.Duration) {
	if d <= 0 {
		d = DefaultDuration
	}

	n.deliver.Lock()
	defer n.deliver.Unlock()

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.seq++
	seq := n.seq
	n.stopTimer()
	n.cur = Notification{Message: message, Visible: true, Duration: d}
	n.timer = time.AfterFunc(d, func() { n.expire(seq) })
	cur, subs := n.cur, n.listeners()
	n.mu.Unlock()

	n.log.Debug("notification shown", zap.String("message", message), zap.Duration("duration", d))
	broadcast(subs, cur)
}

func (n *Notifier) Dismiss() {
	n.deliver.Lock()
	defer n.deliver.Unlock()

	n.mu.Lock()
	if n.closed || !n.cur.Visible {
		n.mu.Unlock()
		return
	}
	n.seq++
	n.stopTimer()
	n.cur.Visible = false
	cur, subs := n.cur, n.listeners()
	n.mu.Unlock()

	broadcast(subs, cur)
}

func (n *Notifier) Current() Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cur
}

// Subscribe registers fn for every transition. The returned func unregisters it.
func (n *Notifier) Subscribe(fn Listener) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.subs[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

// Close stops the pending timer and drops all listeners.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	n.seq++
	n.stopTimer()
	n.subs = make(map[int]Listener)
}

func (n *Notifier) expire(seq uint64) {
	n.deliver.Lock()
	defer n.deliver.Unlock()

	n.mu.Lock()
	if n.closed || seq != n.seq {
		n.mu.Unlock()
		return
	}
	n.cur.Visible = false
	n.timer = nil
	cur, subs := n.cur, n.listeners()
	n.mu.Unlock()

	broadcast(subs, cur)
}

func (n *Notifier) stopTimer() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

func (n *Notifier) listeners() []Listener {
	out := make([]Listener, 0, len(n.subs))
	for _, fn := range n.subs {
		out = append(out, fn)
	}
	return out
}

func broadcast(subs []Listener, cur Notification) {
	for _, fn := range subs {
		fn(cur)
	}
}
