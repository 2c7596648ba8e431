package db

import (
	"context"
	"log"
	"sync"
	"time"
)

type DialFunc func(ctx context.Context, uri string) (*Store, error)

// Lazy hands out a single Store for the life of the process. The first
// Connect starts dialing; every caller that arrives while that dial is in
// flight waits for the same attempt. A failed attempt is reported to all of
// its waiters and the next Connect dials again. The Store is never closed.
type Lazy struct {
	uri       string
	dial      DialFunc
	onConnect func(*Store) error
	timeout   time.Duration

	mu      sync.Mutex
	store   *Store
	pending *attempt
}

type attempt struct {
	done  chan struct{}
	store *Store
	err   error
}

type Option func(*Lazy)

// WithDial replaces the default Dial.
func WithDial(fn DialFunc) Option { return func(l *Lazy) { l.dial = fn } }

// WithOnConnect runs fn once on a freshly dialed Store before it is shared.
// An error from fn fails the attempt.
func WithOnConnect(fn func(*Store) error) Option { return func(l *Lazy) { l.onConnect = fn } }

// WithDialTimeout bounds a single connection attempt.
func WithDialTimeout(d time.Duration) Option { return func(l *Lazy) { l.timeout = d } }

func NewLazy(uri string, opts ...Option) (*Lazy, error) {
	if _, err := DriverFor(uri); err != nil {
		return nil, err
	}
	l := &Lazy{uri: uri, dial: Dial, timeout: 30 * time.Second}
	for _, o := range opts {
		o(l)
	}
	return l, nil
}

// MustLazy is NewLazy for startup code: a missing or unusable connection
// string is fatal.
func MustLazy(uri string, opts ...Option) *Lazy {
	l, err := NewLazy(uri, opts...)
	if err != nil {
		log.Fatalf("db config: %v", err)
	}
	return l
}

// Driver reports which backend the connection string selects.
func (l *Lazy) Driver() Driver {
	d, _ := DriverFor(l.uri)
	return d
}

// Connect returns the shared Store, dialing on first use. ctx only bounds how
// long this caller waits; the dial itself runs under the dial timeout so a
// cancelled request does not fail the attempt for everyone else.
func (l *Lazy) Connect(ctx context.Context) (*Store, error) {
	l.mu.Lock()
	if l.store != nil {
		s := l.store
		l.mu.Unlock()
		return s, nil
	}
	a := l.pending
	if a == nil {
		a = &attempt{done: make(chan struct{})}
		l.pending = a
		go l.run(a)
	}
	l.mu.Unlock()

	select {
	case <-a.done:
		return a.store, a.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Lazy) run(a *attempt) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	s, err := l.dial(ctx, l.uri)
	if err == nil && l.onConnect != nil {
		err = l.onConnect(s)
	}
	if err != nil {
		s = nil
		log.Printf("db connect %s: %v", RedactURI(l.uri), err)
	} else {
		log.Printf("db connected: driver=%s", s.Driver)
	}

	l.mu.Lock()
	if err == nil {
		l.store = s
	}
	l.pending = nil
	a.store, a.err = s, err
	l.mu.Unlock()
	close(a.done)
}
