// Package optimistic applies social mutations (likes, comments, club membership, registrations, posts)
// to a local store before the API confirms them, and reconciles the store with the API's answers.
package optimistic

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/club"
	"github.com/theadruss/Clix-App/core/event"
	"github.com/theadruss/Clix-App/core/social"
)

var (
	// errors
	ErrUnknownTarget = errors.New("target is not loaded in the store")
	ErrUnknownKind   = errors.New("unknown engagement kind")
	ErrBlankText     = errors.New("text cannot be blank")
)

// Gateway is the part of the API used by the Mutator. *client.Client implements it.
type Gateway interface {
	ToggleLike(ctx context.Context, kind social.Kind, id string) (social.Engagement, error)
	AppendComment(ctx context.Context, kind social.Kind, id string, nc social.NewComment) (social.Engagement, error)
	ToggleMembership(ctx context.Context, clubID string) (club.Membership, error)
	Register(ctx context.Context, eventID string) (event.RegistrationResult, error)
	CreatePost(ctx context.Context, clubID string, np social.NewPost) (social.Post, error)
}

// RollbackPolicy decides what happens to the optimistic state of a failed like or comment.
type RollbackPolicy int

const (
	// RollbackOnFailure removes the failed delta from the displayed state.
	RollbackOnFailure RollbackPolicy = iota
	// KeepOnFailure leaves the failed delta displayed until the target is reloaded or confirmed again.
	KeepOnFailure
)

func (p RollbackPolicy) String() string {
	if p == KeepOnFailure {
		return "keep"
	}
	return "rollback"
}

// Failure describes a failed remote mutation. It is reported once to the OnError handler.
type Failure struct {
	Op         string
	Target     Key
	Err        error
	RolledBack bool
}

func (f Failure) Error() string {
	return f.Op + " " + string(f.Target.Kind) + "/" + f.Target.ID + ": " + f.Err.Error()
}

// Actor is the user performing the mutations.
type Actor struct {
	ID     string
	Name   string
	Avatar string
}

type Option func(m *Mutator)

func WithPolicy(p RollbackPolicy) Option {
	return func(m *Mutator) { m.policy = p }
}

// WithErrorHandler sets the one-shot notification of failed mutations.
func WithErrorHandler(fn func(Failure)) Option {
	return func(m *Mutator) { m.onError = fn }
}

func WithLogger(logger core.Logger) Option {
	return func(m *Mutator) { m.logger = logger }
}

// WithRequestTimeout bounds each remote request. Zero means no bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(m *Mutator) { m.timeout = d }
}

type queue struct {
	jobs    []func()
	running bool
}

// Mutator runs optimistic mutations against a Store.
// Remote requests of a target are issued one at a time, in trigger order; different targets run concurrently.
type Mutator struct {
	store   *Store
	gw      Gateway
	policy  RollbackPolicy
	onError func(Failure)
	logger  core.Logger
	timeout time.Duration

	mu      sync.Mutex
	queues  map[Key]*queue
	workers int           // running queues
	idle    chan struct{} // closed when workers drops to 0
}

func NewMutator(store *Store, gw Gateway, opts ...Option) *Mutator {
	m := &Mutator{
		store:  store,
		gw:     gw,
		policy: RollbackOnFailure,
		queues: make(map[Key]*queue),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mutator) Store() *Store {
	return m.store
}

// enqueue runs job after the previously enqueued jobs of key.
func (m *Mutator) enqueue(key Key, job func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.queues[key]
	if !ok {
		q = new(queue)
		m.queues[key] = q
	}
	q.jobs = append(q.jobs, job)
	if !q.running {
		q.running = true
		if m.workers == 0 {
			m.idle = make(chan struct{})
		}
		m.workers++
		go m.work(key, q)
	}
}

// work runs the jobs of key until its queue is empty.
func (m *Mutator) work(key Key, q *queue) {
	for {
		m.mu.Lock()
		if len(q.jobs) == 0 {
			q.running = false
			delete(m.queues, key)
			m.workers--
			if m.workers == 0 {
				close(m.idle)
			}
			m.mu.Unlock()
			return
		}
		job := q.jobs[0]
		q.jobs = q.jobs[1:]
		m.mu.Unlock()

		job()
	}
}

// Flush waits until no request is queued or in flight, or for ctx to be done.
// Mutations triggered while Flush waits are waited for too.
func (m *Mutator) Flush(ctx context.Context) error {
	m.mu.Lock()
	if m.workers == 0 {
		m.mu.Unlock()
		return nil
	}
	idle := m.idle
	m.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mutator) requestContext() (context.Context, context.CancelFunc) {
	if m.timeout > 0 {
		return context.WithTimeout(context.Background(), m.timeout)
	}
	return context.WithCancel(context.Background())
}

func (m *Mutator) fail(f Failure) {
	if m.logger != nil {
		m.logger.Warn("optimistic mutation failed", f.Op, f.Target, f.Err, "rolledBack", f.RolledBack)
	}
	if m.onError != nil {
		m.onError(f)
	}
}

// Pending is the handle of an issued mutation.
type Pending struct {
	id   string
	done chan struct{}
	err  error
}

func newPending(id string) *Pending {
	return &Pending{id: id, done: make(chan struct{})}
}

// ID is the local id of the created entry (comment or temporary post), empty for toggles.
func (p *Pending) ID() string {
	return p.id
}

func (p *Pending) resolve(err error) {
	p.err = err
	close(p.done)
}

// Done is closed once the remote request completed and the store was reconciled.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait waits for the mutation to complete and returns its remote error.
// ctx only bounds the wait: the request itself is never cancelled.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
