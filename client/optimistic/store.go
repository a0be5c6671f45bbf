package optimistic

import (
	"sync"

	"github.com/theadruss/Clix-App/core/club"
	"github.com/theadruss/Clix-App/core/event"
	"github.com/theadruss/Clix-App/core/social"
	"github.com/theadruss/Clix-App/core/user"
)

// Kind is the kind of a stored record.
type Kind string

const (
	KindPost         = Kind(social.KindPost)  // social.Engagement
	KindMedia        = Kind(social.KindMedia) // social.Engagement
	KindUser    Kind = "user"                 // user.User
	KindClub    Kind = "club"                 // club.Club
	KindEvent   Kind = "event"                // event.Event
	KindTickets Kind = "tickets"              // []string, registered event ids by user id
	KindFeed    Kind = "feed"                 // []social.Post, by club id
)

type Key struct {
	Kind Kind
	ID   string
}

// Delta computes a displayed value from another. It must not modify its input.
type Delta func(v interface{}) interface{}

type pendingDelta struct {
	seq    uint64
	apply  Delta
	failed bool // kept after a failure, until the next confirmed snapshot
}

type entry struct {
	confirmed    interface{}
	confirmedSeq uint64
	nextSeq      uint64
	pending      []pendingDelta
}

func (e *entry) display() interface{} {
	v := e.confirmed
	for _, d := range e.pending {
		v = d.apply(v)
	}
	return v
}

type notification struct {
	fns []func(interface{})
	v   interface{}
}

// Store is a normalized store of records keyed by (kind, id), shared by every view.
// Each record is its last confirmed state plus the pending optimistic deltas, applied in sequence order.
// Subscribers of a key are notified of each change of its displayed value.
type Store struct {
	mu      sync.Mutex
	entries map[Key]*entry
	subs    map[Key]map[int]func(interface{})
	nextSub int
	drafts  map[Key]string
}

func NewStore() *Store {
	return &Store{
		entries: make(map[Key]*entry),
		subs:    make(map[Key]map[int]func(interface{})),
		drafts:  make(map[Key]string),
	}
}

// Put stores v as the confirmed state of key, as loaded from the API. Pending deltas stay applied on top.
// A reload is unsequenced: the answer to a request still in flight replaces it when it arrives.
func (s *Store) Put(key Key, v interface{}) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = new(entry)
		s.entries[key] = e
	}
	e.confirmed = v
	e.dropFailed(e.nextSeq)
	n := s.notificationLocked(key, e)
	s.mu.Unlock()
	n.send()
}

// Get returns the displayed value of key.
func (s *Store) Get(key Key) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.display(), true
}

// Confirmed returns the last confirmed value of key, ignoring pending deltas.
func (s *Store) Confirmed(key Key) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.confirmed, true
}

// InFlight returns the number of pending deltas of key.
func (s *Store) InFlight(key Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		return len(e.pending)
	}
	return 0
}

// Subscribe calls fn with the displayed value of key after each change, until cancel is called.
func (s *Store) Subscribe(key Key, fn func(v interface{})) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	if s.subs[key] == nil {
		s.subs[key] = make(map[int]func(interface{}))
	}
	s.subs[key][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs[key], id)
			if len(s.subs[key]) == 0 {
				delete(s.subs, key)
			}
		})
	}
}

func (s *Store) SetDraft(key Key, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if text == "" {
		delete(s.drafts, key)
		return
	}
	s.drafts[key] = text
}

func (s *Store) Draft(key Key) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts[key]
}

// notificationLocked must be called with s.mu held; the notification is sent once it is released.
func (s *Store) notificationLocked(key Key, e *entry) notification {
	subs := s.subs[key]
	if len(subs) == 0 {
		return notification{}
	}
	n := notification{fns: make([]func(interface{}), 0, len(subs)), v: e.display()}
	for _, fn := range subs {
		n.fns = append(n.fns, fn)
	}
	return n
}

func (n notification) send() {
	for _, fn := range n.fns {
		fn(n.v)
	}
}

// =========================================================================
// Sequenced mutations

type keyDelta struct {
	key   Key
	delta Delta
}

// begin applies each delta on top of its key's displayed value and returns the sequence numbers of the mutation.
// Nothing is applied unless every key is loaded.
func (s *Store) begin(items ...keyDelta) ([]uint64, bool) {
	s.mu.Lock()
	for _, it := range items {
		if _, ok := s.entries[it.key]; !ok {
			s.mu.Unlock()
			return nil, false
		}
	}
	seqs := make([]uint64, len(items))
	notifs := make([]notification, len(items))
	for i, it := range items {
		e := s.entries[it.key]
		e.nextSeq++
		seqs[i] = e.nextSeq
		e.pending = append(e.pending, pendingDelta{seq: e.nextSeq, apply: it.delta})
	}
	for i, it := range items {
		notifs[i] = s.notificationLocked(it.key, s.entries[it.key])
	}
	s.mu.Unlock()
	for _, n := range notifs {
		n.send()
	}
	return seqs, true
}

// settle ends the mutation seq with a confirmed snapshot computed from the current confirmed value.
// The snapshot is only kept when seq is the latest confirmed request of key; it supersedes every delta
// issued up to seq. Deltas issued after seq stay applied on top of it.
func (s *Store) settle(key Key, seq uint64, snapshot func(confirmed interface{}) interface{}) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	e.remove(seq)
	if seq > e.confirmedSeq {
		e.confirmed = snapshot(e.confirmed)
		e.confirmedSeq = seq
		e.dropThrough(seq)
	}
	n := s.notificationLocked(key, e)
	s.mu.Unlock()
	n.send()
}

// rollback drops the delta of the failed mutation seq.
func (s *Store) rollback(key Key, seq uint64) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	e.remove(seq)
	n := s.notificationLocked(key, e)
	s.mu.Unlock()
	n.send()
}

// keep leaves the delta of the failed mutation seq displayed until a later snapshot replaces it.
func (s *Store) keep(key Key, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		for i := range e.pending {
			if e.pending[i].seq == seq {
				e.pending[i].failed = true
			}
		}
	}
}

func (e *entry) remove(seq uint64) {
	for i, d := range e.pending {
		if d.seq == seq {
			e.pending = append(e.pending[:i:i], e.pending[i+1:]...)
			return
		}
	}
}

func (e *entry) dropThrough(seq uint64) {
	kept := e.pending[:0:0]
	for _, d := range e.pending {
		if d.seq > seq {
			kept = append(kept, d)
		}
	}
	e.pending = kept
}

// dropFailed drops the failed deltas issued up to seq.
func (e *entry) dropFailed(seq uint64) {
	kept := e.pending[:0:0]
	for _, d := range e.pending {
		if d.failed && d.seq <= seq {
			continue
		}
		kept = append(kept, d)
	}
	e.pending = kept
}

// =========================================================================
// Typed accessors

func EngagementKey(kind social.Kind, id string) Key { return Key{Kind: Kind(kind), ID: id} }
func UserKey(id string) Key                         { return Key{Kind: KindUser, ID: id} }
func ClubKey(id string) Key                         { return Key{Kind: KindClub, ID: id} }
func EventKey(id string) Key                        { return Key{Kind: KindEvent, ID: id} }
func TicketsKey(userID string) Key                  { return Key{Kind: KindTickets, ID: userID} }
func FeedKey(clubID string) Key                     { return Key{Kind: KindFeed, ID: clubID} }

func (s *Store) PutEngagement(eng social.Engagement) { s.Put(EngagementKey(eng.Kind, eng.ID), eng) }
func (s *Store) PutUser(usr user.User)               { s.Put(UserKey(usr.ID), usr) }
func (s *Store) PutClub(c club.Club)                 { s.Put(ClubKey(c.ID), c) }
func (s *Store) PutEvent(e event.Event)              { s.Put(EventKey(e.ID), e) }

func (s *Store) PutTickets(userID string, eventIDs []string) {
	s.Put(TicketsKey(userID), append([]string{}, eventIDs...))
}

// PutFeed stores a club's posts, most recent first, and the engagement of each post.
func (s *Store) PutFeed(clubID string, posts []social.Post) {
	s.Put(FeedKey(clubID), append([]social.Post{}, posts...))
	for _, p := range posts {
		s.PutEngagement(p.Engagement())
	}
}

func (s *Store) Engagement(kind social.Kind, id string) (social.Engagement, bool) {
	v, ok := s.Get(EngagementKey(kind, id))
	if !ok {
		return social.Engagement{}, false
	}
	return v.(social.Engagement), true
}

func (s *Store) User(id string) (user.User, bool) {
	v, ok := s.Get(UserKey(id))
	if !ok {
		return user.User{}, false
	}
	return v.(user.User), true
}

func (s *Store) Club(id string) (club.Club, bool) {
	v, ok := s.Get(ClubKey(id))
	if !ok {
		return club.Club{}, false
	}
	return v.(club.Club), true
}

func (s *Store) Event(id string) (event.Event, bool) {
	v, ok := s.Get(EventKey(id))
	if !ok {
		return event.Event{}, false
	}
	return v.(event.Event), true
}

func (s *Store) Tickets(userID string) ([]string, bool) {
	v, ok := s.Get(TicketsKey(userID))
	if !ok {
		return nil, false
	}
	return v.([]string), true
}

func (s *Store) Feed(clubID string) ([]social.Post, bool) {
	v, ok := s.Get(FeedKey(clubID))
	if !ok {
		return nil, false
	}
	return v.([]social.Post), true
}
