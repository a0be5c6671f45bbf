package optimistic

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theadruss/Clix-App/core/club"
	"github.com/theadruss/Clix-App/core/event"
	"github.com/theadruss/Clix-App/core/social"
	"github.com/theadruss/Clix-App/core/user"
)

var errRemote = errors.New("gateway unavailable")

type fakeReply struct {
	v   interface{}
	err error
}

type fakeCall struct {
	op     string
	target string
	in     interface{}
	reply  chan fakeReply
}

// fakeGateway hands every remote call to the test through calls, unless handle is set.
type fakeGateway struct {
	calls  chan *fakeCall
	handle func(c *fakeCall) fakeReply
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{calls: make(chan *fakeCall, 16)}
}

func (g *fakeGateway) call(op, target string, in interface{}) (interface{}, error) {
	c := &fakeCall{op: op, target: target, in: in, reply: make(chan fakeReply, 1)}
	if g.handle != nil {
		r := g.handle(c)
		return r.v, r.err
	}
	g.calls <- c
	r := <-c.reply
	return r.v, r.err
}

func (g *fakeGateway) ToggleLike(_ context.Context, kind social.Kind, id string) (social.Engagement, error) {
	v, err := g.call("like", string(kind)+"/"+id, nil)
	if err != nil {
		return social.Engagement{}, err
	}
	return v.(social.Engagement), nil
}

func (g *fakeGateway) AppendComment(_ context.Context, kind social.Kind, id string, nc social.NewComment) (social.Engagement, error) {
	v, err := g.call("comment", string(kind)+"/"+id, nc)
	if err != nil {
		return social.Engagement{}, err
	}
	return v.(social.Engagement), nil
}

func (g *fakeGateway) ToggleMembership(_ context.Context, clubID string) (club.Membership, error) {
	v, err := g.call("membership", clubID, nil)
	if err != nil {
		return club.Membership{}, err
	}
	return v.(club.Membership), nil
}

func (g *fakeGateway) Register(_ context.Context, eventID string) (event.RegistrationResult, error) {
	v, err := g.call("register", eventID, nil)
	if err != nil {
		return event.RegistrationResult{}, err
	}
	return v.(event.RegistrationResult), nil
}

func (g *fakeGateway) CreatePost(_ context.Context, clubID string, np social.NewPost) (social.Post, error) {
	v, err := g.call("post", clubID, np)
	if err != nil {
		return social.Post{}, err
	}
	return v.(social.Post), nil
}

func (g *fakeGateway) next(t *testing.T) *fakeCall {
	t.Helper()
	select {
	case c := <-g.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("expected a remote call")
		return nil
	}
}

func (g *fakeGateway) assertNoCall(t *testing.T) {
	t.Helper()
	select {
	case c := <-g.calls:
		t.Fatalf("unexpected remote call %s %s", c.op, c.target)
	case <-time.After(50 * time.Millisecond):
	}
}

func wait(t *testing.T, p *Pending) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := p.Wait(ctx)
	require.NotEqual(t, context.DeadlineExceeded, err, "mutation never completed")
	return err
}

type failures struct {
	mu   sync.Mutex
	list []Failure
}

func (f *failures) record(fl Failure) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.list = append(f.list, fl)
}

func (f *failures) get() []Failure {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Failure{}, f.list...)
}

func setup(opts ...Option) (*Store, *fakeGateway, *Mutator, *failures) {
	store := NewStore()
	gw := newFakeGateway()
	fl := new(failures)
	opts = append([]Option{WithErrorHandler(fl.record)}, opts...)
	return store, gw, NewMutator(store, gw, opts...), fl
}

func engagement(kind social.Kind, id string, likedBy []string, comments []social.Comment, version int) social.Engagement {
	if likedBy == nil {
		likedBy = []string{}
	}
	if comments == nil {
		comments = []social.Comment{}
	}
	return social.Engagement{Kind: kind, ID: id, LikedBy: likedBy, Comments: comments, Version: version}
}

func likes(t *testing.T, store *Store, key Key) []string {
	t.Helper()
	eng, ok := store.Engagement(social.Kind(key.Kind), key.ID)
	require.True(t, ok)
	return eng.LikedBy
}

func TestMutator_ToggleMembership(t *testing.T) {
	store, gw, m, fl := setup()
	key := EngagementKey(social.KindPost, "p1")
	store.PutEngagement(engagement(social.KindPost, "p1", nil, nil, 1))
	u1 := Actor{ID: "u1", Name: "Alex"}

	p, err := m.ToggleMembership(key, u1)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, likes(t, store, key))
	assert.Equal(t, 1, store.InFlight(key))

	c := gw.next(t)
	assert.Equal(t, "like", c.op)
	assert.Equal(t, "post/p1", c.target)
	c.reply <- fakeReply{v: engagement(social.KindPost, "p1", []string{"u1"}, nil, 2)}
	require.NoError(t, wait(t, p))
	assert.Equal(t, []string{"u1"}, likes(t, store, key))
	assert.Equal(t, 0, store.InFlight(key))

	p, err = m.ToggleMembership(key, u1)
	require.NoError(t, err)
	assert.Empty(t, likes(t, store, key))
	gw.next(t).reply <- fakeReply{v: engagement(social.KindPost, "p1", nil, nil, 3)}
	require.NoError(t, wait(t, p))
	assert.Empty(t, likes(t, store, key))

	confirmed, _ := store.Confirmed(key)
	assert.Equal(t, 3, confirmed.(social.Engagement).Version)
	assert.Empty(t, fl.get())
}

func TestMutator_ToggleMembership_errors(t *testing.T) {
	_, _, m, _ := setup()

	_, err := m.ToggleMembership(EngagementKey(social.KindPost, "nope"), Actor{ID: "u1"})
	assert.Equal(t, ErrUnknownTarget, err)

	_, err = m.ToggleMembership(ClubKey("c1"), Actor{ID: "u1"})
	assert.Equal(t, ErrUnknownKind, err)
}

func TestMutator_ToggleMembership_perTargetOrder(t *testing.T) {
	store, gw, m, _ := setup()
	p1, p2 := EngagementKey(social.KindPost, "p1"), EngagementKey(social.KindMedia, "m1")
	store.PutEngagement(engagement(social.KindPost, "p1", nil, nil, 1))
	store.PutEngagement(engagement(social.KindMedia, "m1", nil, nil, 1))
	u1 := Actor{ID: "u1"}

	first, err := m.ToggleMembership(p1, u1)
	require.NoError(t, err)
	second, err := m.ToggleMembership(p1, u1)
	require.NoError(t, err)
	other, err := m.ToggleMembership(p2, u1)
	require.NoError(t, err)

	// two toggles of the same actor cancel out on screen at once
	assert.Empty(t, likes(t, store, p1))
	assert.Equal(t, []string{"u1"}, likes(t, store, p2))
	assert.Equal(t, 2, store.InFlight(p1))

	// different targets are not serialized
	calls := map[string]*fakeCall{}
	for i := 0; i < 2; i++ {
		c := gw.next(t)
		calls[c.target] = c
	}
	require.Contains(t, calls, "post/p1")
	require.Contains(t, calls, "media/m1")
	gw.assertNoCall(t)

	calls["media/m1"].reply <- fakeReply{v: engagement(social.KindMedia, "m1", []string{"u1"}, nil, 2)}
	require.NoError(t, wait(t, other))

	calls["post/p1"].reply <- fakeReply{v: engagement(social.KindPost, "p1", []string{"u1"}, nil, 2)}
	require.NoError(t, wait(t, first))
	// the second toggle is still applied on top of the first snapshot
	assert.Empty(t, likes(t, store, p1))

	c := gw.next(t)
	assert.Equal(t, "post/p1", c.target)
	c.reply <- fakeReply{v: engagement(social.KindPost, "p1", nil, nil, 3)}
	require.NoError(t, wait(t, second))
	assert.Empty(t, likes(t, store, p1))
	assert.Equal(t, 0, store.InFlight(p1))

	require.NoError(t, m.Flush(context.Background()))
}

func TestMutator_ToggleMembership_failure(t *testing.T) {
	tests := []struct {
		name       string
		policy     RollbackPolicy
		wantLikes  []string
		wantFlight int
	}{
		{name: "rollback", policy: RollbackOnFailure, wantLikes: []string{"u2"}, wantFlight: 0},
		{name: "keep", policy: KeepOnFailure, wantLikes: []string{"u2", "u1"}, wantFlight: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, gw, m, fl := setup(WithPolicy(tc.policy))
			key := EngagementKey(social.KindPost, "p1")
			store.PutEngagement(engagement(social.KindPost, "p1", []string{"u2"}, nil, 4))

			p, err := m.ToggleMembership(key, Actor{ID: "u1"})
			require.NoError(t, err)
			gw.next(t).reply <- fakeReply{err: errRemote}
			assert.Equal(t, errRemote, wait(t, p))

			assert.Equal(t, tc.wantLikes, likes(t, store, key))
			assert.Equal(t, tc.wantFlight, store.InFlight(key))

			got := fl.get()
			require.Len(t, got, 1)
			assert.Equal(t, "like", got[0].Op)
			assert.Equal(t, key, got[0].Target)
			assert.Equal(t, errRemote, got[0].Err)
			assert.Equal(t, tc.policy == RollbackOnFailure, got[0].RolledBack)

			// a reload tells the truth
			store.PutEngagement(engagement(social.KindPost, "p1", []string{"u2", "u3"}, nil, 5))
			assert.Equal(t, []string{"u2", "u3"}, likes(t, store, key))
			assert.Equal(t, 0, store.InFlight(key))
		})
	}
}

func TestMutator_ToggleMembership_keepUntilConfirmed(t *testing.T) {
	store, gw, m, _ := setup(WithPolicy(KeepOnFailure))
	key := EngagementKey(social.KindPost, "p1")
	store.PutEngagement(engagement(social.KindPost, "p1", nil, nil, 1))
	u1 := Actor{ID: "u1"}

	p, err := m.ToggleMembership(key, u1)
	require.NoError(t, err)
	gw.next(t).reply <- fakeReply{err: errRemote}
	require.Error(t, wait(t, p))
	assert.Equal(t, []string{"u1"}, likes(t, store, key))

	// the next confirmed answer replaces the kept delta
	p, err = m.ToggleMembership(key, u1)
	require.NoError(t, err)
	assert.Empty(t, likes(t, store, key))
	gw.next(t).reply <- fakeReply{v: engagement(social.KindPost, "p1", []string{"u1"}, nil, 2)}
	require.NoError(t, wait(t, p))
	assert.Equal(t, []string{"u1"}, likes(t, store, key))
	assert.Equal(t, 0, store.InFlight(key))
}

func TestMutator_AppendEntry(t *testing.T) {
	store, gw, m, fl := setup()
	key := EngagementKey(social.KindMedia, "m5")
	store.PutEngagement(engagement(social.KindMedia, "m5", nil, nil, 1))
	store.SetDraft(key, "nice")
	u9 := Actor{ID: "u9", Name: "Sam"}

	c := NewComment(u9, "nice")
	c.ID = "c100"
	p, err := m.AppendEntry(key, c)
	require.NoError(t, err)
	assert.Equal(t, "c100", p.ID())
	assert.Equal(t, "", store.Draft(key))

	eng, _ := store.Engagement(social.KindMedia, "m5")
	require.Len(t, eng.Comments, 1)
	assert.Equal(t, "c100", eng.Comments[0].ID)
	assert.Equal(t, "nice", eng.Comments[0].Text)

	call := gw.next(t)
	assert.Equal(t, "comment", call.op)
	assert.Equal(t, "media/m5", call.target)
	assert.Equal(t, social.NewComment{ID: "c100", Text: "nice"}, call.in)

	stored := social.Comment{ID: "c100", UserID: "u9", UserName: "Sam", Text: "nice", Timestamp: time.Now().UTC()}
	call.reply <- fakeReply{v: engagement(social.KindMedia, "m5", nil, []social.Comment{stored}, 2)}
	require.NoError(t, wait(t, p))

	eng, _ = store.Engagement(social.KindMedia, "m5")
	require.Len(t, eng.Comments, 1)
	assert.Equal(t, "c100", eng.Comments[0].ID)
	assert.Equal(t, 2, eng.Version)
	assert.Empty(t, fl.get())
}

func TestMutator_AppendEntry_validation(t *testing.T) {
	store, _, m, _ := setup()
	key := EngagementKey(social.KindPost, "p1")
	store.PutEngagement(engagement(social.KindPost, "p1", nil, nil, 1))

	_, err := m.AppendEntry(key, social.Comment{Text: "  "})
	assert.Equal(t, ErrBlankText, err)

	_, err = m.AppendEntry(EngagementKey(social.KindPost, "nope"), social.Comment{Text: "hi"})
	assert.Equal(t, ErrUnknownTarget, err)

	_, err = m.AppendEntry(EventKey("e1"), social.Comment{Text: "hi"})
	assert.Equal(t, ErrUnknownKind, err)

	eng, _ := store.Engagement(social.KindPost, "p1")
	assert.Empty(t, eng.Comments)
}

func TestMutator_AppendEntry_generatesID(t *testing.T) {
	store, gw, m, _ := setup()
	key := EngagementKey(social.KindPost, "p1")
	store.PutEngagement(engagement(social.KindPost, "p1", nil, nil, 1))

	p, err := m.AppendEntry(key, social.Comment{UserID: "u1", Text: " hello "})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID())

	call := gw.next(t)
	assert.Equal(t, social.NewComment{ID: p.ID(), Text: "hello"}, call.in)
	call.reply <- fakeReply{err: errRemote}
	require.Error(t, wait(t, p))
}

func TestMutator_AppendEntry_rollbackRemovesOnlyFailedEntry(t *testing.T) {
	store, gw, m, fl := setup()
	key := EngagementKey(social.KindPost, "p1")
	c1 := social.Comment{ID: "c1", UserID: "u2", Text: "first"}
	store.PutEngagement(engagement(social.KindPost, "p1", nil, []social.Comment{c1}, 2))
	u1 := Actor{ID: "u1"}

	failing, err := m.AppendEntry(key, social.Comment{ID: "ca", UserID: u1.ID, Text: "lost"})
	require.NoError(t, err)
	ok, err := m.AppendEntry(key, social.Comment{ID: "cb", UserID: u1.ID, Text: "kept"})
	require.NoError(t, err)

	eng, _ := store.Engagement(social.KindPost, "p1")
	assert.Equal(t, []string{"c1", "ca", "cb"}, commentIDs(eng))

	gw.next(t).reply <- fakeReply{err: errRemote}
	require.Error(t, wait(t, failing))
	eng, _ = store.Engagement(social.KindPost, "p1")
	assert.Equal(t, []string{"c1", "cb"}, commentIDs(eng))

	call := gw.next(t)
	assert.Equal(t, "cb", call.in.(social.NewComment).ID)
	call.reply <- fakeReply{v: engagement(social.KindPost, "p1", nil, []social.Comment{c1, {ID: "cb", UserID: u1.ID, Text: "kept"}}, 3)}
	require.NoError(t, wait(t, ok))
	eng, _ = store.Engagement(social.KindPost, "p1")
	assert.Equal(t, []string{"c1", "cb"}, commentIDs(eng))

	require.Len(t, fl.get(), 1)
	assert.Equal(t, "comment", fl.get()[0].Op)
}

func TestMutator_AppendEntry_keepNeverShrinksLog(t *testing.T) {
	store, gw, m, _ := setup(WithPolicy(KeepOnFailure))
	key := EngagementKey(social.KindPost, "p1")
	store.PutEngagement(engagement(social.KindPost, "p1", nil, nil, 1))

	var mu sync.Mutex
	var lengths []int
	cancel := store.Subscribe(key, func(v interface{}) {
		mu.Lock()
		defer mu.Unlock()
		lengths = append(lengths, len(v.(social.Engagement).Comments))
	})
	defer cancel()

	first, err := m.AppendEntry(key, social.Comment{ID: "c1", Text: "one"})
	require.NoError(t, err)
	second, err := m.AppendEntry(key, social.Comment{ID: "c2", Text: "two"})
	require.NoError(t, err)

	gw.next(t).reply <- fakeReply{err: errRemote}
	require.Error(t, wait(t, first))
	gw.next(t).reply <- fakeReply{err: errRemote}
	require.Error(t, wait(t, second))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, lengths)
	for i := 1; i < len(lengths); i++ {
		assert.GreaterOrEqual(t, lengths[i], lengths[i-1])
	}
	assert.Equal(t, 2, lengths[len(lengths)-1])
}

func commentIDs(eng social.Engagement) []string {
	ids := make([]string, 0, len(eng.Comments))
	for _, c := range eng.Comments {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestMutator_JoinOrLeaveClub(t *testing.T) {
	store, gw, m, fl := setup()
	store.PutUser(user.User{ID: "u1", Name: "Alex", JoinedClubIDs: []string{"c2"}})
	store.PutClub(club.Club{ID: "c1", Name: "Tech Club", MemberCount: 3})
	u1 := Actor{ID: "u1", Name: "Alex"}

	p, err := m.JoinOrLeaveClub(u1, "c1")
	require.NoError(t, err)
	usr, _ := store.User("u1")
	cl, _ := store.Club("c1")
	assert.Equal(t, []string{"c2", "c1"}, usr.JoinedClubIDs)
	assert.Equal(t, 4, cl.MemberCount)

	call := gw.next(t)
	assert.Equal(t, "membership", call.op)
	assert.Equal(t, "c1", call.target)
	call.reply <- fakeReply{v: club.Membership{
		User:   user.User{ID: "u1", Name: "Alex", JoinedClubIDs: []string{"c2", "c1"}},
		Club:   club.Club{ID: "c1", Name: "Tech Club", MemberCount: 5},
		Joined: true,
	}}
	require.NoError(t, wait(t, p))
	cl, _ = store.Club("c1")
	assert.Equal(t, 5, cl.MemberCount)

	p, err = m.JoinOrLeaveClub(u1, "c1")
	require.NoError(t, err)
	usr, _ = store.User("u1")
	cl, _ = store.Club("c1")
	assert.Equal(t, []string{"c2"}, usr.JoinedClubIDs)
	assert.Equal(t, 4, cl.MemberCount)
	gw.next(t).reply <- fakeReply{v: club.Membership{
		User: user.User{ID: "u1", Name: "Alex", JoinedClubIDs: []string{"c2"}},
		Club: club.Club{ID: "c1", Name: "Tech Club", MemberCount: 4},
	}}
	require.NoError(t, wait(t, p))
	assert.Empty(t, fl.get())
}

func TestMutator_JoinOrLeaveClub_rollback(t *testing.T) {
	// membership failures roll back whatever the like/comment policy
	for _, policy := range []RollbackPolicy{RollbackOnFailure, KeepOnFailure} {
		t.Run(policy.String(), func(t *testing.T) {
			store, gw, m, fl := setup(WithPolicy(policy))
			store.PutUser(user.User{ID: "u1", JoinedClubIDs: []string{}})
			store.PutClub(club.Club{ID: "c1", MemberCount: 3})

			p, err := m.JoinOrLeaveClub(Actor{ID: "u1"}, "c1")
			require.NoError(t, err)
			cl, _ := store.Club("c1")
			assert.Equal(t, 4, cl.MemberCount)

			gw.next(t).reply <- fakeReply{err: errRemote}
			assert.Equal(t, errRemote, wait(t, p))

			usr, _ := store.User("u1")
			cl, _ = store.Club("c1")
			assert.Empty(t, usr.JoinedClubIDs)
			assert.Equal(t, 3, cl.MemberCount)

			got := fl.get()
			require.Len(t, got, 1)
			assert.Equal(t, ClubKey("c1"), got[0].Target)
			assert.True(t, got[0].RolledBack)
		})
	}
}

func TestMutator_JoinOrLeaveClub_unknown(t *testing.T) {
	store, _, m, _ := setup()
	_, err := m.JoinOrLeaveClub(Actor{ID: "u1"}, "c1")
	assert.Equal(t, ErrUnknownTarget, err)

	store.PutUser(user.User{ID: "u1"})
	_, err = m.JoinOrLeaveClub(Actor{ID: "u1"}, "c1")
	assert.Equal(t, ErrUnknownTarget, err)

	// nothing was applied to the loaded user
	assert.Equal(t, 0, store.InFlight(UserKey("u1")))
}

func TestMutator_Register(t *testing.T) {
	store, gw, m, fl := setup()
	store.PutTickets("u1", []string{"e2"})
	store.PutEvent(event.Event{ID: "e1", Capacity: 200, RegisteredCount: 150})
	u1 := Actor{ID: "u1"}

	p, err := m.Register(u1, "e1")
	require.NoError(t, err)
	tickets, _ := store.Tickets("u1")
	e, _ := store.Event("e1")
	assert.Equal(t, []string{"e2", "e1"}, tickets)
	assert.Equal(t, 151, e.RegisteredCount)

	call := gw.next(t)
	assert.Equal(t, "register", call.op)
	call.reply <- fakeReply{v: event.RegistrationResult{
		Event:              event.Event{ID: "e1", Capacity: 200, RegisteredCount: 152},
		RegisteredEventIDs: []string{"e2", "e1"},
		Created:            true,
	}}
	require.NoError(t, wait(t, p))
	e, _ = store.Event("e1")
	assert.Equal(t, 152, e.RegisteredCount)

	// registering again shows no new seat
	p, err = m.Register(u1, "e1")
	require.NoError(t, err)
	e, _ = store.Event("e1")
	assert.Equal(t, 152, e.RegisteredCount)
	gw.next(t).reply <- fakeReply{err: errRemote}
	require.Error(t, wait(t, p))

	tickets, _ = store.Tickets("u1")
	assert.Equal(t, []string{"e2", "e1"}, tickets)
	require.Len(t, fl.get(), 1)
	assert.True(t, fl.get()[0].RolledBack)
}

func TestMutator_Register_rollback(t *testing.T) {
	store, gw, m, _ := setup(WithPolicy(KeepOnFailure))
	store.PutTickets("u1", nil)
	store.PutEvent(event.Event{ID: "e1", Capacity: 10, RegisteredCount: 9})

	p, err := m.Register(Actor{ID: "u1"}, "e1")
	require.NoError(t, err)
	gw.next(t).reply <- fakeReply{err: errors.New("this event is full")}
	require.Error(t, wait(t, p))

	tickets, _ := store.Tickets("u1")
	e, _ := store.Event("e1")
	assert.Empty(t, tickets)
	assert.Equal(t, 9, e.RegisteredCount)
}

func TestMutator_CreatePost(t *testing.T) {
	store, gw, m, fl := setup()
	existing := social.Post{ID: "p1", ClubID: "c1", Content: "Hackathon next week!", LikedBy: []string{}, Comments: []social.Comment{}, Version: 1}
	store.PutFeed("c1", []social.Post{existing})
	u1 := Actor{ID: "u1", Name: "Alex", Avatar: "https://i.pravatar.cc/150?u=u1"}

	_, err := m.CreatePost(u1, "c1", "   ")
	assert.Equal(t, ErrBlankText, err)
	_, err = m.CreatePost(u1, "c9", "hello")
	assert.Equal(t, ErrUnknownTarget, err)

	p, err := m.CreatePost(u1, "c1", " Who is coming? ")
	require.NoError(t, err)
	feed, _ := store.Feed("c1")
	require.Len(t, feed, 2)
	assert.Equal(t, p.ID(), feed[0].ID)
	assert.True(t, IsTemporary(feed[0]))
	assert.Equal(t, "Who is coming?", feed[0].Content)
	assert.Equal(t, "Alex", feed[0].UserName)
	assert.False(t, IsTemporary(feed[1]))

	call := gw.next(t)
	assert.Equal(t, social.NewPost{Content: "Who is coming?"}, call.in)
	created := social.Post{ID: "p9", ClubID: "c1", UserID: "u1", Content: "Who is coming?", LikedBy: []string{}, Comments: []social.Comment{}, Version: 1}
	call.reply <- fakeReply{v: created}
	require.NoError(t, wait(t, p))

	feed, _ = store.Feed("c1")
	require.Len(t, feed, 2)
	assert.Equal(t, "p9", feed[0].ID)
	assert.Equal(t, "p1", feed[1].ID)
	eng, ok := store.Engagement(social.KindPost, "p9")
	require.True(t, ok)
	assert.Equal(t, 1, eng.Version)

	p, err = m.CreatePost(u1, "c1", "never stored")
	require.NoError(t, err)
	gw.next(t).reply <- fakeReply{err: errRemote}
	require.Error(t, wait(t, p))
	feed, _ = store.Feed("c1")
	assert.Len(t, feed, 2)
	require.Len(t, fl.get(), 1)
	assert.Equal(t, FeedKey("c1"), fl.get()[0].Target)
}

func TestMutator_requestTimeout(t *testing.T) {
	store := NewStore()
	gw := newFakeGateway()
	var deadline bool
	gw.handle = func(c *fakeCall) fakeReply {
		return fakeReply{v: engagement(social.KindPost, "p1", []string{"u1"}, nil, 2)}
	}
	m := NewMutator(store, timeoutGateway{gw, &deadline}, WithRequestTimeout(time.Second))
	store.PutEngagement(engagement(social.KindPost, "p1", nil, nil, 1))

	p, err := m.ToggleMembership(EngagementKey(social.KindPost, "p1"), Actor{ID: "u1"})
	require.NoError(t, err)
	require.NoError(t, wait(t, p))
	assert.True(t, deadline)
}

// timeoutGateway records whether requests carry a deadline.
type timeoutGateway struct {
	*fakeGateway
	deadline *bool
}

func (g timeoutGateway) ToggleLike(ctx context.Context, kind social.Kind, id string) (social.Engagement, error) {
	_, *g.deadline = ctx.Deadline()
	return g.fakeGateway.ToggleLike(ctx, kind, id)
}

func TestPending_Wait(t *testing.T) {
	p := newPending("x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, context.Canceled, p.Wait(ctx))

	p.resolve(errRemote)
	<-p.Done()
	assert.Equal(t, errRemote, p.Wait(context.Background()))
}

func TestMutator_Flush(t *testing.T) {
	store, gw, m, _ := setup()
	p1, m1 := EngagementKey(social.KindPost, "p1"), EngagementKey(social.KindMedia, "m1")
	store.PutEngagement(engagement(social.KindPost, "p1", nil, nil, 1))
	store.PutEngagement(engagement(social.KindMedia, "m1", nil, nil, 1))
	u1 := Actor{ID: "u1"}

	// nothing to wait for
	require.NoError(t, m.Flush(context.Background()))

	_, err := m.ToggleMembership(p1, u1)
	require.NoError(t, err)
	first := gw.next(t)

	flushed := make(chan error, 1)
	go func() { flushed <- m.Flush(context.Background()) }()

	// a mutation triggered while Flush waits is waited for too
	_, err = m.ToggleMembership(m1, u1)
	require.NoError(t, err)
	second := gw.next(t)

	first.reply <- fakeReply{v: engagement(social.KindPost, "p1", []string{"u1"}, nil, 2)}
	select {
	case err := <-flushed:
		t.Fatalf("Flush returned %v with a request in flight", err)
	case <-time.After(50 * time.Millisecond):
	}

	second.reply <- fakeReply{v: engagement(social.KindMedia, "m1", []string{"u1"}, nil, 2)}
	select {
	case err := <-flushed:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Flush never returned")
	}

	// the mutator can be flushed again once idle
	_, err = m.ToggleMembership(p1, u1)
	require.NoError(t, err)
	gw.next(t).reply <- fakeReply{v: engagement(social.KindPost, "p1", nil, nil, 3)}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, m.Flush(ctx))
	assert.Empty(t, likes(t, store, p1))
}

func TestMutator_Flush_contextDone(t *testing.T) {
	store, gw, m, _ := setup()
	key := EngagementKey(social.KindPost, "p1")
	store.PutEngagement(engagement(social.KindPost, "p1", nil, nil, 1))

	_, err := m.ToggleMembership(key, Actor{ID: "u1"})
	require.NoError(t, err)
	call := gw.next(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, context.Canceled, m.Flush(ctx))

	call.reply <- fakeReply{v: engagement(social.KindPost, "p1", []string{"u1"}, nil, 2)}
	require.NoError(t, m.Flush(context.Background()))
}
