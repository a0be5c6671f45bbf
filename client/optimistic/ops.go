package optimistic

import (
	"time"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/club"
	"github.com/theadruss/Clix-App/core/event"
	"github.com/theadruss/Clix-App/core/social"
	"github.com/theadruss/Clix-App/core/user"
)

const tempPostPrefix = "temp-"

// NewCommentID returns a client-generated comment id. The API accepts it as the comment's id.
func NewCommentID() string {
	return core.NewID("c")
}

// NewComment builds a comment by actor, stamped now, with a fresh client id.
func NewComment(actor Actor, text string) social.Comment {
	return social.Comment{
		ID:        NewCommentID(),
		UserID:    actor.ID,
		UserName:  actor.Name,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

// IsTemporary reports whether a post of a feed is an unconfirmed local post.
func IsTemporary(p social.Post) bool {
	return len(p.ID) > len(tempPostPrefix) && p.ID[:len(tempPostPrefix)] == tempPostPrefix
}

func engagementKind(target Key) (social.Kind, error) {
	switch target.Kind {
	case KindPost:
		return social.KindPost, nil
	case KindMedia:
		return social.KindMedia, nil
	}
	return "", ErrUnknownKind
}

func replaceWith(v interface{}) func(interface{}) interface{} {
	return func(interface{}) interface{} { return v }
}

// failed ends the failed mutation seq of key, following policy.
func (m *Mutator) failed(key Key, seq uint64, policy RollbackPolicy) {
	if policy == KeepOnFailure {
		m.store.keep(key, seq)
		return
	}
	m.store.rollback(key, seq)
}

// =========================================================================
// Likes

// ToggleMembership toggles actor in the likes of a post or media post.
// The displayed likes flip before it returns; the API's answer replaces them once confirmed.
func (m *Mutator) ToggleMembership(target Key, actor Actor) (*Pending, error) {
	kind, err := engagementKind(target)
	if err != nil {
		return nil, err
	}

	toggle := func(v interface{}) interface{} {
		eng := v.(social.Engagement)
		eng.LikedBy, _ = core.ToggleString(eng.LikedBy, actor.ID)
		return eng
	}
	seqs, ok := m.store.begin(keyDelta{key: target, delta: toggle})
	if !ok {
		return nil, ErrUnknownTarget
	}
	seq := seqs[0]
	policy := m.policy

	p := newPending("")
	m.enqueue(target, func() {
		ctx, cancel := m.requestContext()
		defer cancel()

		eng, err := m.gw.ToggleLike(ctx, kind, target.ID)
		if err != nil {
			m.failed(target, seq, policy)
			m.fail(Failure{Op: "like", Target: target, Err: err, RolledBack: policy == RollbackOnFailure})
			p.resolve(err)
			return
		}
		m.store.settle(target, seq, replaceWith(eng))
		p.resolve(nil)
	})
	return p, nil
}

// =========================================================================
// Comments

// AppendEntry appends c to the comments of a post or media post.
// An empty c.ID is filled with a fresh client id, sent to the API so a retried append is a no-op.
// The target's comment draft is cleared.
func (m *Mutator) AppendEntry(target Key, c social.Comment) (*Pending, error) {
	kind, err := engagementKind(target)
	if err != nil {
		return nil, err
	}
	c.Text = core.CleanString(c.Text)
	if c.Text == "" {
		return nil, ErrBlankText
	}
	if c.ID == "" {
		c.ID = NewCommentID()
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}

	appendc := func(v interface{}) interface{} {
		eng := v.(social.Engagement)
		for _, existing := range eng.Comments {
			if existing.ID == c.ID {
				return eng
			}
		}
		comments := make([]social.Comment, 0, len(eng.Comments)+1)
		eng.Comments = append(append(comments, eng.Comments...), c)
		return eng
	}
	seqs, ok := m.store.begin(keyDelta{key: target, delta: appendc})
	if !ok {
		return nil, ErrUnknownTarget
	}
	seq := seqs[0]
	policy := m.policy
	m.store.SetDraft(target, "")

	p := newPending(c.ID)
	m.enqueue(target, func() {
		ctx, cancel := m.requestContext()
		defer cancel()

		eng, err := m.gw.AppendComment(ctx, kind, target.ID, social.NewComment{ID: c.ID, Text: c.Text})
		if err != nil {
			m.failed(target, seq, policy)
			m.fail(Failure{Op: "comment", Target: target, Err: err, RolledBack: policy == RollbackOnFailure})
			p.resolve(err)
			return
		}
		m.store.settle(target, seq, replaceWith(eng))
		p.resolve(nil)
	})
	return p, nil
}

// =========================================================================
// Club membership

// JoinOrLeaveClub joins the club when actor is not a member and leaves it otherwise.
// Both the user and the club are updated; a failure always rolls both back.
// The membership requests of a user are sent one at a time.
func (m *Mutator) JoinOrLeaveClub(actor Actor, clubID string) (*Pending, error) {
	userKey, clubKey := UserKey(actor.ID), ClubKey(clubID)
	usr, ok := m.store.User(actor.ID)
	if !ok {
		return nil, ErrUnknownTarget
	}
	joining := !usr.HasJoined(clubID)

	userDelta := func(v interface{}) interface{} {
		u := v.(user.User)
		u.JoinedClubIDs, _ = core.ToggleString(u.JoinedClubIDs, clubID)
		return u
	}
	clubDelta := func(v interface{}) interface{} {
		c := v.(club.Club)
		if joining {
			c.MemberCount++
		} else if c.MemberCount > 0 {
			c.MemberCount--
		}
		return c
	}
	seqs, ok := m.store.begin(keyDelta{key: userKey, delta: userDelta}, keyDelta{key: clubKey, delta: clubDelta})
	if !ok {
		return nil, ErrUnknownTarget
	}

	p := newPending("")
	m.enqueue(userKey, func() {
		ctx, cancel := m.requestContext()
		defer cancel()

		ms, err := m.gw.ToggleMembership(ctx, clubID)
		if err != nil {
			m.store.rollback(userKey, seqs[0])
			m.store.rollback(clubKey, seqs[1])
			m.fail(Failure{Op: "membership", Target: clubKey, Err: err, RolledBack: true})
			p.resolve(err)
			return
		}
		m.store.settle(userKey, seqs[0], replaceWith(ms.User))
		m.store.settle(clubKey, seqs[1], replaceWith(ms.Club))
		p.resolve(nil)
	})
	return p, nil
}

// =========================================================================
// Registrations

// Register registers actor for an event. The ticket and the event's count show up at once; a failure rolls both back.
// The registrations of a user are sent one at a time.
func (m *Mutator) Register(actor Actor, eventID string) (*Pending, error) {
	ticketsKey, eventKey := TicketsKey(actor.ID), EventKey(eventID)
	tickets, ok := m.store.Tickets(actor.ID)
	if !ok {
		return nil, ErrUnknownTarget
	}
	already := core.ContainsString(tickets, eventID)

	ticketsDelta := func(v interface{}) interface{} {
		ids := v.([]string)
		if core.ContainsString(ids, eventID) {
			return ids
		}
		return append(append(make([]string, 0, len(ids)+1), ids...), eventID)
	}
	eventDelta := func(v interface{}) interface{} {
		e := v.(event.Event)
		if !already {
			e.RegisteredCount++
		}
		return e
	}
	seqs, ok := m.store.begin(keyDelta{key: ticketsKey, delta: ticketsDelta}, keyDelta{key: eventKey, delta: eventDelta})
	if !ok {
		return nil, ErrUnknownTarget
	}

	p := newPending("")
	m.enqueue(ticketsKey, func() {
		ctx, cancel := m.requestContext()
		defer cancel()

		res, err := m.gw.Register(ctx, eventID)
		if err != nil {
			m.store.rollback(ticketsKey, seqs[0])
			m.store.rollback(eventKey, seqs[1])
			m.fail(Failure{Op: "register", Target: eventKey, Err: err, RolledBack: true})
			p.resolve(err)
			return
		}
		m.store.settle(ticketsKey, seqs[0], replaceWith(append([]string{}, res.RegisteredEventIDs...)))
		m.store.settle(eventKey, seqs[1], replaceWith(res.Event))
		p.resolve(nil)
	})
	return p, nil
}

// =========================================================================
// Posts

// CreatePost shows a temporary post on top of the club's feed until the API returns the stored one.
// The temporary post is removed on failure.
func (m *Mutator) CreatePost(actor Actor, clubID, content string) (*Pending, error) {
	feedKey := FeedKey(clubID)
	content = core.CleanString(content)
	if content == "" {
		return nil, ErrBlankText
	}

	tmp := social.Post{
		ID:         core.NewID(tempPostPrefix),
		ClubID:     clubID,
		UserID:     actor.ID,
		UserName:   actor.Name,
		UserAvatar: actor.Avatar,
		Content:    content,
		Timestamp:  time.Now().UTC(),
		LikedBy:    []string{},
		Comments:   []social.Comment{},
	}
	prepend := func(v interface{}) interface{} {
		return prependPost(v.([]social.Post), tmp)
	}
	seqs, ok := m.store.begin(keyDelta{key: feedKey, delta: prepend})
	if !ok {
		return nil, ErrUnknownTarget
	}
	seq := seqs[0]

	p := newPending(tmp.ID)
	m.enqueue(feedKey, func() {
		ctx, cancel := m.requestContext()
		defer cancel()

		post, err := m.gw.CreatePost(ctx, clubID, social.NewPost{Content: content})
		if err != nil {
			m.store.rollback(feedKey, seq)
			m.fail(Failure{Op: "post", Target: feedKey, Err: err, RolledBack: true})
			p.resolve(err)
			return
		}
		m.store.PutEngagement(post.Engagement())
		m.store.settle(feedKey, seq, func(confirmed interface{}) interface{} {
			return prependPost(confirmed.([]social.Post), post)
		})
		p.resolve(nil)
	})
	return p, nil
}

// prependPost returns a copy of posts with p on top, unless a post with the same id is already there.
func prependPost(posts []social.Post, p social.Post) []social.Post {
	for _, existing := range posts {
		if existing.ID == p.ID {
			return posts
		}
	}
	return append(append(make([]social.Post, 0, len(posts)+1), p), posts...)
}
