package client

import (
	"context"
	"net/url"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/announcement"
	"github.com/theadruss/Clix-App/core/club"
	"github.com/theadruss/Clix-App/core/event"
	"github.com/theadruss/Clix-App/core/social"
	"github.com/theadruss/Clix-App/core/user"
	"github.com/theadruss/Clix-App/core/venue"
	"github.com/theadruss/Clix-App/core/volunteer"
)

type loginResponse struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

// Login authenticates the client and starts its session.
func (c *Client) Login(ctx context.Context, email, pwd string) (user.User, error) {
	var res loginResponse
	in := map[string]string{"email": email, "password": pwd}
	if err := c.post(ctx, "/auth/login", in, &res); err != nil {
		return user.User{}, err
	}
	c.session.set(res.Token, &res.User)
	return res.User, nil
}

// Signup creates a student account and starts its session.
func (c *Client) Signup(ctx context.Context, s user.Signup) (user.User, error) {
	var res loginResponse
	if err := c.post(ctx, "/auth/signup", s, &res); err != nil {
		return user.User{}, err
	}
	c.session.set(res.Token, &res.User)
	return res.User, nil
}

func (c *Client) RefreshToken(ctx context.Context) error {
	var res struct {
		Token string `json:"token"`
	}
	if err := c.post(ctx, "/auth/token-refresh", nil, &res); err != nil {
		return err
	}
	c.session.set(res.Token, nil)
	return nil
}

func (c *Client) Logout() {
	c.session.Clear()
}

// Me reloads the session's user.
func (c *Client) Me(ctx context.Context) (user.User, error) {
	var usr user.User
	if err := c.get(ctx, "/me", nil, &usr); err != nil {
		return user.User{}, err
	}
	c.session.set(c.session.Token(), &usr)
	return usr, nil
}

func (c *Client) UpdateProfile(ctx context.Context, up user.UpdateProfile) (user.User, error) {
	var usr user.User
	if err := c.put(ctx, "/me", up, &usr); err != nil {
		return user.User{}, err
	}
	c.session.set(c.session.Token(), &usr)
	return usr, nil
}

// MyRegistrations lists the ids of the events the session's user registered for.
func (c *Client) MyRegistrations(ctx context.Context) ([]string, error) {
	ids := make([]string, 0)
	if err := c.get(ctx, "/me/registrations", nil, &ids); err != nil {
		return []string{}, err
	}
	return ids, nil
}

func (c *Client) MyApplications(ctx context.Context) ([]volunteer.Application, error) {
	apps := make([]volunteer.Application, 0)
	if err := c.get(ctx, "/me/volunteering", nil, &apps); err != nil {
		return []volunteer.Application{}, err
	}
	return apps, nil
}

func (c *Client) Venues(ctx context.Context) ([]venue.Venue, error) {
	venues := make([]venue.Venue, 0)
	if err := c.get(ctx, "/venues", nil, &venues); err != nil {
		return []venue.Venue{}, err
	}
	return venues, nil
}

// =========================================================================
// Clubs

func (c *Client) Clubs(ctx context.Context) ([]club.Club, error) {
	clubs := make([]club.Club, 0)
	if err := c.get(ctx, "/clubs", nil, &clubs); err != nil {
		return []club.Club{}, err
	}
	return clubs, nil
}

func (c *Client) Club(ctx context.Context, id string) (club.Club, error) {
	var cl club.Club
	err := c.get(ctx, pathID("/clubs", id), nil, &cl)
	return cl, err
}

func (c *Client) ClubMembers(ctx context.Context, id string) ([]user.User, error) {
	users := make([]user.User, 0)
	if err := c.get(ctx, pathID("/clubs", id, "/members"), nil, &users); err != nil {
		return []user.User{}, err
	}
	return users, nil
}

// ToggleMembership joins the club when the session's user is not a member and leaves it otherwise.
func (c *Client) ToggleMembership(ctx context.Context, clubID string) (club.Membership, error) {
	var m club.Membership
	if err := c.post(ctx, pathID("/clubs", clubID, "/membership"), nil, &m); err != nil {
		return club.Membership{}, err
	}
	if usr, ok := c.session.User(); ok && usr.ID == m.User.ID {
		c.session.set(c.session.Token(), &m.User)
	}
	return m, nil
}

func (c *Client) Announcements(ctx context.Context, clubID string) ([]announcement.Announcement, error) {
	anns := make([]announcement.Announcement, 0)
	if err := c.get(ctx, pathID("/clubs", clubID, "/announcements"), nil, &anns); err != nil {
		return []announcement.Announcement{}, err
	}
	return anns, nil
}

func (c *Client) CreateAnnouncement(ctx context.Context, clubID, content string) (announcement.Announcement, error) {
	var a announcement.Announcement
	err := c.post(ctx, pathID("/clubs", clubID, "/announcements"), announcement.NewAnnouncement{Content: content}, &a)
	return a, err
}

// =========================================================================
// Events

func (c *Client) Events(ctx context.Context, filter event.QueryFilter) ([]event.Event, error) {
	q := make(url.Values)
	if filter.ClubID != "" {
		q.Set("clubId", filter.ClubID)
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	events := make([]event.Event, 0)
	if err := c.get(ctx, "/events", q, &events); err != nil {
		return []event.Event{}, err
	}
	return events, nil
}

func (c *Client) Event(ctx context.Context, id string) (event.Event, error) {
	var e event.Event
	err := c.get(ctx, pathID("/events", id), nil, &e)
	return e, err
}

func (c *Client) ProposeEvent(ctx context.Context, p event.Proposal) (event.Event, error) {
	var e event.Event
	err := c.post(ctx, "/events", p, &e)
	return e, err
}

func (c *Client) SetEventStatus(ctx context.Context, id string, su event.StatusUpdate) (event.Event, error) {
	var e event.Event
	err := c.put(ctx, pathID("/events", id, "/status"), su, &e)
	return e, err
}

// Register registers the session's user for the event. Registering twice is a no-op.
func (c *Client) Register(ctx context.Context, eventID string) (event.RegistrationResult, error) {
	var res event.RegistrationResult
	err := c.post(ctx, pathID("/events", eventID, "/registrations"), nil, &res)
	return res, err
}

func (c *Client) AddFeedback(ctx context.Context, eventID string, nf event.NewFeedback) (event.Event, error) {
	var e event.Event
	err := c.post(ctx, pathID("/events", eventID, "/feedback"), nf, &e)
	return e, err
}

func (c *Client) Volunteer(ctx context.Context, eventID string) (volunteer.Application, error) {
	var a volunteer.Application
	err := c.post(ctx, pathID("/events", eventID, "/volunteers"), nil, &a)
	return a, err
}

func (c *Client) Report(ctx context.Context, eventID string) (string, error) {
	var res struct {
		Report string `json:"report"`
	}
	err := c.get(ctx, pathID("/events", eventID, "/report"), nil, &res)
	return res.Report, err
}

// =========================================================================
// Posts & media

func (c *Client) Posts(ctx context.Context, clubID string) ([]social.Post, error) {
	posts := make([]social.Post, 0)
	if err := c.get(ctx, pathID("/clubs", clubID, "/posts"), nil, &posts); err != nil {
		return []social.Post{}, err
	}
	return posts, nil
}

func (c *Client) Post(ctx context.Context, id string) (social.Post, error) {
	var p social.Post
	err := c.get(ctx, pathID("/posts", id), nil, &p)
	return p, err
}

func (c *Client) CreatePost(ctx context.Context, clubID string, np social.NewPost) (social.Post, error) {
	var p social.Post
	err := c.post(ctx, pathID("/clubs", clubID, "/posts"), np, &p)
	return p, err
}

func (c *Client) Media(ctx context.Context, clubID string) ([]social.MediaPost, error) {
	q := make(url.Values)
	if clubID != "" {
		q.Set("clubId", clubID)
	}
	media := make([]social.MediaPost, 0)
	if err := c.get(ctx, "/media", q, &media); err != nil {
		return []social.MediaPost{}, err
	}
	return media, nil
}

func (c *Client) CreateMedia(ctx context.Context, nm social.NewMedia) (social.MediaPost, error) {
	var m social.MediaPost
	err := c.post(ctx, "/media", nm, &m)
	return m, err
}

func kindPath(kind social.Kind) string {
	if kind == social.KindMedia {
		return "/media"
	}
	return "/posts"
}

// ToggleLike toggles the session's user in the likes of a post or media post.
func (c *Client) ToggleLike(ctx context.Context, kind social.Kind, id string) (social.Engagement, error) {
	var eng social.Engagement
	err := c.post(ctx, pathID(kindPath(kind), id, "/likes"), nil, &eng)
	return eng, err
}

// AppendComment appends a comment to a post or media post. Resending the same comment id and text is a no-op.
func (c *Client) AppendComment(ctx context.Context, kind social.Kind, id string, nc social.NewComment) (social.Engagement, error) {
	var eng social.Engagement
	err := c.post(ctx, pathID(kindPath(kind), id, "/comments"), nc, &eng)
	return eng, err
}

// =========================================================================
// Assist

// GenerateText never fails the caller's workflow: errors come back with an empty text.
func (c *Client) GenerateText(ctx context.Context, topic string, kind core.AssistKind) (string, error) {
	var res struct {
		Text string `json:"text"`
	}
	err := c.post(ctx, "/assist/text", map[string]string{"topic": topic, "kind": string(kind)}, &res)
	return res.Text, err
}

// GenerateImage returns a data URL, or nil when no image was generated.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (*string, error) {
	var res struct {
		Image *string `json:"image"`
	}
	if err := c.post(ctx, "/assist/image", map[string]string{"prompt": prompt}, &res); err != nil {
		return nil, err
	}
	return res.Image, nil
}
