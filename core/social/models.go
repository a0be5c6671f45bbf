package social

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/theadruss/Clix-App/core"
)

// Kind is the kind of engagement target.
type Kind string

const (
	KindPost  Kind = "post"
	KindMedia Kind = "media"
)

// Comment is an entry of an append-only comments log. Comments are never edited or removed.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Same reports whether c and o carry the same entry, ignoring the server timestamp.
func (c Comment) Same(o Comment) bool {
	return c.ID == o.ID && c.UserID == o.UserID && c.Text == o.Text
}

type Post struct {
	ID         string    `json:"id"`
	ClubID     string    `json:"clubId"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	UserAvatar string    `json:"userAvatar"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	LikedBy    []string  `json:"likedBy"`
	Comments   []Comment `json:"comments"`
	Version    int       `json:"version"`
}

type MediaPost struct {
	ID        string    `json:"id"`
	ClubID    string    `json:"clubId"`
	EventID   string    `json:"eventId,omitempty"`
	ImageURL  string    `json:"imageUrl"`
	Caption   string    `json:"caption"`
	LikedBy   []string  `json:"likedBy"`
	Comments  []Comment `json:"comments"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
}

// Engagement is the shared mutable part of a post or a media post.
type Engagement struct {
	Kind     Kind      `json:"kind"`
	ID       string    `json:"id"`
	LikedBy  []string  `json:"likedBy"`
	Comments []Comment `json:"comments"`
	Version  int       `json:"version"`
}

func (p Post) Engagement() Engagement {
	return Engagement{Kind: KindPost, ID: p.ID, LikedBy: p.LikedBy, Comments: p.Comments, Version: p.Version}
}

func (m MediaPost) Engagement() Engagement {
	return Engagement{Kind: KindMedia, ID: m.ID, LikedBy: m.LikedBy, Comments: m.Comments, Version: m.Version}
}

// ApplyToggle toggles userID in likedBy. It is the read-modify-write every repository runs under its lock.
func (e *Engagement) ApplyToggle(userID string) (liked bool) {
	e.LikedBy, liked = core.ToggleString(e.LikedBy, userID)
	e.Version++
	return liked
}

// ApplyComment appends c unless an entry with the same id exists.
// re-appending the same entry is a no-op; a different entry under an existing id is a conflict.
func (e *Engagement) ApplyComment(c Comment) error {
	for _, existing := range e.Comments {
		if existing.ID != c.ID {
			continue
		}
		if existing.Same(c) {
			return nil
		}
		return ErrCommentIDTaken
	}
	e.Comments = append(e.Comments, c)
	e.Version++
	return nil
}

type NewPost struct {
	Content string `json:"content" validate:"required,notblank"`
}

func (np *NewPost) Validate(validate *validator.Validate) error {
	np.Content = core.CleanString(np.Content)
	return validate.Struct(np)
}

type NewMedia struct {
	ClubID   string `json:"clubId"`
	EventID  string `json:"eventId"`
	ImageURL string `json:"imageUrl" validate:"required,notblank"`
	Caption  string `json:"caption"`
}

func (nm *NewMedia) Validate(validate *validator.Validate) error {
	nm.ClubID = core.CleanString(nm.ClubID)
	nm.EventID = core.CleanString(nm.EventID)
	nm.ImageURL = core.CleanString(nm.ImageURL)
	nm.Caption = core.CleanString(nm.Caption)
	return validate.Struct(nm)
}

// NewComment is a comment sent by a client. ID is generated by the client so retries can be recognized.
type NewComment struct {
	ID   string `json:"id" validate:"omitempty,clientid"`
	Text string `json:"text" validate:"required,notblank"`
}

func (nc *NewComment) Validate(validate *validator.Validate) error {
	nc.ID = core.CleanString(nc.ID)
	nc.Text = core.CleanString(nc.Text)
	return validate.Struct(nc)
}

type MediaFilter struct {
	ClubID string `query:"clubId"`
}
