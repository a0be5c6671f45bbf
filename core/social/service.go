package social

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/club"
	"github.com/theadruss/Clix-App/core/user"
)

var (
	// errors
	ErrPostNotFound   = core.NewNotFoundError("post")
	ErrMediaNotFound  = core.NewNotFoundError("media")
	ErrCommentIDTaken = core.NewConflictError("a different comment with this id already exists")
	ErrUnknownKind    = errors.New("unknown engagement kind")
)

type (
	Repository interface {
		CreatePost(ctx context.Context, p Post) (Post, error)
		// ListPosts returns the club's posts, most recent first.
		ListPosts(ctx context.Context, clubID string) ([]Post, error)
		GetPost(ctx context.Context, id string) (Post, error)
		CreateMedia(ctx context.Context, m MediaPost) (MediaPost, error)
		// ListMedia returns the media posts of the club, or every media post when clubID is empty.
		ListMedia(ctx context.Context, clubID string) ([]MediaPost, error)
		GetMedia(ctx context.Context, id string) (MediaPost, error)
		// ToggleLike runs Engagement.ApplyToggle under the target's row lock and returns the result.
		ToggleLike(ctx context.Context, kind Kind, id, userID string) (Engagement, error)
		// AppendComment runs Engagement.ApplyComment under the target's row lock and returns the result.
		AppendComment(ctx context.Context, kind Kind, id string, c Comment) (Engagement, error)
	}

	Service struct {
		repo     Repository
		clubRepo club.Repository
	}
)

func NewService(repo Repository, clubRepo club.Repository) *Service {
	return &Service{repo: repo, clubRepo: clubRepo}
}

func (svc *Service) ListPosts(ctx context.Context, clubID string) ([]Post, error) {
	if _, err := svc.clubRepo.GetClubByID(ctx, clubID); err != nil {
		return nil, err
	}
	return svc.repo.ListPosts(ctx, clubID)
}

func (svc *Service) GetPost(ctx context.Context, id string) (Post, error) {
	return svc.repo.GetPost(ctx, id)
}

// CreatePost posts to a club feed. Members and the club's admin may post.
func (svc *Service) CreatePost(ctx context.Context, actor user.User, clubID string, np NewPost) (Post, error) {
	if _, err := svc.clubRepo.GetClubByID(ctx, clubID); err != nil {
		return Post{}, err
	}
	if !(actor.HasJoined(clubID) || actor.ManagesClub(clubID)) {
		return Post{}, core.ErrPermissionDenied
	}
	return svc.repo.CreatePost(ctx, Post{
		ID:         core.NewID("p"),
		ClubID:     clubID,
		UserID:     actor.ID,
		UserName:   actor.Name,
		UserAvatar: actor.Avatar,
		Content:    np.Content,
		Timestamp:  time.Now().UTC(),
		LikedBy:    []string{},
		Comments:   []Comment{},
		Version:    1,
	})
}

func (svc *Service) ListMedia(ctx context.Context, filter MediaFilter) ([]MediaPost, error) {
	return svc.repo.ListMedia(ctx, core.CleanString(filter.ClubID))
}

func (svc *Service) GetMedia(ctx context.Context, id string) (MediaPost, error) {
	return svc.repo.GetMedia(ctx, id)
}

// CreateMedia adds a photo to the gallery of the actor's club.
func (svc *Service) CreateMedia(ctx context.Context, actor user.User, nm NewMedia) (MediaPost, error) {
	if nm.ClubID == "" {
		nm.ClubID = actor.ClubID
	}
	if !actor.ManagesClub(nm.ClubID) {
		return MediaPost{}, core.ErrPermissionDenied
	}
	return svc.repo.CreateMedia(ctx, MediaPost{
		ID:        core.NewID("m"),
		ClubID:    nm.ClubID,
		EventID:   nm.EventID,
		ImageURL:  nm.ImageURL,
		Caption:   nm.Caption,
		LikedBy:   []string{},
		Comments:  []Comment{},
		Version:   1,
		CreatedAt: time.Now().UTC(),
	})
}

func checkKind(kind Kind) error {
	if kind != KindPost && kind != KindMedia {
		return errors.Wrap(ErrUnknownKind, string(kind))
	}
	return nil
}

// ToggleLike likes the target for actor when not liked yet and unlikes it otherwise.
// membership is recomputed from the stored set, never taken from the client.
func (svc *Service) ToggleLike(ctx context.Context, actor user.User, kind Kind, id string) (Engagement, error) {
	if err := checkKind(kind); err != nil {
		return Engagement{}, err
	}
	return svc.repo.ToggleLike(ctx, kind, id, actor.ID)
}

// Comment appends actor's comment to the target. nc.ID is kept when the client generated one.
func (svc *Service) Comment(ctx context.Context, actor user.User, kind Kind, id string, nc NewComment) (Engagement, error) {
	if err := checkKind(kind); err != nil {
		return Engagement{}, err
	}
	c := Comment{
		ID:        nc.ID,
		UserID:    actor.ID,
		UserName:  actor.Name,
		Text:      nc.Text,
		Timestamp: time.Now().UTC(),
	}
	if c.ID == "" {
		c.ID = core.NewID("c")
	}
	return svc.repo.AppendComment(ctx, kind, id, c)
}
