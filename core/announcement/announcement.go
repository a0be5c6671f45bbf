package announcement

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/user"
)

type Announcement struct {
	ID      string    `json:"id"`
	ClubID  string    `json:"clubId"`
	Content string    `json:"content"`
	Date    time.Time `json:"date"`
}

type NewAnnouncement struct {
	Content string `json:"content" validate:"required,notblank"`
}

func (na *NewAnnouncement) Validate(validate *validator.Validate) error {
	na.Content = core.CleanString(na.Content)
	return validate.Struct(na)
}

type Repository interface {
	CreateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
	// ListAnnouncements returns the club's announcements, most recent first.
	ListAnnouncements(ctx context.Context, clubID string) ([]Announcement, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) ListByClub(ctx context.Context, clubID string) ([]Announcement, error) {
	return svc.repo.ListAnnouncements(ctx, clubID)
}

// Create posts an announcement to clubID. Only that club's admin may do it.
func (svc *Service) Create(ctx context.Context, actor user.User, clubID string, na NewAnnouncement) (Announcement, error) {
	if !actor.ManagesClub(clubID) {
		return Announcement{}, core.ErrPermissionDenied
	}
	return svc.repo.CreateAnnouncement(ctx, Announcement{
		ID:      core.NewID("a"),
		ClubID:  clubID,
		Content: na.Content,
		Date:    time.Now().UTC(),
	})
}
