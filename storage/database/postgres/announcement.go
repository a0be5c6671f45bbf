package pgrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core/announcement"
)

type announcementRepository struct {
	db *sqlx.DB
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *sqlx.DB) *announcementRepository {
	return &announcementRepository{db: db}
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	q := `INSERT INTO announcements (id, club_id, content, date) VALUES ($1, $2, $3, $4)`
	if _, err := repo.db.ExecContext(ctx, q, a.ID, a.ClubID, a.Content, a.Date); err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "inserting announcement")
	}
	return a, nil
}

func (repo *announcementRepository) ListAnnouncements(ctx context.Context, clubID string) ([]announcement.Announcement, error) {
	var rows []struct {
		ID      string    `db:"id"`
		ClubID  string    `db:"club_id"`
		Content string    `db:"content"`
		Date    time.Time `db:"date"`
	}
	q := `SELECT id, club_id, content, date FROM announcements WHERE club_id = $1 ORDER BY date DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, clubID); err != nil {
		return nil, errors.Wrap(err, "selecting announcements")
	}
	res := make([]announcement.Announcement, 0, len(rows))
	for _, r := range rows {
		res = append(res, announcement.Announcement{ID: r.ID, ClubID: r.ClubID, Content: r.Content, Date: r.Date.UTC()})
	}
	return res, nil
}
