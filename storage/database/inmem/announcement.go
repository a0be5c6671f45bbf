package inmemdb

import (
	"context"
	"sort"

	"github.com/theadruss/Clix-App/core/announcement"
)

type announcementRepository struct {
	db *announcementTable
}

var _ announcement.Repository = (*announcementRepository)(nil) // interface compliance check

func NewAnnouncementRepository(db *DB) *announcementRepository {
	return &announcementRepository{db: db.announcement}
}

func (repo *announcementRepository) CreateAnnouncement(_ context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored := a
	repo.db.table[a.ID] = &stored
	return a, nil
}

func (repo *announcementRepository) ListAnnouncements(_ context.Context, clubID string) ([]announcement.Announcement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	res := make([]announcement.Announcement, 0)
	for _, a := range repo.db.table {
		if a.ClubID == clubID {
			res = append(res, *a)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date.After(res[j].Date) })
	return res, nil
}
