package inmemdb

import (
	"context"
	"sort"

	"github.com/theadruss/Clix-App/core/venue"
)

type venueRepository struct {
	db *venueTable
}

var _ venue.Repository = (*venueRepository)(nil) // interface compliance check

func NewVenueRepository(db *DB) *venueRepository {
	return &venueRepository{db: db.venue}
}

func (repo *venueRepository) CreateVenue(_ context.Context, v venue.Venue) (venue.Venue, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	v.Features = cloneStrings(v.Features)
	stored := v
	repo.db.table[v.ID] = &stored
	return v, nil
}

func (repo *venueRepository) ListVenues(_ context.Context) ([]venue.Venue, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	venues := make([]venue.Venue, 0, len(repo.db.table))
	for _, v := range repo.db.table {
		cp := *v
		cp.Features = cloneStrings(v.Features)
		venues = append(venues, cp)
	}
	sort.Slice(venues, func(i, j int) bool { return venues[i].ID < venues[j].ID })
	return venues, nil
}

func (repo *venueRepository) GetVenueByID(_ context.Context, id string) (venue.Venue, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if v, ok := repo.db.table[id]; ok {
		cp := *v
		cp.Features = cloneStrings(v.Features)
		return cp, nil
	}
	return venue.Venue{}, venue.ErrNotFound
}
