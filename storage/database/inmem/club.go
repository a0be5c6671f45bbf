package inmemdb

import (
	"context"
	"sort"

	"github.com/theadruss/Clix-App/core/club"
)

type clubRepository struct {
	db *clubTable
}

var _ club.Repository = (*clubRepository)(nil) // interface compliance check

func NewClubRepository(db *DB) *clubRepository {
	return &clubRepository{db: db.club}
}

func (repo *clubRepository) CreateClub(_ context.Context, c club.Club) (club.Club, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.table {
		if existing.Name == c.Name {
			return club.Club{}, club.ErrNameExists
		}
	}
	stored := c
	repo.db.table[c.ID] = &stored
	return stored, nil
}

func (repo *clubRepository) ListClubs(_ context.Context) ([]club.Club, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	clubs := make([]club.Club, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		clubs = append(clubs, *c)
	}
	sort.Slice(clubs, func(i, j int) bool { return clubs[i].Name < clubs[j].Name })
	return clubs, nil
}

func (repo *clubRepository) GetClubByID(_ context.Context, id string) (club.Club, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return *c, nil
	}
	return club.Club{}, club.ErrNotFound
}

func (repo *clubRepository) UpdateClub(_ context.Context, c club.Club) (club.Club, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[c.ID]
	if !ok {
		return club.Club{}, club.ErrNotFound
	}
	for _, existing := range repo.db.table {
		if existing.ID != c.ID && existing.Name == c.Name {
			return club.Club{}, club.ErrNameExists
		}
	}
	c.MemberCount = orig.MemberCount
	stored := c
	repo.db.table[c.ID] = &stored
	return stored, nil
}

func (repo *clubRepository) AddToMemberCount(_ context.Context, id string, delta int) (club.Club, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c, ok := repo.db.table[id]
	if !ok {
		return club.Club{}, club.ErrNotFound
	}
	c.MemberCount += delta
	if c.MemberCount < 0 {
		c.MemberCount = 0
	}
	return *c, nil
}
