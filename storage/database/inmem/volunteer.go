package inmemdb

import (
	"context"
	"sort"

	"github.com/theadruss/Clix-App/core/volunteer"
)

type volunteerRepository struct {
	db *volunteerTable
}

var _ volunteer.Repository = (*volunteerRepository)(nil) // interface compliance check

func NewVolunteerRepository(db *DB) *volunteerRepository {
	return &volunteerRepository{db: db.volunteer}
}

func (repo *volunteerRepository) CreateApplication(_ context.Context, a volunteer.Application) (volunteer.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.table {
		if existing.EventID == a.EventID && existing.UserID == a.UserID {
			return volunteer.Application{}, volunteer.ErrAlreadyApplied
		}
	}
	stored := a
	repo.db.table[a.ID] = &stored
	return a, nil
}

func (repo *volunteerRepository) GetApplicationByID(_ context.Context, id string) (volunteer.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.table[id]; ok {
		return *a, nil
	}
	return volunteer.Application{}, volunteer.ErrNotFound
}

func (repo *volunteerRepository) list(keep func(a *volunteer.Application) bool) []volunteer.Application {
	repo.db.RLock()
	defer repo.db.RUnlock()

	res := make([]volunteer.Application, 0)
	for _, a := range repo.db.table {
		if keep(a) {
			res = append(res, *a)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].AppliedAt.Before(res[j].AppliedAt) })
	return res
}

func (repo *volunteerRepository) ListByEvent(_ context.Context, eventID string) ([]volunteer.Application, error) {
	return repo.list(func(a *volunteer.Application) bool { return a.EventID == eventID }), nil
}

func (repo *volunteerRepository) ListByUser(_ context.Context, userID string) ([]volunteer.Application, error) {
	return repo.list(func(a *volunteer.Application) bool { return a.UserID == userID }), nil
}

func (repo *volunteerRepository) SetStatus(_ context.Context, id, status string) (volunteer.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a, ok := repo.db.table[id]
	if !ok {
		return volunteer.Application{}, volunteer.ErrNotFound
	}
	a.Status = status
	return *a, nil
}
