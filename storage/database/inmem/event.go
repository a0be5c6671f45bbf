package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/event"
)

type eventRepository struct {
	db *eventTable
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *DB) *eventRepository {
	return &eventRepository{db: db.event}
}

func copyEvent(e *event.Event) event.Event {
	cp := *e
	cp.Tags = cloneStrings(e.Tags)
	cp.Feedback = append(make([]event.Feedback, 0, len(e.Feedback)), e.Feedback...)
	cp.Winners = append(make([]event.Winner, 0, len(e.Winners)), e.Winners...)
	return cp
}

func (repo *eventRepository) CreateEvent(_ context.Context, e event.Event) (event.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored := copyEvent(&e)
	repo.db.table[e.ID] = &stored
	return copyEvent(&stored), nil
}

func (repo *eventRepository) GetEventByID(_ context.Context, id string) (event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if e, ok := repo.db.table[id]; ok {
		return copyEvent(e), nil
	}
	return event.Event{}, event.ErrNotFound
}

func (repo *eventRepository) FilterEvents(_ context.Context, filter event.QueryFilter, ordering ...core.DBOrdering) ([]event.Event, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	events := make([]event.Event, 0)
	for _, e := range repo.db.table {
		if filter.ClubID != "" && e.ClubID != filter.ClubID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		events = append(events, copyEvent(e))
	}

	sort.SliceStable(events, lessFunc(ordering, map[string]func(i, j int) int{
		"date": func(i, j int) int {
			return strings.Compare(events[i].Date+events[i].Time, events[j].Date+events[j].Time)
		},
		"title":            func(i, j int) int { return strings.Compare(events[i].Title, events[j].Title) },
		"created_at":       func(i, j int) int { return compareTime(events[i].CreatedAt, events[j].CreatedAt) },
		"registered_count": func(i, j int) int { return events[i].RegisteredCount - events[j].RegisteredCount },
	}, func(i, j int) bool { return events[i].Date+events[i].Time < events[j].Date+events[j].Time }))
	return events, nil
}

// update runs fn on the stored event under the write lock.
func (repo *eventRepository) update(id string, fn func(e *event.Event) error) (event.Event, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	e, ok := repo.db.table[id]
	if !ok {
		return event.Event{}, event.ErrNotFound
	}
	if err := fn(e); err != nil {
		return event.Event{}, err
	}
	return copyEvent(e), nil
}

func (repo *eventRepository) UpdateEvent(_ context.Context, e event.Event) (event.Event, error) {
	return repo.update(e.ID, func(stored *event.Event) error {
		stored.Title = e.Title
		stored.Description = e.Description
		stored.Date = e.Date
		stored.Time = e.Time
		stored.VenueID = e.VenueID
		stored.Capacity = e.Capacity
		stored.Price = e.Price
		stored.Image = e.Image
		stored.Tags = cloneStrings(e.Tags)
		stored.VolunteersNeeded = e.VolunteersNeeded
		stored.Status = e.Status
		stored.RejectionReason = e.RejectionReason
		return nil
	})
}

func (repo *eventRepository) SetStatus(_ context.Context, id, status, reason string) (event.Event, error) {
	return repo.update(id, func(e *event.Event) error {
		e.Status = status
		e.RejectionReason = reason
		return nil
	})
}

func (repo *eventRepository) Register(_ context.Context, eventID, userID string) (event.Event, bool, error) {
	created := false
	e, err := repo.update(eventID, func(e *event.Event) error {
		for _, r := range repo.db.registrations {
			if r.EventID == eventID && r.UserID == userID {
				return nil
			}
		}
		if e.IsFull() {
			return event.ErrFull
		}
		repo.db.registrations = append(repo.db.registrations, event.Registration{
			EventID:   eventID,
			UserID:    userID,
			CreatedAt: time.Now().UTC(),
		})
		e.RegisteredCount++
		created = true
		return nil
	})
	return e, created, err
}

func (repo *eventRepository) ListRegistrations(_ context.Context, eventID string) ([]event.Registration, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	regs := make([]event.Registration, 0)
	for _, r := range repo.db.registrations {
		if r.EventID == eventID {
			regs = append(regs, r)
		}
	}
	return regs, nil
}

func (repo *eventRepository) ListUserRegistrations(_ context.Context, userID string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ids := make([]string, 0)
	for _, r := range repo.db.registrations {
		if r.UserID == userID {
			ids = append(ids, r.EventID)
		}
	}
	return ids, nil
}

func (repo *eventRepository) AppendFeedback(_ context.Context, eventID string, fb event.Feedback) (event.Event, error) {
	return repo.update(eventID, func(e *event.Event) error {
		for _, existing := range e.Feedback {
			if existing.UserID == fb.UserID {
				return event.ErrFeedbackExists
			}
		}
		e.Feedback = append(e.Feedback, fb)
		return nil
	})
}

func (repo *eventRepository) SetCertificatesIssued(_ context.Context, id string) (event.Event, error) {
	return repo.update(id, func(e *event.Event) error {
		e.CertificatesIssued = true
		return nil
	})
}

func (repo *eventRepository) SetWinners(_ context.Context, id string, winners []event.Winner) (event.Event, error) {
	return repo.update(id, func(e *event.Event) error {
		e.Winners = append(make([]event.Winner, 0, len(winners)), winners...)
		return nil
	})
}
