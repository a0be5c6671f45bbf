package pgrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/event"
)

const eventColumns = `id, title, description, organizer, club_id, date, time, venue_id, status, capacity,
	registered_count, image, tags, price, feedback, volunteers_needed, certificates_issued, winners,
	rejection_reason, created_at`

type eventRow struct {
	ID                 string                       `db:"id"`
	Title              string                       `db:"title"`
	Description        string                       `db:"description"`
	Organizer          string                       `db:"organizer"`
	ClubID             string                       `db:"club_id"`
	Date               string                       `db:"date"`
	Time               string                       `db:"time"`
	VenueID            string                       `db:"venue_id"`
	Status             string                       `db:"status"`
	Capacity           int                          `db:"capacity"`
	RegisteredCount    int                          `db:"registered_count"`
	Image              string                       `db:"image"`
	Tags               pq.StringArray               `db:"tags"`
	Price              float64                      `db:"price"`
	Feedback           jsonColumn[[]event.Feedback] `db:"feedback"`
	VolunteersNeeded   bool                         `db:"volunteers_needed"`
	CertificatesIssued bool                         `db:"certificates_issued"`
	Winners            jsonColumn[[]event.Winner]   `db:"winners"`
	RejectionReason    string                       `db:"rejection_reason"`
	CreatedAt          time.Time                    `db:"created_at"`
}

func (r eventRow) event() event.Event {
	e := event.Event{
		ID:                 r.ID,
		Title:              r.Title,
		Description:        r.Description,
		Organizer:          r.Organizer,
		ClubID:             r.ClubID,
		Date:               r.Date,
		Time:               r.Time,
		VenueID:            r.VenueID,
		Status:             r.Status,
		Capacity:           r.Capacity,
		RegisteredCount:    r.RegisteredCount,
		Image:              r.Image,
		Tags:               []string(r.Tags),
		Price:              r.Price,
		Feedback:           r.Feedback.V,
		VolunteersNeeded:   r.VolunteersNeeded,
		CertificatesIssued: r.CertificatesIssued,
		Winners:            r.Winners.V,
		RejectionReason:    r.RejectionReason,
		CreatedAt:          r.CreatedAt.UTC(),
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if e.Feedback == nil {
		e.Feedback = []event.Feedback{}
	}
	if e.Winners == nil {
		e.Winners = []event.Winner{}
	}
	return e
}

type eventRepository struct {
	db *sqlx.DB
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *sqlx.DB) *eventRepository {
	return &eventRepository{db: db}
}

func (repo *eventRepository) CreateEvent(ctx context.Context, e event.Event) (event.Event, error) {
	q := `INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := repo.db.ExecContext(ctx, q,
		e.ID, e.Title, e.Description, e.Organizer, e.ClubID, e.Date, e.Time, e.VenueID, e.Status, e.Capacity,
		e.RegisteredCount, e.Image, pq.StringArray(e.Tags), e.Price, jsonColumn[[]event.Feedback]{e.Feedback},
		e.VolunteersNeeded, e.CertificatesIssued, jsonColumn[[]event.Winner]{e.Winners}, e.RejectionReason, e.CreatedAt)
	if err != nil {
		return event.Event{}, errors.Wrap(err, "inserting event")
	}
	return e, nil
}

func (repo *eventRepository) GetEventByID(ctx context.Context, id string) (event.Event, error) {
	var row eventRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id); err != nil {
		return event.Event{}, trapNoRowsErr(err, event.ErrNotFound, "selecting event")
	}
	return row.event(), nil
}

func (repo *eventRepository) FilterEvents(ctx context.Context, filter event.QueryFilter, ordering ...core.DBOrdering) ([]event.Event, error) {
	var where whereBuilder
	if filter.ClubID != "" {
		where.add("club_id = %s", filter.ClubID)
	}
	if filter.Status != "" {
		where.add("status = %s", filter.Status)
	}

	var rows []eventRow
	q := `SELECT ` + eventColumns + ` FROM events` + where.String() + orderBy(ordering, "date ASC, time ASC")
	if err := repo.db.SelectContext(ctx, &rows, q, where.args...); err != nil {
		return nil, errors.Wrap(err, "filtering events")
	}
	events := make([]event.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.event())
	}
	return events, nil
}

func (repo *eventRepository) UpdateEvent(ctx context.Context, e event.Event) (event.Event, error) {
	var row eventRow
	q := `UPDATE events SET title = $2, description = $3, date = $4, time = $5, venue_id = $6, capacity = $7,
		price = $8, image = $9, tags = $10, volunteers_needed = $11, status = $12, rejection_reason = $13
		WHERE id = $1 RETURNING ` + eventColumns
	err := repo.db.GetContext(ctx, &row, q,
		e.ID, e.Title, e.Description, e.Date, e.Time, e.VenueID, e.Capacity,
		e.Price, e.Image, pq.StringArray(e.Tags), e.VolunteersNeeded, e.Status, e.RejectionReason)
	if err != nil {
		return event.Event{}, trapNoRowsErr(err, event.ErrNotFound, "updating event")
	}
	return row.event(), nil
}

func (repo *eventRepository) set(ctx context.Context, exec sqlx.QueryerContext, id, assignments string, args ...interface{}) (event.Event, error) {
	var row eventRow
	q := `UPDATE events SET ` + assignments + ` WHERE id = $1 RETURNING ` + eventColumns
	if err := sqlx.GetContext(ctx, exec, &row, q, append([]interface{}{id}, args...)...); err != nil {
		return event.Event{}, trapNoRowsErr(err, event.ErrNotFound, "updating event")
	}
	return row.event(), nil
}

func (repo *eventRepository) SetStatus(ctx context.Context, id, status, reason string) (event.Event, error) {
	return repo.set(ctx, repo.db, id, "status = $2, rejection_reason = $3", status, reason)
}

// lock selects the event for update inside tx.
func (repo *eventRepository) lock(ctx context.Context, tx *sqlx.Tx, id string) (event.Event, error) {
	var row eventRow
	if err := tx.GetContext(ctx, &row, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id); err != nil {
		return event.Event{}, trapNoRowsErr(err, event.ErrNotFound, "locking event")
	}
	return row.event(), nil
}

func (repo *eventRepository) Register(ctx context.Context, eventID, userID string) (event.Event, bool, error) {
	var (
		e       event.Event
		created bool
	)
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var err error
		if e, err = repo.lock(ctx, tx, eventID); err != nil {
			return err
		}

		var exists bool
		q := `SELECT EXISTS (SELECT 1 FROM registrations WHERE event_id = $1 AND user_id = $2)`
		if err = tx.GetContext(ctx, &exists, q, eventID, userID); err != nil {
			return errors.Wrap(err, "checking registration")
		}
		if exists {
			return nil
		}
		if e.IsFull() {
			return event.ErrFull
		}

		q = `INSERT INTO registrations (event_id, user_id, created_at) VALUES ($1, $2, $3)`
		if _, err = tx.ExecContext(ctx, q, eventID, userID, time.Now().UTC()); err != nil {
			return errors.Wrap(err, "inserting registration")
		}
		if e, err = repo.set(ctx, tx, eventID, "registered_count = registered_count + 1"); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return event.Event{}, false, err
	}
	return e, created, nil
}

func (repo *eventRepository) ListRegistrations(ctx context.Context, eventID string) ([]event.Registration, error) {
	var rows []struct {
		EventID   string    `db:"event_id"`
		UserID    string    `db:"user_id"`
		CreatedAt time.Time `db:"created_at"`
	}
	q := `SELECT event_id, user_id, created_at FROM registrations WHERE event_id = $1 ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, q, eventID); err != nil {
		return nil, errors.Wrap(err, "selecting registrations")
	}
	regs := make([]event.Registration, 0, len(rows))
	for _, r := range rows {
		regs = append(regs, event.Registration{EventID: r.EventID, UserID: r.UserID, CreatedAt: r.CreatedAt.UTC()})
	}
	return regs, nil
}

func (repo *eventRepository) ListUserRegistrations(ctx context.Context, userID string) ([]string, error) {
	ids := make([]string, 0)
	q := `SELECT event_id FROM registrations WHERE user_id = $1 ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &ids, q, userID); err != nil {
		return nil, errors.Wrap(err, "selecting user registrations")
	}
	return ids, nil
}

func (repo *eventRepository) AppendFeedback(ctx context.Context, eventID string, fb event.Feedback) (event.Event, error) {
	var e event.Event
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var err error
		if e, err = repo.lock(ctx, tx, eventID); err != nil {
			return err
		}
		for _, existing := range e.Feedback {
			if existing.UserID == fb.UserID {
				return event.ErrFeedbackExists
			}
		}
		e, err = repo.set(ctx, tx, eventID, "feedback = $2", jsonColumn[[]event.Feedback]{append(e.Feedback, fb)})
		return err
	})
	if err != nil {
		return event.Event{}, err
	}
	return e, nil
}

func (repo *eventRepository) SetCertificatesIssued(ctx context.Context, id string) (event.Event, error) {
	return repo.set(ctx, repo.db, id, "certificates_issued = TRUE")
}

func (repo *eventRepository) SetWinners(ctx context.Context, id string, winners []event.Winner) (event.Event, error) {
	if winners == nil {
		winners = []event.Winner{}
	}
	return repo.set(ctx, repo.db, id, "winners = $2", jsonColumn[[]event.Winner]{winners})
}
