package pgrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core/volunteer"
)

const volunteerColumns = `id, event_id, user_id, user_name, user_avatar, status, applied_at`

type volunteerRow struct {
	ID         string    `db:"id"`
	EventID    string    `db:"event_id"`
	UserID     string    `db:"user_id"`
	UserName   string    `db:"user_name"`
	UserAvatar string    `db:"user_avatar"`
	Status     string    `db:"status"`
	AppliedAt  time.Time `db:"applied_at"`
}

func (r volunteerRow) application() volunteer.Application {
	a := volunteer.Application(r)
	a.AppliedAt = a.AppliedAt.UTC()
	return a
}

type volunteerRepository struct {
	db *sqlx.DB
}

var _ volunteer.Repository = (*volunteerRepository)(nil) // interface compliance check

func NewVolunteerRepository(db *sqlx.DB) *volunteerRepository {
	return &volunteerRepository{db: db}
}

func (repo *volunteerRepository) CreateApplication(ctx context.Context, a volunteer.Application) (volunteer.Application, error) {
	q := `INSERT INTO volunteers (` + volunteerColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, q, a.ID, a.EventID, a.UserID, a.UserName, a.UserAvatar, a.Status, a.AppliedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return volunteer.Application{}, volunteer.ErrAlreadyApplied
		}
		return volunteer.Application{}, errors.Wrap(err, "inserting volunteer application")
	}
	return a, nil
}

func (repo *volunteerRepository) GetApplicationByID(ctx context.Context, id string) (volunteer.Application, error) {
	var row volunteerRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+volunteerColumns+` FROM volunteers WHERE id = $1`, id); err != nil {
		return volunteer.Application{}, trapNoRowsErr(err, volunteer.ErrNotFound, "selecting volunteer application")
	}
	return row.application(), nil
}

func (repo *volunteerRepository) list(ctx context.Context, col, val string) ([]volunteer.Application, error) {
	var rows []volunteerRow
	q := `SELECT ` + volunteerColumns + ` FROM volunteers WHERE ` + col + ` = $1 ORDER BY applied_at`
	if err := repo.db.SelectContext(ctx, &rows, q, val); err != nil {
		return nil, errors.Wrap(err, "selecting volunteer applications")
	}
	res := make([]volunteer.Application, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.application())
	}
	return res, nil
}

func (repo *volunteerRepository) ListByEvent(ctx context.Context, eventID string) ([]volunteer.Application, error) {
	return repo.list(ctx, "event_id", eventID)
}

func (repo *volunteerRepository) ListByUser(ctx context.Context, userID string) ([]volunteer.Application, error) {
	return repo.list(ctx, "user_id", userID)
}

func (repo *volunteerRepository) SetStatus(ctx context.Context, id, status string) (volunteer.Application, error) {
	var row volunteerRow
	q := `UPDATE volunteers SET status = $2 WHERE id = $1 RETURNING ` + volunteerColumns
	if err := repo.db.GetContext(ctx, &row, q, id, status); err != nil {
		return volunteer.Application{}, trapNoRowsErr(err, volunteer.ErrNotFound, "updating volunteer application")
	}
	return row.application(), nil
}
