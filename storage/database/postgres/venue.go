package pgrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core/venue"
)

type venueRow struct {
	ID       string         `db:"id"`
	Name     string         `db:"name"`
	Capacity int            `db:"capacity"`
	Features pq.StringArray `db:"features"`
}

func (r venueRow) venue() venue.Venue {
	v := venue.Venue{ID: r.ID, Name: r.Name, Capacity: r.Capacity, Features: []string(r.Features)}
	if v.Features == nil {
		v.Features = []string{}
	}
	return v
}

type venueRepository struct {
	db *sqlx.DB
}

var _ venue.Repository = (*venueRepository)(nil) // interface compliance check

func NewVenueRepository(db *sqlx.DB) *venueRepository {
	return &venueRepository{db: db}
}

func (repo *venueRepository) CreateVenue(ctx context.Context, v venue.Venue) (venue.Venue, error) {
	q := `INSERT INTO venues (id, name, capacity, features) VALUES ($1, $2, $3, $4)`
	if _, err := repo.db.ExecContext(ctx, q, v.ID, v.Name, v.Capacity, pq.StringArray(v.Features)); err != nil {
		return venue.Venue{}, errors.Wrap(err, "inserting venue")
	}
	return v, nil
}

func (repo *venueRepository) ListVenues(ctx context.Context) ([]venue.Venue, error) {
	var rows []venueRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT id, name, capacity, features FROM venues ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "selecting venues")
	}
	venues := make([]venue.Venue, 0, len(rows))
	for _, r := range rows {
		venues = append(venues, r.venue())
	}
	return venues, nil
}

func (repo *venueRepository) GetVenueByID(ctx context.Context, id string) (venue.Venue, error) {
	var row venueRow
	if err := repo.db.GetContext(ctx, &row, `SELECT id, name, capacity, features FROM venues WHERE id = $1`, id); err != nil {
		return venue.Venue{}, trapNoRowsErr(err, venue.ErrNotFound, "selecting venue")
	}
	return row.venue(), nil
}
