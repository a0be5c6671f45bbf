package pgrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core/club"
)

const clubColumns = `id, name, description, logo, banner, admin_id, member_count`

type clubRow struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Logo        string `db:"logo"`
	Banner      string `db:"banner"`
	AdminID     string `db:"admin_id"`
	MemberCount int    `db:"member_count"`
}

func (r clubRow) club() club.Club {
	return club.Club(r)
}

type clubRepository struct {
	db *sqlx.DB
}

var _ club.Repository = (*clubRepository)(nil) // interface compliance check

func NewClubRepository(db *sqlx.DB) *clubRepository {
	return &clubRepository{db: db}
}

func (repo *clubRepository) CreateClub(ctx context.Context, c club.Club) (club.Club, error) {
	q := `INSERT INTO clubs (` + clubColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, q, c.ID, c.Name, c.Description, c.Logo, c.Banner, c.AdminID, c.MemberCount)
	if err != nil {
		if isUniqueViolation(err) {
			return club.Club{}, club.ErrNameExists
		}
		return club.Club{}, errors.Wrap(err, "inserting club")
	}
	return c, nil
}

func (repo *clubRepository) ListClubs(ctx context.Context) ([]club.Club, error) {
	var rows []clubRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+clubColumns+` FROM clubs ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "selecting clubs")
	}
	clubs := make([]club.Club, 0, len(rows))
	for _, r := range rows {
		clubs = append(clubs, r.club())
	}
	return clubs, nil
}

func (repo *clubRepository) GetClubByID(ctx context.Context, id string) (club.Club, error) {
	var row clubRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+clubColumns+` FROM clubs WHERE id = $1`, id); err != nil {
		return club.Club{}, trapNoRowsErr(err, club.ErrNotFound, "selecting club")
	}
	return row.club(), nil
}

func (repo *clubRepository) UpdateClub(ctx context.Context, c club.Club) (club.Club, error) {
	var row clubRow
	q := `UPDATE clubs SET name = $2, description = $3, logo = $4, banner = $5, admin_id = $6
		WHERE id = $1 RETURNING ` + clubColumns
	if err := repo.db.GetContext(ctx, &row, q, c.ID, c.Name, c.Description, c.Logo, c.Banner, c.AdminID); err != nil {
		if isUniqueViolation(err) {
			return club.Club{}, club.ErrNameExists
		}
		return club.Club{}, trapNoRowsErr(err, club.ErrNotFound, "updating club")
	}
	return row.club(), nil
}

func (repo *clubRepository) AddToMemberCount(ctx context.Context, id string, delta int) (club.Club, error) {
	var row clubRow
	q := `UPDATE clubs SET member_count = GREATEST(member_count + $2, 0) WHERE id = $1 RETURNING ` + clubColumns
	if err := repo.db.GetContext(ctx, &row, q, id, delta); err != nil {
		return club.Club{}, trapNoRowsErr(err, club.ErrNotFound, "updating member count")
	}
	return row.club(), nil
}
