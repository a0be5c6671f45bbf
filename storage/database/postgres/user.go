package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/user"
)

const userColumns = `id, name, email, role, avatar, club_id, bio, join_date, joined_club_ids, year, branch,
	is_active, password_hash, created_at, updated_at, last_login`

type userRow struct {
	ID            string         `db:"id"`
	Name          string         `db:"name"`
	Email         string         `db:"email"`
	Role          string         `db:"role"`
	Avatar        string         `db:"avatar"`
	ClubID        string         `db:"club_id"`
	Bio           string         `db:"bio"`
	JoinDate      string         `db:"join_date"`
	JoinedClubIDs pq.StringArray `db:"joined_club_ids"`
	Year          string         `db:"year"`
	Branch        string         `db:"branch"`
	IsActive      bool           `db:"is_active"`
	PasswordHash  []byte         `db:"password_hash"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
	LastLogin     sql.NullTime   `db:"last_login"`
}

func (r userRow) user() user.User {
	usr := user.User{
		ID:            r.ID,
		Name:          r.Name,
		Email:         r.Email,
		Role:          r.Role,
		Avatar:        r.Avatar,
		ClubID:        r.ClubID,
		Bio:           r.Bio,
		JoinDate:      r.JoinDate,
		JoinedClubIDs: []string(r.JoinedClubIDs),
		Year:          r.Year,
		Branch:        r.Branch,
		IsActive:      r.IsActive,
		PasswordHash:  r.PasswordHash,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if usr.JoinedClubIDs == nil {
		usr.JoinedClubIDs = []string{}
	}
	if r.LastLogin.Valid {
		usr.LastLogin = r.LastLogin.Time.UTC()
	}
	return usr
}

func userRows(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.user())
	}
	return users
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	ids := make([]string, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		ids = append(ids, u.ID)
	}
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND NOT (id = ANY($2)))`
	if err := repo.db.GetContext(ctx, &exists, q, email, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.JoinedClubIDs == nil {
		usr.JoinedClubIDs = []string{}
	}
	var lastLogin sql.NullTime
	if !usr.LastLogin.IsZero() {
		lastLogin = sql.NullTime{Time: usr.LastLogin, Valid: true}
	}
	q := `INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := repo.db.ExecContext(ctx, q,
		usr.ID, usr.Name, usr.Email, usr.Role, usr.Avatar, usr.ClubID, usr.Bio, usr.JoinDate,
		pq.StringArray(usr.JoinedClubIDs), usr.Year, usr.Branch, usr.IsActive, usr.PasswordHash,
		usr.CreatedAt, usr.UpdatedAt, lastLogin)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) getBy(ctx context.Context, q string, arg interface{}) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, q, arg); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "selecting user")
	}
	return row.user(), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getBy(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getBy(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (repo *userRepository) GetUsersByIDs(ctx context.Context, ids ...string) ([]user.User, error) {
	var rows []userRow
	q := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1) ORDER BY name`
	if err := repo.db.SelectContext(ctx, &rows, q, pq.Array(ids)); err != nil {
		return nil, errors.Wrap(err, "selecting users")
	}
	return userRows(rows), nil
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	var where whereBuilder
	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		where.add("(name ILIKE %s OR email ILIKE %s)", val, val)
	}
	if len(filter.Roles) > 0 {
		where.add("role = ANY(%s)", pq.Array(filter.Roles))
	}
	if filter.ClubID != "" {
		where.add("club_id = %s", filter.ClubID)
	}
	if filter.IsActive != nil {
		where.add("is_active = %s", *filter.IsActive)
	}

	var rows []userRow
	q := `SELECT ` + userColumns + ` FROM users` + where.String() + orderBy(ordering, "created_at ASC")
	if err := repo.db.SelectContext(ctx, &rows, q, where.args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return userRows(rows), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	var row userRow
	q := `UPDATE users SET name = $2, email = $3, role = $4, avatar = $5, club_id = $6, bio = $7, year = $8,
		branch = $9, is_active = $10, password_hash = $11, updated_at = $12
		WHERE id = $1 RETURNING ` + userColumns
	err := repo.db.GetContext(ctx, &row, q,
		usr.ID, usr.Name, usr.Email, usr.Role, usr.Avatar, usr.ClubID, usr.Bio, usr.Year,
		usr.Branch, usr.IsActive, usr.PasswordHash, usr.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "updating user")
	}
	return row.user(), nil
}

func (repo *userRepository) SetLastLogin(ctx context.Context, id string, t time.Time) (user.User, error) {
	var row userRow
	q := `UPDATE users SET last_login = $2 WHERE id = $1 RETURNING ` + userColumns
	if err := repo.db.GetContext(ctx, &row, q, id, t); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "setting last login")
	}
	return row.user(), nil
}

func (repo *userRepository) ToggleJoinedClub(ctx context.Context, userID, clubID string) (user.User, bool, error) {
	var (
		usr    user.User
		joined bool
	)
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var ids pq.StringArray
		if err := tx.GetContext(ctx, &ids, `SELECT joined_club_ids FROM users WHERE id = $1 FOR UPDATE`, userID); err != nil {
			return trapNoRowsErr(err, user.ErrNotFound, "locking user")
		}

		var newIDs []string
		newIDs, joined = core.ToggleString(ids, clubID)

		var row userRow
		q := `UPDATE users SET joined_club_ids = $2 WHERE id = $1 RETURNING ` + userColumns
		if err := tx.GetContext(ctx, &row, q, userID, pq.StringArray(newIDs)); err != nil {
			return errors.Wrap(err, "updating joined clubs")
		}
		usr = row.user()
		return nil
	})
	if err != nil {
		return user.User{}, false, err
	}
	return usr, joined, nil
}

func (repo *userRepository) ListClubMembers(ctx context.Context, clubID string) ([]user.User, error) {
	var rows []userRow
	q := `SELECT ` + userColumns + ` FROM users WHERE $1 = ANY(joined_club_ids) ORDER BY name`
	if err := repo.db.SelectContext(ctx, &rows, q, clubID); err != nil {
		return nil, errors.Wrap(err, "selecting club members")
	}
	return userRows(rows), nil
}

func (repo *userRepository) CountClubMembers(ctx context.Context, clubIDs ...string) (map[string]int, error) {
	var where whereBuilder
	if len(clubIDs) > 0 {
		where.add("jc.club = ANY(%s)", pq.Array(clubIDs))
	}
	q := `SELECT jc.club AS club_id, COUNT(*) AS n FROM users, UNNEST(users.joined_club_ids) AS jc(club)` +
		where.String() + ` GROUP BY jc.club`

	var rows []struct {
		ClubID string `db:"club_id"`
		N      int    `db:"n"`
	}
	if err := repo.db.SelectContext(ctx, &rows, q, where.args...); err != nil {
		return nil, errors.Wrap(err, "counting club members")
	}

	counts := make(map[string]int, len(clubIDs))
	for _, id := range clubIDs {
		counts[id] = 0
	}
	for _, r := range rows {
		counts[r.ClubID] = r.N
	}
	return counts, nil
}
