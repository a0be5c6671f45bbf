package pgrepos

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/user"
)

func TestUserRepository_FilterUsers(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	active := true
	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM users WHERE (name ILIKE $1 OR email ILIKE $2) AND role = ANY($3) AND is_active = $4 ORDER BY name ASC")).
		WithArgs("%alex%", "%alex%", pq.Array([]string{user.RoleStudent}), true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role", "joined_club_ids", "is_active", "last_login"}).
			AddRow("u1", "Alex Student", "alex@college.edu", user.RoleStudent, "{c1}", true, nil))

	users, err := repo.FilterUsers(
		context.Background(),
		user.QueryFilter{Search: "alex", Roles: []string{user.RoleStudent}, IsActive: &active},
		core.DBOrdering{Field: "name", Ascending: true},
	)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, []string{"c1"}, users[0].JoinedClubIDs)
	assert.True(t, users[0].LastLogin.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ToggleJoinedClub(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT joined_club_ids FROM users WHERE id = $1 FOR UPDATE")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"joined_club_ids"}).AddRow("{c1}"))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET joined_club_ids = $2 WHERE id = $1")).
		WithArgs("u1", pq.StringArray{"c1", "c2"}).
		WillReturnRows(sqlmock.NewRows([]string{"id", "joined_club_ids"}).AddRow("u1", "{c1,c2}"))
	mock.ExpectCommit()

	usr, joined, err := repo.ToggleJoinedClub(context.Background(), "u1", "c2")
	require.NoError(t, err)
	assert.True(t, joined)
	assert.Equal(t, []string{"c1", "c2"}, usr.JoinedClubIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CountClubMembers(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE jc.club = ANY($1) GROUP BY jc.club")).
		WithArgs(pq.Array([]string{"c1", "c2"})).
		WillReturnRows(sqlmock.NewRows([]string{"club_id", "n"}).AddRow("c1", 3))

	counts, err := repo.CountClubMembers(context.Background(), "c1", "c2")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"c1": 3, "c2": 0}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
