package pgrepos

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/social"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

var engagementCols = []string{"liked_by", "comments", "version"}

func TestSocialRepository_ToggleLike(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSocialRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT liked_by, comments, version FROM posts WHERE id = $1 FOR UPDATE")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(engagementCols).AddRow("{u2,u3}", "[]", 4))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE posts SET liked_by = $2, comments = $3, version = $4 WHERE id = $1")).
		WithArgs("p1", pq.StringArray{"u2", "u3", "u1"}, "[]", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	eng, err := repo.ToggleLike(context.Background(), social.KindPost, "p1", "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u3", "u1"}, eng.LikedBy)
	assert.Equal(t, 5, eng.Version)
	assert.Equal(t, social.KindPost, eng.Kind)

	// unlike on media
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT liked_by, comments, version FROM media WHERE id = $1 FOR UPDATE")).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows(engagementCols).AddRow("{u1,u3}", "[]", 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE media SET liked_by = $2, comments = $3, version = $4 WHERE id = $1")).
		WithArgs("m1", pq.StringArray{"u3"}, "[]", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	eng, err = repo.ToggleLike(context.Background(), social.KindMedia, "m1", "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u3"}, eng.LikedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSocialRepository_ToggleLikeNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSocialRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT liked_by, comments, version FROM posts WHERE id = $1 FOR UPDATE")).
		WithArgs("p404").
		WillReturnRows(sqlmock.NewRows(engagementCols))
	mock.ExpectRollback()

	_, err := repo.ToggleLike(context.Background(), social.KindPost, "p404", "u1")
	assert.Equal(t, social.ErrPostNotFound, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSocialRepository_AppendComment(t *testing.T) {
	existing := `[{"id":"c100","userId":"u9","userName":"U9","text":"Great shot!","timestamp":"2024-03-01T10:00:00Z"}]`

	tests := []struct {
		name    string
		comment social.Comment
		saved   bool
		wantErr func(error) bool
		wantLen int
	}{
		{
			name:    "new entry",
			comment: social.Comment{ID: "c101", UserID: "u1", UserName: "Alex", Text: "nice"},
			saved:   true,
			wantLen: 2,
		},
		{
			name:    "same entry again",
			comment: social.Comment{ID: "c100", UserID: "u9", UserName: "U9", Text: "Great shot!"},
			wantLen: 1,
		},
		{
			name:    "different entry under a taken id",
			comment: social.Comment{ID: "c100", UserID: "u1", UserName: "Alex", Text: "hijack"},
			wantErr: core.IsConflict,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewSocialRepository(db)

			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta("SELECT liked_by, comments, version FROM media WHERE id = $1 FOR UPDATE")).
				WithArgs("m5").
				WillReturnRows(sqlmock.NewRows(engagementCols).AddRow("{}", existing, 3))
			if tc.saved {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE media SET")).
					WithArgs("m5", pq.StringArray{}, sqlmock.AnyArg(), 4).
					WillReturnResult(sqlmock.NewResult(0, 1))
			}
			if tc.wantErr != nil {
				mock.ExpectRollback()
			} else {
				mock.ExpectCommit()
			}

			eng, err := repo.AppendComment(context.Background(), social.KindMedia, "m5", tc.comment)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr(err), err)
			} else {
				require.NoError(t, err)
				require.Len(t, eng.Comments, tc.wantLen)
				assert.Equal(t, "c100", eng.Comments[0].ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
