package pgrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core/social"
)

const (
	postColumns  = `id, club_id, user_id, user_name, user_avatar, content, timestamp, liked_by, comments, version`
	mediaColumns = `id, club_id, event_id, image_url, caption, liked_by, comments, version, created_at`
)

type commentsColumn = jsonColumn[[]social.Comment]

type postRow struct {
	ID         string         `db:"id"`
	ClubID     string         `db:"club_id"`
	UserID     string         `db:"user_id"`
	UserName   string         `db:"user_name"`
	UserAvatar string         `db:"user_avatar"`
	Content    string         `db:"content"`
	Timestamp  time.Time      `db:"timestamp"`
	LikedBy    pq.StringArray `db:"liked_by"`
	Comments   commentsColumn `db:"comments"`
	Version    int            `db:"version"`
}

func (r postRow) post() social.Post {
	return social.Post{
		ID:         r.ID,
		ClubID:     r.ClubID,
		UserID:     r.UserID,
		UserName:   r.UserName,
		UserAvatar: r.UserAvatar,
		Content:    r.Content,
		Timestamp:  r.Timestamp.UTC(),
		LikedBy:    nonNilStrings(r.LikedBy),
		Comments:   nonNilComments(r.Comments.V),
		Version:    r.Version,
	}
}

type mediaRow struct {
	ID        string         `db:"id"`
	ClubID    string         `db:"club_id"`
	EventID   string         `db:"event_id"`
	ImageURL  string         `db:"image_url"`
	Caption   string         `db:"caption"`
	LikedBy   pq.StringArray `db:"liked_by"`
	Comments  commentsColumn `db:"comments"`
	Version   int            `db:"version"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r mediaRow) media() social.MediaPost {
	return social.MediaPost{
		ID:        r.ID,
		ClubID:    r.ClubID,
		EventID:   r.EventID,
		ImageURL:  r.ImageURL,
		Caption:   r.Caption,
		LikedBy:   nonNilStrings(r.LikedBy),
		Comments:  nonNilComments(r.Comments.V),
		Version:   r.Version,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type engagementRow struct {
	LikedBy  pq.StringArray `db:"liked_by"`
	Comments commentsColumn `db:"comments"`
	Version  int            `db:"version"`
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilComments(c []social.Comment) []social.Comment {
	if c == nil {
		return []social.Comment{}
	}
	return c
}

var engagementTables = map[social.Kind]struct {
	table    string
	notFound error
}{
	social.KindPost:  {"posts", social.ErrPostNotFound},
	social.KindMedia: {"media", social.ErrMediaNotFound},
}

type socialRepository struct {
	db *sqlx.DB
}

var _ social.Repository = (*socialRepository)(nil) // interface compliance check

func NewSocialRepository(db *sqlx.DB) *socialRepository {
	return &socialRepository{db: db}
}

func (repo *socialRepository) CreatePost(ctx context.Context, p social.Post) (social.Post, error) {
	q := `INSERT INTO posts (` + postColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.db.ExecContext(ctx, q, p.ID, p.ClubID, p.UserID, p.UserName, p.UserAvatar, p.Content, p.Timestamp,
		pq.StringArray(nonNilStrings(p.LikedBy)), commentsColumn{nonNilComments(p.Comments)}, p.Version)
	if err != nil {
		return social.Post{}, errors.Wrap(err, "inserting post")
	}
	return p, nil
}

func (repo *socialRepository) ListPosts(ctx context.Context, clubID string) ([]social.Post, error) {
	var rows []postRow
	q := `SELECT ` + postColumns + ` FROM posts WHERE club_id = $1 ORDER BY timestamp DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, clubID); err != nil {
		return nil, errors.Wrap(err, "selecting posts")
	}
	posts := make([]social.Post, 0, len(rows))
	for _, r := range rows {
		posts = append(posts, r.post())
	}
	return posts, nil
}

func (repo *socialRepository) GetPost(ctx context.Context, id string) (social.Post, error) {
	var row postRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id); err != nil {
		return social.Post{}, trapNoRowsErr(err, social.ErrPostNotFound, "selecting post")
	}
	return row.post(), nil
}

func (repo *socialRepository) CreateMedia(ctx context.Context, m social.MediaPost) (social.MediaPost, error) {
	q := `INSERT INTO media (` + mediaColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, q, m.ID, m.ClubID, m.EventID, m.ImageURL, m.Caption,
		pq.StringArray(nonNilStrings(m.LikedBy)), commentsColumn{nonNilComments(m.Comments)}, m.Version, m.CreatedAt)
	if err != nil {
		return social.MediaPost{}, errors.Wrap(err, "inserting media")
	}
	return m, nil
}

func (repo *socialRepository) ListMedia(ctx context.Context, clubID string) ([]social.MediaPost, error) {
	var where whereBuilder
	if clubID != "" {
		where.add("club_id = %s", clubID)
	}
	var rows []mediaRow
	q := `SELECT ` + mediaColumns + ` FROM media` + where.String() + ` ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, where.args...); err != nil {
		return nil, errors.Wrap(err, "selecting media")
	}
	media := make([]social.MediaPost, 0, len(rows))
	for _, r := range rows {
		media = append(media, r.media())
	}
	return media, nil
}

func (repo *socialRepository) GetMedia(ctx context.Context, id string) (social.MediaPost, error) {
	var row mediaRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+mediaColumns+` FROM media WHERE id = $1`, id); err != nil {
		return social.MediaPost{}, trapNoRowsErr(err, social.ErrMediaNotFound, "selecting media")
	}
	return row.media(), nil
}

// engage runs fn on the target's engagement under its row lock and saves the result.
func (repo *socialRepository) engage(ctx context.Context, kind social.Kind, id string, fn func(e *social.Engagement) error) (social.Engagement, error) {
	tbl, ok := engagementTables[kind]
	if !ok {
		return social.Engagement{}, social.ErrUnknownKind
	}

	var eng social.Engagement
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var row engagementRow
		q := `SELECT liked_by, comments, version FROM ` + tbl.table + ` WHERE id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &row, q, id); err != nil {
			return trapNoRowsErr(err, tbl.notFound, "locking "+string(kind))
		}

		eng = social.Engagement{
			Kind:     kind,
			ID:       id,
			LikedBy:  nonNilStrings(row.LikedBy),
			Comments: nonNilComments(row.Comments.V),
			Version:  row.Version,
		}
		version := eng.Version
		if err := fn(&eng); err != nil {
			return err
		}
		if eng.Version == version {
			return nil
		}

		q = `UPDATE ` + tbl.table + ` SET liked_by = $2, comments = $3, version = $4 WHERE id = $1`
		_, err := tx.ExecContext(ctx, q, id, pq.StringArray(eng.LikedBy), commentsColumn{eng.Comments}, eng.Version)
		return errors.Wrap(err, "saving "+string(kind)+" engagement")
	})
	if err != nil {
		return social.Engagement{}, err
	}
	return eng, nil
}

func (repo *socialRepository) ToggleLike(ctx context.Context, kind social.Kind, id, userID string) (social.Engagement, error) {
	return repo.engage(ctx, kind, id, func(e *social.Engagement) error {
		e.ApplyToggle(userID)
		return nil
	})
}

func (repo *socialRepository) AppendComment(ctx context.Context, kind social.Kind, id string, c social.Comment) (social.Engagement, error) {
	return repo.engage(ctx, kind, id, func(e *social.Engagement) error {
		return e.ApplyComment(c)
	})
}
