package inmemdb

import (
	"context"
	"sort"

	"github.com/theadruss/Clix-App/core/social"
)

type socialRepository struct {
	db *socialTable
}

var _ social.Repository = (*socialRepository)(nil) // interface compliance check

func NewSocialRepository(db *DB) *socialRepository {
	return &socialRepository{db: db.social}
}

func copyComments(c []social.Comment) []social.Comment {
	return append(make([]social.Comment, 0, len(c)), c...)
}

func copyPost(p *social.Post) social.Post {
	cp := *p
	cp.LikedBy = cloneStrings(p.LikedBy)
	cp.Comments = copyComments(p.Comments)
	return cp
}

func copyMedia(m *social.MediaPost) social.MediaPost {
	cp := *m
	cp.LikedBy = cloneStrings(m.LikedBy)
	cp.Comments = copyComments(m.Comments)
	return cp
}

func (repo *socialRepository) CreatePost(_ context.Context, p social.Post) (social.Post, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored := copyPost(&p)
	repo.db.posts[p.ID] = &stored
	return copyPost(&stored), nil
}

func (repo *socialRepository) ListPosts(_ context.Context, clubID string) ([]social.Post, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	posts := make([]social.Post, 0)
	for _, p := range repo.db.posts {
		if p.ClubID == clubID {
			posts = append(posts, copyPost(p))
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].Timestamp.After(posts[j].Timestamp) })
	return posts, nil
}

func (repo *socialRepository) GetPost(_ context.Context, id string) (social.Post, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.posts[id]; ok {
		return copyPost(p), nil
	}
	return social.Post{}, social.ErrPostNotFound
}

func (repo *socialRepository) CreateMedia(_ context.Context, m social.MediaPost) (social.MediaPost, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored := copyMedia(&m)
	repo.db.media[m.ID] = &stored
	return copyMedia(&stored), nil
}

func (repo *socialRepository) ListMedia(_ context.Context, clubID string) ([]social.MediaPost, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	media := make([]social.MediaPost, 0)
	for _, m := range repo.db.media {
		if clubID == "" || m.ClubID == clubID {
			media = append(media, copyMedia(m))
		}
	}
	sort.Slice(media, func(i, j int) bool { return media[i].CreatedAt.After(media[j].CreatedAt) })
	return media, nil
}

func (repo *socialRepository) GetMedia(_ context.Context, id string) (social.MediaPost, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if m, ok := repo.db.media[id]; ok {
		return copyMedia(m), nil
	}
	return social.MediaPost{}, social.ErrMediaNotFound
}

// engage runs fn on the target's engagement under the write lock and stores the result.
func (repo *socialRepository) engage(kind social.Kind, id string, fn func(e *social.Engagement) error) (social.Engagement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	switch kind {
	case social.KindPost:
		p, ok := repo.db.posts[id]
		if !ok {
			return social.Engagement{}, social.ErrPostNotFound
		}
		eng := copyPost(p).Engagement()
		if err := fn(&eng); err != nil {
			return social.Engagement{}, err
		}
		p.LikedBy, p.Comments, p.Version = eng.LikedBy, eng.Comments, eng.Version
		return copyPost(p).Engagement(), nil
	case social.KindMedia:
		m, ok := repo.db.media[id]
		if !ok {
			return social.Engagement{}, social.ErrMediaNotFound
		}
		eng := copyMedia(m).Engagement()
		if err := fn(&eng); err != nil {
			return social.Engagement{}, err
		}
		m.LikedBy, m.Comments, m.Version = eng.LikedBy, eng.Comments, eng.Version
		return copyMedia(m).Engagement(), nil
	}
	return social.Engagement{}, social.ErrUnknownKind
}

func (repo *socialRepository) ToggleLike(_ context.Context, kind social.Kind, id, userID string) (social.Engagement, error) {
	return repo.engage(kind, id, func(e *social.Engagement) error {
		e.ApplyToggle(userID)
		return nil
	})
}

func (repo *socialRepository) AppendComment(_ context.Context, kind social.Kind, id string, c social.Comment) (social.Engagement, error) {
	return repo.engage(kind, id, func(e *social.Engagement) error {
		return e.ApplyComment(c)
	})
}
