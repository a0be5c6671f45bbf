package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db.user}
}

func copyUser(u *user.User) user.User {
	usr := *u
	usr.JoinedClubIDs = cloneStrings(u.JoinedClubIDs)
	return usr
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.table))
	for _, u := range repo.db.table {
		users = append(users, copyUser(u))
	}
	return users
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.table {
		if usr.Email == email && !isExcluded(usr.ID, excludedUsers) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, u := range repo.db.table {
		if u.Email == usr.Email {
			return user.User{}, user.ErrEmailExists
		}
	}
	if usr.JoinedClubIDs == nil {
		usr.JoinedClubIDs = []string{}
	}
	stored := copyUser(&usr)
	repo.db.table[usr.ID] = &stored
	return copyUser(&stored), nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.table[id]; ok {
		return copyUser(usr), nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.table {
		if usr.Email == email {
			return copyUser(usr), nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUsersByIDs(_ context.Context, ids ...string) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := make([]user.User, 0, len(ids))
	for _, id := range ids {
		if usr, ok := repo.db.table[id]; ok {
			users = append(users, copyUser(usr))
		}
	}
	return users, nil
}

func (repo *userRepository) FilterUsers(_ context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := make([]user.User, 0)
	for _, usr := range repo.query() {
		if filter.Search != "" && !(containsFold(usr.Name, filter.Search) || containsFold(usr.Email, filter.Search)) {
			continue
		}
		if len(filter.Roles) > 0 && !core.ContainsString(filter.Roles, usr.Role) {
			continue
		}
		if filter.ClubID != "" && usr.ClubID != filter.ClubID {
			continue
		}
		if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
			continue
		}
		users = append(users, usr)
	}

	sort.SliceStable(users, lessFunc(ordering, map[string]func(i, j int) int{
		"name":       func(i, j int) int { return strings.Compare(users[i].Name, users[j].Name) },
		"email":      func(i, j int) int { return strings.Compare(users[i].Email, users[j].Email) },
		"role":       func(i, j int) int { return strings.Compare(users[i].Role, users[j].Role) },
		"created_at": func(i, j int) int { return compareTime(users[i].CreatedAt, users[j].CreatedAt) },
		"last_login": func(i, j int) int { return compareTime(users[i].LastLogin, users[j].LastLogin) },
	}, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) }))
	return users, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	usr.JoinedClubIDs = orig.JoinedClubIDs
	usr.LastLogin = orig.LastLogin
	stored := copyUser(&usr)
	repo.db.table[usr.ID] = &stored
	return copyUser(&stored), nil
}

func (repo *userRepository) SetLastLogin(_ context.Context, id string, t time.Time) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.table[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	usr.LastLogin = t
	return copyUser(usr), nil
}

func (repo *userRepository) ToggleJoinedClub(_ context.Context, userID, clubID string) (user.User, bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr, ok := repo.db.table[userID]
	if !ok {
		return user.User{}, false, user.ErrNotFound
	}
	var joined bool
	usr.JoinedClubIDs, joined = core.ToggleString(usr.JoinedClubIDs, clubID)
	return copyUser(usr), joined, nil
}

func (repo *userRepository) ListClubMembers(_ context.Context, clubID string) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	members := make([]user.User, 0)
	for _, usr := range repo.query() {
		if usr.HasJoined(clubID) {
			members = append(members, usr)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	return members, nil
}

func (repo *userRepository) CountClubMembers(_ context.Context, clubIDs ...string) (map[string]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	counts := make(map[string]int, len(clubIDs))
	for _, id := range clubIDs {
		counts[id] = 0
	}
	for _, usr := range repo.db.table {
		for _, id := range usr.JoinedClubIDs {
			if _, ok := counts[id]; ok || len(clubIDs) == 0 {
				counts[id]++
			}
		}
	}
	return counts, nil
}

func isExcluded(id string, excludedUsers []user.User) bool {
	for _, u := range excludedUsers {
		if u.ID == id {
			return true
		}
	}
	return false
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}
