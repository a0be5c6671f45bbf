package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/theadruss/Clix-App/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	id, name, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:            id,
		Name:          name,
		Email:         email,
		Role:          role,
		JoinDate:      tstamp.Format("2006-01-02"),
		JoinedClubIDs: []string{},
		IsActive:      isActive,
		CreatedAt:     tstamp,
		UpdatedAt:     tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// JoinClubs adds the clubs to the user's joined clubs.
func JoinClubs(t *testing.T, repo user.Repository, usr user.User, clubIDs ...string) user.User {
	for _, id := range clubIDs {
		var err error
		if usr, _, err = repo.ToggleJoinedClub(context.Background(), usr.ID, id); err != nil {
			t.Fatalf("JoinClubs() failed: %v", err)
		}
	}
	return usr
}
