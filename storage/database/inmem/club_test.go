package inmemdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theadruss/Clix-App/core/club"
	"github.com/theadruss/Clix-App/core/user"
)

func TestClubMembership(t *testing.T) {
	ctx := context.Background()
	db, err := Open()
	require.NoError(t, err)
	usrRepo := NewUserRepository(db)
	clubRepo := NewClubRepository(db)

	_, err = clubRepo.CreateClub(ctx, club.Club{ID: "c1", Name: "Coding Club", MemberCount: 1})
	require.NoError(t, err)
	_, err = clubRepo.CreateClub(ctx, club.Club{ID: "c9", Name: "Coding Club"})
	assert.Equal(t, club.ErrNameExists, err)
	_, err = usrRepo.CreateUser(ctx, user.User{ID: "u1", Email: "alex@college.edu"})
	require.NoError(t, err)

	usr, joined, err := usrRepo.ToggleJoinedClub(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.True(t, joined)
	assert.Equal(t, []string{"c1"}, usr.JoinedClubIDs)

	counts, err := usrRepo.CountClubMembers(ctx, "c1", "c2")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"c1": 1, "c2": 0}, counts)

	usr, joined, err = usrRepo.ToggleJoinedClub(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.False(t, joined)
	assert.Empty(t, usr.JoinedClubIDs)

	c, err := clubRepo.AddToMemberCount(ctx, "c1", -5)
	require.NoError(t, err)
	assert.Equal(t, 0, c.MemberCount)
}
