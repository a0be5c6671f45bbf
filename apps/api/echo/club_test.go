package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/announcement"
	"github.com/theadruss/Clix-App/core/club"
	"github.com/theadruss/Clix-App/core/social"
	"github.com/theadruss/Clix-App/core/user"
	"github.com/theadruss/Clix-App/testutil"
)

func Test_clubApi_list(t *testing.T) {
	app := setup(t)
	f := app.seed(t)
	testutil.JoinClubs(t, app.repos.Users, f.student, f.club.ID, f.club2.ID)
	testutil.JoinClubs(t, app.repos.Users, f.student2, f.club.ID)

	var clubs []club.Club
	rec := app.do(t, http.MethodGet, "/api/clubs", app.getToken(t, f.student), nil, &clubs)
	require.Equal(t, http.StatusOK, rec.Code)
	counts := map[string]int{}
	for _, c := range clubs {
		counts[c.ID] = c.MemberCount
	}
	assert.Equal(t, map[string]int{"c1": 2, "c2": 1}, counts)

	runHTTPTests(t, app, []httpTest{
		{name: "unknown club", path: "/api/clubs/nope", token: app.getToken(t, f.student), wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "club not found"})},
	})
}

func Test_clubApi_create(t *testing.T) {
	app := setup(t)
	f := app.seed(t)
	adminToken := app.getToken(t, f.collegeAdmin)

	rec := app.do(t, http.MethodPost, "/api/clubs", app.getToken(t, f.clubAdmin), club.NewClub{Name: "Chess"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/clubs", adminToken, club.NewClub{Name: "Tech Innovators"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var c club.Club
	rec = app.do(t, http.MethodPost, "/api/clubs", adminToken, club.NewClub{
		Name: "Chess",
		NewAdmin: &user.NewUser{
			Name:            "Magnus",
			Email:           "magnus@college.edu",
			Password:        "Tr0ub4dor&3x",
			PasswordConfirm: "Tr0ub4dor&3x",
		},
	}, &c)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, c.AdminID)

	var admin user.User
	rec = app.do(t, http.MethodGet, "/api/users/"+c.AdminID, adminToken, nil, &admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.RoleClubAdmin, admin.Role)
	assert.Equal(t, c.ID, admin.ClubID)

	t.Run("new admin is validated", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/api/clubs", adminToken, club.NewClub{
			Name:     "Go",
			NewAdmin: &user.NewUser{Name: "Rob", Email: "rob@college.edu", Password: "short", PasswordConfirm: "short"},
		}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_clubApi_update(t *testing.T) {
	app := setup(t)
	f := app.seed(t)

	var c club.Club
	rec := app.do(t, http.MethodPut, "/api/clubs/c1", app.getToken(t, f.clubAdmin), club.UpdateClub{Description: "Build things"}, &c)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Build things", c.Description)
	assert.Equal(t, "Tech Innovators", c.Name)

	rec = app.do(t, http.MethodPut, "/api/clubs/c2", app.getToken(t, f.clubAdmin), club.UpdateClub{Description: "mine now"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodPut, "/api/clubs/c1", app.getToken(t, f.clubAdmin), club.UpdateClub{AdminID: f.student.ID}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodPut, "/api/clubs/c1", app.getToken(t, f.student), club.UpdateClub{Description: "hi"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func Test_clubApi_toggleMembership(t *testing.T) {
	app := setup(t)
	f := app.seed(t)
	token := app.getToken(t, f.student)

	var m club.Membership
	rec := app.do(t, http.MethodPost, "/api/clubs/c1/membership", token, nil, &m)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, m.Joined)
	assert.Equal(t, []string{"c1"}, m.User.JoinedClubIDs)
	assert.Equal(t, 1, m.Club.MemberCount)

	var members []user.User
	rec = app.do(t, http.MethodGet, "/api/clubs/c1/members", token, nil, &members)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, members, 1)
	assert.Equal(t, f.student.ID, members[0].ID)

	rec = app.do(t, http.MethodPost, "/api/clubs/c1/membership", token, nil, &m)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, m.Joined)
	assert.Equal(t, []string{}, m.User.JoinedClubIDs)
	assert.Equal(t, 0, m.Club.MemberCount)

	rec = app.do(t, http.MethodPost, "/api/clubs/nope/membership", token, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_clubApi_toggleMembership_denormalized(t *testing.T) {
	app := setup(t, withMemberCountMode(core.MemberCountDenormalized))
	f := app.seed(t)

	var m club.Membership
	rec := app.do(t, http.MethodPost, "/api/clubs/c1/membership", app.getToken(t, f.student), nil, &m)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, m.Club.MemberCount)

	rec = app.do(t, http.MethodPost, "/api/clubs/c1/membership", app.getToken(t, f.student2), nil, &m)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, m.Club.MemberCount)
}

func Test_clubApi_announcements(t *testing.T) {
	app := setup(t)
	f := app.seed(t)

	rec := app.do(t, http.MethodPost, "/api/clubs/c1/announcements", app.getToken(t, f.student), announcement.NewAnnouncement{Content: "hi"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/clubs/c1/announcements", app.getToken(t, f.clubAdmin), announcement.NewAnnouncement{Content: "  "}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, content := range []string{"Meeting at 5", "Hackathon signups open"} {
		rec = app.do(t, http.MethodPost, "/api/clubs/c1/announcements", app.getToken(t, f.clubAdmin), announcement.NewAnnouncement{Content: content}, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	var anns []announcement.Announcement
	rec = app.do(t, http.MethodGet, "/api/clubs/c1/announcements", app.getToken(t, f.student), nil, &anns)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, anns, 2)
	assert.Equal(t, "Hackathon signups open", anns[0].Content)
	assert.False(t, anns[0].Date.Before(anns[1].Date))

	rec = app.do(t, http.MethodGet, "/api/clubs/c2/announcements", app.getToken(t, f.student), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func Test_clubApi_posts(t *testing.T) {
	app := setup(t)
	f := app.seed(t)
	token := app.getToken(t, f.student)

	rec := app.do(t, http.MethodPost, "/api/clubs/c1/posts", token, social.NewPost{Content: "Hello!"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	testutil.JoinClubs(t, app.repos.Users, f.student, f.club.ID)
	var p social.Post
	rec = app.do(t, http.MethodPost, "/api/clubs/c1/posts", token, social.NewPost{Content: "Hello!"}, &p)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, f.student.Name, p.UserName)
	assert.Equal(t, []string{}, p.LikedBy)
	assert.Equal(t, 1, p.Version)

	rec = app.do(t, http.MethodPost, "/api/clubs/c1/posts", app.getToken(t, f.clubAdmin), social.NewPost{Content: "Welcome"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var posts []social.Post
	rec = app.do(t, http.MethodGet, "/api/clubs/c1/posts", token, nil, &posts)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, posts, 2)
	assert.Equal(t, "Welcome", posts[0].Content)
}
