package echoapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theadruss/Clix-App/core/event"
	"github.com/theadruss/Clix-App/core/user"
	"github.com/theadruss/Clix-App/core/venue"
	emailsvc "github.com/theadruss/Clix-App/services/email"
)

func validProposal() event.Proposal {
	return event.Proposal{
		Title:       "AI Hackathon",
		Description: "24 hours of building",
		Date:        "2026-12-01",
		Time:        "10:00",
		VenueID:     "v1",
		Capacity:    100,
		Tags:        []string{"Tech"},
	}
}

func Test_eventApi_query(t *testing.T) {
	app := setup(t)
	f := app.seed(t)
	token := app.getToken(t, f.student)

	runHTTPTests(t, app, []httpTest{
		{name: "auth required", path: "/api/events", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "all", path: "/api/events", token: token, wantCode: http.StatusOK, wantData: marshalObj(t, []event.Event{f.approved, f.pending})},
		{name: "by status", path: "/api/events?status=APPROVED", token: token, wantCode: http.StatusOK, wantData: marshalObj(t, []event.Event{f.approved})},
		{name: "by club (none)", path: "/api/events?clubId=c2", token: token, wantCode: http.StatusOK, wantData: []byte(`[]`)},
		{name: "get", path: "/api/events/e1", token: token, wantCode: http.StatusOK, wantData: marshalObj(t, f.approved)},
		{name: "get (unknown)", path: "/api/events/nope", token: token, wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "event not found"})},
	})
}

func Test_eventApi_proposeAndApprove(t *testing.T) {
	app := setup(t)
	f := app.seed(t)
	clubToken := app.getToken(t, f.clubAdmin)
	adminToken := app.getToken(t, f.collegeAdmin)

	rec := app.do(t, http.MethodPost, "/api/events", app.getToken(t, f.student), validProposal(), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	bad := validProposal()
	bad.VenueID = "nope"
	rec = app.do(t, http.MethodPost, "/api/events", clubToken, bad, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"venueId": "venue not found"}`, rec.Body.String())

	bad = validProposal()
	bad.Date = "01/12/2026"
	rec = app.do(t, http.MethodPost, "/api/events", clubToken, bad, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var e event.Event
	rec = app.do(t, http.MethodPost, "/api/events", clubToken, validProposal(), &e)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, event.StatusPending, e.Status)
	assert.Equal(t, f.club.ID, e.ClubID)
	assert.Equal(t, f.club.Name, e.Organizer)
	path := "/api/events/" + e.ID

	rec = app.do(t, http.MethodPut, path+"/status", clubToken, event.StatusUpdate{Status: event.StatusApproved}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodPut, path+"/status", adminToken, event.StatusUpdate{Status: event.StatusRejected}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"reason": "a reason is required to reject an event"}`, rec.Body.String())

	rec = app.do(t, http.MethodPut, path+"/status", adminToken, event.StatusUpdate{Status: event.StatusRejected, Reason: "Venue busy"}, &e)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, event.StatusRejected, e.Status)
	assert.Equal(t, "Venue busy", e.RejectionReason)

	rec = app.do(t, http.MethodPut, path+"/status", adminToken, event.StatusUpdate{Status: event.StatusApproved}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	p := validProposal()
	p.Title = "AI Hackathon v2"
	var resubmitted event.Event
	rec = app.do(t, http.MethodPut, path, clubToken, p, &resubmitted)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, event.StatusPending, resubmitted.Status)
	assert.Empty(t, resubmitted.RejectionReason)
	assert.Equal(t, "AI Hackathon v2", resubmitted.Title)

	stored, err := app.repos.Events.GetEventByID(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, event.StatusPending, stored.Status)
	assert.Empty(t, stored.RejectionReason)

	rec = app.do(t, http.MethodPut, path+"/status", adminToken, event.StatusUpdate{Status: event.StatusApproved}, &e)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, event.StatusApproved, e.Status)

	rec = app.do(t, http.MethodPut, path+"/status", adminToken, event.StatusUpdate{Status: "CANCELLED"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status": "invalid status"}`, rec.Body.String())
}

func Test_eventApi_register(t *testing.T) {
	app := setup(t)
	f := app.seed(t)
	token := app.getToken(t, f.student)

	var res event.RegistrationResult
	rec := app.do(t, http.MethodPost, "/api/events/e1/registrations", token, nil, &res)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, res.Created)
	assert.Equal(t, 1, res.Event.RegisteredCount)
	assert.Equal(t, []string{"e1"}, res.RegisteredEventIDs)
	require.Len(t, emailsvc.GetSentMessages(), 1)
	assert.Equal(t, "registration_confirmation", emailsvc.GetSentMessages()[0].TemplateName)

	rec = app.do(t, http.MethodPost, "/api/events/e1/registrations", token, nil, &res)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, res.Created)
	assert.Equal(t, 1, res.Event.RegisteredCount)
	assert.Len(t, emailsvc.GetSentMessages(), 1)

	var ids []string
	rec = app.do(t, http.MethodGet, "/api/me/registrations", token, nil, &ids)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"e1"}, ids)

	rec = app.do(t, http.MethodPost, "/api/events/e1/registrations", app.getToken(t, f.student2), nil, &res)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 2, res.Event.RegisteredCount)

	rec = app.do(t, http.MethodPost, "/api/events/e1/registrations", app.getToken(t, f.collegeAdmin), nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error": "this event is full"}`, rec.Body.String())

	rec = app.do(t, http.MethodPost, "/api/events/e2/registrations", token, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "registrations are only open for approved events"}`, rec.Body.String())

	t.Run("registered users", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/events/e1/registrations", token, nil, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		var users []user.User
		rec = app.do(t, http.MethodGet, "/api/events/e1/registrations", app.getToken(t, f.clubAdmin), nil, &users)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, users, 2)
	})
}

func Test_eventApi_feedback(t *testing.T) {
	app := setup(t)
	f := app.seed(t)
	token := app.getToken(t, f.student)
	fb := event.NewFeedback{Rating: 5, Comment: "Amazing"}

	rec := app.do(t, http.MethodPost, "/api/events/e1/feedback", token, fb, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "only registered users can give feedback"}`, rec.Body.String())

	rec = app.do(t, http.MethodPost, "/api/events/e1/registrations", token, nil, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/events/e1/feedback", token, event.NewFeedback{Rating: 6}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var e event.Event
	rec = app.do(t, http.MethodPost, "/api/events/e1/feedback", token, fb, &e)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, []event.Feedback{{UserID: f.student.ID, Rating: 5, Comment: "Amazing"}}, e.Feedback)

	rec = app.do(t, http.MethodPost, "/api/events/e1/feedback", token, fb, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	t.Run("report", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/events/e1/report", token, nil, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		var res ReportResponse
		rec = app.do(t, http.MethodGet, "/api/events/e1/report", app.getToken(t, f.clubAdmin), nil, &res)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Event e1: 1/2, revenue 10.00, feedback [Amazing]", res.Report)
	})
}

func Test_eventApi_certificatesAndWinners(t *testing.T) {
	app := setup(t)
	f := app.seed(t)
	clubToken := app.getToken(t, f.clubAdmin)

	var e event.Event
	rec := app.do(t, http.MethodPost, "/api/events/e1/certificates", clubToken, nil, &e)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, e.CertificatesIssued)

	winners := event.SaveWinners{Winners: []event.Winner{{Rank: 1, Name: "Team Alpha"}, {Rank: 2, Name: "Team Beta"}}}
	rec = app.do(t, http.MethodPut, "/api/events/e1/winners", clubToken, winners, &e)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, winners.Winners, e.Winners)

	rec = app.do(t, http.MethodPut, "/api/events/e1/winners", clubToken, event.SaveWinners{Winners: []event.Winner{{Rank: 0, Name: "x"}}}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	t.Run("other club admins are denied", func(t *testing.T) {
		other := f.clubAdmin
		other.ID = "u8"
		other.Email = "lee@college.edu"
		other.ClubID = f.club2.ID
		_, err := app.repos.Users.CreateUser(context.Background(), other)
		require.NoError(t, err)

		rec := app.do(t, http.MethodPost, "/api/events/e1/certificates", app.getToken(t, other), nil, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func Test_venueApi(t *testing.T) {
	app := setup(t)
	f := app.seed(t)
	adminToken := app.getToken(t, f.collegeAdmin)

	runHTTPTests(t, app, []httpTest{
		{name: "list", path: "/api/venues", token: app.getToken(t, f.student), wantCode: http.StatusOK, wantData: marshalObj(t, []venue.Venue{f.venue})},
	})

	nv := venue.NewVenue{Name: " Open Air Theatre ", Capacity: 1000, Features: []string{"Stage"}}
	rec := app.do(t, http.MethodPost, "/api/venues", app.getToken(t, f.clubAdmin), nv, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/venues", adminToken, venue.NewVenue{Name: "Lab", Capacity: 0}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var v venue.Venue
	rec = app.do(t, http.MethodPost, "/api/venues", adminToken, nv, &v)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Open Air Theatre", v.Name)
	assert.NotEmpty(t, v.ID)

	venues, err := app.repos.Venues.ListVenues(context.Background())
	require.NoError(t, err)
	assert.Len(t, venues, 2)
}
