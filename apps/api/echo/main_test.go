package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/announcement"
	"github.com/theadruss/Clix-App/core/club"
	"github.com/theadruss/Clix-App/core/event"
	"github.com/theadruss/Clix-App/core/social"
	"github.com/theadruss/Clix-App/core/user"
	"github.com/theadruss/Clix-App/core/venue"
	"github.com/theadruss/Clix-App/core/volunteer"
	emailsvc "github.com/theadruss/Clix-App/services/email"
	"github.com/theadruss/Clix-App/services/ratelimit"
	"github.com/theadruss/Clix-App/storage/database"
	inmemdb "github.com/theadruss/Clix-App/storage/database/inmem"
	"github.com/theadruss/Clix-App/testutil"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

// stubAssistant answers with the inputs it was given.
type stubAssistant struct{}

func (stubAssistant) GenerateText(_ context.Context, topic string, kind core.AssistKind) (string, error) {
	return fmt.Sprintf("%s about %s", kind, topic), nil
}

func (stubAssistant) GenerateReport(_ context.Context, in core.ReportInput) (string, error) {
	return fmt.Sprintf("%s: %d/%d, revenue %.2f, feedback [%s]",
		in.Title, in.Registered, in.Capacity, in.Revenue, strings.Join(in.Feedback, "; ")), nil
}

func (stubAssistant) GenerateImage(_ context.Context, prompt string) (string, error) {
	if prompt == "fail" {
		return "", nil
	}
	return "data:image/png;base64,aW1n", nil
}

type testApp struct {
	*Server
	conf   *core.Config
	repos  database.Repositories
	logger *testutil.Logger
}

type setupOption func(conf *core.Config, deps *ServerDeps)

func withLimiter(store ratelimit.Store) setupOption {
	return func(_ *core.Config, deps *ServerDeps) { deps.Limiter = store }
}

func withMemberCountMode(mode string) setupOption {
	return func(conf *core.Config, _ *ServerDeps) { conf.MemberCountMode = mode }
}

func setup(t *testing.T, opts ...setupOption) *testApp {
	t.Helper()

	conf := core.NewTestConfig()
	logger := testutil.NewLogger()

	// set up DB & repos
	db, err := inmemdb.Open()
	require.NoError(t, err)
	repos := database.NewInmemRepositories(db)

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	event.InitValidators(validate, translator)
	volunteer.InitValidators(validate, translator)
	core.ParseEmailTemplates(logger, false)
	emailsvc.ResetSentMessages()

	deps := ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		Assistant:  stubAssistant{},
	}
	for _, opt := range opts {
		opt(conf, &deps)
	}

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	usrSvc := user.NewService(repos.Users, mailSvc, conf)
	deps.UserSvc = usrSvc
	deps.ClubSvc = club.NewService(repos.Clubs, usrSvc, conf.MemberCountMode)
	deps.VenueSvc = venue.NewService(repos.Venues)
	deps.EventSvc = event.NewService(repos.Events, repos.Clubs, repos.Venues, usrSvc, deps.Assistant, mailSvc)
	deps.VolunteerSvc = volunteer.NewService(repos.Volunteers, repos.Events, repos.Users, mailSvc)
	deps.SocialSvc = social.NewService(repos.Social, repos.Clubs)
	deps.AnnouncementSvc = announcement.NewService(repos.Announcements)

	return &testApp{Server: NewServer(deps), conf: conf, repos: repos, logger: logger}
}

func (app *testApp) getToken(t *testing.T, usr user.User) string {
	token, err := app.auth.TokenFor(usr)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

// fixtures is a small campus: a college admin, a club with its admin, two students, a venue and events.
type fixtures struct {
	collegeAdmin, clubAdmin, student, student2 user.User
	club, club2                                club.Club
	venue                                      venue.Venue
	approved, pending                          event.Event
}

func (app *testApp) seed(t *testing.T) fixtures {
	t.Helper()
	ctx := context.Background()
	var f fixtures
	var err error

	f.collegeAdmin = testutil.CreateUser(t, app.repos.Users, "u3", "Dr. Smith", "admin@college.edu", "pass", user.RoleCollegeAdmin, true)
	f.clubAdmin = testutil.CreateUser(t, app.repos.Users, "u2", "Sarah Lead", "sarah@college.edu", "pass", user.RoleClubAdmin, true)
	f.student = testutil.CreateUser(t, app.repos.Users, "u1", "Alex Student", "alex@college.edu", "pass", user.RoleStudent, true)
	f.student2 = testutil.CreateUser(t, app.repos.Users, "u9", "Jamie Doe", "jamie@college.edu", "pass", user.RoleStudent, true)

	f.club, err = app.repos.Clubs.CreateClub(ctx, club.Club{ID: "c1", Name: "Tech Innovators", AdminID: f.clubAdmin.ID})
	require.NoError(t, err)
	f.club2, err = app.repos.Clubs.CreateClub(ctx, club.Club{ID: "c2", Name: "Artistic Souls"})
	require.NoError(t, err)
	f.clubAdmin.ClubID = f.club.ID
	f.clubAdmin, err = app.repos.Users.UpdateUser(ctx, f.clubAdmin)
	require.NoError(t, err)

	f.venue, err = app.repos.Venues.CreateVenue(ctx, venue.Venue{ID: "v1", Name: "Main Auditorium", Capacity: 500, Features: []string{}})
	require.NoError(t, err)

	newEvent := func(id, status string, capacity int) event.Event {
		e, err := app.repos.Events.CreateEvent(ctx, event.Event{
			ID:        id,
			Title:     "Event " + id,
			Organizer: f.club.Name,
			ClubID:    f.club.ID,
			Date:      "2026-11-15",
			Time:      "09:00",
			VenueID:   f.venue.ID,
			Status:    status,
			Capacity:  capacity,
			Price:     10,
			Tags:      []string{},
			Feedback:  []event.Feedback{},
			Winners:   []event.Winner{},
		})
		require.NoError(t, err)
		return e
	}
	f.approved = newEvent("e1", event.StatusApproved, 2)
	f.pending = newEvent("e2", event.StatusPending, 50)
	return f
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// do serves the request and decodes the response body into out, when given.
func (app *testApp) do(t *testing.T, method, path, token string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var data []byte
	if body != nil {
		data = marshalObj(t, body)
	}
	req, rec := newAuthRequest(method, path, token, data)
	app.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
