package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weedbox/pokertournament"
	"github.com/weedbox/pokertournament/clock"
	"github.com/weedbox/pokertournament/model"
	"github.com/weedbox/pokertournament/stats"
	"github.com/weedbox/pokertournament/store"
)

var now = time.Date(2024, 11, 8, 19, 30, 0, 0, time.UTC)

type recordingObserver struct {
	mu     sync.Mutex
	routes []string
	codes  []int
}

func (o *recordingObserver) ObserveRequest(method string, route string, code int, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes = append(o.routes, method+" "+route)
	o.codes = append(o.codes, code)
}

func newTestServer(t *testing.T, opts ...ServerOpt) http.Handler {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	st := store.NewMemoryStore()
	manager := pokertournament.NewManager(st,
		pokertournament.WithManagerClock(clock.NewClock(clock.WithNow(func() time.Time { return now }))),
		pokertournament.WithManagerLogger(logger),
	)
	statsService := stats.NewService(st, stats.WithNow(func() time.Time { return now }))

	return NewServer(manager, statsService, append([]ServerOpt{WithLogger(logger)}, opts...)...).Router()
}

func do(t *testing.T, h http.Handler, method string, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, reader))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func createTournament(t *testing.T, h http.Handler) *model.Tournament {
	t.Helper()

	rec := do(t, h, http.MethodPost, "/api/tournaments", map[string]interface{}{
		"name":        "Friday Night Poker",
		"type":        "PAID",
		"buy_in":      100,
		"template_id": "standard",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var tour model.Tournament
	decodeBody(t, rec, &tour)
	return &tour
}

func TestServer_TournamentFlow(t *testing.T) {
	h := newTestServer(t)
	tour := createTournament(t, h)
	assert.Equal(t, 10, tour.Levels.Len())
	base := "/api/tournaments/" + tour.ID

	registrations := make([]model.Registration, 0)
	for _, name := range []string{"Ana", "Ben", "Cid"} {
		rec := do(t, h, http.MethodPost, base+"/players", pokertournament.RegisterPlayerRequest{Name: name})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var r model.Registration
		decodeBody(t, rec, &r)
		registrations = append(registrations, r)
	}

	rec := do(t, h, http.MethodPost, base+"/clock/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var started pokertournament.ClockResult
	decodeBody(t, rec, &started)
	assert.Equal(t, clock.Result_Started, started.Result)
	assert.Equal(t, clock.Status_Running, started.Status.Status)
	assert.Equal(t, int64(300), started.Status.PrizePool)

	rec = do(t, h, http.MethodPost, base+"/tables/generate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var seating pokertournament.SeatingResult
	decodeBody(t, rec, &seating)
	assert.Equal(t, 3, seating.Seated)

	rec = do(t, h, http.MethodGet, base+"/tables/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"suggestion":null}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, base+"/players/eliminate", pokertournament.EliminatePlayerRequest{
		RegistrationID: registrations[0].ID,
		BountyCount:    1,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var eliminated pokertournament.EliminationResult
	decodeBody(t, rec, &eliminated)
	assert.Equal(t, 3, eliminated.Place)

	rec = do(t, h, http.MethodGet, base+"/clock", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status pokertournament.ClockStatus
	decodeBody(t, rec, &status)
	assert.Equal(t, 2, status.PlayersRemaining)
	assert.Equal(t, 3, status.TotalEntries)

	rec = do(t, h, http.MethodDelete, base+"/players/"+registrations[1].ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, base+"/players", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var players []model.Registration
	decodeBody(t, rec, &players)
	assert.Len(t, players, 2)

	rec = do(t, h, http.MethodPost, base+"/clock/finish", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, base+"/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var events []model.GameEvent
	decodeBody(t, rec, &events)
	assert.Equal(t, model.GameEventType_TournamentCreated, events[0].Type)
	assert.Equal(t, model.GameEventType_TournamentFinished, events[len(events)-1].Type)

	rec = do(t, h, http.MethodGet, "/api/tournaments?status=finished", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tournaments []model.Tournament
	decodeBody(t, rec, &tournaments)
	require.Len(t, tournaments, 1)
	assert.Equal(t, tour.ID, tournaments[0].ID)
}

func TestServer_ErrorStatusCodes(t *testing.T) {
	h := newTestServer(t)
	tour := createTournament(t, h)
	base := "/api/tournaments/" + tour.ID

	rec := do(t, h, http.MethodPost, base+"/players", pokertournament.RegisterPlayerRequest{Name: "Ana"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var r model.Registration
	decodeBody(t, rec, &r)

	testCases := []struct {
		name   string
		method string
		path   string
		body   interface{}
		code   int
		kind   string
	}{
		{
			name:   "unknown tournament",
			method: http.MethodGet,
			path:   "/api/tournaments/missing",
			code:   http.StatusNotFound,
			kind:   pokertournament.ErrNotFound.Error(),
		},
		{
			name:   "unknown template",
			method: http.MethodGet,
			path:   "/api/templates/missing",
			code:   http.StatusNotFound,
			kind:   pokertournament.ErrNotFound.Error(),
		},
		{
			name:   "missing player name",
			method: http.MethodPost,
			path:   base + "/players",
			body:   pokertournament.RegisterPlayerRequest{},
			code:   http.StatusBadRequest,
			kind:   pokertournament.ErrValidation.Error(),
		},
		{
			name:   "duplicate level",
			method: http.MethodPost,
			path:   base + "/levels",
			body:   map[string]interface{}{"level_number": 1, "small_blind": 10, "big_blind": 20},
			code:   http.StatusConflict,
			kind:   pokertournament.ErrConflict.Error(),
		},
		{
			name:   "bad timer",
			method: http.MethodPost,
			path:   base + "/clock/timer",
			body:   pokertournament.SetTimerRequest{Minutes: -1},
			code:   http.StatusBadRequest,
			kind:   pokertournament.ErrValidation.Error(),
		},
		{
			name:   "unknown season",
			method: http.MethodGet,
			path:   "/api/stats/results?season=monsoon",
			code:   http.StatusBadRequest,
		},
		{
			name:   "bad date",
			method: http.MethodGet,
			path:   "/api/stats/payout-leaders?date_from=yesterday",
			code:   http.StatusBadRequest,
			kind:   pokertournament.ErrValidation.Error(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())

			var resp errorResponse
			decodeBody(t, rec, &resp)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tc.kind, resp.Kind)
		})
	}

	// eliminating twice is rejected after the first one succeeds
	rec = do(t, h, http.MethodPost, base+"/players/eliminate", pokertournament.EliminatePlayerRequest{RegistrationID: r.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, base+"/players/eliminate", pokertournament.EliminatePlayerRequest{RegistrationID: r.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_RateLimit(t *testing.T) {
	h := newTestServer(t, WithRateLimit(1, 1))

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/templates", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodGet, "/api/templates", nil).Code)

	// health checks are not limited
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz", nil).Code)
}

func TestServer_ObserveRoutePattern(t *testing.T) {
	observer := &recordingObserver{}
	h := newTestServer(t, WithObserver(observer))
	tour := createTournament(t, h)

	do(t, h, http.MethodPost, "/api/tournaments/"+tour.ID+"/clock/start", nil)
	do(t, h, http.MethodGet, "/api/tournaments/missing/clock", nil)

	observer.mu.Lock()
	defer observer.mu.Unlock()

	require.Len(t, observer.routes, 3)
	assert.Equal(t, "POST /api/tournaments/{tournamentID}/clock/start", observer.routes[1])
	assert.Contains(t, observer.routes[2], "GET /api/tournaments/{tournamentID}/clock")
	for _, route := range observer.routes {
		assert.NotContains(t, route, tour.ID)
		assert.NotContains(t, route, "missing")
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusOK, http.StatusNotFound}, observer.codes)
}

func TestServer_ExportResults(t *testing.T) {
	h := newTestServer(t)
	tour := createTournament(t, h)

	rec := do(t, h, http.MethodPost, "/api/tournaments/"+tour.ID+"/clock/finish", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/stats/results.xlsx?title=Autumn+League", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `attachment; filename="autumn-league.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.NotZero(t, rec.Body.Len())
}
