package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/weedbox/pokertournament"
	"github.com/weedbox/pokertournament/stats"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const TracerName = "github.com/weedbox/pokertournament/httpapi"

type Server struct {
	manager        pokertournament.Manager
	stats          *stats.Service
	logger         *logrus.Logger
	tracer         trace.Tracer
	limiter        *IPRateLimiter
	observer       Observer
	metricsHandler http.Handler
}

type ServerOpt func(*Server)

func NewServer(manager pokertournament.Manager, statsService *stats.Service, opts ...ServerOpt) *Server {
	s := &Server{
		manager: manager,
		stats:   statsService,
		logger:  logrus.StandardLogger(),
		tracer:  otel.Tracer(TracerName),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func WithLogger(logger *logrus.Logger) ServerOpt {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) ServerOpt {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// WithRateLimit limits each client IP to limit requests per second. A
// non-positive limit disables limiting.
func WithRateLimit(limit float64, burst int) ServerOpt {
	return func(s *Server) {
		if limit <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = NewIPRateLimiter(rate.Limit(limit), burst)
	}
}

func WithObserver(observer Observer) ServerOpt {
	return func(s *Server) {
		s.observer = observer
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) ServerOpt {
	return func(s *Server) {
		s.metricsHandler = h
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.observer != nil {
		r.Use(ObserveMiddleware(s.observer))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(RateLimitMiddleware(s.limiter))
		}

		r.Get("/templates", s.op("ListTemplates", http.StatusOK, s.listTemplates))
		r.Get("/templates/{templateID}", s.op("GetTemplate", http.StatusOK, s.getTemplate))
		r.Post("/players", s.op("CreatePlayer", http.StatusCreated, s.createPlayer))

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", s.op("ListTournaments", http.StatusOK, s.listTournaments))
			r.Post("/", s.op("CreateTournament", http.StatusCreated, s.createTournament))

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", s.engineOp("GetTournament", http.StatusOK, s.getTournament))
				r.Put("/registration", s.engineOp("SetRegistrationClosed", http.StatusOK, s.setRegistrationClosed))
				r.Get("/events", s.engineOp("GetEvents", http.StatusOK, s.getEvents))

				r.Route("/clock", func(r chi.Router) {
					r.Get("/", s.engineOp("GetClockStatus", http.StatusOK, s.getClockStatus))
					r.Post("/start", s.engineOp("StartClock", http.StatusOK, s.startClock))
					r.Post("/pause", s.engineOp("PauseClock", http.StatusOK, s.pauseClock))
					r.Post("/next", s.engineOp("NextLevel", http.StatusOK, s.advanceLevel(1)))
					r.Post("/prev", s.engineOp("PrevLevel", http.StatusOK, s.advanceLevel(-1)))
					r.Post("/timer", s.engineOp("SetTimer", http.StatusOK, s.setTimer))
					r.Post("/break", s.engineOp("StartBreak", http.StatusOK, s.startBreak))
					r.Post("/finish", s.engineOp("FinishTournament", http.StatusOK, s.finishTournament))
				})

				r.Route("/players", func(r chi.Router) {
					r.Get("/", s.engineOp("GetPlayers", http.StatusOK, s.getPlayers))
					r.Post("/", s.engineOp("RegisterPlayer", http.StatusCreated, s.registerPlayer))
					r.Get("/search", s.op("SearchPlayers", http.StatusOK, s.searchPlayers))
					r.Post("/eliminate", s.engineOp("EliminatePlayer", http.StatusOK, s.eliminatePlayer))
					r.Post("/{registrationID}/rebuy", s.engineOp("Rebuy", http.StatusOK, s.rebuy))
					r.Post("/{registrationID}/addon", s.engineOp("Addon", http.StatusOK, s.addon))
					r.Delete("/{registrationID}", s.engineOp("Unregister", http.StatusNoContent, s.unregister))
				})

				r.Route("/tables", func(r chi.Router) {
					r.Get("/", s.engineOp("GetTables", http.StatusOK, s.getTables))
					r.Post("/", s.engineOp("AddTable", http.StatusCreated, s.addTable))
					r.Delete("/", s.engineOp("ClearTables", http.StatusNoContent, s.clearTables))
					r.Post("/generate", s.engineOp("GenerateTables", http.StatusOK, s.generateTables))
					r.Post("/seat", s.engineOp("SeatSelectedPlayers", http.StatusOK, s.seatSelectedPlayers))
					r.Post("/move", s.engineOp("MovePlayer", http.StatusOK, s.movePlayer))
					r.Get("/balance", s.engineOp("CheckTableBalance", http.StatusOK, s.checkTableBalance))
					r.Delete("/{tableID}", s.engineOp("DeleteTable", http.StatusNoContent, s.deleteTable))
				})

				r.Route("/levels", func(r chi.Router) {
					r.Get("/", s.engineOp("GetLevels", http.StatusOK, s.getLevels))
					r.Post("/", s.engineOp("AddLevel", http.StatusCreated, s.addLevel))
					r.Patch("/{levelID}", s.engineOp("UpdateLevel", http.StatusOK, s.updateLevel))
					r.Delete("/{levelID}", s.engineOp("DeleteLevel", http.StatusNoContent, s.deleteLevel))
				})

				r.Route("/payouts", func(r chi.Router) {
					r.Get("/", s.engineOp("GetPayouts", http.StatusOK, s.getPayouts))
					r.Post("/", s.engineOp("AddPayout", http.StatusCreated, s.addPayout))
					r.Post("/generate", s.engineOp("GeneratePayouts", http.StatusOK, s.generatePayouts))
					r.Patch("/{payoutID}", s.engineOp("UpdatePayout", http.StatusOK, s.updatePayout))
					r.Delete("/{payoutID}", s.engineOp("DeletePayout", http.StatusNoContent, s.deletePayout))
				})
			})
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/results", s.op("Results", http.StatusOK, s.results))
			r.Get("/results.xlsx", s.exportResults)
			r.Get("/payout-leaders", s.op("PayoutLeaders", http.StatusOK, s.payoutLeaders))
			r.Get("/rebuy-leaders", s.op("RebuyLeaders", http.StatusOK, s.rebuyLeaders))
			r.Get("/bounty-leaders", s.op("BountyLeaders", http.StatusOK, s.bountyLeaders))
			r.Get("/years", s.op("Years", http.StatusOK, s.years))
		})
	})

	return r
}

type opFunc func(ctx context.Context, r *http.Request) (interface{}, error)

type engineOpFunc func(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error)

/*
op 包裝一個 API 操作
  - 每個操作開一個 span
  - 錯誤依類型轉成 HTTP 狀態碼
  - 沒有回傳內容時回 204
*/
func (s *Server) op(name string, status int, fn opFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.tracer.Start(r.Context(), "httpapi."+name,
			trace.WithAttributes(attribute.String("http.method", r.Method)),
		)
		defer span.End()

		if tournamentID := chi.URLParam(r, "tournamentID"); tournamentID != "" {
			span.SetAttributes(attribute.String("tournament.id", tournamentID))
		}

		resp, err := fn(ctx, r)
		if err != nil {
			s.writeError(w, span, name, err)
			return
		}

		if resp == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		writeJSON(w, status, resp)
	}
}

func (s *Server) engineOp(name string, status int, fn engineOpFunc) http.HandlerFunc {
	return s.op(name, status, func(ctx context.Context, r *http.Request) (interface{}, error) {
		engine, err := s.manager.GetTournamentEngine(ctx, chi.URLParam(r, "tournamentID"))
		if err != nil {
			return nil, err
		}
		return fn(ctx, engine, r)
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// StatusCode maps an operation error onto its HTTP status.
func StatusCode(err error) int {
	switch pokertournament.ErrorKind(err) {
	case pokertournament.ErrValidation:
		return http.StatusBadRequest
	case pokertournament.ErrNotFound:
		return http.StatusNotFound
	case pokertournament.ErrInvalidState, pokertournament.ErrConflict:
		return http.StatusConflict
	}

	if errors.Is(err, stats.ErrUnknownSeason) || errors.Is(err, stats.ErrInvalidRange) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, span trace.Span, name string, err error) {
	status := StatusCode(err)

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.Int("http.status_code", status))

	resp := errorResponse{Error: err.Error()}
	if kind := pokertournament.ErrorKind(err); kind != nil {
		resp.Kind = kind.Error()
	}

	if status >= http.StatusInternalServerError {
		s.logger.WithField("operation", name).WithError(err).Error("request failed")
		resp.Error = http.StatusText(status)
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return pokertournament.NewValidationError("invalid request body: %v", err)
	}

	return nil
}
