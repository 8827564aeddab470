package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/weedbox/pokertournament"
	"github.com/weedbox/pokertournament/blind"
	"github.com/weedbox/pokertournament/clock"
	"github.com/weedbox/pokertournament/model"
	"github.com/weedbox/pokertournament/stats"
	"github.com/weedbox/pokertournament/store"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const dateLayout = "2006-01-02"

type CreateTournamentRequest struct {
	pokertournament.TournamentSetting
	TemplateID string `json:"template_id,omitempty"` // 套用的範本 ID
}

type RegistrationRequest struct {
	Closed bool `json:"closed"`
}

type StartBreakRequest struct {
	DurationMins int `json:"duration"` // 0 使用預設休息時間
}

// Templates & players

func (s *Server) listTemplates(ctx context.Context, r *http.Request) (interface{}, error) {
	return s.manager.ListTemplates(), nil
}

func (s *Server) getTemplate(ctx context.Context, r *http.Request) (interface{}, error) {
	return s.manager.GetTemplate(chi.URLParam(r, "templateID"))
}

func (s *Server) createPlayer(ctx context.Context, r *http.Request) (interface{}, error) {
	var req pokertournament.RegisterPlayerRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return s.manager.CreatePlayer(ctx, req)
}

func (s *Server) searchPlayers(ctx context.Context, r *http.Request) (interface{}, error) {
	return s.manager.SearchPlayers(ctx, chi.URLParam(r, "tournamentID"), r.URL.Query().Get("q"))
}

// Tournaments

func (s *Server) listTournaments(ctx context.Context, r *http.Request) (interface{}, error) {
	q := r.URL.Query()

	filter := store.TournamentFilter{
		Type:   model.TournamentType(strings.ToUpper(q.Get("type"))),
		Status: clock.Status(strings.ToUpper(q.Get("status"))),
	}

	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, pokertournament.NewValidationError("unknown tournament type %q", filter.Type)
	}

	return s.manager.ListTournaments(ctx, filter)
}

func (s *Server) createTournament(ctx context.Context, r *http.Request) (interface{}, error) {
	var req CreateTournamentRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}

	setting := req.TournamentSetting
	if req.TemplateID != "" {
		template, err := s.manager.GetTemplate(req.TemplateID)
		if err != nil {
			return nil, err
		}
		setting.Template = &template
	}

	return s.manager.CreateTournament(ctx, setting)
}

func (s *Server) getTournament(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	return engine.GetTournament(ctx)
}

func (s *Server) setRegistrationClosed(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	var req RegistrationRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return engine.SetRegistrationClosed(ctx, req.Closed)
}

func (s *Server) getEvents(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	return engine.GetEvents(ctx)
}

// Clock

func (s *Server) getClockStatus(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	return engine.GetClockStatus(ctx)
}

func (s *Server) startClock(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	return engine.StartClock(ctx)
}

func (s *Server) pauseClock(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	return engine.PauseClock(ctx)
}

func (s *Server) advanceLevel(direction int) engineOpFunc {
	return func(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
		return engine.AdvanceLevel(ctx, direction)
	}
}

func (s *Server) setTimer(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	var req pokertournament.SetTimerRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return engine.SetTimer(ctx, req)
}

func (s *Server) startBreak(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	var req StartBreakRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return engine.StartBreak(ctx, req.DurationMins)
}

func (s *Server) finishTournament(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	return engine.FinishTournament(ctx)
}

// Players

func (s *Server) getPlayers(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	return engine.GetPlayers(ctx)
}

func (s *Server) registerPlayer(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	var req pokertournament.RegisterPlayerRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return engine.RegisterPlayer(ctx, req)
}

func (s *Server) eliminatePlayer(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	var req pokertournament.EliminatePlayerRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return engine.EliminatePlayer(ctx, req)
}

func (s *Server) rebuy(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	return engine.Rebuy(ctx, chi.URLParam(r, "registrationID"))
}

func (s *Server) addon(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	return engine.Addon(ctx, chi.URLParam(r, "registrationID"))
}

func (s *Server) unregister(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	return nil, engine.Unregister(ctx, chi.URLParam(r, "registrationID"))
}

// Tables

func (s *Server) getTables(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	return engine.GetTables(ctx)
}

func (s *Server) addTable(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	var req pokertournament.AddTableRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return engine.AddTable(ctx, req)
}

func (s *Server) clearTables(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	return nil, engine.ClearTables(ctx)
}

func (s *Server) generateTables(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	return engine.GenerateTables(ctx)
}

func (s *Server) seatSelectedPlayers(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	var req pokertournament.SeatPlayersRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return engine.SeatSelectedPlayers(ctx, req)
}

func (s *Server) movePlayer(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	var req pokertournament.MovePlayerRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return engine.MovePlayer(ctx, req)
}

// checkTableBalance answers {"suggestion": null} when the tables are balanced.
func (s *Server) checkTableBalance(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	suggestion, err := engine.CheckTableBalance(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"suggestion": suggestion}, nil
}

func (s *Server) deleteTable(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	return nil, engine.DeleteTable(ctx, chi.URLParam(r, "tableID"))
}

// Levels

func (s *Server) getLevels(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	return engine.GetLevels(ctx)
}

func (s *Server) addLevel(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	var req pokertournament.AddLevelRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return engine.AddLevel(ctx, req)
}

func (s *Server) updateLevel(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	var patch blind.LevelPatch
	if err := decode(r, &patch); err != nil {
		return nil, err
	}
	return engine.UpdateLevel(ctx, chi.URLParam(r, "levelID"), patch)
}

func (s *Server) deleteLevel(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	return nil, engine.DeleteLevel(ctx, chi.URLParam(r, "levelID"))
}

// Payouts

func (s *Server) getPayouts(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	return engine.GetPayouts(ctx)
}

func (s *Server) generatePayouts(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	return engine.GeneratePayouts(ctx)
}

func (s *Server) addPayout(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	var req pokertournament.AddPayoutRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return engine.AddPayout(ctx, req)
}

func (s *Server) updatePayout(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	var req pokertournament.UpdatePayoutRequest
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return engine.UpdatePayout(ctx, chi.URLParam(r, "payoutID"), req)
}

func (s *Server) deletePayout(ctx context.Context, engine pokertournament.TournamentEngine, r *http.Request) (interface{}, error) {
	return nil, engine.DeletePayout(ctx, chi.URLParam(r, "payoutID"))
}

// Stats

/*
parseStatsQuery 解析統計查詢參數
  - type: PAID 或 FREE, 預設 PAID
  - date_from / date_to: YYYY-MM-DD
  - season + year: 以賽季取代日期區間
*/
func parseStatsQuery(r *http.Request, defaultType model.TournamentType) (stats.Query, error) {
	values := r.URL.Query()

	q := stats.Query{
		Type:   defaultType,
		Season: strings.ToLower(values.Get("season")),
	}

	if v := values.Get("type"); v != "" {
		q.Type = model.TournamentType(strings.ToUpper(v))
	}
	if !q.Type.IsValid() {
		return q, pokertournament.NewValidationError("unknown tournament type %q", q.Type)
	}

	for key, dst := range map[string]**time.Time{"date_from": &q.From, "date_to": &q.To} {
		v := values.Get(key)
		if v == "" {
			continue
		}

		day, err := time.Parse(dateLayout, v)
		if err != nil {
			return q, pokertournament.NewValidationError("%s must be YYYY-MM-DD", key)
		}
		*dst = &day
	}

	if v := values.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return q, pokertournament.NewValidationError("year must be a number")
		}
		q.Year = year
	}

	return q, nil
}

func (s *Server) results(ctx context.Context, r *http.Request) (interface{}, error) {
	q, err := parseStatsQuery(r, model.TournamentType_Paid)
	if err != nil {
		return nil, err
	}
	return s.stats.Results(ctx, q)
}

func (s *Server) payoutLeaders(ctx context.Context, r *http.Request) (interface{}, error) {
	q, err := parseStatsQuery(r, model.TournamentType_Paid)
	if err != nil {
		return nil, err
	}
	return s.stats.PayoutLeaders(ctx, q)
}

func (s *Server) rebuyLeaders(ctx context.Context, r *http.Request) (interface{}, error) {
	q, err := parseStatsQuery(r, model.TournamentType_Paid)
	if err != nil {
		return nil, err
	}
	return s.stats.RebuyLeaders(ctx, q)
}

func (s *Server) bountyLeaders(ctx context.Context, r *http.Request) (interface{}, error) {
	q, err := parseStatsQuery(r, model.TournamentType_Free)
	if err != nil {
		return nil, err
	}
	return s.stats.BountyLeaders(ctx, q)
}

func (s *Server) years(ctx context.Context, r *http.Request) (interface{}, error) {
	q, err := parseStatsQuery(r, model.TournamentType_Paid)
	if err != nil {
		return nil, err
	}
	return s.stats.Years(ctx, q.Type)
}

// exportResults streams the results matrix as an xlsx attachment.
func (s *Server) exportResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "httpapi.ExportResults")
	defer span.End()

	q, err := parseStatsQuery(r, model.TournamentType_Paid)
	if err != nil {
		s.writeError(w, span, "ExportResults", err)
		return
	}

	matrix, err := s.stats.Results(ctx, q)
	if err != nil {
		s.writeError(w, span, "ExportResults", err)
		return
	}

	title := r.URL.Query().Get("title")
	if title == "" {
		title = string(q.Type) + " results"
	}

	span.SetAttributes(attribute.Int("stats.tournaments", len(matrix.Tournaments)))

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+stats.ExportFilename(title)+`"`)

	if err := stats.ExportResultsXLSX(w, matrix); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.WithError(err).Error("failed to export results")
	}
}
