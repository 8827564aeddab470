package pokertournament

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
	"github.com/thoas/go-funk"
	"github.com/weedbox/pokertournament/blind"
	"github.com/weedbox/pokertournament/clock"
	"github.com/weedbox/pokertournament/model"
	"github.com/weedbox/pokertournament/payout"
	"github.com/weedbox/pokertournament/seat_manager"
	"github.com/weedbox/pokertournament/store"
)

const (
	MinSearchQueryLength = 2
	MaxSearchResults     = 10
)

var (
	ErrManagerTemplateNotFound = newKindError(ErrNotFound, "manager: template not found")
)

type Manager interface {
	Reset()

	// Tournament Actions
	GetTournamentEngine(ctx context.Context, tournamentID string) (TournamentEngine, error)
	CreateTournament(ctx context.Context, setting TournamentSetting) (*model.Tournament, error)
	ListTournaments(ctx context.Context, filter store.TournamentFilter) ([]*model.Tournament, error)

	// Template Actions
	ListTemplates() []blind.Template
	GetTemplate(templateID string) (blind.Template, error)

	// Player Actions
	CreatePlayer(ctx context.Context, req RegisterPlayerRequest) (*model.Player, error)
	SearchPlayers(ctx context.Context, tournamentID string, query string) ([]*model.Player, error)
}

type ManagerOpt func(*manager)

type manager struct {
	store             store.Store
	options           *TournamentEngineOptions
	callbacks         *TournamentEngineCallbacks
	clock             *clock.Clock
	logger            *logrus.Logger
	seatManager       seat_manager.SeatManager
	templates         []blind.Template
	tournamentEngines sync.Map
}

func NewManager(st store.Store, opts ...ManagerOpt) Manager {
	m := &manager{
		store:     st,
		options:   NewTournamentEngineOptions(),
		callbacks: NewTournamentEngineCallbacks(),
		clock:     clock.NewClock(),
		logger:    logrus.StandardLogger(),
		templates: []blind.Template{defaultTemplate()},
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.seatManager == nil {
		m.seatManager = seat_manager.NewSeatManager()
	}

	return m
}

func WithManagerOptions(options *TournamentEngineOptions) ManagerOpt {
	return func(m *manager) {
		m.options = options
	}
}

// WithManagerCallbacks attaches callbacks to every engine the manager creates.
func WithManagerCallbacks(callbacks *TournamentEngineCallbacks) ManagerOpt {
	return func(m *manager) {
		m.callbacks = NewTournamentEngineCallbacks().Merge(callbacks)
	}
}

func WithManagerClock(c *clock.Clock) ManagerOpt {
	return func(m *manager) {
		m.clock = c
	}
}

func WithManagerLogger(logger *logrus.Logger) ManagerOpt {
	return func(m *manager) {
		m.logger = logger
	}
}

func WithManagerSeatManager(sm seat_manager.SeatManager) ManagerOpt {
	return func(m *manager) {
		m.seatManager = sm
	}
}

// WithTemplates adds templates next to the default one. Templates without an
// ID get one slugged from their name.
func WithTemplates(templates ...blind.Template) ManagerOpt {
	return func(m *manager) {
		for _, template := range templates {
			if template.ID == "" {
				template.ID = slug.Make(template.Name)
			}
			m.templates = append(m.templates, template)
		}
	}
}

func defaultTemplate() blind.Template {
	template := blind.DefaultTemplate()
	template.ID = slug.Make(template.Name)
	return template
}

func (m *manager) Reset() {
	m.tournamentEngines = sync.Map{}
}

// GetTournamentEngine returns the engine of tournamentID, creating it on
// first use for tournaments that exist in the store.
func (m *manager) GetTournamentEngine(ctx context.Context, tournamentID string) (TournamentEngine, error) {
	if tournamentEngine, exist := m.tournamentEngines.Load(tournamentID); exist {
		return tournamentEngine.(TournamentEngine), nil
	}

	if _, err := m.store.LoadTournament(ctx, tournamentID); err != nil {
		return nil, translateError(err)
	}

	tournamentEngine, _ := m.tournamentEngines.LoadOrStore(tournamentID, m.newTournamentEngine(tournamentID))
	return tournamentEngine.(TournamentEngine), nil
}

func (m *manager) newTournamentEngine(tournamentID string) TournamentEngine {
	te := NewTournamentEngine(tournamentID, m.store, m.options,
		WithClock(m.clock),
		WithLogger(m.logger),
		WithSeatManager(m.seatManager),
	)
	te.OnTournamentUpdated(m.callbacks.OnTournamentUpdated)
	te.OnTournamentErrorUpdated(m.callbacks.OnTournamentErrorUpdated)
	te.OnTournamentEvent(m.callbacks.OnTournamentEvent)
	te.OnPlayerEliminated(m.callbacks.OnPlayerEliminated)
	return te
}

/*
CreateTournament 建立賽事
  - 有指定範本時套用範本的類型、買入、籌碼與盲注結構
  - 未指定日期時使用目前時間
*/
func (m *manager) CreateTournament(ctx context.Context, setting TournamentSetting) (*model.Tournament, error) {
	resolved, ladder, err := setting.Resolve()
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()
	if resolved.Date.IsZero() {
		resolved.Date = now
	}

	t := &model.Tournament{
		ID:            uuid.New().String(),
		Name:          resolved.Name,
		Date:          resolved.Date,
		Season:        resolved.Season,
		Type:          resolved.Type,
		BuyIn:         resolved.BuyIn,
		Stack:         resolved.Stack,
		Clock:         clock.NewState(),
		Levels:        ladder,
		Registrations: []*model.Registration{},
		Tables:        []*model.Table{},
		Payouts:       []payout.Payout{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	t.AddEvent(model.GameEvent{
		ID:          uuid.New().String(),
		Type:        model.GameEventType_TournamentCreated,
		Description: "Tournament " + t.Name + " created",
		Timestamp:   now,
	})

	if err := m.store.CreateTournament(ctx, t); err != nil {
		return nil, translateError(err)
	}

	m.logger.WithFields(logrus.Fields{
		"tournament_id": t.ID,
		"type":          t.Type,
		"levels":        ladder.Len(),
	}).Info("tournament created")

	m.tournamentEngines.LoadOrStore(t.ID, m.newTournamentEngine(t.ID))
	m.callbacks.OnTournamentEvent(t.Events[0])
	m.callbacks.OnTournamentUpdated(t)

	return t, nil
}

func (m *manager) ListTournaments(ctx context.Context, filter store.TournamentFilter) ([]*model.Tournament, error) {
	tournaments, err := m.store.ListTournaments(ctx, filter)
	if err != nil {
		return nil, translateError(err)
	}
	return tournaments, nil
}

func (m *manager) ListTemplates() []blind.Template {
	templates := make([]blind.Template, len(m.templates))
	copy(templates, m.templates)
	return templates
}

func (m *manager) GetTemplate(templateID string) (blind.Template, error) {
	for _, template := range m.templates {
		if template.ID == templateID {
			return template, nil
		}
	}
	return blind.Template{}, ErrManagerTemplateNotFound
}

func (m *manager) CreatePlayer(ctx context.Context, req RegisterPlayerRequest) (*model.Player, error) {
	if strings.TrimSpace(req.Name) == "" && strings.TrimSpace(req.Username) == "" {
		return nil, NewValidationError("player name is required")
	}

	player := req.NewPlayer(m.clock.Now())
	if err := m.store.CreatePlayer(ctx, player); err != nil {
		return nil, translateError(err)
	}

	return player, nil
}

/*
SearchPlayers 搜尋可報名的玩家
  - 關鍵字少於 2 個字元時不搜尋
  - 排除已報名該賽事的玩家
  - 最多回傳 10 筆
*/
func (m *manager) SearchPlayers(ctx context.Context, tournamentID string, query string) ([]*model.Player, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinSearchQueryLength {
		return []*model.Player{}, nil
	}

	t, err := m.store.LoadTournament(ctx, tournamentID)
	if err != nil {
		return nil, translateError(err)
	}

	registered := funk.Map(t.Registrations, func(r *model.Registration) string {
		return r.PlayerID
	}).([]string)

	players, err := m.store.FindPlayers(ctx, query)
	if err != nil {
		return nil, translateError(err)
	}

	candidates := funk.Filter(players, func(p *model.Player) bool {
		return !funk.ContainsString(registered, p.ID)
	}).([]*model.Player)

	sort.SliceStable(candidates, func(i, j int) bool {
		return strings.ToLower(candidates[i].DisplayName()) < strings.ToLower(candidates[j].DisplayName())
	})

	if len(candidates) > MaxSearchResults {
		candidates = candidates[:MaxSearchResults]
	}

	return candidates, nil
}
