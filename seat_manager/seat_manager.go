package seat_manager

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

var (
	ErrInvalidMaxSeats = errors.New("seat manager: max seats must be positive")
	ErrInvalidSeat     = errors.New("seat manager: seat number out of range")
	ErrSeatTaken       = errors.New("seat manager: seat is already taken")
	ErrDuplicatePlayer = errors.New("seat manager: duplicate players detected")
)

type SeatManager interface {
	GenerateTables(registrationIDs []string, maxSeats int) ([]TablePlan, error)
	SeatPlayers(tables []TableSeats, registrationIDs []string) SeatingResult
	CheckTableBalance(tables []TableSeats) *BalanceSuggestion
	ValidateMove(table TableSeats, registrationID string, seatNumber int) error
}

// SeatPlayer is a REGISTERED entry currently holding a seat.
type SeatPlayer struct {
	RegistrationID string `json:"registration_id"`
	PlayerName     string `json:"player_name"`
	SeatNumber     int    `json:"seat_number"`
}

// TableSeats is the occupancy snapshot of one table.
type TableSeats struct {
	TableID     string       `json:"table_id"`
	TableNumber int          `json:"table_number"`
	MaxSeats    int          `json:"max_seats"`
	Players     []SeatPlayer `json:"players"`
}

func (ts TableSeats) Occupancy() int {
	return len(ts.Players)
}

func (ts TableSeats) HasCapacity() bool {
	return len(ts.Players) < ts.MaxSeats
}

// TablePlan is one table produced by GenerateTables.
type TablePlan struct {
	TableNumber int              `json:"table_number"`
	MaxSeats    int              `json:"max_seats"`
	Seats       []SeatAssignment `json:"seats"`
}

type SeatAssignment struct {
	RegistrationID string `json:"registration_id"`
	TableID        string `json:"table_id,omitempty"`
	TableNumber    int    `json:"table_number"`
	SeatNumber     int    `json:"seat_number"`
}

type SeatingResult struct {
	Status      string           `json:"status"`
	Assignments []SeatAssignment `json:"assignments"`
	Seated      int              `json:"seated_count"`
	Requested   int              `json:"requested_count"`
}

type Movement struct {
	RegistrationID string `json:"registration_id"`
	PlayerName     string `json:"player_name"`
	FromTable      int    `json:"from_table"`
	ToTable        int    `json:"to_table"`
	ToTableID      string `json:"to_table_id"`
}

// BalanceSuggestion is advisory. Executing it is up to the caller.
type BalanceSuggestion struct {
	Type           string     `json:"type"`
	TableNumber    int        `json:"table_number,omitempty"`
	TableID        string     `json:"table_id,omitempty"`
	Movements      []Movement `json:"movements,omitempty"`
	FromTable      int        `json:"from_table,omitempty"`
	ToTable        int        `json:"to_table,omitempty"`
	PlayersCount   int        `json:"players_count,omitempty"`
	FromTableCount int        `json:"from_table_count,omitempty"`
	ToTableCount   int        `json:"to_table_count,omitempty"`
	Message        string     `json:"message"`
}

type SeatManagerOpt func(*seatManager)

func NewSeatManager(opts ...SeatManagerOpt) SeatManager {
	sm := &seatManager{
		random: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, opt := range opts {
		opt(sm)
	}

	return sm
}

// WithSeed makes shuffles reproducible.
func WithSeed(seed int64) SeatManagerOpt {
	return func(sm *seatManager) {
		sm.random = rand.New(rand.NewSource(seed))
	}
}

type seatManager struct {
	mu     sync.Mutex
	random *rand.Rand
}
