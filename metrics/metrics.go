package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/weedbox/pokertournament"
	"github.com/weedbox/pokertournament/model"
)

const namespace = "pokertournament"

// Collector holds the prometheus collectors for engine and HTTP activity.
type Collector struct {
	registry         *prometheus.Registry
	events           *prometheus.CounterVec
	errors           *prometheus.CounterVec
	eliminations     prometheus.Counter
	playersRemaining *prometheus.GaugeVec
	prizePool        *prometheus.GaugeVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

func NewCollector(registry *prometheus.Registry) *Collector {
	c := &Collector{
		registry: registry,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Tournament events recorded, by event type.",
		}, []string{"type"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Rejected or failed engine operations, by error kind.",
		}, []string{"kind"}),
		eliminations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eliminations_total",
			Help:      "Players eliminated across all tournaments.",
		}),
		playersRemaining: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players_remaining",
			Help:      "Players still registered, by tournament.",
		}, []string{"tournament_id"}),
		prizePool: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "prize_pool",
			Help:      "Current prize pool, by tournament.",
		}, []string{"tournament_id"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		c.events,
		c.errors,
		c.eliminations,
		c.playersRemaining,
		c.prizePool,
		c.httpRequests,
		c.httpDuration,
	)

	return c
}

// Callbacks returns engine callbacks that update the engine collectors.
func (c *Collector) Callbacks() *pokertournament.TournamentEngineCallbacks {
	cb := pokertournament.NewTournamentEngineCallbacks()

	cb.OnTournamentEvent = func(event model.GameEvent) {
		c.events.WithLabelValues(string(event.Type)).Inc()
	}

	cb.OnTournamentUpdated = func(t *model.Tournament) {
		c.playersRemaining.WithLabelValues(t.ID).Set(float64(t.RegisteredCount()))
		c.prizePool.WithLabelValues(t.ID).Set(float64(t.PrizePool()))
	}

	cb.OnPlayerEliminated = func(string, pokertournament.EliminationResult) {
		c.eliminations.Inc()
	}

	cb.OnTournamentErrorUpdated = func(_ string, err error) {
		kind := "internal"
		if k := pokertournament.ErrorKind(err); k != nil {
			kind = k.Error()
		}
		c.errors.WithLabelValues(kind).Inc()
	}

	return cb
}

// ObserveRequest records one served HTTP request.
func (c *Collector) ObserveRequest(method string, route string, code int, elapsed time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
