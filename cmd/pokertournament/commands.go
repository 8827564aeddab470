package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"github.com/weedbox/pokertournament"
	"github.com/weedbox/pokertournament/config"
	"github.com/weedbox/pokertournament/eventbus"
	"github.com/weedbox/pokertournament/httpapi"
	"github.com/weedbox/pokertournament/metrics"
	"github.com/weedbox/pokertournament/model"
	"github.com/weedbox/pokertournament/stats"
	"github.com/weedbox/pokertournament/store"
	"github.com/weedbox/pokertournament/store/bunstore"
)

const shutdownTimeout = 10 * time.Second

var ErrSchemaNeedsSQLStore = errors.New("migrate: store driver must be postgres or sqlite")

// openStore returns the configured store and a function releasing it.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, func() error, error) {
	switch cfg.Driver {
	case config.StoreDriver_Postgres:
		bs, err := bunstore.OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return bs, bs.Close, nil
	case config.StoreDriver_SQLite:
		bs, err := bunstore.OpenSQLite(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return bs, bs.Close, nil
	case config.StoreDriver_Memory:
		return store.NewMemoryStore(), func() error { return nil }, nil
	}

	return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownStoreDriver, cfg.Driver)
}

func createSchema(ctx context.Context, st store.Store) error {
	bs, ok := st.(*bunstore.BunStore)
	if !ok {
		return ErrSchemaNeedsSQLStore
	}
	return bs.CreateSchema(ctx)
}

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "migrate",
				Usage: "create missing tables before serving",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := loadConfig(c)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, closeStore, err := openStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer closeStore()

			if c.Bool("migrate") {
				if err := createSchema(ctx, st); err != nil {
					return err
				}
			}

			handler, pubsub, err := newHandler(ctx, cfg, st, logger)
			if err != nil {
				return err
			}
			defer pubsub.Close()

			return serve(ctx, cfg.HTTP.Addr, handler, logger)
		},
	}
}

/*
newHandler 組裝 API
  - 事件經由 watermill 發佈, 淘汰事件另外寫入 log
  - 開啟 metrics 時掛上 prometheus collector 與 /metrics
*/
func newHandler(ctx context.Context, cfg *config.Config, st store.Store, logger *logrus.Logger) (http.Handler, message.PubSub, error) {
	pubsub := eventbus.NewGoChannel(logger)

	eliminations, err := pubsub.Subscribe(ctx, eventbus.TopicPlayerEliminated)
	if err != nil {
		pubsub.Close()
		return nil, nil, err
	}
	go logEliminations(logger, eliminations)

	callbacks := eventbus.NewPublisher(pubsub, logger).Callbacks()
	serverOpts := []httpapi.ServerOpt{
		httpapi.WithLogger(logger),
		httpapi.WithRateLimit(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst),
	}

	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		collector := metrics.NewCollector(registry)
		callbacks = callbacks.Merge(collector.Callbacks())
		serverOpts = append(serverOpts,
			httpapi.WithObserver(collector),
			httpapi.WithMetricsHandler(collector.Handler()),
		)
	}

	options := pokertournament.NewTournamentEngineOptions()
	options.MaxSeats = cfg.Seating.MaxSeats
	options.BreakDurationMins = cfg.Clock.BreakDurationMins

	manager := pokertournament.NewManager(st,
		pokertournament.WithManagerOptions(options),
		pokertournament.WithManagerCallbacks(callbacks),
		pokertournament.WithManagerLogger(logger),
	)

	server := httpapi.NewServer(manager, stats.NewService(st), serverOpts...)
	return server.Router(), pubsub, nil
}

func logEliminations(logger *logrus.Logger, messages <-chan *message.Message) {
	for msg := range messages {
		var payload eventbus.PlayerEliminated
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			logger.WithError(err).Warn("malformed elimination message")
			msg.Ack()
			continue
		}

		logger.WithFields(logrus.Fields{
			"tournament_id":   payload.TournamentID,
			"registration_id": payload.Result.RegistrationID,
			"place":           payload.Result.Place,
			"bounty_count":    payload.Result.BountyCount,
		}).Info("player eliminated")
		msg.Ack()
	}
}

func serve(ctx context.Context, addr string, handler http.Handler, logger *logrus.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", addr).Info("http server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func newMigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create the database tables",
		Action: func(c *cli.Context) error {
			cfg, logger, err := loadConfig(c)
			if err != nil {
				return err
			}

			st, closeStore, err := openStore(c.Context, cfg.Store)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := createSchema(c.Context, st); err != nil {
				return err
			}

			logger.WithField("driver", cfg.Store.Driver).Info("schema created")
			return nil
		},
	}
}

func newExportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write the results matrix to an xlsx file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Value: string(model.TournamentType_Paid), Usage: "PAID or FREE"},
			&cli.StringFlag{Name: "season", Usage: "winter, spring, summer or autumn"},
			&cli.IntFlag{Name: "year", Usage: "season year, defaults to the current year"},
			&cli.TimestampFlag{Name: "from", Layout: "2006-01-02", Usage: "first day (YYYY-MM-DD)"},
			&cli.TimestampFlag{Name: "to", Layout: "2006-01-02", Usage: "last day (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "title", Value: "results", Usage: "workbook title, used for the file name"},
			&cli.StringFlag{Name: "out", Usage: "output path, defaults to the slugged title"},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := loadConfig(c)
			if err != nil {
				return err
			}

			st, closeStore, err := openStore(c.Context, cfg.Store)
			if err != nil {
				return err
			}
			defer closeStore()

			q := stats.Query{
				Type:   model.TournamentType(strings.ToUpper(c.String("type"))),
				Season: strings.ToLower(c.String("season")),
				Year:   c.Int("year"),
				From:   c.Timestamp("from"),
				To:     c.Timestamp("to"),
			}

			out := c.String("out")
			if out == "" {
				out = stats.ExportFilename(c.String("title"))
			}

			tournaments, err := exportResults(c.Context, st, q, out)
			if err != nil {
				return err
			}

			logger.WithFields(logrus.Fields{
				"file":        out,
				"tournaments": tournaments,
			}).Info("results exported")
			return nil
		},
	}
}

// exportResults writes the results matrix for q to path and returns the
// number of tournaments it covers.
func exportResults(ctx context.Context, st store.Store, q stats.Query, path string) (int, error) {
	if !q.Type.IsValid() {
		return 0, fmt.Errorf("unknown tournament type %q", q.Type)
	}

	matrix, err := stats.NewService(st).Results(ctx, q)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if err := stats.ExportResultsXLSX(f, matrix); err != nil {
		return 0, err
	}

	return len(matrix.Tournaments), f.Close()
}
