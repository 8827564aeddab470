package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/weedbox/pokertournament/model"
	"github.com/weedbox/pokertournament/store"

	_ "modernc.org/sqlite"
)

var _ store.Store = (*BunStore)(nil)

// BunStore persists tournament aggregates in SQL tables through bun. Each
// aggregate is one row in tournaments plus ordered child rows.
type BunStore struct {
	db *bun.DB
}

func New(db *bun.DB) *BunStore {
	return &BunStore{
		db: db,
	}
}

// OpenPostgres connects with pgdriver and checks the connection.
func OpenPostgres(ctx context.Context, dsn string) (*BunStore, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return New(bun.NewDB(sqldb, pgdialect.New())), nil
}

// OpenSQLite opens a SQLite database file. ":memory:" keeps everything in a
// single in-process connection.
func OpenSQLite(ctx context.Context, path string) (*BunStore, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// sqlite allows one writer; a single connection also keeps :memory: shared
	sqldb.SetMaxOpenConns(1)

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return New(bun.NewDB(sqldb, sqlitedialect.New())), nil
}

func (bs *BunStore) DB() *bun.DB {
	return bs.db
}

func (bs *BunStore) Close() error {
	return bs.db.Close()
}

// CreateSchema creates every table that does not exist yet.
func (bs *BunStore) CreateSchema(ctx context.Context) error {
	for _, m := range models {
		if _, err := bs.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	_, err := bs.db.NewCreateIndex().
		Model((*Tournament)(nil)).
		Index("tournaments_date_idx").
		Column("date").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

func (bs *BunStore) CreateTournament(ctx context.Context, t *model.Tournament) error {
	return bs.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*Tournament)(nil)).Where("id = ?", t.ID).Exists(ctx)
		if err != nil {
			return fmt.Errorf("failed to check tournament: %w", err)
		}

		if exists {
			return store.ErrTournamentExists
		}

		if _, err := tx.NewInsert().Model(newTournament(t)).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create tournament: %w", err)
		}

		return insertChildren(ctx, tx, newChildren(t))
	})
}

func (bs *BunStore) LoadTournament(ctx context.Context, tournamentID string) (*model.Tournament, error) {
	row := &Tournament{}
	err := bs.db.NewSelect().Model(row).Where("id = ?", tournamentID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}

	return loadAggregate(ctx, bs.db, row)
}

/*
SaveTournament 以單一交易覆寫整個賽事
  - 更新 tournaments 主檔, 不存在時回傳 ErrTournamentNotFound
  - 刪除所有子資料後依目前順序重新寫入
  - 任何一步失敗都會 rollback, 既有資料不變
*/
func (bs *BunStore) SaveTournament(ctx context.Context, t *model.Tournament) error {
	return bs.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewUpdate().Model(newTournament(t)).WherePK().Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update tournament: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected after update: %w", err)
		}

		if affected == 0 {
			return store.ErrTournamentNotFound
		}

		if err := deleteChildren(ctx, tx, t.ID); err != nil {
			return err
		}

		return insertChildren(ctx, tx, newChildren(t))
	})
}

func (bs *BunStore) ListTournaments(ctx context.Context, filter store.TournamentFilter) ([]*model.Tournament, error) {
	rows := make([]*Tournament, 0)
	q := bs.db.NewSelect().Model(&rows)

	if filter.Type != "" {
		q = q.Where("type = ?", string(filter.Type))
	}
	if filter.Status != "" {
		q = q.Where("clock_status = ?", string(filter.Status))
	}
	if filter.From != nil {
		q = q.Where("date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("date < ?", filter.To.UTC())
	}

	if err := q.Order("date ASC", "created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}

	result := make([]*model.Tournament, 0, len(rows))
	for _, row := range rows {
		t, err := loadAggregate(ctx, bs.db, row)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}

	return result, nil
}

func (bs *BunStore) GetPlayer(ctx context.Context, playerID string) (*model.Player, error) {
	row := &Player{}
	err := bs.db.NewSelect().Model(row).Where("id = ?", playerID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return row.toModel(), nil
}

func (bs *BunStore) CreatePlayer(ctx context.Context, p *model.Player) error {
	return bs.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().Model((*Player)(nil)).WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			q = q.Where("id = ?", p.ID)
			if p.ExternalID != "" {
				q = q.WhereOr("external_id = ?", p.ExternalID)
			}
			return q
		})

		exists, err := q.Exists(ctx)
		if err != nil {
			return fmt.Errorf("failed to check player: %w", err)
		}

		if exists {
			return store.ErrPlayerExists
		}

		if _, err := tx.NewInsert().Model(newPlayer(p)).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create player: %w", err)
		}

		return nil
	})
}

// FindPlayers matches query case-insensitively against names and phone.
func (bs *BunStore) FindPlayers(ctx context.Context, query string) ([]*model.Player, error) {
	rows := make([]*Player, 0)
	q := bs.db.NewSelect().Model(&rows)

	if pattern := strings.ToLower(strings.TrimSpace(query)); pattern != "" {
		like := "%" + pattern + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("LOWER(username) LIKE ?", like).
				WhereOr("LOWER(first_name) LIKE ?", like).
				WhereOr("LOWER(last_name) LIKE ?", like).
				WhereOr("LOWER(phone) LIKE ?", like)
		})
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to find players: %w", err)
	}

	result := toPlayers(rows)
	sort.Slice(result, func(i, j int) bool {
		return result[i].DisplayName() < result[j].DisplayName()
	})

	return result, nil
}

func (bs *BunStore) ListPlayers(ctx context.Context, playerIDs []string) ([]*model.Player, error) {
	if len(playerIDs) == 0 {
		return []*model.Player{}, nil
	}

	rows := make([]*Player, 0, len(playerIDs))
	err := bs.db.NewSelect().Model(&rows).Where("id IN (?)", bun.In(playerIDs)).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	return toPlayers(rows), nil
}

func toPlayers(rows []*Player) []*model.Player {
	result := make([]*model.Player, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toModel())
	}
	return result
}

func loadAggregate(ctx context.Context, db bun.IDB, row *Tournament) (*model.Tournament, error) {
	c := children{}

	queries := []struct {
		name  string
		model interface{}
	}{
		{"registrations", &c.registrations},
		{"tables", &c.tables},
		{"levels", &c.levels},
		{"payouts", &c.payouts},
		{"events", &c.events},
	}

	for _, q := range queries {
		err := db.NewSelect().
			Model(q.model).
			Where("tournament_id = ?", row.ID).
			Order("position ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", q.name, err)
		}
	}

	t := row.toModel()
	c.apply(t)
	return t, nil
}

func deleteChildren(ctx context.Context, tx bun.Tx, tournamentID string) error {
	for _, m := range childModels {
		_, err := tx.NewDelete().Model(m).Where("tournament_id = ?", tournamentID).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete children: %w", err)
		}
	}
	return nil
}

func insertChildren(ctx context.Context, tx bun.Tx, c children) error {
	inserts := []struct {
		name  string
		count int
		model interface{}
	}{
		{"registrations", len(c.registrations), &c.registrations},
		{"tables", len(c.tables), &c.tables},
		{"levels", len(c.levels), &c.levels},
		{"payouts", len(c.payouts), &c.payouts},
		{"events", len(c.events), &c.events},
	}

	for _, ins := range inserts {
		// bun rejects bulk inserts of empty slices
		if ins.count == 0 {
			continue
		}

		if _, err := tx.NewInsert().Model(ins.model).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert %s: %w", ins.name, err)
		}
	}

	return nil
}
