// Package scoreboard indexes settlement results into a SQL database and
// answers leaderboard queries. It consumes committed events and never writes
// chain state.
package scoreboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"treasurechain/core/events"
	"treasurechain/core/types"
	"treasurechain/native/treasure"
)

// Solve is one indexed result row.
type Solve struct {
	ResultKey    uint64 `gorm:"primaryKey;autoIncrement:false"`
	ID           string `gorm:"size:36;uniqueIndex"`
	TreasureKey  uint64 `gorm:"index"`
	Finder       string `gorm:"size:64;index"`
	Creator      string `gorm:"size:64;index"`
	PayoutUnits  int64
	PayoutSymbol string `gorm:"size:16"`
	MinedUnits   int64
	SolvedAt     time.Time
	CreatedAt    time.Time
}

// Leader aggregates the solves of one finder.
type Leader struct {
	Finder      string `json:"finder"`
	Solved      int64  `json:"solved"`
	PayoutUnits int64  `json:"payoutUnits"`
}

// Store is the gorm-backed scoreboard.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open connects to the SQLite database at dsn and migrates the schema.
func Open(dsn string, log *slog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("scoreboard: open: %w", err)
	}
	return New(db, log)
}

// New wraps an existing connection.
func New(db *gorm.DB, log *slog.Logger) (*Store, error) {
	if db == nil {
		return nil, errors.New("scoreboard: nil db")
	}
	if log == nil {
		log = slog.Default()
	}
	if err := db.AutoMigrate(&Solve{}); err != nil {
		return nil, fmt.Errorf("scoreboard: migrate: %w", err)
	}
	return &Store{db: db, logger: log}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Emit implements events.Emitter. Failures are logged; the chain never
// waits on the scoreboard.
func (s *Store) Emit(evt events.Event) {
	payload, ok := evt.(events.Payload)
	if !ok || payload.Event() == nil {
		return
	}
	if err := s.Record(context.Background(), payload.Event()); err != nil {
		s.logger.Error("scoreboard index failed",
			slog.String("event", evt.EventType()),
			slog.Any("error", err))
	}
}

// Record applies a result event. Other event types are ignored.
func (s *Store) Record(ctx context.Context, evt *types.Event) error {
	switch evt.Type {
	case treasure.EventTypeResultAdded:
		solve, err := solveFromEvent(evt)
		if err != nil {
			return err
		}
		return s.db.WithContext(ctx).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(solve).Error
	case treasure.EventTypeResultErased:
		key, err := strconv.ParseUint(evt.Attributes["result"], 10, 64)
		if err != nil {
			return fmt.Errorf("scoreboard: result key: %w", err)
		}
		return s.db.WithContext(ctx).Delete(&Solve{}, key).Error
	default:
		return nil
	}
}

func solveFromEvent(evt *types.Event) (*Solve, error) {
	attrs := evt.Attributes
	key, err := strconv.ParseUint(attrs["result"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("scoreboard: result key: %w", err)
	}
	id, err := uuid.Parse(attrs["id"])
	if err != nil {
		return nil, fmt.Errorf("scoreboard: result id: %w", err)
	}
	treasureKey, err := strconv.ParseUint(attrs["treasure"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("scoreboard: treasure key: %w", err)
	}
	payout, err := types.ParseAsset(attrs["payout"])
	if err != nil {
		return nil, fmt.Errorf("scoreboard: payout: %w", err)
	}
	solve := &Solve{
		ResultKey:    key,
		ID:           id.String(),
		TreasureKey:  treasureKey,
		Finder:       attrs["finder"],
		Creator:      attrs["creator"],
		PayoutUnits:  payout.Amount.Int64(),
		PayoutSymbol: payout.Symbol.Code,
	}
	if raw := attrs["minedBonus"]; raw != "" {
		mined, err := types.ParseAsset(raw)
		if err != nil {
			return nil, fmt.Errorf("scoreboard: mined bonus: %w", err)
		}
		solve.MinedUnits = mined.Amount.Int64()
	}
	if ts, err := strconv.ParseInt(attrs["timestamp"], 10, 64); err == nil {
		solve.SolvedAt = time.Unix(ts, 0).UTC()
	}
	return solve, nil
}

// Leaders returns the finders with the most solves, ties broken by payout.
func (s *Store) Leaders(ctx context.Context, limit int) ([]Leader, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []Leader
	err := s.db.WithContext(ctx).
		Model(&Solve{}).
		Select("finder, COUNT(*) AS solved, COALESCE(SUM(payout_units), 0) AS payout_units").
		Group("finder").
		Order("solved DESC, payout_units DESC, finder ASC").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Solves lists the indexed results of one treasure, newest first.
func (s *Store) Solves(ctx context.Context, treasureKey uint64) ([]Solve, error) {
	var out []Solve
	err := s.db.WithContext(ctx).
		Where("treasure_key = ?", treasureKey).
		Order("result_key DESC").
		Find(&out).Error
	return out, err
}
