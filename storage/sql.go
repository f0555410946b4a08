// Package storage persists polling markers in a SQL database with gorm.
package storage

import (
	"context"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	null "gopkg.in/guregu/null.v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jfk9w/maxbot/internal/logx"
)

type SQLStorage gorm.DB

// Open connects to the database.
// Driver postgres uses github.com/lib/pq, pgx uses github.com/jackc/pgx.
func Open(driver, dsn string) (*SQLStorage, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.New(postgres.Config{DriverName: "postgres", DSN: dsn})
	case "pgx":
		dialector = postgres.Open(dsn)
	case "sqlite3":
		dialector = sqlite.Open(dsn)
	default:
		return nil, errors.Errorf("unsupported driver %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: NewLogger(logx.Get("storage"))})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", driver)
	}

	return (*SQLStorage)(db), nil
}

func (s *SQLStorage) Unmask() *gorm.DB {
	return (*gorm.DB)(s)
}

func (s *SQLStorage) Init(ctx context.Context) error {
	return s.Unmask().WithContext(ctx).AutoMigrate(new(Marker))
}

func (s *SQLStorage) Close() error {
	db, err := s.Unmask().DB()
	if err != nil {
		return err
	}

	return db.Close()
}

// Markers returns the marker store of the bot.
func (s *SQLStorage) Markers(botID string) *SQLMarkers {
	return &SQLMarkers{storage: s, botID: botID}
}

// SQLMarkers keeps the polling marker of a single bot.
type SQLMarkers struct {
	storage *SQLStorage
	botID   string
}

func (m *SQLMarkers) Load(ctx context.Context) (*int64, error) {
	var marker Marker
	err := m.storage.Unmask().WithContext(ctx).
		Where("bot_id = ?", m.botID).
		Take(&marker).
		Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, errors.Wrapf(err, "load marker of %s", m.botID)
	case !marker.Value.Valid:
		return nil, nil
	}

	value := marker.Value.Int64
	return &value, nil
}

func (m *SQLMarkers) Save(ctx context.Context, value int64) error {
	return m.save(ctx, null.IntFrom(value))
}

// Reset forgets the marker so polling restarts from the current tail.
func (m *SQLMarkers) Reset(ctx context.Context) error {
	return m.save(ctx, null.Int{})
}

func (m *SQLMarkers) save(ctx context.Context, value null.Int) error {
	marker := &Marker{
		BotID:     m.botID,
		Value:     value,
		UpdatedAt: time.Now(),
	}

	err := m.storage.Unmask().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "bot_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(marker).
		Error
	return errors.Wrapf(err, "save marker of %s", m.botID)
}
