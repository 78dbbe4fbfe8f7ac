// Package statsservice stores endpoint hits and aggregates them into view
// counts. Storage goes through gorm: SQLite for development and tests,
// PostgreSQL in production.
package statsservice

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/config"
)

// Hit is one stored endpoint hit. HitAt is kept in UTC.
type Hit struct {
	ID    int64     `gorm:"primaryKey;autoIncrement"`
	App   string    `gorm:"type:varchar(255);not null"`
	URI   string    `gorm:"column:uri;type:varchar(512);not null;index:idx_hits_uri_time,priority:1"`
	IP    string    `gorm:"column:ip;type:varchar(64);not null"`
	HitAt time.Time `gorm:"column:hit_at;not null;index:idx_hits_uri_time,priority:2"`
}

// TableName pins the table name.
func (Hit) TableName() string {
	return "endpoint_hits"
}

// Open connects to the stats database selected by cfg.Driver and migrates
// the schema.
func Open(cfg config.StatsConfig, log logrus.FieldLogger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported stats driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect stats database: %w", err)
	}

	if cfg.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		// One connection keeps an in-memory database alive and avoids
		// SQLITE_BUSY on writes.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&Hit{}); err != nil {
		return nil, fmt.Errorf("failed to migrate stats schema: %w", err)
	}
	return db, nil
}

// Store persists hits.
type Store struct {
	db *gorm.DB
}

// NewStore wraps db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Save inserts h and fills its ID.
func (s *Store) Save(ctx context.Context, h *Hit) error {
	return s.db.WithContext(ctx).Create(h).Error
}

// Row is one aggregated (app, uri) count.
type Row struct {
	App  string
	URI  string `gorm:"column:uri"`
	Hits int64
}

// Aggregate counts hits per (app, uri) with start <= hit_at <= end, most
// viewed first. A non-empty uris restricts the result; unique counts
// distinct ips.
func (s *Store) Aggregate(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]Row, error) {
	count := "COUNT(*)"
	if unique {
		count = "COUNT(DISTINCT ip)"
	}

	q := s.db.WithContext(ctx).Model(&Hit{}).
		Select("app, uri, "+count+" AS hits").
		Where("hit_at >= ? AND hit_at <= ?", start.UTC(), end.UTC())
	if len(uris) > 0 {
		q = q.Where("uri IN ?", uris)
	}

	var rows []Row
	err := q.Group("app, uri").Order("hits DESC").Order("uri").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate hits: %w", err)
	}
	return rows, nil
}
