package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"erp-backend/config"
	"erp-backend/logger"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

var (
	ErrNotInitialized = errors.New("database not initialized")
	ErrTenantMissing  = errors.New("tenant schema missing")
	ErrInvalidSchema  = errors.New("invalid schema name")
)

var schemaName = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// ValidSchema reports whether schema is safe to interpolate into search_path.
func ValidSchema(schema string) error {
	if !schemaName.MatchString(schema) {
		return fmt.Errorf("%w: %q", ErrInvalidSchema, schema)
	}
	return nil
}

// Connect opens the shared Postgres pool.
func Connect(cfg *config.Config) error {
	const op = "database.Connect"

	if err := cfg.ValidateDatabase(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: newGormLogger(logger.WithComponent("gorm")),
	})
	if err != nil {
		return fmt.Errorf("%s: open: %w", op, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("%s: pool: %w", op, err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	DB = db
	return nil
}

// CreateSchema creates a tenant schema if it does not exist.
func CreateSchema(schema string) error {
	if DB == nil {
		return ErrNotInitialized
	}
	if err := ValidSchema(schema); err != nil {
		return err
	}
	return DB.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error
}

// gormLogger routes gorm's SQL logging through zerolog.
type gormLogger struct {
	log           zerolog.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(l zerolog.Logger) *gormLogger {
	return &gormLogger{log: l, level: gormlogger.Warn, slowThreshold: 200 * time.Millisecond}
}

func (g *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	out := *g
	out.level = level
	return &out
}

func (g *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Info {
		g.log.Info().Msgf(msg, args...)
	}
}

func (g *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.log.Warn().Msgf(msg, args...)
	}
}

func (g *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Error {
		g.log.Error().Msgf(msg, args...)
	}
}

func (g *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= gormlogger.Error:
		sql, rows := fc()
		g.log.Error().Err(err).Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("query failed")
	case elapsed > g.slowThreshold && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.log.Warn().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("slow query")
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.log.Debug().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("query")
	}
}
