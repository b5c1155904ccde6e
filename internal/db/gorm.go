package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/soundbridge-backend/internal/logger"
	"github.com/yungbote/soundbridge-backend/internal/types"
	"github.com/yungbote/soundbridge-backend/internal/utils"
)

type GormService struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewGormService opens the database selected by DB_DRIVER: "postgres"
// (default) or "sqlite" for local development and clinics running the engine
// on a single machine.
func NewGormService(log *logger.Logger) (*GormService, error) {
	serviceLog := log.With("service", "GormService")

	log.Info("Loading environment variables...")
	driver := utils.GetEnv("DB_DRIVER", "postgres", log)

	var (
		conn *gorm.DB
		err  error
	)
	switch driver {
	case "sqlite":
		path := utils.GetEnv("SQLITE_PATH", "soundbridge.db", log)
		log.Info("Opening SQLite database...", "path", path)
		conn, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	case "postgres":
		postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
		postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
		postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
		postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
		postgresName := utils.GetEnv("POSTGRES_NAME", "soundbridge", log)
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)
		log.Info("Connecting to Postgres...")
		conn, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
		})
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
	if err != nil {
		log.Error("Failed to connect to database", "driver", driver, "error", err)
		return nil, fmt.Errorf("Failed to connect to %s: %w", driver, err)
	}

	if driver == "postgres" {
		if err := conn.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
			log.Error("Failed to enable uuid-ossp extension", "error", err)
			return nil, fmt.Errorf("Failed to enable uuid-ossp extension: %w", err)
		}
		log.Info("uuid-ossp extension enabled")
	}

	return &GormService{db: conn, log: serviceLog}, nil
}

func (s *GormService) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.AttemptRecord{},
		&types.LearningProfile{},
		&types.SkillMemoryState{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *GormService) DB() *gorm.DB {
	return s.db
}
