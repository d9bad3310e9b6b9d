package database

import (
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	"github.com/r56149203/EduSphere/config"
	"github.com/r56149203/EduSphere/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage defines the interface that all database implementations must satisfy
type Storage interface {
	// Lifecycle methods
	Init() error
	Close() error
	HealthCheck() error

	// GORM DB access
	GetDB() *gorm.DB
}

type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore wraps an already opened connection
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

// StartGORM opens the relational store selected by DB_DRIVER
func StartGORM(env *config.EnviornmentVariable) (*GORMStore, error) {
	// Configure GORM logger
	gormLogger := logger.Default.LogMode(logger.Info)
	if env.IsProduction() {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	gormConfig := &gorm.Config{
		Logger:         gormLogger,
		PrepareStmt:    true, // Prepare statements for better performance
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch env.DB_DRIVER {
	case "sqlite":
		dialector = sqlite.Open(SQLiteDSN(env.DB_NAME))
	case "pq":
		// lib/pq through database/sql instead of the bundled pgx driver
		dialector = postgres.New(postgres.Config{
			DriverName: "postgres",
			DSN:        postgresDSN(env),
		})
	default:
		dialector = postgres.Open(postgresDSN(env))
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		log.Println("Unable to connect to the database with GORM:", err)
		return nil, err
	}

	// Get underlying *sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Printf("Successfully connected to %s database with GORM.", env.DB_DRIVER)

	return &GORMStore{db: db}, nil
}

// SQLiteDSN builds a file DSN with a busy timeout so concurrent requests wait instead of failing
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_busy_timeout=5000", path)
}

func postgresDSN(env *config.EnviornmentVariable) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		env.DB_HOST,
		env.DB_USER_NAME,
		env.DB_PASSWORD,
		env.DB_NAME,
		env.DB_PORT,
		env.DB_SSL_MODE,
	)
}

// Init runs the AutoMigrate to create/update tables
func (s *GORMStore) Init() error {
	log.Println("Running GORM AutoMigrate for all models...")

	if err := s.db.AutoMigrate(model.All()...); err != nil {
		log.Println("Error running AutoMigrate:", err)
		return err
	}

	log.Println("GORM AutoMigrate completed successfully!")
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	log.Println("Closing GORM database connection...")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the GORM DB instance for use in services/handlers
func (s *GORMStore) GetDB() *gorm.DB {
	return s.db
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
