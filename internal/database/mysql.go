package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"marketplace-console/internal/logging"
	"marketplace-console/internal/models"
)

// GormDB wraps the gorm handle shared by every table
type GormDB struct {
	db   *gorm.DB
	kind string
}

// MySQLDSN builds the driver DSN. clientFoundRows makes an update that
// changes nothing still report the matched row.
func MySQLDSN(host, port, user, password, dbname string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true",
		user, password, host, port, dbname)
}

// NewGormDB connects to MySQL
func NewGormDB(host, port, user, password, dbname string) (*GormDB, error) {
	db, err := gorm.Open(mysql.Open(MySQLDSN(host, port, user, password, dbname)), gormConfig())
	if err != nil {
		return nil, err
	}

	gdb := &GormDB{db: db, kind: TypeMySQL}
	if err := gdb.ping(); err != nil {
		return nil, err
	}
	return gdb, nil
}

// NewGormDBFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db, kind: db.Dialector.Name()}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(logging.Logger, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	}
}

func (gdb *GormDB) ping() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

// Type returns the dialect name
func (gdb *GormDB) Type() string {
	return gdb.kind
}

// SQL returns the pooled connection
func (gdb *GormDB) SQL() (*sql.DB, error) {
	return gdb.db.DB()
}

// PingContext checks connectivity for diagnostics
func (gdb *GormDB) PingContext(ctx context.Context) error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	if err := gdb.db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	logging.Logger.Infof("Database: schema migrated (%s, %d models)", gdb.kind, len(models.All()))
	return nil
}
