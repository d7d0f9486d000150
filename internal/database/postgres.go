package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PostgresDSN builds a lib/pq connection string
func PostgresDSN(host, port, user, password, dbname, sslmode string) string {
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
}

// NewPostgresDB connects through lib/pq and hands the pool to gorm
func NewPostgresDB(host, port, user, password, dbname, sslmode string) (*GormDB, error) {
	conn, err := sql.Open("postgres", PostgresDSN(host, port, user, password, dbname, sslmode))
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), gormConfig())
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &GormDB{db: db, kind: TypePostgres}, nil
}
