package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-console/internal/config"
)

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN("db.internal", "3306", "console", "s3cret", "marketplace")
	assert.Equal(t, "console:s3cret@tcp(db.internal:3306)/marketplace?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true", dsn)
}

func TestPostgresDSN_DefaultsSSLMode(t *testing.T) {
	assert.Equal(t,
		"host=pg port=5432 user=u password=p dbname=d sslmode=disable",
		PostgresDSN("pg", "5432", "u", "p", "d", ""))
	assert.Contains(t, PostgresDSN("pg", "5432", "u", "p", "d", "require"), "sslmode=require")
}

func TestResolveType(t *testing.T) {
	t.Setenv("DB_TYPE", "")
	assert.Equal(t, TypeMySQL, ResolveType(config.DatabaseConfig{}))

	t.Setenv("DB_TYPE", TypePostgres)
	assert.Equal(t, TypePostgres, ResolveType(config.DatabaseConfig{}))
	assert.Equal(t, TypeMemory, ResolveType(config.DatabaseConfig{Type: TypeMemory}))
}

func TestOpen_RejectsNonSQLTypes(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Type: TypeMemory})
	require.Error(t, err)

	_, err = Open(config.DatabaseConfig{Type: "sqlite"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestGetEnvOrConfig(t *testing.T) {
	t.Setenv("DB_HOST", "from-env")
	assert.Equal(t, "from-config", getEnvOrConfig("from-config", "DB_HOST", "default"))
	assert.Equal(t, "from-env", getEnvOrConfig("", "DB_HOST", "default"))
	assert.Equal(t, "default", getEnvOrConfig("", "DB_UNSET_FOR_TEST", "default"))
	assert.Equal(t, "", portString(0))
	assert.Equal(t, "3307", portString(3307))
}
