package postgres

import (
	"context"
	"errors"
	"testing"

	"jobmatch/internal/config"
	"jobmatch/internal/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "unique", in: &pgconn.PgError{Code: "23505"}, want: database.ErrUniqueViolation},
		{name: "foreign key", in: &pgconn.PgError{Code: "23503"}, want: database.ErrForeignKeyViolation},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := mapError(tt.in)
			assert.True(t, errors.Is(got, tt.want))
			var pgErr *pgconn.PgError
			assert.True(t, errors.As(got, &pgErr))
		})
	}

	assert.Nil(t, mapError(nil))
	assert.True(t, errors.Is(mapError(pgx.ErrNoRows), pgx.ErrNoRows))

	other := &pgconn.PgError{Code: "42P01"}
	assert.Equal(t, error(other), mapError(other))
}

func TestDSN(t *testing.T) {
	t.Parallel()

	got := DSN(config.DatabaseConfig{
		DBHost:     " db ",
		DBPort:     "5432",
		DBUser:     "app",
		DBPassword: "secret",
		DBName:     "jobmatch",
		DBSSLMode:  "disable",
	})
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=jobmatch sslmode=disable", got)
}

func TestNilPool(t *testing.T) {
	t.Parallel()

	var p *Pool
	assert.Error(t, p.Ping(context.Background()))
	assert.NoError(t, p.Close())
	assert.Nil(t, p.SQLDB())
	assert.Error(t, p.QueryRow(context.Background(), "SELECT 1").Scan())
}
