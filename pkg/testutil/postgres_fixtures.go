package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

// NewMock returns a sqlmock handle that matches queries verbatim.
func NewMock(t testing.TB) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return db, mock
}

// PostgresFixture scripts the answers of a server to the standard probe
// sequence: connectivity, stability, metadata and resource pressure.
type PostgresFixture struct {
	Database       string
	User           string
	Version        string
	Repetitions    int
	Active         int
	MaxConnections int
}

// NewPostgresFixture returns a healthy, lightly loaded server.
func NewPostgresFixture() *PostgresFixture {
	return &PostgresFixture{
		Database:       "mydb",
		User:           "u",
		Version:        "PostgreSQL 16.2 on x86_64-pc-linux-gnu, compiled by gcc",
		Repetitions:    3,
		Active:         10,
		MaxConnections: 100,
	}
}

// WithActive sets the number of rows pg_stat_activity reports.
func (f *PostgresFixture) WithActive(n int) *PostgresFixture {
	f.Active = n
	return f
}

// WithRepetitions sets how many stability round-trips are expected.
func (f *PostgresFixture) WithRepetitions(n int) *PostgresFixture {
	f.Repetitions = n
	return f
}

// Expect registers every query of a full run, in order, followed by the
// handle being closed.
func (f *PostgresFixture) Expect(mock sqlmock.Sqlmock) {
	for i := 0; i < 1+f.Repetitions; i++ {
		mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	}
	mock.ExpectQuery("SELECT current_database(), current_user, version(), now()").
		WillReturnRows(sqlmock.NewRows([]string{"current_database", "current_user", "version", "now"}).
			AddRow(f.Database, f.User, f.Version, time.Now()))
	mock.ExpectQuery("SELECT count(*) FROM pg_stat_activity").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(f.Active))
	mock.ExpectQuery("SHOW max_connections").
		WillReturnRows(sqlmock.NewRows([]string{"max_connections"}).AddRow(f.MaxConnections))
	mock.ExpectClose()
}
