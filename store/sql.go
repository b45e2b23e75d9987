package store

import (
	"database/sql"
	"errors"

	_ "github.com/lib/pq"
)

// migrationSQL creates the single kv table the SQL driver needs.
const migrationSQL = `
CREATE TABLE IF NOT EXISTS storefront_kv (
	key   TEXT PRIMARY KEY,
	value BYTEA NOT NULL
)`

// SQLStore is a Store backed by Postgres, for back-office deployments
// where several operator machines share one state database.
type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(dsn string) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	s := &SQLStore{DB: db}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate applies the kv schema. Safe to call repeatedly.
func (s *SQLStore) Migrate() error {
	_, err := s.DB.Exec(migrationSQL)
	return err
}

func (s *SQLStore) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.DB.QueryRow(`SELECT value FROM storefront_kv WHERE key=$1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *SQLStore) Set(key string, value []byte) error {
	_, err := s.DB.Exec(`
		INSERT INTO storefront_kv (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	return err
}

func (s *SQLStore) Delete(key string) error {
	_, err := s.DB.Exec(`DELETE FROM storefront_kv WHERE key=$1`, key)
	return err
}

func (s *SQLStore) Close() error { return s.DB.Close() }
