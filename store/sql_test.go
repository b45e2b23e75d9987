package store

import (
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSQLStoreGet_FoundAndMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	s := &SQLStore{DB: db}

	rows := sqlmock.NewRows([]string{"value"}).AddRow([]byte(`"tok"`))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM storefront_kv WHERE key=$1`)).
		WithArgs(KeyUserToken).
		WillReturnRows(rows)

	value, ok, err := s.Get(KeyUserToken)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || string(value) != `"tok"` {
		t.Fatalf("unexpected value: ok=%v value=%q", ok, value)
	}

	// missing key -> ok=false, no error
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM storefront_kv WHERE key=$1`)).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, ok, err = s.Get("nope")
	if err != nil {
		t.Fatalf("expected no error for missing key, got %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for missing key")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLStoreSet_Upsert(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &SQLStore{DB: db}

	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO storefront_kv (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`)).
		WithArgs(KeyCart, []byte(`[]`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.Set(KeyCart, []byte(`[]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLStoreDelete(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &SQLStore{DB: db}

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM storefront_kv WHERE key=$1`)).
		WithArgs(KeyAdminToken).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Delete(KeyAdminToken); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLStoreMigrate(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &SQLStore{DB: db}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS storefront_kv").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
