package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ValentinKolb/dSEQ/lib/db"
	"github.com/ValentinKolb/dSEQ/lib/store"

	_ "modernc.org/sqlite"
)

const counterSchema = `
CREATE TABLE IF NOT EXISTS counters (
	key   TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);`

type storeImpl struct {
	db *sql.DB
}

// busyTimeout is applied as a connection pragma so concurrent writers
// wait for the write lock instead of failing with SQLITE_BUSY.
const busyTimeout = "_pragma=busy_timeout(10000)"

// NewSQLStore opens (or creates) a SQLite-backed counter store at the given DSN.
// Unlike lstore, counters survive process restarts. The store is single-node;
// concurrent writers are serialized by limiting the pool to one connection
// and by the busy timeout pragma.
func NewSQLStore(dsn string) (store.ICounterStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, store.NewError(store.RetCInvalidOperation, "sqlstore: dsn is required")
	}

	if strings.Contains(dsn, "?") {
		dsn += "&" + busyTimeout
	} else {
		dsn += "?" + busyTimeout
	}

	rawDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("sqlstore: open: %v", err))
	}

	// SQLite allows only one writer at a time, a larger pool would only
	// contend for the write lock
	rawDB.SetMaxOpenConns(1)

	// WAL allows readers to proceed while a write is in flight
	if _, err := rawDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = rawDB.Close()
		return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("sqlstore: set WAL mode: %v", err))
	}

	if _, err := rawDB.Exec(counterSchema); err != nil {
		_ = rawDB.Close()
		return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("sqlstore: create schema: %v", err))
	}

	return &storeImpl{db: rawDB}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Upsert(key string, value int64) error {
	_, err := s.db.Exec(`
INSERT INTO counters (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return store.NewError(store.RetCInternalError, fmt.Sprintf("sqlstore: upsert: %v", err))
	}
	return nil
}

func (s *storeImpl) UpsertIfAbsent(key string, value int64) error {
	_, err := s.db.Exec(`
INSERT INTO counters (key, value) VALUES (?, ?)
ON CONFLICT(key) DO NOTHING`, key, value)
	if err != nil {
		return store.NewError(store.RetCInternalError, fmt.Sprintf("sqlstore: upsert if absent: %v", err))
	}
	return nil
}

func (s *storeImpl) IncrementAndGet(key string, delta int64) (int64, bool, error) {
	// A single UPDATE ... RETURNING is atomic; no counter is created for a missing key
	var value int64
	err := s.db.QueryRow(`
UPDATE counters SET value = value + ? WHERE key = ? RETURNING value`, delta, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, store.NewError(store.RetCInternalError, fmt.Sprintf("sqlstore: increment: %v", err))
	}
	return value, true, nil
}

func (s *storeImpl) Find(key string) (int64, bool, error) {
	var value int64
	err := s.db.QueryRow(`SELECT value FROM counters WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, store.NewError(store.RetCInternalError, fmt.Sprintf("sqlstore: find: %v", err))
	}
	return value, true, nil
}

func (s *storeImpl) Has(key string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM counters WHERE key = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, store.NewError(store.RetCInternalError, fmt.Sprintf("sqlstore: has: %v", err))
	}
	return true, nil
}

func (s *storeImpl) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM counters WHERE key = ?`, key); err != nil {
		return store.NewError(store.RetCInternalError, fmt.Sprintf("sqlstore: delete: %v", err))
	}
	return nil
}

func (s *storeImpl) GetDBInfo() (db.DatabaseInfo, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM counters`).Scan(&count); err != nil {
		return db.DatabaseInfo{}, store.NewError(store.RetCInternalError, fmt.Sprintf("sqlstore: info: %v", err))
	}

	return db.DatabaseInfo{
		Counters: count,
		DbType:   db.ImplSQLite,
		SupportedFeatures: []db.Feature{
			db.FeaturePut,
			db.FeaturePutIfAbsent,
			db.FeatureIncrement,
			db.FeatureGet,
			db.FeatureHas,
			db.FeatureDelete,
		},
	}, nil
}
