package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
)

// fakeStore is an in-memory stand-in for ClickHouse that counts committed rows.
type fakeStore struct {
	mu       sync.Mutex
	failing  bool
	inserted int
	batches  []int
}

func openFakeDB(store *fakeStore) *sql.DB {
	return sql.OpenDB(fakeConnector{store: store})
}

func (s *fakeStore) counts() (int, []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserted, append([]int(nil), s.batches...)
}

type fakeConnector struct{ store *fakeStore }

func (c fakeConnector) Connect(context.Context) (driver.Conn, error) {
	return &fakeConn{store: c.store}, nil
}

func (c fakeConnector) Driver() driver.Driver { return fakeDriver{store: c.store} }

type fakeDriver struct{ store *fakeStore }

func (d fakeDriver) Open(string) (driver.Conn, error) { return &fakeConn{store: d.store}, nil }

type fakeConn struct {
	store   *fakeStore
	pending int
}

func (c *fakeConn) Prepare(string) (driver.Stmt, error) { return &fakeStmt{conn: c}, nil }

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) Begin() (driver.Tx, error) {
	c.pending = 0
	return &fakeTx{conn: c}, nil
}

// CheckNamedValue accepts every argument type the entity produces.
func (c *fakeConn) CheckNamedValue(*driver.NamedValue) error { return nil }

type fakeStmt struct{ conn *fakeConn }

func (s *fakeStmt) Close() error  { return nil }
func (s *fakeStmt) NumInput() int { return -1 }

func (s *fakeStmt) Exec([]driver.Value) (driver.Result, error) {
	s.conn.pending++
	return driver.RowsAffected(1), nil
}

func (s *fakeStmt) Query([]driver.Value) (driver.Rows, error) {
	return nil, errors.New("query not supported")
}

type fakeTx struct{ conn *fakeConn }

func (tx *fakeTx) Commit() error {
	s := tx.conn.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errors.New("clickhouse unavailable")
	}
	s.inserted += tx.conn.pending
	s.batches = append(s.batches, tx.conn.pending)
	tx.conn.pending = 0
	return nil
}

func (tx *fakeTx) Rollback() error {
	tx.conn.pending = 0
	return nil
}
