package google

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultAccount is the row key used when a single credential is cached.
const DefaultAccount = "default"

const createTokensTable = `CREATE TABLE IF NOT EXISTS tokens (
	account_name TEXT PRIMARY KEY,
	token BLOB NOT NULL
)`

// SQLiteStore keeps credentials in a tokens table, one row per account.
type SQLiteStore struct {
	db      *sql.DB
	account string
}

// sqliteHeader starts every non-empty SQLite database file.
const sqliteHeader = "SQLite format 3\x00"

// ErrNotSQLiteDatabase reports a token path that holds something else, such
// as a JSON credential cache.
var ErrNotSQLiteDatabase = errors.New("not a SQLite database")

// OpenSQLiteStore opens (creating if needed) the database at path and
// returns a store for account.
func OpenSQLiteStore(ctx context.Context, path, account string) (*SQLiteStore, error) {
	if err := checkSQLiteFile(path); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create token database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open token database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTokensTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize token database: %w", err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to restrict token database permissions: %w", err)
	}

	if account == "" {
		account = DefaultAccount
	}
	return &SQLiteStore{db: db, account: account}, nil
}

// checkSQLiteFile accepts a missing or empty file, or one with the SQLite
// header.
func checkSQLiteFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open token database: %w", err)
	}
	defer func() { _ = f.Close() }()

	header := make([]byte, len(sqliteHeader))
	n, err := io.ReadFull(f, header)
	if n == 0 && errors.Is(err, io.EOF) {
		return nil
	}
	if string(header[:n]) != sqliteHeader {
		return fmt.Errorf("%s is %w; use --token-store=file or point --token at a .db file", path, ErrNotSQLiteDatabase)
	}
	return nil
}

// Get returns the blob stored for the account.
func (s *SQLiteStore) Get(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT token FROM tokens WHERE account_name = ?", s.account).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w for account %s", ErrNoCachedCredential, s.account)
		}
		return nil, fmt.Errorf("failed to read token from database: %w", err)
	}
	return data, nil
}

// Put replaces the blob stored for the account.
func (s *SQLiteStore) Put(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, "INSERT OR REPLACE INTO tokens (account_name, token) VALUES (?, ?)", s.account, data)
	if err != nil {
		return fmt.Errorf("failed to save token to database: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
