package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/readswap/readswap/internal/config"
	"github.com/readswap/readswap/internal/repository"
)

// Same shape as scripts/schema.sql, in sqlite dialect.  The production
// queries are written portably, so the handlers run against this
// database exactly as they would against MySQL.
const testSchema = `
CREATE TABLE users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    email         TEXT      NOT NULL UNIQUE,
    password_hash TEXT      NOT NULL,
    role          TEXT      NOT NULL,
    is_active     BOOLEAN   NOT NULL DEFAULT 1,
    created_at    TIMESTAMP NOT NULL,
    updated_at    TIMESTAMP NOT NULL
);
CREATE TABLE refresh_tokens (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id    INTEGER   NOT NULL,
    token_hash TEXT      NOT NULL UNIQUE,
    expires_at TIMESTAMP NOT NULL,
    revoked_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE books (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    owner_id     INTEGER   NOT NULL,
    title        TEXT      NOT NULL,
    author       TEXT      NOT NULL,
    genre        TEXT      NOT NULL,
    cond         TEXT      NOT NULL,
    description  TEXT      NOT NULL,
    price_cents  INTEGER,
    is_available BOOLEAN   NOT NULL,
    cover_url    TEXT,
    cover_key    TEXT,
    created_at   TIMESTAMP NOT NULL,
    updated_at   TIMESTAMP NOT NULL
);
CREATE TABLE loans (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    book_id          INTEGER   NOT NULL,
    lender_id        INTEGER   NOT NULL,
    borrower_id      INTEGER   NOT NULL,
    borrower_email   TEXT      NOT NULL,
    book_title       TEXT      NOT NULL,
    book_author      TEXT      NOT NULL,
    book_cover       TEXT,
    book_description TEXT      NOT NULL,
    days_left        INTEGER   NOT NULL,
    status           TEXT      NOT NULL,
    created_at       TIMESTAMP NOT NULL,
    updated_at       TIMESTAMP NOT NULL
);
`

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

type testEnv struct {
	echo  *echo.Echo
	books *BookHandler
	loans *LoanHandler
	auth  *AuthHandler
	repoB *repository.BookRepo
	repoL *repository.LoanRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	repoB := repository.NewBookRepo(db)
	repoL := repository.NewLoanRepo(db)
	log := zerolog.Nop()
	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     bcrypt.MinCost,
	}
	return &testEnv{
		echo:  echo.New(),
		books: NewBookHandler(repoB),
		loans: NewLoanHandler(repoL, repoB, &log),
		auth:  NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)),
		repoB: repoB,
		repoL: repoL,
	}
}

// request builds an echo.Context the way the JWT middleware would have:
// the "sub" claim lands in the context as a float64.
func (e *testEnv) request(method, target, body string, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.echo.NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", float64(userID))
	}
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

// createBook runs the create handler for owner and returns the new id.
func (e *testEnv) createBook(t *testing.T, owner uint64, title string) uint64 {
	t.Helper()
	body := `{"title":"` + title + `","author":"Herbert","genre":"Fiction","condition":"Good","description":"desert planet"}`
	c, rec := e.request(http.MethodPost, "/v1/books", body, owner)
	require.NoError(t, e.books.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	book := decodeBody(t, rec)["book"].(map[string]any)
	return uint64(book["id"].(float64))
}

// createLoan submits a borrow request for the book and returns the loan id.
func (e *testEnv) createLoan(t *testing.T, borrower, bookID uint64) uint64 {
	t.Helper()
	body := `{"book_id":` + jsonUint(bookID) + `,"borrower_email":"b@x.com"}`
	c, rec := e.request(http.MethodPost, "/v1/loans", body, borrower)
	require.NoError(t, e.loans.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	loan := decodeBody(t, rec)["loan"].(map[string]any)
	return uint64(loan["id"].(float64))
}

// act hits one of the :id transition endpoints as the given user.
func (e *testEnv) act(t *testing.T, h echo.HandlerFunc, loanID, userID uint64) *httptest.ResponseRecorder {
	t.Helper()
	c, rec := e.request(http.MethodPost, "/", "", userID)
	c.SetParamNames("id")
	c.SetParamValues(jsonUint(loanID))
	require.NoError(t, h(c))
	return rec
}

func jsonUint(n uint64) string {
	return strconv.FormatUint(n, 10)
}
