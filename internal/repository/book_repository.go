package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/readswap/readswap/internal/model"
)

// BookRepo provides persistence for catalog listings.  All timestamps
// are written by the application in UTC rather than relying on column
// defaults, so the same queries run against MySQL in production and
// sqlite in tests.
type BookRepo struct {
    db *sql.DB
}

// NewBookRepo returns a new BookRepo bound to the given database.
func NewBookRepo(db *sql.DB) *BookRepo { return &BookRepo{db: db} }

// DB exposes the underlying handle so handlers can begin transactions
// that span book and loan updates.
func (r *BookRepo) DB() *sql.DB { return r.db }

const bookColumns = `id, owner_id, title, author, genre, cond, description,
    price_cents, is_available, cover_url, cover_key, created_at, updated_at`

// Create validates required fields and inserts a new listing.  The
// availability flag always starts true and the generated id plus
// timestamps are populated on the passed record.  Missing title,
// author or owner, or a genre/condition outside the enumerated sets,
// fail with ErrValidation before any store access.
func (r *BookRepo) Create(ctx context.Context, b *model.Book) error {
    b.Title = strings.TrimSpace(b.Title)
    b.Author = strings.TrimSpace(b.Author)
    if b.Title == "" || b.Author == "" || b.OwnerID == 0 {
        return ErrValidation
    }
    if !model.ValidGenre(b.Genre) || !model.ValidCondition(b.Condition) {
        return ErrValidation
    }
    now := time.Now().UTC().Truncate(time.Second)
    b.IsAvailable = true
    b.CreatedAt = now
    b.UpdatedAt = now
    const q = `INSERT INTO books
        (owner_id, title, author, genre, cond, description, price_cents,
         is_available, cover_url, cover_key, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q,
        b.OwnerID, b.Title, b.Author, b.Genre, b.Condition, b.Description,
        nullableUint32(b.PriceCents), b.IsAvailable, nullableString(b.CoverURL),
        nullableString(b.CoverKey), b.CreatedAt, b.UpdatedAt)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    return nil
}

// List returns every listing, newest first.  An empty catalog yields
// an empty slice, never an error.
func (r *BookRepo) List(ctx context.Context) ([]model.Book, error) {
    const q = `SELECT ` + bookColumns + ` FROM books ORDER BY created_at DESC, id DESC`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    books := make([]model.Book, 0)
    for rows.Next() {
        b, err := scanBook(rows)
        if err != nil {
            return nil, err
        }
        books = append(books, b)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return books, nil
}

// GetByID returns a single listing or ErrBookNotFound.
func (r *BookRepo) GetByID(ctx context.Context, id uint64) (*model.Book, error) {
    const q = `SELECT ` + bookColumns + ` FROM books WHERE id = ?`
    b, err := scanBook(r.db.QueryRowContext(ctx, q, id))
    if err == sql.ErrNoRows {
        return nil, ErrBookNotFound
    }
    if err != nil {
        return nil, err
    }
    return &b, nil
}

// UpdateBookParams carries the optional fields an owner may change on
// a listing.  Nil pointers leave the column untouched.
type UpdateBookParams struct {
    Description *string
    Condition   *string
    PriceCents  *uint32
    ClearPrice  bool
    CoverURL    *string
    CoverKey    *string
}

// Update applies a partial edit to a listing after verifying that the
// caller owns it.  It returns ErrBookNotFound when the id is unknown
// and ErrForbidden when the caller is not the owner.  An update with
// no fields set is a no-op.
func (r *BookRepo) Update(ctx context.Context, id, callerID uint64, p UpdateBookParams) error {
    var ownerID uint64
    err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM books WHERE id = ?`, id).Scan(&ownerID)
    if err == sql.ErrNoRows {
        return ErrBookNotFound
    }
    if err != nil {
        return err
    }
    if ownerID != callerID {
        return ErrForbidden
    }

    set := []string{}
    args := []any{}
    if p.Description != nil {
        set = append(set, "description = ?")
        args = append(args, *p.Description)
    }
    if p.Condition != nil {
        if !model.ValidCondition(*p.Condition) {
            return ErrValidation
        }
        set = append(set, "cond = ?")
        args = append(args, *p.Condition)
    }
    if p.ClearPrice {
        set = append(set, "price_cents = NULL")
    } else if p.PriceCents != nil {
        set = append(set, "price_cents = ?")
        args = append(args, *p.PriceCents)
    }
    if p.CoverURL != nil {
        set = append(set, "cover_url = ?")
        args = append(args, *p.CoverURL)
    }
    if p.CoverKey != nil {
        set = append(set, "cover_key = ?")
        args = append(args, *p.CoverKey)
    }
    if len(set) == 0 {
        return nil
    }
    set = append(set, "updated_at = ?")
    args = append(args, time.Now().UTC().Truncate(time.Second), id)
    q := `UPDATE books SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
    _, err = r.db.ExecContext(ctx, q, args...)
    return err
}

// SetAvailabilityTx flips the availability flag with an optimistic
// precondition inside an existing transaction.  When the current flag
// no longer matches `from` (a concurrent approval won), ErrConflict is
// returned and the caller must roll back.
func (r *BookRepo) SetAvailabilityTx(ctx context.Context, tx *sql.Tx, bookID uint64, from, to bool) error {
    const q = `UPDATE books SET is_available = ?, updated_at = ? WHERE id = ? AND is_available = ?`
    res, err := tx.ExecContext(ctx, q, to, time.Now().UTC().Truncate(time.Second), bookID, from)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrConflict
    }
    return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning.
type scanner interface{ Scan(dest ...any) error }

func scanBook(s scanner) (model.Book, error) {
    var (
        b        model.Book
        price    sql.NullInt64
        coverURL sql.NullString
        coverKey sql.NullString
    )
    err := s.Scan(&b.ID, &b.OwnerID, &b.Title, &b.Author, &b.Genre, &b.Condition,
        &b.Description, &price, &b.IsAvailable, &coverURL, &coverKey,
        &b.CreatedAt, &b.UpdatedAt)
    if err != nil {
        return model.Book{}, err
    }
    if price.Valid {
        p := uint32(price.Int64)
        b.PriceCents = &p
    }
    if coverURL.Valid {
        v := coverURL.String
        b.CoverURL = &v
    }
    if coverKey.Valid {
        v := coverKey.String
        b.CoverKey = &v
    }
    return b, nil
}

func nullableUint32(v *uint32) any {
    if v == nil {
        return nil
    }
    return int64(*v)
}

func nullableString(v *string) any {
    if v == nil {
        return nil
    }
    return *v
}
