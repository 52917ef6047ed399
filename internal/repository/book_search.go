package repository

import (
    "context"
    "strings"

    "github.com/readswap/readswap/internal/model"
)

// BookSearchQuery defines filters & pagination for searching the catalog.
type BookSearchQuery struct {
    Text      string // matches title or author, case-insensitive substring
    Genre     string // exact genre filter
    Available *bool  // availability filter, nil = any
    Page      int
    PageSize  int
}

// Search returns catalog listings matching the query plus the total
// match count for pagination.  Page numbers are 1-based; out-of-range
// pages yield an empty slice with the correct total.
func (r *BookRepo) Search(ctx context.Context, q BookSearchQuery) ([]model.Book, int64, error) {
    where := []string{}
    args := []any{}

    if q.Text != "" {
        needle := "%" + strings.ToLower(q.Text) + "%"
        where = append(where, "(LOWER(title) LIKE ? OR LOWER(author) LIKE ?)")
        args = append(args, needle, needle)
    }
    if q.Genre != "" {
        where = append(where, "genre = ?")
        args = append(args, q.Genre)
    }
    if q.Available != nil {
        where = append(where, "is_available = ?")
        args = append(args, *q.Available)
    }

    cond := "1=1"
    if len(where) > 0 {
        cond = strings.Join(where, " AND ")
    }

    var total int64
    countSQL := `SELECT COUNT(*) FROM books WHERE ` + cond
    if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
        return nil, 0, err
    }

    if q.Page < 1 {
        q.Page = 1
    }
    if q.PageSize < 1 || q.PageSize > 100 {
        q.PageSize = 20
    }
    limit := q.PageSize
    offset := (q.Page - 1) * q.PageSize

    dataSQL := `SELECT ` + bookColumns + ` FROM books
        WHERE ` + cond + `
        ORDER BY created_at DESC, id DESC
        LIMIT ? OFFSET ?`
    argsData := append(append([]any{}, args...), limit, offset)

    rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()

    out := make([]model.Book, 0, limit)
    for rows.Next() {
        b, err := scanBook(rows)
        if err != nil {
            return nil, 0, err
        }
        out = append(out, b)
    }
    if err := rows.Err(); err != nil {
        return nil, 0, err
    }
    return out, total, nil
}
