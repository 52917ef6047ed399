package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/readswap/readswap/internal/model"
)

// LoanRepo persists borrow requests and drives their status
// transitions.  A loan row embeds a snapshot of the book taken at
// request time; the catalog row may change afterwards without
// rewriting history.
type LoanRepo struct {
    db *sql.DB
}

// NewLoanRepo returns a new LoanRepo bound to the given database.
func NewLoanRepo(db *sql.DB) *LoanRepo { return &LoanRepo{db: db} }

// DB exposes the underlying handle for handler-scoped transactions.
func (r *LoanRepo) DB() *sql.DB { return r.db }

const loanColumns = `id, book_id, lender_id, borrower_id, borrower_email,
    book_title, book_author, book_cover, book_description, days_left,
    status, created_at, updated_at`

// Create validates and inserts a new borrow request.  Lender, borrower
// and borrower email must be present and lender and borrower must be
// distinct identities.  DaysLeft defaults to model.DefaultLoanDays when
// zero.  The status always starts at REQUESTED and the generated id
// plus timestamps are populated on the passed record.
func (r *LoanRepo) Create(ctx context.Context, l *model.Loan) error {
    l.BorrowerEmail = strings.TrimSpace(l.BorrowerEmail)
    if l.BookID == 0 || l.LenderID == 0 || l.BorrowerID == 0 || l.BorrowerEmail == "" {
        return ErrValidation
    }
    if l.LenderID == l.BorrowerID {
        return ErrValidation
    }
    if l.DaysLeft == 0 {
        l.DaysLeft = model.DefaultLoanDays
    }
    now := time.Now().UTC().Truncate(time.Second)
    l.Status = model.LoanRequested
    l.CreatedAt = now
    l.UpdatedAt = now
    const q = `INSERT INTO loans
        (book_id, lender_id, borrower_id, borrower_email, book_title,
         book_author, book_cover, book_description, days_left, status,
         created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q,
        l.BookID, l.LenderID, l.BorrowerID, l.BorrowerEmail, l.BookTitle,
        l.BookAuthor, nullableString(l.BookCover), l.BookDescription,
        l.DaysLeft, l.Status, l.CreatedAt, l.UpdatedAt)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    l.ID = uint64(id)
    return nil
}

// GetByID returns a single loan or ErrLoanNotFound.
func (r *LoanRepo) GetByID(ctx context.Context, id uint64) (*model.Loan, error) {
    const q = `SELECT ` + loanColumns + ` FROM loans WHERE id = ?`
    l, err := scanLoan(r.db.QueryRowContext(ctx, q, id))
    if err == sql.ErrNoRows {
        return nil, ErrLoanNotFound
    }
    if err != nil {
        return nil, err
    }
    return &l, nil
}

// ListByLender returns every loan whose lender matches, newest first.
// A non-empty status narrows the result; the approved-books view
// passes model.LoanApproved here.  A zero lender id fails with
// ErrValidation regardless of store state.
func (r *LoanRepo) ListByLender(ctx context.Context, lenderID uint64, status string) ([]model.Loan, error) {
    if lenderID == 0 {
        return nil, ErrValidation
    }
    if status != "" && !model.ValidStatus(status) {
        return nil, ErrValidation
    }
    q := `SELECT ` + loanColumns + ` FROM loans WHERE lender_id = ?`
    args := []any{lenderID}
    if status != "" {
        q += ` AND status = ?`
        args = append(args, status)
    }
    q += ` ORDER BY created_at DESC, id DESC`
    return r.queryLoans(ctx, q, args...)
}

// ListByBorrower returns every loan requested by the given borrower,
// newest first.
func (r *LoanRepo) ListByBorrower(ctx context.Context, borrowerID uint64) ([]model.Loan, error) {
    if borrowerID == 0 {
        return nil, ErrValidation
    }
    const q = `SELECT ` + loanColumns + ` FROM loans
        WHERE borrower_id = ? ORDER BY created_at DESC, id DESC`
    return r.queryLoans(ctx, q, borrowerID)
}

// TransitionTx moves a loan from one status to another inside an
// existing transaction.  It loads the row first to distinguish the
// failure cause: ErrLoanNotFound for an unknown id, ErrForbidden when
// the caller is not the lender, ErrConflict when the current status
// does not admit the transition.  The final UPDATE re-checks the
// status as a compare-and-set so a concurrent transition cannot be
// overwritten.  The loan with its pre-transition fields is returned so
// the caller can reach the book id and snapshot.
func (r *LoanRepo) TransitionTx(ctx context.Context, tx *sql.Tx, loanID, lenderID uint64, to string) (*model.Loan, error) {
    if !model.ValidStatus(to) {
        return nil, ErrValidation
    }
    const sel = `SELECT ` + loanColumns + ` FROM loans WHERE id = ?`
    l, err := scanLoan(tx.QueryRowContext(ctx, sel, loanID))
    if err == sql.ErrNoRows {
        return nil, ErrLoanNotFound
    }
    if err != nil {
        return nil, err
    }
    if l.LenderID != lenderID {
        return nil, ErrForbidden
    }
    if !model.CanTransition(l.Status, to) {
        return nil, ErrConflict
    }
    const upd = `UPDATE loans SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
    res, err := tx.ExecContext(ctx, upd, to, time.Now().UTC().Truncate(time.Second), loanID, l.Status)
    if err != nil {
        return nil, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return nil, err
    }
    if n == 0 {
        return nil, ErrConflict
    }
    return &l, nil
}

func (r *LoanRepo) queryLoans(ctx context.Context, q string, args ...any) ([]model.Loan, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    loans := make([]model.Loan, 0)
    for rows.Next() {
        l, err := scanLoan(rows)
        if err != nil {
            return nil, err
        }
        loans = append(loans, l)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return loans, nil
}

func scanLoan(s scanner) (model.Loan, error) {
    var (
        l     model.Loan
        cover sql.NullString
    )
    err := s.Scan(&l.ID, &l.BookID, &l.LenderID, &l.BorrowerID, &l.BorrowerEmail,
        &l.BookTitle, &l.BookAuthor, &cover, &l.BookDescription, &l.DaysLeft,
        &l.Status, &l.CreatedAt, &l.UpdatedAt)
    if err != nil {
        return model.Loan{}, err
    }
    if cover.Valid {
        v := cover.String
        l.BookCover = &v
    }
    return l, nil
}
