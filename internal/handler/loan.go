package handler

import (
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"

    "github.com/readswap/readswap/internal/metrics"
    "github.com/readswap/readswap/internal/model"
    "github.com/readswap/readswap/internal/queue"
    "github.com/readswap/readswap/internal/repository"
    queue_publisher "github.com/readswap/readswap/internal/service"
)

// LoanHandler implements the borrow flow: a borrower submits a request
// against a listing, the lender approves, declines or records the
// return.  Transitions run inside a transaction so the status change
// and the availability flip on the book commit together.
type LoanHandler struct {
    Loans *repository.LoanRepo
    Books *repository.BookRepo
    Log   *zerolog.Logger
}

// NewLoanHandler constructs a LoanHandler.  Repositories must be
// non-nil; the logger may not be nil either, pass a disabled logger in
// tests.
func NewLoanHandler(loans *repository.LoanRepo, books *repository.BookRepo, log *zerolog.Logger) *LoanHandler {
    if loans == nil || books == nil || log == nil {
        panic("nil dependency passed to NewLoanHandler")
    }
    return &LoanHandler{Loans: loans, Books: books, Log: log}
}

type createLoanReq struct {
    BookID        uint64 `json:"book_id"`
    BorrowerEmail string `json:"borrower_email"`
    DaysLeft      uint32 `json:"days_left"`
}

// Create handles POST /v1/loans.  The borrower is the JWT subject; the
// lender is resolved from the book's owner on the server, never taken
// from the client.  The book's title, author, cover and description
// are copied onto the loan so later catalog edits leave history alone.
func (h *LoanHandler) Create(c echo.Context) error {
    borrowerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createLoanReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.BookID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "book_id is required"})
    }

    ctx := c.Request().Context()
    book, err := h.Books.GetByID(ctx, req.BookID)
    if err != nil {
        if errors.Is(err, repository.ErrBookNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if book.OwnerID == borrowerID {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot borrow your own book"})
    }

    l := model.Loan{
        BookID:          book.ID,
        LenderID:        book.OwnerID,
        BorrowerID:      borrowerID,
        BorrowerEmail:   req.BorrowerEmail,
        BookTitle:       book.Title,
        BookAuthor:      book.Author,
        BookCover:       book.CoverURL,
        BookDescription: book.Description,
        DaysLeft:        req.DaysLeft,
    }
    if err := h.Loans.Create(ctx, &l); err != nil {
        if errors.Is(err, repository.ErrValidation) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "borrower_email is required"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create loan failed"})
    }
    h.Log.Info().
        Uint64("loan_id", l.ID).
        Uint64("book_id", l.BookID).
        Uint64("lender_id", l.LenderID).
        Uint64("borrower_id", l.BorrowerID).
        Msg("borrow request created")
    return c.JSON(http.StatusCreated, echo.Map{
        "message": "Book borrowed successfully",
        "loan":    l,
    })
}

// ListMine handles GET /v1/loans: the requests the caller submitted as
// a borrower, newest first.
func (h *LoanHandler) ListMine(c echo.Context) error {
    borrowerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    loans, err := h.Loans.ListByBorrower(c.Request().Context(), borrowerID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"loans": loans})
}

// ListApproved handles GET /v1/loans/approved: every loan the caller
// approved as a lender.  Only loans whose status is APPROVED appear;
// a pending request is not an approval.
func (h *LoanHandler) ListApproved(c echo.Context) error {
    lenderID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    loans, err := h.Loans.ListByLender(c.Request().Context(), lenderID, model.LoanApproved)
    if err != nil {
        if errors.Is(err, repository.ErrValidation) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "lender id is required"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"approved_books": loans})
}

// ListIncoming handles GET /v1/loans/incoming: borrow requests still
// waiting for the caller's decision as a lender.
func (h *LoanHandler) ListIncoming(c echo.Context) error {
    lenderID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    loans, err := h.Loans.ListByLender(c.Request().Context(), lenderID, model.LoanRequested)
    if err != nil {
        if errors.Is(err, repository.ErrValidation) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "lender id is required"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"requests": loans})
}

// Approve handles POST /v1/loans/:id/approve.  The loan moves
// REQUESTED -> APPROVED and the book's availability flips true ->
// false in the same transaction; losing either compare-and-set aborts
// with a 409.  On success a loan.approved event is published
// best-effort.
func (h *LoanHandler) Approve(c echo.Context) error {
    loan, err := h.transition(c, model.LoanApproved)
    if err != nil {
        return err // response already written
    }
    if loan == nil {
        return nil
    }

    evt := queue.LoanApprovedEvent{
        LoanID:        loan.ID,
        BookID:        loan.BookID,
        BookTitle:     loan.BookTitle,
        BookAuthor:    loan.BookAuthor,
        LenderID:      loan.LenderID,
        BorrowerID:    loan.BorrowerID,
        BorrowerEmail: loan.BorrowerEmail,
        DaysLeft:      loan.DaysLeft,
        ApprovedAt:    time.Now().UTC().Format(time.RFC3339),
    }
    if err := queue_publisher.PublishLoanApproved(c.Request().Context(), evt); err != nil {
        // The approval already committed; a broker outage must not fail it.
        h.Log.Warn().Err(err).Uint64("loan_id", loan.ID).Msg("publish loan.approved failed")
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "loan approved", "loan_id": loan.ID})
}

// Decline handles POST /v1/loans/:id/decline (REQUESTED -> DECLINED).
func (h *LoanHandler) Decline(c echo.Context) error {
    loan, err := h.transition(c, model.LoanDeclined)
    if err != nil || loan == nil {
        return err
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "loan declined", "loan_id": loan.ID})
}

// Return handles POST /v1/loans/:id/return (APPROVED -> RETURNED); the
// book becomes available again.
func (h *LoanHandler) Return(c echo.Context) error {
    loan, err := h.transition(c, model.LoanReturned)
    if err != nil || loan == nil {
        return err
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "loan returned", "loan_id": loan.ID})
}

// transition performs a lender-triggered status change plus the
// matching availability flip inside one transaction.  It writes the
// error response itself and returns (nil, nil) in that case so the
// callers only handle success.
func (h *LoanHandler) transition(c echo.Context, to string) (*model.Loan, error) {
    lenderID, err := getUserID(c)
    if err != nil {
        return nil, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    loanID, ok := pathID(c)
    if !ok {
        return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid loan id"})
    }

    ctx := c.Request().Context()
    tx, err := h.Loans.DB().BeginTx(ctx, nil)
    if err != nil {
        return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    loan, err := h.Loans.TransitionTx(ctx, tx, loanID, lenderID, to)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrLoanNotFound):
            return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "loan not found"})
        case errors.Is(err, repository.ErrForbidden):
            return nil, c.JSON(http.StatusForbidden, echo.Map{"error": "not the lender"})
        case errors.Is(err, repository.ErrConflict):
            return nil, c.JSON(http.StatusConflict, echo.Map{"error": "transition not allowed"})
        }
        return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    switch to {
    case model.LoanApproved:
        err = h.Books.SetAvailabilityTx(ctx, tx, loan.BookID, true, false)
    case model.LoanReturned:
        err = h.Books.SetAvailabilityTx(ctx, tx, loan.BookID, false, true)
    }
    if err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return nil, c.JSON(http.StatusConflict, echo.Map{"error": "book availability changed"})
        }
        return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    if err := tx.Commit(); err != nil {
        return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
    }
    committed = true

    metrics.IncLoanTransition(to)
    h.Log.Info().
        Uint64("loan_id", loan.ID).
        Str("to", to).
        Uint64("lender_id", lenderID).
        Msg("loan transition")
    return loan, nil
}
