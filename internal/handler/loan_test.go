package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readswap/readswap/internal/model"
)

func TestLoanCreate(t *testing.T) {
	env := newTestEnv(t)
	bookID := env.createBook(t, 10, "Dune")

	t.Run("NoAuthIs401", func(t *testing.T) {
		c, rec := env.request(http.MethodPost, "/v1/loans", `{"book_id":1}`, 0)
		require.NoError(t, env.loans.Create(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("MissingBookIDIs400", func(t *testing.T) {
		c, rec := env.request(http.MethodPost, "/v1/loans", `{"borrower_email":"b@x.com"}`, 2)
		require.NoError(t, env.loans.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UnknownBookIs404", func(t *testing.T) {
		c, rec := env.request(http.MethodPost, "/v1/loans", `{"book_id":999,"borrower_email":"b@x.com"}`, 2)
		require.NoError(t, env.loans.Create(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "book not found", decodeBody(t, rec)["error"])
	})

	t.Run("OwnBookIs400", func(t *testing.T) {
		body := `{"book_id":` + jsonUint(bookID) + `,"borrower_email":"b@x.com"}`
		c, rec := env.request(http.MethodPost, "/v1/loans", body, 10)
		require.NoError(t, env.loans.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "cannot borrow your own book", decodeBody(t, rec)["error"])
	})

	t.Run("MissingEmailIs400", func(t *testing.T) {
		body := `{"book_id":` + jsonUint(bookID) + `}`
		c, rec := env.request(http.MethodPost, "/v1/loans", body, 2)
		require.NoError(t, env.loans.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("SuccessSnapshotsBookAndDefaultsDays", func(t *testing.T) {
		body := `{"book_id":` + jsonUint(bookID) + `,"borrower_email":"b@x.com"}`
		c, rec := env.request(http.MethodPost, "/v1/loans", body, 2)
		require.NoError(t, env.loans.Create(c))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		resp := decodeBody(t, rec)
		assert.Equal(t, "Book borrowed successfully", resp["message"])
		loan := resp["loan"].(map[string]any)
		assert.Equal(t, "Dune", loan["book_title"])
		assert.Equal(t, "Herbert", loan["book_author"])
		assert.EqualValues(t, 10, loan["lender_id"].(float64))
		assert.EqualValues(t, 2, loan["borrower_id"].(float64))
		assert.EqualValues(t, 14, loan["days_left"].(float64))
		assert.Equal(t, model.LoanRequested, loan["status"])
	})

	t.Run("LenderIgnoredIfClientSendsOne", func(t *testing.T) {
		body := `{"book_id":` + jsonUint(bookID) + `,"borrower_email":"b@x.com","lender_id":42}`
		c, rec := env.request(http.MethodPost, "/v1/loans", body, 3)
		require.NoError(t, env.loans.Create(c))
		require.Equal(t, http.StatusCreated, rec.Code)
		loan := decodeBody(t, rec)["loan"].(map[string]any)
		assert.EqualValues(t, 10, loan["lender_id"].(float64))
	})
}

func TestLoanListings(t *testing.T) {
	env := newTestEnv(t)
	bookID := env.createBook(t, 10, "Dune")
	loanID := env.createLoan(t, 2, bookID)

	t.Run("ApprovedListEmptyWhilePending", func(t *testing.T) {
		c, rec := env.request(http.MethodGet, "/v1/loans/approved", "", 10)
		require.NoError(t, env.loans.ListApproved(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		approved, ok := body["approved_books"].([]any)
		require.True(t, ok, "approved_books must be an array, got %T", body["approved_books"])
		assert.Empty(t, approved)
	})

	t.Run("IncomingShowsPendingRequest", func(t *testing.T) {
		c, rec := env.request(http.MethodGet, "/v1/loans/incoming", "", 10)
		require.NoError(t, env.loans.ListIncoming(c))
		reqs := decodeBody(t, rec)["requests"].([]any)
		require.Len(t, reqs, 1)
		assert.EqualValues(t, loanID, reqs[0].(map[string]any)["id"].(float64))
	})

	t.Run("BorrowerSeesOwnRequests", func(t *testing.T) {
		c, rec := env.request(http.MethodGet, "/v1/loans", "", 2)
		require.NoError(t, env.loans.ListMine(c))
		loans := decodeBody(t, rec)["loans"].([]any)
		require.Len(t, loans, 1)
	})

	t.Run("OtherLenderSeesNothing", func(t *testing.T) {
		c, rec := env.request(http.MethodGet, "/v1/loans/incoming", "", 99)
		require.NoError(t, env.loans.ListIncoming(c))
		assert.Empty(t, decodeBody(t, rec)["requests"].([]any))
	})
}

func TestLoanApproveFlow(t *testing.T) {
	env := newTestEnv(t)
	bookID := env.createBook(t, 10, "Dune")
	loanID := env.createLoan(t, 2, bookID)
	ctx := context.Background()

	t.Run("NonLenderIs403", func(t *testing.T) {
		rec := env.act(t, env.loans.Approve, loanID, 2)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "not the lender", decodeBody(t, rec)["error"])
	})

	t.Run("UnknownLoanIs404", func(t *testing.T) {
		rec := env.act(t, env.loans.Approve, 999, 10)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("LenderApprovalFlipsAvailability", func(t *testing.T) {
		rec := env.act(t, env.loans.Approve, loanID, 10)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		book, err := env.repoB.GetByID(ctx, bookID)
		require.NoError(t, err)
		assert.False(t, book.IsAvailable)

		loan, err := env.repoL.GetByID(ctx, loanID)
		require.NoError(t, err)
		assert.Equal(t, model.LoanApproved, loan.Status)
	})

	t.Run("ApprovedListingNowContainsIt", func(t *testing.T) {
		c, rec := env.request(http.MethodGet, "/v1/loans/approved", "", 10)
		require.NoError(t, env.loans.ListApproved(c))
		approved := decodeBody(t, rec)["approved_books"].([]any)
		require.Len(t, approved, 1)
		assert.EqualValues(t, loanID, approved[0].(map[string]any)["id"].(float64))
	})

	t.Run("SecondApproveIs409", func(t *testing.T) {
		rec := env.act(t, env.loans.Approve, loanID, 10)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("ReturnRestoresAvailability", func(t *testing.T) {
		rec := env.act(t, env.loans.Return, loanID, 10)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		book, err := env.repoB.GetByID(ctx, bookID)
		require.NoError(t, err)
		assert.True(t, book.IsAvailable)

		loan, err := env.repoL.GetByID(ctx, loanID)
		require.NoError(t, err)
		assert.Equal(t, model.LoanReturned, loan.Status)
	})

	t.Run("ReturnedIsTerminal", func(t *testing.T) {
		rec := env.act(t, env.loans.Decline, loanID, 10)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestLoanDecline(t *testing.T) {
	env := newTestEnv(t)
	bookID := env.createBook(t, 10, "Dune")
	loanID := env.createLoan(t, 2, bookID)
	ctx := context.Background()

	rec := env.act(t, env.loans.Decline, loanID, 10)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// declining leaves the book on the shelf
	book, err := env.repoB.GetByID(ctx, bookID)
	require.NoError(t, err)
	assert.True(t, book.IsAvailable)

	loan, err := env.repoL.GetByID(ctx, loanID)
	require.NoError(t, err)
	assert.Equal(t, model.LoanDeclined, loan.Status)

	// no second chance after a decline
	rec = env.act(t, env.loans.Decline, loanID, 10)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoanReturnBeforeApproval(t *testing.T) {
	env := newTestEnv(t)
	bookID := env.createBook(t, 10, "Dune")
	loanID := env.createLoan(t, 2, bookID)

	rec := env.act(t, env.loans.Return, loanID, 10)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "transition not allowed", decodeBody(t, rec)["error"])
}
