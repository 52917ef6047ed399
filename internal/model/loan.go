package model

import "time"

// Loan status values.  A loan starts in REQUESTED and moves only
// through lender decisions: REQUESTED -> APPROVED or DECLINED, and
// APPROVED -> RETURNED.  DECLINED and RETURNED are terminal.
const (
    LoanRequested = "REQUESTED"
    LoanApproved  = "APPROVED"
    LoanDeclined  = "DECLINED"
    LoanReturned  = "RETURNED"
)

// DefaultLoanDays is the loan duration applied when a borrow request
// does not specify one.  The counter is fixed at creation; it is not
// decremented by a background job.
const DefaultLoanDays = 14

// CanTransition reports whether a loan may move from one status to
// another.  Only the lender triggers transitions; callers enforce
// identity separately.
func CanTransition(from, to string) bool {
    switch from {
    case LoanRequested:
        return to == LoanApproved || to == LoanDeclined
    case LoanApproved:
        return to == LoanReturned
    }
    return false
}

// TerminalStatus reports whether a status admits no further transitions.
func TerminalStatus(s string) bool {
    return s == LoanDeclined || s == LoanReturned
}

// ValidStatus reports whether s is one of the defined loan statuses.
func ValidStatus(s string) bool {
    switch s {
    case LoanRequested, LoanApproved, LoanDeclined, LoanReturned:
        return true
    }
    return false
}

// Loan links a borrower to a book and its lender.  The book columns
// (title, author, cover, description) are a snapshot taken when the
// request was created, so later catalog edits never rewrite lending
// history.  BookID remains for navigation but is not used to render
// past loans.
//
// Fields:
//  ID              – primary key identifier.
//  BookID          – book the request is about.
//  LenderID        – owner of the book at request time.
//  BorrowerID      – user asking to borrow.
//  BorrowerEmail   – contact address supplied with the request.
//  BookTitle       – snapshot of the book title.
//  BookAuthor      – snapshot of the book author.
//  BookCover       – snapshot of the cover URL (nullable).
//  BookDescription – snapshot of the description.
//  DaysLeft        – loan duration in days, fixed at creation.
//  Status          – one of the Loan* constants.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last transition timestamp.
type Loan struct {
    ID              uint64    `json:"id"`
    BookID          uint64    `json:"book_id"`
    LenderID        uint64    `json:"lender_id"`
    BorrowerID      uint64    `json:"borrower_id"`
    BorrowerEmail   string    `json:"borrower_email"`
    BookTitle       string    `json:"book_title"`
    BookAuthor      string    `json:"book_author"`
    BookCover       *string   `json:"book_cover,omitempty"`
    BookDescription string    `json:"book_description"`
    DaysLeft        uint32    `json:"days_left"`
    Status          string    `json:"status"`
    CreatedAt       time.Time `json:"created_at"`
    UpdatedAt       time.Time `json:"updated_at"`
}
