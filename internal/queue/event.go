// Package queue defines message payloads exchanged over the message broker.
package queue

// LoanApprovedEvent is published when a lender approves a borrow
// request.  It carries the loan's book snapshot so downstream
// consumers can log or notify without querying the primary database.
type LoanApprovedEvent struct {
    LoanID        uint64 `json:"loan_id"`
    BookID        uint64 `json:"book_id"`
    BookTitle     string `json:"book_title"`
    BookAuthor    string `json:"book_author"`
    LenderID      uint64 `json:"lender_id"`
    BorrowerID    uint64 `json:"borrower_id"`
    BorrowerEmail string `json:"borrower_email"`
    DaysLeft      uint32 `json:"days_left"`
    ApprovedAt    string `json:"approved_at"`
}
