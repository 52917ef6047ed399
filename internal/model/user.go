package model

import "time"

// Role names stored in the users.role column and in the JWT "role"
// claim.  The role records how an account registered; any account may
// lend its own listings and borrow others', so protected routes admit
// both roles and ownership is checked per resource.
const (
    RoleLender   = "LENDER"
    RoleBorrower = "BORROWER"
)

// User is the local profile mirror for an account.  The row keeps the
// credentials hash and the denormalized profile fields other members
// may see.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique email address, stored lower-cased.
//  PasswordHash – bcrypt hash of the password.
//  Role         – RoleLender or RoleBorrower.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    `json:"id"`
    Email        string    `json:"email"`
    PasswordHash string    `json:"-"`
    Role         string    `json:"role"`
    IsActive     bool      `json:"is_active"`
    CreatedAt    time.Time `json:"created_at"`
    UpdatedAt    time.Time `json:"updated_at"`
}

// RefreshToken models a row in the `refresh_tokens` table.  Only the
// SHA-256 hash of the token value is stored.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp.
//  RevokedAt – when the token was revoked (nil while active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64
    UserID    uint64
    TokenHash string
    ExpiresAt time.Time
    RevokedAt *time.Time
    CreatedAt time.Time
}
