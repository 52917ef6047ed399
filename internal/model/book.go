package model

import "time"

// Genres is the fixed set of catalog categories a book listing may
// carry.  The values are stored verbatim in the books.genre column
// and validated at the API boundary before any insert.
var Genres = []string{
    "Fiction",
    "Non-Fiction",
    "Science",
    "Fantasy",
    "Mystery",
    "Romance",
    "History",
    "Biography",
    "Children",
    "Other",
}

// Conditions enumerates the physical condition of a listed book,
// ordered roughly from best to worst.
var Conditions = []string{
    "New",
    "Like New",
    "Good",
    "Fair",
    "Worn",
    "Used",
    "Damaged",
}

// ValidGenre reports whether g belongs to the Genres set.
func ValidGenre(g string) bool { return contains(Genres, g) }

// ValidCondition reports whether c belongs to the Conditions set.
func ValidCondition(c string) bool { return contains(Conditions, c) }

func contains(set []string, v string) bool {
    for _, s := range set {
        if s == v {
            return true
        }
    }
    return false
}

// Book represents a catalog listing offered for lending.  Each field
// corresponds to a column in the `books` table.  Cover images live in
// external object storage; only the public URL and the storage key are
// kept here so the listing survives without the storage provider.
//
// Fields:
//  ID          – primary key identifier.
//  OwnerID     – user who listed the book (the lender).
//  Title       – book title.
//  Author      – book author.
//  Genre       – one of the Genres values.
//  Condition   – one of the Conditions values.
//  Description – free-form description, may be empty.
//  PriceCents  – optional exchange price in cents (nil when not for sale).
//  IsAvailable – whether the book can currently be borrowed.
//  CoverURL    – public URL of the cover image (nullable).
//  CoverKey    – object-storage key of the cover image (nullable).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Book struct {
    ID          uint64    `json:"id"`
    OwnerID     uint64    `json:"owner_id"`
    Title       string    `json:"title"`
    Author      string    `json:"author"`
    Genre       string    `json:"genre"`
    Condition   string    `json:"condition"`
    Description string    `json:"description"`
    PriceCents  *uint32   `json:"price_cents,omitempty"`
    IsAvailable bool      `json:"is_available"`
    CoverURL    *string   `json:"cover_url,omitempty"`
    CoverKey    *string   `json:"cover_key,omitempty"`
    CreatedAt   time.Time `json:"created_at"`
    UpdatedAt   time.Time `json:"updated_at"`
}
