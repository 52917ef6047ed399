package handler

import (
    "errors"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/readswap/readswap/internal/model"
    "github.com/readswap/readswap/internal/repository"
)

// BookHandler serves the catalog: public browsing and search plus the
// authenticated listing operations.  Ownership of mutations is
// enforced against the JWT subject, never against client-supplied ids.
type BookHandler struct {
    Books *repository.BookRepo
}

// NewBookHandler constructs a BookHandler.  The repository must be non-nil.
func NewBookHandler(books *repository.BookRepo) *BookHandler {
    if books == nil {
        panic("nil repository passed to NewBookHandler")
    }
    return &BookHandler{Books: books}
}

// List handles GET /v1/books.  The whole catalog is returned newest
// first; an empty catalog is a 200 with an empty array, not a 404.
func (h *BookHandler) List(c echo.Context) error {
    books, err := h.Books.List(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"books": books})
}

// Get handles GET /v1/books/:id.
func (h *BookHandler) Get(c echo.Context) error {
    id, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid book id"})
    }
    b, err := h.Books.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrBookNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"book": b})
}

type createBookReq struct {
    Title       string  `json:"title"`
    Author      string  `json:"author"`
    Genre       string  `json:"genre"`
    Condition   string  `json:"condition"`
    Description string  `json:"description"`
    PriceCents  *uint32 `json:"price_cents"`
    CoverURL    *string `json:"cover_url"`
    CoverKey    *string `json:"cover_key"`
}

// Create handles POST /v1/books.  The owner is always the JWT subject.
func (h *BookHandler) Create(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createBookReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Author) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and author are required"})
    }
    if !model.ValidGenre(req.Genre) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown genre"})
    }
    if !model.ValidCondition(req.Condition) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown condition"})
    }

    b := model.Book{
        OwnerID:     userID,
        Title:       req.Title,
        Author:      req.Author,
        Genre:       req.Genre,
        Condition:   req.Condition,
        Description: req.Description,
        PriceCents:  req.PriceCents,
        CoverURL:    req.CoverURL,
        CoverKey:    req.CoverKey,
    }
    if err := h.Books.Create(c.Request().Context(), &b); err != nil {
        if errors.Is(err, repository.ErrValidation) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing required field"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create book failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"book": b})
}

type updateBookReq struct {
    Description *string `json:"description"`
    Condition   *string `json:"condition"`
    PriceCents  *uint32 `json:"price_cents"`
    ClearPrice  bool    `json:"clear_price"`
    CoverURL    *string `json:"cover_url"`
    CoverKey    *string `json:"cover_key"`
}

// Update handles PATCH /v1/books/:id.  Only the owner may edit a
// listing; a mismatch is a 403 regardless of the requested fields.
func (h *BookHandler) Update(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid book id"})
    }
    var req updateBookReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    err = h.Books.Update(c.Request().Context(), id, userID, repository.UpdateBookParams{
        Description: req.Description,
        Condition:   req.Condition,
        PriceCents:  req.PriceCents,
        ClearPrice:  req.ClearPrice,
        CoverURL:    req.CoverURL,
        CoverKey:    req.CoverKey,
    })
    switch {
    case err == nil:
    case errors.Is(err, repository.ErrBookNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not the owner"})
    case errors.Is(err, repository.ErrValidation):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown condition"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update book failed"})
    }
    b, err := h.Books.GetByID(c.Request().Context(), id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"book": b})
}

// Search handles GET /v1/search/books with optional q, genre,
// available, page and page_size query parameters.
func (h *BookHandler) Search(c echo.Context) error {
    q := repository.BookSearchQuery{
        Text:  strings.TrimSpace(c.QueryParam("q")),
        Genre: strings.TrimSpace(c.QueryParam("genre")),
    }
    if v := c.QueryParam("available"); v != "" {
        b, err := strconv.ParseBool(v)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid available flag"})
        }
        q.Available = &b
    }
    if v := c.QueryParam("page"); v != "" {
        if n, err := strconv.Atoi(v); err == nil {
            q.Page = n
        }
    }
    if v := c.QueryParam("page_size"); v != "" {
        if n, err := strconv.Atoi(v); err == nil {
            q.PageSize = n
        }
    }
    items, total, err := h.Books.Search(c.Request().Context(), q)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if q.Page < 1 {
        q.Page = 1
    }
    if q.PageSize < 1 || q.PageSize > 100 {
        q.PageSize = 20
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items":     items,
        "total":     total,
        "page":      q.Page,
        "page_size": q.PageSize,
    })
}

// Genres handles GET /v1/genres so the presentation layer renders the
// same enumerations the API validates against.
func (h *BookHandler) Genres(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{
        "genres":     model.Genres,
        "conditions": model.Conditions,
    })
}
