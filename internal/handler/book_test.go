package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookList(t *testing.T) {
	env := newTestEnv(t)

	t.Run("EmptyCatalogIs200WithEmptyArray", func(t *testing.T) {
		c, rec := env.request(http.MethodGet, "/v1/books", "", 0)
		require.NoError(t, env.books.List(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		books, ok := body["books"].([]any)
		require.True(t, ok, "books key must be an array, got %T", body["books"])
		assert.Empty(t, books)
	})

	id := env.createBook(t, 1, "Dune")

	t.Run("CreatedBookShowsUp", func(t *testing.T) {
		c, rec := env.request(http.MethodGet, "/v1/books", "", 0)
		require.NoError(t, env.books.List(c))
		books := decodeBody(t, rec)["books"].([]any)
		require.Len(t, books, 1)
		b := books[0].(map[string]any)
		assert.EqualValues(t, id, b["id"].(float64))
		assert.Equal(t, "Dune", b["title"])
		assert.Equal(t, true, b["is_available"])
	})
}

func TestBookGet(t *testing.T) {
	env := newTestEnv(t)
	id := env.createBook(t, 1, "Dune")

	t.Run("Found", func(t *testing.T) {
		c, rec := env.request(http.MethodGet, "/", "", 0)
		c.SetParamNames("id")
		c.SetParamValues(jsonUint(id))
		require.NoError(t, env.books.Get(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("UnknownIDIs404", func(t *testing.T) {
		c, rec := env.request(http.MethodGet, "/", "", 0)
		c.SetParamNames("id")
		c.SetParamValues("999")
		require.NoError(t, env.books.Get(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "book not found", decodeBody(t, rec)["error"])
	})

	t.Run("GarbageIDIs400", func(t *testing.T) {
		c, rec := env.request(http.MethodGet, "/", "", 0)
		c.SetParamNames("id")
		c.SetParamValues("abc")
		require.NoError(t, env.books.Get(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBookCreate(t *testing.T) {
	env := newTestEnv(t)

	t.Run("NoAuthIs401", func(t *testing.T) {
		c, rec := env.request(http.MethodPost, "/v1/books", `{"title":"x"}`, 0)
		require.NoError(t, env.books.Create(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("MissingTitleIs400", func(t *testing.T) {
		body := `{"author":"Herbert","genre":"Fiction","condition":"Good"}`
		c, rec := env.request(http.MethodPost, "/v1/books", body, 1)
		require.NoError(t, env.books.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "title and author are required", decodeBody(t, rec)["error"])
	})

	t.Run("UnknownGenreIs400", func(t *testing.T) {
		body := `{"title":"Dune","author":"Herbert","genre":"Cooking","condition":"Good"}`
		c, rec := env.request(http.MethodPost, "/v1/books", body, 1)
		require.NoError(t, env.books.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "unknown genre", decodeBody(t, rec)["error"])
	})

	t.Run("OwnerComesFromTokenNotBody", func(t *testing.T) {
		body := `{"title":"Dune","author":"Herbert","genre":"Fiction","condition":"Good","owner_id":99}`
		c, rec := env.request(http.MethodPost, "/v1/books", body, 7)
		require.NoError(t, env.books.Create(c))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		b := decodeBody(t, rec)["book"].(map[string]any)
		assert.EqualValues(t, 7, b["owner_id"].(float64))
		assert.Equal(t, true, b["is_available"])
	})
}

func TestBookUpdate(t *testing.T) {
	env := newTestEnv(t)
	id := env.createBook(t, 1, "Dune")

	patch := func(userID uint64, body string) (int, map[string]any) {
		c, rec := env.request(http.MethodPatch, "/", body, userID)
		c.SetParamNames("id")
		c.SetParamValues(jsonUint(id))
		require.NoError(t, env.books.Update(c))
		return rec.Code, decodeBody(t, rec)
	}

	t.Run("NonOwnerIs403", func(t *testing.T) {
		code, body := patch(2, `{"description":"mine now"}`)
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "not the owner", body["error"])
	})

	t.Run("OwnerEditReturnsUpdatedBook", func(t *testing.T) {
		code, body := patch(1, `{"description":"first edition","price_cents":900}`)
		require.Equal(t, http.StatusOK, code)
		b := body["book"].(map[string]any)
		assert.Equal(t, "first edition", b["description"])
		assert.EqualValues(t, 900, b["price_cents"].(float64))
	})

	t.Run("UnknownConditionIs400", func(t *testing.T) {
		code, _ := patch(1, `{"condition":"Mint"}`)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("UnknownBookIs404", func(t *testing.T) {
		c, rec := env.request(http.MethodPatch, "/", `{"description":"x"}`, 1)
		c.SetParamNames("id")
		c.SetParamValues("999")
		require.NoError(t, env.books.Update(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestBookSearch(t *testing.T) {
	env := newTestEnv(t)
	env.createBook(t, 1, "Dune")
	env.createBook(t, 1, "Dune Messiah")
	env.createBook(t, 2, "Hyperion")

	t.Run("TextQuery", func(t *testing.T) {
		c, rec := env.request(http.MethodGet, "/v1/search/books?q=dune", "", 0)
		require.NoError(t, env.books.Search(c))
		body := decodeBody(t, rec)
		assert.EqualValues(t, 2, body["total"].(float64))
		assert.Len(t, body["items"].([]any), 2)
	})

	t.Run("Pagination", func(t *testing.T) {
		c, rec := env.request(http.MethodGet, "/v1/search/books?page=2&page_size=2", "", 0)
		require.NoError(t, env.books.Search(c))
		body := decodeBody(t, rec)
		assert.EqualValues(t, 3, body["total"].(float64))
		assert.Len(t, body["items"].([]any), 1)
		assert.EqualValues(t, 2, body["page"].(float64))
	})

	t.Run("BadAvailableFlagIs400", func(t *testing.T) {
		c, rec := env.request(http.MethodGet, "/v1/search/books?available=maybe", "", 0)
		require.NoError(t, env.books.Search(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBookGenres(t *testing.T) {
	env := newTestEnv(t)
	c, rec := env.request(http.MethodGet, "/v1/genres", "", 0)
	require.NoError(t, env.books.Genres(c))
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["genres"])
	assert.NotEmpty(t, body["conditions"])
}
