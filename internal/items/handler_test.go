package items

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/swapspace/internal/logging"
	"github.com/ayush/swapspace/internal/middleware"
	"github.com/ayush/swapspace/internal/models"
)

// headerIdentity stands in for the auth gate: X-User carries the caller.
func headerIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-User"); id != "" {
			r = r.WithContext(middleware.WithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func newItemsRouter(f *fixture) http.Handler {
	h := NewHandler(f.svc, logging.Discard())
	r := chi.NewRouter()
	r.Use(headerIdentity)
	r.Get("/api/items", h.List)
	r.Get("/api/items/categories", h.Categories)
	r.Get("/api/items/{id}", h.Get)
	r.Post("/api/items", h.Create)
	r.Put("/api/items/{id}", h.Update)
	r.Delete("/api/items/{id}", h.Delete)
	r.Get("/api/users/items", h.Mine)
	return r
}

func call(t *testing.T, h http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != "" {
		req.Header.Set("X-User", user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const bikeJSON = `{"title":"Bike","description":"Red road bike","condition":"Good","category":"Sports & Outdoors","imageUrl":"https://img.example/bike.png"}`

func TestHandler_CreateIgnoresClientOwner(t *testing.T) {
	f := newFixture(t)
	h := newItemsRouter(f)

	body := strings.TrimSuffix(bikeJSON, "}") + `,"owner":"` + f.bob.ID + `"}`
	rec := call(t, h, http.MethodPost, "/api/items", f.alice.ID, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp models.ItemResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Item created successfully", resp.Message)
	assert.Equal(t, f.alice.ID, resp.Item.OwnerID)
}

func TestHandler_CreateValidation(t *testing.T) {
	f := newFixture(t)
	h := newItemsRouter(f)

	rec := call(t, h, http.MethodPost, "/api/items", f.alice.ID, `{"title":"Bike"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "required")
}

func TestHandler_GetAndMutations(t *testing.T) {
	f := newFixture(t)
	h := newItemsRouter(f)

	rec := call(t, h, http.MethodPost, "/api/items", f.alice.ID, bikeJSON)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.ItemResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	path := "/api/items/" + created.Item.ID

	rec = call(t, h, http.MethodGet, path, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
	assert.NotContains(t, rec.Body.String(), "hash")

	rec = call(t, h, http.MethodPut, path, f.bob.ID, bikeJSON)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())

	rec = call(t, h, http.MethodPut, path, f.alice.ID, strings.Replace(bikeJSON, "Bike", "Trike", 1))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Item updated successfully")
	assert.Contains(t, rec.Body.String(), "Trike")

	rec = call(t, h, http.MethodDelete, path, f.bob.ID, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, h, http.MethodDelete, path, f.alice.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Item deleted successfully"}`, rec.Body.String())

	rec = call(t, h, http.MethodGet, path, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Item not found"}`, rec.Body.String())

	rec = call(t, h, http.MethodDelete, path, f.alice.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_ListFiltersAndMine(t *testing.T) {
	f := newFixture(t)
	h := newItemsRouter(f)

	call(t, h, http.MethodPost, "/api/items", f.alice.ID, bikeJSON)
	call(t, h, http.MethodPost, "/api/items", f.bob.ID, strings.Replace(bikeJSON, "Sports & Outdoors", "Books", 1))

	var all []models.Item
	rec := call(t, h, http.MethodGet, "/api/items", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	var books []models.Item
	rec = call(t, h, http.MethodGet, "/api/items?category=Books", "", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &books))
	require.Len(t, books, 1)
	assert.Equal(t, f.bob.ID, books[0].OwnerID)

	var mine []models.Item
	rec = call(t, h, http.MethodGet, "/api/users/items", f.alice.ID, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "alice", mine[0].Owner.Username)

	rec = call(t, h, http.MethodGet, "/api/items/categories", "", "")
	assert.JSONEq(t, `["Books","Sports & Outdoors"]`, rec.Body.String())
}

func TestHandler_EmptyListIsArray(t *testing.T) {
	h := newItemsRouter(newFixture(t))
	rec := call(t, h, http.MethodGet, "/api/items", "", "")
	assert.Equal(t, "[]\n", rec.Body.String())
}
