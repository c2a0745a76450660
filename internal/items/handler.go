package items

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/swapspace/internal/common"
	"github.com/ayush/swapspace/internal/httpjson"
	"github.com/ayush/swapspace/internal/logging"
	"github.com/ayush/swapspace/internal/middleware"
	"github.com/ayush/swapspace/internal/models"
)

const notFoundMsg = "Item not found"

// Handler holds item HTTP handlers.
type Handler struct {
	svc *Service
	log logging.Logger
}

func NewHandler(svc *Service, log logging.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Create stores an item owned by the caller. Any owner in the body is ignored.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httpjson.Fail(w, common.ErrTokenMissing, "")
		return
	}

	var req models.ItemFields
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, err, "")
		return
	}

	item, err := h.svc.Create(r.Context(), userID, req)
	if err != nil {
		h.fail(w, r, "create item", err)
		return
	}
	h.log.Info(r.Context(), "item created", "item_id", item.ID, "owner", userID)
	httpjson.Write(w, http.StatusCreated, models.ItemResponse{Message: "Item created successfully", Item: item})
}

// List returns all items. Optional q and category query parameters filter
// by substring and exact category.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.svc.ListAll(r.Context(), models.ItemFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
	})
	if err != nil {
		h.fail(w, r, "list items", err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// Get returns a single item.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get item", err)
		return
	}
	httpjson.Write(w, http.StatusOK, item)
}

// Update overwrites an item owned by the caller.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httpjson.Fail(w, common.ErrTokenMissing, "")
		return
	}

	var req models.ItemFields
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, err, "")
		return
	}

	item, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), userID, req)
	if err != nil {
		h.fail(w, r, "update item", err)
		return
	}
	httpjson.Write(w, http.StatusOK, models.ItemResponse{Message: "Item updated successfully", Item: item})
}

// Delete removes an item owned by the caller.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httpjson.Fail(w, common.ErrTokenMissing, "")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id, userID); err != nil {
		h.fail(w, r, "delete item", err)
		return
	}
	h.log.Info(r.Context(), "item deleted", "item_id", id, "owner", userID)
	httpjson.Write(w, http.StatusOK, models.MessageResponse{Message: "Item deleted successfully"})
}

// Mine returns the caller's own items.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httpjson.Fail(w, common.ErrTokenMissing, "")
		return
	}

	list, err := h.svc.ListByOwner(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "list own items", err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// Categories returns the distinct categories currently in use.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.ListCategories(r.Context())
	if err != nil {
		h.fail(w, r, "list categories", err)
		return
	}
	httpjson.Write(w, http.StatusOK, cats)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if status, _ := httpjson.Status(err); status == http.StatusInternalServerError {
		h.log.Error(r.Context(), op+" failed", "err", err)
	}
	httpjson.Fail(w, err, notFoundMsg)
}
