package menu

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const MaxBodyBytes = 2 << 20 // 2 MB (menu items can carry image data)

// Handler handles HTTP requests for menu items
type Handler struct {
	itemRepo ItemRepo
	logger   aqm.Logger
	config   *aqm.Config
	tlm      *telemetry.HTTP
}

// NewHandler creates a new Handler for menu operations
func NewHandler(itemRepo ItemRepo, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		itemRepo: itemRepo,
		logger:   logger,
		config:   config,
		tlm:      telemetry.NewHTTP(),
	}
}

// RegisterPublicRoutes registers the storefront menu surface. Only items
// marked available are served here.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Route("/menu/items", func(r chi.Router) {
		r.Get("/", h.ListAvailableItems)
		r.Get("/category/{category}", h.ListItemsByCategory)
	})
}

// RegisterAdminRoutes registers the back-office menu management surface.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/menu/items", func(r chi.Router) {
		r.Post("/", h.CreateItem)
		r.Get("/", h.ListItems)
		r.Get("/{id}", h.GetItem)
		r.Put("/{id}", h.UpdateItem)
		r.Delete("/{id}", h.DeleteItem)
	})
}

// CreateItem handles POST /admin/menu/items
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateItem")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	item, ok := h.decodeItemPayload(w, r, log)
	if !ok {
		return
	}

	item.BeforeCreate()

	if validationErrors := ValidateItem(ctx, item); len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		h.respondValidationErrors(w, validationErrors)
		return
	}

	if err := h.itemRepo.Create(ctx, item); err != nil {
		log.Error("cannot create menu item", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not create menu item")
		return
	}

	links := aqm.RESTfulLinksFor(item)
	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, item, links...)
}

// GetItem handles GET /admin/menu/items/{id}
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetItem")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	item, err := h.itemRepo.Get(ctx, id)
	if err != nil {
		log.Error("error loading menu item", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusNotFound, "Menu item not found")
		return
	}

	if item == nil {
		aqm.RespondError(w, http.StatusNotFound, "Menu item not found")
		return
	}

	links := aqm.RESTfulLinksFor(item)
	aqm.RespondSuccess(w, item, links...)
}

// ListItems handles GET /admin/menu/items
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListItems")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	items, err := h.itemRepo.List(ctx)
	if err != nil {
		log.Error("cannot list menu items", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not list menu items")
		return
	}

	aqm.RespondCollection(w, items, "menu/items")
}

// ListAvailableItems handles GET /menu/items
func (h *Handler) ListAvailableItems(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListAvailableItems")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	items, err := h.itemRepo.ListAvailable(ctx)
	if err != nil {
		log.Error("cannot list menu items", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not list menu items")
		return
	}

	aqm.RespondCollection(w, items, "menu/items")
}

// ListItemsByCategory handles GET /menu/items/category/{category}
func (h *Handler) ListItemsByCategory(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListItemsByCategory")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	category := chi.URLParam(r, "category")
	if category == "" {
		log.Debug("missing category parameter")
		aqm.RespondError(w, http.StatusBadRequest, "Missing category parameter")
		return
	}

	items, err := h.itemRepo.ListByCategory(ctx, category)
	if err != nil {
		log.Error("cannot list menu items by category", "error", err, "category", category)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not list menu items by category")
		return
	}

	// The public surface only exposes available items
	available := make([]*Item, 0, len(items))
	for _, item := range items {
		if item.IsAvailable() {
			available = append(available, item)
		}
	}

	aqm.RespondCollection(w, available, "menu/items")
}

// UpdateItem handles PUT /admin/menu/items/{id}
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateItem")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	item, ok := h.decodeItemPayload(w, r, log)
	if !ok {
		return
	}

	item.ID = id
	item.BeforeUpdate()

	if validationErrors := ValidateItem(ctx, item); len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		h.respondValidationErrors(w, validationErrors)
		return
	}

	if err := h.itemRepo.Save(ctx, item); err != nil {
		log.Error("cannot update menu item", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update menu item")
		return
	}

	links := aqm.RESTfulLinksFor(item)
	aqm.RespondSuccess(w, item, links...)
}

// DeleteItem handles DELETE /admin/menu/items/{id}. Removal is immediate on
// both surfaces; pending orders keep their snapshotted copy of the item.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteItem")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	if err := h.itemRepo.Delete(ctx, id); err != nil {
		log.Error("cannot delete menu item", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not delete menu item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Helper methods

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, log aqm.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		log.Debug("missing id parameter")
		aqm.RespondError(w, http.StatusBadRequest, "Missing id parameter")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid id parameter", "id", idStr, "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) decodeItemPayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (*Item, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return nil, false
	}

	var item Item
	if err := json.Unmarshal(body, &item); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return nil, false
	}

	return &item, true
}

func (h *Handler) respondValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  "Validation failed",
		"errors": errors,
	})
}
