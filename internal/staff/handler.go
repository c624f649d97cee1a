package staff

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const MaxBodyBytes = 1 << 20

// Handler handles HTTP requests for the staff roster
type Handler struct {
	repo   MemberRepo
	logger aqm.Logger
	config *aqm.Config
	tlm    *telemetry.HTTP
}

func NewHandler(repo MemberRepo, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
		config: config,
		tlm:    telemetry.NewHTTP(),
	}
}

// RegisterAdminRoutes registers the back-office staff surface.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/staff", func(r chi.Router) {
		r.Get("/", h.ListMembers)
		r.Post("/", h.CreateMember)
		r.Get("/{id}", h.GetMember)
		r.Put("/{id}", h.UpdateMember)
		r.Delete("/{id}", h.DeleteMember)
	})
}

// ListMembers handles GET /admin/staff
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListMembers")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	members, err := h.repo.List(ctx)
	if err != nil {
		log.Error("cannot list staff members", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not list staff members")
		return
	}

	aqm.RespondCollection(w, members, "staff")
}

// CreateMember handles POST /admin/staff
func (h *Handler) CreateMember(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateMember")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	member, ok := h.decodeMemberPayload(w, r, log)
	if !ok {
		return
	}

	if member.Name == "" || member.Role == "" {
		aqm.RespondError(w, http.StatusBadRequest, "Name and role are required")
		return
	}

	member.BeforeCreate()

	if err := h.repo.Create(ctx, member); err != nil {
		log.Error("cannot create staff member", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not create staff member")
		return
	}

	links := aqm.RESTfulLinksFor(member)
	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, member, links...)
}

// GetMember handles GET /admin/staff/{id}
func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetMember")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	member, err := h.repo.Get(ctx, id)
	if err != nil || member == nil {
		log.Debug("staff member not found", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusNotFound, "Staff member not found")
		return
	}

	links := aqm.RESTfulLinksFor(member)
	aqm.RespondSuccess(w, member, links...)
}

// UpdateMember handles PUT /admin/staff/{id}
func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateMember")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	member, ok := h.decodeMemberPayload(w, r, log)
	if !ok {
		return
	}

	member.ID = id
	member.BeforeUpdate()

	if err := h.repo.Save(ctx, member); err != nil {
		log.Error("cannot update staff member", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update staff member")
		return
	}

	links := aqm.RESTfulLinksFor(member)
	aqm.RespondSuccess(w, member, links...)
}

// DeleteMember handles DELETE /admin/staff/{id}
func (h *Handler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteMember")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		log.Error("cannot delete staff member", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not delete staff member")
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
	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid id parameter", "id", idStr, "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decodeMemberPayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (*Member, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return nil, false
	}

	var member Member
	if err := json.Unmarshal(body, &member); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return nil, false
	}

	return &member, true
}
