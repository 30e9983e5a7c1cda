package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/keygate/internal/common"
	"github.com/dmitrijs2005/keygate/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type registerRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	AdminSecret string `json:"admin_secret"`
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.deps.Users.Register(r.Context(), req.Username, req.Password, req.AdminSecret)
	if err != nil {
		writeServiceError(w, err, details{common.ErrForbidden: "Invalid admin secret"})
		return
	}

	h.deps.Metrics.RecordRegistration(u.IsAdmin)
	writeJSON(w, http.StatusCreated, u.View())
}

func (h *handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.Users.List(r.Context(), identityFrom(r.Context()))
	if err != nil {
		h.logIfInternal(r, err)
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, models.Views(list))
}

func (h *handlers) promote(w http.ResponseWriter, r *http.Request) {
	u, err := h.deps.Users.Promote(r.Context(), identityFrom(r.Context()), chi.URLParam(r, "username"))
	if err != nil {
		h.logIfInternal(r, err)
		writeServiceError(w, err, details{common.ErrAlreadyInState: "User is already an admin"})
		return
	}
	writeJSON(w, http.StatusOK, u.View())
}

func (h *handlers) demote(w http.ResponseWriter, r *http.Request) {
	u, err := h.deps.Users.Demote(r.Context(), identityFrom(r.Context()), chi.URLParam(r, "username"))
	if err != nil {
		h.logIfInternal(r, err)
		writeServiceError(w, err, details{common.ErrAlreadyInState: "User is already regular"})
		return
	}
	writeJSON(w, http.StatusOK, u.View())
}

func (h *handlers) logIfInternal(r *http.Request, err error) {
	if status, _ := classify(err); status == http.StatusInternalServerError {
		h.log.Error(r.Context(), "request failed", "request_id", requestIDFrom(r.Context()), "error", err)
	}
}
