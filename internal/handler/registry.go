package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lmguild/lootkeeper/internal/logger"
	"github.com/lmguild/lootkeeper/internal/registry"
)

// HandleSubmitRegistry runs the full loot submission workflow. The caller
// identity comes from the admin gate; a failed notification still returns
// 201 with notified=false.
func HandleSubmitRegistry(svc registry.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req registry.SubmitInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode registry submission", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
			return
		}
		if req.AuthorID == "" {
			req.AuthorID = AdminIDFromRequest(r)
		}
		if err := GetValidator().ValidateStruct(req); err != nil {
			log.Warn("Invalid registry submission", "error", err)
			respondJSON(w, http.StatusBadRequest, map[string]any{"errors": FormatValidationError(err)})
			return
		}

		result, err := svc.Submit(r.Context(), req)
		if err != nil {
			log.Error("Failed to submit registry", "error", err, "member", req.MemberID)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, result)
	}
}

// HandleGetRegistry returns one registry with its frozen lines
func HandleGetRegistry(svc registry.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reg, err := svc.GetByID(r.Context(), chi.URLParam(r, "registryID"))
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, DataResponse{Data: reg})
	}
}

// HeaderAdminID carries the acting admin's identity on mutating requests.
const HeaderAdminID = "X-Admin-ID"

// AdminIDFromRequest reads the acting admin's identity header.
func AdminIDFromRequest(r *http.Request) string {
	return r.Header.Get(HeaderAdminID)
}
