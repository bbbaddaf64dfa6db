package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lmguild/lootkeeper/internal/logger"
	"github.com/lmguild/lootkeeper/internal/member"
	"github.com/lmguild/lootkeeper/internal/registry"
)

// HandleListMembers returns the roster. With ?q= it narrows to a
// name-prefix search.
func HandleListMembers(svc member.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			members any
			err     error
		)
		if q := r.URL.Query().Get("q"); q != "" {
			members, err = svc.Search(r.Context(), q)
		} else {
			members, err = svc.List(r.Context())
		}
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to list members", "error", err)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, DataResponse{Data: members})
	}
}

// HandleGetMember returns one member profile
func HandleGetMember(svc member.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := svc.GetByID(r.Context(), chi.URLParam(r, "memberID"))
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, DataResponse{Data: m})
	}
}

// HandleSaveMember creates or updates a member profile
func HandleSaveMember(svc member.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req member.SaveInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode save member request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
			return
		}
		if err := GetValidator().ValidateStruct(req); err != nil {
			log.Warn("Invalid save member request", "error", err)
			respondJSON(w, http.StatusBadRequest, map[string]any{"errors": FormatValidationError(err)})
			return
		}

		m, err := svc.Save(r.Context(), req)
		if err != nil {
			log.Error("Failed to save member", "error", err, "name", req.Name)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, DataResponse{Data: m})
	}
}

// HandleDeleteMember removes a member and their inventory
func HandleDeleteMember(svc member.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID := chi.URLParam(r, "memberID")
		if err := svc.Delete(r.Context(), memberID); err != nil {
			logger.FromContext(r.Context()).Error("Failed to delete member", "error", err, "member", memberID)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "Member deleted"})
	}
}

// HandleGetMemberRegistries lists a member's registry history
func HandleGetMemberRegistries(svc registry.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		regs, err := svc.ListByMember(r.Context(), chi.URLParam(r, "memberID"))
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to list member registries", "error", err)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, DataResponse{Data: regs})
	}
}
