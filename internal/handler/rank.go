package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lmguild/lootkeeper/internal/logger"
	"github.com/lmguild/lootkeeper/internal/rank"
)

// HandleListRanks returns the rank ladder, most senior first
func HandleListRanks(svc rank.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ranks, err := svc.List(r.Context())
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to list ranks", "error", err)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, DataResponse{Data: ranks})
	}
}

// HandleGetRank returns one rank
func HandleGetRank(svc rank.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rk, err := svc.GetByID(r.Context(), chi.URLParam(r, "rankID"))
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, DataResponse{Data: rk})
	}
}

// HandleSaveRank creates or replaces a rank
func HandleSaveRank(svc rank.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req rank.SaveInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode save rank request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
			return
		}
		if err := GetValidator().ValidateStruct(req); err != nil {
			log.Warn("Invalid save rank request", "error", err)
			respondJSON(w, http.StatusBadRequest, map[string]any{"errors": FormatValidationError(err)})
			return
		}

		rk, err := svc.Save(r.Context(), req)
		if err != nil {
			log.Error("Failed to save rank", "error", err, "rank", req.ID)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, DataResponse{Data: rk})
	}
}

// HandleDeleteRank removes a rank
func HandleDeleteRank(svc rank.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rankID := chi.URLParam(r, "rankID")
		if err := svc.Delete(r.Context(), rankID); err != nil {
			logger.FromContext(r.Context()).Error("Failed to delete rank", "error", err, "rank", rankID)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "Rank deleted"})
	}
}
