package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lmguild/lootkeeper/internal/inventory"
	"github.com/lmguild/lootkeeper/internal/logger"
)

// HandleSearchInventories returns priced statements. ?q= matches member
// names and held item names; empty returns every member.
func HandleSearchInventories(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statements, err := svc.SearchStatements(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to search inventories", "error", err)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, DataResponse{Data: statements})
	}
}

// HandleGetMemberInventory returns one member's priced statement
func HandleGetMemberInventory(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stmt, err := svc.GetStatement(r.Context(), chi.URLParam(r, "memberID"))
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, DataResponse{Data: stmt})
	}
}

// AdjustEntryRequest is a manual correction to one inventory entry
type AdjustEntryRequest struct {
	ItemID string `json:"item_id" validate:"required"`
	Delta  int    `json:"delta" validate:"required"`
}

// AdjustEntryResponse reports the quantity left after the correction
type AdjustEntryResponse struct {
	ItemID    string `json:"item_id"`
	Remaining int    `json:"remaining"`
}

// HandleAdjustEntry applies a manual inventory correction
func HandleAdjustEntry(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		memberID := chi.URLParam(r, "memberID")

		var req AdjustEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode adjust entry request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
			return
		}
		if err := GetValidator().ValidateStruct(req); err != nil {
			log.Warn("Invalid adjust entry request", "error", err)
			respondJSON(w, http.StatusBadRequest, map[string]any{"errors": FormatValidationError(err)})
			return
		}

		remaining, err := svc.AdjustEntry(r.Context(), memberID, req.ItemID, req.Delta)
		if err != nil {
			log.Error("Failed to adjust entry", "error", err, "member", memberID, "item", req.ItemID)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, AdjustEntryResponse{ItemID: req.ItemID, Remaining: remaining})
	}
}

// HandleClearMemberInventory removes everything a member holds
func HandleClearMemberInventory(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID := chi.URLParam(r, "memberID")
		if err := svc.ClearMemberInventory(r.Context(), memberID); err != nil {
			logger.FromContext(r.Context()).Error("Failed to clear inventory", "error", err, "member", memberID)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "Inventory cleared"})
	}
}
