package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lmguild/lootkeeper/internal/catalog"
	"github.com/lmguild/lootkeeper/internal/inventory"
	"github.com/lmguild/lootkeeper/internal/logger"
)

// HandleListItems returns the full catalog
func HandleListItems(svc catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to list items", "error", err)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, DataResponse{Data: items})
	}
}

// HandleGetItem returns one catalog item
func HandleGetItem(svc catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := svc.GetByID(r.Context(), chi.URLParam(r, "itemID"))
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, DataResponse{Data: item})
	}
}

// HandleCreateItem adds a new catalog item
func HandleCreateItem(svc catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req catalog.SaveInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode create item request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
			return
		}
		if err := GetValidator().ValidateStruct(req); err != nil {
			log.Warn("Invalid create item request", "error", err)
			respondJSON(w, http.StatusBadRequest, map[string]any{"errors": FormatValidationError(err)})
			return
		}

		item, err := svc.Create(r.Context(), req)
		if err != nil {
			log.Error("Failed to create item", "error", err, "name", req.Name)
			respondServiceError(w, err)
			return
		}

		log.Info("Item created", "item", item.ID)
		respondJSON(w, http.StatusCreated, DataResponse{Data: item})
	}
}

// HandleUpdateItem replaces an item's attributes
func HandleUpdateItem(svc catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		itemID := chi.URLParam(r, "itemID")

		var req catalog.SaveInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode update item request", "error", err)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
			return
		}
		if err := GetValidator().ValidateStruct(req); err != nil {
			log.Warn("Invalid update item request", "error", err)
			respondJSON(w, http.StatusBadRequest, map[string]any{"errors": FormatValidationError(err)})
			return
		}

		item, err := svc.Update(r.Context(), itemID, req)
		if err != nil {
			log.Error("Failed to update item", "error", err, "item", itemID)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, DataResponse{Data: item})
	}
}

// HandleDeleteItem removes an item from the catalog
func HandleDeleteItem(svc catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID := chi.URLParam(r, "itemID")
		if err := svc.Delete(r.Context(), itemID); err != nil {
			logger.FromContext(r.Context()).Error("Failed to delete item", "error", err, "item", itemID)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "Item deleted"})
	}
}

// HandleGetItemOwners lists the members currently holding an item
func HandleGetItemOwners(svc inventory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owners, err := svc.GetItemOwners(r.Context(), chi.URLParam(r, "itemID"))
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, DataResponse{Data: owners})
	}
}
