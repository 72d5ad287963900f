// Package scenario persists and retrieves saved deal inputs.
package scenario

import (
	"encoding/json"
	"fmt"
	"net/http"

	coreDeal "deal_engine/pkg/core/deal"
	"deal_engine/pkg/core/store"
)

var repo *store.ScenarioRepo

// InitHandler wires the repository. Call after store.InitDB.
func InitHandler() {
	repo = store.NewScenarioRepo()
}

type saveRequest struct {
	ID    string             `json:"id,omitempty"` // Empty mints a new scenario
	Name  string             `json:"name"`
	Input coreDeal.DealInput `json:"input"`
}

func cors(w http.ResponseWriter, r *http.Request, methods string) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

// HandleSave upserts a scenario.
//
// POST /api/scenario/save  {id?, name, input} -> {Scenario}
func HandleSave(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "POST") {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "scenario name is required", http.StatusBadRequest)
		return
	}

	saved, err := repo.Save(r.Context(), req.Name, req.Input, req.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	fmt.Printf("[SCENARIO] Saved %q (%s)\n", saved.Name, saved.ID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(saved)
}

// HandleGet loads a scenario by id.
//
// GET /api/scenario/get?id=<uuid> -> {Scenario}
func HandleGet(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "GET") {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id query parameter is required", http.StatusBadRequest)
		return
	}

	s, err := repo.Load(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s)
}

// HandleList returns summaries of all saved scenarios.
//
// GET /api/scenario/list -> [{id, name, updated_at}]
func HandleList(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "GET") {
		return
	}

	list, err := repo.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// HandleDelete removes a scenario.
//
// POST /api/scenario/delete?id=<uuid>
func HandleDelete(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "POST") {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id query parameter is required", http.StatusBadRequest)
		return
	}

	if err := repo.Delete(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	fmt.Printf("[SCENARIO] Deleted %s\n", id)
	w.WriteHeader(http.StatusNoContent)
}
