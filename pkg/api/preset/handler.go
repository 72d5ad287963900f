// Package preset serves the loaded deal-template library.
package preset

import (
	"encoding/json"
	"net/http"

	corePreset "deal_engine/pkg/core/preset"
)

func cors(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

// HandleList returns all template IDs.
//
// GET /api/preset/list -> ["multifamily.value_add", ...]
func HandleList(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(corePreset.Get().List())
}

// HandleGet returns one template with its full DealInput.
//
// GET /api/preset/get?id=<template id> -> {DealTemplate}
func HandleGet(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id query parameter is required", http.StatusBadRequest)
		return
	}

	t, err := corePreset.Get().GetTemplate(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(t)
}
