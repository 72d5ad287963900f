// Package waterfall exposes the distribution engine directly, for callers
// that bring their own cash-flow series (e.g. the syndication calculator's
// custom-events mode).
package waterfall

import (
	"encoding/json"
	"fmt"
	"net/http"

	coreWaterfall "deal_engine/pkg/core/waterfall"
)

type runResponse struct {
	Errors []string                          `json:"errors,omitempty"`
	Result *coreWaterfall.DistributionResult `json:"result,omitempty"`
}

// HandleRun distributes a cash-flow series through a waterfall.
//
// POST /api/waterfall/run  {waterfall.Input} -> {errors | result}
func HandleRun(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input coreWaterfall.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	result, err := coreWaterfall.Distribute(input)
	if err != nil {
		// Configuration errors are structured results, not 500s: the UI
		// renders them next to the tier table.
		fmt.Printf("[WATERFALL] rejected: %v\n", err)
		json.NewEncoder(w).Encode(runResponse{Errors: []string{err.Error()}})
		return
	}

	fmt.Printf("[WATERFALL] distributed %d events: LP EM %.2fx\n", len(input.Events), result.LP.EquityMultiple)
	json.NewEncoder(w).Encode(runResponse{Result: result})
}
