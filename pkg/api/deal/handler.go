// Package deal exposes the underwriting engine over HTTP.
package deal

import (
	"encoding/json"
	"fmt"
	"net/http"

	coreDeal "deal_engine/pkg/core/deal"
)

// HandleUnderwrite runs a full deal model.
//
// POST /api/deal/underwrite  {DealInput} -> {DealResult}
//
// Validation failures come back inside the result body (HTTP 200) so the
// calling form can render them inline; only malformed JSON is a 400.
func HandleUnderwrite(w http.ResponseWriter, r *http.Request) {
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

	var input coreDeal.DealInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := coreDeal.Underwrite(input)
	if result.Failed() {
		fmt.Printf("[DEAL] %q rejected: %d validation errors\n", input.Name, len(result.Errors))
	} else {
		fmt.Printf("[DEAL] %q underwritten: IRR converged=%v, %d warnings\n", input.Name, result.Metrics.IRR.Converged, len(result.Warnings))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
