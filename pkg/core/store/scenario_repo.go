package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"deal_engine/pkg/core/deal"
)

// ScenarioRepo handles storage of saved deal inputs.
type ScenarioRepo struct{}

// NewScenarioRepo creates a new repository instance.
func NewScenarioRepo() *ScenarioRepo {
	return &ScenarioRepo{}
}

// Scenario is a saved DealInput with identity and timestamps.
type Scenario struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Input     deal.DealInput `json:"input"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ScenarioSummary is the listing row (no input payload).
type ScenarioSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Schema assumption:
//
//	CREATE TABLE IF NOT EXISTS deal_scenarios (
//	  id UUID PRIMARY KEY,
//	  name TEXT NOT NULL,
//	  input_json JSONB NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL
//	);

// Save persists a scenario, minting an ID when absent. It uses an upsert
// strategy based on the scenario ID and returns the stored record.
func (r *ScenarioRepo) Save(ctx context.Context, name string, input deal.DealInput, id string) (*Scenario, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid scenario id %q: %w", id, err)
	}

	jsonData, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal deal input: %w", err)
	}

	now := time.Now()
	query := `
		INSERT INTO deal_scenarios (id, name, input_json, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			input_json = EXCLUDED.input_json,
			updated_at = EXCLUDED.updated_at;
	`
	if _, err := pool.Exec(ctx, query, id, name, jsonData, now); err != nil {
		return nil, fmt.Errorf("failed to save scenario: %w", err)
	}

	return &Scenario{ID: id, Name: name, Input: input, UpdatedAt: now}, nil
}

// Load retrieves a scenario by ID.
func (r *ScenarioRepo) Load(ctx context.Context, id string) (*Scenario, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT name, input_json, updated_at FROM deal_scenarios WHERE id = $1`

	var (
		name      string
		jsonData  []byte
		updatedAt time.Time
	)
	err := pool.QueryRow(ctx, query, id).Scan(&name, &jsonData, &updatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no scenario found for id %s", id)
		}
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}

	var input deal.DealInput
	if err := json.Unmarshal(jsonData, &input); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scenario input: %w", err)
	}

	return &Scenario{ID: id, Name: name, Input: input, UpdatedAt: updatedAt}, nil
}

// List returns summaries of all saved scenarios, most recent first.
func (r *ScenarioRepo) List(ctx context.Context) ([]ScenarioSummary, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT id, name, updated_at FROM deal_scenarios ORDER BY updated_at DESC`

	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer rows.Close()

	var out []ScenarioSummary
	for rows.Next() {
		var s ScenarioSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scenario row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a scenario by ID.
func (r *ScenarioRepo) Delete(ctx context.Context, id string) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	tag, err := pool.Exec(ctx, `DELETE FROM deal_scenarios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no scenario found for id %s", id)
	}
	return nil
}
