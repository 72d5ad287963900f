package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	apiDeal "deal_engine/pkg/api/deal"
	apiPreset "deal_engine/pkg/api/preset"
	apiScenario "deal_engine/pkg/api/scenario"
	apiWaterfall "deal_engine/pkg/api/waterfall"
	"deal_engine/pkg/core/preset"
	"deal_engine/pkg/core/store"
)

// EngineConfig mirrors config/engine.yaml.
type EngineConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	PresetsDir string `yaml:"presets_dir"`
}

func main() {
	// Load environment variables
	godotenv.Load()

	cfg := EngineConfig{
		ListenAddr: ":8080",
		PresetsDir: "resources/presets",
	}
	if data, err := os.ReadFile("config/engine.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			fmt.Printf("[WARNING] Failed to parse config/engine.yaml: %v\n", err)
		}
	} else {
		fmt.Println("[CONFIG] config/engine.yaml not found, using defaults")
	}

	// Preset library (optional resource)
	if err := preset.LoadFromDirectory(cfg.PresetsDir); err != nil {
		fmt.Printf("[WARNING] Failed to load preset library: %v\n", err)
		fmt.Println("  Preset endpoints will serve an empty list")
	} else {
		fmt.Printf("[PRESET] Loaded %d templates from %s\n", preset.Get().Count(), cfg.PresetsDir)
	}

	// Scenario persistence (optional: engine runs without a database)
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(context.Background()); err != nil {
			fmt.Printf("[WARNING] Database init failed: %v\n", err)
		} else {
			defer store.Close()
			fmt.Println("[STORE] Scenario persistence enabled")
		}
	} else {
		fmt.Println("[STORE] DATABASE_URL not set; scenario endpoints disabled")
	}
	apiScenario.InitHandler()

	// Underwriting endpoints
	http.HandleFunc("/api/deal/underwrite", apiDeal.HandleUnderwrite)

	// Waterfall endpoints
	http.HandleFunc("/api/waterfall/run", apiWaterfall.HandleRun)

	// Scenario endpoints
	http.HandleFunc("/api/scenario/save", apiScenario.HandleSave)
	http.HandleFunc("/api/scenario/get", apiScenario.HandleGet)
	http.HandleFunc("/api/scenario/list", apiScenario.HandleList)
	http.HandleFunc("/api/scenario/delete", apiScenario.HandleDelete)

	// Preset endpoints
	http.HandleFunc("/api/preset/list", apiPreset.HandleList)
	http.HandleFunc("/api/preset/get", apiPreset.HandleGet)

	fmt.Printf("API server starting on %s...\n", cfg.ListenAddr)
	fmt.Println("  - POST /api/deal/underwrite")
	fmt.Println("  - POST /api/waterfall/run")
	fmt.Println("  - POST /api/scenario/save")
	fmt.Println("  - GET  /api/scenario/get")
	fmt.Println("  - GET  /api/scenario/list")
	fmt.Println("  - POST /api/scenario/delete")
	fmt.Println("  - GET  /api/preset/list")
	fmt.Println("  - GET  /api/preset/get")

	if err := http.ListenAndServe(cfg.ListenAddr, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
