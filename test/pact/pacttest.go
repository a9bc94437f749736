//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "nursery-api"
	ConsumerName = "garden-portal"

	StateCatalogBaseline = "catalog baseline"
	StatePlantExists     = "plant with id plant_pact exists"
	StatePlantMissing    = "no plant with id plant_ghost"
)

const (
	ExistingPlantID = "plant_pact"
	MissingPlantID  = "plant_ghost"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the garden portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExamplePlantPayload provides stable test data for pact interactions.
func ExamplePlantPayload() map[string]any {
	return map[string]any{
		"plantId":  ExistingPlantID,
		"name":     "Pact Peace Lily",
		"type":     "Houseplant",
		"price":    "18.50",
		"quantity": 7,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
