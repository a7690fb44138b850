package schematic

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestMergeWriteOverlayPreservesForeignKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "design.otsch.json")

	existing := `{
		"version": 1,
		"root": {"name": "main"},
		"buildInfo": {"generator": "ato", "hash": "abc123"},
		"positions": {
			"/:old": {"x": 2.54, "y": 0, "rotation": 0}
		}
	}`
	if err := os.WriteFile(path, []byte(existing), 0o644); err != nil {
		t.Fatal(err)
	}

	doc := &Document{
		Positions: map[string]Position{
			"/:r1": {X: 5.08, Y: 7.62, Rotation: 90},
		},
		PortSignalOrders: map[string][]string{
			"/:i2c": {"SCL", "SDA"},
		},
	}

	if err := MergeWriteOverlay(path, doc); err != nil {
		t.Fatalf("Merge write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	// Keys the overlay does not own must survive the write.
	if _, ok := out["buildInfo"]; !ok {
		t.Error("Expected buildInfo to be preserved")
	}
	if _, ok := out["root"]; !ok {
		t.Error("Expected root to be preserved")
	}

	var positions map[string]positionJSON
	if err := json.Unmarshal(out["positions"], &positions); err != nil {
		t.Fatal(err)
	}
	if _, ok := positions["/:old"]; !ok {
		t.Error("Expected foreign position key to be preserved")
	}
	if p, ok := positions["/:r1"]; !ok || p.X != 5.08 {
		t.Errorf("Expected merged position for /:r1, got %+v", p)
	}

	var orders map[string][]string
	if err := json.Unmarshal(out["portSignalOrders"], &orders); err != nil {
		t.Fatal(err)
	}
	if len(orders["/:i2c"]) != 2 {
		t.Errorf("Expected i2c signal order, got %v", orders["/:i2c"])
	}
}

func TestMergeWriteOverlayNewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fresh.otsch.json")

	doc := &Document{
		Positions: map[string]Position{"/:x": {X: 2.54}},
	}
	if err := MergeWriteOverlay(path, doc); err != nil {
		t.Fatalf("Merge write to new file failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if _, ok := out["positions"]; !ok {
		t.Error("Expected positions in fresh file")
	}
}
