package schematic

import (
	"encoding/json"
	"fmt"
	"os"
)

// MergeWriteOverlay merges the document's layout overlay (positions,
// port signal orders, route overrides) into the on-disk document at
// filename. Keys already present in the file that this document does
// not know about are preserved: this is a merge, not an overwrite, so
// overlays written by other views or newer tools survive.
func MergeWriteOverlay(filename string, doc *Document) error {
	raw := make(map[string]json.RawMessage)

	if data, err := os.ReadFile(filename); err == nil {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("existing document is not valid JSON: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read existing document: %w", err)
	}

	positions := make(map[string]positionJSON)
	if prev, ok := raw["positions"]; ok {
		// Foreign position keys stay untouched.
		if err := json.Unmarshal(prev, &positions); err != nil {
			return fmt.Errorf("existing positions are malformed: %w", err)
		}
	}
	for key, p := range doc.Positions {
		positions[key] = positionJSON{
			X:        p.X,
			Y:        p.Y,
			Rotation: p.Rotation,
			MirrorX:  p.MirrorX,
			MirrorY:  p.MirrorY,
		}
	}
	if err := setRaw(raw, "positions", positions); err != nil {
		return err
	}

	if len(doc.PortSignalOrders) > 0 {
		orders := make(map[string][]string)
		if prev, ok := raw["portSignalOrders"]; ok {
			if err := json.Unmarshal(prev, &orders); err != nil {
				return fmt.Errorf("existing port signal orders are malformed: %w", err)
			}
		}
		for key, order := range doc.PortSignalOrders {
			orders[key] = order
		}
		if err := setRaw(raw, "portSignalOrders", orders); err != nil {
			return err
		}
	}

	if len(doc.RouteOverrides) > 0 {
		routes := make(map[string][][]float64)
		if prev, ok := raw["routeOverrides"]; ok {
			if err := json.Unmarshal(prev, &routes); err != nil {
				return fmt.Errorf("existing route overrides are malformed: %w", err)
			}
		}
		for key, route := range doc.RouteOverrides {
			pts := make([][]float64, 0, len(route))
			for _, p := range route {
				pts = append(pts, []float64{p.X, p.Y})
			}
			routes[key] = pts
		}
		if err := setRaw(raw, "routeOverrides", routes); err != nil {
			return err
		}
	}

	out, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	if err := os.WriteFile(filename, out, 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	return nil
}

func setRaw(raw map[string]json.RawMessage, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	raw[key] = data
	return nil
}
