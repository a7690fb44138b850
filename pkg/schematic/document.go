package schematic

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/geom"
)

// MinSupportedVersion is the oldest build document format we accept.
const MinSupportedVersion = 1

// Document is the loaded build output plus its layout overlay. The
// topology (Root) is regenerated by the build system; positions and
// the other overlay maps survive rebuilds and are merged back onto the
// fresh topology at load time.
type Document struct {
	Version          int
	Root             *Sheet
	Positions        map[string]Position
	PortSignalOrders map[string][]string
	RouteOverrides   map[string][]r2.Vec
}

// SheetByPath walks the hierarchy to the sheet with the given path.
// Returns nil when no such sheet exists.
func (d *Document) SheetByPath(path string) *Sheet {
	return findSheet(d.Root, path)
}

func findSheet(s *Sheet, path string) *Sheet {
	if s == nil {
		return nil
	}
	if s.Path == path {
		return s
	}
	for _, m := range s.Modules {
		if found := findSheet(m.Sheet, path); found != nil {
			return found
		}
	}
	return nil
}

// JSON wire format. Fields outside this shape are ignored on load and
// preserved by the merge-write in persist.go.

type documentJSON struct {
	Version          int                       `json:"version"`
	Root             *sheetJSON                `json:"root"`
	Positions        map[string]positionJSON   `json:"positions"`
	PortSignalOrders map[string][]string       `json:"portSignalOrders"`
	RouteOverrides   map[string][][]float64    `json:"routeOverrides"`
}

type sheetJSON struct {
	Name       string          `json:"name"`
	Modules    []moduleJSON    `json:"modules"`
	Components []componentJSON `json:"components"`
	Nets       []netJSON       `json:"nets"`
}

type moduleJSON struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Sheet     *sheetJSON         `json:"sheet"`
	Interface []interfacePinJSON `json:"interface"`
	Source    *sourceRefJSON     `json:"source"`
}

type interfacePinJSON struct {
	Name        string   `json:"name"`
	Side        string   `json:"side"`
	Signals     []string `json:"signals"`
	PassThrough bool     `json:"passThrough"`
}

type componentJSON struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Designator string         `json:"designator"`
	Reference  string         `json:"reference"`
	Family     string         `json:"family"`
	Variant    string         `json:"variant"`
	Package    string         `json:"package"`
	Polarity   string         `json:"polarity"`
	BodyWidth  float64        `json:"bodyWidth"`
	BodyHeight float64        `json:"bodyHeight"`
	Pins       []pinJSON      `json:"pins"`
	Source     *sourceRefJSON `json:"source"`
}

type pinJSON struct {
	Number     string  `json:"number"`
	Name       string  `json:"name"`
	Side       string  `json:"side"`
	Electrical string  `json:"electrical"`
	Category   string  `json:"category"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	BodyX      float64 `json:"bodyX"`
	BodyY      float64 `json:"bodyY"`
}

type netJSON struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type positionJSON struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	MirrorX  bool    `json:"mirrorX"`
	MirrorY  bool    `json:"mirrorY"`
}

type sourceRefJSON struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Address string `json:"address"`
}

// LoadDocument reads and parses a build document file.
func LoadDocument(filename string) (*Document, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer file.Close()

	return ParseDocument(file)
}

// ParseDocument parses a build document from an io.Reader. A missing
// root sheet is a hard load error; there is no legacy flat-list
// fallback.
func ParseDocument(r io.Reader) (*Document, error) {
	var raw documentJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	if raw.Version < MinSupportedVersion {
		return nil, fmt.Errorf("unsupported document version %d (minimum %d)", raw.Version, MinSupportedVersion)
	}
	if raw.Root == nil {
		return nil, fmt.Errorf("document has no root sheet")
	}

	root, err := buildSheet(raw.Root, "/")
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Version:          raw.Version,
		Root:             root,
		Positions:        make(map[string]Position),
		PortSignalOrders: raw.PortSignalOrders,
		RouteOverrides:   make(map[string][]r2.Vec),
	}
	if doc.PortSignalOrders == nil {
		doc.PortSignalOrders = make(map[string][]string)
	}

	// Positions come from the user-editable overlay: drop anything
	// non-finite silently instead of propagating it.
	for key, p := range raw.Positions {
		if !isFinite(p.X) || !isFinite(p.Y) || !isFinite(p.Rotation) {
			continue
		}
		doc.Positions[key] = Position{
			X:        p.X,
			Y:        p.Y,
			Rotation: geom.NormalizeRotation(p.Rotation),
			MirrorX:  p.MirrorX,
			MirrorY:  p.MirrorY,
		}
	}

	for key, pts := range raw.RouteOverrides {
		route := make([]r2.Vec, 0, len(pts))
		ok := true
		for _, pt := range pts {
			if len(pt) != 2 || !isFinite(pt[0]) || !isFinite(pt[1]) {
				ok = false
				break
			}
			route = append(route, r2.Vec{X: pt[0], Y: pt[1]})
		}
		if ok && len(route) >= 2 {
			doc.RouteOverrides[key] = route
		}
	}

	return doc, nil
}

func buildSheet(raw *sheetJSON, path string) (*Sheet, error) {
	sheet := &Sheet{
		Name: raw.Name,
		Path: path,
	}

	for i := range raw.Components {
		comp, err := buildComponent(&raw.Components[i])
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", path, err)
		}
		sheet.Components = append(sheet.Components, comp)
	}

	for i := range raw.Modules {
		rm := &raw.Modules[i]
		if rm.ID == "" {
			return nil, fmt.Errorf("sheet %s: module %q has no id", path, rm.Name)
		}
		mod := &Module{
			ID:     rm.ID,
			Name:   rm.Name,
			Source: buildSourceRef(rm.Source),
		}
		for _, ip := range rm.Interface {
			mod.Interface = append(mod.Interface, InterfacePin{
				Name:        ip.Name,
				Side:        geom.ParseSide(ip.Side),
				Signals:     ip.Signals,
				PassThrough: ip.PassThrough,
			})
		}
		if rm.Sheet != nil {
			child, err := buildSheet(rm.Sheet, path+rm.ID+"/")
			if err != nil {
				return nil, err
			}
			mod.Sheet = child
		}
		sheet.Modules = append(sheet.Modules, mod)
	}

	for i := range raw.Nets {
		rn := &raw.Nets[i]
		net := &Net{Name: rn.Name}
		for _, member := range rn.Members {
			ref, err := ParsePinRef(member)
			if err != nil {
				return nil, fmt.Errorf("sheet %s net %q: %w", path, rn.Name, err)
			}
			net.Members = append(net.Members, ref)
		}
		sheet.Nets = append(sheet.Nets, net)
	}

	return sheet, nil
}

func buildComponent(raw *componentJSON) (*Component, error) {
	if raw.ID == "" {
		return nil, fmt.Errorf("component %q has no id", raw.Designator)
	}

	comp := &Component{
		ID:         raw.ID,
		Name:       raw.Name,
		Designator: raw.Designator,
		Reference:  raw.Reference,
		Family:     raw.Family,
		Variant:    raw.Variant,
		Package:    raw.Package,
		Polarity:   Polarity(raw.Polarity),
		BodyWidth:  raw.BodyWidth,
		BodyHeight: raw.BodyHeight,
		Source:     buildSourceRef(raw.Source),
	}

	seen := make(map[string]bool, len(raw.Pins))
	for _, rp := range raw.Pins {
		if seen[rp.Number] {
			return nil, fmt.Errorf("component %s: duplicate pin number %q", raw.Designator, rp.Number)
		}
		seen[rp.Number] = true
		comp.Pins = append(comp.Pins, Pin{
			Number:     rp.Number,
			Name:       rp.Name,
			Side:       geom.ParseSide(rp.Side),
			Electrical: rp.Electrical,
			Category:   rp.Category,
			Offset:     r2.Vec{X: rp.X, Y: rp.Y},
			Body:       r2.Vec{X: rp.BodyX, Y: rp.BodyY},
		})
	}

	return comp, nil
}

func buildSourceRef(raw *sourceRefJSON) *SourceRef {
	if raw == nil {
		return nil
	}
	return &SourceRef{
		File:    raw.File,
		Line:    raw.Line,
		Column:  raw.Column,
		Address: raw.Address,
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
