package glyph

import (
	"fmt"
	"math"
	"os"

	"github.com/BurntSushi/toml"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/symbol"
)

// Override is a partial tuning: nil fields leave the computed default
// untouched. Override values come from user-editable sources, so every
// numeric field is validated before use and dropped silently when
// non-finite.
type Override struct {
	BodyOffsetX     *float64 `toml:"bodyOffsetX"`
	BodyOffsetY     *float64 `toml:"bodyOffsetY"`
	BodyRotationDeg *float64 `toml:"bodyRotationDeg"`
	BodyScaleX      *float64 `toml:"bodyScaleX"`
	BodyScaleY      *float64 `toml:"bodyScaleY"`
	LeadDelta       *float64 `toml:"leadDelta"`
}

// staticOverrides are the compiled-in per-family adjustments, the
// lowest-priority override layer.
var staticOverrides = map[symbol.Family]Override{
	symbol.FamilyInductor: {LeadDelta: ptr(0.15)},
	symbol.FamilyLED:      {BodyRotationDeg: ptr(0.0)},
}

func ptr(v float64) *float64 { return &v }

// TuningStore is the process-wide revisioned tuning state. It is
// injected into the render layer rather than accessed as a global so
// independent views (and tests) never share state by accident.
//
// All mutation happens on the UI thread; the contract is mutate, then
// synchronously notify. There is no locking.
type TuningStore struct {
	revision uint64

	static  map[symbol.Family]Override
	file    map[symbol.Family]Override
	runtime map[symbol.Family]Override

	listeners  map[int]func()
	nextListID int
}

// NewTuningStore returns a store seeded with the compiled-in static
// overrides.
func NewTuningStore() *TuningStore {
	s := &TuningStore{
		static:    make(map[symbol.Family]Override),
		file:      make(map[symbol.Family]Override),
		runtime:   make(map[symbol.Family]Override),
		listeners: make(map[int]func()),
	}
	for fam, o := range staticOverrides {
		s.static[fam] = o
	}
	return s
}

// LoadSnapshot reads a TOML tuning-override snapshot. Snapshots are an
// explicit opt-in (development flag); default behavior stays
// deterministic without one. Sections are keyed by family name.
func (s *TuningStore) LoadSnapshot(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read tuning snapshot: %w", err)
	}

	var raw map[string]Override
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse tuning snapshot: %w", err)
	}

	for name, o := range raw {
		fam := symbol.ParseFamily(name)
		if fam == symbol.FamilyNone {
			continue
		}
		s.file[fam] = o
	}

	s.bump()
	return nil
}

// SetOverride installs a runtime override for one family and notifies
// subscribers.
func (s *TuningStore) SetOverride(fam symbol.Family, o Override) {
	s.runtime[fam] = o
	s.bump()
}

// ClearOverride removes the runtime override for one family.
func (s *TuningStore) ClearOverride(fam symbol.Family) {
	if _, ok := s.runtime[fam]; !ok {
		return
	}
	delete(s.runtime, fam)
	s.bump()
}

// Revision returns the monotonically increasing change counter.
// Consumers memoize per-family tuning keyed by this value.
func (s *TuningStore) Revision() uint64 {
	return s.revision
}

// Subscribe registers a change listener and returns its id.
func (s *TuningStore) Subscribe(fn func()) int {
	s.nextListID++
	s.listeners[s.nextListID] = fn
	return s.nextListID
}

// Unsubscribe removes a listener by id.
func (s *TuningStore) Unsubscribe(id int) {
	delete(s.listeners, id)
}

func (s *TuningStore) bump() {
	s.revision++
	for _, fn := range s.listeners {
		fn()
	}
}

// Tuning returns the effective tuning for a family: computed defaults
// merged under static, snapshot, and runtime overrides, in that order.
func (s *TuningStore) Tuning(fam symbol.Family) Tuning {
	t := Tuning{BodyScale: r2.Vec{X: 1, Y: 1}}
	for _, layer := range []map[symbol.Family]Override{s.static, s.file, s.runtime} {
		if o, ok := layer[fam]; ok {
			applyOverride(&t, o)
		}
	}
	return t
}

func applyOverride(t *Tuning, o Override) {
	if v, ok := finite(o.BodyOffsetX); ok {
		t.BodyOffset.X = v
	}
	if v, ok := finite(o.BodyOffsetY); ok {
		t.BodyOffset.Y = v
	}
	if v, ok := finite(o.BodyRotationDeg); ok {
		t.BodyRotationDeg = v
	}
	if v, ok := finite(o.BodyScaleX); ok {
		t.BodyScale.X = v
	}
	if v, ok := finite(o.BodyScaleY); ok {
		t.BodyScale.Y = v
	}
	if v, ok := finite(o.LeadDelta); ok {
		t.LeadDelta = v
	}
}

func finite(p *float64) (float64, bool) {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0, false
	}
	return *p, true
}
