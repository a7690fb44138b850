package glyph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/symbol"
)

func TestTuningStoreDefaults(t *testing.T) {
	s := NewTuningStore()

	// No overrides at all: identity tuning.
	tun := s.Tuning(symbol.FamilyResistor)
	assert.Zero(t, tun.BodyOffset)
	assert.Zero(t, tun.BodyRotationDeg)
	assert.Equal(t, 1.0, tun.BodyScale.X)
	assert.Equal(t, 1.0, tun.BodyScale.Y)
	assert.Zero(t, tun.LeadDelta)

	// Static layer seeds the inductor lead delta.
	assert.Equal(t, 0.15, s.Tuning(symbol.FamilyInductor).LeadDelta)
}

func TestTuningStoreRevisionAndNotify(t *testing.T) {
	s := NewTuningStore()
	start := s.Revision()

	calls := 0
	id := s.Subscribe(func() { calls++ })

	s.SetOverride(symbol.FamilyResistor, Override{BodyRotationDeg: ptr(45)})
	assert.Equal(t, start+1, s.Revision())
	assert.Equal(t, 1, calls)
	assert.Equal(t, 45.0, s.Tuning(symbol.FamilyResistor).BodyRotationDeg)

	s.ClearOverride(symbol.FamilyResistor)
	assert.Equal(t, start+2, s.Revision())
	assert.Equal(t, 2, calls)
	assert.Zero(t, s.Tuning(symbol.FamilyResistor).BodyRotationDeg)

	// Clearing an absent override is a no-op: no revision bump, no
	// notification.
	s.ClearOverride(symbol.FamilyResistor)
	assert.Equal(t, start+2, s.Revision())
	assert.Equal(t, 2, calls)

	s.Unsubscribe(id)
	s.SetOverride(symbol.FamilyCapacitor, Override{LeadDelta: ptr(0.1)})
	assert.Equal(t, 2, calls, "unsubscribed listener must not fire")
}

func TestTuningStoreLayerPrecedence(t *testing.T) {
	s := NewTuningStore()

	// Runtime layer sits above the static inductor override.
	s.SetOverride(symbol.FamilyInductor, Override{LeadDelta: ptr(0.3)})
	assert.Equal(t, 0.3, s.Tuning(symbol.FamilyInductor).LeadDelta)

	s.ClearOverride(symbol.FamilyInductor)
	assert.Equal(t, 0.15, s.Tuning(symbol.FamilyInductor).LeadDelta)
}

func TestTuningStoreSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.toml")
	snapshot := `
[resistor]
bodyOffsetX = 1.5
bodyRotationDeg = 90.0

[inductor]
leadDelta = 0.25

[no_such_family]
bodyOffsetX = 9.0

[led]
bodyScaleX = nan
bodyScaleY = 2.0
`
	require.NoError(t, os.WriteFile(path, []byte(snapshot), 0o644))

	s := NewTuningStore()
	before := s.Revision()
	require.NoError(t, s.LoadSnapshot(path))
	assert.Equal(t, before+1, s.Revision())

	tun := s.Tuning(symbol.FamilyResistor)
	assert.Equal(t, 1.5, tun.BodyOffset.X)
	assert.Equal(t, 90.0, tun.BodyRotationDeg)

	// File layer overrides static.
	assert.Equal(t, 0.25, s.Tuning(symbol.FamilyInductor).LeadDelta)

	// Non-finite values are dropped, finite siblings still apply.
	led := s.Tuning(symbol.FamilyLED)
	assert.Equal(t, 1.0, led.BodyScale.X)
	assert.Equal(t, 2.0, led.BodyScale.Y)

	// Runtime still wins over the snapshot.
	s.SetOverride(symbol.FamilyResistor, Override{BodyOffsetX: ptr(-4)})
	assert.Equal(t, -4.0, s.Tuning(symbol.FamilyResistor).BodyOffset.X)
}

func TestTuningStoreSnapshotMissingFile(t *testing.T) {
	s := NewTuningStore()
	err := s.LoadSnapshot(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
