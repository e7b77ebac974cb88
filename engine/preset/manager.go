package preset

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/artur0sky/sonantica-sub003/engine/eq"
)

// Manager owns the preset catalog. Built-ins are process-lifetime and
// immutable; custom presets are created by Save, replaced wholesale by
// Restore, and deleted explicitly. Safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	log      *logrus.Logger
	builtins []Preset
	customs  []Preset
}

// NewManager creates a catalog populated with the built-in presets.
// A nil logger falls back to the logrus standard logger.
func NewManager(log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Manager{
		log:      log,
		builtins: builtins(),
	}
}

// Get returns a deep copy of the preset with the given id.
func (m *Manager) Get(id string) (Preset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, ok := m.lookup(id); ok {
		return p.clone(), true
	}

	return Preset{}, false
}

func (m *Manager) lookup(id string) (Preset, bool) {
	for _, p := range m.builtins {
		if p.ID == id {
			return p, true
		}
	}

	for _, p := range m.customs {
		if p.ID == id {
			return p, true
		}
	}

	return Preset{}, false
}

// List returns deep copies of all presets, built-ins first, customs in
// creation order.
func (m *Manager) List() []Preset {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Preset, 0, len(m.builtins)+len(m.customs))
	for _, p := range m.builtins {
		out = append(out, p.clone())
	}

	for _, p := range m.customs {
		out = append(out, p.clone())
	}

	return out
}

// Save validates the band set and appends a new custom preset with a
// generated id, returning a copy of the stored preset.
func (m *Manager) Save(name, description string, bands []eq.Band, preampDB float64) (Preset, error) {
	if err := eq.ValidateBands(bands); err != nil {
		return Preset{}, fmt.Errorf("preset: save %q: %w", name, err)
	}

	p := Preset{
		ID:          newID(),
		Name:        name,
		Description: description,
		Bands:       eq.CloneBands(bands),
		PreampDB:    preampDB,
	}

	m.mu.Lock()
	m.customs = append(m.customs, p)
	m.mu.Unlock()

	return p.clone(), nil
}

// Delete removes a custom preset. Deleting a built-in fails with
// ErrBuiltInPreset and leaves the catalog unchanged.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.builtins {
		if p.ID == id {
			return fmt.Errorf("preset: delete %q: %w", id, ErrBuiltInPreset)
		}
	}

	for i, p := range m.customs {
		if p.ID == id {
			m.customs = append(m.customs[:i], m.customs[i+1:]...)
			return nil
		}
	}

	return fmt.Errorf("preset: delete %q: %w", id, ErrUnknownPreset)
}

// Restore replaces the custom catalog wholesale, typically from
// persisted user data. Invalid presets are dropped and logged, not
// fatal; ids colliding with built-ins are dropped as well.
func (m *Manager) Restore(list []Preset) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.customs = m.customs[:0]

	for _, p := range list {
		if err := p.Validate(); err != nil {
			m.log.WithError(err).WithField("preset", p.ID).Warn("dropping invalid custom preset")
			continue
		}

		if _, exists := m.lookupBuiltin(p.ID); exists {
			m.log.WithField("preset", p.ID).Warn("dropping custom preset shadowing a built-in")
			continue
		}

		p.BuiltIn = false
		m.customs = append(m.customs, p.clone())
	}
}

func (m *Manager) lookupBuiltin(id string) (Preset, bool) {
	for _, p := range m.builtins {
		if p.ID == id {
			return p, true
		}
	}

	return Preset{}, false
}

// ActiveBands resolves the currently active band set: custom bands if
// present, else the bands of the current preset, else nil. The result
// is always a private copy.
func (m *Manager) ActiveBands(presetID string, custom []eq.Band) []eq.Band {
	if custom != nil {
		return eq.CloneBands(custom)
	}

	if presetID == "" {
		return nil
	}

	if p, ok := m.Get(presetID); ok {
		return p.Bands
	}

	return nil
}

// newID generates a collision-resistant custom preset id.
func newID() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic("preset: id generation: " + err.Error())
	}

	return "custom-" + hex.EncodeToString(buf[:])
}
