// Package lod precomputes and selects level-of-detail variants of a mesh.
// Level 0 is the original geometry; levels 1 and 2 are simplified to 50%
// and 25% of the original triangle count. Selection is a pure function of
// viewer distance and the model's characteristic size.
package lod

import (
	"log/slog"
	"math"

	"github.com/echolmy/vtkmesh/pkg/mesh"
)

// Level orders detail variants: lower index, higher detail.
type Level int

const (
	Level0 Level = iota // original geometry
	Level1              // simplified to 50%
	Level2              // simplified to 25%
)

// Threshold returns the base switching distance for the level, before size
// normalization. The lowest-detail level never expires.
func (l Level) Threshold() float32 {
	switch l {
	case Level0:
		return 15
	case Level1:
		return 30
	default:
		return float32(math.Inf(1))
	}
}

// Levels lists every level in increasing-distance order.
func Levels() []Level {
	return []Level{Level0, Level1, Level2}
}

var levelRatios = map[Level]float32{Level1: 0.5, Level2: 0.25}

// LevelMesh is one precomputed detail variant plus the renderable handle
// the presentation layer built for it.
type LevelMesh struct {
	Geometry      *mesh.Geometry
	Handle        any
	TriangleCount int
}

// HandleFunc builds an opaque renderable handle for one level's geometry.
// It runs once per level at manager construction.
type HandleFunc func(level Level, g *mesh.Geometry) any

// Manager holds the detail variants of one model and tracks which one is
// active. All levels are built eagerly at construction; a level whose
// simplification fails is simply absent and selection skips it.
type Manager struct {
	levels  map[Level]*LevelMesh
	current Level
	center  mesh.Vec3
	size    float32
}

// NewManager builds all detail levels from g. build may be nil when no
// renderable handles are needed.
func NewManager(g *mesh.Geometry, build HandleFunc) (*Manager, error) {
	if g == nil || g.IsEmpty() {
		return nil, mesh.ErrMissingData("no geometry to build detail levels from")
	}

	center, size := g.Bounds()
	m := &Manager{
		levels:  make(map[Level]*LevelMesh),
		current: Level0,
		center:  center,
		size:    size,
	}
	m.addLevel(Level0, g.Clone(), build)

	for _, level := range []Level{Level1, Level2} {
		simplified, err := Simplify(g, levelRatios[level])
		if err != nil {
			slog.Warn("detail level unavailable", "level", int(level), "err", err)
			continue
		}
		m.addLevel(level, simplified, build)
	}
	return m, nil
}

func (m *Manager) addLevel(level Level, g *mesh.Geometry, build HandleFunc) {
	lm := &LevelMesh{Geometry: g, TriangleCount: g.TriangleCount()}
	if build != nil {
		lm.Handle = build(level, g)
	}
	m.levels[level] = lm
}

// Center returns the model's bounding-box center.
func (m *Manager) Center() mesh.Vec3 { return m.center }

// Size returns the model's characteristic size (bounding-box diagonal).
func (m *Manager) Size() float32 { return m.size }

// Current returns the active level.
func (m *Manager) Current() Level { return m.current }

// Mesh returns the variant stored for level.
func (m *Manager) Mesh(level Level) (*LevelMesh, bool) {
	lm, ok := m.levels[level]
	return lm, ok
}

// CurrentMesh returns the active variant.
func (m *Manager) CurrentMesh() (*LevelMesh, bool) {
	return m.Mesh(m.current)
}

// sizeFactor normalizes distance thresholds by model size: small models
// hold detail longer, large models shed it sooner.
func (m *Manager) sizeFactor() float32 {
	if m.size < 5 {
		if f := m.size / 5; f > 0.3 {
			return f
		}
		return 0.3
	}
	if f := m.size / 10; f > 1 {
		return f
	}
	return 1
}

// SelectByDistance returns the most detailed available level whose scaled
// threshold still covers the given distance.
func (m *Manager) SelectByDistance(distance float32) Level {
	factor := m.sizeFactor()
	for _, level := range Levels() {
		if _, ok := m.levels[level]; !ok {
			continue
		}
		if distance <= level.Threshold()*factor {
			return level
		}
	}
	return Level2
}

// Update recomputes the selection for the given distance. It reports true
// when the active level changed, so the caller can swap the mesh handle
// and reapply color mapping.
func (m *Manager) Update(distance float32) bool {
	next := m.SelectByDistance(distance)
	if next == m.current {
		return false
	}
	slog.Debug("detail level switched",
		"from", int(m.current), "to", int(next), "distance", distance, "size", m.size)
	m.current = next
	return true
}
