package collision

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/cullcore/bounding"
	"go.viam.com/cullcore/logging"
)

// Options controls how a Manager builds and caches trees.
type Options struct {
	BoundType      bounding.Type
	MaxTrisPerLeaf int
	// TrunkDepth is how many levels from the root keep their bounds when leaves are rebuilt.
	TrunkDepth int
	Sort       bool
	// CacheSize bounds the number of unprotected trees kept. Zero means no bound.
	CacheSize int
	// Clock stamps cache entries. Defaults to the wall clock.
	Clock clock.Clock
}

// DefaultOptions returns AABB trees with eight triangles per leaf, sorted on build, with up to 64
// cached trees.
func DefaultOptions() Options {
	return Options{
		BoundType:      bounding.TypeAABB,
		MaxTrisPerLeaf: 8,
		Sort:           true,
		CacheSize:      64,
	}
}

type cacheEntry struct {
	tree     *Tree
	lastUsed time.Time
}

// A Manager builds collision trees on demand and caches them per mesh. When the cache is full the least
// recently used tree that is not protected is dropped. The cache itself is safe for concurrent use, but
// queries refresh the world bounds stored in a tree, so a tree returned by a Manager, or the picking
// helpers over the same mesh, must not be used from more than one goroutine at a time.
type Manager struct {
	mu        sync.Mutex
	opts      Options
	clock     clock.Clock
	logger    logging.Logger
	trees     map[Mesh]*cacheEntry
	protected map[Mesh]struct{}
}

// NewManager returns a Manager with an empty cache.
func NewManager(opts Options, logger logging.Logger) *Manager {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Manager{
		opts:      opts,
		clock:     clk,
		logger:    logger,
		trees:     map[Mesh]*cacheEntry{},
		protected: map[Mesh]struct{}{},
	}
}

// Options returns the options the manager builds trees with.
func (m *Manager) Options() Options {
	return m.opts
}

// GetTree returns the cached tree for mesh, building and caching one if there is none.
func (m *Manager) GetTree(mesh Mesh) *Tree {
	if mesh == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.trees[mesh]; ok {
		entry.lastUsed = m.clock.Now()
		return entry.tree
	}
	return m.generateTree(mesh, false)
}

// GenerateTree builds a new tree for mesh and caches it, replacing any previous one. A protected tree
// is never evicted.
func (m *Manager) GenerateTree(mesh Mesh, protect bool) *Tree {
	if mesh == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generateTree(mesh, protect)
}

func (m *Manager) generateTree(mesh Mesh, protect bool) *Tree {
	start := m.clock.Now()
	tree := NewTree(m.opts.BoundType, m.opts.MaxTrisPerLeaf)
	tree.Construct(mesh, m.opts.Sort)
	m.logger.Debugw("built collision tree",
		"triangles", mesh.TriangleCount(),
		"bound", m.opts.BoundType,
		"duration", m.clock.Since(start))

	m.trees[mesh] = &cacheEntry{tree: tree, lastUsed: m.clock.Now()}
	if protect {
		m.protected[mesh] = struct{}{}
	}
	m.evict(mesh)
	return tree
}

// evict drops least recently used unprotected trees until the cache fits, never dropping keep.
func (m *Manager) evict(keep Mesh) {
	if m.opts.CacheSize <= 0 {
		return
	}
	for m.unprotectedCount() > m.opts.CacheSize {
		candidates := lo.Filter(lo.Keys(m.trees), func(mesh Mesh, _ int) bool {
			_, isProtected := m.protected[mesh]
			return !isProtected && mesh != keep
		})
		if len(candidates) == 0 {
			return
		}
		oldest := lo.MinBy(candidates, func(a, b Mesh) bool {
			return m.trees[a].lastUsed.Before(m.trees[b].lastUsed)
		})
		delete(m.trees, oldest)
		m.logger.Debugw("evicted collision tree", "triangles", oldest.TriangleCount(), "cached", len(m.trees))
	}
}

func (m *Manager) unprotectedCount() int {
	return lo.CountBy(lo.Keys(m.trees), func(mesh Mesh) bool {
		_, isProtected := m.protected[mesh]
		return !isProtected
	})
}

// RemoveTree drops the tree for mesh from the cache, along with its protection.
func (m *Manager) RemoveTree(mesh Mesh) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.trees, mesh)
	delete(m.protected, mesh)
}

// UpdateTree refits the cached tree of mesh after the listed triangles moved. It fails when mesh has no
// cached tree.
func (m *Manager) UpdateTree(mesh Mesh, changedTriangles []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.trees[mesh]
	if !ok {
		return errors.New("no collision tree for mesh")
	}
	entry.lastUsed = m.clock.Now()

	positions := entry.tree.positionsOf(changedTriangles)
	if left := entry.tree.RebuildLeaves(positions, m.opts.TrunkDepth); len(left) > 0 {
		m.logger.Warnw("changed triangles fell outside every leaf", "positions", left)
	}
	return nil
}

// Protect keeps the tree of mesh in the cache until Unprotect or RemoveTree.
func (m *Manager) Protect(mesh Mesh) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.protected[mesh] = struct{}{}
}

// Unprotect makes the tree of mesh evictable again.
func (m *Manager) Unprotect(mesh Mesh) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.protected, mesh)
	m.evict(nil)
}

// IsProtected reports whether mesh is protected from eviction.
func (m *Manager) IsProtected(mesh Mesh) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.protected[mesh]
	return ok
}

// Contains reports whether a tree for mesh is cached.
func (m *Manager) Contains(mesh Mesh) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.trees[mesh]
	return ok
}

// Len returns the number of cached trees.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.trees)
}
