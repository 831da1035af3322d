package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrNoLoader is returned when no registered loader handles a file's extension
// and the server has no fallback loader.
var ErrNoLoader = errors.New("assets: no loader for extension")

type LoadState int

const (
	NotLoaded LoadState = iota
	Loading
	Loaded
	Failed
)

func (s LoadState) String() string {
	switch s {
	case NotLoaded:
		return "not_loaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("LoadState(%d)", int(s))
}

type entry struct {
	value  any
	state  LoadState
	err    error
	deps   []AssetPath
	labels []string
}

// Server loads files from an fs.FS through registered loaders and stores the
// resulting assets by handle. It is safe for concurrent use.
type Server struct {
	source   fs.FS
	logger   *slog.Logger
	fallback Loader

	mu      sync.RWMutex
	loaders map[string]Loader
	assets  map[uuid.UUID]*entry
	gens    map[string]uint64
	// waits[a][b] counts loads of a currently waiting on b
	waits map[string]map[string]int

	flight singleflight.Group
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFallbackLoader sets the loader used for extensions nothing is
// registered for.
func WithFallbackLoader(l Loader) Option {
	return func(s *Server) {
		s.fallback = l
	}
}

func NewServer(source fs.FS, opts ...Option) *Server {
	s := &Server{
		source:  source,
		logger:  slog.Default(),
		loaders: make(map[string]Loader),
		assets:  make(map[uuid.UUID]*entry),
		gens:    make(map[string]uint64),
		waits:   make(map[string]map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register makes l the loader for each of its extensions.
func (s *Server) Register(l Loader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ext := range l.Extensions() {
		s.loaders[strings.ToLower(strings.TrimPrefix(ext, "."))] = l
	}
}

func (s *Server) loaderFor(p AssetPath) Loader {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.loaders[p.Ext()]; ok {
		return l
	}
	return s.fallback
}

// Load loads the asset at p, unless it is already loaded, together with all
// of its dependencies. p may carry a label to address a sub-asset.
func (s *Server) Load(ctx context.Context, p string) (UntypedHandle, error) {
	ap := ParseAssetPath(p)
	if err := s.ensureLoaded(ctx, ap.WithoutLabel()); err != nil {
		return UntypedHandle{}, err
	}
	h := NewUntypedHandle(ap)
	if s.State(h) != Loaded {
		return UntypedHandle{}, fmt.Errorf("assets: %s has no labeled asset %q", ap.Path, ap.Label)
	}
	return h, nil
}

// Reload starts a fresh load of p even if it is already loaded. The previous
// asset stays available until the new one is committed. When several loads
// of the same file overlap, only the most recently started one is kept.
func (s *Server) Reload(ctx context.Context, p string) error {
	return s.load(ctx, ParseAssetPath(p).WithoutLabel())
}

// Tracked reports whether p has been requested from the server before.
func (s *Server) Tracked(p AssetPath) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.assets[NewUntypedHandle(p.WithoutLabel()).ID()]
	return ok
}

func (s *Server) State(h UntypedHandle) LoadState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.assets[h.ID()]; ok {
		return e.state
	}
	return NotLoaded
}

// Err returns the error of the last failed load of h.
func (s *Server) Err(h UntypedHandle) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.assets[h.ID()]; ok {
		return e.err
	}
	return nil
}

// Dependencies returns the dependency paths reported by h's loader.
func (s *Server) Dependencies(h UntypedHandle) []AssetPath {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.assets[h.ID()]; ok {
		return slices.Clone(e.deps)
	}
	return nil
}

// Get returns the loaded asset behind h. It reports false if the asset is not
// loaded or is not a T.
func Get[T any](s *Server, h Handle[T]) (T, bool) {
	var zero T
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.assets[h.ID()]
	if !ok || e.value == nil {
		return zero, false
	}
	v, ok := e.value.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

type loadChainKey struct{}

func withLoadChain(ctx context.Context, p AssetPath) context.Context {
	chain, _ := ctx.Value(loadChainKey{}).([]string)
	return context.WithValue(ctx, loadChainKey{}, append(slices.Clone(chain), p.Path))
}

func inLoadChain(ctx context.Context, p AssetPath) bool {
	chain, _ := ctx.Value(loadChainKey{}).([]string)
	return slices.Contains(chain, p.Path)
}

func loadingParent(ctx context.Context) (string, bool) {
	chain, _ := ctx.Value(loadChainKey{}).([]string)
	if len(chain) == 0 {
		return "", false
	}
	return chain[len(chain)-1], true
}

// ensureLoaded loads p unless it is loaded already. A load that is in flight
// is shared with every caller asking for the same path; it runs detached from
// the caller that started it, so one caller giving up does not fail the
// others.
func (s *Server) ensureLoaded(ctx context.Context, p AssetPath) error {
	if inLoadChain(ctx, p) {
		// a dependency cycle; the file is already being loaded further up
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	h := NewUntypedHandle(p)
	if s.State(h) == Loaded {
		return nil
	}
	if parent, ok := loadingParent(ctx); ok {
		if !s.addWait(parent, p.Path) {
			// waiting would close a cycle with another load in flight
			return nil
		}
		defer s.removeWait(parent, p.Path)
	}

	detached := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(p.Path, func() (any, error) {
		if s.State(h) == Loaded {
			return nil, nil
		}
		return nil, s.load(detached, p)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// addWait records that the load of from waits on the load of to. It refuses,
// and records nothing, when to already waits on from through other loads.
func (s *Server) addWait(from, to string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.waitsOn(to, from, make(map[string]bool)) {
		return false
	}
	if s.waits[from] == nil {
		s.waits[from] = make(map[string]int)
	}
	s.waits[from][to]++
	return true
}

func (s *Server) removeWait(from, to string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits[from][to]--
	if s.waits[from][to] == 0 {
		delete(s.waits[from], to)
	}
	if len(s.waits[from]) == 0 {
		delete(s.waits, from)
	}
}

// waitsOn reports whether from reaches to in the wait graph. s.mu must be
// held.
func (s *Server) waitsOn(from, to string, seen map[string]bool) bool {
	if from == to {
		return true
	}
	if seen[from] {
		return false
	}
	seen[from] = true
	for next := range s.waits[from] {
		if s.waitsOn(next, to, seen) {
			return true
		}
	}
	return false
}

func (s *Server) load(ctx context.Context, p AssetPath) error {
	gen := s.begin(p)
	logger := s.logger.With("asset", p.String())

	if err := ctx.Err(); err != nil {
		return s.fail(p, gen, err)
	}

	data, err := fs.ReadFile(s.source, p.Path)
	if err != nil {
		return s.fail(p, gen, fmt.Errorf("assets: read %s: %w", p, err))
	}

	loader := s.loaderFor(p)
	if loader == nil {
		return s.fail(p, gen, fmt.Errorf("%w %q (%s)", ErrNoLoader, p.Ext(), p))
	}

	lc := NewLoadContext(p, logger)
	loaded, err := loader.Load(ctx, data, lc)
	if err != nil {
		return s.fail(p, gen, fmt.Errorf("assets: load %s: %w", p, err))
	}

	deps := dedupePaths(loaded.Dependencies)
	g, gctx := errgroup.WithContext(withLoadChain(ctx, p))
	for _, dep := range deps {
		g.Go(func() error {
			return s.ensureLoaded(gctx, dep.WithoutLabel())
		})
	}
	if err := g.Wait(); err != nil {
		return s.fail(p, gen, fmt.Errorf("assets: load %s: dependency: %w", p, err))
	}

	s.commit(p, gen, loaded, lc.labeled, logger)
	logger.Debug("asset loaded", "dependencies", len(deps))
	return nil
}

func (s *Server) begin(p AssetPath) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[p.Path]++
	id := NewUntypedHandle(p).ID()
	if _, ok := s.assets[id]; !ok {
		s.assets[id] = &entry{state: Loading}
	}
	return s.gens[p.Path]
}

func (s *Server) fail(p AssetPath, gen uint64, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[p.Path] != gen {
		return err
	}
	e := s.assets[NewUntypedHandle(p).ID()]
	e.err = err
	if e.value == nil {
		e.state = Failed
	}
	return err
}

func (s *Server) commit(p AssetPath, gen uint64, loaded *LoadedAsset, labeled map[string]any, logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[p.Path] != gen {
		logger.Debug("discarding superseded load", "generation", gen)
		return
	}

	id := NewUntypedHandle(p).ID()
	if old, ok := s.assets[id]; ok {
		for _, label := range old.labels {
			delete(s.assets, NewUntypedHandle(p.WithLabel(label)).ID())
		}
	}

	labels := make([]string, 0, len(labeled))
	for label, v := range labeled {
		labels = append(labels, label)
		s.assets[NewUntypedHandle(p.WithLabel(label)).ID()] = &entry{value: v, state: Loaded}
	}
	slices.Sort(labels)

	s.assets[id] = &entry{
		value:  loaded.Value,
		state:  Loaded,
		deps:   slices.Clone(loaded.Dependencies),
		labels: labels,
	}
}

func dedupePaths(paths []AssetPath) []AssetPath {
	seen := make(map[string]struct{}, len(paths))
	out := make([]AssetPath, 0, len(paths))
	for _, p := range paths {
		key := p.WithoutLabel().Path
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}
