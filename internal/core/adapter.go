package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thibequation/trajectory/internal/units"
)

// Options configures an Adapter.
type Options struct {
	// ValidatePhysics runs the physical-consistency checks on every import.
	ValidatePhysics bool
	// StrictPhysics turns a non-valid report into a *PhysicsError.
	StrictPhysics bool
	// AutoNormalize recenters and rescales points after parsing.
	AutoNormalize bool
	// Interpolate is reserved; the parser does not resample.
	Interpolate bool
	// MaxPoints is the soft cap on accepted rows per import.
	MaxPoints int
	// SupportedTypes restricts which kinds may be imported.
	SupportedTypes []Kind
	// VelocityUnit is the unit of vx, vy, vz in deterministic files.
	VelocityUnit string
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		ValidatePhysics: true,
		StrictPhysics:   false,
		AutoNormalize:   true,
		Interpolate:     false,
		MaxPoints:       DefaultMaxPoints,
		SupportedTypes:  append([]Kind(nil), AllKinds...),
		VelocityUnit:    units.MPS,
	}
}

// MetadataSet is the metadata of every stored sequence.
type MetadataSet struct {
	Deterministic *Metadata  `json:"deterministic"`
	Quantiles     *Metadata  `json:"quantiles"`
	MonteCarlo    []Metadata `json:"monteCarlo"`
}

// Adapter imports trajectory files and owns the resulting sequences:
// one deterministic run, one quantile envelope and an append-only list of
// Monte-Carlo runs.
//
// Imports read their source without holding any lock and commit under a
// write lock, so a failed import never touches stored state. Concurrent
// imports are not ordered; callers that care must serialize them.
type Adapter struct {
	opts      Options
	parser    *Parser
	physics   *PhysicsValidator
	logger    *slog.Logger
	events    *eventBus
	supported map[Kind]bool

	now   func() time.Time
	newID func() string

	mu            sync.RWMutex
	deterministic *Trajectory
	quantiles     *Trajectory
	monteCarlo    []*Trajectory
	stats         *Statistics
	errors        []ImportError
}

// NewAdapter creates an adapter. A nil logger uses slog.Default().
func NewAdapter(opts Options, logger *slog.Logger) (*Adapter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "trajectory_adapter")

	physics, err := NewPhysicsValidator(opts.VelocityUnit)
	if err != nil {
		return nil, err
	}

	if len(opts.SupportedTypes) == 0 {
		opts.SupportedTypes = append([]Kind(nil), AllKinds...)
	}
	supported := make(map[Kind]bool, len(opts.SupportedTypes))
	for _, k := range opts.SupportedTypes {
		if !k.Valid() {
			return nil, &UnsupportedKindError{Kind: k}
		}
		supported[k] = true
	}

	parser := NewParser(opts.MaxPoints)
	opts.MaxPoints = parser.MaxPoints
	opts.VelocityUnit = physics.Unit

	return &Adapter{
		opts:      opts,
		parser:    parser,
		physics:   physics,
		logger:    logger,
		events:    newEventBus(logger),
		supported: supported,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}, nil
}

// Options returns the effective configuration.
func (a *Adapter) Options() Options {
	opts := a.opts
	opts.SupportedTypes = append([]Kind(nil), a.opts.SupportedTypes...)
	return opts
}

// On registers a listener. It reports false for an unknown event type.
func (a *Adapter) On(t EventType, fn Listener) bool {
	return a.events.on(t, fn)
}

// ImportDeterministic imports an RK4 run, replacing the stored one.
func (a *Adapter) ImportDeterministic(ctx context.Context, src Source) (*ImportResult, error) {
	return a.Import(ctx, KindDeterministic, src)
}

// ImportQuantiles imports a quantile envelope, replacing the stored one.
func (a *Adapter) ImportQuantiles(ctx context.Context, src Source) (*ImportResult, error) {
	return a.Import(ctx, KindQuantiles, src)
}

// ImportMonteCarlo imports one simulation run and appends it to the list.
func (a *Adapter) ImportMonteCarlo(ctx context.Context, src Source) (*ImportResult, error) {
	return a.Import(ctx, KindMonteCarlo, src)
}

// Import reads src, parses it as kind, validates, normalizes and commits
// the result. On failure the error is logged, recorded, emitted as
// onTrajectoryError and returned; stored sequences are left as they were.
func (a *Adapter) Import(ctx context.Context, kind Kind, src Source) (*ImportResult, error) {
	if src == nil {
		return nil, a.fail(kind, "", ErrNoSource)
	}
	name := src.Name()

	if !a.supported[kind] {
		return nil, a.fail(kind, name, &UnsupportedKindError{Kind: kind})
	}

	content, err := src.Read(ctx)
	if err != nil {
		return nil, a.fail(kind, name, err)
	}

	parsed, err := a.parser.Parse(content, kind)
	if err != nil {
		var empty *EmptyInputError
		if errors.As(err, &empty) {
			empty.Source = name
		}
		return nil, a.fail(kind, name, err)
	}

	logger := a.logger.With("type", string(kind), "source", name)
	for _, w := range parsed.Warnings {
		logger.Warn("import warning", "warning", w)
	}

	result := &ImportResult{
		Kind:            kind,
		SimulationIndex: -1,
		Warnings:        parsed.Warnings,
		Skipped:         parsed.Skipped,
	}

	points := parsed.Points

	if a.opts.ValidatePhysics {
		report := a.physics.Validate(points, kind)
		result.Report = &report
		if !report.Valid {
			logger.Warn("physical validation found issues",
				"issues", len(report.Issues),
				"first", firstMessages(report, 5),
			)
		}
		a.events.emit(Event{
			Type:   EventValidationComplete,
			Kind:   kind,
			Source: name,
			Report: &report,
		})
		if !report.Valid && a.opts.StrictPhysics {
			return nil, a.fail(kind, name, &PhysicsError{Kind: kind, Report: report})
		}
	}

	if a.opts.Interpolate {
		logger.Debug("interpolation requested but not supported; points kept as sampled")
	}

	if a.opts.AutoNormalize {
		points = Normalize(points)
	}

	tr := &Trajectory{
		ID:         a.newID(),
		Kind:       kind,
		Source:     name,
		Points:     points,
		Metadata:   buildMetadata(kind, parsed, points),
		Report:     result.Report,
		ImportedAt: a.now(),
	}
	result.Trajectory = tr

	simulations := a.commit(tr)
	if kind == KindMonteCarlo {
		result.SimulationIndex = simulations - 1
	}

	logger.Info("trajectory imported",
		"id", tr.ID,
		"points", tr.Metadata.PointCount,
		"skipped", tr.Metadata.SkippedRows,
		"truncated", tr.Metadata.Truncated,
	)

	md := tr.Metadata
	ev := Event{
		Type:         EventTrajectoryLoaded,
		Kind:         kind,
		Source:       name,
		TrajectoryID: tr.ID,
		Points:       md.PointCount,
		Metadata:     &md,
	}
	if kind == KindMonteCarlo {
		ev.Simulation = simulations
	}
	a.events.emit(ev)

	return result, nil
}

// commit stores tr and invalidates cached statistics. It returns the
// Monte-Carlo list length after the commit.
func (a *Adapter) commit(tr *Trajectory) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch tr.Kind {
	case KindDeterministic:
		a.deterministic = tr
	case KindQuantiles:
		a.quantiles = tr
	case KindMonteCarlo:
		a.monteCarlo = append(a.monteCarlo, tr)
	}
	a.stats = nil
	return len(a.monteCarlo)
}

// fail records err and broadcasts it. It returns err for convenience.
func (a *Adapter) fail(kind Kind, source string, err error) error {
	a.mu.Lock()
	a.errors = append(a.errors, ImportError{Kind: kind, Source: source, Err: err, At: a.now()})
	a.mu.Unlock()

	a.logger.Warn("trajectory import failed",
		"type", string(kind),
		"source", source,
		"error", err,
		"code", MapError(err).Code,
	)

	a.events.emit(Event{
		Type:   EventTrajectoryError,
		Kind:   kind,
		Source: source,
		Err:    err,
	})
	return err
}

// Deterministic returns the stored deterministic run, or nil.
func (a *Adapter) Deterministic() *Trajectory {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.deterministic
}

// Quantiles returns the stored quantile envelope, or nil.
func (a *Adapter) Quantiles() *Trajectory {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.quantiles
}

// MonteCarlo returns every stored simulation run in import order.
func (a *Adapter) MonteCarlo() []*Trajectory {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]*Trajectory(nil), a.monteCarlo...)
}

// MonteCarloAt returns the run at index.
func (a *Adapter) MonteCarloAt(index int) (*Trajectory, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if index < 0 || index >= len(a.monteCarlo) {
		return nil, false
	}
	return a.monteCarlo[index], true
}

// Metadata returns the metadata of the stored sequence of kind. For
// monte-carlo it is the most recently imported run. Nil if none is stored.
func (a *Adapter) Metadata(kind Kind) *Metadata {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var tr *Trajectory
	switch kind {
	case KindDeterministic:
		tr = a.deterministic
	case KindQuantiles:
		tr = a.quantiles
	case KindMonteCarlo:
		if n := len(a.monteCarlo); n > 0 {
			tr = a.monteCarlo[n-1]
		}
	}
	if tr == nil {
		return nil
	}
	md := tr.Metadata.clone()
	return &md
}

// AllMetadata returns the metadata of every stored sequence.
func (a *Adapter) AllMetadata() MetadataSet {
	a.mu.RLock()
	defer a.mu.RUnlock()

	set := MetadataSet{MonteCarlo: make([]Metadata, 0, len(a.monteCarlo))}
	if a.deterministic != nil {
		md := a.deterministic.Metadata.clone()
		set.Deterministic = &md
	}
	if a.quantiles != nil {
		md := a.quantiles.Metadata.clone()
		set.Quantiles = &md
	}
	for _, run := range a.monteCarlo {
		set.MonteCarlo = append(set.MonteCarlo, run.Metadata.clone())
	}
	return set
}

// Statistics returns a copy of the aggregate summary, computing it on first
// use after an import or Reset.
func (a *Adapter) Statistics() Statistics {
	a.mu.RLock()
	stats := a.stats
	a.mu.RUnlock()
	if stats != nil {
		return stats.clone()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stats == nil {
		a.stats = calculateStatistics(a.deterministic, a.quantiles, a.monteCarlo)
	}
	return a.stats.clone()
}

// Errors returns the failed imports since the last Reset.
func (a *Adapter) Errors() []ImportError {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]ImportError(nil), a.errors...)
}

// Reset discards every stored sequence, the error log and cached
// statistics. Listeners stay registered.
func (a *Adapter) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.deterministic = nil
	a.quantiles = nil
	a.monteCarlo = nil
	a.stats = nil
	a.errors = nil

	a.logger.Info("trajectory state reset")
}

func firstMessages(r ValidationReport, n int) []string {
	msgs := r.Messages()
	if len(msgs) > n {
		msgs = msgs[:n]
	}
	return msgs
}

// String describes the adapter state for logs.
func (a *Adapter) String() string {
	s := a.Statistics()
	return fmt.Sprintf("Adapter{deterministic: %v, quantiles: %v, monteCarlo: %d}",
		s.HasDeterministic, s.HasQuantiles, s.MonteCarloCount)
}
