// Package core provides the trajectory import pipeline.
//
// This package holds all domain logic, independent of any UI or transport
// layer. The web server, the trajplot CLI and tests use it unchanged.
//
// # Architecture
//
// An import flows through a fixed chain:
//
//  1. A [Source] yields decoded CSV text ([TextSource], [ReaderSource], [FileSource])
//  2. [Parser.Parse] splits lines with [ParseLine], checks the header row
//     for the [Kind] and coerces cells with [ParseValue]
//  3. [PhysicsValidator.Validate] reports time-ordering, finiteness and
//     speed-of-light findings without rejecting the data
//  4. [Normalize] recenters and rescales coordinates
//  5. [Adapter] commits the [Trajectory] and notifies listeners
//
// # Trajectory Kinds
//
//   - deterministic: t, x, y, z, vx, vy, vz from an RK4 integration
//   - quantiles: t plus <dim>_q<NN> columns, at least x_q50, y_q50, z_q50
//   - monte-carlo: t, x, y, z per simulation; every import appends a run
//
// Columns a kind does not know, GKSC scores for instance, travel unmodified
// in [Point.Extra].
//
// # Usage
//
//	adapter, err := core.NewAdapter(core.DefaultOptions(), slog.Default())
//	if err != nil {
//	    return err
//	}
//	adapter.On(core.EventTrajectoryLoaded, func(ev core.Event) error {
//	    fmt.Println("loaded", ev.Points, "points")
//	    return nil
//	})
//	res, err := adapter.ImportDeterministic(ctx, core.FileSource("run.csv", 0))
//
// # Error Handling
//
// Import-aborting problems are typed errors (see errors.go); row-level
// problems are collected in [ParseResult] and physics findings in
// [ValidationReport]. [MapError] turns any error into a [UserMessage] with a
// support code:
//
//   - TRJ001-TRJ005: trajectory errors (empty, schema, quantiles, kind, physics)
//   - SRC001-SRC003: source errors (read, size, missing)
//   - REQ001-REQ002: request cancelled or timed out
package core
