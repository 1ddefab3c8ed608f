// Package simulation provides a multi-tick test harness for validating
// statistical properties of the synthesis pipeline.
//
// The harness exercises the real Synthesizer stack, Aggregator, RollAPI,
// and SessionStore — no mocks. Scenarios are Go builders that run
// configurable sequences of simulation ticks and intuition checks against
// a seeded RNG stream, capturing every sample for property-based
// assertions (rate convergence, refractory gaps, montage determinism,
// state distributions).
//
// Each test gets an isolated SQLite database via t.TempDir() and a
// sandboxed HOME to prevent touching user data.
//
// Usage:
//
//	func TestPoissonRateConvergence(t *testing.T) {
//	    r := simulation.NewRunner(t, 42)
//	    result := r.Run(simulation.Scenario{
//	        Name:  "poisson-convergence",
//	        Ticks: []simulation.Tick{...},
//	    })
//	    simulation.AssertMeanRateNear(t, result, 20.0, 2.0)
//	}
package simulation
