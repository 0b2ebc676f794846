// Package search provides generic uninformed and informed search algorithms
// over any Problem.
//
// It exposes two main entry points:
//
//   - Run (or the individual algorithms): search to completion and get a Result.
//   - Stepper: iterate a best-first search one expansion at a time to drive UIs
//     or debugging tools.
//
// Every algorithm is a graph search: states are de-duplicated by the key the
// problem projects them onto, not by the full state value. Best-first search
// uses a worker pool to generate and score successors while a single
// orchestrator owns the frontier.
package search
