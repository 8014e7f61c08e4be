// Package engine holds the stock and flow collections of a compiled
// model and runs the discrete-time simulation.
//
// A Model is built once (stocks and flows appended in declaration
// order), validated once, and read-only thereafter. Each Run owns a
// fresh State, the only mutable entity; a validated Model is safely
// shared by concurrent runs, but concurrent construction of one Model
// requires external synchronization.
//
// Determinism invariants:
//   - Stock order never changes after construction (rendering order).
//   - Flow order never changes after construction; each round applies
//     flows in reverse insertion order.
//   - Within a round, removals hit the live state immediately while
//     additions are deferred and committed after every flow has been
//     processed, so fan-in and source/destination overlap cannot double
//     count. Pending additions still reserve destination capacity, so a
//     finite-maximum stock never ends a round above its maximum.
package engine
