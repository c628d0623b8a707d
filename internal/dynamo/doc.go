// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// simulation of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for autonomous or time-dependent ODE systems (dX/dt = f(X, t))
//   - [Integrator]: fixed-step numerical integrator
//   - [AdaptiveIntegrator]: error-controlled integrator with dense output
//   - [Grid]: ordered output time points
//
// # Errors
//
// Invalid inputs are reported as [*InvalidParameterError] before any
// integration work starts. Solver failures are reported as
// [*IntegrationError]; a failed run never yields a partial trajectory.
//
// # Thread Safety
//
// Integrators may keep scratch buffers and are NOT thread-safe. Use one
// integrator per goroutine.
package dynamo
