// Package analysis inspects finished trajectories.
//
//   - [Summarize]: peaks, final size, conservation and per-compartment statistics
//   - [MaxDifference]: compare two runs on their shared output times
//   - [Sweep], [SweepHygiene]: vary one input and record the outbreak peak
//   - [NewPhasePortrait]: project a trajectory onto two compartments
//
// Nothing here integrates on its own except the sweeps, which drive
// [sim.Simulator] once per parameter value.
package analysis
