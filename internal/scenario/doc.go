// Package scenario builds immutable simulation inputs.
//
// A Spec is the named, serializable description of an outbreak: population,
// seed infections, rates, output grid and an optional hygiene intervention.
// Spec.Build derives the initial compartments from it and returns a Scenario,
// which records every derived quantity as a Note so that policy choices stay
// visible next to the numbers they produced.
//
// Scenarios never change after construction. Accessors return copies.
package scenario
