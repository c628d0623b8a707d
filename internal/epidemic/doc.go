// Package epidemic defines the SEIR compartmental model.
//
// [SEIR] implements [dynamo.System] with mass-action incidence: the
// transmission term is beta*S*I on absolute counts, not beta*S*I/N. The
// birth/death rate mu feeds newborns into S at mu*N and removes mu per
// capita from every compartment, so S+E+I+R is only conserved when mu is 0.
//
//	sys := epidemic.NewSEIR(epidemic.Params{N: 1000, Alpha: 0.1, Beta: 0.2, Gamma: 0.1})
//	dx := sys.Derive(epidemic.Compartments{S: 999, E: 1, I: 1}.State(), 0)
package epidemic
