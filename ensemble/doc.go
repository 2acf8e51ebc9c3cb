/*
Package ensemble manages collections of conformations sampled for the same
molecular topology, e.g. the frames of a simulation trajectory or a set of
solved structures, and aligns and analyzes them.

An Ensemble owns a reference coordinate frame and a stack of conformation
frames, always stored at full atom size. An optional atom selection
restricts which atoms participate in alignment and statistics without
changing what is stored, and optional per-atom (or per-conformation)
weights turn the alignment into a weighted least-squares fit.

Superpose rigidly aligns every conformation onto the reference using a
Kabsch-style rotation solve; Iterpose repeats superposition against the
running mean until the reference stops moving. The statistics methods
(Deviations, MSFs, RMSFs, RMSDs, PairwiseRMSDs) read the current state and
never mutate it.
*/
package ensemble
