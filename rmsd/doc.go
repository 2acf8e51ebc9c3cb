/*
Package rmsd implements a version of the Kabsch algorithm that is described
in detail here: http://cnx.org/content/m11608/latest/

The optimal rotation between two coordinate frames is found by a singular
value decomposition of their weighted cross-covariance matrix, with a
determinant-sign correction that excludes improper rotations (reflections).
Plain and weighted root-mean-square deviations between frames are also
provided.
*/
package rmsd
