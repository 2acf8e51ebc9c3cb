// ens-rmsd shows how to compute the minimal RMSD between the alpha-carbon
// traces of two PDB chains. The traces must be of equal length; each chain
// is taken from its entry's first model.
package main

import (
	"fmt"

	"github.com/petrichorcode/ensgo/cmd/util"
	"github.com/petrichorcode/ensgo/pdb"
	"github.com/petrichorcode/ensgo/rmsd"
	"github.com/petrichorcode/ensgo/xyz"
)

func init() {
	util.FlagUse("verbose")
	util.FlagParse("pdb-file chain-id pdb-file chain-id", "")
	util.AssertNArg(4)
}

func main() {
	f1 := caTrace(util.Arg(0), util.Arg(1))
	f2 := caTrace(util.Arg(2), util.Arg(3))

	if len(f1) != len(f2) {
		util.Fatalf("Chain '%s' of '%s' has %d alpha-carbons while chain "+
			"'%s' of '%s' has %d. Both chains must have the same number "+
			"of alpha-carbons.",
			util.Arg(1), util.Arg(0), len(f1),
			util.Arg(3), util.Arg(2), len(f2))
	}

	fmt.Println(rmsd.RMSD(f1, f2))
}

func caTrace(fileName, chain string) xyz.Frame {
	util.AssertIsFile(fileName)
	entry, err := pdb.New(fileName)
	util.Assert(err, "Could not read '%s'", fileName)

	sel := entry.Select(func(a pdb.Atom) bool {
		return a.Name == "CA" && a.Chain == chain[0]
	})
	if sel.NumAtoms() == 0 {
		util.Fatalf("The chain '%s' of '%s' has no alpha-carbon atoms.",
			chain, fileName)
	}

	frame, err := entry.Frame()
	util.Assert(err, "Could not read coordinates of '%s'", fileName)
	return frame.Take(sel.Indices())
}
