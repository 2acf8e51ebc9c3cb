// ens-align superposes the models of one or more PDB entries (e.g. an NMR
// structure, or a set of solved structures sharing a topology) onto a
// common reference frame and reports per-conformation RMSDs and per-atom
// RMSFs. By default the fit uses the alpha-carbon trace; the full
// coordinates of every conformation are transformed.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/petrichorcode/ensgo/cmd/util"
	"github.com/petrichorcode/ensgo/ensemble"
	"github.com/petrichorcode/ensgo/pdb"
)

var (
	flagAtoms     = "CA"
	flagChains    = ""
	flagIterpose  = false
	flagTolerance = ensemble.DefaultIterposeTol
	flagPairwise  = false
	flagConfig    = ""
)

// config mirrors the command line flags for batch runs.
type config struct {
	Atoms     []string `yaml:"atoms"`
	Chains    []string `yaml:"chains"`
	Iterpose  bool     `yaml:"iterpose"`
	Tolerance float64  `yaml:"tolerance"`
	Pairwise  bool     `yaml:"pairwise"`
}

func init() {
	flag.StringVar(&flagAtoms, "atoms", flagAtoms,
		"Comma-separated atom names used for the fit, or 'all'.")
	flag.StringVar(&flagChains, "chains", flagChains,
		"Comma-separated chain identifiers used for the fit (default: all).")
	flag.BoolVar(&flagIterpose, "iterpose", flagIterpose,
		"When set, superposition is iterated against the running mean\n"+
			"until the reference converges.")
	flag.Float64Var(&flagTolerance, "tolerance", flagTolerance,
		"Convergence tolerance for -iterpose, in angstroms RMSD.")
	flag.BoolVar(&flagPairwise, "pairwise", flagPairwise,
		"When set, the pairwise RMSD matrix is printed.")
	flag.StringVar(&flagConfig, "config", flagConfig,
		"A YAML file supplying the above settings for batch runs.")

	util.FlagUse("cpu", "verbose")
	util.FlagParse("pdb-file [pdb-file ...]",
		"Extra pdb-file arguments contribute their models as additional\n"+
			"conformations; they must have the same atom count as the first.")
	util.AssertLeastNArg(1)
}

func main() {
	atoms, chains := splitList(flagAtoms), splitList(flagChains)
	if len(flagConfig) > 0 {
		conf := loadConfig(flagConfig)
		if len(conf.Atoms) > 0 {
			atoms = conf.Atoms
		}
		if len(conf.Chains) > 0 {
			chains = conf.Chains
		}
		if conf.Tolerance > 0 {
			flagTolerance = conf.Tolerance
		}
		flagIterpose = flagIterpose || conf.Iterpose
		flagPairwise = flagPairwise || conf.Pairwise
	}

	util.AssertIsFile(util.Arg(0))
	entry, err := pdb.New(util.Arg(0))
	util.Assert(err, "Could not read '%s'", util.Arg(0))

	ens, err := ensemble.FromSource(entry.Name(), entry)
	util.Assert(err, "Could not build an ensemble from '%s'", util.Arg(0))
	ens.SetObserver(util.NewProgress())

	// Later entries are advisory: a bad file is skipped with a warning so
	// one broken member does not sink a batch alignment.
	for i := 1; i < util.NArg(); i++ {
		arg := util.Arg(i)
		other, err := pdb.New(arg)
		if util.Warning(err, "Could not read '%s'", arg) {
			continue
		}
		if util.Warning(ens.AddCoordset(other), "Could not add '%s'", arg) {
			continue
		}
	}
	if ens.NumConfs() < 2 {
		util.Warnf("A single conformation has nothing to align with.")
	}

	if sel := select_(entry, atoms, chains); sel != nil {
		if sel.NumAtoms() == 0 {
			util.Fatalf("No atoms match -atoms '%s' -chains '%s'.",
				flagAtoms, flagChains)
		}
		util.Assert(ens.SetAtoms(sel), "Could not set the atom selection")
		util.Verbosef("Fitting on %d of %d atoms.",
			ens.NumSelected(), ens.NumAtoms())
	} else {
		util.Assert(ens.SetAtoms(entry), "Could not set the atom group")
	}

	if flagIterpose {
		util.Assert(ens.Iterpose(flagTolerance), "Superposition failed")
	} else {
		util.Assert(ens.Superpose(), "Superposition failed")
	}

	fmt.Println("# conformation RMSD")
	for i, r := range ens.RMSDs() {
		fmt.Printf("%d %0.4f\n", i, r)
	}

	fmt.Println("# atom RMSF")
	labels := atomLabels(ens)
	for i, r := range ens.RMSFs() {
		if labels != nil {
			fmt.Printf("%s %0.4f\n", labels[i], r)
		} else {
			fmt.Printf("%d %0.4f\n", i, r)
		}
	}

	if flagPairwise {
		fmt.Println("# pairwise RMSD")
		pw := ens.PairwiseRMSDs()
		n, _ := pw.Dims()
		for i := 0; i < n; i++ {
			row := make([]string, n)
			for j := 0; j < n; j++ {
				row[j] = fmt.Sprintf("%0.4f", pw.At(i, j))
			}
			fmt.Println(strings.Join(row, " "))
		}
	}
}

// atomLabels names each selected atom by chain and residue number, when
// the ensemble's atom group exposes them. Nil means fall back to indices.
func atomLabels(ens *ensemble.Ensemble) []string {
	group := ens.Atoms()
	if group == nil {
		return nil
	}
	ci, ok := group.(ensemble.ChainIdentifier)
	if !ok {
		return nil
	}
	rn, ok := group.(ensemble.ResidueNumberer)
	if !ok {
		return nil
	}
	chains, nums := ci.ChainIDs(), rn.ResidueNumbers()

	indices := ens.SelectedIndices()
	if indices == nil {
		indices = make([]int, ens.NumAtoms())
		for i := range indices {
			indices[i] = i
		}
	}
	labels := make([]string, len(indices))
	for k, i := range indices {
		labels[k] = fmt.Sprintf("%c%d", chains[i], nums[i])
	}
	return labels
}

// select_ builds the fitting selection, or returns nil when every atom
// participates.
func select_(entry *pdb.Entry, atoms, chains []string) *pdb.Selection {
	if len(atoms) == 0 && len(chains) == 0 {
		return nil
	}
	return entry.Select(func(a pdb.Atom) bool {
		if len(atoms) > 0 && !contains(atoms, a.Name) {
			return false
		}
		if len(chains) > 0 && !contains(chains, string(a.Chain)) {
			return false
		}
		return true
	})
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// splitList splits a comma-separated flag value; "all" and the empty
// string mean no restriction.
func splitList(s string) []string {
	s = strings.TrimSpace(s)
	if len(s) == 0 || strings.EqualFold(s, "all") {
		return nil
	}
	fields := strings.Split(s, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func loadConfig(path string) config {
	f, err := os.Open(path)
	util.Assert(err, "Could not open config '%s'", path)
	defer f.Close()

	var conf config
	util.Assert(yaml.NewDecoder(f).Decode(&conf),
		"Could not parse config '%s'", path)
	return conf
}
