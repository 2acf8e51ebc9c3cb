package pdb

import (
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/petrichorcode/ensgo/ensemble"
)

// An Entry must satisfy every ensemble contract a full atom group can
// serve, and a Selection the subset contract.
var (
	_ ensemble.Source          = (*Entry)(nil)
	_ ensemble.Atoms           = (*Entry)(nil)
	_ ensemble.ChainIdentifier = (*Entry)(nil)
	_ ensemble.ResidueNumberer = (*Entry)(nil)
	_ ensemble.Subset          = (*Selection)(nil)
)

func atomLine(serial int, name, res string, chain byte, resnum int,
	x, y, z float64) string {

	return fmt.Sprintf("ATOM  %5d %-4s %3s %c%4d    %8.3f%8.3f%8.3f"+
		"  1.00  0.00",
		serial, name, res, chain, resnum, x, y, z)
}

func sampleEntry() string {
	lines := []string{
		fmt.Sprintf("%-62s%s", "HEADER    TEST PROTEIN", "1ABC"),
		"MODEL        1",
		atomLine(1, "N", "ALA", 'A', 1, 11.104, 6.134, -6.504),
		atomLine(2, "CA", "ALA", 'A', 1, 12.560, 6.071, -6.342),
		atomLine(3, "CA", "GLY", 'B', 2, 13.075, 6.433, -4.946),
		"ENDMDL",
		"MODEL        2",
		atomLine(1, "N", "ALA", 'A', 1, 10.104, 6.134, -6.504),
		atomLine(2, "CA", "ALA", 'A', 1, 11.560, 6.071, -6.342),
		atomLine(3, "CA", "GLY", 'B', 2, 12.075, 6.433, -4.946),
		"ENDMDL",
		"END",
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestReadMultiModel(t *testing.T) {
	entry, err := Read(strings.NewReader(sampleEntry()), "1abc.pdb")
	if err != nil {
		t.Fatal(err)
	}
	if entry.IdCode != "1ABC" {
		t.Fatalf("IdCode = %q, want 1ABC", entry.IdCode)
	}
	if entry.Name() != "1ABC" {
		t.Fatalf("Name = %q, want 1ABC", entry.Name())
	}
	if len(entry.Models) != 2 {
		t.Fatalf("got %d models, want 2", len(entry.Models))
	}
	if entry.NumAtoms() != 3 {
		t.Fatalf("NumAtoms = %d, want 3", entry.NumAtoms())
	}
	if entry.Models[1].Num != 2 {
		t.Fatalf("second model numbered %d, want 2", entry.Models[1].Num)
	}

	first := entry.Models[0].Atoms[0]
	if first.Name != "N" || first.Residue != "ALA" || first.Chain != 'A' ||
		first.ResidueNum != 1 {
		t.Fatalf("first atom = %+v", first)
	}
	if first.Coords != [3]float64{11.104, 6.134, -6.504} {
		t.Fatalf("first atom coords = %v", first.Coords)
	}

	if ids := entry.ChainIDs(); string(ids) != "AAB" {
		t.Fatalf("ChainIDs = %q, want AAB", ids)
	}
	nums := entry.ResidueNumbers()
	if len(nums) != 3 || nums[0] != 1 || nums[2] != 2 {
		t.Fatalf("ResidueNumbers = %v", nums)
	}

	frames, err := entry.Frames()
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 2 || frames[1][0][0] != 10.104 {
		t.Fatalf("Frames = %v", frames)
	}
}

func TestReadImplicitModel(t *testing.T) {
	content := atomLine(1, "CA", "ALA", 'A', 1, 1, 2, 3) + "\n"
	entry, err := Read(strings.NewReader(content), "bare.pdb")
	if err != nil {
		t.Fatal(err)
	}
	if len(entry.Models) != 1 || entry.Models[0].Num != 1 {
		t.Fatalf("got %d models, first numbered %d",
			len(entry.Models), entry.Models[0].Num)
	}
	// Without a HEADER id code, the name falls back to the file name.
	if entry.Name() != "bare" {
		t.Fatalf("Name = %q, want bare", entry.Name())
	}
}

func TestReadRejectsRaggedModels(t *testing.T) {
	lines := []string{
		"MODEL        1",
		atomLine(1, "CA", "ALA", 'A', 1, 1, 2, 3),
		atomLine(2, "CA", "GLY", 'A', 2, 4, 5, 6),
		"ENDMDL",
		"MODEL        2",
		atomLine(1, "CA", "ALA", 'A', 1, 1, 2, 3),
		"ENDMDL",
	}
	content := strings.Join(lines, "\n") + "\n"
	if _, err := Read(strings.NewReader(content), "ragged.pdb"); err == nil {
		t.Fatal("models with differing atom counts accepted")
	}
}

func TestReadEmpty(t *testing.T) {
	if _, err := Read(strings.NewReader("END\n"), "empty.pdb"); err == nil {
		t.Fatal("entry without ATOM records accepted")
	}
}

func TestNewReadsGzip(t *testing.T) {
	name := filepath.Join(t.TempDir(), "1abc.pdb.gz")
	f, err := os.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(sampleEntry())); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	entry, err := New(name)
	if err != nil {
		t.Fatal(err)
	}
	if entry.IdCode != "1ABC" || entry.NumAtoms() != 3 {
		t.Fatalf("gz round trip: IdCode = %q, NumAtoms = %d",
			entry.IdCode, entry.NumAtoms())
	}
}

func TestSelectName(t *testing.T) {
	entry, err := Read(strings.NewReader(sampleEntry()), "1abc.pdb")
	if err != nil {
		t.Fatal(err)
	}
	sel := entry.SelectName("CA")
	if sel.NumAtoms() != 2 {
		t.Fatalf("selected %d atoms, want 2", sel.NumAtoms())
	}
	want := []int{1, 2}
	for i, idx := range sel.Indices() {
		if idx != want[i] {
			t.Fatalf("Indices = %v, want %v", sel.Indices(), want)
		}
	}
	if sel.Parent().NumAtoms() != 3 {
		t.Fatalf("Parent().NumAtoms() = %d, want 3", sel.Parent().NumAtoms())
	}
	if sel.NumDummies() != 0 {
		t.Fatalf("NumDummies = %d, want 0", sel.NumDummies())
	}

	chainB := entry.Select(func(a Atom) bool { return a.Chain == 'B' })
	if chainB.NumAtoms() != 1 || chainB.Indices()[0] != 2 {
		t.Fatalf("chain B selection = %v", chainB.Indices())
	}
}

func TestEntryFeedsEnsemble(t *testing.T) {
	entry, err := Read(strings.NewReader(sampleEntry()), "1abc.pdb")
	if err != nil {
		t.Fatal(err)
	}
	e, err := ensemble.FromSource(entry.Name(), entry)
	if err != nil {
		t.Fatal(err)
	}
	if e.NumAtoms() != 3 || e.NumConfs() != 2 {
		t.Fatalf("ensemble has %d atoms, %d conformations; want 3, 2",
			e.NumAtoms(), e.NumConfs())
	}
	if err := e.SetAtoms(entry.SelectName("CA")); err != nil {
		t.Fatal(err)
	}
	if e.NumSelected() != 2 {
		t.Fatalf("NumSelected = %d, want 2", e.NumSelected())
	}
	if err := e.Superpose(); err != nil {
		t.Fatal(err)
	}
}
