// Package pdb reads the coordinate content of PDB files: ATOM records
// grouped into models, so that a multi-model entry (e.g. an NMR structure)
// can feed a conformational ensemble directly. An Entry implements the
// ensemble package's coordinate-source and atom-group contracts.
package pdb

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/petrichorcode/ensgo/ensemble"
	"github.com/petrichorcode/ensgo/xyz"
)

// Atom is one ATOM record: the identifying fields plus its coordinates.
type Atom struct {
	Name       string
	Residue    string
	ResidueNum int
	Chain      byte
	Coords     xyz.Coords
}

// Model is one coordinate set of an entry. Entries without MODEL records
// hold a single implicit model numbered 1.
type Model struct {
	Num   int
	Atoms []Atom
}

// Entry represents the coordinate content of a single PDB file.
type Entry struct {
	Path   string
	IdCode string
	Models []*Model
}

// New reads a PDB entry from a file. If the file name ends with ".gz",
// gzip decompression is used.
func New(fileName string) (*Entry, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	if path.Ext(fileName) == ".gz" {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}
	return Read(reader, fileName)
}

// Read reads a PDB entry from r. The path is only used in messages.
func Read(r io.Reader, path string) (*Entry, error) {
	entry := &Entry{Path: path}
	var cur *Model

	breader := bufio.NewReaderSize(r, 1000)
	for {
		// Lines longer than the buffer never matter in PDB files, so
		// the isPrefix return is ignored.
		line, _, err := breader.ReadLine()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		if len(line) < 6 {
			continue
		}

		switch strings.TrimSpace(string(line[0:6])) {
		case "HEADER":
			if len(line) >= 66 {
				entry.IdCode = strings.TrimSpace(string(line[62:66]))
			}
		case "MODEL":
			num := len(entry.Models) + 1
			if len(line) >= 14 {
				if n, err := strconv.Atoi(strings.TrimSpace(string(line[10:14]))); err == nil {
					num = n
				}
			}
			cur = &Model{Num: num}
			entry.Models = append(entry.Models, cur)
		case "ENDMDL":
			cur = nil
		case "ATOM":
			if cur == nil {
				cur = &Model{Num: len(entry.Models) + 1}
				entry.Models = append(entry.Models, cur)
			}
			atom, err := parseAtom(line)
			if err != nil {
				return nil, fmt.Errorf("pdb: %s: %s", path, err)
			}
			cur.Atoms = append(cur.Atoms, atom)
		}
	}

	if len(entry.Models) == 0 {
		return nil, fmt.Errorf("pdb: %s has no ATOM records", path)
	}
	n := len(entry.Models[0].Atoms)
	for _, m := range entry.Models[1:] {
		if len(m.Atoms) != n {
			return nil, fmt.Errorf("pdb: %s: model %d has %d atoms, "+
				"model %d has %d",
				path, m.Num, len(m.Atoms), entry.Models[0].Num, n)
		}
	}
	return entry, nil
}

func parseAtom(line []byte) (Atom, error) {
	if len(line) < 54 {
		return Atom{}, fmt.Errorf("short ATOM record: %q", string(line))
	}
	atom := Atom{
		Name:    strings.TrimSpace(string(line[12:16])),
		Residue: strings.TrimSpace(string(line[17:20])),
		Chain:   line[21],
	}
	if num, err := strconv.Atoi(strings.TrimSpace(string(line[22:26]))); err == nil {
		atom.ResidueNum = num
	}
	var err error
	if atom.Coords[0], err = parseFloat(line[30:38]); err != nil {
		return Atom{}, err
	}
	if atom.Coords[1], err = parseFloat(line[38:46]); err != nil {
		return Atom{}, err
	}
	if atom.Coords[2], err = parseFloat(line[46:54]); err != nil {
		return Atom{}, err
	}
	return atom, nil
}

func parseFloat(field []byte) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(field)), 64)
	if err != nil {
		return 0, fmt.Errorf("bad coordinate field %q", string(field))
	}
	return v, nil
}

// Name returns the identifying name of the entry: its id code when the
// HEADER carried one, otherwise the file name without extensions.
func (e *Entry) Name() string {
	if len(e.IdCode) > 0 {
		return e.IdCode
	}
	base := path.Base(e.Path)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return base
}

// NumAtoms returns the number of atoms per model.
func (e *Entry) NumAtoms() int {
	return len(e.Models[0].Atoms)
}

// ChainIDs returns the chain identifier of every atom, in atom order.
func (e *Entry) ChainIDs() []byte {
	ids := make([]byte, 0, e.NumAtoms())
	for _, a := range e.Models[0].Atoms {
		ids = append(ids, a.Chain)
	}
	return ids
}

// ResidueNumbers returns the residue sequence number of every atom, in
// atom order.
func (e *Entry) ResidueNumbers() []int {
	nums := make([]int, 0, e.NumAtoms())
	for _, a := range e.Models[0].Atoms {
		nums = append(nums, a.ResidueNum)
	}
	return nums
}

// Frame returns the first model's coordinates. Together with Frames this
// makes an Entry an ensemble coordinate source.
func (e *Entry) Frame() (xyz.Frame, error) {
	return e.Models[0].Frame(), nil
}

// Frames returns one coordinate frame per model.
func (e *Entry) Frames() ([]xyz.Frame, error) {
	frames := make([]xyz.Frame, len(e.Models))
	for i, m := range e.Models {
		frames[i] = m.Frame()
	}
	return frames, nil
}

// Frame returns the model's coordinates as a fresh frame.
func (m *Model) Frame() xyz.Frame {
	frame := make(xyz.Frame, len(m.Atoms))
	for i, a := range m.Atoms {
		frame[i] = a.Coords
	}
	return frame
}

// Selection is an ordered subset of an entry's atoms. It satisfies the
// ensemble package's Subset contract: indices are strictly increasing by
// construction.
type Selection struct {
	entry   *Entry
	indices []int
}

// Select returns the subset of atoms for which keep returns true,
// evaluated against the first model.
func (e *Entry) Select(keep func(Atom) bool) *Selection {
	sel := &Selection{entry: e}
	for i, a := range e.Models[0].Atoms {
		if keep(a) {
			sel.indices = append(sel.indices, i)
		}
	}
	return sel
}

// SelectName returns the subset of atoms whose name is one of the given
// names, e.g. SelectName("CA") for the alpha-carbon trace.
func (e *Entry) SelectName(names ...string) *Selection {
	return e.Select(func(a Atom) bool {
		for _, name := range names {
			if a.Name == name {
				return true
			}
		}
		return false
	})
}

// NumAtoms returns the number of selected atoms.
func (s *Selection) NumAtoms() int {
	return len(s.indices)
}

// Parent returns the entry the selection indexes into.
func (s *Selection) Parent() ensemble.Atoms {
	return s.entry
}

// Indices returns the selected atom indices, strictly increasing.
func (s *Selection) Indices() []int {
	return s.indices
}

// NumDummies returns zero: PDB selections never contain placeholders.
func (s *Selection) NumDummies() int {
	return 0
}
