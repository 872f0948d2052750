// Package config loads study descriptions from TOML files
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"bwestbro.com/pydef/internal/cell"
	"bwestbro.com/pydef/internal/correct"
	"bwestbro.com/pydef/internal/defect"
	"bwestbro.com/pydef/internal/study"
	"github.com/BurntSushi/toml"
)

var (
	ErrNoHost       = errors.New("no host OUTCAR given")
	ErrNoCells      = errors.New("no defect cells given")
	ErrPermittivity = errors.New("permittivity must be positive for the Makov-Payne correction")
)

type RawGap struct {
	Label string
	Value float64
}

type RawCorrections struct {
	Alignment    bool
	MossBurstein bool `toml:"moss_burstein"`
	PHS          bool `toml:"phs"`
	VBM          bool `toml:"vbm"`
	MakovPayne   bool `toml:"makov_payne"`
}

type RawDefect struct {
	Kind     string
	Atoms    []string
	ChemPots []float64 `toml:"chem_pots"`
}

type RawCell struct {
	Outcar    string
	Doscar    string
	Radius    float64
	Electrons float64
	Holes     float64
}

// RawConf is the study description as written in the TOML file
type RawConf struct {
	Host         string
	HostDOS      string `toml:"host_dos"`
	HostB        string `toml:"host_b"`
	Geometry     string
	Permittivity float64
	MakovPayne   float64 `toml:"makov_payne"`
	DeltaVBM     float64 `toml:"delta_vbm"`
	DeltaCBM     float64 `toml:"delta_cbm"`
	Gaps         []RawGap
	Corrections  RawCorrections
	Defects      []RawDefect
	Cells        []RawCell
}

type CellConf struct {
	Outcar string
	Doscar string
	Params study.Params
}

type Config struct {
	Host     string
	HostDOS  string
	HostB    string
	Settings study.Settings
	Gaps     []study.Gap
	Defects  []defect.Defect
	Cells    []CellConf
}

// ToConfig converts rc to a Config, resolving relative paths against
// dir and taking any chemical potentials missing from rc from table
func (rc RawConf) ToConfig(dir string, table defect.ChemPotTable) (conf Config, err error) {
	if rc.Host == "" {
		return conf, ErrNoHost
	}
	if len(rc.Cells) == 0 {
		return conf, ErrNoCells
	}
	conf.Host = resolve(dir, rc.Host)
	conf.HostDOS = resolve(dir, rc.HostDOS)
	conf.HostB = resolve(dir, rc.HostB)

	conf.Settings.Geometry, err = correct.ParseGeometry(rc.Geometry)
	if err != nil {
		return conf, err
	}
	conf.Settings.Permittivity = rc.Permittivity
	conf.Settings.MakovPayne = rc.MakovPayne
	conf.Settings.DeltaVBM = rc.DeltaVBM
	conf.Settings.DeltaCBM = rc.DeltaCBM
	conf.Settings.Corrections = study.Corrections(rc.Corrections)
	if conf.Settings.Corrections.MakovPayne && rc.Permittivity <= 0 {
		return conf, ErrPermittivity
	}

	for _, g := range rc.Gaps {
		conf.Gaps = append(conf.Gaps, study.Gap{Label: g.Label, Value: g.Value})
	}

	for i, rd := range rc.Defects {
		kind, err := defect.ParseKind(rd.Kind)
		if err != nil {
			return conf, fmt.Errorf("defect %d: %w", i+1, err)
		}
		mu := rd.ChemPots
		if len(mu) == 0 {
			mu, err = table.Lookup(rd.Atoms)
			if err != nil {
				return conf, fmt.Errorf("defect %d: %w", i+1, err)
			}
		}
		d, err := defect.New(kind, rd.Atoms, mu)
		if err != nil {
			return conf, fmt.Errorf("defect %d: %w", i+1, err)
		}
		conf.Defects = append(conf.Defects, d)
	}

	for _, c := range rc.Cells {
		conf.Cells = append(conf.Cells, CellConf{
			Outcar: resolve(dir, c.Outcar),
			Doscar: resolve(dir, c.Doscar),
			Params: study.Params{
				Radius:    c.Radius,
				Electrons: c.Electrons,
				Holes:     c.Holes,
			},
		})
	}
	return conf, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// LoadConfig reads the study description in filename. table supplies
// the chemical potentials of defects that do not list their own.
func LoadConfig(filename string, table defect.ChemPotTable) (Config, error) {
	cont, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, err
	}
	// Defaults
	rc := RawConf{
		Geometry:     "sc",
		Permittivity: 1,
		Corrections:  RawCorrections(study.AllCorrections()),
	}
	md, err := toml.Decode(string(cont), &rc)
	if err != nil {
		return Config{}, fmt.Errorf("loading %s: %w", filename, err)
	}
	for _, key := range md.Undecoded() {
		log.Printf("%s: ignoring unknown key %q", filename, key.String())
	}
	conf, err := rc.ToConfig(filepath.Dir(filename), table)
	if err != nil {
		return Config{}, fmt.Errorf("loading %s: %w", filename, err)
	}
	return conf, nil
}

// Build parses every calculation named in c and returns the resulting
// study
func (c Config) Build() (*study.Study, error) {
	host, err := cell.Load(c.Host, c.HostDOS)
	if err != nil {
		return nil, err
	}
	var hostB *cell.Cell
	if c.HostB != "" {
		hostB, err = cell.Load(c.HostB, "")
		if err != nil {
			return nil, err
		}
	}
	st, err := study.New(host, hostB, c.Defects, c.Settings, c.Gaps)
	if err != nil {
		return nil, err
	}
	for _, cc := range c.Cells {
		def, err := cell.Load(cc.Outcar, cc.Doscar)
		if err != nil {
			return nil, err
		}
		if _, err := st.Add(def, cc.Params); err != nil {
			return nil, fmt.Errorf("%s: %w", cc.Outcar, err)
		}
	}
	return st, nil
}
