package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ddritzenhoff/strandfec"
)

const defaultPlaintextSize = 4878

// simConfig is everything a simulation run needs.
type simConfig struct {
	pipeline strandfec.Config
	rates    strandfec.Rates
	// ratesSet is true when the file defines an error rate.
	ratesSet bool
	seed     uint64
	size     int
	input    string
}

func defaultSimConfig() simConfig {
	return simConfig{size: defaultPlaintextSize, seed: 1}
}

type fileConfig struct {
	StrandsPerPacket  int     `toml:"strands_per_packet" yaml:"strands_per_packet"`
	CheckStrands      int     `toml:"check_strands" yaml:"check_strands"`
	StrandIDBytes     int     `toml:"strand_id_bytes" yaml:"strand_id_bytes"`
	RunoutBytes       int     `toml:"runout_bytes" yaml:"runout_bytes"`
	TotalStrandLength int     `toml:"total_strand_length" yaml:"total_strand_length"`
	LeftPrimer        string  `toml:"left_primer" yaml:"left_primer"`
	RightPrimer       string  `toml:"right_primer" yaml:"right_primer"`
	CodeRate          int     `toml:"code_rate" yaml:"code_rate"`
	OuterScheme       string  `toml:"outer_scheme" yaml:"outer_scheme"`
	MaxHomopolymer    int     `toml:"max_homopolymer" yaml:"max_homopolymer"`
	GCWindow          int     `toml:"gc_window" yaml:"gc_window"`
	MaxGC             int     `toml:"max_gc" yaml:"max_gc"`
	MinGC             int     `toml:"min_gc" yaml:"min_gc"`
	Parallelism       int     `toml:"parallelism" yaml:"parallelism"`
	SubstitutionRate  float64 `toml:"substitution_rate" yaml:"substitution_rate"`
	DeletionRate      float64 `toml:"deletion_rate" yaml:"deletion_rate"`
	InsertionRate     float64 `toml:"insertion_rate" yaml:"insertion_rate"`
	Seed              uint64  `toml:"seed" yaml:"seed"`
	Size              int     `toml:"size" yaml:"size"`
	Input             string  `toml:"input" yaml:"input"`
}

// loadSimConfig reads a TOML or YAML file, depending on its extension.
// Keys missing from the file keep their defaults.
func loadSimConfig(path string) (simConfig, error) {
	var (
		raw       fileConfig
		isDefined func(key string) bool
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return simConfig{}, fmt.Errorf("load config: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return simConfig{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
		}
		isDefined = func(key string) bool { return meta.IsDefined(key) }
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return simConfig{}, fmt.Errorf("load config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil {
			return simConfig{}, fmt.Errorf("load config: %w", err)
		}
		var keys map[string]yaml.Node
		if err := yaml.Unmarshal(data, &keys); err != nil {
			return simConfig{}, fmt.Errorf("load config: %w", err)
		}
		isDefined = func(key string) bool {
			_, ok := keys[key]
			return ok
		}
	default:
		return simConfig{}, fmt.Errorf("load config: unsupported file type %q", filepath.Ext(path))
	}
	return raw.apply(defaultSimConfig(), isDefined)
}

func (raw *fileConfig) apply(cfg simConfig, isDefined func(string) bool) (simConfig, error) {
	c := &cfg.pipeline
	if isDefined("strands_per_packet") {
		c.StrandsPerPacket = raw.StrandsPerPacket
	}
	if isDefined("check_strands") {
		c.CheckStrands = raw.CheckStrands
	}
	if isDefined("strand_id_bytes") {
		c.StrandIDBytes = raw.StrandIDBytes
	}
	if isDefined("runout_bytes") {
		c.RunoutBytes = raw.RunoutBytes
	}
	if isDefined("total_strand_length") {
		c.TotalStrandLength = raw.TotalStrandLength
	}
	if isDefined("left_primer") {
		c.LeftPrimer = strings.ToUpper(strings.TrimSpace(raw.LeftPrimer))
	}
	if isDefined("right_primer") {
		c.RightPrimer = strings.ToUpper(strings.TrimSpace(raw.RightPrimer))
	}
	if isDefined("code_rate") {
		c.CodeRate = strandfec.CodeRate(raw.CodeRate)
	}
	if isDefined("outer_scheme") {
		id, ok := strandfec.ParseOuterScheme(strings.TrimSpace(raw.OuterScheme))
		if !ok {
			return simConfig{}, fmt.Errorf("load config: unknown outer scheme %q", raw.OuterScheme)
		}
		c.OuterScheme = id
	}
	if isDefined("max_homopolymer") || isDefined("gc_window") || isDefined("max_gc") || isDefined("min_gc") {
		dc := strandfec.DefaultDNAConstraints
		if isDefined("max_homopolymer") {
			dc.MaxHomopolymer = raw.MaxHomopolymer
		}
		if isDefined("gc_window") {
			dc.GCWindow = raw.GCWindow
		}
		if isDefined("max_gc") {
			dc.MaxGC = raw.MaxGC
		}
		if isDefined("min_gc") {
			dc.MinGC = raw.MinGC
		} else if isDefined("max_gc") {
			dc.MinGC = dc.GCWindow - dc.MaxGC
		}
		c.DNAConstraints = &dc
	}
	if isDefined("parallelism") {
		c.Parallelism = raw.Parallelism
	}
	cfg.ratesSet = isDefined("substitution_rate") || isDefined("deletion_rate") || isDefined("insertion_rate")
	if isDefined("substitution_rate") {
		cfg.rates.Substitution = raw.SubstitutionRate
	}
	if isDefined("deletion_rate") {
		cfg.rates.Deletion = raw.DeletionRate
	}
	if isDefined("insertion_rate") {
		cfg.rates.Insertion = raw.InsertionRate
	}
	if isDefined("seed") {
		cfg.seed = raw.Seed
	}
	if isDefined("size") {
		cfg.size = raw.Size
	}
	if isDefined("input") {
		cfg.input = strings.TrimSpace(raw.Input)
	}
	return cfg, nil
}
