package strandfec

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/ddritzenhoff/strandfec/internal/protocol"
	"github.com/ddritzenhoff/strandfec/qlog"
)

const (
	DefaultStrandsPerPacket  = 255
	DefaultCheckStrands      = 32
	DefaultStrandIDBytes     = 2
	DefaultRunoutBytes       = 2
	DefaultTotalStrandLength = 300
	DefaultLeftPrimer        = "TCGAAGTCAGCGTGTATTGTATG"
	DefaultRightPrimer       = "TAGTGAGTGCGATTAAGCGTGTT"
	DefaultOuterScheme       = BerlekampWelchScheme
)

// Config contains all configuration data needed for a Pipeline.
// Zero values select the defaults.
type Config struct {
	// StrandsPerPacket is the number of strands of a packet, at most 255.
	StrandsPerPacket int
	// CheckStrands is the number of strands carrying outer code redundancy.
	CheckStrands int
	// StrandIDBytes is the width of the strand ID (packet number and strand index).
	StrandIDBytes int
	// RunoutBytes are zero bytes closing every strand.
	RunoutBytes int
	// TotalStrandLength is the number of symbols of every strand, primers included.
	TotalStrandLength int
	LeftPrimer        string
	RightPrimer       string
	CodeRate          CodeRate
	// DNAConstraints default to protocol.DefaultDNAConstraints.
	DNAConstraints *DNAConstraints
	OuterScheme    OuterScheme
	// Layout, if set, is used as is instead of being derived from the code rate and the strand length.
	Layout *Layout
	// InnerCodec defaults to a new ChunkCodec.
	InnerCodec InnerCodec
	// Parallelism limits the packets, strands and diagonals processed at once.
	// It defaults to GOMAXPROCS.
	Parallelism int
	Logger      *zap.Logger
	Tracer      *qlog.Tracer
}

// Clone clones a Config
func (c *Config) Clone() *Config {
	copy := *c
	if c.DNAConstraints != nil {
		dc := *c.DNAConstraints
		copy.DNAConstraints = &dc
	}
	if c.Layout != nil {
		l := *c.Layout
		copy.Layout = &l
	}
	return &copy
}

// populateConfig returns a copy of config with all defaults filled in.
func populateConfig(config *Config) *Config {
	if config == nil {
		config = &Config{}
	}
	c := config.Clone()
	if c.StrandsPerPacket == 0 {
		c.StrandsPerPacket = DefaultStrandsPerPacket
	}
	if c.CheckStrands == 0 {
		c.CheckStrands = DefaultCheckStrands
	}
	if c.StrandIDBytes == 0 {
		c.StrandIDBytes = DefaultStrandIDBytes
	}
	if c.RunoutBytes == 0 {
		c.RunoutBytes = DefaultRunoutBytes
	}
	if c.TotalStrandLength == 0 {
		c.TotalStrandLength = DefaultTotalStrandLength
	}
	if c.LeftPrimer == "" {
		c.LeftPrimer = DefaultLeftPrimer
	}
	if c.RightPrimer == "" {
		c.RightPrimer = DefaultRightPrimer
	}
	if c.CodeRate == 0 {
		c.CodeRate = protocol.DefaultCodeRate
	}
	if c.DNAConstraints == nil {
		dc := protocol.DefaultDNAConstraints
		c.DNAConstraints = &dc
	}
	if c.OuterScheme == protocol.OuterSchemeUnknown {
		c.OuterScheme = DefaultOuterScheme
	}
	if c.Parallelism == 0 {
		c.Parallelism = runtime.GOMAXPROCS(0)
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// layout returns the packet layout of a populated config.
func (c *Config) layout() (Layout, error) {
	if c.Layout != nil {
		if err := c.Layout.Validate(); err != nil {
			return Layout{}, err
		}
		return *c.Layout, nil
	}
	g := protocol.StrandGeometry{
		TotalStrandLength: c.TotalStrandLength,
		LeftPrimerLength:  len(c.LeftPrimer),
		RightPrimerLength: len(c.RightPrimer),
	}
	return protocol.NewLayout(g, c.CodeRate, c.StrandsPerPacket, c.CheckStrands, c.StrandIDBytes, c.RunoutBytes)
}

// codecParams are the inner codec parameters of a populated config.
func (c *Config) codecParams() CodecParams {
	return CodecParams{
		LeftPrimer:  c.LeftPrimer,
		RightPrimer: c.RightPrimer,
		CodeRate:    c.CodeRate,
		Constraints: *c.DNAConstraints,
	}
}

func validateConfig(c *Config) error {
	if c.Parallelism < 0 {
		return fmt.Errorf("invalid parallelism: %d", c.Parallelism)
	}
	if c.TotalStrandLength < 0 {
		return fmt.Errorf("invalid total strand length: %d", c.TotalStrandLength)
	}
	if !c.CodeRate.Valid() {
		return fmt.Errorf("invalid code rate: %d", int(c.CodeRate))
	}
	return c.DNAConstraints.Validate()
}
