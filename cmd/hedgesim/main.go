package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/exp/rand"

	"github.com/ddritzenhoff/strandfec"
	"github.com/ddritzenhoff/strandfec/qlog"
)

var (
	verbose    bool
	configPath string
	inputPath  string
	outputPath string
	tracePath  string
	schemeName string
	size       int
	seed       uint64
	rates      strandfec.Rates

	logger *zap.Logger
)

// errBadPackets makes the process exit with status 1 after the summary was printed.
var errBadPackets = errors.New("some packets had errors")

var rootCmd = &cobra.Command{
	Use:   "hedgesim",
	Short: "Simulate storing a file in DNA strands",
	Long: `hedgesim cuts plaintext into packets of DNA strands, protects every packet
with an outer Reed-Solomon code over diagonal groups of bytes, sends the strands
through a channel with substitution, deletion and insertion errors, and decodes
them again.

For every packet it prints two groups of statistics:
  1.1 strands the inner codec failed to decode, 1.2 bytes thus declared as erasures
  1.3 errors detected by the outer code in total, 1.4 the most in a single diagonal
  2.1 detected errors left uncorrected in total, 2.2 the most in a single diagonal
  2.3 diagonals the outer code failed on; if zero, it corrected all errors
  2.4 byte errors compared to the known plaintext

The error rates are required, as flags or in the configuration file.
The exit status is 1 if any packet had byte errors.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runSimulation,
}

func init() {
	flags := rootCmd.Flags()
	flags.Float64VarP(&rates.Substitution, "sub", "s", 0, "substitution error rate")
	flags.Float64VarP(&rates.Deletion, "del", "d", 0, "deletion error rate")
	flags.Float64VarP(&rates.Insertion, "ins", "i", 0, "insertion error rate")
	flags.StringVar(&configPath, "config", "", "configuration file (.toml, .yaml or .yml)")
	flags.StringVar(&inputPath, "input", "", "plaintext file, random bytes if empty")
	flags.IntVar(&size, "size", defaultPlaintextSize, "number of random plaintext bytes")
	flags.Uint64Var(&seed, "seed", 1, "seed of the channel and of random plaintext")
	flags.StringVar(&outputPath, "output", "", "write the recovered plaintext to this file")
	flags.StringVar(&tracePath, "trace", "", "write a JSON trace of the run to this file")
	flags.StringVar(&schemeName, "scheme", "", "outer code: xor, reedsolomon or berlekampwelch")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every packet")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errBadPackets) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	sim := defaultSimConfig()
	if configPath != "" {
		var err error
		if sim, err = loadSimConfig(configPath); err != nil {
			return err
		}
	}
	if err := applyFlags(cmd, &sim); err != nil {
		return err
	}

	plaintext, err := readPlaintext(sim)
	if err != nil {
		return err
	}

	sim.pipeline.Logger = logger
	if tracePath != "" {
		f, err := os.Create(tracePath)
		if err != nil {
			return fmt.Errorf("creating trace: %w", err)
		}
		defer f.Close()
		sim.pipeline.Tracer = qlog.NewTracer(f)
	}

	p, err := strandfec.NewPipeline(&sim.pipeline)
	if err != nil {
		return err
	}
	var ch strandfec.Channel
	if sim.rates.IsZero() {
		logger.Info("error free channel")
	} else if ch, err = strandfec.NewChannel(sim.rates, sim.seed); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printBanner(out, p, len(plaintext))
	r, err := p.Run(cmd.Context(), plaintext, ch)
	if err != nil {
		return err
	}
	printReport(out, r)

	if sim.pipeline.Tracer != nil {
		if err := sim.pipeline.Tracer.Err(); err != nil {
			logger.Warn("writing trace failed", zap.Error(err))
		}
	}
	if outputPath != "" {
		if err := os.WriteFile(outputPath, r.Plaintext, 0o644); err != nil {
			return fmt.Errorf("writing recovered plaintext: %w", err)
		}
	}
	if !r.AllOK() {
		return errBadPackets
	}
	return nil
}

// applyFlags overrides the configuration with the flags given on the command line.
func applyFlags(cmd *cobra.Command, sim *simConfig) error {
	flags := cmd.Flags()
	switch {
	case flags.Changed("sub") && flags.Changed("del") && flags.Changed("ins"):
		sim.rates = rates
	case sim.ratesSet:
		if flags.Changed("sub") {
			sim.rates.Substitution = rates.Substitution
		}
		if flags.Changed("del") {
			sim.rates.Deletion = rates.Deletion
		}
		if flags.Changed("ins") {
			sim.rates.Insertion = rates.Insertion
		}
	default:
		return errors.New(`required flags "sub", "del" and "ins" not set`)
	}
	if flags.Changed("seed") || sim.seed == 0 {
		sim.seed = seed
	}
	if flags.Changed("size") || sim.size == 0 {
		sim.size = size
	}
	if flags.Changed("scheme") {
		id, ok := strandfec.ParseOuterScheme(schemeName)
		if !ok {
			return fmt.Errorf("unknown outer scheme %q", schemeName)
		}
		sim.pipeline.OuterScheme = id
	}
	if flags.Changed("input") {
		sim.input = inputPath
	}
	return nil
}

func readPlaintext(sim simConfig) ([]byte, error) {
	if sim.input != "" {
		b, err := os.ReadFile(sim.input)
		if err != nil {
			return nil, fmt.Errorf("reading plaintext: %w", err)
		}
		return b, nil
	}
	if sim.size < 0 {
		return nil, fmt.Errorf("invalid plaintext size %d", sim.size)
	}
	b := make([]byte, sim.size)
	_, _ = rand.New(rand.NewSource(sim.seed)).Read(b)
	return b, nil
}

func printBanner(w io.Writer, p *strandfec.Pipeline, plaintextBytes int) {
	l := p.Layout()
	bitrate := l.BitsPerSymbol(p.TotalStrandLength())
	fmt.Fprintln(w, "-------------------")
	fmt.Fprintf(w, "Plaintext size: %d bytes\n", plaintextBytes)
	fmt.Fprintf(w, "Total strand length: %d\n", p.TotalStrandLength())
	fmt.Fprintf(w, "Bytes per strand: %d\n", l.BytesPerStrand())
	fmt.Fprintf(w, "Message bytes per strand: %d\n", l.MessageBytesPerStrand)
	fmt.Fprintf(w, "Strands per packet: %d (%d message, %d check)\n", l.StrandsPerPacket, l.MessageStrands(), l.CheckStrands)
	fmt.Fprintf(w, "Payload bytes per packet: %d\n", l.PayloadBytesPerPacket())
	if bitrate > 0 {
		fmt.Fprintf(w, "Packet bitrate: %.2f bit/nt\n", bitrate)
		fmt.Fprintf(w, "Packet ntrate: %.2f nt/bit\n", 1/bitrate)
	}
	fmt.Fprintf(w, "Number of packets needed: %d\n", l.NumPackets(plaintextBytes))
	fmt.Fprintln(w, "-------------------")
}

func printReport(w io.Writer, r *strandfec.RunReport) {
	for _, s := range r.Packets {
		status := "packet OK"
		if !s.OK() {
			status = "packet NOT ok"
		}
		fmt.Fprintf(w, "%s %s\n", s, status)
	}
	t := r.Totals
	fmt.Fprintf(w, "TOT: (%4d %4d %4d %4d) (%4d %4d %4d %4d)\n",
		t.FailedStrands, t.ErasedBytes, t.TotalDetected, t.MaxDetected,
		t.TotalUncorrected, t.MaxUncorrected, t.ErrorCodes, t.BadBytes)
	fmt.Fprintln(w, r)
}
