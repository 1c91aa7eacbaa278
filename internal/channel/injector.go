// Package channel simulates the errors of DNA synthesis and sequencing.
package channel

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/ddritzenhoff/strandfec/internal/protocol"
)

// Rates are per-symbol error probabilities.
type Rates struct {
	Substitution float64
	Deletion     float64
	Insertion    float64
}

func (r Rates) validate() error {
	for _, p := range []float64{r.Substitution, r.Deletion, r.Insertion} {
		if p < 0 || p > 1 {
			return fmt.Errorf("error rate %g out of range [0, 1]", p)
		}
	}
	if sum := r.Substitution + r.Deletion + r.Insertion; sum > 1 {
		return fmt.Errorf("error rates add up to %g", sum)
	}
	return nil
}

// IsZero says whether the channel is error free.
func (r Rates) IsZero() bool { return r == Rates{} }

// An Injector applies substitutions, deletions and insertions to strands.
// Its output only depends on the seed, the packet number and the input,
// so packets can go through the channel in any order.
type Injector struct {
	rates Rates
	seed  uint64
}

func NewInjector(r Rates, seed uint64) (*Injector, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	return &Injector{rates: r, seed: seed}, nil
}

func (in *Injector) Rates() Rates { return in.rates }

// Apply returns a damaged copy of symbols.
// Every symbol is deleted, preceded by a random insertion, or substituted by a different symbol
// with the respective probability.
func (in *Injector) Apply(symbols []byte, rng *rand.Rand) []byte {
	out := make([]byte, 0, len(symbols)+len(symbols)/8+1)
	del := in.rates.Deletion
	ins := del + in.rates.Insertion
	sub := ins + in.rates.Substitution
	for _, s := range symbols {
		u := rng.Float64()
		switch {
		case u < del:
		case u < ins:
			out = append(out, byte(rng.Intn(4)), s)
		case u < sub:
			out = append(out, (s+1+byte(rng.Intn(3)))%4)
		default:
			out = append(out, s)
		}
	}
	return out
}

// ApplyBag damages all strands of packet n.
// Each damaged strand is cut or zero-padded back to the length of its original.
func (in *Injector) ApplyBag(n protocol.PacketNumber, bag [][]byte) [][]byte {
	rng := rand.New(rand.NewSource(in.seed ^ (uint64(n)+1)*0x9e3779b97f4a7c15))
	out := make([][]byte, len(bag))
	for i, dna := range bag {
		damaged := in.Apply(dna, rng)
		row := make([]byte, len(dna))
		copy(row, damaged)
		out[i] = row
	}
	return out
}
