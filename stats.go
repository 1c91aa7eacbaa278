package strandfec

import (
	"fmt"

	"github.com/ddritzenhoff/strandfec/internal/fec"
	"github.com/ddritzenhoff/strandfec/internal/strand"
	"github.com/ddritzenhoff/strandfec/qlog"
)

// PacketStats are the statistics of one packet, in the order of the summary line.
type PacketStats struct {
	PacketNumber PacketNumber
	// FailedStrands is the number of strands the inner codec failed to decode completely.
	FailedStrands int
	// ErasedBytes is the number of message bytes those strands didn't deliver.
	ErasedBytes int
	// TotalDetected and MaxDetected count what the outer code detected, in total and in its worst diagonal.
	TotalDetected int
	MaxDetected   int
	// TotalUncorrected and MaxUncorrected count what it detected but couldn't correct.
	TotalUncorrected int
	MaxUncorrected   int
	// ErrorCodes is the number of diagonals the outer code failed on.
	ErrorCodes int
	// BadBytes is the number of recovered plaintext bytes that differ from the original.
	BadBytes int
}

func newPacketStats(n PacketNumber, d strand.DecodeStats, c fec.CorrectionStats, badBytes int) PacketStats {
	return PacketStats{
		PacketNumber:     n,
		FailedStrands:    d.FailedStrands,
		ErasedBytes:      d.ErasedBytes,
		TotalDetected:    c.TotalDetected,
		MaxDetected:      c.MaxDetected,
		TotalUncorrected: c.TotalUncorrected,
		MaxUncorrected:   c.MaxUncorrected,
		ErrorCodes:       c.ErrorCodes,
		BadBytes:         badBytes,
	}
}

// OK says whether the packet's plaintext was recovered exactly.
func (s PacketStats) OK() bool { return s.BadBytes == 0 }

func (s PacketStats) String() string {
	return fmt.Sprintf("%3d: (%3d %3d %3d %3d) (%3d %3d %3d %3d)",
		s.PacketNumber, s.FailedStrands, s.ErasedBytes, s.TotalDetected, s.MaxDetected,
		s.TotalUncorrected, s.MaxUncorrected, s.ErrorCodes, s.BadBytes)
}

func (s *PacketStats) add(o PacketStats) {
	s.FailedStrands += o.FailedStrands
	s.ErasedBytes += o.ErasedBytes
	s.TotalDetected += o.TotalDetected
	s.MaxDetected += o.MaxDetected
	s.TotalUncorrected += o.TotalUncorrected
	s.MaxUncorrected += o.MaxUncorrected
	s.ErrorCodes += o.ErrorCodes
	s.BadBytes += o.BadBytes
}

func (s PacketStats) traceEvent() qlog.PacketProcessed {
	return qlog.PacketProcessed{
		PacketNumber:     uint64(s.PacketNumber),
		FailedStrands:    s.FailedStrands,
		ErasedBytes:      s.ErasedBytes,
		TotalDetected:    s.TotalDetected,
		MaxDetected:      s.MaxDetected,
		TotalUncorrected: s.TotalUncorrected,
		MaxUncorrected:   s.MaxUncorrected,
		ErrorCodes:       s.ErrorCodes,
		BadBytes:         s.BadBytes,
	}
}

// A RunReport is the outcome of a run.
type RunReport struct {
	// Packets holds the statistics of every packet, ordered by packet number.
	Packets []PacketStats
	// Totals sums every column of Packets.
	Totals PacketStats
	// BadPackets is the number of packets with bad bytes.
	BadPackets int
	// Plaintext is the recovered plaintext, as long as the input.
	Plaintext []byte
}

// AllOK says whether every packet was recovered exactly.
func (r *RunReport) AllOK() bool { return r.BadPackets == 0 }

func (r *RunReport) String() string {
	if r.AllOK() {
		return "All packets OK"
	}
	return "Some packets had errors"
}
