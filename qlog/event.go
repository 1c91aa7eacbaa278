package qlog

import (
	"time"

	"github.com/francoispqt/gojay"
)

func milliseconds(dur time.Duration) float64 { return float64(dur.Nanoseconds()) / 1e6 }

type eventDetails interface {
	Category() string
	Name() string
	gojay.MarshalerJSONObject
}

type event struct {
	RelativeTime time.Duration
	eventDetails
}

var _ gojay.MarshalerJSONObject = event{}

func (e event) IsNil() bool { return false }
func (e event) MarshalJSONObject(enc *gojay.Encoder) {
	enc.Float64Key("time", milliseconds(e.RelativeTime))
	enc.StringKey("name", e.Category()+":"+e.Name())
	enc.ObjectKey("data", e.eventDetails)
}

// RunStarted describes the configuration of a run.
type RunStarted struct {
	StrandsPerPacket      int
	CheckStrands          int
	StrandIDBytes         int
	MessageBytesPerStrand int
	TotalStrandLength     int
	OuterScheme           string
	CodeRate              float64
	SubstitutionRate      float64
	DeletionRate          float64
	InsertionRate         float64
	PlaintextBytes        int
	Packets               int
}

type eventRunStarted struct {
	RunID string
	RunStarted
}

func (e eventRunStarted) Category() string { return "run" }
func (e eventRunStarted) Name() string     { return "started" }
func (e eventRunStarted) IsNil() bool      { return false }

func (e eventRunStarted) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("run_id", e.RunID)
	enc.IntKey("strands_per_packet", e.StrandsPerPacket)
	enc.IntKey("check_strands", e.CheckStrands)
	enc.IntKey("strand_id_bytes", e.StrandIDBytes)
	enc.IntKey("message_bytes_per_strand", e.MessageBytesPerStrand)
	enc.IntKey("total_strand_length", e.TotalStrandLength)
	enc.StringKey("outer_scheme", e.OuterScheme)
	enc.Float64Key("code_rate", e.CodeRate)
	enc.Float64Key("substitution_rate", e.SubstitutionRate)
	enc.Float64Key("deletion_rate", e.DeletionRate)
	enc.Float64Key("insertion_rate", e.InsertionRate)
	enc.IntKey("plaintext_bytes", e.PlaintextBytes)
	enc.IntKey("packets", e.Packets)
}

// PacketProcessed holds the statistics of one packet.
type PacketProcessed struct {
	PacketNumber     uint64
	FailedStrands    int
	ErasedBytes      int
	TotalDetected    int
	MaxDetected      int
	TotalUncorrected int
	MaxUncorrected   int
	ErrorCodes       int
	BadBytes         int
}

type eventPacketProcessed PacketProcessed

func (e eventPacketProcessed) Category() string { return "packet" }
func (e eventPacketProcessed) Name() string     { return "processed" }
func (e eventPacketProcessed) IsNil() bool      { return false }

func (e eventPacketProcessed) MarshalJSONObject(enc *gojay.Encoder) {
	enc.Uint64Key("packet_number", e.PacketNumber)
	enc.IntKey("failed_strands", e.FailedStrands)
	enc.IntKey("erased_bytes", e.ErasedBytes)
	enc.IntKey("total_detected", e.TotalDetected)
	enc.IntKey("max_detected", e.MaxDetected)
	enc.IntKey("total_uncorrected", e.TotalUncorrected)
	enc.IntKey("max_uncorrected", e.MaxUncorrected)
	enc.IntKey("error_codes", e.ErrorCodes)
	enc.IntKey("bad_bytes", e.BadBytes)
	enc.BoolKey("ok", e.BadBytes == 0)
}

// RunFinished summarizes a run.
type RunFinished struct {
	Packets    int
	BadPackets int
	Totals     PacketProcessed
}

type eventRunFinished RunFinished

func (e eventRunFinished) Category() string { return "run" }
func (e eventRunFinished) Name() string     { return "finished" }
func (e eventRunFinished) IsNil() bool      { return false }

func (e eventRunFinished) MarshalJSONObject(enc *gojay.Encoder) {
	enc.IntKey("packets", e.Packets)
	enc.IntKey("bad_packets", e.BadPackets)
	enc.ObjectKey("totals", eventPacketProcessed(e.Totals))
	enc.BoolKey("all_ok", e.BadPackets == 0)
}
