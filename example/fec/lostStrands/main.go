package main

import (
	"context"
	"fmt"
	"log"

	"github.com/ddritzenhoff/strandfec"
)

const message = "Strands lost in synthesis or sequencing come back through the outer code."

// dropStrands loses the given strands of every packet entirely.
type dropStrands []int

func (d dropStrands) ApplyBag(_ strandfec.PacketNumber, bag [][]byte) [][]byte {
	out := make([][]byte, len(bag))
	copy(out, bag)
	for _, i := range d {
		out[i] = make([]byte, len(bag[i]))
	}
	return out
}

// We protect a short message with 2 check strands per packet of 8,
// lose two strands of every packet, and recover the message anyway.
func main() {
	layout := strandfec.Layout{
		StrandsPerPacket:      8,
		CheckStrands:          2,
		StrandIDBytes:         2,
		MessageBytesPerStrand: 4,
	}
	p, err := strandfec.NewPipeline(&strandfec.Config{Layout: &layout})
	if err != nil {
		log.Fatal(err)
	}

	r, err := p.Run(context.Background(), []byte(message), dropStrands{1, 6})
	if err != nil {
		log.Fatal(err)
	}
	for _, s := range r.Packets {
		fmt.Println(s)
	}
	fmt.Printf("Recovered: %s\n", r.Plaintext)
	fmt.Println(r)

	// A third lost strand is more than 2 check strands can make up for.
	r, err = p.Run(context.Background(), []byte(message), dropStrands{1, 3, 6})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(r)
}
