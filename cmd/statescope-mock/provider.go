// Copyright 2026 The StateScope Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"hash/crc32"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"

	"github.com/statescope/statescope/lib/config"
	"github.com/statescope/statescope/wire"
)

// The simulated machine models enough of an 8-bit micro to exercise
// every record shape the stream can carry: scalar registers, derived
// status flags, and bulk regions.
const (
	machineName = "Apple IIe (simulated)"

	// pageBase is the memory page exposed in full-tier dumps.
	pageBase = 0x0300

	// modeFlipEvery is how many updates pass between run/step mode
	// transitions, each of which emits an event record.
	modeFlipEvery = 64
)

// 6502 status register bits.
const (
	flagC uint8 = 1 << iota
	flagZ
	flagI
	flagD
	flagB
	flagU
	flagV
	flagN
)

var (
	flagNames = [7]string{"n", "v", "b", "d", "i", "z", "c"}
	flagMasks = [7]uint8{flagN, flagV, flagB, flagD, flagI, flagZ, flagC}
)

// simProvider drives a deterministic pseudo-random machine. The same
// seed always produces the same state sequence, which keeps captures
// reproducible across runs.
type simProvider struct {
	formatter   *wire.Formatter
	serviceName string
	events      chan wire.Record

	mu              sync.Mutex
	rng             *rand.Rand
	cyclesPerUpdate uint64
	cycles          uint64
	a, x, y, p      uint8
	sp, pc          uint16
	mode            string
	jammed          bool
	updates         uint64
	mem             [256]byte
	display         [1024]byte
}

func newSimProvider(formatter *wire.Formatter, serviceName string, sim config.SimulationConfig) *simProvider {
	seed := uint64(sim.Seed)
	p := &simProvider{
		formatter:       formatter,
		serviceName:     serviceName,
		events:          make(chan wire.Record, 16),
		rng:             rand.New(rand.NewPCG(seed, seed)),
		cyclesPerUpdate: sim.CyclesPerUpdate,
		mode:            "running",
		sp:              0x01FF,
		pc:              0xC600,
		p:               flagU | flagI,
	}
	for i := range p.mem {
		p.mem[i] = uint8(p.rng.UintN(256))
	}
	for i := range p.display {
		p.display[i] = uint8(p.rng.UintN(256))
	}
	return p
}

// Events delivers event records raised by state transitions, for the
// daemon to push through the broadcast path. Events are dropped, not
// queued unboundedly, if the consumer falls behind.
func (p *simProvider) Events() <-chan wire.Record {
	return p.events
}

func (p *simProvider) HelloText() string {
	return p.serviceName
}

func (p *simProvider) FullSnapshot() ([]wire.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	f := p.formatter
	recs := []wire.Record{
		f.Line("mach", "info", "name", machineName, nil),
		f.Line("mach", "info", "clock_mhz", "1.023", nil),
		f.Line("mach", "status", "mode", p.mode, nil),
		f.Line("mach", "status", "cycles", strconv.FormatUint(p.cycles, 10), nil),
		f.Line("cpu", "regs", "a", wire.Hex8(p.a), nil),
		f.Line("cpu", "regs", "x", wire.Hex8(p.x), nil),
		f.Line("cpu", "regs", "y", wire.Hex8(p.y), nil),
		f.Line("cpu", "regs", "pc", wire.Hex16(p.pc), nil),
		f.Line("cpu", "regs", "sp", wire.Hex16(p.sp), nil),
		f.Line("cpu", "regs", "p", wire.Hex8(p.p), nil),
	}
	for i, name := range flagNames {
		recs = append(recs, f.Line("cpu", "flags", name, flagBit(p.p, flagMasks[i]), nil))
	}
	recs = append(recs,
		f.Line("cpu", "status", "jammed", boolBit(p.jammed), nil),
		f.Line("mem", "bank", "main", "00", nil),
		f.Line("mem", "bank", "aux", "01", nil),
		f.Line("mem", "page", "dump", hexDump(p.mem[:64]), map[string]string{"addr": wire.Hex16(pageBase)}),
		f.Line("display", "text", "digest", p.displayDigest(), nil),
	)
	return recs, nil
}

func (p *simProvider) IncrementalUpdate(tier wire.Tier) ([]wire.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.step()

	f := p.formatter
	recs := []wire.Record{
		f.Stamped("mach", "status", "cycles", strconv.FormatUint(p.cycles, 10), nil),
		f.Stamped("cpu", "regs", "pc", wire.Hex16(p.pc), nil),
		f.Stamped("cpu", "regs", "a", wire.Hex8(p.a), nil),
		f.Stamped("cpu", "regs", "x", wire.Hex8(p.x), nil),
		f.Stamped("cpu", "regs", "y", wire.Hex8(p.y), nil),
		f.Stamped("cpu", "regs", "sp", wire.Hex16(p.sp), nil),
		f.Stamped("cpu", "regs", "p", wire.Hex8(p.p), nil),
	}
	if tier >= wire.TierStandard {
		for i, name := range flagNames {
			recs = append(recs, f.Stamped("cpu", "flags", name, flagBit(p.p, flagMasks[i]), nil))
		}
		recs = append(recs,
			f.Stamped("mach", "status", "mode", p.mode, nil),
			f.Stamped("cpu", "status", "jammed", boolBit(p.jammed), nil),
		)
	}
	if tier >= wire.TierFull {
		recs = append(recs,
			f.Stamped("mem", "page", "dump", hexDump(p.mem[:64]), map[string]string{"addr": wire.Hex16(pageBase)}),
			f.Stamped("display", "text", "digest", p.displayDigest(), nil),
		)
	}
	return recs, nil
}

// step advances the machine by one update's worth of simulated
// execution. Caller holds p.mu.
func (p *simProvider) step() {
	p.cycles += p.cyclesPerUpdate
	p.pc += uint16(1 + p.rng.UintN(7))
	p.a = uint8(p.rng.UintN(256))
	p.x++
	p.y--
	p.sp = 0x01F0 + uint16(p.rng.UintN(16))

	p.p = flagU | flagI
	if p.a&0x80 != 0 {
		p.p |= flagN
	}
	if p.a == 0 {
		p.p |= flagZ
	}
	if p.rng.UintN(2) == 1 {
		p.p |= flagC
	}

	p.mem[p.rng.UintN(uint(len(p.mem)))] = uint8(p.rng.UintN(256))
	p.display[p.rng.UintN(uint(len(p.display)))] = uint8(p.rng.UintN(256))

	p.updates++
	if p.updates%modeFlipEvery == 0 {
		if p.mode == "running" {
			p.mode = "stepping"
		} else {
			p.mode = "running"
		}
		rec := p.formatter.Stamped("mach", "status", "mode", p.mode, nil)
		select {
		case p.events <- rec:
		default:
		}
	}
}

func (p *simProvider) displayDigest() string {
	return fmt.Sprintf("%08X", crc32.ChecksumIEEE(p.display[:]))
}

func flagBit(p, mask uint8) string {
	if p&mask != 0 {
		return "1"
	}
	return "0"
}

func boolBit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func hexDump(data []byte) string {
	var b strings.Builder
	b.Grow(len(data) * 2)
	for _, v := range data {
		b.WriteString(wire.Hex8(v))
	}
	return b.String()
}
