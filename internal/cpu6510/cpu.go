// Package cpu6510 implements the MOS 6510: the 6502 core used in the C64,
// with its two extra I/O port pins overlaid on addresses $0000/$0001 (the
// PLA, not this package, interprets them). It executes full instructions
// per scheduler callback and reschedules for the instruction's total
// cycle cost rather than stepping one bus-cycle micro-op at a time; see
// DESIGN.md for why that tradeoff was made and what it does not model.
package cpu6510

import (
	"fmt"

	"github.com/halfcycle/sidcore/internal/scheduler"
)

// Bus is the CPU's view of memory: the PLA/MMU in practice.
type Bus interface {
	Peek(addr uint16) uint8
	Poke(addr uint16, val uint8)
}

// Status flags, in the canonical 6502 bit positions.
const (
	FlagC uint8 = 1 << 0
	FlagZ uint8 = 1 << 1
	FlagI uint8 = 1 << 2
	FlagD uint8 = 1 << 3
	FlagB uint8 = 1 << 4
	Flag1 uint8 = 1 << 5 // unused, always reads 1
	FlagV uint8 = 1 << 6
	FlagN uint8 = 1 << 7
)

const (
	vectorNMI   = 0xFFFA
	vectorRESET = 0xFFFC
	vectorIRQ   = 0xFFFE
)

// HaltError is returned by Step when an undefined opcode has frozen the
// CPU (the "haltInstruction" trap). The player converts this to an error
// string and the caller may Load a fresh tune to recover.
type HaltError struct {
	Opcode uint8
	PC     uint16
}

func (e HaltError) Error() string {
	return fmt.Sprintf("6510 halted on illegal opcode $%02X at $%04X", e.Opcode, e.PC)
}

// CPU holds the full 6510 register and interrupt-line state.
type CPU struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16
	P       uint8

	bus Bus

	cycle uint64 // total cycles executed, used for the IRQ/NMI 2-cycle pipeline

	irqLevel     bool
	irqAssertAt  uint64
	nmiPending   bool
	nmiAssertAt  uint64
	rstPending   bool
	rdy          bool
	halted       bool
	haltOpcode   uint8

	event *scheduler.Event
	sched *scheduler.Scheduler
}

// New creates a CPU wired to bus; Reset must be called before use.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus, rdy: true, P: FlagI | Flag1}
	return c
}

// AttachScheduler registers the CPU as a Phi2 event so it self-clocks:
// each fire executes one instruction and reschedules for its cost.
func (c *CPU) AttachScheduler(s *scheduler.Scheduler) {
	c.sched = s
	c.event = scheduler.NewEvent("cpu6510", c.tick)
	s.Schedule(c.event, 1, scheduler.Phi2)
}

func (c *CPU) tick() {
	cycles, err := c.Step()
	if err != nil {
		cycles = 1 // keep the scheduler alive; Player surfaces the halt
	}
	if cycles < 1 {
		cycles = 1
	}
	c.sched.Schedule(c.event, int64(cycles), scheduler.Phi2)
}

// Pause cancels the CPU's own scheduler event, so it sits idle (CIA, VIC
// and SID keep ticking) until Resume re-arms it. Used by the player around
// its synthetic, non-relocated routine calls, where there is no real driver
// code at PC for the CPU to usefully execute between calls.
func (c *CPU) Pause() {
	if c.event != nil {
		c.sched.Cancel(c.event)
	}
}

// Resume re-arms the CPU's scheduler event one cycle from now. A no-op if
// the event is already pending.
func (c *CPU) Resume() {
	if c.event != nil && !c.event.Pending() {
		c.sched.Schedule(c.event, 1, scheduler.Phi2)
	}
}

// NextEventTime reports the absolute half-cycle time of the CPU's next
// scheduled tick, and whether it currently has one pending; it has none
// while Paused.
func (c *CPU) NextEventTime() (uint64, bool) {
	if c.event == nil || !c.event.Pending() {
		return 0, false
	}
	return c.event.TriggerTime(), true
}

// SuppressPendingInterrupt resets the IRQ/NMI assertion timestamps to the
// CPU's current cycle, so an interrupt already latched by CIA or VIC does
// not pass the 2-cycle debounce on the very next Step. A synthetic routine
// call forces PC to the routine's entry point rather than fetching it from
// a real interrupt/call sequence; without this, a level already latched
// before the call would fire immediately and push the forced PC itself as
// a bogus return address.
func (c *CPU) SuppressPendingInterrupt() {
	c.irqAssertAt = c.cycle
	c.nmiAssertAt = c.cycle
}

// Reset fetches the reset vector over 7 cycles and begins execution there.
func (c *CPU) Reset() {
	c.A, c.X, c.Y = 0, 0, 0
	c.SP = 0xFD
	c.P = FlagI | Flag1
	c.PC = c.read16(vectorRESET)
	c.halted = false
	c.cycle += 7
}

// TriggerIRQ asserts the level-sensitive IRQ line.
func (c *CPU) TriggerIRQ() {
	if !c.irqLevel {
		c.irqAssertAt = c.cycle
	}
	c.irqLevel = true
}

// ClearIRQ deasserts the IRQ line.
func (c *CPU) ClearIRQ() { c.irqLevel = false }

// TriggerNMI latches an NMI edge.
func (c *CPU) TriggerNMI() {
	if !c.nmiPending {
		c.nmiAssertAt = c.cycle
	}
	c.nmiPending = true
}

// TriggerRST latches a reset edge, serviced on the next Step.
func (c *CPU) TriggerRST() { c.rstPending = true }

// SetRDY drives the AEC/RDY line: low pauses read cycles, writes proceed.
func (c *CPU) SetRDY(state bool) { c.rdy = state }

// Halted reports whether an illegal opcode has frozen the CPU.
func (c *CPU) Halted() bool { return c.halted }

// HaltOpcode reports the illegal opcode that froze the CPU. Only
// meaningful once Halted reports true.
func (c *CPU) HaltOpcode() uint8 { return c.haltOpcode }

// Cycle returns the CPU's own elapsed-cycle counter, used for the
// interrupt pipeline and exposed for debug snapshots.
func (c *CPU) Cycle() uint64 { return c.cycle }

// Step executes the next pending interrupt sequence or, absent one, the
// instruction at PC, returning the number of cycles it consumed.
func (c *CPU) Step() (int, error) {
	if c.halted {
		return 1, HaltError{Opcode: c.haltOpcode, PC: c.PC}
	}

	if !c.rdy {
		// Reads stall, writes proceed; at instruction granularity the
		// closest approximation is to idle one cycle and retry.
		c.cycle++
		return 1, nil
	}

	if c.rstPending {
		c.rstPending = false
		c.Reset()
		return 7, nil
	}

	if c.nmiPending && c.cycle-c.nmiAssertAt >= 2 {
		c.nmiPending = false
		return c.serviceInterrupt(vectorNMI, false), nil
	}

	if c.irqLevel && c.P&FlagI == 0 && c.cycle-c.irqAssertAt >= 2 {
		return c.serviceInterrupt(vectorIRQ, false), nil
	}

	opcode := c.fetch()
	entry := opcodeTable[opcode]
	if entry.exec == nil {
		c.halted = true
		c.haltOpcode = opcode
		c.PC--
		return 1, HaltError{Opcode: opcode, PC: c.PC}
	}

	extra := entry.exec(c, entry.mode)
	total := entry.cycles + extra
	c.cycle += uint64(total)
	return total, nil
}

// serviceInterrupt pushes PC and status and loads vector. isBRK controls
// whether the pushed status has the B flag set (BRK/software) or clear
// (hardware IRQ/NMI).
func (c *CPU) serviceInterrupt(vector uint16, isBRK bool) int {
	c.push16(c.PC)
	status := c.P | Flag1
	if isBRK {
		status |= FlagB
	} else {
		status &^= FlagB
	}
	c.push(status)
	c.P |= FlagI
	c.PC = c.read16(vector)
	c.cycle += 7
	return 7
}

func (c *CPU) fetch() uint8 {
	v := c.bus.Peek(c.PC)
	c.PC++
	return v
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := uint16(c.bus.Peek(addr))
	hi := uint16(c.bus.Peek(addr + 1))
	return lo | hi<<8
}

func (c *CPU) push(v uint8) {
	c.bus.Poke(0x0100|uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pull() uint8 {
	c.SP++
	return c.bus.Peek(0x0100 | uint16(c.SP))
}

func (c *CPU) push16(v uint16) {
	c.push(uint8(v >> 8))
	c.push(uint8(v))
}

func (c *CPU) pull16() uint16 {
	lo := uint16(c.pull())
	hi := uint16(c.pull())
	return lo | hi<<8
}

func (c *CPU) setZN(v uint8) {
	if v == 0 {
		c.P |= FlagZ
	} else {
		c.P &^= FlagZ
	}
	if v&0x80 != 0 {
		c.P |= FlagN
	} else {
		c.P &^= FlagN
	}
}

func (c *CPU) setFlag(mask uint8, set bool) {
	if set {
		c.P |= mask
	} else {
		c.P &^= mask
	}
}
