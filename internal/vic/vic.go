// Package vic implements a timing-only model of the MOS 6567/6569 video
// controller: raster counting, bad-line detection, sprite DMA / BA cycle
// stealing, and the raster/light-pen IRQ line. No pixel is ever produced;
// the chip exists only so its bus-contention timing can be reproduced.
package vic

import "github.com/halfcycle/sidcore/internal/scheduler"

// Model selects the chip variant, which fixes cyclesPerLine/rasterLines.
type Model int

const (
	Model6567R56A Model = iota // old NTSC
	Model6567R8                // NTSC-M
	Model6569                  // PAL-B
	Model6572                  // PAL-N
	Model6573
)

type timing struct {
	cyclesPerLine uint16
	rasterLines   uint16
}

var modelTiming = [...]timing{
	Model6567R56A: {64, 262}, // old NTSC
	Model6567R8:   {65, 263}, // NTSC-M
	Model6569:     {63, 312}, // PAL-B
	Model6572:     {65, 312}, // PAL-N
	Model6573:     {65, 312}, // PAL-M
}

const (
	irqRaster   uint8 = 1 << 0
	irqLightpen uint8 = 1 << 3

	firstDMALine = 0x30
	lastDMALine  = 0xf7
)

// VIC is one video controller instance.
type VIC struct {
	cyclesPerLine uint16
	maxRasters    uint16

	lineCycle uint16
	rasterY   uint16
	yScroll   uint16
	rasterIRQLine uint16

	areBadLinesEnabled bool
	isBadLine          bool
	vblanking          bool
	lpTriggered        bool

	irqFlags uint8
	irqMask  uint8
	lpx, lpy uint8

	spriteEnable     uint8
	spriteYExpansion uint8
	spriteDMA        uint8
	spriteExpandY    uint8
	spriteMCBase     [8]uint8

	regs [0x40]uint8

	onInterrupt func(assert bool)
	onBA        func(high bool)

	rasterClk uint64

	sched *scheduler.Scheduler
	event *scheduler.Event
}

// New creates a VIC for the given model. onInterrupt is called whenever
// the IRQ line's asserted state changes; onBA whenever BA/AEC changes.
func New(model Model, onInterrupt func(assert bool), onBA func(high bool)) *VIC {
	v := &VIC{onInterrupt: onInterrupt, onBA: onBA}
	v.SetModel(model)
	return v
}

// SetModel re-derives per-line timing and resets the chip.
func (v *VIC) SetModel(model Model) {
	t := modelTiming[model]
	v.cyclesPerLine = t.cyclesPerLine
	v.maxRasters = t.rasterLines
	v.Reset()
}

// Reset restores power-on state.
func (v *VIC) Reset() {
	v.irqFlags = 0
	v.irqMask = 0
	v.rasterIRQLine = 0
	v.yScroll = 0
	v.rasterY = v.maxRasters - 1
	v.lineCycle = 0
	v.areBadLinesEnabled = false
	v.vblanking = false
	v.lpTriggered = false
	v.lpx, v.lpy = 0, 0
	v.spriteDMA = 0
	v.spriteExpandY = 0xff
	v.regs = [0x40]uint8{}
	v.spriteMCBase = [8]uint8{}
	if v.sched != nil {
		v.rasterClk = v.sched.Now(scheduler.Phi1)
		v.sched.Schedule(v.event, 0, scheduler.Phi1)
	}
}

// AttachScheduler registers the VIC's self-rescheduling raster event.
func (v *VIC) AttachScheduler(s *scheduler.Scheduler) {
	v.sched = s
	v.event = scheduler.NewEvent("vic raster", v.onEvent)
	v.rasterClk = s.Now(scheduler.Phi1)
	s.Schedule(v.event, 0, scheduler.Phi1)
}

func (v *VIC) onEvent() {
	delay := v.clock()
	v.sched.Schedule(v.event, int64(delay), scheduler.Phi1)
}

// clock catches the raster state machine up to the scheduler's current
// time, advancing lineCycle/rasterY by however many whole cycles have
// actually elapsed since the last catch-up, and returns the number of
// cycles until the next state change is due.
func (v *VIC) clock() int {
	if v.sched == nil {
		return v.advance(1)
	}
	cycles := v.sched.NowSince(v.rasterClk, scheduler.Phi1)
	if cycles == 0 {
		return 1
	}
	v.rasterClk += cycles
	return v.advance(cycles)
}

func (v *VIC) readDEN() bool { return v.regs[0x11]&0x10 != 0 }

func (v *VIC) evaluateIsBadLine() bool {
	return v.areBadLinesEnabled &&
		v.rasterY >= firstDMALine && v.rasterY <= lastDMALine &&
		v.rasterY&7 == v.yScroll
}

// Peek reads a VIC register (addr already reduced to the 0x00-0x3f window).
func (v *VIC) Peek(addr uint16) uint8 {
	a := addr & 0x3f
	v.clock()
	switch a {
	case 0x11:
		return (v.regs[a] & 0x7f) | uint8((v.rasterY&0x100)>>1)
	case 0x12:
		return uint8(v.rasterY)
	case 0x13:
		return v.lpx
	case 0x14:
		return v.lpy
	case 0x19:
		return v.irqFlags | 0x70
	case 0x1a:
		return v.irqMask | 0xf0
	default:
		if a < 0x20 {
			return v.regs[a]
		}
		if a < 0x2f {
			return v.regs[a] | 0xf0
		}
		return 0xff
	}
}

// Poke writes a VIC register (addr already reduced to the 0x00-0x3f window).
func (v *VIC) Poke(addr uint16, data uint8) {
	a := addr & 0x3f
	v.regs[a] = data
	v.clock()

	switch a {
	case 0x11:
		v.rasterIRQLine = (v.rasterIRQLine & 0x00ff) | uint16(data>>7)<<8
		v.yScroll = uint16(data & 7)

		if v.lineCycle < 11 {
			return
		}
		if v.rasterY == firstDMALine {
			v.areBadLinesEnabled = v.areBadLinesEnabled || v.readDEN()
		}
		oldBadLine := v.isBadLine
		v.isBadLine = v.evaluateIsBadLine()
		if v.isBadLine != oldBadLine && v.lineCycle < 53 {
			v.setBA(false)
		}

	case 0x12:
		v.rasterIRQLine = (v.rasterIRQLine & 0xff00) | uint16(data)

	case 0x15:
		v.spriteEnable = data
	case 0x17:
		v.spriteYExpansion = data
		v.spriteExpandY |= ^data

	case 0x19:
		v.irqFlags &= (^data & 0x0f) | 0x80
		v.handleIRQState()

	case 0x1a:
		v.irqMask = data & 0x0f
		v.handleIRQState()
	}
}

func (v *VIC) activateIRQFlag(flag uint8) {
	v.irqFlags |= flag
	v.handleIRQState()
}

func (v *VIC) handleIRQState() {
	if v.irqFlags&v.irqMask&0x0f != 0 {
		if v.irqFlags&0x80 == 0 {
			v.setInterrupt(true)
			v.irqFlags |= 0x80
		}
	} else if v.irqFlags&0x80 != 0 {
		v.setInterrupt(false)
		v.irqFlags &^= 0x80
	}
}

func (v *VIC) setInterrupt(assert bool) {
	if v.onInterrupt != nil {
		v.onInterrupt(assert)
	}
}

func (v *VIC) setBA(high bool) {
	if v.onBA != nil {
		v.onBA(high)
	}
}

// Lightpen latches the current raster position as a light-pen trigger.
func (v *VIC) Lightpen() {
	v.clock()
	if !v.lpTriggered {
		v.lpx = uint8(v.lineCycle << 2)
		v.lpy = uint8(v.rasterY)
		v.activateIRQFlag(irqLightpen)
	}
}

// advance runs the raster state machine forward by the given number of
// elapsed cycles and returns the number of cycles until the next state
// change is due.
func (v *VIC) advance(cycles uint64) int {
	delay := 1

	v.lineCycle = uint16((uint64(v.lineCycle) + cycles) % uint64(v.cyclesPerLine))

	switch v.lineCycle {
	case 0:
		if v.rasterY == v.maxRasters-1 {
			v.vblanking = true
		} else {
			v.rasterY++
			if v.rasterY == v.rasterIRQLine {
				v.activateIRQFlag(irqRaster)
			}
		}
		if v.rasterY == firstDMALine {
			v.areBadLinesEnabled = v.readDEN()
		}
		v.isBadLine = v.evaluateIsBadLine()
		if v.spriteDMA&0x18 == 0 {
			v.setBA(true)
		}

	case 1:
		if v.vblanking {
			v.vblanking = false
			v.lpTriggered = false
			v.rasterY = 0
			if v.rasterIRQLine == 0 {
				v.activateIRQFlag(irqRaster)
			}
		}
		if v.spriteDMA&0x20 != 0 {
			v.setBA(false)
		} else if v.spriteDMA&0xf8 == 0 {
			delay = 10
		}

	case 2:
		if v.spriteDMA&0x30 == 0 {
			v.setBA(true)
		}
	case 3:
		if v.spriteDMA&0x40 != 0 {
			v.setBA(false)
		}
	case 4:
		if v.spriteDMA&0x60 == 0 {
			v.setBA(true)
		}
	case 5:
		if v.spriteDMA&0x80 != 0 {
			v.setBA(false)
		}
	case 6:
		if v.spriteDMA&0xc0 == 0 {
			v.setBA(true)
			delay = 5
		} else {
			delay = 2
		}
	case 7:
	case 8:
		if v.spriteDMA&0x80 == 0 {
			v.setBA(true)
			delay = 3
		} else {
			delay = 2
		}
	case 9:
	case 10:
		v.setBA(true)

	case 11:
		if v.isBadLine {
			v.setBA(false)
		}
		delay = 3

	case 12, 13:

	case 14:
		for i := 0; i < 8; i++ {
			if v.spriteExpandY&(1<<uint(i)) != 0 {
				v.spriteMCBase[i] += 2
			}
		}

	case 15:
		mask := uint8(1)
		for i := 0; i < 8; i, mask = i+1, mask<<1 {
			if v.spriteExpandY&mask != 0 {
				v.spriteMCBase[i]++
			}
			if v.spriteMCBase[i]&0x3f == 0x3f {
				v.spriteDMA &^= mask
			}
		}
		delay = 39

	case 54:
		y := uint8(v.rasterY)
		mask := uint8(1)
		for i := 1; i < 0x10; i, mask = i+1, mask<<1 {
			if v.spriteEnable&mask != 0 && y == v.regs[i<<1] {
				v.spriteDMA |= mask
				v.spriteMCBase[i] = 0
			}
		}
		v.setBA(v.spriteDMA&0x01 == 0)

	case 55:
		y := uint8(v.rasterY)
		v.spriteExpandY ^= v.spriteYExpansion
		mask := uint8(1)
		for i := 1; i < 0x10; i, mask = i+1, mask<<1 {
			if v.spriteEnable&mask != 0 && y == v.regs[i<<1] {
				v.spriteDMA |= mask
				v.spriteMCBase[i] = 0
				v.spriteExpandY &^= v.spriteYExpansion & mask
			}
		}
		if v.spriteDMA&0x01 != 0 {
			v.setBA(false)
		} else {
			v.setBA(true)
			if v.spriteDMA&0x1f == 0 {
				delay = 8
			}
		}

	case 56:
		if v.spriteDMA&0x02 != 0 {
			v.setBA(false)
		}
		delay = 2

	case 57:
	case 58:
		if v.spriteDMA&0x04 != 0 {
			v.setBA(false)
		}
	case 59:
		if v.spriteDMA&0x06 == 0 {
			v.setBA(true)
		}
	case 60:
		if v.spriteDMA&0x08 != 0 {
			v.setBA(false)
		}
	case 61:
		if v.spriteDMA&0x0c == 0 {
			v.setBA(true)
		}
	case 62:
		if v.spriteDMA&0x10 != 0 {
			v.setBA(false)
		}

	default:
		delay = int(54 - v.lineCycle)
	}

	return delay
}

// RasterY returns the current raster line.
func (v *VIC) RasterY() uint16 { return v.rasterY }

// CyclesPerLine returns the model's per-line cycle count.
func (v *VIC) CyclesPerLine() uint16 { return v.cyclesPerLine }

// RasterLines returns the model's total raster line count.
func (v *VIC) RasterLines() uint16 { return v.maxRasters }
