package cia

import "testing"

func newTestCIA() (*CIA, *bool) {
	asserted := false
	c := New(Model6526, false, func(a bool) { asserted = a })
	return c, &asserted
}

func runCycles(c *CIA, n int) {
	for i := 0; i < n; i++ {
		c.advanceOneCycle()
	}
}

func TestTimerAUnderflowSetsICRBitAndAssertsIRQ(t *testing.T) {
	c, asserted := newTestCIA()
	c.Poke(TALo, 0x03)
	c.Poke(TAHi, 0x00)
	c.Poke(ICR, icrSet|icrTA)
	c.Poke(CRA, craStart)

	runCycles(c, 3)

	if !*asserted {
		t.Fatal("IRQ line should be asserted after timer A underflow")
	}
	data := c.Peek(ICR)
	if data&icrTA == 0 {
		t.Error("ICR readback must report timer A source")
	}
	if data&icrSet == 0 {
		t.Error("ICR readback must have bit 7 set when an enabled source fired")
	}
}

func TestTimerAOneShotStopsAfterUnderflow(t *testing.T) {
	c, _ := newTestCIA()
	c.Poke(TALo, 0x01)
	c.Poke(TAHi, 0x00)
	c.Poke(CRA, craStart|craRunMode)

	runCycles(c, 1)

	if c.cra&craStart != 0 {
		t.Error("one-shot timer must clear START after underflow")
	}
}

func TestTimerAContinuousReloadsAndKeepsRunning(t *testing.T) {
	c, _ := newTestCIA()
	c.Poke(TALo, 0x02)
	c.Poke(TAHi, 0x00)
	c.Poke(CRA, craStart)

	runCycles(c, 2)
	if c.cra&craStart == 0 {
		t.Fatal("continuous timer must keep running after underflow")
	}
	if c.timerA != 2 {
		t.Errorf("timer A should reload from latch, got %d", c.timerA)
	}
}

func TestICRReadClearsDataRegister(t *testing.T) {
	c, _ := newTestCIA()
	c.Poke(TALo, 0x01)
	c.Poke(TAHi, 0x00)
	c.Poke(ICR, icrSet|icrTA)
	c.Poke(CRA, craStart)
	runCycles(c, 1)

	first := c.Peek(ICR)
	if first&icrSet == 0 {
		t.Fatal("expected first ICR read to report the pending source")
	}
	second := c.Peek(ICR)
	if second&icrSet != 0 {
		t.Error("ICR must read back clear once acknowledged with no new source")
	}
}

func TestTODHourWriteOfTwelveFlipsAMPM(t *testing.T) {
	c, _ := newTestCIA()
	c.Poke(TODHr, 0x09)
	before := c.todHr & 0x80

	c.Poke(TODHr, 0x12)

	if c.todHr&0x1F != 0x09 {
		t.Errorf("writing hour=12 must not change the hour digits, got %#02x", c.todHr&0x1F)
	}
	if c.todHr&0x80 == before {
		t.Error("writing hour=12 must toggle the AM/PM bit")
	}
}

func TestTODReadLatchesAllFourBytesOnHourReadAndUnlatchesOnTenthsRead(t *testing.T) {
	c, _ := newTestCIA()
	c.todHr = 0x09
	c.todMin = 0x30
	c.todSec = 0x15
	c.todTenths = 0x05

	_ = c.Peek(TODHr) // latch

	c.todSec = 0x16 // ticks forward after latch

	if got := c.Peek(TODSec); got != 0x15 {
		t.Errorf("TODSec must read the latched value 0x15, got %#02x", got)
	}

	_ = c.Peek(TODTenths) // unlatch

	c.todSec = 0x17
	if got := c.Peek(TODSec); got != 0x17 {
		t.Errorf("TODSec must read live value 0x17 after unlatch, got %#02x", got)
	}
}

func TestSixteenTimerAUnderflowsRaiseExactlyOneSPInterrupt(t *testing.T) {
	c, asserted := newTestCIA()
	c.Poke(TALo, 0x01)
	c.Poke(TAHi, 0x00)
	c.Poke(ICR, icrSet|icrSDR)
	c.Poke(CRA, craStart|craSPMode)

	interruptCount := 0
	lastData := uint8(0)
	for i := 0; i < 16; i++ {
		runCycles(c, 1)
		if *asserted {
			lastData = c.Peek(ICR)
			if lastData&icrSDR != 0 {
				interruptCount++
			}
		}
	}

	if interruptCount != 1 {
		t.Errorf("expected exactly one SP interrupt across 16 underflows, got %d", interruptCount)
	}
}

func TestOldModelRetainsFlagOnSameCycleReoccur(t *testing.T) {
	c, _ := newTestCIA()
	c.icrMask = icrTA
	c.setICRBit(icrTA)
	c.reoccurredSinceRead = true

	_ = c.readICR()

	if c.icrData&icrTA == 0 {
		t.Error("6526 must retain the flag bit if the source reoccurred in the read's cycle")
	}
}

func TestNewModelClearsFlagRegardlessOfReoccur(t *testing.T) {
	c := New(Model8521, false, func(bool) {})
	c.icrMask = icrTA
	c.setICRBit(icrTA)
	c.reoccurredSinceRead = true

	_ = c.readICR()

	if c.icrData&icrTA != 0 {
		t.Error("8521 must clear the data register on read regardless of reoccur timing")
	}
}
