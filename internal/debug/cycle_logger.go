package debug

import (
	"fmt"
	"os"
	"sync"
)

// MemoryReader interface for reading memory (to avoid import cycles)
type MemoryReader interface {
	Peek(addr uint16) uint8
}

// CPUStateSnapshot represents 6510 register state for logging (to avoid
// import cycles between cpu6510 and debug).
type CPUStateSnapshot struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16
	Flags   uint8
	Cycle   uint64
}

// CIAStateSnapshot represents one CIA's timer state for logging.
type CIAStateSnapshot struct {
	TimerA, TimerB uint16
	ICR            uint8
}

// SIDStateSnapshot represents one SID chip's voice state for logging.
type SIDStateSnapshot struct {
	VoiceFreq  [3]uint16
	VoiceADSR  [3]uint8
	FilterCut  uint16
	MasterVol  uint8
}

// CycleLogger logs scheduler/CPU/chip state at a caller-chosen cadence.
// This is useful for debugging timing-sensitive issues like bad-line
// stalls or ADSR state transitions that only show up over many cycles.
type CycleLogger struct {
	file         *os.File
	maxCycles    uint64
	startCycle   uint64 // first LogCycle call (1-based) that is logged
	currentCycle uint64
	totalCycles  uint64
	enabled      bool
	mu           sync.Mutex

	mem MemoryReader
}

// NewCycleLogger creates a new cycle logger.
// maxCycles: maximum number of samples to log (0 = unlimited, use with care).
// startCycle: calls to LogCycle before the startCycle-th one are skipped.
func NewCycleLogger(filename string, maxCycles uint64, startCycle uint64, mem MemoryReader) (*CycleLogger, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create cycle log file: %w", err)
	}

	logger := &CycleLogger{
		file:       file,
		maxCycles:  maxCycles,
		startCycle: startCycle,
		enabled:    true,
		mem:        mem,
	}

	fmt.Fprintf(file, "Half-cycle debug log\n")
	fmt.Fprintf(file, "=====================\n\n")
	if startCycle > 0 {
		fmt.Fprintf(file, "Start cycle offset: %d\n", startCycle)
	}
	if maxCycles > 0 {
		fmt.Fprintf(file, "Max samples to log: %d\n", maxCycles)
	}
	fmt.Fprintf(file, "\nFormat: t | PC A X Y SP Flags | CIA1(TA TB ICR) | CIA2(TA TB ICR) | SID(v0 v1 v2 cutoff vol)\n\n")

	return logger, nil
}

// LogCycle logs CPU and chip snapshots for one sample.
func (c *CycleLogger) LogCycle(t uint64, cpu *CPUStateSnapshot, cia1, cia2 *CIAStateSnapshot, sid *SIDStateSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return
	}

	c.totalCycles++
	if c.totalCycles < c.startCycle {
		return
	}
	if c.maxCycles > 0 && c.currentCycle >= c.maxCycles {
		c.enabled = false
		return
	}
	c.currentCycle++

	fmt.Fprintf(c.file, "t=%10d | PC:%04X A:%02X X:%02X Y:%02X SP:%02X Fl:%02X",
		t, cpu.PC, cpu.A, cpu.X, cpu.Y, cpu.SP, cpu.Flags)

	if cia1 != nil {
		fmt.Fprintf(c.file, " | CIA1(TA:%04X TB:%04X ICR:%02X)", cia1.TimerA, cia1.TimerB, cia1.ICR)
	}
	if cia2 != nil {
		fmt.Fprintf(c.file, " | CIA2(TA:%04X TB:%04X ICR:%02X)", cia2.TimerA, cia2.TimerB, cia2.ICR)
	}
	if sid != nil {
		fmt.Fprintf(c.file, " | SID(v0:%04X v1:%04X v2:%04X cut:%04X vol:%02X)",
			sid.VoiceFreq[0], sid.VoiceFreq[1], sid.VoiceFreq[2], sid.FilterCut, sid.MasterVol)
	}
	fmt.Fprintln(c.file)
}

// SetEnabled enables or disables logging.
func (c *CycleLogger) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

// Toggle toggles logging on/off.
func (c *CycleLogger) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = !c.enabled
}

// Close closes the log file.
func (c *CycleLogger) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.enabled = false

	if c.file != nil {
		fmt.Fprintf(c.file, "\n\nLog complete. Samples logged: %d\n", c.currentCycle)
		err := c.file.Close()
		c.file = nil
		return err
	}
	return nil
}

// IsEnabled returns whether logging is enabled.
func (c *CycleLogger) IsEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled && (c.maxCycles == 0 || c.currentCycle < c.maxCycles)
}

// GetStatus returns the current logging status.
func (c *CycleLogger) GetStatus() (enabled bool, currentCycle uint64, totalCycles uint64, maxCycles uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled, c.currentCycle, c.totalCycles, c.maxCycles
}
