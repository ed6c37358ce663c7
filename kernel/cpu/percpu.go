package cpu

// maxCPUs bounds the per-CPU table. SMP bring-up is not implemented yet so
// only entry 0 is ever used, but the table is sized for the eventual AP
// startup sequence.
const maxCPUs = 8

// flagInterruptEnable is the IF bit of the RFLAGS register.
const flagInterruptEnable = 1 << 9

// PerCPU tracks per-processor state that must survive nested interrupt
// disable/enable sections, namely the cli/sti nesting counter used by
// PushCLI/PopCLI.
type PerCPU struct {
	id                 uint32
	nCli               uint32
	oldInterruptEnable bool
}

var cpus [maxCPUs]PerCPU

var (
	readFlagsFn         = ReadFlags
	enableInterruptsFn  = EnableInterrupts
	disableInterruptsFn = DisableInterrupts
)

// Current returns the PerCPU state for the processor currently executing
// this code.
//
// TODO: resolve the running CPU via a GS-relative pointer once SMP bring-up
// is implemented; until then every core is treated as CPU 0.
func Current() *PerCPU {
	return &cpus[0]
}

// ID returns the index of this CPU inside the per-CPU table.
func (c *PerCPU) ID() uint32 {
	return c.id
}

// NCli returns the current PushCLI nesting depth for this CPU.
func (c *PerCPU) NCli() uint32 {
	return c.nCli
}

// PushCLI disables interrupts, remembering whether they were enabled the
// first time it is invoked at the current nesting depth. Calls to PushCLI
// may nest; interrupts are restored to their original state only once the
// matching number of PopCLI calls have been made.
func (c *PerCPU) PushCLI() {
	wasEnabled := readFlagsFn()&flagInterruptEnable != 0
	disableInterruptsFn()
	if c.nCli == 0 {
		c.oldInterruptEnable = wasEnabled
	}
	c.nCli++
}

// PopCLI reverses the effect of a previous PushCLI call. It panics if
// interrupts are found enabled (indicating cli/sti were manipulated outside
// of the PushCLI/PopCLI discipline) or if called without an outstanding
// PushCLI.
func (c *PerCPU) PopCLI() {
	if readFlagsFn()&flagInterruptEnable != 0 {
		panic("cpu: PopCLI called with interrupts enabled")
	}

	if c.nCli == 0 {
		panic("cpu: PopCLI called without a matching PushCLI")
	}

	c.nCli--
	if c.nCli == 0 && c.oldInterruptEnable {
		enableInterruptsFn()
	}
}
