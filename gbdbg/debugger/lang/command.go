// Package lang defines the debugger's command language: the Command sum
// type, addressable locations, step frequencies and the line parser.
package lang

// Command is the parsed form of one debugger statement. The concrete types
// below form a closed set, dispatched by type switch.
type Command interface {
	command()
}

// Break sets a breakpoint at an address.
type Break struct {
	Address uint16
}

// Continue resumes execution until a breakpoint, cancellation or program stop.
type Continue struct{}

// Delete removes a breakpoint by id.
type Delete struct {
	ID int
}

// Disable deactivates a breakpoint without removing it.
type Disable struct {
	ID int
}

// Enable reactivates a disabled breakpoint.
type Enable struct {
	ID int
}

// Freq selects the granularity used by subsequent bare steps.
type Freq struct {
	Frequency Frequency
}

// Goto forces the program counter, bypassing fetch/decode.
type Goto struct {
	Address uint16
}

// Help prints the command summary.
type Help struct{}

// Ignore sets a breakpoint's skip counter.
type Ignore struct {
	ID    int
	Count uint32
}

// Info reports session state, or just the breakpoint table when Break is set.
type Info struct {
	Break bool
}

// Jump forces the program counter. Same semantics as Goto.
type Jump struct {
	Address uint16
}

// List disassembles around the current program counter.
type List struct{}

// Load reads one or more register/IO locations for display.
type Load struct {
	Locations []Location
}

// Log applies a filter directive string, or reports the current
// configuration when Filter is empty and Set is false.
type Log struct {
	Set    bool
	Filter string
}

// Quit ends the session.
type Quit struct{}

// Read returns memory contents over an address or range.
type Read struct {
	Range Range
}

// Reset reinitializes the emulated hardware to its power-on state.
type Reset struct{}

// Serial accesses the mock serial buffer: enqueue a payload, peek the
// oldest byte, or (with neither) dequeue the oldest byte.
type Serial struct {
	Payload []byte
	Peek    bool
}

// Step advances a number of units. The unit is the session's configured
// frequency unless FreqSet overrides it for this step only.
type Step struct {
	Count     uint32
	Frequency Frequency
	FreqSet   bool
}

// Store writes a width-checked value to a register/IO location.
type Store struct {
	Location Location
	Value    uint64
}

// Write stores the low 8 bits of a value over an address or range.
type Write struct {
	Range Range
	Value uint64
}

func (Break) command()    {}
func (Continue) command() {}
func (Delete) command()   {}
func (Disable) command()  {}
func (Enable) command()   {}
func (Freq) command()     {}
func (Goto) command()     {}
func (Help) command()     {}
func (Ignore) command()   {}
func (Info) command()     {}
func (Jump) command()     {}
func (List) command()     {}
func (Load) command()     {}
func (Log) command()      {}
func (Quit) command()     {}
func (Read) command()     {}
func (Reset) command()    {}
func (Serial) command()   {}
func (Step) command()     {}
func (Store) command()    {}
func (Write) command()    {}
