package macho

// A Cpu is a Mach-O cpu type. Only the two 32-bit architectures this
// reconstructor supports (spec.md's CPU set) are named; the header's raw
// Cpu field still round-trips any other value for error reporting.
type Cpu uint32

const (
	Cpu386 Cpu = 7
	CpuPpc Cpu = 18
)

var cpuStrings = []intName{
	{uint32(Cpu386), "Cpu386"},
	{uint32(CpuPpc), "CpuPpc"},
}

func (i Cpu) String() string   { return stringName(uint32(i), cpuStrings, false) }
func (i Cpu) GoString() string { return stringName(uint32(i), cpuStrings, true) }
