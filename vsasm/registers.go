package vsasm

import (
	"fmt"
	"sort"
	"strconv"
)

// Class is a register class. Each class has its own index space.
type Class uint8

const (
	ClassNone Class = iota
	ClassInput
	ClassTemp
	ClassConstant
	ClassOutput

	numClasses
)

// Register file sizes.
const (
	NumInputs    = 16
	NumTemps     = 16
	NumConstants = 96
	NumOutputs   = 7
)

var (
	// ReturnRegister receives function results. The allocator never hands it out.
	ReturnRegister = Register{Class: ClassTemp, Index: NumTemps - 1}

	// VersionRegister holds the compiler version header. The allocator
	// never hands it out.
	VersionRegister = Register{Class: ClassConstant, Index: NumConstants - 1}
)

var classPrefixes = [numClasses]string{
	ClassInput:    "v",
	ClassTemp:     "r",
	ClassConstant: "c",
	ClassOutput:   "o",
}

var classNames = [numClasses]string{
	ClassNone:     "none",
	ClassInput:    "input",
	ClassTemp:     "temporary",
	ClassConstant: "constant",
	ClassOutput:   "output",
}

// allocatable is the number of registers per class the allocator may issue.
var allocatable = [numClasses]int{
	ClassInput:    NumInputs,
	ClassTemp:     NumTemps - 1,
	ClassConstant: NumConstants - 1,
	ClassOutput:   NumOutputs,
}

func (c Class) String() string {
	if c < numClasses {
		return classNames[c]
	}
	return fmt.Sprintf("Class(%d)", c)
}

// Register is a physical register: a class and an index inside it.
type Register struct {
	Class Class
	Index int
}

// IsValid reports whether r names a register.
func (r Register) IsValid() bool {
	return r.Class != ClassNone && r.Class < numClasses
}

// String returns the physical name, e.g. "r3" or "c95". The zero Register
// has an empty name.
func (r Register) String() string {
	if !r.IsValid() {
		return ""
	}
	return classPrefixes[r.Class] + strconv.Itoa(r.Index)
}

// ParseRegister parses a physical register name such as "v0" or "c12".
func ParseRegister(name string) (Register, bool) {
	if len(name) < 2 {
		return Register{}, false
	}
	var class Class
	for c := ClassInput; c < numClasses; c++ {
		if classPrefixes[c][0] == name[0] {
			class = c
			break
		}
	}
	if class == ClassNone {
		return Register{}, false
	}
	index, err := strconv.Atoi(name[1:])
	if err != nil || index < 0 || name[1] == '+' || name[1] == '-' {
		return Register{}, false
	}
	return Register{Class: class, Index: index}, true
}

// Allocator hands out registers per class from a monotonic counter,
// reusing freed registers lowest index first.
type Allocator struct {
	next [numClasses]int
	free [numClasses][]int

	// peakTemps is the largest number of temporaries live at once.
	peakTemps int
}

// NewAllocator creates an allocator with every register available.
func NewAllocator() *Allocator {
	return &Allocator{}
}

func (a *Allocator) alloc(class Class) (Register, error) {
	if free := a.free[class]; len(free) > 0 {
		index := free[0]
		a.free[class] = free[1:]
		return Register{Class: class, Index: index}, nil
	}
	if a.next[class] >= allocatable[class] {
		return Register{}, NewError(ErrRegisterExhausted,
			fmt.Sprintf("out of %s registers (%d available)", class, allocatable[class]))
	}
	r := Register{Class: class, Index: a.next[class]}
	a.next[class]++
	if class == ClassTemp && a.next[class] > a.peakTemps {
		a.peakTemps = a.next[class]
	}
	return r, nil
}

// AllocInput allocates a vertex input register.
func (a *Allocator) AllocInput() (Register, error) {
	return a.alloc(ClassInput)
}

// AllocTemp allocates a temporary register.
func (a *Allocator) AllocTemp() (Register, error) {
	return a.alloc(ClassTemp)
}

// AllocConstant allocates a constant register.
func (a *Allocator) AllocConstant() (Register, error) {
	return a.alloc(ClassConstant)
}

// AllocOutput allocates an output register.
func (a *Allocator) AllocOutput() (Register, error) {
	return a.alloc(ClassOutput)
}

// AllocConstants allocates n consecutive constant registers and returns
// the first. Freed constants are not considered.
func (a *Allocator) AllocConstants(n int) (Register, error) {
	if n < 1 {
		n = 1
	}
	if a.next[ClassConstant]+n > allocatable[ClassConstant] {
		return Register{}, NewError(ErrRegisterExhausted,
			fmt.Sprintf("out of constant registers: need %d consecutive, %d left",
				n, allocatable[ClassConstant]-a.next[ClassConstant]))
	}
	r := Register{Class: ClassConstant, Index: a.next[ClassConstant]}
	a.next[ClassConstant] += n
	return r, nil
}

// Free returns r to its class. It does not check that r is in use;
// freeing a register twice keeps a single entry.
func (a *Allocator) Free(r Register) {
	if !r.IsValid() || r == ReturnRegister || r == VersionRegister {
		return
	}
	free := a.free[r.Class]
	i := sort.SearchInts(free, r.Index)
	if i < len(free) && free[i] == r.Index {
		return
	}
	free = append(free, 0)
	copy(free[i+1:], free[i:])
	free[i] = r.Index
	a.free[r.Class] = free
}

// Claim takes r back off the free list. It reports whether r was free.
func (a *Allocator) Claim(r Register) bool {
	if !r.IsValid() {
		return false
	}
	free := a.free[r.Class]
	i := sort.SearchInts(free, r.Index)
	if i == len(free) || free[i] != r.Index {
		return false
	}
	a.free[r.Class] = append(free[:i], free[i+1:]...)
	return true
}

// FreeAllTemps releases every temporary register.
func (a *Allocator) FreeAllTemps() {
	a.next[ClassTemp] = 0
	a.free[ClassTemp] = nil
}

// Used returns how many registers of class have been issued and not
// reset, freed ones included.
func (a *Allocator) Used(class Class) int {
	if class >= numClasses {
		return 0
	}
	return a.next[class]
}

// PeakTemps returns the highest number of temporaries issued in any one
// function so far.
func (a *Allocator) PeakTemps() int {
	return a.peakTemps
}
