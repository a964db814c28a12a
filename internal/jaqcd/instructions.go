package jaqcd

import (
	"encoding/json"

	"github.com/roach88/qschema/internal/dispatch"
)

// InstructionType is the "type" discriminant of an instruction.
type InstructionType string

const (
	TypeH             InstructionType = "h"
	TypeI             InstructionType = "i"
	TypeX             InstructionType = "x"
	TypeY             InstructionType = "y"
	TypeZ             InstructionType = "z"
	TypeS             InstructionType = "s"
	TypeSi            InstructionType = "si"
	TypeT             InstructionType = "t"
	TypeTi            InstructionType = "ti"
	TypeV             InstructionType = "v"
	TypeVi            InstructionType = "vi"
	TypeRx            InstructionType = "rx"
	TypeRy            InstructionType = "ry"
	TypeRz            InstructionType = "rz"
	TypePhaseShift    InstructionType = "phaseshift"
	TypeSwap          InstructionType = "swap"
	TypeISwap         InstructionType = "iswap"
	TypePSwap         InstructionType = "pswap"
	TypeXY            InstructionType = "xy"
	TypeXX            InstructionType = "xx"
	TypeYY            InstructionType = "yy"
	TypeZZ            InstructionType = "zz"
	TypeCSwap         InstructionType = "cswap"
	TypeCNot          InstructionType = "cnot"
	TypeCY            InstructionType = "cy"
	TypeCZ            InstructionType = "cz"
	TypeCPhaseShift   InstructionType = "cphaseshift"
	TypeCPhaseShift00 InstructionType = "cphaseshift00"
	TypeCPhaseShift01 InstructionType = "cphaseshift01"
	TypeCPhaseShift10 InstructionType = "cphaseshift10"
	TypeCCNot         InstructionType = "ccnot"
	TypeUnitary       InstructionType = "unitary"
)

// Instruction is one gate application. The set is closed: only the types
// in this package implement it.
type Instruction interface {
	InstructionType() InstructionType
	Validate() error
	groups() []fieldGroup
}

// Hadamard gate.
type H struct {
	SingleTarget
}

// Identity gate.
type I struct {
	SingleTarget
}

// Pauli-X gate.
type X struct {
	SingleTarget
}

// Pauli-Y gate.
type Y struct {
	SingleTarget
}

// Pauli-Z gate.
type Z struct {
	SingleTarget
}

// S gate, a quarter turn about Z.
type S struct {
	SingleTarget
}

// Si is the conjugate transpose of S.
type Si struct {
	SingleTarget
}

// T gate, an eighth turn about Z.
type T struct {
	SingleTarget
}

// Ti is the conjugate transpose of T.
type Ti struct {
	SingleTarget
}

// V gate, the square root of X.
type V struct {
	SingleTarget
}

// Vi is the conjugate transpose of V.
type Vi struct {
	SingleTarget
}

type Rx struct {
	SingleTarget
	Rotation
}

type Ry struct {
	SingleTarget
	Rotation
}

type Rz struct {
	SingleTarget
	Rotation
}

type PhaseShift struct {
	SingleTarget
	Rotation
}

type Swap struct {
	DoubleTarget
}

type ISwap struct {
	DoubleTarget
}

type PSwap struct {
	DoubleTarget
	Rotation
}

type XY struct {
	DoubleTarget
	Rotation
}

// XX is the Ising coupling about X.
type XX struct {
	DoubleTarget
	Rotation
}

type YY struct {
	DoubleTarget
	Rotation
}

type ZZ struct {
	DoubleTarget
	Rotation
}

type CSwap struct {
	SingleControl
	DoubleTarget
}

type CNot struct {
	SingleControl
	SingleTarget
}

type CY struct {
	SingleControl
	SingleTarget
}

type CZ struct {
	SingleControl
	SingleTarget
}

type CPhaseShift struct {
	SingleControl
	SingleTarget
	Rotation
}

// CPhaseShift00 shifts the phase of the |00> state.
type CPhaseShift00 struct {
	SingleControl
	SingleTarget
	Rotation
}

type CPhaseShift01 struct {
	SingleControl
	SingleTarget
	Rotation
}

type CPhaseShift10 struct {
	SingleControl
	SingleTarget
	Rotation
}

// CCNot is the Toffoli gate.
type CCNot struct {
	DoubleControl
	SingleTarget
}

// Unitary applies an arbitrary matrix to its targets.
type Unitary struct {
	TwoDimensionalMatrix
	MultiTarget
}

// Field groups, discriminants and encoding per instruction.

func (H) InstructionType() InstructionType { return TypeH }
func (g H) groups() []fieldGroup           { return []fieldGroup{g.SingleTarget} }
func (g H) Validate() error                { return checkGroups(g.groups()) }
func (g H) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeH), g.groups()) }

func (I) InstructionType() InstructionType { return TypeI }
func (g I) groups() []fieldGroup           { return []fieldGroup{g.SingleTarget} }
func (g I) Validate() error                { return checkGroups(g.groups()) }
func (g I) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeI), g.groups()) }

func (X) InstructionType() InstructionType { return TypeX }
func (g X) groups() []fieldGroup           { return []fieldGroup{g.SingleTarget} }
func (g X) Validate() error                { return checkGroups(g.groups()) }
func (g X) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeX), g.groups()) }

func (Y) InstructionType() InstructionType { return TypeY }
func (g Y) groups() []fieldGroup           { return []fieldGroup{g.SingleTarget} }
func (g Y) Validate() error                { return checkGroups(g.groups()) }
func (g Y) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeY), g.groups()) }

func (Z) InstructionType() InstructionType { return TypeZ }
func (g Z) groups() []fieldGroup           { return []fieldGroup{g.SingleTarget} }
func (g Z) Validate() error                { return checkGroups(g.groups()) }
func (g Z) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeZ), g.groups()) }

func (S) InstructionType() InstructionType { return TypeS }
func (g S) groups() []fieldGroup           { return []fieldGroup{g.SingleTarget} }
func (g S) Validate() error                { return checkGroups(g.groups()) }
func (g S) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeS), g.groups()) }

func (Si) InstructionType() InstructionType { return TypeSi }
func (g Si) groups() []fieldGroup           { return []fieldGroup{g.SingleTarget} }
func (g Si) Validate() error                { return checkGroups(g.groups()) }
func (g Si) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeSi), g.groups()) }

func (T) InstructionType() InstructionType { return TypeT }
func (g T) groups() []fieldGroup           { return []fieldGroup{g.SingleTarget} }
func (g T) Validate() error                { return checkGroups(g.groups()) }
func (g T) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeT), g.groups()) }

func (Ti) InstructionType() InstructionType { return TypeTi }
func (g Ti) groups() []fieldGroup           { return []fieldGroup{g.SingleTarget} }
func (g Ti) Validate() error                { return checkGroups(g.groups()) }
func (g Ti) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeTi), g.groups()) }

func (V) InstructionType() InstructionType { return TypeV }
func (g V) groups() []fieldGroup           { return []fieldGroup{g.SingleTarget} }
func (g V) Validate() error                { return checkGroups(g.groups()) }
func (g V) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeV), g.groups()) }

func (Vi) InstructionType() InstructionType { return TypeVi }
func (g Vi) groups() []fieldGroup           { return []fieldGroup{g.SingleTarget} }
func (g Vi) Validate() error                { return checkGroups(g.groups()) }
func (g Vi) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeVi), g.groups()) }

func (Rx) InstructionType() InstructionType { return TypeRx }
func (g Rx) groups() []fieldGroup           { return []fieldGroup{g.SingleTarget, g.Rotation} }
func (g Rx) Validate() error                { return checkGroups(g.groups()) }
func (g Rx) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeRx), g.groups()) }

func (Ry) InstructionType() InstructionType { return TypeRy }
func (g Ry) groups() []fieldGroup           { return []fieldGroup{g.SingleTarget, g.Rotation} }
func (g Ry) Validate() error                { return checkGroups(g.groups()) }
func (g Ry) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeRy), g.groups()) }

func (Rz) InstructionType() InstructionType { return TypeRz }
func (g Rz) groups() []fieldGroup           { return []fieldGroup{g.SingleTarget, g.Rotation} }
func (g Rz) Validate() error                { return checkGroups(g.groups()) }
func (g Rz) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeRz), g.groups()) }

func (PhaseShift) InstructionType() InstructionType { return TypePhaseShift }
func (g PhaseShift) groups() []fieldGroup           { return []fieldGroup{g.SingleTarget, g.Rotation} }
func (g PhaseShift) Validate() error                { return checkGroups(g.groups()) }
func (g PhaseShift) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypePhaseShift), g.groups()) }

func (Swap) InstructionType() InstructionType { return TypeSwap }
func (g Swap) groups() []fieldGroup           { return []fieldGroup{g.DoubleTarget} }
func (g Swap) Validate() error                { return checkGroups(g.groups()) }
func (g Swap) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeSwap), g.groups()) }

func (ISwap) InstructionType() InstructionType { return TypeISwap }
func (g ISwap) groups() []fieldGroup           { return []fieldGroup{g.DoubleTarget} }
func (g ISwap) Validate() error                { return checkGroups(g.groups()) }
func (g ISwap) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeISwap), g.groups()) }

func (PSwap) InstructionType() InstructionType { return TypePSwap }
func (g PSwap) groups() []fieldGroup           { return []fieldGroup{g.DoubleTarget, g.Rotation} }
func (g PSwap) Validate() error                { return checkGroups(g.groups()) }
func (g PSwap) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypePSwap), g.groups()) }

func (XY) InstructionType() InstructionType { return TypeXY }
func (g XY) groups() []fieldGroup           { return []fieldGroup{g.DoubleTarget, g.Rotation} }
func (g XY) Validate() error                { return checkGroups(g.groups()) }
func (g XY) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeXY), g.groups()) }

func (XX) InstructionType() InstructionType { return TypeXX }
func (g XX) groups() []fieldGroup           { return []fieldGroup{g.DoubleTarget, g.Rotation} }
func (g XX) Validate() error                { return checkGroups(g.groups()) }
func (g XX) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeXX), g.groups()) }

func (YY) InstructionType() InstructionType { return TypeYY }
func (g YY) groups() []fieldGroup           { return []fieldGroup{g.DoubleTarget, g.Rotation} }
func (g YY) Validate() error                { return checkGroups(g.groups()) }
func (g YY) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeYY), g.groups()) }

func (ZZ) InstructionType() InstructionType { return TypeZZ }
func (g ZZ) groups() []fieldGroup           { return []fieldGroup{g.DoubleTarget, g.Rotation} }
func (g ZZ) Validate() error                { return checkGroups(g.groups()) }
func (g ZZ) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeZZ), g.groups()) }

func (CSwap) InstructionType() InstructionType { return TypeCSwap }
func (g CSwap) groups() []fieldGroup           { return []fieldGroup{g.SingleControl, g.DoubleTarget} }
func (g CSwap) Validate() error                { return checkGroups(g.groups()) }
func (g CSwap) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeCSwap), g.groups()) }

func (CNot) InstructionType() InstructionType { return TypeCNot }
func (g CNot) groups() []fieldGroup           { return []fieldGroup{g.SingleControl, g.SingleTarget} }
func (g CNot) Validate() error                { return checkGroups(g.groups()) }
func (g CNot) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeCNot), g.groups()) }

func (CY) InstructionType() InstructionType { return TypeCY }
func (g CY) groups() []fieldGroup           { return []fieldGroup{g.SingleControl, g.SingleTarget} }
func (g CY) Validate() error                { return checkGroups(g.groups()) }
func (g CY) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeCY), g.groups()) }

func (CZ) InstructionType() InstructionType { return TypeCZ }
func (g CZ) groups() []fieldGroup           { return []fieldGroup{g.SingleControl, g.SingleTarget} }
func (g CZ) Validate() error                { return checkGroups(g.groups()) }
func (g CZ) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeCZ), g.groups()) }

func (CPhaseShift) InstructionType() InstructionType { return TypeCPhaseShift }
func (g CPhaseShift) groups() []fieldGroup           { return []fieldGroup{g.SingleControl, g.SingleTarget, g.Rotation} }
func (g CPhaseShift) Validate() error                { return checkGroups(g.groups()) }
func (g CPhaseShift) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeCPhaseShift), g.groups()) }

func (CPhaseShift00) InstructionType() InstructionType { return TypeCPhaseShift00 }
func (g CPhaseShift00) groups() []fieldGroup           { return []fieldGroup{g.SingleControl, g.SingleTarget, g.Rotation} }
func (g CPhaseShift00) Validate() error                { return checkGroups(g.groups()) }
func (g CPhaseShift00) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeCPhaseShift00), g.groups()) }

func (CPhaseShift01) InstructionType() InstructionType { return TypeCPhaseShift01 }
func (g CPhaseShift01) groups() []fieldGroup           { return []fieldGroup{g.SingleControl, g.SingleTarget, g.Rotation} }
func (g CPhaseShift01) Validate() error                { return checkGroups(g.groups()) }
func (g CPhaseShift01) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeCPhaseShift01), g.groups()) }

func (CPhaseShift10) InstructionType() InstructionType { return TypeCPhaseShift10 }
func (g CPhaseShift10) groups() []fieldGroup           { return []fieldGroup{g.SingleControl, g.SingleTarget, g.Rotation} }
func (g CPhaseShift10) Validate() error                { return checkGroups(g.groups()) }
func (g CPhaseShift10) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeCPhaseShift10), g.groups()) }

func (CCNot) InstructionType() InstructionType { return TypeCCNot }
func (g CCNot) groups() []fieldGroup           { return []fieldGroup{g.DoubleControl, g.SingleTarget} }
func (g CCNot) Validate() error                { return checkGroups(g.groups()) }
func (g CCNot) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeCCNot), g.groups()) }

func (Unitary) InstructionType() InstructionType { return TypeUnitary }
func (g Unitary) groups() []fieldGroup           { return []fieldGroup{g.TwoDimensionalMatrix, g.MultiTarget} }
func (g Unitary) Validate() error                { return checkGroups(g.groups()) }
func (g Unitary) MarshalJSON() ([]byte, error)   { return encodeTagged(string(TypeUnitary), g.groups()) }

func instructionKey(i Instruction) string { return string(i.InstructionType()) }

func instructionEntry[G Instruction](typ InstructionType) dispatch.Entry[Instruction] {
	return dispatch.Entry[Instruction]{
		Key: string(typ),
		New: func(raw json.RawMessage) (Instruction, error) {
			v, err := decodeTagged[G](raw)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// Instructions dispatches on "type" across every instruction in the set.
var Instructions = dispatch.Must(dispatch.New("instruction", "type", instructionKey,
	instructionEntry[H](TypeH),
	instructionEntry[I](TypeI),
	instructionEntry[X](TypeX),
	instructionEntry[Y](TypeY),
	instructionEntry[Z](TypeZ),
	instructionEntry[S](TypeS),
	instructionEntry[Si](TypeSi),
	instructionEntry[T](TypeT),
	instructionEntry[Ti](TypeTi),
	instructionEntry[V](TypeV),
	instructionEntry[Vi](TypeVi),
	instructionEntry[Rx](TypeRx),
	instructionEntry[Ry](TypeRy),
	instructionEntry[Rz](TypeRz),
	instructionEntry[PhaseShift](TypePhaseShift),
	instructionEntry[Swap](TypeSwap),
	instructionEntry[ISwap](TypeISwap),
	instructionEntry[PSwap](TypePSwap),
	instructionEntry[XY](TypeXY),
	instructionEntry[XX](TypeXX),
	instructionEntry[YY](TypeYY),
	instructionEntry[ZZ](TypeZZ),
	instructionEntry[CSwap](TypeCSwap),
	instructionEntry[CNot](TypeCNot),
	instructionEntry[CY](TypeCY),
	instructionEntry[CZ](TypeCZ),
	instructionEntry[CPhaseShift](TypeCPhaseShift),
	instructionEntry[CPhaseShift00](TypeCPhaseShift00),
	instructionEntry[CPhaseShift01](TypeCPhaseShift01),
	instructionEntry[CPhaseShift10](TypeCPhaseShift10),
	instructionEntry[CCNot](TypeCCNot),
	instructionEntry[Unitary](TypeUnitary),
))
