package spirv

import (
	"encoding/binary"
	"fmt"

	"fortio.org/safecast"
)

// Instruction is one SPIR-V instruction: an opcode plus operand words.
// The word-count header is computed at encode time.
type Instruction struct {
	Opcode OpCode
	Words  []uint32
}

// InstructionBuilder accumulates operand words for one instruction.
type InstructionBuilder struct {
	words []uint32
}

// NewInstructionBuilder creates an empty builder.
func NewInstructionBuilder() *InstructionBuilder {
	return &InstructionBuilder{words: make([]uint32, 0, 8)}
}

// AddWord appends one operand word.
func (b *InstructionBuilder) AddWord(word uint32) {
	b.words = append(b.words, word)
}

// AddWords appends several operand words.
func (b *InstructionBuilder) AddWords(words ...uint32) {
	b.words = append(b.words, words...)
}

// AddString appends a null-terminated UTF-8 string padded to a word boundary.
func (b *InstructionBuilder) AddString(s string) {
	raw := append([]byte(s), 0)
	for len(raw)%4 != 0 {
		raw = append(raw, 0)
	}
	for i := 0; i < len(raw); i += 4 {
		b.words = append(b.words, binary.LittleEndian.Uint32(raw[i:]))
	}
}

// Build finishes the instruction with the given opcode.
func (b *InstructionBuilder) Build(opcode OpCode) Instruction {
	return Instruction{Opcode: opcode, Words: b.words}
}

// Encode returns the instruction's words with the header word prepended.
func (i Instruction) Encode() []uint32 {
	wordCount, err := safecast.Conv[uint32](len(i.Words) + 1)
	if err != nil || wordCount > 0xFFFF {
		panic(fmt.Errorf("instruction %s word count overflow: %d words", i.Opcode.Name(), len(i.Words)+1))
	}
	out := make([]uint32, 0, wordCount)
	out = append(out, (wordCount<<16)|uint32(i.Opcode))
	return append(out, i.Words...)
}

// EncodeAll flattens instructions into one word stream.
func EncodeAll(instrs []Instruction) []uint32 {
	var out []uint32
	for _, ins := range instrs {
		out = append(out, ins.Encode()...)
	}
	return out
}
