package spirv

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// Disassembly support for diagnostics and tests. This is a word-level
// decoder, not a full spirv-dis replacement: operands print as raw
// numbers except for result IDs of OpLabel.

// DecodedInstr is one decoded instruction.
type DecodedInstr struct {
	Opcode OpCode
	Words  []uint32
}

// DecodeWords splits a word stream (without module header) into instructions.
func DecodeWords(words []uint32) ([]DecodedInstr, error) {
	var out []DecodedInstr
	for i := 0; i < len(words); {
		header := words[i]
		wordCount := int(header >> 16)
		opcode := OpCode(header & 0xFFFF)
		if wordCount == 0 || i+wordCount > len(words) {
			return nil, fmt.Errorf("word %d: truncated instruction %s (count %d)", i, opcode.Name(), wordCount)
		}
		out = append(out, DecodedInstr{Opcode: opcode, Words: words[i+1 : i+wordCount]})
		i += wordCount
	}
	return out, nil
}

// DecodeBinary validates the module header and decodes the instruction stream.
func DecodeBinary(bin []byte) ([]DecodedInstr, error) {
	if len(bin) < 20 || len(bin)%4 != 0 {
		return nil, fmt.Errorf("binary is not a SPIR-V module: %d bytes", len(bin))
	}
	words := make([]uint32, len(bin)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(bin[i*4:])
	}
	if words[0] != MagicNumber {
		return nil, fmt.Errorf("bad magic number %#x", words[0])
	}
	return DecodeWords(words[5:])
}

// Disassemble writes one line per instruction.
func Disassemble(w io.Writer, instrs []DecodedInstr) {
	for _, ins := range instrs {
		parts := make([]string, 0, len(ins.Words)+1)
		parts = append(parts, ins.Opcode.Name())
		for _, word := range ins.Words {
			parts = append(parts, fmt.Sprintf("%%%d", word))
		}
		fmt.Fprintln(w, strings.Join(parts, " "))
	}
}

// LoopShape is the loop structure recovered from an emitted stream.
type LoopShape struct {
	Header   uint32
	Merge    uint32
	Continue uint32
}

// RecoverLoops re-derives loop header/continue/merge label IDs from the
// instruction order: each OpLoopMerge belongs to the most recent OpLabel.
func RecoverLoops(instrs []DecodedInstr) []LoopShape {
	var out []LoopShape
	var current uint32
	for _, ins := range instrs {
		switch ins.Opcode {
		case OpLabel:
			if len(ins.Words) == 1 {
				current = ins.Words[0]
			}
		case OpLoopMerge:
			if len(ins.Words) >= 2 {
				out = append(out, LoopShape{Header: current, Merge: ins.Words[0], Continue: ins.Words[1]})
			}
		}
	}
	return out
}
