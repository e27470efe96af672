// Package cpu implements the processor and assembler for the cpuemu system.
//
// The CPU consists of a 16-bit program counter (PC), a single equality flag,
// eight 16-bit general-purpose registers (r0-r7), a 256 word instruction
// memory (ROM) and a separate 256 word data memory (RAM). Every instruction
// is exactly one 16-bit word:
//
//	15      11 10   8 7    5 4      0
//	+---------+------+------+--------+
//	| opcode  |  ra  |  rb  |        |
//	+---------+------+------+--------+
//	|         |      |   imm / addr  |
//	+---------+------+---------------+
//
// The assembler provides a small assembly language for the instruction set,
// supporting macros, labels, equates, and compile-time expression evaluation.
package cpu
