package cpu

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/xlab/treeprint"
)

// Line represents a line of assembled code with its source location and generated instructions.
type Line struct {
	LineNo    int
	Ip        int
	Words     []string
	Codes     []Code
	LinkLabel string
}

// Program is an assembled listing.
type Program struct {
	Lines  []Line
	Labels map[string]int
}

type Debug struct {
	*Line
	Index int
}

func (prog *Program) Debug(ip uint16) (dbg Debug) {
	for n, op := range prog.Lines {
		if ip >= uint16(op.Ip) && ip < uint16(op.Ip)+uint16(len(op.Codes)) {
			index := int(ip - uint16(op.Ip))
			dbg = Debug{
				Line:  &prog.Lines[n],
				Index: index,
			}
			break
		}
	}

	return
}

// Binary returns the instruction memory image of the program.
func (prog *Program) Binary() (bins []Code) {
	for _, code := range prog.Codes() {
		bins = append(bins, code)
	}

	return
}

func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(ip uint16, code Code) bool) {
		for _, op := range prog.Lines {
			ip := uint16(op.Ip)
			for n, code := range op.Codes {
				if !yield(ip+uint16(n), code) {
					return
				}
			}
		}
	}
}

// Tree returns the program listing, grouped under its labels.
func (prog *Program) Tree(name string) (tree treeprint.Tree) {
	tree = treeprint.NewWithRoot(name)

	names := map[uint16][]string{}
	for _, label := range slices.Sorted(maps.Keys(prog.Labels)) {
		ip := uint16(prog.Labels[label])
		names[ip] = append(names[ip], label)
	}

	branch := tree
	for ip, code := range prog.Codes() {
		if labels, ok := names[ip]; ok {
			branch = tree.AddBranch(strings.Join(labels, " "))
		}
		text := fmt.Sprintf("%04x  %v", uint16(code), code)
		if dbg := prog.Debug(ip); dbg.Line != nil && dbg.Index == 0 {
			text = fmt.Sprintf("%-20s ; line %d", text, dbg.LineNo)
		}
		branch.AddMetaNode(fmt.Sprintf("%02x", ip), text)
	}

	return
}
