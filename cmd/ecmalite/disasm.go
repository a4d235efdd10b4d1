// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"

	"github.com/ecmalite/ecmalite/engine"
)

var disasmCommand = cli.Command{
	Name:      "disasm",
	Usage:     "compile a source file and print its bytecode listing",
	ArgsUsage: "<source.js>",
	Action:    disasmAction,
}

func disasmAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return fail("usage: ecmalite disasm <source.js>")
	}
	path := c.Args().First()
	src, err := readSource(path)
	if err != nil {
		return fail("%v", err)
	}

	compiled, err := engine.Compile(path, src)
	if err != nil {
		return fail("%v", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"PC", "OP", "OPERAND", "LINE"})
	for _, row := range compiled.Chunk.Disassemble() {
		table.Append([]string{
			strconv.Itoa(row.PC),
			row.Op,
			strconv.Itoa(int(row.Operand)),
			strconv.Itoa(row.Line),
		})
	}
	table.Render()
	fmt.Println()
	return nil
}
