// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package main

import (
	"fmt"
	"strings"

	"gopkg.in/urfave/cli.v1"

	"github.com/ecmalite/ecmalite/lang/parser"
)

var astCommand = cli.Command{
	Name:      "ast",
	Usage:     "print the parsed syntax tree for a source file",
	ArgsUsage: "<source.js>",
	Action:    astAction,
}

func astAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return fail("usage: ecmalite ast <source.js>")
	}
	path := c.Args().First()
	src, err := readSource(path)
	if err != nil {
		return fail("%v", err)
	}

	prog, errs := parser.Parse(path, src)
	if len(errs) > 0 {
		return fail("%s", strings.Join(errs, "\n"))
	}
	fmt.Println(prog.String())
	return nil
}
