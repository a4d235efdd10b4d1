// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package main

import (
	"fmt"

	"gopkg.in/urfave/cli.v1"

	"github.com/ecmalite/ecmalite/lang/lexer"
)

// tokensCommand mirrors the teacher's `probec -emit tokens` behavior,
// adapted into its own subcommand.
var tokensCommand = cli.Command{
	Name:      "tokens",
	Usage:     "print the token stream for a source file",
	ArgsUsage: "<source.js>",
	Action:    tokensAction,
}

func tokensAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return fail("usage: ecmalite tokens <source.js>")
	}
	path := c.Args().First()
	src, err := readSource(path)
	if err != nil {
		return fail("%v", err)
	}

	l := lexer.New(path, src)
	for _, tok := range l.Tokenize() {
		fmt.Printf("%s\t%s\t%q\n", tok.Pos, tok.Type, tok.Literal)
	}
	return nil
}
