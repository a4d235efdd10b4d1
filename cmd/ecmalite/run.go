// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package main

import (
	"fmt"

	"gopkg.in/urfave/cli.v1"

	"github.com/ecmalite/ecmalite/engine"
)

var runCommand = cli.Command{
	Name:      "run",
	Usage:     "compile and run a source file",
	ArgsUsage: "<source.js>",
	Action:    runAction,
}

func runAction(c *cli.Context) error {
	loadConfig(c)
	if c.NArg() < 1 {
		return fail("usage: ecmalite run <source.js>")
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

	v := engine.Create(engine.Options{})
	result, err := v.Run(compiled)
	if err != nil {
		return fail("%s", engine.ErrorString(err))
	}

	if s, ok := result.ToString(); ok {
		fmt.Println(s)
	}
	return nil
}
