// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/peterh/liner"
	"gopkg.in/urfave/cli.v1"

	"github.com/ecmalite/ecmalite/engine"
)

var replCommand = cli.Command{
	Name:   "repl",
	Usage:  "start an interactive read-eval-print loop",
	Action: replAction,
}

func replAction(c *cli.Context) error {
	loadConfig(c)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	v := engine.Create(engine.Options{})

	fmt.Printf("ecmalite %s — Ctrl-D to exit\n", version)
	for {
		input, err := line.Prompt("> ")
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return fail("%v", err)
		}
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		evalREPLLine(v, input)
	}
}

func evalREPLLine(v *engine.VM, input string) {
	compiled, err := engine.Compile("repl", input)
	if err != nil {
		fmt.Println(err)
		return
	}
	result, err := v.Run(compiled)
	if err != nil {
		fmt.Println(engine.ErrorString(err))
		return
	}
	if s, ok := result.ToString(); ok {
		fmt.Println(s)
	}
}
