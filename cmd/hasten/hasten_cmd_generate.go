// Copyright (c) 2026 Oleh Synelnykov
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/oleh-synelnykov/hasten/codegen"
)

type cmdGenerate struct {
	configPath string
	outDir     string
}

func (c *cmdGenerate) help() *commandHelp {
	return &commandHelp{
		usage:   "generate [options] ROOT",
		summary: "Compile an IDL tree and emit Go bindings",
	}
}

func (c *cmdGenerate) flags(flags *pflag.FlagSet) {
	flags.StringVar(&c.configPath, "config", "", "Project config file (default hasten.yaml)")
	flags.StringVar(&c.outDir, "out", "", "Destination directory for generated sources")
}

func (c *cmdGenerate) run(ctx context.Context, argv []string) int {
	cfg, err := loadProjectConfig(c.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hasten: %v\n", err)
		return 1
	}

	root := cfg.Root
	if len(argv) > 0 {
		root = argv[0]
	}
	if root == "" {
		fmt.Fprintln(os.Stderr, "hasten: no root file given")
		return 1
	}
	outDir := c.outDir
	if outDir == "" {
		outDir = cfg.Out
	}
	if outDir == "" {
		outDir = "."
	}

	program, diags := compileRoot(root)
	if printDiagnostics(diags) {
		return 1
	}

	unit := codegen.Build(program)
	writer := codegen.NewFileWriter(outDir)
	files, err := codegen.Emit(unit, writer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hasten: %v\n", err)
		return 1
	}
	for _, name := range files {
		fmt.Println(name)
	}
	return 0
}
