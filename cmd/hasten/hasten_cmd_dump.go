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

	"github.com/oleh-synelnykov/hasten/frontend"
)

type cmdDump struct{}

func (c *cmdDump) help() *commandHelp {
	return &commandHelp{
		usage:   "dump ROOT",
		summary: "Print the parsed AST as JSON",
	}
}

func (c *cmdDump) flags(flags *pflag.FlagSet) {}

func (c *cmdDump) run(ctx context.Context, argv []string) int {
	if len(argv) != 1 {
		fmt.Fprintln(os.Stderr, "hasten: dump expects exactly one root file")
		return 1
	}

	program, diags := frontend.LoadProgram(argv[0])
	if printDiagnostics(diags) {
		return 1
	}

	out, err := frontend.DumpJSON(program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hasten: %v\n", err)
		return 1
	}
	fmt.Println(string(out))
	return 0
}
