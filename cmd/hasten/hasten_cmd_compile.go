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
	"sync"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/oleh-synelnykov/hasten/frontend"
)

type cmdCompile struct {
	configPath string
}

func (c *cmdCompile) help() *commandHelp {
	return &commandHelp{
		usage:   "compile [options] ROOT...",
		summary: "Parse and validate IDL source trees",
	}
}

func (c *cmdCompile) flags(flags *pflag.FlagSet) {
	flags.StringVar(&c.configPath, "config", "", "Project config file (default hasten.yaml)")
}

func (c *cmdCompile) run(ctx context.Context, argv []string) int {
	cfg, err := loadProjectConfig(c.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hasten: %v\n", err)
		return 1
	}

	roots := argv
	if len(roots) == 0 && cfg.Root != "" {
		roots = []string{cfg.Root}
	}
	if len(roots) == 0 {
		fmt.Fprintln(os.Stderr, "hasten: no root file given")
		return 1
	}

	type result struct {
		root  string
		diags []frontend.Diagnostic
	}
	results := make([]result, len(roots))

	group, _ := errgroup.WithContext(ctx)
	var mu sync.Mutex
	for ii, root := range roots {
		ii, root := ii, root
		group.Go(func() error {
			_, diags := compileRoot(root)
			mu.Lock()
			results[ii] = result{root: root, diags: diags}
			mu.Unlock()
			return nil
		})
	}
	group.Wait()

	failed := false
	for _, res := range results {
		if printDiagnostics(res.diags) {
			failed = true
		}
	}
	if failed {
		return 1
	}
	return 0
}
