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
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
)

type cmdWatch struct {
	configPath string
	verbose    bool
}

func (c *cmdWatch) help() *commandHelp {
	return &commandHelp{
		usage:   "watch [options] ROOT",
		summary: "Recompile whenever an IDL source changes",
	}
}

func (c *cmdWatch) flags(flags *pflag.FlagSet) {
	flags.StringVar(&c.configPath, "config", "", "Project config file (default hasten.yaml)")
	flags.BoolVar(&c.verbose, "verbose", false, "Log watcher events")
}

func (c *cmdWatch) run(ctx context.Context, argv []string) int {
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

	log := newLogger(c.verbose)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hasten: %v\n", err)
		return 1
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(root)); err != nil {
		fmt.Fprintf(os.Stderr, "hasten: %v\n", err)
		return 1
	}

	recompile := func() {
		_, diags := compileRoot(root)
		printDiagnostics(diags)
	}
	recompile()

	// Editors fire bursts of writes; collapse them with a short timer.
	var pending *time.Timer
	debounce := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return 0
		case event, ok := <-watcher.Events:
			if !ok {
				return 0
			}
			if !strings.HasSuffix(event.Name, ".hidl") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("source changed")
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(100*time.Millisecond, func() {
				select {
				case debounce <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return 0
			}
			log.Warn().Err(err).Msg("watch error")
		case <-debounce:
			recompile()
		}
	}
}
