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

package codegen

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oleh-synelnykov/hasten"
	"github.com/oleh-synelnykov/hasten/frontend"
	"github.com/oleh-synelnykov/hasten/internal/testutil"
)

func buildUnit(t *testing.T, sources map[string]string) CompilationUnit {
	t.Helper()
	program := frontend.NewProgram()
	for path, src := range sources {
		_, err := program.AddSource(path, []byte(src))
		testutil.AssertNoError(t, err)
	}
	return Build(program)
}

const echoSource = `
module sample;
enum Mood { Calm, Loud = 5 };
struct Note { 1: string text; 2: optional<i32> weight; 3: vector<u8> raw; };
interface Echo {
	rpc Ping(1: string msg) -> (1: string reply);
	rpc Count(1: i32 upto) -> i64;
	oneway Nudge(1: Note note);
	rpc Flush();
};
`

func TestBuildLowersModules(t *testing.T) {
	unit := buildUnit(t, map[string]string{"sample.hidl": echoSource})
	testutil.ExpectEq(t, 1, len(unit.Modules))

	module := unit.Modules[0]
	testutil.ExpectEq(t, "sample", module.Name)
	testutil.ExpectEq(t, 1, len(module.Enums))
	testutil.ExpectEq(t, 1, len(module.Structs))
	testutil.ExpectEq(t, 1, len(module.Interfaces))
	testutil.ExpectEq(t, 4, len(module.Interfaces[0].Methods))

	ping := module.Interfaces[0].Methods[0]
	testutil.ExpectEq(t, 1, len(ping.Parameters))
	testutil.ExpectEq(t, 1, len(ping.ResultFields))
	count := module.Interfaces[0].Methods[1]
	testutil.ExpectTrue(t, count.ResultType != nil)
	testutil.ExpectEq(t, 0, len(count.ResultFields))
}

func TestBuildOrdersModulesLexicographically(t *testing.T) {
	unit := buildUnit(t, map[string]string{
		"z.hidl": `module zebra;`,
		"a.hidl": `module aardvark;`,
		"m.hidl": `module middle;`,
	})
	testutil.ExpectEq(t, 3, len(unit.Modules))
	testutil.ExpectEq(t, "aardvark", unit.Modules[0].Name)
	testutil.ExpectEq(t, "middle", unit.Modules[1].Name)
	testutil.ExpectEq(t, "zebra", unit.Modules[2].Name)
}

func TestStableIdentifiers(t *testing.T) {
	// FNV-1a 64 with the standard offset basis and prime.
	h := fnv.New64a()
	h.Write([]byte("sample.Echo"))
	testutil.ExpectEq(t, h.Sum64(), hasten.InterfaceID("sample", "Echo"))

	h = fnv.New64a()
	h.Write([]byte("sample.Echo.Ping"))
	testutil.ExpectEq(t, h.Sum64(), hasten.MethodID("sample", "Echo", "Ping"))

	// Canonical FNV-1a 64 offset basis and prime.
	testutil.ExpectEq(t, uint64(14695981039346656037), hasten.HashName(""))
	empty := hasten.HashName("")
	testutil.ExpectEq(t, (empty^uint64('a'))*1099511628211, hasten.HashName("a"))
}

func TestEmittedSourceSurface(t *testing.T) {
	unit := buildUnit(t, map[string]string{"sample.hidl": echoSource})
	source := string(EmitModuleSource(&unit.Modules[0], unit))

	for _, fragment := range []string{
		"package sample",
		"const ModuleID uint64",
		"type Mood int64",
		"MoodLoud Mood = 5",
		"type Note struct {",
		"Text string // id 1",
		"Weight *int32 // id 2",
		"var noteDescriptor = hb1.MessageDescriptor{",
		"func EncodeNote(v *Note) ([]byte, error)",
		"func DecodeNote(data []byte) (*Note, error)",
		"type EchoPingResult struct {",
		"type EchoClient struct {",
		"func NewEchoClient(ctx *runtime.Context, ch runtime.Channel) *EchoClient",
		"func (c *EchoClient) Ping(msg string) (*EchoPingResult, error)",
		"func (c *EchoClient) PingAsync(msg string) (*EchoPingFuture, error)",
		"func (c *EchoClient) PingCallback(msg string, callback func(*EchoPingResult, error)) error",
		"func (c *EchoClient) Count(upto int32) (int64, error)",
		"func (c *EchoClient) Nudge(note Note) error",
		"func (c *EchoClient) Flush() error",
		"type EchoServer interface {",
		"Ping(msg string) (*EchoPingResult, error)",
		"func BindEcho(impl EchoServer, executor runtime.Executor)",
		"runtime.RegisterHandler(EchoInterfaceID",
		"EchoInterfaceID uint64",
		"EchoPingMethodID uint64",
	} {
		if !strings.Contains(source, fragment) {
			t.Errorf("generated source is missing %q", fragment)
		}
	}
}

func TestEmittedIdsMatchHashes(t *testing.T) {
	unit := buildUnit(t, map[string]string{"sample.hidl": echoSource})
	source := string(EmitModuleSource(&unit.Modules[0], unit))

	wantInterface := fmt.Sprintf("%#x", hasten.InterfaceID("sample", "Echo"))
	wantMethod := fmt.Sprintf("%#x", hasten.MethodID("sample", "Echo", "Ping"))
	testutil.ExpectTrue(t, strings.Contains(source, wantInterface))
	testutil.ExpectTrue(t, strings.Contains(source, wantMethod))
}

func TestWriteIfChanged(t *testing.T) {
	dir := t.TempDir()
	writer := NewFileWriter(dir)

	changed, err := writer.Write("a.go", []byte("package a\n"))
	testutil.AssertNoError(t, err)
	testutil.ExpectTrue(t, changed)

	info1, err := os.Stat(filepath.Join(dir, "a.go"))
	testutil.AssertNoError(t, err)

	changed, err = writer.Write("a.go", []byte("package a\n"))
	testutil.AssertNoError(t, err)
	testutil.ExpectTrue(t, !changed)

	info2, err := os.Stat(filepath.Join(dir, "a.go"))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, info1.ModTime(), info2.ModTime())

	changed, err = writer.Write("a.go", []byte("package a // v2\n"))
	testutil.AssertNoError(t, err)
	testutil.ExpectTrue(t, changed)
}

func TestEmitIsDeterministic(t *testing.T) {
	unit := buildUnit(t, map[string]string{"sample.hidl": echoSource})
	first := EmitModuleSource(&unit.Modules[0], unit)
	second := EmitModuleSource(&unit.Modules[0], unit)
	testutil.ExpectNoDiff(t, string(first), string(second))
}

func TestEmitWritesOneFilePerModule(t *testing.T) {
	unit := buildUnit(t, map[string]string{
		"a.hidl": `module alpha; struct A { 1: i32 x; };`,
		"b.hidl": `module beta.v2; struct B { 1: i32 x; };`,
	})
	dir := t.TempDir()
	files, err := Emit(unit, NewFileWriter(dir))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 2, len(files))
	testutil.ExpectEq(t, "alpha_hasten.go", files[0])
	testutil.ExpectEq(t, "beta_v2_hasten.go", files[1])

	content, err := os.ReadFile(filepath.Join(dir, "beta_v2_hasten.go"))
	testutil.AssertNoError(t, err)
	testutil.ExpectTrue(t, strings.Contains(string(content), "package v2"))
}
