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

package syntax

import (
	"strings"
	"testing"

	"github.com/oleh-synelnykov/hasten/internal/testutil"
)

func parse(t *testing.T, src string) *Module {
	t.Helper()
	module, err := ParseModule([]byte(src))
	testutil.AssertNoError(t, err)
	return module
}

func TestParseEchoInterface(t *testing.T) {
	module := parse(t, `module sample; interface Echo { rpc Ping(1: string msg) -> (1: string reply); };`)
	testutil.ExpectEq(t, "sample", module.Name.String())
	testutil.ExpectEq(t, 1, len(module.Decls))

	iface, ok := module.Decls[0].(*Interface)
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, "Echo", iface.Name)
	testutil.ExpectEq(t, 1, len(iface.Methods))

	method := iface.Methods[0]
	testutil.ExpectEq(t, MethodRpc, method.Kind)
	testutil.ExpectEq(t, "Ping", method.Name)
	testutil.ExpectEq(t, 1, len(method.Params))
	testutil.ExpectEq(t, uint64(1), method.Params[0].ID)
	testutil.ExpectEq(t, "msg", method.Params[0].Name)

	tuple, ok := method.Result.(*ResultTuple)
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, 1, len(tuple.Fields))
	testutil.ExpectEq(t, "reply", tuple.Fields[0].Name)
}

func TestParseStructWithDefaultsAndAttrs(t *testing.T) {
	module := parse(t, `
module app.v1;

struct Settings {
	1: i32 retries = 3 [min=0, max=10];
	2: optional<string> label;
	3: map<string, vector<u8>> blobs;
};
`)
	testutil.ExpectEq(t, "app.v1", module.Name.String())
	structDecl, ok := module.Decls[0].(*Struct)
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, 3, len(structDecl.Fields))

	retries := structDecl.Fields[0]
	def, ok := retries.Default.(*ConstInt)
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, int64(3), def.Value)
	testutil.ExpectEq(t, 2, len(retries.Attrs))
	testutil.ExpectEq(t, "min", retries.Attrs[0].Name)

	_, ok = structDecl.Fields[1].Type.(*TypeOptional)
	testutil.ExpectTrue(t, ok)
	mapType, ok := structDecl.Fields[2].Type.(*TypeMap)
	testutil.ExpectTrue(t, ok)
	_, ok = mapType.Value.(*TypeVector)
	testutil.ExpectTrue(t, ok)
}

func TestParseEnumAndConst(t *testing.T) {
	module := parse(t, `
module colors;

enum Color {
	Red = 1,
	Green [legacy],
	Blue = 0x10,
};

const Color kDefault = colors.Red;
const bytes kMagic = b"48 42";
const string kName = "hasten\n";
`)
	enum, ok := module.Decls[0].(*Enum)
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, 3, len(enum.Items))
	testutil.ExpectEq(t, int64(1), *enum.Items[0].Value)
	testutil.ExpectTrue(t, enum.Items[1].Value == nil)
	testutil.ExpectEq(t, int64(0x10), *enum.Items[2].Value)

	constDecl, ok := module.Decls[1].(*ConstDecl)
	testutil.ExpectTrue(t, ok)
	ref, ok := constDecl.Value.(*ConstRef)
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, "colors.Red", ref.Name.String())

	bytesDecl := module.Decls[2].(*ConstDecl)
	bytesValue, ok := bytesDecl.Value.(*ConstBytes)
	testutil.ExpectTrue(t, ok)
	testutil.ExpectBytesEq(t, []byte{0x48, 0x42}, bytesValue.Value)

	stringDecl := module.Decls[3].(*ConstDecl)
	stringValue, ok := stringDecl.Value.(*ConstString)
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, "hasten\n", stringValue.Value)
}

func TestParseImports(t *testing.T) {
	module := parse(t, `
module top;
import "shared/types.hidl";
import "shared/errors.hidl";
`)
	testutil.ExpectEq(t, 2, len(module.Imports))
	testutil.ExpectEq(t, "shared/types.hidl", module.Imports[0].Path)
}

func TestParseMethodKinds(t *testing.T) {
	module := parse(t, `
module m;
interface I {
	rpc A(1: i32 x) -> i64;
	oneway B(1: i32 x);
	stream C() -> (1: bytes chunk);
	notify D();
};
`)
	iface := module.Decls[0].(*Interface)
	testutil.ExpectEq(t, MethodRpc, iface.Methods[0].Kind)
	testutil.ExpectEq(t, MethodOneway, iface.Methods[1].Kind)
	testutil.ExpectEq(t, MethodStream, iface.Methods[2].Kind)
	testutil.ExpectEq(t, MethodNotify, iface.Methods[3].Kind)

	single, ok := iface.Methods[0].Result.(*ResultSingle)
	testutil.ExpectTrue(t, ok)
	prim, ok := single.Type.(*TypePrimitive)
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, PrimitiveI64, prim.Kind)
	testutil.ExpectTrue(t, iface.Methods[3].Result == nil)
}

func TestParseReservedWordAsName(t *testing.T) {
	_, err := ParseModule([]byte(`module m; struct struct { 1: i32 x; };`))
	testutil.AssertError(t, err)
	testutil.ExpectTrue(t, strings.Contains(err.Error(), "Reserved word"))
}

func TestParseErrorsAnchorFailure(t *testing.T) {
	cases := []struct {
		name     string
		src      string
		fragment string
	}{
		{"missing module", `struct F {};`, "Expected keyword 'module'"},
		{"missing semi", `module m`, "Expected ';'"},
		{"bad declaration", `module m; banana F {};`, "Expected declaration"},
		{"bad type", `module m; struct F { 1: rpc x; };`, "Expected type"},
		{"bad const value", `module m; const i32 k = ;`, "Expected constant value"},
		{"bad method kind", `module m; interface I { query Q(); };`, "Expected method kind"},
		{"negative field id", `module m; struct F { -1: i32 x; };`, "may not be negative"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseModule([]byte(tc.src))
			testutil.AssertError(t, err)
			testutil.ExpectTrue(t, strings.Contains(err.Error(), tc.fragment))
		})
	}
}

func TestParseNestedOptionalIsSyntacticallyValid(t *testing.T) {
	// The parser accepts nested optionals; rejecting them is the
	// validator's job.
	module := parse(t, `module m; struct F { 1: optional<optional<i32>> x; };`)
	field := module.Decls[0].(*Struct).Fields[0]
	outer, ok := field.Type.(*TypeOptional)
	testutil.ExpectTrue(t, ok)
	_, ok = outer.Inner.(*TypeOptional)
	testutil.ExpectTrue(t, ok)
}

func TestParseIntLiteralRange(t *testing.T) {
	_, err := ParseModule([]byte(`module m; const i64 k = 99999999999999999999;`))
	testutil.AssertError(t, err)
	testutil.ExpectTrue(t, strings.Contains(err.Error(), "too positive"))
}
