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

package compiler

import (
	"github.com/oleh-synelnykov/hasten/frontend"
	"github.com/oleh-synelnykov/hasten/syntax"
)

// typeValidator walks type shapes. Usage strings grow as it descends so
// diagnostics name the exact position inside a composite type.
type typeValidator struct {
	ctx *Context
}

func (v *typeValidator) validate(t syntax.Type, file *frontend.SourceFile, anchor syntax.Node, moduleName, usage string) {
	switch t := t.(type) {
	case *syntax.TypePrimitive:
	case *syntax.TypeUser:
		v.ctx.resolveUserType(t, moduleName, file, usage)
	case *syntax.TypeVector:
		v.validate(t.Element, file, anchor, moduleName, usage+" (vector element)")
	case *syntax.TypeMap:
		v.validateMapKey(t.Key, file, anchor, moduleName, usage)
		v.validate(t.Value, file, anchor, moduleName, usage+" (map value)")
	case *syntax.TypeOptional:
		if inner, nested := t.Inner.(*syntax.TypeOptional); nested {
			v.ctx.reportError(file, anchor, "Nested optional types are not allowed in "+usage)
			v.validate(inner, file, anchor, moduleName, usage+" (inner optional)")
		} else {
			v.validate(t.Inner, file, anchor, moduleName, usage+" (optional)")
		}
	}
}

func (v *typeValidator) validateMapKey(key syntax.Type, file *frontend.SourceFile, anchor syntax.Node, moduleName, usage string) {
	switch key := key.(type) {
	case *syntax.TypePrimitive:
		return
	case *syntax.TypeUser:
		info := v.ctx.resolveUserType(key, moduleName, file, usage+" (map key)")
		if info != nil && info.Kind != DeclKindEnum {
			v.ctx.reportError(file, anchor, "Map key in "+usage+" must be a primitive or enum type")
		}
		return
	}
	v.ctx.reportError(file, anchor, "Map key in "+usage+" must be a primitive or enum type")
}
