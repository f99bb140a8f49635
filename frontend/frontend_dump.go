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

package frontend

import (
	"encoding/json"

	"github.com/oleh-synelnykov/hasten/syntax"
)

// DumpJSON renders the parsed AST as indented JSON for debugging. The shape
// is informal and not a compatibility surface.
func DumpJSON(program *Program) ([]byte, error) {
	var files []map[string]any
	for _, file := range program.Files() {
		entry := map[string]any{"path": file.Path}
		if file.Module != nil {
			entry["module"] = dumpModule(file.Module)
		}
		files = append(files, entry)
	}
	return json.MarshalIndent(map[string]any{"files": files}, "", "  ")
}

func dumpModule(module *syntax.Module) map[string]any {
	imports := make([]string, 0, len(module.Imports))
	for _, imp := range module.Imports {
		imports = append(imports, imp.Path)
	}
	decls := make([]map[string]any, 0, len(module.Decls))
	for _, decl := range module.Decls {
		decls = append(decls, dumpDecl(decl))
	}
	return map[string]any{
		"name":    module.Name.String(),
		"imports": imports,
		"decls":   decls,
	}
}

func dumpDecl(decl syntax.Decl) map[string]any {
	switch decl := decl.(type) {
	case *syntax.ConstDecl:
		return map[string]any{
			"kind":  "const",
			"name":  decl.Name,
			"type":  dumpType(decl.Type),
			"value": dumpConst(decl.Value),
		}
	case *syntax.Enum:
		items := make([]map[string]any, 0, len(decl.Items))
		for _, item := range decl.Items {
			entry := map[string]any{"name": item.Name}
			if item.Value != nil {
				entry["value"] = *item.Value
			}
			if len(item.Attrs) > 0 {
				entry["attrs"] = dumpAttrs(item.Attrs)
			}
			items = append(items, entry)
		}
		return map[string]any{"kind": "enum", "name": decl.Name, "items": items}
	case *syntax.Struct:
		return map[string]any{
			"kind":   "struct",
			"name":   decl.Name,
			"fields": dumpFields(decl.Fields),
		}
	case *syntax.Interface:
		methods := make([]map[string]any, 0, len(decl.Methods))
		for _, method := range decl.Methods {
			methods = append(methods, dumpMethod(method))
		}
		return map[string]any{"kind": "interface", "name": decl.Name, "methods": methods}
	}
	return map[string]any{"kind": "unknown"}
}

func dumpFields(fields []syntax.Field) []map[string]any {
	out := make([]map[string]any, 0, len(fields))
	for _, f := range fields {
		entry := map[string]any{
			"id":   f.ID,
			"name": f.Name,
			"type": dumpType(f.Type),
		}
		if f.Default != nil {
			entry["default"] = dumpConst(f.Default)
		}
		if len(f.Attrs) > 0 {
			entry["attrs"] = dumpAttrs(f.Attrs)
		}
		out = append(out, entry)
	}
	return out
}

func dumpMethod(method syntax.Method) map[string]any {
	params := make([]map[string]any, 0, len(method.Params))
	for _, p := range method.Params {
		entry := map[string]any{
			"id":   p.ID,
			"name": p.Name,
			"type": dumpType(p.Type),
		}
		params = append(params, entry)
	}
	out := map[string]any{
		"kind":   method.Kind.String(),
		"name":   method.Name,
		"params": params,
	}
	switch result := method.Result.(type) {
	case *syntax.ResultSingle:
		out["result"] = dumpType(result.Type)
	case *syntax.ResultTuple:
		out["result_fields"] = dumpFields(result.Fields)
	}
	if len(method.Attrs) > 0 {
		out["attrs"] = dumpAttrs(method.Attrs)
	}
	return out
}

func dumpAttrs(attrs []syntax.Attribute) []map[string]any {
	out := make([]map[string]any, 0, len(attrs))
	for _, a := range attrs {
		entry := map[string]any{"name": a.Name}
		if a.Value != nil {
			entry["value"] = dumpConst(a.Value)
		}
		out = append(out, entry)
	}
	return out
}

func dumpType(t syntax.Type) any {
	switch t := t.(type) {
	case *syntax.TypePrimitive:
		return t.Kind.String()
	case *syntax.TypeUser:
		return t.Name.String()
	case *syntax.TypeVector:
		return map[string]any{"vector": dumpType(t.Element)}
	case *syntax.TypeMap:
		return map[string]any{"map_key": dumpType(t.Key), "map_value": dumpType(t.Value)}
	case *syntax.TypeOptional:
		return map[string]any{"optional": dumpType(t.Inner)}
	}
	return nil
}

func dumpConst(value syntax.ConstValue) any {
	switch value := value.(type) {
	case *syntax.ConstNull:
		return nil
	case *syntax.ConstBool:
		return value.Value
	case *syntax.ConstInt:
		return value.Value
	case *syntax.ConstFloat:
		return value.Value
	case *syntax.ConstString:
		return value.Value
	case *syntax.ConstBytes:
		return value.Value // encoded as base64 by encoding/json
	case *syntax.ConstRef:
		return map[string]any{"ref": value.Name.String()}
	}
	return nil
}
