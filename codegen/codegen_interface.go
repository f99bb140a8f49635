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
	"strings"

	"github.com/oleh-synelnykov/hasten"
	"github.com/oleh-synelnykov/hasten/syntax"
)

type resultShape uint8

const (
	resultNone resultShape = iota
	resultSingle
	resultTuple
)

func methodResultShape(m *Method) resultShape {
	if len(m.ResultFields) > 0 {
		return resultTuple
	}
	if m.ResultType != nil {
		return resultSingle
	}
	return resultNone
}

func isFireAndForget(kind syntax.MethodKind) bool {
	return kind == syntax.MethodOneway || kind == syntax.MethodNotify
}

func (g *gen) emitInterface(iface *Interface) {
	g.use("github.com/oleh-synelnykov/hasten")
	g.use("github.com/oleh-synelnykov/hasten/runtime")

	ifaceName := exportName(iface.Name)
	g.p("// %s ids are FNV-1a 64 hashes of the qualified symbolic names.", ifaceName)
	g.p("const (")
	g.indent++
	g.p("%sInterfaceID uint64 = %#x // %q", ifaceName,
		hasten.InterfaceID(g.module.Name, iface.Name), g.module.Name+"."+iface.Name)
	for _, m := range iface.Methods {
		g.p("%s%sMethodID uint64 = %#x // %q", ifaceName, exportName(m.Name),
			hasten.MethodID(g.module.Name, iface.Name, m.Name),
			g.module.Name+"."+iface.Name+"."+m.Name)
	}
	g.indent--
	g.p(")")
	g.p("")

	for ii := range iface.Methods {
		g.emitMethodMessages(iface, &iface.Methods[ii])
	}
	g.emitClient(iface)
	g.emitServer(iface)
}

func (g *gen) methodBase(iface *Interface, m *Method) string {
	return exportName(iface.Name) + exportName(m.Name)
}

func (g *gen) paramsTypeName(iface *Interface, m *Method) string {
	base := g.methodBase(iface, m)
	return strings.ToLower(base[:1]) + base[1:] + "Params"
}

func (g *gen) resultTypeName(iface *Interface, m *Method) string {
	base := g.methodBase(iface, m)
	if methodResultShape(m) == resultTuple {
		return base + "Result"
	}
	return strings.ToLower(base[:1]) + base[1:] + "Result"
}

// emitMethodMessages renders the request envelope and, when the method has
// a result, the response record with its codec helpers.
func (g *gen) emitMethodMessages(iface *Interface, m *Method) {
	wireBase := g.module.Name + "." + iface.Name + "." + m.Name
	g.emitMessage(g.paramsTypeName(iface, m), wireBase+".request", m.Parameters, false)

	switch methodResultShape(m) {
	case resultTuple:
		g.emitMessage(g.resultTypeName(iface, m), wireBase+".response", m.ResultFields, true)
	case resultSingle:
		fields := []Field{{ID: 1, Name: "value", Type: m.ResultType}}
		g.emitMessage(g.resultTypeName(iface, m), wireBase+".response", fields, false)
	}
}

func (g *gen) methodParamList(m *Method) string {
	var parts []string
	for _, p := range m.Parameters {
		parts = append(parts, paramName(p.Name)+" "+goType(p.Type, g.module.Name))
	}
	return strings.Join(parts, ", ")
}

func (g *gen) methodParamNames(m *Method) string {
	var parts []string
	for _, p := range m.Parameters {
		parts = append(parts, paramName(p.Name))
	}
	return strings.Join(parts, ", ")
}

func (g *gen) paramsLiteral(iface *Interface, m *Method) string {
	var fields []string
	for _, p := range m.Parameters {
		fields = append(fields, exportName(p.Name)+": "+paramName(p.Name))
	}
	return "&" + g.paramsTypeName(iface, m) + "{" + strings.Join(fields, ", ") + "}"
}

// methodReturnType renders the client/server success type: "" for none.
func (g *gen) methodReturnType(iface *Interface, m *Method) string {
	switch methodResultShape(m) {
	case resultTuple:
		return "*" + g.resultTypeName(iface, m)
	case resultSingle:
		return goType(m.ResultType, g.module.Name)
	}
	return ""
}

func (g *gen) emitClient(iface *Interface) {
	ifaceName := exportName(iface.Name)
	clientName := ifaceName + "Client"

	g.p("// %s is the generated client stub for interface %s.", clientName, iface.Name)
	g.p("// The channel is shared with the session that owns the connection.")
	g.p("type %s struct {", clientName)
	g.indent++
	g.p("ctx *runtime.Context")
	g.p("ch  runtime.Channel")
	g.indent--
	g.p("}")
	g.p("")
	g.p("func New%s(ctx *runtime.Context, ch runtime.Channel) *%s {", clientName, clientName)
	g.p("\treturn &%s{ctx: ctx, ch: ch}", clientName)
	g.p("}")
	g.p("")

	for ii := range iface.Methods {
		g.emitClientMethod(iface, &iface.Methods[ii])
	}
}

func (g *gen) emitClientMethod(iface *Interface, m *Method) {
	ifaceName := exportName(iface.Name)
	clientName := ifaceName + "Client"
	methodName := exportName(m.Name)
	base := g.methodBase(iface, m)
	params := g.methodParamList(m)

	// Request builder shared by every call shape.
	g.p("func (c *%s) build%sRequest(%s) (*runtime.Request, error) {", clientName, methodName, params)
	g.indent++
	g.p("body, err := %s(%s)", codecFuncName("Encode", g.paramsTypeName(iface, m), false), g.paramsLiteral(iface, m))
	g.p("if err != nil {")
	g.p("\treturn nil, err")
	g.p("}")
	g.p("return &runtime.Request{")
	g.indent++
	g.p("ModuleID:    ModuleID,")
	g.p("InterfaceID: %sInterfaceID,", ifaceName)
	g.p("MethodID:    %s%sMethodID,", ifaceName, methodName)
	g.p("Encoding:    hasten.EncodingHb1,")
	g.p("Payload:     body,")
	g.indent--
	g.p("}, nil")
	g.indent--
	g.p("}")
	g.p("")

	if isFireAndForget(m.Kind) {
		g.p("// %s fires the request and expects no response.", methodName)
		g.p("func (c *%s) %s(%s) error {", clientName, methodName, params)
		g.indent++
		g.p("req, err := c.build%sRequest(%s)", methodName, g.methodParamNames(m))
		g.p("if err != nil {")
		g.p("\treturn err")
		g.p("}")
		g.p("return c.ctx.Notify(c.ch, req)")
		g.indent--
		g.p("}")
		g.p("")
		return
	}

	shape := methodResultShape(m)
	returnType := g.methodReturnType(iface, m)

	// Response decoder shared by every call shape.
	switch shape {
	case resultNone:
		g.p("func decode%sResponse(resp runtime.Response) error {", base)
		g.indent++
		g.p("if resp.Status != hasten.StatusOk {")
		g.p("\treturn &runtime.StatusError{Status: resp.Status}")
		g.p("}")
		g.p("return nil")
		g.indent--
		g.p("}")
	case resultSingle:
		g.p("func decode%sResponse(resp runtime.Response) (%s, error) {", base, returnType)
		g.indent++
		g.p("var zero %s", returnType)
		g.p("if resp.Status != hasten.StatusOk {")
		g.p("\treturn zero, &runtime.StatusError{Status: resp.Status}")
		g.p("}")
		g.p("out, err := %s(resp.Body)", codecFuncName("Decode", g.resultTypeName(iface, m), false))
		g.p("if err != nil {")
		g.p("\treturn zero, err")
		g.p("}")
		g.p("return out.Value, nil")
		g.indent--
		g.p("}")
	case resultTuple:
		g.p("func decode%sResponse(resp runtime.Response) (%s, error) {", base, returnType)
		g.indent++
		g.p("if resp.Status != hasten.StatusOk {")
		g.p("\treturn nil, &runtime.StatusError{Status: resp.Status}")
		g.p("}")
		g.p("return %s(resp.Body)", codecFuncName("Decode", g.resultTypeName(iface, m), true))
		g.indent--
		g.p("}")
	}
	g.p("")

	resultAndErr := "error"
	if shape != resultNone {
		resultAndErr = "(" + returnType + ", error)"
	}

	// Sync shape.
	g.p("// %s blocks until the response arrives.", methodName)
	g.p("func (c *%s) %s(%s) %s {", clientName, methodName, params, resultAndErr)
	g.indent++
	g.p("req, err := c.build%sRequest(%s)", methodName, g.methodParamNames(m))
	g.p("if err != nil {")
	if shape == resultNone {
		g.p("\treturn err")
	} else if shape == resultTuple {
		g.p("\treturn nil, err")
	} else {
		g.p("\tvar zero %s", returnType)
		g.p("\treturn zero, err")
	}
	g.p("}")
	g.p("resp, err := c.ctx.CallSync(c.ch, req)")
	g.p("if err != nil {")
	if shape == resultNone {
		g.p("\treturn err")
	} else if shape == resultTuple {
		g.p("\treturn nil, err")
	} else {
		g.p("\tvar zero %s", returnType)
		g.p("\treturn zero, err")
	}
	g.p("}")
	g.p("return decode%sResponse(resp)", base)
	g.indent--
	g.p("}")
	g.p("")

	// Async shape.
	futureName := base + "Future"
	g.p("// %s is a single-fulfillment future for %s.%s.", futureName, iface.Name, m.Name)
	g.p("type %s struct {", futureName)
	g.p("\tfuture *runtime.Future")
	g.p("}")
	g.p("")
	g.p("func (f *%s) Get() %s {", futureName, resultAndErr)
	g.p("\treturn decode%sResponse(f.future.Get())", base)
	g.p("}")
	g.p("")
	g.p("func (c *%s) %sAsync(%s) (*%s, error) {", clientName, methodName, params, futureName)
	g.indent++
	g.p("req, err := c.build%sRequest(%s)", methodName, g.methodParamNames(m))
	g.p("if err != nil {")
	g.p("\treturn nil, err")
	g.p("}")
	g.p("future, err := c.ctx.CallFuture(c.ch, req)")
	g.p("if err != nil {")
	g.p("\treturn nil, err")
	g.p("}")
	g.p("return &%s{future: future}, nil", futureName)
	g.indent--
	g.p("}")
	g.p("")

	// Callback shape.
	callbackSig := "func(error)"
	if shape != resultNone {
		callbackSig = "func(" + returnType + ", error)"
	}
	sep := ""
	if params != "" {
		sep = ", "
	}
	g.p("// %sCallback invokes callback exactly once with the result.", methodName)
	g.p("func (c *%s) %sCallback(%s%scallback %s) error {", clientName, methodName, params, sep, callbackSig)
	g.indent++
	g.p("req, err := c.build%sRequest(%s)", methodName, g.methodParamNames(m))
	g.p("if err != nil {")
	g.p("\treturn err")
	g.p("}")
	g.p("return c.ctx.Call(c.ch, req, func(resp runtime.Response) {")
	g.indent++
	if shape == resultNone {
		g.p("callback(decode%sResponse(resp))", base)
	} else {
		g.p("callback(decode%sResponse(resp))", base)
	}
	g.indent--
	g.p("})")
	g.indent--
	g.p("}")
	g.p("")
}

func (g *gen) emitServer(iface *Interface) {
	ifaceName := exportName(iface.Name)
	serverName := ifaceName + "Server"

	g.p("// %s is implemented by user code and bound with Bind%s.", serverName, ifaceName)
	g.p("type %s interface {", serverName)
	g.indent++
	for ii := range iface.Methods {
		m := &iface.Methods[ii]
		returnType := g.methodReturnType(iface, m)
		if isFireAndForget(m.Kind) || returnType == "" {
			g.p("%s(%s) error", exportName(m.Name), g.methodParamList(m))
		} else {
			g.p("%s(%s) (%s, error)", exportName(m.Name), g.methodParamList(m), returnType)
		}
	}
	g.indent--
	g.p("}")
	g.p("")

	g.p("// Bind%s registers impl in the process-wide handler registry.", ifaceName)
	g.p("// Every request is handed off to executor; nothing runs on the reactor.")
	g.p("func Bind%s(impl %s, executor runtime.Executor) {", ifaceName, serverName)
	g.indent++
	g.p("runtime.RegisterHandler(%sInterfaceID, func(req *runtime.Request, respond runtime.Responder) {", ifaceName)
	g.p("\texecutor.Schedule(func() {")
	g.p("\t\tdispatch%s(impl, req, respond)", ifaceName)
	g.p("\t})")
	g.p("})")
	g.indent--
	g.p("}")
	g.p("")

	g.p("func dispatch%s(impl %s, req *runtime.Request, respond runtime.Responder) {", ifaceName, serverName)
	g.indent++
	g.p("switch req.MethodID {")
	for ii := range iface.Methods {
		m := &iface.Methods[ii]
		g.p("case %s%sMethodID:", ifaceName, exportName(m.Name))
		g.indent++
		g.emitDispatchCase(iface, m)
		g.indent--
	}
	g.p("default:")
	g.p("\trespond(runtime.Response{Status: hasten.StatusNotFound})")
	g.p("}")
	g.indent--
	g.p("}")
	g.p("")
}

func (g *gen) emitDispatchCase(iface *Interface, m *Method) {
	methodName := exportName(m.Name)
	fireAndForget := isFireAndForget(m.Kind)

	g.p("params, err := %s(req.Payload)", codecFuncName("Decode", g.paramsTypeName(iface, m), false))
	g.p("if err != nil {")
	if fireAndForget {
		g.p("\treturn")
	} else {
		g.p("\trespond(runtime.Response{Status: hasten.StatusInvalidRequest})")
		g.p("\treturn")
	}
	g.p("}")

	var args []string
	for _, p := range m.Parameters {
		args = append(args, "params."+exportName(p.Name))
	}
	if len(m.Parameters) == 0 {
		g.p("_ = params")
	}
	callArgs := strings.Join(args, ", ")

	if fireAndForget {
		g.p("impl.%s(%s)", methodName, callArgs)
		return
	}

	switch methodResultShape(m) {
	case resultNone:
		g.p("if err := impl.%s(%s); err != nil {", methodName, callArgs)
		g.p("\trespond(runtime.Response{Status: hasten.StatusApplicationError})")
		g.p("\treturn")
		g.p("}")
		g.p("respond(runtime.Response{Status: hasten.StatusOk})")
	case resultSingle:
		g.p("result, err := impl.%s(%s)", methodName, callArgs)
		g.p("if err != nil {")
		g.p("\trespond(runtime.Response{Status: hasten.StatusApplicationError})")
		g.p("\treturn")
		g.p("}")
		g.p("body, err := %s(&%s{Value: result})",
			codecFuncName("Encode", g.resultTypeName(iface, m), false), g.resultTypeName(iface, m))
		g.p("if err != nil {")
		g.p("\trespond(runtime.Response{Status: hasten.StatusInternalError})")
		g.p("\treturn")
		g.p("}")
		g.p("respond(runtime.Response{Status: hasten.StatusOk, Body: body})")
	case resultTuple:
		g.p("result, err := impl.%s(%s)", methodName, callArgs)
		g.p("if err != nil {")
		g.p("\trespond(runtime.Response{Status: hasten.StatusApplicationError})")
		g.p("\treturn")
		g.p("}")
		g.p("body, err := %s(result)", codecFuncName("Encode", g.resultTypeName(iface, m), true))
		g.p("if err != nil {")
		g.p("\trespond(runtime.Response{Status: hasten.StatusInternalError})")
		g.p("\treturn")
		g.p("}")
		g.p("respond(runtime.Response{Status: hasten.StatusOk, Body: body})")
	}
}
