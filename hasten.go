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

// Package hasten holds the shared vocabulary of the Hasten IDL toolchain and
// its RPC runtime: the error taxonomy, payload encodings, RPC status codes,
// and the stable 64-bit identifiers derived from symbolic names.
package hasten

import (
	"hash/fnv"
)

// PrefaceMagic is reserved as a connection preface string for future version
// negotiation. It is not currently sent; peers must accept its absence.
const PrefaceMagic = "HASTEN/1"

// Encoding identifies the serialization of RPC payload bodies.
type Encoding uint8

const (
	EncodingHb1 Encoding = 0
)

func (e Encoding) String() string {
	switch e {
	case EncodingHb1:
		return "HB1"
	}
	return "Unknown"
}

// Status is the result code carried in every RPC response payload.
type Status uint8

const (
	StatusOk               Status = 0
	StatusApplicationError Status = 1
	StatusInvalidRequest   Status = 2
	StatusNotFound         Status = 3
	StatusInternalError    Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "OK"
	case StatusApplicationError:
		return "APPLICATION_ERROR"
	case StatusInvalidRequest:
		return "INVALID_REQUEST"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusInternalError:
		return "INTERNAL_ERROR"
	}
	return "UNKNOWN"
}

// HashName returns the FNV-1a 64 hash of a symbolic name. All Hasten wire
// identifiers (module, interface, method) are derived with this function so
// that independently generated bindings agree on the wire.
func HashName(name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return h.Sum64()
}

// ModuleID returns the stable identifier of a module. The module name is the
// dotted form, e.g. "browser.v1".
func ModuleID(module string) uint64 {
	return HashName(module)
}

// InterfaceID returns the stable identifier of "<module>.<Interface>".
func InterfaceID(module, iface string) uint64 {
	return HashName(module + "." + iface)
}

// MethodID returns the stable identifier of "<module>.<Interface>.<method>".
func MethodID(module, iface, method string) uint64 {
	return HashName(module + "." + iface + "." + method)
}
