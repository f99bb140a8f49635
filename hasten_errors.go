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

package hasten

import (
	"fmt"
)

// ErrorCode partitions runtime failures by how the caller should react, not
// by where they occurred.
type ErrorCode uint8

const (
	Ok ErrorCode = iota
	TransportError
	Timeout
	Cancelled
	InternalError
	Unimplemented
)

func (c ErrorCode) String() string {
	switch c {
	case Ok:
		return "ok"
	case TransportError:
		return "transport error"
	case Timeout:
		return "timeout"
	case Cancelled:
		return "cancelled"
	case InternalError:
		return "internal error"
	case Unimplemented:
		return "unimplemented"
	}
	return "unknown"
}

// Error is the runtime's error value. Message is human text; Code is the
// contract.
type Error struct {
	Code    ErrorCode
	Message string
}

var _ error = (*Error)(nil)

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Message
}

// Is reports code equality, so errors.Is(err, &Error{Code: Cancelled})
// matches any cancellation regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the ErrorCode from err, or InternalError for foreign
// errors. A nil err maps to Ok.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return Ok
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return InternalError
}
