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

package hb1

import (
	"bytes"
	"encoding/binary"

	"github.com/oleh-synelnykov/hasten"
)

// EncodeMessage walks values in input order and emits each through w. Wire
// types and value kinds must agree with the descriptor; a disagreement is a
// caller bug and reported as InternalError.
func EncodeMessage(descriptor *MessageDescriptor, values []FieldValue, w *Writer) error {
	for ii := range values {
		value := &values[ii]
		desc := descriptor.Field(value.ID)
		if desc == nil {
			return hasten.NewError(hasten.InternalError, "unknown field id in message encode")
		}
		if desc.WireType != value.WireType {
			return hasten.NewError(hasten.InternalError, "wire type mismatch in message encode")
		}
		if desc.WireType == WireLengthDelimited {
			if desc.Kind == KindString && value.Value.Kind != KindString {
				return hasten.NewError(hasten.InternalError, "length-delimited field expects string")
			}
			if desc.Kind == KindBytes && value.Value.Kind != KindBytes {
				return hasten.NewError(hasten.InternalError, "length-delimited field expects bytes")
			}
		}
		if err := encodeValue(value, w); err != nil {
			return err
		}
	}
	return nil
}

func encodeValue(value *FieldValue, w *Writer) error {
	switch value.WireType {
	case WireVarint:
		if value.Value.Kind != KindUnsigned {
			return hasten.NewError(hasten.InternalError, "value kind mismatch")
		}
		return w.WriteFieldVarint(value.ID, value.Value.Unsigned)
	case WireZigZagVarint:
		if value.Value.Kind != KindSigned {
			return hasten.NewError(hasten.InternalError, "value kind mismatch")
		}
		return w.WriteFieldSvarint(value.ID, value.Value.Signed)
	case WireFixed32:
		if value.Value.Kind != KindUnsigned {
			return hasten.NewError(hasten.InternalError, "value kind mismatch")
		}
		return w.WriteFieldFixed32(value.ID, uint32(value.Value.Unsigned))
	case WireFixed64:
		if value.Value.Kind != KindUnsigned {
			return hasten.NewError(hasten.InternalError, "value kind mismatch")
		}
		return w.WriteFieldFixed64(value.ID, value.Value.Unsigned)
	case WireLengthDelimited:
		if value.Value.Kind == KindString {
			return w.WriteFieldString(value.ID, value.Value.Text)
		}
		if value.Value.Kind == KindBytes {
			return w.WriteFieldBytes(value.ID, value.Value.Bytes)
		}
		return hasten.NewError(hasten.InternalError, "length-delimited field requires string/bytes")
	case WireCapability:
		return hasten.NewError(hasten.Unimplemented, "capability encoding not implemented")
	}
	return hasten.NewError(hasten.InternalError, "unknown wire type")
}

// EncodeToBytes renders one message to a fresh buffer. Generated bindings
// use it for embedded struct fields.
func EncodeToBytes(descriptor *MessageDescriptor, values []FieldValue) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeMessage(descriptor, values, NewWriter(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeMessage reads fields until data runs out, decoding each field the
// descriptor recognizes and skipping unknown ids. Every non-optional
// descriptor field must have appeared.
func DecodeMessage(descriptor *MessageDescriptor, data []byte) ([]FieldValue, error) {
	reader := NewReader(data)
	var views []FieldView
	var view FieldView
	for {
		ok, err := reader.Next(&view)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		views = append(views, view)
	}

	var values []FieldValue
	for ii := range views {
		field := &views[ii]
		desc := descriptor.Field(field.ID)
		if desc == nil {
			continue // unknown fields ignored
		}
		value := FieldValue{ID: field.ID, WireType: field.WireType}
		switch field.WireType {
		case WireVarint:
			decoded, err := DecodeVarint(field.Data)
			if err != nil {
				return nil, err
			}
			value.Value = UnsignedValue(decoded)
		case WireZigZagVarint:
			decoded, err := DecodeZigzag(field.Data)
			if err != nil {
				return nil, err
			}
			value.Value = SignedValue(decoded)
		case WireFixed32:
			if len(field.Data) != 4 {
				return nil, hasten.NewError(hasten.TransportError, "fixed32 length mismatch")
			}
			value.Value = UnsignedValue(uint64(binary.BigEndian.Uint32(field.Data)))
		case WireFixed64:
			if len(field.Data) != 8 {
				return nil, hasten.NewError(hasten.TransportError, "fixed64 length mismatch")
			}
			value.Value = UnsignedValue(binary.BigEndian.Uint64(field.Data))
		case WireLengthDelimited:
			if desc.Kind == KindString {
				value.Value = StringValue(string(field.Data))
			} else {
				value.Value = BytesValue(append([]byte(nil), field.Data...))
			}
		case WireCapability:
			return nil, hasten.NewError(hasten.Unimplemented, "capability decoding not implemented")
		}
		values = append(values, value)
	}

	for ii := range descriptor.Fields {
		desc := &descriptor.Fields[ii]
		if desc.Optional {
			continue
		}
		present := false
		for jj := range values {
			if values[jj].ID == desc.ID {
				present = true
				break
			}
		}
		if !present {
			return nil, hasten.Errorf(hasten.TransportError,
				"missing required field %d in %s", desc.ID, descriptor.Name)
		}
	}
	return values, nil
}
