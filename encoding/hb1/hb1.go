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

// Package hb1 implements the HB1 field-tagged binary encoding. A message is
// a flat sequence of (tag, wire type, value) triples; the per-field prefix
// is the codec's only framing, the enclosing frame supplies overall bounds.
package hb1

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/oleh-synelnykov/hasten"
)

const maxVarintBytes = 10

type WireType uint8

const (
	WireVarint          WireType = 0
	WireZigZagVarint    WireType = 1
	WireFixed32         WireType = 2
	WireFixed64         WireType = 3
	WireLengthDelimited WireType = 4
	WireCapability      WireType = 5
)

func (t WireType) String() string {
	switch t {
	case WireVarint:
		return "varint"
	case WireZigZagVarint:
		return "zigzag-varint"
	case WireFixed32:
		return "fixed32"
	case WireFixed64:
		return "fixed64"
	case WireLengthDelimited:
		return "length-delimited"
	case WireCapability:
		return "capability"
	}
	return fmt.Sprintf("WireType(%d)", uint8(t))
}

type ValueKind uint8

const (
	KindUnsigned ValueKind = iota
	KindSigned
	KindString
	KindBytes
)

func (k ValueKind) String() string {
	switch k {
	case KindUnsigned:
		return "unsigned"
	case KindSigned:
		return "signed"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	}
	return fmt.Sprintf("ValueKind(%d)", uint8(k))
}

// Value is a decoded field payload, tagged by Kind.
type Value struct {
	Kind     ValueKind
	Unsigned uint64
	Signed   int64
	Text     string
	Bytes    []byte
}

func UnsignedValue(v uint64) Value {
	return Value{Kind: KindUnsigned, Unsigned: v}
}

func SignedValue(v int64) Value {
	return Value{Kind: KindSigned, Signed: v}
}

func StringValue(v string) Value {
	return Value{Kind: KindString, Text: v}
}

func BytesValue(v []byte) Value {
	return Value{Kind: KindBytes, Bytes: v}
}

// FieldValue is one field on its way onto or off of the wire.
type FieldValue struct {
	ID       uint32
	WireType WireType
	Value    Value
}

// FieldDescriptor is the static expectation for one message field. Kind is
// the preferred decode shape for length-delimited values.
type FieldDescriptor struct {
	ID       uint32
	WireType WireType
	Optional bool
	Kind     ValueKind
}

// MessageDescriptor lists a message's expected fields in declaration order.
// Generated bindings emit these; the codec consults them on both paths.
type MessageDescriptor struct {
	Name   string
	Fields []FieldDescriptor
}

func (d *MessageDescriptor) Field(id uint32) *FieldDescriptor {
	for ii := range d.Fields {
		if d.Fields[ii].ID == id {
			return &d.Fields[ii]
		}
	}
	return nil
}

// ---------- writer ----------

// Writer emits HB1 primitives onto an io.Writer.
type Writer struct {
	w       io.Writer
	scratch [maxVarintBytes]byte
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) write(data []byte) error {
	if _, err := w.w.Write(data); err != nil {
		return hasten.Errorf(hasten.TransportError, "write failed: %v", err)
	}
	return nil
}

func (w *Writer) WriteVarint(value uint64) error {
	n := 0
	for value >= 0x80 {
		w.scratch[n] = byte(value) | 0x80
		value >>= 7
		n++
	}
	w.scratch[n] = byte(value)
	return w.write(w.scratch[:n+1])
}

func (w *Writer) WriteZigzag(value int64) error {
	return w.WriteVarint((uint64(value) << 1) ^ uint64(value>>63))
}

func (w *Writer) WriteTag(id uint32, wireType WireType) error {
	if err := w.WriteVarint(uint64(id)); err != nil {
		return err
	}
	return w.write([]byte{byte(wireType)})
}

func (w *Writer) WriteFieldVarint(id uint32, value uint64) error {
	if err := w.WriteTag(id, WireVarint); err != nil {
		return err
	}
	return w.WriteVarint(value)
}

func (w *Writer) WriteFieldSvarint(id uint32, value int64) error {
	if err := w.WriteTag(id, WireZigZagVarint); err != nil {
		return err
	}
	return w.WriteZigzag(value)
}

func (w *Writer) WriteFieldFixed32(id uint32, value uint32) error {
	if err := w.WriteTag(id, WireFixed32); err != nil {
		return err
	}
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], value)
	return w.write(buf[:])
}

func (w *Writer) WriteFieldFixed64(id uint32, value uint64) error {
	if err := w.WriteTag(id, WireFixed64); err != nil {
		return err
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], value)
	return w.write(buf[:])
}

func (w *Writer) WriteFieldBytes(id uint32, value []byte) error {
	if err := w.WriteTag(id, WireLengthDelimited); err != nil {
		return err
	}
	if err := w.WriteVarint(uint64(len(value))); err != nil {
		return err
	}
	return w.write(value)
}

func (w *Writer) WriteFieldString(id uint32, value string) error {
	if err := w.WriteTag(id, WireLengthDelimited); err != nil {
		return err
	}
	if err := w.WriteVarint(uint64(len(value))); err != nil {
		return err
	}
	return w.write([]byte(value))
}

// Untagged primitives, used for the interior of length-delimited container
// blobs (vectors, maps). The layout inside a blob is Hasten-private; only
// round-tripping is promised.

func (w *Writer) WriteFixed32(value uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], value)
	return w.write(buf[:])
}

func (w *Writer) WriteFixed64(value uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], value)
	return w.write(buf[:])
}

func (w *Writer) WriteLengthPrefixed(data []byte) error {
	if err := w.WriteVarint(uint64(len(data))); err != nil {
		return err
	}
	return w.write(data)
}

// ---------- reader ----------

// FieldView is one field as found on the wire, before kind-directed
// decoding. Data aliases the reader's buffer.
type FieldView struct {
	ID       uint32
	WireType WireType
	Data     []byte
}

// Reader walks a byte buffer field by field.
type Reader struct {
	buf []byte
	off int
}

func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

func (r *Reader) Empty() bool {
	return r.off >= len(r.buf)
}

func (r *Reader) take(n int) ([]byte, error) {
	if r.off+n > len(r.buf) {
		return nil, hasten.NewError(hasten.TransportError, "unexpected end of payload")
	}
	out := r.buf[r.off : r.off+n]
	r.off += n
	return out, nil
}

func (r *Reader) ReadVarint() (uint64, error) {
	var result uint64
	shift := 0
	for ii := 0; ii < maxVarintBytes; ii++ {
		if r.Empty() {
			return 0, hasten.NewError(hasten.TransportError, "truncated varint")
		}
		b := r.buf[r.off]
		r.off++
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
	return 0, hasten.NewError(hasten.TransportError, "varint too long")
}

// varintBytes returns the raw LEB128 bytes of the next varint without
// decoding it, so FieldView.Data is uniform across wire types.
func (r *Reader) varintBytes() ([]byte, error) {
	start := r.off
	for ii := 0; ii < maxVarintBytes; ii++ {
		if r.Empty() {
			return nil, hasten.NewError(hasten.TransportError, "truncated varint")
		}
		b := r.buf[r.off]
		r.off++
		if b&0x80 == 0 {
			return r.buf[start:r.off], nil
		}
	}
	return nil, hasten.NewError(hasten.TransportError, "varint too long")
}

// Next reads the next field into out. It returns false at a clean end of
// input.
func (r *Reader) Next(out *FieldView) (bool, error) {
	if r.Empty() {
		return false, nil
	}

	tag, err := r.ReadVarint()
	if err != nil {
		return false, err
	}
	typeByte, err := r.take(1)
	if err != nil {
		return false, err
	}
	wireType := WireType(typeByte[0])

	var data []byte
	switch wireType {
	case WireVarint, WireZigZagVarint:
		data, err = r.varintBytes()
	case WireFixed32:
		data, err = r.take(4)
	case WireFixed64:
		data, err = r.take(8)
	case WireLengthDelimited, WireCapability:
		var length uint64
		length, err = r.ReadVarint()
		if err == nil {
			if length > uint64(len(r.buf)-r.off) {
				err = hasten.NewError(hasten.TransportError, "unexpected end of payload")
			} else {
				data, err = r.take(int(length))
			}
		}
	default:
		return false, hasten.Errorf(hasten.TransportError, "unknown wire type %d", uint8(wireType))
	}
	if err != nil {
		return false, err
	}

	out.ID = uint32(tag)
	out.WireType = wireType
	out.Data = data
	return true, nil
}

func (r *Reader) ReadZigzag() (int64, error) {
	value, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}
	return int64(value>>1) ^ -int64(value&1), nil
}

func (r *Reader) ReadFixed32() (uint32, error) {
	data, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(data), nil
}

func (r *Reader) ReadFixed64() (uint64, error) {
	data, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(data), nil
}

func (r *Reader) ReadLengthPrefixed() ([]byte, error) {
	length, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	if length > uint64(len(r.buf)-r.off) {
		return nil, hasten.NewError(hasten.TransportError, "unexpected end of payload")
	}
	return r.take(int(length))
}

// DecodeVarint decodes a complete LEB128 buffer.
func DecodeVarint(data []byte) (uint64, error) {
	var result uint64
	shift := 0
	for _, b := range data {
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
	return 0, hasten.NewError(hasten.TransportError, "unterminated varint payload")
}

// DecodeZigzag decodes a complete zigzag LEB128 buffer.
func DecodeZigzag(data []byte) (int64, error) {
	value, err := DecodeVarint(data)
	if err != nil {
		return 0, err
	}
	return int64(value>>1) ^ -int64(value&1), nil
}
