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
	"testing"

	"github.com/oleh-synelnykov/hasten"
	"github.com/oleh-synelnykov/hasten/internal/testutil"
)

var testDescriptor = MessageDescriptor{
	Name: "test.Message",
	Fields: []FieldDescriptor{
		{ID: 1, WireType: WireVarint, Kind: KindUnsigned},
		{ID: 2, WireType: WireZigZagVarint, Kind: KindSigned},
		{ID: 3, WireType: WireLengthDelimited, Kind: KindString},
	},
}

func encodeTest(t *testing.T, desc *MessageDescriptor, values []FieldValue) []byte {
	t.Helper()
	data, err := EncodeToBytes(desc, values)
	testutil.AssertNoError(t, err)
	return data
}

func TestPrimitiveFields(t *testing.T) {
	// id=1 varint 17, id=2 zigzag -9, id=3 "payload"; decoded in order.
	values := []FieldValue{
		{ID: 1, WireType: WireVarint, Value: UnsignedValue(17)},
		{ID: 2, WireType: WireZigZagVarint, Value: SignedValue(-9)},
		{ID: 3, WireType: WireLengthDelimited, Value: StringValue("payload")},
	}
	decoded, err := DecodeMessage(&testDescriptor, encodeTest(t, &testDescriptor, values))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 3, len(decoded))
	testutil.ExpectEq(t, uint64(17), decoded[0].Value.Unsigned)
	testutil.ExpectEq(t, int64(-9), decoded[1].Value.Signed)
	testutil.ExpectEq(t, "payload", decoded[2].Value.Text)
}

func TestRoundTripAllWireTypes(t *testing.T) {
	desc := MessageDescriptor{
		Name: "test.All",
		Fields: []FieldDescriptor{
			{ID: 1, WireType: WireVarint, Kind: KindUnsigned},
			{ID: 2, WireType: WireZigZagVarint, Kind: KindSigned},
			{ID: 3, WireType: WireFixed32, Kind: KindUnsigned},
			{ID: 4, WireType: WireFixed64, Kind: KindUnsigned},
			{ID: 5, WireType: WireLengthDelimited, Kind: KindString},
			{ID: 6, WireType: WireLengthDelimited, Kind: KindBytes},
		},
	}
	values := []FieldValue{
		{ID: 1, WireType: WireVarint, Value: UnsignedValue(0xDEADBEEFCAFE)},
		{ID: 2, WireType: WireZigZagVarint, Value: SignedValue(-1 << 62)},
		{ID: 3, WireType: WireFixed32, Value: UnsignedValue(0x01020304)},
		{ID: 4, WireType: WireFixed64, Value: UnsignedValue(0x0102030405060708)},
		{ID: 5, WireType: WireLengthDelimited, Value: StringValue("héllo")},
		{ID: 6, WireType: WireLengthDelimited, Value: BytesValue([]byte{0, 1, 2, 0xFF})},
	}
	decoded, err := DecodeMessage(&desc, encodeTest(t, &desc, values))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, len(values), len(decoded))
	testutil.ExpectEq(t, uint64(0xDEADBEEFCAFE), decoded[0].Value.Unsigned)
	testutil.ExpectEq(t, int64(-1<<62), decoded[1].Value.Signed)
	testutil.ExpectEq(t, uint64(0x01020304), decoded[2].Value.Unsigned)
	testutil.ExpectEq(t, uint64(0x0102030405060708), decoded[3].Value.Unsigned)
	testutil.ExpectEq(t, "héllo", decoded[4].Value.Text)
	testutil.ExpectBytesEq(t, []byte{0, 1, 2, 0xFF}, decoded[5].Value.Bytes)
}

func TestUnknownTagsAreSkipped(t *testing.T) {
	values := []FieldValue{
		{ID: 1, WireType: WireVarint, Value: UnsignedValue(17)},
		{ID: 2, WireType: WireZigZagVarint, Value: SignedValue(-9)},
		{ID: 3, WireType: WireLengthDelimited, Value: StringValue("payload")},
	}
	data := encodeTest(t, &testDescriptor, values)

	// A narrower descriptor still decodes, ignoring fields 2 and 3.
	narrow := MessageDescriptor{
		Name: "test.Narrow",
		Fields: []FieldDescriptor{
			{ID: 1, WireType: WireVarint, Kind: KindUnsigned},
		},
	}
	decoded, err := DecodeMessage(&narrow, data)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 1, len(decoded))
	testutil.ExpectEq(t, uint64(17), decoded[0].Value.Unsigned)
}

func TestMissingRequiredField(t *testing.T) {
	values := []FieldValue{
		{ID: 1, WireType: WireVarint, Value: UnsignedValue(17)},
	}
	data := encodeTest(t, &testDescriptor, values)
	_, err := DecodeMessage(&testDescriptor, data)
	testutil.AssertError(t, err)
	testutil.ExpectEq(t, hasten.TransportError, hasten.CodeOf(err))
}

func TestOptionalFieldMayBeAbsent(t *testing.T) {
	desc := MessageDescriptor{
		Name: "test.Opt",
		Fields: []FieldDescriptor{
			{ID: 1, WireType: WireVarint, Kind: KindUnsigned},
			{ID: 2, WireType: WireLengthDelimited, Optional: true, Kind: KindString},
		},
	}
	values := []FieldValue{
		{ID: 1, WireType: WireVarint, Value: UnsignedValue(5)},
	}
	decoded, err := DecodeMessage(&desc, encodeTest(t, &desc, values))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 1, len(decoded))
}

func TestEncodeRejectsUnknownField(t *testing.T) {
	values := []FieldValue{
		{ID: 99, WireType: WireVarint, Value: UnsignedValue(1)},
	}
	_, err := EncodeToBytes(&testDescriptor, values)
	testutil.AssertError(t, err)
	testutil.ExpectEq(t, hasten.InternalError, hasten.CodeOf(err))
}

func TestEncodeRejectsWireTypeMismatch(t *testing.T) {
	values := []FieldValue{
		{ID: 1, WireType: WireFixed32, Value: UnsignedValue(1)},
	}
	_, err := EncodeToBytes(&testDescriptor, values)
	testutil.AssertError(t, err)
	testutil.ExpectEq(t, hasten.InternalError, hasten.CodeOf(err))
}

func TestCapabilityIsUnimplemented(t *testing.T) {
	desc := MessageDescriptor{
		Name: "test.Cap",
		Fields: []FieldDescriptor{
			{ID: 1, WireType: WireCapability, Kind: KindBytes},
		},
	}
	values := []FieldValue{
		{ID: 1, WireType: WireCapability, Value: BytesValue(nil)},
	}
	_, err := EncodeToBytes(&desc, values)
	testutil.AssertError(t, err)
	testutil.ExpectEq(t, hasten.Unimplemented, hasten.CodeOf(err))

	// A capability field on the wire fails decode the same way.
	var buf bytes.Buffer
	w := NewWriter(&buf)
	testutil.AssertNoError(t, w.WriteTag(1, WireCapability))
	testutil.AssertNoError(t, w.WriteVarint(0))
	_, err = DecodeMessage(&desc, buf.Bytes())
	testutil.AssertError(t, err)
	testutil.ExpectEq(t, hasten.Unimplemented, hasten.CodeOf(err))
}

func TestTruncatedVarint(t *testing.T) {
	_, err := DecodeMessage(&testDescriptor, []byte{0x81})
	testutil.AssertError(t, err)
	testutil.ExpectEq(t, hasten.TransportError, hasten.CodeOf(err))
}

func TestVarintTooLong(t *testing.T) {
	overlong := bytes.Repeat([]byte{0x80}, 11)
	r := NewReader(overlong)
	_, err := r.ReadVarint()
	testutil.AssertError(t, err)
	testutil.ExpectEq(t, hasten.TransportError, hasten.CodeOf(err))
}

func TestZigzagValues(t *testing.T) {
	cases := []int64{0, -1, 1, -2, 63, -64, 1 << 40, -(1 << 40), 1<<63 - 1, -1 << 63}
	for _, value := range cases {
		var buf bytes.Buffer
		testutil.AssertNoError(t, NewWriter(&buf).WriteZigzag(value))
		decoded, err := DecodeZigzag(buf.Bytes())
		testutil.AssertNoError(t, err)
		testutil.ExpectEq(t, value, decoded)
	}
}

func TestUntaggedPrimitivesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	testutil.AssertNoError(t, w.WriteFixed32(0xA1B2C3D4))
	testutil.AssertNoError(t, w.WriteFixed64(0x1122334455667788))
	testutil.AssertNoError(t, w.WriteLengthPrefixed([]byte("chunk")))

	r := NewReader(buf.Bytes())
	u32, err := r.ReadFixed32()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, uint32(0xA1B2C3D4), u32)
	u64, err := r.ReadFixed64()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, uint64(0x1122334455667788), u64)
	chunk, err := r.ReadLengthPrefixed()
	testutil.AssertNoError(t, err)
	testutil.ExpectBytesEq(t, []byte("chunk"), chunk)
	testutil.ExpectTrue(t, r.Empty())
}

func TestLengthDelimitedTruncation(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	testutil.AssertNoError(t, w.WriteTag(3, WireLengthDelimited))
	testutil.AssertNoError(t, w.WriteVarint(100)) // promises 100 bytes, delivers none
	_, err := DecodeMessage(&testDescriptor, buf.Bytes())
	testutil.AssertError(t, err)
	testutil.ExpectEq(t, hasten.TransportError, hasten.CodeOf(err))
}
