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

package runtime

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/oleh-synelnykov/hasten"
)

// FrameHeaderSize is the fixed on-wire header size in bytes.
const FrameHeaderSize = 24

const (
	frameMagic   uint32 = 0x48425331 // "HBS1"
	frameVersion uint16 = 0x0001
)

type FrameType uint8

const (
	FrameData     FrameType = 0
	FrameSettings FrameType = 1
	FrameGoodbye  FrameType = 2
	FramePing     FrameType = 3
	FrameCancel   FrameType = 4
	FrameError    FrameType = 5
)

func (t FrameType) String() string {
	switch t {
	case FrameData:
		return "DATA"
	case FrameSettings:
		return "SETTINGS"
	case FrameGoodbye:
		return "GOODBYE"
	case FramePing:
		return "PING"
	case FrameCancel:
		return "CANCEL"
	case FrameError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// FlagEndStream marks the final frame of a stream.
const FlagEndStream uint8 = 0x01

// FrameHeader is the decoded form of the 24-byte wire header. Magic,
// version, and CRC are handled by the codec and never stored.
type FrameHeader struct {
	Type     FrameType
	Flags    uint8
	Length   uint32
	StreamID uint64
}

// Frame is one unit on the wire.
type Frame struct {
	Header  FrameHeader
	Payload []byte
}

// EncodeHeader lays the header out big-endian and fills the trailing CRC32
// over the first 20 bytes.
func EncodeHeader(header *FrameHeader) [FrameHeaderSize]byte {
	var out [FrameHeaderSize]byte
	binary.BigEndian.PutUint32(out[0:4], frameMagic)
	binary.BigEndian.PutUint16(out[4:6], frameVersion)
	out[6] = byte(header.Type)
	out[7] = header.Flags
	binary.BigEndian.PutUint32(out[8:12], header.Length)
	binary.BigEndian.PutUint64(out[12:20], header.StreamID)
	binary.BigEndian.PutUint32(out[20:24], crc32.ChecksumIEEE(out[:20]))
	return out
}

// DecodeHeader validates magic, version, frame type, and CRC before
// returning the decoded header.
func DecodeHeader(buf []byte) (FrameHeader, error) {
	if len(buf) < FrameHeaderSize {
		return FrameHeader{}, hasten.NewError(hasten.TransportError, "short frame header")
	}
	if binary.BigEndian.Uint32(buf[0:4]) != frameMagic {
		return FrameHeader{}, hasten.NewError(hasten.TransportError, "invalid frame magic")
	}
	if binary.BigEndian.Uint16(buf[4:6]) != frameVersion {
		return FrameHeader{}, hasten.NewError(hasten.TransportError, "unsupported frame version")
	}
	frameType := FrameType(buf[6])
	if frameType > FrameError {
		return FrameHeader{}, hasten.NewError(hasten.TransportError, "unknown frame type")
	}
	if binary.BigEndian.Uint32(buf[20:24]) != crc32.ChecksumIEEE(buf[:20]) {
		return FrameHeader{}, hasten.NewError(hasten.TransportError, "frame header CRC mismatch")
	}
	return FrameHeader{
		Type:     frameType,
		Flags:    buf[7],
		Length:   binary.BigEndian.Uint32(buf[8:12]),
		StreamID: binary.BigEndian.Uint64(buf[12:20]),
	}, nil
}
