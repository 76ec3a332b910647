package resolver

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DecodeUpload converts uploaded identifier-list bytes to UTF-8 text.
// Detection order: UTF-8 BOM, UTF-16 LE/BE BOM, valid UTF-8, Latin-1
// fallback. Uploaded lists come from spreadsheets and mail clients, which
// regularly emit UTF-16 with a BOM.
func DecodeUpload(data []byte) string {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[3:])
	case bytes.HasPrefix(data, bomUTF16LE):
		return decodeUTF16(data[2:], binary.LittleEndian)
	case bytes.HasPrefix(data, bomUTF16BE):
		return decodeUTF16(data[2:], binary.BigEndian)
	case utf8.Valid(data):
		return string(data)
	}
	// Latin-1 maps every byte directly to the same code point
	var buf bytes.Buffer
	buf.Grow(len(data) * 2)
	for _, b := range data {
		buf.WriteRune(rune(b))
	}
	return buf.String()
}

func decodeUTF16(data []byte, order binary.ByteOrder) string {
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}
	var buf bytes.Buffer
	buf.Grow(len(data))
	for i := 0; i < len(data); i += 2 {
		unit := order.Uint16(data[i : i+2])
		if unit >= 0xD800 && unit <= 0xDBFF {
			if i+3 < len(data) {
				low := order.Uint16(data[i+2 : i+4])
				if low >= 0xDC00 && low <= 0xDFFF {
					buf.WriteRune(0x10000 + (rune(unit-0xD800)<<10 | rune(low-0xDC00)))
					i += 2
					continue
				}
			}
			buf.WriteRune(0xFFFD)
			continue
		}
		if unit >= 0xDC00 && unit <= 0xDFFF {
			buf.WriteRune(0xFFFD)
			continue
		}
		buf.WriteRune(rune(unit))
	}
	return buf.String()
}
