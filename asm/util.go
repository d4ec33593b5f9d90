// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

var hex = "0123456789ABCDEF"

// Return a little-endian representation of the value using the requested
// number of bytes.
func toBytes(bytes, value int) []byte {
	switch bytes {
	case 0:
		return nil
	case 1:
		return []byte{byte(value)}
	default:
		return []byte{byte(value), byte(value >> 8)}
	}
}

// Return a hexadecimal string representation of a byte slice.
func byteString(b []byte) string {
	if len(b) < 1 {
		return ""
	}

	s := make([]byte, len(b)*3-1)
	i, j := 0, 0
	for n := len(b) - 1; i < n; i, j = i+1, j+3 {
		s[j+0] = hex[(b[i] >> 4)]
		s[j+1] = hex[(b[i] & 0x0f)]
		s[j+2] = ' '
	}
	s[j+0] = hex[(b[i] >> 4)]
	s[j+1] = hex[(b[i] & 0x0f)]
	return string(s)
}

// Return the character codes of a quoted string literal, or false if the
// string is not quoted.
func unquote(s string) ([]byte, bool) {
	if len(s) < 2 || !stringQuote(s[0]) || s[len(s)-1] != s[0] {
		return nil, false
	}
	return []byte(s[1 : len(s)-1]), true
}

// Split a comma-separated operand list, ignoring commas inside quotes.
func splitList(l fstring) []fstring {
	var items []fstring
	for {
		item, remain := l.consumeUntilUnquotedChar(',')
		items = append(items, item.consumeWhitespace().trimRight())
		if remain.isEmpty() {
			return items
		}
		l = remain.consume(1)
	}
}
