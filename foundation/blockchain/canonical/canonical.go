// Package canonical produces the fixed textual forms that transactions and
// blocks are signed and hashed over. Any change to the output of this package
// changes every signature payload, block hash and merkle root, so the formats
// are frozen:
//
//	Text:  the bare value, numbers in shortest round-trip form.
//	Repr:  a dict form, {'sender': 'Alice', 'amount': 10, 'signature': None}.
//	JSON:  a JSON form with ", " and ": " separators and all non-ASCII escaped,
//	       {"sender": "Alice", "amount": 10, "signature": null}.
package canonical

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// Field is a named value in an ordered record.
type Field struct {
	Name  string
	Value any
}

// Fields is an ordered record. Order is part of the canonical form.
type Fields []Field

// =============================================================================

// FormatFloat renders the float in shortest round-trip form. Values with a
// decimal exponent in [-4, 16) are written in positional notation and always
// carry a fractional part, others use scientific notation.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err != nil || exp < -4 || exp >= 16 {
		return sci
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}

	return s
}

// Text renders a scalar value without quoting. This is the form used to build
// signing payloads.
func Text(v any) string {
	switch v := v.(type) {
	case nil:
		return "None"
	case string:
		return v
	case float64:
		return FormatFloat(v)
	case *big.Int:
		if v == nil {
			return "None"
		}
		return v.String()
	case bool:
		if v {
			return "True"
		}
		return "False"
	}

	if s, ok := integer(v); ok {
		return s
	}

	return fmt.Sprint(v)
}

// Repr renders the value in its dict form.
func Repr(v any) string {
	var b strings.Builder
	writeRepr(&b, v)
	return b.String()
}

// JSON renders the value in its JSON form.
func JSON(v any) string {
	var b strings.Builder
	writeJSON(&b, v)
	return b.String()
}

// =============================================================================

func writeRepr(b *strings.Builder, v any) {
	switch v := v.(type) {
	case string:
		b.WriteString(quoteRepr(v))

	case Fields:
		b.WriteByte('{')
		for i, f := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(quoteRepr(f.Name))
			b.WriteString(": ")
			writeRepr(b, f.Value)
		}
		b.WriteByte('}')

	case []Fields:
		b.WriteByte('[')
		for i, fs := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			writeRepr(b, fs)
		}
		b.WriteByte(']')

	case []*big.Int:
		if v == nil {
			b.WriteString("None")
			return
		}
		writeIntList(b, v)

	default:
		b.WriteString(Text(v))
	}
}

func writeJSON(b *strings.Builder, v any) {
	switch v := v.(type) {
	case nil:
		b.WriteString("null")

	case string:
		b.WriteString(quoteJSON(v))

	case float64:
		switch {
		case math.IsNaN(v):
			b.WriteString("NaN")
		case math.IsInf(v, 1):
			b.WriteString("Infinity")
		case math.IsInf(v, -1):
			b.WriteString("-Infinity")
		default:
			b.WriteString(FormatFloat(v))
		}

	case bool:
		if v {
			b.WriteString("true")
			return
		}
		b.WriteString("false")

	case *big.Int:
		if v == nil {
			b.WriteString("null")
			return
		}
		b.WriteString(v.String())

	case Fields:
		b.WriteByte('{')
		for i, f := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(quoteJSON(f.Name))
			b.WriteString(": ")
			writeJSON(b, f.Value)
		}
		b.WriteByte('}')

	case []Fields:
		b.WriteByte('[')
		for i, fs := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			writeJSON(b, fs)
		}
		b.WriteByte(']')

	case []*big.Int:
		if v == nil {
			b.WriteString("null")
			return
		}
		writeIntList(b, v)

	default:
		b.WriteString(Text(v))
	}
}

func writeIntList(b *strings.Builder, v []*big.Int) {
	b.WriteByte('[')
	for i, n := range v {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(Text(n))
	}
	b.WriteByte(']')
}

// integer renders any of the builtin integer kinds in base 10.
func integer(v any) (string, bool) {
	switch v := v.(type) {
	case int:
		return strconv.FormatInt(int64(v), 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	}

	return "", false
}

// quoteRepr quotes the string with single quotes, switching to double quotes
// when the string holds a single quote and no double quote.
func quoteRepr(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}

	var b strings.Builder
	b.WriteByte(quote)
	for _, r := range s {
		switch {
		case r == rune(quote) || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r < 0x20 || r == 0x7f || (r < 0x100 && !unicode.IsPrint(r)):
			fmt.Fprintf(&b, `\x%02x`, r)
		case !unicode.IsPrint(r) && r < 0x10000:
			fmt.Fprintf(&b, `\u%04x`, r)
		case !unicode.IsPrint(r):
			fmt.Fprintf(&b, `\U%08x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(quote)

	return b.String()
}

// quoteJSON quotes the string for JSON, escaping everything outside of
// printable ASCII.
func quoteJSON(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"':
			b.WriteString(`\"`)
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\b':
			b.WriteString(`\b`)
		case r == '\f':
			b.WriteString(`\f`)
		case r >= 0x20 && r <= 0x7e:
			b.WriteRune(r)
		case r > 0xffff:
			r1, r2 := utf16.EncodeRune(r)
			fmt.Fprintf(&b, `\u%04x\u%04x`, r1, r2)
		default:
			fmt.Fprintf(&b, `\u%04x`, r)
		}
	}
	b.WriteByte('"')

	return b.String()
}
