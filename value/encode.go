package value

import (
	"math"
	"strconv"
	"strings"
)

// Encode returns the text persisted for v. Top-level strings are stored
// as-is; strings nested inside containers are written as quoted literals.
func Encode(v Value) string {
	if v.kind == KindString {
		return v.s
	}
	var sb strings.Builder
	writeLiteral(&sb, v)
	return sb.String()
}

// Normalize decodes string values so that "5" and Int(5) store the same.
// Non-string values are returned unchanged.
func Normalize(v Value) Value {
	if v.kind != KindString {
		return v
	}
	return Decode(v.s)
}

// Canonical returns the value that decoding v's stored text yields, so
// Decode(Encode(Canonical(v))) equals Canonical(v). NaN turns into the
// string "nan" and quoted strings such as "'5'" lose one quote layer per
// pass; each pass shrinks the text, so the loop ends.
func Canonical(v Value) Value {
	v = Normalize(v)
	for {
		d := Decode(Encode(v))
		if d.Equal(v) {
			return v
		}
		v = d
	}
}

func writeLiteral(sb *strings.Builder, v Value) {
	switch v.kind {
	case KindNone:
		sb.WriteString("None")
	case KindString:
		writeQuoted(sb, v.s)
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		sb.WriteString(formatFloat(v.f))
	case KindBool:
		if v.b {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
	case KindList:
		sb.WriteByte('[')
		for i, it := range v.items {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeLiteral(sb, it)
		}
		sb.WriteByte(']')
	case KindMap:
		sb.WriteByte('{')
		for i, p := range v.pairs {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeLiteral(sb, p.Key)
			sb.WriteString(": ")
			writeLiteral(sb, p.Value)
		}
		sb.WriteByte('}')
	}
}

// formatFloat renders the shortest repr: positional between 1e-4 and 1e16,
// exponent form otherwise, always distinguishable from an int. Infinities
// are written as an overflowing literal so they decode back to floats.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "1e999"
	case math.IsInf(f, -1):
		return "-1e999"
	case math.IsNaN(f):
		return "nan"
	}
	if f == 0 {
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	e := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return e
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

func writeQuoted(sb *strings.Builder, s string) {
	q := byte('\'')
	if strings.IndexByte(s, '\'') >= 0 && strings.IndexByte(s, '"') < 0 {
		q = '"'
	}
	sb.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			sb.WriteString(`\\`)
		case r == rune(q):
			sb.WriteByte('\\')
			sb.WriteByte(q)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			sb.WriteString(`\x`)
			sb.WriteString(hex2(byte(r)))
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte(q)
}

func hex2(b byte) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0xf]})
}
