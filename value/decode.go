package value

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

var errSyntax = errors.New("value: not a literal")

// Decode parses text as a literal. Anything that does not parse, including
// integers beyond int64, comes back as String(text) unchanged. The empty
// string decodes to the empty string.
func Decode(text string) Value {
	if text == "" {
		return String("")
	}
	v, err := Parse(text)
	if err != nil {
		return String(text)
	}
	return v
}

// Parse parses text as a literal and reports failures instead of falling
// back to a string.
func Parse(text string) (Value, error) {
	p := &parser{src: text}
	p.skipSpace()
	if p.eof() {
		return Value{}, errSyntax
	}
	v, err := p.parseExpr()
	if err != nil {
		return Value{}, err
	}
	p.skipSpace()
	// bare "1, 2" is a tuple
	if !p.eof() && p.peek() == ',' {
		items := []Value{v}
		for !p.eof() && p.peek() == ',' {
			p.pos++
			p.skipSpace()
			if p.eof() {
				break
			}
			it, err := p.parseExpr()
			if err != nil {
				return Value{}, err
			}
			items = append(items, it)
			p.skipSpace()
		}
		v = Value{kind: KindList, items: items}
	}
	if !p.eof() {
		return Value{}, errSyntax
	}
	return v, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool  { return p.pos >= len(p.src) }
func (p *parser) peek() byte { return p.src[p.pos] }

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) parseExpr() (Value, error) {
	if p.eof() {
		return Value{}, errSyntax
	}
	c := p.peek()
	if c == '-' || c == '+' {
		p.pos++
		p.skipSpace()
		if p.eof() || !(isDigit(p.peek()) || p.peek() == '.') {
			return Value{}, errSyntax
		}
		return p.parseNumber(c == '-')
	}
	return p.parseAtom()
}

func (p *parser) parseAtom() (Value, error) {
	c := p.peek()
	switch {
	case c == '[':
		p.pos++
		items, _, err := p.parseSeq(']')
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindList, items: items}, nil
	case c == '(':
		p.pos++
		items, trailingComma, err := p.parseSeq(')')
		if err != nil {
			return Value{}, err
		}
		if len(items) == 1 && !trailingComma {
			return items[0], nil
		}
		return Value{kind: KindList, items: items}, nil
	case c == '{':
		p.pos++
		return p.parseBrace()
	case isDigit(c) || c == '.':
		return p.parseNumber(false)
	case c == '\'' || c == '"':
		return p.parseStrings()
	case isIdentStart(c):
		return p.parseName()
	}
	return Value{}, errSyntax
}

// parseSeq reads comma separated expressions up to the closing byte.
func (p *parser) parseSeq(end byte) ([]Value, bool, error) {
	items := []Value{}
	trailing := false
	for {
		p.skipSpace()
		if p.eof() {
			return nil, false, errSyntax
		}
		if p.peek() == end {
			p.pos++
			return items, trailing, nil
		}
		v, err := p.parseExpr()
		if err != nil {
			return nil, false, err
		}
		items = append(items, v)
		trailing = false
		p.skipSpace()
		if p.eof() {
			return nil, false, errSyntax
		}
		switch p.peek() {
		case ',':
			p.pos++
			trailing = true
		case end:
		default:
			return nil, false, errSyntax
		}
	}
}

// parseBrace reads a dict or a set; {} is an empty dict.
func (p *parser) parseBrace() (Value, error) {
	p.skipSpace()
	if p.eof() {
		return Value{}, errSyntax
	}
	if p.peek() == '}' {
		p.pos++
		return Value{kind: KindMap, pairs: []Pair{}}, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return Value{}, err
	}
	p.skipSpace()
	if p.eof() {
		return Value{}, errSyntax
	}
	if p.peek() != ':' {
		// set literal; members must be hashable
		if !hashable(first) {
			return Value{}, errSyntax
		}
		items := []Value{first}
		for {
			p.skipSpace()
			if p.eof() {
				return Value{}, errSyntax
			}
			switch p.peek() {
			case '}':
				p.pos++
				return Value{kind: KindList, items: items}, nil
			case ',':
				p.pos++
				p.skipSpace()
				if !p.eof() && p.peek() == '}' {
					continue
				}
				it, err := p.parseExpr()
				if err != nil {
					return Value{}, err
				}
				if !hashable(it) {
					return Value{}, errSyntax
				}
				if !containsValue(items, it) {
					items = append(items, it)
				}
			default:
				return Value{}, errSyntax
			}
		}
	}

	var pairs []Pair
	key := first
	for {
		if !hashable(key) {
			return Value{}, errSyntax
		}
		p.skipSpace()
		if p.eof() || p.peek() != ':' {
			return Value{}, errSyntax
		}
		p.pos++
		p.skipSpace()
		val, err := p.parseExpr()
		if err != nil {
			return Value{}, err
		}
		pairs = setPair(pairs, Pair{Key: key, Value: val})
		p.skipSpace()
		if p.eof() {
			return Value{}, errSyntax
		}
		switch p.peek() {
		case '}':
			p.pos++
			return Value{kind: KindMap, pairs: pairs}, nil
		case ',':
			p.pos++
			p.skipSpace()
			if !p.eof() && p.peek() == '}' {
				p.pos++
				return Value{kind: KindMap, pairs: pairs}, nil
			}
			key, err = p.parseExpr()
			if err != nil {
				return Value{}, err
			}
		default:
			return Value{}, errSyntax
		}
	}
}

func hashable(v Value) bool {
	switch v.kind {
	case KindList, KindMap:
		return false
	}
	return true
}

func containsValue(vs []Value, v Value) bool {
	for _, e := range vs {
		if e.Equal(v) {
			return true
		}
	}
	return false
}

func (p *parser) parseName() (Value, error) {
	start := p.pos
	for !p.eof() && isIdentPart(p.peek()) {
		p.pos++
	}
	name := p.src[start:p.pos]
	if !p.eof() && (p.peek() == '\'' || p.peek() == '"') {
		switch name {
		case "r", "R", "u", "U":
			return p.parseStringsPrefixed(name)
		}
		return Value{}, errSyntax
	}
	switch name {
	case "True":
		return Bool(true), nil
	case "False":
		return Bool(false), nil
	case "None":
		return None(), nil
	}
	return Value{}, errSyntax
}

func (p *parser) parseNumber(neg bool) (Value, error) {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if isIdentPart(c) || c == '.' {
			p.pos++
			if (c == 'e' || c == 'E') && !p.eof() && (p.peek() == '+' || p.peek() == '-') && !isHexPrefixed(p.src[start:p.pos]) {
				p.pos++
			}
			continue
		}
		break
	}
	tok := p.src[start:p.pos]
	if isHexPrefixed(tok) || hasPrefixFold(tok, "0o") || hasPrefixFold(tok, "0b") {
		if !validUnderscores(tok[2:], true) {
			return Value{}, errSyntax
		}
		u, err := strconv.ParseInt(tok, 0, 64)
		if err != nil {
			return Value{}, errSyntax
		}
		if neg {
			u = -u
		}
		return Int(u), nil
	}
	if isDecimalInt(tok) {
		if !validUnderscores(tok, false) {
			return Value{}, errSyntax
		}
		digits := strings.ReplaceAll(tok, "_", "")
		if len(digits) > 1 && digits[0] == '0' && strings.Trim(digits, "0") != "" {
			return Value{}, errSyntax
		}
		if neg {
			digits = "-" + digits
		}
		i, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return Value{}, errSyntax
		}
		return Int(i), nil
	}
	if !isFloatToken(tok) || !validUnderscores(tok, false) {
		return Value{}, errSyntax
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(tok, "_", ""), 64)
	if err != nil {
		// ParseFloat returns ±Inf with ErrRange on overflow, matching 1e999
		var ne *strconv.NumError
		if !errors.As(err, &ne) || ne.Err != strconv.ErrRange {
			return Value{}, errSyntax
		}
	}
	if neg {
		f = -f
	}
	return Float(f), nil
}

func isHexPrefixed(s string) bool { return hasPrefixFold(s, "0x") }

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func isDecimalInt(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) && s[i] != '_' {
			return false
		}
	}
	return s != ""
}

// isFloatToken accepts digits, one dot, and one exponent with optional sign.
func isFloatToken(s string) bool {
	seenDot, seenExp, digits := false, false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isDigit(c):
			digits = true
		case c == '_':
		case c == '.':
			if seenDot || seenExp {
				return false
			}
			seenDot = true
		case c == 'e' || c == 'E':
			if seenExp || !digits {
				return false
			}
			seenExp = true
			if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
				i++
			}
			if i+1 >= len(s) {
				return false
			}
		default:
			return false
		}
	}
	return digits
}

// validUnderscores requires every '_' to sit between two digits. With
// prefixed set, the digit run may start with a single '_' (0x_ff).
func validUnderscores(s string, prefixed bool) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			continue
		}
		if i == 0 && prefixed && len(s) > 1 && isAlnum(s[1]) {
			continue
		}
		if i == 0 || i == len(s)-1 || !isAlnum(s[i-1]) || !isAlnum(s[i+1]) {
			return false
		}
	}
	return true
}

func (p *parser) parseStrings() (Value, error) {
	return p.parseStringsPrefixed("")
}

// parseStringsPrefixed reads one or more adjacent string literals and joins
// them.
func (p *parser) parseStringsPrefixed(prefix string) (Value, error) {
	var sb strings.Builder
	for {
		raw := prefix == "r" || prefix == "R"
		s, err := p.parseOneString(raw)
		if err != nil {
			return Value{}, err
		}
		sb.WriteString(s)

		save := p.pos
		p.skipSpace()
		if p.eof() {
			break
		}
		c := p.peek()
		if c == '\'' || c == '"' {
			prefix = ""
			continue
		}
		if c == 'r' || c == 'R' || c == 'u' || c == 'U' {
			if p.pos+1 < len(p.src) && (p.src[p.pos+1] == '\'' || p.src[p.pos+1] == '"') {
				prefix = string(c)
				p.pos++
				continue
			}
		}
		p.pos = save
		break
	}
	return String(sb.String()), nil
}

func (p *parser) parseOneString(raw bool) (string, error) {
	q := p.peek()
	triple := strings.HasPrefix(p.src[p.pos:], strings.Repeat(string(q), 3))
	if triple {
		p.pos += 3
	} else {
		p.pos++
	}
	var sb strings.Builder
	for {
		if p.eof() {
			return "", errSyntax
		}
		c := p.peek()
		if c == q {
			if !triple {
				p.pos++
				return sb.String(), nil
			}
			if strings.HasPrefix(p.src[p.pos:], strings.Repeat(string(q), 3)) {
				p.pos += 3
				return sb.String(), nil
			}
		}
		if c == '\n' && !triple {
			return "", errSyntax
		}
		if c == '\\' {
			if p.pos+1 >= len(p.src) {
				return "", errSyntax
			}
			if raw {
				sb.WriteByte('\\')
				sb.WriteByte(p.src[p.pos+1])
				p.pos += 2
				continue
			}
			if err := p.readEscape(&sb); err != nil {
				return "", err
			}
			continue
		}
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		sb.WriteRune(r)
		p.pos += size
	}
}

func (p *parser) readEscape(sb *strings.Builder) error {
	p.pos++ // backslash
	c := p.peek()
	p.pos++
	switch c {
	case '\n':
	case '\\', '\'', '"':
		sb.WriteByte(c)
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'a':
		sb.WriteByte('\a')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case 'x':
		return p.readHexRune(sb, 2)
	case 'u':
		return p.readHexRune(sb, 4)
	case 'U':
		return p.readHexRune(sb, 8)
	case '0', '1', '2', '3', '4', '5', '6', '7':
		n := int(c - '0')
		for i := 0; i < 2 && !p.eof() && p.peek() >= '0' && p.peek() <= '7'; i++ {
			n = n*8 + int(p.peek()-'0')
			p.pos++
		}
		sb.WriteRune(rune(n))
	case 'N':
		return errSyntax
	default:
		sb.WriteByte('\\')
		p.pos--
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		sb.WriteRune(r)
		p.pos += size
	}
	return nil
}

func (p *parser) readHexRune(sb *strings.Builder, n int) error {
	if p.pos+n > len(p.src) {
		return errSyntax
	}
	u, err := strconv.ParseUint(p.src[p.pos:p.pos+n], 16, 32)
	if err != nil || u > utf8.MaxRune {
		return errSyntax
	}
	sb.WriteRune(rune(u))
	p.pos += n
	return nil
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isAlnum(c byte) bool      { return isDigit(c) || (c|0x20 >= 'a' && c|0x20 <= 'z') }
func isIdentStart(c byte) bool { return c == '_' || (c|0x20 >= 'a' && c|0x20 <= 'z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }
