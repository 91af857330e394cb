package xank

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"fortio.org/log"
)

// lexer scans atoms from an expression. Each recognizer either produces an
// atom and advances the cursor, or leaves the cursor where it was.
type lexer struct {
	ev  *Evaluator
	reg *Registry
	src string
	// pos is the byte offset of the cursor.
	pos int
}

func lex(ev *Evaluator, src string) *lexer {
	return &lexer{ev: ev, reg: ev.reg, src: src}
}

// next scans the next atom. prev is the atom scanned before, or nil at the
// start of the expression. The result is nil at the end of the input or if no
// recognizer accepts the text at the cursor; rest tells which.
func (l *lexer) next(prev *atom) *atom {
	l.pos = skipSpace(l.src, l.pos)
	if l.pos >= len(l.src) {
		return nil
	}
	if a := l.scanOperator(prev); a != nil {
		return a
	}
	if a := l.scanFunction(); a != nil {
		return a
	}
	if a := l.scanNumber(); a != nil {
		return a
	}
	if a := l.scanVariable(); a != nil {
		return a
	}
	return l.scanCommand()
}

// rest returns the unscanned input.
func (l *lexer) rest() string {
	return l.src[l.pos:]
}

// skipSpace returns the offset of the first non-space rune at or after pos.
func skipSpace(s string, pos int) int {
	for pos < len(s) {
		r, sz := utf8.DecodeRuneInString(s[pos:])
		if !unicode.IsSpace(r) {
			break
		}
		pos += sz
	}
	return pos
}

// completesOperand returns whether an atom ends an operand, so that a
// following left-associative operator has something to its left.
func completesOperand(prev *atom) bool {
	if prev == nil {
		return false
	}
	switch prev.kind {
	case atomInteger, atomFloat, atomVariable:
		return true
	case atomOperator:
		return prev.op.IsCloseParen()
	default:
		return false
	}
}

func (l *lexer) scanOperator(prev *atom) *atom {
	rest := l.rest()
	for i := range l.reg.ops {
		op := &l.reg.ops[i]
		if !strings.HasPrefix(rest, op.Name) {
			continue
		}
		// Binary - in "2-4" but not "-4", "(-4", or "2*-4".
		if op.Assoc == AssocLeft && !completesOperand(prev) {
			continue
		}
		a := l.ev.newAtom(atomOperator, l.pos)
		a.op = op
		l.pos += len(op.Name)
		log.LogVf("lex: operator %q (%d operands) at %d", op.Name, op.Params, a.pos)
		return a
	}
	return nil
}

// scanFunction recognizes a function name followed by an open parenthesis.
// The cursor stops on the parenthesis so that it scans as an operator.
func (l *lexer) scanFunction() *atom {
	rest := l.rest()
	open := l.reg.open.Name
	for i := range l.reg.fns {
		fn := &l.reg.fns[i]
		if !strings.HasPrefix(rest, fn.Name) {
			continue
		}
		end := skipSpace(l.src, l.pos+len(fn.Name))
		if !strings.HasPrefix(l.src[end:], open) {
			continue
		}
		a := l.ev.newAtom(atomFunction, l.pos)
		a.fn = fn
		l.pos = end
		log.LogVf("lex: function %s at %d", fn.Name, a.pos)
		return a
	}
	return nil
}

func (l *lexer) scanNumber() *atom {
	text, end, radix, float := scanLiteral(l.src, l.pos)
	if text == "" {
		return nil
	}
	n, ok := parseNumber(text, radix, float, l.ev.prec)
	if !ok {
		return nil
	}
	a := l.ev.newAtom(atomEmpty, l.pos)
	a.setNumber(n)
	l.pos = end
	log.LogVf("lex: %s %s (radix %d) at %d", n.Kind(), text, radix, a.pos)
	return a
}

// scanVariable is the extension point for variable references, which are not
// supported.
func (l *lexer) scanVariable() *atom {
	return nil
}

// scanCommand is the extension point for evaluator commands, which are not
// supported.
func (l *lexer) scanCommand() *atom {
	return nil
}

// scanLiteral scans a numeric literal starting at pos. The result text is
// the digits without any radix prefix, or empty if there is no valid literal.
//
//	binary   := ('b'|'B'|"0b"|"0B") ('0'|'1')+
//	octal    := '0' ('0'..'7')+
//	hex      := '0' ('x'|'X') hexdigit+
//	fallback := (digit | hexletter)* ['.' digit*]
//
// The fallback forms are decimal integers, hexadecimal integers without a
// prefix, and decimal floats. They apply only when no prefixed form matches
// any digits, so "078" is 07 followed by 8. No literal may be immediately
// followed by a letter: "2mb", "b10a" and "0x1fg" are not numbers.
func scanLiteral(src string, pos int) (text string, end, radix int, float bool) {
	if text, end, radix := scanPrefixed(src, pos); text != "" {
		if letterAt(src, end) {
			return "", pos, 0, false
		}
		return text, end, radix, false
	}

	end = pos
	radix = 10
scan:
	for ; end < len(src); end++ {
		c := src[end]
		switch {
		case '0' <= c && c <= '9':
		case c == '.':
			if float || radix == 16 {
				// "10.5.5" or "fa.5"
				return "", pos, 0, false
			}
			float = true
		case isHexDigit(c):
			if float {
				// ".af"
				return "", pos, 0, false
			}
			radix = 16
		default:
			break scan
		}
	}
	if end == pos || letterAt(src, end) {
		return "", pos, 0, false
	}
	return src[pos:end], end, radix, float
}

// scanPrefixed scans a binary, octal, or hexadecimal literal with its prefix.
func scanPrefixed(src string, pos int) (text string, end, radix int) {
	if pos >= len(src) {
		return "", pos, 0
	}
	switch src[pos] {
	case 'b', 'B':
		return scanDigits(src, pos+1, 2)
	case '0':
		if text, end, radix := scanDigits(src, pos+1, 8); text != "" {
			return text, end, radix
		}
		if pos+1 < len(src) {
			switch src[pos+1] {
			case 'x', 'X':
				return scanDigits(src, pos+2, 16)
			case 'b', 'B':
				return scanDigits(src, pos+2, 2)
			}
		}
	}
	return "", pos, 0
}

// scanDigits scans digits valid in radix starting at pos.
func scanDigits(src string, pos, radix int) (string, int, int) {
	end := pos
	for end < len(src) && digitValue(src[end]) < radix {
		end++
	}
	return src[pos:end], end, radix
}

// digitValue returns the value of a hexadecimal digit, or 99 if c is not one.
func digitValue(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'F':
		return int(c-'A') + 10
	default:
		return 99
	}
}

func isHexDigit(c byte) bool {
	return digitValue(c) < 16
}

// letterAt returns whether the rune at pos is a letter.
func letterAt(src string, pos int) bool {
	if pos >= len(src) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(src[pos:])
	return unicode.IsLetter(r)
}
