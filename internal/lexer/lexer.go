// Package lexer scans Cool source text into a token stream.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sunholo/coolc/internal/ast"
	"github.com/sunholo/coolc/internal/diag"
	"github.com/sunholo/coolc/internal/token"
)

// Lexer scans one file's worth of (already-normalized) source.
type Lexer struct {
	file string
	src  []byte
	pos  int
	line int
	sink *diag.Sink
}

// New returns a Lexer over src, reporting errors to sink under the given
// filename. src is normalized (BOM stripped, NFC) before scanning.
func New(file string, src []byte, sink *diag.Sink) *Lexer {
	return &Lexer{file: file, src: Normalize(src), line: 1, sink: sink}
}

func (l *Lexer) pos_(line int) ast.Pos { return ast.Pos{File: l.file, Line: line} }

func (l *Lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
	}
	return c
}

// Next scans and returns the next token, or an EOF token at end of
// input.
func (l *Lexer) Next() token.Token {
	for {
		l.skipWhitespace()
		if l.pos >= len(l.src) {
			return token.Token{Kind: token.EOF, File: l.file, Line: l.line}
		}

		c := l.peek()
		line := l.line

		switch {
		case c == '-' && l.peekAt(1) == '-':
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.pos++
			}
			continue
		case c == '(' && l.peekAt(1) == '*':
			l.skipBlockComment()
			continue
		case c == '*' && l.peekAt(1) == ')':
			l.pos += 2
			return l.errorTok(line, "unmatched *)")
		case c == '"':
			return l.scanString(line)
		case isDigit(c):
			return l.scanInt(line)
		case c == '_' || unicode.IsUpper(rune(c)):
			return l.scanIdent(line, true)
		case unicode.IsLower(rune(c)):
			return l.scanIdent(line, false)
		default:
			return l.scanOperator(line)
		}
	}
}

func (l *Lexer) errorTok(line int, format string, args ...any) token.Token {
	l.sink.Errorf(l.pos_(line), format, args...)
	return token.Token{Kind: token.ERROR, File: l.file, Line: line}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) {
		switch l.peek() {
		case ' ', '\t', '\r', '\f', '\v':
			l.pos++
		case '\n':
			l.pos++
			l.line++
		default:
			return
		}
	}
}

func (l *Lexer) skipBlockComment() {
	startLine := l.line
	l.pos += 2
	depth := 1
	for depth > 0 {
		if l.pos >= len(l.src) {
			l.sink.Errorf(l.pos_(startLine), "EOF in comment")
			return
		}
		if l.peek() == '(' && l.peekAt(1) == '*' {
			depth++
			l.pos += 2
			continue
		}
		if l.peek() == '*' && l.peekAt(1) == ')' {
			depth--
			l.pos += 2
			continue
		}
		l.advance()
	}
}

func (l *Lexer) scanString(line int) token.Token {
	l.pos++ // opening quote
	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			l.sink.Errorf(l.pos_(line), "EOF in string constant")
			return token.Token{Kind: token.ERROR, File: l.file, Line: line}
		}
		c := l.peek()
		if c == '"' {
			l.pos++
			return token.Token{Kind: token.StrConst, Text: b.String(), File: l.file, Line: line}
		}
		if c == '\n' {
			l.sink.Errorf(l.pos_(line), "Unterminated string constant")
			l.pos++
			l.line++
			return token.Token{Kind: token.ERROR, File: l.file, Line: line}
		}
		if c == 0 {
			l.sink.Errorf(l.pos_(line), "String contains null character")
			l.pos++
			continue
		}
		if c == '\\' {
			l.pos++
			if l.pos >= len(l.src) {
				break
			}
			esc := l.advance()
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case '\n':
				b.WriteByte('\n')
			default:
				b.WriteByte(esc)
			}
			continue
		}
		b.WriteByte(c)
		l.pos++
	}
	return token.Token{Kind: token.ERROR, File: l.file, Line: line}
}

func (l *Lexer) scanInt(line int) token.Token {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.peek()) {
		l.pos++
	}
	return token.Token{Kind: token.IntConst, Text: string(l.src[start:l.pos]), File: l.file, Line: line}
}

func (l *Lexer) scanIdent(line int, upper bool) token.Token {
	start := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRune(l.src[l.pos:])
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			l.pos += size
			continue
		}
		break
	}
	text := string(l.src[start:l.pos])
	lower := strings.ToLower(text)

	if kind, ok := token.Lookup(lower); ok {
		return token.Token{Kind: kind, Text: text, File: l.file, Line: line}
	}
	if text == "true" || text == "false" {
		return token.Token{Kind: token.BoolConst, Text: text, File: l.file, Line: line}
	}
	if upper {
		return token.Token{Kind: token.TypeID, Text: text, File: l.file, Line: line}
	}
	return token.Token{Kind: token.ObjectID, Text: text, File: l.file, Line: line}
}

func (l *Lexer) scanOperator(line int) token.Token {
	c := l.advance()
	two := func(next byte, kind token.Kind, single token.Kind) token.Token {
		if l.peek() == next {
			l.pos++
			return token.Token{Kind: kind, File: l.file, Line: line}
		}
		return token.Token{Kind: single, File: l.file, Line: line}
	}
	switch c {
	case '{':
		return token.Token{Kind: token.LBrace, File: l.file, Line: line}
	case '}':
		return token.Token{Kind: token.RBrace, File: l.file, Line: line}
	case '(':
		return token.Token{Kind: token.LParen, File: l.file, Line: line}
	case ')':
		return token.Token{Kind: token.RParen, File: l.file, Line: line}
	case ':':
		return token.Token{Kind: token.Colon, File: l.file, Line: line}
	case ';':
		return token.Token{Kind: token.Semi, File: l.file, Line: line}
	case ',':
		return token.Token{Kind: token.Comma, File: l.file, Line: line}
	case '.':
		return token.Token{Kind: token.Dot, File: l.file, Line: line}
	case '@':
		return token.Token{Kind: token.At, File: l.file, Line: line}
	case '+':
		return token.Token{Kind: token.Plus, File: l.file, Line: line}
	case '-':
		return token.Token{Kind: token.Minus, File: l.file, Line: line}
	case '*':
		return token.Token{Kind: token.Star, File: l.file, Line: line}
	case '/':
		return token.Token{Kind: token.Slash, File: l.file, Line: line}
	case '~':
		return token.Token{Kind: token.Tilde, File: l.file, Line: line}
	case '=':
		return two('>', token.Darrow, token.Eq)
	case '<':
		if l.peek() == '-' {
			l.pos++
			return token.Token{Kind: token.Assign, File: l.file, Line: line}
		}
		return two('=', token.Leq, token.Lt)
	default:
		return l.errorTok(line, "invalid character: '%c'", c)
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
