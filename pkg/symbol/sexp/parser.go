package sexp

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenLeftParen
	tokenRightParen
	tokenAtom
)

type token struct {
	typ   tokenType
	value string
}

type parser struct {
	reader *bufio.Reader
}

func newParser(r io.Reader) *parser {
	return &parser{reader: bufio.NewReader(r)}
}

func (p *parser) parseAll() ([]Node, error) {
	var result []Node
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch tok.typ {
		case tokenEOF:
			return result, nil
		case tokenLeftParen:
			list, err := p.parseList()
			if err != nil {
				return nil, err
			}
			result = append(result, list)
		case tokenAtom:
			result = append(result, Atom(tok.value))
		case tokenRightParen:
			return nil, fmt.Errorf("unexpected ')'")
		}
	}
}

// parseList consumes nodes until the matching ')'. The '(' has already
// been read.
func (p *parser) parseList() (*List, error) {
	list := &List{}
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch tok.typ {
		case tokenRightParen:
			return list, nil
		case tokenEOF:
			return nil, fmt.Errorf("unexpected EOF in list")
		case tokenLeftParen:
			sub, err := p.parseList()
			if err != nil {
				return nil, err
			}
			list.items = append(list.items, sub)
		case tokenAtom:
			list.items = append(list.items, Atom(tok.value))
		}
	}
}

func (p *parser) next() (token, error) {
	// Skip whitespace and line comments.
	for {
		ch, _, err := p.reader.ReadRune()
		if err == io.EOF {
			return token{typ: tokenEOF}, nil
		}
		if err != nil {
			return token{}, err
		}

		if unicode.IsSpace(ch) {
			continue
		}
		if ch == ';' || ch == '#' {
			if _, err := p.reader.ReadString('\n'); err != nil && err != io.EOF {
				return token{}, err
			}
			continue
		}

		switch ch {
		case '(':
			return token{typ: tokenLeftParen, value: "("}, nil
		case ')':
			return token{typ: tokenRightParen, value: ")"}, nil
		case '"':
			return p.readString()
		default:
			return p.readBareAtom(ch)
		}
	}
}

// readString reads a quoted string. The opening quote has been
// consumed. Backslash escapes the next rune.
func (p *parser) readString() (token, error) {
	var b strings.Builder
	for {
		ch, _, err := p.reader.ReadRune()
		if err == io.EOF {
			return token{}, fmt.Errorf("unterminated string")
		}
		if err != nil {
			return token{}, err
		}
		switch ch {
		case '"':
			return token{typ: tokenAtom, value: b.String()}, nil
		case '\\':
			next, _, err := p.reader.ReadRune()
			if err != nil {
				return token{}, fmt.Errorf("unterminated escape in string")
			}
			switch next {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			default:
				b.WriteRune(next)
			}
		default:
			b.WriteRune(ch)
		}
	}
}

func (p *parser) readBareAtom(first rune) (token, error) {
	var b strings.Builder
	b.WriteRune(first)
	for {
		ch, _, err := p.reader.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return token{}, err
		}
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' {
			if err := p.reader.UnreadRune(); err != nil {
				return token{}, err
			}
			break
		}
		b.WriteRune(ch)
	}
	return token{typ: tokenAtom, value: b.String()}, nil
}
