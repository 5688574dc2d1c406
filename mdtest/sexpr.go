package mdtest

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NodeType represents the type of a Node
type NodeType int

const (
	NodeSymbol NodeType = iota
	NodeString
	NodeInteger
	NodeList
)

// Node is an s-expression as written in sexpr assertions.
type Node struct {
	Type  NodeType
	Text  string  // NodeSymbol, NodeString, NodeInteger
	Items []*Node // NodeList
}

// String returns the canonical form of the node: single spaces between list
// items and Go-quoted strings. Two nodes are equal when their canonical forms
// are.
func (n *Node) String() string {
	switch n.Type {
	case NodeSymbol, NodeInteger:
		return n.Text
	case NodeString:
		return strconv.Quote(n.Text)
	case NodeList:
		parts := make([]string, len(n.Items))
		for i, item := range n.Items {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return fmt.Sprintf("UNKNOWN_NODE_TYPE_%d", n.Type)
	}
}

type sexprParser struct {
	lexer        *sexprLexer
	currentToken sexprToken
}

// ParseSExpr parses a single s-expression.
func ParseSExpr(input string) (*Node, error) {
	p := &sexprParser{lexer: &sexprLexer{input: input}}
	p.nextToken()

	result, err := p.parseDatum()
	if err != nil {
		return nil, err
	}
	if p.currentToken.Type != tokenEOF {
		return nil, fmt.Errorf("expected EOF but got %s at offset %d", p.currentToken.Type, p.currentToken.Position)
	}
	return result, nil
}

func (p *sexprParser) nextToken() {
	p.currentToken = p.lexer.nextToken()
}

func (p *sexprParser) parseDatum() (*Node, error) {
	tok := p.currentToken
	switch tok.Type {
	case tokenSymbol:
		p.nextToken()
		return &Node{Type: NodeSymbol, Text: tok.Value}, nil
	case tokenString:
		p.nextToken()
		return &Node{Type: NodeString, Text: tok.Value}, nil
	case tokenInteger:
		p.nextToken()
		return &Node{Type: NodeInteger, Text: tok.Value}, nil
	case tokenLParen:
		return p.parseList()
	case tokenError:
		return nil, fmt.Errorf("%s at offset %d", tok.Value, tok.Position)
	default:
		return nil, fmt.Errorf("unexpected token: %s at offset %d", tok.Type, tok.Position)
	}
}

func (p *sexprParser) parseList() (*Node, error) {
	list := &Node{Type: NodeList}
	p.nextToken() // consume '('
	for p.currentToken.Type != tokenRParen {
		if p.currentToken.Type == tokenEOF {
			return nil, fmt.Errorf("expected ')' but got EOF")
		}
		item, err := p.parseDatum()
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
	}
	p.nextToken() // consume ')'
	return list, nil
}

type sexprTokenType int

const (
	tokenEOF sexprTokenType = iota
	tokenSymbol
	tokenString
	tokenInteger
	tokenLParen
	tokenRParen
	tokenError
)

func (t sexprTokenType) String() string {
	switch t {
	case tokenEOF:
		return "EOF"
	case tokenSymbol:
		return "symbol"
	case tokenString:
		return "string"
	case tokenInteger:
		return "integer"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenError:
		return "error"
	default:
		return fmt.Sprintf("unknown token %d", int(t))
	}
}

type sexprToken struct {
	Type     sexprTokenType
	Value    string
	Position int
}

type sexprLexer struct {
	input    string
	position int
}

func (l *sexprLexer) peek() rune {
	if l.position >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.position:])
	return r
}

func (l *sexprLexer) advance() {
	_, size := utf8.DecodeRuneInString(l.input[l.position:])
	l.position += size
}

func (l *sexprLexer) nextToken() sexprToken {
	for {
		for unicode.IsSpace(l.peek()) {
			l.advance()
		}
		if l.peek() != ';' {
			break
		}
		for l.peek() != '\n' && l.peek() != 0 {
			l.advance()
		}
	}

	pos := l.position
	switch c := l.peek(); {
	case c == 0:
		return sexprToken{Type: tokenEOF, Position: pos}
	case c == '(':
		l.advance()
		return sexprToken{Type: tokenLParen, Value: "(", Position: pos}
	case c == ')':
		l.advance()
		return sexprToken{Type: tokenRParen, Value: ")", Position: pos}
	case c == '"':
		return l.readString()
	case unicode.IsDigit(c) || c == '-' && pos+1 < len(l.input) && unicode.IsDigit(rune(l.input[pos+1])):
		l.advance()
		for unicode.IsDigit(l.peek()) {
			l.advance()
		}
		return sexprToken{Type: tokenInteger, Value: l.input[pos:l.position], Position: pos}
	case isSymbolChar(c):
		for isSymbolChar(l.peek()) {
			l.advance()
		}
		return sexprToken{Type: tokenSymbol, Value: l.input[pos:l.position], Position: pos}
	default:
		return sexprToken{Type: tokenError, Value: fmt.Sprintf("unexpected character '%c'", c), Position: pos}
	}
}

// readString reads a Go-quoted string, the form ToSExpr writes.
func (l *sexprLexer) readString() sexprToken {
	pos := l.position
	l.advance() // skip opening quote
	for {
		switch l.peek() {
		case 0:
			return sexprToken{Type: tokenError, Value: "unterminated string", Position: pos}
		case '\\':
			l.advance()
			l.advance()
			continue
		case '"':
			l.advance()
			s, err := strconv.Unquote(l.input[pos:l.position])
			if err != nil {
				return sexprToken{Type: tokenError, Value: "invalid string: " + err.Error(), Position: pos}
			}
			return sexprToken{Type: tokenString, Value: s, Position: pos}
		}
		l.advance()
	}
}

func isSymbolChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
}
