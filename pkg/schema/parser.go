package schema

import (
	"fmt"
	"strconv"
)

// ParseText parses the compact text-DSL form of a schema (see lexer.go's
// doc comment for an example). It is an alternative front-end to Parse
// (JSON); both produce the same Schema tree shape.
func ParseText(filename, input string) (Schema, error) {
	p := &Parser{lex: NewLexer(filename, input), named: make(map[string]*RecordSchema)}
	p.advance()
	s, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.tok.Type != TokenEOF {
		return nil, p.errorf("unexpected trailing token %s", p.tok)
	}
	return s, nil
}

// Parser is a recursive-descent parser over the text-DSL token stream.
type Parser struct {
	lex   *Lexer
	tok   Token
	named map[string]*RecordSchema
}

func (p *Parser) advance() { p.tok = p.lex.Next() }

func (p *Parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%s:%d:%d: %s", p.lex.filename, p.tok.Position.Line, p.tok.Position.Column, fmt.Sprintf(format, args...))
}

func (p *Parser) expect(t TokenType) (Token, error) {
	if p.tok.Type != t {
		return Token{}, p.errorf("expected %s, got %s", t, p.tok)
	}
	tok := p.tok
	p.advance()
	return tok, nil
}

// parseType parses a single type expression, including any @-annotations
// that precede it.
func (p *Parser) parseType() (Schema, error) {
	logical, err := p.parseAnnotation()
	if err != nil {
		return nil, err
	}

	switch p.tok.Type {
	case TokenIdent:
		return p.parseIdentType(logical)
	case TokenRecord:
		return p.parseRecord()
	case TokenEnum:
		return p.parseEnum()
	case TokenFixed:
		return p.parseFixed(logical)
	case TokenArray:
		return p.parseArray()
	case TokenMap:
		return p.parseMap()
	case TokenUnion:
		return p.parseUnion()
	default:
		return nil, p.errorf("expected a type, got %s", p.tok)
	}
}

// parseAnnotation parses zero or one @logicalType(...) prefix.
func (p *Parser) parseAnnotation() (*LogicalType, error) {
	if p.tok.Type != TokenAt {
		return nil, nil
	}
	p.advance()
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	switch name.Value {
	case "decimal":
		if _, err := p.expect(TokenLParen); err != nil {
			return nil, err
		}
		prec, err := p.parseIntLit()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenComma); err != nil {
			return nil, err
		}
		scale, err := p.parseIntLit()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return &LogicalType{Kind: LogicalDecimal, Precision: prec, Scale: scale}, nil
	case "duration":
		return &LogicalType{Kind: LogicalDuration}, nil
	case "timestampMillis":
		return &LogicalType{Kind: LogicalTimestampMillis}, nil
	case "timestampMicros":
		return &LogicalType{Kind: LogicalTimestampMicros}, nil
	case "uuid":
		return &LogicalType{Kind: LogicalUUID}, nil
	default:
		return nil, p.errorf("unknown annotation @%s", name.Value)
	}
}

func (p *Parser) parseIntLit() (int, error) {
	tok, err := p.expect(TokenInt)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok.Value)
	if err != nil {
		return 0, p.errorf("invalid integer %q", tok.Value)
	}
	return n, nil
}

// parseIdentType handles primitive keywords spelled as identifiers
// (null/boolean/int/long/float/double/bytes/string) and named record
// references.
func (p *Parser) parseIdentType(logical *LogicalType) (Schema, error) {
	name := p.tok.Value
	p.advance()

	switch name {
	case "null":
		return NewNull(), nil
	case "boolean":
		return NewBoolean(), nil
	case "int":
		return NewInt(), nil
	case "long":
		return NewLong(logical), nil
	case "float":
		return NewFloat(), nil
	case "double":
		return NewDouble(), nil
	case "bytes":
		return NewBytes(logical), nil
	case "string":
		return NewString(logical), nil
	}

	if rec, ok := p.named[name]; ok {
		return rec, nil
	}
	return nil, p.errorf("unknown type reference %q", name)
}

func (p *Parser) parseRecord() (Schema, error) {
	p.advance() // 'record'
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}

	rec := NewRecord(name.Value)
	p.named[name.Value] = rec // register before fields: enables self-reference

	if _, err := p.expect(TokenLBrace); err != nil {
		return nil, err
	}

	var fields []Field
	for p.tok.Type != TokenRBrace {
		fname, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenColon); err != nil {
			return nil, err
		}
		ftype, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenSemicolon); err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: fname.Value, Type: ftype})
	}
	p.advance() // '}'
	rec.SetFields(fields)
	return rec, nil
}

func (p *Parser) parseEnum() (Schema, error) {
	p.advance() // 'enum'
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLBrace); err != nil {
		return nil, err
	}
	var symbols []string
	for p.tok.Type != TokenRBrace {
		sym, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, sym.Value)
		if p.tok.Type == TokenComma {
			p.advance()
		}
	}
	p.advance() // '}'
	return NewEnum(name.Value, symbols), nil
}

func (p *Parser) parseFixed(logical *LogicalType) (Schema, error) {
	p.advance() // 'fixed'
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	size, err := p.parseIntLit()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return NewFixed(name.Value, size, logical), nil
}

func (p *Parser) parseArray() (Schema, error) {
	p.advance() // 'array'
	if _, err := p.expect(TokenLess); err != nil {
		return nil, err
	}
	item, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenGreater); err != nil {
		return nil, err
	}
	return NewArray(item), nil
}

func (p *Parser) parseMap() (Schema, error) {
	p.advance() // 'map'
	if _, err := p.expect(TokenLess); err != nil {
		return nil, err
	}
	val, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenGreater); err != nil {
		return nil, err
	}
	return NewMap(val), nil
}

func (p *Parser) parseUnion() (Schema, error) {
	p.advance() // 'union'
	if _, err := p.expect(TokenLBrace); err != nil {
		return nil, err
	}
	var branches []Schema
	for {
		b, err := p.parseType()
		if err != nil {
			return nil, err
		}
		branches = append(branches, b)
		if p.tok.Type == TokenComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokenRBrace); err != nil {
		return nil, err
	}
	return NewUnion(branches...), nil
}
