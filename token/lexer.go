package token

import (
	"sort"
	"strings"

	"github.com/natanfelles/liquidgo/liquiderr"
)

// Config controls delimiter choice, matching the teacher's LexerConfig.
type Config struct {
	OutputStart   string
	OutputEnd     string
	ControlStart  string
	ControlEnd    string
	// Operators is consulted by longest-match for multi-character operator
	// symbols (spec §4.1: "operator symbols drawn from the context's
	// registered operator symbols by longest-match"). Sorted internally.
	Operators []string
}

// DefaultConfig returns the standard Liquid delimiters.
func DefaultConfig() Config {
	return Config{
		OutputStart:  "{{",
		OutputEnd:    "}}",
		ControlStart: "{%",
		ControlEnd:   "%}",
	}
}

type mode int

const (
	modeText mode = iota
	modeCode
)

type blockKind int

const (
	blockNone blockKind = iota
	blockOutput
	blockControl
)

// Lexer is the two-mode FSM described in spec §4.1.
type Lexer struct {
	cfg       Config
	operators []string // sorted longest-first for greedy matching
}

// suspendedBodyTags names the control tags whose body text must never be
// tokenized as template syntax: `raw` passes its body through verbatim,
// `comment` discards arbitrary content that may not even be valid template
// syntax. Both require the lexer itself to scan ahead for the literal
// matching end tag, since by the time a TAG_ENCLOSED body reaches the
// parser/renderer its content has already been tokenized (spec §4.1's
// stream is fully materialized up front, not reparsed).
var suspendedBodyTags = map[string]string{
	"raw":     "endraw",
	"comment": "endcomment",
}

// New builds a Lexer for the given configuration.
func New(cfg Config) *Lexer {
	ops := append([]string(nil), cfg.Operators...)
	sort.Slice(ops, func(i, j int) bool { return len(ops[i]) > len(ops[j]) })
	return &Lexer{cfg: cfg, operators: ops}
}

// Lex tokenizes the full source buffer. It returns as many tokens as were
// produced even on error, so a caller doing error recovery still has
// something to inspect.
func (l *Lexer) Lex(src string) ([]Token, error) {
	s := &scanner{src: src, row: 1, column: 1, lex: l}
	toks, err := s.run()
	applyWhitespaceControl(toks)
	return toks, err
}

type scanner struct {
	src     string
	pos     int
	row     int
	column  int
	lex     *Lexer
	mode    mode
	block   blockKind
	pending *Token

	// tagNameCandidate holds the identifier immediately following the most
	// recent StartControlBlock, so the EndControlBlock handler can tell
	// whether the block just closed was a suspended-body opener ("raw",
	// "comment").
	tagNameCandidate string
}

func (s *scanner) errPos() Position { return Position{Row: s.row, Column: s.column} }

func (s *scanner) peekByte() byte {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) peekAt(n int) byte {
	if s.pos+n >= len(s.src) {
		return 0
	}
	return s.src[s.pos+n]
}

func (s *scanner) advance() byte {
	c := s.src[s.pos]
	s.pos++
	if c == '\n' {
		s.row++
		s.column = 1
	} else {
		s.column++
	}
	return c
}

func (s *scanner) hasPrefix(p string) bool {
	return strings.HasPrefix(s.src[s.pos:], p)
}

func (s *scanner) run() ([]Token, error) {
	var toks []Token
	for s.pos < len(s.src) {
		switch s.mode {
		case modeText:
			tok, consumed := s.scanText()
			if consumed {
				toks = append(toks, tok)
			}
		case modeCode:
			tok, err := s.scanCode()
			if err != nil {
				return toks, err
			}
			if tok.Type == Identifier && len(toks) > 0 && toks[len(toks)-1].Type == StartControlBlock {
				s.tagNameCandidate = tok.Value
			}
			if tok.Type == EndOutputBlock || tok.Type == EndControlBlock {
				toks = append(toks, tok)
				s.mode = modeText
				s.block = blockNone
				opener := s.tagNameCandidate
				s.tagNameCandidate = ""
				if tok.Type == EndControlBlock {
					if endName, ok := suspendedBodyTags[opener]; ok {
						suspended, err := s.scanSuspendedBody(endName)
						if err != nil {
							return toks, err
						}
						toks = append(toks, suspended...)
					}
				}
				continue
			}
			toks = append(toks, tok)
		}
	}
	if s.mode == modeCode {
		return toks, liquiderr.New(liquiderr.KindUnexpectedEnd, s.row, s.column,
			"unexpected end of template: unterminated block")
	}
	return toks, nil
}

// scanText consumes raw characters up to the next block/output delimiter and
// emits it as a single Literal token. Returns consumed=false for a pure mode
// switch with nothing buffered (start of file).
func (s *scanner) scanText() (Token, bool) {
	start := s.pos
	startPos := s.errPos()
	for s.pos < len(s.src) {
		if s.hasPrefix(s.lex.cfg.OutputStart) || s.hasPrefix(s.lex.cfg.ControlStart) {
			break
		}
		s.advance()
	}
	text := s.src[start:s.pos]

	if s.pos < len(s.src) {
		trimLeft := false
		var startLen int
		var kind blockKind
		if s.hasPrefix(s.lex.cfg.OutputStart) {
			startLen = len(s.lex.cfg.OutputStart)
			kind = blockOutput
		} else {
			startLen = len(s.lex.cfg.ControlStart)
			kind = blockControl
		}
		if s.peekAt(startLen) == '-' {
			trimLeft = true
			startLen++
		}
		for i := 0; i < startLen; i++ {
			s.advance()
		}
		s.mode = modeCode
		s.block = kind
		tt := StartControlBlock
		if kind == blockOutput {
			tt = StartOutputBlock
		}
		marker := Token{Type: tt, Pos: s.errPos(), TrimLeft: trimLeft}
		// Stash the marker for the next scanCode call, which returns it
		// before anything else; the literal (if any) is emitted first.
		s.pending = &marker
		if text == "" {
			return Token{}, false
		}
		return Token{Type: Literal, Value: text, Pos: startPos}, true
	}

	if text == "" {
		return Token{}, false
	}
	return Token{Type: Literal, Value: text, Pos: startPos}, true
}

func (s *scanner) scanCode() (Token, error) {
	if s.pending != nil {
		t := *s.pending
		s.pending = nil
		return t, nil
	}
	s.skipCodeWhitespace()

	end := s.lex.cfg.OutputEnd
	if s.block == blockControl {
		end = s.lex.cfg.ControlEnd
	}
	trimBefore := s.peekByte() == '-' && strings.HasPrefix(s.src[s.pos+1:], end)
	if trimBefore {
		s.advance() // consume '-'
	}
	if s.hasPrefix(end) {
		pos := s.errPos()
		for range end {
			s.advance()
		}
		tt := EndOutputBlock
		if s.block == blockControl {
			tt = EndControlBlock
		}
		return Token{Type: tt, Pos: pos, Trim: trimBefore}, nil
	}

	pos := s.errPos()
	c := s.peekByte()
	switch {
	case c == 0:
		return Token{}, liquiderr.New(liquiderr.KindUnexpectedEnd, s.row, s.column, "unexpected end inside block")
	case c == '.':
		s.advance()
		return Token{Type: Dot, Value: ".", Pos: pos}, nil
	case c == ',':
		s.advance()
		return Token{Type: Comma, Value: ",", Pos: pos}, nil
	case c == ':':
		s.advance()
		return Token{Type: Colon, Value: ":", Pos: pos}, nil
	case c == '(':
		s.advance()
		return Token{Type: OpenParen, Value: "(", Pos: pos}, nil
	case c == ')':
		s.advance()
		return Token{Type: CloseParen, Value: ")", Pos: pos}, nil
	case c == '[':
		s.advance()
		return Token{Type: OpenBracket, Value: "[", Pos: pos}, nil
	case c == ']':
		s.advance()
		return Token{Type: CloseBracket, Value: "]", Pos: pos}, nil
	case c == '|':
		s.advance()
		return Token{Type: Pipe, Value: "|", Pos: pos}, nil
	case c == '\'' || c == '"':
		return s.scanString(pos)
	case isDigit(c):
		return s.scanNumber(pos)
	case isIdentStart(c):
		return s.scanIdentifier(pos)
	default:
		if op, ok := s.matchOperator(); ok {
			return Token{Type: Operator, Value: op, Pos: pos}, nil
		}
		s.advance()
		return Token{Type: Operator, Value: string(c), Pos: pos}, nil
	}
}

// scanSuspendedBody scans raw source text up to the literal control tag
// named endName (e.g. "endraw"), emitting the intervening text as a single
// Literal token (when non-empty) followed by the endName tag's own
// StartControlBlock/Identifier/EndControlBlock tokens, so the parser's
// normal end-tag matching in parseControlBlock needs no special case for
// suspended bodies. A '{%' that turns out not to introduce endName is
// treated as ordinary body text and the scan continues past it.
func (s *scanner) scanSuspendedBody(endName string) ([]Token, error) {
	start := s.pos
	startPos := s.errPos()
	for {
		if s.pos >= len(s.src) {
			return nil, liquiderr.New(liquiderr.KindUnexpectedEnd, s.row, s.column,
				"unexpected end of template: unterminated '"+endName+"' block")
		}
		if s.hasPrefix(s.lex.cfg.ControlStart) {
			bodyEnd := s.pos
			saveRow, saveCol := s.row, s.column
			startLen := len(s.lex.cfg.ControlStart)
			trimLeft := false
			for i := 0; i < startLen; i++ {
				s.advance()
			}
			if s.peekByte() == '-' {
				trimLeft = true
				s.advance()
			}
			s.skipCodeWhitespace()
			if s.hasPrefix(endName) && !isIdentPart(s.peekAt(len(endName))) {
				openPos := Position{Row: saveRow, Column: saveCol}
				for i := 0; i < len(endName); i++ {
					s.advance()
				}
				s.skipCodeWhitespace()
				trimBefore := s.peekByte() == '-' && strings.HasPrefix(s.src[s.pos+1:], s.lex.cfg.ControlEnd)
				if trimBefore {
					s.advance()
				}
				if s.hasPrefix(s.lex.cfg.ControlEnd) {
					for range s.lex.cfg.ControlEnd {
						s.advance()
					}
					var out []Token
					if text := s.src[start:bodyEnd]; text != "" {
						out = append(out, Token{Type: Literal, Value: text, Pos: startPos})
					}
					out = append(out, Token{Type: StartControlBlock, Pos: openPos, TrimLeft: trimLeft})
					out = append(out, Token{Type: Identifier, Value: endName, Pos: openPos})
					out = append(out, Token{Type: EndControlBlock, Pos: openPos, Trim: trimBefore})
					return out, nil
				}
			}
			// Not actually the end tag: rewind and consume '{' as body text.
			s.pos, s.row, s.column = bodyEnd, saveRow, saveCol
		}
		s.advance()
	}
}

func (s *scanner) skipCodeWhitespace() {
	for s.pos < len(s.src) {
		c := s.peekByte()
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			s.advance()
			continue
		}
		break
	}
}

func (s *scanner) matchOperator() (string, bool) {
	for _, op := range s.lex.operators {
		if s.hasPrefix(op) {
			for range op {
				s.advance()
			}
			return op, true
		}
	}
	return "", false
}

func (s *scanner) scanString(pos Position) (Token, error) {
	quote := s.advance()
	var b strings.Builder
	for {
		if s.pos >= len(s.src) {
			return Token{}, liquiderr.New(liquiderr.KindUnexpectedEnd, s.row, s.column, "unterminated string literal")
		}
		c := s.peekByte()
		if c == quote {
			s.advance()
			break
		}
		if c == '\\' {
			s.advance()
			if s.pos >= len(s.src) {
				return Token{}, liquiderr.New(liquiderr.KindUnexpectedEnd, s.row, s.column, "unterminated string literal")
			}
			esc := s.advance()
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '\'', '"':
				b.WriteByte(esc)
			default:
				b.WriteByte(esc)
			}
			continue
		}
		b.WriteByte(s.advance())
	}
	return Token{Type: String, Value: b.String(), Pos: pos}, nil
}

func (s *scanner) scanNumber(pos Position) (Token, error) {
	start := s.pos
	isFloat := false
	for isDigit(s.peekByte()) {
		s.advance()
	}
	if s.peekByte() == '.' && isDigit(s.peekAt(1)) {
		isFloat = true
		s.advance()
		for isDigit(s.peekByte()) {
			s.advance()
		}
	}
	if s.peekByte() == 'e' || s.peekByte() == 'E' {
		la := 1
		if s.peekAt(1) == '+' || s.peekAt(1) == '-' {
			la = 2
		}
		if isDigit(s.peekAt(la)) {
			isFloat = true
			s.advance()
			if s.peekByte() == '+' || s.peekByte() == '-' {
				s.advance()
			}
			for isDigit(s.peekByte()) {
				s.advance()
			}
		}
	}
	val := s.src[start:s.pos]
	tt := Integer
	if isFloat {
		tt = Float
	}
	return Token{Type: tt, Value: val, Pos: pos}, nil
}

func (s *scanner) scanIdentifier(pos Position) (Token, error) {
	start := s.pos
	for isIdentPart(s.peekByte()) {
		s.advance()
	}
	return Token{Type: Identifier, Value: s.src[start:s.pos], Pos: pos}, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

// applyWhitespaceControl trims literal text adjacent to a "-}}"/"-%}" (trims
// leading whitespace of the following literal) or "{{-"/"{%-" (trims
// trailing whitespace of the preceding literal), per spec §4.1.
func applyWhitespaceControl(toks []Token) {
	for i, t := range toks {
		if t.Type == Literal {
			continue
		}
		if (t.Type == StartOutputBlock || t.Type == StartControlBlock) && t.TrimLeft {
			if i > 0 && toks[i-1].Type == Literal {
				toks[i-1].Value = strings.TrimRight(toks[i-1].Value, " \t\r\n")
			}
		}
		if (t.Type == EndOutputBlock || t.Type == EndControlBlock) && t.Trim {
			if i+1 < len(toks) && toks[i+1].Type == Literal {
				toks[i+1].Value = strings.TrimLeft(toks[i+1].Value, " \t\r\n")
			}
		}
	}
}
