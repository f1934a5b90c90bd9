// Package parser implements the engine's parser (spec §4.2): a shunting-yard
// style expression builder plus a tag/block stack machine, consuming
// token.Stream events and producing an ast.Node tree. Grounded on the
// teacher's parser.Parser state-machine shape
// (github.com/deicod/gojinja/parser/{core,parser,statements}.go), adapted
// from Jinja's fixed-grammar recursive descent to the spec's dynamic
// tag/operator/filter registry lookups against a liquidctx.Context.
package parser

import (
	"fmt"

	"github.com/natanfelles/liquidgo/ast"
	"github.com/natanfelles/liquidgo/liquidctx"
	"github.com/natanfelles/liquidgo/liquiderr"
	"github.com/natanfelles/liquidgo/token"
	"github.com/natanfelles/liquidgo/variant"
)

// frame tracks one open TAG_ENCLOSED block while its body is being parsed
// (spec §4.6 "block parse state").
type frame struct {
	tagName string
	tagType *ast.NodeType
	node    *ast.Node // the TAG_ENCLOSED node; Children are (args, body) pairs, one per clause
	body    *ast.Node // the CONCATENATION currently collecting this clause's content
}

type parser struct {
	ctx          *liquidctx.Context
	stream       *token.Stream
	errors       []error
	depth        int
	maxDepth     int
	extendedExpr bool
}

// Parse tokenizes and parses source against ctx, returning the root
// CONCATENATION node and any accumulated parser errors. Lexer errors, the
// two unrecoverable parser errors (UNEXPECTED_END, UNBALANCED_GROUP) and
// exceeding MaximumParseDepth terminate parsing immediately (spec §7);
// every other parser error accumulates and parsing continues, per spec
// §7's recoverable-error framing.
func Parse(ctx *liquidctx.Context, source string) (*ast.Node, []error) {
	cfg := token.DefaultConfig()
	cfg.Operators = ctx.OperatorSymbols()
	toks, lexErr := token.New(cfg).Lex(source)
	if lexErr != nil {
		return nil, []error{lexErr}
	}

	maxDepth := ctx.MaximumParseDepth
	if maxDepth <= 0 {
		maxDepth = 100
	}
	p := &parser{
		ctx:          ctx,
		stream:       token.NewStream(toks),
		maxDepth:     maxDepth,
		extendedExpr: ctx.Settings().Has(liquidctx.SettingExtendedExpressionSyntax),
	}

	root := ast.NewInternal(ast.Concatenation, token.Position{Row: 1, Column: 1})
	stack := []*frame{{body: root}}

	for !p.stream.Eof() {
		tok := p.stream.Peek()
		switch tok.Type {
		case token.Literal:
			p.stream.Next()
			top := stack[len(stack)-1]
			top.body.AppendChild(ast.NewLeaf(variant.NewString(tok.Value), tok.Pos))

		case token.StartOutputBlock:
			p.stream.Next()
			node, err := p.parseOutputBlock(tok.Pos)
			if err != nil {
				p.errors = append(p.errors, err)
				if isUnrecoverable(err) {
					return root, p.errors
				}
				continue
			}
			top := stack[len(stack)-1]
			top.body.AppendChild(node)

		case token.StartControlBlock:
			p.stream.Next()
			var fatal bool
			stack, fatal = p.parseControlBlock(stack, tok.Pos)
			if fatal {
				return root, p.errors
			}

		default:
			// Defensive: should not occur outside a block boundary.
			p.stream.Next()
		}
	}

	if len(stack) > 1 {
		top := stack[len(stack)-1]
		p.errors = append(p.errors, liquiderr.New(liquiderr.KindUnexpectedEnd, 0, 0,
			fmt.Sprintf("unexpected end of template: unclosed tag %q", top.tagName)))
	}

	return root, p.errors
}

func isUnrecoverable(err error) bool {
	e, ok := err.(*liquiderr.Error)
	if !ok {
		return false
	}
	switch e.Kind {
	case liquiderr.KindUnexpectedEnd, liquiderr.KindUnbalancedGroup:
		return true
	default:
		return false
	}
}

// parseOutputBlock parses `{{ expr [| filter: args ...] }}` into an OUTPUT
// node wrapping one ARGUMENTS child holding exactly one expression child
// (spec §3 invariant).
func (p *parser) parseOutputBlock(pos token.Position) (*ast.Node, error) {
	expr, err := p.parseFilterChain(p.extendedExpr)
	if err != nil {
		return nil, err
	}
	tok := p.stream.Next()
	if tok.Type != token.EndOutputBlock {
		return nil, liquiderr.New(liquiderr.KindInvalidSymbol, tok.Pos.Row, tok.Pos.Column,
			fmt.Sprintf("expected '}}', got %s", tok.Type))
	}
	args := ast.NewInternal(ast.Arguments, pos, expr)
	return ast.NewInternal(ast.Output, pos, args), nil
}

// parseControlBlock parses `{% name ... %}`: an intermediate clause keyword,
// a matching `end<name>`, a free tag, or the opener of an enclosing tag. It
// returns the updated frame stack and whether a fatal (unrecoverable) error
// occurred.
func (p *parser) parseControlBlock(stack []*frame, pos token.Position) ([]*frame, bool) {
	nameTok := p.stream.Peek()
	if nameTok.Type != token.Identifier {
		p.errors = append(p.errors, liquiderr.New(liquiderr.KindInvalidSymbol, nameTok.Pos.Row, nameTok.Pos.Column,
			"expected a tag name"))
		p.skipToBlockEnd()
		return stack, false
	}
	p.stream.Next()
	name := nameTok.Value
	top := stack[len(stack)-1]

	// Matching end-tag for the innermost open block.
	if top.tagType != nil && name == "end"+top.tagName {
		p.expectEndControl()
		stack = stack[:len(stack)-1]
		parent := stack[len(stack)-1]
		parent.body.AppendChild(top.node)
		p.depth--
		return stack, false
	}

	// Intermediate clause of the innermost open block (e.g. "elsif"/"else").
	// A TAG_ENCLOSED node's Children are (args, body) pairs -- one pair per
	// clause, including the primary one -- so a clause like "elsif" can
	// carry its own condition alongside its body.
	if top.tagType != nil {
		if clauseType, ok := top.tagType.Intermediates[name]; ok {
			args, err := p.parseArguments(stopAtBlockEnd)
			if err != nil {
				p.errors = append(p.errors, err)
				if isUnrecoverable(err) {
					return stack, true
				}
			}
			if argErr := checkArgumentCount(clauseType, args, pos); argErr != nil {
				p.errors = append(p.errors, argErr)
			}
			p.expectEndControl()
			newBody := ast.NewInternal(ast.Concatenation, pos)
			top.node.AppendChild(args)
			top.node.AppendChild(newBody)
			top.body = newBody
			return stack, false
		}
	}

	tagType, ok := p.ctx.LookupTag(name)
	if !ok {
		if len(name) > 3 && name[:3] == "end" {
			p.errors = append(p.errors, liquiderr.New(liquiderr.KindUnexpectedEnd, pos.Row, pos.Column,
				fmt.Sprintf("unexpected end tag %q: no matching open tag", name)))
			return stack, true
		} else {
			p.errors = append(p.errors, liquiderr.New(liquiderr.KindUnknownTag, pos.Row, pos.Column,
				fmt.Sprintf("unknown tag %q", name)))
		}
		p.skipToBlockEnd()
		return stack, false
	}

	args, err := p.parseArguments(stopAtBlockEnd)
	if err != nil {
		p.errors = append(p.errors, err)
		if isUnrecoverable(err) {
			return stack, true
		}
	}
	if argErr := checkArgumentCount(tagType, args, pos); argErr != nil {
		p.errors = append(p.errors, argErr)
	}
	p.expectEndControl()

	switch tagType.Kind {
	case ast.KindTagFree:
		node := ast.NewInternal(tagType, pos, args)
		top.body.AppendChild(node)
		return stack, false

	case ast.KindTagEnclosed:
		p.depth++
		if p.depth > p.maxDepth {
			p.errors = append(p.errors, liquiderr.New(liquiderr.KindExceededParseDepth, pos.Row, pos.Column,
				"maximum parse depth exceeded"))
			p.depth--
			return stack, true
		}
		body := ast.NewInternal(ast.Concatenation, pos)
		node := ast.NewInternal(tagType, pos, args, body)
		stack = append(stack, &frame{tagName: name, tagType: tagType, node: node, body: body})
		return stack, false

	default:
		p.errors = append(p.errors, liquiderr.New(liquiderr.KindUnknownTag, pos.Row, pos.Column,
			fmt.Sprintf("tag %q has an invalid registered kind", name)))
		return stack, false
	}
}

func (p *parser) expectEndControl() {
	tok := p.stream.Peek()
	if tok.Type == token.EndControlBlock {
		p.stream.Next()
		return
	}
	p.skipToBlockEnd()
}

func (p *parser) skipToBlockEnd() {
	for {
		tok := p.stream.Next()
		if tok.Type == token.EndControlBlock || tok.Type == token.EOF {
			return
		}
	}
}

func checkArgumentCount(tagType *ast.NodeType, args *ast.Node, pos token.Position) error {
	n := len(args.Children)
	if tagType.MinArguments >= 0 && n < tagType.MinArguments {
		return liquiderr.New(liquiderr.KindArgumentCount, pos.Row, pos.Column,
			fmt.Sprintf("%q requires at least %d argument(s), got %d", tagType.Symbol, tagType.MinArguments, n))
	}
	if tagType.MaxArguments >= 0 && n > tagType.MaxArguments {
		return liquiderr.New(liquiderr.KindArgumentCount, pos.Row, pos.Column,
			fmt.Sprintf("%q accepts at most %d argument(s), got %d", tagType.Symbol, tagType.MaxArguments, n))
	}
	return nil
}
