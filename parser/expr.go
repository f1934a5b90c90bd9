package parser

import (
	"fmt"
	"strconv"

	"github.com/natanfelles/liquidgo/ast"
	"github.com/natanfelles/liquidgo/liquiderr"
	"github.com/natanfelles/liquidgo/token"
	"github.com/natanfelles/liquidgo/variant"
)

type stopFunc func(token.Type) bool

func stopAtBlockEnd(t token.Type) bool { return t == token.EndControlBlock || t == token.EOF }

// parseArguments parses a comma-separated expression list (always full
// expression mode: spec §4.2 "filter arguments and tag arguments support
// full expressions") into an ARGUMENTS node.
func (p *parser) parseArguments(stop stopFunc) (*ast.Node, error) {
	pos := p.stream.Peek().Pos
	args := ast.NewInternal(ast.Arguments, pos)
	if stop(p.stream.Peek().Type) {
		return args, nil
	}
	for {
		expr, err := p.parseExpr(true, 0)
		if err != nil {
			return args, err
		}
		args.AppendChild(expr)
		if p.stream.Peek().Type == token.Comma {
			p.stream.Next()
			continue
		}
		break
	}
	return args, nil
}

// parseFilterChain parses one expression then any trailing `| name: args`
// applications (spec §4.2 "Filter chains").
func (p *parser) parseFilterChain(full bool) (*ast.Node, error) {
	expr, err := p.parseExpr(full, 0)
	if err != nil {
		return nil, err
	}
	for p.stream.Peek().Type == token.Pipe {
		pipeTok := p.stream.Next()
		nameTok := p.stream.Next()
		if nameTok.Type != token.Identifier {
			return nil, liquiderr.New(liquiderr.KindInvalidSymbol, nameTok.Pos.Row, nameTok.Pos.Column,
				"expected a filter name after '|'")
		}

		filterType, ok := p.ctx.LookupFilter(nameTok.Value)
		if !ok {
			unknown := liquiderr.New(liquiderr.KindUnknownFilter, nameTok.Pos.Row, nameTok.Pos.Column,
				fmt.Sprintf("unknown filter %q", nameTok.Value))
			if p.ctx.UnknownFilterIsError {
				return nil, unknown
			}
			p.errors = append(p.errors, unknown)
			if err := p.skipFilterArguments(); err != nil {
				return nil, err
			}
			continue
		}

		argsNode := ast.NewInternal(ast.Arguments, nameTok.Pos)
		if p.stream.Peek().Type == token.Colon {
			p.stream.Next()
			for {
				arg, err := p.parseExpr(true, 0)
				if err != nil {
					return nil, err
				}
				argsNode.AppendChild(arg)
				if p.stream.Peek().Type == token.Comma {
					p.stream.Next()
					continue
				}
				break
			}
		}
		if argErr := checkFilterArgCount(filterType, argsNode, pipeTok.Pos); argErr != nil {
			p.errors = append(p.errors, argErr)
		}
		expr = ast.NewInternal(filterType, pipeTok.Pos, expr, argsNode)
	}
	return expr, nil
}

// skipFilterArguments discards a demoted-to-warning unknown filter's
// argument list so parsing can resynchronize at the next '|'/'}}'.
func (p *parser) skipFilterArguments() error {
	if p.stream.Peek().Type != token.Colon {
		return nil
	}
	p.stream.Next()
	for {
		if _, err := p.parseExpr(true, 0); err != nil {
			return err
		}
		if p.stream.Peek().Type == token.Comma {
			p.stream.Next()
			continue
		}
		return nil
	}
}

func checkFilterArgCount(ft *ast.NodeType, args *ast.Node, pos token.Position) error {
	n := len(args.Children)
	if ft.MinArguments >= 0 && n < ft.MinArguments {
		return liquiderr.New(liquiderr.KindArgumentCount, pos.Row, pos.Column,
			fmt.Sprintf("%q requires at least %d argument(s), got %d", ft.Symbol, ft.MinArguments, n))
	}
	if ft.MaxArguments >= 0 && n > ft.MaxArguments {
		return liquiderr.New(liquiderr.KindArgumentCount, pos.Row, pos.Column,
			fmt.Sprintf("%q accepts at most %d argument(s), got %d", ft.Symbol, ft.MaxArguments, n))
	}
	return nil
}

// parseExpr implements the precedence-climbing equivalent of spec §4.2's
// shunting-yard reduction: equal-priority operators reduce left-to-right
// (left-associative) because the recursive call for the right-hand side
// uses priority+1 as its floor.
func (p *parser) parseExpr(full bool, minPriority int) (*ast.Node, error) {
	lhs, err := p.parseUnary(full)
	if err != nil {
		return nil, err
	}
	for full {
		tok := p.stream.Peek()
		opType, ok := p.peekOperator(tok, ast.FixInfix, ast.FixAffix)
		if !ok || opType.Priority < minPriority {
			break
		}
		p.stream.Next()
		rhs, err := p.parseExpr(full, opType.Priority+1)
		if err != nil {
			return nil, err
		}
		lhs = ast.NewInternal(opType, tok.Pos, lhs, rhs)
	}
	return lhs, nil
}

func (p *parser) parseUnary(full bool) (*ast.Node, error) {
	tok := p.stream.Peek()
	if full {
		if opType, ok := p.peekOperator(tok, ast.FixPrefix); ok {
			p.stream.Next()
			operand, err := p.parseUnary(full)
			if err != nil {
				return nil, err
			}
			return ast.NewInternal(opType, tok.Pos, operand), nil
		}
	}
	return p.parseAtom(full)
}

// peekOperator resolves an Operator- or Identifier-typed token (word
// operators like "and"/"or"/"not"/"contains" lex as Identifier) against the
// registry, classified by the caller's expected fixness set (spec §4.2
// rule 1).
func (p *parser) peekOperator(tok token.Token, want ...ast.OperatorFixness) (*ast.NodeType, bool) {
	var sym string
	switch tok.Type {
	case token.Operator, token.Identifier:
		sym = tok.Value
	default:
		return nil, false
	}
	nt, ok := p.ctx.LookupOperator(sym)
	if !ok {
		return nil, false
	}
	for _, f := range want {
		if nt.Fixness == f {
			return nt, true
		}
	}
	return nil, false
}

func (p *parser) parseAtom(full bool) (*ast.Node, error) {
	tok := p.stream.Peek()
	switch tok.Type {
	case token.OpenParen:
		if !full {
			return nil, liquiderr.New(liquiderr.KindUnknownOperator, tok.Pos.Row, tok.Pos.Column,
				"'(' is only valid in filter/tag arguments or under extended expression syntax")
		}
		p.stream.Next()
		inner, err := p.parseExpr(true, 0)
		if err != nil {
			return nil, err
		}
		closeTok := p.stream.Next()
		if closeTok.Type != token.CloseParen {
			return nil, liquiderr.New(liquiderr.KindUnbalancedGroup, closeTok.Pos.Row, closeTok.Pos.Column, "expected ')'")
		}
		return inner, nil

	case token.String:
		p.stream.Next()
		return ast.NewLeaf(variant.NewString(tok.Value), tok.Pos), nil

	case token.Integer:
		p.stream.Next()
		i, _ := strconv.ParseInt(tok.Value, 10, 64)
		return ast.NewLeaf(variant.NewInt(i), tok.Pos), nil

	case token.Float:
		p.stream.Next()
		f, _ := strconv.ParseFloat(tok.Value, 64)
		return ast.NewLeaf(variant.NewFloat(f), tok.Pos), nil

	case token.Identifier:
		return p.parseVariableChain()

	default:
		return nil, liquiderr.New(liquiderr.KindInvalidSymbol, tok.Pos.Row, tok.Pos.Column,
			fmt.Sprintf("unexpected token %s", tok.Type))
	}
}

// parseVariableChain builds a VARIABLE node from a leading identifier,
// appending `.name` string-leaf children, `[expr]` expression children, and
// collapsing into DOT_FILTER nodes when a step names a registered dot
// filter (spec §4.2 "Variable chains").
func (p *parser) parseVariableChain() (*ast.Node, error) {
	tok := p.stream.Next()
	switch tok.Value {
	case "true":
		return ast.NewLeaf(variant.NewBool(true), tok.Pos), nil
	case "false":
		return ast.NewLeaf(variant.NewBool(false), tok.Pos), nil
	case "nil", "null":
		return ast.NewLeaf(variant.NewNil(), tok.Pos), nil
	}

	current := ast.NewInternal(ast.Variable, tok.Pos, ast.NewLeaf(variant.NewString(tok.Value), tok.Pos))

	for {
		next := p.stream.Peek()
		switch next.Type {
		case token.Dot:
			p.stream.Next()
			nameTok := p.stream.Next()
			if nameTok.Type != token.Identifier {
				return nil, liquiderr.New(liquiderr.KindInvalidSymbol, nameTok.Pos.Row, nameTok.Pos.Column,
					"expected a name after '.'")
			}
			if dotType, ok := p.ctx.LookupDotFilter(nameTok.Value); ok {
				args := ast.NewInternal(ast.Arguments, nameTok.Pos)
				current = ast.NewInternal(dotType, nameTok.Pos, current, args)
				continue
			}
			if current.Kind() != ast.KindVariable {
				return nil, liquiderr.New(liquiderr.KindUnknownOperatorOrQualif, nameTok.Pos.Row, nameTok.Pos.Column,
					fmt.Sprintf("%q is not a registered dot filter", nameTok.Value))
			}
			current.AppendChild(ast.NewLeaf(variant.NewString(nameTok.Value), nameTok.Pos))

		case token.OpenBracket:
			p.stream.Next()
			idx, err := p.parseExpr(true, 0)
			if err != nil {
				return nil, err
			}
			closeTok := p.stream.Next()
			if closeTok.Type != token.CloseBracket {
				return nil, liquiderr.New(liquiderr.KindUnbalancedGroup, closeTok.Pos.Row, closeTok.Pos.Column, "expected ']'")
			}
			if current.Kind() != ast.KindVariable {
				return nil, liquiderr.New(liquiderr.KindInvalidSymbol, closeTok.Pos.Row, closeTok.Pos.Column,
					"'[' index is not allowed after a filter result")
			}
			current.AppendChild(idx)

		default:
			return current, nil
		}
	}
}
