package parser

import (
	"github.com/leapstack-labs/sqltree/pkg/ast"
	"github.com/leapstack-labs/sqltree/pkg/token"
)

// Window specification parsing: OVER clauses, PARTITION BY, ORDER BY, frame specs.
//
// Grammar:
//
//	window_spec   → identifier | "(" [identifier] [PARTITION BY expr_list] [ORDER BY order_list] [frame_spec] ")"
//	frame_spec    → (ROWS|RANGE|GROUPS) frame_extent
//	frame_extent  → BETWEEN frame_bound AND frame_bound | frame_bound
//	frame_bound   → UNBOUNDED PRECEDING | UNBOUNDED FOLLOWING | CURRENT ROW | expr PRECEDING | expr FOLLOWING

// parseWindowSpec parses a window specification.
func (p *Parser) parseWindowSpec() *ast.WindowSpec {
	first := p.pos()
	spec := &ast.WindowSpec{}

	// Named window reference
	if p.check(token.IDENT) {
		spec.Name = p.token.Literal
		p.nextToken()
		p.finish(spec, first)
		return spec
	}

	p.expect(token.LPAREN)

	// Base window: OVER (w ORDER BY ...)
	if p.check(token.IDENT) {
		spec.Name = p.token.Literal
		p.nextToken()
	}

	if p.match(token.PARTITION) {
		p.expect(token.BY)
		spec.PartitionBy = p.parseExpressionList()
	}

	if p.match(token.ORDER) {
		p.expect(token.BY)
		spec.OrderBy = p.parseOrderByList()
	}

	if p.check(token.ROWS) || p.check(token.RANGE) || p.check(token.GROUPS) {
		spec.Frame = p.parseFrameSpec()
	}

	p.expect(token.RPAREN)
	p.finish(spec, first)
	return spec
}

// parseFrameSpec parses a window frame specification.
func (p *Parser) parseFrameSpec() *ast.FrameSpec {
	first := p.pos()
	frame := &ast.FrameSpec{}

	switch {
	case p.match(token.ROWS):
		frame.Type = ast.FrameRows
	case p.match(token.RANGE):
		frame.Type = ast.FrameRange
	case p.match(token.GROUPS):
		frame.Type = ast.FrameGroups
	}

	if p.match(token.BETWEEN) {
		frame.Start = p.parseFrameBound()
		p.expect(token.AND)
		frame.End = p.parseFrameBound()
	} else {
		frame.Start = p.parseFrameBound()
	}

	p.finish(frame, first)
	return frame
}

// parseFrameBound parses a frame bound.
func (p *Parser) parseFrameBound() *ast.FrameBound {
	first := p.pos()
	bound := &ast.FrameBound{}

	switch {
	case p.match(token.UNBOUNDED):
		switch {
		case p.match(token.PRECEDING):
			bound.Type = ast.FrameUnboundedPreceding
		case p.match(token.FOLLOWING):
			bound.Type = ast.FrameUnboundedFollowing
		default:
			p.addError("expected PRECEDING or FOLLOWING after UNBOUNDED")
		}

	case p.match(token.CURRENT):
		p.expect(token.ROW)
		bound.Type = ast.FrameCurrentRow

	default:
		// Offsets bind above comparison so a following AND is not captured.
		bound.Offset = p.parseExpressionWithPrecedence(precedenceAddition)
		switch {
		case p.match(token.PRECEDING):
			bound.Type = ast.FrameExprPreceding
		case p.match(token.FOLLOWING):
			bound.Type = ast.FrameExprFollowing
		default:
			p.addError("expected PRECEDING or FOLLOWING")
		}
	}

	p.finish(bound, first)
	return bound
}
