// Package regex parses token patterns into abstract syntax trees.
package regex

import "fmt"

// Parse converts a pattern into an abstract syntax tree. A malformed pattern yields a *SyntaxError.
//
// The tokens are rearranged into postfix order by the shunting-yard algorithm, inserting the
// implicit concatenation operator between adjacent operands, and the tree is built from the
// postfix sequence with a single stack.
func Parse(pattern string) (root Node, retErr error) {
	defer func() {
		err := recover()
		if err != nil {
			synErr, ok := err.(*SyntaxError)
			if !ok {
				panic(err)
			}
			root = nil
			retErr = synErr
		}
	}()

	toks := newLexer(pattern).tokenize()
	postfix := toPostfix(insertConcat(toks))
	return buildTree(postfix), nil
}

// insertConcat inserts concatenation operators between a token that can end an operand and a token
// that can start one. It also rejects operators lacking operands.
func insertConcat(toks []*token) []*token {
	if toks[0].kind == tokenKindEOF {
		raiseSyntaxError(0, SynErrNullPattern, "")
	}

	var result []*token
	var prev *token
	for _, tok := range toks {
		switch {
		case tok.isOperand() || tok.kind == tokenKindGroupOpen:
			if prev != nil && endsOperand(prev) {
				result = append(result, &token{kind: tokenKindConcat, pos: tok.pos})
			}
		case tok.isPostfix():
			if prev == nil || !endsOperand(prev) {
				raiseSyntaxError(tok.pos, SynErrRepNoTarget, fmt.Sprintf("%v needs an operand", tok.kind))
			}
		case tok.kind == tokenKindAlt:
			if prev == nil || !endsOperand(prev) {
				raiseSyntaxError(tok.pos, SynErrAltLackOfOperand, "")
			}
		case tok.kind == tokenKindGroupClose:
			if prev != nil && prev.kind == tokenKindGroupOpen {
				raiseSyntaxError(prev.pos, SynErrGroupNoElem, "")
			}
			if prev != nil && prev.kind == tokenKindAlt {
				raiseSyntaxError(prev.pos, SynErrAltLackOfOperand, "")
			}
		case tok.kind == tokenKindEOF:
			if prev != nil && prev.kind == tokenKindAlt {
				raiseSyntaxError(prev.pos, SynErrAltLackOfOperand, "")
			}
		}
		result = append(result, tok)
		prev = tok
	}
	return result
}

func endsOperand(tok *token) bool {
	return tok.isOperand() || tok.isPostfix() || tok.kind == tokenKindGroupClose
}

func precedence(kind tokenKind) int {
	switch kind {
	case tokenKindAlt:
		return 1
	case tokenKindConcat:
		return 2
	}
	return 0
}

func toPostfix(toks []*token) []*token {
	var out []*token
	var ops []*token
	for _, tok := range toks {
		switch {
		case tok.isOperand():
			out = append(out, tok)
		case tok.isPostfix():
			// Postfix operators bind tightest and follow their operand immediately.
			out = append(out, tok)
		case tok.kind == tokenKindAlt || tok.kind == tokenKindConcat:
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if top.kind == tokenKindGroupOpen || precedence(top.kind) < precedence(tok.kind) {
					break
				}
				out = append(out, top)
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, tok)
		case tok.kind == tokenKindGroupOpen:
			ops = append(ops, tok)
		case tok.kind == tokenKindGroupClose:
			for {
				if len(ops) == 0 {
					raiseSyntaxError(tok.pos, SynErrGroupNoInitiator, "")
				}
				top := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				if top.kind == tokenKindGroupOpen {
					break
				}
				out = append(out, top)
			}
			out = append(out, &token{kind: tokenKindGroup, pos: tok.pos})
		case tok.kind == tokenKindEOF:
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				if top.kind == tokenKindGroupOpen {
					raiseSyntaxError(top.pos, SynErrGroupUnclosed, "")
				}
				out = append(out, top)
			}
		}
	}
	return out
}

// maxExpandedSize bounds the number of positions a pattern expands to once every bounded
// repetition is unrolled into copies of its operand. Nested repetitions multiply.
const maxExpandedSize = 1 << 16

type weightedNode struct {
	node Node
	// weight is the number of positions of the node after unrolling repetitions.
	weight int
}

func buildTree(postfix []*token) Node {
	var stack []weightedNode
	pop := func(tok *token) weightedNode {
		if len(stack) == 0 {
			raiseSyntaxError(tok.pos, SynErrRepNoTarget, fmt.Sprintf("%v needs an operand", tok.kind))
		}
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return n
	}
	push := func(tok *token, n Node, weight int) {
		if weight > maxExpandedSize {
			raiseSyntaxError(tok.pos, SynErrRepTooLarge, fmt.Sprintf("the pattern expands to more than %v positions", maxExpandedSize))
		}
		stack = append(stack, weightedNode{node: n, weight: weight})
	}
	for _, tok := range postfix {
		switch tok.kind {
		case tokenKindChar:
			push(tok, &Literal{Char: tok.char}, 1)
		case tokenKindClass:
			push(tok, &CharClass{Set: tok.set, Source: tok.source}, 1)
		case tokenKindRepeat:
			op := pop(tok)
			push(tok, &Star{Operand: op.node}, op.weight)
		case tokenKindRepeatOneOrMore:
			op := pop(tok)
			push(tok, &Plus{Operand: op.node}, op.weight)
		case tokenKindOption:
			op := pop(tok)
			push(tok, &Optional{Operand: op.node}, op.weight)
		case tokenKindRepeatRange:
			op := pop(tok)
			copies := tok.max
			if copies < 0 {
				copies = tok.min + 1
			}
			push(tok, &Repeat{Operand: op.node, Min: tok.min, Max: tok.max}, op.weight*copies)
		case tokenKindGroup:
			op := pop(tok)
			push(tok, &Group{Operand: op.node}, op.weight)
		case tokenKindConcat:
			right := pop(tok)
			left := pop(tok)
			push(tok, &Concat{Left: left.node, Right: right.node}, left.weight+right.weight)
		case tokenKindAlt:
			right := pop(tok)
			left := pop(tok)
			push(tok, &Alt{Left: left.node, Right: right.node}, left.weight+right.weight)
		}
	}
	if len(stack) != 1 {
		raiseSyntaxError(0, SynErrNullPattern, "")
	}
	return stack[0].node
}
