package ssiexpr

import (
	"regexp"

	"github.com/taiseen-cell/ssi/env"
	"github.com/taiseen-cell/ssi/interp"
	"github.com/taiseen-cell/ssi/ssierr"
)

// NodeType identifies the kind of a parse-tree node.
type NodeType int

const (
	nString NodeType = iota
	nNot
	nAnd
	nOr
	nEq
	nNe
	nGe
	nGt
	nLe
	nLt
	nGroup
)

// node is one entry of the evaluator's arena. Left/Right/Parent are
// arena indices, -1 meaning "none" — spec.md §9 asks for index-based
// links instead of raw pointers so expression depth is memory-, not
// stack-, bounded.
type node struct {
	typ          NodeType
	value        string
	left, right  int
	parent       int
}

// Tree is a built, evaluable #if/#elif expression (spec.md §4.E).
type Tree struct {
	nodes []node
	root  int // -1 for an empty/unparsable expression
}

type opEntry struct {
	typ   NodeType
	prec  int
	unary bool
}

// precedenceOf implements the documented, testable precedence table from
// spec.md §4.E: Not binds tightest, all comparisons share one level,
// And/Or share a lower level, parentheses override everything.
func precedenceOf(t TokenType) (opEntry, bool) {
	switch t {
	case TokNot:
		return opEntry{typ: nNot, prec: 3, unary: true}, true
	case TokEq:
		return opEntry{typ: nEq, prec: 2}, true
	case TokNe:
		return opEntry{typ: nNe, prec: 2}, true
	case TokGe:
		return opEntry{typ: nGe, prec: 2}, true
	case TokGt:
		return opEntry{typ: nGt, prec: 2}, true
	case TokLe:
		return opEntry{typ: nLe, prec: 2}, true
	case TokLt:
		return opEntry{typ: nLt, prec: 2}, true
	case TokAnd:
		return opEntry{typ: nAnd, prec: 1}, true
	case TokOr:
		return opEntry{typ: nOr, prec: 1}, true
	}
	return opEntry{}, false
}

// Parse builds a Tree from expr (spec.md §4.D tokenizer feeding §4.E's
// builder). A malformed expression (unmatched quote, empty operand
// stack at the end) yields an error; per spec.md §7 the caller should
// treat such an expression as false rather than abort the request.
func Parse(expr string) (*Tree, error) {
	tz := NewTokenizer(expr)
	t := &Tree{root: -1}

	var output []int       // arena indices of completed subtrees
	var ops []opEntry       // operator stack; LBrace marker uses typ=nGroup, prec=-1
	var lbraceMarks []int   // output-stack depth recorded at each pushed '('
	var pending string
	havePending := false

	flushPending := func() {
		if havePending {
			idx := t.newNode(nString, pending)
			output = append(output, idx)
			pending = ""
			havePending = false
		}
	}

	applyTop := func() error {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if top.unary {
			if len(output) < 1 {
				return ssierr.New(ssierr.ExpressionParse, "operator missing operand")
			}
			right := output[len(output)-1]
			output = output[:len(output)-1]
			idx := t.newNode(top.typ, "")
			t.nodes[idx].right = right
			t.nodes[right].parent = idx
			output = append(output, idx)
			return nil
		}
		if len(output) < 2 {
			return ssierr.New(ssierr.ExpressionParse, "operator missing operand")
		}
		right := output[len(output)-1]
		left := output[len(output)-2]
		output = output[:len(output)-2]
		idx := t.newNode(top.typ, "")
		t.nodes[idx].left = left
		t.nodes[idx].right = right
		t.nodes[left].parent = idx
		t.nodes[right].parent = idx
		output = append(output, idx)
		return nil
	}

	for {
		tok := tz.Next()
		if tok.Type == TokEOF {
			break
		}
		switch tok.Type {
		case TokString:
			if havePending {
				pending = pending + " " + tok.Literal
			} else {
				pending = tok.Literal
				havePending = true
			}
		case TokLBrace:
			flushPending()
			ops = append(ops, opEntry{typ: nGroup, prec: -1})
			lbraceMarks = append(lbraceMarks, len(output))
		case TokRBrace:
			flushPending()
			for len(ops) > 0 && ops[len(ops)-1].prec != -1 {
				if err := applyTop(); err != nil {
					return nil, err
				}
			}
			if len(ops) == 0 {
				return nil, ssierr.New(ssierr.ExpressionParse, "unmatched )")
			}
			ops = ops[:len(ops)-1] // pop the LBrace marker
			markDepth := lbraceMarks[len(lbraceMarks)-1]
			lbraceMarks = lbraceMarks[:len(lbraceMarks)-1]
			groupIdx := t.newNode(nGroup, "")
			if len(output) > markDepth {
				content := output[len(output)-1]
				output = output[:len(output)-1]
				t.nodes[groupIdx].right = content
				t.nodes[content].parent = groupIdx
			}
			output = append(output, groupIdx)
		default:
			entry, ok := precedenceOf(tok.Type)
			if !ok {
				return nil, ssierr.New(ssierr.ExpressionParse, "unexpected token "+tok.Type.String())
			}
			flushPending()
			for len(ops) > 0 && ops[len(ops)-1].prec >= entry.prec {
				if err := applyTop(); err != nil {
					return nil, err
				}
			}
			ops = append(ops, entry)
		}
	}
	flushPending()
	for len(ops) > 0 {
		if ops[len(ops)-1].prec == -1 {
			return nil, ssierr.New(ssierr.ExpressionParse, "unmatched (")
		}
		if err := applyTop(); err != nil {
			return nil, err
		}
	}
	if tz.Unmatched() {
		return nil, ssierr.New(ssierr.ExpressionParse, "unterminated quoted string")
	}
	if len(output) != 1 {
		return nil, ssierr.New(ssierr.ExpressionParse, "incomplete expression")
	}
	t.root = output[0]
	return t, nil
}

func (t *Tree) newNode(typ NodeType, value string) int {
	t.nodes = append(t.nodes, node{typ: typ, value: value, left: -1, right: -1, parent: -1})
	return len(t.nodes) - 1
}

// Eval evaluates the tree's boolean value against vars, interpolating
// string operands via interp.Interpolate (spec.md §4.B). Evaluation is
// iterative post-order over the arena so expression depth never grows
// the Go call stack (spec.md §9).
func (t *Tree) Eval(vars env.Environment) (bool, error) {
	if t.root == -1 {
		return false, nil
	}
	type frame struct {
		idx      int
		visited  bool
	}
	stack := []frame{{idx: t.root}}
	values := make(map[int]bool, len(t.nodes))
	var firstErr error

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		n := t.nodes[top.idx]
		if !top.visited {
			top.visited = true
			if n.left != -1 {
				stack = append(stack, frame{idx: n.left})
			}
			if n.right != -1 {
				stack = append(stack, frame{idx: n.right})
			}
			continue
		}
		stack = stack[:len(stack)-1]
		v, err := t.evalNode(top.idx, values, vars)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		values[top.idx] = v
	}
	return values[t.root], firstErr
}

func (t *Tree) evalNode(idx int, values map[int]bool, vars env.Environment) (bool, error) {
	n := t.nodes[idx]
	switch n.typ {
	case nString:
		s, err := interp.Interpolate(n.value, vars, false, 0)
		return s != "", err
	case nNot:
		if n.right == -1 {
			return false, nil
		}
		return !values[n.right], nil
	case nAnd:
		// eager, non-short-circuiting evaluation per spec.md §4.E
		return values[n.left] && values[n.right], nil
	case nOr:
		return values[n.left] || values[n.right], nil
	case nGroup:
		if n.right == -1 {
			return true, nil
		}
		return values[n.right], nil
	case nEq, nNe, nGe, nGt, nLe, nLt:
		return t.evalCompare(idx, vars)
	default:
		return false, nil
	}
}

func (t *Tree) evalCompare(idx int, vars env.Environment) (bool, error) {
	n := t.nodes[idx]
	left, err1 := interp.Interpolate(t.literalOf(n.left), vars, false, 0)
	right, err2 := interp.Interpolate(t.literalOf(n.right), vars, false, 0)
	var err error
	if err1 != nil {
		err = err1
	} else if err2 != nil {
		err = err2
	}

	if n.typ == nEq || n.typ == nNe {
		if isRegex(right) {
			matched, rerr := matchRegex(left, right)
			if rerr != nil {
				if err == nil {
					err = rerr
				}
				matched = false
			}
			if n.typ == nNe {
				return !matched, err
			}
			return matched, err
		}
		if n.typ == nEq {
			return left == right, err
		}
		return left != right, err
	}

	cmp := compareBytes(left, right)
	switch n.typ {
	case nGe:
		return cmp >= 0, err
	case nGt:
		return cmp > 0, err
	case nLe:
		return cmp <= 0, err
	case nLt:
		return cmp < 0, err
	default:
		return false, err
	}
}

// literalOf returns the raw (uninterpolated) text of a String-typed leaf
// node used as an operand of a comparison or as the whole expression.
func (t *Tree) literalOf(idx int) string {
	if idx == -1 {
		return ""
	}
	return t.nodes[idx].value
}

func compareBytes(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// isRegex reports whether s is a /pattern/ delimited regular expression
// per spec.md §4.E.
func isRegex(s string) bool {
	return len(s) >= 2 && s[0] == '/' && s[len(s)-1] == '/'
}

func matchRegex(s, pattern string) (bool, error) {
	re, err := regexp.Compile(pattern[1 : len(pattern)-1])
	if err != nil {
		return false, ssierr.New(ssierr.ExpressionParse, "invalid regular expression").WithInner(err)
	}
	return re.MatchString(s), nil
}
