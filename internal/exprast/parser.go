package exprast

import "github.com/opmodel/tscompiler/internal/span"

// ExpressionType classifies how an expression table entry is used — the
// IsProperty/IsFunction/Interp discriminator from spec.md §3.
type ExpressionType int

const (
	// IsProperty is a value-producing binding expression.
	IsProperty ExpressionType = iota
	// IsFunction is a listener/call expression bound to an event.
	IsFunction
	// Interp is a top-level interpolation (already its own node kind; this
	// tag exists for ExprTableEntry bookkeeping when an Interpolation's
	// sub-expressions are registered individually).
	Interp
)

// Parser parses one binding expression at a time. Each call is independent;
// the parser carries no state across expressions.
type Parser struct{}

// NewParser returns a Parser for the template binding expression grammar.
func NewParser() *Parser { return &Parser{} }

// parseState walks a fixed token slice with recursive descent + precedence
// climbing for binary operators.
type parseState struct {
	toks []token
	pos  int
	base int // byte offset of toks[0] within the original source, for span translation
}

// Parse parses src (the raw text between `${` and `}`, or an attribute's
// `.bind` value) into a Node. baseOffset is the byte offset of src[0] in the
// host document, so returned spans are authored-source spans, not
// relative-to-expression ones. On a lex/parse error, Parse returns an
// Unknown node alongside the error so callers can still register an
// ExprTableEntry (spec.md §4.2, §7).
func (p *Parser) Parse(src string, baseOffset int) (Node, error) {
	toks, err := newLexer(src).tokenize()
	if err != nil {
		pe, _ := err.(*ParseError)
		offset := baseOffset
		if pe != nil {
			offset = baseOffset + pe.Offset
		}
		return &Unknown{base: base{Sp: span.NewTextSpan(offset, offset+len(src))}, ReasonKind: "lex-error"}, err
	}
	st := &parseState{toks: toks, base: baseOffset}
	node, err := st.parseBindingBehaviorChain()
	if err != nil {
		return &Unknown{base: base{Sp: span.NewTextSpan(baseOffset, baseOffset+len(src))}, ReasonKind: "parse-error"}, err
	}
	if st.cur().kind != tokEOF {
		t := st.cur()
		return &Unknown{base: base{Sp: span.NewTextSpan(baseOffset, baseOffset+len(src))}, ReasonKind: "trailing-tokens"},
			&ParseError{Message: "unexpected trailing token " + t.text, Offset: t.start}
	}
	return node, nil
}

func (st *parseState) cur() token  { return st.toks[st.pos] }
func (st *parseState) advance() token {
	t := st.toks[st.pos]
	if st.pos < len(st.toks)-1 {
		st.pos++
	}
	return t
}

func (st *parseState) sp(start int) span.TextSpan {
	end := st.toks[st.pos].start
	if st.pos > 0 {
		end = st.toks[st.pos-1].end
	}
	return span.NewTextSpan(st.base+start, st.base+end)
}

func (st *parseState) expectPunct(p string) (token, bool) {
	if st.cur().kind == tokPunct && st.cur().text == p {
		return st.advance(), true
	}
	return token{}, false
}

// parseBindingBehaviorChain is the grammar entry point:
//
//	bindingBehaviorChain := valueConverterChain ( '&' ident args? )*
//	valueConverterChain  := assign ( '|' ident args? )*
//	assign               := conditional ( '=' assign )?
//	conditional          := nullish ( '?' assign ':' assign )?
//	... standard binary precedence ladder down to unary/primary/member/call.
func (st *parseState) parseBindingBehaviorChain() (Node, error) {
	start := st.cur().start
	node, err := st.parseValueConverterChain()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := st.expectPunct("&"); !ok {
			break
		}
		name, ok := st.expectIdent()
		if !ok {
			return nil, &ParseError{Message: "expected binding behavior name after '&'", Offset: st.cur().start}
		}
		args, err := st.parsePipeArgs()
		if err != nil {
			return nil, err
		}
		node = &BindingBehavior{base: base{Sp: st.sp(start)}, Expression: node, Name: name, Args: args}
	}
	return node, nil
}

func (st *parseState) parseValueConverterChain() (Node, error) {
	start := st.cur().start
	node, err := st.parseAssign()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := st.expectPunct("|"); !ok {
			break
		}
		name, ok := st.expectIdent()
		if !ok {
			return nil, &ParseError{Message: "expected value converter name after '|'", Offset: st.cur().start}
		}
		args, err := st.parsePipeArgs()
		if err != nil {
			return nil, err
		}
		node = &ValueConverter{base: base{Sp: st.sp(start)}, Expression: node, Name: name, Args: args}
	}
	return node, nil
}

func (st *parseState) parsePipeArgs() ([]Node, error) {
	var args []Node
	for {
		if _, ok := st.expectPunct(":"); !ok {
			break
		}
		arg, err := st.parseConditional()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

func (st *parseState) expectIdent() (string, bool) {
	if st.cur().kind == tokIdent {
		return st.advance().text, true
	}
	return "", false
}

func (st *parseState) parseAssign() (Node, error) {
	start := st.cur().start
	left, err := st.parseConditional()
	if err != nil {
		return nil, err
	}
	if _, ok := st.expectPunct("="); ok {
		right, err := st.parseAssign()
		if err != nil {
			return nil, err
		}
		return &Assign{base: base{Sp: st.sp(start)}, Target: left, Value: right}, nil
	}
	return left, nil
}

func (st *parseState) parseConditional() (Node, error) {
	start := st.cur().start
	cond, err := st.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if _, ok := st.expectPunct("?"); ok {
		yes, err := st.parseAssign()
		if err != nil {
			return nil, err
		}
		if _, ok := st.expectPunct(":"); !ok {
			return nil, &ParseError{Message: "expected ':' in conditional expression", Offset: st.cur().start}
		}
		no, err := st.parseAssign()
		if err != nil {
			return nil, err
		}
		return &Conditional{base: base{Sp: st.sp(start)}, Condition: cond, Yes: yes, No: no}, nil
	}
	return cond, nil
}

// precedence levels, low to high.
var binaryPrecedence = map[string]int{
	"||": 1, "??": 1,
	"&&": 2,
	"==": 3, "!=": 3, "===": 3, "!==": 3,
	"<": 4, "<=": 4, ">": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

func (st *parseState) parseBinary(minPrec int) (Node, error) {
	start := st.cur().start
	left, err := st.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := st.cur()
		if t.kind != tokPunct {
			break
		}
		prec, ok := binaryPrecedence[t.text]
		if !ok || prec < minPrec {
			break
		}
		op := st.advance().text
		right, err := st.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &Binary{base: base{Sp: st.sp(start)}, Operator: op, Left: left, Right: right}
	}
	return left, nil
}

func (st *parseState) parseUnary() (Node, error) {
	start := st.cur().start
	if st.cur().kind == tokPunct && (st.cur().text == "!" || st.cur().text == "-" || st.cur().text == "+") {
		op := st.advance().text
		operand, err := st.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{base: base{Sp: st.sp(start)}, Operator: op, Operand: operand}, nil
	}
	if st.cur().kind == tokIdent && (st.cur().text == "typeof" || st.cur().text == "void") {
		op := st.advance().text
		operand, err := st.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{base: base{Sp: st.sp(start)}, Operator: op, Operand: operand}, nil
	}
	return st.parseCallMemberChain()
}

// parseCallMemberChain parses a primary expression followed by any mix of
// `.name`, `?.name`, `[key]`, and `(args)` postfix operators, folding each
// into AccessMember/AccessKeyed/CallMember/CallFunction/CallScope nodes.
func (st *parseState) parseCallMemberChain() (Node, error) {
	start := st.cur().start
	node, err := st.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case st.cur().kind == tokPunct && (st.cur().text == "." || st.cur().text == "?."):
			optional := st.cur().text == "?."
			st.advance()
			name, ok := st.expectIdent()
			if !ok {
				return nil, &ParseError{Message: "expected property name after '.'", Offset: st.cur().start}
			}
			if _, ok := st.expectPunct("("); ok {
				args, err := st.parseArgList()
				if err != nil {
					return nil, err
				}
				node = &CallMember{base: base{Sp: st.sp(start)}, Object: node, Name: name, Args: args, Optional: optional}
			} else {
				node = &AccessMember{base: base{Sp: st.sp(start)}, Object: node, Name: name, Optional: optional}
			}
		case st.cur().kind == tokPunct && st.cur().text == "[":
			st.advance()
			key, err := st.parseAssign()
			if err != nil {
				return nil, err
			}
			if _, ok := st.expectPunct("]"); !ok {
				return nil, &ParseError{Message: "expected ']'", Offset: st.cur().start}
			}
			node = &AccessKeyed{base: base{Sp: st.sp(start)}, Object: node, Key: key}
		case st.cur().kind == tokPunct && st.cur().text == "(":
			st.advance()
			args, err := st.parseArgList()
			if err != nil {
				return nil, err
			}
			if scope, ok := node.(*AccessScope); ok && scope.Object() == nil {
				node = &CallScope{base: base{Sp: st.sp(start)}, Name: scope.Name, Args: args, Ancestor: scope.Ancestor}
			} else {
				node = &CallFunction{base: base{Sp: st.sp(start)}, Func: node, Args: args}
			}
		default:
			return node, nil
		}
	}
}

// Object is a convenience accessor used only to detect "bare identifier
// followed by a call" at parse time (turning it into CallScope instead of
// CallFunction over an AccessScope). AccessScope itself has no Object field;
// this always returns nil and exists purely for that one parser check.
func (a *AccessScope) Object() Node { return nil }

func (st *parseState) parseArgList() ([]Node, error) {
	var args []Node
	if _, ok := st.expectPunct(")"); ok {
		return args, nil
	}
	for {
		arg, err := st.parseAssign()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if _, ok := st.expectPunct(","); ok {
			continue
		}
		break
	}
	if _, ok := st.expectPunct(")"); !ok {
		return nil, &ParseError{Message: "expected ')'", Offset: st.cur().start}
	}
	return args, nil
}

func (st *parseState) parsePrimary() (Node, error) {
	start := st.cur().start
	t := st.cur()
	switch {
	case t.kind == tokNumber:
		st.advance()
		return &PrimitiveLiteral{base: base{Sp: st.sp(start)}, Value: t.value}, nil
	case t.kind == tokString:
		st.advance()
		return &PrimitiveLiteral{base: base{Sp: st.sp(start)}, Value: t.value}, nil
	case t.kind == tokIdent && t.text == "true":
		st.advance()
		return &PrimitiveLiteral{base: base{Sp: st.sp(start)}, Value: true}, nil
	case t.kind == tokIdent && t.text == "false":
		st.advance()
		return &PrimitiveLiteral{base: base{Sp: st.sp(start)}, Value: false}, nil
	case t.kind == tokIdent && (t.text == "null" || t.text == "undefined"):
		st.advance()
		return &PrimitiveLiteral{base: base{Sp: st.sp(start)}, Value: nil}, nil
	case t.kind == tokIdent && t.text == "$this":
		st.advance()
		return &AccessThis{base: base{Sp: st.sp(start)}, Ancestor: 0}, nil
	case t.kind == tokIdent && t.text == "$parent":
		anc := st.parseParentChain()
		return &AccessThis{base: base{Sp: st.sp(start)}, Ancestor: anc}, nil
	case t.kind == tokIdent:
		st.advance()
		return &AccessScope{base: base{Sp: st.sp(start)}, Name: t.text}, nil
	case t.kind == tokPunct && t.text == "(":
		st.advance()
		inner, err := st.parseAssign()
		if err != nil {
			return nil, err
		}
		if _, ok := st.expectPunct(")"); !ok {
			return nil, &ParseError{Message: "expected ')'", Offset: st.cur().start}
		}
		return inner, nil
	case t.kind == tokPunct && t.text == "[":
		st.advance()
		var elems []Node
		if _, ok := st.expectPunct("]"); ok {
			return &ArrayLiteral{base: base{Sp: st.sp(start)}, Elements: elems}, nil
		}
		for {
			el, err := st.parseAssign()
			if err != nil {
				return nil, err
			}
			elems = append(elems, el)
			if _, ok := st.expectPunct(","); ok {
				continue
			}
			break
		}
		if _, ok := st.expectPunct("]"); !ok {
			return nil, &ParseError{Message: "expected ']'", Offset: st.cur().start}
		}
		return &ArrayLiteral{base: base{Sp: st.sp(start)}, Elements: elems}, nil
	case t.kind == tokPunct && t.text == "{":
		return st.parseObjectLiteral(start)
	}
	return nil, &ParseError{Message: "unexpected token " + t.text, Offset: t.start}
}

// parseParentChain consumes a leading `$parent` (already matched by the
// caller's switch for the first one) followed by any number of `.$parent`
// accesses, returning the total ancestor hop count.
func (st *parseState) parseParentChain() int {
	st.advance() // consume the already-matched $parent
	ancestor := 1
	for st.cur().kind == tokPunct && st.cur().text == "." {
		save := st.pos
		st.advance()
		if st.cur().kind == tokIdent && st.cur().text == "$parent" {
			st.advance()
			ancestor++
			continue
		}
		st.pos = save
		break
	}
	return ancestor
}

func (st *parseState) parseObjectLiteral(start int) (Node, error) {
	st.advance() // '{'
	var keys []string
	var values []Node
	if _, ok := st.expectPunct("}"); ok {
		return &ObjectLiteral{base: base{Sp: st.sp(start)}, Keys: keys, Values: values}, nil
	}
	for {
		var key string
		switch {
		case st.cur().kind == tokIdent:
			key = st.advance().text
		case st.cur().kind == tokString:
			key = st.advance().text
		default:
			return nil, &ParseError{Message: "expected object key", Offset: st.cur().start}
		}
		if _, ok := st.expectPunct(":"); !ok {
			return nil, &ParseError{Message: "expected ':' after object key", Offset: st.cur().start}
		}
		val, err := st.parseAssign()
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
		values = append(values, val)
		if _, ok := st.expectPunct(","); ok {
			continue
		}
		break
	}
	if _, ok := st.expectPunct("}"); !ok {
		return nil, &ParseError{Message: "expected '}'", Offset: st.cur().start}
	}
	return &ObjectLiteral{base: base{Sp: st.sp(start)}, Keys: keys, Values: values}, nil
}
