// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package generator

import (
	"fmt"

	"github.com/ecmalite/ecmalite/lang/ast"
	"github.com/ecmalite/ecmalite/lang/bytecode"
)

func (g *Generator) compileExpression(e ast.Expression) error {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		g.b().emit(bytecode.OpLoadConst, g.b().constant(n.Value))
		return nil

	case *ast.StringLiteral:
		g.b().emit(bytecode.OpLoadConst, g.b().constant(n.Value))
		return nil

	case *ast.BoolLiteral:
		if n.Value {
			g.b().emit(bytecode.OpLoadTrue, 0)
		} else {
			g.b().emit(bytecode.OpLoadFalse, 0)
		}
		return nil

	case *ast.NullLiteral:
		g.b().emit(bytecode.OpLoadNull, 0)
		return nil

	case *ast.UndefinedLiteral:
		g.b().emit(bytecode.OpLoadUndef, 0)
		return nil

	case *ast.ThisExpression:
		g.b().emit(bytecode.OpLoadThis, 0)
		return nil

	case *ast.Identifier:
		v := g.fn.resolve(n.Name)
		g.loadVar(v)
		return nil

	case *ast.RegexLiteral:
		idx := g.b().constant(n.Pattern + "\x00" + n.Flags)
		g.b().emit(bytecode.OpLoadConst, idx)
		return nil

	case *ast.TemplateLiteral:
		return g.compileTemplate(n)

	case *ast.ArrayLiteral:
		g.b().emit(bytecode.OpNewArray, 0)
		for _, el := range n.Elements {
			if el == nil {
				g.b().emit(bytecode.OpLoadUndef, 0)
				g.b().emit(bytecode.OpArrayPush, 0)
				continue
			}
			if sp, ok := el.(*ast.SpreadElement); ok {
				if err := g.compileExpression(sp.Argument); err != nil {
					return err
				}
				g.b().emit(bytecode.OpSpread, 0)
				continue
			}
			if err := g.compileExpression(el); err != nil {
				return err
			}
			g.b().emit(bytecode.OpArrayPush, 0)
		}
		return nil

	case *ast.ObjectLiteral:
		return g.compileObjectLiteral(n)

	case *ast.SpreadElement:
		return g.compileExpression(n.Argument)

	case *ast.PrefixExpression:
		return g.compilePrefix(n)

	case *ast.PostfixExpression:
		return g.compilePostfix(n)

	case *ast.InfixExpression:
		return g.compileInfix(n)

	case *ast.LogicalExpression:
		return g.compileLogical(n)

	case *ast.ConditionalExpression:
		return g.compileConditional(n)

	case *ast.AssignmentExpression:
		return g.compileAssignment(n)

	case *ast.SequenceExpression:
		for i, sub := range n.Expressions {
			if i > 0 {
				g.b().emit(bytecode.OpPop, 0)
			}
			if err := g.compileExpression(sub); err != nil {
				return err
			}
		}
		return nil

	case *ast.MemberExpression:
		return g.compileMemberGet(n)

	case *ast.CallExpression:
		return g.compileCall(n)

	case *ast.NewExpression:
		return g.compileNew(n)

	case *ast.FunctionExpression:
		return g.compileFunctionLiteral(n)

	case *ast.ClassLiteral:
		return g.compileClassLiteral(n)

	case *ast.AwaitExpression:
		if err := g.compileExpression(n.Argument); err != nil {
			return err
		}
		g.b().emit(bytecode.OpAwait, 0)
		return nil

	case *ast.ArrayPattern, *ast.ObjectPattern:
		// Destructuring assignment target used as a bare expression
		// (e.g. `([a, b] = pair)`); handled by compileAssignment's target
		// dispatch, never evaluated standalone.
		return fmt.Errorf("generator: pattern used outside assignment/binding context")

	default:
		return fmt.Errorf("generator: unsupported expression %T", e)
	}
}

func (g *Generator) compileTemplate(n *ast.TemplateLiteral) error {
	count := 0
	for i, q := range n.Quasis {
		g.b().emit(bytecode.OpLoadConst, g.b().constant(q))
		count++
		if i < len(n.Expressions) {
			if err := g.compileExpression(n.Expressions[i]); err != nil {
				return err
			}
			count++
		}
	}
	g.b().emit(bytecode.OpMakeTemplate, int32(count))
	return nil
}

func (g *Generator) compileObjectLiteral(n *ast.ObjectLiteral) error {
	g.b().emit(bytecode.OpNewObject, 0)
	for _, p := range n.Properties {
		if sp, ok := p.Value.(*ast.SpreadElement); ok && p.Kind == "spread" {
			if err := g.compileExpression(sp.Argument); err != nil {
				return err
			}
			g.b().emit(bytecode.OpSpread, 0)
			continue
		}
		g.b().emit(bytecode.OpDup, 0)
		if err := g.compileExpression(p.Value); err != nil {
			return err
		}
		if p.Computed {
			if err := g.compileExpression(p.Key); err != nil {
				return err
			}
			g.b().emit(bytecode.OpSetElem, 0)
		} else {
			g.b().emit(bytecode.OpSetProp, g.constFromKey(p.Key))
		}
		g.b().emit(bytecode.OpPop, 0) // discard SetProp's returned value, keep obj on stack from Dup
	}
	return nil
}

func (g *Generator) compilePrefix(n *ast.PrefixExpression) error {
	switch n.Operator {
	case "++", "--":
		return g.compileUpdate(n.Right, n.Operator, true)
	case "typeof":
		if id, ok := n.Right.(*ast.Identifier); ok {
			v := g.fn.resolve(id.Name)
			g.loadVar(v)
		} else if err := g.compileExpression(n.Right); err != nil {
			return err
		}
		g.b().emit(bytecode.OpTypeof, 0)
		return nil
	case "delete":
		return g.compileDelete(n.Right)
	case "void":
		if err := g.compileExpression(n.Right); err != nil {
			return err
		}
		g.b().emit(bytecode.OpPop, 0)
		g.b().emit(bytecode.OpLoadUndef, 0)
		return nil
	}
	if err := g.compileExpression(n.Right); err != nil {
		return err
	}
	switch n.Operator {
	case "-":
		g.b().emit(bytecode.OpNeg, 0)
	case "+":
		g.b().emit(bytecode.OpPlus, 0)
	case "!":
		g.b().emit(bytecode.OpNot, 0)
	case "~":
		g.b().emit(bytecode.OpBitNot, 0)
	default:
		return fmt.Errorf("generator: unsupported prefix operator %q", n.Operator)
	}
	return nil
}

func (g *Generator) compileDelete(target ast.Expression) error {
	m, ok := target.(*ast.MemberExpression)
	if !ok {
		g.b().emit(bytecode.OpLoadTrue, 0)
		return nil
	}
	if err := g.compileExpression(m.Object); err != nil {
		return err
	}
	if m.Computed {
		if err := g.compileExpression(m.Property); err != nil {
			return err
		}
		g.b().emit(bytecode.OpDeleteElem, 0)
	} else {
		g.b().emit(bytecode.OpDeleteProp, g.constFromKey(m.Property))
	}
	return nil
}

func (g *Generator) compilePostfix(n *ast.PostfixExpression) error {
	return g.compileUpdate(n.Left, n.Operator, false)
}

// compileUpdate implements `++`/`--` on an identifier or member target,
// pushing the pre- or post-update value per prefix/postfix convention.
func (g *Generator) compileUpdate(target ast.Expression, op string, prefix bool) error {
	delta := bytecode.OpAdd
	if op == "--" {
		delta = bytecode.OpSub
	}
	switch t := target.(type) {
	case *ast.Identifier:
		v := g.fn.resolve(t.Name)
		g.loadVar(v) // [old]
		if !prefix {
			g.b().emit(bytecode.OpDup, 0) // [old, old]
		}
		g.b().emit(bytecode.OpLoadConst, g.b().constant(float64(1)))
		g.b().emit(delta, 0) // prefix: [new]   postfix: [old, new]
		if prefix {
			g.b().emit(bytecode.OpDup, 0) // [new, new]
		}
		// OpStoreVar pops the top value to store it, leaving whatever was
		// beneath (old, for postfix; new, for prefix) as the expression's
		// result value.
		return g.storeVar(v)
	case *ast.MemberExpression:
		if err := g.compileExpression(t.Object); err != nil {
			return err
		}
		g.b().emit(bytecode.OpDup, 0) // [obj, obj]
		var keyConst int32
		if t.Computed {
			if err := g.compileExpression(t.Property); err != nil {
				return err
			}
			g.b().emit(bytecode.OpDup, 0)
			g.b().emit(bytecode.OpGetElem, 0) // [obj, key, old]
		} else {
			keyConst = g.constFromKey(t.Property)
			g.b().emit(bytecode.OpGetProp, keyConst) // [obj, old]
		}
		if !prefix {
			g.b().emit(bytecode.OpDup, 0)
		}
		g.b().emit(bytecode.OpLoadConst, g.b().constant(float64(1)))
		g.b().emit(delta, 0)
		if prefix {
			g.b().emit(bytecode.OpDup, 0)
		}
		if t.Computed {
			g.b().emit(bytecode.OpSetElem, 0)
		} else {
			g.b().emit(bytecode.OpSetProp, keyConst)
		}
		return nil
	default:
		return fmt.Errorf("generator: unsupported update target %T", target)
	}
}

var infixOps = map[string]bytecode.Opcode{
	"+": bytecode.OpAdd, "-": bytecode.OpSub, "*": bytecode.OpMul,
	"/": bytecode.OpDiv, "%": bytecode.OpMod, "**": bytecode.OpExp,
	"&": bytecode.OpBitAnd, "|": bytecode.OpBitOr, "^": bytecode.OpBitXor,
	"<<": bytecode.OpShl, ">>": bytecode.OpShr, ">>>": bytecode.OpUShr,
	"==": bytecode.OpEq, "!=": bytecode.OpNeq,
	"===": bytecode.OpStrictEq, "!==": bytecode.OpStrictNeq,
	"<": bytecode.OpLt, "<=": bytecode.OpLte, ">": bytecode.OpGt, ">=": bytecode.OpGte,
	"instanceof": bytecode.OpInstanceof, "in": bytecode.OpInOp,
}

func (g *Generator) compileInfix(n *ast.InfixExpression) error {
	if err := g.compileExpression(n.Left); err != nil {
		return err
	}
	if err := g.compileExpression(n.Right); err != nil {
		return err
	}
	op, ok := infixOps[n.Operator]
	if !ok {
		return fmt.Errorf("generator: unsupported infix operator %q", n.Operator)
	}
	g.b().emit(op, 0)
	return nil
}

func (g *Generator) compileLogical(n *ast.LogicalExpression) error {
	if err := g.compileExpression(n.Left); err != nil {
		return err
	}
	if n.Operator == "??" {
		// OpJumpIfNullish jumps to the "evaluate right" branch when the
		// left operand IS nullish (same sense as optional-chaining member
		// gets); a non-nullish left falls through keeping itself as the
		// result, then jumps past the right operand.
		g.b().emit(bytecode.OpDup, 0)
		toRight := g.b().emit(bytecode.OpJumpIfNullish, 0)
		toEnd := g.b().emit(bytecode.OpJump, 0)
		g.b().patchHere(toRight)
		g.b().emit(bytecode.OpPop, 0)
		if err := g.compileExpression(n.Right); err != nil {
			return err
		}
		g.b().patchHere(toEnd)
		return nil
	}
	var skip int
	switch n.Operator {
	case "&&":
		g.b().emit(bytecode.OpDup, 0)
		skip = g.b().emit(bytecode.OpJumpIfFalse, 0)
	case "||":
		g.b().emit(bytecode.OpDup, 0)
		skip = g.b().emit(bytecode.OpJumpIfTrue, 0)
	default:
		return fmt.Errorf("generator: unsupported logical operator %q", n.Operator)
	}
	g.b().emit(bytecode.OpPop, 0)
	if err := g.compileExpression(n.Right); err != nil {
		return err
	}
	g.b().patchHere(skip)
	return nil
}

func (g *Generator) compileConditional(n *ast.ConditionalExpression) error {
	if err := g.compileExpression(n.Test); err != nil {
		return err
	}
	elseJump := g.b().emit(bytecode.OpJumpIfFalse, 0)
	if err := g.compileExpression(n.Consequent); err != nil {
		return err
	}
	endJump := g.b().emit(bytecode.OpJump, 0)
	g.b().patchHere(elseJump)
	if err := g.compileExpression(n.Alternate); err != nil {
		return err
	}
	g.b().patchHere(endJump)
	return nil
}

func (g *Generator) compileAssignment(n *ast.AssignmentExpression) error {
	if n.Operator != "=" {
		base := n.Operator[:len(n.Operator)-1]
		synthetic := &ast.InfixExpression{Tok: n.Tok, Left: n.Target, Operator: base, Right: n.Value}
		switch t := n.Target.(type) {
		case *ast.Identifier:
			if err := g.compileInfix(synthetic); err != nil {
				return err
			}
			g.b().emit(bytecode.OpDup, 0)
			v := g.fn.resolve(t.Name)
			return g.storeVar(v)
		case *ast.MemberExpression:
			if err := g.compileExpression(t.Object); err != nil {
				return err
			}
			g.b().emit(bytecode.OpDup, 0)
			if t.Computed {
				if err := g.compileExpression(t.Property); err != nil {
					return err
				}
				g.b().emit(bytecode.OpDup, 0)
				g.b().emit(bytecode.OpGetElem, 0)
			} else {
				g.b().emit(bytecode.OpGetProp, g.constFromKey(t.Property))
			}
			if err := g.compileExpression(n.Value); err != nil {
				return err
			}
			op, ok := infixOps[base]
			if !ok {
				return fmt.Errorf("generator: unsupported compound assignment %q", n.Operator)
			}
			g.b().emit(op, 0)
			if t.Computed {
				g.b().emit(bytecode.OpSetElem, 0)
			} else {
				g.b().emit(bytecode.OpSetProp, g.constFromKey(t.Property))
			}
			return nil
		}
		return fmt.Errorf("generator: unsupported compound assignment target %T", n.Target)
	}

	switch t := n.Target.(type) {
	case *ast.Identifier:
		if err := g.compileExpression(n.Value); err != nil {
			return err
		}
		g.b().emit(bytecode.OpDup, 0)
		v := g.fn.resolve(t.Name)
		return g.storeVar(v)
	case *ast.MemberExpression:
		if err := g.compileExpression(t.Object); err != nil {
			return err
		}
		if t.Computed {
			if err := g.compileExpression(t.Property); err != nil {
				return err
			}
			if err := g.compileExpression(n.Value); err != nil {
				return err
			}
			g.b().emit(bytecode.OpSetElem, 0)
		} else {
			if err := g.compileExpression(n.Value); err != nil {
				return err
			}
			g.b().emit(bytecode.OpSetProp, g.constFromKey(t.Property))
		}
		return nil
	case *ast.ArrayPattern, *ast.ObjectPattern:
		if err := g.compileExpression(n.Value); err != nil {
			return err
		}
		g.b().emit(bytecode.OpDup, 0)
		return g.bindPattern(t.(ast.Pattern), bytecode.KindVar)
	default:
		return fmt.Errorf("generator: unsupported assignment target %T", n.Target)
	}
}

func (g *Generator) compileMemberGet(n *ast.MemberExpression) error {
	if err := g.compileExpression(n.Object); err != nil {
		return err
	}
	if n.Optional {
		g.b().emit(bytecode.OpDup, 0)
		skip := g.b().emit(bytecode.OpJumpIfNullish, 0)
		if n.Computed {
			if err := g.compileExpression(n.Property); err != nil {
				return err
			}
			g.b().emit(bytecode.OpGetElem, 0)
		} else {
			g.b().emit(bytecode.OpGetProp, g.constFromKey(n.Property))
		}
		g.b().patchHere(skip)
		return nil
	}
	if n.Computed {
		if err := g.compileExpression(n.Property); err != nil {
			return err
		}
		g.b().emit(bytecode.OpGetElem, 0)
		return nil
	}
	g.b().emit(bytecode.OpGetProp, g.constFromKey(n.Property))
	return nil
}

func (g *Generator) compileCall(n *ast.CallExpression) error {
	if m, ok := n.Callee.(*ast.MemberExpression); ok {
		if err := g.compileExpression(m.Object); err != nil {
			return err
		}
		g.b().emit(bytecode.OpDup, 0)
		if m.Computed {
			if err := g.compileExpression(m.Property); err != nil {
				return err
			}
			g.b().emit(bytecode.OpGetElem, 0)
		} else {
			g.b().emit(bytecode.OpGetProp, g.constFromKey(m.Property))
		}
		nargs, err := g.compileArgs(n.Args)
		if err != nil {
			return err
		}
		g.b().emit(bytecode.OpCallMethod, int32(nargs))
		return nil
	}
	if err := g.compileExpression(n.Callee); err != nil {
		return err
	}
	nargs, err := g.compileArgs(n.Args)
	if err != nil {
		return err
	}
	g.b().emit(bytecode.OpCall, int32(nargs))
	return nil
}

func (g *Generator) compileArgs(args []ast.Expression) (int, error) {
	n := 0
	for _, a := range args {
		if sp, ok := a.(*ast.SpreadElement); ok {
			if err := g.compileExpression(sp.Argument); err != nil {
				return 0, err
			}
			g.b().emit(bytecode.OpSpread, 1) // operand=1 flags "spread into args", consulted by vm call-arg gather
			n++
			continue
		}
		if err := g.compileExpression(a); err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

func (g *Generator) compileNew(n *ast.NewExpression) error {
	if err := g.compileExpression(n.Callee); err != nil {
		return err
	}
	nargs, err := g.compileArgs(n.Args)
	if err != nil {
		return err
	}
	g.b().emit(bytecode.OpNew, int32(nargs))
	return nil
}
