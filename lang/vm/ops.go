// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package vm

import (
	"fmt"

	"github.com/ecmalite/ecmalite/lang/bytecode"
	"github.com/ecmalite/ecmalite/lang/object"
	"github.com/ecmalite/ecmalite/lang/promise"
	"github.com/ecmalite/ecmalite/lang/value"
)

// ArrayHandle is the ExternalHandler-free representation of an array:
// elements live in the Elements backing slice, and `length` is derived from
// its size; the embedded Object holds any other own properties.
type ArrayHandle struct {
	*object.Object
	Elements []value.Value
}

func (a *ArrayHandle) ClassOf() value.Class { return value.ClassArray }

// NewArray builds an array object from a literal element slice (spec §4.M
// Array; ecmalite keeps elements in a plain Go slice rather than modelling
// sparse/holey arrays, a documented simplification).
func NewArray(vm *VM, elems []value.Value) *ArrayHandle {
	a := &ArrayHandle{Object: object.New(value.ClassArray, vm.Protos.Array), Elements: append([]value.Value{}, elems...)}
	return a
}

// stepRest executes every opcode not handled inline in step (arithmetic,
// property, control, iteration, call/new, async, and aggregate literals).
func (vm *VM) stepRest(f *frame, instr bytecode.Instruction) (value.Value, bool, error) {
	switch instr.Op {

	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod, bytecode.OpExp,
		bytecode.OpBitAnd, bytecode.OpBitOr, bytecode.OpBitXor, bytecode.OpShl, bytecode.OpShr, bytecode.OpUShr:
		b := f.pop()
		a := f.pop()
		r, err := vm.numericBinOp(instr.Op, a, b)
		if err != nil {
			return vm.throwTypeError(f, err.Error())
		}
		f.push(r)

	case bytecode.OpNeg:
		a := f.pop()
		n, _ := a.ToNumber()
		f.push(value.Num(-n))
	case bytecode.OpPlus:
		a := f.pop()
		n, _ := a.ToNumber()
		f.push(value.Num(n))
	case bytecode.OpNot:
		f.push(boolVal(!f.pop().ToBoolean()))
	case bytecode.OpBitNot:
		a := f.pop()
		f.push(value.Num(float64(^a.ToInt32())))

	case bytecode.OpEq, bytecode.OpNeq, bytecode.OpStrictEq, bytecode.OpStrictNeq,
		bytecode.OpLt, bytecode.OpLte, bytecode.OpGt, bytecode.OpGte:
		b := f.pop()
		a := f.pop()
		r, err := compareOp(instr.Op, a, b)
		if err != nil {
			return vm.throwTypeError(f, err.Error())
		}
		f.push(r)

	case bytecode.OpTypeof:
		f.push(value.Str(f.pop().TypeOf()))

	case bytecode.OpInstanceof:
		ctor := f.pop()
		obj := f.pop()
		r, err := vm.instanceOf(obj, ctor)
		if err != nil {
			return vm.throwTypeError(f, err.Error())
		}
		f.push(boolVal(r))

	case bytecode.OpInOp:
		obj := f.pop()
		key := f.pop()
		ok, err := vm.hasProp(obj, key)
		if err != nil {
			return vm.throwTypeError(f, err.Error())
		}
		f.push(boolVal(ok))

	case bytecode.OpGetProp:
		name := vm.constStr(f, instr.Operand)
		obj := f.pop()
		v, err := vm.getProp(obj, name)
		if err != nil {
			return vm.throwTypeError(f, err.Error())
		}
		f.push(v)

	case bytecode.OpSetProp:
		name := vm.constStr(f, instr.Operand)
		val := f.pop()
		obj := f.pop()
		if err := vm.setProp(obj, name, val); err != nil {
			return vm.throwTypeError(f, err.Error())
		}
		f.push(val)

	case bytecode.OpGetElem:
		key := f.pop()
		obj := f.pop()
		ks, _ := key.ToString()
		v, err := vm.getProp(obj, ks)
		if err != nil {
			return vm.throwTypeError(f, err.Error())
		}
		f.push(v)

	case bytecode.OpSetElem:
		val := f.pop()
		key := f.pop()
		obj := f.pop()
		ks, _ := key.ToString()
		if err := vm.setProp(obj, ks, val); err != nil {
			return vm.throwTypeError(f, err.Error())
		}
		f.push(val)

	case bytecode.OpDeleteProp:
		name := vm.constStr(f, instr.Operand)
		obj := f.pop()
		f.push(boolVal(vm.deleteProp(obj, name)))

	case bytecode.OpDeleteElem:
		key := f.pop()
		obj := f.pop()
		ks, _ := key.ToString()
		f.push(boolVal(vm.deleteProp(obj, ks)))

	case bytecode.OpJump:
		f.pc = int(instr.Operand)
	case bytecode.OpJumpIfFalse:
		if !f.pop().ToBoolean() {
			f.pc = int(instr.Operand)
		}
	case bytecode.OpJumpIfTrue:
		if f.pop().ToBoolean() {
			f.pc = int(instr.Operand)
		}
	case bytecode.OpJumpIfNullish:
		if f.pop().IsNullish() {
			f.pc = int(instr.Operand)
		}

	case bytecode.OpCall:
		return vm.opCall(f, int(instr.Operand), false, false)
	case bytecode.OpCallMethod:
		return vm.opCall(f, int(instr.Operand), true, false)
	case bytecode.OpNew:
		return vm.opCall(f, int(instr.Operand), false, true)

	case bytecode.OpReturn:
		return f.pop(), true, nil

	case bytecode.OpThrow:
		exc := f.pop()
		return value.UndefinedValue, false, &ThrowError{Value: exc}

	case bytecode.OpTryStart:
		f.tryStack = append(f.tryStack, int(instr.Operand))
	case bytecode.OpTryEnd:
		if len(f.tryStack) > 0 {
			f.tryStack = f.tryStack[:len(f.tryStack)-1]
		}
	case bytecode.OpFinallyEnter:
		// no-op marker; pendingRethrow (set by handleThrow for a
		// finally-only try) rides through the finally body on the frame.

	case bytecode.OpFinallyExit:
		if f.pendingRethrow != nil {
			exc := *f.pendingRethrow
			f.pendingRethrow = nil
			return value.UndefinedValue, false, &ThrowError{Value: exc}
		}

	case bytecode.OpIterOpen:
		iterable := f.pop()
		it, err := vm.openIterator(iterable)
		if err != nil {
			return vm.throwTypeError(f, err.Error())
		}
		f.push(value.FromObj(it))
	case bytecode.OpIterNext:
		it := f.pop()
		res, err := vm.iterNext(it)
		if err != nil {
			return vm.throwTypeError(f, err.Error())
		}
		done, _ := vm.getProp(res, "done")
		val, _ := vm.getProp(res, "value")
		f.push(val)
		f.push(done)
	case bytecode.OpIterClose:
		f.pop()
	case bytecode.OpForInOpen:
		obj := f.pop()
		it := vm.openForInIterator(obj)
		f.push(value.FromObj(it))

	case bytecode.OpAwait:
		awaited := f.pop()
		v, err := vm.awaitSync(awaited)
		if err != nil {
			return value.UndefinedValue, false, err
		}
		f.push(v)

	case bytecode.OpNewArray:
		f.push(value.FromObj(NewArray(vm, nil)))
	case bytecode.OpArrayPush:
		val := f.pop()
		arr := f.peek()
		if ah, ok := arr.AsObject().(*ArrayHandle); ok {
			ah.Elements = append(ah.Elements, val)
		}
	case bytecode.OpNewObject:
		f.push(value.FromObj(object.New(value.ClassPlain, vm.Protos.Object)))
	case bytecode.OpSpread:
		val := f.pop()
		arr := f.peek()
		if ah, ok := arr.AsObject().(*ArrayHandle); ok {
			vm.spreadInto(ah, val)
		}
	case bytecode.OpMakeTemplate:
		n := int(instr.Operand)
		parts := make([]string, n)
		for i := n - 1; i >= 0; i-- {
			s, _ := f.pop().ToString()
			parts[i] = s
		}
		joined := ""
		for _, p := range parts {
			joined += p
		}
		f.push(value.Str(joined))

	case bytecode.OpLoadGlobalByName:
		name := vm.constStr(f, instr.Operand)
		v, err := vm.Global.Get(vm.Atoms.Atomize(name), value.FromObj(vm.Global))
		if err != nil {
			return vm.throwTypeError(f, err.Error())
		}
		f.push(v)

	case bytecode.OpStoreGlobalByName:
		name := vm.constStr(f, instr.Operand)
		val := f.pop()
		if _, err := vm.Global.Set(vm.Atoms.Atomize(name), val, value.FromObj(vm.Global)); err != nil {
			return vm.throwTypeError(f, err.Error())
		}

	case bytecode.OpDeclareGlobal:
		name := vm.constStr(f, instr.Operand)
		atom := vm.Atoms.Atomize(name)
		if !vm.Global.Has(atom) {
			vm.Global.DefineOwn(atom, object.Descriptor{Kind: object.KindData, Value: value.UndefinedValue, Writable: true, Enumerable: true, Configurable: true})
		}

	case bytecode.OpHalt:
		if len(f.stack) > 0 {
			return f.pop(), true, nil
		}
		return value.UndefinedValue, true, nil

	default:
		return value.UndefinedValue, false, fmt.Errorf("%w: %v", ErrInvalidOpcode, instr.Op)
	}
	return value.UndefinedValue, false, nil
}

func (vm *VM) throwTypeError(f *frame, msg string) (value.Value, bool, error) {
	return value.UndefinedValue, false, &ThrowError{Value: value.Str(msg)}
}

func (vm *VM) opCall(f *frame, argc int, isMethod bool, isNew bool) (value.Value, bool, error) {
	args := make([]value.Value, argc)
	for i := argc - 1; i >= 0; i-- {
		args[i] = f.pop()
	}
	var this value.Value
	var fnVal value.Value
	if isMethod {
		fnVal = f.pop()
		this = f.pop()
	} else {
		fnVal = f.pop()
		this = value.UndefinedValue
	}
	if isNew {
		inst, err := vm.construct(fnVal, args)
		if err != nil {
			if te, ok := err.(*ThrowError); ok {
				return value.UndefinedValue, false, te
			}
			return vm.throwTypeError(f, err.Error())
		}
		f.push(inst)
		return value.UndefinedValue, false, nil
	}
	res, err := vm.Call(fnVal, this, args, false)
	if err != nil {
		if te, ok := err.(*ThrowError); ok {
			return value.UndefinedValue, false, te
		}
		return vm.throwTypeError(f, err.Error())
	}
	f.push(res)
	return value.UndefinedValue, false, nil
}

// construct implements `new` (spec §4.J): allocate an instance whose
// prototype is the constructor's `.prototype`, invoke the constructor with
// that instance as `this`, and return the instance unless the constructor
// itself returns an object.
func (vm *VM) construct(fnVal value.Value, args []value.Value) (value.Value, error) {
	if !fnVal.IsObject() {
		return value.UndefinedValue, &ThrowError{Value: value.Str("TypeError: not a constructor")}
	}
	var protoObj *object.Object = vm.Protos.Object
	if clo, ok := fnVal.AsObject().(*Closure); ok {
		if pv, err := clo.Get(vm.Atoms.Atomize("prototype"), fnVal); err == nil && pv.IsObject() {
			if po, ok := pv.AsObject().(*object.Object); ok {
				protoObj = po
			}
		}
	}
	inst := object.New(value.ClassPlain, protoObj)
	instVal := value.FromObj(inst)
	ret, err := vm.Call(fnVal, instVal, args, true)
	if err != nil {
		return value.UndefinedValue, err
	}
	if ret.IsObject() {
		return ret, nil
	}
	return instVal, nil
}

func (vm *VM) instanceOf(obj, ctor value.Value) (bool, error) {
	if !obj.IsObject() || !ctor.IsObject() {
		return false, nil
	}
	clo, ok := ctor.AsObject().(*Closure)
	if !ok {
		return false, fmt.Errorf("TypeError: right-hand side of instanceof is not callable")
	}
	pv, err := clo.Get(vm.Atoms.Atomize("prototype"), ctor)
	if err != nil || !pv.IsObject() {
		return false, nil
	}
	target, ok := pv.AsObject().(*object.Object)
	if !ok {
		return false, nil
	}
	cur := objectHeaderOf(obj.AsObject())
	for cur != nil {
		if cur == target {
			return true, nil
		}
		cur = cur.Proto()
	}
	return false, nil
}

// objectHeaderOf extracts the *object.Object header from any of the value
// kinds that embed one (plain objects, arrays, closures, native functions).
func objectHeaderOf(o value.Obj) *object.Object {
	switch t := o.(type) {
	case *object.Object:
		return t
	case *ArrayHandle:
		return t.Object
	case *Closure:
		return t.Object
	case *NativeFunction:
		return t.Object
	case *promise.Promise:
		return t.Object
	case *Uint8ArrayHandle:
		return t.Object
	case *DateHandle:
		return t.Object
	case *RegExpHandle:
		return t.Object
	default:
		return nil
	}
}

func (vm *VM) getProp(obj value.Value, name string) (value.Value, error) {
	if ah, ok := obj.AsObject().(*ArrayHandle); ok {
		if name == "length" {
			return value.Num(float64(len(ah.Elements))), nil
		}
		if idx, ok := arrayIndex(name); ok {
			if idx < len(ah.Elements) {
				return ah.Elements[idx], nil
			}
			return value.UndefinedValue, nil
		}
	}
	if obj.IsString() {
		s := obj.AsString()
		if name == "length" {
			return value.Num(float64(len([]rune(s)))), nil
		}
		if idx, ok := arrayIndex(name); ok {
			r := []rune(s)
			if idx < len(r) {
				return value.Str(string(r[idx])), nil
			}
			return value.UndefinedValue, nil
		}
	}
	if ta, ok := obj.AsObject().(*Uint8ArrayHandle); ok {
		if name == "length" {
			return value.Num(float64(ta.Length)), nil
		}
		if idx, ok := arrayIndex(name); ok {
			if idx >= ta.Length {
				return value.UndefinedValue, nil
			}
			b, err := ta.Mem.ReadByte(ta.Base + uint64(idx))
			if err != nil {
				return value.UndefinedValue, nil
			}
			return value.Num(float64(b)), nil
		}
	}
	header := objectHeaderOf(obj.AsObject())
	if header == nil {
		// A primitive receiver (string/number/boolean) has no header of
		// its own; its method surface lives on the matching prototype,
		// looked up with the primitive still bound as `this`.
		if proto := vm.primitiveProto(obj); proto != nil {
			return proto.Get(vm.Atoms.Atomize(name), obj)
		}
		return value.UndefinedValue, nil
	}
	return header.Get(vm.Atoms.Atomize(name), obj)
}

// primitiveProto returns the prototype object backing method calls on a
// boxless primitive receiver (spec §4.J "primitive member access boxes
// just long enough to resolve the method, per ToObject").
func (vm *VM) primitiveProto(obj value.Value) *object.Object {
	switch {
	case obj.IsString():
		return vm.Protos.String
	case obj.IsNumber():
		return vm.Protos.Number
	case obj.IsBoolean():
		return vm.Protos.Boolean
	case obj.IsSymbol():
		return vm.Protos.Symbol
	default:
		return nil
	}
}

func (vm *VM) setProp(obj value.Value, name string, val value.Value) error {
	if ah, ok := obj.AsObject().(*ArrayHandle); ok {
		if name == "length" {
			n, _ := val.ToNumber()
			newLen := int(n)
			if newLen < len(ah.Elements) {
				ah.Elements = ah.Elements[:newLen]
			} else {
				for len(ah.Elements) < newLen {
					ah.Elements = append(ah.Elements, value.UndefinedValue)
				}
			}
			return nil
		}
		if idx, ok := arrayIndex(name); ok {
			for len(ah.Elements) <= idx {
				ah.Elements = append(ah.Elements, value.UndefinedValue)
			}
			ah.Elements[idx] = val
			return nil
		}
	}
	if ta, ok := obj.AsObject().(*Uint8ArrayHandle); ok {
		if idx, ok := arrayIndex(name); ok && idx < ta.Length {
			n, _ := val.ToNumber()
			return ta.Mem.WriteByte(ta.Base+uint64(idx), byte(int64(n)&0xff))
		}
		return nil
	}
	header := objectHeaderOf(obj.AsObject())
	if header == nil {
		return fmt.Errorf("TypeError: cannot set property of non-object")
	}
	_, err := header.Set(vm.Atoms.Atomize(name), val, obj)
	return err
}

func (vm *VM) deleteProp(obj value.Value, name string) bool {
	header := objectHeaderOf(obj.AsObject())
	if header == nil {
		return false
	}
	return header.Delete(vm.Atoms.Atomize(name))
}

func (vm *VM) hasProp(obj value.Value, key value.Value) (bool, error) {
	name, _ := key.ToString()
	if ah, ok := obj.AsObject().(*ArrayHandle); ok {
		if idx, ok := arrayIndex(name); ok {
			return idx < len(ah.Elements), nil
		}
	}
	header := objectHeaderOf(obj.AsObject())
	if header == nil {
		return false, nil
	}
	return header.Has(vm.Atoms.Atomize(name)), nil
}

func arrayIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
