/*
 * Copyright 2023 Mirkit Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ir

import (
    `fmt`
    `sort`
    `strings`
)

// Instr is a node of the function body. The closed set of variants
// below is exhaustive: every analysis in this module switches over it,
// so a new kind must be explicitly classified everywhere before it
// compiles into an optimization.
type Instr interface {
    fmt.Stringer
    Parent() *BasicBlock
    Operands() []*Value
    instr()
}

func (*IrAlloca)    instr() {}
func (*IrLoad)      instr() {}
func (*IrStore)     instr() {}
func (*IrFieldAddr) instr() {}
func (*IrLifetime)  instr() {}
func (*IrBitCast)   instr() {}
func (*IrCompare)   instr() {}
func (*IrCall)      instr() {}
func (*IrPhi)       instr() {}
func (*IrSwitch)    instr() {}
func (*IrReturn)    instr() {}

type _InstrBase struct {
    bb *BasicBlock
    id int
}

func (self *_InstrBase) Parent() *BasicBlock {
    return self.bb
}

func (self *_InstrBase) Name() string {
    return fmt.Sprintf("%%%d", self.id)
}

func refname(v Value) string {
    if v == nil {
        return "<nil>"
    } else if r, ok := v.(interface{ Name() string }); ok {
        return r.Name()
    } else {
        return v.String()
    }
}

func refnames(vv []Value) []string {
    rr := make([]string, 0, len(vv))
    for _, v := range vv { rr = append(rr, refname(v)) }
    return rr
}

// IrAlloca is a stack slot: one contiguous stack allocation of T with
// automatic lifetime. Its value is the address of the slot.
type IrAlloca struct {
    _InstrBase
    _UseList
    T Type
}

func (self *IrAlloca) Type() Type {
    return PointerTo(self.T)
}

func (self *IrAlloca) Operands() []*Value {
    return nil
}

func (self *IrAlloca) String() string {
    return fmt.Sprintf("%s = alloca %s", self.Name(), self.T)
}

type IrLoad struct {
    _InstrBase
    _UseList
    T        Type
    Mem      Value
    Volatile bool
}

func (self *IrLoad) Type() Type {
    return self.T
}

func (self *IrLoad) Operands() []*Value {
    return []*Value { &self.Mem }
}

func (self *IrLoad) String() string {
    if self.Volatile {
        return fmt.Sprintf("%s = load.volatile %s, %s", self.Name(), self.T, refname(self.Mem))
    } else {
        return fmt.Sprintf("%s = load %s, %s", self.Name(), self.T, refname(self.Mem))
    }
}

type IrStore struct {
    _InstrBase
    V        Value
    Mem      Value
    Volatile bool
}

func (self *IrStore) Operands() []*Value {
    return []*Value { &self.V, &self.Mem }
}

func (self *IrStore) String() string {
    if self.Volatile {
        return fmt.Sprintf("store.volatile %s -> *%s", refname(self.V), refname(self.Mem))
    } else {
        return fmt.Sprintf("store %s -> *%s", refname(self.V), refname(self.Mem))
    }
}

// IrFieldAddr computes the address of one element or field of an
// aggregate: base + constant-offset. Off is a value so that malformed
// inputs with a dynamic offset are representable, eligibility analyses
// reject them.
type IrFieldAddr struct {
    _InstrBase
    _UseList
    T   Type
    Mem Value
    Off Value
}

func (self *IrFieldAddr) Type() Type {
    return PointerTo(self.T)
}

func (self *IrFieldAddr) Operands() []*Value {
    return []*Value { &self.Mem, &self.Off }
}

func (self *IrFieldAddr) String() string {
    return fmt.Sprintf("%s = &(%s)[%s]", self.Name(), refname(self.Mem), refname(self.Off))
}

// IrLifetime annotates the start or end of the storage lifetime of the
// object behind Mem. It carries no semantic value.
type IrLifetime struct {
    _InstrBase
    Start bool
    Mem   Value
}

func (self *IrLifetime) Operands() []*Value {
    return []*Value { &self.Mem }
}

func (self *IrLifetime) String() string {
    if self.Start {
        return fmt.Sprintf("lifetime.start %s", refname(self.Mem))
    } else {
        return fmt.Sprintf("lifetime.end %s", refname(self.Mem))
    }
}

type IrBitCast struct {
    _InstrBase
    _UseList
    T Type
    V Value
}

func (self *IrBitCast) Type() Type {
    return self.T
}

func (self *IrBitCast) Operands() []*Value {
    return []*Value { &self.V }
}

func (self *IrBitCast) String() string {
    return fmt.Sprintf("%s = bitcast %s to %s", self.Name(), refname(self.V), self.T)
}

type IrCmpOp uint8

const (
    IrCmpEq IrCmpOp = iota
    IrCmpNe
    IrCmpLt
    IrCmpGt
)

func (self IrCmpOp) String() string {
    switch self {
        case IrCmpEq : return "eq"
        case IrCmpNe : return "ne"
        case IrCmpLt : return "lt"
        case IrCmpGt : return "gt"
        default      : panic("mir: unknown comparison op")
    }
}

type IrCompare struct {
    _InstrBase
    _UseList
    Op IrCmpOp
    X  Value
    Y  Value
}

func (self *IrCompare) Type() Type {
    return I8
}

func (self *IrCompare) Operands() []*Value {
    return []*Value { &self.X, &self.Y }
}

func (self *IrCompare) String() string {
    return fmt.Sprintf("%s = cmp.%s %s, %s", self.Name(), self.Op, refname(self.X), refname(self.Y))
}

// IrCall transfers control to an unknown function. Every address that
// flows into a call escapes as far as this module is concerned.
type IrCall struct {
    _InstrBase
    _UseList
    T  Type
    Fn string
    In []Value
}

func (self *IrCall) Type() Type {
    return self.T
}

func (self *IrCall) Operands() []*Value {
    return valueslicerefs(self.In)
}

func (self *IrCall) String() string {
    return fmt.Sprintf(
        "%s = call %s(%s)",
        self.Name(),
        self.Fn,
        strings.Join(refnames(self.In), ", "),
    )
}

// IrPhi selects a value based on which predecessor edge control
// arrived from.
type IrPhi struct {
    _InstrBase
    _UseList
    T Type
    V map[*BasicBlock]*Value
}

// SetIncoming records v as the value arriving over the bb edge.
func (self *IrPhi) SetIncoming(bb *BasicBlock, v Value) {
    if self.V == nil {
        self.V = make(map[*BasicBlock]*Value)
    }

    /* detach the previous incoming value, if any */
    if p, ok := self.V[bb]; ok && *p != nil {
        (*p).delUse(Use { User: self, Slot: p })
    }

    /* attach the new one through a fresh slot */
    p := new(Value)
    *p = v
    self.V[bb] = p
    v.addUse(Use { User: self, Slot: p })
}

// Incoming returns the value arriving over the bb edge, or nil if the
// edge has not been resolved yet.
func (self *IrPhi) Incoming(bb *BasicBlock) Value {
    if p, ok := self.V[bb]; ok {
        return *p
    } else {
        return nil
    }
}

func (self *IrPhi) Type() Type {
    return self.T
}

func (self *IrPhi) Operands() []*Value {
    rr := make([]*Value, 0, len(self.V))
    for _, p := range self.incomings() { rr = append(rr, p.v) }
    return rr
}

type _PhiEdge struct {
    b *BasicBlock
    v *Value
}

func (self *IrPhi) incomings() []_PhiEdge {
    nb := len(self.V)
    ee := make([]_PhiEdge, 0, nb)

    /* dump each edge */
    for bb, p := range self.V {
        ee = append(ee, _PhiEdge { b: bb, v: p })
    }

    /* sort by basic block ID */
    sort.Slice(ee, func(i int, j int) bool {
        return ee[i].b.Id < ee[j].b.Id
    })
    return ee
}

func (self *IrPhi) String() string {
    nb := len(self.V)
    ret := make([]string, 0, nb)

    /* add each path */
    for _, e := range self.incomings() {
        if *e.v == nil {
            ret = append(ret, fmt.Sprintf("bb_%d: <pending>", e.b.Id))
        } else {
            ret = append(ret, fmt.Sprintf("bb_%d: %s", e.b.Id, refname(*e.v)))
        }
    }

    /* join them together */
    return fmt.Sprintf(
        "%s = φ(%s)",
        self.Name(),
        strings.Join(ret, ", "),
    )
}

func valueslicerefs(vv []Value) (rr []*Value) {
    rr = make([]*Value, len(vv))
    for i := range vv { rr[i] = &vv[i] }
    return
}
