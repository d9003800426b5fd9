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
)

// Use is one back-reference from a value to an operand slot that reads
// it. The slot pointer aliases the operand field inside the user, so
// writing through it rewires the user in place.
type Use struct {
    User Instr
    Slot *Value
}

// Value is anything an operand slot may refer to: the result of an
// instruction, or a free-standing constant. A value keeps a non-owning
// use-list of every slot that currently reads it.
type Value interface {
    fmt.Stringer
    Type() Type
    Uses() []Use
    addUse(u Use)
    delUse(u Use)
    dropUses()
}

type _UseList struct {
    refs []Use
}

func (self *_UseList) Uses() []Use {
    return self.refs
}

func (self *_UseList) addUse(u Use) {
    self.refs = append(self.refs, u)
}

func (self *_UseList) delUse(u Use) {
    for i, v := range self.refs {
        if v.Slot == u.Slot {
            self.refs = append(self.refs[:i], self.refs[i + 1:]...)
            return
        }
    }
}

func (self *_UseList) dropUses() {
    self.refs = nil
}

// UseEmpty reports whether v has no remaining uses.
func UseEmpty(v Value) bool {
    return len(v.Uses()) == 0
}

// ReplaceAllUses atomically substitutes every use of v with w. The
// use-list of v is empty afterwards.
func ReplaceAllUses(v Value, w Value) {
    if v == w {
        return
    }

    /* snapshot the list, it is mutated as we go */
    uses := v.Uses()
    refs := make([]Use, len(uses))
    copy(refs, uses)

    /* rewire every slot */
    for _, u := range refs {
        *u.Slot = w
        w.addUse(u)
    }

    /* v is no longer referenced */
    v.dropUses()
}

type ConstInt struct {
    _UseList
    T Type
    V int64
}

func Int64(v int64) *ConstInt {
    return &ConstInt { T: I64, V: v }
}

func (self *ConstInt) Type() Type {
    return self.T
}

func (self *ConstInt) String() string {
    return fmt.Sprintf("$%d", self.V)
}

// Undef is the explicit "no defined value" marker. Reading it is
// undefined behavior that was already present in the input program.
type Undef struct {
    _UseList
    T Type
}

func NewUndef(t Type) *Undef {
    return &Undef { T: t }
}

func (self *Undef) Type() Type {
    return self.T
}

func (self *Undef) String() string {
    return "undef." + self.T.String()
}
