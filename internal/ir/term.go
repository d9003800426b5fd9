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

type IrSuccessors interface {
    Next() bool
    Block() *BasicBlock
    Value() (int64, bool)
}

type IrTerminator interface {
    Instr
    Successors() IrSuccessors
    irterminator()
}

func (*IrSwitch) irterminator() {}
func (*IrReturn) irterminator() {}

type _SwitchSuccessors struct {
    i  int
    kk []int64
    vv []*BasicBlock
}

func (self *_SwitchSuccessors) Next() bool {
    self.i++
    return self.i < len(self.vv)
}

func (self *_SwitchSuccessors) Block() *BasicBlock {
    return self.vv[self.i]
}

func (self *_SwitchSuccessors) Value() (int64, bool) {
    if self.i < len(self.kk) {
        return self.kk[self.i], true
    } else {
        return 0, false
    }
}

// IrSwitch branches on V, falling through to Ln when no case matches.
// A plain goto is a switch with no cases and no V.
type IrSwitch struct {
    _InstrBase
    V  Value
    Ln *BasicBlock
    Br map[int64]*BasicBlock
}

func (self *IrSwitch) Operands() []*Value {
    if self.V == nil {
        return nil
    } else {
        return []*Value { &self.V }
    }
}

func (self *IrSwitch) Successors() IrSuccessors {
    nb := len(self.Br)
    kk := make([]int64, 0, nb)
    vv := make([]*BasicBlock, 0, nb + 1)

    /* sort cases by value to keep the iteration order stable */
    for k := range self.Br {
        kk = append(kk, k)
    }
    sort.Slice(kk, func(i int, j int) bool {
        return kk[i] < kk[j]
    })

    /* dump the case targets, default target goes last */
    for _, k := range kk {
        vv = append(vv, self.Br[k])
    }
    vv = append(vv, self.Ln)
    return &_SwitchSuccessors { i: -1, kk: kk, vv: vv }
}

func (self *IrSwitch) String() string {
    nb := len(self.Br)
    kk := make([]int64, 0, nb)
    ret := make([]string, 0, nb)

    /* no branches */
    if nb == 0 {
        return fmt.Sprintf("goto bb_%d", self.Ln.Id)
    }

    /* add each case */
    for k := range self.Br {
        kk = append(kk, k)
    }
    sort.Slice(kk, func(i int, j int) bool {
        return kk[i] < kk[j]
    })
    for _, k := range kk {
        ret = append(ret, fmt.Sprintf("  %d => bb_%d,", k, self.Br[k].Id))
    }

    /* default branch */
    ret = append(ret, fmt.Sprintf(
        "  _ => bb_%d,",
        self.Ln.Id,
    ))

    /* join them together */
    return fmt.Sprintf(
        "switch %s {\n%s\n}",
        refname(self.V),
        strings.Join(ret, "\n"),
    )
}

type _EmptySuccessors struct{}

func (_EmptySuccessors) Next()  bool          { return false }
func (_EmptySuccessors) Block() *BasicBlock   { return nil }
func (_EmptySuccessors) Value() (int64, bool) { return 0, false }

type IrReturn struct {
    _InstrBase
    R []Value
}

func (self *IrReturn) Operands() []*Value {
    return valueslicerefs(self.R)
}

func (self *IrReturn) Successors() IrSuccessors {
    return _EmptySuccessors{}
}

func (self *IrReturn) String() string {
    return fmt.Sprintf(
        "ret {%s}",
        strings.Join(refnames(self.R), ", "),
    )
}
