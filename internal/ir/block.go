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

// BasicBlock is an ordered sequence of instructions with a single
// terminator. The block owns its instructions, use-lists only refer
// back into them.
type BasicBlock struct {
    Id   int
    Phi  []*IrPhi
    Ins  []Instr
    Pred []*BasicBlock
    Term IrTerminator
    fn   *Func
}

type _InstrAttacher interface {
    attach(bb *BasicBlock, id int)
}

func (self *_InstrBase) attach(bb *BasicBlock, id int) {
    self.bb = bb
    self.id = id
}

func (self *BasicBlock) adopt(ins Instr) {
    ins.(_InstrAttacher).attach(self, self.fn.nextid())
    registerUses(ins)
}

func registerUses(ins Instr) {
    for _, p := range ins.Operands() {
        if *p != nil {
            (*p).addUse(Use { User: ins, Slot: p })
        }
    }
}

func unregisterUses(ins Instr) {
    for _, p := range ins.Operands() {
        if *p != nil {
            (*p).delUse(Use { User: ins, Slot: p })
        }
    }
}

// Append adds ins at the end of the block body and registers it on the
// use-lists of its operands.
func (self *BasicBlock) Append(ins Instr) Instr {
    self.adopt(ins)
    self.Ins = append(self.Ins, ins)
    return ins
}

// InsertAt adds ins at position i of the block body.
func (self *BasicBlock) InsertAt(i int, ins Instr) Instr {
    self.adopt(ins)
    self.Ins = append(self.Ins, nil)
    copy(self.Ins[i + 1:], self.Ins[i:])
    self.Ins[i] = ins
    return ins
}

// AddPhi adds a phi operation to the block header.
func (self *BasicBlock) AddPhi(phi *IrPhi) *IrPhi {
    self.adopt(phi)
    self.Phi = append(self.Phi, phi)
    return phi
}

// Erase removes ins from the block and detaches it from the use-lists
// of its operands. Erasing a value that something still reads is a
// caller bug: retire it with ReplaceAllUses first.
func (self *BasicBlock) Erase(ins Instr) {
    if v, ok := ins.(Value); ok && !UseEmpty(v) {
        panic("mir: erasing a value that is still in use: " + ins.String())
    }

    /* detach the operands */
    unregisterUses(ins)

    /* phi operations live in the block header */
    if phi, ok := ins.(*IrPhi); ok {
        for i, p := range self.Phi {
            if p == phi {
                self.Phi = append(self.Phi[:i], self.Phi[i + 1:]...)
                return
            }
        }
        panic("mir: phi not in block: " + ins.String())
    }

    /* ordinary instructions */
    for i, p := range self.Ins {
        if p == ins {
            self.Ins = append(self.Ins[:i], self.Ins[i + 1:]...)
            return
        }
    }
    panic("mir: instruction not in block: " + ins.String())
}

func (self *BasicBlock) setTerm(term IrTerminator) {
    if self.Term != nil {
        panic("mir: block already terminated")
    }
    self.adopt(term)
    self.Term = term
}

// TermReturn ends the block with a return.
func (self *BasicBlock) TermReturn(rr ...Value) {
    self.setTerm(&IrReturn { R: rr })
}

// TermBranch ends the block with an unconditional jump to "to".
func (self *BasicBlock) TermBranch(to *BasicBlock) {
    to.Pred = append(to.Pred, self)
    self.setTerm(&IrSwitch { Ln: to })
}

// TermCondition ends the block with a two-way branch on v: t when v is
// non-zero, f otherwise.
func (self *BasicBlock) TermCondition(v Value, t *BasicBlock, f *BasicBlock) {
    t.Pred = append(t.Pred, self)
    f.Pred = append(f.Pred, self)
    self.setTerm(&IrSwitch { V: v, Ln: f, Br: map[int64]*BasicBlock { 1: t } })
}

// TermSwitch ends the block with a multiway branch on v, falling
// through to ln when no case matches.
func (self *BasicBlock) TermSwitch(v Value, ln *BasicBlock, br map[int64]*BasicBlock) {
    seen := map[int]bool { ln.Id: true }
    ln.Pred = append(ln.Pred, self)

    /* one predecessor entry per unique target */
    for _, to := range br {
        if !seen[to.Id] {
            seen[to.Id] = true
            to.Pred = append(to.Pred, self)
        }
    }
    self.setTerm(&IrSwitch { V: v, Ln: ln, Br: br })
}
