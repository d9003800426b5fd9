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

package sroa

import (
    `sort`

    `github.com/mirkit/mir/internal/ir`
    `go.uber.org/zap`
)

/* Cytron-style promotion: place phi operations on the iterated
 * dominance frontier of the definition blocks, then rename loads and
 * stores in one depth-first walk of the dominator tree. Batching
 * matters, the dominance information is shared across the batch. */

type _Promoter struct {
    fn   *ir.Func
    dt   DominatorTree
    cur  map[*ir.IrAlloca][]ir.Value
    cand map[*ir.IrAlloca]bool
    phis map[*ir.IrPhi]*ir.IrAlloca
}

func newPromoter(fn *ir.Func, dt DominatorTree) *_Promoter {
    return &_Promoter {
        fn   : fn,
        dt   : dt,
        cur  : make(map[*ir.IrAlloca][]ir.Value),
        cand : make(map[*ir.IrAlloca]bool),
        phis : make(map[*ir.IrPhi]*ir.IrAlloca),
    }
}

// promoteSlots rewrites a batch of scalar slots that passed CanPromote
// into phi-linked SSA values and deletes the slots. It returns the
// batch size, the caller accounts it as the promoted metric.
func promoteSlots(fn *ir.Func, dt DominatorTree, slots []*ir.IrAlloca, log *zap.Logger) int {
    if len(slots) == 0 {
        return 0
    }

    /* place the phi operations */
    p := newPromoter(fn, dt)
    for _, slot := range slots {
        p.cand[slot] = true
        p.placePhis(slot, log)
    }

    /* single renaming walk over the dominator tree */
    p.renameBlock(dt.Root)

    /* pending phi edges are paths that carried no definition, reading
     * them was already undefined in the input */
    p.fillUndef()

    /* the slots and their marker plumbing go away */
    for _, slot := range slots {
        retireSlot(slot)
        log.Debug("slot promoted", zap.String("slot", slot.Name()))
    }
    return len(slots)
}

func (self *_Promoter) placePhis(slot *ir.IrAlloca, log *zap.Logger) {
    seen := make(map[int]bool)
    defs := make([]*ir.BasicBlock, 0, len(slot.Uses()))

    /* collect the definition blocks */
    for _, u := range slot.Uses() {
        if st, ok := u.User.(*ir.IrStore); ok && u.Slot == &st.Mem {
            if bb := st.Parent(); !seen[bb.Id] {
                seen[bb.Id] = true
                defs = append(defs, bb)
            }
        }
    }
    sort.Slice(defs, func(i int, j int) bool {
        return defs[i].Id < defs[j].Id
    })

    /* one phi per join point on the iterated frontier */
    join := self.dt.IteratedFrontier(defs)
    for _, bb := range join {
        phi := &ir.IrPhi { T: slot.T }
        bb.AddPhi(phi)
        self.phis[phi] = slot
    }
    log.Debug("phi placement",
        zap.String("slot", slot.Name()),
        zap.Int("defblocks", len(defs)),
        zap.Int("phis", len(join)))
}

func (self *_Promoter) push(slot *ir.IrAlloca, v ir.Value) {
    self.cur[slot] = append(self.cur[slot], v)
}

func (self *_Promoter) pop(slot *ir.IrAlloca) {
    if n := len(self.cur[slot]); n != 0 {
        self.cur[slot] = self.cur[slot][:n - 1]
    }
}

func (self *_Promoter) top(slot *ir.IrAlloca) ir.Value {
    if n := len(self.cur[slot]); n == 0 {
        return ir.NewUndef(slot.T)
    } else {
        return self.cur[slot][n - 1]
    }
}

func (self *_Promoter) slotOf(mem ir.Value) *ir.IrAlloca {
    if p, ok := mem.(*ir.IrAlloca); ok && self.cand[p] {
        return p
    } else {
        return nil
    }
}

func (self *_Promoter) renameBlock(bb *ir.BasicBlock) {
    var pushed []*ir.IrAlloca

    /* phis of this block are its first definitions */
    for _, phi := range bb.Phi {
        if slot, ok := self.phis[phi]; ok {
            self.push(slot, phi)
            pushed = append(pushed, slot)
        }
    }

    /* walk the body in order, the body shrinks as we go */
    ins := make([]ir.Instr, len(bb.Ins))
    copy(ins, bb.Ins)

    /* rewrite loads, absorb stores */
    for _, v := range ins {
        switch p := v.(type) {
            case *ir.IrLoad: {
                if slot := self.slotOf(p.Mem); slot != nil {
                    ir.ReplaceAllUses(p, self.top(slot))
                    bb.Erase(p)
                }
            }

            case *ir.IrStore: {
                if slot := self.slotOf(p.Mem); slot != nil {
                    self.push(slot, p.V)
                    pushed = append(pushed, slot)
                    bb.Erase(p)
                }
            }
        }
    }

    /* feed the reaching value into the phis of every successor */
    for it := bb.Term.Successors(); it.Next(); {
        for _, phi := range it.Block().Phi {
            if slot, ok := self.phis[phi]; ok {
                phi.SetIncoming(bb, self.top(slot))
            }
        }
    }

    /* recurse into the dominated blocks, sibling subtrees must not see
     * the definitions of this subtree */
    for _, p := range self.dt.DominatorOf[bb.Id] {
        self.renameBlock(p)
    }

    /* restore the stacks */
    for _, slot := range pushed {
        self.pop(slot)
    }
}

func (self *_Promoter) fillUndef() {
    for phi, slot := range self.phis {
        for _, pred := range phi.Parent().Pred {
            if phi.Incoming(pred) == nil {
                phi.SetIncoming(pred, ir.NewUndef(slot.T))
            }
        }
    }
}
