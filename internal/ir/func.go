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
    `strings`

    `github.com/oleiade/lane`
)

// Func is the mutable control-flow graph of exactly one function. The
// first block created is the designated entry block.
type Func struct {
    Name string
    Root *BasicBlock
    nb   int
    nv   int
}

func NewFunc(name string) *Func {
    return &Func { Name: name }
}

func (self *Func) nextid() int {
    self.nv++
    return self.nv
}

func (self *Func) NewBlock() *BasicBlock {
    bb := &BasicBlock { Id: self.nb, fn: self }
    self.nb++

    /* the first block is the entry block */
    if self.Root == nil {
        self.Root = bb
    }
    return bb
}

// NewSlot creates a stack slot of type t in the entry block, after any
// slots already there, so that slot order stays stable as the splitter
// materializes new ones.
func (self *Func) NewSlot(t Type) *IrAlloca {
    i := 0
    bb := self.Root

    /* skip over the leading run of existing slots */
    for i < len(bb.Ins) {
        if _, ok := bb.Ins[i].(*IrAlloca); ok {
            i++
        } else {
            break
        }
    }

    /* insert the new slot there */
    p := &IrAlloca { T: t }
    bb.InsertAt(i, p)
    return p
}

// Blocks returns every reachable basic block in depth-first preorder
// starting at the entry block.
func (self *Func) Blocks() []*BasicBlock {
    st := lane.NewStack()
    vis := map[int]bool { self.Root.Id: true }
    ret := make([]*BasicBlock, 0, self.nb)

    /* iterative preorder walk */
    for st.Push(self.Root); !st.Empty(); {
        bb := st.Pop().(*BasicBlock)
        ret = append(ret, bb)

        /* collect the successors of this block */
        var succ []*BasicBlock
        for it := bb.Term.Successors(); it.Next(); {
            succ = append(succ, it.Block())
        }

        /* push in reverse so they pop in successor order */
        for i := len(succ) - 1; i >= 0; i-- {
            if p := succ[i]; !vis[p.Id] {
                vis[p.Id] = true
                st.Push(p)
            }
        }
    }
    return ret
}

// Rebuild recomputes every predecessor list from the terminators. Edge
// multiplicity is collapsed: a block branching to the same target under
// two case values contributes one predecessor entry.
func (self *Func) Rebuild() {
    blocks := self.Blocks()

    /* drop the stale lists */
    for _, bb := range blocks {
        bb.Pred = nil
    }

    /* add one entry per unique edge, in traversal order */
    for _, bb := range blocks {
        seen := make(map[int]bool)
        for it := bb.Term.Successors(); it.Next(); {
            if p := it.Block(); !seen[p.Id] {
                seen[p.Id] = true
                p.Pred = append(p.Pred, bb)
            }
        }
    }
}

func (self *Func) String() string {
    buf := []string { fmt.Sprintf("func %s {", self.Name) }

    /* dump every block */
    for _, bb := range self.Blocks() {
        buf = append(buf, fmt.Sprintf("bb_%d:", bb.Id))
        for _, p := range bb.Phi {
            buf = append(buf, "    " + p.String())
        }
        for _, p := range bb.Ins {
            buf = append(buf, "    " + p.String())
        }
        for _, s := range strings.Split(bb.Term.String(), "\n") {
            buf = append(buf, "    " + s)
        }
    }

    /* join them together */
    buf = append(buf, "}")
    return strings.Join(buf, "\n")
}
