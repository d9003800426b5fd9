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

/** The dominator tree is built with the Lengauer-Tarjan algorithm
 *  described in https://doi.org/10.1145%2F357062.357071, dominance
 *  frontiers with the Cytron et al. predecessor-walk.
 */

package sroa

import (
    `sort`

    `github.com/mirkit/mir/internal/ir`
    `github.com/oleiade/lane`
)

type _LtNode struct {
    semi     int
    node     *ir.BasicBlock
    dom      *_LtNode
    label    *_LtNode
    parent   *_LtNode
    ancestor *_LtNode
    pred     []*_LtNode
    bucket   map[*_LtNode]struct{}
}

type _LengauerTarjan struct {
    nodes  []*_LtNode
    vertex map[int]int
}

func newLengauerTarjan() *_LengauerTarjan {
    return &_LengauerTarjan {
        vertex: make(map[int]int),
    }
}

func (self *_LengauerTarjan) dfs(bb *ir.BasicBlock) {
    i := len(self.nodes)
    self.vertex[bb.Id] = i

    /* create a new node */
    p := &_LtNode {
        semi   : i,
        node   : bb,
        bucket : make(map[*_LtNode]struct{}),
    }

    /* add to node list */
    p.label = p
    self.nodes = append(self.nodes, p)

    /* traverse the successors */
    for it := bb.Term.Successors(); it.Next(); {
        w := it.Block()
        idx, ok := self.vertex[w.Id]

        /* not visited yet */
        if !ok {
            self.dfs(w)
            idx = self.vertex[w.Id]
            self.nodes[idx].parent = p
        }

        /* add predecessors */
        q := self.nodes[idx]
        q.pred = append(q.pred, p)
    }
}

func (self *_LengauerTarjan) eval(p *_LtNode) *_LtNode {
    if p.ancestor == nil {
        return p
    } else {
        self.compress(p)
        return p.label
    }
}

func (self *_LengauerTarjan) link(p *_LtNode, q *_LtNode) {
    q.ancestor = p
}

func (self *_LengauerTarjan) compress(p *_LtNode) {
    if p.ancestor.ancestor != nil {
        self.compress(p.ancestor)
        if p.label.semi > p.ancestor.label.semi { p.label = p.ancestor.label }
        p.ancestor = p.ancestor.ancestor
    }
}

// DominatorTree maps every reachable block to its immediate dominator
// and carries the dominance frontiers the promoter places phis with.
// It stays valid for an entire driver round: splitting never changes
// the block structure.
type DominatorTree struct {
    Root              *ir.BasicBlock
    DominatedBy       map[int]*ir.BasicBlock
    DominatorOf       map[int][]*ir.BasicBlock
    DominanceFrontier map[int][]*ir.BasicBlock
}

func minInt(a int, b int) int {
    if a < b {
        return a
    } else {
        return b
    }
}

func BuildDominatorTree(fn *ir.Func) DominatorTree {
    domby := make(map[int]*ir.BasicBlock)
    domof := make(map[int][]*ir.BasicBlock)

    /* Step 1: Carry out a depth-first search of the problem graph. Number the vertices
     * from 1 to n as they are reached during the search. Initialize the variables used
     * in succeeding steps. */
    lt := newLengauerTarjan()
    lt.dfs(fn.Root)

    /* perform Step 2 and Step 3 simultaneously */
    for i := len(lt.nodes) - 1; i > 0; i-- {
        p := lt.nodes[i]
        q := (*_LtNode)(nil)

        /* Step 2: Compute the semidominators of all vertices by applying Theorem 4.
         * Carry out the computation vertex by vertex in decreasing order by number. */
        for _, v := range p.pred {
            q = lt.eval(v)
            p.semi = minInt(p.semi, q.semi)
        }

        /* link the ancestor */
        lt.link(p.parent, p)
        lt.nodes[p.semi].bucket[p] = struct{}{}

        /* Step 3: Implicitly define the immediate dominator of each vertex by applying Corollary 1 */
        for v := range p.parent.bucket {
            if q = lt.eval(v); q.semi < v.semi {
                v.dom = q
            } else {
                v.dom = p.parent
            }
        }

        /* clear the bucket */
        for v := range p.parent.bucket {
            delete(p.parent.bucket, v)
        }
    }

    /* Step 4: Explicitly define the immediate dominator of each vertex, carrying out the
     * computation vertex by vertex in increasing order by number. */
    for _, p := range lt.nodes[1:] {
        if p.dom.node.Id != lt.nodes[p.semi].node.Id {
            p.dom = p.dom.dom
        }
    }

    /* map the dominator relations */
    for _, p := range lt.nodes[1:] {
        domby[p.node.Id] = p.dom.node
        domof[p.dom.node.Id] = append(domof[p.dom.node.Id], p.node)
    }

    /* sort the children, renaming recursion order must be reproducible */
    for _, v := range domof {
        sort.Slice(v, func(i int, j int) bool {
            return v[i].Id < v[j].Id
        })
    }

    /* construct the dominator tree */
    dt := DominatorTree {
        Root        : fn.Root,
        DominatorOf : domof,
        DominatedBy : domby,
    }

    /* attach the dominance frontiers */
    dt.DominanceFrontier = computeFrontier(fn, dt)
    return dt
}

/* join points receive the frontier: walk up from every predecessor of a
 * merge block until the immediate dominator of the block is reached */
func computeFrontier(fn *ir.Func, dt DominatorTree) map[int][]*ir.BasicBlock {
    df := make(map[int]map[int]*ir.BasicBlock)

    /* every block with two or more predecessors is a join point */
    for _, bb := range fn.Blocks() {
        if len(bb.Pred) < 2 {
            continue
        }

        /* walk up from each predecessor */
        for _, p := range bb.Pred {
            for r := p; r != nil && r != dt.DominatedBy[bb.Id]; r = dt.DominatedBy[r.Id] {
                if df[r.Id] == nil {
                    df[r.Id] = make(map[int]*ir.BasicBlock)
                }
                df[r.Id][bb.Id] = bb
            }
        }
    }

    /* flatten into sorted lists */
    ret := make(map[int][]*ir.BasicBlock, len(df))
    for id, m := range df {
        v := make([]*ir.BasicBlock, 0, len(m))
        for _, bb := range m {
            v = append(v, bb)
        }
        sort.Slice(v, func(i int, j int) bool {
            return v[i].Id < v[j].Id
        })
        ret[id] = v
    }
    return ret
}

// IteratedFrontier computes the iterated dominance frontier of defs:
// the minimal set of join points where control-flow paths carrying
// distinct definitions converge. The result is sorted by block ID.
func (self DominatorTree) IteratedFrontier(defs []*ir.BasicBlock) []*ir.BasicBlock {
    q := lane.NewQueue()
    in := make(map[int]bool, len(defs))
    out := make(map[int]*ir.BasicBlock)

    /* seed the worklist with the definition blocks */
    for _, bb := range defs {
        if !in[bb.Id] {
            in[bb.Id] = true
            q.Enqueue(bb)
        }
    }

    /* expand until the frontier stops growing */
    for !q.Empty() {
        bb := q.Dequeue().(*ir.BasicBlock)

        /* every frontier block joins the result and is itself a definition site */
        for _, y := range self.DominanceFrontier[bb.Id] {
            if _, ok := out[y.Id]; !ok {
                out[y.Id] = y
                if !in[y.Id] {
                    in[y.Id] = true
                    q.Enqueue(y)
                }
            }
        }
    }

    /* flatten into a sorted list */
    ret := make([]*ir.BasicBlock, 0, len(out))
    for _, bb := range out {
        ret = append(ret, bb)
    }
    sort.Slice(ret, func(i int, j int) bool {
        return ret[i].Id < ret[j].Id
    })
    return ret
}
