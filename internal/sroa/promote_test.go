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
    `testing`

    `github.com/mirkit/mir/internal/ir`
    `github.com/stretchr/testify/require`
    `go.uber.org/zap`
)

func nomemory(t *testing.T, fn *ir.Func) {
    for _, bb := range fn.Blocks() {
        for _, ins := range bb.Ins {
            switch ins.(type) {
                case *ir.IrLoad  : t.Fatalf("load survived promotion: %s", ins)
                case *ir.IrStore : t.Fatalf("store survived promotion: %s", ins)
            }
        }
    }
}

func TestPromote_StraightLine(t *testing.T) {
    fn := ir.NewFunc("promote_line")
    bb := fn.NewBlock()
    slot := fn.NewSlot(ir.I64)
    val := ir.Int64(42)
    bb.Append(&ir.IrStore { V: val, Mem: slot })
    ld := bb.Append(&ir.IrLoad { T: ir.I64, Mem: slot }).(*ir.IrLoad)
    use := bb.Append(&ir.IrCall { T: ir.I64, Fn: "use", In: []ir.Value { ld } }).(*ir.IrCall)
    bb.TermReturn()
    fn.Rebuild()

    require.True(t, CanPromote(slot))
    n := promoteSlots(fn, BuildDominatorTree(fn), []*ir.IrAlloca { slot }, zap.NewNop())
    require.Equal(t, 1, n)

    /* the load is folded straight into the stored constant */
    require.Equal(t, ir.Value(val), use.In[0])
    nomemory(t, fn)
    require.Empty(t, entryAllocas(fn))
    require.NoError(t, ir.Verify(fn))
}

func TestPromote_DiamondPhi(t *testing.T) {
    fn := ir.NewFunc("promote_diamond")
    b0 := fn.NewBlock()
    b1 := fn.NewBlock()
    b2 := fn.NewBlock()
    b3 := fn.NewBlock()
    slot := fn.NewSlot(ir.I64)

    c1 := ir.Int64(1)
    c2 := ir.Int64(2)
    b0.TermCondition(condval(b0), b1, b2)
    b1.Append(&ir.IrStore { V: c1, Mem: slot })
    b1.TermBranch(b3)
    b2.Append(&ir.IrStore { V: c2, Mem: slot })
    b2.TermBranch(b3)
    ld := b3.Append(&ir.IrLoad { T: ir.I64, Mem: slot }).(*ir.IrLoad)
    ret := b3.Append(&ir.IrCall { T: ir.I64, Fn: "use", In: []ir.Value { ld } }).(*ir.IrCall)
    b3.TermReturn()
    fn.Rebuild()

    promoteSlots(fn, BuildDominatorTree(fn), []*ir.IrAlloca { slot }, zap.NewNop())

    /* exactly one phi at the join, fed by both branches */
    require.Len(t, b3.Phi, 1)
    phi := b3.Phi[0]
    require.Equal(t, ir.Value(phi), ret.In[0])
    require.Equal(t, ir.Value(c1), phi.Incoming(b1))
    require.Equal(t, ir.Value(c2), phi.Incoming(b2))
    nomemory(t, fn)
    require.NoError(t, ir.Verify(fn))
}

func TestPromote_LoadBeforeStore(t *testing.T) {
    fn := ir.NewFunc("promote_undef")
    bb := fn.NewBlock()
    slot := fn.NewSlot(ir.I64)
    ld := bb.Append(&ir.IrLoad { T: ir.I64, Mem: slot }).(*ir.IrLoad)
    use := bb.Append(&ir.IrCall { T: ir.I64, Fn: "use", In: []ir.Value { ld } }).(*ir.IrCall)
    bb.Append(&ir.IrStore { V: ir.Int64(9), Mem: slot })
    bb.TermReturn()
    fn.Rebuild()

    promoteSlots(fn, BuildDominatorTree(fn), []*ir.IrAlloca { slot }, zap.NewNop())

    /* reading before any write yields undef */
    _, ok := use.In[0].(*ir.Undef)
    require.True(t, ok, "expected undef, got %s", use.In[0])
    nomemory(t, fn)
}

func TestPromote_LoopCarried(t *testing.T) {
    fn := ir.NewFunc("promote_loop")
    b0 := fn.NewBlock()
    b1 := fn.NewBlock()
    b2 := fn.NewBlock()
    slot := fn.NewSlot(ir.I64)

    c0 := ir.Int64(0)
    b0.Append(&ir.IrStore { V: c0, Mem: slot })
    b0.TermBranch(b1)
    ld := b1.Append(&ir.IrLoad { T: ir.I64, Mem: slot }).(*ir.IrLoad)
    nxt := b1.Append(&ir.IrCall { T: ir.I64, Fn: "step", In: []ir.Value { ld } }).(*ir.IrCall)
    b1.Append(&ir.IrStore { V: nxt, Mem: slot })
    b1.TermCondition(condval(b1), b1, b2)
    b2.TermReturn()
    fn.Rebuild()

    promoteSlots(fn, BuildDominatorTree(fn), []*ir.IrAlloca { slot }, zap.NewNop())

    /* the loop header merges the initial value with the back edge */
    require.Len(t, b1.Phi, 1)
    phi := b1.Phi[0]
    require.Equal(t, ir.Value(c0), phi.Incoming(b0))
    require.Equal(t, ir.Value(nxt), phi.Incoming(b1))
    require.Equal(t, ir.Value(phi), nxt.In[0])
    nomemory(t, fn)
    require.NoError(t, ir.Verify(fn))
}

func TestPromote_UnwrittenPathIsUndef(t *testing.T) {
    fn := ir.NewFunc("promote_onesided")
    b0 := fn.NewBlock()
    b1 := fn.NewBlock()
    b2 := fn.NewBlock()
    slot := fn.NewSlot(ir.I64)

    c5 := ir.Int64(5)
    b0.TermCondition(condval(b0), b1, b2)
    b1.Append(&ir.IrStore { V: c5, Mem: slot })
    b1.TermBranch(b2)
    b2.Append(&ir.IrLoad { T: ir.I64, Mem: slot })
    b2.TermReturn()
    fn.Rebuild()

    promoteSlots(fn, BuildDominatorTree(fn), []*ir.IrAlloca { slot }, zap.NewNop())

    require.Len(t, b2.Phi, 1)
    phi := b2.Phi[0]
    require.Equal(t, ir.Value(c5), phi.Incoming(b1))
    _, ok := phi.Incoming(b0).(*ir.Undef)
    require.True(t, ok, "edge without a store must carry undef")
    require.NoError(t, ir.Verify(fn))
}

func TestPromote_Batch(t *testing.T) {
    fn := ir.NewFunc("promote_batch")
    bb := fn.NewBlock()
    a := fn.NewSlot(ir.I64)
    b := fn.NewSlot(ir.F64)
    bb.Append(&ir.IrStore { V: ir.Int64(1), Mem: a })
    bb.Append(&ir.IrStore { V: ir.Int64(2), Mem: b })
    bb.Append(&ir.IrLoad { T: ir.I64, Mem: a })
    bb.Append(&ir.IrLoad { T: ir.F64, Mem: b })
    bb.TermReturn()
    fn.Rebuild()

    n := promoteSlots(fn, BuildDominatorTree(fn), []*ir.IrAlloca { a, b }, zap.NewNop())
    require.Equal(t, 2, n)
    require.Empty(t, entryAllocas(fn))
    nomemory(t, fn)
}
