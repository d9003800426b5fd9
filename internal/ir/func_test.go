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
    `testing`

    `github.com/stretchr/testify/require`
)

/* render the CFG in graphviz format, for eyeballing failed tests */
func cfgdot(fn *Func) string {
    buf := []string { "digraph " + fn.Name + " {" }
    for _, bb := range fn.Blocks() {
        for it := bb.Term.Successors(); it.Next(); {
            if v, ok := it.Value(); ok {
                buf = append(buf, fmt.Sprintf(`    bb_%d -> bb_%d [label="%d"]`, bb.Id, it.Block().Id, v))
            } else {
                buf = append(buf, fmt.Sprintf("    bb_%d -> bb_%d", bb.Id, it.Block().Id))
            }
        }
    }
    buf = append(buf, "}")
    return strings.Join(buf, "\n")
}

func TestFunc_Blocks(t *testing.T) {
    fn := NewFunc("blocks")
    b0 := fn.NewBlock()
    b1 := fn.NewBlock()
    b2 := fn.NewBlock()
    b3 := fn.NewBlock()
    cc := b0.Append(&IrCall { T: I64, Fn: "cond" }).(*IrCall)
    b0.TermCondition(cc, b1, b2)
    b1.TermBranch(b3)
    b2.TermBranch(b3)
    b3.TermReturn()

    /* preorder: true branch first, then the false branch */
    ids := []int{}
    for _, bb := range fn.Blocks() {
        ids = append(ids, bb.Id)
    }
    require.Equal(t, []int { 0, 1, 3, 2 }, ids)
    require.Same(t, b0, fn.Root)
}

func TestFunc_Rebuild(t *testing.T) {
    fn := NewFunc("rebuild")
    b0 := fn.NewBlock()
    b1 := fn.NewBlock()
    b2 := fn.NewBlock()
    cc := b0.Append(&IrCall { T: I64, Fn: "cond" }).(*IrCall)

    /* both switch cases target the same block */
    b0.TermSwitch(cc, b1, map[int64]*BasicBlock { 1: b2, 2: b2 })
    b1.TermBranch(b2)
    b2.TermReturn()
    fn.Rebuild()
    require.Equal(t, []*BasicBlock(nil), b0.Pred)
    require.Equal(t, []*BasicBlock { b0 }, b1.Pred)
    require.Len(t, b2.Pred, 2)
}

func TestFunc_NewSlot(t *testing.T) {
    fn := NewFunc("slots")
    bb := fn.NewBlock()
    s0 := fn.NewSlot(I64)
    bb.Append(&IrStore { V: Int64(1), Mem: s0 })
    bb.TermReturn()

    /* new slots land after the existing leading run, before the body */
    s1 := fn.NewSlot(F64)
    require.Equal(t, []Instr { s0, s1 }, bb.Ins[:2])
    require.IsType(t, &IrStore{}, bb.Ins[2])
}

func TestFunc_ReplaceAllUses(t *testing.T) {
    fn := NewFunc("rauw")
    bb := fn.NewBlock()
    slot := fn.NewSlot(I64)
    ld := bb.Append(&IrLoad { T: I64, Mem: slot }).(*IrLoad)
    st := bb.Append(&IrStore { V: ld, Mem: slot }).(*IrStore)
    bb.TermReturn(ld)

    /* slot: load + store, load: store + ret */
    require.Len(t, slot.Uses(), 2)
    require.Len(t, ld.Uses(), 2)

    /* erasing a live value must be refused */
    require.Panics(t, func() { bb.Erase(ld) })

    /* substitute and check the rewiring */
    rep := Int64(42)
    ReplaceAllUses(ld, rep)
    require.True(t, UseEmpty(ld))
    require.Len(t, rep.Uses(), 2)
    require.Equal(t, Value(rep), st.V)
    require.Equal(t, Value(rep), bb.Term.(*IrReturn).R[0])
    bb.Erase(ld)
    require.Len(t, slot.Uses(), 1)
}

func TestFunc_Dump(t *testing.T) {
    fn := NewFunc("dump")
    bb := fn.NewBlock()
    slot := fn.NewSlot(&StructType { Name: "pair", Fields: []Type { I64, I64 } })
    fa := bb.Append(&IrFieldAddr { T: I64, Mem: slot, Off: Int64(1) }).(*IrFieldAddr)
    bb.Append(&IrStore { V: Int64(7), Mem: fa })
    bb.TermReturn()
    s := fn.String()
    require.Contains(t, s, "func dump {")
    require.Contains(t, s, "alloca %pair")
    require.Contains(t, s, "[$1]")
    require.Contains(t, s, "store $7")
    require.Contains(t, s, "ret {}")
}

func TestFunc_Dot(t *testing.T) {
    fn := NewFunc("dot")
    b0 := fn.NewBlock()
    b1 := fn.NewBlock()
    b2 := fn.NewBlock()
    cc := b0.Append(&IrCall { T: I64, Fn: "cond" }).(*IrCall)
    b0.TermCondition(cc, b1, b2)
    b1.TermReturn()
    b2.TermReturn()
    s := cfgdot(fn)
    require.Contains(t, s, "digraph dot {")
    require.Contains(t, s, `bb_0 -> bb_1 [label="1"]`)
    require.Contains(t, s, "bb_0 -> bb_2")
}

func TestVerify_Clean(t *testing.T) {
    fn := NewFunc("clean")
    b0 := fn.NewBlock()
    b1 := fn.NewBlock()
    b2 := fn.NewBlock()
    b3 := fn.NewBlock()
    cc := b0.Append(&IrCall { T: I64, Fn: "cond" }).(*IrCall)
    b0.TermCondition(cc, b1, b2)
    b1.TermBranch(b3)
    b2.TermBranch(b3)
    phi := b3.AddPhi(&IrPhi { T: I64 })
    phi.SetIncoming(b1, Int64(1))
    phi.SetIncoming(b2, Int64(2))
    b3.TermReturn(phi)
    require.NoError(t, Verify(fn))
}

func TestVerify_BadPhi(t *testing.T) {
    fn := NewFunc("badphi")
    b0 := fn.NewBlock()
    b1 := fn.NewBlock()
    b2 := fn.NewBlock()
    cc := b0.Append(&IrCall { T: I64, Fn: "cond" }).(*IrCall)
    b0.TermCondition(cc, b1, b2)
    b1.TermBranch(b2)
    phi := b2.AddPhi(&IrPhi { T: I64 })
    phi.SetIncoming(b1, Int64(1))
    b2.TermReturn(phi)

    /* missing the b0 edge */
    err := Verify(fn)
    require.Error(t, err)
    require.Contains(t, err.Error(), "incoming edges")
}
