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
    `github.com/davecgh/go-spew/spew`
    `github.com/mirkit/mir/internal/ir`
    `go.uber.org/zap`
)

// splitSlot breaks one aggregate slot up into one scalar or
// sub-aggregate slot per distinct constant offset. The caller has
// already proven CanSplit and checked the size guards. The original
// slot is retired, the replacement slots are returned for the next
// round, their count is the replaced metric.
func splitSlot(fn *ir.Func, slot *ir.IrAlloca, log *zap.Logger) []*ir.IrAlloca {
    offs, buckets := PartitionByOffset(slot)
    subs := make([]*ir.IrAlloca, 0, len(offs))

    /* deep dump of the offset map, only when the trace is listening */
    if ce := log.Check(zap.DebugLevel, "slot partitioned"); ce != nil {
        ce.Write(
            zap.String("slot", slot.String()),
            zap.Int64s("offsets", offs),
            zap.String("buckets", spew.Sdump(buckets)),
        )
    }

    /* deal with the slot one offset at a time */
    for _, off := range offs {
        ft := ir.TypeAt(slot.T, off)
        ns := fn.NewSlot(ft)

        /* the field-address indirection collapses away: every use of
         * every address at this offset now reads the new slot directly */
        for _, fa := range buckets[off] {
            ir.ReplaceAllUses(fa, ns)
            fa.Parent().Erase(fa)
        }

        /* sub-slots may themselves be aggregates, they re-enter the
         * worklist on the next round */
        subs = append(subs, ns)
        log.Debug("slot replaced",
            zap.Int64("offset", off),
            zap.String("old", slot.Name()),
            zap.String("new", ns.String()),
            zap.Int("accesses", len(buckets[off])))
    }

    /* retire the original */
    retireSlot(slot)
    return subs
}

// retireSlot erases a slot whose meaningful uses have all been
// rewritten away. Lifetime-marker plumbing is discarded: the object it
// described no longer exists. Anything else still hanging on to the
// address reads an explicitly undefined value from now on.
func retireSlot(slot *ir.IrAlloca) {
    uses := slot.Uses()
    refs := make([]ir.Use, len(uses))
    copy(refs, uses)

    /* drop the marker plumbing */
    for _, u := range refs {
        switch p := u.User.(type) {
            case *ir.IrLifetime: {
                p.Parent().Erase(p)
            }

            /* casts that only feed lifetime markers: drop the markers,
             * then the cast */
            case *ir.IrBitCast: {
                eraseWithUsers(p, p.Parent())
            }

            /* likewise for zero-offset field addresses left over from
             * promotion */
            case *ir.IrFieldAddr: {
                eraseWithUsers(p, p.Parent())
            }
        }
    }

    /* stray uses read undef from now on */
    if !ir.UseEmpty(slot) {
        ir.ReplaceAllUses(slot, ir.NewUndef(slot.Type()))
    }
    slot.Parent().Erase(slot)
}

func eraseWithUsers(v ir.Value, bb *ir.BasicBlock) {
    uses := v.Uses()
    refs := make([]ir.Use, len(uses))
    copy(refs, uses)

    /* users first, then the value itself */
    for _, u := range refs {
        u.User.Parent().Erase(u.User)
    }
    bb.Erase(v.(ir.Instr))
}
