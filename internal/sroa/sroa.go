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
    `github.com/mirkit/mir/internal/ir`
    `github.com/mirkit/mir/internal/opts`
    `go.uber.org/zap`
)

// Result is what a single run reports back to its caller: whether the
// function was structurally changed at all, and how many slots were
// split up or promoted along the way.
type Result struct {
    Changed  bool
    Replaced int
    Promoted int
}

/* the fixpoint driver moves through these states every round */
type _State uint8

const (
    _Collecting _State = iota
    _Splitting
    _Promoting
    _Done
)

// Run drives splitting and promotion over fn to a fixpoint. The
// function is mutated in place, the driver owns it exclusively for the
// duration of the call.
func Run(fn *ir.Func, o opts.Options) Result {
    var ret Result
    var wl []*ir.IrAlloca

    /* the trace channel is optional, never required for correctness */
    log := o.Logger
    if log == nil {
        log = zap.NewNop()
    }

    /* predecessor lists feed the dominance analysis */
    fn.Rebuild()

    /* Collecting: gather every stack slot in the entry block */
    state := _Collecting
    for _, p := range fn.Root.Ins {
        if slot, ok := p.(*ir.IrAlloca); ok {
            wl = append(wl, slot)
        }
    }

    /* every round either strictly shrinks the worklist or ends the
     * loop, so this terminates, the round cap is a safety valve only */
    round := 0
    state = _Splitting
    for state != _Done {
        if round++; round > o.MaxRounds {
            log.Warn("round limit reached before fixpoint",
                zap.String("func", fn.Name),
                zap.Int("rounds", o.MaxRounds))
            break
        }

        /* the dominator tree is valid for the whole round, splitting
         * does not touch the block structure */
        dt := BuildDominatorTree(fn)

        /* Splitting */
        var subs []*ir.IrAlloca
        var tryp []*ir.IrAlloca
        for _, slot := range wl {
            switch classify(slot, &o) {
                /* dead slot, erase outright */
                case _SlotDead: {
                    log.Debug("unused slot erased", zap.String("slot", slot.Name()))
                    slot.Parent().Erase(slot)
                    ret.Changed = true
                }

                /* zero-size allocation, meaningless, remove without
                 * producing replacements */
                case _SlotZeroSize: {
                    log.Debug("zero-size slot removed", zap.String("slot", slot.Name()))
                    retireSlot(slot)
                    ret.Changed = true
                }

                /* splittable aggregate */
                case _SlotSplit: {
                    ns := splitSlot(fn, slot, log)
                    subs = append(subs, ns...)
                    ret.Changed = true
                    ret.Replaced += len(ns)
                    numReplaced.Add(int64(len(ns)))
                }

                /* everything else gets one shot at promotion */
                case _SlotTryPromote: {
                    tryp = append(tryp, slot)
                }
            }
        }

        /* Promoting: the whole eligible batch at once, the dominance
         * frontiers are shared across it */
        state = _Promoting
        batch := make([]*ir.IrAlloca, 0, len(tryp) + len(subs))
        promo := make(map[*ir.IrAlloca]bool)
        batch = append(batch, tryp...)
        batch = append(batch, subs...)

        /* select the promotable slots */
        var cand []*ir.IrAlloca
        for _, slot := range batch {
            if CanPromote(slot) {
                promo[slot] = true
                cand = append(cand, slot)
            }
        }

        /* run the promoter on the batch */
        if n := promoteSlots(fn, dt, cand, log); n != 0 {
            ret.Changed = true
            ret.Promoted += n
            numPromoted.Add(int64(n))
        }

        /* next round: the sub-slots that were not just promoted. A
         * slot that failed both stages is dropped for good, its
         * use-list cannot improve in a later round. */
        wl = wl[:0]
        for _, slot := range subs {
            if !promo[slot] {
                wl = append(wl, slot)
            }
        }
        if state = _Splitting; len(wl) == 0 {
            state = _Done
        }
    }

    log.Debug("fixpoint reached",
        zap.String("func", fn.Name),
        zap.Int("rounds", round),
        zap.Bool("changed", ret.Changed),
        zap.Int("replaced", ret.Replaced),
        zap.Int("promoted", ret.Promoted))
    return ret
}

type _SlotClass uint8

const (
    _SlotDead _SlotClass = iota
    _SlotZeroSize
    _SlotSplit
    _SlotTryPromote
)

/* decide what the splitting stage does with a slot. Oversized arrays
 * deliberately fall through to the promotion bucket where they fail
 * CanPromote and drop out, unsplittable aggregates are never retried. */
func classify(slot *ir.IrAlloca, o *opts.Options) _SlotClass {
    if ir.UseEmpty(slot) {
        return _SlotDead
    }

    /* scalars go straight to promotion */
    if !ir.IsAggregate(slot.T) {
        return _SlotTryPromote
    }

    /* aggregates must pass the eligibility oracle first */
    if !CanSplit(slot) {
        return _SlotTryPromote
    }

    /* size guards */
    if slot.T.Size() == 0 {
        return _SlotZeroSize
    }
    if p, ok := slot.T.(*ir.ArrayType); ok && !o.CanSplitArray(p.Len) {
        return _SlotTryPromote
    }
    return _SlotSplit
}
