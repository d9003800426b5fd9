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

    `go.uber.org/multierr`
)

// Verify checks the structural invariants the optimizer relies on and
// reports every violation it finds. It is a debugging aid: the
// transformations themselves assume a well-formed function and are
// entitled to panic on one that is not.
func Verify(fn *Func) error {
    var err error

    /* entry block must exist */
    if fn.Root == nil {
        return fmt.Errorf("mir: function %s has no entry block", fn.Name)
    }

    /* check every reachable block */
    for _, bb := range fn.Blocks() {
        if bb.Term == nil {
            err = multierr.Append(err, fmt.Errorf("mir: bb_%d does not terminate", bb.Id))
            continue
        }

        /* predecessor set, for phi checking */
        preds := make(map[int]bool, len(bb.Pred))
        for _, p := range bb.Pred {
            preds[p.Id] = true
        }

        /* every phi must carry one incoming value per predecessor */
        for _, phi := range bb.Phi {
            if len(phi.V) != len(bb.Pred) {
                err = multierr.Append(err, fmt.Errorf(
                    "mir: bb_%d: phi %s has %d incoming edges, block has %d predecessors",
                    bb.Id, phi.Name(), len(phi.V), len(bb.Pred),
                ))
            }
            for p := range phi.V {
                if !preds[p.Id] {
                    err = multierr.Append(err, fmt.Errorf(
                        "mir: bb_%d: phi %s has an edge from non-predecessor bb_%d",
                        bb.Id, phi.Name(), p.Id,
                    ))
                }
            }
        }

        /* use-lists must point back at the operand slots */
        all := phiInstrs(bb)
        all = append(all, bb.Ins...)
        all = append(all, bb.Term)
        for _, ins := range all {
            for _, p := range ins.Operands() {
                if *p != nil && !hasUse(*p, p) {
                    err = multierr.Append(err, fmt.Errorf(
                        "mir: bb_%d: %q reads %s which does not list it as a use",
                        bb.Id, ins.String(), refname(*p),
                    ))
                }
            }
        }
    }
    return err
}

func phiInstrs(bb *BasicBlock) []Instr {
    ret := make([]Instr, 0, len(bb.Phi))
    for _, p := range bb.Phi { ret = append(ret, p) }
    return ret
}

func hasUse(v Value, slot *Value) bool {
    for _, u := range v.Uses() {
        if u.Slot == slot {
            return true
        }
    }
    return false
}
