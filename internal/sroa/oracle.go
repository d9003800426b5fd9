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
)

/* Eligibility is decided purely from use-lists. Both predicates answer
 * false for anything they do not recognize: an unknown use means the
 * address may have escaped, and an escaped slot must not be touched. */

// CanSplit reports whether every use of the aggregate slot is simple
// enough for the slot to be broken up into per-field slots.
func CanSplit(slot *ir.IrAlloca) bool {
    return splittableUses(slot, slot)
}

func splittableUses(v ir.Value, slot *ir.IrAlloca) bool {
    for _, u := range v.Uses() {
        switch p := u.User.(type) {
            /* reading through the address is fine unless volatile */
            case *ir.IrLoad: {
                if p.Volatile {
                    return false
                }
            }

            /* writing through the address is fine, storing the address
             * itself into memory means it escaped */
            case *ir.IrStore: {
                if p.Volatile || p.V == v {
                    return false
                }
            }

            /* constant-offset address computations only, and when the
             * field is itself a pointer, its uses are held to the same
             * standard transitively */
            case *ir.IrFieldAddr: {
                if u.Slot != &p.Mem {
                    return false
                }
                if _, ok := constOffset(p.Off); !ok {
                    return false
                }
                if _, ok := p.T.(*ir.PtrType); ok && !splittableUses(p, slot) {
                    return false
                }
            }

            /* lifetime markers carry no semantic value */
            case *ir.IrLifetime: {
                break
            }

            /* comparing the address against a field address into the
             * same slot is a rare but harmless pattern */
            case *ir.IrCompare: {
                if !isSameSlotCompare(p, u.Slot, slot) {
                    return false
                }
            }

            /* casts are only tolerated as lifetime-marker plumbing */
            case *ir.IrBitCast: {
                if !onlyLifetimeUses(p) {
                    return false
                }
            }

            /* unknown call, arithmetic, terminator ... the address escapes */
            default: {
                return false
            }
        }
    }
    return true
}

// CanPromote reports whether the slot holds exactly one scalar value
// with no remaining structural accesses, so that its loads and stores
// can be rewritten into SSA values.
func CanPromote(slot *ir.IrAlloca) bool {
    if !ir.IsScalar(slot.T) {
        return false
    }

    /* same rule set as splitting, minus structure */
    for _, u := range slot.Uses() {
        switch p := u.User.(type) {
            case *ir.IrLoad: {
                if p.Volatile {
                    return false
                }
            }

            case *ir.IrStore: {
                if p.Volatile || p.V == ir.Value(slot) {
                    return false
                }
            }

            /* only the degenerate zero-offset form, and only when it
             * merely feeds lifetime markers */
            case *ir.IrFieldAddr: {
                if u.Slot != &p.Mem {
                    return false
                }
                if off, ok := constOffset(p.Off); !ok || off != 0 {
                    return false
                }
                if !onlyLifetimeUses(p) {
                    return false
                }
            }

            case *ir.IrLifetime: {
                break
            }

            case *ir.IrBitCast: {
                if !onlyLifetimeUses(p) {
                    return false
                }
            }

            default: {
                return false
            }
        }
    }
    return true
}

func constOffset(v ir.Value) (int64, bool) {
    if c, ok := v.(*ir.ConstInt); ok {
        return c.V, true
    } else {
        return 0, false
    }
}

func onlyLifetimeUses(v ir.Value) bool {
    for _, u := range v.Uses() {
        if _, ok := u.User.(*ir.IrLifetime); !ok {
            return false
        }
    }
    return true
}

/* the operand opposite to slotref must be a field address that resolves
 * into the same slot */
func isSameSlotCompare(p *ir.IrCompare, slotref *ir.Value, slot *ir.IrAlloca) bool {
    var other ir.Value

    /* pick the other operand */
    if slotref == &p.X {
        other = p.Y
    } else {
        other = p.X
    }

    /* it must be a field address based, possibly through further field
     * addresses, on the very same slot */
    fa, ok := other.(*ir.IrFieldAddr)
    if !ok {
        return false
    }
    return baseSlot(fa) == slot
}

// baseSlot walks an address computation back to the stack slot it is
// based on, or nil if the chain does not start at one.
func baseSlot(v ir.Value) *ir.IrAlloca {
    for {
        switch p := v.(type) {
            case *ir.IrAlloca    : return p
            case *ir.IrFieldAddr : v = p.Mem
            case *ir.IrBitCast   : v = p.V
            default              : return nil
        }
    }
}
