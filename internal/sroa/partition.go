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
)

// PartitionByOffset buckets every direct field-address use of the slot
// by its constant offset. Offsets are returned in ascending order so
// that the slots materialized from the buckets come out in a
// reproducible order. Non-address uses (lifetime markers and friends)
// are not placed in any bucket, they are dropped with the slot itself.
func PartitionByOffset(slot *ir.IrAlloca) ([]int64, map[int64][]*ir.IrFieldAddr) {
    buckets := make(map[int64][]*ir.IrFieldAddr)

    /* scan the direct uses */
    for _, u := range slot.Uses() {
        if p, ok := u.User.(*ir.IrFieldAddr); ok && u.Slot == &p.Mem {
            if off, ok := constOffset(p.Off); ok {
                buckets[off] = append(buckets[off], p)
            } else {
                panic("mir: non-constant offset on a slot that passed CanSplit: " + p.String())
            }
        }
    }

    /* sort the bucket keys */
    offs := make([]int64, 0, len(buckets))
    for off := range buckets {
        offs = append(offs, off)
    }
    sort.Slice(offs, func(i int, j int) bool {
        return offs[i] < offs[j]
    })
    return offs, buckets
}
