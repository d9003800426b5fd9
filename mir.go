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

package mir

import (
    `github.com/mirkit/mir/internal/ir`
    `github.com/mirkit/mir/internal/opts`
    `github.com/mirkit/mir/internal/sroa`
)

// Result reports what one Optimize call did to the function.
type Result = sroa.Result

// Optimize decomposes the stack-allocated aggregates of fn into
// independent per-field slots where provably safe, and promotes scalar
// slots with no aliasing uses into SSA values, repeating both to a
// fixpoint. The function is mutated in place and must not be touched
// by anything else for the duration of the call. Separate functions
// may be optimized concurrently.
//
// Failing to transform anything is not an error: a slot whose address
// escapes, or whose shape the optimizer does not understand, is simply
// left alone.
func Optimize(fn *ir.Func, options ...Option) Result {
    o := opts.GetDefaultOptions()
    for _, f := range options {
        f(&o)
    }
    return sroa.Run(fn, o)
}

// SlotsReplaced returns the process-wide count of aggregate stack
// slots broken up since start.
func SlotsReplaced() int64 {
    return sroa.Replaced()
}

// SlotsPromoted returns the process-wide count of scalar stack slots
// promoted to SSA values since start.
func SlotsPromoted() int64 {
    return sroa.Promoted()
}
