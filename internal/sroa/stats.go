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
    `go.uber.org/atomic`
)

/* Monotonic process-wide aggregates. Functions may be optimized from
 * several goroutines at once, each owning a disjoint function, so the
 * counters are the only shared state and they are atomic. */

var (
    numReplaced = atomic.NewInt64(0)
    numPromoted = atomic.NewInt64(0)
)

// Replaced returns the total number of aggregate slots broken up since
// process start.
func Replaced() int64 {
    return numReplaced.Load()
}

// Promoted returns the total number of scalar slots promoted to SSA
// values since process start.
func Promoted() int64 {
    return numPromoted.Load()
}
