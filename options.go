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
    `fmt`

    `github.com/mirkit/mir/internal/opts`
    `go.uber.org/zap`
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithMaxArrayElements sets the largest element count for which an
// array-typed slot is still broken up. Larger aggregates are left to
// other optimizations to avoid an explosion of slots.
//
// This value can also be configured with the `MIR_MAX_ARRAY_ELEMENTS`
// environment variable.
//
// The default value of this option is "5".
func WithMaxArrayElements(n int) Option {
    if n < 1 {
        panic(fmt.Sprintf("mir: invalid max array elements: %d", n))
    } else {
        return func(o *opts.Options) { o.MaxArrayElements = n }
    }
}

// WithMaxRounds bounds the number of split/promote rounds for one
// function. The fixpoint loop terminates on its own, the bound is a
// safety valve against pathological inputs: hitting it is reported on
// the trace logger, never an error.
//
// This value can also be configured with the `MIR_MAX_ROUNDS`
// environment variable.
//
// The default value of this option is "64".
func WithMaxRounds(n int) Option {
    if n < 1 {
        panic(fmt.Sprintf("mir: invalid max rounds: %d", n))
    } else {
        return func(o *opts.Options) { o.MaxRounds = n }
    }
}

// WithLogger directs the structured decision trace (slots considered,
// offset maps, splits and promotions performed) to l. The trace exists
// for debugging, correctness never depends on it. The default is a
// no-op logger.
func WithLogger(l *zap.Logger) Option {
    return func(o *opts.Options) { o.Logger = l }
}
