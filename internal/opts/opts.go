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

package opts

import (
	"os"
	"strconv"

	"go.uber.org/zap"
)

const (
	_DefaultMaxArrayElements = 5  // aggregates larger than this are left to other optimizations
	_DefaultMaxRounds        = 64 // safety valve for the split/promote fixpoint loop
)

var (
	MaxArrayElements = parseOrDefault("MIR_MAX_ARRAY_ELEMENTS", _DefaultMaxArrayElements, 1)
	MaxRounds        = parseOrDefault("MIR_MAX_ROUNDS", _DefaultMaxRounds, 1)
)

type Options struct {
	MaxArrayElements int
	MaxRounds        int
	Logger           *zap.Logger
}

func (self *Options) CanSplitArray(n int64) bool {
	return n <= int64(self.MaxArrayElements)
}

func GetDefaultOptions() Options {
	return Options{
		MaxArrayElements: MaxArrayElements,
		MaxRounds:        MaxRounds,
		Logger:           zap.NewNop(),
	}
}

func parseOrDefault(key string, def int, min int) int {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := strconv.ParseUint(env, 0, 64); err != nil {
		panic("mir: invalid value for " + key)
	} else if ret := int(val); ret < min {
		panic("mir: value too small for " + key)
	} else {
		return ret
	}
}
