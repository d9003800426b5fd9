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
    `testing`

    `github.com/stretchr/testify/require`
)

func TestTypes_Size(t *testing.T) {
    require.Equal(t, int64(4), I32.Size())
    require.Equal(t, int64(8), I64.Size())
    require.Equal(t, int64(8), F64.Size())
    require.Equal(t, int64(8), PointerTo(I8).Size())
    require.Equal(t, int64(24), (&ArrayType { Len: 3, Elem: I64 }).Size())
    require.Equal(t, int64(12), (&StructType { Fields: []Type { I32, I32, I32 } }).Size())
    require.Equal(t, int64(0), (&StructType {}).Size())
    require.Equal(t, int64(0), (&ArrayType { Len: 0, Elem: I64 }).Size())
}

func TestTypes_Classify(t *testing.T) {
    require.True(t, IsScalar(I64))
    require.True(t, IsScalar(F32))
    require.True(t, IsScalar(PointerTo(I64)))
    require.False(t, IsScalar(&ArrayType { Len: 2, Elem: I8 }))
    require.False(t, IsScalar(&StructType { Fields: []Type { I8 } }))
    require.True(t, IsAggregate(&ArrayType { Len: 2, Elem: I8 }))
    require.True(t, IsAggregate(&StructType {}))
    require.False(t, IsAggregate(I64))
}

func TestTypes_TypeAt(t *testing.T) {
    st := &StructType { Fields: []Type { I64, F64, I8 } }
    at := &ArrayType { Len: 4, Elem: I32 }
    require.Equal(t, Type(F64), TypeAt(st, 1))
    require.Equal(t, Type(I8), TypeAt(st, 2))
    require.Equal(t, Type(I32), TypeAt(at, 3))
    require.Panics(t, func() { TypeAt(st, 3) })
    require.Panics(t, func() { TypeAt(at, -1) })
    require.Panics(t, func() { TypeAt(I64, 0) })
}

func TestTypes_String(t *testing.T) {
    require.Equal(t, "i64", I64.String())
    require.Equal(t, "f32", F32.String())
    require.Equal(t, "*i8", PointerTo(I8).String())
    require.Equal(t, "[4]i32", (&ArrayType { Len: 4, Elem: I32 }).String())
    require.Equal(t, "{i64, f64}", (&StructType { Fields: []Type { I64, F64 } }).String())
    require.Equal(t, "%point", (&StructType { Name: "point", Fields: []Type { I64, I64 } }).String())
}
