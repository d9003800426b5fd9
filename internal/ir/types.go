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
    `strings`
)

// Type describes the storage layout of a value. Aggregate offsets are
// element or field indices, not byte offsets.
type Type interface {
    fmt.Stringer
    Size() int64
    typetag()
}

func (*IntType)    typetag() {}
func (*FloatType)  typetag() {}
func (*PtrType)    typetag() {}
func (*ArrayType)  typetag() {}
func (*StructType) typetag() {}

type IntType struct {
    Bits uint8
}

type FloatType struct {
    Bits uint8
}

type PtrType struct {
    Elem Type
}

type ArrayType struct {
    Len  int64
    Elem Type
}

type StructType struct {
    Name   string
    Fields []Type
}

var (
    I8  = &IntType { Bits: 8 }
    I16 = &IntType { Bits: 16 }
    I32 = &IntType { Bits: 32 }
    I64 = &IntType { Bits: 64 }
    F32 = &FloatType { Bits: 32 }
    F64 = &FloatType { Bits: 64 }
)

const (
    PtrSize = 8
)

func (self *IntType)   Size() int64 { return int64(self.Bits / 8) }
func (self *FloatType) Size() int64 { return int64(self.Bits / 8) }
func (self *PtrType)   Size() int64 { return PtrSize }

func (self *ArrayType) Size() int64 {
    return self.Len * self.Elem.Size()
}

func (self *StructType) Size() (n int64) {
    for _, f := range self.Fields {
        n += f.Size()
    }
    return
}

func (self *IntType)   String() string { return fmt.Sprintf("i%d", self.Bits) }
func (self *FloatType) String() string { return fmt.Sprintf("f%d", self.Bits) }
func (self *PtrType)   String() string { return "*" + self.Elem.String() }

func (self *ArrayType) String() string {
    return fmt.Sprintf("[%d]%s", self.Len, self.Elem)
}

func (self *StructType) String() string {
    if self.Name != "" {
        return "%" + self.Name
    }

    /* anonymous struct, dump the field types */
    nb := len(self.Fields)
    fs := make([]string, 0, nb)

    /* add every field */
    for _, f := range self.Fields {
        fs = append(fs, f.String())
    }

    /* join them together */
    return fmt.Sprintf(
        "{%s}",
        strings.Join(fs, ", "),
    )
}

// PointerTo returns the type of an address of a t value.
func PointerTo(t Type) *PtrType {
    return &PtrType { Elem: t }
}

// IsScalar reports whether t fits in a single virtual register.
func IsScalar(t Type) bool {
    switch t.(type) {
        case *IntType   : return true
        case *FloatType : return true
        case *PtrType   : return true
        default         : return false
    }
}

// IsAggregate reports whether t is a fixed-size array or a struct.
func IsAggregate(t Type) bool {
    switch t.(type) {
        case *ArrayType  : return true
        case *StructType : return true
        default          : return false
    }
}

// TypeAt resolves the element type of an aggregate at a constant index.
// The caller must have proven that t is an aggregate and that the index
// is in range, anything else is a malformed function.
func TypeAt(t Type, i int64) Type {
    switch p := t.(type) {
        case *ArrayType: {
            if i < 0 || i >= p.Len {
                panic(fmt.Sprintf("mir: element index %d out of range for %s", i, p))
            }
            return p.Elem
        }

        /* struct fields are indexed in declaration order */
        case *StructType: {
            if i < 0 || i >= int64(len(p.Fields)) {
                panic(fmt.Sprintf("mir: field index %d out of range for %s", i, p))
            }
            return p.Fields[i]
        }

        default: {
            panic("mir: not an aggregate type: " + t.String())
        }
    }
}
