package shader

import (
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga/wgsl"
)

// typeLayout is the WGSL host-shareable size and alignment of a type.
type typeLayout struct {
	size  uint64
	align uint64
}

// primitiveLayouts maps canonical WGSL scalar, vector and matrix names to their size and alignment.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var primitiveLayouts = map[string]typeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"f16":  {2, 2},
	"bool": {4, 4},

	"vec2<f32>": {8, 8},
	"vec3<f32>": {12, 16},
	"vec4<f32>": {16, 16},
	"vec2<i32>": {8, 8},
	"vec3<i32>": {12, 16},
	"vec4<i32>": {16, 16},
	"vec2<u32>": {8, 8},
	"vec3<u32>": {12, 16},
	"vec4<u32>": {16, 16},
	"vec2<f16>": {4, 4},
	"vec4<f16>": {8, 8},

	"mat2x2<f32>": {16, 8},
	"mat2x3<f32>": {32, 16},
	"mat2x4<f32>": {32, 16},
	"mat3x2<f32>": {24, 8},
	"mat3x3<f32>": {48, 16},
	"mat3x4<f32>": {48, 16},
	"mat4x2<f32>": {32, 8},
	"mat4x3<f32>": {64, 16},
	"mat4x4<f32>": {64, 16},

	"atomic<u32>": {4, 4},
	"atomic<i32>": {4, 4},
}

// vertexFormat pairs a wgpu vertex format with its byte size in a vertex buffer.
type vertexFormat struct {
	format wgpu.VertexFormat
	size   uint64
}

var vertexFormats = map[string]vertexFormat{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"vec2<u32>": {wgpu.VertexFormatUint32x2, 8},
	"vec3<u32>": {wgpu.VertexFormatUint32x3, 12},
	"vec4<u32>": {wgpu.VertexFormatUint32x4, 16},
	"i32":       {wgpu.VertexFormatSint32, 4},
	"vec2<i32>": {wgpu.VertexFormatSint32x2, 8},
	"vec3<i32>": {wgpu.VertexFormatSint32x3, 12},
	"vec4<i32>": {wgpu.VertexFormatSint32x4, 16},
}

// shorthandSuffix expands the scalar suffix of predeclared aliases such as vec3f or mat4x4h.
var shorthandSuffix = map[byte]string{
	'f': "f32",
	'i': "i32",
	'u': "u32",
	'h': "f16",
}

// typeName renders a parsed type in canonical form, expanding predeclared aliases so that
// vec3f and vec3<f32> compare equal.
//
// Parameters:
//   - t: the parsed type, may be nil
//
// Returns:
//   - string: the canonical type name, or "" for a nil type
func typeName(t wgsl.Type) string {
	switch tt := t.(type) {
	case *wgsl.NamedType:
		if len(tt.TypeParams) == 0 {
			return expandShorthand(tt.Name)
		}
		params := make([]string, len(tt.TypeParams))
		for i, p := range tt.TypeParams {
			params[i] = typeName(p)
		}
		return tt.Name + "<" + strings.Join(params, ", ") + ">"
	case *wgsl.ArrayType:
		if tt.Size == nil {
			return "array<" + typeName(tt.Element) + ">"
		}
		if n, ok := literalUint(tt.Size); ok {
			return "array<" + typeName(tt.Element) + ", " + strconv.FormatUint(n, 10) + ">"
		}
		return "array<" + typeName(tt.Element) + ", ?>"
	default:
		return ""
	}
}

func expandShorthand(name string) string {
	if len(name) < 4 {
		return name
	}
	suffix, ok := shorthandSuffix[name[len(name)-1]]
	if !ok {
		return name
	}
	base := name[:len(name)-1]
	switch {
	case len(base) == 4 && strings.HasPrefix(base, "vec"):
	case len(base) == 6 && strings.HasPrefix(base, "mat"):
	default:
		return name
	}
	return base + "<" + suffix + ">"
}

// resolveLayout computes the size and alignment of a type using primitive layouts and the
// struct declarations of the module. Runtime-sized arrays resolve to their element stride.
//
// Parameters:
//   - t: the type to resolve
//   - structs: struct declarations keyed by name
//
// Returns:
//   - typeLayout: the resolved layout
//   - bool: false if the type or one of its members is unknown
func resolveLayout(t wgsl.Type, structs map[string]*wgsl.StructDecl) (typeLayout, bool) {
	if arr, ok := t.(*wgsl.ArrayType); ok {
		elem, ok := resolveLayout(arr.Element, structs)
		if !ok {
			return typeLayout{}, false
		}
		stride := roundUp(elem.align, elem.size)
		if arr.Size == nil {
			return typeLayout{stride, elem.align}, true
		}
		n, ok := literalUint(arr.Size)
		if !ok {
			return typeLayout{}, false
		}
		return typeLayout{n * stride, elem.align}, true
	}

	name := typeName(t)
	if l, ok := primitiveLayouts[name]; ok {
		return l, true
	}
	decl, ok := structs[name]
	if !ok {
		return typeLayout{}, false
	}

	var offset uint64
	maxAlign := uint64(1)
	for _, m := range decl.Members {
		l, ok := resolveLayout(m.Type, structs)
		if !ok {
			return typeLayout{}, false
		}
		offset = roundUp(l.align, offset) + l.size
		maxAlign = max(maxAlign, l.align)
	}
	return typeLayout{roundUp(maxAlign, offset), maxAlign}, true
}

// roundUp rounds value up to a multiple of the power-of-two alignment.
func roundUp(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// literalUint reads an integer literal, accepting the optional i and u suffixes.
func literalUint(e wgsl.Expr) (uint64, bool) {
	lit, ok := e.(*wgsl.Literal)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(strings.TrimRight(lit.Value, "iu"), 0, 32)
	if err != nil {
		return 0, false
	}
	return n, true
}

// attribute finds the named attribute in attrs.
func attribute(attrs []wgsl.Attribute, name string) (wgsl.Attribute, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a, true
		}
	}
	return wgsl.Attribute{}, false
}

// attributeUint reads the first argument of the named attribute as an integer literal.
func attributeUint(attrs []wgsl.Attribute, name string) (uint64, bool) {
	a, ok := attribute(attrs, name)
	if !ok || len(a.Args) == 0 {
		return 0, false
	}
	return literalUint(a.Args[0])
}
