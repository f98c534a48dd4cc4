package shader

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga/wgsl"
)

// InstanceStructPrefix marks vertex input structs that advance per instance rather than per vertex.
const InstanceStructPrefix = "Instance"

var sampledTextureDimensions = map[string]struct {
	dimension    wgpu.TextureViewDimension
	multisampled bool
}{
	"texture_1d":              {wgpu.TextureViewDimension1D, false},
	"texture_2d":              {wgpu.TextureViewDimension2D, false},
	"texture_2d_array":        {wgpu.TextureViewDimension2DArray, false},
	"texture_3d":              {wgpu.TextureViewDimension3D, false},
	"texture_cube":            {wgpu.TextureViewDimensionCube, false},
	"texture_cube_array":      {wgpu.TextureViewDimensionCubeArray, false},
	"texture_multisampled_2d": {wgpu.TextureViewDimension2D, true},
}

var depthTextureDimensions = map[string]wgpu.TextureViewDimension{
	"texture_depth_2d":              wgpu.TextureViewDimension2D,
	"texture_depth_2d_array":        wgpu.TextureViewDimension2DArray,
	"texture_depth_cube":            wgpu.TextureViewDimensionCube,
	"texture_depth_cube_array":      wgpu.TextureViewDimensionCubeArray,
	"texture_depth_multisampled_2d": wgpu.TextureViewDimension2D,
}

var sampleTypes = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

var stageAttributes = map[ShaderType]string{
	ShaderTypeVertex:   "vertex",
	ShaderTypeFragment: "fragment",
	ShaderTypeCompute:  "compute",
}

// findEntryPoint returns the first function carrying the stage attribute for shaderType.
func findEntryPoint(mod *wgsl.Module, shaderType ShaderType) (*wgsl.FunctionDecl, error) {
	stage, ok := stageAttributes[shaderType]
	if !ok {
		return nil, fmt.Errorf("unknown shader type %d", shaderType)
	}
	for _, fn := range mod.Functions {
		if _, ok := attribute(fn.Attributes, stage); ok {
			return fn, nil
		}
	}
	return nil, fmt.Errorf("%w: no @%s function", ErrNoEntryPoint, stage)
}

// reflectBindGroups builds one layout descriptor per @group index from the module's resource
// declarations. Entries are sorted by binding and every entry gets the given visibility.
//
// Parameters:
//   - mod: the parsed module
//   - visibility: shader stages that may access the resources
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
//   - map[int]map[int]string: variable names keyed by group and binding
//   - error: if a resource carries malformed attributes or an unsupported type
func reflectBindGroups(mod *wgsl.Module, visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string, error) {
	structs := structsByName(mod)
	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	names := make(map[int]map[int]string)

	for _, v := range mod.GlobalVars {
		group, hasGroup := attributeUint(v.Attributes, "group")
		binding, hasBinding := attributeUint(v.Attributes, "binding")
		if !hasGroup && !hasBinding {
			continue
		}
		if hasGroup != hasBinding {
			return nil, nil, fmt.Errorf("resource %q needs both @group and @binding", v.Name)
		}

		entry, err := classifyResource(uint32(binding), visibility, v)
		if err != nil {
			return nil, nil, err
		}
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if l, ok := resolveLayout(v.Type, structs); ok {
				entry.Buffer.MinBindingSize = l.size
			}
		}

		g, b := int(group), int(binding)
		if _, dup := names[g][b]; dup {
			return nil, nil, fmt.Errorf("duplicate resource at @group(%d) @binding(%d): %q and %q", g, b, names[g][b], v.Name)
		}
		groups[g] = append(groups[g], entry)
		if names[g] == nil {
			names[g] = make(map[int]string)
		}
		names[g][b] = v.Name
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		slices.SortFunc(entries, func(a, b wgpu.BindGroupLayoutEntry) int {
			return int(a.Binding) - int(b.Binding)
		})
		result[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return result, names, nil
}

// classifyResource fills the buffer, texture or sampler part of a layout entry from the variable's
// address space and type.
func classifyResource(binding uint32, visibility wgpu.ShaderStage, v *wgsl.VarDecl) (wgpu.BindGroupLayoutEntry, error) {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
	}

	switch v.AddressSpace {
	case "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		return entry, nil
	case "storage":
		if v.AccessMode == "read_write" {
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		} else {
			entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		}
		return entry, nil
	case "":
	default:
		return entry, fmt.Errorf("resource %q has unsupported address space %q", v.Name, v.AddressSpace)
	}

	named, ok := v.Type.(*wgsl.NamedType)
	if !ok {
		return entry, fmt.Errorf("resource %q has unsupported type %q", v.Name, typeName(v.Type))
	}

	switch name := named.Name; {
	case name == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case name == "sampler_comparison":
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
	case strings.HasPrefix(name, "texture_depth_"):
		entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
		entry.Texture.ViewDimension = depthTextureDimensions[name]
		entry.Texture.Multisampled = strings.HasSuffix(name, "multisampled_2d")
	default:
		info, ok := sampledTextureDimensions[name]
		if !ok {
			return entry, fmt.Errorf("resource %q has unsupported type %q", v.Name, typeName(v.Type))
		}
		entry.Texture.ViewDimension = info.dimension
		entry.Texture.Multisampled = info.multisampled
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		if len(named.TypeParams) > 0 {
			if st, ok := sampleTypes[typeName(named.TypeParams[0])]; ok {
				entry.Texture.SampleType = st
			}
		}
		if info.multisampled && entry.Texture.SampleType == wgpu.TextureSampleTypeFloat {
			entry.Texture.SampleType = wgpu.TextureSampleTypeUnfilterableFloat
		}
	}
	return entry, nil
}

// reflectVertexLayouts derives one vertex buffer layout per struct parameter of the vertex entry
// point, in parameter order. Structs named with InstanceStructPrefix step per instance.
//
// Parameters:
//   - mod: the parsed module
//   - fn: the vertex entry point
//
// Returns:
//   - []wgpu.VertexBufferLayout: layouts indexed by vertex buffer slot
//   - error: if a parameter is not a struct of @location members with vertex-compatible types
func reflectVertexLayouts(mod *wgsl.Module, fn *wgsl.FunctionDecl) ([]wgpu.VertexBufferLayout, error) {
	structs := structsByName(mod)
	var layouts []wgpu.VertexBufferLayout

	for _, param := range fn.Params {
		if _, ok := attribute(param.Attributes, "builtin"); ok {
			continue
		}
		decl, ok := structs[typeName(param.Type)]
		if !ok {
			return nil, fmt.Errorf("vertex parameter %q must be a struct, got %q", param.Name, typeName(param.Type))
		}

		layout := wgpu.VertexBufferLayout{StepMode: wgpu.VertexStepModeVertex}
		if strings.HasPrefix(decl.Name, InstanceStructPrefix) {
			layout.StepMode = wgpu.VertexStepModeInstance
		}
		for _, m := range decl.Members {
			if _, ok := attribute(m.Attributes, "builtin"); ok {
				continue
			}
			loc, ok := attributeUint(m.Attributes, "location")
			if !ok {
				return nil, fmt.Errorf("vertex member %s.%s has no @location", decl.Name, m.Name)
			}
			vf, ok := vertexFormats[typeName(m.Type)]
			if !ok {
				return nil, fmt.Errorf("vertex member %s.%s has unsupported type %q", decl.Name, m.Name, typeName(m.Type))
			}
			layout.Attributes = append(layout.Attributes, wgpu.VertexAttribute{
				Format:         vf.format,
				Offset:         layout.ArrayStride,
				ShaderLocation: uint32(loc),
			})
			layout.ArrayStride += vf.size
		}
		layouts = append(layouts, layout)
	}
	return layouts, nil
}

// reflectWorkgroupSize reads @workgroup_size, defaulting missing dimensions to 1.
func reflectWorkgroupSize(fn *wgsl.FunctionDecl) [3]uint32 {
	size := [3]uint32{1, 1, 1}
	a, ok := attribute(fn.Attributes, "workgroup_size")
	if !ok {
		return size
	}
	for i, arg := range a.Args {
		if i > 2 {
			break
		}
		if n, ok := literalUint(arg); ok {
			size[i] = uint32(n)
		}
	}
	return size
}

func structsByName(mod *wgsl.Module) map[string]*wgsl.StructDecl {
	out := make(map[string]*wgsl.StructDecl, len(mod.Structs))
	for _, s := range mod.Structs {
		out[s.Name] = s
	}
	return out
}

// MergeBindGroupLayouts combines the layouts of several shader stages. Entries sharing a group and
// binding are merged by OR-ing their visibility.
//
// Parameters:
//   - shaders: the stages of one pipeline; nil entries are skipped
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: merged descriptors keyed by group index
func MergeBindGroupLayouts(shaders ...Shader) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	for _, s := range shaders {
		if s == nil {
			continue
		}
		for g, desc := range s.BindGroupLayoutDescriptors() {
			if merged[g] == nil {
				merged[g] = make(map[uint32]wgpu.BindGroupLayoutEntry)
			}
			for _, e := range desc.Entries {
				if existing, ok := merged[g][e.Binding]; ok {
					existing.Visibility |= e.Visibility
					merged[g][e.Binding] = existing
					continue
				}
				merged[g][e.Binding] = e
			}
		}
	}

	out := make(map[int]wgpu.BindGroupLayoutDescriptor, len(merged))
	for g, byBinding := range merged {
		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(byBinding))
		for _, e := range byBinding {
			entries = append(entries, e)
		}
		slices.SortFunc(entries, func(a, b wgpu.BindGroupLayoutEntry) int {
			return int(a.Binding) - int(b.Binding)
		})
		out[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return out
}
