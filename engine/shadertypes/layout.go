package shadertypes

import (
	"fmt"
	"reflect"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
)

// LayoutError reports a disagreement between a Go GPU type and its WGSL declaration.
type LayoutError struct {
	// Struct is the WGSL struct name.
	Struct string
	// Field is the WGSL member name, empty when the whole struct disagrees.
	Field string
	// HostOffset and ShaderOffset are the member offsets on each side.
	HostOffset, ShaderOffset uint64
	// HostSize and ShaderSize are the member (or struct) sizes on each side.
	HostSize, ShaderSize uint64
	// Reason describes the mismatch.
	Reason string
}

func (e *LayoutError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("layout %s: %s (host size %d, shader size %d)", e.Struct, e.Reason, e.HostSize, e.ShaderSize)
	}
	return fmt.Sprintf("layout %s.%s: %s (host offset %d size %d, shader offset %d size %d)",
		e.Struct, e.Field, e.Reason, e.HostOffset, e.HostSize, e.ShaderOffset, e.ShaderSize)
}

// sharedStructs lists the WGSL struct names and their Go mirrors in dependency order.
var sharedStructs = []struct {
	name string
	typ  reflect.Type
}{
	{"LightSource", reflect.TypeFor[GPULightSource]()},
	{"Material", reflect.TypeFor[GPUMaterial]()},
	{"Uniforms", reflect.TypeFor[GPUUniforms]()},
}

// Verify checks that every Go GPU type in this package has the same size and member
// offsets as its declaration in GPUUniformsSource.
//
// Returns:
//   - error: a *LayoutError describing the first mismatch, or nil
func Verify() error {
	return VerifySource(GPUUniformsSource)
}

// VerifySource checks the Go GPU types against the struct declarations in source.
//
// Parameters:
//   - source: WGSL source declaring LightSource, Material and Uniforms
//
// Returns:
//   - error: a *LayoutError describing the first mismatch, or nil
func VerifySource(source string) error {
	layouts := shader.StructLayouts(source)
	for _, s := range sharedStructs {
		if err := verifyStruct(layouts, s.name, s.typ); err != nil {
			return err
		}
	}
	return nil
}

func verifyStruct(layouts map[string]shader.StructLayout, name string, typ reflect.Type) error {
	sl, ok := layouts[name]
	if !ok {
		return &LayoutError{Struct: name, HostSize: uint64(typ.Size()), Reason: "struct missing or unresolvable in shader source"}
	}
	if uint64(typ.Size()) != sl.Size {
		return &LayoutError{Struct: name, HostSize: uint64(typ.Size()), ShaderSize: sl.Size, Reason: "size mismatch"}
	}

	tagged := 0
	for i := range typ.NumField() {
		f := typ.Field(i)
		tag := f.Tag.Get("wgsl")
		if tag == "" {
			continue
		}
		tagged++
		wf, ok := sl.Field(tag)
		if !ok {
			return &LayoutError{Struct: name, Field: tag, HostOffset: uint64(f.Offset), HostSize: uint64(f.Type.Size()), Reason: "member missing in shader source"}
		}
		if uint64(f.Offset) != wf.Offset || uint64(f.Type.Size()) != wf.Size {
			return &LayoutError{
				Struct:       name,
				Field:        tag,
				HostOffset:   uint64(f.Offset),
				ShaderOffset: wf.Offset,
				HostSize:     uint64(f.Type.Size()),
				ShaderSize:   wf.Size,
				Reason:       "member placement mismatch",
			}
		}
	}
	if tagged != len(sl.Fields) {
		return &LayoutError{Struct: name, HostSize: uint64(typ.Size()), ShaderSize: sl.Size, Reason: fmt.Sprintf("host has %d members, shader has %d", tagged, len(sl.Fields))}
	}
	return nil
}

// Layouts returns the WGSL layouts of the shared structs in dependency order, as
// computed from GPUUniformsSource.
//
// Returns:
//   - []shader.StructLayout: LightSource, Material and Uniforms
func Layouts() []shader.StructLayout {
	layouts := shader.StructLayouts(GPUUniformsSource)
	out := make([]shader.StructLayout, 0, len(sharedStructs))
	for _, s := range sharedStructs {
		if sl, ok := layouts[s.name]; ok {
			out = append(out, sl)
		}
	}
	return out
}

// PreProcessorOptions registers the shared declarations with a shader pre-processor
// under StructKeyUniforms.
//
// Returns:
//   - []shader.PreProcessorOption: the registrations
func PreProcessorOptions() []shader.PreProcessorOption {
	return []shader.PreProcessorOption{
		shader.WithStruct(StructKeyUniforms, "Uniforms", GPUUniformsSource),
	}
}
