package shadertypes

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unsafe"
)

// GPUUniformsSource is the canonical WGSL definition of the LightSource, Material and
// Uniforms structs. The Go types in this file match it exactly.
//
//go:embed assets/shader_types.wgsl
var GPUUniformsSource string

// Byte sizes of the GPU types in WGSL uniform layout.
const (
	GPULightSourceSize = 64
	GPUMaterialSize    = 64
	GPUUniformsSize    = 416
)

// Scalar counts of the tightly packed logical representation returned by Floats.
const (
	// ScalarCountBase covers projection, model-view, normal, viewport and distance.
	ScalarCountBase        = 16 + 16 + 9 + 8 + 1
	ScalarCountLightSource = 3 + 4 + 4 + 4
	ScalarCountMaterial    = 4 + 4 + 4 + 1
	ScalarCountUniforms    = ScalarCountBase + ScalarCountLightSource + 2*ScalarCountMaterial
)

// ErrShortBuffer is returned by Unmarshal when the input holds fewer bytes than the type.
var ErrShortBuffer = errors.New("buffer shorter than uniform layout")

// GPULightSource is a single point light.
// Matches the WGSL LightSource struct layout exactly (see GPUUniformsSource).
// Size: 64 bytes.
type GPULightSource struct {
	Position [3]float32 `wgsl:"position"` // offset  0
	_pad     float32    // offset 12: vec3 is followed by vec4 alignment
	Ambient  [4]float32 `wgsl:"ambient"`  // offset 16
	Diffuse  [4]float32 `wgsl:"diffuse"`  // offset 32
	Specular [4]float32 `wgsl:"specular"` // offset 48
}

// GPUMaterial is a Phong surface description.
// Matches the WGSL Material struct layout exactly (see GPUUniformsSource).
// Size: 64 bytes.
type GPUMaterial struct {
	Ambient   [4]float32 `wgsl:"ambient"`   // offset  0
	Diffuse   [4]float32 `wgsl:"diffuse"`   // offset 16
	Specular  [4]float32 `wgsl:"specular"`  // offset 32
	Shininess float32    `wgsl:"shininess"` // offset 48
	_pad      [3]float32 // offset 52: struct size rounds up to 16
}

// GPUUniforms is the per-draw parameter block bound at BufferIndexUniforms.
// Matches the WGSL Uniforms struct layout exactly (see GPUUniformsSource).
// All matrices are column-major. Size: 416 bytes.
//
// Layout:
//
//	mat4x4<f32> projection_matrix  (64 bytes, offset   0)
//	mat4x4<f32> model_view_matrix  (64 bytes, offset  64)
//	mat3x3<f32> normal_matrix      (48 bytes, offset 128) columns padded to vec4
//	mat4x2<f32> viewport_matrix    (32 bytes, offset 176)
//	f32         distance           ( 4 bytes, offset 208)
//	LightSource light_source       (64 bytes, offset 224)
//	Material    front_material     (64 bytes, offset 288)
//	Material    back_material      (64 bytes, offset 352)
type GPUUniforms struct {
	ProjectionMatrix [16]float32    `wgsl:"projection_matrix"`
	ModelViewMatrix  [16]float32    `wgsl:"model_view_matrix"`
	NormalMatrix     [3][4]float32  `wgsl:"normal_matrix"` // [column][row], row 3 is padding
	ViewportMatrix   [4][2]float32  `wgsl:"viewport_matrix"`
	Distance         float32        `wgsl:"distance"`
	_pad             [3]float32     // offset 212: LightSource aligns to 16
	LightSource      GPULightSource `wgsl:"light_source"`
	FrontMaterial    GPUMaterial    `wgsl:"front_material"`
	BackMaterial     GPUMaterial    `wgsl:"back_material"`
}

// Size returns the size of the GPULightSource struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (l *GPULightSource) Size() int {
	return int(unsafe.Sizeof(*l))
}

// Marshal serializes the light into a little-endian buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer
func (l *GPULightSource) Marshal() []byte {
	w := layoutWriter{buf: make([]byte, GPULightSourceSize)}
	l.write(&w)
	return w.buf
}

// Unmarshal reads a light from a buffer in WGSL uniform layout.
//
// Parameters:
//   - buf: at least 64 bytes
//
// Returns:
//   - error: ErrShortBuffer if buf is too small
func (l *GPULightSource) Unmarshal(buf []byte) error {
	if len(buf) < GPULightSourceSize {
		return fmt.Errorf("light source: %d bytes: %w", len(buf), ErrShortBuffer)
	}
	r := layoutReader{buf: buf}
	l.read(&r)
	return nil
}

// Floats returns the 15 logical scalars of the light without padding.
//
// Returns:
//   - []float32: position, ambient, diffuse, specular
func (l *GPULightSource) Floats() []float32 {
	out := make([]float32, 0, ScalarCountLightSource)
	out = append(out, l.Position[:]...)
	out = append(out, l.Ambient[:]...)
	out = append(out, l.Diffuse[:]...)
	return append(out, l.Specular[:]...)
}

func (l *GPULightSource) write(w *layoutWriter) {
	w.floats(l.Position[:]...)
	w.skip(4)
	w.floats(l.Ambient[:]...)
	w.floats(l.Diffuse[:]...)
	w.floats(l.Specular[:]...)
}

func (l *GPULightSource) read(r *layoutReader) {
	r.floats(l.Position[:])
	r.skip(4)
	r.floats(l.Ambient[:])
	r.floats(l.Diffuse[:])
	r.floats(l.Specular[:])
}

// Size returns the size of the GPUMaterial struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (m *GPUMaterial) Size() int {
	return int(unsafe.Sizeof(*m))
}

// Marshal serializes the material into a little-endian buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer
func (m *GPUMaterial) Marshal() []byte {
	w := layoutWriter{buf: make([]byte, GPUMaterialSize)}
	m.write(&w)
	return w.buf
}

// Unmarshal reads a material from a buffer in WGSL uniform layout.
//
// Parameters:
//   - buf: at least 64 bytes
//
// Returns:
//   - error: ErrShortBuffer if buf is too small
func (m *GPUMaterial) Unmarshal(buf []byte) error {
	if len(buf) < GPUMaterialSize {
		return fmt.Errorf("material: %d bytes: %w", len(buf), ErrShortBuffer)
	}
	r := layoutReader{buf: buf}
	m.read(&r)
	return nil
}

// Floats returns the 13 logical scalars of the material without padding.
//
// Returns:
//   - []float32: ambient, diffuse, specular, shininess
func (m *GPUMaterial) Floats() []float32 {
	out := make([]float32, 0, ScalarCountMaterial)
	out = append(out, m.Ambient[:]...)
	out = append(out, m.Diffuse[:]...)
	out = append(out, m.Specular[:]...)
	return append(out, m.Shininess)
}

func (m *GPUMaterial) write(w *layoutWriter) {
	w.floats(m.Ambient[:]...)
	w.floats(m.Diffuse[:]...)
	w.floats(m.Specular[:]...)
	w.floats(m.Shininess)
	w.skip(12)
}

func (m *GPUMaterial) read(r *layoutReader) {
	r.floats(m.Ambient[:])
	r.floats(m.Diffuse[:])
	r.floats(m.Specular[:])
	m.Shininess = r.float()
	r.skip(12)
}

// Size returns the size of the GPUUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (416)
func (u *GPUUniforms) Size() int {
	return int(unsafe.Sizeof(*u))
}

// Marshal serializes the uniform block into a little-endian buffer in WGSL uniform
// layout. Padding bytes are always zero.
//
// Returns:
//   - []byte: 416-byte buffer ready for GPU upload
func (u *GPUUniforms) Marshal() []byte {
	buf := make([]byte, GPUUniformsSize)
	_ = u.MarshalTo(buf)
	return buf
}

// MarshalTo serializes the uniform block into dst, which must hold at least
// GPUUniformsSize bytes. Used to fill a slot of a larger uniform buffer in place.
//
// Parameters:
//   - dst: destination slice
//
// Returns:
//   - error: ErrShortBuffer if dst is too small
func (u *GPUUniforms) MarshalTo(dst []byte) error {
	if len(dst) < GPUUniformsSize {
		return fmt.Errorf("uniforms: %d bytes: %w", len(dst), ErrShortBuffer)
	}
	w := layoutWriter{buf: dst[:GPUUniformsSize]}
	w.floats(u.ProjectionMatrix[:]...)
	w.floats(u.ModelViewMatrix[:]...)
	for col := range u.NormalMatrix {
		w.floats(u.NormalMatrix[col][:3]...)
		w.skip(4)
	}
	for col := range u.ViewportMatrix {
		w.floats(u.ViewportMatrix[col][:]...)
	}
	w.floats(u.Distance)
	w.skip(12)
	u.LightSource.write(&w)
	u.FrontMaterial.write(&w)
	u.BackMaterial.write(&w)
	return nil
}

// Unmarshal reads a uniform block from a buffer in WGSL uniform layout, the way the
// shader sees it. Padding is ignored, so the normal matrix padding row reads as zero.
//
// Parameters:
//   - buf: at least 416 bytes
//
// Returns:
//   - error: ErrShortBuffer if buf is too small
func (u *GPUUniforms) Unmarshal(buf []byte) error {
	if len(buf) < GPUUniformsSize {
		return fmt.Errorf("uniforms: %d bytes: %w", len(buf), ErrShortBuffer)
	}
	r := layoutReader{buf: buf}
	r.floats(u.ProjectionMatrix[:])
	r.floats(u.ModelViewMatrix[:])
	for col := range u.NormalMatrix {
		r.floats(u.NormalMatrix[col][:3])
		u.NormalMatrix[col][3] = 0
		r.skip(4)
	}
	for col := range u.ViewportMatrix {
		r.floats(u.ViewportMatrix[col][:])
	}
	u.Distance = r.float()
	r.skip(12)
	u.LightSource.read(&r)
	u.FrontMaterial.read(&r)
	u.BackMaterial.read(&r)
	return nil
}

// SetNormalMatrix stores a tightly packed column-major 3x3 matrix.
//
// Parameters:
//   - m: nine scalars, column-major
func (u *GPUUniforms) SetNormalMatrix(m [9]float32) {
	for col := range 3 {
		u.NormalMatrix[col] = [4]float32{m[col*3], m[col*3+1], m[col*3+2], 0}
	}
}

// NormalMatrix3 returns the normal matrix as nine tightly packed column-major scalars.
//
// Returns:
//   - [9]float32: the 3x3 normal matrix
func (u *GPUUniforms) NormalMatrix3() [9]float32 {
	var m [9]float32
	for col := range 3 {
		copy(m[col*3:col*3+3], u.NormalMatrix[col][:3])
	}
	return m
}

// Floats returns the logical scalars of the block in field order with all padding
// removed: ScalarCountBase scalars for the matrices and distance followed by the light
// and the two materials.
//
// Returns:
//   - []float32: ScalarCountUniforms scalars
func (u *GPUUniforms) Floats() []float32 {
	out := make([]float32, 0, ScalarCountUniforms)
	out = append(out, u.ProjectionMatrix[:]...)
	out = append(out, u.ModelViewMatrix[:]...)
	for col := range u.NormalMatrix {
		out = append(out, u.NormalMatrix[col][:3]...)
	}
	for col := range u.ViewportMatrix {
		out = append(out, u.ViewportMatrix[col][:]...)
	}
	out = append(out, u.Distance)
	out = append(out, u.LightSource.Floats()...)
	out = append(out, u.FrontMaterial.Floats()...)
	return append(out, u.BackMaterial.Floats()...)
}

// layoutWriter writes little-endian scalars sequentially into a zeroed buffer.
type layoutWriter struct {
	buf []byte
	off int
}

func (w *layoutWriter) floats(vs ...float32) {
	for _, v := range vs {
		binary.LittleEndian.PutUint32(w.buf[w.off:], math.Float32bits(v))
		w.off += 4
	}
}

func (w *layoutWriter) skip(n int) {
	clear(w.buf[w.off : w.off+n])
	w.off += n
}

// layoutReader reads little-endian scalars sequentially.
type layoutReader struct {
	buf []byte
	off int
}

func (r *layoutReader) float() float32 {
	v := math.Float32frombits(binary.LittleEndian.Uint32(r.buf[r.off:]))
	r.off += 4
	return v
}

func (r *layoutReader) floats(dst []float32) {
	for i := range dst {
		dst[i] = r.float()
	}
}

func (r *layoutReader) skip(n int) {
	r.off += n
}
