package renderer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-viewer/engine/shadertypes"
	"github.com/Carmen-Shannon/oxy-viewer/engine/viewer"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type drawRecord struct {
	pipeline   string
	mesh       bind_group_provider.BindGroupProvider
	bindGroups []bind_group_provider.BindGroupProvider
	offsets    map[int][]uint32
}

type bindGroupRecord struct {
	descriptor wgpu.BindGroupLayoutDescriptor
	sizes      map[int]uint64
}

// fakeBackend records calls instead of talking to a GPU.
type fakeBackend struct {
	registered  []string
	registerErr error
	vertexSlots map[int][]byte
	bindGroups  []bindGroupRecord
	writes      []bind_group_provider.BufferWrite
	draws       []drawRecord
	calls       []string
	workDone    []func()
	polls       []bool
	released    bool
}

var _ RendererBackend = &fakeBackend{}

func (f *fakeBackend) Device() *wgpu.Device { return nil }
func (f *fakeBackend) Queue() *wgpu.Queue { return nil }
func (f *fakeBackend) Adapter() *wgpu.Adapter { return nil }
func (f *fakeBackend) ConfigureSurface(width, height int) { f.calls = append(f.calls, "configure") }
func (f *fakeBackend) SetPresentMode(mode PresentMode) {}
func (f *fakeBackend) SetClearColor(c wgpu.Color) {}

func (f *fakeBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registered = append(f.registered, p.PipelineKey())
	return nil
}

func (f *fakeBackend) InitVertexBuffer(provider bind_group_provider.BindGroupProvider, slot int, data []byte) error {
	if f.vertexSlots == nil {
		f.vertexSlots = make(map[int][]byte)
	}
	f.vertexSlots[slot] = data
	return nil
}

func (f *fakeBackend) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, sizes map[int]uint64) error {
	f.bindGroups = append(f.bindGroups, bindGroupRecord{descriptor: descriptor, sizes: sizes})
	return nil
}

func (f *fakeBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.writes = append(f.writes, writes...)
}

func (f *fakeBackend) BeginFrame() error {
	f.calls = append(f.calls, "begin")
	return nil
}

func (f *fakeBackend) DrawCall(p pipeline.Pipeline, mesh bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider, offsets map[int][]uint32) error {
	f.draws = append(f.draws, drawRecord{pipeline: p.PipelineKey(), mesh: mesh, bindGroups: bindGroups, offsets: offsets})
	return nil
}

func (f *fakeBackend) EndFrame() { f.calls = append(f.calls, "end") }
func (f *fakeBackend) Present() { f.calls = append(f.calls, "present") }
func (f *fakeBackend) OnWorkDone(fn func()) { f.workDone = append(f.workDone, fn) }

func (f *fakeBackend) Poll(wait bool) {
	f.polls = append(f.polls, wait)
	for _, fn := range f.workDone {
		fn()
	}
	f.workDone = nil
}

func (f *fakeBackend) Release() { f.released = true }

func newTestRenderer(t *testing.T) (*renderer, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{}
	return &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backend:       fb,
	}, fb
}

func viewerPipeline(t *testing.T, options ...pipeline.PipelineBuilderOption) pipeline.Pipeline {
	t.Helper()
	vs, fs, err := viewer.LoadShaders()
	require.NoError(t, err)
	options = append([]pipeline.PipelineBuilderOption{pipeline.WithVertexShader(vs), pipeline.WithFragmentShader(fs)}, options...)
	return pipeline.NewPipeline(viewer.PipelineKey, options...)
}

func TestRenderer_RegisterPipelines(t *testing.T) {
	r, fb := newTestRenderer(t)
	p := viewerPipeline(t)

	require.NoError(t, r.RegisterPipelines(p))
	require.NoError(t, r.RegisterPipelines(p))
	assert.Equal(t, []string{viewer.PipelineKey}, fb.registered)
	assert.Same(t, p, r.Pipeline(viewer.PipelineKey))
	assert.Nil(t, r.Pipeline("missing"))

	fb.registerErr = errors.New("boom")
	err := r.RegisterPipelines(pipeline.NewPipeline("other"))
	assert.ErrorIs(t, err, fb.registerErr)
	assert.Nil(t, r.Pipeline("other"))
}

func TestRenderer_InitMesh(t *testing.T) {
	r, fb := newTestRenderer(t)
	provider := bind_group_provider.NewBindGroupProvider("mesh")

	positions := []byte{1, 2, 3}
	normals := []byte{4, 5, 6}
	require.NoError(t, r.InitMesh(provider, positions, normals, 9))

	assert.Equal(t, positions, fb.vertexSlots[int(shadertypes.BufferIndexMeshPositions)])
	assert.Equal(t, normals, fb.vertexSlots[int(shadertypes.BufferIndexMeshNormals)])
	assert.Equal(t, 9, provider.VertexCount())
}

func TestRenderer_InitUniformBindGroup(t *testing.T) {
	r, fb := newTestRenderer(t)
	ring := NewUniformRing(shadertypes.GPUUniformsSize, MaxBuffersInFlight)
	uniforms := bind_group_provider.NewBindGroupProvider("uniforms")

	err := r.InitUniformBindGroup(uniforms, viewer.PipelineKey, shadertypes.UniformsGroup, ring.BufferSize())
	assert.ErrorIs(t, err, ErrNotRegistered)

	require.NoError(t, r.RegisterPipelines(viewerPipeline(t, pipeline.WithDynamicOffsets(shadertypes.UniformsGroup))))

	err = r.InitUniformBindGroup(uniforms, viewer.PipelineKey, 5, ring.BufferSize())
	assert.Error(t, err)

	require.NoError(t, r.InitUniformBindGroup(uniforms, viewer.PipelineKey, shadertypes.UniformsGroup, ring.BufferSize()))
	require.Len(t, fb.bindGroups, 1)
	rec := fb.bindGroups[0]
	require.Len(t, rec.descriptor.Entries, 1)
	assert.True(t, rec.descriptor.Entries[0].Buffer.HasDynamicOffset)
	assert.Equal(t, map[int]uint64{int(shadertypes.BufferIndexUniforms): 1536}, rec.sizes)

	// a buffer smaller than one block is grown to the binding size
	require.NoError(t, r.InitUniformBindGroup(uniforms, viewer.PipelineKey, shadertypes.UniformsGroup, 16))
	assert.Equal(t, uint64(shadertypes.GPUUniformsSize), fb.bindGroups[1].sizes[int(shadertypes.BufferIndexUniforms)])
}

func TestRenderer_DrawFrame(t *testing.T) {
	r, fb := newTestRenderer(t)
	mesh := bind_group_provider.NewBindGroupProvider("mesh")
	uniforms := bind_group_provider.NewBindGroupProvider("uniforms")

	err := r.Draw(viewer.PipelineKey, mesh, uniforms, 0)
	assert.ErrorIs(t, err, ErrNotRegistered)

	require.NoError(t, r.RegisterPipelines(viewerPipeline(t, pipeline.WithDynamicOffsets(shadertypes.UniformsGroup))))

	require.NoError(t, r.BeginFrame())
	r.WriteBuffers([]bind_group_provider.BufferWrite{{Provider: uniforms, Binding: int(shadertypes.BufferIndexUniforms), Offset: 512, Data: []byte{1}}})
	require.NoError(t, r.Draw(viewer.PipelineKey, mesh, uniforms, 512))
	r.EndFrame()
	r.Present()

	assert.Equal(t, []string{"begin", "end", "present"}, fb.calls)
	require.Len(t, fb.writes, 1)
	assert.Equal(t, uint64(512), fb.writes[0].Offset)

	require.Len(t, fb.draws, 1)
	d := fb.draws[0]
	assert.Equal(t, viewer.PipelineKey, d.pipeline)
	assert.Same(t, mesh, d.mesh)
	require.Len(t, d.bindGroups, shadertypes.UniformsGroup+1)
	assert.Same(t, uniforms, d.bindGroups[shadertypes.UniformsGroup])
	assert.Equal(t, map[int][]uint32{shadertypes.UniformsGroup: {512}}, d.offsets)
}

func TestRenderer_DrawStaticUniforms(t *testing.T) {
	r, fb := newTestRenderer(t)
	require.NoError(t, r.RegisterPipelines(viewerPipeline(t)))

	mesh := bind_group_provider.NewBindGroupProvider("mesh")
	uniforms := bind_group_provider.NewBindGroupProvider("uniforms")
	require.NoError(t, r.Draw(viewer.PipelineKey, mesh, uniforms, 1024))
	require.Len(t, fb.draws, 1)
	assert.Nil(t, fb.draws[0].offsets)
}

func TestRenderer_Release(t *testing.T) {
	r, fb := newTestRenderer(t)
	require.NoError(t, r.RegisterPipelines(viewerPipeline(t)))
	r.Release()
	assert.True(t, fb.released)
	assert.Nil(t, r.Pipeline(viewer.PipelineKey))
}

func TestParsePresentMode(t *testing.T) {
	tests := []struct {
		in      string
		want    PresentMode
		wantErr bool
	}{
		{"vsync", PresentModeVSync, false},
		{"VSync", PresentModeVSync, false},
		{"fifo", PresentModeVSync, false},
		{" uncapped ", PresentModeUncapped, false},
		{"immediate", PresentModeUncapped, false},
		{"mailbox", PresentModeVSync, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePresentMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, name string) PresentMode {
	t.Helper()
	m, err := ParsePresentMode(name)
	require.NoError(t, err)
	return m
}

func TestMSAASampleCount_Valid(t *testing.T) {
	for _, c := range []MSAASampleCount{MSAAOff, MSAA4x, MSAA8x, MSAA16x} {
		assert.True(t, c.Valid(), "%d", c)
	}
	for _, c := range []MSAASampleCount{0, 2, 3, 32} {
		assert.False(t, c.Valid(), "%d", c)
	}
}

func TestRenderer_WorkDoneFiresOnPoll(t *testing.T) {
	r, fb := newTestRenderer(t)
	ring := NewUniformRing(shadertypes.GPUUniformsSize, MaxBuffersInFlight)

	_, err := ring.Acquire(context.Background())
	require.NoError(t, err)
	r.OnSubmittedWorkDone(ring.Release)
	assert.Equal(t, 1, ring.InFlight())

	r.Poll(false)
	assert.Equal(t, []bool{false}, fb.polls)
	assert.Zero(t, ring.InFlight())
}
