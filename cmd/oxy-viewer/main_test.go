package main

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintLayout(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printLayout(&out))

	s := out.String()
	assert.Regexp(t, regexp.MustCompile(`BufferIndexMeshPositions\s+0`), s)
	assert.Regexp(t, regexp.MustCompile(`BufferIndexMeshNormals\s+1`), s)
	assert.Regexp(t, regexp.MustCompile(`BufferIndexUniforms\s+2`), s)
	assert.Regexp(t, regexp.MustCompile(`VertexAttributeNormal\s+1`), s)
	assert.Regexp(t, regexp.MustCompile(`struct Uniforms\s+size 416`), s)
	assert.Regexp(t, regexp.MustCompile(`struct LightSource\s+size 64`), s)
	assert.Regexp(t, regexp.MustCompile(`light_source\s+LightSource\s+offset 224\s+size 64`), s)
	assert.Regexp(t, regexp.MustCompile(`uniform buffer\s+1536 bytes`), s)
	assert.Contains(t, s, "layout OK")
}

func TestLoadProgress(t *testing.T) {
	var out bytes.Buffer
	p := newLoadProgress(&out)

	p.Update(0, 0)
	assert.Nil(t, p.bar)

	p.Update(1, 4)
	require.NotNil(t, p.bar)
	first := p.bar
	p.Update(2, 4)
	assert.Same(t, first, p.bar)

	p.Update(4, 4)
	assert.Nil(t, p.bar)

	// the next import gets a fresh bar
	p.Update(1, 2)
	assert.NotNil(t, p.bar)
	assert.NotSame(t, first, p.bar)
}
