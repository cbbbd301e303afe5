package pipeline

import (
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
)

// mergeBindGroupLayouts merges the bind group layout descriptors from a vertex and fragment shader
// into a unified set of descriptors suitable for a render pipeline layout.
//
// For each group index present in either shader:
//   - Entries with the same binding number have their Visibility flags ORed together
//   - Entries unique to one shader are included with their original visibility
//
// Parameters:
//   - vertexLayouts: bind group layout descriptors from the vertex shader
//   - fragmentLayouts: bind group layout descriptors from the fragment shader
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
func mergeBindGroupLayouts(vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor)

	groups := make(map[int]struct{})
	for g := range vertexLayouts {
		groups[g] = struct{}{}
	}
	for g := range fragmentLayouts {
		groups[g] = struct{}{}
	}

	for g := range groups {
		vDesc := vertexLayouts[g]
		fDesc := fragmentLayouts[g]

		entries := make(map[uint32]wgpu.BindGroupLayoutEntry, len(vDesc.Entries)+len(fDesc.Entries))
		for _, e := range vDesc.Entries {
			entries[e.Binding] = e
		}
		for _, e := range fDesc.Entries {
			if existing, ok := entries[e.Binding]; ok {
				existing.Visibility |= e.Visibility
				entries[e.Binding] = existing
				continue
			}
			entries[e.Binding] = e
		}

		flat := make([]wgpu.BindGroupLayoutEntry, 0, len(entries))
		for _, e := range entries {
			flat = append(flat, e)
		}
		sort.Slice(flat, func(i, j int) bool {
			return flat[i].Binding < flat[j].Binding
		})

		label := vDesc.Label
		if label == "" {
			label = fDesc.Label
		}
		merged[g] = wgpu.BindGroupLayoutDescriptor{Label: label, Entries: flat}
	}

	return merged
}

// withDynamicUniforms returns a copy of desc with every uniform buffer entry bound at a
// dynamic offset.
func withDynamicUniforms(desc wgpu.BindGroupLayoutDescriptor) wgpu.BindGroupLayoutDescriptor {
	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Entries))
	copy(entries, desc.Entries)
	for i := range entries {
		if entries[i].Buffer.Type == wgpu.BufferBindingTypeUniform {
			entries[i].Buffer.HasDynamicOffset = true
		}
	}
	return wgpu.BindGroupLayoutDescriptor{Label: desc.Label, Entries: entries}
}
