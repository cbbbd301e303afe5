package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/shadertypes"
)

// printLayout writes the binding indices and the WGSL layout of the shared uniform structs,
// then verifies the Go types against it.
func printLayout(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "INDEX\tVALUE")
	for _, b := range []shadertypes.BufferIndex{
		shadertypes.BufferIndexMeshPositions,
		shadertypes.BufferIndexMeshNormals,
		shadertypes.BufferIndexUniforms,
	} {
		fmt.Fprintf(tw, "%s\t%d\n", b, b)
	}
	for _, a := range []shadertypes.VertexAttribute{
		shadertypes.VertexAttributePosition,
		shadertypes.VertexAttributeNormal,
	} {
		fmt.Fprintf(tw, "%s\t%d\n", a, a)
	}
	fmt.Fprintln(tw)

	for _, sl := range shadertypes.Layouts() {
		fmt.Fprintf(tw, "struct %s\tsize %d\talign %d\n", sl.Name, sl.Size, sl.Align)
		for _, f := range sl.Fields {
			fmt.Fprintf(tw, "  %s\t%s\toffset %d\tsize %d\n", f.Name, f.Type, f.Offset, f.Size)
		}
		fmt.Fprintln(tw)
	}

	fmt.Fprintf(tw, "uniform slot\t%d bytes\n", renderer.AlignedUniformsSize)
	fmt.Fprintf(tw, "uniform buffer\t%d bytes\t%d slots\n", renderer.AlignedUniformsSize*renderer.MaxBuffersInFlight, renderer.MaxBuffersInFlight)
	if err := tw.Flush(); err != nil {
		return err
	}

	if err := shadertypes.Verify(); err != nil {
		return fmt.Errorf("uniform layout mismatch: %w", err)
	}
	fmt.Fprintln(out, "layout OK")
	return nil
}
