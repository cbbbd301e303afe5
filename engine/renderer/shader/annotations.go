// annotations.go defines the annotation syntax understood by the WGSL pre-processor.
// Annotations are single-line WGSL comments prefixed with @viewer: that inject shared
// struct definitions and generate uniform declarations from a registry of host-side
// GPU types, so that both sides of the uniform layout come from one canonical source.
package shader

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an annotation within a WGSL comment line.
const annotationPrefix = "@viewer:"

// ErrMalformedAnnotation is returned for annotation lines with the right prefix but
// invalid syntax.
var ErrMalformedAnnotation = errors.New("malformed annotation")

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// AnnotationTypeInclude injects the WGSL source of a registered struct at the
	// annotation site.
	//
	// Syntax: //@viewer:include <struct_key>
	//
	// Example: //@viewer:include uniforms
	AnnotationTypeInclude AnnotationType = "include"

	// AnnotationTypeUniform generates a var<uniform> declaration for a registered
	// struct and records the binding in the pre-processor's declarations list.
	//
	// Syntax: //@viewer:uniform <group> <binding> <var_name> <struct_key>
	//
	// Example: //@viewer:uniform 0 2 uniforms uniforms
	AnnotationTypeUniform AnnotationType = "uniform"
)

// Annotation represents a single parsed @viewer: annotation.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Key is the registered struct key referenced by the annotation.
	Key string

	// VarName is the WGSL variable name for uniform annotations.
	VarName string

	// Line is the 1-based source line of the annotation.
	Line int

	// Group and Binding are set for uniform annotations.
	Group, Binding int
}

// parseAnnotation attempts to parse one WGSL source line as an annotation. Lines without
// the prefix return nil and no error.
//
// Parameters:
//   - line: the raw WGSL source line
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: wraps ErrMalformedAnnotation when the syntax is invalid
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty annotation: %w", lineNum, ErrMalformedAnnotation)
	}

	switch AnnotationType(args[0]) {
	case AnnotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: include takes exactly one struct key: %w", lineNum, ErrMalformedAnnotation)
		}
		return &Annotation{Type: AnnotationTypeInclude, Key: args[1], Line: lineNum}, nil
	case AnnotationTypeUniform:
		if len(args) != 5 {
			return nil, fmt.Errorf("line %d: uniform takes group, binding, variable name and struct key: %w", lineNum, ErrMalformedAnnotation)
		}
		group, err := strconv.Atoi(args[1])
		if err != nil || group < 0 {
			return nil, fmt.Errorf("line %d: invalid group %q: %w", lineNum, args[1], ErrMalformedAnnotation)
		}
		binding, err := strconv.Atoi(args[2])
		if err != nil || binding < 0 {
			return nil, fmt.Errorf("line %d: invalid binding %q: %w", lineNum, args[2], ErrMalformedAnnotation)
		}
		return &Annotation{
			Type:    AnnotationTypeUniform,
			Key:     args[4],
			VarName: args[3],
			Line:    lineNum,
			Group:   group,
			Binding: binding,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown annotation %q: %w", lineNum, args[0], ErrMalformedAnnotation)
	}
}
