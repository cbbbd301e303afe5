// pre_processor.go implements the WGSL shader pre-processor. It replaces @viewer:
// annotations with registered struct sources or generated uniform declarations and
// collects the uniform bindings it emitted.
//
// Struct sources are registered through PreProcessorOption values rather than imported
// here, so the GPU type packages can use this package's layout calculator without an
// import cycle.
package shader

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStruct is returned when an annotation references a struct key that was never registered.
var ErrUnknownStruct = errors.New("unknown struct key")

// registryEntry pairs a WGSL struct source with the struct's type name.
type registryEntry struct {
	source   string
	typeName string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	structRegistry map[string]registryEntry
	declarations   []Annotation
}

// PreProcessor expands @viewer: annotations in WGSL source.
type PreProcessor interface {
	// Process replaces annotations in source with their WGSL output. Include annotations
	// become the registered struct source; uniform annotations become a var<uniform>
	// declaration. The declarations list is reset on every call.
	//
	// Parameters:
	//   - source: WGSL source containing annotations
	//
	// Returns:
	//   - string: the expanded WGSL source
	//   - error: wraps ErrMalformedAnnotation or ErrUnknownStruct
	Process(source string) (string, error)

	// Declarations returns the uniform annotations collected by the last Process call in
	// source order.
	//
	// Returns:
	//   - []Annotation: the collected uniform declarations
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the given struct registrations applied.
//
// Parameters:
//   - options: registrations, typically WithStruct
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor(options ...PreProcessorOption) PreProcessor {
	p := &preProcessor{structRegistry: make(map[string]registryEntry)}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		entry, ok := p.structRegistry[a.Key]
		if !ok {
			return "", fmt.Errorf("line %d: %q: %w", a.Line, a.Key, ErrUnknownStruct)
		}

		switch a.Type {
		case AnnotationTypeInclude:
			out = append(out, entry.source)
		case AnnotationTypeUniform:
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) var<uniform> %s: %s;", a.Group, a.Binding, a.VarName, entry.typeName))
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
