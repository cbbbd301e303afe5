package shader

// PreProcessorOption configures a PreProcessor.
type PreProcessorOption func(*preProcessor)

// WithStruct registers a WGSL struct source under key. typeName is the struct name used
// in generated declarations.
//
// Parameters:
//   - key: the key annotations refer to
//   - typeName: the WGSL struct name
//   - source: the WGSL struct definition(s)
//
// Returns:
//   - PreProcessorOption: a function that applies the registration
func WithStruct(key, typeName, source string) PreProcessorOption {
	return func(p *preProcessor) {
		p.structRegistry[key] = registryEntry{source: source, typeName: typeName}
	}
}
