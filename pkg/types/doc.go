// Package types defines the data shared by the generation pipeline:
// the tagged Value variant, the template Identity, the validated
// GenerationContext handed from the resolver to the substitution engine,
// and the ResolvedTree the engine hands to the dispatcher.
package types
