// Package resolver merges the raw inputs of a run into one validated
// GenerationContext.
//
// Sources are layered with koanf, lowest priority first: computed defaults,
// CLI flags, interactive answers, the run configuration file. The merged
// result is validated against the field schema and the template manifest
// before anything touches the filesystem:
//
//	(a) required system fields present and non-empty     CONFIG_MISSING_FIELD
//	(b) enumerated values legal, booleans are booleans   CONFIG_INVALID_ENUM / CONFIG_INVALID_TYPE
//	(c) no key both a system and an extension field      CONFIG_KEY_COLLISION
//	(d) list placeholders given as non-empty lists       CONFIG_LIST_REQUIRED
//
// Resolution is deterministic: equal sources and an equal timestamp yield an
// equal context.
package resolver
