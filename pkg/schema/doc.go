// Package schema describes the system fields of a generation context.
//
// The field set is an explicit, versioned document rather than something
// discovered at runtime. A Schema is built once (usually with Default) and
// handed to the resolver and the prompt collaborator; nothing in this package
// keeps process-wide state.
//
// Each field carries one of three kinds:
//
//	required    must be present and non-empty
//	optional    may be absent; may carry a default
//	enumerated  when present, must be one of a closed set of values
//
// and one of two types, string or bool.
package schema
