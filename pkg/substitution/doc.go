// Package substitution applies a generation context to a template tree.
//
// Apply walks the source filesystem depth-first, lexical per directory, and
// builds a fresh ResolvedTree. Path names and text contents have their tokens
// replaced; list placeholders expand in content either line by line or per
// marked block:
//
//	- {{keywords}}            one line per element
//
//	{{#keywords}}
//	  <keyword>{{keywords}}</keyword>
//	{{/keywords}}             the enclosed lines once per element
//
// Lines holding a block marker are dropped from the output. Binary files are
// copied byte for byte. Once a file is resolved it is scanned for any token
// left behind, which fails the run with the placeholder name and path.
//
// Among rules governing one file, longer tokens are matched first, and when
// two rules target the same token the one declared later wins.
package substitution
