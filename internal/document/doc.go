// Package document turns the bytes of a descriptor or configuration file into
// the generic value tree defined by package value.
//
// Two syntaxes are understood. YAML (gopkg.in/yaml.v3) is the default and also
// covers JSON, since every JSON document is valid YAML. Files ending in ".hcl"
// are parsed with hashicorp/hcl: top-level attributes become map entries and
// blocks become nested maps keyed by their labels.
//
// The parser is shape-agnostic. A document may be null, a
// scalar, a sequence or a map; deciding what to do with a non-map document is
// left to the caller. Only syntactically broken input is an error, and every
// such error wraps ErrSyntax.
package document
