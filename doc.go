// Package fetchcore holds the domain types for multi-source artifact
// retrieval.
//
// The types in this package are deliberately small: an [Identity] names what
// to fetch, a [Source] is somewhere it might come from, and a [Result] is what
// a fetch produced. The retrieval machinery itself lives in the libfetch
// package.
package fetchcore
