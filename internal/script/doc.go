// Package script defines the format-agnostic model of a whoosh script: an
// ordered list of command groups plus the variables they read and write.
//
// The model is the single input of the runner package. Concrete front ends,
// such as the HCL loader in hclscript, translate their own syntax into a
// Script and hand it over through the Loader interface. A Script is treated
// as immutable once loaded.
package script
