// Package rules defines the declarative validation rules attached to form
// fields. A Set maps dotted property paths (for example "author.email") to an
// ordered list of Rule values. Rules mirror the shape used by common
// declarative validator libraries: required/type/min/max/len/pattern/enum
// constraints, an optional trigger list (change, blur) and a failure
// message. Sets can be built in code or loaded from JSON/YAML documents with
// Load, LoadFile and LoadFS.
package rules
