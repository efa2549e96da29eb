// Package layout computes the presentational state of a form: CSS classes,
// label and content styles, and the shared auto label width. It works on
// plain property structs so renderers for any output can use it, and
// delegates text measurement to a Measurer.
package layout
