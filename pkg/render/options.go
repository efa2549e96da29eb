package render

// RenderOptions carry per-request data that does not belong to the form.
type RenderOptions struct {
	// Action and Method fill the form element attributes.
	Action string
	Method string
	// Errors surfaces server-side validation feedback keyed by field path.
	// Keys are normalised with MapErrors before rendering.
	Errors map[string][]string
	// Title is an optional heading.
	Title string
}
