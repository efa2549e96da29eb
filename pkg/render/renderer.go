// Package render defines the output seam of a form: renderers turn the
// attached fields, their layout and their validation status into bytes.
package render

import (
	"context"

	"github.com/goliatone/go-formstate/pkg/form"
)

// Renderer converts a form into a byte representation (HTML, text, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, f *form.Form, options RenderOptions) ([]byte, error)
}
