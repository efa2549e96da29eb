package vanilla

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/layout"
	"github.com/goliatone/go-formstate/pkg/render"
)

func (r *Renderer) view(f *form.Form, options render.RenderOptions) map[string]any {
	fields := f.Fields()
	keys := make([]string, 0, len(fields))
	for _, field := range fields {
		keys = append(keys, field.Key())
	}
	server := render.MapErrors(keys, options.Errors)

	props := make([]layout.ItemProps, 0, len(fields))
	for _, field := range fields {
		item := field.Layout()
		if messages := server.Fields[field.Key()]; len(messages) > 0 {
			item.Status = layout.StatusError
			item.Message = messages[0]
		}
		props = append(props, item)
	}

	formProps := f.Layout()
	engine := layout.New(formProps, layout.WithNamespace(r.namespace()), layout.WithMeasurer(r.measurer))
	computed := engine.Compute(props)
	scroll := r.takeScroll()

	items := make([]map[string]any, 0, len(fields))
	for idx, field := range fields {
		item := computed.Items[idx]
		var value any
		if field.Key() != "" {
			value, _ = f.Model().Get(field.Key())
		}
		entry := map[string]any{
			"key":              field.Key(),
			"id":               fieldID(field),
			"label":            r.sanitize(item.Label),
			"classes":          strings.Join(item.Classes, " "),
			"label_style":      item.LabelStyle.String(),
			"label_wrap_style": item.LabelWrapStyle.String(),
			"content_style":    item.ContentStyle.String(),
			"required":         props[idx].Required,
			"show_error":       item.ShowError,
			"message":          item.Message,
			"value":            formatValue(value),
			"scroll":           "",
		}
		if scroll != nil && field.Key() != "" && scroll.key == field.Key() {
			entry["scroll"] = scroll.block
		}
		items = append(items, entry)
	}

	method := strings.ToLower(strings.TrimSpace(options.Method))
	if method == "" {
		method = "post"
	}
	var style string
	if r.theme != nil {
		style = cssVarsStyle(r.theme.CSSVars)
	}

	return map[string]any{
		"ns":       engine.Namespace(),
		"disabled": formProps.Disabled,
		"form": map[string]any{
			"classes": strings.Join(computed.Classes, " "),
			"style":   style,
			"action":  options.Action,
			"method":  method,
			"title":   options.Title,
			"errors":  server.Form,
		},
		"items": items,
	}
}

func (r *Renderer) sanitize(label string) string {
	if label == "" {
		return ""
	}
	return strings.TrimSpace(r.policy.Sanitize(label))
}

func fieldID(field *form.Field) string {
	if field.Key() == "" {
		return "formstate-" + field.ID()
	}
	return "formstate-" + strings.NewReplacer(".", "-", "[", "-", "]", "").Replace(field.Key())
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, formatValue(item))
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}
