package layout

// DefaultNamespace prefixes every generated class.
const DefaultNamespace = "el"

const autoWidth = "auto"

// Option configures an Engine.
type Option func(*Engine)

// WithNamespace replaces the class prefix. Empty keeps the default.
func WithNamespace(namespace string) Option {
	return func(e *Engine) {
		if namespace != "" {
			e.namespace = namespace
		}
	}
}

// WithMeasurer replaces the label measurer.
func WithMeasurer(m Measurer) Option {
	return func(e *Engine) {
		if m != nil {
			e.measurer = m
		}
	}
}

// Engine computes layouts for one set of form properties.
type Engine struct {
	props     FormProps
	namespace string
	measurer  Measurer
}

// New creates an Engine for props.
func New(props FormProps, options ...Option) *Engine {
	e := &Engine{
		props:     props,
		namespace: DefaultNamespace,
		measurer:  NewRuneWidthMeasurer(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// Namespace returns the class prefix in use.
func (e *Engine) Namespace() string {
	return e.namespace
}

// Compute lays out items in order. Items inheriting an auto form label width
// or declaring their own auto width contribute their measured label width;
// the widest becomes the form auto width.
func (e *Engine) Compute(items []ItemProps) FormLayout {
	measured := make([]float64, len(items))
	var widest float64
	registered := false
	for idx, item := range items {
		measured[idx] = e.measurer.MeasureLabel(e.label(item), e.itemSize(item))
		if e.isAutoWidth(item) {
			registered = true
			widest = max(widest, measured[idx])
		}
	}

	out := FormLayout{
		Classes:        e.FormClasses(),
		AutoLabelWidth: "0",
		Items:          make([]ItemLayout, 0, len(items)),
	}
	if registered {
		out.AutoLabelWidth = formatPixels(widest)
	}

	for idx, item := range items {
		out.Items = append(out.Items, ItemLayout{
			Classes:        e.ItemClasses(item),
			Label:          e.label(item),
			LabelStyle:     e.LabelStyle(item),
			LabelWrapStyle: e.labelWrapStyle(item, measured[idx], widest, registered),
			ContentStyle:   e.contentStyle(item, measured[idx], widest),
			MeasuredWidth:  measured[idx],
			ShowError:      e.showError(item),
			Message:        item.Message,
		})
	}
	return out
}

// FormClasses returns the classes of the form element.
func (e *Engine) FormClasses() []string {
	block := e.namespace + "-form"
	classes := []string{
		block,
		block + "--label-" + string(e.props.position()),
		block + "--" + string(e.props.size()),
	}
	if e.props.Inline {
		classes = append(classes, block+"--inline")
	}
	return classes
}

// ItemClasses returns the classes of one item element.
func (e *Engine) ItemClasses(item ItemProps) []string {
	block := e.namespace + "-form-item"
	classes := []string{block, block + "--" + string(e.itemSize(item))}

	switch item.Status {
	case StatusError:
		classes = append(classes, "is-error")
	case StatusValidating:
		classes = append(classes, "is-validating")
	case StatusSuccess:
		classes = append(classes, "is-success")
	}
	if item.Required {
		classes = append(classes, "is-required")
	}
	if e.props.HideRequiredAsterisk {
		classes = append(classes, "is-no-asterisk")
	}
	if e.props.RequireAsteriskPosition == AsteriskRight {
		classes = append(classes, "asterisk-right")
	} else {
		classes = append(classes, "asterisk-left")
	}
	if e.props.StatusIcon {
		classes = append(classes, block+"--feedback")
	}
	return classes
}

// LabelStyle returns the style of the label element. Top labels carry no
// width.
func (e *Engine) LabelStyle(item ItemProps) Style {
	if e.props.position() == LabelTop {
		return Style{}
	}
	width := item.LabelWidth
	if width == "" {
		width = e.props.LabelWidth
	}
	if width == "" {
		return Style{}
	}
	return Style{"width": AddUnit(width)}
}

func (e *Engine) labelWrapStyle(item ItemProps, own, widest float64, registered bool) Style {
	if e.props.position() == LabelTop || e.props.Inline {
		return Style{}
	}
	if e.props.LabelWidth != autoWidth || !e.isAutoWidth(item) || !registered {
		return Style{}
	}
	property := "margin-left"
	if e.props.position() == LabelLeft {
		property = "margin-right"
	}
	gap := widest - own
	if gap <= 0 {
		return Style{}
	}
	return Style{property: formatPixels(gap)}
}

func (e *Engine) contentStyle(item ItemProps, own, widest float64) Style {
	if e.props.position() == LabelTop || e.props.Inline {
		return Style{}
	}
	width := item.LabelWidth
	if width == "" {
		width = e.props.LabelWidth
	}
	switch {
	case width == "":
		return Style{}
	case width != autoWidth:
		return Style{"margin-left": AddUnit(width)}
	case item.LabelWidth == autoWidth:
		return Style{"margin-left": formatPixels(own)}
	default:
		return Style{"margin-left": formatPixels(widest)}
	}
}

func (e *Engine) showError(item ItemProps) bool {
	if item.Status != StatusError || item.Message == "" {
		return false
	}
	if item.ShowMessage != nil {
		return *item.ShowMessage
	}
	return e.props.ShowMessage == nil || *e.props.ShowMessage
}

func (e *Engine) isAutoWidth(item ItemProps) bool {
	if item.LabelWidth == autoWidth {
		return true
	}
	return item.LabelWidth == "" && e.props.LabelWidth == autoWidth
}

func (e *Engine) itemSize(item ItemProps) Size {
	if item.Size != "" {
		return item.Size
	}
	return e.props.size()
}

func (e *Engine) label(item ItemProps) string {
	if item.Label == "" {
		return ""
	}
	return item.Label + e.props.LabelSuffix
}
