package layout

// LabelPosition places labels relative to their inputs.
type LabelPosition string

const (
	LabelRight LabelPosition = "right"
	LabelLeft  LabelPosition = "left"
	LabelTop   LabelPosition = "top"
)

// Size is the component size token.
type Size string

const (
	SizeLarge   Size = "large"
	SizeDefault Size = "default"
	SizeSmall   Size = "small"
)

// Valid reports whether s is a known size. The zero value is valid.
func (s Size) Valid() bool {
	switch s {
	case "", SizeLarge, SizeDefault, SizeSmall:
		return true
	}
	return false
}

// Status mirrors the validation state of an item.
type Status string

const (
	StatusNone       Status = ""
	StatusValidating Status = "validating"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// AsteriskPosition places the required asterisk.
type AsteriskPosition string

const (
	AsteriskLeft  AsteriskPosition = "left"
	AsteriskRight AsteriskPosition = "right"
)

// FormProps are the form-level layout properties.
type FormProps struct {
	Inline                  bool             `json:"inline,omitempty" yaml:"inline,omitempty" mapstructure:"inline"`
	LabelPosition           LabelPosition    `json:"label_position,omitempty" yaml:"label_position,omitempty" mapstructure:"label_position"`
	LabelWidth              string           `json:"label_width,omitempty" yaml:"label_width,omitempty" mapstructure:"label_width"`
	LabelSuffix             string           `json:"label_suffix,omitempty" yaml:"label_suffix,omitempty" mapstructure:"label_suffix"`
	Size                    Size             `json:"size,omitempty" yaml:"size,omitempty" mapstructure:"size"`
	HideRequiredAsterisk    bool             `json:"hide_required_asterisk,omitempty" yaml:"hide_required_asterisk,omitempty" mapstructure:"hide_required_asterisk"`
	RequireAsteriskPosition AsteriskPosition `json:"require_asterisk_position,omitempty" yaml:"require_asterisk_position,omitempty" mapstructure:"require_asterisk_position"`
	StatusIcon              bool             `json:"status_icon,omitempty" yaml:"status_icon,omitempty" mapstructure:"status_icon"`
	ShowMessage             *bool            `json:"show_message,omitempty" yaml:"show_message,omitempty" mapstructure:"show_message"`
	Disabled                bool             `json:"disabled,omitempty" yaml:"disabled,omitempty" mapstructure:"disabled"`
}

func (p FormProps) position() LabelPosition {
	if p.LabelPosition == "" {
		return LabelRight
	}
	return p.LabelPosition
}

func (p FormProps) size() Size {
	if p.Size == "" {
		return SizeDefault
	}
	return p.Size
}

// ItemProps describe one form item.
type ItemProps struct {
	Label       string
	LabelWidth  string
	Size        Size
	Required    bool
	Status      Status
	Message     string
	ShowMessage *bool
}

// ItemLayout is the computed presentation of one item.
type ItemLayout struct {
	Classes        []string
	Label          string
	LabelStyle     Style
	LabelWrapStyle Style
	ContentStyle   Style
	MeasuredWidth  float64
	ShowError      bool
	Message        string
}

// FormLayout is the computed presentation of a whole form.
type FormLayout struct {
	Classes        []string
	AutoLabelWidth string
	Items          []ItemLayout
}
