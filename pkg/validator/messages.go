package validator

// RangeMessages holds the length/bound templates for one value kind.
type RangeMessages struct {
	Len   string `json:"len,omitempty" yaml:"len,omitempty"`
	Min   string `json:"min,omitempty" yaml:"min,omitempty"`
	Max   string `json:"max,omitempty" yaml:"max,omitempty"`
	Range string `json:"range,omitempty" yaml:"range,omitempty"`
}

// Messages are fmt templates used when a rule has no message of its own. The
// first verb always receives the field path.
type Messages struct {
	Default    string        `json:"default,omitempty" yaml:"default,omitempty"`
	Required   string        `json:"required,omitempty" yaml:"required,omitempty"`
	Whitespace string        `json:"whitespace,omitempty" yaml:"whitespace,omitempty"`
	Type       string        `json:"type,omitempty" yaml:"type,omitempty"`
	Enum       string        `json:"enum,omitempty" yaml:"enum,omitempty"`
	Pattern    string        `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	String     RangeMessages `json:"string,omitempty" yaml:"string,omitempty"`
	Number     RangeMessages `json:"number,omitempty" yaml:"number,omitempty"`
	Array      RangeMessages `json:"array,omitempty" yaml:"array,omitempty"`
}

// DefaultMessages returns the built-in English templates.
func DefaultMessages() Messages {
	return Messages{
		Default:    "Validation error on field %s",
		Required:   "%s is required",
		Whitespace: "%s cannot be empty",
		Type:       "%s is not a valid %s",
		Enum:       "%s must be one of %s",
		Pattern:    "%s value %s does not match pattern %s",
		String: RangeMessages{
			Len:   "%s must be exactly %s characters",
			Min:   "%s must be at least %s characters",
			Max:   "%s cannot be longer than %s characters",
			Range: "%s must be between %s and %s characters",
		},
		Number: RangeMessages{
			Len:   "%s must equal %s",
			Min:   "%s cannot be less than %s",
			Max:   "%s cannot be greater than %s",
			Range: "%s must be between %s and %s",
		},
		Array: RangeMessages{
			Len:   "%s must be exactly %s in length",
			Min:   "%s cannot be less than %s in length",
			Max:   "%s cannot be greater than %s in length",
			Range: "%s must be between %s and %s in length",
		},
	}
}

func (m Messages) merge(override Messages) Messages {
	m.Default = pick(override.Default, m.Default)
	m.Required = pick(override.Required, m.Required)
	m.Whitespace = pick(override.Whitespace, m.Whitespace)
	m.Type = pick(override.Type, m.Type)
	m.Enum = pick(override.Enum, m.Enum)
	m.Pattern = pick(override.Pattern, m.Pattern)
	m.String = m.String.merge(override.String)
	m.Number = m.Number.merge(override.Number)
	m.Array = m.Array.merge(override.Array)
	return m
}

func (r RangeMessages) merge(override RangeMessages) RangeMessages {
	r.Len = pick(override.Len, r.Len)
	r.Min = pick(override.Min, r.Min)
	r.Max = pick(override.Max, r.Max)
	r.Range = pick(override.Range, r.Range)
	return r
}

func pick(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
