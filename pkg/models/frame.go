package models

// FrameType tags a result frame with the shape it was built for.
type FrameType string

const (
	FrameTypeTimeSeries  FrameType = "timeseries"
	FrameTypeTable       FrameType = "table"
	FrameTypeSingleValue FrameType = "single-value"
)

// Field is a named column of a result frame. Values hold time.Time, float64
// or string entries depending on the field; all fields of a frame have the
// same length.
type Field struct {
	Name   string        `json:"name"`
	Unit   string        `json:"unit,omitempty"`
	Values []interface{} `json:"values"`
}

// Frame is one shape-tagged result set handed to the rendering layer.
type Frame struct {
	RefID  string    `json:"refId"`
	Type   FrameType `json:"type"`
	Fields []*Field  `json:"fields"`
}

// NewField creates a field with preallocated value storage.
func NewField(name, unit string, length int) *Field {
	return &Field{
		Name:   name,
		Unit:   unit,
		Values: make([]interface{}, length),
	}
}

// Rows returns the number of rows in the frame, taken from its first field.
func (f *Frame) Rows() int {
	if len(f.Fields) == 0 {
		return 0
	}
	return len(f.Fields[0].Values)
}

// FieldByName returns the named field, or nil when absent.
func (f *Frame) FieldByName(name string) *Field {
	for _, field := range f.Fields {
		if field.Name == name {
			return field
		}
	}
	return nil
}
