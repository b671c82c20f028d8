package model

// AnswerKind is the stored shape of an answer for a given field type.
type AnswerKind int

const (
	AnswerText AnswerKind = iota // single string
	AnswerList                   // ordered list of strings
)

type Widget string

const (
	WidgetTextInput  Widget = "text_input"
	WidgetTextArea   Widget = "text_area"
	WidgetRadioGroup Widget = "radio_group"
	WidgetCheckboxes Widget = "checkboxes"
	WidgetSelect     Widget = "select"
	WidgetDatePicker Widget = "date_picker"
	WidgetFilePicker Widget = "file_picker"
)

// InputSpec is the presentation+input contract for one field type.
type InputSpec struct {
	Widget Widget
	Answer AnswerKind
	// Exclusive means the answer is exactly one of the field's options.
	Exclusive bool
}

var inputSpecs = map[FieldType]InputSpec{
	ShortText:      {Widget: WidgetTextInput, Answer: AnswerText},
	Paragraph:      {Widget: WidgetTextArea, Answer: AnswerText},
	MultipleChoice: {Widget: WidgetRadioGroup, Answer: AnswerText, Exclusive: true},
	Checkbox:       {Widget: WidgetCheckboxes, Answer: AnswerList},
	Dropdown:       {Widget: WidgetSelect, Answer: AnswerText, Exclusive: true},
	Date:           {Widget: WidgetDatePicker, Answer: AnswerText},
	FileUpload:     {Widget: WidgetFilePicker, Answer: AnswerText},
}

// Input returns the input contract for the field type.
// Unknown types fall back to a plain text input.
func (t FieldType) Input() InputSpec {
	if spec, ok := inputSpecs[t]; ok {
		return spec
	}
	return inputSpecs[ShortText]
}
