package model

import "time"

type FieldType string

const (
	ShortText      FieldType = "short_text"
	Paragraph      FieldType = "paragraph"
	MultipleChoice FieldType = "multiple_choice"
	Checkbox       FieldType = "checkbox"
	Dropdown       FieldType = "dropdown"
	Date           FieldType = "date"
	FileUpload     FieldType = "file_upload"
)

func (t FieldType) Valid() bool {
	_, ok := inputSpecs[t]
	return ok
}

// HasOptions reports whether fields of this type carry an options list.
func (t FieldType) HasOptions() bool {
	switch t {
	case MultipleChoice, Checkbox, Dropdown:
		return true
	}
	return false
}

// HasPlaceholder reports whether fields of this type carry a placeholder.
func (t FieldType) HasPlaceholder() bool {
	return t == ShortText || t == Paragraph
}

type Field struct {
	ID          string    `json:"id"`
	Type        FieldType `json:"type"`
	Label       string    `json:"label"`
	Required    bool      `json:"required"`
	Options     []string  `json:"options,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
}

type Theme struct {
	PrimaryColor    string `json:"primary_color,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
	FontFamily      string `json:"font_family,omitempty"`
}

type Settings struct {
	AllowMultipleSubmissions bool  `json:"allow_multiple_submissions"`
	RequireAuth              bool  `json:"require_auth"`
	Theme                    Theme `json:"theme"`
}

func DefaultSettings() Settings {
	return Settings{AllowMultipleSubmissions: true}
}

type Form struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Fields      []Field   `json:"fields"`
	Settings    Settings  `json:"settings"`
	IsPublished bool      `json:"is_published"`
	OwnerID     string    `json:"owner_id,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// FieldByID returns the field with the given id, or nil.
func (f *Form) FieldByID(id string) *Field {
	for i := range f.Fields {
		if f.Fields[i].ID == id {
			return &f.Fields[i]
		}
	}
	return nil
}

type Metadata struct {
	TimeTaken   int64  `json:"time_taken"`
	UserAgent   string `json:"user_agent"`
	TabSwitches int    `json:"tab_switches"`
}

type Response struct {
	ID          string    `json:"id,omitempty"`
	FormID      string    `json:"form_id"`
	UserID      *string   `json:"user_id,omitempty"`
	Answers     Answers   `json:"answers"`
	Metadata    Metadata  `json:"metadata"`
	SubmittedAt time.Time `json:"submitted_at,omitempty"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
