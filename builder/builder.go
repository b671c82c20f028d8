// Package builder implements the form builder's field-list editing
// operations. All operations are pure: they return a fresh slice and
// never mutate or alias their input.
package builder

import (
	"github.com/gofrs/uuid"

	"github.com/formlet/formlet/model"
)

// DefaultOptions are seeded when a field is switched into a choice
// type with no existing options.
var DefaultOptions = []string{"Option 1", "Option 2"}

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// FieldPatch is a partial field update; nil members are left untouched.
type FieldPatch struct {
	Type        *model.FieldType `json:"type,omitempty"`
	Label       *string          `json:"label,omitempty"`
	Required    *bool            `json:"required,omitempty"`
	Options     *[]string        `json:"options,omitempty"`
	Placeholder *string          `json:"placeholder,omitempty"`
}

// AddField appends a new short_text field with a generated unique id.
func AddField(fields []model.Field) []model.Field {
	out := clone(fields)
	return append(out, model.Field{
		ID:    uuid.Must(uuid.NewV4()).String(),
		Type:  model.ShortText,
		Label: "Untitled question",
	})
}

// UpdateField merges patch into the field with the given id. Switching
// away from a choice type clears the options; switching into a choice
// type with no options seeds two default placeholder options. Unknown
// ids leave the sequence unchanged.
func UpdateField(fields []model.Field, id string, patch FieldPatch) []model.Field {
	out := clone(fields)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		f := &out[i]

		if patch.Label != nil {
			f.Label = *patch.Label
		}
		if patch.Required != nil {
			f.Required = *patch.Required
		}
		if patch.Options != nil {
			f.Options = append([]string(nil), (*patch.Options)...)
		}
		if patch.Placeholder != nil {
			f.Placeholder = *patch.Placeholder
		}
		if patch.Type != nil && *patch.Type != f.Type {
			f.Type = *patch.Type
		}
		normalize(f)
		break
	}
	return out
}

// RemoveField drops the field with the given id.
func RemoveField(fields []model.Field, id string) []model.Field {
	out := make([]model.Field, 0, len(fields))
	for _, f := range fields {
		if f.ID == id {
			continue
		}
		out = append(out, copyField(f))
	}
	return out
}

// MoveField swaps the field with its neighbor in the given direction.
// The first field cannot move up and the last cannot move down; those
// calls return the sequence unchanged.
func MoveField(fields []model.Field, id string, dir Direction) []model.Field {
	out := clone(fields)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		switch dir {
		case Up:
			if i > 0 {
				out[i-1], out[i] = out[i], out[i-1]
			}
		case Down:
			if i < len(out)-1 {
				out[i], out[i+1] = out[i+1], out[i]
			}
		}
		break
	}
	return out
}

// normalize enforces the per-type attribute invariants: options exist
// iff the type is a choice type, placeholders only on text types.
func normalize(f *model.Field) {
	if f.Type.HasOptions() {
		if len(f.Options) == 0 {
			f.Options = append([]string(nil), DefaultOptions...)
		}
	} else {
		f.Options = nil
	}
	if !f.Type.HasPlaceholder() {
		f.Placeholder = ""
	}
}

func clone(fields []model.Field) []model.Field {
	out := make([]model.Field, 0, len(fields)+1)
	for _, f := range fields {
		out = append(out, copyField(f))
	}
	return out
}

func copyField(f model.Field) model.Field {
	f.Options = append([]string(nil), f.Options...)
	if len(f.Options) == 0 {
		f.Options = nil
	}
	return f
}
