package model

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Reserved answer keys used on anonymous submissions, when no prior
// identity is known.
const (
	UserNameKey  = "user_name"
	UserEmailKey = "user_email"
)

// Answer is a single submitted value: either a string or an ordered
// list of strings (checkbox fields).
type Answer struct {
	Text string
	List []string

	list bool
}

func TextAnswer(s string) Answer {
	return Answer{Text: s}
}

func ListAnswer(items ...string) Answer {
	return Answer{List: items, list: true}
}

func (a Answer) IsList() bool {
	return a.list
}

// Empty reports whether the answer counts as absent for validation:
// a blank string after trimming, or an empty list.
func (a Answer) Empty() bool {
	if a.list {
		return len(a.List) == 0
	}
	return strings.TrimSpace(a.Text) == ""
}

// Toggle returns a list answer with the option added if absent, removed
// if present. Order of the remaining entries is preserved, so toggling
// twice restores the prior state.
func (a Answer) Toggle(option string) Answer {
	out := make([]string, 0, len(a.List)+1)
	found := false
	for _, item := range a.List {
		if item == option {
			found = true
			continue
		}
		out = append(out, item)
	}
	if !found {
		out = append(out, option)
	}
	return ListAnswer(out...)
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.list {
		if a.List == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(a.List)
	}
	return json.Marshal(a.Text)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*a = TextAnswer(text)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = ListAnswer(list...)
		return nil
	}

	if string(data) == "null" {
		*a = Answer{}
		return nil
	}
	return errors.Errorf("answer must be a string or a list of strings, got %s", data)
}

// Answers maps field ids (or the reserved user_name/user_email keys)
// to submitted values.
type Answers map[string]Answer
