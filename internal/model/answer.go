package model

import (
	"strconv"
	"strings"
)

// Answer is a captured response to a strategic question. Exactly one of
// the fields is expected to be set, matching the question's input kind.
type Answer struct {
	Text           string `json:"text,omitempty" bson:"text,omitempty"`                     // Free text
	Rating         int    `json:"rating,omitempty" bson:"rating,omitempty"`                 // Scale 1-10
	SelectedOption string `json:"selectedOption,omitempty" bson:"selectedOption,omitempty"` // Choice
}

// IsEmpty reports whether nothing was captured
func (a Answer) IsEmpty() bool {
	return strings.TrimSpace(a.Text) == "" && a.Rating == 0 && strings.TrimSpace(a.SelectedOption) == ""
}

// Value returns the answer as a single display string
func (a Answer) Value() string {
	switch {
	case a.SelectedOption != "":
		return a.SelectedOption
	case a.Rating != 0:
		return strconv.Itoa(a.Rating)
	default:
		return a.Text
	}
}

// ScaleValue returns the numeric rating, falling back to the leading
// integer of Text ("9", "8/10"). ok is false when neither is present.
func (a Answer) ScaleValue() (int, bool) {
	if a.Rating != 0 {
		return a.Rating, true
	}
	t := strings.TrimSpace(a.Text)
	end := 0
	for end < len(t) && t[end] >= '0' && t[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(t[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Answers maps question key to answer
type Answers map[string]Answer

// Clone returns an independent copy
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Raw flattens the answers into the key → string map handed downstream
func (a Answers) Raw() map[string]string {
	out := make(map[string]string, len(a))
	for k, v := range a {
		out[k] = v.Value()
	}
	return out
}
