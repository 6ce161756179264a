package model

import (
	"errors"
	"strings"
)

// Item is the domain model for a todo entry.
// ID is assigned by the persistence service and never reused.
type Item struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// ErrEmptyText is returned when an item label is blank.
var ErrEmptyText = errors.New("empty text")

// NormalizeText trims the label and rejects blank input.
func NormalizeText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

// Stats counts done and pending items.
func Stats(items []Item) (done, pending int) {
	for _, it := range items {
		if it.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
