package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// RemoteNote структура заметки для обмена с сервером
type RemoteNote struct {
	ID         *int64  `json:"id,omitempty"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Color      *string `json:"color,omitempty"`
	IsFavorite bool    `json:"is_favorite"`
	Timestamp  *int64  `json:"timestamp,omitempty"`
	CreatedAt  *string `json:"created_at,omitempty"`
	UpdatedAt  *string `json:"updated_at,omitempty"`
}

// UnmarshalJSON accepts quoted scalars the server may send, e.g. "7" for an id or "true" for is_favorite
func (r *RemoteNote) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID         *flexInt64  `json:"id"`
		Title      flexString  `json:"title"`
		Content    flexString  `json:"content"`
		Color      *flexString `json:"color"`
		IsFavorite flexBool    `json:"is_favorite"`
		Timestamp  *flexInt64  `json:"timestamp"`
		CreatedAt  *flexString `json:"created_at"`
		UpdatedAt  *flexString `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*r = RemoteNote{
		ID:         wire.ID.ptr(),
		Title:      string(wire.Title),
		Content:    string(wire.Content),
		Color:      wire.Color.ptr(),
		IsFavorite: bool(wire.IsFavorite),
		Timestamp:  wire.Timestamp.ptr(),
		CreatedAt:  wire.CreatedAt.ptr(),
		UpdatedAt:  wire.UpdatedAt.ptr(),
	}
	return nil
}

// unquote returns the text of a JSON scalar, stripping string quotes
func unquote(data []byte) (string, bool, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", false, err
		}
		return strings.TrimSpace(s), true, nil
	}
	return string(data), false, nil
}

type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(data []byte) error {
	text, _, err := unquote(data)
	if err != nil {
		return err
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		*f = flexInt64(n)
		return nil
	}
	// 7.0 и 1.7e12 тоже целые
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || v != math.Trunc(v) || math.Abs(v) > math.MaxInt64 {
		return fmt.Errorf("not an integer: %s", data)
	}
	*f = flexInt64(v)
	return nil
}

func (f *flexInt64) ptr() *int64 {
	if f == nil {
		return nil
	}
	v := int64(*f)
	return &v
}

type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	text, _, err := unquote(data)
	if err != nil {
		return err
	}
	switch strings.ToLower(text) {
	case "true", "1", "yes":
		*f = true
	case "false", "0", "no", "", "null":
		*f = false
	default:
		return fmt.Errorf("not a boolean: %s", data)
	}
	return nil
}

type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	text, quoted, err := unquote(data)
	if err != nil {
		return err
	}
	if quoted {
		// внутри строки пробелы значимы
		return json.Unmarshal(bytes.TrimSpace(data), (*string)(f))
	}
	switch {
	case text == "null":
	case strings.HasPrefix(text, "{"), strings.HasPrefix(text, "["):
		return fmt.Errorf("not a scalar: %s", data)
	default:
		*f = flexString(text)
	}
	return nil
}

func (f *flexString) ptr() *string {
	if f == nil {
		return nil
	}
	v := string(*f)
	return &v
}

// ToRemote converts a note to its wire form. Local ids are not sent.
func ToRemote(n Note) RemoteNote {
	color := n.Color.String()
	timestamp := n.Timestamp

	remote := RemoteNote{
		Title:      n.Title,
		Content:    n.Content,
		Color:      &color,
		IsFavorite: n.IsPinned,
		Timestamp:  &timestamp,
	}
	if id, ok := n.ID.Remote(); ok {
		remote.ID = &id
	}

	return remote
}

// FromRemote converts a wire note into a local one, filling absent fields
func FromRemote(r RemoteNote, now func() time.Time) Note {
	if now == nil {
		now = time.Now
	}

	note := Note{
		Title:    r.Title,
		Content:  r.Content,
		Color:    FallbackColor,
		IsPinned: r.IsFavorite,
	}

	if r.ID != nil {
		note.ID = RemoteID(*r.ID)
	} else {
		note.ID = NewLocalID()
	}

	if r.Color != nil {
		if color, ok := ParseNoteColor(*r.Color); ok {
			note.Color = color
		}
	}

	if r.Timestamp != nil {
		note.Timestamp = *r.Timestamp
	} else {
		note.Timestamp = now().UnixMilli()
	}

	return note
}
