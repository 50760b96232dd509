package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	MaxTemplateName    = 40
	MaxTemplateButtons = 8
	MaxButtonLabel     = 64
)

var (
	ErrInvalidButton = errors.New("invalid button")
	ErrInvalidName   = errors.New("invalid template name")
)

type Button struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Template is a reusable message that replaces the spreadsheet body when selected.
//
// Photo holds an image reference: a local file path, an http(s) URL or a Telegram file id.
type Template struct {
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	Photo     string    `json:"photo,omitempty"`
	Buttons   []Button  `json:"buttons"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t Template) Empty() bool {
	return strings.TrimSpace(t.Text) == "" && strings.TrimSpace(t.Photo) == ""
}

func (t Template) Clone() Template {
	cp := t
	cp.Buttons = append([]Button(nil), t.Buttons...)
	return cp
}

// ParseButton parses "Label | https://link" into a Button.
func ParseButton(input string) (Button, error) {
	parts := strings.Split(input, "|")
	if len(parts) != 2 {
		return Button{}, fmt.Errorf("%w: expected \"label | url\"", ErrInvalidButton)
	}
	label := strings.TrimSpace(parts[0])
	link := strings.TrimSpace(parts[1])
	if label == "" || link == "" {
		return Button{}, fmt.Errorf("%w: label and url are required", ErrInvalidButton)
	}
	if len([]rune(label)) > MaxButtonLabel {
		return Button{}, fmt.Errorf("%w: label too long", ErrInvalidButton)
	}
	u, err := url.Parse(link)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return Button{}, fmt.Errorf("%w: url must be http(s)", ErrInvalidButton)
	}
	return Button{Text: label, URL: link}, nil
}

// NormalizeTemplateName trims the name and checks its length and charset.
// Names travel inside callback data, so ':' is reserved.
func NormalizeTemplateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > MaxTemplateName {
		return "", fmt.Errorf("%w: 1-%d bytes", ErrInvalidName, MaxTemplateName)
	}
	if strings.ContainsAny(name, ":\n\r\t") {
		return "", fmt.Errorf("%w: ':' and control characters are not allowed", ErrInvalidName)
	}
	return name, nil
}
