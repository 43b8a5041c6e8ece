package app

import (
	"github.com/gomarkdown/markdown"
)

const placeholderMarkdown = "Please set axes in *Settings*"

// placeholderHTML is shown instead of a chart until every role is selected
var placeholderHTML = []byte(`<div style="margin-top: 60px; text-align: center; font-weight: 100; font-size: 30px;">` +
	string(markdown.ToHTML([]byte(placeholderMarkdown), nil, nil)) +
	`</div>`)

// PlaceholderHTML returns a copy of the not-ready message markup
func PlaceholderHTML() []byte {
	return append([]byte(nil), placeholderHTML...)
}
