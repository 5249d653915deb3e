package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "paragraphs become blank lines",
			in:   "<p>Hello Bob,</p><p>see you on Monday.</p><p>Alice</p>",
			want: "Hello Bob,\n\nsee you on Monday.\n\nAlice",
		},
		{
			name: "style and script are dropped",
			in: "<html><head><style>p { color: red; }</style></head><body>" +
				"<script>alert('x')</script><div>Text</div></body></html>",
			want: "Text",
		},
		{
			name: "line breaks and entities",
			in:   "Line one<br>Line two<br/>&amp; three&nbsp;four",
			want: "Line one\nLine two\n& three four",
		},
		{
			name: "indentation and blank runs collapse",
			in:   "<div>\n    first\n\n\n\n    second\n</div>",
			want: "first\n\nsecond",
		},
		{
			name: "plain text is kept",
			in:   "  Just text\r\n\r\n\r\nwith lines  ",
			want: "Just text\n\nwith lines",
		},
		{
			name: "lists",
			in:   "<ul><li>one</li><li>two</li></ul>",
			want: "one\ntwo",
		},
	}
	for _, tc := range tests {
		t.Run(
			tc.name, func(t *testing.T) {
				got := StripHTML(tc.in)
				assert.Equal(t, tc.want, got)
				assert.NotContains(t, got, "<")
			},
		)
	}
}

func TestStripHTML_NoMarkupLeft(t *testing.T) {
	in := `<table><tr><td><b>Invoice</b> <a href="https://example.com">#42</a></td></tr></table>` +
		`<p style="margin:0">Due <i>tomorrow</i></p><!-- tracking -->`

	got := StripHTML(in)
	assert.NotContains(t, got, "<")
	assert.NotContains(t, got, ">")
	assert.NotContains(t, got, "tracking")
	assert.True(t, strings.Contains(got, "Invoice #42"))
	assert.True(t, strings.Contains(got, "Due tomorrow"))
}

func TestTextToHTML(t *testing.T) {
	assert.Equal(t, "Hi &lt;Bob&gt;,<br><br>thanks", TextToHTML("Hi <Bob>,\n\nthanks"))
}
