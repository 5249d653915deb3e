package usecase

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	styleScriptPattern = regexp.MustCompile(`(?is)<(style|script)\b[^>]*>.*?</(style|script)\s*>`)
	blankLinesPattern  = regexp.MustCompile(`\n\s*\n`)
)

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "div": true, "dl": true,
	"dt": true, "dd": true, "footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true, "li": true, "ol": true,
	"pre": true, "section": true, "table": true, "tr": true, "ul": true,
}

// StripHTML turns an HTML mail body into plain text. Paragraphs are separated by exactly one
// blank line.
func StripHTML(body string) string {
	if !strings.Contains(body, "<") {
		return normalizeText(body)
	}
	body = styleScriptPattern.ReplaceAllString(body, "")
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return normalizeText(body)
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "style", "script", "head", "title":
				return
			case "br":
				sb.WriteString("\n")
				return
			}
		}
		isBlock := n.Type == html.ElementNode && blockElements[n.Data]
		if isBlock {
			breakLine(&sb)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		switch {
		case n.Type == html.ElementNode && n.Data == "p":
			breakLine(&sb)
			sb.WriteString("\n")
		case isBlock:
			breakLine(&sb)
		}
	}
	walk(doc)
	return normalizeText(sb.String())
}

// breakLine ends the current line unless it is already ended.
func breakLine(sb *strings.Builder) {
	if text := sb.String(); text != "" && !strings.HasSuffix(text, "\n") {
		sb.WriteString("\n")
	}
}

func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\u00a0", " ")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(strings.TrimLeft(line, " \t"), " \t")
	}
	text = strings.Join(lines, "\n")
	text = blankLinesPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// TextToHTML prepares plain text for an HTML draft body.
func TextToHTML(text string) string {
	text = html.EscapeString(text)
	return strings.ReplaceAll(text, "\n", "<br>")
}
