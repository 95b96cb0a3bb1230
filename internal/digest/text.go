package digest

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// PlainText converts a rendered HTML body into the markdown-flavoured text
// part of a multipart email.
func PlainText(htmlContent string) (string, error) {
	md, err := htmltomarkdown.ConvertString(htmlContent)
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return cleanText(md), nil
}

// cleanText trims trailing whitespace and collapses runs of blank lines.
func cleanText(md string) string {
	lines := strings.Split(md, "\n")
	var out []string
	blank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, strings.TrimRight(line, " \t"))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
