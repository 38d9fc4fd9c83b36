package document

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	labelPolicyOnce sync.Once
	labelPolicy     *bluemonday.Policy
)

// maxSanitizePasses bounds the unescape/sanitize loop for nested entity
// encodings such as "&amp;lt;b&amp;gt;".
const maxSanitizePasses = 8

// sanitizeLabel strips markup from display text supplied by an extension.
// Entities are decoded before each strict policy pass so tags written as
// "&lt;img&gt;" are removed too. The loop stops once a pass changes nothing,
// and plain text such as "A & B" comes back unescaped.
func sanitizeLabel(raw string) string {
	text := strings.TrimSpace(raw)
	for pass := 0; pass < maxSanitizePasses; pass++ {
		cleaned := strings.TrimSpace(html.UnescapeString(labelSanitizer().Sanitize(html.UnescapeString(text))))
		if cleaned == text {
			return text
		}
		text = cleaned
	}
	// Still changing: keep the policy's escaped output.
	return labelSanitizer().Sanitize(text)
}

func labelSanitizer() *bluemonday.Policy {
	labelPolicyOnce.Do(func() {
		labelPolicy = bluemonday.StrictPolicy()
	})
	return labelPolicy
}
