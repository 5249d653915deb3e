package usecase

import "regexp"

const (
	PlaceholderSubject              = "subject"
	PlaceholderSender               = "sender"
	PlaceholderSenderLine           = "senderLine"
	PlaceholderReceiver             = "receiver"
	PlaceholderReceiverName         = "receiverName"
	PlaceholderReceiverOrganization = "receiverOrganization"
	PlaceholderBody                 = "body"
	PlaceholderThread               = "thread"
	PlaceholderInstructions         = "instructions"
	PlaceholderTone                 = "tone"
	PlaceholderLength               = "length"
	PlaceholderLanguageDetect       = "languageDetect"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z]+)\}`)

// RenderTemplate replaces every {key} found in values in one left-to-right pass. Substituted text
// is never scanned again and keys missing from values are left as they are.
func RenderTemplate(template string, values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(
		template, func(match string) string {
			key := match[1 : len(match)-1]
			if value, ok := values[key]; ok {
				return value
			}
			return match
		},
	)
}

// HasPlaceholder reports whether template references key.
func HasPlaceholder(template, key string) bool {
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if m[1] == key {
			return true
		}
	}
	return false
}
