package ocr

import (
	"fmt"
	"strings"
)

// supportedLanguages are the tesseract traineddata packs the extractors have
// keyword tables for.
var supportedLanguages = map[string]struct{}{
	"eng": {},
	"hin": {},
	"mar": {},
}

// ValidateLanguages checks a tesseract language spec like "eng" or "eng+hin".
func ValidateLanguages(languages string) error {
	if strings.TrimSpace(languages) == "" {
		return fmt.Errorf("languages must not be empty")
	}
	for _, lang := range strings.Split(languages, "+") {
		if _, ok := supportedLanguages[strings.TrimSpace(lang)]; !ok {
			return fmt.Errorf("unsupported language %q (supported: eng, hin, mar)", lang)
		}
	}
	return nil
}
