// Package naming derives final recording file names from user-supplied
// titles.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const fallbackTitle = "Screen Recording"

// fileNameReplacer replaces filesystem-unsafe characters with safe
// alternatives. Slashes, backslashes, colons, and asterisks become
// dashes; other unsafe characters are removed.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename
// and trims surrounding whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// CleanTitle collapses separator runs in a raw title into single spaces
// and title-cases the result. A title with nothing usable in it falls
// back to a generic name.
func CleanTitle(raw string) string {
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range raw {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return fallbackTitle
	}
	return cases.Title(language.Und).String(title)
}

// OutputPath builds the final recording path under dir for a title
// recorded at the given time. An empty title yields a timestamped
// generic name so consecutive untitled recordings stay distinct.
func OutputPath(dir, title string, recordedAt time.Time) string {
	name := SanitizeFileName(CleanTitle(title))
	if name == fallbackTitle {
		name = fmt.Sprintf("%s %s", fallbackTitle, recordedAt.Format("2006-01-02 150405"))
	}
	return filepath.Join(dir, name+".mp4")
}
