package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var toASCII = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	norm.NFC,
)

var (
	hyphenApostrophe = regexp.MustCompile(`[-']`)
	multiSpace       = regexp.MustCompile(`\s+`)
	saintWord        = regexp.MustCompile(`\bSAINT\b`)
	arrondissement   = regexp.MustCompile(`(\d{1,2})EME?\s*ARRONDISSEMENT,?\s*(\w+)`)
	trailingNumber   = regexp.MustCompile(`^(.+?)\s+(\d{1,2})$`)
)

// Text canonicalizes free-form location or company text: accents stripped,
// uppercased, hyphens and apostrophes turned into spaces, whitespace
// collapsed, the whole word SAINT abbreviated to ST. Two structural
// rewrites follow, mutually exclusive and in this priority order: an
// explicit arrondissement mention becomes "<CITY> <NN>", then a trailing
// bare district number is zero-padded the same way. Empty or non-text
// input yields the empty string.
func Text(text string) string {
	if text == "" {
		return ""
	}

	s, _, err := transform.String(toASCII, text)
	if err != nil {
		s = text
	}
	s = strings.ToUpper(s)
	s = hyphenApostrophe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))
	s = saintWord.ReplaceAllString(s, "ST")

	if m := arrondissement.FindStringSubmatch(s); m != nil {
		return m[2] + " " + zeroPad(m[1])
	}
	if m := trailingNumber.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1]) + " " + zeroPad(m[2])
	}
	return s
}

// HarmonizeCompany collapses spellings of a company name that differ only
// by case, accents or punctuation onto one key, so "SNCF Connect" and
// "Sncf connect" deduplicate together.
func HarmonizeCompany(name string) string {
	return Text(name)
}

var (
	genderMarker = regexp.MustCompile(`\s*\(?[HFMXDhfmxd](?:\s*[/.\-\\]\s*[HFMXDhfmxd]){1,2}\)?`)
	emptyParens  = regexp.MustCompile(`\(\s*\)`)
	leadingJunk  = regexp.MustCompile(`^\s*[-/\\|]+\s*`)
	trailingJunk = regexp.MustCompile(`\s*[-/\\|]+\s*$`)
	doubleSpace  = regexp.MustCompile(`\s{2,}`)
)

// CleanTitle strips gender-marker suffixes like (H/F) or F/M/X from a job
// title, removes the parentheses and stray separators they leave behind,
// and title-cases each word.
func CleanTitle(title string) string {
	if title == "" {
		return ""
	}

	cleaned := genderMarker.ReplaceAllString(title, "")
	cleaned = emptyParens.ReplaceAllString(cleaned, "")
	cleaned = leadingJunk.ReplaceAllString(cleaned, "")
	cleaned = trailingJunk.ReplaceAllString(cleaned, "")
	cleaned = doubleSpace.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	words := strings.Fields(strings.ToLower(cleaned))
	for i, word := range words {
		words[i] = capitalize(word)
	}
	return strings.Join(words, " ")
}

func capitalize(word string) string {
	r := []rune(word)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

var htmlTag = regexp.MustCompile(`<[^>]+>`)

// CleanDescription flattens an HTML-ish description to plain single-line
// text: tags stripped, line breaks and non-breaking spaces turned into
// spaces, whitespace collapsed.
func CleanDescription(text string) string {
	if text == "" {
		return ""
	}
	s := htmlTag.ReplaceAllString(text, " ")
	s = strings.NewReplacer("\n", " ", "\r", " ", "&nbsp;", " ").Replace(s)
	return strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9\s]`)

// Lexical prepares text for the matching vector space: accents stripped,
// lowercased, everything except letters, digits and spaces removed,
// whitespace collapsed. This is deliberately looser than Text — the
// vector space wants raw tokens, not canonical place names.
func Lexical(text string) string {
	if text == "" {
		return ""
	}
	s, _, err := transform.String(toASCII, text)
	if err != nil {
		s = text
	}
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, "")
	return strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))
}

func zeroPad(num string) string {
	if len(num) == 1 {
		return "0" + num
	}
	return num
}
