package corpus

import (
	"regexp"
	"strings"
)

// accentRepairs undoes the UTF-8-read-as-Latin-1 damage found in
// datasetSentences.txt. Order matters: "Ã " must be handled before the bare
// "Ã", and the soft hyphen trailing "í" only shows up once "Ã" is rewritten.
var accentRepairs = []struct {
	from, to string
}{
	{"Ã¡", "á"},
	{"Ã©", "é"},
	{"Ã±", "ñ"},
	{"Â", ""},
	{"Ã¯", "ï"},
	{"Ã¼", "ü"},
	{"Ã¢", "â"},
	{"Ã¨", "è"},
	{"Ã¶", "ö"},
	{"Ã¦", "æ"},
	{"Ã³", "ó"},
	{"Ã»", "û"},
	{"Ã´", "ô"},
	{"Ã£", "ã"},
	{"Ã§", "ç"},
	{"Ã ", "à "},
	{"Ã", "í"},
	{"í\u00ad", "í"},
}

var bracketTokens = strings.NewReplacer("-LRB-", "(", "-RRB-", ")")

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanText normalizes a raw treebank sentence so it can be matched against
// the phrase dictionary. Accents are repaired to a fixed point before bracket
// tokens are rewritten, since a stray "Â" can sit inside one.
func CleanText(s string) string {
	for {
		repaired := repairAccents(s)
		if repaired == s {
			break
		}
		s = repaired
	}
	s = bracketTokens.Replace(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func repairAccents(s string) string {
	for _, r := range accentRepairs {
		s = strings.ReplaceAll(s, r.from, r.to)
	}
	return s
}
