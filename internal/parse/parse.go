package parse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// At most this many robots are extracted from a single post, however wide
// the announced number range is.
const maxGroupSize = 5

// Group is the structured result of parsing one announcement post.
type Group struct {
	Robots         []Robot
	Body           string
	ContentWarning string
}

// Robot is one numbered, named entity announced in a post.
type Robot struct {
	Number int32
	Name   Name
}

// Name holds the parts of a robot's display name. Plural is empty for
// singular names; when present it is the matched plural marker text.
type Name struct {
	Prefix string
	Suffix string
	Plural string
}

// Display is the robot's name as written in the announcing post.
func (n Name) Display() string {
	return n.Prefix + n.Suffix + n.Plural
}

var (
	// A bracketed or parenthesized content note, e.g. "[CN: spiders]".
	contentNoteRe = regexp.MustCompile(`(?i)\[\s*cn\s*:([^\]]*)\]\s*|\(\s*cn\s*:([^)]*)\)\s*`)

	// A robot name: a non-whitespace prefix immediately followed by "bot",
	// tolerating punctuation noise between the letters, with an optional
	// plural "s" under the same tolerance.
	nameRe = regexp.MustCompile(`(?i)(\S+?)(b[^\w\s]*o[^\w\s]*t)((?:[^\w\s]*s)?)`)
)

// ParseGroup attempts to read a robot announcement out of free-form post
// text. It is deterministic and returns false for any text that does not
// follow the announcement convention; it never fails otherwise.
func ParseGroup(text string) (Group, bool) {
	var group Group

	if loc := contentNoteRe.FindStringSubmatchIndex(text); loc != nil {
		for _, g := range []int{1, 2} {
			if loc[2*g] >= 0 {
				group.ContentWarning = strings.TrimSpace(text[loc[2*g]:loc[2*g+1]])
			}
		}
		text = text[:loc[0]] + text[loc[1]:]
	}

	rem, lo, hi, ok := parseNumbers(text)
	if !ok {
		return Group{}, false
	}

	target := int(hi - lo)
	if target > maxGroupSize {
		target = maxGroupSize
	}

	names, bodyStart, ok := parseNames(rem, target)
	if !ok {
		return Group{}, false
	}

	group.Robots = make([]Robot, len(names))
	for i, name := range names {
		group.Robots[i] = Robot{Number: lo + int32(i), Name: name}
	}

	group.Body = extractBody(rem[bodyStart:])

	return group, true
}

// parseNumbers reads the numeric header before the first ")" and reduces it
// to a half-open range of robot numbers. The remainder of the text, with
// leading whitespace dropped, is returned for name extraction.
func parseNumbers(s string) (rem string, lo, hi int32, ok bool) {
	header, rest, found := strings.Cut(s, ")")
	if !found {
		return "", 0, 0, false
	}

	header = strings.TrimSpace(header)
	rem = strings.TrimLeftFunc(rest, unicode.IsSpace)

	var ns []int32
	var buf strings.Builder
	neg := false
	negEnabled := true
	foundDigit := false

	flush := func() bool {
		if buf.Len() == 0 {
			return true
		}
		v, err := strconv.ParseInt(buf.String(), 10, 32)
		// Values at the i32 ceiling would overflow the range arithmetic.
		if err != nil || v == math.MaxInt32 {
			return false
		}
		if neg {
			v = -v
		}
		ns = append(ns, int32(v))
		buf.Reset()
		return true
	}

	for _, c := range header {
		if c >= '0' && c <= '9' {
			foundDigit = true
			negEnabled = false
			buf.WriteRune(c)
		} else {
			if !flush() {
				return "", 0, 0, false
			}
			if c == '-' {
				if negEnabled {
					neg = true
				}
			} else {
				neg = false
				negEnabled = true
				if !foundDigit {
					return "", 0, 0, false
				}
			}
		}
	}

	if !flush() {
		return "", 0, 0, false
	}

	lo, hi, ok = numbersRange(ns)
	return rem, lo, hi, ok
}

// numbersRange reduces the listed integers to the half-open range they
// denote. Integers smaller in magnitude than the first are treated as
// abbreviated suffixes sharing the first number's leading digits, which is
// what makes headers like "1024, 5 & 6" mean 1024..1026.
func numbersRange(ns []int32) (lo, hi int32, ok bool) {
	if len(ns) == 0 {
		return 0, 0, false
	}

	first := ns[0]
	if len(ns) == 1 {
		return first, first + 1, true
	}

	abs := first
	if abs < 0 {
		abs = -abs
	}

	min, max := first, first
	for _, n := range ns[1:] {
		if n > 0 && n < abs {
			major := rebuildMajor(first, n)
			if first < 0 {
				n = major - n
			} else {
				n = major + n
			}
		}
		if n < min {
			min = n
		} else if n > max {
			max = n
		}
	}

	return min, max + 1, true
}

// rebuildMajor drops as many trailing digits from first as n has, then
// restores them as zeroes, giving the shared leading-digit part.
func rebuildMajor(first, n int32) int32 {
	major := first
	dps := 0
	for x := n; x > 0; x /= 10 {
		major /= 10
		dps++
	}
	for i := 0; i < dps; i++ {
		major *= 10
	}
	return major
}

// parseNames collects up to target robot names from the text following the
// numeric header. When fewer full names appear than the range calls for,
// leading bare words are backfilled as prefixes sharing the first full
// name's suffix ("Salt- and Pepperbots" names two robots). Returns the
// names, the offset where body extraction should begin, and whether at
// least one name was found.
func parseNames(rem string, target int) ([]Name, int, bool) {
	if target < 1 {
		target = 1
	}

	matches := nameRe.FindAllStringSubmatchIndex(rem, -1)
	if len(matches) == 0 {
		return nil, 0, false
	}
	if len(matches) > target {
		matches = matches[:target]
	}

	names := make([]Name, 0, target)
	for _, m := range matches {
		names = append(names, Name{
			Prefix: rem[m[2]:m[3]],
			Suffix: rem[m[4]:m[5]],
			Plural: rem[m[6]:m[7]],
		})
	}

	firstStart := matches[0][0]
	backfilled := false

	if len(names) < target && firstStart > 0 {
		need := target - len(names)
		var extra []Name
		for _, tok := range strings.Fields(rem[:firstStart]) {
			if strings.EqualFold(tok, "and") {
				continue
			}
			prefix, ok := wordPart(tok)
			if !ok {
				continue
			}
			extra = append(extra, Name{
				Prefix: prefix,
				Suffix: names[0].Suffix,
				Plural: names[0].Plural,
			})
			if len(extra) == need {
				break
			}
		}
		if len(extra) > 0 {
			backfilled = true
			names = append(extra, names...)
		}
	}

	if backfilled {
		// In this authoring style only the final word carries the plural
		// marker and it does not apply to each robot individually.
		for i := range names {
			names[i].Plural = ""
		}
	}

	return names, matches[len(matches)-1][1], true
}

// wordPart extracts the word characters of a token. Tokens need at least two
// word characters, one of them a non-digit, to count as a name prefix.
func wordPart(tok string) (string, bool) {
	var b strings.Builder
	runes := 0
	nonDigit := false
	for _, r := range tok {
		if isWordRune(r) {
			b.WriteRune(r)
			runes++
			if !unicode.IsDigit(r) {
				nonDigit = true
			}
		}
	}
	if runes < 2 || !nonDigit {
		return "", false
	}
	return b.String(), true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// extractBody takes the first maximal substring starting at a word character
// and running to the end of the text.
func extractBody(after string) string {
	start := strings.IndexFunc(after, isWordRune)
	if start < 0 {
		return ""
	}
	return strings.TrimSpace(after[start:])
}
