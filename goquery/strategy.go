package goquery

import (
	"encoding/json"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// strict strips every tag from scraped values.
var strict = bluemonday.StrictPolicy()

// Strategy is one way of locating a field value on a page.
type Strategy interface {
	Attempt(p *Page) (string, bool)
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc func(p *Page) (string, bool)

// Attempt calls f(p).
func (f StrategyFunc) Attempt(p *Page) (string, bool) {
	return f(p)
}

// Validator accepts or rejects a cleaned candidate value.
type Validator func(string) bool

// FirstMatch tries strategies in order and returns the first cleaned value
// that is non-empty and accepted by valid. A nil valid accepts any value.
func FirstMatch(p *Page, valid Validator, strategies ...Strategy) (string, bool) {
	for _, s := range strategies {
		raw, ok := s.Attempt(p)
		if !ok {
			continue
		}
		v := Clean(raw)
		if v == "" {
			continue
		}
		if valid != nil && !valid(v) {
			continue
		}
		return v, true
	}
	return "", false
}

// Clean removes markup and entities from a scraped value and collapses its
// whitespace.
func Clean(v string) string {
	v = html.UnescapeString(strict.Sanitize(v))
	return strings.Join(strings.Fields(v), " ")
}

// MetaContent reads the content attribute of <meta attr="value">.
func MetaContent(attr, value string) Strategy {
	return StrategyFunc(func(p *Page) (string, bool) {
		v := p.Meta(attr, value)
		return v, v != ""
	})
}

// ElementText reads the text of the first element matching selector.
func ElementText(selector string) Strategy {
	return StrategyFunc(func(p *Page) (string, bool) {
		sel := p.doc.Find(selector).First()
		if sel.Length() == 0 {
			return "", false
		}
		v := strings.TrimSpace(sel.Text())
		return v, v != ""
	})
}

// ElementAttr reads attr of the first element matching selector.
func ElementAttr(selector, attr string) Strategy {
	return StrategyFunc(func(p *Page) (string, bool) {
		v, ok := p.doc.Find(selector).First().Attr(attr)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	})
}

// RawPattern matches re against the unparsed HTML and returns its first
// group, decoding JavaScript string escapes.
func RawPattern(re *regexp.Regexp) Strategy {
	return StrategyFunc(func(p *Page) (string, bool) {
		m := re.FindStringSubmatch(p.Raw)
		if len(m) < 2 || m[1] == "" {
			return "", false
		}
		return unescapeJS(m[1]), true
	})
}

// Map transforms the value found by s.
func Map(s Strategy, f func(string) string) Strategy {
	return StrategyFunc(func(p *Page) (string, bool) {
		v, ok := s.Attempt(p)
		if !ok {
			return "", false
		}
		v = f(v)
		return v, v != ""
	})
}

func unescapeJS(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err == nil {
		return out
	}
	r := strings.NewReplacer(`\n`, " ", `\t`, " ", `\"`, `"`, `\\`, "")
	return r.Replace(s)
}

// MinRunes accepts values longer than n runes.
func MinRunes(n int) Validator {
	return func(v string) bool {
		return utf8.RuneCountInString(v) > n
	}
}

// Rejecting refuses values equal, ignoring case, to any of the given
// site names and placeholders.
func Rejecting(values ...string) Validator {
	return func(v string) bool {
		for _, r := range values {
			if strings.EqualFold(v, r) {
				return false
			}
		}
		return true
	}
}

// Mentioning accepts values containing at least one of the words.
func Mentioning(words ...string) Validator {
	return func(v string) bool {
		lower := strings.ToLower(v)
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}
}

// All accepts values accepted by every validator.
func All(validators ...Validator) Validator {
	return func(v string) bool {
		for _, valid := range validators {
			if !valid(v) {
				return false
			}
		}
		return true
	}
}
