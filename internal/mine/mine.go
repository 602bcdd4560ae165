// Package mine recovers keyword counts and percentages from flattened report text.
package mine

import (
	"regexp"
	"strconv"
	"strings"
)

// Unit tells whether a mined number is a count or a percentage.
type Unit int

const (
	Count Unit = iota
	Percent
)

func (u Unit) String() string {
	if u == Percent {
		return "percent"
	}
	return "count"
}

// MarshalText encodes the unit by name.
func (u Unit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// Value is the number found for one keyword.
type Value struct {
	Keyword string  `json:"keyword"`
	Number  float64 `json:"number"`
	Unit    Unit    `json:"unit"`
	Rule    string  `json:"rule"`
}

// Result holds mined values in keyword order. A keyword appears at most once;
// keywords without evidence are absent.
type Result []Value

// Get returns the value mined for keyword.
func (r Result) Get(keyword string) (Value, bool) {
	for _, v := range r {
		if v.Keyword == keyword {
			return v, true
		}
	}
	return Value{}, false
}

// Labels returns the matched keywords in order.
func (r Result) Labels() []string {
	labels := make([]string, len(r))
	for i, v := range r {
		labels[i] = v.Keyword
	}
	return labels
}

// Numbers returns the mined numbers, aligned with Labels.
func (r Result) Numbers() []float64 {
	nums := make([]float64, len(r))
	for i, v := range r {
		nums[i] = v.Number
	}
	return nums
}

// Map returns the result as keyword -> number.
func (r Result) Map() map[string]float64 {
	m := make(map[string]float64, len(r))
	for _, v := range r {
		m[v.Keyword] = v.Number
	}
	return m
}

// Rule is one entry of the pattern cascade. Pattern contains {kw} where the
// quoted keyword goes; the first capture group holds the number.
type Rule struct {
	Name    string
	Pattern string
	Unit    Unit
	// Last selects the final match instead of the first.
	Last bool
}

// rules is evaluated top to bottom; the first rule that yields a number wins.
var rules = []Rule{
	{Name: "labelled", Pattern: `[-•*]?\s*{kw}\s*[:\-–]\s*(\d+)`},
	{Name: "count-first", Pattern: `(\d+)\s+{kw}(?:\s+issues?)?`},
	{Name: "bracketed", Pattern: `{kw}\s*[(\[]\s*(\d+)\s*[)\]]`},
	{Name: "table-row", Pattern: `\|\s*{kw}\s*\|(?:[^|\n]*\|)*[^|\n]*?(\d+)\s*\|`, Last: true},
	{Name: "line-end", Pattern: `(?m){kw}\D*?(\d+)(?:\s*$|\s*\n)`},
	{Name: "percentage", Pattern: `{kw}\s*(\d+(?:\.\d+)?)\s*%`, Unit: Percent},
}

// Rules returns a copy of the cascade in priority order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Compile builds the case-insensitive regexp of r for keyword.
func (r Rule) Compile(keyword string) *regexp.Regexp {
	expr := strings.ReplaceAll(r.Pattern, "{kw}", regexp.QuoteMeta(keyword))
	return regexp.MustCompile("(?i)" + expr)
}

// Apply runs the compiled rule re over text and parses the selected number.
func (r Rule) Apply(re *regexp.Regexp, text string) (float64, bool) {
	var digits string
	if r.Last {
		matches := re.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			return 0, false
		}
		digits = matches[len(matches)-1][1]
	} else {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return 0, false
		}
		digits = m[1]
	}

	if r.Unit == Percent {
		f, err := strconv.ParseFloat(digits, 64)
		return f, err == nil
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	return float64(n), err == nil
}

type keywordRules struct {
	keyword  string
	compiled []*regexp.Regexp
}

// Miner mines a fixed, ordered keyword set. Patterns are compiled once, so a
// Miner can be reused across texts and goroutines.
type Miner struct {
	keywords []keywordRules
}

// NewMiner compiles the cascade for each keyword. Duplicate keywords are dropped.
func NewMiner(keywords []string) *Miner {
	m := &Miner{}
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		kr := keywordRules{keyword: kw, compiled: make([]*regexp.Regexp, len(rules))}
		for i, r := range rules {
			kr.compiled[i] = r.Compile(kw)
		}
		m.keywords = append(m.keywords, kr)
	}
	return m
}

// Keywords returns the keywords the miner looks for.
func (m *Miner) Keywords() []string {
	out := make([]string, len(m.keywords))
	for i, kr := range m.keywords {
		out[i] = kr.keyword
	}
	return out
}

// Mine returns the first successful rule's number for every keyword that has one.
func (m *Miner) Mine(text string) Result {
	var result Result
	if text == "" {
		return result
	}
	for _, kr := range m.keywords {
		for i, r := range rules {
			n, ok := r.Apply(kr.compiled[i], text)
			if !ok {
				continue
			}
			result = append(result, Value{Keyword: kr.keyword, Number: n, Unit: r.Unit, Rule: r.Name})
			break
		}
	}
	return result
}

// Mine is a one-shot NewMiner(keywords).Mine(text).
func Mine(text string, keywords []string) Result {
	return NewMiner(keywords).Mine(text)
}
