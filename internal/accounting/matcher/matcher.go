// Package matcher assigns expense categories to free-text descriptions by
// keyword.
package matcher

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Status is the outcome of matching one description.
type Status int

const (
	Matched Status = iota
	Ambiguous
	Unmatched
)

func (s Status) String() string {
	switch s {
	case Matched:
		return "matched"
	case Ambiguous:
		return "ambiguous"
	case Unmatched:
		return "unmatched"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Category is an expense category with its matching keywords. The category
// name always counts as a keyword.
type Category struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Keywords []string  `json:"keywords"`
}

type Result struct {
	Status     Status     `json:"status"`
	Category   *Category  `json:"category,omitempty"`
	Candidates []Category `json:"candidates,omitempty"`
}

// Matcher scores descriptions against a fixed set of categories.
type Matcher struct {
	categories []Category
	keywords   [][]string // normalized keywords per category
}

// Multi-word keywords ("token listrik") outweigh single words.
const phraseWeight = 3

func New(categories []Category) *Matcher {
	m := &Matcher{
		categories: categories,
		keywords:   make([][]string, len(categories)),
	}
	for i, c := range categories {
		seen := make(map[string]bool)
		for _, kw := range append([]string{c.Name}, c.Keywords...) {
			kw = normalize(kw)
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			m.keywords[i] = append(m.keywords[i], kw)
		}
	}
	return m
}

// Match returns the single best-scoring category, every tied category when
// the best score is shared, or Unmatched when no keyword occurs.
func (m *Matcher) Match(text string) Result {
	padded := " " + normalize(text) + " "

	best := 0
	var top []Category
	for i, c := range m.categories {
		score := 0
		for _, kw := range m.keywords[i] {
			if !strings.Contains(padded, " "+kw+" ") {
				continue
			}
			if strings.Contains(kw, " ") {
				score += phraseWeight
			} else {
				score++
			}
		}
		switch {
		case score == 0 || score < best:
		case score > best:
			best = score
			top = []Category{c}
		default:
			top = append(top, c)
		}
	}

	switch len(top) {
	case 0:
		return Result{Status: Unmatched}
	case 1:
		return Result{Status: Matched, Category: &top[0]}
	default:
		return Result{Status: Ambiguous, Candidates: top}
	}
}

// normalize lowercases s and collapses everything that is not a letter or a
// digit into single spaces.
// normalize folds case, drops accents ("kafé" -> "kafe") and collapses
// punctuation into single spaces.
func normalize(s string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	s = cases.Fold().String(s)

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
