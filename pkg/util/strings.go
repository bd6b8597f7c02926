package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalise lowercases, strips diacritics and collapses whitespace so that
// "Bayern München" and "bayern munchen" compare equal
func Normalise(s string) string {
	decomposed := norm.NFD.String(strings.ToLower(strings.TrimSpace(s)))
	var b strings.Builder
	lastSpace := false
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if unicode.IsSpace(r) || r == '-' || r == '.' {
			if !lastSpace && b.Len() > 0 {
				b.WriteRune(' ')
			}
			lastSpace = true
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimSpace(b.String())
}

/**
* Returns true if the two terms are a fuzzy match
* In this case, if the 'Levenshtein distance' is <= than 2
 */
func IsFuzzyMatch(str1, str2 string) bool {
	return FuzzyMatch(str1, str2) <= 2
}

// FuzzyMatch returns the minimum edit distance between the shorter string and the best
// matching window of the longer one, so "Man Utd" scores well against "Man Utd FC"
func FuzzyMatch(str1, str2 string) int {
	a := []rune(Normalise(str1))
	b := []rune(Normalise(str2))

	shorter, longer := a, b
	if len(a) > len(b) {
		shorter, longer = b, a
	}

	minDistance := math.MaxInt32
	for i := 0; i <= len(longer)-len(shorter); i++ {
		distance := LevenshteinDistance(string(shorter), string(longer[i:i+len(shorter)]))
		if distance < minDistance {
			minDistance = distance
		}
		if minDistance == 0 {
			break
		}
	}
	return minDistance
}

// LevenshteinDistance calculates the Levenshtein distance between two strings
func LevenshteinDistance(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}

// SimilarityScore returns 1.0 for identical names down to 0.0 for nothing in common.
// Unlike FuzzyMatch it penalises length differences, so exact names rank above prefixes.
func SimilarityScore(str1, str2 string) float64 {
	a, b := Normalise(str1), Normalise(str2)
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(LevenshteinDistance(a, b))/float64(maxLen)
}

// GetAsString converts strings, numbers and Stringers to a string
func GetAsString(s any) (string, error) {
	if s == nil {
		return "", fmt.Errorf("cannot convert nil to string")
	}
	switch v := s.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// GetAsInteger converts whole numbers and numeric strings to int. JSON numbers arrive as
// float64, so those are accepted when they carry no fraction.
func GetAsInteger(s any) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("cannot convert nil to integer")
	}
	switch v := s.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		if v > math.MaxInt32 || v < math.MinInt32 {
			return 0, fmt.Errorf("int64 value %d is out of int range", v)
		}
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("float64 value %f is not a whole number", v)
		}
		return int(v), nil
	case string:
		result, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("cannot convert string '%s' to integer: %w", v, err)
		}
		return result, nil
	default:
		return 0, fmt.Errorf("cannot convert type %T to integer", s)
	}
}
