// Package codec converts question-type-specific answer shapes to and from
// the flat string representation the session store persists per question.
package codec

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	pairSep = "|"
	listSep = "||"

	TagCorrect = "correct"
	TagWrong   = "wrong"
)

// ErrMalformed marks an encoded value that does not match the expected shape
// for its question kind. Callers treat it as "no answer", never as fatal.
var ErrMalformed = errors.New("malformed encoded answer")

// EncodeScalar packs a scalar-kind answer: the chosen option's literal
// string, unmodified.
func EncodeScalar(value string) string {
	return value
}

func DecodeScalar(encoded string) string {
	return encoded
}

// EncodeFields packs a multi-field answer vector as index|value pairs joined
// by the list separator. Empty fields are omitted; DecodeFields restores
// them as empty strings.
func EncodeFields(fields []string) string {
	pairs := make([]string, 0, len(fields))
	for i, value := range fields {
		if value == "" {
			continue
		}
		pairs = append(pairs, strconv.Itoa(i)+pairSep+value)
	}
	return strings.Join(pairs, listSep)
}

// DecodeFields unpacks an encoded multi-field answer into a dense vector of
// fieldCount entries. Absent indices decode as empty strings; an empty
// encoded value decodes as an all-empty vector rather than failing.
func DecodeFields(encoded string, fieldCount int) ([]string, error) {
	fields := make([]string, fieldCount)
	if encoded == "" {
		return fields, nil
	}
	for _, pair := range strings.Split(encoded, listSep) {
		idxStr, value, found := strings.Cut(pair, pairSep)
		if !found {
			return nil, fmt.Errorf("%w: pair %q has no separator", ErrMalformed, pair)
		}
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			return nil, fmt.Errorf("%w: pair %q has non-numeric index", ErrMalformed, pair)
		}
		if idx < 0 || idx >= fieldCount {
			return nil, fmt.Errorf("%w: index %d outside field count %d", ErrMalformed, idx, fieldCount)
		}
		fields[idx] = value
	}
	return fields, nil
}

// RegionClick is a decoded region-click answer. Correctness is decided once
// at click time and the persisted tag is authoritative thereafter.
type RegionClick struct {
	X       int
	Y       int
	Correct bool
}

// EncodeRegionClick packs a region-click answer as rounded integer
// coordinates plus the correctness tag computed at click time.
func EncodeRegionClick(x, y float64, correct bool) string {
	tag := TagWrong
	if correct {
		tag = TagCorrect
	}
	return strconv.Itoa(int(math.Round(x))) + pairSep +
		strconv.Itoa(int(math.Round(y))) + pairSep + tag
}

// DecodeRegionClick unpacks a region-click answer. An empty encoded value
// decodes as the zero click rather than failing, mirroring DecodeFields.
func DecodeRegionClick(encoded string) (RegionClick, error) {
	if encoded == "" {
		return RegionClick{}, nil
	}
	parts := strings.Split(encoded, pairSep)
	if len(parts) != 3 {
		return RegionClick{}, fmt.Errorf("%w: region click %q must have three fields", ErrMalformed, encoded)
	}
	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return RegionClick{}, fmt.Errorf("%w: region click x %q", ErrMalformed, parts[0])
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return RegionClick{}, fmt.Errorf("%w: region click y %q", ErrMalformed, parts[1])
	}
	switch parts[2] {
	case TagCorrect:
		return RegionClick{X: x, Y: y, Correct: true}, nil
	case TagWrong:
		return RegionClick{X: x, Y: y, Correct: false}, nil
	default:
		return RegionClick{}, fmt.Errorf("%w: region click tag %q", ErrMalformed, parts[2])
	}
}
