package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrMalformedResponse means the model answered but not with {"matchIds": [int...]}
var ErrMalformedResponse = errors.New("malformed match response")

type matchResponse struct {
	MatchIDs json.RawMessage `json:"matchIds"`
}

// decodeMatchIDs parses the model output into sorted, unique indices within
// [0, batchSize). Out-of-range or non-integer entries are dropped one by one;
// a response that is not an object holding an array is ErrMalformedResponse.
func decodeMatchIDs(content string, batchSize int) ([]int, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: empty content", ErrMalformedResponse)
	}

	var resp matchResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var raw []any
	if len(resp.MatchIDs) == 0 || json.Unmarshal(resp.MatchIDs, &raw) != nil || raw == nil {
		return nil, fmt.Errorf("%w: matchIds is not an array", ErrMalformedResponse)
	}

	seen := make(map[int]bool, len(raw))
	indices := make([]int, 0, len(raw))
	for _, v := range raw {
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			continue
		}
		idx := int(f)
		if idx < 0 || idx >= batchSize || seen[idx] {
			continue
		}
		seen[idx] = true
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices, nil
}
