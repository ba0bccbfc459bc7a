package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/teemow/zoomreport/internal/tools/common"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result represents the result of a single operation in a batch
type Result struct {
	ID     int64  `json:"id"`
	Status string `json:"status"` // "success" or "error"
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BatchResult represents the aggregated results of a batch operation
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ParseMeetingIDs parses a parameter that can be a single meeting id or an
// array of ids. Ids may be JSON numbers or numeric strings, and a string
// holding a JSON array is accepted as well since some clients send arrays
// that way. Duplicate ids are dropped, keeping first occurrence order.
func ParseMeetingIDs(param interface{}, paramName string) ([]int64, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var items []interface{}
	switch v := param.(type) {
	case []interface{}:
		items = v
	case string:
		trimmed := strings.TrimSpace(v)
		if strings.HasPrefix(trimmed, "[") {
			if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
				return nil, fmt.Errorf("%s is not a valid JSON array: %w", paramName, err)
			}
		} else {
			items = []interface{}{v}
		}
	default:
		items = []interface{}{v}
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", paramName)
	}

	ids := make([]int64, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for i, item := range items {
		key := paramName
		if len(items) > 1 {
			key = paramName + "[" + strconv.Itoa(i) + "]"
		}
		id, ok, err := common.GetInt64Arg(map[string]interface{}{key: item}, key)
		if err != nil {
			return nil, err
		}
		if !ok || id <= 0 {
			return nil, fmt.Errorf("%s must be a positive meeting id", key)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	return ids, nil
}

// FormatResults creates a formatted JSON string from batch results
func FormatResults(results []Result) string {
	br := BatchResult{
		Total:   len(results),
		Results: results,
	}

	for _, r := range results {
		if r.Status == StatusSuccess {
			br.Successful++
		} else {
			br.Failed++
		}
	}

	jsonBytes, _ := json.MarshalIndent(br, "", "  ")
	return string(jsonBytes)
}

// ProcessBatch executes fn on each id in order and collects the results. A
// failing id does not stop the batch, but once ctx is done the remaining ids
// are reported as failed without calling fn.
func ProcessBatch(ctx context.Context, ids []int64, fn func(ctx context.Context, id int64) (any, error)) []Result {
	results := make([]Result, 0, len(ids))

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			results = append(results, NewErrorResult(id, err))
			continue
		}
		res, err := fn(ctx, id)
		if err != nil {
			results = append(results, NewErrorResult(id, err))
			continue
		}
		results = append(results, NewSuccessResult(id, res))
	}

	return results
}

// NewSuccessResult creates a success result
func NewSuccessResult(id int64, result any) Result {
	return Result{
		ID:     id,
		Status: StatusSuccess,
		Result: result,
	}
}

// NewErrorResult creates an error result
func NewErrorResult(id int64, err error) Result {
	return Result{
		ID:     id,
		Status: StatusError,
		Error:  err.Error(),
	}
}
