package batch

import (
	"context"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome for one id of a batch.
type Result struct {
	ID     string      `json:"id"`
	Status string      `json:"status"`
	Value  interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Summary aggregates the results of a batch.
type Summary struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// Func performs the operation for one id.
type Func func(ctx context.Context, id string) (interface{}, error)

// Run calls fn for each id in order and collects every outcome. One failure
// does not stop the batch; a cancelled context fails the remaining ids.
func Run(ctx context.Context, ids []string, fn Func) *Summary {
	s := &Summary{Total: len(ids), Results: make([]Result, 0, len(ids))}
	for _, id := range ids {
		var (
			value interface{}
			err   = ctx.Err()
		)
		if err == nil {
			value, err = fn(ctx, id)
		}
		if err != nil {
			s.Results = append(s.Results, NewErrorResult(id, err))
			s.Failed++
			continue
		}
		s.Results = append(s.Results, NewSuccessResult(id, value))
		s.Successful++
	}
	return s
}

// AllFailed reports whether the batch produced no successful result.
func (s *Summary) AllFailed() bool {
	return s.Total > 0 && s.Successful == 0
}

// NewSuccessResult creates a success result.
func NewSuccessResult(id string, value interface{}) Result {
	return Result{ID: id, Status: StatusSuccess, Value: value}
}

// NewErrorResult creates an error result.
func NewErrorResult(id string, err error) Result {
	return Result{ID: id, Status: StatusError, Error: err.Error()}
}
