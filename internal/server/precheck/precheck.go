// Package precheck runs the uniqueness lookups that gate a write. A lookup
// only produces a friendlier error than the unique constraint that backs it;
// two concurrent requests can both pass.
package precheck

import (
	"context"

	"github.com/jaftdelgado/aureum-services/internal/common"
)

// Rule reports a conflict with Message when Exists returns true.
type Rule struct {
	Name    string
	Message string
	Exists  func(ctx context.Context) (bool, error)
}

// Ensure evaluates rules in order and stops at the first match. A failing
// lookup is reported as an unexpected error.
func Ensure(ctx context.Context, rules ...Rule) error {
	for _, r := range rules {
		exists, err := r.Exists(ctx)
		if err != nil {
			return common.Unexpected("precheck "+r.Name, err)
		}
		if exists {
			return &common.Error{Kind: common.KindConflict, Op: "precheck " + r.Name, Message: r.Message}
		}
	}
	return nil
}
