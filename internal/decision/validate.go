package decision

import (
	"fmt"
	"strings"

	"verdict/internal/types"
)

// ValidationError 请求在进入引擎前被拒绝的原因。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// ProcessingError 聚合/风险/合成阶段的意外失败。
// 对单个请求致命，不产生部分决策。
type ProcessingError struct {
	Stage string
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("decision processing failed at %s: %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// ValidateRequest 边界校验：非法请求不会产生任何决策。
func ValidateRequest(req types.DecisionRequest) error {
	if strings.TrimSpace(req.Symbol) == "" {
		return &ValidationError{Field: "symbol", Reason: "cannot be empty"}
	}
	if req.CurrentPrice <= 0 {
		return &ValidationError{Field: "current_price", Reason: "must be positive"}
	}
	if req.PositionValue < 0 {
		return &ValidationError{Field: "position_value", Reason: "cannot be negative"}
	}
	if req.AvailableCapital < 0 {
		return &ValidationError{Field: "available_capital", Reason: "cannot be negative"}
	}
	if req.MaxPositionValue < 0 {
		return &ValidationError{Field: "max_position_value", Reason: "cannot be negative"}
	}
	return nil
}
