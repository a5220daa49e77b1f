package domain

import "errors"

var (
	ErrPlanNotFound    = errors.New("pricing plan not found")
	ErrTestNotFound    = errors.New("price test not found")
	ErrVariantNotFound = errors.New("price test variant not found")

	ErrTestCompleted = errors.New("price test already completed")
)
