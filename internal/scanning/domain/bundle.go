package domain

import "strings"

// Bundle is a tagged sub-batch of a cut order.
type Bundle struct {
	ID       string
	OrderID  string
	Quantity int
	Location string
}

// OrderSummary is the order-level view used for the short-circuit check.
type OrderSummary struct {
	OrderID            string
	Status             string
	ProgressPercent    float64
	CurrentProcessName string
}

var completedOrderStatuses = map[string]struct{}{
	"completed": {},
	"complete":  {},
	"finished":  {},
	"已完成":       {},
}

// IsCompleted reports whether the order is finished by status or progress.
func (s OrderSummary) IsCompleted() bool {
	if _, ok := completedOrderStatuses[strings.ToLower(strings.TrimSpace(s.Status))]; ok {
		return true
	}
	return s.ProgressPercent >= 100
}
