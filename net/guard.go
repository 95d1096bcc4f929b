package net

import "github.com/hybridpetri/simcore/expr"

// NewGuardFromSource compiles a guard expression source string into an
// expr.Guard. An empty source normalizes to Always (the GSPN default of
// "1", meaning structurally enabled unconditionally) — this is the load-time
// resolution this module gives to the legacy "guard value None" ambiguity.
func NewGuardFromSource(source string) (expr.Guard, error) {
	if source == "" {
		return expr.AlwaysGuard(), nil
	}
	return expr.ExpressionGuard(source)
}
