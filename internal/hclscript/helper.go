package hclscript

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/whoosh/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. gohcl fills omitted optional expression fields with a zero-width
// placeholder that evaluates to null, so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}

	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// literalString evaluates a constant expression and converts the result to a
// string with cty's conversion rules, so numbers and bools are accepted too.
func literalString(expr hcl.Expression) (string, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return "", diags
	}
	if val.IsNull() {
		return "", fmt.Errorf("%s: value must not be null", expr.Range())
	}

	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("%s: value of type %s cannot be used as a string: %w", expr.Range(), val.Type().FriendlyName(), err)
	}
	if !str.IsWhollyKnown() {
		return "", fmt.Errorf("%s: value is not known", expr.Range())
	}
	return str.AsString(), nil
}

// varReference reports whether expr is a plain `var.<name>` traversal and
// returns the name.
func varReference(expr hcl.Expression) (string, bool) {
	traversal, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() || len(traversal) != 2 || traversal.RootName() != "var" {
		return "", false
	}
	attr, ok := traversal[1].(hcl.TraverseAttr)
	if !ok {
		return "", false
	}
	return attr.Name, true
}

// slotName accepts a binding target written either as `name` or `$name`.
func slotName(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "$")
}
