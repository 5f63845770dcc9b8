package document

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/modkit/internal/value"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

func parseHCL(filename string, data []byte) (any, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s: %s", ErrSyntax, filename, diags.Error())
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("%w: %s: unexpected body type %T", ErrSyntax, filename, file.Body)
	}
	if len(body.Attributes) == 0 && len(body.Blocks) == 0 {
		return nil, nil
	}

	m, err := bodyToMap(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSyntax, filename, err)
	}
	return m, nil
}

// bodyToMap evaluates every attribute without an evaluation context, so
// variables and function calls are rejected. Blocks nest under their type and
// labels; a repeated block turns its slot into a list. All blocks of one type
// must carry the same number of labels.
func bodyToMap(body *hclsyntax.Body) (value.Map, error) {
	out := value.Map{}
	for name, attr := range body.Attributes {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("attribute %q: %s", name, diags.Error())
		}
		native, err := ctyToNative(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		out[name] = native
	}

	labelCounts := make(map[string]int)
	for _, block := range body.Blocks {
		if _, clash := body.Attributes[block.Type]; clash {
			return nil, fmt.Errorf("block %q has the same name as an attribute", block.Type)
		}
		if n, seen := labelCounts[block.Type]; seen && n != len(block.Labels) {
			return nil, fmt.Errorf("block %q is used with %d and %d labels", block.Type, n, len(block.Labels))
		}
		labelCounts[block.Type] = len(block.Labels)

		inner, err := bodyToMap(block.Body)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", block.Type, err)
		}

		target, key := out, block.Type
		for _, label := range block.Labels {
			next, ok := target[key].(value.Map)
			if !ok {
				next = value.Map{}
				target[key] = next
			}
			target, key = next, label
		}

		existing, seen := target[key]
		switch {
		case !seen:
			target[key] = inner
		default:
			if list, ok := existing.([]any); ok {
				target[key] = append(list, inner)
			} else {
				target[key] = []any{existing, inner}
			}
		}
	}
	return out, nil
}

// ctyToNative converts a cty.Value into the generic tree. Whole numbers become
// int, other numbers float64.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		var i int64
		if err := gocty.FromCtyValue(v, &i); err == nil {
			return int(i), nil
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert number: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		list := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			list = append(list, native)
		}
		return list, nil

	case ty.IsObjectType() || ty.IsMapType():
		m := value.Map{}
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in %q: %w", key.AsString(), err)
			}
			m[key.AsString()] = native
		}
		return m, nil
	}
	return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
}
