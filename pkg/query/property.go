package query

import (
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/yaklabco/altree/pkg/syntax"
)

var (
	// ErrPropertyNotFound is returned when no property of the given name exists.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrMalformedProperty is returned when the property list or a matching
	// property does not have the expected shape.
	ErrMalformedProperty = errors.New("malformed property")
)

// Property child positions: a property is a [name, value] pair.
const (
	propertyNameIndex  = 0
	propertyValueIndex = 1
	propertyArity      = 2
)

// LookupProperty returns the value node of the property called name inside
// obj's property list. Property names are read from text, the snapshot obj
// was parsed from, and compare case-insensitively after trimming.
//
// ErrMalformedProperty is returned when obj has more than one property list
// or when the matching property is not a [name, value] pair.
func LookupProperty(text *syntax.LineIndex, obj *syntax.Node, name string) (*syntax.Node, error) {
	var lists []*syntax.Node
	CollectChildNodes(obj, syntax.KindPropertyList, false, &lists)

	switch len(lists) {
	case 0:
		return nil, errors.Errorf("%w: %s has no property list", ErrPropertyNotFound, obj)
	case 1:
	default:
		return nil, errors.Errorf("%w: %s has %d property lists", ErrMalformedProperty, obj, len(lists))
	}

	want := strings.TrimSpace(name)
	for _, property := range lists[0].Children {
		if property.Kind != syntax.KindProperty || len(property.Children) == 0 {
			continue
		}
		if !strings.EqualFold(PropertyName(text, property), want) {
			continue
		}
		if len(property.Children) != propertyArity {
			return nil, errors.Errorf("%w: %q has %d children", ErrMalformedProperty, name, len(property.Children))
		}
		return property.Children[propertyValueIndex], nil
	}

	return nil, errors.Errorf("%w: %q", ErrPropertyNotFound, name)
}

// PropertyValue is LookupProperty with every failure reported as nil.
func PropertyValue(text *syntax.LineIndex, obj *syntax.Node, name string) *syntax.Node {
	value, err := LookupProperty(text, obj, name)
	if err != nil {
		return nil
	}
	return value
}

// PropertyName returns the trimmed name of a property node. The source text
// under the name child's full span wins; without a snapshot, or when that
// text is blank, the child's identifier or name is used, then the
// property's own name.
func PropertyName(text *syntax.LineIndex, property *syntax.Node) string {
	if property == nil {
		return ""
	}
	if len(property.Children) > propertyNameIndex {
		nameChild := property.Children[propertyNameIndex]
		if text != nil {
			if name := strings.TrimSpace(text.SpanText(nameChild.FullSpan)); name != "" {
				return name
			}
		}
		if name := strings.TrimSpace(nameChild.Text()); name != "" {
			return name
		}
	}
	return strings.TrimSpace(property.Name)
}
