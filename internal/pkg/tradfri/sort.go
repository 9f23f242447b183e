package tradfri

import (
	"cmp"
	"slices"
	"strings"

	"github.com/anicoll/home-bridge/internal/pkg/model"
)

type comparator[T any] func(a, b T) int

// comparePtr orders missing values first.
func comparePtr[V cmp.Ordered](a, b *V) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Compare(*a, *b)
}

var deviceComparators = map[string]comparator[model.Device]{
	"id":           func(a, b model.Device) int { return cmp.Compare(a.ID, b.ID) },
	"name":         func(a, b model.Device) int { return strings.Compare(a.Name, b.Name) },
	"type":         func(a, b model.Device) int { return strings.Compare(string(a.Type), string(b.Type)) },
	"model":        func(a, b model.Device) int { return strings.Compare(a.Model, b.Model) },
	"firmware":     func(a, b model.Device) int { return strings.Compare(a.Firmware, b.Firmware) },
	"manufacturer": func(a, b model.Device) int { return strings.Compare(a.Manufacturer, b.Manufacturer) },
	"state":        func(a, b model.Device) int { return comparePtr(a.State, b.State) },
	"brightness":   func(a, b model.Device) int { return comparePtr(a.Brightness, b.Brightness) },
	"bulbType":     func(a, b model.Device) int { return strings.Compare(string(a.BulbType), string(b.BulbType)) },
	"color":        func(a, b model.Device) int { return strings.Compare(a.Color, b.Color) },
	"subType":      func(a, b model.Device) int { return strings.Compare(string(a.SubType), string(b.SubType)) },
}

var groupComparators = map[string]comparator[model.Group]{
	"id":   func(a, b model.Group) int { return cmp.Compare(a.ID, b.ID) },
	"name": func(a, b model.Group) int { return strings.Compare(a.Name, b.Name) },
}

// sortBy stably sorts items by the given fields, earlier fields take precedence.
func sortBy[T any](items []T, fields []string, comparators map[string]comparator[T]) error {
	if len(fields) == 0 {
		return nil
	}
	chain := make([]comparator[T], 0, len(fields))
	for _, field := range fields {
		c, ok := comparators[field]
		if !ok {
			return &UnknownSortFieldError{Field: field}
		}
		chain = append(chain, c)
	}
	slices.SortStableFunc(items, func(a, b T) int {
		for _, c := range chain {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	})
	return nil
}
