package physics

import (
	"fmt"
	"sort"
	"strings"
)

// LayerMask selects cell layers. A cell carries exactly one layer bit; a query
// mask may carry several.
type LayerMask uint32

const (
	LayerDefault LayerMask = 1 << iota
	LayerGround
	LayerWater
	LayerProp
)

const (
	LayerNone LayerMask = 0
	LayerAll  LayerMask = ^LayerMask(0)

	// SolidLayers are the layers the movement resolver collides with.
	SolidLayers = LayerDefault | LayerGround | LayerProp
)

var layerByName = map[string]LayerMask{
	"default": LayerDefault,
	"ground":  LayerGround,
	"water":   LayerWater,
	"prop":    LayerProp,
}

// ParseLayers folds layer names into one mask. Names are case-insensitive.
func ParseLayers(names []string) (LayerMask, error) {
	var mask LayerMask
	for _, name := range names {
		layer, ok := layerByName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return LayerNone, fmt.Errorf("unknown layer %q", name)
		}
		mask |= layer
	}
	return mask, nil
}

func (m LayerMask) Contains(layer LayerMask) bool {
	return m&layer != 0
}

func (m LayerMask) String() string {
	if m == LayerNone {
		return "none"
	}
	if m == LayerAll {
		return "all"
	}
	names := make([]string, 0, len(layerByName))
	for name, layer := range layerByName {
		if m.Contains(layer) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}
