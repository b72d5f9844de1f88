package render

import (
	"slices"
	"strings"
)

// DefaultEnvironment is the preset used when none is configured.
const DefaultEnvironment = "city"

// Environment is an image-free stand-in for an environment map: a sky and
// ground hemisphere light plus a background gradient.
type Environment struct {
	Name      string
	Sky       Color
	Ground    Color
	Intensity float64
	Top       Color // background at the top row
	Bottom    Color // background at the bottom row
}

var environments = map[string]Environment{
	"city": {
		Sky: Hex(0xb4c8dc), Ground: Hex(0x5a5550), Intensity: 0.35,
		Top: Hex(0x2a3442), Bottom: Hex(0x14161c),
	},
	"studio": {
		Sky: Hex(0xffffff), Ground: Hex(0x808080), Intensity: 0.4,
		Top: Hex(0x3c3c3c), Bottom: Hex(0x1a1a1a),
	},
	"sunset": {
		Sky: Hex(0xffb070), Ground: Hex(0x4a3040), Intensity: 0.35,
		Top: Hex(0x5a3050), Bottom: Hex(0x1e1020),
	},
	"dawn": {
		Sky: Hex(0xffd0c0), Ground: Hex(0x404860), Intensity: 0.3,
		Top: Hex(0x485878), Bottom: Hex(0x181c28),
	},
	"night": {
		Sky: Hex(0x304070), Ground: Hex(0x101018), Intensity: 0.2,
		Top: Hex(0x0c1024), Bottom: Hex(0x040408),
	},
	"warehouse": {
		Sky: Hex(0xe0d8c8), Ground: Hex(0x504838), Intensity: 0.35,
		Top: Hex(0x38342c), Bottom: Hex(0x161410),
	},
	"forest": {
		Sky: Hex(0xc0e0b0), Ground: Hex(0x304020), Intensity: 0.3,
		Top: Hex(0x28402c), Bottom: Hex(0x0e1610),
	},
	"apartment": {
		Sky: Hex(0xf0e0d0), Ground: Hex(0x605048), Intensity: 0.35,
		Top: Hex(0x40362e), Bottom: Hex(0x181410),
	},
	"lobby": {
		Sky: Hex(0xfff0d8), Ground: Hex(0x706050), Intensity: 0.4,
		Top: Hex(0x4a4236), Bottom: Hex(0x1c1914),
	},
	"park": {
		Sky: Hex(0xa8d0ff), Ground: Hex(0x406030), Intensity: 0.35,
		Top: Hex(0x3a5a80), Bottom: Hex(0x142014),
	},
}

// LookupEnvironment returns the named preset. Names are case-insensitive.
func LookupEnvironment(name string) (Environment, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	env, ok := environments[key]
	if !ok {
		return Environment{}, false
	}
	env.Name = key
	return env, true
}

// EnvironmentNames lists the available presets in sorted order.
func EnvironmentNames() []string {
	names := make([]string, 0, len(environments))
	for name := range environments {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
