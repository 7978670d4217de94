// Package engine holds the host engine tables the compiler resolves
// render state tokens against: enum ordinals, render state keys and the
// value types of color and vector properties.
package engine

import "sort"

// CullMode selects which faces are culled.
type CullMode int

const (
	CullModeOff CullMode = iota
	CullModeFront
	CullModeBack
)

// BlendFactor is a blend equation factor.
type BlendFactor int

const (
	BlendFactorZero BlendFactor = iota
	BlendFactorOne
	BlendFactorSourceColor
	BlendFactorOneMinusSourceColor
	BlendFactorDestinationColor
	BlendFactorOneMinusDestinationColor
	BlendFactorSourceAlpha
	BlendFactorOneMinusSourceAlpha
	BlendFactorDestinationAlpha
	BlendFactorOneMinusDestinationAlpha
	BlendFactorSourceAlphaSaturate
	BlendFactorBlendColor
	BlendFactorOneMinusBlendColor
)

// BlendOperation combines source and destination terms.
type BlendOperation int

const (
	BlendOperationAdd BlendOperation = iota
	BlendOperationSubtract
	BlendOperationReverseSubtract
	BlendOperationMin
	BlendOperationMax
)

// CompareFunction is a depth or stencil comparison.
type CompareFunction int

const (
	CompareFunctionNever CompareFunction = iota
	CompareFunctionLess
	CompareFunctionEqual
	CompareFunctionLessEqual
	CompareFunctionGreater
	CompareFunctionNotEqual
	CompareFunctionGreaterEqual
	CompareFunctionAlways
)

// StencilOperation is applied to the stencil buffer.
type StencilOperation int

const (
	StencilOperationKeep StencilOperation = iota
	StencilOperationZero
	StencilOperationReplace
	StencilOperationIncrementSaturate
	StencilOperationDecrementSaturate
	StencilOperationInvert
	StencilOperationIncrementWrap
	StencilOperationDecrementWrap
)

// ColorWriteMask selects writable color channels.
type ColorWriteMask int

const (
	ColorWriteMaskNone  ColorWriteMask = 0
	ColorWriteMaskRed   ColorWriteMask = 0x1
	ColorWriteMaskGreen ColorWriteMask = 0x2
	ColorWriteMaskBlue  ColorWriteMask = 0x4
	ColorWriteMaskAlpha ColorWriteMask = 0x8
	ColorWriteMaskAll   ColorWriteMask = 0xf
)

// RenderQueueType orders draw calls.
type RenderQueueType int

const (
	RenderQueueTypeOpaque      RenderQueueType = 1000
	RenderQueueTypeAlphaTest   RenderQueueType = 2000
	RenderQueueTypeTransparent RenderQueueType = 3000
)

// Enums maps each enum type name usable in ShaderLab source to its members.
var Enums = map[string]map[string]int{
	"CullMode": {
		"Off":   int(CullModeOff),
		"Front": int(CullModeFront),
		"Back":  int(CullModeBack),
	},
	"BlendFactor": {
		"Zero":                     int(BlendFactorZero),
		"One":                      int(BlendFactorOne),
		"SourceColor":              int(BlendFactorSourceColor),
		"OneMinusSourceColor":      int(BlendFactorOneMinusSourceColor),
		"DestinationColor":         int(BlendFactorDestinationColor),
		"OneMinusDestinationColor": int(BlendFactorOneMinusDestinationColor),
		"SourceAlpha":              int(BlendFactorSourceAlpha),
		"OneMinusSourceAlpha":      int(BlendFactorOneMinusSourceAlpha),
		"DestinationAlpha":         int(BlendFactorDestinationAlpha),
		"OneMinusDestinationAlpha": int(BlendFactorOneMinusDestinationAlpha),
		"SourceAlphaSaturate":      int(BlendFactorSourceAlphaSaturate),
		"BlendColor":               int(BlendFactorBlendColor),
		"OneMinusBlendColor":       int(BlendFactorOneMinusBlendColor),
	},
	"BlendOperation": {
		"Add":             int(BlendOperationAdd),
		"Subtract":        int(BlendOperationSubtract),
		"ReverseSubtract": int(BlendOperationReverseSubtract),
		"Min":             int(BlendOperationMin),
		"Max":             int(BlendOperationMax),
	},
	"CompareFunction": {
		"Never":        int(CompareFunctionNever),
		"Less":         int(CompareFunctionLess),
		"Equal":        int(CompareFunctionEqual),
		"LessEqual":    int(CompareFunctionLessEqual),
		"Greater":      int(CompareFunctionGreater),
		"NotEqual":     int(CompareFunctionNotEqual),
		"GreaterEqual": int(CompareFunctionGreaterEqual),
		"Always":       int(CompareFunctionAlways),
	},
	"StencilOperation": {
		"Keep":              int(StencilOperationKeep),
		"Zero":              int(StencilOperationZero),
		"Replace":           int(StencilOperationReplace),
		"IncrementSaturate": int(StencilOperationIncrementSaturate),
		"DecrementSaturate": int(StencilOperationDecrementSaturate),
		"Invert":            int(StencilOperationInvert),
		"IncrementWrap":     int(StencilOperationIncrementWrap),
		"DecrementWrap":     int(StencilOperationDecrementWrap),
	},
	"ColorWriteMask": {
		"None":  int(ColorWriteMaskNone),
		"Red":   int(ColorWriteMaskRed),
		"Green": int(ColorWriteMaskGreen),
		"Blue":  int(ColorWriteMaskBlue),
		"Alpha": int(ColorWriteMaskAlpha),
		"All":   int(ColorWriteMaskAll),
	},
	"RenderQueueType": {
		"Opaque":      int(RenderQueueTypeOpaque),
		"AlphaTest":   int(RenderQueueTypeAlphaTest),
		"Transparent": int(RenderQueueTypeTransparent),
	},
}

// IsEnum reports whether name is an enum type.
func IsEnum(name string) bool {
	_, ok := Enums[name]
	return ok
}

// LookupEnum returns the ordinal of typeName.member.
func LookupEnum(typeName, member string) (int, bool) {
	members, ok := Enums[typeName]
	if !ok {
		return 0, false
	}
	v, ok := members[member]
	return v, ok
}

// EnumMembers returns the member names of typeName in sorted order.
func EnumMembers(typeName string) []string {
	members := Enums[typeName]
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Color is an RGBA color value.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Vector4 is a four component vector value.
type Vector4 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}
