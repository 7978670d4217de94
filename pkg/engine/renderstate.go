package engine

import (
	"fmt"
	"sort"
)

// RenderStateKey identifies one render state property. Blend target
// properties occupy one key per target.
type RenderStateKey int

// BlendTargetCount is the number of independently blendable color targets.
const BlendTargetCount = 8

var blendTargetProps = []string{
	"Enabled",
	"ColorWriteMask",
	"SourceColorBlendFactor",
	"DestinationColorBlendFactor",
	"SourceAlphaBlendFactor",
	"DestinationAlphaBlendFactor",
	"ColorBlendOperation",
	"AlphaBlendOperation",
}

var statefulProps = []struct {
	state string
	props []string
}{
	{"BlendState", []string{"BlendColor", "AlphaToCoverage"}},
	{"DepthState", []string{"Enabled", "WriteEnabled", "CompareFunction"}},
	{"StencilState", []string{
		"Enabled",
		"ReferenceValue",
		"Mask",
		"WriteMask",
		"CompareFunctionFront",
		"CompareFunctionBack",
		"PassOperationFront",
		"PassOperationBack",
		"FailOperationFront",
		"FailOperationBack",
		"ZFailOperationFront",
		"ZFailOperationBack",
	}},
	{"RasterState", []string{"CullMode", "DepthBias", "SlopeScaledDepthBias"}},
}

var (
	keyByName = make(map[string]RenderStateKey)
	nameByKey []string
	// perTarget records blend properties that take a target index.
	perTarget = make(map[string]bool)
)

// RenderQueueTypeKey is the key RenderQueueType assignments resolve to.
var RenderQueueTypeKey RenderStateKey

func init() {
	add := func(name string) RenderStateKey {
		key := RenderStateKey(len(nameByKey))
		keyByName[name] = key
		nameByKey = append(nameByKey, name)
		return key
	}

	for i := 0; i < BlendTargetCount; i++ {
		for _, prop := range blendTargetProps {
			add(fmt.Sprintf("BlendState%s%d", prop, i))
		}
	}
	for _, prop := range blendTargetProps {
		perTarget[prop] = true
	}
	for _, group := range statefulProps {
		for _, prop := range group.props {
			add(group.state + prop)
		}
	}
	RenderQueueTypeKey = add("RenderQueueType")
}

// String returns the flattened key name, e.g. "BlendStateEnabled0".
func (k RenderStateKey) String() string {
	if k < 0 || int(k) >= len(nameByKey) {
		return fmt.Sprintf("RenderStateKey(%d)", int(k))
	}
	return nameByKey[k]
}

// LookupRenderStateKey resolves a render state type, property and index
// into a key. Blend target properties written without an index address
// target 0; an index on any other property never resolves.
func LookupRenderStateKey(state, prop string, index int, hasIndex bool) (RenderStateKey, bool) {
	if state == "BlendState" && perTarget[prop] {
		if !hasIndex {
			index = 0
		}
		if index < 0 || index >= BlendTargetCount {
			return 0, false
		}
		key, ok := keyByName[fmt.Sprintf("BlendState%s%d", prop, index)]
		return key, ok
	}
	if hasIndex {
		return 0, false
	}
	key, ok := keyByName[state+prop]
	return key, ok
}

// LookupRenderStateKeyName resolves a flattened key name.
func LookupRenderStateKeyName(name string) (RenderStateKey, bool) {
	key, ok := keyByName[name]
	return key, ok
}

// RenderStateProperties returns the property names valid inside a block of
// the given state type, sorted.
func RenderStateProperties(state string) []string {
	var props []string
	if state == "BlendState" {
		props = append(props, blendTargetProps...)
	}
	for _, group := range statefulProps {
		if group.state == state {
			props = append(props, group.props...)
		}
	}
	sort.Strings(props)
	return props
}

// IsRenderState reports whether name is a render state block type.
func IsRenderState(name string) bool {
	switch name {
	case "BlendState", "DepthState", "StencilState", "RasterState":
		return true
	}
	return false
}
