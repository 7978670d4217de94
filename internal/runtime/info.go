package runtime

import (
	"github.com/galacean/engine-sub008/pkg/engine"
)

// ShaderInfo is the compiled form of a Shader.
type ShaderInfo struct {
	Name       string           `json:"name"`
	SubShaders []*SubShaderInfo `json:"subShaders"`
}

// SubShaderInfo is the compiled form of a SubShader. Each entry of Passes
// is either a *PassInfo or the path string of a UsePass.
type SubShaderInfo struct {
	Name   string         `json:"name"`
	Tags   map[string]any `json:"tags,omitempty"`
	Passes []any          `json:"passes"`
}

// PassInfo is the compiled form of a Pass.
type PassInfo struct {
	Name           string         `json:"name"`
	Tags           map[string]any `json:"tags,omitempty"`
	RenderStates   RenderStates   `json:"renderStates"`
	VertexSource   string         `json:"vertexSource"`
	FragmentSource string         `json:"fragmentSource"`
}

// RenderStates holds the constant properties at index 0 and the variable
// properties at index 1. A key is present in at most one of the two.
type RenderStates [2]map[engine.RenderStateKey]any

func newRenderStates() RenderStates {
	return RenderStates{
		make(map[engine.RenderStateKey]any),
		make(map[engine.RenderStateKey]any),
	}
}

// Constants returns the properties with literal values.
func (r RenderStates) Constants() map[engine.RenderStateKey]any {
	return r[0]
}

// Variables returns the properties whose value names a runtime variable.
func (r RenderStates) Variables() map[engine.RenderStateKey]any {
	return r[1]
}

func (r RenderStates) set(key engine.RenderStateKey, value any, variable bool) {
	if variable {
		r[1][key] = value
		delete(r[0], key)
	} else {
		r[0][key] = value
		delete(r[1], key)
	}
}

// PassByName returns the first compiled pass named name, or nil.
func (s *SubShaderInfo) PassByName(name string) *PassInfo {
	for _, p := range s.Passes {
		if info, ok := p.(*PassInfo); ok && info.Name == name {
			return info
		}
	}
	return nil
}
