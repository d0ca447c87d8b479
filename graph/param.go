package graph

import (
	"github.com/google/uuid"
)

// ParameterKind selects what a parameter binds: a constant-buffer slot, a
// shader resource view, a sampler, or an engine-provided binding. The
// numeric ids are part of the version 7000 wire format.
type ParameterKind uint8

const (
	ParamInvalid ParameterKind = iota
	ParamBool
	ParamInt
	ParamFloat
	ParamFloat2
	ParamFloat3
	ParamFloat4
	ParamColor
	ParamMatrix
	ParamTexture
	ParamNormalMap
	ParamCubeTexture
	ParamTextureArray
	ParamVolumeTexture
	ParamSceneTexture
	ParamTextureGroupSampler
	ParamGameplayGlobal
	ParamGlobalSDF
	ParamChannelMask
)

// String returns the kind name used in diagnostics.
func (k ParameterKind) String() string {
	switch k {
	case ParamBool:
		return "Bool"
	case ParamInt:
		return "Int"
	case ParamFloat:
		return "Float"
	case ParamFloat2:
		return "Float2"
	case ParamFloat3:
		return "Float3"
	case ParamFloat4:
		return "Float4"
	case ParamColor:
		return "Color"
	case ParamMatrix:
		return "Matrix"
	case ParamTexture:
		return "Texture"
	case ParamNormalMap:
		return "NormalMap"
	case ParamCubeTexture:
		return "CubeTexture"
	case ParamTextureArray:
		return "TextureArray"
	case ParamVolumeTexture:
		return "VolumeTexture"
	case ParamSceneTexture:
		return "SceneTexture"
	case ParamTextureGroupSampler:
		return "TextureGroupSampler"
	case ParamGameplayGlobal:
		return "GameplayGlobal"
	case ParamGlobalSDF:
		return "GlobalSDF"
	case ParamChannelMask:
		return "ChannelMask"
	default:
		return "Invalid"
	}
}

// IsTexture reports whether the kind consumes a shader resource view.
func (k ParameterKind) IsTexture() bool {
	switch k {
	case ParamTexture, ParamNormalMap, ParamCubeTexture, ParamTextureArray,
		ParamVolumeTexture, ParamSceneTexture:
		return true
	default:
		return false
	}
}

// ValueType returns the evaluated type a reference to this parameter has.
func (k ParameterKind) ValueType() ValueType {
	switch k {
	case ParamBool:
		return TypeBool
	case ParamInt:
		return TypeInt
	case ParamFloat:
		return TypeFloat
	case ParamFloat2:
		return TypeFloat2
	case ParamFloat3:
		return TypeFloat3
	case ParamFloat4:
		return TypeFloat4
	case ParamColor, ParamChannelMask:
		return TypeColor
	case ParamTexture, ParamNormalMap, ParamCubeTexture, ParamTextureArray,
		ParamVolumeTexture, ParamSceneTexture:
		return TypeObject
	case ParamTextureGroupSampler:
		return TypeInt
	default:
		return TypeInvalid
	}
}

// Parameter is an externally bindable constant or resource referenced by a
// graph, identified by a GUID that is unique within the graph.
type Parameter struct {
	// Kind selects the binding class.
	Kind ParameterKind

	// ID is the stable identifier nodes use to reference the parameter.
	ID uuid.UUID

	// Name is the display name. The serialized form caps it at 97 bytes.
	Name string

	// Public marks parameters the author exposed; internal parameters are
	// appended by the compiler (scene textures, gameplay globals).
	Public bool

	// Value is the default value.
	Value Variant

	// Meta holds opaque editor metadata.
	Meta Meta
}

// MaxParameterName is the byte cap on serialized parameter names.
const MaxParameterName = 97
