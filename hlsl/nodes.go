// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

// Archetype group ids. A node's packed type is (group << 16) | type;
// the evaluator dispatches on the group and lets each handler switch on
// the per-group type id.
const (
	GroupMaterial        uint16 = 1
	GroupConstants       uint16 = 2
	GroupMath            uint16 = 3
	GroupPacking         uint16 = 4
	GroupTextures        uint16 = 5
	GroupParameters      uint16 = 6
	GroupTools           uint16 = 7
	GroupLayers          uint16 = 8
	GroupBoolean         uint16 = 12
	GroupBitwise         uint16 = 13
	GroupComparisons     uint16 = 14
	GroupParticles       uint16 = 15
	GroupParticleModules uint16 = 16
	GroupFunction        uint16 = 17
)

// Material group nodes. The root consumes the surface inputs; the rest
// surface shader inputs and derivatives.
const (
	MaterialRoot       uint16 = 1
	WorldPosition      uint16 = 2
	VertexNormal       uint16 = 3
	VertexColor        uint16 = 4
	CameraVector       uint16 = 5
	ScreenPosition     uint16 = 6
	ScreenSize         uint16 = 7
	TwoSidedSign       uint16 = 8
	ObjectPosition     uint16 = 9
	ObjectScale        uint16 = 10
	VertexInterpolator uint16 = 11
	PerInstanceRandom  uint16 = 12
	DDX                uint16 = 13
	DDY                uint16 = 14
)

// Constant group nodes. Vector constants expose the whole vector on box 0
// and the individual components on the following boxes.
const (
	ConstBool   uint16 = 1
	ConstFloat  uint16 = 2
	ConstFloat2 uint16 = 3
	ConstFloat3 uint16 = 4
	ConstFloat4 uint16 = 5
	ConstColor  uint16 = 6
	ConstInt    uint16 = 7
	ConstUint   uint16 = 8
	ConstPI     uint16 = 9
)

// Math group nodes. Binary operators read boxes 0 and 1 and write box 2;
// unary operators read box 0 and write box 1; ternary operators read
// boxes 0..2 and write box 3.
const (
	MathAdd                  uint16 = 1
	MathSubtract             uint16 = 2
	MathMultiply             uint16 = 3
	MathDivide               uint16 = 4
	MathModulo               uint16 = 5
	MathAbsolute             uint16 = 6
	MathCeil                 uint16 = 7
	MathCosine               uint16 = 8
	MathFloor                uint16 = 9
	MathLength               uint16 = 10
	MathNormalize            uint16 = 11
	MathPower                uint16 = 12
	MathRound                uint16 = 13
	MathSaturate             uint16 = 14
	MathSine                 uint16 = 15
	MathSqrt                 uint16 = 16
	MathTangent              uint16 = 17
	MathCross                uint16 = 18
	MathDistance             uint16 = 19
	MathDot                  uint16 = 20
	MathMaximum              uint16 = 21
	MathMinimum              uint16 = 22
	MathClamp                uint16 = 23
	MathLerp                 uint16 = 24
	MathReflect              uint16 = 25
	MathNegate               uint16 = 26
	MathOneMinus             uint16 = 27
	MathDeriveNormalZ        uint16 = 28
	MathMad                  uint16 = 29
	MathLargestComponentMask uint16 = 30
	MathArcSine              uint16 = 31
	MathArcCosine            uint16 = 32
	MathArcTangent           uint16 = 33
	MathArcTangent2          uint16 = 34
	MathBiasScale            uint16 = 35
	MathRotateAboutAxis      uint16 = 36
	MathTrunc                uint16 = 37
	MathFrac                 uint16 = 38
	MathFmod                 uint16 = 39
	MathNearEqual            uint16 = 40
	MathDegrees              uint16 = 41
	MathRadians              uint16 = 42
	MathRemap                uint16 = 43
	MathRotateVector         uint16 = 44
	MathSmoothstep           uint16 = 45
	MathStep                 uint16 = 46
	MathTransformSpace       uint16 = 47
)

// Transform spaces used by MathTransformSpace values[0] and values[1].
const (
	SpaceTangent int32 = 0
	SpaceWorld   int32 = 1
	SpaceView    int32 = 2
	SpaceLocal   int32 = 3
)

// Packing group nodes. Pack nodes read components from boxes 1..N with
// defaults in the node values; unpack nodes fan box 0 out to boxes 1..N.
const (
	PackFloat2   uint16 = 20
	PackFloat3   uint16 = 21
	PackFloat4   uint16 = 22
	UnpackFloat2 uint16 = 30
	UnpackFloat3 uint16 = 31
	UnpackFloat4 uint16 = 32
	MaskX        uint16 = 40
	MaskY        uint16 = 41
	MaskZ        uint16 = 42
	MaskW        uint16 = 43
	MaskXY       uint16 = 44
	MaskYZ       uint16 = 45
	MaskXZ       uint16 = 46
	MaskZW       uint16 = 47
	MaskXYZ      uint16 = 48
	PackAppend   uint16 = 60
)

// Texture group nodes.
const (
	Texture       uint16 = 1
	TexCoord      uint16 = 2
	CubeTexture   uint16 = 3
	NormalMap     uint16 = 4
	SceneTexture  uint16 = 5
	SceneDepth    uint16 = 6
	SampleTexture uint16 = 7
)

// Parameter group nodes.
const (
	GetParameter uint16 = 1
)

// Tools group nodes.
const (
	Desaturation   uint16 = 1
	Time           uint16 = 2
	ColorGradient  uint16 = 5
	CurveFloat     uint16 = 7
	CurveFloat2    uint16 = 8
	CurveFloat3    uint16 = 9
	CurveFloat4    uint16 = 10
	PlatformSwitch uint16 = 11
	PerlinNoise    uint16 = 12
	SimplexNoise   uint16 = 13
	WorleyNoise    uint16 = 14
	VoronoiNoise   uint16 = 15
	CustomNoise    uint16 = 16
	GameplayGlobal uint16 = 17
)

// Layers group nodes.
const (
	SampleLayer      uint16 = 1
	PackMaterial     uint16 = 2
	UnpackMaterial   uint16 = 3
	LinearLayerBlend uint16 = 4
)

// Boolean group nodes.
const (
	BoolNot  uint16 = 1
	BoolAnd  uint16 = 2
	BoolOr   uint16 = 3
	BoolXor  uint16 = 4
	BoolNor  uint16 = 5
	BoolNand uint16 = 6
)

// Bitwise group nodes.
const (
	BitwiseNot uint16 = 1
	BitwiseAnd uint16 = 2
	BitwiseOr  uint16 = 3
	BitwiseXor uint16 = 4
)

// Comparison group nodes.
const (
	CompareEqual        uint16 = 1
	CompareNotEqual     uint16 = 2
	CompareGreater      uint16 = 3
	CompareLess         uint16 = 4
	CompareLessEqual    uint16 = 5
	CompareGreaterEqual uint16 = 6
	SwitchOnBool        uint16 = 7
)

// Particle group nodes. The emitter root holds the capacity; attribute
// nodes read per-particle storage by name and type.
const (
	ParticleEmitter         uint16 = 1
	ParticleAttribute       uint16 = 100
	ParticlePosition        uint16 = 101
	ParticleLifetime        uint16 = 102
	ParticleAge             uint16 = 103
	ParticleColor           uint16 = 104
	ParticleVelocity        uint16 = 105
	ParticleNormalizedAge   uint16 = 106
	ParticleSpriteSize      uint16 = 107
	ParticleMass            uint16 = 108
	ParticleRotation        uint16 = 109
	ParticleAngularVelocity uint16 = 110
	ParticleDeltaTime       uint16 = 150
)

// Particle module nodes. Types 2xx run in the spawn stage, 3xx in the
// update stage.
const (
	ModuleSetAttribute       uint16 = 200
	ModuleSetPosition        uint16 = 201
	ModuleSetLifetime        uint16 = 202
	ModuleSetAge             uint16 = 203
	ModuleSetColor           uint16 = 204
	ModuleSetVelocity        uint16 = 205
	ModuleSetRotation        uint16 = 206
	ModuleSetAngularVelocity uint16 = 207
	ModuleSetSpriteSize      uint16 = 208
	ModuleSetMass            uint16 = 209
	ModulePositionSphere     uint16 = 210
	ModuleUpdateAttribute    uint16 = 300
	ModuleUpdateAge          uint16 = 301
	ModuleGravity            uint16 = 302
	ModuleLinearDrag         uint16 = 303
)

// Function group nodes. A call node maps sink boxes 0..15 to the function
// graph inputs and source boxes 16..31 to its outputs.
const (
	FunctionCall   uint16 = 1
	FunctionInput  uint16 = 2
	FunctionOutput uint16 = 3
)
