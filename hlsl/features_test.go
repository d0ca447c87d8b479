// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strings"
	"testing"

	"github.com/gogpu/visject/graph"
)

// =============================================================================
// Test: feature selection
// =============================================================================

func TestActiveFeatures(t *testing.T) {
	tests := []struct {
		name string
		info MaterialInfo
		want []materialFeature
	}{
		{
			"opaque_surface",
			MaterialInfo{Domain: DomainSurface},
			[]materialFeature{FeatureDeferredShading, FeatureMotionVectors},
		},
		{
			"opaque_terrain",
			MaterialInfo{Domain: DomainTerrain},
			[]materialFeature{FeatureDeferredShading, FeatureMotionVectors},
		},
		{
			"opaque_deformable",
			MaterialInfo{Domain: DomainDeformable},
			[]materialFeature{FeatureDeferredShading, FeatureMotionVectors},
		},
		{
			"transparent_surface",
			MaterialInfo{Domain: DomainSurface, BlendMode: BlendTransparent},
			[]materialFeature{FeatureForwardShading, FeatureDistortion},
		},
		{
			"additive_surface",
			MaterialInfo{Domain: DomainSurface, BlendMode: BlendAdditive},
			[]materialFeature{FeatureForwardShading, FeatureDistortion},
		},
		{
			"transparent_no_distortion",
			MaterialInfo{Domain: DomainSurface, BlendMode: BlendTransparent, Flags: FlagDisableDistortion},
			[]materialFeature{FeatureForwardShading},
		},
		{
			"post_process",
			MaterialInfo{Domain: DomainPostProcess},
			nil,
		},
		{
			"decal",
			MaterialInfo{Domain: DomainDecal},
			nil,
		},
		{
			"gui",
			MaterialInfo{Domain: DomainGUI},
			nil,
		},
		{
			"lightmapped_surface",
			MaterialInfo{Domain: DomainSurface, Flags: FlagUseLightmap},
			[]materialFeature{FeatureLightmap, FeatureDeferredShading, FeatureMotionVectors},
		},
		{
			"tessellated_surface",
			MaterialInfo{Domain: DomainSurface, TessellationMode: TessellationPointNormal},
			[]materialFeature{FeatureTessellation, FeatureDeferredShading, FeatureMotionVectors},
		},
		{
			"tessellated_post_process",
			MaterialInfo{Domain: DomainPostProcess, TessellationMode: TessellationPhong},
			nil,
		},
		{
			"gi_surface",
			MaterialInfo{Domain: DomainSurface, Flags: FlagGlobalIllumination},
			[]materialFeature{FeatureDeferredShading, FeatureMotionVectors, FeatureGlobalIllumination},
		},
		{
			"sdf_transparent",
			MaterialInfo{Domain: DomainSurface, BlendMode: BlendTransparent, Flags: FlagSDFReflections},
			[]materialFeature{FeatureForwardShading, FeatureDistortion, FeatureSDFReflections},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := activeFeatures(tt.info)
			if len(got) != len(tt.want) {
				t.Fatalf("activeFeatures() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("activeFeatures() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

// =============================================================================
// Test: feature composition in compiled output
// =============================================================================

func TestCompileDeferredFeatureSections(t *testing.T) {
	var g graph.Graph
	addMaterialRoot(&g)

	res := compileSurface(t, &g)
	src := string(res.Source)

	mustContain(t, src, "#define USE_DEFERRED_SHADING 1")
	mustContain(t, src, "#define USE_MOTION_VECTORS 1")
	mustContain(t, src, "cbuffer MotionVectorsData : register(b3)")
}

func TestCompileGUIHasNoFeatures(t *testing.T) {
	var g graph.Graph
	addMaterialRoot(&g)

	res := compileMaterial(t, &g, MaterialInfo{Domain: DomainGUI})
	src := string(res.Source)

	mustNotContain(t, src, "USE_DEFERRED_SHADING")
	mustNotContain(t, src, "USE_MOTION_VECTORS")
	mustNotContain(t, src, "USE_FORWARD_SHADING")
}

// Feature resources claim SRV registers before the graph parameters, so a
// lightmapped material pushes its first texture past the lightmap slots.
func TestCompileLightmapClaimsRegistersFirst(t *testing.T) {
	var g graph.Graph
	root := addMaterialRoot(&g)
	albedo := addTextureParameter(&g, 2, graph.ParamTexture, "Albedo")
	root.Box(1).Connect(albedo.Box(2))

	res := compileMaterial(t, &g, MaterialInfo{Domain: DomainSurface, Flags: FlagUseLightmap})
	src := string(res.Source)

	mustContain(t, src, "#define USE_LIGHTMAP 1")
	mustContain(t, src, "Texture2D Lightmap0 : register(t2);")
	mustContain(t, src, "Texture2D Lightmap1 : register(t3);")
	mustContain(t, src, "Texture2D Lightmap2 : register(t4);")
	mustContain(t, src, "Texture2D In1 : register(t5);")
	mustContain(t, src, "float3 SampleLightmap(float2 lightmapUV)")
}

func TestCompileDistortionBackground(t *testing.T) {
	var g graph.Graph
	addMaterialRoot(&g)

	res := compileMaterial(t, &g, MaterialInfo{Domain: DomainSurface, BlendMode: BlendTransparent})
	src := string(res.Source)

	mustContain(t, src, "#define USE_FORWARD_SHADING 1")
	mustContain(t, src, "#define USE_DISTORTION 1")
	mustContain(t, src, "#include \"./Flax/ForwardShading.hlsl\"")
	mustContain(t, src, "Texture2D DistortionBackground : register(t2);")
}

// =============================================================================
// Test: feature template cache
// =============================================================================

func TestFeatureSegmentsCached(t *testing.T) {
	a, err := featureSegments(templateFiles, FeatureLightmap)
	if err != nil {
		t.Fatalf("featureSegments() error: %v", err)
	}
	b, err := featureSegments(templateFiles, FeatureLightmap)
	if err != nil {
		t.Fatalf("featureSegments() error on second load: %v", err)
	}
	if a != b {
		t.Error("featureSegments() returned different content for the same feature")
	}

	// The cache keeps the raw placeholders; register numbers are assigned
	// per compile on a copy.
	if !strings.Contains(a[featureResources], "__SRV__") {
		t.Errorf("cached resources section = %q, want raw __SRV__ placeholders", a[featureResources])
	}
}

func TestFeatureNames(t *testing.T) {
	for f := FeatureTessellation; f < featureCount; f++ {
		name := f.String()
		if strings.Contains(name, "materialFeature") {
			t.Errorf("feature %d has no name", uint8(f))
		}
		if f.file() != "templates/features/"+name+".hlsl" {
			t.Errorf("feature %v file = %q", f, f.file())
		}
	}
}
