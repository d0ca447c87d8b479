// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// materialFeature is an engine-side shader feature mixed into the output
// ahead of the user graph content.
type materialFeature uint8

const (
	FeatureTessellation materialFeature = iota
	FeatureLightmap
	FeatureDeferredShading
	FeatureForwardShading
	FeatureMotionVectors
	FeatureDistortion
	FeatureGlobalIllumination
	FeatureSDFReflections
	featureCount
)

func (f materialFeature) String() string {
	switch f {
	case FeatureTessellation:
		return "Tessellation"
	case FeatureLightmap:
		return "Lightmap"
	case FeatureDeferredShading:
		return "DeferredShading"
	case FeatureForwardShading:
		return "ForwardShading"
	case FeatureMotionVectors:
		return "MotionVectors"
	case FeatureDistortion:
		return "Distortion"
	case FeatureGlobalIllumination:
		return "GlobalIllumination"
	case FeatureSDFReflections:
		return "SDFReflections"
	}
	return fmt.Sprintf("materialFeature(%d)", uint8(f))
}

func (f materialFeature) file() string {
	return "templates/features/" + f.String() + ".hlsl"
}

// featureSegmentCount is the number of sections a feature template splits
// into: Defines, Includes, Constants, Resources, Utilities, Shaders.
const featureSegmentCount = 6

const (
	featureDefines = iota
	featureIncludes
	featureConstants
	featureResources
	featureUtilities
	featureShaders
)

// featureCache holds the split feature templates. Feature templates are
// engine assets, constant for the process lifetime, so the cache is
// global: read-mostly after warm-up, with a single loader per feature.
var featureCache = struct {
	mu    sync.RWMutex
	group singleflight.Group
	segs  map[string][segmentCount]string
}{segs: make(map[string][segmentCount]string)}

// featureSegments loads and splits one feature template, caching the
// result process-wide.
func featureSegments(fsys fs.FS, f materialFeature) ([segmentCount]string, error) {
	name := f.file()
	featureCache.mu.RLock()
	segs, ok := featureCache.segs[name]
	featureCache.mu.RUnlock()
	if ok {
		return segs, nil
	}
	v, err, _ := featureCache.group.Do(name, func() (any, error) {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, errorf(ErrTemplateFailure, "cannot read feature template %s: %v", name, err)
		}
		segs, err := splitSegments(data)
		if err != nil {
			return nil, err
		}
		featureCache.mu.Lock()
		featureCache.segs[name] = segs
		featureCache.mu.Unlock()
		return segs, nil
	})
	if err != nil {
		return [segmentCount]string{}, err
	}
	return v.([segmentCount]string), nil
}

// activeFeatures decides the feature set from the material metadata, in
// canonical order.
func activeFeatures(info MaterialInfo) []materialFeature {
	surface := info.Domain == DomainSurface || info.Domain == DomainTerrain ||
		info.Domain == DomainDeformable
	opaque := info.BlendMode == BlendOpaque

	var active []materialFeature
	if info.TessellationMode != TessellationNone && surface {
		active = append(active, FeatureTessellation)
	}
	if info.Flags&FlagUseLightmap != 0 {
		active = append(active, FeatureLightmap)
	}
	if opaque && surface {
		active = append(active, FeatureDeferredShading)
	}
	if !opaque {
		active = append(active, FeatureForwardShading)
	}
	if opaque && surface {
		active = append(active, FeatureMotionVectors)
	}
	if !opaque && info.Flags&FlagDisableDistortion == 0 {
		active = append(active, FeatureDistortion)
	}
	if info.Flags&FlagGlobalIllumination != 0 {
		active = append(active, FeatureGlobalIllumination)
	}
	if info.Flags&FlagSDFReflections != 0 {
		active = append(active, FeatureSDFReflections)
	}
	return active
}

// applyFeatures composes the active features into the per-compile feature
// sections. Each __SRV__ placeholder in a Resources section claims the
// next SRV register, ahead of the parameter layout, so this runs before
// any graph evaluation.
func (c *compilation) applyFeatures() error {
	for _, f := range activeFeatures(c.info) {
		segs, err := featureSegments(c.opts.templateFS(), f)
		if err != nil {
			return err
		}
		res := segs[featureResources]
		for strings.Contains(res, "__SRV__") {
			res = strings.Replace(res, "__SRV__", fmt.Sprint(c.params.ClaimSRV()), 1)
		}
		segs[featureResources] = res
		for i := 0; i < featureSegmentCount; i++ {
			c.features[i] += segs[i]
		}
		c.log.V(1).Info("material feature active", "feature", f.String())
	}
	return nil
}
