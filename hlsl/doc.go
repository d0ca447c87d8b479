// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hlsl generates HLSL shader source from Visject surface graphs.
//
// The generator walks a graph from its root node, memoizing one HLSL
// expression per box, and splices the generated sections into a template
// selected by the material domain. Two compile entry points cover the
// asset types:
//
//   - CompileMaterial emits pixel, vertex and domain tree bodies for one
//     of the eight material domains
//   - CompileParticleEmitter emits initialize and update compute passes
//     over a raw GPU particle attribute buffer
//
// # Basic Usage
//
//	res, err := hlsl.CompileMaterial(g, hlsl.MaterialInfo{
//	    Domain: hlsl.DomainSurface,
//	}, hlsl.DefaultOptions())
//
// # Error Handling
//
// Recoverable graph problems (a missing asset, an impossible cast, a
// division by a constant zero) substitute a typed zero, collect a
// Diagnostic and keep generating, so a partially broken graph still
// yields a complete, parseable shader for authoring feedback. Only
// malformed graphs and template failures abort a compile with an error.
//
// # Parameters
//
// Graph parameters referenced during generation land in a ParameterSet:
// constants packed into a cbuffer with explicit padding, textures bound
// to SRV registers, samplers after the engine statics. The set
// serializes to a binary blob the engine side uses to bind values by
// stable parameter ids.
package hlsl
