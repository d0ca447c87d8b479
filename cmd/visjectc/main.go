// Command visjectc is the visject shader compiler CLI.
//
// Usage:
//
//	visjectc [options] <input...>
//
// Examples:
//
//	visjectc material.visject                  # Compile a surface material
//	visjectc -o mat.hlsl material.visject      # Compile to file
//	visjectc -blend transparent material.visject
//	visjectc -particles emitter.visject        # Compile a GPU particle emitter
//	visjectc a.visject b.visject               # Batch compile to .hlsl files
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/visject"
)

var (
	output    = flag.String("o", "", "output file (default: stdout)")
	domain    = flag.String("domain", "surface", "material domain (surface, postprocess, decal, gui, terrain, particle, deformable, volumeparticle)")
	blend     = flag.String("blend", "opaque", "blend mode (opaque, transparent, additive, multiply)")
	particles = flag.Bool("particles", false, "compile a GPU particle emitter")
	params    = flag.Bool("params", false, "list shader parameters on stderr")
	version   = flag.Bool("version", false, "print version")
)

const visjectVersion = "0.1.0-dev"

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("visjectc version %s\n", visjectVersion)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}

	info := visject.MaterialInfo{}
	var err error
	if info.Domain, err = parseDomain(*domain); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if info.BlendMode, err = parseBlend(*blend); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(args) == 1 {
		if compileFile(args[0], *output, info) != nil {
			os.Exit(1)
		}
		return
	}

	// Batch mode: each input compiles to a .hlsl file next to it.
	if *output != "" {
		fmt.Fprintln(os.Stderr, "Error: -o cannot be combined with multiple inputs")
		os.Exit(1)
	}
	var grp errgroup.Group
	for _, in := range args {
		in := in // per-iteration copy; the go directive predates loopvar scoping
		grp.Go(func() error {
			return compileFile(in, hlslPath(in), info)
		})
	}
	if grp.Wait() != nil {
		os.Exit(1)
	}
}

// compileFile compiles one serialized graph. An empty out streams the
// shader source to stdout. Errors are reported on stderr before they
// return.
func compileFile(in, out string, info visject.MaterialInfo) error {
	f, err := os.Open(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	g, err := visject.Load(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", in, err)
		return err
	}

	var res *visject.Result
	if *particles {
		res, err = visject.CompileParticleEmitter(g, nil)
	} else {
		res, err = visject.CompileMaterial(g, info, nil)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compilation error in %s: %v\n", in, err)
		return err
	}
	for _, d := range res.Diagnostics {
		fmt.Fprintf(os.Stderr, "Warning: %s: %v\n", in, d)
	}
	if *params {
		printParameters(in, res)
	}

	if out == "" {
		if _, err := os.Stdout.Write(res.Source); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			return err
		}
		return nil
	}
	if err := os.WriteFile(out, res.Source, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		return err
	}
	fmt.Printf("Successfully compiled %s to %s (%d bytes)\n", in, out, len(res.Source))
	return nil
}

// printParameters lists the shader parameter table on stderr.
func printParameters(in string, res *visject.Result) {
	list := res.Parameters.List()
	fmt.Fprintf(os.Stderr, "%s: %d parameters\n", in, len(list))
	for _, p := range list {
		loc := fmt.Sprintf("offset %d", p.Offset)
		if p.Register >= 0 {
			loc = fmt.Sprintf("register %d", p.Register)
		}
		vis := "internal"
		if p.Public {
			vis = "public"
		}
		fmt.Fprintf(os.Stderr, "  %-5s %-20s %-24q %-12s %s\n", p.ShaderName, p.Kind, p.Name, loc, vis)
	}
}

func hlslPath(in string) string {
	return strings.TrimSuffix(in, filepath.Ext(in)) + ".hlsl"
}

func parseDomain(s string) (visject.MaterialDomain, error) {
	switch strings.ToLower(s) {
	case "surface":
		return visject.DomainSurface, nil
	case "postprocess", "post-process":
		return visject.DomainPostProcess, nil
	case "decal":
		return visject.DomainDecal, nil
	case "gui":
		return visject.DomainGUI, nil
	case "terrain":
		return visject.DomainTerrain, nil
	case "particle":
		return visject.DomainParticle, nil
	case "deformable":
		return visject.DomainDeformable, nil
	case "volumeparticle", "volume-particle":
		return visject.DomainVolumeParticle, nil
	}
	return 0, fmt.Errorf("unknown material domain %q", s)
}

func parseBlend(s string) (visject.BlendMode, error) {
	switch strings.ToLower(s) {
	case "opaque":
		return visject.BlendOpaque, nil
	case "transparent":
		return visject.BlendTransparent, nil
	case "additive":
		return visject.BlendAdditive, nil
	case "multiply":
		return visject.BlendMultiply, nil
	}
	return 0, fmt.Errorf("unknown blend mode %q", s)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: visjectc [options] <input.visject...>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  visjectc material.visject              Compile to stdout\n")
	fmt.Fprintf(os.Stderr, "  visjectc -o mat.hlsl material.visject  Compile to file\n")
	fmt.Fprintf(os.Stderr, "  visjectc -domain gui ui.visject        Pick the material domain\n")
	fmt.Fprintf(os.Stderr, "  visjectc -particles emitter.visject    Compile a particle emitter\n")
	fmt.Fprintf(os.Stderr, "  visjectc a.visject b.visject           Batch compile to .hlsl\n")
}
