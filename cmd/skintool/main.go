// skintool is a CLI utility for inspecting custom models and checking how
// they bind to a host skeleton without opening the viewer.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/skinswap/internal/armature"
	"github.com/Faultbox/skinswap/internal/engine/model"
	"github.com/Faultbox/skinswap/internal/engine/scene"
	"github.com/Faultbox/skinswap/internal/importer"
	"github.com/Faultbox/skinswap/internal/logger"
	"github.com/Faultbox/skinswap/internal/registry"
	"github.com/Faultbox/skinswap/internal/remap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "meshes", "ls":
		cmdMeshes(args)
	case "bones":
		cmdBones(args)
	case "remap":
		cmdRemap(args)
	case "models":
		cmdModels(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`skintool - skinned model inspection utility

Usage:
  skintool <command> [options]

Commands:
  meshes <model.glb>                 List meshes with vertex, triangle and bone counts
  bones <host.glb> [node]            List the host skeleton bones, or the
                                     path from the root to one node
  remap <model.glb> <host.glb>       Show how model bones bind to the host
  models <dir>                       List the models found in a directory

Options:
  -scale <f>      Uniform import scale (default 1)
  -raw            Keep source handedness
  -v              Verbose logging

Examples:
  skintool meshes models/Knight/knight.glb
  skintool remap -v models/Knight/knight.glb host.glb
  skintool models ./models`)
}

// importFlags registers the importer flags shared by every command.
func importFlags(name string) (*flag.FlagSet, func() *importer.Importer) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	scale := fs.Float64("scale", 1, "Uniform import scale")
	raw := fs.Bool("raw", false, "Keep source handedness")
	verbose := fs.Bool("v", false, "Verbose logging")

	return fs, func() *importer.Importer {
		initLogger(*verbose)
		opts := importer.DefaultOptions()
		opts.Scale = float32(*scale)
		opts.ConvertHandedness = !*raw
		return importer.New(opts, logger.Named("importer"))
	}
}

func initLogger(verbose bool) {
	level := "warn"
	if verbose {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fail("Logger error: %v", err)
	}
}

func fail(format string, args ...any) {
	logger.Sync()
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func cmdMeshes(args []string) {
	fs, newImporter := importFlags("meshes")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fail("Usage: skintool meshes <model.glb>")
	}

	meshes, err := newImporter().Import(fs.Arg(0))
	if err != nil {
		fail("Error: %v", err)
	}
	defer logger.Sync()

	fmt.Printf("Asset:  %s\n", fs.Arg(0))
	fmt.Printf("Meshes: %d\n\n", len(meshes))
	fmt.Printf("  %-32s %8s %8s %6s %6s %s\n", "NAME", "VERTS", "TRIS", "BONES", "INFL", "MATERIAL")
	for _, m := range meshes {
		fmt.Printf("  %-32s %8d %8d %6d %6d %d\n",
			m.Name, m.VertexCount(), m.TriangleCount(), len(m.BoneNames), maxInfluences(m), m.MaterialIndex)
	}
}

// maxInfluences is the largest number of weighted bones on one vertex.
func maxInfluences(m *model.RawMesh) int {
	n := 0
	for _, w := range m.Weights {
		n = max(n, w.Count())
	}
	return n
}

func cmdBones(args []string) {
	fs, newImporter := importFlags("bones")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fail("Usage: skintool bones <host.glb> [node]")
	}

	snap := loadSkeleton(newImporter(), fs.Arg(0))
	defer logger.Sync()

	if fs.NArg() > 1 {
		printNodePath(snap, fs.Arg(1))
		return
	}

	fmt.Printf("Host:      %s\n", fs.Arg(0))
	fmt.Printf("Root bone: %s\n", snap.RootBone.Name)
	fmt.Printf("Bones:     %d\n\n", len(snap.BoneNames))
	for i, name := range snap.BoneNames {
		fmt.Printf("  %3d %s\n", i, name)
	}
}

// printNodePath shows the ancestors of the named node and whether each one
// is a skeleton bone.
func printNodePath(snap *armature.Snapshot, name string) {
	root := snap.RootBone
	for root.Parent() != nil {
		root = root.Parent()
	}
	node := root.Find(name)
	if node == nil {
		fail("No node named %q", name)
	}

	index := make(map[*scene.Node]int, len(snap.BoneNodes))
	for i, b := range snap.BoneNodes {
		index[b] = i
	}
	var path []*scene.Node
	for n := node; n != nil; n = n.Parent() {
		path = append(path, n)
	}
	for depth := len(path) - 1; depth >= 0; depth-- {
		n := path[depth]
		bone := "-"
		if i, ok := index[n]; ok {
			bone = fmt.Sprintf("%d", i)
		}
		fmt.Printf("  %4s %s%s\n", bone, strings.Repeat("  ", len(path)-1-depth), n.Name)
	}
}

func cmdRemap(args []string) {
	fs, newImporter := importFlags("remap")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fail("Usage: skintool remap <model.glb> <host.glb>")
	}

	imp := newImporter()
	meshes, err := imp.Import(fs.Arg(0))
	if err != nil {
		fail("Error: %v", err)
	}
	snap := loadSkeleton(imp, fs.Arg(1))
	defer logger.Sync()

	remapper := remap.New(remap.DefaultMaxReported, logger.Named("remap"))
	unmapped := make(map[string]bool)
	failed := 0
	for _, raw := range meshes {
		res, err := remapper.Remap(raw, snap)
		if err != nil {
			fmt.Printf("%s: skipped: %v\n", raw.Name, err)
			failed++
			continue
		}
		if res.Mesh.Static {
			fmt.Printf("%s: static, attached at %s\n", raw.Name, attachName(snap))
			continue
		}
		fmt.Printf("%s: %d bones, %d fallback bones\n", raw.Name, len(raw.BoneNames), res.Fallbacks)
		for i, name := range raw.BoneNames {
			target := res.Table.Lookup(int32(i))
			fmt.Printf("  %-32s -> %s\n", name, snap.BoneNames[target])
		}
		for _, name := range res.Unmapped {
			unmapped[name] = true
		}
	}

	if len(unmapped) > 0 {
		names := make([]string, 0, len(unmapped))
		for name := range unmapped {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(os.Stderr, "\n%d bones fell back to %s: %s\n",
			len(names), snap.RootBone.Name, strings.Join(names, ", "))
	}
	if failed == len(meshes) {
		fail("\nNo mesh could be bound to the host")
	}
}

func cmdModels(args []string) {
	fs := flag.NewFlagSet("models", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Verbose logging")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fail("Usage: skintool models <dir>")
	}
	initLogger(*verbose)
	defer logger.Sync()

	reg := registry.New(fs.Arg(0), logger.Named("registry"))
	if err := reg.Scan(); err != nil {
		fail("Error: %v", err)
	}

	for _, m := range reg.List() {
		if !m.Custom {
			fmt.Printf("%s (built-in)\n", m.Name)
			continue
		}
		tex := m.TexturePath
		if tex == "" {
			tex = "(none)"
		}
		fmt.Printf("%s\n  mesh:    %s\n  texture: %s\n", m.Name, m.SourcePath, tex)
		if m.PreviewPath != "" {
			fmt.Printf("  preview: %s\n", m.PreviewPath)
		}
	}
}

// loadSkeleton builds the host hierarchy at path and maps its skeleton.
func loadSkeleton(imp *importer.Importer, path string) *armature.Snapshot {
	host, err := imp.LoadHost(path, "Character")
	if err != nil {
		fail("Error: %v", err)
	}
	snap, err := armature.Map(host, logger.Named("armature"))
	if err != nil {
		fail("Error: %s: %v", path, err)
	}
	logger.Debug("mapped host skeleton", zap.Int("bones", len(snap.BoneNames)))
	return snap
}

func attachName(snap *armature.Snapshot) string {
	if n := snap.AttachPoint(nil); n != nil {
		return n.Name
	}
	return "(character root)"
}
