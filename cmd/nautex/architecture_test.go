package main

import (
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

const moduleRoot = "github.com/nautex-dev/nautex"

// Layer maps for internal/ packages. A new package under internal/ must be
// added to exactly one of these or TestAllInternalPackagesClassified fails.
var (
	featureOrchestration = map[string]bool{
		moduleRoot + "/internal/mcp":    true,
		moduleRoot + "/internal/wizard": true,
		moduleRoot + "/internal/prompt": true,
		moduleRoot + "/internal/output": true,
	}

	platformCore = map[string]bool{
		moduleRoot + "/internal/api":           true,
		moduleRoot + "/internal/config":        true,
		moduleRoot + "/internal/scope":         true,
		moduleRoot + "/internal/integration":   true,
		moduleRoot + "/internal/readiness":     true,
		moduleRoot + "/internal/errors":        true,
		moduleRoot + "/internal/buildinfo":     true,
		moduleRoot + "/internal/paths":         true,
		moduleRoot + "/internal/observability": true,
		moduleRoot + "/internal/testutil":      true,
	}

	presentationPkgs = map[string]bool{
		moduleRoot + "/internal/output": true,
		moduleRoot + "/internal/prompt": true,
	}
)

// importGraph maps each production package path to its module-local imports.
// Test package variants are excluded so test-only dependencies (testutil,
// fakes) do not count as architectural edges.
func importGraph(t *testing.T) map[string][]string {
	t.Helper()

	cfg := &packages.Config{
		Mode:  packages.NeedName | packages.NeedImports | packages.NeedDeps,
		Tests: true,
	}

	pkgs, err := packages.Load(cfg, moduleRoot+"/...")
	if err != nil {
		t.Fatalf("loading packages: %v", err)
	}

	graph := make(map[string][]string)
	for _, pkg := range pkgs {
		if isTestVariant(pkg.ID) {
			continue
		}
		for imp := range pkg.Imports {
			if strings.HasPrefix(imp, moduleRoot+"/") {
				graph[pkg.PkgPath] = append(graph[pkg.PkgPath], imp)
			}
		}
		if _, ok := graph[pkg.PkgPath]; !ok {
			graph[pkg.PkgPath] = nil
		}
	}
	return graph
}

// isTestVariant reports whether a go/packages ID names a test binary or a
// test recompilation ("pkg.test", "pkg [pkg.test]", "pkg_test [pkg.test]").
func isTestVariant(id string) bool {
	return strings.HasSuffix(id, ".test") || strings.Contains(id, " [")
}

func isInternal(path string) bool {
	return strings.HasPrefix(path, moduleRoot+"/internal/")
}

// internalBase collapses a package path to its top-level internal/ package.
func internalBase(path string) string {
	rest := strings.TrimPrefix(path, moduleRoot+"/internal/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return moduleRoot + "/internal/" + rest
}

func TestAllInternalPackagesClassified(t *testing.T) {
	graph := importGraph(t)

	checked := map[string]bool{}
	for path := range graph {
		if !isInternal(path) {
			continue
		}
		base := internalBase(path)
		if checked[base] {
			continue
		}
		checked[base] = true

		if !featureOrchestration[base] && !platformCore[base] {
			t.Errorf("%s is not classified: add it to featureOrchestration or platformCore", base)
		}
	}
}

func TestPlatformPackagesDoNotImportPresentation(t *testing.T) {
	for path, imports := range importGraph(t) {
		if !isInternal(path) || !platformCore[internalBase(path)] {
			continue
		}
		for _, imp := range imports {
			if presentationPkgs[imp] {
				t.Errorf("%s imports %s: platform packages must not depend on terminal presentation", path, imp)
			}
		}
	}
}

func TestInternalPackagesDoNotImportCmd(t *testing.T) {
	for path, imports := range importGraph(t) {
		if !isInternal(path) {
			continue
		}
		for _, imp := range imports {
			if strings.HasPrefix(imp, moduleRoot+"/cmd/") {
				t.Errorf("%s imports %s: internal packages must not import cmd/", path, imp)
			}
		}
	}
}

// The MCP server owns stdout for the protocol stream. Tool handlers must log
// through slog; importing the terminal writer would invite corrupting output.
func TestMCPDoesNotImportOutput(t *testing.T) {
	graph := importGraph(t)

	for _, imp := range graph[moduleRoot+"/internal/mcp"] {
		if imp == moduleRoot+"/internal/output" {
			t.Error("internal/mcp imports internal/output: MCP tool handlers must log via slog, never write to the terminal")
		}
	}
}

func TestTestutilNotImportedByProductionCode(t *testing.T) {
	for path, imports := range importGraph(t) {
		for _, imp := range imports {
			if imp == moduleRoot+"/internal/testutil" {
				t.Errorf("%s imports internal/testutil: testutil is for tests only", path)
			}
		}
	}
}

// Feature packages depend on platform packages, not on each other. The few
// blessed lateral edges are listed here; anything else fails.
func TestNoCrossLayerFeatureImports(t *testing.T) {
	allowed := map[string]map[string]bool{
		moduleRoot + "/internal/wizard": {
			moduleRoot + "/internal/prompt": true,
			moduleRoot + "/internal/output": true,
		},
		moduleRoot + "/internal/prompt": {
			moduleRoot + "/internal/output": true,
		},
	}

	for path, imports := range importGraph(t) {
		if !isInternal(path) {
			continue
		}
		base := internalBase(path)
		if !featureOrchestration[base] {
			continue
		}

		for _, imp := range imports {
			if !isInternal(imp) {
				continue
			}
			impBase := internalBase(imp)
			if !featureOrchestration[impBase] || impBase == base || allowed[base][impBase] {
				continue
			}
			t.Errorf("%s imports sibling feature %s: add to the allowed map only if the lateral edge is intentional", path, imp)
		}
	}
}
