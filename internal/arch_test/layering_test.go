package arch_test

import (
	"path/filepath"
	"strings"
	"testing"
)

// layers assigns each internal package to a numeric layer. A package at
// layer N may only import packages at layer N or below.
var layers = map[string]int{
	"board":     0,
	"config":    0,
	"dag":       0,
	"telemetry": 0,

	"engine": 1,

	"boardfile": 2,

	"store": 3,

	"server": 4,
	"ui":     4,
}

// TestDependencyLayering verifies that no internal package imports a package
// from a higher layer.
func TestDependencyLayering(t *testing.T) {
	t.Parallel()

	dir := internalDirPath(t)
	for _, pkg := range internalPackages(t) {
		importerLayer, ok := layers[pkg]
		if !ok {
			continue
		}
		for _, imp := range importsOf(t, filepath.Join(dir, pkg)) {
			importedLayer, ok := layers[imp]
			if !ok || importerLayer >= importedLayer {
				continue
			}
			t.Errorf("layer violation: %s (layer %d) imports %s (layer %d)",
				pkg, importerLayer, imp, importedLayer)
		}
	}
}

// TestNoUnknownPackages forces every new internal package into the layer map.
func TestNoUnknownPackages(t *testing.T) {
	t.Parallel()

	for _, pkg := range internalPackages(t) {
		if _, ok := layers[pkg]; !ok {
			t.Errorf("package %s has no layer assignment; add it to the layers map", pkg)
		}
	}
}

// forbiddenImports lists import path prefixes a package must never use.
// The scheduling core stays a pure computation over board snapshots.
var forbiddenImports = map[string][]string{
	"board":  {"os", "database/sql", "net/", "github.com/gin-gonic/", "github.com/spf13/"},
	"dag":    {"os", "database/sql", "net/", "github.com/"},
	"engine": {"os", "database/sql", "net/", "github.com/gin-gonic/", "github.com/spf13/", "modernc.org/"},
}

func TestPureCore(t *testing.T) {
	t.Parallel()

	dir := internalDirPath(t)
	for pkg, banned := range forbiddenImports {
		for _, path := range importPathsOf(t, filepath.Join(dir, pkg)) {
			for _, prefix := range banned {
				if path == prefix || (strings.HasSuffix(prefix, "/") && strings.HasPrefix(path, prefix)) {
					t.Errorf("%s imports %s", pkg, path)
				}
			}
		}
	}
}
