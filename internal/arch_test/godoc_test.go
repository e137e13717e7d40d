package arch_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"
)

// docExemptions lists exported symbols that intentionally lack GoDoc comments.
// Each key is a package name under internal/, each value is a list of symbol
// names that are exempt from the GoDoc requirement.
var docExemptions = map[string][]string{
	// Typed enum constants whose parent type is documented; values are
	// self-documenting by name.
	"board": {
		"PriorityMedium", "PriorityLow", "PriorityHigh",
		"ValCatMissingField", "ValCatDuplicateID", "ValCatClosingColumns", "ValCatOutOfRange",
	},
	"engine": {
		"StatusNotStarted", "StatusOnTime", "StatusWarning", "StatusOverdue", "StatusCompleted",
	},
	// Leveled one-line message helpers on Printer.
	"ui": {"Error", "Info", "Success", "Warn"},
}

// undocumented is one exported declaration missing its GoDoc.
type undocumented struct {
	kind string
	name string
	line int
}

// TestExportedSymbolsHaveGoDoc verifies that every exported declaration in
// internal packages has a GoDoc comment starting with the symbol name.
func TestExportedSymbolsHaveGoDoc(t *testing.T) {
	t.Parallel()

	for _, pkg := range internalPackages(t) {
		t.Run(pkg, func(t *testing.T) {
			t.Parallel()

			exempt := make(map[string]bool)
			for _, sym := range docExemptions[pkg] {
				exempt[sym] = true
			}
			for _, file := range goFilesIn(t, filepath.Join(internalDirPath(t), pkg)) {
				for _, u := range missingDocs(t, file) {
					if exempt[u.name] {
						continue
					}
					t.Errorf("internal/%s/%s:%d: exported %s %s has no GoDoc comment",
						pkg, filepath.Base(file), u.line, u.kind, u.name)
				}
			}
		})
	}
}

// missingDocs parses filePath and returns its exported declarations whose
// doc comment is absent or does not start with the symbol name. Members of
// a grouped const or var block may rely on the block's doc or an inline
// comment instead.
func missingDocs(t *testing.T, filePath string) []undocumented {
	t.Helper()

	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, filePath, nil, parser.ParseComments)
	if err != nil {
		t.Fatalf("parsing %s: %v", filePath, err)
	}

	var out []undocumented
	report := func(kind string, name *ast.Ident) {
		out = append(out, undocumented{kind: kind, name: name.Name, line: fset.Position(name.Pos()).Line})
	}

	for _, decl := range node.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if !d.Name.IsExported() || (d.Recv != nil && !isExportedReceiver(d.Recv)) {
				continue
			}
			if !startsWithName(docText(d.Doc), d.Name.Name) {
				kind := "func"
				if d.Recv != nil {
					kind = "method"
				}
				report(kind, d.Name)
			}

		case *ast.GenDecl:
			grouped := len(d.Specs) > 1
			blockDoc := strings.TrimSpace(docText(d.Doc)) != ""
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					if s.Name.IsExported() && !startsWithName(docText(s.Doc, d.Doc), s.Name.Name) {
						report("type", s.Name)
					}
				case *ast.ValueSpec:
					inline := s.Comment != nil && strings.TrimSpace(s.Comment.Text()) != ""
					for _, name := range s.Names {
						if !name.IsExported() {
							continue
						}
						if grouped && (blockDoc || inline || startsWithName(docText(s.Doc), name.Name)) {
							continue
						}
						if !grouped && startsWithName(docText(s.Doc, d.Doc), name.Name) {
							continue
						}
						report(strings.ToLower(d.Tok.String()), name)
					}
				}
			}
		}
	}
	return out
}

func startsWithName(doc, name string) bool {
	return strings.HasPrefix(strings.TrimSpace(doc), name)
}

// isExportedReceiver reports whether the method's receiver type is exported.
func isExportedReceiver(recv *ast.FieldList) bool {
	if recv == nil || len(recv.List) == 0 {
		return false
	}
	expr := recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	switch x := expr.(type) {
	case *ast.IndexExpr:
		expr = x.X
	case *ast.IndexListExpr:
		expr = x.X
	}
	ident, ok := expr.(*ast.Ident)
	return ok && ident.IsExported()
}
