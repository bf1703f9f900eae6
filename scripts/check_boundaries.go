// Command check_boundaries enforces the import direction of the hexagonal
// layers under contexts/. Run it from the repository root.
package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePath = "gatekeeper"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerRule lists the in-module prefixes a layer may import, relative to its
// own context root. Third-party imports are governed by allowThirdParty.
type layerRule struct {
	allowed         []string
	allowThirdParty bool
}

var layerRules = map[string]layerRule{
	"domain":      {allowed: []string{"domain"}},
	"ports":       {allowed: []string{"domain"}},
	"application": {allowed: []string{"application", "domain", "ports"}},
	"adapters":    {allowed: []string{"adapters", "application", "domain", "ports"}, allowThirdParty: true},
	"transport":   {allowed: []string{"transport", "domain"}, allowThirdParty: true},
}

func main() {
	violations := collectViolations("contexts")
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func collectViolations(root string) []violation {
	var violations []violation

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		// <context>/<service>/<layer>/...
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) < 4 {
			return nil
		}
		contextRoot := fmt.Sprintf("%s/contexts/%s/%s", modulePath, parts[0], parts[1])
		violations = append(violations, validateFile(path, filepath.ToSlash(path), parts[2], contextRoot)...)
		return nil
	})

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File != violations[j].File {
			return violations[i].File < violations[j].File
		}
		return violations[i].Line < violations[j].Line
	})
	return violations
}

func validateFile(path string, displayPath string, layer string, contextRoot string) []violation {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: displayPath, Line: 1, Rule: "file must parse"}}
	}

	rule, known := layerRules[layer]
	var violations []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		line := fset.Position(imp.Pos()).Line
		if reason := checkImport(importPath, layer, rule, known, contextRoot); reason != "" {
			violations = append(violations, violation{
				File:   displayPath,
				Line:   line,
				Import: importPath,
				Rule:   reason,
			})
		}
	}
	return violations
}

func checkImport(importPath string, layer string, rule layerRule, known bool, contextRoot string) string {
	if isStdlib(importPath) {
		return ""
	}
	if !hasPrefix(importPath, modulePath) {
		if known && !rule.allowThirdParty {
			return layer + " must stay free of third-party libraries"
		}
		return ""
	}
	if hasPrefix(importPath, modulePath+"/internal") {
		return "contexts must not import runtime infrastructure"
	}
	if hasPrefix(importPath, modulePath+"/contexts") && !hasPrefix(importPath, contextRoot) {
		return "cross-context imports are forbidden"
	}
	if !known {
		return ""
	}
	for _, allowed := range rule.allowed {
		if hasPrefix(importPath, contextRoot+"/"+allowed) {
			return ""
		}
	}
	return layer + " import is outside explicit allowlist"
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isStdlib(importPath string) bool {
	if hasPrefix(importPath, modulePath) {
		return false
	}
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}
