package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

var languages = map[string]string{
	".go":   "Go",
	".py":   "Python",
	".js":   "JavaScript",
	".jsx":  "JavaScript",
	".ts":   "TypeScript",
	".tsx":  "TypeScript",
	".java": "Java",
	".c":    "C",
	".h":    "C",
	".cpp":  "C++",
	".rs":   "Rust",
	".rb":   "Ruby",
	".sh":   "Shell",
	".html": "HTML",
	".css":  "CSS",
	".json": "JSON",
	".yaml": "YAML",
	".yml":  "YAML",
	".md":   "Markdown",
	".sql":  "SQL",
}

func languageOf(path string) string {
	if lang, ok := languages[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return "plain text"
}

func analyzeCode(_ context.Context, env *Env, input json.RawMessage) Result {
	path, ok := stringArg(input, "path", "file_path")
	if !ok || path == "" {
		return errorf("Error: analyze_code requires a file path")
	}

	data, err := os.ReadFile(env.resolve(path))
	if errors.Is(err, fs.ErrNotExist) {
		return errorf("File not found: %s", path)
	}
	if err != nil {
		return errorf("Error analyzing code: %v", err)
	}

	lines, blank := countLines(data)
	lang := languageOf(path)
	summary := fmt.Sprintf("Analyzed code in %s: %s, %s, %d lines (%d non-blank)",
		path, lang, humanize.Bytes(uint64(len(data))), lines, lines-blank)

	if lang == "Go" {
		summary += goSummary(path, data)
	}
	return Result{Output: summary + "."}
}

func countLines(data []byte) (lines, blank int) {
	if len(data) == 0 {
		return 0, 0
	}
	for _, line := range bytes.Split(bytes.TrimSuffix(data, []byte("\n")), []byte("\n")) {
		lines++
		if len(bytes.TrimSpace(line)) == 0 {
			blank++
		}
	}
	return lines, blank
}

func goSummary(path string, src []byte) string {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, src, parser.SkipObjectResolution)
	if err != nil {
		return "; does not parse: " + err.Error()
	}

	var funcs, types []string
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			funcs = append(funcs, d.Name.Name)
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				types = append(types, spec.(*ast.TypeSpec).Name.Name)
			}
		}
	}

	s := fmt.Sprintf("; package %s, %d imports, %d funcs, %d types",
		f.Name.Name, len(f.Imports), len(funcs), len(types))
	if len(funcs) > 0 {
		s += " (funcs: " + strings.Join(funcs, ", ") + ")"
	}
	return s
}
