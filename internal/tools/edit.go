package tools

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

func readFile(_ context.Context, env *Env, input json.RawMessage) Result {
	path, ok := stringArg(input, "path", "file_path")
	if !ok || path == "" {
		return errorf("Error: read_file requires a file path")
	}

	data, err := os.ReadFile(env.resolve(path))
	if errors.Is(err, fs.ErrNotExist) {
		return errorf("File not found: %s", path)
	}
	if err != nil {
		return errorf("Error reading file: %v", err)
	}
	if utf8.Valid(data) {
		return Result{Output: string(data)}
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return errorf("Error reading file with fallback encoding: %v", err)
	}
	return Result{Output: string(decoded)}
}

type writeFileInput struct {
	Path    string  `json:"path"`
	Content *string `json:"content"`
}

func writeFile(_ context.Context, env *Env, input json.RawMessage) Result {
	var in writeFileInput
	if err := json.Unmarshal(input, &in); err != nil {
		return errorf("Error: write_file requires {\"path\": \"...\", \"content\": \"...\"}")
	}
	if in.Path == "" {
		return errorf("Error: Missing 'path' parameter for file creation")
	}
	if in.Content == nil {
		return errorf("Error: Missing 'content' parameter for file creation")
	}

	target := env.resolve(in.Path)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errorf("Error writing file: %v", err)
	}
	if err := os.WriteFile(target, []byte(*in.Content), 0o644); err != nil {
		return errorf("Error writing file: %v", err)
	}
	return Result{Output: "File " + in.Path + " written successfully."}
}

func scanDirectory(_ context.Context, env *Env, input json.RawMessage) Result {
	dir, _ := stringArg(input, "path", "directory", "dir")
	if dir == "" {
		dir = "."
	}

	entries, err := os.ReadDir(env.resolve(dir))
	if err != nil {
		return errorf("Error scanning directory: %v", err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return Result{Output: names}
}
