package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ehrlich-b/stepwise/internal/logger"
)

var ErrUnknownTool = errors.New("unknown tool")

// Result is what a tool hands back to the loop. Failures are carried in
// Error and never as Go errors.
type Result struct {
	Output any    `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Failed reports whether the tool produced an error.
func (r Result) Failed() bool {
	return r.Error != ""
}

// Observation is the value fed back to the model: the error text when the
// tool failed, the output otherwise.
func (r Result) Observation() any {
	if r.Failed() {
		return r.Error
	}
	return r.Output
}

func errorf(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// DocSearcher answers search_docs queries.
type DocSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Env carries the collaborators handlers need. Nil clients disable the
// tools that depend on them.
type Env struct {
	Shell          string
	CommandTimeout time.Duration
	WorkDir        string
	GitHub         *GitHubClient
	Weather        *WeatherClient
	Docs           DocSearcher
}

type handlerFunc func(ctx context.Context, env *Env, input json.RawMessage) Result

// handlerFor is the dispatch table. Adding a Kind without a case here is
// caught by TestEveryKindHasHandler.
func handlerFor(k Kind) handlerFunc {
	switch k {
	case ReadFile:
		return readFile
	case WriteFile:
		return writeFile
	case ScanDirectory:
		return scanDirectory
	case AnalyzeCode:
		return analyzeCode
	case CommandExec:
		return commandExec
	case CallGitHubAPI:
		return callGitHubAPI
	case GetWeather:
		return getWeather
	case SearchDocs:
		return searchDocs
	}
	return nil
}

// Registry holds the tools one assistant profile exposes.
type Registry struct {
	env   Env
	kinds []Kind
}

func NewRegistry(env Env, kinds ...Kind) *Registry {
	if env.Shell == "" {
		env.Shell = "sh"
	}
	return &Registry{env: env, kinds: kinds}
}

// Lookup resolves name against the tools enabled in this registry.
func (r *Registry) Lookup(name string) (Kind, error) {
	k, ok := ParseKind(name)
	if ok {
		for _, enabled := range r.kinds {
			if enabled == k {
				return k, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

// Run executes the named tool. It never returns a Go error; unknown names
// and handler failures come back in Result.Error.
func (r *Registry) Run(ctx context.Context, name string, input json.RawMessage) Result {
	k, err := r.Lookup(name)
	if err != nil {
		logger.Warn("Model requested unknown tool", "tool", name)
		return Result{Error: err.Error()}
	}

	start := time.Now()
	res := handlerFor(k)(ctx, &r.env, input)
	logger.Debug("Tool finished",
		"tool", name,
		"duration", time.Since(start),
		"failed", res.Failed())
	return res
}

// Descriptors returns the enabled tools in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.kinds))
	for i, k := range r.kinds {
		out[i] = k.Descriptor()
	}
	return out
}

// Describe renders the enabled tools as a prompt block.
func (r *Registry) Describe() string {
	var b strings.Builder
	for _, d := range r.Descriptors() {
		fmt.Fprintf(&b, "- %s: %s\n", d.Name, d.Description)
	}
	return b.String()
}

func (e *Env) resolve(path string) string {
	if e.WorkDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.WorkDir, path)
}

// stringArg accepts either a bare JSON string or an object holding the
// value under one of keys. Models produce both shapes.
func stringArg(input json.RawMessage, keys ...string) (string, bool) {
	if len(input) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(input, &s); err == nil {
		return s, true
	}
	var obj map[string]any
	if err := json.Unmarshal(input, &obj); err != nil {
		return "", false
	}
	for _, key := range keys {
		if v, ok := obj[key].(string); ok {
			return v, true
		}
	}
	return "", false
}
