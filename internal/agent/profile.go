package agent

import (
	"fmt"
	"strings"

	"github.com/ehrlich-b/stepwise/internal/step"
	"github.com/ehrlich-b/stepwise/internal/tools"
)

// Profile is one assistant: its role, the steps it may emit and the tools
// it may call.
type Profile struct {
	Name     string
	Role     string
	Steps    []step.Kind
	Tools    []tools.Kind
	Examples []string
}

var defaultSteps = []step.Kind{step.Plan, step.Action, step.Observe, step.Output}

var Coder = Profile{
	Name: "code",
	Role: "You are a terminal coding assistant working inside the user's project directory. " +
		"You read, write and analyze files and run shell commands to complete coding tasks.",
	Steps:    defaultSteps,
	Tools:    []tools.Kind{tools.ReadFile, tools.WriteFile, tools.ScanDirectory, tools.AnalyzeCode, tools.CommandExec},
	Examples: []string{
		`User: list files here`,
		`{"step": "plan", "content": "The user wants the entries of the current directory."}`,
		`{"step": "action", "function": "scan_directory", "input": "."}`,
		`{"step": "observe", "content": ["readme.txt"]}`,
		`{"step": "output", "content": "The directory contains readme.txt."}`,
		`User: create math.js with an add function`,
		`{"step": "action", "function": "write_file", "input": {"path": "math.js", "content": "function add(a, b) { return a + b }"}}`,
	},
}

var GitHub = Profile{
	Name: "github",
	Role: "You are a GitHub pull request assistant. You inspect repositories, pull requests, " +
		"diffs and issues through the GitHub REST API and review them for the user.",
	Steps:    defaultSteps,
	Tools:    []tools.Kind{tools.CallGitHubAPI},
	Examples: []string{
		`User: what is open on my repo?`,
		`{"step": "plan", "content": "List the open pull requests of the repository."}`,
		`{"step": "action", "function": "call_github_api", "input": {"method": "GET", "endpoint": "/repos/{owner}/{repo}/pulls?state=open"}}`,
	},
}

var Weather = Profile{
	Name:     "weather",
	Role:     "You are a helpful assistant specialized in answering weather questions.",
	Steps:    defaultSteps,
	Tools:    []tools.Kind{tools.GetWeather},
	Examples: []string{
		`User: what is the weather in New York?`,
		`{"step": "plan", "content": "The user wants the current weather of New York."}`,
		`{"step": "action", "function": "get_weather_data", "input": "New York"}`,
		`{"step": "observe", "content": "The weather in New York is Sunny +12°C."}`,
		`{"step": "output", "content": "It is sunny in New York, 12°C."}`,
	},
}

var Docs = Profile{
	Name: "docs",
	Role: "You are a documentation assistant. Answer only from the documentation context you are " +
		"given or retrieve with search_docs, and cite the source links that appear in the context.",
	Steps:    []step.Kind{step.Plan, step.Analyze, step.Retrieve, step.Action, step.Observe, step.Synthesize, step.Output},
	Tools:    []tools.Kind{tools.SearchDocs},
	Examples: []string{
		`User: how do I insert rows?`,
		`{"step": "analyze", "content": "The user asks about inserting rows."}`,
		`{"step": "retrieve", "content": "The context covers the insert command."}`,
		`{"step": "synthesize", "content": "Combine the syntax and the example."}`,
		`{"step": "output", "content": "Use INSERT INTO ... See [Insert](https://example.com/insert)."}`,
	},
}

var profiles = []Profile{Coder, GitHub, Weather, Docs}

// ProfileByName looks up a built-in profile.
func ProfileByName(name string) (Profile, bool) {
	for _, p := range profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// SystemPrompt renders the instructions for p. extra is appended as-is.
func (p Profile) SystemPrompt(reg *tools.Registry, extra string) string {
	steps := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		steps[i] = string(s)
	}

	var b strings.Builder
	b.WriteString(p.Role)
	b.WriteString("\n\nYou work one step at a time. Each reply is exactly one JSON object and nothing else:\n")
	b.WriteString(`{"step": "string", "content": "string", "function": "tool name, only when step is action", "input": "tool input, only when step is action"}`)
	fmt.Fprintf(&b, "\n\nAllowed steps: %s.\n", strings.Join(steps, ", "))
	b.WriteString(`Rules:
- Emit one step per reply and wait for the next message.
- After an action, wait for the observe step that carries the tool result.
- Finish every request with exactly one output step.
`)
	if reg != nil && len(reg.Descriptors()) > 0 {
		b.WriteString("\nAvailable tools:\n")
		b.WriteString(reg.Describe())
	}
	if len(p.Examples) > 0 {
		b.WriteString("\nExample:\n")
		b.WriteString(strings.Join(p.Examples, "\n"))
		b.WriteString("\n")
	}
	if extra != "" {
		b.WriteString("\n")
		b.WriteString(extra)
		b.WriteString("\n")
	}
	return b.String()
}

// NewRegistry builds the registry holding exactly the profile's tools.
func (p Profile) NewRegistry(env tools.Env) *tools.Registry {
	return tools.NewRegistry(env, p.Tools...)
}
