package tools

import "fmt"

// Kind identifies one local tool. The set is closed: the model can only
// reach handlers listed here.
type Kind int

const (
	ReadFile Kind = iota
	WriteFile
	ScanDirectory
	AnalyzeCode
	CommandExec
	CallGitHubAPI
	GetWeather
	SearchDocs
)

// Kinds lists every tool kind in declaration order.
var Kinds = []Kind{ReadFile, WriteFile, ScanDirectory, AnalyzeCode, CommandExec, CallGitHubAPI, GetWeather, SearchDocs}

// Descriptor is the prompt-facing description of a tool.
type Descriptor struct {
	Kind        Kind
	Name        string
	Description string
}

var descriptors = map[Kind]Descriptor{
	ReadFile: {
		Kind:        ReadFile,
		Name:        "read_file",
		Description: "Takes a file path as input and returns the file's text content.",
	},
	WriteFile: {
		Kind:        WriteFile,
		Name:        "write_file",
		Description: `Takes {"path": "...", "content": "..."} and writes content to path, creating parent directories.`,
	},
	ScanDirectory: {
		Kind:        ScanDirectory,
		Name:        "scan_directory",
		Description: "Takes a directory path as input and returns the names of its entries.",
	},
	AnalyzeCode: {
		Kind:        AnalyzeCode,
		Name:        "analyze_code",
		Description: "Takes a source file path and returns a short summary: language, size, line counts and declarations.",
	},
	CommandExec: {
		Kind:        CommandExec,
		Name:        "command_exec",
		Description: "Takes a shell command as input, runs it and returns the combined output and exit code.",
	},
	CallGitHubAPI: {
		Kind:        CallGitHubAPI,
		Name:        "call_github_api",
		Description: `Takes {"method": "GET", "endpoint": "/repos/{owner}/{repo}/pulls", "data": {...}} and calls the GitHub REST API.`,
	},
	GetWeather: {
		Kind:        GetWeather,
		Name:        "get_weather_data",
		Description: "Takes a city name as input and returns the current weather of the city.",
	},
	SearchDocs: {
		Kind:        SearchDocs,
		Name:        "search_docs",
		Description: "Takes a search query and returns the most relevant documentation passages.",
	},
}

func (k Kind) String() string {
	if d, ok := descriptors[k]; ok {
		return d.Name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Descriptor returns the prompt description of k.
func (k Kind) Descriptor() Descriptor {
	return descriptors[k]
}

// ParseKind resolves a tool name as the model writes it.
func ParseKind(name string) (Kind, bool) {
	for _, k := range Kinds {
		if descriptors[k].Name == name {
			return k, true
		}
	}
	return 0, false
}
