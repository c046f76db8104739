package tools

import (
	"context"
	"encoding/json"
	"strings"
)

func searchDocs(ctx context.Context, env *Env, input json.RawMessage) Result {
	if env.Docs == nil {
		return errorf("Error: documentation index is not loaded")
	}
	query, ok := stringArg(input, "query", "q")
	if !ok || strings.TrimSpace(query) == "" {
		return errorf("Error: search_docs requires a query")
	}
	passages, err := env.Docs.Search(ctx, query)
	if err != nil {
		return errorf("Error searching docs: %v", err)
	}
	return Result{Output: passages}
}
