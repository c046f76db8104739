// Package demo holds the one-shot prompting demos: self-consistency,
// symptom classification and a character tokenizer.
package demo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ehrlich-b/stepwise/internal/llm"
	"github.com/ehrlich-b/stepwise/internal/session"
)

const consensusPrompt = `You are an intelligent AI assistant that explores multiple reasoning paths before selecting the most reliable answer.
For every question, consider different perspectives or reasoning steps, then choose the most consistent and logical answer.

Follow this format:
Reasoning Path 1: ...
Reasoning Path 2: ...
Reasoning Path 3: ...
Best Answer: <answer>. <one sentence of justification>

Example:
Input: "What is 2 + 2 * 0?"
Reasoning Path 1: 2 + (2 * 0) = 2 + 0 = 2
Reasoning Path 2: (2 + 2) * 0 = 4 * 0 = 0
Reasoning Path 3: 2 + 0 = 2
Best Answer: 2. Multiplication binds tighter than addition, so 2 + (2 * 0) = 2.`

// Consensus samples n independent answers to question.
func Consensus(ctx context.Context, p llm.Provider, question string, n int, temperature float32) ([]string, error) {
	if n <= 0 {
		n = 1
	}
	reply, err := p.Complete(ctx, []session.Message{
		{Role: session.RoleSystem, Content: consensusPrompt},
		{Role: session.RoleUser, Content: question},
	}, llm.Options{N: n, Temperature: llm.Float32(temperature)})
	if err != nil {
		return nil, fmt.Errorf("consensus: %w", err)
	}
	if len(reply.Choices) == 0 {
		return nil, llm.ErrNoChoices
	}
	return reply.Choices, nil
}

// Vote is one distinct best answer and how many samples chose it.
type Vote struct {
	Answer string
	Count  int
}

// Tally groups the "Best Answer:" lines of the samples, most common first.
// Samples without such a line are ignored.
func Tally(choices []string) []Vote {
	counts := map[string]int{}
	display := map[string]string{}
	var order []string
	for _, c := range choices {
		ans, ok := bestAnswer(c)
		if !ok {
			continue
		}
		key := strings.ToLower(ans)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
			display[key] = ans
		}
		counts[key]++
	}
	votes := make([]Vote, len(order))
	for i, k := range order {
		votes[i] = Vote{Answer: display[k], Count: counts[k]}
	}
	sort.SliceStable(votes, func(i, j int) bool { return votes[i].Count > votes[j].Count })
	return votes
}

// bestAnswer returns the short answer of a "Best Answer: X. reason" line.
func bestAnswer(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "*"))
		rest, ok := cutPrefixFold(line, "best answer:")
		if !ok {
			continue
		}
		rest = strings.TrimSpace(strings.TrimLeft(rest, "* "))
		if i := strings.Index(rest, ". "); i >= 0 {
			rest = rest[:i]
		}
		rest = strings.TrimSuffix(rest, ".")
		if rest != "" {
			return rest, true
		}
	}
	return "", false
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return s[len(prefix):], true
}

const classifyPrompt = `You are an AI assistant helping a doctor identify a patient's disease.
You are given the patient's symptoms. Reply with the most likely disease name and a brief reason.
Only answer health questions; refuse anything about maths, programming or other topics.

Example:
Input: "Fever, Chills, Cough, Sore throat, Runny or stuffy nose, Muscle or body aches, Headaches, Fatigue"
Output: "Flu. Fever, chills, cough, sore throat, body aches and fatigue together indicate a viral infection of the respiratory system."

Input: "What is 2+2"
Output: "I only answer questions about symptoms and health."`

// Classify asks for a one-shot diagnosis of symptoms.
func Classify(ctx context.Context, p llm.Provider, symptoms string) (string, error) {
	reply, err := p.Complete(ctx, []session.Message{
		{Role: session.RoleSystem, Content: classifyPrompt},
		{Role: session.RoleUser, Content: symptoms},
	}, llm.Options{})
	if err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}
	if len(reply.Choices) == 0 {
		return "", llm.ErrNoChoices
	}
	return reply.Text(), nil
}

// Tokenize maps every rune to its decimal code point followed by the
// upper-case hex one: 'A' becomes "6541", 'z' becomes "1227A".
func Tokenize(text string) []string {
	tokens := make([]string, 0, len(text))
	for _, r := range text {
		tokens = append(tokens, fmt.Sprintf("%d%X", r, r))
	}
	return tokens
}
