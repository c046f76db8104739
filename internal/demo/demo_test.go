package demo

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ehrlich-b/stepwise/internal/llm"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("AZaz @")
	want := []string{"6541", "905A", "9761", "1227A", "3220", "6440"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
	if got := strings.Join(Tokenize("é"), " "); got != "233E9" {
		t.Errorf("non-ascii token = %q", got)
	}
	if len(Tokenize("")) != 0 {
		t.Error("empty input should give no tokens")
	}
}

func TestConsensusRequestsNChoices(t *testing.T) {
	p := llm.NewScripted()
	p.PushReply(&llm.Reply{Choices: []string{
		"Reasoning Path 1: ...\nBest Answer: Mary. The father is Mary's father.",
		"Best Answer: Nunu.",
		"**Best Answer:** mary",
		"I am not sure.",
		"Best Answer: Mary. All paths agree.",
	}})

	choices, err := Consensus(context.Background(), p, "Who is the fifth son?", 5, 0.7)
	if err != nil {
		t.Fatalf("consensus: %v", err)
	}
	if len(choices) != 5 {
		t.Fatalf("got %d choices", len(choices))
	}
	opts := p.Calls()[0].Options
	if opts.N != 5 || opts.Temperature == nil || *opts.Temperature != 0.7 {
		t.Errorf("options = %+v", opts)
	}

	votes := Tally(choices)
	if len(votes) != 2 {
		t.Fatalf("votes = %+v", votes)
	}
	if votes[0] != (Vote{Answer: "Mary", Count: 3}) || votes[1] != (Vote{Answer: "Nunu", Count: 1}) {
		t.Errorf("votes = %+v", votes)
	}
}

func TestConsensusGatewayError(t *testing.T) {
	p := llm.NewScripted()
	boom := errors.New("boom")
	p.PushError(boom)
	if _, err := Consensus(context.Background(), p, "q", 3, 0.7); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}

func TestClassify(t *testing.T) {
	p := llm.NewScripted("Flu. Fever and chills indicate a viral infection.")
	got, err := Classify(context.Background(), p, "Fever, Chills")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if !strings.HasPrefix(got, "Flu.") {
		t.Errorf("diagnosis = %q", got)
	}
	msgs := p.Calls()[0].Messages
	if len(msgs) != 2 || msgs[1].Content != "Fever, Chills" {
		t.Errorf("messages = %+v", msgs)
	}
}
