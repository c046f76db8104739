package step

import (
	"errors"
	"testing"
)

func TestParseAction(t *testing.T) {
	r, err := Parse(`{"step":"action","function":"scan_directory","input":"."}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.Step != Action {
		t.Errorf("step = %q, want action", r.Step)
	}
	if r.Function != "scan_directory" {
		t.Errorf("function = %q", r.Function)
	}
	if r.InputString() != "." {
		t.Errorf("input = %q", r.InputString())
	}
}

func TestParseFencedWithProse(t *testing.T) {
	reply := "Sure, here you go:\n```json\n{\"step\": \"PLAN\", \"content\": \"look around {first}\"}\n```\n"
	r, err := Parse(reply)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.Step != Plan {
		t.Errorf("step = %q, want plan", r.Step)
	}
	if r.ContentString() != "look around {first}" {
		t.Errorf("content = %q", r.ContentString())
	}
}

func TestParseSkipsInvalidBraces(t *testing.T) {
	r, err := Parse(`{not json} then {"step":"output","content":"done"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.Step != Output || r.ContentString() != "done" {
		t.Errorf("got %+v", r)
	}
}

func TestParseObjectContent(t *testing.T) {
	r, err := Parse(`{"step":"observe","content":{"files":["a","b"]}}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.ContentString() != `{"files":["a","b"]}` {
		t.Errorf("content = %q", r.ContentString())
	}
}

func TestParseNullInput(t *testing.T) {
	r, err := Parse(`{"step":"plan","content":"x","input":null}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.Input != nil {
		t.Errorf("input = %s, want nil", r.Input)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse("no json here"); !errors.Is(err, ErrNoJSON) {
		t.Errorf("plain text err = %v, want ErrNoJSON", err)
	}
	if _, err := Parse(`{"step":"dance"}`); !errors.Is(err, ErrUnknownStep) {
		t.Errorf("unknown step err = %v", err)
	}
	if _, err := Parse(`{"content":"no step"}`); !errors.Is(err, ErrUnknownStep) {
		t.Errorf("missing step err = %v", err)
	}
	if _, err := Parse(`{"step":"plan"`); !errors.Is(err, ErrNoJSON) {
		t.Errorf("unterminated err = %v", err)
	}
}

func TestObservationRoundTrip(t *testing.T) {
	obs, err := Observation([]string{"readme.txt"})
	if err != nil {
		t.Fatalf("observation: %v", err)
	}
	if obs.Step != Observe {
		t.Errorf("step = %q", obs.Step)
	}
	want := `{"step":"observe","content":["readme.txt"]}`
	if obs.JSON() != want {
		t.Errorf("json = %s, want %s", obs.JSON(), want)
	}
	back, err := Parse(obs.JSON())
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if back.ContentString() != `["readme.txt"]` {
		t.Errorf("content = %q", back.ContentString())
	}
}

func TestKinds(t *testing.T) {
	for _, name := range []string{"plan", "action", "observe", "output", "analyze", "retrieve", "synthesize"} {
		k, ok := ParseKind(name)
		if !ok || string(k) != name {
			t.Errorf("ParseKind(%q) = %q, %v", name, k, ok)
		}
	}
	if _, ok := ParseKind("think"); ok {
		t.Error("think should not parse")
	}
	if !Output.Terminal() || Plan.Terminal() || Action.Terminal() {
		t.Error("only output is terminal")
	}
}
