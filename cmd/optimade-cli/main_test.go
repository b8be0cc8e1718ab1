package main

import (
	"strings"
	"testing"

	"github.com/matgraph/optimade-client/pkg/controller"
	"github.com/matgraph/optimade-client/pkg/response"
	"github.com/matgraph/optimade-client/pkg/structure"
)

func TestCommandRegistration(t *testing.T) {
	want := map[string]bool{"search": false, "providers": false, "version": false}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func successPage(t *testing.T, formulas map[string]string) controller.Result {
	t.Helper()
	var structures []*structure.Structure
	for id, formula := range formulas {
		s, err := structure.New(response.Record{
			ID:         id,
			Attributes: map[string]any{"chemical_formula_descriptive": formula},
		})
		if err != nil {
			t.Fatalf("structure.New() error = %v", err)
		}
		structures = append(structures, s)
	}
	return controller.Result{
		Outcome:    response.Outcome{Kind: response.KindSuccess},
		Structures: structures,
	}
}

func TestPrintResults_Text(t *testing.T) {
	page := successPage(t, map[string]string{"1": "SiO2"})
	total := 1

	var buf strings.Builder
	if err := printResults(&buf, []controller.Result{page}, &total, false); err != nil {
		t.Fatalf("printResults() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "SiO2 (id=1)") {
		t.Errorf("output missing label: %q", out)
	}
	if !strings.Contains(out, "1 of 1 results") {
		t.Errorf("output missing summary: %q", out)
	}
}

func TestPrintResults_JSON(t *testing.T) {
	page := successPage(t, map[string]string{"42": "NaCl"})

	var buf strings.Builder
	if err := printResults(&buf, []controller.Result{page}, nil, true); err != nil {
		t.Fatalf("printResults() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"id": "42"`, `"formula": "NaCl"`, `"label": "NaCl (id=42)"`} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON output missing %s: %q", want, out)
		}
	}
}

func TestPrintResults_ErrorOutcome(t *testing.T) {
	page := controller.Result{Outcome: response.Outcome{
		Kind:     response.KindAPIError,
		Messages: []string{"Bad Request (status 400): unclosed parenthesis"},
	}}

	var buf strings.Builder
	err := printResults(&buf, []controller.Result{page}, nil, false)
	if err == nil {
		t.Fatal("printResults() error = nil, want failure")
	}
	if !strings.Contains(err.Error(), "unclosed parenthesis") {
		t.Errorf("error = %v, want provider detail included", err)
	}
}

func TestOutcomeMessage(t *testing.T) {
	tests := []struct {
		name    string
		outcome response.Outcome
		want    string
	}{
		{
			"messages joined",
			response.Outcome{Messages: []string{"first", "second"}},
			"first; second",
		},
		{
			"decode failure message",
			response.Outcome{Messages: []string{"Unable to decode response"}},
			"Unable to decode response",
		},
		{
			"transport message",
			response.Outcome{Message: "connection refused"},
			"connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outcomeMessage(tt.outcome); got != tt.want {
				t.Errorf("outcomeMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
