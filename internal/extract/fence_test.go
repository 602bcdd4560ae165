package extract

import "testing"

func TestStripFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`, true},
		{"plain fence", "```\n[1]\n```", "[1]", true},
		{"no fence", `{"a": 1}`, `{"a": 1}`, false},
		{"unclosed", "```json\n{\"a\": 1}", "```json\n{\"a\": 1}", false},
		{"prose after", "```\n{}\n```\nmore text", "```\n{}\n```\nmore text", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := stripFence(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("stripFence(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestExtractFencedComponentTree(t *testing.T) {
	raw := "```json\n{\"component\":\"header\",\"props\":{\"title\":\"Summary\"}}\n```"
	res := Extract(raw)
	if res != "## Summary" {
		t.Errorf("expected fenced tree to be reduced, got %q", res)
	}
}

func TestExtractFencedProseUnchanged(t *testing.T) {
	raw := "```\nnot json at all\n```"
	if got := Extract(raw); got != raw {
		t.Errorf("expected fenced prose verbatim, got %q", got)
	}
}
