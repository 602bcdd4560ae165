package extract

import (
	"strings"
	"testing"
)

func TestExtractEmpty(t *testing.T) {
	res := New(false).ExtractDetailed("")
	if res.Text != "" || res.Mode != ModeEmpty {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestExtractPlainProseIsUnescapedOnly(t *testing.T) {
	cases := []string{
		"Just some analysis text.",
		"Revenue &amp; costs rose &gt; 10%",
		"  leading and trailing space  ",
		"## Heading\n- item",
		"{not json at all",
	}
	for _, in := range cases {
		got := Extract(in)
		want := strings.NewReplacer("&amp;", "&", "&gt;", ">").Replace(in)
		if got != want {
			t.Errorf("Extract(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractHeaderEndToEnd(t *testing.T) {
	got := Extract(`{"component":"header","props":{"title":"Summary"}}`)
	if got != "## Summary" {
		t.Errorf("expected '## Summary', got %q", got)
	}
}

func TestExtractHTMLEscapedEnvelope(t *testing.T) {
	raw := `<content thesys="true">{&quot;component&quot;:&quot;TextContent&quot;,&quot;props&quot;:{&quot;textMarkdown&quot;:&quot;Hello&quot;}}</content>`
	res := New(false).ExtractDetailed(raw)
	if res.Text != "Hello" {
		t.Errorf("expected 'Hello', got %q", res.Text)
	}
	if res.Mode != ModeJSON {
		t.Errorf("expected json mode, got %s", res.Mode)
	}
}

func TestExtractJSONWithTrailingText(t *testing.T) {
	raw := `{"component":"Card","props":{"title":"Open {tickets}","value":8}} and some trailing words`
	res := New(false).ExtractDetailed(raw)
	if res.Mode != ModePrefix {
		t.Fatalf("expected prefix mode, got %s", res.Mode)
	}
	if res.Text != "**Open {tickets}**: 8" {
		t.Errorf("unexpected text %q", res.Text)
	}
}

func TestExtractUnbalancedFallsBackToDecoded(t *testing.T) {
	raw := `{"component":"Card","props":{"title":"x"`
	if got := Extract(raw); got != raw {
		t.Errorf("expected verbatim fallback, got %q", got)
	}
}

func TestExtractLenientRepairsTruncatedJSON(t *testing.T) {
	raw := `{"component":"Card","props":{"title":"Bugs","value":12`
	res := New(true).ExtractDetailed(raw)
	if res.Mode != ModeLenient {
		t.Fatalf("expected lenient mode, got %s (%q)", res.Mode, res.Text)
	}
	if res.Text != "**Bugs**: 12" {
		t.Errorf("unexpected text %q", res.Text)
	}
}

func TestExtractLenientLeavesProseAlone(t *testing.T) {
	raw := "plain words, not JSON"
	if got := New(true).Extract(raw); got != raw {
		t.Errorf("expected prose unchanged, got %q", got)
	}
}

func TestExtractPrimitives(t *testing.T) {
	cases := map[string]string{
		`null`:           "",
		`42`:             "42",
		`12.50`:          "12.50",
		`true`:           "true",
		`"quoted text"`:  "quoted text",
		`[1, null, "a"]`: "1\n\na",
	}
	for in, want := range cases {
		if got := Extract(in); got != want {
			t.Errorf("Extract(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractSequencePreservesOrder(t *testing.T) {
	raw := `[
		{"component":"Header","props":{"title":"A"}},
		{"component":"TextContent","props":{"text":"B"}},
		{"component":"Card","props":{"title":"C"}}
	]`
	got := Extract(raw)
	if got != "## A\n\nB\n\n**C**" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestExtractTotalOnDeepNesting(t *testing.T) {
	raw := strings.Repeat(`{"children":[`, 2000) + `"leaf"` + strings.Repeat(`]}`, 2000)
	if got := Extract(raw); got != "leaf" {
		t.Errorf("expected 'leaf', got %q", got)
	}

	deeper := strings.Repeat("[", 20000) + strings.Repeat("]", 20000)
	_ = Extract(deeper)
}

func TestExtractGenericMappingWrapperKeys(t *testing.T) {
	raw := `{"response":{"content":[{"component":"Header","props":{"title":"Top"}}],"children":"ignored"}}`
	if got := Extract(raw); got != "## Top" {
		t.Errorf("expected first wrapper key only, got %q", got)
	}
}

func TestExtractGenericMappingSkipsPresentationalKeys(t *testing.T) {
	raw := `{"label":"Throughput","value":99,"iconName":"zap","variant":"primary","note":"weekly"}`
	if got := Extract(raw); got != "Throughput\n\nweekly" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestExtractNestedDiscriminant(t *testing.T) {
	raw := `{"component":{"component":"Header","props":{"title":"Inner"}}}`
	if got := Extract(raw); got != "## Inner" {
		t.Errorf("expected nested component, got %q", got)
	}
}

func TestExtractUnknownKindUsesChildren(t *testing.T) {
	raw := `{"component":"Carousel","props":{"children":[
		{"component":"Card","props":{"title":"One"}},
		{"component":"Card","props":{"title":"Two"}}
	]}}`
	if got := Extract(raw); got != "**One**\n**Two**" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestBalancedObjectEnd(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{`{}`, 2},
		{`{"a":{"b":1}} tail`, 13},
		{`{"a":"}"} x`, 9},
		{`{"a":"\"}"}`, 11},
		{`{"a":1`, 0},
	}
	for _, c := range cases {
		if got := balancedObjectEnd(c.in); got != c.want {
			t.Errorf("balancedObjectEnd(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestDecodeKeepsKeyOrder(t *testing.T) {
	v, err := Decode(`{"z":1,"a":2,"m":3,"a":4}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj := v.(*Object)
	if strings.Join(obj.Keys, ",") != "z,a,m" {
		t.Errorf("unexpected key order %v", obj.Keys)
	}
	if s, _ := scalarText(obj.Get("a")); s != "4" {
		t.Errorf("expected last duplicate value to win, got %q", s)
	}
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	if _, err := Decode(`{"a":1} {"b":2}`); err == nil {
		t.Error("expected error for trailing data")
	}
	if _, err := Decode(``); err == nil {
		t.Error("expected error for empty input")
	}
}
