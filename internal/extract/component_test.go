package extract

import "testing"

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"Header":        KindHeader,
		"InlineHeader":  KindHeader,
		"TEXTCONTENT":   KindText,
		"DataTile":      KindDataTile,
		"MiniCard":      KindDataTile,
		"BarChartV2":    KindChart,
		"linechart":     KindChart,
		"SectionBlock":  KindSectionBlock,
		"MiniCardBlock": KindMiniCardBlock,
		"Carousel":      KindUnknown,
		"":              KindUnknown,
	}
	for name, want := range cases {
		if got := ParseKind(name); got != want {
			t.Errorf("ParseKind(%q) = %s, want %s", name, got, want)
		}
	}
}

func TestComponentReducers(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "header with subtitle",
			raw:  `{"component":"InlineHeader","props":{"heading":"Overview","description":"Q3 data"}}`,
			want: "## Overview\nQ3 data",
		},
		{
			name: "text prefers markdown",
			raw:  `{"component":"TextContent","props":{"text":"plain","textMarkdown":"**rich**"}}`,
			want: "**rich**",
		},
		{
			name: "data tile with lhs",
			raw:  `{"component":"DataTile","props":{"amount":"42","description":"Open issues","lhs":{"component":"TextContent","props":{"text":"up 5%"}}}}`,
			want: "**Open issues**: 42\nup 5%",
		},
		{
			name: "data tile missing amount",
			raw:  `{"component":"MiniCard","props":{"description":"Open issues"}}`,
			want: "",
		},
		{
			name: "card title only",
			raw:  `{"component":"Card","props":{"title":"Healthy"}}`,
			want: "**Healthy**",
		},
		{
			name: "list items",
			raw: `{"component":"List","props":{"heading":"Findings","description":"Top three","items":[
				{"title":"Bug","value":12},
				{"title":"Risk","subtitle":"Late delivery"},
				{"title":"Note"},
				"plain item",
				{"subtitle":"no title"}
			]}}`,
			want: "### Findings\nTop three\n- Bug: 12\n- **Risk**: Late delivery\n- Note\n- plain item",
		},
		{
			name: "table",
			raw: `{"component":"Table","props":{
				"tableHeader":{"rows":[{"children":"Type"},"Count"]},
				"tableBody":{"rows":[{"children":["Bug",12]},["Task",{"children":5}]]}}}`,
			want: "| Type | Count |\n| --- | --- |\n| Bug | 12 |\n| Task | 5 |",
		},
		{
			name: "chart with series",
			raw: `{"component":"BarChartV2","props":{"title":"By type","chartData":{"data":{
				"labels":["Bug","Task"],
				"series":[{"category":"2024","values":[12,5]},{"category":"2023","values":[1,1]}]}}}}`,
			want: "### By type\n- Bug: 12\n- Task: 5",
		},
		{
			name: "chart with flat values",
			raw:  `{"component":"LineChart","props":{"chartData":{"data":{"labels":["Jan","Feb","Mar"],"data":[1,2]}}}}`,
			want: "- Jan: 1\n- Feb: 2",
		},
		{
			name: "pie chart records",
			raw: `{"component":"PieChartV2","props":{"heading":"Status","chartData":{"data":[
				{"category":"Open","value":8},
				{"category":"Closed","value":0},
				{"category":"Ignored","value":null},
				{"value":3}
			]}}}`,
			want: "### Status\n- Open: 8\n- Closed: 0",
		},
		{
			name: "section block",
			raw: `{"component":"SectionBlock","props":{"sections":[
				{"trigger":"Details","content":[{"component":"TextContent","props":{"text":"inside"}}]},
				{"trigger":"More","content":[]}
			]}}`,
			want: "### Details\ninside\n### More",
		},
		{
			name: "layout slot order",
			raw: `{"component":"Layout","props":{"children":{"rows":[
				{"mediumRight":{"component":"Card","props":{"title":"D"}},
				 "headerLeft":{"component":"Card","props":{"title":"A"}},
				 "mediumLeft":[{"component":"Card","props":{"title":"C"}}],
				 "headerRight":{"component":"Card","props":{"title":"B"}}}
			]}}}`,
			want: "**A**\n**B**\n**C**\n**D**",
		},
		{
			name: "mini card block does not duplicate children",
			raw: `{"component":"MiniCardBlock","props":{"children":[
				{"component":"MiniCard","props":{"amount":"3","description":"Blocked"}},
				{"component":"MiniCard","props":{"amount":"9","description":"Done"}}
			]}}`,
			want: "**Blocked**: 3\n**Done**: 9",
		},
		{
			name: "children appended after own output",
			raw: `{"component":"Header","props":{"title":"Top","content":[
				{"component":"TextContent","props":{"text":"child"}}
			]}}`,
			want: "## Top\nchild",
		},
		{
			name: "props not an object",
			raw:  `{"component":"Header","props":"oops"}`,
			want: "",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, err := Decode(c.raw)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got := Reduce(v); got != c.want {
				t.Errorf("got %q, want %q", got, c.want)
			}
		})
	}
}
