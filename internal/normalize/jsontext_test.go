package normalize

import "testing"

func TestParsePossibleJSONPlainObject(t *testing.T) {
	v, ok := ParsePossibleJSON(`{"ticker":"AAPL","price":1.5}`)
	if !ok {
		t.Fatalf("expected ok")
	}
	obj, isObj := v.(map[string]any)
	if !isObj {
		t.Fatalf("expected object, got %T", v)
	}
	if obj["ticker"] != "AAPL" {
		t.Fatalf("unexpected ticker %v", obj["ticker"])
	}
}

func TestParsePossibleJSONFencedBlock(t *testing.T) {
	text := "```json\n{\"ticker\":\"TSLA\"}\n```"
	v, ok := ParsePossibleJSON(text)
	if !ok {
		t.Fatalf("expected ok")
	}
	obj, isObj := v.(map[string]any)
	if !isObj || obj["ticker"] != "TSLA" {
		t.Fatalf("unexpected value %v", v)
	}
}

func TestParsePossibleJSONFencedNoTag(t *testing.T) {
	text := "```\n[1,2]\n```"
	v, ok := ParsePossibleJSON(text)
	if !ok {
		t.Fatalf("expected ok")
	}
	arr, isArr := v.([]any)
	if !isArr || len(arr) != 2 {
		t.Fatalf("unexpected value %v", v)
	}
}

func TestParsePossibleJSONDoubleEncoded(t *testing.T) {
	v, ok := ParsePossibleJSON(`"{\"ticker\":\"IBM\"}"`)
	if !ok {
		t.Fatalf("expected ok")
	}
	obj, isObj := v.(map[string]any)
	if !isObj || obj["ticker"] != "IBM" {
		t.Fatalf("unexpected value %v", v)
	}
}

func TestParsePossibleJSONEmbeddedInProse(t *testing.T) {
	text := `The analysis is ready: {"ticker":"MSFT","price":410.2} as requested.`
	v, ok := ParsePossibleJSON(text)
	if !ok {
		t.Fatalf("expected ok")
	}
	obj, isObj := v.(map[string]any)
	if !isObj || obj["ticker"] != "MSFT" {
		t.Fatalf("unexpected value %v", v)
	}
}

func TestParsePossibleJSONBracesInsideStrings(t *testing.T) {
	text := `result: {"note":"odd } brace { inside","ticker":"NVDA"} end`
	v, ok := ParsePossibleJSON(text)
	if !ok {
		t.Fatalf("expected ok")
	}
	obj, isObj := v.(map[string]any)
	if !isObj || obj["ticker"] != "NVDA" {
		t.Fatalf("unexpected value %v", v)
	}
}

func TestParsePossibleJSONFailures(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"no json here",
		`prefix {"unterminated": "string`,
		`prefix {"unbalanced": [1,2}`,
	}
	for _, c := range cases {
		if _, ok := ParsePossibleJSON(c); ok {
			t.Fatalf("expected failure for %q", c)
		}
	}
}

func TestParsePossibleJSONScalar(t *testing.T) {
	v, ok := ParsePossibleJSON("245.30")
	if !ok {
		t.Fatalf("expected ok")
	}
	f, isNum := v.(float64)
	if !isNum || f != 245.3 {
		t.Fatalf("unexpected value %v", v)
	}
}
