package normalize

import "testing"

func analysisObject() map[string]any {
	return map[string]any{
		"ticker":        "AAPL",
		"current_price": 187.5,
		"sentiment":     "Bullish",
	}
}

func TestUnwrapPayloadAlreadyAnalysis(t *testing.T) {
	in := analysisObject()
	out := UnwrapPayload(in)
	obj, ok := out.(map[string]any)
	if !ok || obj["ticker"] != "AAPL" {
		t.Fatalf("unexpected result %v", out)
	}
}

func TestUnwrapPayloadNestedEnvelopes(t *testing.T) {
	// N envelopes with metadata siblings must unwrap for every N up to the cap.
	for n := 1; n <= 8; n++ {
		var v any = analysisObject()
		for i := 0; i < n; i++ {
			v = map[string]any{"data": v, "status": float64(200)}
		}
		out := UnwrapPayload(v)
		obj, ok := out.(map[string]any)
		if !ok || obj["ticker"] != "AAPL" {
			t.Fatalf("depth %d: unexpected result %v", n, out)
		}
	}
}

func TestUnwrapPayloadDepthCapTerminates(t *testing.T) {
	var v any = analysisObject()
	for i := 0; i < 20; i++ {
		v = map[string]any{"data": v}
	}
	out := UnwrapPayload(v)
	if out == nil {
		t.Fatalf("expected a value back")
	}
	// Past the cap the value comes back partially unwrapped, still an object.
	if _, ok := out.(map[string]any); !ok {
		t.Fatalf("unexpected type %T", out)
	}
}

func TestUnwrapPayloadArrayPicksFirstObject(t *testing.T) {
	in := []any{"noise", analysisObject(), map[string]any{"other": true}}
	out := UnwrapPayload(in)
	obj, ok := out.(map[string]any)
	if !ok || obj["ticker"] != "AAPL" {
		t.Fatalf("unexpected result %v", out)
	}
}

func TestUnwrapPayloadEmptyArrayUnchanged(t *testing.T) {
	in := []any{}
	out := UnwrapPayload(in)
	arr, ok := out.([]any)
	if !ok || len(arr) != 0 {
		t.Fatalf("unexpected result %v", out)
	}
}

func TestUnwrapPayloadStringReparse(t *testing.T) {
	in := map[string]any{"data": `{"ticker":"IBM","summary":"weak quarter"}`}
	out := UnwrapPayload(in)
	obj, ok := out.(map[string]any)
	if !ok || obj["ticker"] != "IBM" {
		t.Fatalf("unexpected result %v", out)
	}
}

func TestUnwrapPayloadItemsKey(t *testing.T) {
	in := map[string]any{
		"items": []any{analysisObject()},
		"meta":  map[string]any{"count": float64(1)},
	}
	out := UnwrapPayload(in)
	obj, ok := out.(map[string]any)
	if !ok || obj["ticker"] != "AAPL" {
		t.Fatalf("unexpected result %v", out)
	}
}

func TestUnwrapPayloadKeepsNonMetadataSiblings(t *testing.T) {
	// "extra" is not metadata and the wrapper value is not analysis-shaped, so
	// the envelope must come back unchanged.
	in := map[string]any{
		"data":  map[string]any{"whatever": true},
		"extra": "keep me",
	}
	out := UnwrapPayload(in)
	obj, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("unexpected type %T", out)
	}
	if _, present := obj["extra"]; !present {
		t.Fatalf("sibling was discarded: %v", out)
	}
}

func TestResolvePathDotted(t *testing.T) {
	m := map[string]any{
		"stock": map[string]any{"ticker": "GOOG"},
	}
	v, ok := resolvePath(m, "stock.ticker")
	if !ok || v != "GOOG" {
		t.Fatalf("unexpected %v %v", v, ok)
	}
	if _, ok := resolvePath(m, "stock.ticker.deep"); ok {
		t.Fatalf("expected failure through non-object")
	}
	if _, ok := resolvePath(m, "missing.path"); ok {
		t.Fatalf("expected failure for missing path")
	}
}
