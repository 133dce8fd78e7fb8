package kit

import (
	"context"
	"strings"
	"testing"
)

func TestChain_Order(t *testing.T) {
	var trace []string
	mw := func(name string) Middleware {
		return func(next Endpoint) Endpoint {
			return func(ctx context.Context, req any) (any, error) {
				trace = append(trace, name)
				return next(ctx, req)
			}
		}
	}
	ep := Chain(mw("a"), mw("b"), mw("c"))(func(context.Context, any) (any, error) {
		trace = append(trace, "endpoint")
		return nil, nil
	})
	ep(context.Background(), nil)

	if got := strings.Join(trace, ","); got != "a,b,c,endpoint" {
		t.Errorf("order = %s, want a,b,c,endpoint", got)
	}
}

func TestNamed(t *testing.T) {
	var seen string
	ep := Named("normalize_tag")(func(ctx context.Context, _ any) (any, error) {
		seen = GetEndpoint(ctx)
		return nil, nil
	})
	ep(context.Background(), nil)
	if seen != "normalize_tag" {
		t.Errorf("endpoint = %q, want normalize_tag", seen)
	}
}

func TestContextDefaults(t *testing.T) {
	ctx := context.Background()
	if GetTransport(ctx) != "http" {
		t.Errorf("default transport = %q, want http", GetTransport(ctx))
	}
	if GetRequestID(ctx) != "" {
		t.Error("unexpected request id")
	}
	ctx = WithRequestID(WithTransport(ctx, "mcp_quic"), "abc")
	if GetTransport(ctx) != "mcp_quic" || GetRequestID(ctx) != "abc" {
		t.Errorf("transport=%q id=%q", GetTransport(ctx), GetRequestID(ctx))
	}
}

func TestStringArg(t *testing.T) {
	args := map[string]any{"tag": "React.js", "blank": "  ", "num": 3}
	if v, err := StringArg(args, "tag"); err != nil || v != "React.js" {
		t.Errorf("StringArg(tag) = %q, %v", v, err)
	}
	for _, name := range []string{"blank", "num", "absent"} {
		if _, err := StringArg(args, name); err == nil {
			t.Errorf("StringArg(%s) succeeded", name)
		}
	}
}

func TestStringsArg(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want string
	}{
		{"comma string", " go, rust ,,vue", "go|rust|vue"},
		{"json array", []any{"go", 1, " rust "}, "go|rust"},
		{"string slice", []string{"a", ""}, "a"},
		{"absent", nil, ""},
	}
	for _, tt := range tests {
		got := StringsArg(map[string]any{"tags": tt.val}, "tags")
		if strings.Join(got, "|") != tt.want {
			t.Errorf("%s: StringsArg = %v, want %s", tt.name, got, tt.want)
		}
	}
}
