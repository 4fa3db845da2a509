// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/invowk/cmdkit/pkg/schema"
)

var flagsSchema = schema.MustCompile(`{
	config?: {...}
	tags?:   [...string]
	name?:   string
	raw?:    {...} @cli(fileCheck=false)
	path?:   string @cli(fileCheck=true)
}`)

func field(t *testing.T, name string) schema.Schema {
	t.Helper()
	f, ok := schema.Lookup(flagsSchema, name)
	if !ok {
		t.Fatalf("no field %q", name)
	}
	return f.Schema
}

func newFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for p, content := range files {
		if err := afero.WriteFile(fs, p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

func TestLooksLikeFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"./cfg.json", true},
		{"../cfg", true},
		{"/etc/cfg", true},
		{`C:\cfg.json`, true},
		{"c:/cfg", true},
		{"data.yaml", true},
		{"data.YML", true},
		{"data.json", true},
		{"data.txt", false},
		{"hello", false},
		{"C:", false},
		{`{"a":1}`, false},
	}
	for _, tt := range tests {
		if got := LooksLikeFile(tt.in); got != tt.want {
			t.Errorf("LooksLikeFile(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	fs := newFs(t, map[string]string{
		"/work/cfg.json":    `{"region": "eu", "replicas": 3}`,
		"/work/cfg.yaml":    `{"region": "us"}`,
		"/work/native.yaml": "region: us\nreplicas: 2\n",
		"/work/broken.yaml": "region: [unclosed\n",
		"/work/bad.json":    `{"region": `,
		"/work/list.json":   `["a", "b"]`,
	})
	r := New(fs)
	ctx := context.Background()

	tests := []struct {
		name         string
		raw          any
		field        string
		wantValue    any
		wantSuccess  bool
		wantFromFile bool
		wantErr      error
	}{
		{
			name: "json file", raw: "/work/cfg.json", field: "config",
			wantValue: map[string]any{"region": "eu", "replicas": float64(3)}, wantSuccess: true, wantFromFile: true,
		},
		{
			name: "json-compatible yaml file", raw: "/work/cfg.yaml", field: "config",
			wantValue: map[string]any{"region": "us"}, wantSuccess: true, wantFromFile: true,
		},
		{
			name: "native yaml is rejected", raw: "/work/native.yaml", field: "config",
			wantValue: "/work/native.yaml", wantErr: ErrYAMLNotSupported,
		},
		{
			name: "invalid yaml is rejected", raw: "/work/broken.yaml", field: "config",
			wantValue: "/work/broken.yaml", wantErr: ErrYAMLNotSupported,
		},
		{
			name: "inline json object", raw: ` {"region": "ap"} `, field: "config",
			wantValue: map[string]any{"region": "ap"}, wantSuccess: true,
		},
		{
			name: "inline json array", raw: `["x","y"]`, field: "tags",
			wantValue: []any{"x", "y"}, wantSuccess: true,
		},
		{
			name: "json array file", raw: "/work/list.json", field: "tags",
			wantValue: []any{"a", "b"}, wantSuccess: true, wantFromFile: true,
		},
		{
			name: "missing file falls back to raw", raw: "./nope.json", field: "config",
			wantValue: "./nope.json",
		},
		{
			name: "malformed inline json is soft", raw: `{"region":`, field: "config",
			wantValue: `{"region":`,
		},
		{
			name: "scalar field passes through", raw: "/work/cfg.json", field: "name",
			wantValue: "/work/cfg.json", wantSuccess: true,
		},
		{
			name: "explicit opt-out passes through", raw: `{"a":1}`, field: "raw",
			wantValue: `{"a":1}`, wantSuccess: true,
		},
		{
			name: "explicit opt-in on scalar loads file", raw: "/work/cfg.yaml", field: "path",
			wantValue: map[string]any{"region": "us"}, wantSuccess: true, wantFromFile: true,
		},
		{
			name: "non-string passes through", raw: map[string]any{"k": 1}, field: "config",
			wantValue: map[string]any{"k": 1}, wantSuccess: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := r.Resolve(ctx, tt.raw, field(t, tt.field))
			if diff := cmp.Diff(tt.wantValue, got.Value); diff != "" {
				t.Errorf("Value mismatch (-want +got):\n%s", diff)
			}
			if got.Success != tt.wantSuccess || got.FromFile != tt.wantFromFile {
				t.Errorf("Success=%v FromFile=%v, want %v %v", got.Success, got.FromFile, tt.wantSuccess, tt.wantFromFile)
			}
			if tt.wantErr == nil && got.Err != nil {
				t.Errorf("unexpected Err = %v", got.Err)
			}
			if tt.wantErr != nil && !errors.Is(got.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", got.Err, tt.wantErr)
			}
		})
	}

	t.Run("malformed json file is a hard error", func(t *testing.T) {
		t.Parallel()

		got := r.Resolve(ctx, "/work/bad.json", field(t, "config"))
		var fe *FileError
		if !errors.As(got.Err, &fe) || fe.Path != "/work/bad.json" {
			t.Errorf("Err = %v, want *FileError for /work/bad.json", got.Err)
		}
	})
}

func TestResolveFlags(t *testing.T) {
	t.Parallel()

	fs := newFs(t, map[string]string{
		"/a.yaml": "a: 1\n",
		"/b.yml":  "b: 2\n",
	})
	r := New(fs)
	s := schema.MustCompile(`{
	first?:  {...}
	second?: {...}
	inline?: {...}
}`)

	values, errs := r.ResolveFlags(context.Background(), map[string]any{
		"second": "/b.yml",
		"first":  "/a.yaml",
		"inline": `{"ok": true}`,
		"extra":  "kept",
	}, s)

	if len(errs) != 2 || errs[0].Path[0] != "first" || errs[1].Path[0] != "second" {
		t.Fatalf("errors should follow declaration order, got %v", errs)
	}
	want := map[string]any{
		"first":  "/a.yaml",
		"second": "/b.yml",
		"inline": map[string]any{"ok": true},
		"extra":  "kept",
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestMapArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		src        string
		tokens     []string
		wantValues map[string]any
		wantExtra  []string
	}{
		{
			name:       "positional in declaration order",
			src:        `{src: string, dst: string}`,
			tokens:     []string{"a", "b"},
			wantValues: map[string]any{"src": "a", "dst": "b"},
		},
		{
			name:       "missing optional tokens",
			src:        `{name?: string | *"world"}`,
			tokens:     nil,
			wantValues: map[string]any{},
		},
		{
			name:       "variadic last field",
			src:        `{cmd: string, rest: [...string]}`,
			tokens:     []string{"x", "1", "2", "3"},
			wantValues: map[string]any{"cmd": "x", "rest": []any{"1", "2", "3"}},
		},
		{
			name:       "extra tokens",
			src:        `{name: string}`,
			tokens:     []string{"a", "b", "c"},
			wantValues: map[string]any{"name": "a"},
			wantExtra:  []string{"b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			values, extra := MapArgs(tt.tokens, schema.MustCompile(tt.src))
			if diff := cmp.Diff(tt.wantValues, values); diff != "" {
				t.Errorf("values mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantExtra, extra); diff != "" {
				t.Errorf("extra mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("nil schema", func(t *testing.T) {
		t.Parallel()

		values, extra := MapArgs([]string{"a"}, nil)
		if len(values) != 0 || extra != nil {
			t.Errorf("MapArgs(nil schema) = %v, %v", values, extra)
		}
	})
}
