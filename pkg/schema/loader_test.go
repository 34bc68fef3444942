package schema_test

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/schema"
)

func TestEmbedded_SampleForm(t *testing.T) {
	form, err := schema.SampleForm()
	if err != nil {
		t.Fatalf("sample form: %v", err)
	}

	wantKeys := []string{
		"phoneNumber",
		"confirmPhoneNumber",
		"firstRadio",
		"firstCheckboxes",
		"secondRadio",
		"secondCheckboxes",
	}
	if diff := cmp.Diff(wantKeys, form.Keys()); diff != "" {
		t.Fatalf("field keys mismatch (-want +got):\n%s", diff)
	}

	second, ok := form.Field("secondCheckboxes")
	if !ok {
		t.Fatalf("secondCheckboxes missing")
	}
	_, items, err := second.DefaultValue()
	if err != nil {
		t.Fatalf("default value: %v", err)
	}
	if diff := cmp.Diff([]string{"HTML", "Javascript"}, items); diff != "" {
		t.Fatalf("secondCheckboxes default mismatch (-want +got):\n%s", diff)
	}

	radio, _ := form.Field("firstRadio")
	if diff := cmp.Diff([]string{"yes", "no"}, radio.Options); diff != "" {
		t.Fatalf("radio options mismatch (-want +got):\n%s", diff)
	}

	confirm, _ := form.Field("confirmPhoneNumber")
	if got := confirm.Rules[len(confirm.Rules)-1]; got.Type != schema.RuleEquals || got.Field != "phoneNumber" {
		t.Fatalf("unexpected confirmation rule: %#v", got)
	}
	if len(form.Dependencies) != 2 {
		t.Fatalf("expected 2 dependencies, got %d", len(form.Dependencies))
	}
}

func TestLoadFS_JSONAndYAML(t *testing.T) {
	fsys := fstest.MapFS{
		"contact.json": &fstest.MapFile{Data: []byte(`{
  "forms": {
    "contact": {
      "title": "Contact",
      "fields": [
        {"key": "email", "kind": "text", "rules": [{"type": "required"}]}
      ]
    }
  }
}`)},
		"nested/survey.yaml": &fstest.MapFile{Data: []byte(`
forms:
  survey:
    fields:
      - key: likes
        kind: radio
        options: ["yes", "no"]
      - key: picks
        kind: checkbox-group
        options: [a, b]
        default: [b]
    dependencies:
      - controller: likes
        dependent: picks
`)},
		"README.md": &fstest.MapFile{Data: []byte("ignored")},
	}

	store, err := schema.LoadFS(fsys)
	if err != nil {
		t.Fatalf("load fs: %v", err)
	}
	if diff := cmp.Diff([]string{"contact", "survey"}, store.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	survey, ok := store.Form("survey")
	if !ok {
		t.Fatalf("survey missing")
	}
	if got := survey.Dependencies[0].AffirmativeValue(); got != "yes" {
		t.Fatalf("expected default affirmative, got %q", got)
	}
	if got := survey.Dependencies[0].PolicyOrDefault(); got != schema.PolicyReset {
		t.Fatalf("expected reset policy, got %q", got)
	}
}

func TestLoadFS_DuplicateForm(t *testing.T) {
	doc := []byte(`{"forms":{"dup":{"fields":[{"key":"a","kind":"text"}]}}}`)
	fsys := fstest.MapFS{
		"a.json": &fstest.MapFile{Data: doc},
		"b.json": &fstest.MapFile{Data: doc},
	}
	_, err := schema.LoadFS(fsys)
	if err == nil || !strings.Contains(err.Error(), `duplicate form "dup"`) {
		t.Fatalf("expected duplicate form error, got %v", err)
	}
}

func TestLoadFS_NilFS(t *testing.T) {
	store, err := schema.LoadFS(nil)
	if err != nil {
		t.Fatalf("load nil fs: %v", err)
	}
	if !store.Empty() {
		t.Fatalf("expected empty store")
	}
}

func TestParse_InvalidDocument(t *testing.T) {
	doc := schema.MustNewDocument(schema.SourceFromFS("broken.yaml"), []byte("forms: [unterminated"))
	if _, err := schema.Parse(doc); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNewDocument_Source(t *testing.T) {
	doc, err := schema.NewDocument(schema.SourceFromFS("./forms/sample.yaml"), []byte("forms: {}"))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	want := schema.Source{Kind: schema.SourceKindFS, Location: "forms/sample.yaml"}
	if diff := cmp.Diff(want, doc.Source()); diff != "" {
		t.Fatalf("source mismatch (-want +got):\n%s", diff)
	}

	if _, err := schema.NewDocument(schema.Source{}, []byte("forms: {}")); err == nil {
		t.Fatalf("expected error for a document without a location")
	}
}

func TestValidate_Errors(t *testing.T) {
	text := func(key string, rules ...schema.Rule) schema.Field {
		return schema.Field{Key: key, Kind: schema.FieldKindText, Rules: rules}
	}

	cases := []struct {
		name string
		form schema.Form
		want string
	}{
		{
			name: "missing id",
			form: schema.Form{Fields: []schema.Field{text("a")}},
			want: "form id is required",
		},
		{
			name: "no fields",
			form: schema.Form{ID: "f"},
			want: "declares no fields",
		},
		{
			name: "duplicate key",
			form: schema.Form{ID: "f", Fields: []schema.Field{text("a"), text("a")}},
			want: `duplicate field "a"`,
		},
		{
			name: "unknown kind",
			form: schema.Form{ID: "f", Fields: []schema.Field{{Key: "a", Kind: "slider"}}},
			want: `unknown kind "slider"`,
		},
		{
			name: "bad pattern",
			form: schema.Form{ID: "f", Fields: []schema.Field{text("a", schema.Rule{Type: schema.RulePattern, Pattern: "("})}},
			want: "invalid pattern",
		},
		{
			name: "equals unknown field",
			form: schema.Form{ID: "f", Fields: []schema.Field{text("a", schema.Rule{Type: schema.RuleEquals, Field: "b"})}},
			want: `references unknown field "b"`,
		},
		{
			name: "min selected on text",
			form: schema.Form{ID: "f", Fields: []schema.Field{text("a", schema.Rule{Type: schema.RuleMinSelected})}},
			want: "minSelected rules apply to checkbox groups",
		},
		{
			name: "unknown rule",
			form: schema.Form{ID: "f", Fields: []schema.Field{text("a", schema.Rule{Type: "luhn"})}},
			want: `unknown rule type "luhn"`,
		},
		{
			name: "default not an option",
			form: schema.Form{ID: "f", Fields: []schema.Field{
				{Key: "r", Kind: schema.FieldKindRadio, Options: []string{"yes", "no"}, Default: "maybe"},
			}},
			want: `default "maybe" is not a declared option`,
		},
		{
			name: "list default on text",
			form: schema.Form{ID: "f", Fields: []schema.Field{{Key: "a", Kind: schema.FieldKindText, Default: []any{"x"}}}},
			want: "default must be a string",
		},
		{
			name: "dependency unknown controller",
			form: schema.Form{
				ID:           "f",
				Fields:       []schema.Field{text("a")},
				Dependencies: []schema.Dependency{{Controller: "x", Dependent: "a"}},
			},
			want: `unknown controller "x"`,
		},
		{
			name: "two controllers",
			form: schema.Form{
				ID:     "f",
				Fields: []schema.Field{text("a"), text("b"), text("c")},
				Dependencies: []schema.Dependency{
					{Controller: "a", Dependent: "c"},
					{Controller: "b", Dependent: "c"},
				},
			},
			want: `"c" has more than one controller`,
		},
		{
			name: "unknown policy",
			form: schema.Form{
				ID:           "f",
				Fields:       []schema.Field{text("a"), text("b")},
				Dependencies: []schema.Dependency{{Controller: "a", Dependent: "b", Policy: "keep"}},
			},
			want: `unknown policy "keep"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := schema.Validate(tc.form)
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestDependencyOrder_ChainsAndCycles(t *testing.T) {
	fields := []schema.Field{
		{Key: "a", Kind: schema.FieldKindRadio},
		{Key: "b", Kind: schema.FieldKindRadio},
		{Key: "c", Kind: schema.FieldKindCheckboxGroup},
	}

	form := schema.Form{
		ID:     "chain",
		Fields: fields,
		Dependencies: []schema.Dependency{
			{Controller: "b", Dependent: "c"},
			{Controller: "a", Dependent: "b"},
		},
	}
	ordered, err := schema.DependencyOrder(form)
	if err != nil {
		t.Fatalf("dependency order: %v", err)
	}
	got := make([]string, 0, len(ordered))
	for _, dep := range ordered {
		got = append(got, dep.Controller+"->"+dep.Dependent)
	}
	if diff := cmp.Diff([]string{"a->b", "b->c"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	cyclic := schema.Form{
		ID:     "cycle",
		Fields: fields[:2],
		Dependencies: []schema.Dependency{
			{Controller: "a", Dependent: "b"},
			{Controller: "b", Dependent: "a"},
		},
	}
	if _, err := schema.DependencyOrder(cyclic); !errors.Is(err, schema.ErrDependencyCycle) {
		t.Fatalf("expected cycle error, got %v", err)
	}
}
