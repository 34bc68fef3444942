package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/engine"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/schema"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	infoMessages []string
	prompts      []string
	inputPos     int
	selectPos    int
	multiPos     int
	err          error
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	s.prompts = append(s.prompts, cfg.Message)
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	s.prompts = append(s.prompts, cfg.Message)
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	s.prompts = append(s.prompts, cfg.Message)
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func sampleEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.New(schema.MustSampleForm())
	if err != nil {
		t.Fatalf("compile sample: %v", err)
	}
	return eng
}

func TestRender_SampleFormRetriesInvalidAnswers(t *testing.T) {
	driver := &stubDriver{
		inputs: []string{
			"(112)-555-1212", "(212)-555-1212",
			"(212)-555-1213", "(212)-555-1212",
		},
		selectIdx: []int{0, 1},
		multiIdx:  [][]int{{}, {1}},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := r.Render(context.Background(), sampleEngine(t), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	want := map[string]any{
		"phoneNumber":        "(212)-555-1212",
		"confirmPhoneNumber": "(212)-555-1212",
		"firstRadio":         "yes",
		"firstCheckboxes":    []any{"Css"},
		"secondRadio":        "no",
		"secondCheckboxes":   []any{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}

	wantInfo := []string{
		"Phone Number: Format must be (###)-###-#### and start with 2-9",
		"Confirm Phone Number: Values do not match.",
		"If yes select at least one option:: Select at least one option.",
	}
	if diff := cmp.Diff(wantInfo, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
	if driver.multiPos != 2 {
		t.Fatalf("hidden second checkbox group must not be prompted, multiselect calls=%d", driver.multiPos)
	}
}

func TestRender_PrettyOutputWithDefaultsAndTransformer(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"(313)-555-0000", "(313)-555-0000"},
		selectIdx: []int{1, 0},
		multiIdx:  [][]int{{0, 3}},
	}
	r, err := New(
		WithPromptDriver(driver),
		WithOutputFormat(render.OutputFormatPrettyText),
		WithTheme(Theme{PromptPrefix: "> "}),
		WithSubmitTransformer(func(values map[string]any) (map[string]any, error) {
			values["phoneNumber"] = strings.ReplaceAll(values["phoneNumber"].(string), "-", "")
			return values, nil
		}),
	)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if r.ContentType() != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}

	defaults := map[string]engine.Value{"phoneNumber": engine.Text("(313)-555-0000")}
	out, err := r.Render(context.Background(), sampleEngine(t), defaults)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := strings.Join([]string{
		"phoneNumber=(313)5550000",
		"confirmPhoneNumber=(313)-555-0000",
		"firstRadio=no",
		"firstCheckboxes=",
		"secondRadio=yes",
		"secondCheckboxes[0]=HTML",
		"secondCheckboxes[1]=Javascript",
		"",
	}, "\n")
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(driver.prompts[0], "> ") {
		t.Fatalf("expected themed prompt, got %q", driver.prompts[0])
	}
}

func TestCollect_ForwardReferenceResolvedOnSubmit(t *testing.T) {
	form := schema.Form{
		ID: "reverse",
		Fields: []schema.Field{
			{Key: "confirm", Kind: schema.FieldKindText, Rules: []schema.Rule{{Type: schema.RuleEquals, Field: "primary"}}},
			{Key: "primary", Kind: schema.FieldKindText, Rules: []schema.Rule{{Type: schema.RuleRequired}}},
		},
	}
	driver := &stubDriver{inputs: []string{"abc", "abd", "abd"}}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	state, err := r.Collect(context.Background(), engine.MustNew(form), nil)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if !state.Submitted || !state.Valid() {
		t.Fatalf("expected submitted valid state, errors %v", state.Errors())
	}
	if got := state.Value("confirm").String(); got != "abd" {
		t.Fatalf("expected confirmation re-asked after submit, got %q", got)
	}
	wantInfo := []string{
		"confirm: " + engine.MessageEquals,
		"confirm: " + engine.MessageEquals,
	}
	if diff := cmp.Diff(wantInfo, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_MaxAttempts(t *testing.T) {
	driver := &stubDriver{inputs: []string{"", ""}}
	r, err := New(WithPromptDriver(driver), WithMaxAttempts(2))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	_, err = r.Collect(context.Background(), sampleEngine(t), nil)
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if len(driver.infoMessages) != 2 {
		t.Fatalf("expected one message per attempt, got %v", driver.infoMessages)
	}
}

func TestCollect_AbortPropagates(t *testing.T) {
	r, err := New(WithPromptDriver(&stubDriver{err: ErrAborted}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, err := r.Collect(context.Background(), sampleEngine(t), nil); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	if _, err := New(WithPromptDriver(&stubDriver{}), WithOutputFormat("xml")); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
