package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formstate/pkg/engine"
	"github.com/goliatone/go-formstate/pkg/openapi"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/schema"
)

// Renderer walks a form in the terminal. Every answer goes through the
// engine, so the terminal sees the same errors, visibility and resets as any
// other host.
type Renderer struct {
	driver            PromptDriver
	outputFormat      render.OutputFormat
	submitTransformer SubmitTransformer
	submission        []render.SubmissionOption
	maxAttempts       int
	theme             Theme
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       NewSurveyDriver(nil),
		outputFormat: render.OutputFormatJSON,
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if !r.outputFormat.Valid() {
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	return r.outputFormat.ContentType()
}

// Render runs the prompt session and serializes the accepted payload.
func (r *Renderer) Render(ctx context.Context, eng *engine.Engine, defaults map[string]engine.Value) ([]byte, error) {
	state, err := r.Collect(ctx, eng, defaults)
	if err != nil {
		return nil, err
	}

	opts := append([]render.SubmissionOption{render.WithFieldOrder(eng.Keys())}, r.submission...)
	sub, err := render.BuildSubmission(state, opts...)
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	if err := openapi.ValidatePayload(eng.Form(), sub.Values); err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}

	if r.submitTransformer != nil {
		sub.Values, err = r.submitTransformer(sub.Values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return render.Encode(sub, r.outputFormat)
}

// Collect prompts every visible field in declaration order, re-asking a field
// until the engine accepts it, then runs ValidateAll and re-asks whatever the
// submission still rejects. It returns the validated state.
func (r *Renderer) Collect(ctx context.Context, eng *engine.Engine, defaults map[string]engine.Value) (engine.FormState, error) {
	if ctx == nil {
		return engine.FormState{}, errors.New("tui: context is required")
	}
	if eng == nil {
		return engine.FormState{}, errors.New("tui: engine is required")
	}
	if r.driver == nil {
		return engine.FormState{}, errors.New("tui: prompt driver is nil")
	}

	state, err := eng.Initialize(defaults)
	if err != nil {
		return engine.FormState{}, fmt.Errorf("tui: %w", err)
	}

	form := eng.Form()
	prompted := make(map[string]bool, len(form.Fields))
	for _, field := range form.Fields {
		// A field compared against one not asked yet cannot be fixed now;
		// ask it once and leave the rest to the submission pass.
		retry := !readsAhead(field, prompted)
		if state, err = r.promptField(ctx, eng, state, field, retry); err != nil {
			return engine.FormState{}, err
		}
		prompted[field.Key] = true
	}

	for {
		next, valid, err := eng.ValidateAll(state)
		if err != nil {
			return engine.FormState{}, fmt.Errorf("tui: %w", err)
		}
		if valid {
			return next, nil
		}
		state = next
		for _, key := range render.MapErrors(state).Keys(eng.Keys()) {
			field, _ := form.Field(key)
			if err := r.info(ctx, r.theme.ErrorPrefix, fmt.Sprintf("%s: %s", displayLabel(field), state.Error(key))); err != nil {
				return engine.FormState{}, err
			}
			if state, err = r.promptField(ctx, eng, state, field, true); err != nil {
				return engine.FormState{}, err
			}
		}
	}
}

// promptField asks for field while it is visible. With retry set it keeps
// asking until the engine reports no error for it.
func (r *Renderer) promptField(ctx context.Context, eng *engine.Engine, state engine.FormState, field schema.Field, retry bool) (engine.FormState, error) {
	for attempt := 1; ; attempt++ {
		current, ok := state.Field(field.Key)
		if !ok || !current.Visible {
			return state, nil
		}
		if err := ctx.Err(); err != nil {
			return state, err
		}

		value, err := r.prompt(ctx, field, current.Value)
		if err != nil {
			return state, err
		}
		next, err := eng.SetFieldValue(state, field.Key, value)
		if err != nil {
			return state, fmt.Errorf("tui: %w", err)
		}
		state = next

		message := state.Error(field.Key)
		if message == "" {
			return state, nil
		}
		if err := r.info(ctx, r.theme.ErrorPrefix, fmt.Sprintf("%s: %s", displayLabel(field), message)); err != nil {
			return state, err
		}
		if !retry {
			return state, nil
		}
		if r.maxAttempts > 0 && attempt >= r.maxAttempts {
			return state, fmt.Errorf("%w: %s", ErrTooManyAttempts, field.Key)
		}
	}
}

func (r *Renderer) prompt(ctx context.Context, field schema.Field, current engine.Value) (engine.Value, error) {
	label := r.theme.PromptPrefix + displayLabel(field)
	help := displayHelp(field)

	switch field.Kind {
	case schema.FieldKindRadio:
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      field.Options,
			DefaultIndex: indexOf(field.Options, current.String()),
			Help:         help,
		})
		if err != nil {
			return engine.Value{}, err
		}
		if idx < 0 || idx >= len(field.Options) {
			return engine.Text(""), nil
		}
		return engine.Text(field.Options[idx]), nil
	case schema.FieldKindCheckboxGroup:
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  label,
			Options:  field.Options,
			Defaults: indicesOf(field.Options, current.Items()),
			Help:     help,
		})
		if err != nil {
			return engine.Value{}, err
		}
		return engine.Selection(valuesFromIndices(field.Options, indices)...), nil
	default:
		response, err := r.driver.Input(ctx, InputConfig{
			Message: label,
			Default: current.String(),
			Help:    help,
		})
		if err != nil {
			return engine.Value{}, err
		}
		return engine.Text(response), nil
	}
}

func (r *Renderer) info(ctx context.Context, prefix, msg string) error {
	return r.driver.Info(ctx, prefix+msg)
}

func readsAhead(field schema.Field, prompted map[string]bool) bool {
	for _, rule := range field.Rules {
		if rule.Type == schema.RuleEquals && !prompted[rule.Field] {
			return true
		}
	}
	return false
}

func displayLabel(field schema.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Key
}

func displayHelp(field schema.Field) string {
	if field.Help != "" {
		return field.Help
	}
	if field.Placeholder != "" {
		return "Format: " + field.Placeholder
	}
	return ""
}
