package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/goliatone/go-productform/pkg/form"
	"github.com/goliatone/go-productform/pkg/navigation"
	"github.com/goliatone/go-productform/pkg/render"
	"github.com/goliatone/go-productform/pkg/schema"
)

const removeToken = "-"

// Shell drives a form session from the terminal: it prompts every bound
// directive, lets the user pick a submit action and reports the outcome.
type Shell struct {
	driver  PromptDriver
	theme   Theme
	labels  Labels
	preview Previewer
	logger  *log.Logger
}

// New constructs a shell backed by survey prompts unless overridden.
func New(options ...Option) *Shell {
	s := &Shell{
		driver: newSurveyDriver(),
		theme:  DefaultTheme,
		labels: DefaultLabels,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Run prompts all fields, then loops over action selection and submission
// until the session succeeds, the user cancels, or a failure cannot be
// retried. Validation failures re-prompt only the offending fields.
func (s *Shell) Run(ctx context.Context, session *form.Session) (form.Result, error) {
	if ctx == nil {
		return form.Result{}, errors.New("tui: context is required")
	}
	if session == nil {
		return form.Result{}, errors.New("tui: session is required")
	}

	if title := session.Schema().Form().Title; title != "" {
		if err := s.driver.Info(ctx, s.theme.HeadingPrefix+title); err != nil {
			return form.Result{}, err
		}
	}
	for _, bound := range session.Bound() {
		if err := s.promptField(ctx, session, bound.Name, bound); err != nil {
			return form.Result{}, err
		}
	}

	retryAction := ""
	for {
		action := retryAction
		retryAction = ""
		if action == "" {
			var err error
			if action, err = s.chooseAction(ctx, session); err != nil {
				return form.Result{}, err
			}
		}
		if action == navigation.ActionCancel {
			return form.Result{}, ErrCancelled
		}

		result, err := s.submit(ctx, session, action)
		if err == nil {
			return result, nil
		}

		var (
			validationErr *form.ValidationError
			parentErr     *form.ParentCreationError
		)
		switch {
		case errors.As(err, &validationErr):
			if err := s.repromptInvalid(ctx, session, validationErr.Fields); err != nil {
				return form.Result{}, err
			}
		case errors.As(err, &parentErr):
			retry, confirmErr := s.driver.Confirm(ctx, ConfirmConfig{Message: s.labels.Retry, Default: true})
			if confirmErr != nil {
				return form.Result{}, confirmErr
			}
			if !retry {
				return form.Result{}, err
			}
			retryAction = action
		default:
			return form.Result{}, err
		}
	}
}

func (s *Shell) submit(ctx context.Context, session *form.Session, action string) (form.Result, error) {
	result, err := session.Submit(ctx, action)
	if err == nil {
		msg := fmt.Sprintf("%s%s (#%d) -> %s", s.theme.InfoPrefix, s.labels.Saved, result.ProductID, result.Target)
		return result, s.driver.Info(ctx, msg)
	}

	var failure form.Failure
	if errors.As(err, &failure) {
		s.logger.Printf("tui: submission failed in %s phase: %v", failure.Phase(), err)
		if infoErr := s.driver.Info(ctx, s.theme.ErrorPrefix+failure.Notice()); infoErr != nil {
			return result, infoErr
		}
	}
	return result, err
}

func (s *Shell) chooseAction(ctx context.Context, session *form.Session) (string, error) {
	actions := session.Schema().Form().Actions
	if len(actions) == 0 {
		actions = []schema.Action{{Name: navigation.ActionSave, Label: navigation.ActionSave}}
	}
	labels := make([]string, 0, len(actions)+1)
	names := make([]string, 0, len(actions)+1)
	for _, action := range actions {
		label := action.Label
		if label == "" {
			label = action.Name
		}
		labels = append(labels, label)
		names = append(names, action.Name)
	}
	labels = append(labels, s.labels.Cancel)
	names = append(names, navigation.ActionCancel)

	idx, err := s.driver.Select(ctx, SelectConfig{Message: s.labels.Action, Options: labels})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(names) {
		return "", fmt.Errorf("tui: action choice %d out of range", idx)
	}
	return names[idx], nil
}

// repromptInvalid walks the directives in schema order and prompts those
// whose own name or item path carries an error.
func (s *Shell) repromptInvalid(ctx context.Context, session *form.Session, fields map[string]string) error {
	for _, bound := range session.Bound() {
		if bound.Decorative() || !hasError(fields, bound.Name) {
			continue
		}
		if err := s.promptField(ctx, session, bound.Name, bound); err != nil {
			return err
		}
	}
	return nil
}

func hasError(fields map[string]string, name string) bool {
	if _, ok := fields[name]; ok {
		return true
	}
	prefix := name + "."
	for key := range fields {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

func (s *Shell) promptField(ctx context.Context, session *form.Session, name string, bound render.Bound) error {
	if bound.Kind == schema.KindHeading {
		return s.driver.Info(ctx, s.theme.HeadingPrefix+displayLabel(bound.Directive))
	}
	if bound.Error != "" {
		if err := s.driver.Info(ctx, s.theme.ErrorPrefix+displayLabel(bound.Directive)+": "+bound.Error); err != nil {
			return err
		}
	}
	if bound.Kind == schema.KindFieldArray {
		return s.promptArray(ctx, session, name)
	}

	for {
		value, err := s.ask(ctx, bound.Directive, bound.Value)
		if err != nil {
			return err
		}
		err = bound.OnChange(value)
		var valueErr *form.ValueError
		if errors.As(err, &valueErr) {
			if infoErr := s.driver.Info(ctx, s.theme.ErrorPrefix+valueErr.Error()); infoErr != nil {
				return infoErr
			}
			continue
		}
		if err != nil {
			return err
		}
		if bound.Kind == schema.KindMarkdown && s.preview != nil {
			if text, _ := value.(string); strings.TrimSpace(text) != "" {
				if err := s.driver.Info(ctx, s.preview(text)); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

// ask shows the prompt matching the directive kind and returns the raw value
// the widget reports back to the session.
func (s *Shell) ask(ctx context.Context, directive render.Directive, current any) (any, error) {
	label := displayLabel(directive)
	switch directive.Kind {
	case schema.KindSelect:
		return s.askSelect(ctx, directive, current)
	case schema.KindCheckbox:
		checked, _ := current.(bool)
		return s.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: checked, Help: directive.Description})
	case schema.KindTextArea, schema.KindMarkdown:
		return s.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: formatValue(current), Help: directive.Description})
	default:
		return s.driver.Input(ctx, InputConfig{Message: label, Default: formatValue(current), Help: directive.Description})
	}
}

func (s *Shell) askSelect(ctx context.Context, directive render.Directive, current any) (any, error) {
	labels := make([]string, 0, len(directive.Options)+1)
	keys := make([]string, 0, len(directive.Options)+1)
	if !directive.Required {
		labels = append(labels, s.labels.NoSelection)
		keys = append(keys, "")
	}
	defaultIdx := 0
	currentKey := ""
	if current != nil {
		currentKey = schema.OptionKey(current)
	}
	for _, option := range directive.Options {
		if currentKey != "" && option.Key == currentKey {
			defaultIdx = len(keys)
		}
		labels = append(labels, option.Label)
		keys = append(keys, option.Key)
	}

	idx, err := s.driver.Select(ctx, SelectConfig{
		Message:      displayLabel(directive),
		Options:      labels,
		DefaultIndex: defaultIdx,
		Help:         directive.Description,
		PageSize:     10,
	})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(keys) {
		return nil, fmt.Errorf("tui: option %d out of range for %s", idx, directive.Name)
	}
	return keys[idx], nil
}

// promptArray edits every item of a field-array, then keeps offering new
// items. Entering the remove token drops the item.
func (s *Shell) promptArray(ctx context.Context, session *form.Session, name string) error {
	index := 0
	for {
		bound, ok := lookup(session, name)
		if !ok {
			return fmt.Errorf("tui: %w: %s", form.ErrUnknownField, name)
		}
		if index >= len(bound.Items) {
			add, err := s.driver.Confirm(ctx, ConfirmConfig{Message: displayLabel(bound.Directive) + ": " + s.labels.AddItem})
			if err != nil {
				return err
			}
			if !add {
				return nil
			}
			if err := bound.AddItem(); err != nil {
				return err
			}
			continue
		}

		item := bound.Items[index]
		directive := item.Directive
		directive.Label = fmt.Sprintf("%s %d", displayLabel(bound.Directive), index+1)
		if directive.Description == "" {
			directive.Description = s.labels.RemoveHint
		}
		value, err := s.ask(ctx, directive, item.Value)
		if err != nil {
			return err
		}
		if text, ok := value.(string); ok && strings.TrimSpace(text) == removeToken {
			if err := bound.RemoveItem(index); err != nil {
				return err
			}
			continue
		}
		err = item.OnChange(value)
		var valueErr *form.ValueError
		if errors.As(err, &valueErr) {
			if infoErr := s.driver.Info(ctx, s.theme.ErrorPrefix+valueErr.Error()); infoErr != nil {
				return infoErr
			}
			continue
		}
		if err != nil {
			return err
		}
		index++
	}
}

func lookup(session *form.Session, name string) (render.Bound, bool) {
	for _, bound := range session.Bound() {
		if bound.Name == name {
			return bound, true
		}
	}
	return render.Bound{}, false
}

func displayLabel(directive render.Directive) string {
	label := directive.Label
	if label == "" {
		label = directive.Name
	}
	if directive.Required {
		label += " *"
	}
	return label
}

func formatValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return fmt.Sprint(typed)
	}
}
