package tui

import "log"

// Theme captures optional prefixes the shell applies when printing messages.
type Theme struct {
	HeadingPrefix string
	InfoPrefix    string
	ErrorPrefix   string
}

// DefaultTheme is used when no theme is configured.
var DefaultTheme = Theme{
	HeadingPrefix: "== ",
	InfoPrefix:    "",
	ErrorPrefix:   "! ",
}

// Labels holds the shell's own prompt texts.
type Labels struct {
	AddItem     string
	RemoveHint  string
	Retry       string
	Cancel      string
	NoSelection string
	Action      string
	Saved       string
}

// DefaultLabels are the Finnish prompt texts of the product form.
var DefaultLabels = Labels{
	AddItem:     "Lisää uusi?",
	RemoveHint:  "Syötä - poistaaksesi rivin",
	Retry:       "Yritetäänkö uudelleen?",
	Cancel:      "Peruuta",
	NoSelection: "(ei valintaa)",
	Action:      "Toiminto",
	Saved:       "Tallennettu",
}

// Previewer turns markdown source into a printable preview.
type Previewer func(source string) string

// Option configures the shell.
type Option func(*Shell)

// WithPromptDriver overrides the prompt driver used by the shell.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Shell) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Shell) {
		s.theme = theme
	}
}

// WithLabels replaces the shell prompt texts.
func WithLabels(labels Labels) Option {
	return func(s *Shell) {
		s.labels = labels
	}
}

// WithPreview prints a preview after every markdown field.
func WithPreview(fn Previewer) Option {
	return func(s *Shell) {
		s.preview = fn
	}
}

// WithLogger routes shell diagnostics to logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Shell) {
		if logger != nil {
			s.logger = logger
		}
	}
}
