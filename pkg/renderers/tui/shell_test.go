package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-productform/pkg/form"
	"github.com/goliatone/go-productform/pkg/schema"
)

const testSchema = `
form:
  id: test-product
  title: Testituote
  actions:
    - {name: submit, label: Tallenna}
    - {name: submit-and-print, label: Tallenna ja tulosta}
fields:
  - {name: name, kind: text, label: Nimi, required: true, messages: {required: Nimi puuttuu}}
  - {name: price, kind: price, label: Hinta, required: true}
  - name: vat_class
    kind: select
    label: Veroluokka
    required: true
    options:
      - {label: "0%", value: 0}
      - {label: "24%", value: 24}
  - {name: heading, kind: heading, label: Muut}
  - {name: description, kind: markdown, label: Kuvaus}
  - {name: Passiivinen, kind: checkbox}
  - {name: photos, kind: field-array, label: Kuvat, itemKind: text, itemName: url}
`

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	inputPos     int
	selectPos    int
	confirmPos   int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) sawInfo(fragment string) bool {
	for _, msg := range s.infoMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

type recordingCreator struct {
	failProducts int
	products     []map[string]any
	pictures     [][]form.Picture
}

func (c *recordingCreator) CreateProduct(_ context.Context, fields map[string]any) (form.ID, error) {
	c.products = append(c.products, fields)
	if c.failProducts > 0 {
		c.failProducts--
		return 0, errors.New("connection reset")
	}
	return 5, nil
}

func (c *recordingCreator) CreatePictures(_ context.Context, pictures []form.Picture) ([]form.ID, error) {
	c.pictures = append(c.pictures, pictures)
	return make([]form.ID, len(pictures)), nil
}

func newTestSession(t *testing.T, creator form.Creator) *form.Session {
	t.Helper()
	s, err := schema.Parse([]byte(testSchema), "test.yaml")
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	session, err := form.NewSession(s, creator)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session
}

func TestShell_FillsAndSubmits(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Muki", "9,90", "a.jpg", "b.jpg"},
		selectIdx: []int{1, 1},
		textAreas: []string{"**uusi**"},
		confirm:   []bool{false, true, false},
	}
	var previewed []string
	shell := New(WithPromptDriver(driver), WithPreview(func(source string) string {
		previewed = append(previewed, source)
		return "<p>" + source + "</p>"
	}))
	creator := &recordingCreator{}

	result, err := shell.Run(context.Background(), newTestSession(t, creator))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Target != "/product/5/print" {
		t.Fatalf("target = %q", result.Target)
	}

	product := creator.products[0]
	if product["name"] != "Muki" || product["price"] != 9.9 || product["vat_class"] != 24.0 || product["Passiivinen"] != false {
		t.Fatalf("unexpected product: %#v", product)
	}
	want := []form.Picture{
		{URL: "a.jpg", Order: 0, ProductID: 5, WebShop: true},
		{URL: "b.jpg", Order: 1, ProductID: 5, WebShop: true},
	}
	if diff := cmp.Diff(want, creator.pictures[0]); diff != "" {
		t.Fatalf("pictures mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"**uusi**"}, previewed); diff != "" {
		t.Fatalf("preview mismatch (-want +got):\n%s", diff)
	}
	if !driver.sawInfo("Muut") || !driver.sawInfo("Testituote") {
		t.Fatalf("headings not printed: %v", driver.infoMessages)
	}
}

func TestShell_RepromptsInvalidFields(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"", "9,90", "a.jpg", "Muki"},
		selectIdx: []int{0, 0, 0},
		textAreas: []string{""},
		confirm:   []bool{false, false},
	}
	creator := &recordingCreator{}

	result, err := New(WithPromptDriver(driver)).Run(context.Background(), newTestSession(t, creator))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Target != "/" {
		t.Fatalf("target = %q", result.Target)
	}
	if len(creator.products) != 1 || creator.products[0]["name"] != "Muki" {
		t.Fatalf("unexpected products: %#v", creator.products)
	}
	if creator.products[0]["vat_class"] != 0.0 {
		t.Fatalf("vat_class = %#v", creator.products[0]["vat_class"])
	}
	if !driver.sawInfo(form.NoticeValidation) || !driver.sawInfo("Nimi puuttuu") {
		t.Fatalf("validation feedback missing: %v", driver.infoMessages)
	}
	if driver.inputPos != len(driver.inputs) {
		t.Fatalf("expected only the invalid field to be re-prompted, consumed %d inputs", driver.inputPos)
	}
}

func TestShell_RetriesParentFailure(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Muki", "9,90", ""},
		selectIdx: []int{1, 0},
		textAreas: []string{""},
		confirm:   []bool{false, false, true},
	}
	creator := &recordingCreator{failProducts: 1}

	if _, err := New(WithPromptDriver(driver)).Run(context.Background(), newTestSession(t, creator)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(creator.products) != 2 {
		t.Fatalf("expected a retried product call, got %d", len(creator.products))
	}
	if driver.selectPos != 2 {
		t.Fatalf("retry must reuse the chosen action, selects consumed %d", driver.selectPos)
	}
	if !driver.sawInfo(form.NoticeParent) {
		t.Fatalf("parent notice missing: %v", driver.infoMessages)
	}
}

func TestShell_CancelSkipsSubmission(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Muki", "9,90", ""},
		selectIdx: []int{1, 2},
		textAreas: []string{""},
		confirm:   []bool{false, false},
	}
	creator := &recordingCreator{}

	_, err := New(WithPromptDriver(driver)).Run(context.Background(), newTestSession(t, creator))
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if len(creator.products) != 0 {
		t.Fatalf("cancel must not submit")
	}
}

func TestShell_RemoveTokenDropsItem(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Muki", "9,90", "a.jpg", "-"},
		selectIdx: []int{1, 0},
		textAreas: []string{""},
		confirm:   []bool{false, true, false},
	}
	creator := &recordingCreator{}

	if _, err := New(WithPromptDriver(driver)).Run(context.Background(), newTestSession(t, creator)); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []form.Picture{{URL: "a.jpg", Order: 0, ProductID: 5, WebShop: true}}
	if diff := cmp.Diff(want, creator.pictures[0]); diff != "" {
		t.Fatalf("pictures mismatch (-want +got):\n%s", diff)
	}
}
