package form_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-productform/pkg/form"
	"github.com/goliatone/go-productform/pkg/navigation"
)

func TestSubmit_ValidationFailureMakesNoCalls(t *testing.T) {
	creator := &fakeCreator{productID: 1}
	s := newSession(t, creator)
	fillRequired(t, s)
	must(t, s.SetValue("name", ""))

	_, err := s.Submit(context.Background(), navigation.ActionSave)

	var validationErr *form.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if diff := cmp.Diff(map[string]string{"name": "Tuotteella pitää olla nimi"}, validationErr.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	if len(creator.products) != 0 || len(creator.pictureSets) != 0 {
		t.Fatalf("expected no creation calls, got %d/%d", len(creator.products), len(creator.pictureSets))
	}
	if s.State() != form.StateFailed {
		t.Fatalf("state = %s", s.State())
	}
	if s.FieldError("name") == "" {
		t.Fatalf("expected field error to be exposed for rendering")
	}
	if got, _ := s.Value("price"); got != 12.5 {
		t.Fatalf("entered values lost: price = %v", got)
	}
	if s.LastFailure().Notice() != form.NoticeValidation {
		t.Fatalf("notice = %q", s.LastFailure().Notice())
	}
}

func TestSubmit_CreatesProductThenOrderedPictures(t *testing.T) {
	creator := &fakeCreator{productID: 42}
	var navigated []string
	s := newSession(t, creator,
		form.WithNavigator(form.NavigatorFunc(func(target string) {
			navigated = append(navigated, target)
		})),
		form.WithIDGenerator(func() string { return "sub-1" }),
	)
	fillRequired(t, s)
	must(t, s.SetItemValue("photos", 0, "url", "a.jpg"))
	must(t, s.AddArrayItem("photos"))
	must(t, s.SetItemValue("photos", 1, "url", "b.jpg"))

	result, err := s.Submit(context.Background(), navigation.ActionSaveAndPrint)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	wantPictures := []form.Picture{
		{URL: "a.jpg", Order: 0, ProductID: 42, WebShop: true},
		{URL: "b.jpg", Order: 1, ProductID: 42, WebShop: true},
	}
	if len(creator.pictureSets) != 1 {
		t.Fatalf("expected one batched picture call, got %d", len(creator.pictureSets))
	}
	if diff := cmp.Diff(wantPictures, creator.pictureSets[0]); diff != "" {
		t.Fatalf("pictures mismatch (-want +got):\n%s", diff)
	}

	product := creator.products[0]
	if _, ok := product["photos"]; ok {
		t.Fatalf("product payload must not carry the picture array")
	}
	for key := range product {
		if key == "heading" {
			t.Fatalf("product payload must not carry decorative entries")
		}
	}
	if product["name"] != "Aku Ankka" || product["price"] != 12.5 || product["vat_class"] != 24.0 {
		t.Fatalf("unexpected product payload: %#v", product)
	}

	wantResult := form.Result{
		SubmissionID: "sub-1",
		Action:       navigation.ActionSaveAndPrint,
		ProductID:    42,
		PictureIDs:   []form.ID{100, 101},
		Target:       "/product/42/print",
	}
	if diff := cmp.Diff(wantResult, result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/product/42/print"}, navigated); diff != "" {
		t.Fatalf("navigation mismatch (-want +got):\n%s", diff)
	}
	if s.State() != form.StateSucceeded {
		t.Fatalf("state = %s", s.State())
	}
}

func TestSubmit_NavigationTargets(t *testing.T) {
	cases := []struct {
		action string
		want   string
	}{
		{action: navigation.ActionSave, want: "/"},
		{action: navigation.ActionSaveAndPrint, want: "/product/9/print"},
		{action: "", want: "/product/9/print"},
		{action: "mystery", want: "/product/9/print"},
	}
	for _, tc := range cases {
		t.Run(tc.action, func(t *testing.T) {
			s := newSession(t, &fakeCreator{productID: 9})
			fillRequired(t, s)
			result, err := s.Submit(context.Background(), tc.action)
			if err != nil {
				t.Fatalf("submit: %v", err)
			}
			if result.Target != tc.want {
				t.Fatalf("target = %q, want %q", result.Target, tc.want)
			}
		})
	}
}

func TestSubmit_ParentFailureSkipsChildren(t *testing.T) {
	creator := &fakeCreator{productErr: errors.New("network down")}
	s := newSession(t, creator)
	fillRequired(t, s)

	_, err := s.Submit(context.Background(), navigation.ActionSave)

	var parentErr *form.ParentCreationError
	if !errors.As(err, &parentErr) {
		t.Fatalf("expected ParentCreationError, got %v", err)
	}
	if len(creator.pictureSets) != 0 {
		t.Fatalf("children must not be created after a parent failure")
	}
	if s.State() != form.StateFailed || s.LastFailure().Phase() != form.PhaseParent {
		t.Fatalf("state = %s failure = %v", s.State(), s.LastFailure())
	}

	// A failed session accepts edits and retries.
	creator.productErr = nil
	creator.productID = 5
	must(t, s.SetValue("Hyllypaikka", "A3"))
	if s.State() != form.StateEditing {
		t.Fatalf("expected editing after an edit, got %s", s.State())
	}
	if _, err := s.Submit(context.Background(), navigation.ActionSave); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestSubmit_ChildFailureKeepsParent(t *testing.T) {
	creator := &fakeCreator{productID: 7, pictureErr: errors.New("insert_picture: constraint")}
	s := newSession(t, creator)
	fillRequired(t, s)
	must(t, s.SetItemValue("photos", 0, "url", "a.jpg"))

	_, err := s.Submit(context.Background(), navigation.ActionSave)

	var childErr *form.ChildCreationError
	if !errors.As(err, &childErr) {
		t.Fatalf("expected ChildCreationError, got %v", err)
	}
	if childErr.ProductID != 7 {
		t.Fatalf("product id = %d, want 7", childErr.ProductID)
	}
	if s.State() != form.StateFailed || s.LastFailure().Phase() != form.PhaseChildren {
		t.Fatalf("state = %s", s.State())
	}
	if childErr.Notice() == (&form.ParentCreationError{}).Notice() {
		t.Fatalf("partial success must use a distinct notice")
	}
	if len(creator.products) != 1 {
		t.Fatalf("expected a single product call, got %d", len(creator.products))
	}
}

func TestSubmit_EmptyPictureListSkipsChildCall(t *testing.T) {
	creator := &fakeCreator{productID: 3}
	s := newSession(t, creator)
	fillRequired(t, s)
	must(t, s.RemoveArrayItem("photos", 0))

	result, err := s.Submit(context.Background(), navigation.ActionSave)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(creator.pictureSets) != 0 || len(result.PictureIDs) != 0 {
		t.Fatalf("expected no picture call, got %d", len(creator.pictureSets))
	}
}

func TestSubmit_IsNotReentrant(t *testing.T) {
	creator := &fakeCreator{
		productID: 11,
		block:     make(chan struct{}),
		entered:   make(chan struct{}, 1),
	}
	s := newSession(t, creator)
	fillRequired(t, s)

	var (
		wg     sync.WaitGroup
		result form.Result
		err    error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		result, err = s.Submit(context.Background(), navigation.ActionSave)
	}()

	<-creator.entered
	if s.State() != form.StateSubmittingParent {
		t.Fatalf("state = %s", s.State())
	}
	if _, second := s.Submit(context.Background(), navigation.ActionSave); !errors.Is(second, form.ErrSubmitInProgress) {
		t.Fatalf("expected ErrSubmitInProgress, got %v", second)
	}
	if editErr := s.SetValue("name", "x"); !errors.Is(editErr, form.ErrSubmitInProgress) {
		t.Fatalf("expected edits to be rejected while submitting, got %v", editErr)
	}
	close(creator.block)
	wg.Wait()

	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if result.ProductID != 11 || len(creator.products) != 1 {
		t.Fatalf("expected exactly one product, got %d", len(creator.products))
	}

	if _, again := s.Submit(context.Background(), navigation.ActionSave); !errors.Is(again, form.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", again)
	}
	if editErr := s.AddArrayItem("photos"); !errors.Is(editErr, form.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", editErr)
	}
}

func TestSubmit_PictureCallSurvivesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	creator := &cancellingCreator{cancel: cancel}
	s := newSession(t, creator)
	fillRequired(t, s)
	must(t, s.SetItemValue("photos", 0, "url", "a.jpg"))

	if _, err := s.Submit(ctx, navigation.ActionSave); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if creator.pictureCtxErr != nil {
		t.Fatalf("picture call saw cancelled context: %v", creator.pictureCtxErr)
	}
}

type cancellingCreator struct {
	cancel        context.CancelFunc
	pictureCtxErr error
}

func (c *cancellingCreator) CreateProduct(context.Context, map[string]any) (form.ID, error) {
	c.cancel()
	return 1, nil
}

func (c *cancellingCreator) CreatePictures(ctx context.Context, pictures []form.Picture) ([]form.ID, error) {
	c.pictureCtxErr = ctx.Err()
	return make([]form.ID, len(pictures)), nil
}
