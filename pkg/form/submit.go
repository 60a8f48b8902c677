package form

import (
	"context"
	"errors"

	"github.com/goliatone/go-productform/pkg/schema"
)

// Result is the outcome of a fully successful submission.
type Result struct {
	SubmissionID string
	Action       string
	ProductID    ID
	PictureIDs   []ID
	Target       string
}

// Submit validates the current values, creates the product, then creates
// its pictures in a single batched call, and finally reports the navigation
// target for action.
//
// Failures come back as a Failure (*ValidationError, *ParentCreationError or
// *ChildCreationError) and leave the entered values untouched. A product
// whose pictures failed is not rolled back. Once the product exists the
// picture call is always attempted, even if ctx is cancelled meanwhile.
func (s *Session) Submit(ctx context.Context, action string) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("form: context is required")
	}

	s.mu.Lock()
	switch {
	case s.state.Busy():
		s.mu.Unlock()
		return Result{}, ErrSubmitInProgress
	case s.state == StateSucceeded:
		s.mu.Unlock()
		return Result{}, ErrSessionClosed
	}
	s.state = StateValidating
	s.failure = nil
	snapshot := cloneValues(s.values)
	submissionID := s.newID()
	s.mu.Unlock()

	s.logger.Printf("form: submission %s: validating (action=%q)", submissionID, action)
	if fieldErrors := copyErrors(s.validator.Validate(snapshot)); len(fieldErrors) > 0 {
		failure := &ValidationError{Fields: fieldErrors}
		s.fail(submissionID, failure, failure.Fields)
		return Result{}, failure
	}

	product, photos := s.split(snapshot)

	s.mu.Lock()
	s.state = StateSubmittingParent
	s.errors = make(map[string]string)
	s.mu.Unlock()
	s.logger.Printf("form: submission %s: creating product", submissionID)
	productID, err := s.creator.CreateProduct(ctx, product)
	if err != nil {
		failure := &ParentCreationError{Err: err}
		s.fail(submissionID, failure, nil)
		return Result{}, failure
	}
	s.logger.Printf("form: submission %s: product %d created", submissionID, productID)

	var pictureIDs []ID
	if pictures := s.pictures(photos, productID); len(pictures) > 0 {
		s.transition(StateSubmittingChildren)
		s.logger.Printf("form: submission %s: creating %d pictures", submissionID, len(pictures))
		pictureIDs, err = s.creator.CreatePictures(context.WithoutCancel(ctx), pictures)
		if err != nil {
			failure := &ChildCreationError{ProductID: productID, Err: err}
			s.fail(submissionID, failure, nil)
			return Result{}, failure
		}
	}

	target, err := s.routes.Target(action, productID)
	if err != nil {
		s.logger.Printf("form: submission %s: route for %q: %v", submissionID, action, err)
		target = s.routes.Listing()
	}

	result := Result{
		SubmissionID: submissionID,
		Action:       action,
		ProductID:    productID,
		PictureIDs:   pictureIDs,
		Target:       target,
	}

	s.mu.Lock()
	s.state = StateSucceeded
	s.result = &result
	s.mu.Unlock()
	s.logger.Printf("form: submission %s: succeeded, navigating to %s", submissionID, target)

	if s.navigator != nil {
		s.navigator.Navigate(target)
	}
	return result, nil
}

// Result returns the successful submission result, if any.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return Result{}, false
	}
	return *s.result, true
}

// split separates the snapshot into product fields and picture items. Array
// fields never reach the product payload; absent scalar values are omitted.
func (s *Session) split(snapshot map[string]any) (map[string]any, []Item) {
	product := make(map[string]any, len(snapshot))
	var photos []Item
	for _, field := range s.schema.DataFields() {
		value, ok := snapshot[field.Name]
		if field.Kind == schema.KindFieldArray {
			if field.Name == s.pictureField {
				photos, _ = value.([]Item)
			}
			continue
		}
		if !ok || value == nil {
			continue
		}
		product[field.Name] = value
	}
	return product, photos
}

func (s *Session) pictures(photos []Item, productID ID) []Picture {
	if len(photos) == 0 {
		return nil
	}
	itemName := s.fields[s.pictureField].ItemName
	out := make([]Picture, len(photos))
	for idx, photo := range photos {
		url, _ := photo[itemName].(string)
		out[idx] = Picture{
			URL:       url,
			Order:     idx,
			ProductID: productID,
			WebShop:   s.webShop,
		}
	}
	return out
}

func (s *Session) transition(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) fail(submissionID string, failure Failure, fieldErrors map[string]string) {
	s.mu.Lock()
	s.state = StateFailed
	s.failure = failure
	s.errors = copyErrors(fieldErrors)
	s.mu.Unlock()
	s.logger.Printf("form: submission %s: failed in %s phase: %v", submissionID, failure.Phase(), failure)
}

func copyErrors(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		if v == "" {
			continue
		}
		out[k] = v
	}
	return out
}
