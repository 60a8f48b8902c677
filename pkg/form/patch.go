package form

import (
	"fmt"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// ApplyPatch applies an RFC 6902 JSON Patch document to the current values,
// for example to restore a saved draft. Paths are JSON pointers into the
// values map ("/name", "/photos/0/url", "/photos/-"). The patch is applied
// atomically: on any error the values are left unchanged.
func (s *Session) ApplyPatch(patch []byte) error {
	decoded, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return fmt.Errorf("form: decode patch: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.beginEditLocked(); err != nil {
		return err
	}

	current, err := sonic.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("form: marshal values: %w", err)
	}
	modified, err := decoded.Apply(current)
	if err != nil {
		return fmt.Errorf("form: apply patch: %w", err)
	}

	var raw map[string]any
	if err := sonic.Unmarshal(modified, &raw); err != nil {
		return fmt.Errorf("form: unmarshal patched values: %w", err)
	}

	next := initialValues(s.schema.DataFields())
	for name, value := range raw {
		field, ok := s.fields[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
		coerced, err := coerce(field, value)
		if err != nil {
			return err
		}
		if coerced == nil {
			delete(next, name)
			continue
		}
		next[name] = coerced
	}

	s.values = next
	s.dirty = true
	return nil
}
