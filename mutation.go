package storefront

import (
	"context"
	"encoding/json"
)

// ensureUserErrors injects the error-reporting sub-selection into a
// mutation's payload node. It runs after the caller's selector and cannot
// be suppressed: without it a rejected mutation would be indistinguishable
// from a successful one.
func ensureUserErrors(payload *Node) {
	payload.Field("userErrors").Fields("field", "message")
}

// checkUserErrors inspects the raw response of the mutation selected at
// the given payload field, before the payload is decoded into a model. A
// non-empty user-error list fails the whole call; the payload is never
// surfaced in that case.
func checkUserErrors(raw []byte, operation string) error {
	var envelope map[string]json.RawMessage
	if err := decodeData(raw, &envelope); err != nil {
		return err
	}
	payload, ok := envelope[operation]
	if !ok || len(payload) == 0 {
		return nil
	}
	var out struct {
		UserErrors []UserError `json:"userErrors"`
	}
	if err := decodeData(payload, &out); err != nil {
		return err
	}
	if len(out.UserErrors) > 0 {
		return &MutationRejectedError{
			Operation:  operation,
			UserErrors: out.UserErrors,
		}
	}
	return nil
}

// mutate composes a guarded mutation around the payload field named
// operation: the selector declares the payload selection, the guard adds
// the user-error sub-selection, and the raw response is checked before the
// caller decodes any model from it.
func (c *Client) mutate(
	ctx context.Context,
	operation string,
	build func(payload *Node),
) ([]byte, error) {
	root := newRoot()
	payload := root.Field(operation)
	build(payload)
	ensureUserErrors(payload)

	raw, err := c.do(ctx, mutationOperation, root)
	if err != nil {
		return nil, err
	}
	if err := checkUserErrors(raw, operation); err != nil {
		return nil, err
	}
	return raw, nil
}
