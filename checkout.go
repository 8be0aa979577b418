package storefront

import "context"

func selectLineItemFields(n *Node) {
	n.Fields("id", "title", "quantity")
	n.Field("customAttributes").Fields("key", "value")
	selectVariantFields(n.Field("variant"))
}

// DefaultLineItemSelection selects the default line-item field set.
var DefaultLineItemSelection = SelectorFunc(func(parent *Node, field string, _ ID) {
	selectLineItemFields(parent.Field(field))
})

// DefaultCheckoutSelection selects the full default checkout field set,
// including the line-items connection.
var DefaultCheckoutSelection = SelectorFunc(func(parent *Node, field string, id ID) {
	n := parent.Entity(field, id, "Checkout")
	n.Fields(
		"id",
		"ready",
		"requiresShipping",
		"note",
		"email",
		"webUrl",
		"orderStatusUrl",
		"currencyCode",
		"taxExempt",
		"taxesIncluded",
		"completedAt",
		"createdAt",
		"updatedAt",
	)
	n.Field("customAttributes").Fields("key", "value")
	for _, money := range []string{"paymentDue", "totalTax", "subtotalPrice", "totalPrice"} {
		n.Field(money).Fields("amount", "currencyCode")
	}
	selectLineItemFields(n.ConnectionField("lineItems"))
})

// CreateCheckout creates a checkout from the given input. The mutation is
// guarded: a non-empty user-error list fails the call with a
// *MutationRejectedError and no checkout is returned. On success the
// checkout's line-item connection comes back fully completed.
func (c *Client) CreateCheckout(
	ctx context.Context,
	input CheckoutCreateInput,
	opts ...RequestOption,
) (*Checkout, error) {
	return c.checkoutMutation(ctx, "checkoutCreate", opts, func(payload *Node) {
		payload.Arg("input", input)
	})
}

// AddLineItems adds line items to an existing checkout. Guarded like
// CreateCheckout; the returned checkout's line items are fully completed.
func (c *Client) AddLineItems(
	ctx context.Context,
	checkoutID ID,
	lineItems []LineItemInput,
	opts ...RequestOption,
) (*Checkout, error) {
	return c.checkoutMutation(ctx, "checkoutLineItemsAdd", opts, func(payload *Node) {
		payload.Arg("checkoutId", checkoutID)
		payload.Arg("lineItems", lineItems)
	})
}

// checkoutMutation is the shared pipeline of the checkout mutations:
// compose with the guard, dispatch, check user errors, then complete the
// line-item connection.
func (c *Client) checkoutMutation(
	ctx context.Context,
	operation string,
	opts []RequestOption,
	addArgs func(payload *Node),
) (*Checkout, error) {
	cfg := c.requestConfig(DefaultCheckoutSelection, opts)

	var entity *Node
	raw, err := c.mutate(ctx, operation, func(payload *Node) {
		addArgs(payload)
		cfg.selector.Select(payload, "checkout", "")
		entity = payload.Field("checkout")
		ensureID(entity)
		ensureConnection(entity, "lineItems", cfg.pageSize)
	})
	if err != nil {
		return nil, err
	}

	var out map[string]struct {
		Checkout *checkoutResource `json:"checkout"`
	}
	if err := decodeData(raw, &out); err != nil {
		return nil, err
	}
	res := out[operation].Checkout
	if res == nil {
		return nil, nil
	}
	return c.completeCheckout(ctx, *res, entity, cfg.pageSize)
}

// completeCheckout rebuilds a Checkout with its line-item connection
// walked to exhaustion.
func (c *Client) completeCheckout(
	ctx context.Context,
	res checkoutResource,
	selection *Node,
	pageSize int,
) (*Checkout, error) {
	ck := res.Checkout

	var steps []func(context.Context) error
	if sel := selection.lookup("lineItems", "edges", "node"); sel != nil {
		steps = append(steps, connectionStep(
			c,
			connectionRef{
				parentID:      ck.ID,
				typeName:      "Checkout",
				field:         "lineItems",
				nodeSelection: sel,
				pageSize:      pageSize,
			},
			res.LineItems,
			func(items []LineItem) { ck.LineItems = items },
		))
	}

	if err := completeAll(ctx, steps...); err != nil {
		return nil, err
	}
	return &ck, nil
}
