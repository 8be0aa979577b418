package storefront

import "context"

// DefaultShopSelection selects the shop metadata returned by Shop.
var DefaultShopSelection = SelectorFunc(func(parent *Node, field string, _ ID) {
	n := parent.Field(field)
	n.Fields("name", "description", "moneyFormat")
	n.Field("primaryDomain").Fields("host", "sslEnabled", "url")
})

// DefaultShopPoliciesSelection selects the shop's legal policies.
var DefaultShopPoliciesSelection = SelectorFunc(func(parent *Node, field string, _ ID) {
	n := parent.Field(field)
	for _, policy := range []string{"privacyPolicy", "termsOfService", "refundPolicy"} {
		n.Field(policy).Fields("id", "title", "url", "body")
	}
})

// Shop fetches storefront-level metadata.
func (c *Client) Shop(
	ctx context.Context,
	opts ...RequestOption,
) (*Shop, error) {
	cfg := c.requestConfig(DefaultShopSelection, opts)

	root := newRoot()
	cfg.selector.Select(root, "shop", "")

	raw, err := c.do(ctx, queryOperation, root)
	if err != nil {
		return nil, err
	}

	var out struct {
		Shop Shop `json:"shop"`
	}
	if err := decodeData(raw, &out); err != nil {
		return nil, err
	}
	return &out.Shop, nil
}

// ShopPolicies fetches the shop's legal policies. Same shape as Shop,
// different default field selection.
func (c *Client) ShopPolicies(
	ctx context.Context,
	opts ...RequestOption,
) (*ShopPolicies, error) {
	cfg := c.requestConfig(DefaultShopPoliciesSelection, opts)

	root := newRoot()
	cfg.selector.Select(root, "shop", "")

	raw, err := c.do(ctx, queryOperation, root)
	if err != nil {
		return nil, err
	}

	var out struct {
		Shop ShopPolicies `json:"shop"`
	}
	if err := decodeData(raw, &out); err != nil {
		return nil, err
	}
	return &out.Shop, nil
}
