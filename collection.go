package storefront

import "context"

// DefaultCollectionSelection selects the default collection field set.
// Collections carry no paged sub-resources in this surface, so no
// connection plumbing is involved.
var DefaultCollectionSelection = SelectorFunc(func(parent *Node, field string, id ID) {
	n := parent.Entity(field, id, "Collection")
	n.Fields(
		"id",
		"handle",
		"title",
		"description",
		"descriptionHtml",
		"updatedAt",
	)
	selectImageFields(n.Field("image"))
})

// Collections fetches the shop's collections.
func (c *Client) Collections(
	ctx context.Context,
	opts ...RequestOption,
) ([]*Collection, error) {
	cfg := c.requestConfig(DefaultCollectionSelection, opts)

	root := newRoot()
	conn := root.Field("collections").Arg("first", cfg.pageSize)
	conn.Field("pageInfo").Fields("hasNextPage", "endCursor")
	edges := conn.Field("edges")
	edges.Field("cursor")
	cfg.selector.Select(edges, "node", "")

	raw, err := c.do(ctx, queryOperation, root)
	if err != nil {
		return nil, err
	}

	var out struct {
		Collections Connection[Collection] `json:"collections"`
	}
	if err := decodeData(raw, &out); err != nil {
		return nil, err
	}

	nodes := out.Collections.nodes()
	collections := make([]*Collection, len(nodes))
	for i := range nodes {
		collections[i] = &nodes[i]
	}
	return collections, nil
}

// Collection fetches one collection by id. A missing collection returns
// (nil, nil).
func (c *Client) Collection(
	ctx context.Context,
	id ID,
	opts ...RequestOption,
) (*Collection, error) {
	cfg := c.requestConfig(DefaultCollectionSelection, opts)

	root := newRoot()
	cfg.selector.Select(root, "node", id)
	root.Field("node").Arg("id", id)

	raw, err := c.do(ctx, queryOperation, root)
	if err != nil {
		return nil, err
	}

	var out struct {
		Node *Collection `json:"node"`
	}
	if err := decodeData(raw, &out); err != nil {
		return nil, err
	}
	return out.Node, nil
}
