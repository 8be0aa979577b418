package storefront

import "context"

func selectImageFields(n *Node) {
	n.Fields("id", "src", "altText", "width", "height")
}

func selectVariantFields(n *Node) {
	n.Fields("id", "title", "sku", "availableForSale", "weight")
	n.Field("price").Fields("amount", "currencyCode")
	n.Field("selectedOptions").Fields("name", "value")
	selectImageFields(n.Field("image"))
}

// DefaultImageSelection selects the default image field set.
var DefaultImageSelection = SelectorFunc(func(parent *Node, field string, _ ID) {
	selectImageFields(parent.Field(field))
})

// DefaultVariantSelection selects the default variant field set.
var DefaultVariantSelection = SelectorFunc(func(parent *Node, field string, _ ID) {
	selectVariantFields(parent.Field(field))
})

// DefaultProductSelection selects the full default product field set,
// including the images and variants connections.
var DefaultProductSelection = SelectorFunc(func(parent *Node, field string, id ID) {
	n := parent.Entity(field, id, "Product")
	n.Fields(
		"id",
		"handle",
		"title",
		"description",
		"descriptionHtml",
		"productType",
		"vendor",
		"publishedAt",
		"createdAt",
		"updatedAt",
		"onlineStoreUrl",
	)
	n.Field("options").Fields("id", "name", "values")
	selectImageFields(n.ConnectionField("images"))
	selectVariantFields(n.ConnectionField("variants"))
})

// Products fetches the product catalog, completing each product's image
// and variant connections. Per-product completions run concurrently with
// each other.
func (c *Client) Products(
	ctx context.Context,
	opts ...RequestOption,
) ([]*Product, error) {
	cfg := c.requestConfig(DefaultProductSelection, opts)

	root := newRoot()
	conn := root.Field("products").Arg("first", cfg.pageSize)
	conn.Field("pageInfo").Fields("hasNextPage", "endCursor")
	edges := conn.Field("edges")
	edges.Field("cursor")
	cfg.selector.Select(edges, "node", "")

	entity := edges.Field("node")
	ensureID(entity)
	ensureConnection(entity, "images", cfg.pageSize)
	ensureConnection(entity, "variants", cfg.pageSize)

	raw, err := c.do(ctx, queryOperation, root)
	if err != nil {
		return nil, err
	}

	var out struct {
		Products Connection[productResource] `json:"products"`
	}
	if err := decodeData(raw, &out); err != nil {
		return nil, err
	}

	resources := out.Products.nodes()
	products := make([]*Product, len(resources))
	steps := make([]func(context.Context) error, len(resources))
	for i := range resources {
		i := i
		steps[i] = func(ctx context.Context) error {
			p, err := c.completeProduct(ctx, resources[i], entity, cfg.pageSize)
			if err != nil {
				return err
			}
			products[i] = p
			return nil
		}
	}
	if err := completeAll(ctx, steps...); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches one product by id, completing its image and variant
// connections. A missing product returns (nil, nil).
func (c *Client) Product(
	ctx context.Context,
	id ID,
	opts ...RequestOption,
) (*Product, error) {
	cfg := c.requestConfig(DefaultProductSelection, opts)

	root := newRoot()
	cfg.selector.Select(root, "node", id)

	// The lookup's structural shape does not depend on the selector.
	lookup := root.Field("node").Arg("id", id)
	entity := lookup.On("Product")
	ensureID(entity)
	ensureConnection(entity, "images", cfg.pageSize)
	ensureConnection(entity, "variants", cfg.pageSize)

	raw, err := c.do(ctx, queryOperation, root)
	if err != nil {
		return nil, err
	}

	var out struct {
		Node *productResource `json:"node"`
	}
	if err := decodeData(raw, &out); err != nil {
		return nil, err
	}
	if out.Node == nil {
		return nil, nil
	}
	return c.completeProduct(ctx, *out.Node, entity, cfg.pageSize)
}

// completeProduct walks the product's selected connections to exhaustion,
// concurrently with each other, and rebuilds a Product carrying the flat
// completed collections. The wire value is left alone.
func (c *Client) completeProduct(
	ctx context.Context,
	res productResource,
	selection *Node,
	pageSize int,
) (*Product, error) {
	p := res.Product

	var steps []func(context.Context) error
	if sel := selection.lookup("images", "edges", "node"); sel != nil {
		steps = append(steps, connectionStep(
			c,
			connectionRef{
				parentID:      p.ID,
				typeName:      "Product",
				field:         "images",
				nodeSelection: sel,
				pageSize:      pageSize,
			},
			res.Images,
			func(images []Image) { p.Images = images },
		))
	}
	if sel := selection.lookup("variants", "edges", "node"); sel != nil {
		steps = append(steps, connectionStep(
			c,
			connectionRef{
				parentID:      p.ID,
				typeName:      "Product",
				field:         "variants",
				nodeSelection: sel,
				pageSize:      pageSize,
			},
			res.Variants,
			func(variants []Variant) { p.Variants = variants },
		))
	}

	if err := completeAll(ctx, steps...); err != nil {
		return nil, err
	}
	return &p, nil
}
