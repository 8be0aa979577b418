package storefront

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultPageSize is the number of entities requested per connection page
// when the client or the call does not override it.
const DefaultPageSize = 250

// PageInfo is a connection's continuation metadata.
type PageInfo struct {
	HasNextPage bool    `json:"hasNextPage"`
	EndCursor   *string `json:"endCursor"`
}

// Edge wraps one node of a connection page together with its cursor.
type Edge[T any] struct {
	Cursor string `json:"cursor"`
	Node   T      `json:"node"`
}

// Connection is the paged wire representation of an ordered sequence of
// entities.
type Connection[T any] struct {
	Edges    []Edge[T] `json:"edges"`
	PageInfo PageInfo  `json:"pageInfo"`
}

func (c Connection[T]) nodes() []T {
	if len(c.Edges) == 0 {
		return nil
	}
	out := make([]T, len(c.Edges))
	for i, e := range c.Edges {
		out[i] = e.Node
	}
	return out
}

// nextCursor returns the cursor the next page request must pass. The page
// info's end cursor wins; older servers only set edge cursors.
func (c Connection[T]) nextCursor() string {
	if c.PageInfo.EndCursor != nil && *c.PageInfo.EndCursor != "" {
		return *c.PageInfo.EndCursor
	}
	if len(c.Edges) > 0 {
		return c.Edges[len(c.Edges)-1].Cursor
	}
	return ""
}

// connectionRef locates one connection of one entity so further pages can
// be fetched through the node(id:) root field.
type connectionRef struct {
	parentID ID
	typeName string // type condition of the parent entity, e.g. "Product"
	field    string // connection field name, e.g. "images"
	// nodeSelection is the edges.node subtree of the original request;
	// later pages graft a clone of it so every page selects the same
	// fields.
	nodeSelection *Node
	pageSize      int
}

// completeAll runs completion steps concurrently and joins all of them,
// propagating the first failure. Sibling steps are not cancelled mid-page;
// their in-flight fetches finish or fail on their own and their results
// are discarded.
func completeAll(ctx context.Context, steps ...func(context.Context) error) error {
	if len(steps) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, step := range steps {
		step := step
		g.Go(func() error {
			return step(gctx)
		})
	}
	return g.Wait()
}

// fetchAllPages walks conn to exhaustion and returns the concatenation of
// every page's nodes in page-fetch order. Pages are fetched strictly
// sequentially: the next request needs the cursor the current page
// yields. Any page failure discards the partial walk.
func fetchAllPages[T any](
	ctx context.Context,
	c *Client,
	ref connectionRef,
	conn Connection[T],
) ([]T, error) {
	nodes := conn.nodes()
	info := conn.PageInfo
	cursor := conn.nextCursor()

	for info.HasNextPage {
		if cursor == "" {
			return nil, newSimpleErrors(
				ErrGraphQLDecode,
				fmt.Errorf(
					"connection %q reports another page but no cursor",
					ref.field,
				),
			)
		}
		page, err := fetchConnectionPage[T](ctx, c, ref, cursor)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, page.nodes()...)
		info = page.PageInfo
		cursor = page.nextCursor()
	}

	return nodes, nil
}

// fetchConnectionPage requests one page of ref's connection after the
// given cursor, selecting the same node fields as the original request.
func fetchConnectionPage[T any](
	ctx context.Context,
	c *Client,
	ref connectionRef,
	cursor string,
) (Connection[T], error) {
	var page Connection[T]

	root := newRoot()
	parent := root.Field("node").Arg("id", ref.parentID)
	frag := parent.On(ref.typeName)
	conn := frag.Field(ref.field).
		Arg("first", ref.pageSize).
		Arg("after", cursor)
	conn.Field("pageInfo").Fields("hasNextPage", "endCursor")
	edges := conn.Field("edges")
	edges.Field("cursor")
	edges.graft("node", ref.nodeSelection)

	raw, err := c.do(ctx, queryOperation, root)
	if err != nil {
		return page, err
	}

	var out struct {
		Node map[string]json.RawMessage `json:"node"`
	}
	if err := decodeData(raw, &out); err != nil {
		return page, err
	}
	connData, ok := out.Node[ref.field]
	if !ok {
		return page, newSimpleErrors(
			ErrGraphQLDecode,
			fmt.Errorf("page response misses connection %q", ref.field),
		)
	}
	if err := decodeData(connData, &page); err != nil {
		return page, err
	}
	return page, nil
}

// ensureConnection guarantees the structural plumbing of a selected
// connection regardless of what the selector chose: page info, edge
// cursors, and the page size argument. A connection the selector did not
// select at all is left out and will not be completed.
func ensureConnection(entity *Node, field string, pageSize int) {
	if entity == nil || entity.lookup(field) == nil {
		return
	}
	entity.ConnectionField(field)
	entity.lookup(field).Arg("first", pageSize)
}

// ensureID guarantees the entity selects its id, which the pagination
// engine needs to refetch the entity's connections through node(id:).
func ensureID(entity *Node) {
	if entity != nil {
		entity.Field("id")
	}
}

// connectionStep builds one completion step: walk the connection held in
// conn and store the flat result through assign. Used by the entity
// fetchers to complete sibling connections concurrently.
func connectionStep[T any](
	c *Client,
	ref connectionRef,
	conn Connection[T],
	assign func([]T),
) func(context.Context) error {
	return func(ctx context.Context) error {
		nodes, err := fetchAllPages(ctx, c, ref, conn)
		if err != nil {
			return err
		}
		assign(nodes)
		return nil
	}
}
