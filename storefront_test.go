package storefront_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	storefront "github.com/llehouerou/go-storefront-client"
)

// localRoundTripper is an http.RoundTripper that executes HTTP transactions
// by using handler directly, instead of going over an HTTP connection.
type localRoundTripper struct {
	handler http.Handler
}

func (l localRoundTripper) RoundTrip(
	req *http.Request,
) (*http.Response, error) {
	w := httptest.NewRecorder()
	l.handler.ServeHTTP(w, req)
	return w.Result(), nil
}

// newTestClient wires a client to an in-process GraphQL handler. The
// handler receives the raw document of each dispatched request.
func newTestClient(handler func(w http.ResponseWriter, query string)) *storefront.Client {
	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, req *http.Request) {
		var in struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		handler(w, in.Query)
	})
	return storefront.NewClient(
		"/graphql",
		&http.Client{Transport: localRoundTripper{handler: mux}},
	)
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"data": data}); err != nil {
		panic(err)
	}
}

// connectionJSON builds the wire form of one connection page.
func connectionJSON(edges []any, hasNext bool, endCursor string) map[string]any {
	pageInfo := map[string]any{"hasNextPage": hasNext}
	if endCursor != "" {
		pageInfo["endCursor"] = endCursor
	}
	return map[string]any{"edges": edges, "pageInfo": pageInfo}
}

// imagePage builds count image edges numbered from start.
func imagePage(start, count int, hasNext bool) map[string]any {
	edges := make([]any, count)
	for i := 0; i < count; i++ {
		n := start + i
		edges[i] = map[string]any{
			"cursor": fmt.Sprintf("img-%d", n),
			"node": map[string]any{
				"id":  fmt.Sprintf("gid://shopify/ProductImage/%d", n),
				"src": fmt.Sprintf("https://cdn.example.com/img-%d.png", n),
			},
		}
	}
	return connectionJSON(edges, hasNext, fmt.Sprintf("img-%d", start+count-1))
}

func variantPage(start, count int, hasNext bool) map[string]any {
	edges := make([]any, count)
	for i := 0; i < count; i++ {
		n := start + i
		edges[i] = map[string]any{
			"cursor": fmt.Sprintf("var-%d", n),
			"node": map[string]any{
				"id":    fmt.Sprintf("gid://shopify/ProductVariant/%d", n),
				"title": fmt.Sprintf("Variant %d", n),
				"price": map[string]any{"amount": "10.00", "currencyCode": "EUR"},
			},
		}
	}
	return connectionJSON(edges, hasNext, fmt.Sprintf("var-%d", start+count-1))
}

func lineItemPage(start, count int, hasNext bool) map[string]any {
	edges := make([]any, count)
	for i := 0; i < count; i++ {
		n := start + i
		edges[i] = map[string]any{
			"cursor": fmt.Sprintf("li-%d", n),
			"node": map[string]any{
				"id":       fmt.Sprintf("gid://shopify/CheckoutLineItem/%d", n),
				"title":    fmt.Sprintf("Item %d", n),
				"quantity": 1,
			},
		}
	}
	return connectionJSON(edges, hasNext, fmt.Sprintf("li-%d", start+count-1))
}

func TestShop(t *testing.T) {
	client := newTestClient(func(w http.ResponseWriter, query string) {
		want := "{shop{name,description,moneyFormat,primaryDomain{host,sslEnabled,url}}}"
		if query != want {
			t.Errorf("got query %q, want %q", query, want)
		}
		writeData(w, map[string]any{
			"shop": map[string]any{
				"name":        "Snowdevil",
				"description": "The best boards",
				"moneyFormat": "${{amount}}",
				"primaryDomain": map[string]any{
					"host":       "snowdevil.example.com",
					"sslEnabled": true,
					"url":        "https://snowdevil.example.com",
				},
			},
		})
	})

	shop, err := client.Shop(context.Background())
	if err != nil {
		t.Fatalf("Shop: %v", err)
	}

	want := &storefront.Shop{
		Name:        "Snowdevil",
		Description: "The best boards",
		MoneyFormat: "${{amount}}",
		PrimaryDomain: storefront.Domain{
			Host:       "snowdevil.example.com",
			SSLEnabled: true,
			URL:        "https://snowdevil.example.com",
		},
	}
	if diff := cmp.Diff(want, shop); diff != "" {
		t.Errorf("shop mismatch (-want +got):\n%s", diff)
	}
}

func TestShopPolicies(t *testing.T) {
	client := newTestClient(func(w http.ResponseWriter, query string) {
		for _, field := range []string{"privacyPolicy", "termsOfService", "refundPolicy"} {
			if !strings.Contains(query, field) {
				t.Errorf("query %q misses %q", query, field)
			}
		}
		writeData(w, map[string]any{
			"shop": map[string]any{
				"privacyPolicy": map[string]any{
					"id":    "gid://shopify/ShopPolicy/1",
					"title": "Privacy policy",
					"url":   "https://snowdevil.example.com/policies/privacy",
					"body":  "We keep your data.",
				},
				"termsOfService": nil,
				"refundPolicy": map[string]any{
					"id":    "gid://shopify/ShopPolicy/2",
					"title": "Refund policy",
					"url":   "https://snowdevil.example.com/policies/refund",
					"body":  "No refunds on snow.",
				},
			},
		})
	})

	policies, err := client.ShopPolicies(context.Background())
	if err != nil {
		t.Fatalf("ShopPolicies: %v", err)
	}
	if policies.PrivacyPolicy == nil || policies.PrivacyPolicy.Title != "Privacy policy" {
		t.Errorf("got privacy policy %+v, want title %q", policies.PrivacyPolicy, "Privacy policy")
	}
	if policies.TermsOfService != nil {
		t.Errorf("got terms of service %+v, want nil", policies.TermsOfService)
	}
	if policies.RefundPolicy == nil || policies.RefundPolicy.ID != "gid://shopify/ShopPolicy/2" {
		t.Errorf("got refund policy %+v, want id %q", policies.RefundPolicy, "gid://shopify/ShopPolicy/2")
	}
}

// Product A has three pages of images (250, 250, 10) and a single page of
// variants (5). The completed product must carry exactly 510 images and 5
// variants, concatenated in page order.
func TestProducts_completesConnections(t *testing.T) {
	productA := map[string]any{
		"id":        "gid://shopify/Product/A",
		"handle":    "board",
		"title":     "Board",
		"createdAt": "2024-01-02T03:04:05Z",
		"images":    imagePage(1, 250, true),
		"variants":  variantPage(1, 5, false),
	}

	client := newTestClient(func(w http.ResponseWriter, query string) {
		switch {
		case strings.Contains(query, "products("):
			edges := []any{map[string]any{"cursor": "p-1", "node": productA}}
			writeData(w, map[string]any{
				"products": connectionJSON(edges, false, "p-1"),
			})
		case strings.Contains(query, `images(first:250,after:"img-250")`):
			writeData(w, map[string]any{
				"node": map[string]any{"images": imagePage(251, 250, true)},
			})
		case strings.Contains(query, `images(first:250,after:"img-500")`):
			writeData(w, map[string]any{
				"node": map[string]any{"images": imagePage(501, 10, false)},
			})
		default:
			t.Errorf("unexpected query %q", query)
			http.Error(w, "unexpected query", http.StatusBadRequest)
		}
	})

	products, err := client.Products(context.Background())
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if got, want := len(products), 1; got != want {
		t.Fatalf("got %d products, want %d", got, want)
	}

	p := products[0]
	if got, want := len(p.Images), 510; got != want {
		t.Fatalf("got %d images, want %d", got, want)
	}
	if got, want := len(p.Variants), 5; got != want {
		t.Fatalf("got %d variants, want %d", got, want)
	}

	// page-fetch order, pages concatenated in cursor order
	for i, img := range p.Images {
		want := storefront.ID(fmt.Sprintf("gid://shopify/ProductImage/%d", i+1))
		if img.ID != want {
			t.Fatalf("image %d: got id %q, want %q", i, img.ID, want)
		}
	}
	wantTitles := []string{"Variant 1", "Variant 2", "Variant 3", "Variant 4", "Variant 5"}
	var gotTitles []string
	for _, v := range p.Variants {
		gotTitles = append(gotTitles, v.Title)
	}
	if diff := cmp.Diff(wantTitles, gotTitles); diff != "" {
		t.Errorf("variant order mismatch (-want +got):\n%s", diff)
	}
}

func TestProducts_pageFailureFailsTheCall(t *testing.T) {
	productA := map[string]any{
		"id":     "gid://shopify/Product/A",
		"title":  "Board",
		"images": imagePage(1, 2, true),
	}

	client := newTestClient(func(w http.ResponseWriter, query string) {
		switch {
		case strings.Contains(query, "products("):
			edges := []any{map[string]any{"cursor": "p-1", "node": productA}}
			writeData(w, map[string]any{
				"products": connectionJSON(edges, false, "p-1"),
			})
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	})

	_, err := client.Products(context.Background())
	if err == nil {
		t.Fatal("got error: nil, want: non-nil")
	}
}

func TestProduct_byID(t *testing.T) {
	client := newTestClient(func(w http.ResponseWriter, query string) {
		switch {
		case strings.Contains(query, `node(id:"gid://shopify/Product/A")`) &&
			strings.Contains(query, "... on Product") &&
			!strings.Contains(query, "after:"):
			writeData(w, map[string]any{
				"node": map[string]any{
					"id":       "gid://shopify/Product/A",
					"title":    "Board",
					"images":   imagePage(1, 3, false),
					"variants": variantPage(1, 2, false),
				},
			})
		default:
			t.Errorf("unexpected query %q", query)
			http.Error(w, "unexpected query", http.StatusBadRequest)
		}
	})

	p, err := client.Product(context.Background(), "gid://shopify/Product/A")
	if err != nil {
		t.Fatalf("Product: %v", err)
	}
	if p == nil {
		t.Fatal("got nil product")
	}
	if got, want := len(p.Images), 3; got != want {
		t.Errorf("got %d images, want %d", got, want)
	}
	if got, want := len(p.Variants), 2; got != want {
		t.Errorf("got %d variants, want %d", got, want)
	}
}

func TestProduct_notFound(t *testing.T) {
	client := newTestClient(func(w http.ResponseWriter, query string) {
		writeData(w, map[string]any{"node": nil})
	})

	p, err := client.Product(context.Background(), "gid://shopify/Product/missing")
	if err != nil {
		t.Fatalf("Product: %v", err)
	}
	if p != nil {
		t.Errorf("got product %+v, want nil", p)
	}
}

func TestCollections(t *testing.T) {
	client := newTestClient(func(w http.ResponseWriter, query string) {
		if !strings.Contains(query, "collections(first:250)") {
			t.Errorf("got query %q, want a collections query", query)
		}
		edges := []any{
			map[string]any{"cursor": "c-1", "node": map[string]any{
				"id":     "gid://shopify/Collection/1",
				"handle": "frontpage",
				"title":  "Frontpage",
			}},
			map[string]any{"cursor": "c-2", "node": map[string]any{
				"id":     "gid://shopify/Collection/2",
				"handle": "sale",
				"title":  "Sale",
			}},
		}
		writeData(w, map[string]any{
			"collections": connectionJSON(edges, false, "c-2"),
		})
	})

	collections, err := client.Collections(context.Background())
	if err != nil {
		t.Fatalf("Collections: %v", err)
	}
	if got, want := len(collections), 2; got != want {
		t.Fatalf("got %d collections, want %d", got, want)
	}
	if got, want := collections[1].Handle, "sale"; got != want {
		t.Errorf("got handle %q, want %q", got, want)
	}
}

func TestCollection_byID(t *testing.T) {
	client := newTestClient(func(w http.ResponseWriter, query string) {
		if !strings.Contains(query, `node(id:"gid://shopify/Collection/1")`) {
			t.Errorf("got query %q, want a node lookup", query)
		}
		writeData(w, map[string]any{
			"node": map[string]any{
				"id":    "gid://shopify/Collection/1",
				"title": "Frontpage",
			},
		})
	})

	collection, err := client.Collection(context.Background(), "gid://shopify/Collection/1")
	if err != nil {
		t.Fatalf("Collection: %v", err)
	}
	if collection == nil || collection.Title != "Frontpage" {
		t.Errorf("got collection %+v, want title %q", collection, "Frontpage")
	}
}

func TestCreateCheckout_rejectedMutation(t *testing.T) {
	client := newTestClient(func(w http.ResponseWriter, query string) {
		if strings.Contains(query, "node(") {
			t.Errorf("pagination ran for a rejected mutation: %q", query)
		}
		writeData(w, map[string]any{
			"checkoutCreate": map[string]any{
				"checkout": nil,
				"userErrors": []any{map[string]any{
					"message": "Variant is invalid",
					"field":   []string{"lineItems", "0", "variantId"},
				}},
			},
		})
	})

	checkout, err := client.CreateCheckout(context.Background(), storefront.CheckoutCreateInput{
		LineItems: []storefront.LineItemInput{
			{VariantID: "gid://shopify/ProductVariant/bogus", Quantity: 1},
		},
	})
	if err == nil {
		t.Fatal("got error: nil, want: non-nil")
	}
	if checkout != nil {
		t.Errorf("got checkout %+v, want nil", checkout)
	}

	var rejected *storefront.MutationRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("got error type %T, want *MutationRejectedError", err)
	}
	want := []storefront.UserError{{
		Field:   []string{"lineItems", "0", "variantId"},
		Message: "Variant is invalid",
	}}
	if diff := cmp.Diff(want, rejected.UserErrors); diff != "" {
		t.Errorf("user errors mismatch (-want +got):\n%s", diff)
	}
}

// A checkout whose line items span two pages (250 and 3) must resolve
// with exactly 253 line items in page order.
func TestAddLineItems_completesLineItems(t *testing.T) {
	client := newTestClient(func(w http.ResponseWriter, query string) {
		switch {
		case strings.Contains(query, "checkoutLineItemsAdd("):
			if !strings.HasPrefix(query, "mutation") {
				t.Errorf("got query %q, want a mutation document", query)
			}
			if !strings.Contains(query, "userErrors{field,message}") {
				t.Errorf("query %q misses the guard selection", query)
			}
			writeData(w, map[string]any{
				"checkoutLineItemsAdd": map[string]any{
					"checkout": map[string]any{
						"id":        "gid://shopify/Checkout/X",
						"webUrl":    "https://snowdevil.example.com/checkout/X",
						"lineItems": lineItemPage(1, 250, true),
					},
					"userErrors": []any{},
				},
			})
		case strings.Contains(query, `node(id:"gid://shopify/Checkout/X")`) &&
			strings.Contains(query, `lineItems(first:250,after:"li-250")`):
			writeData(w, map[string]any{
				"node": map[string]any{"lineItems": lineItemPage(251, 3, false)},
			})
		default:
			t.Errorf("unexpected query %q", query)
			http.Error(w, "unexpected query", http.StatusBadRequest)
		}
	})

	checkout, err := client.AddLineItems(
		context.Background(),
		"gid://shopify/Checkout/X",
		[]storefront.LineItemInput{
			{VariantID: "gid://shopify/ProductVariant/2", Quantity: 1},
		},
	)
	if err != nil {
		t.Fatalf("AddLineItems: %v", err)
	}
	if got, want := len(checkout.LineItems), 253; got != want {
		t.Fatalf("got %d line items, want %d", got, want)
	}
	if got, want := checkout.LineItems[0].Title, "Item 1"; got != want {
		t.Errorf("got first item %q, want %q", got, want)
	}
	if got, want := checkout.LineItems[252].Title, "Item 253"; got != want {
		t.Errorf("got last item %q, want %q", got, want)
	}
}

// A line-item page failing after the mutation itself succeeded must fail
// the whole call; no partially completed checkout is returned.
func TestAddLineItems_pageFailureFailsTheCall(t *testing.T) {
	client := newTestClient(func(w http.ResponseWriter, query string) {
		switch {
		case strings.Contains(query, "checkoutLineItemsAdd("):
			writeData(w, map[string]any{
				"checkoutLineItemsAdd": map[string]any{
					"checkout": map[string]any{
						"id":        "gid://shopify/Checkout/X",
						"webUrl":    "https://snowdevil.example.com/checkout/X",
						"lineItems": lineItemPage(1, 250, true),
					},
					"userErrors": []any{},
				},
			})
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	})

	checkout, err := client.AddLineItems(
		context.Background(),
		"gid://shopify/Checkout/X",
		[]storefront.LineItemInput{
			{VariantID: "gid://shopify/ProductVariant/2", Quantity: 1},
		},
	)
	if err == nil {
		t.Fatal("got error: nil, want: non-nil")
	}
	if checkout != nil {
		t.Errorf("got checkout %+v, want nil", checkout)
	}
}

// A custom selection never disables the guard, and connections the
// selection leaves out are not completed.
func TestCreateCheckout_customSelection(t *testing.T) {
	var sent string
	client := newTestClient(func(w http.ResponseWriter, query string) {
		sent = query
		writeData(w, map[string]any{
			"checkoutCreate": map[string]any{
				"checkout": map[string]any{
					"id":     "gid://shopify/Checkout/Y",
					"webUrl": "https://snowdevil.example.com/checkout/Y",
				},
				"userErrors": []any{},
			},
		})
	})

	slim := storefront.SelectorFunc(func(parent *storefront.Node, field string, _ storefront.ID) {
		parent.Field(field).Fields("id", "webUrl")
	})
	checkout, err := client.CreateCheckout(
		context.Background(),
		storefront.CheckoutCreateInput{},
		storefront.WithSelection(slim),
	)
	if err != nil {
		t.Fatalf("CreateCheckout: %v", err)
	}
	if !strings.Contains(sent, "userErrors{field,message}") {
		t.Errorf("query %q misses the guard selection", sent)
	}
	if strings.Contains(sent, "lineItems") {
		t.Errorf("query %q selects line items the selector left out", sent)
	}
	if len(checkout.LineItems) != 0 {
		t.Errorf("got %d line items, want 0", len(checkout.LineItems))
	}
}

func TestGraphQLErrorsSurface(t *testing.T) {
	client := newTestClient(func(w http.ResponseWriter, query string) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": null,
			"errors": [{"message": "Field 'bogus' doesn't exist on type 'Shop'"}]
		}`))
	})

	_, err := client.Shop(context.Background())
	if err == nil {
		t.Fatal("got error: nil, want: non-nil")
	}
	var gqlErrs storefront.Errors
	if !errors.As(err, &gqlErrs) {
		t.Fatalf("got error type %T, want Errors", err)
	}
	if got, want := gqlErrs[0].Message, "Field 'bogus' doesn't exist on type 'Shop'"; got != want {
		t.Errorf("got message %q, want %q", got, want)
	}
}

// With debug enabled, a failure carries the request and response bodies
// in the error's internal extensions; without it, neither is attached.
func TestWithDebug_decoratesGraphQLErrors(t *testing.T) {
	failingClient := func() *storefront.Client {
		return newTestClient(func(w http.ResponseWriter, query string) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"boom"}]}`))
		})
	}

	t.Run("enabled carries both bodies", func(t *testing.T) {
		_, err := failingClient().WithDebug(true).Shop(context.Background())
		if err == nil {
			t.Fatal("got error: nil, want: non-nil")
		}
		var errs storefront.Errors
		if !errors.As(err, &errs) {
			t.Fatalf("got error type %T, want Errors", err)
		}
		internal, ok := errs[0].Extensions["internal"].(map[string]any)
		if !ok {
			t.Fatal("got no internal extensions, want request and response info")
		}
		reqInfo, ok := internal["request"].(map[string]any)
		if !ok {
			t.Fatal("got no request info in internal extensions")
		}
		if body, _ := reqInfo["body"].(string); !strings.Contains(body, "{shop{") {
			t.Errorf("request body %q misses the dispatched document", body)
		}
		respInfo, ok := internal["response"].(map[string]any)
		if !ok {
			t.Fatal("got no response info in internal extensions")
		}
		if body, _ := respInfo["body"].(string); !strings.Contains(body, "boom") {
			t.Errorf("response body %q misses the server error", body)
		}
	})

	t.Run("disabled carries neither", func(t *testing.T) {
		_, err := failingClient().Shop(context.Background())
		if err == nil {
			t.Fatal("got error: nil, want: non-nil")
		}
		var errs storefront.Errors
		if !errors.As(err, &errs) {
			t.Fatalf("got error type %T, want Errors", err)
		}
		if internal, ok := errs[0].Extensions["internal"]; ok {
			t.Errorf("got internal extensions %v without debug mode, want none", internal)
		}
	})
}

// Transport failures report their code through GetCode whether or not
// debug mode is on; only debug mode attaches the request body.
func TestWithDebug_transportError(t *testing.T) {
	serverDown := func(w http.ResponseWriter, query string) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}

	t.Run("enabled carries the request body", func(t *testing.T) {
		_, err := newTestClient(serverDown).WithDebug(true).Shop(context.Background())
		if err == nil {
			t.Fatal("got error: nil, want: non-nil")
		}
		var errs storefront.Errors
		if !errors.As(err, &errs) {
			t.Fatalf("got error type %T, want Errors", err)
		}
		if got, want := errs[0].GetCode(), storefront.ErrRequestError; got != want {
			t.Errorf("got code %q, want %q", got, want)
		}
		internal, ok := errs[0].Extensions["internal"].(map[string]any)
		if !ok {
			t.Fatal("got no internal extensions, want request info")
		}
		reqInfo, ok := internal["request"].(map[string]any)
		if !ok {
			t.Fatal("got no request info in internal extensions")
		}
		if body, _ := reqInfo["body"].(string); !strings.Contains(body, "{shop{") {
			t.Errorf("request body %q misses the dispatched document", body)
		}
	})

	t.Run("disabled carries only the code", func(t *testing.T) {
		_, err := newTestClient(serverDown).Shop(context.Background())
		if err == nil {
			t.Fatal("got error: nil, want: non-nil")
		}
		var errs storefront.Errors
		if !errors.As(err, &errs) {
			t.Fatalf("got error type %T, want Errors", err)
		}
		if got, want := errs[0].GetCode(), storefront.ErrRequestError; got != want {
			t.Errorf("got code %q, want %q", got, want)
		}
		if internal, ok := errs[0].Extensions["internal"]; ok {
			t.Errorf("got internal extensions %v without debug mode, want none", internal)
		}
	})
}

func TestRequestModifierSetsHeaders(t *testing.T) {
	var token, requestID string
	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, req *http.Request) {
		token = req.Header.Get("X-Shopify-Storefront-Access-Token")
		requestID = req.Header.Get("X-Request-ID")
		writeData(w, map[string]any{"shop": map[string]any{"name": "Snowdevil"}})
	})

	client := storefront.NewClient(
		"/graphql",
		&http.Client{Transport: localRoundTripper{handler: mux}},
	).WithRequestModifier(func(req *http.Request) {
		req.Header.Set("X-Shopify-Storefront-Access-Token", "secret")
	})

	if _, err := client.Shop(context.Background()); err != nil {
		t.Fatalf("Shop: %v", err)
	}
	if got, want := token, "secret"; got != want {
		t.Errorf("got token %q, want %q", got, want)
	}
	if requestID == "" {
		t.Error("got empty X-Request-ID, want a generated id")
	}
}
