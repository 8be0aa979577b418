package storefront

import "time"

// ID represents the opaque identifier the storefront API assigns to every
// addressable entity.
type ID string

// MoneyV2 is a monetary amount with its currency. Amount is a decimal
// serialized as a string to avoid float rounding.
type MoneyV2 struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// Domain is a shop's web presence.
type Domain struct {
	Host       string `json:"host"`
	SSLEnabled bool   `json:"sslEnabled"`
	URL        string `json:"url"`
}

// Shop holds storefront-level metadata.
type Shop struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	MoneyFormat   string `json:"moneyFormat"`
	PrimaryDomain Domain `json:"primaryDomain"`
}

// Policy is one of the shop's legal policies.
type Policy struct {
	ID    ID     `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Body  string `json:"body"`
}

// ShopPolicies groups the shop's legal policies. A policy the shop has not
// configured is nil.
type ShopPolicies struct {
	PrivacyPolicy  *Policy `json:"privacyPolicy"`
	TermsOfService *Policy `json:"termsOfService"`
	RefundPolicy   *Policy `json:"refundPolicy"`
}

// Image is a product or collection image.
type Image struct {
	ID      ID      `json:"id"`
	Src     string  `json:"src"`
	AltText *string `json:"altText"`
	Width   *int    `json:"width"`
	Height  *int    `json:"height"`
}

// SelectedOption is one option choice a variant represents.
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Variant is a purchasable version of a product.
type Variant struct {
	ID               ID               `json:"id"`
	Title            string           `json:"title"`
	Price            MoneyV2          `json:"price"`
	SKU              string           `json:"sku"`
	AvailableForSale bool             `json:"availableForSale"`
	Weight           *float64         `json:"weight"`
	SelectedOptions  []SelectedOption `json:"selectedOptions"`
	Image            *Image           `json:"image"`
}

// ProductOption is a customizable product dimension (size, color, ...).
type ProductOption struct {
	ID     ID       `json:"id"`
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Product is a catalog product with its connections fully completed:
// Images and Variants contain every page's nodes in page-fetch order, with
// no paging metadata.
type Product struct {
	ID              ID              `json:"id"`
	Handle          string          `json:"handle"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	DescriptionHTML string          `json:"descriptionHtml"`
	ProductType     string          `json:"productType"`
	Vendor          string          `json:"vendor"`
	PublishedAt     time.Time       `json:"publishedAt"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	OnlineStoreURL  *string         `json:"onlineStoreUrl"`
	Options         []ProductOption `json:"options"`

	Images   []Image   `json:"-"`
	Variants []Variant `json:"-"`
}

// productResource is the wire form of a product: scalar fields plus the
// paged connections as the server returns them. Completion rebuilds it
// into a Product.
type productResource struct {
	Product
	Images   Connection[Image]   `json:"images"`
	Variants Connection[Variant] `json:"variants"`
}

// Collection is a curated group of products. This surface selects no paged
// sub-resources on collections, so no completion applies.
type Collection struct {
	ID              ID        `json:"id"`
	Handle          string    `json:"handle"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DescriptionHTML string    `json:"descriptionHtml"`
	UpdatedAt       time.Time `json:"updatedAt"`
	Image           *Image    `json:"image"`
}

// Attribute is a key/value annotation on a checkout or line item.
type Attribute struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

// LineItem is one entry of a checkout.
type LineItem struct {
	ID               ID          `json:"id"`
	Title            string      `json:"title"`
	Quantity         int         `json:"quantity"`
	Variant          *Variant    `json:"variant"`
	CustomAttributes []Attribute `json:"customAttributes"`
}

// Checkout is an in-progress order with its line-item connection fully
// completed.
type Checkout struct {
	ID               ID          `json:"id"`
	Ready            bool        `json:"ready"`
	RequiresShipping bool        `json:"requiresShipping"`
	Note             *string     `json:"note"`
	Email            *string     `json:"email"`
	CustomAttributes []Attribute `json:"customAttributes"`
	WebURL           string      `json:"webUrl"`
	OrderStatusURL   *string     `json:"orderStatusUrl"`
	CurrencyCode     string      `json:"currencyCode"`
	TaxExempt        bool        `json:"taxExempt"`
	TaxesIncluded    bool        `json:"taxesIncluded"`
	PaymentDue       MoneyV2     `json:"paymentDue"`
	TotalTax         MoneyV2     `json:"totalTax"`
	SubtotalPrice    MoneyV2     `json:"subtotalPrice"`
	TotalPrice       MoneyV2     `json:"totalPrice"`
	CompletedAt      *time.Time  `json:"completedAt"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`

	LineItems []LineItem `json:"-"`
}

// checkoutResource is the wire form of a checkout.
type checkoutResource struct {
	Checkout
	LineItems Connection[LineItem] `json:"lineItems"`
}

// AttributeInput sets a custom attribute.
type AttributeInput struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// LineItemInput adds a quantity of one variant to a checkout.
type LineItemInput struct {
	VariantID        ID               `json:"variantId"`
	Quantity         int              `json:"quantity"`
	CustomAttributes []AttributeInput `json:"customAttributes,omitempty"`
}

// MailingAddressInput is a shipping address for checkout creation.
type MailingAddressInput struct {
	Address1  *string `json:"address1,omitempty"`
	Address2  *string `json:"address2,omitempty"`
	City      *string `json:"city,omitempty"`
	Company   *string `json:"company,omitempty"`
	Country   *string `json:"country,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Province  *string `json:"province,omitempty"`
	Zip       *string `json:"zip,omitempty"`
}

// CheckoutCreateInput is the input of the checkoutCreate mutation.
type CheckoutCreateInput struct {
	Email                 *string              `json:"email,omitempty"`
	LineItems             []LineItemInput      `json:"lineItems,omitempty"`
	ShippingAddress       *MailingAddressInput `json:"shippingAddress,omitempty"`
	Note                  *string              `json:"note,omitempty"`
	CustomAttributes      []AttributeInput     `json:"customAttributes,omitempty"`
	AllowPartialAddresses *bool                `json:"allowPartialAddresses,omitempty"`
}
