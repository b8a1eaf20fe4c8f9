// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package adobe

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tomtom215/adobe-destination/internal/models"
)

// Context data keys carrying the ecommerce payload.
const (
	ProductsKey = "&&products"
	EventsKey   = "&&events"
)

const productSeparator = ",;"

var ecommerceEvents = map[string]string{
	"Product Added":    "scAdd",
	"Product Removed":  "scRemove",
	"Cart Viewed":      "scView",
	"Checkout Started": "scCheckout",
	"Order Completed":  "purchase",
	"Product Viewed":   "prodView",
}

var (
	// ErrMissingIdentifier indicates a product without a usable identifier.
	ErrMissingIdentifier = errors.New("product identifier is required")

	// ErrInvalidProduct indicates a products entry that is not an object,
	// or a products field that is not a list.
	ErrInvalidProduct = errors.New("invalid product")

	// ErrNoProperties indicates an ecommerce event without properties.
	ErrNoProperties = errors.New("ecommerce event has no properties")
)

// EcommerceTag returns the vendor event tag for an ecommerce event name.
func EcommerceTag(eventName string) (string, bool) {
	tag, ok := ecommerceEvents[eventName]
	return tag, ok
}

// FormatProduct renders one product as "category;identifier;quantity;total".
//
// The identifier is read from identifierField. For "id" the product_id
// field is preferred, falling back to id. Quantity defaults to 1 and price to
// 0; the reported total is price times quantity.
func FormatProduct(product models.Map, identifierField string) (string, error) {
	if identifierField == "" {
		identifierField = DefaultProductIdentifier
	}

	var identifier string
	if identifierField == "id" {
		identifier = productText(product, "product_id")
		if identifier == "" {
			identifier = productText(product, "id")
		}
	} else {
		identifier = productText(product, identifierField)
	}
	if identifier == "" {
		return "", fmt.Errorf("%w: field %q", ErrMissingIdentifier, identifierField)
	}

	category := product.StringOr("category", "")

	quantity := 1
	if v, ok := product.Get("quantity"); ok {
		if q, ok := v.Numeric(); ok && q >= 1 && q == math.Trunc(q) && q <= math.MaxInt32 {
			quantity = int(q)
		}
	}

	price := 0.0
	if v, ok := product.Get("price"); ok {
		if p, ok := v.Numeric(); ok {
			price = p
		}
	}
	total := price * float64(quantity)

	return strings.Join([]string{
		category,
		identifier,
		strconv.Itoa(quantity),
		formatTotal(total),
	}, ";"), nil
}

// formatTotal prints the shortest decimal form of total with at least one
// fractional digit, so 10 renders as "10.0".
func formatTotal(total float64) string {
	s := strconv.FormatFloat(total, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// productText reads a string or numeric identifier field.
func productText(product models.Map, key string) string {
	v, ok := product.Get(key)
	if !ok {
		return ""
	}
	switch v.Kind() {
	case models.KindString, models.KindNumber:
		return v.Text()
	default:
		return ""
	}
}

// FormatProducts builds the context bundle of an ecommerce event.
//
// A products list is formatted entry by entry and joined with ",;"; any
// entry that fails formatting fails the whole list. Without a products list
// the properties themselves are formatted as a single product. The result is
// the mapped context bundle with "&&products" and "&&events" merged in.
func FormatProducts(tag string, properties, context, topLevel models.Map, settings Settings) (models.Map, error) {
	if properties.IsEmpty() {
		return nil, ErrNoProperties
	}

	var formatted string
	if raw, ok := properties.Get("products"); ok && !raw.IsNull() {
		items, ok := raw.AsList()
		if !ok {
			return nil, fmt.Errorf("%w: products is a %s", ErrInvalidProduct, raw.Kind())
		}
		parts := make([]string, 0, len(items))
		for i, item := range items {
			product, ok := item.AsMap()
			if !ok {
				return nil, fmt.Errorf("%w: products[%d] is a %s", ErrInvalidProduct, i, item.Kind())
			}
			s, err := FormatProduct(product, settings.ProductIdentifier)
			if err != nil {
				return nil, fmt.Errorf("products[%d]: %w", i, err)
			}
			parts = append(parts, s)
		}
		formatted = strings.Join(parts, productSeparator)
	} else {
		s, err := FormatProduct(properties, settings.ProductIdentifier)
		if err != nil {
			return nil, err
		}
		formatted = s
	}

	bundle := MapContext(properties, context, topLevel, settings.ContextValues)
	if bundle == nil {
		bundle = models.Map{}
	}
	bundle[EventsKey] = models.String(tag)
	bundle[ProductsKey] = models.String(formatted)
	return bundle, nil
}
