package domain

import "github.com/shopspring/decimal"

const MaxProductTags = 3

type Vendor struct {
	ID     string
	Name   string
	Region string
	// Score is the average line rating across the vendor's products, nil until something is rated.
	Score *float64
}

type Customer struct {
	ID              string
	ContactNumber   string
	ShippingAddress string
}

type Product struct {
	ID        string
	VendorID  string
	Name      string
	Price     decimal.Decimal
	Tags      []string
	Inventory int
}

func (p Product) InStock() bool {
	return p.Inventory > 0
}

// NormalizeTags keeps the first MaxProductTags non-empty tags.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, MaxProductTags)
	for _, t := range tags {
		if t == "" {
			continue
		}
		out = append(out, t)
		if len(out) == MaxProductTags {
			break
		}
	}
	return out
}
