package domain

import "fmt"

const maxSKULength = 64

// SKU identifies a product in the catalog.
type SKU string

func ToSKU(s string) (SKU, error) {
	if s == "" || len(s) > maxSKULength {
		return "", fmt.Errorf("sku[%s]: %w", s, ErrInvalidSKU)
	}

	return SKU(s), nil
}

func (s SKU) String() string {
	return string(s)
}
