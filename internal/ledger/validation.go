package ledger

import (
	"regexp"
	"strings"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
)

// OrderLine is one requested line of an order.
type OrderLine struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

// Upper bounds on requested lines. Quantities are summed per product size
// and subtracted from stock, so they must stay far from int overflow.
const (
	MaxLineQuantity = 10_000
	MaxOrderLines   = 200
)

var mobilePattern = regexp.MustCompile(`^59\d{7}$`)

// NormalizeWhatsApp accepts local and international forms of a Palestinian
// mobile number ("059 1234567", "+970591234567", "00970591234567") and
// returns it in local form, "0591234567".
func NormalizeWhatsApp(raw string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)

	digits = strings.TrimPrefix(digits, "00")
	digits = strings.TrimPrefix(digits, "970")
	digits = strings.TrimPrefix(digits, "0")

	if !mobilePattern.MatchString(digits) {
		return "", invalidInput("whatsapp number %q is not a valid mobile number", raw)
	}
	return "0" + digits, nil
}

func validateCustomer(c domain.Customer) (domain.Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.FullAddress = strings.TrimSpace(c.FullAddress)
	c.City = strings.TrimSpace(c.City)
	c.Town = strings.TrimSpace(c.Town)

	switch {
	case c.Name == "":
		return c, invalidInput("customer name is required")
	case c.FullAddress == "":
		return c, invalidInput("full address is required")
	case c.City == "":
		return c, invalidInput("city is required")
	case c.Town == "":
		return c, invalidInput("town is required")
	}

	phone, err := NormalizeWhatsApp(c.WhatsApp)
	if err != nil {
		return c, err
	}
	c.WhatsApp = phone
	return c, nil
}

// validateLines checks requested lines. With allowZero, zero-quantity lines
// are accepted and dropped from the result.
func validateLines(lines []OrderLine, allowZero bool) ([]OrderLine, error) {
	if len(lines) > MaxOrderLines {
		return nil, invalidInput("order has %d items, at most %d allowed", len(lines), MaxOrderLines)
	}
	out := make([]OrderLine, 0, len(lines))
	for i, line := range lines {
		line.ProductID = strings.TrimSpace(line.ProductID)
		line.Size = strings.TrimSpace(line.Size)
		line.Color = strings.TrimSpace(line.Color)

		if line.ProductID == "" {
			return nil, invalidInput("item %d: product id is required", i)
		}
		if line.Size == "" {
			return nil, invalidInput("item %d: size is required", i)
		}
		if line.Quantity < 0 || (line.Quantity == 0 && !allowZero) {
			return nil, invalidInput("item %d: quantity must be positive, got %d", i, line.Quantity)
		}
		if line.Quantity > MaxLineQuantity {
			return nil, invalidInput("item %d: quantity %d exceeds %d", i, line.Quantity, MaxLineQuantity)
		}
		if line.Quantity == 0 {
			continue
		}
		out = append(out, line)
	}
	if len(out) == 0 {
		return nil, invalidInput("order must contain at least one item")
	}
	return out, nil
}
