package command

import (
	"strconv"
	"strings"

	"github.com/12344-munna/order-handler/internal/domain"
)

// ParseOrderIntent scrapes a confirmation message into an OrderIntent. It is
// a best-effort line scrape, not a validator: lines without a colon and
// unrecognized keys are ignored, malformed amounts default to 0.
func ParseOrderIntent(text string) domain.OrderIntent {
	var intent domain.OrderIntent

	for _, line := range strings.Split(text, "\n") {
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])

		switch key {
		case "name":
			intent.Name = value
		case "address":
			intent.Address = value
		case "phone":
			intent.Phone = value
		case "product code":
			for _, code := range strings.Split(value, ",") {
				code = strings.TrimSpace(code)
				if code != "" {
					intent.ProductCodes = append(intent.ProductCodes, code)
				}
			}
		case "delivery charge":
			intent.DeliveryCharge = parseAmount(value)
		case "paid in advance":
			intent.PaidInAdvance = parseAmount(value)
		case "cod":
			intent.COD = parseAmount(value)
		}
	}

	return intent
}

func parseAmount(value string) float64 {
	amount, err := strconv.ParseFloat(value, 64)
	if err != nil || amount < 0 {
		return 0
	}
	return amount
}
