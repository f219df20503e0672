package service

// ShippingPolicy charges a flat fee below the free-shipping threshold
type ShippingPolicy struct {
	FreeThreshold int64
	Fee           int64
}

// DefaultShippingPolicy is free shipping from 50,000 KRW, otherwise 3,000 KRW
var DefaultShippingPolicy = ShippingPolicy{FreeThreshold: 50000, Fee: 3000}

func (p ShippingPolicy) Cost(subtotal int64) int64 {
	if subtotal >= p.FreeThreshold {
		return 0
	}
	return p.Fee
}
