package payment

type Payment struct {
	ID          int64   `json:"_id"`
	Name        string  `json:"name"`
	OrderID     int64   `json:"order_id"`
	Total       float64 `json:"total"`
	RFC         string  `json:"rfc"`
	PaymentType string  `json:"payment_type"`
	Items       []Item  `json:"items"`
	Active      bool    `json:"active"`
}

type Item struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order is a dispensed prescription waiting to be paid. Total is computed
// when pending orders are listed, it is not stored.
type Order struct {
	ID     int64   `json:"_id"`
	Status string  `json:"status"`
	Items  []Item  `json:"items"`
	Total  float64 `json:"total"`
}

func (o *Order) computeTotal() {
	var total float64
	for _, it := range o.Items {
		total += it.Price * float64(it.Quantity)
	}
	o.Total = total
}
