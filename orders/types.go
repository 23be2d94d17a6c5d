package orders

// Payment statuses that count as completed for sales reporting.
const (
	PaymentComplete       = "PAYMENT_COMPLETE"
	PartialRefundComplete = "PARTIAL_REFUND_COMPLETE"
)

// Order is one record from the commerce order list endpoint. Every
// nested field is optional on the wire; missing values decode to zero
// values and the aggregation rules treat them as non-qualifying rather
// than erroring.
type Order struct {
	OrderNo  string    `json:"orderNo"`
	Orderer  Orderer   `json:"orderer"`
	Sections []Section `json:"sections"`
	Payments []Payment `json:"payments"`
}

type Orderer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Call  string `json:"call"`
}

type Section struct {
	SectionItems []SectionItem `json:"sectionItems"`
}

type SectionItem struct {
	ProductInfo ProductInfo `json:"productInfo"`
	Qty         int64       `json:"qty"`
}

type ProductInfo struct {
	ProdName string `json:"prodName"`
	Price    int64  `json:"price"`
}

type Payment struct {
	PaymentStatus string `json:"paymentStatus"`
	PaidPrice     int64  `json:"paidPrice"`
}

// PaymentInfo returns the order's payment status and paid amount. An
// order without a payments sub-record reports empty status and zero,
// which excludes it from aggregation.
func (o *Order) PaymentInfo() (status string, paidPrice int64) {
	if len(o.Payments) == 0 {
		return "", 0
	}
	return o.Payments[0].PaymentStatus, o.Payments[0].PaidPrice
}

// TotalQuantity sums item quantities across all sections of the order.
func (o *Order) TotalQuantity() int64 {
	var total int64
	for _, section := range o.Sections {
		for _, item := range section.SectionItems {
			total += item.Qty
		}
	}
	return total
}
