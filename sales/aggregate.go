// Package sales reduces fetched order records into daily sales figures.
package sales

import (
	"strings"

	"github.com/athlogic/salesbot/orders"
)

// ProductSales is the per-product slice of a Summary.
type ProductSales struct {
	Sales    int64
	Quantity int64
}

// Summary holds the aggregates for one report window. It is derived
// state, recomputed per report from the window's order set.
type Summary struct {
	TotalSales  int64
	TotalOrders int
	PerProduct  map[string]ProductSales
}

// Aggregate computes the sales summary for the given orders. It is a
// pure function: no I/O, deterministic for a given input, and total over
// malformed records (missing fields simply exclude an order).
//
// An order qualifies when its payment status is completed and its paid
// amount is positive. The first line item, in section order, whose
// product name contains a watched name attributes the whole order to
// that single watched product; the attributed quantity is the sum over
// every line item in the order, and the attributed sales amount is the
// full paid amount. Orders mixing watched and unwatched items therefore
// overcount the matched bucket. That mirrors the reference behavior and
// is kept intentionally.
func Aggregate(orderList []orders.Order, watchedProducts []string) Summary {
	summary := Summary{PerProduct: make(map[string]ProductSales)}

	for i := range orderList {
		order := &orderList[i]

		status, paidPrice := order.PaymentInfo()
		if !completedStatus(status) || paidPrice <= 0 {
			continue
		}

		watched := matchWatched(order, watchedProducts)
		if watched == "" {
			continue
		}

		summary.TotalSales += paidPrice
		summary.TotalOrders++

		bucket := summary.PerProduct[watched]
		bucket.Sales += paidPrice
		bucket.Quantity += order.TotalQuantity()
		summary.PerProduct[watched] = bucket
	}

	return summary
}

func completedStatus(status string) bool {
	return status == orders.PaymentComplete || status == orders.PartialRefundComplete
}

// matchWatched returns the watched product name matched by the first
// line item whose product name contains it, scanning sections in order.
func matchWatched(order *orders.Order, watchedProducts []string) string {
	for _, section := range order.Sections {
		for _, item := range section.SectionItems {
			for _, watched := range watchedProducts {
				if watched != "" && strings.Contains(item.ProductInfo.ProdName, watched) {
					return watched
				}
			}
		}
	}
	return ""
}
