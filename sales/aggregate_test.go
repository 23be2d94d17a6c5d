package sales_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/athlogic/salesbot/orders"
	"github.com/athlogic/salesbot/sales"
)

var watched = []string{"Cutting Handbook", "Bulking Handbook"}

func order(status string, paidPrice int64, items ...orders.SectionItem) orders.Order {
	return orders.Order{
		Sections: []orders.Section{{SectionItems: items}},
		Payments: []orders.Payment{{PaymentStatus: status, PaidPrice: paidPrice}},
	}
}

func item(name string, qty int64) orders.SectionItem {
	return orders.SectionItem{ProductInfo: orders.ProductInfo{ProdName: name}, Qty: qty}
}

func TestAggregateCompletedOrder(t *testing.T) {
	summary := sales.Aggregate([]orders.Order{
		order(orders.PaymentComplete, 50000, item("Cutting Handbook vol.2", 2)),
	}, watched)

	require.Equal(t, int64(50000), summary.TotalSales)
	require.Equal(t, 1, summary.TotalOrders)
	require.Equal(t, int64(50000), summary.PerProduct["Cutting Handbook"].Sales)
	require.Equal(t, int64(2), summary.PerProduct["Cutting Handbook"].Quantity)
}

func TestAggregateExcludesIncompletePayments(t *testing.T) {
	summary := sales.Aggregate([]orders.Order{
		order("CANCELLED", 99000, item("Cutting Handbook", 1)),
		order("PAYMENT_PENDING", 42000, item("Bulking Handbook", 1)),
	}, watched)

	require.Zero(t, summary.TotalSales)
	require.Zero(t, summary.TotalOrders)
	require.Empty(t, summary.PerProduct)
}

func TestAggregateIncludesPartialRefund(t *testing.T) {
	summary := sales.Aggregate([]orders.Order{
		order(orders.PartialRefundComplete, 30000, item("Bulking Handbook", 1)),
	}, watched)

	require.Equal(t, int64(30000), summary.TotalSales)
	require.Equal(t, 1, summary.TotalOrders)
}

func TestAggregateExcludesZeroPaidAmount(t *testing.T) {
	summary := sales.Aggregate([]orders.Order{
		order(orders.PaymentComplete, 0, item("Cutting Handbook", 1)),
	}, watched)

	require.Zero(t, summary.TotalOrders)
}

func TestAggregateExcludesOrderWithoutPayments(t *testing.T) {
	noPayments := orders.Order{
		Sections: []orders.Section{{SectionItems: []orders.SectionItem{item("Cutting Handbook", 1)}}},
	}
	summary := sales.Aggregate([]orders.Order{noPayments}, watched)

	require.Zero(t, summary.TotalOrders)
}

// A mixed order attributes the full paid amount and the quantity sum of
// every line item to the single matched bucket. Documented overcount.
func TestAggregateMixedOrderAttributesWholeOrder(t *testing.T) {
	summary := sales.Aggregate([]orders.Order{
		order(orders.PaymentComplete, 30000,
			item("Cutting Handbook", 1),
			item("Shaker Bottle", 3),
		),
	}, watched)

	require.Equal(t, 1, summary.TotalOrders)
	bucket := summary.PerProduct["Cutting Handbook"]
	require.Equal(t, int64(30000), bucket.Sales)
	require.Equal(t, int64(4), bucket.Quantity, "quantity sums every line item, matched or not")
	require.Len(t, summary.PerProduct, 1, "an order lands in at most one bucket")
}

func TestAggregateFirstMatchWinsAcrossWatchedNames(t *testing.T) {
	summary := sales.Aggregate([]orders.Order{
		order(orders.PaymentComplete, 80000,
			item("Bulking Handbook", 1),
			item("Cutting Handbook", 1),
		),
	}, watched)

	require.Len(t, summary.PerProduct, 1)
	require.Equal(t, int64(80000), summary.PerProduct["Bulking Handbook"].Sales)
}

func TestAggregateMatchesBySubstring(t *testing.T) {
	summary := sales.Aggregate([]orders.Order{
		order(orders.PaymentComplete, 25000, item("[2026 Edition] Cutting Handbook + bonus", 1)),
	}, watched)

	require.Equal(t, int64(25000), summary.PerProduct["Cutting Handbook"].Sales)
}

func TestAggregateIgnoresUnwatchedOrders(t *testing.T) {
	summary := sales.Aggregate([]orders.Order{
		order(orders.PaymentComplete, 15000, item("Shaker Bottle", 2)),
	}, watched)

	require.Zero(t, summary.TotalSales)
	require.Zero(t, summary.TotalOrders)
}

func TestAggregateEmptyInput(t *testing.T) {
	summary := sales.Aggregate(nil, watched)

	require.Zero(t, summary.TotalSales)
	require.Zero(t, summary.TotalOrders)
	require.NotNil(t, summary.PerProduct)
}
