package metrics

import "github.com/prometheus/client_golang/prometheus"

// StoreMetrics mirrors the latest committed cart snapshot as gauges.
type StoreMetrics struct {
	items    prometheus.Gauge
	subtotal prometheus.Gauge
	total    prometheus.Gauge
	coupon   prometheus.Gauge
}

func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	m := &StoreMetrics{
		items: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cartsync_cart_items",
			Help: "Total quantity of items in the cart.",
		}),
		subtotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cartsync_cart_subtotal",
			Help: "Cart subtotal before discount.",
		}),
		total: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cartsync_cart_total",
			Help: "Cart total after discount.",
		}),
		coupon: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cartsync_coupon_applied",
			Help: "1 when an active coupon contributes to the total.",
		}),
	}
	reg.MustRegister(m.items, m.subtotal, m.total, m.coupon)
	return m
}

// Record stores the values of a committed snapshot.
func (m *StoreMetrics) Record(items int, subtotal, total float64, couponActive bool) {
	if m == nil || m.items == nil {
		return
	}
	m.items.Set(float64(items))
	m.subtotal.Set(subtotal)
	m.total.Set(total)
	if couponActive {
		m.coupon.Set(1)
	} else {
		m.coupon.Set(0)
	}
}
