package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/angelmondragon/cartsync/internal/cart"
)

type serviceClient interface {
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Products(ctx context.Context) ([]cart.Product, error)
}

type session struct {
	client serviceClient
	store  *cart.Store
	out    io.Writer

	catalog map[string]cart.Product
}

var errUsage = errors.New("usage: cartctl [flags] command [args] [command [args]...]")

// run logs in when credentials are given, loads the cart and executes the
// commands in order. The first failing command stops the run.
func run(ctx context.Context, s *session, email, password string, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	if email != "" {
		if err := s.client.Login(ctx, email, password); err != nil {
			return fmt.Errorf("login: %w", err)
		}
		defer func() { _ = s.client.Logout(ctx) }()
		if _, err := s.store.LoadCart(ctx); err != nil {
			return fmt.Errorf("load: %w", err)
		}
	}

	for len(args) > 0 {
		cmd := args[0]
		arity, ok := commandArity[cmd]
		if !ok {
			return fmt.Errorf("unknown command %q", cmd)
		}
		if len(args) < arity+1 {
			return fmt.Errorf("%s: expected %d argument(s)", cmd, arity)
		}
		if err := s.exec(ctx, cmd, args[1:arity+1]); err != nil {
			return fmt.Errorf("%s: %w", cmd, err)
		}
		args = args[arity+1:]
	}
	return nil
}

var commandArity = map[string]int{
	"load":        0,
	"add":         1,
	"remove":      1,
	"qty":         2,
	"coupon":      1,
	"best-coupon": 0,
	"uncoupon":    0,
	"clear":       0,
	"show":        0,
}

func (s *session) exec(ctx context.Context, cmd string, args []string) error {
	var err error
	switch cmd {
	case "load":
		_, err = s.store.LoadCart(ctx)
	case "add":
		product, lookupErr := s.product(ctx, args[0])
		if lookupErr != nil {
			return lookupErr
		}
		_, err = s.store.AddItem(ctx, product)
	case "remove":
		_, err = s.store.RemoveItem(ctx, args[0])
	case "qty":
		quantity, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			return fmt.Errorf("quantity %q: %w", args[1], convErr)
		}
		_, err = s.store.SetQuantity(ctx, args[0], quantity)
	case "coupon":
		_, err = s.store.ApplyCoupon(ctx, args[0])
	case "best-coupon":
		_, err = s.store.FetchBestCoupon(ctx)
	case "uncoupon":
		s.store.RemoveCoupon(ctx)
	case "clear":
		s.store.Clear()
	case "show":
		printSnapshot(s.out, s.store.Snapshot())
	}
	return err
}

// product resolves id against the service catalog so the added line carries
// its price. Unknown ids are passed through and left to the service to reject.
func (s *session) product(ctx context.Context, id string) (cart.Product, error) {
	if s.catalog == nil {
		products, err := s.client.Products(ctx)
		if err != nil {
			return cart.Product{}, fmt.Errorf("list products: %w", err)
		}
		s.catalog = make(map[string]cart.Product, len(products))
		for _, p := range products {
			s.catalog[p.ID] = p
		}
	}
	if p, ok := s.catalog[id]; ok {
		return p, nil
	}
	return cart.Product{ID: id}, nil
}

func printSnapshot(w io.Writer, snap cart.Snapshot) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tNAME\tQTY\tPRICE\tLINE")
	for _, item := range snap.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			item.ID, item.Name, item.Quantity, item.Price.StringFixed(2), item.LineTotal().StringFixed(2))
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "subtotal: %s\n", snap.Subtotal.StringFixed(2))
	if snap.Coupon != nil {
		status := "applied"
		if !snap.CouponActive {
			status = "inactive"
		}
		fmt.Fprintf(w, "coupon:   %s (%s%% off, %s)\n", snap.Coupon.Code, snap.Coupon.DiscountPercentage.String(), status)
	}
	fmt.Fprintf(w, "total:    %s\n", snap.Total.StringFixed(2))
}

func printMetrics(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return err
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fmt.Fprintf(w, "%s%s %s\n", mf.GetName(), formatLabels(m.GetLabel()), formatValue(mf.GetType(), m))
		}
	}
	return nil
}

func formatLabels(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func formatValue(kind dto.MetricType, m *dto.Metric) string {
	switch kind {
	case dto.MetricType_COUNTER:
		return strconv.FormatFloat(m.GetCounter().GetValue(), 'f', -1, 64)
	case dto.MetricType_GAUGE:
		return strconv.FormatFloat(m.GetGauge().GetValue(), 'f', -1, 64)
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		return fmt.Sprintf("count=%d sum=%s", h.GetSampleCount(), strconv.FormatFloat(h.GetSampleSum(), 'f', 4, 64))
	}
	return ""
}
