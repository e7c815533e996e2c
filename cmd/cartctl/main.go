// Command cartctl drives a cart store against a running commerce service.
//
//	cartctl -email ada@example.com -password cartsync-demo add jeans-slim coupon ADA20 show
//
// Commands run in order within a single session:
//
//	load                  fetch the server cart
//	add <productId>       add one unit
//	remove <productId>    remove the line
//	qty <productId> <n>   set the quantity (0 removes)
//	coupon <code>         validate and apply a coupon
//	best-coupon           apply the shopper's best coupon
//	uncoupon              drop the applied coupon
//	clear                 reset the local state
//	show                  print the cart and totals
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/cartsync/internal/cart"
	"github.com/angelmondragon/cartsync/internal/notify"
	"github.com/angelmondragon/cartsync/pkg/commerce"
	"github.com/angelmondragon/cartsync/pkg/config"
	"github.com/angelmondragon/cartsync/pkg/logger"
	"github.com/angelmondragon/cartsync/pkg/metrics"
)

func main() {
	_ = godotenv.Load()

	email := flag.String("email", "", "shopper email; logs in before running commands")
	password := flag.String("password", "", "shopper password")
	baseURL := flag.String("base-url", "", "commerce service base url (overrides "+config.EnvCommerceBaseURL+")")
	showMetrics := flag.Bool("metrics", false, "print collected metrics after the run")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.Commerce.BaseURL = *baseURL
	}

	logg := logger.New(logger.Options{
		ServiceName: "cartctl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reg := prometheus.NewRegistry()
	client, err := commerce.NewFromConfig(cfg.Commerce, logg, metrics.NewSyncMetrics(reg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "commerce client: %v\n", err)
		os.Exit(1)
	}

	store, err := cart.NewStore(cart.StoreParams{
		Remote:   client,
		Notifier: notify.Multi(notify.NewWriterSink(os.Stdout), notify.NewLogSink(logg)),
		Logger:   logg,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cart store: %v\n", err)
		os.Exit(1)
	}
	storeMetrics := metrics.NewStoreMetrics(reg)
	store.Subscribe(func(s cart.Snapshot) {
		storeMetrics.Record(s.Quantity(), s.Subtotal.InexactFloat64(), s.Total.InexactFloat64(), s.CouponActive)
	})

	code := 0
	if err := run(ctx, &session{client: client, store: store, out: os.Stdout}, *email, *password, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "cartctl: %v\n", err)
		code = 1
	}

	if *showMetrics {
		if err := printMetrics(os.Stdout, reg); err != nil {
			fmt.Fprintf(os.Stderr, "metrics: %v\n", err)
		}
	}
	stop()
	os.Exit(code)
}
