package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/seed"
	"github.com/google/subcommands"
)

type seedCmd struct{}

func (*seedCmd) Name() string     { return "seed" }
func (*seedCmd) Synopsis() string { return "load the demo data set" }
func (*seedCmd) Usage() string {
	return `nimo-inventory seed

  Loads demo suppliers, products, movements and orders into an empty
  database. Does nothing when products already exist.
`
}

func (*seedCmd) SetFlags(*flag.FlagSet) {}

func (*seedCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.close()

	if a.db == nil {
		fmt.Fprintln(os.Stderr, "memory backend is seeded at start-up; set database.driver to sqlite or postgres")
		return subcommands.ExitUsageError
	}
	if err := a.migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	res, err := seed.Load(ctx, a.repos, time.Now(), a.logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if res.Skipped {
		fmt.Println("database already has products, nothing seeded")
		return subcommands.ExitSuccess
	}
	fmt.Printf("seeded %d suppliers, %d products, %d movements, %d sales orders, %d purchase orders\n",
		res.Suppliers, res.Products, res.Movements, res.SalesOrders, res.PurchaseOrders)
	return subcommands.ExitSuccess
}
