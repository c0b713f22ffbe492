// Command ecomctl runs one-off administrative tasks against the shop
// database: schema setup, superuser bootstrap and cart resets.
package main

import (
	"log/slog"
	"os"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
