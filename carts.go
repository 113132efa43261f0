package main

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/medaimane/AthleticEdge/internal/repository/pebble"
)

type cartSummary struct {
	Owner     string          `json:"owner"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func newCartsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "carts",
		Short: "List the carts stored in the pebble cart store (run while serve is stopped)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.CartBackend != "pebble" {
				return fmt.Errorf("carts needs CART_BACKEND=pebble, got %s", cfg.CartBackend)
			}

			store, err := pebble.Open(cfg.PebbleDir)
			if err != nil {
				return err
			}
			defer store.Close()

			owners, err := store.Owners()
			if err != nil {
				return err
			}
			summaries := make([]cartSummary, 0, len(owners))
			for _, owner := range owners {
				cart, err := store.Load(cmd.Context(), owner)
				if err != nil {
					return err
				}
				summaries = append(summaries, cartSummary{Owner: owner, ItemCount: cart.ItemCount(), Subtotal: cart.Subtotal()})
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(summaries); err != nil {
				return fmt.Errorf("failed to encode carts: %w", err)
			}
			return nil
		},
	}
}
