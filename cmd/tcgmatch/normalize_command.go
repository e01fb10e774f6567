package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tcgmatch/internal/card"
	"github.com/JonMunkholm/tcgmatch/internal/catalog"
	"github.com/JonMunkholm/tcgmatch/internal/core"
)

type normalizeFlags struct {
	name      string
	set       string
	number    string
	foil      string
	condition string
	language  string
	quantity  string
	price     string
}

func newNormalizeCommand() *cobra.Command {
	var flags normalizeFlags

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Show how a single export row is normalized and looked up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := card.Normalize(flags.row())
			printCard(cmd.OutOrStdout(), c)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.name, "name", "", "Card name")
	cmd.Flags().StringVar(&flags.set, "set", "", "Set code as exported")
	cmd.Flags().StringVar(&flags.number, "number", "", "Collector number as exported")
	cmd.Flags().StringVar(&flags.foil, "foil", "", "Foil column value (foil, etched or empty)")
	cmd.Flags().StringVar(&flags.condition, "condition", "", "Condition column value")
	cmd.Flags().StringVar(&flags.language, "language", "", "Language column value")
	cmd.Flags().StringVar(&flags.quantity, "quantity", "", "Quantity column value")
	cmd.Flags().StringVar(&flags.price, "price", "", "Purchase price column value")
	_ = cmd.MarkFlagRequired("set")

	return cmd
}

func (f normalizeFlags) row() card.RawRow {
	return card.RawRow{
		card.ColName:            f.name,
		card.ColSetCode:         f.set,
		card.ColCollectorNumber: f.number,
		card.ColFoil:            f.foil,
		card.ColCondition:       f.condition,
		card.ColLanguage:        f.language,
		card.ColQuantity:        f.quantity,
		card.ColPurchasePrice:   f.price,
	}
}

func printCard(w io.Writer, c card.Card) {
	plan := core.PlanFor(c, 0)

	rows := [][]string{
		{"Name", c.Name},
		{"Set code", c.SetCode},
		{"Collector number", c.CollectorNumber},
		{"Token", strconv.FormatBool(c.IsToken)},
		{"Foil", strconv.FormatBool(c.IsFoil)},
		{"Condition", c.Condition},
		{"Language", c.Language},
		{"Quantity", strconv.Itoa(c.Quantity)},
		{"Purchase price", c.PurchasePrice},
		{"Lookup plan", plan.Class.String()},
	}
	for i, key := range plan.Keys {
		rows = append(rows, []string{fmt.Sprintf("Key %d", i+1), describeKey(key)})
	}
	if plan.SecondChance != nil {
		rows = append(rows, []string{"Second chance", describeKey(*plan.SecondChance)})
	}

	fmt.Fprintln(w, keyValueTable(rows))
}

// describeKey renders a product key without its group id, which is only
// known once the set resolves against the catalog.
func describeKey(k catalog.ProductKey) string {
	s := k.Strategy.String() + " " + strconv.Quote(k.Value)
	if k.Token {
		s += " token"
	}
	if k.Rainbow {
		s += " rainbow"
	}
	return s
}
