package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/libgest/internal/extract"
	"github.com/dgallion1/libgest/internal/legacy"
	"github.com/dgallion1/libgest/internal/libdoc"
	"github.com/dgallion1/libgest/internal/merge"
)

func newExtractCmd() *cobra.Command {
	var (
		kind   string
		repair bool
	)
	cmd := &cobra.Command{
		Use:   "extract <file|->",
		Short: "Print the canonical {head, shape} of a library document",
		Long: `Finds the head and shape of a symbol or footprint document, whatever
generation of the format it was saved in, and prints them as JSON.

With --kind the shape lines are also merged into the typed aggregate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			ext, err := extract.New(extract.Options{RepairJSON: repair}).Extract(data)
			if err != nil {
				var fe *extract.FormatError
				if errors.As(err, &fe) {
					fmt.Fprintln(cmd.ErrOrStderr(), "diagnostics:", fe.Diagnostics)
				}
				return err
			}

			var out any = ext
			if kind != "" {
				k, err := libdoc.ParseKind(kind)
				if err != nil {
					return err
				}
				agg, err := merge.New(legacy.Parser{}).Merge(ext.Shape, k)
				if err != nil {
					return fmt.Errorf("merge shapes: %w", err)
				}
				out = map[string]any{
					"extraction": ext,
					"aggregate":  agg,
					"counts":     agg.Counts(),
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "merge shapes as \"symbol\" or \"footprint\"")
	cmd.Flags().BoolVar(&repair, "repair", true, "repair malformed JSON before other strategies")
	return cmd
}
