package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dgallion1/libgest/internal/libdoc"
	"github.com/dgallion1/libgest/internal/store"
)

func newStoreCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect the sqlite extraction cache",
	}
	cmd.PersistentFlags().StringVar(&path, "store", "", "sqlite file written by batch --store")
	cmd.MarkPersistentFlagRequired("store")

	var (
		kind  string
		limit int
	)
	ls := &cobra.Command{
		Use:   "ls",
		Short: "List cached extractions of one kind, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := libdoc.ParseKind(kind)
			if err != nil {
				return err
			}
			db, err := store.Open(path)
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := db.List(cmd.Context(), k, limit)
			if err != nil {
				return err
			}
			total, err := db.Count(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LIBRARY\tUUID\tDOCTYPE\tSHAPES\tHEAD KEYS\tUPDATED")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					e.Ref.LibraryUUID, e.Ref.UUID, e.DocType, len(e.Extraction.Shape),
					strings.Join(e.Extraction.Head.Keys(), ","), e.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s shown, %d stored in total\n", len(entries), k, total)
			return nil
		},
	}
	ls.Flags().StringVar(&kind, "kind", "symbol", "\"symbol\" or \"footprint\"")
	ls.Flags().IntVar(&limit, "limit", 50, "rows to show, 0 for all")

	rm := &cobra.Command{
		Use:   "rm <kind> <library-uuid> <uuid>",
		Short: "Remove one cached extraction so the next batch refetches it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := libdoc.ParseKind(args[0])
			if err != nil {
				return err
			}
			db, err := store.Open(path)
			if err != nil {
				return err
			}
			defer db.Close()

			ref := libdoc.LibraryRef{LibraryUUID: args[1], UUID: args[2]}
			if err := db.Delete(cmd.Context(), k, ref); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s %s\n", k, ref.Key())
			return nil
		},
	}

	cmd.AddCommand(ls, rm)
	return cmd
}
