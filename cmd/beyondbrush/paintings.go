package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/beyondbrush/internal/config"
	"github.com/ayusman/beyondbrush/internal/store"
)

func newPaintingsCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "paintings",
		Short: "Inspect saved paintings",
	}
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config path (default ~/.beyondbrush/config.yaml)")

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved paintings, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			st, err := store.New(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			paintings, err := st.Paintings().List(limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tFORMAT\tSIZE\tTEXTS\tPATH")
			for _, p := range paintings {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%dx%d\t%d\t%s\n",
					p.ID, p.CreatedAt.Local().Format("2006-01-02 15:04:05"), p.Format, p.Width, p.Height, p.TextCount, p.Path)
			}
			return tw.Flush()
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of paintings (0 for all)")
	cmd.AddCommand(list)
	return cmd
}
