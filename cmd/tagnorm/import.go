// CLAUDE:SUMMARY CLI subcommands that import alias dictionaries from public sources and manage their URLs.
package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/hazyhaar/tagnorm/pkg/importer"
	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		source    string
		all       bool
		outputDir string
		timeout   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Download a public source and write it as a dictionary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !all && source == "" {
				return fmt.Errorf("pass --source <id> or --all (see 'tagnorm sources')")
			}
			if outputDir == "" {
				outputDir = a.cfg.DictsDir
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			sdb, err := a.openSources(ctx)
			if err != nil {
				return err
			}
			defer sdb.Close()

			adapters := importer.All()
			if !all {
				ad, err := importer.Get(source)
				if err != nil {
					return err
				}
				adapters = []importer.Adapter{ad}
			}

			var failed int
			for _, ad := range adapters {
				a.logger.Info("import started", "source", ad.ID())
				res, err := sdb.Run(ctx, ad, outputDir)
				if err != nil {
					a.logger.Error("import failed", "source", ad.ID(), "error", err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s/%s: %d groups, %d aliases, %d skipped\n",
					ad.ID(), outputDir, res.DictID, res.Groups, res.Aliases, res.Skipped)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d imports failed", failed, len(adapters))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "adapter ID to import")
	cmd.Flags().BoolVar(&all, "all", false, "import every registered source")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "dictionary directory (default: dicts_dir)")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Hour, "overall import timeout")
	return cmd
}

func newSourcesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List import sources and their last check and import",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sdb, err := a.openSources(cmd.Context())
			if err != nil {
				return err
			}
			defer sdb.Close()

			sources, err := sdb.ListSources(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SOURCE\tDICT\tSTATUS\tLAST IMPORT\tURL")
			for _, s := range sources {
				status, imported := "-", "-"
				if s.LastStatus != nil {
					status = fmt.Sprint(*s.LastStatus)
				}
				if s.LastImport != nil {
					imported = time.Unix(*s.LastImport, 0).Format(time.DateTime)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.AdapterID, s.DictID, status, imported, s.SourceURL)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-url <source> <url>",
		Short: "Override the download URL of a source",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sdb, err := a.openSources(cmd.Context())
			if err != nil {
				return err
			}
			defer sdb.Close()
			return sdb.SetURL(cmd.Context(), args[0], args[1])
		},
	}, &cobra.Command{
		Use:   "check",
		Short: "Check every source URL now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sdb, err := a.openSources(cmd.Context())
			if err != nil {
				return err
			}
			defer sdb.Close()
			importer.NewChecker(sdb, a.logger, a.cfg.CheckInterval).CheckAll(cmd.Context())
			return nil
		},
	})
	return cmd
}
