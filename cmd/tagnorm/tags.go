package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newNormalizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <tag>...",
		Short: "Print the canonical form of each tag",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.openRegistry()
			if err != nil {
				return err
			}
			n := reg.Normalizer()
			for _, t := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", t, n.Normalize(t))
			}
			return nil
		},
	}
}

func newSimilarCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "similar <tag> <existing>...",
		Short: "Find the first existing tag that looks like a duplicate of tag",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.openRegistry()
			if err != nil {
				return err
			}
			if match, ok := reg.Normalizer().FindSimilarTag(args[0], args[1:]); ok {
				fmt.Fprintln(cmd.OutOrStdout(), match)
				return nil
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "no similar tag")
			return nil
		},
	}
}

func newAliasesCmd(a *app) *cobra.Command {
	var variations bool
	cmd := &cobra.Command{
		Use:   "aliases <canonical>",
		Short: "List the aliases of a canonical tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.openRegistry()
			if err != nil {
				return err
			}
			n := reg.Normalizer()
			list := n.GetAliases(args[0])
			if variations {
				list = n.GetVariations(args[0])
			}
			if len(list) == 0 {
				return fmt.Errorf("unknown canonical tag %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(list, "\n"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&variations, "variations", false, "list every spelling that resolves to the canonical")
	return cmd
}

func newPrepareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prepare <tag>...",
		Short: "Normalize, deduplicate and validate a tag list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.openRegistry()
			if err != nil {
				return err
			}
			out, err := reg.Normalizer().Prepare(args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(out, " "))
			return nil
		},
	}
}
