package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List the video styles the server accepts",
	RunE: func(cmd *cobra.Command, args []string) error {
		styles, err := api.VideoStyles(cmd.Context())
		if err != nil {
			return err
		}
		names := make([]string, 0, len(styles))
		for name := range styles {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", name, styles[name])
		}
		return nil
	},
}

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Check which upstream API credentials the server has",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := api.CheckCredentials(cmd.Context())
		if err != nil {
			return err
		}
		if len(status.Missing) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "All credentials configured")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Missing: %s\n", strings.Join(status.Missing, ", "))
		return nil
	},
}

var promoImageNotes string

var promoCmd = &cobra.Command{
	Use:   "promo <job-id>",
	Short: "Generate a social media caption and hashtags for a completed job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		promo, err := api.Promo(cmd.Context(), args[0], promoImageNotes)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, promo.Caption)
		if len(promo.Hashtags) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, strings.Join(promo.Hashtags, " "))
		}
		return nil
	},
}

func init() {
	promoCmd.Flags().StringVar(&promoImageNotes, "image-notes", "", "Description of the footage the script will be cut against")
}
