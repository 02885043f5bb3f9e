// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Browse and open finished report documents",
	Long: `Reports lists and opens the Word and PDF documents under the output
directory. Listings rescan the directory every time, so documents added or
removed outside the tool always show up.`,
}

// --- list subcommand ---

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent report documents, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, st, err := buildEngine(loadConfig(), newLogger())
		if err != nil {
			return err
		}
		defer st.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		artifacts, err := eng.ListRecent(limit)
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(artifacts)
		}

		if len(artifacts) == 0 {
			fmt.Println("No reports found.")
			return nil
		}

		fmt.Fprintf(os.Stdout, "%-55s  %-10s  %s\n", "Name", "Size", "Modified")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
		for _, a := range artifacts {
			fmt.Fprintf(os.Stdout, "%-55s  %-10d  %s\n",
				a.Name, a.Size, a.ModifiedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

// --- open subcommand ---

var reportsOpenCmd = &cobra.Command{
	Use:   "open [name]",
	Short: "Open a report document with the system default application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, st, err := buildEngine(loadConfig(), newLogger())
		if err != nil {
			return err
		}
		defer st.Close()
		return eng.Open(args[0])
	},
}

func init() {
	reportsListCmd.Flags().Int("limit", 0, "maximum number of reports to list (default from config)")
	reportsListCmd.Flags().Bool("json", false, "output the listing as JSON")

	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsOpenCmd)
	rootCmd.AddCommand(reportsCmd)
}
