// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clinscribe/report-engine/internal/store"
)

var patientsCmd = &cobra.Command{
	Use:   "patients",
	Short: "Manage the patient assessment store (list, import)",
	Long: `Patients manages the local store of assessment records. Use subcommands
to list the patients on file or to import records from a JSON file.`,
}

// --- list subcommand ---

var patientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List patients available for report generation",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.NewStore(loadConfig().Store)
		if err != nil {
			return err
		}
		defer st.Close()

		patients, err := st.Patients().List(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(patients)
		}

		if len(patients) == 0 {
			fmt.Println("No patients on file.")
			return nil
		}

		fmt.Fprintf(os.Stdout, "%-10s  %-25s  %-4s  %-12s  %s\n",
			"ID", "Name", "Age", "Assessed", "Tests")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 70))
		for _, p := range patients {
			assessed := ""
			if !p.AssessmentDate.IsZero() {
				assessed = p.AssessmentDate.Format("2006-01-02")
			}
			fmt.Fprintf(os.Stdout, "%-10s  %-25s  %-4d  %-12s  %d\n",
				p.ID, p.Name, p.Age, assessed, len(p.Tests))
		}
		return nil
	},
}

// --- import subcommand ---

var patientsImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import patient records from a JSON file",
	Long: `Import reads a JSON array of patient records and upserts each one into
the store. Existing records with the same patient ID are replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.NewStore(loadConfig().Store)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.Patients().ImportPatientsJSON(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d patient record(s) from %s\n", n, args[0])
		return nil
	},
}

func init() {
	patientsListCmd.Flags().Bool("json", false, "output patients as JSON")

	patientsCmd.AddCommand(patientsListCmd)
	patientsCmd.AddCommand(patientsImportCmd)
	rootCmd.AddCommand(patientsCmd)
}
