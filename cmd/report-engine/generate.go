// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clinscribe/report-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a styled report for one patient",
	Long: `Generate runs the full pipeline for a single patient: assemble a
style-conditioned prompt from the patient's assessment data and the trained
profile, call the generation service, and render the narrative into Word
and/or PDF documents with score charts.

Audience selects the register (parent, specialist, other) and length the
variant (full, short). If no style profile has been trained yet, one is
built from the stored corpus on the fly.`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	patientID, _ := cmd.Flags().GetString("patient")
	if patientID == "" {
		return fmt.Errorf("--patient is required")
	}

	audienceFlag, _ := cmd.Flags().GetString("audience")
	audience, err := types.ParseAudience(audienceFlag)
	if err != nil {
		return err
	}
	lengthFlag, _ := cmd.Flags().GetString("length")
	length, err := types.ParseLengthVariant(lengthFlag)
	if err != nil {
		return err
	}
	formatFlag, _ := cmd.Flags().GetString("format")
	formats, err := types.ParseFormats(formatFlag)
	if err != nil {
		return err
	}

	logger := newLogger()
	eng, st, err := buildEngine(loadConfig(), logger)
	if err != nil {
		return err
	}
	defer st.Close()

	res := eng.Generate(cmd.Context(), types.ReportRequest{
		PatientID: patientID,
		Type:      types.ReportType{Audience: audience, Length: length},
		Formats:   formats,
	})

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
		if !res.Succeeded() {
			return fmt.Errorf("generation failed")
		}
		return nil
	}

	if !res.Succeeded() {
		return fmt.Errorf("generation failed: %v", res.Err)
	}

	fmt.Printf("Report generated for patient %s (%s)\n", patientID, types.ReportType{Audience: audience, Length: length})
	for _, format := range formats {
		if path, ok := res.Files[format]; ok {
			fmt.Printf("  %s: %s\n", format, path)
		}
	}
	omitted := 0
	for _, c := range res.Charts {
		if c.Omitted {
			omitted++
		}
	}
	fmt.Printf("  charts: %d (%d omitted)\n", len(res.Charts), omitted)
	return nil
}

func init() {
	generateCmd.Flags().String("patient", "", "patient identifier (required)")
	generateCmd.Flags().String("audience", "specialist", "report audience: parent, specialist, or other")
	generateCmd.Flags().String("length", "full", "report length: full or short")
	generateCmd.Flags().String("format", "both", "output format: word, pdf, or both")
	generateCmd.Flags().Bool("json", false, "output the pipeline result as JSON")

	rootCmd.AddCommand(generateCmd)
}
