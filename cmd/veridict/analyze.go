package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/veridict-ai/veridict/internal/detector"
	"github.com/veridict-ai/veridict/internal/inference"
)

var analyzeText string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Classify one text",
	Long:  "Reads text from --text, a file argument, or stdin and prints the verdict.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeText, "text", "", "text to analyze (overrides file and stdin)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	text, err := readInput(args)
	if err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	res, err := a.det.Analyze(ctx, text)
	if err != nil {
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printResult(os.Stdout, res)
	return nil
}

func readInput(args []string) (string, error) {
	if analyzeText != "" {
		return analyzeText, nil
	}
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("no input: pass a file, --text, or pipe text on stdin")
	}
	return string(data), nil
}

func verdictBanner(label inference.Label) string {
	switch label {
	case inference.LabelReal:
		return color.New(color.FgGreen, color.OpBold).Render("REAL")
	case inference.LabelFake:
		return color.New(color.FgRed, color.OpBold).Render("FAKE")
	default:
		return color.New(color.FgYellow, color.OpBold).Render("INCONCLUSIVE")
	}
}

func printResult(w io.Writer, res *detector.Result) {
	fmt.Fprintf(w, "Verdict:    %s (confidence %.1f/100)\n", verdictBanner(res.Prediction), res.Confidence)
	fmt.Fprintf(w, "Model:      %s via %s\n", res.ModelVersion, res.ModelUsed)
	if res.Language != "" {
		fmt.Fprintf(w, "Language:   %s\n", res.Language)
	}
	fmt.Fprintf(w, "Took:       %s\n", res.ProcessingTime)
	if res.Truncated {
		fmt.Fprintln(w, "Note:       input was truncated before analysis")
	}

	fmt.Fprintf(w, "\n%s\n", res.Explanation)

	if len(res.Factors) > 0 {
		fmt.Fprintln(w)
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Factor", "Score", "Impact", "Description"})
		table.SetAutoWrapText(false)
		table.SetAutoFormatHeaders(true)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetCenterSeparator("")
		table.SetColumnSeparator("")
		table.SetRowSeparator("")
		table.SetHeaderLine(false)
		table.SetBorder(false)
		table.SetTablePadding("\t")
		for _, f := range res.Factors {
			table.Append([]string{f.Name, fmt.Sprintf("%.1f", f.Score), f.Impact, f.Description})
		}
		table.Render()
	}

	if len(res.Sources) > 0 {
		fmt.Fprintln(w, "\nVerify with:")
		for _, s := range res.Sources {
			fmt.Fprintln(w, "  -", s)
		}
	}
}
