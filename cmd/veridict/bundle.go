package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veridict-ai/veridict/internal/newsbert"
)

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Inspect and verify model bundles",
}

var bundleVerifyCmd = &cobra.Command{
	Use:   "verify <dir>",
	Short: "Check bundle files against the manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := newsbert.ResolveBundleDir(args[0])
		if err != nil {
			return err
		}
		if err := newsbert.VerifyBundle(dir); err != nil {
			return fmt.Errorf("bundle verification failed: %w", err)
		}
		fmt.Println("bundle OK:", dir)
		return nil
	},
}

var bundleInfoCmd = &cobra.Command{
	Use:   "info <dir>",
	Short: "Show bundle version, labels and files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := newsbert.InspectBundle(args[0])
		if err != nil {
			return err
		}
		if flagJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}
		fmt.Println("Dir:     ", info.Dir)
		fmt.Println("Version: ", info.Version)
		fmt.Println("Labels:  ", strings.Join(info.Labels, ", "))
		for _, f := range info.Files {
			fmt.Println("File:    ", f)
		}
		return nil
	},
}

func init() {
	bundleCmd.AddCommand(bundleVerifyCmd)
	bundleCmd.AddCommand(bundleInfoCmd)
}
