package cmd

import (
	"fmt"

	"github.com/mindguard/mindguard/internal/detect"
	"github.com/mindguard/mindguard/internal/page"
	"github.com/spf13/cobra"
)

var (
	scanURL  string
	scanPage string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Classify a page once and print the verdict",
	Long: `Scan runs the page classifier a single time against a URL and an
optional HTML snapshot, prints whether the page looks like an AI-chat
interface, and exits. Useful for checking what the watcher would decide.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanURL, "url", "", "URL of the page to classify")
	scanCmd.Flags().StringVar(&scanPage, "page", "", "path to an HTML snapshot of the page")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	snapshot := page.Snapshot{Hostname: page.Hostname(scanURL)}
	if scanPage != "" {
		doc, err := page.ParseFile(scanPage)
		if err != nil {
			return fmt.Errorf("failed to parse page snapshot: %w", err)
		}
		snapshot = page.NewSnapshot(scanURL, doc)
	}

	if snapshot.Doc != nil {
		fmt.Printf("parsed %d elements\n", snapshot.Doc.ElementCount())
	}

	verdict := detect.NewScanner().Scan(snapshot)
	if !verdict.Detected {
		fmt.Println("not detected")
		return nil
	}
	fmt.Printf("detected: %s\n", verdict.Platform)
	return nil
}
