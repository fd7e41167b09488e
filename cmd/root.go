package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/goopy/internal/google"
)

// rootCmd represents the base command for the goopy application
var rootCmd = &cobra.Command{
	Use:   "goopy",
	Short: "Work with Google Drive, Sheets and Slides from the command line",
	Long: `goopy manages Google Drive files, reads and edits spreadsheets and fills
in presentation templates. Credentials come from a service-account key or an
OAuth client file.

It can run as:
  - A command-line tool (drive, sheets, slides subcommands)
  - An MCP (Model Context Protocol) server for AI assistants (serve)`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "goopy version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		if hint := google.Hint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

func init() {
	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newDriveCmd())
	rootCmd.AddCommand(newSheetsCmd())
	rootCmd.AddCommand(newSlidesCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
