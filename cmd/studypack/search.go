package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amishk599/studypack/internal/search"
)

var searchRoot string

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find PDFs whose file name contains query",
	Long:  "Walks --root for PDF files and prints the matches as JSON. An empty query lists every PDF.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var query string
		if len(args) == 1 {
			query = args[0]
		}
		fmt.Println(search.PDFs(searchRoot, query).JSON())
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchRoot, "root", ".", "directory to search")
	rootCmd.AddCommand(searchCmd)
}
