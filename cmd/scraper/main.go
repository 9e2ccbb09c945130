// Command goodreads-scraper scrapes Goodreads most-read lists and reports on saved datasets.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
