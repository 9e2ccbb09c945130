package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-scrape-goodreads/service"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved datasets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		svc, _, err := newService(cfg, false)
		if err != nil {
			return err
		}
		names, err := svc.ListDatasets()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(names) == 0 {
			fmt.Fprintf(out, "no datasets in %s\n", cfg.DataDir)
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DATASET\tSIZE\tMODIFIED")
		for _, name := range names {
			size, modified := "-", "-"
			if info, err := os.Stat(filepath.Join(cfg.DataDir, name)); err == nil {
				size = humanize.Bytes(uint64(info.Size()))
				modified = humanize.Time(info.ModTime())
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", name, size, modified)
		}
		return tw.Flush()
	},
}

var reportCmd = &cobra.Command{
	Use:   "report <dataset>",
	Short: "Summarise genres, publication years and review opinions of a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		top, _ := cmd.Flags().GetInt("top")
		svc, err := loadedService(args[0])
		if err != nil {
			return err
		}
		report, err := svc.Report(top)
		if err != nil {
			return err
		}
		return printReport(cmd.OutOrStdout(), report)
	},
}

var reviewsCmd = &cobra.Command{
	Use:   "reviews <dataset> <title>",
	Short: "Label each review of a book and show the overall opinion",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadedService(args[0])
		if err != nil {
			return err
		}
		book, err := svc.ClassifyBook(args[1])
		if err != nil {
			return err
		}
		return printBookSentiment(cmd.OutOrStdout(), book)
	},
}

func init() {
	reportCmd.Flags().Int("top", 10, "number of genres to show")
}

func loadedService(dataset string) (*service.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	svc, _, err := newService(cfg, false)
	if err != nil {
		return nil, err
	}
	if _, err := svc.Load(dataset); err != nil {
		return nil, err
	}
	return svc, nil
}

func printReport(w io.Writer, r *service.Report) error {
	fmt.Fprintf(w, "%s: %d books\n\n", r.Dataset, r.Books)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GENRE\tBOOKS")
	for _, g := range r.TopGenres {
		fmt.Fprintf(tw, "%s\t%d\n", g.Key, g.Count)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "YEAR\tBOOKS")
	for _, y := range r.BooksByYear {
		fmt.Fprintf(tw, "%d\t%d\n", y.Year, y.Count)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "YEAR\tGENRE\tBOOKS")
	for _, gy := range r.GenresByYear {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", gy.Year, gy.Genre, gy.Count)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "TITLE\tGENRE\tPAGES")
	for _, p := range r.Pages {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", excerpt(p.Title, 40), p.Genre, humanize.Comma(int64(p.Pages)))
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "RANK\tTITLE\tREVIEWS\tOPINION")
	for _, op := range r.Opinions {
		opinion := "-"
		if op.HasLabel {
			opinion = op.Dominant.String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", op.Rank, op.Title, op.Reviews, opinion)
	}
	return tw.Flush()
}

func printBookSentiment(w io.Writer, b *service.BookSentiment) error {
	book := b.Book
	fmt.Fprintf(w, "%s by %s\n", book.Title, book.Author)
	fmt.Fprintf(w, "  Average rating: %.2f (%s ratings, %s readers)\n",
		book.AverageRating, humanize.Comma(int64(book.TotalRatings)), humanize.Comma(int64(book.ReaderCount)))
	if len(b.Reviews) == 0 {
		fmt.Fprintln(w, "  No reviews available.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSTARS\tOPINION\tREVIEW")
	for i, r := range b.Reviews {
		stars := "pending"
		if r.Review.Rating != nil {
			stars = fmt.Sprintf("%d/5", *r.Review.Rating)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, stars, r.Label, excerpt(r.Review.Content, 60))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	for _, c := range b.Distribution {
		fmt.Fprintf(w, "  %-14s %d\n", c.Label, c.Count)
	}
	if b.HasDominant {
		fmt.Fprintf(w, "Overall opinion of %q: %s\n", book.Title, b.Dominant)
	}
	if len(b.TopWords) > 0 {
		fmt.Fprint(w, "Frequent words:")
		for _, word := range b.TopWords {
			fmt.Fprintf(w, " %s(%d)", word.Key, word.Count)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func excerpt(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n-1]) + "…"
}
