package profiling

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sugawarayuuta/sonnet"
)

// WriteText renders summaries as an aligned table, one row per phase.
func WriteText(w io.Writer, summaries []Summary) error {
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, "No results recorded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "N\tORDER\tPHASE\tRUNS\tMEAN (s)\tMEDIAN (s)\tSTDDEV (s)\t±CI95 (s)\tMIN (s)\tMAX (s)\tOUTLIERS")
	for _, s := range summaries {
		for _, p := range []struct {
			name  string
			stats PhaseStats
		}{
			{"insert", s.Insert},
			{"search", s.Search},
			{"delete", s.Delete},
		} {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.9f\t%.9f\t%.9f\t%.9f\t%.9f\t%.9f\t%d\n",
				s.Count, s.Order, p.name, s.Runs,
				p.stats.Mean, p.stats.Median, p.stats.StdDev, p.stats.CI95,
				p.stats.Min, p.stats.Max, p.stats.Outliers)
		}
	}
	return tw.Flush()
}

// WriteJSON renders summaries as a JSON array.
func WriteJSON(w io.Writer, summaries []Summary) error {
	if summaries == nil {
		summaries = []Summary{}
	}
	data, err := sonnet.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("encoding summaries: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
