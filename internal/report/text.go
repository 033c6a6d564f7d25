package report

import (
	"bufio"
	"fmt"
	"io"

	"chainbench/domain/run"
)

// NoDataMessage is printed instead of a report when no keys were read.
const NoDataMessage = "No data read from file."

// WriteText prints the human-readable timing report for result.
func WriteText(w io.Writer, result *run.Result) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Number of lines evaluated: %d\n", result.Count)
	fmt.Fprintln(bw)

	for _, o := range run.Orders {
		ins, srch, del := result.Timings[o].Seconds()
		fmt.Fprintf(bw, "%s:\n", o.Title())
		fmt.Fprintf(bw, "  Insert time (s): %.9f\n", ins)
		fmt.Fprintf(bw, "  Search time (s): %.9f\n", srch)
		fmt.Fprintf(bw, "  Delete time (s): %.9f\n", del)
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}
