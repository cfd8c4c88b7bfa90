package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/kyawswar87/share-mal/internal/calculator"
	"github.com/kyawswar87/share-mal/pkg/api"
)

func printBills(w io.Writer, bills []api.BillDto) error {
	if len(bills) == 0 {
		_, err := fmt.Fprintln(w, "No bills found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTOTAL\tSPLIT\tDATE\tSTATUS\tPAID")
	for _, b := range bills {
		sum := calculator.Summarize(b.Persons)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d/%d\n",
			b.ID, b.Title, calculator.FormatAmount(b.TotalAmount), b.Operator.Label(),
			b.BillDate, b.Status, sum.PaidCount, len(b.Persons))
	}
	return tw.Flush()
}

func printBill(w io.Writer, b api.BillDto) error {
	sum := calculator.Summarize(b.Persons)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Bill:\t%d %s\n", b.ID, b.Title)
	fmt.Fprintf(tw, "Total:\t%s (%s)\n", calculator.FormatAmount(b.TotalAmount), b.Operator.Label())
	fmt.Fprintf(tw, "Date:\t%s\n", b.BillDate)
	fmt.Fprintf(tw, "Status:\t%s\n", b.Status)
	fmt.Fprintf(tw, "Paid:\t%s, outstanding %s\n", calculator.FormatAmount(sum.Paid), calculator.FormatAmount(sum.Outstanding))
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "ID\tNAME\tAMOUNT\tPAYMENT")
	for _, p := range b.Persons {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, calculator.FormatAmount(p.Amount), p.PaymentStatus)
	}
	return tw.Flush()
}
