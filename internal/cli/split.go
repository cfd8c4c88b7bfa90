package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kyawswar87/share-mal/internal/calculator"
	"github.com/kyawswar87/share-mal/internal/draft"
	"github.com/kyawswar87/share-mal/pkg/api"
)

func newSplitCmd(s *session) *cobra.Command {
	var people int

	cmd := &cobra.Command{
		Use:   "split TOTAL [NAME...]",
		Short: "Preview an equal split without saving anything",
		Long: `Preview how TOTAL splits between the named people (or --people
anonymous ones). SHARE is what the form shows, rounded half-up to cents.
STORED is what the server saves: shares rounded down, with the remainder
going to the last person so the amounts add up to the total.`,
		Example: `  sharemal split 100 Alice Bob Carol
  sharemal split 10.01 --people 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args[1:]
			if len(names) == 0 {
				if people < 1 {
					return errors.New("name at least one person or pass --people")
				}
				for i := 0; i < people; i++ {
					names = append(names, fmt.Sprintf("Person %d", i+1))
				}
			}

			total, err := calculator.ParseAmount(args[0])
			if err != nil {
				return err
			}
			if total.LessThan(calculator.MinAmount) {
				return errors.New("total must be at least 0.01")
			}

			d := draft.New(s.now()).SetTotal(args[0])
			d = withParticipants(d.SetStrategy(api.OperatorEqually), names)
			stored, err := calculator.DistributeEqually(total, len(names))
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSHARE\tSTORED")
			for i, p := range d.Participants {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.Share, calculator.FormatAmount(stored[i]))
			}
			fmt.Fprintf(tw, "TOTAL\t%s\t%s\n", d.CustomTotal(), calculator.FormatAmount(total))
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&people, "people", "n", 0, "Number of people when no names are given")
	return cmd
}
