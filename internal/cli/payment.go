package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPayCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "pay BILL_ID PERSON_ID",
		Short: "Toggle a person's payment status",
		Long: `Flip a person between PAID and UNPAID. The bill becomes COMPLETE
once everybody has paid.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			billID, err := parseID("bill", args[0])
			if err != nil {
				return err
			}
			personID, err := parseID("person", args[1])
			if err != nil {
				return err
			}

			ctx := s.ctx(cmd)
			bill, err := s.client.GetBill(ctx, billID)
			if err != nil {
				return err
			}
			s.app.ViewBill(bill)
			if err := s.app.TogglePayment(ctx, personID); err != nil {
				return s.failure(err)
			}

			current := s.app.State().Current
			for _, p := range current.Persons {
				if p.ID == personID {
					fmt.Fprintf(out(cmd), "%s is now %s (bill %s)\n", p.Name, p.PaymentStatus, current.Status)
					return nil
				}
			}
			return printBill(out(cmd), *current)
		},
	}
}

func newRefreshStatusCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-status BILL_ID",
		Short: "Recompute a bill's status from its payments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("bill", args[0])
			if err != nil {
				return err
			}
			bill, err := s.client.RefreshBillStatus(s.ctx(cmd), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Bill %d is %s\n", bill.ID, bill.Status)
			return nil
		},
	}
}
