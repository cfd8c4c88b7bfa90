package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kyawswar87/share-mal/internal/draft"
	"github.com/kyawswar87/share-mal/pkg/api"
)

// ─── list ───────────────────────────────────────────────────────────────────

func newListCmd(s *session) *cobra.Command {
	var status, search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bills, newest first",
		Long: `List bills. --search matches titles case-insensitively and wins
over --status when both are given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := s.ctx(cmd)

			var err error
			switch {
			case search != "":
				err = s.app.Search(ctx, search)
			case status != "":
				st, perr := api.ParseBillStatus(status)
				if perr != nil {
					return perr
				}
				err = s.app.FilterByStatus(ctx, st)
			default:
				err = s.app.LoadBills(ctx)
			}
			if err != nil {
				return s.failure(err)
			}
			return printBills(out(cmd), s.app.State().Bills)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only bills with this status: INCOMPLETE, COMPLETE, PAID")
	cmd.Flags().StringVar(&search, "search", "", "Only bills whose title contains this text")
	return cmd
}

// ─── show ───────────────────────────────────────────────────────────────────

func newShowCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show BILL_ID",
		Short: "Show a bill and who has paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("bill", args[0])
			if err != nil {
				return err
			}
			bill, err := s.client.GetBill(s.ctx(cmd), id)
			if err != nil {
				return err
			}
			s.app.ViewBill(bill)
			return printBill(out(cmd), *s.app.State().Current)
		},
	}
}

// ─── create / edit ──────────────────────────────────────────────────────────

// billForm holds the form flags shared by create and edit.
type billForm struct {
	title   string
	total   string
	date    string
	split   string
	persons []string
}

func (f *billForm) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "Bill title")
	cmd.Flags().StringVar(&f.total, "total", "", "Total amount, e.g. 42.50")
	cmd.Flags().StringVar(&f.date, "date", "", "Bill date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.split, "split", "", "Split strategy: equal or custom")
	cmd.Flags().StringArrayVarP(&f.persons, "person", "p", nil, `Participant as "Name" or, for custom splits, "Name=amount" (repeatable)`)
}

// apply returns the transitions for the flags that were set, in an order
// that lets custom shares stick: strategy, then people, then the rest.
func (f *billForm) apply(cmd *cobra.Command) (func(draft.Draft) draft.Draft, error) {
	changed := cmd.Flags().Changed

	var strategy api.OperatorType
	if changed("split") {
		var err error
		if strategy, err = parseStrategy(f.split); err != nil {
			return nil, err
		}
	}

	return func(d draft.Draft) draft.Draft {
		if strategy != "" {
			d = d.SetStrategy(strategy)
		}
		if changed("person") {
			d = withParticipants(d, f.persons)
		}
		if changed("title") {
			d = d.SetTitle(f.title)
		}
		if changed("date") {
			d = d.SetBillDate(f.date)
		}
		if changed("total") {
			d = d.SetTotal(f.total)
		}
		return d
	}, nil
}

func newCreateCmd(s *session) *cobra.Command {
	var form billForm

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a bill",
		Example: `  sharemal create -t Dinner --total 90 -p Alice -p Bob -p Carol
  sharemal create -t Taxi --total 30 --split custom -p Alice=10 -p Bob=20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, err := form.apply(cmd)
			if err != nil {
				return err
			}
			s.app.NewBill(s.now())
			s.app.UpdateDraft(fn)
			if err := s.submit(cmd); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Created bill %q\n", form.title)
			return nil
		},
	}
	form.register(cmd)
	return cmd
}

func newEditCmd(s *session) *cobra.Command {
	var form billForm

	cmd := &cobra.Command{
		Use:   "edit BILL_ID",
		Short: "Edit a bill",
		Long: `Edit a bill. Only the given flags change; --person replaces the
whole participant list and resets everyone to unpaid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("bill", args[0])
			if err != nil {
				return err
			}
			fn, err := form.apply(cmd)
			if err != nil {
				return err
			}
			bill, err := s.client.GetBill(s.ctx(cmd), id)
			if err != nil {
				return err
			}
			s.app.EditBill(bill)
			s.app.UpdateDraft(fn)
			if err := s.submit(cmd); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Updated bill %d\n", id)
			return nil
		},
	}
	form.register(cmd)
	return cmd
}

// submit sends the open draft and reports field errors one per line.
func (s *session) submit(cmd *cobra.Command) error {
	fieldErrs, err := s.app.SubmitDraft(s.ctx(cmd))
	if err != nil {
		return s.failure(err)
	}
	if len(fieldErrs) == 0 {
		return nil
	}

	paths := make([]string, 0, len(fieldErrs))
	for p := range fieldErrs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	w := cmd.ErrOrStderr()
	for _, p := range paths {
		fmt.Fprintf(w, "  %s: %s\n", p, fieldErrs[p])
	}
	return fmt.Errorf("bill not saved: %d invalid field(s)", len(fieldErrs))
}

// ─── delete ─────────────────────────────────────────────────────────────────

func newDeleteCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "delete BILL_ID",
		Short: "Delete a bill and its participants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("bill", args[0])
			if err != nil {
				return err
			}
			if err := s.app.DeleteBill(s.ctx(cmd), api.BillDto{ID: id}); err != nil {
				return s.failure(err)
			}
			fmt.Fprintf(out(cmd), "Deleted bill %d\n", id)
			return nil
		},
	}
}

// ─── helpers ────────────────────────────────────────────────────────────────

func parseID(what, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id: %s", what, s)
	}
	return id, nil
}

func parseStrategy(s string) (api.OperatorType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equal", "equally":
		return api.OperatorEqually, nil
	case "custom":
		return api.OperatorCustom, nil
	default:
		return "", errors.New(`--split must be "equal" or "custom"`)
	}
}

// withParticipants replaces the participant list with specs of the form
// "Name" or "Name=amount". Amounts only stick on custom splits.
func withParticipants(d draft.Draft, specs []string) draft.Draft {
	d.Participants = []draft.Participant{{}}
	for i, spec := range specs {
		if i > 0 {
			d = d.AddParticipant()
		}
		name, amount, _ := strings.Cut(spec, "=")
		d = d.SetParticipantName(i, strings.TrimSpace(name))
		if amount != "" {
			d = d.SetParticipantShare(i, strings.TrimSpace(amount))
		}
	}
	// Re-applying the strategy recomputes equal shares for a single person.
	return d.SetStrategy(d.Strategy)
}
