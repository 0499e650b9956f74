package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ynabmigrate/ynabmigrate/internal/logger"
	"github.com/ynabmigrate/ynabmigrate/internal/model"
)

func newCheckCommand() *cobra.Command {
	var src sourceOptions

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Build and validate the import plan without contacting Firefly III",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cmd.OutOrStdout(), src)
		},
	}
	src.register(cmd)

	return cmd
}

func runCheck(ctx context.Context, out io.Writer, src sourceOptions) error {
	_, plan, err := buildPlan(src, time.Now(), logger.FromContext(ctx))
	if err != nil {
		return err
	}
	printPlan(out, plan)
	return nil
}

func printPlan(w io.Writer, plan *model.Plan) {
	legs := map[model.LegKind]int{}
	for _, g := range plan.Groups {
		for _, leg := range g.Legs {
			legs[leg.Kind()]++
		}
	}

	fmt.Fprintf(w, "Asset accounts:   %d\n", len(plan.AssetAccounts))
	for _, a := range plan.AssetAccounts {
		fmt.Fprintf(w, "  %-24s %-12s %s opening %s\n", a.Name, a.Role, a.Currency, model.FormatAmount(a.OpeningBalance, a.Currency))
	}
	fmt.Fprintf(w, "Revenue accounts: %d\n", len(plan.RevenueAccounts))
	fmt.Fprintf(w, "Expense accounts: %d\n", len(plan.ExpenseAccounts))
	fmt.Fprintf(w, "Categories:       %d\n", len(plan.Categories))
	fmt.Fprintf(w, "Budgets:          %d (%d limits)\n", len(plan.Budgets), len(plan.BudgetLimits))
	fmt.Fprintf(w, "Groups:           %d (%d withdrawals, %d deposits, %d transfers)\n",
		len(plan.Groups), legs[model.KindWithdrawal], legs[model.KindDeposit], legs[model.KindTransfer])
	if months := plan.Balances.Months(); len(months) > 0 {
		fmt.Fprintf(w, "Months:           %s to %s\n", months[0].Format("2006-01"), months[len(months)-1].Format("2006-01"))
	}
}
