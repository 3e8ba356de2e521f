package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/dmitrijs2005/crmclient/internal/client/client"
	"github.com/dmitrijs2005/crmclient/internal/client/models"
)

var errReportsForbidden = errors.New("reports not available for this role")

// canSeeReports applies the reports_role gate. Without one configured any
// logged-in user may ask; the server still has the final say.
func (a *App) canSeeReports(ctx context.Context) bool {
	if !a.reportsGated {
		return true
	}
	return a.session.HasRole(ctx, a.reportsRole)
}

// Reports lists the available reports, or prints the one named in args.
func (a *App) Reports(ctx context.Context, args []string) error {
	if !a.requireSession(ctx) {
		return errNotLoggedIn
	}
	if !a.canSeeReports(ctx) {
		fmt.Fprintln(a.out, "Reports are not available for your role.")
		return errReportsForbidden
	}

	if len(args) == 0 {
		fmt.Fprintln(a.out, "Available reports:")
		for _, name := range client.ReportNames {
			fmt.Fprintln(a.out, "  "+name)
		}
		return nil
	}

	name := args[0]
	if !slices.Contains(client.ReportNames, name) {
		fmt.Fprintf(a.out, "Unknown report %q.\n", name)
		return fmt.Errorf("unknown report %q", name)
	}

	if name == client.ReportEmployeeLeads {
		rep, err := a.api.EmployeeLeadReport(ctx)
		if err != nil {
			a.reportAPIError(ctx, err)
			return err
		}
		return printEmployeeLeads(a, rep)
	}

	raw, err := a.api.Report(ctx, name)
	if err != nil {
		a.reportAPIError(ctx, err)
		return err
	}
	return printJSON(a.out, raw)
}

func printEmployeeLeads(a *App, rep *models.EmployeeLeadReport) error {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "EMPLOYEE\tNEW\tCONTACTED\tQUALIFIED\tCONVERTED\tLOST\tTOTAL\t")

	row := func(name string, s models.LeadStatusSummary) {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t\n",
			name, s.New, s.Contacted, s.Qualified, s.Converted, s.Lost, s.Sum())
	}
	for _, r := range rep.Rows {
		row(r.EmployeeName, r.Counts)
	}
	row("Total", rep.Total)
	return tw.Flush()
}
