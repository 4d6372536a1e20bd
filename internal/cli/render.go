package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/vanshika/bnpltrace/backend/internal/api"
)

func field(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "%-21s%v\n", label+":", value)
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func renderSyncResult(w io.Writer, res api.SyncResult) error {
	field(w, "Run", res.RunID)
	field(w, "User", res.UserEmail)
	field(w, "Fetched", res.Fetched)
	field(w, "Inserted", res.Inserted)
	field(w, "Skipped", res.Skipped)
	field(w, "Duplicates", res.Duplicates)
	field(w, "Failed", res.Failed)
	if res.Error != "" {
		field(w, "Error", res.Error)
	}
	if len(res.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, e := range res.Errors {
			fmt.Fprintf(w, "  %s [%s] %s\n", orDash(e.MessageID), e.Stage, e.Error)
		}
	}
	return nil
}

func renderAnalysis(w io.Writer, a api.Analysis) {
	field(w, "Active obligations", a.TransactionCount)
	field(w, "Total outstanding", amount(a.TotalOutstanding))
	field(w, "Monthly obligation", amount(a.MonthlyObligation))
	field(w, "Upcoming dues", amount(a.UpcomingDues))
	field(w, "Debt ratio", strconv.FormatFloat(a.DebtRatio, 'f', 4, 64))
	field(w, "Risk", fmt.Sprintf("%s (score %d)", a.RiskLevel, a.RiskScore))
}

func renderAffordability(w io.Writer, f api.Affordability) {
	field(w, "Disposable income", amount(f.DisposableIncome))
	field(w, "Max safe EMI", amount(f.MaxSafeEMI))
	field(w, "Available capacity", amount(f.AvailableEMICapacity))
	field(w, "EMI share", amount(f.EMIPercentage)+"%")
	field(w, "Safe capacity used", amount(f.SafeEMIPercentage)+"%")
	field(w, "Affordability", f.Status)
}

func renderReport(w io.Writer, report api.Report) error {
	field(w, "User", report.Profile.Email)
	field(w, "Salary", amount(report.Analysis.Salary))
	renderAnalysis(w, report.Analysis)
	fmt.Fprintln(w)
	renderAffordability(w, report.Affordability)
	return nil
}

const (
	recordHeaderFormat = "%-5s %-12s %12s %5s %10s %-10s %-7s %s\n"
	recordRowFormat    = "%-5d %-12s %12s %5d %10s %-10s %-7s %s\n"
)

func renderRecords(w io.Writer, list api.RecordList) error {
	if list.Count == 0 {
		fmt.Fprintln(w, "No records.")
		return nil
	}
	fmt.Fprintf(w, recordHeaderFormat, "ID", "VENDOR", "AMOUNT", "INST", "MONTHLY", "DUE", "STATUS", "SUBJECT")
	for _, rec := range list.Records {
		due := "-"
		if rec.DueDate != nil {
			due = *rec.DueDate
		}
		fmt.Fprintf(w, recordRowFormat,
			rec.ID, rec.Vendor, amount(rec.Amount), rec.Installments,
			amount(rec.MonthlyAmount), due, rec.Status, rec.Subject)
	}
	fmt.Fprintf(w, "%d record(s)\n", list.Count)
	return nil
}

func renderMarkPaid(w io.Writer, res api.MarkPaidResult) error {
	fmt.Fprintf(w, "Record %d (%s) is paid.\n", res.Record.ID, res.Record.Vendor)
	fmt.Fprintln(w)
	renderAnalysis(w, res.Analysis)
	field(w, "Affordability", res.Affordability.Status)
	return nil
}

func renderProfile(w io.Writer, p api.Profile) error {
	field(w, "Email", p.Email)
	field(w, "Name", orDash(p.FullName))
	field(w, "City", orDash(p.City))
	field(w, "Salary", amount(p.Salary))
	field(w, "Monthly rent", amount(p.MonthlyRent))
	field(w, "Other expenses", amount(p.OtherExpenses))
	field(w, "Existing loans", amount(p.ExistingLoans))
	saved := "no (defaults)"
	if p.Saved {
		saved = "yes"
	}
	field(w, "Saved", saved)
	return nil
}
