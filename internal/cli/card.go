package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/pixparcela/internal/model"
)

// Verdict returns the one-line recommendation for a result.
func Verdict(res model.ComparisonResult) string {
	if res.FavorsInstallment {
		return "Parcelar compensa"
	}
	return "Pagar à vista compensa"
}

// RateLine describes the rate a comparison used.
func RateLine(rate model.RateInfo) string {
	parts := []string{rate.Kind.Label(), FormatRate(rate.MonthlyRate) + " a.m."}
	if rate.AnnualRate != nil {
		parts = append(parts, FormatAnnual(*rate.AnnualRate))
	}
	if rate.AsOf != "" {
		parts = append(parts, "em "+rate.AsOf)
	}
	line := strings.Join(parts, " · ")
	if rate.Fallback {
		line += " (fallback)"
	}
	return line
}

// RenderComparison renders the result card for one comparison.
func RenderComparison(name string, in model.PurchaseInput, rate model.RateInfo, res model.ComparisonResult) string {
	var b strings.Builder

	title := "Resultado"
	if name != "" {
		title = name
	}

	row := func(label, value string) {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  %-22s", label)))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	b.WriteString(headerStyle.Render("  " + title))
	b.WriteString("\n\n")
	row("À vista", FormatBRL(res.CashPrice))
	row("Parcelado", FormatInstallments(in.InstallmentCount, in.InstallmentAmount))
	row("Total parcelado", FormatBRL(res.TotalInstallmentAmount))
	row("Valor presente", FormatBRL(res.PresentValue))
	b.WriteString("\n")
	row("Taxa", rateStyle.Render(RateLine(rate)))
	b.WriteString("\n")

	b.WriteString("  ")
	b.WriteString(goodStyle.Render(Verdict(res)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  Vantagem de %s (%s)",
		FormatBRL(res.NominalDifference), FormatPercent(res.PercentualDifference))))
	b.WriteString("\n")
	if rate.Fallback {
		b.WriteString(warnStyle.Render("  Taxa Selic indisponível; usando taxa de referência alternativa."))
		b.WriteString("\n")
	}

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)
	return card.Render(strings.TrimRight(b.String(), "\n"))
}

// BudgetsTable builds the list view of saved budgets.
func BudgetsTable(budgets []model.Budget, now time.Time) Table {
	t := Table{
		Title:   fmt.Sprintf("Orçamentos salvos (%d)", len(budgets)),
		Headers: []string{"Nome", "À vista", "Parcelado", "Valor presente", "Melhor", "Vantagem", "Atualizado", "ID"},
	}
	for _, b := range budgets {
		best := "à vista"
		if b.FavorsInstallment {
			best = "parcelar"
		}
		t.Rows = append(t.Rows, []string{
			b.Name,
			FormatBRL(b.CashPrice),
			FormatInstallments(b.InstallmentCount, b.InstallmentAmount),
			FormatBRL(b.PresentValue),
			best,
			FormatPercent(b.PercentualDifference),
			FormatAge(b.UpdatedAt, now),
			ShortID(b.ID),
		})
	}
	return t
}

// ShortID returns the first eight characters of an ID.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ShareMessage is the plain-text summary a user can paste into a chat.
func ShareMessage(b model.Budget) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", b.Name)
	fmt.Fprintf(&sb, "À vista: %s\n", FormatBRL(b.CashPrice))
	fmt.Fprintf(&sb, "Parcelado: %s (total %s)\n",
		FormatInstallments(b.InstallmentCount, b.InstallmentAmount), FormatBRL(b.TotalInstallmentAmount))
	fmt.Fprintf(&sb, "Valor presente das parcelas: %s\n", FormatBRL(b.PresentValue))
	fmt.Fprintf(&sb, "Taxa: %s\n", RateLine(b.Rate()))
	fmt.Fprintf(&sb, "%s: vantagem de %s (%s)\n",
		Verdict(b.Result()), FormatBRL(b.NominalDifference), FormatPercent(b.PercentualDifference))
	return sb.String()
}
