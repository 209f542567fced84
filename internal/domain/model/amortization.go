package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// AmortizationEntry is an immutable value object representing one period in an
// amortization schedule.
type AmortizationEntry struct {
	DueDate          time.Time
	Principal        decimal.Decimal
	Interest         decimal.Decimal
	Total            decimal.Decimal
	RemainingBalance decimal.Decimal
	Period           int
}

var (
	hundred       = decimal.NewFromInt(100)
	monthsPerYear = decimal.NewFromInt(12)
)

// MonthlyRate converts an annual rate in percentage points to a monthly
// periodic rate as a fraction (7.5 -> 0.00625).
func MonthlyRate(annualRatePct decimal.Decimal) decimal.Decimal {
	return annualRatePct.Div(hundred).Div(monthsPerYear)
}

// MonthlyPayment computes the fixed installment of a fully amortizing loan,
// rounded to cents:
//
//	payment = P * r * (1+r)^n / ((1+r)^n - 1)
//
// A zero rate splits the principal evenly.
func MonthlyPayment(principal, annualRatePct decimal.Decimal, termMonths int) decimal.Decimal {
	if termMonths <= 0 || !principal.IsPositive() {
		return decimal.Zero
	}

	monthlyRate := MonthlyRate(annualRatePct).InexactFloat64()
	if monthlyRate <= 0 {
		return principal.Div(decimal.NewFromInt(int64(termMonths))).Round(2)
	}

	// float64 for the power, decimal for the money.
	factor := math.Pow(1+monthlyRate, float64(termMonths))
	payment := principal.InexactFloat64() * monthlyRate * factor / (factor - 1)
	return decimal.NewFromFloat(payment).Round(2)
}

// GenerateAmortizationSchedule computes a standard fixed-payment amortization
// schedule.
//
// Parameters:
//   - principal:     the loan amount
//   - annualRatePct: annual interest rate in percentage points (e.g. 6.5)
//   - termMonths:    number of monthly periods
//   - startDate:     the date from which the first payment is due (one month later)
func GenerateAmortizationSchedule(
	principal decimal.Decimal,
	annualRatePct decimal.Decimal,
	termMonths int,
	startDate time.Time,
) []AmortizationEntry {
	if termMonths <= 0 || !principal.IsPositive() {
		return nil
	}

	monthlyPayment := MonthlyPayment(principal, annualRatePct, termMonths)
	monthlyRate := MonthlyRate(annualRatePct)

	schedule := make([]AmortizationEntry, 0, termMonths)
	remaining := principal

	for period := 1; period <= termMonths; period++ {
		interest := remaining.Mul(monthlyRate).Round(2)
		principalPart := monthlyPayment.Sub(interest)

		// Last period absorbs rounding so the balance reaches exactly zero.
		if period == termMonths || principalPart.GreaterThan(remaining) {
			principalPart = remaining
		}

		remaining = remaining.Sub(principalPart)

		schedule = append(schedule, AmortizationEntry{
			Period:           period,
			DueDate:          startDate.AddDate(0, period, 0),
			Principal:        principalPart,
			Interest:         interest,
			Total:            principalPart.Add(interest),
			RemainingBalance: remaining,
		})

		if remaining.IsZero() {
			break
		}
	}

	return schedule
}
