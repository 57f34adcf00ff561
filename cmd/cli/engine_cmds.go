package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/wealthengine/internal/adapter/http/dto"
	"github.com/iho/wealthengine/internal/domain"
	"github.com/iho/wealthengine/internal/engine"
	"github.com/iho/wealthengine/internal/usecase"
)

const cliUserID = "cli"

// holdingFile is the on-disk shape of a holding.
type holdingFile struct {
	ID               string           `json:"id"`
	Symbol           string           `json:"symbol"`
	Name             string           `json:"name,omitempty"`
	Currency         string           `json:"currency"`
	Quantity         *decimal.Decimal `json:"quantity,omitempty"`
	UnitCost         decimal.Decimal  `json:"unit_cost"`
	CurrentUnitPrice *decimal.Decimal `json:"current_unit_price,omitempty"`
	Value            decimal.Decimal  `json:"value"`
	CategoryID       string           `json:"category_id,omitempty"`
}

func (f holdingFile) toDomain() (domain.Holding, error) {
	currency, err := domain.ParseCurrency(f.Currency)
	if err != nil {
		return domain.Holding{}, fmt.Errorf("holding %s: %w", f.ID, err)
	}
	return domain.Holding{
		ID:               f.ID,
		UserID:           cliUserID,
		Symbol:           f.Symbol,
		Name:             f.Name,
		Currency:         currency,
		Quantity:         f.Quantity,
		UnitCost:         f.UnitCost,
		CurrentUnitPrice: f.CurrentUnitPrice,
		Value:            f.Value,
		CategoryID:       f.CategoryID,
	}, nil
}

func loadHoldings(path string) ([]domain.Holding, error) {
	var files []holdingFile
	if err := readJSONFile(path, &files); err != nil {
		return nil, err
	}
	holdings := make([]domain.Holding, 0, len(files))
	for _, f := range files {
		h, err := f.toDomain()
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}

// loadRates reads a rates file in the same shape the API accepts.
func loadRates(path string) (domain.ExchangeRateSet, error) {
	var req dto.SaveRatesRequest
	if err := readJSONFile(path, &req); err != nil {
		return domain.ExchangeRateSet{}, err
	}

	rates := make(map[string]decimal.Decimal, len(req.Rates))
	for key, rate := range req.Rates {
		rates[strings.ToUpper(key)] = rate
	}
	set := domain.ExchangeRateSet{
		UserID:    cliUserID,
		Rates:     rates,
		Source:    domain.RateSource(req.Source),
		UpdatedAt: time.Now().UTC(),
	}
	if err := set.Validate(); err != nil {
		return domain.ExchangeRateSet{}, err
	}
	return set, nil
}

func newConvertCmd() *cobra.Command {
	var (
		amount    string
		from      string
		to        string
		ratesPath string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert an amount between currencies",
		Long:  `Convert an amount into one currency, or into every supported currency when --to is omitted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			fromCurrency, err := domain.ParseCurrency(from)
			if err != nil {
				return err
			}
			rates, err := loadRates(ratesPath)
			if err != nil {
				return err
			}

			if to == "" {
				all, err := engine.ConvertToAll(value, fromCurrency, rates)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), all)
			}

			toCurrency, err := domain.ParseCurrency(to)
			if err != nil {
				return err
			}
			converted, err := engine.Convert(value, fromCurrency, toCurrency, rates)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"amount":   converted,
				"currency": toCurrency,
			})
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Amount to convert")
	cmd.Flags().StringVar(&from, "from", "", "Source currency")
	cmd.Flags().StringVar(&to, "to", "", "Target currency")
	cmd.Flags().StringVar(&ratesPath, "rates", "", "Path to a rates JSON file")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("rates")

	return cmd
}

func newLotCmd() *cobra.Command {
	var quantity, unitCost, lotQuantity, lotPrice string

	cmd := &cobra.Command{
		Use:   "lot",
		Short: "Blend a purchase lot into a position",
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseDecimals(map[string]string{
				"quantity":     quantity,
				"unit-cost":    unitCost,
				"lot-quantity": lotQuantity,
				"lot-price":    lotPrice,
			})
			if err != nil {
				return err
			}

			res, err := engine.ApplyLot(values["quantity"], values["unit-cost"], values["lot-quantity"], values["lot-price"])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"quantity":   res.Quantity,
				"unit_cost":  res.UnitCost,
				"cost_basis": res.Quantity.Mul(res.UnitCost),
			})
		},
	}

	cmd.Flags().StringVar(&quantity, "quantity", "0", "Existing quantity")
	cmd.Flags().StringVar(&unitCost, "unit-cost", "0", "Existing weighted unit cost")
	cmd.Flags().StringVar(&lotQuantity, "lot-quantity", "", "Quantity bought")
	cmd.Flags().StringVar(&lotPrice, "lot-price", "", "Unit price paid")
	_ = cmd.MarkFlagRequired("lot-quantity")
	_ = cmd.MarkFlagRequired("lot-price")

	return cmd
}

func newValueCmd() *cobra.Command {
	var holdingsPath, ratesPath, display string

	cmd := &cobra.Command{
		Use:   "value",
		Short: "Value holdings and aggregate by category and currency",
		RunE: func(cmd *cobra.Command, args []string) error {
			displayCurrency, err := domain.ParseCurrency(display)
			if err != nil {
				return err
			}
			holdings, err := loadHoldings(holdingsPath)
			if err != nil {
				return err
			}
			rates, err := loadRates(ratesPath)
			if err != nil {
				return err
			}

			snapshot, err := engine.Aggregate(holdings, nil, rates, displayCurrency)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), dto.SnapshotFromEngine(&snapshot))
		},
	}

	cmd.Flags().StringVar(&holdingsPath, "holdings", "", "Path to a holdings JSON file")
	cmd.Flags().StringVar(&ratesPath, "rates", "", "Path to a rates JSON file")
	cmd.Flags().StringVar(&display, "display", string(domain.CurrencySGD), "Display currency")
	_ = cmd.MarkFlagRequired("holdings")
	_ = cmd.MarkFlagRequired("rates")

	return cmd
}

func newRollupCmd() *cobra.Command {
	var (
		snapshotsPath string
		keepLosses    bool
	)

	cmd := &cobra.Command{
		Use:   "rollup",
		Short: "Roll monthly snapshots up into yearly records",
		RunE: func(cmd *cobra.Command, args []string) error {
			var requests []dto.MonthlySnapshotRequest
			if err := readJSONFile(snapshotsPath, &requests); err != nil {
				return err
			}

			snapshots := make([]domain.MonthlySnapshot, 0, len(requests))
			for i := range requests {
				s := requests[i].ToDomain(cliUserID)
				if err := s.Validate(); err != nil {
					return fmt.Errorf("snapshot %d: %w", i, err)
				}
				snapshots = append(snapshots, *s)
			}

			yearly := engine.AggregateMonthly(snapshots, engine.AggregateOptions{ClampLosses: !keepLosses})
			series := &usecase.PerformanceSeries{Records: yearly, Summary: engine.Summarize(yearly)}
			return printJSON(cmd.OutOrStdout(), dto.SeriesFromUseCase(series))
		},
	}

	cmd.Flags().StringVar(&snapshotsPath, "snapshots", "", "Path to a monthly snapshots JSON file")
	cmd.Flags().BoolVar(&keepLosses, "keep-losses", false, "Report negative market gains instead of flooring them at zero")
	_ = cmd.MarkFlagRequired("snapshots")

	return cmd
}

func newReconcileCmd() *cobra.Command {
	var holdingsPath, percent, absolute string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare stored holding values with quantity x price",
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseDecimals(map[string]string{
				"tolerance-percent":  percent,
				"tolerance-absolute": absolute,
			})
			if err != nil {
				return err
			}
			holdings, err := loadHoldings(holdingsPath)
			if err != nil {
				return err
			}

			tol := engine.Tolerance{Percent: values["tolerance-percent"], Absolute: values["tolerance-absolute"]}
			reports := make([]engine.ReconciliationReport, 0, len(holdings))
			inconsistent := 0
			for _, h := range holdings {
				report := engine.Reconcile(h, tol)
				if !report.Consistent {
					inconsistent++
				}
				reports = append(reports, report)
			}

			if err := printJSON(cmd.OutOrStdout(), dto.ReconciliationsFromEngine(reports)); err != nil {
				return err
			}
			if inconsistent > 0 {
				return fmt.Errorf("%d of %d holdings inconsistent", inconsistent, len(holdings))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&holdingsPath, "holdings", "", "Path to a holdings JSON file")
	cmd.Flags().StringVar(&percent, "tolerance-percent", engine.DefaultTolerance.Percent.String(), "Allowed drift in percent")
	cmd.Flags().StringVar(&absolute, "tolerance-absolute", engine.DefaultTolerance.Absolute.String(), "Allowed drift in native currency units")
	_ = cmd.MarkFlagRequired("holdings")

	return cmd
}

func parseDecimals(raw map[string]string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(raw))
	for name, s := range raw {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s %q: %w", name, s, err)
		}
		out[name] = d
	}
	return out, nil
}
