package main

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"FinDash/internal/domain/models"
	"FinDash/internal/services/forecast"
	"FinDash/internal/services/provider"
	"FinDash/internal/usecase"
	pkghttp "FinDash/pkg/http"

	"github.com/spf13/cobra"
)

var (
	flagBaseURL string
	flagOffset  int
	flagTimeout time.Duration
	flagLimit   int
)

var rootCmd = &cobra.Command{
	Use:          "forecast",
	Short:        "Revenue forecast from a running dashboard",
	Long:         "Fetch monthly revenue from a dashboard server, fit the trend line locally and print the chart table.",
	SilenceUsage: true,
	RunE:         runRevenue,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Forecasts archived by the server",
	RunE:  runHistory,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagBaseURL, "base-url", "u", "http://localhost:1337", "Dashboard server URL")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.Flags().IntVarP(&flagOffset, "offset", "o", 12, "Months past the last observation to predict")
	historyCmd.Flags().IntVarP(&flagLimit, "limit", "n", usecase.DefaultHistoryLimit, "Number of records")

	rootCmd.AddCommand(historyCmd)
}

func newClient() *pkghttp.Client {
	return pkghttp.NewClient(
		pkghttp.WithBaseURL(flagBaseURL),
		pkghttp.WithTimeout(flagTimeout),
		pkghttp.WithHeader("Accept", "application/json"),
	)
}

func runRevenue(cmd *cobra.Command, _ []string) error {
	if flagOffset < 0 {
		return fmt.Errorf("offset must be >= 0, got %d", flagOffset)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
	defer cancel()

	seq, err := provider.NewHTTPProvider(newClient()).MonthlyRevenue(ctx)
	if err != nil {
		return err
	}

	obs := provider.ToObservations(seq)
	model, err := forecast.Fit(obs)
	if err != nil {
		return err
	}

	f := usecase.BuildForecast(seq, model, flagOffset)
	q := forecast.Assess(obs, model)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderForecast(f))
	fmt.Fprintf(out, "  slope %.2f  intercept %.2f  r2 %.4f  rmse %.2f\n",
		f.Slope, f.Intercept, q.RSquared, q.RMSE)
	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
	defer cancel()

	var resp struct {
		Data []models.ForecastRecord `json:"data"`
	}
	query := url.Values{"limit": []string{strconv.Itoa(flagLimit)}}
	if err := newClient().GetJSON(ctx, "/forecast/history", query, &resp); err != nil {
		return fmt.Errorf("forecast history: %w", err)
	}

	if len(resp.Data) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "\n  No archived forecasts.")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderHistory(resp.Data))
	return nil
}
