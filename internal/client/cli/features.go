package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/agrisonic/agrisonic/internal/client/models"
	"github.com/agrisonic/agrisonic/internal/client/services"
	"github.com/agrisonic/agrisonic/internal/common"
)

// weatherQuery builds a query from the command arguments, falling back to
// the profile address and then to a prompt. The stored language is used.
func (a *App) weatherQuery(ctx context.Context, args []string) (services.WeatherQuery, error) {
	cred, err := a.store.Credential(ctx)
	if err != nil {
		return services.WeatherQuery{}, err
	}
	q := services.WeatherQuery{Location: strings.Join(args, " "), Lang: cred.Language}
	if q.Location != "" {
		return q, nil
	}

	if u, err := a.store.Profiles().Current(ctx); err == nil && u != nil && u.Address != nil && *u.Address != "" {
		q.Location = *u.Address
		return q, nil
	}
	if q.Location, err = getSimpleText(a.reader, "Enter location", a.out); err != nil {
		return services.WeatherQuery{}, err
	}
	return q, nil
}

// Weather prints the current conditions for a location.
func (a *App) Weather(ctx context.Context, args []string) error {
	q, err := a.weatherQuery(ctx, args)
	if err != nil {
		return err
	}
	cur, err := a.weather.Current(ctx, q)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s: %s, %s (feels like %s)\n", q.Location, cur.Description, cur.Temp, cur.FeelsLike)
	fmt.Fprintf(a.out, "Humidity %s, wind %s, pressure %s\n", cur.Humidity, cur.WindSpeed, cur.Pressure)
	if cur.UVIndex != nil {
		fmt.Fprintf(a.out, "UV index %s\n", *cur.UVIndex)
	}
	return nil
}

// Forecast prints the daily forecast for a location.
func (a *App) Forecast(ctx context.Context, args []string) error {
	q, err := a.weatherQuery(ctx, args)
	if err != nil {
		return err
	}
	data, err := a.weather.Forecast(ctx, q)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s: %s, %s\n", data.Location, data.Current.Description, data.Current.Temp)
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tTEMP\tRAIN\tHUMIDITY\tWIND\tCONDITIONS")
	for _, d := range data.Forecast {
		temp := d.Temp
		if d.MinTemp != nil && d.MaxTemp != nil {
			temp = *d.MinTemp + " / " + *d.MaxTemp
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", d.ShortDate, temp, d.RainChance, d.Humidity, d.WindSpeed, d.Description)
	}
	return tw.Flush()
}

// Predict asks for the six soil readings and prints the ranked crops.
func (a *App) Predict(ctx context.Context) error {
	var r models.SoilReading
	prompts := []struct {
		label string
		def   float64
		dst   *float64
	}{
		{"Nitrogen (mg/kg)", 0, &r.Nitrogen},
		{"Phosphorus (mg/kg)", 0, &r.Phosphorus},
		{"Potassium (mg/kg)", 0, &r.Potassium},
		{"pH", 7, &r.PH},
		{"EC (dS/m)", 0, &r.EC},
		{"Moisture (%)", 0, &r.Moisture},
	}
	for _, p := range prompts {
		v, err := GetNumber(a.reader, p.label, p.def, a.out)
		if err != nil {
			return err
		}
		*p.dst = v
	}

	preds, err := a.crop.Predict(ctx, r)
	if err != nil {
		return err
	}
	if len(preds) == 0 {
		fmt.Fprintln(a.out, "No suitable crops found.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CROP\tSCORE\tCATEGORY")
	for _, p := range preds {
		category := "-"
		if p.CropCategory != nil {
			category = *p.CropCategory
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", p.CropName, p.SuitabilityScore, category)
	}
	return tw.Flush()
}

// Market prints recent prices. Usage: market [crop] [limit]
func (a *App) Market(ctx context.Context, args []string) error {
	var q services.MarketQuery
	if len(args) > 0 {
		q.Crop = args[0]
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return common.NewValidationError("limit", "must be a number")
		}
		q.Limit = n
	}

	prices, err := a.market.Prices(ctx, q)
	if err != nil {
		return err
	}
	if len(prices) == 0 {
		fmt.Fprintln(a.out, "No prices available.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tMARKET\tPRICE\tTREND\tDATE")
	for _, p := range prices {
		fmt.Fprintf(tw, "%s\t%s\t%s %.2f/%s\t%s %+.1f%%\t%s\n",
			p.ItemName, p.MarketName, p.Currency, p.Price, p.Unit, p.TrendDirection, p.PercentageChange, p.DateRecorded)
	}
	return tw.Flush()
}

// Lang prints the stored language, or sets it when an argument is given.
func (a *App) Lang(ctx context.Context, args []string) error {
	creds := a.store.Credentials()
	if len(args) == 0 {
		lang, err := creds.Language(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Language:", lang)
		return nil
	}

	lang := services.NormalizeLanguage(args[0])
	if err := creds.SetLanguage(ctx, lang); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Language set to", lang)
	return nil
}

// Status prints the session state and what is stored locally.
func (a *App) Status(ctx context.Context) error {
	cred, err := a.store.Credential(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "State:", a.authService.State())
	fmt.Fprintln(a.out, "Server:", a.config.ServerBaseURL)
	fmt.Fprintln(a.out, "Language:", cred.Language)
	if !cred.HasSession() {
		fmt.Fprintln(a.out, "Signed in: no")
		return nil
	}
	fmt.Fprintln(a.out, "Signed in: yes")
	if exp, ok := services.TokenExpiry(cred.SessionToken); ok {
		fmt.Fprintf(a.out, "Session expires: %s\n", exp.Local().Format(time.RFC1123))
	}

	u, err := a.store.Profiles().Current(ctx)
	if err != nil {
		return err
	}
	if u != nil {
		printProfile(a.out, u)
		return nil
	}

	id, err := a.store.Credentials().Identity(ctx)
	if err != nil {
		return err
	}
	if !id.IsZero() {
		fmt.Fprintf(a.out, "%s <%s> (profile not cached)\n", id.Name, id.Email)
	}
	return nil
}

// WriteMetrics dumps the gateway metrics of this process.
func (a *App) WriteMetrics(w io.Writer) error {
	return a.metrics.WriteText(w)
}

func printProfile(w io.Writer, u *models.User) {
	fmt.Fprintf(w, "%s <%s>\n", u.Name, u.Email)
	if u.Phone != nil {
		fmt.Fprintln(w, "Phone:", *u.Phone)
	}
	if u.Address != nil {
		fmt.Fprintln(w, "Address:", *u.Address)
	}
	if u.FarmSize != nil {
		fmt.Fprintf(w, "Farm size: %g acres\n", *u.FarmSize)
	}
	if len(u.CropTypes) > 0 {
		fmt.Fprintln(w, "Crops:", strings.Join(u.CropTypes, ", "))
	}
	if !u.IsVerified {
		fmt.Fprintln(w, "Email not verified")
	}
}
