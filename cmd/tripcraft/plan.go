package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tripcraft/internal/ai"
	"tripcraft/internal/modules/itinerary"
	"tripcraft/internal/modules/trip"
)

type planOptions struct {
	destination string
	start       string
	end         string
	budget      float64
	travelers   int
	interests   []string
	tripType    string
	catalog     string
	offline     bool
	format      string
}

func newPlanCmd() *cobra.Command {
	var opts planOptions

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a day-by-day itinerary",
		Long:  "Generates an itinerary with the configured models, or the offline catalog when --offline is set or no model is available.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.destination, "destination", "d", "", "destination city")
	cmd.Flags().StringVar(&opts.start, "start", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.end, "end", "", "last day, YYYY-MM-DD")
	cmd.Flags().Float64Var(&opts.budget, "budget", 1000, "total budget in USD")
	cmd.Flags().IntVar(&opts.travelers, "travelers", 1, "number of travelers")
	cmd.Flags().StringSliceVar(&opts.interests, "interests", nil, "comma-separated interests")
	cmd.Flags().StringVar(&opts.tripType, "trip-type", "", "e.g. leisure, business, family")
	cmd.Flags().StringVar(&opts.catalog, "catalog", "", "fallback catalog YAML (default: built-in)")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "skip the models and use the fallback catalog")
	cmd.Flags().StringVarP(&opts.format, "output", "o", "text", "output format: text, json, or ics")
	_ = cmd.MarkFlagRequired("destination")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func runPlan(cmd *cobra.Command, opts planOptions) error {
	spec, err := opts.spec()
	if err != nil {
		return err
	}
	catalog, err := itinerary.LoadCatalog(opts.catalog)
	if err != nil {
		return err
	}

	var selector *ai.ModelSelector
	if !opts.offline {
		s, closeModels, err := loadModels(cmd.Context())
		if err != nil {
			return err
		}
		defer closeModels()
		selector = s
	}

	svc := itinerary.NewService(selector, itinerary.NewFallbackBuilder(catalog), nil)
	it, src, err := svc.Plan(cmd.Context(), spec)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch opts.format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Itinerary []itinerary.DaySchedule `json:"itinerary"`
			Source    itinerary.Source        `json:"source"`
		}{it.Days, src})
	case "ics":
		t := &trip.Trip{ID: "cli", Destination: spec.Destination, StartDate: spec.StartDate, EndDate: spec.EndDate, Itinerary: it}
		_, err := io.WriteString(out, trip.BuildCalendar(t, time.Now().UTC()))
		return err
	default:
		printItinerary(out, spec, it, src)
		return nil
	}
}

func (o planOptions) spec() (itinerary.TripSpec, error) {
	start, err := time.Parse(itinerary.DateLayout, o.start)
	if err != nil {
		return itinerary.TripSpec{}, fmt.Errorf("--start: expected YYYY-MM-DD, got %q", o.start)
	}
	end, err := time.Parse(itinerary.DateLayout, o.end)
	if err != nil {
		return itinerary.TripSpec{}, fmt.Errorf("--end: expected YYYY-MM-DD, got %q", o.end)
	}
	switch o.format {
	case "text", "json", "ics":
	default:
		return itinerary.TripSpec{}, fmt.Errorf("--output: unknown format %q", o.format)
	}
	return itinerary.TripSpec{
		Destination: o.destination,
		StartDate:   start,
		EndDate:     end,
		Budget:      o.budget,
		Travelers:   o.travelers,
		Interests:   o.interests,
		TripType:    o.tripType,
	}, nil
}

func printItinerary(w io.Writer, spec itinerary.TripSpec, it *itinerary.Itinerary, src itinerary.Source) {
	fmt.Fprintf(w, "%s, %d day(s) [%s]\n", spec.Destination, len(it.Days), src)
	for _, day := range it.Days {
		date := spec.StartDate.AddDate(0, 0, day.Day-1)
		fmt.Fprintf(w, "\nDay %d (%s)\n", day.Day, date.Format("Mon Jan 2"))
		for _, a := range day.Activities {
			line := fmt.Sprintf("  %-9s %s", a.Time, a.Title)
			if a.PriceRange != "" {
				line += " " + a.PriceRange
			}
			fmt.Fprintln(w, line)
			if a.Description != "" {
				fmt.Fprintf(w, "            %s\n", strings.TrimSpace(a.Description))
			}
		}
	}
}
