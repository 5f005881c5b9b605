package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zatekoja/specialistfinder/backend/internal/app"
	"github.com/zatekoja/specialistfinder/backend/internal/application/services"
)

type containerFactory func(ctx context.Context) (*app.Container, error)

func newRootCmd(out io.Writer, build containerFactory) *cobra.Command {
	root := &cobra.Command{
		Use:           "finderctl",
		Short:         "Find specialist hospitals and extract diseases from reports",
		SilenceUsage: true,
	}
	root.SetOut(out)

	root.AddCommand(
		classifyCmd(build),
		nearbyCmd(build),
		cityCmd(build),
		extractCmd(build),
	)
	return root
}

// withContainer builds the dependencies for one command run and closes them afterwards.
func withContainer(cmd *cobra.Command, build containerFactory, run func(ctx context.Context, c *app.Container) (interface{}, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := build(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	result, err := run(ctx, c)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func classifyCmd(build containerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <symptom>...",
		Short: "Map symptoms to medical specialties",
		Example: `  finderctl classify "chest pain" "skin rash"
  finderctl classify "chest pain, skin rash"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, build, func(ctx context.Context, c *app.Container) (interface{}, error) {
				return c.Finder.Classify(ctx, splitSymptoms(args))
			})
		},
	}
}

func nearbyCmd(build containerFactory) *cobra.Command {
	var lat, lng float64
	var symptoms []string

	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "Find hospitals around a coordinate for the given symptoms",
		Example: `  finderctl nearby --lat 18.5204 --lng 73.8567 --symptom "chest pain"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, build, func(ctx context.Context, c *app.Container) (interface{}, error) {
				return c.Finder.FindNearby(ctx, services.NearbyRequest{
					Latitude:  lat,
					Longitude: lng,
					Symptoms:  splitSymptoms(symptoms),
				})
			})
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude")
	cmd.Flags().StringSliceVarP(&symptoms, "symptom", "s", nil, "symptom (repeatable)")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}

func cityCmd(build containerFactory) *cobra.Command {
	var city string
	var symptoms []string

	cmd := &cobra.Command{
		Use:     "city",
		Short:   "Find hospitals in a city for the given symptoms",
		Example: `  finderctl city --name Pune --symptom acne`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, build, func(ctx context.Context, c *app.Container) (interface{}, error) {
				return c.Finder.FindInCity(ctx, services.CityRequest{City: city, Symptoms: splitSymptoms(symptoms)})
			})
		},
	}
	cmd.Flags().StringVar(&city, "name", "", "city name")
	cmd.Flags().StringSliceVarP(&symptoms, "symptom", "s", nil, "symptom (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func extractCmd(build containerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file.pdf>",
		Short: "Extract and highlight diseases in a PDF report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			return withContainer(cmd, build, func(ctx context.Context, c *app.Container) (interface{}, error) {
				return c.Extraction.Extract(ctx, args[0], data)
			})
		},
	}
}

// splitSymptoms accepts repeated arguments as well as comma-separated lists.
func splitSymptoms(args []string) []string {
	var out []string
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
