package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/samirrijal/geoext/internal/codec/wkt"
	"github.com/samirrijal/geoext/internal/core/domain"
	"github.com/samirrijal/geoext/internal/core/usecases"
	"github.com/samirrijal/geoext/internal/pkg/logging"
)

var geo = usecases.NewGeometryService()

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// newRootCmd builds the command tree. Output goes to cmd.OutOrStdout so
// tests can capture it.
func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "geoctl",
		Short: "Planar geometry toolkit",
		Long: "Run geometry kernel operations on WKT input and submit feature imports.\n" +
			"Geometries use the simplified dialect, e.g. POINT(1 2) or SRID=4326;POINT(1 2).",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), logLevel, "text"))
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		distanceCmd(),
		lengthCmd(),
		areaCmd(),
		containsCmd(),
		relateCmd(),
		intersectCmd(),
		measureCmd(),
		convertCmd(),
		importCmd(),
	)
	return root
}

func distanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "distance POINT POINT",
		Short: "Distance between two points (meters for SRID 4326)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wkt.DecodePoint(args[0])
			if err != nil {
				return err
			}
			b, err := wkt.DecodePoint(args[1])
			if err != nil {
				return err
			}
			d, err := geo.Distance(a, b)
			if err != nil {
				return err
			}
			return printValue(cmd, d)
		},
	}
}

func lengthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "length LINESTRING",
		Short: "Length of a linestring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ls, err := wkt.DecodeLineString(args[0])
			if err != nil {
				return err
			}
			return printValue(cmd, geo.Length(ls))
		},
	}
}

func areaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "area POLYGON",
		Short: "Area of a polygon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := wkt.DecodePolygon(args[0])
			if err != nil {
				return err
			}
			return printValue(cmd, geo.Area(p))
		},
	}
}

func containsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contains POLYGON POINT",
		Short: "Whether a point lies inside a polygon (crossings test)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := wkt.DecodePolygon(args[0])
			if err != nil {
				return err
			}
			pt, err := wkt.DecodePoint(args[1])
			if err != nil {
				return err
			}
			inside, err := geo.Contains(p, pt)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), inside)
			return err
		},
	}
}

func relateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relate P1 P2 Q1 Q2",
		Short: "Relation between segments P1-P2 and Q1-Q2",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pts [4]domain.Point
			for i, s := range args {
				p, err := wkt.DecodePoint(s)
				if err != nil {
					return err
				}
				pts[i] = p
			}
			rel, err := geo.Relate(pts[0], pts[1], pts[2], pts[3])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, rel.Relation)
			for _, p := range rel.Points {
				fmt.Fprint(out, " ", wkt.Encode(p))
			}
			_, err = fmt.Fprintln(out)
			return err
		},
	}
}

func intersectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "intersect LINESTRING LINESTRING",
		Short: "List the meeting segments of two linestrings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wkt.DecodeLineString(args[0])
			if err != nil {
				return err
			}
			b, err := wkt.DecodeLineString(args[1])
			if err != nil {
				return err
			}
			hits, err := geo.Intersections(a, b)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, h := range hits {
				fmt.Fprintf(out, "%d\t%d\t%s", h.Segment, h.OtherSegment, h.Relation)
				for _, c := range h.Points {
					fmt.Fprintf(out, "\t%s", wkt.Encode(domain.Point{Coord: c, SRID: a.SRID}))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func measureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "measure GEOMETRY",
		Short: "Print the scalar properties of a geometry as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := wkt.Decode(args[0])
			if err != nil {
				return err
			}
			m, err := geo.Measure(g)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(m)
		},
	}
}

func convertCmd() *cobra.Command {
	var (
		from, to, kind string
		srid           int32
	)
	cmd := &cobra.Command{
		Use:   "convert INPUT",
		Short: "Re-encode a geometry between wkt, hex, geojson, wkb and ogcwkt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := usecases.ParseFormat(from)
			if err != nil {
				return err
			}
			dst, err := usecases.ParseFormat(to)
			if err != nil {
				return err
			}
			var k domain.Kind
			if kind != "" {
				if k, err = domain.ParseKind(kind); err != nil {
					return err
				}
			}
			g, err := geo.Parse(src, args[0], k, srid)
			if err != nil {
				return err
			}
			out, err := geo.Convert(g, dst)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&from, "from", "wkt", "input format")
	cmd.Flags().StringVar(&to, "to", "hex", "output format")
	cmd.Flags().StringVar(&kind, "kind", "", "geometry kind, required for hex input")
	cmd.Flags().Int32Var(&srid, "srid", 0, "SRID for formats that do not carry one")
	return cmd
}

func printValue(cmd *cobra.Command, v float64) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(v, 'g', -1, 64))
	return err
}
