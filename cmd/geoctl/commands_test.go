package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGeometryCommands(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"distance", "POINT(0 0)", "POINT(3 4)"}, "5\n"},
		{[]string{"length", "LINESTRING(0 0, 3 4, 3 10)"}, "11\n"},
		{[]string{"area", "POLYGON((0 0, 2 0, 2 2, 0 2, 0 0))"}, "4\n"},
		{[]string{"contains", "POLYGON((0 0, 2 0, 2 2, 0 2, 0 0))", "POINT(1 1)"}, "true\n"},
		{[]string{"contains", "POLYGON((0 0, 2 0, 2 2, 0 2, 0 0))", "POINT(5 5)"}, "false\n"},
	}
	for _, tc := range cases {
		t.Run(tc.args[0], func(t *testing.T) {
			out, err := run(t, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestRelateCommand(t *testing.T) {
	out, err := run(t, "relate", "POINT(0 0)", "POINT(2 2)", "POINT(0 2)", "POINT(2 0)")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "cross"), out)
	assert.Contains(t, out, "POINT(1 1)")
}

func TestIntersectCommand(t *testing.T) {
	out, err := run(t, "intersect", "LINESTRING(0 0, 2 2)", "LINESTRING(0 2, 2 0)")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "0\t0\tcross"), lines[0])
}

func TestConvertCommand(t *testing.T) {
	out, err := run(t, "convert", "--to", "geojson", "POINT(1 2)")
	require.NoError(t, err)
	assert.Contains(t, out, `"Point"`)

	hex, err := run(t, "convert", "SRID=4326;POINT(1 2)")
	require.NoError(t, err)

	back, err := run(t, "convert", "--from", "hex", "--to", "wkt", "--kind", "point", strings.TrimSpace(hex))
	require.NoError(t, err)
	assert.Contains(t, back, "POINT(1 2)")
}

func TestCommandErrors(t *testing.T) {
	_, err := run(t, "distance", "POINT(0 0)", "SRID=4326;POINT(1 1)")
	assert.Error(t, err)

	_, err = run(t, "area", "POLYGON((0 0, 1 0, 1 1, 0 1))")
	assert.Error(t, err)

	_, err = run(t, "convert", "--to", "svg", "POINT(1 2)")
	assert.Error(t, err)

	_, err = run(t, "length", "POINT(1 2)")
	assert.Error(t, err)
}

func TestVersionFlag(t *testing.T) {
	out, err := run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}

func TestParseImportLines(t *testing.T) {
	input := strings.Join([]string{
		"# features",
		`{"name":"depot","wkt":"POINT(1 2)"}`,
		"",
		"route 7\tLINESTRING(0 0, 1 1)",
	}, "\n")

	lines, err := parseImportLines(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "depot", lines[0].Name)
	assert.Equal(t, "POINT(1 2)", lines[0].WKT)
	assert.Equal(t, "route 7", lines[1].Name)
	assert.Equal(t, "LINESTRING(0 0, 1 1)", lines[1].WKT)

	_, err = parseImportLines(strings.NewReader("no separator here"))
	assert.ErrorContains(t, err, "line 1")
}
