// Package importer parses bulk vehicle inventory uploads. Imports are
// all-or-nothing: any schema or value error rejects the whole batch so a
// partial import can never corrupt an existing inventory.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pollenops/pollenguard/core/model"
)

// Required header columns, case-insensitive. Lat and Lon values may be
// blank per row; the columns themselves must exist.
var requiredColumns = []string{"id", "model", "color", "parked", "lat", "lon"}

// ValidationError reports why an import batch was rejected.
type ValidationError struct {
	Line   int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("import rejected: line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("import rejected: %s", e.Reason)
}

// ReadCSV parses a vehicle inventory from r. On any error the batch is
// rejected and no vehicles are returned.
func ReadCSV(r io.Reader) ([]model.Vehicle, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, &ValidationError{Reason: "empty file"}
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(headers))
	for i, h := range headers {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Reason: "missing required columns: " + strings.Join(missing, ", ")}
	}

	var vehicles []model.Vehicle
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &ValidationError{Line: line, Reason: err.Error()}
		}
		v, err := parseRecord(record, cols)
		if err != nil {
			return nil, &ValidationError{Line: line, Reason: err.Error()}
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}

func parseRecord(record []string, cols map[string]int) (model.Vehicle, error) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	v := model.Vehicle{
		ID:     field("id"),
		Model:  field("model"),
		Color:  field("color"),
		Parked: field("parked"),
	}
	v.Storage = model.ParseStorage(v.Parked)

	latStr, lonStr := field("lat"), field("lon")
	if latStr == "" && lonStr == "" {
		return v, nil
	}
	if latStr == "" || lonStr == "" {
		return model.Vehicle{}, fmt.Errorf("lat and lon must both be set or both be blank")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return model.Vehicle{}, fmt.Errorf("non-numeric lat %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return model.Vehicle{}, fmt.Errorf("non-numeric lon %q", lonStr)
	}
	coords := model.Coordinates{Lat: lat, Lon: lon}
	if !coords.Valid() {
		return model.Vehicle{}, fmt.Errorf("coordinates out of range: %v, %v", lat, lon)
	}
	v.Coords = &coords
	return v, nil
}
