package lethality

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steriliza/cycletape/pkg/model"
)

// refParams pins the integration at the reference point: at TRef and CRef
// both adjustment factors are 1 and the D-value stays DRef.
func refParams() Params {
	return Params{
		DRef:              2.0,
		ZValue:            29,
		TRef:              54,
		CRef:              0.0006,
		CScale:            147,
		ChamberVolumeM3:   10,
		TempColumn:        0,
		MassColumn:        1,
		MassSanityLimitKg: 50,
		FallbackMassKg:    6,
	}
}

// refRows holds temperature at TRef and mass at CRef*volume*1000 so the
// adjusted D-value equals DRef on every step.
func refRows(base time.Time, n int) []model.MeasurementRow {
	rows := make([]model.MeasurementRow, n)
	for i := range rows {
		rows[i] = model.MeasurementRow{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Values:    []float64{54, 6},
		}
	}
	return rows
}

func TestCurveClosedForm(t *testing.T) {
	base := time.Date(2024, 10, 2, 15, 0, 0, 0, time.UTC)
	p := refParams()
	n0 := 1e6

	points, err := Curve(n0, refRows(base, 5), p)
	require.NoError(t, err)
	require.Len(t, points, 5)

	// Anchor point carries the initial population untouched.
	assert.Equal(t, base, points[0].Timestamp)
	assert.Equal(t, n0, points[0].Population)

	// At the reference conditions N(t) = n0 * 10^(-t/DRef).
	for i, pt := range points {
		minutes := float64(i)
		want := n0 * math.Pow(10, -minutes/p.DRef)
		assert.InEpsilon(t, want, pt.Population, 1e-9, "point %d", i)
	}
}

func TestCurveStrictlyDecreasing(t *testing.T) {
	base := time.Date(2024, 10, 2, 15, 0, 0, 0, time.UTC)
	points, err := Curve(1e6, refRows(base, 20), refParams())
	require.NoError(t, err)

	for i := 1; i < len(points); i++ {
		assert.Less(t, points[i].Population, points[i-1].Population, "point %d", i)
	}
}

func TestCurveHotterKillsFaster(t *testing.T) {
	base := time.Date(2024, 10, 2, 15, 0, 0, 0, time.UTC)
	p := refParams()

	hot := refRows(base, 10)
	for i := range hot {
		hot[i].Values[0] = p.TRef + p.ZValue // one z above reference
	}

	refPoints, err := Curve(1e6, refRows(base, 10), p)
	require.NoError(t, err)
	hotPoints, err := Curve(1e6, hot, p)
	require.NoError(t, err)

	last := len(refPoints) - 1
	assert.Less(t, hotPoints[last].Population, refPoints[last].Population)
}

func TestCurveMassClamp(t *testing.T) {
	base := time.Date(2024, 10, 2, 15, 0, 0, 0, time.UTC)
	p := refParams()

	// A reading beyond the sanity limit must behave exactly like the
	// fallback mass, which here equals the reference mass.
	clamped := refRows(base, 5)
	for i := range clamped {
		clamped[i].Values[1] = 9999
	}

	want, err := Curve(1e6, refRows(base, 5), p)
	require.NoError(t, err)
	got, err := Curve(1e6, clamped, p)
	require.NoError(t, err)

	for i := range want {
		assert.Equal(t, want[i].Population, got[i].Population, "point %d", i)
	}
}

func TestCurveNoRows(t *testing.T) {
	_, err := Curve(1e6, nil, refParams())
	assert.True(t, errors.Is(err, model.ErrNoMeasurements))
}

func TestCurveShortRow(t *testing.T) {
	base := time.Date(2024, 10, 2, 15, 0, 0, 0, time.UTC)
	rows := []model.MeasurementRow{
		{Timestamp: base, Values: []float64{54}},
		{Timestamp: base.Add(time.Minute), Values: []float64{54}},
	}
	_, err := Curve(1e6, rows, refParams())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, refParams().Validate())

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero d_ref", func(p *Params) { p.DRef = 0 }},
		{"negative z_value", func(p *Params) { p.ZValue = -1 }},
		{"zero c_scale", func(p *Params) { p.CScale = 0 }},
		{"zero volume", func(p *Params) { p.ChamberVolumeM3 = 0 }},
		{"negative column", func(p *Params) { p.TempColumn = -1 }},
		{"zero sanity limit", func(p *Params) { p.MassSanityLimitKg = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := refParams()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}
