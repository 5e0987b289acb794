// Package lethality models microbial inactivation during a sterilization
// phase as a D-value time integration: the D-value (minutes per log of
// population reduction) is adjusted each step for the measured temperature
// (z-value law) and sterilant concentration, and the surviving population
// is integrated forward over the measurement series.
//
// All kinetic constants vary by sterilant and chamber, so Params carries no
// implicit defaults; callers select a parameter set explicitly (pkg/config
// ships named sets).
package lethality

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/steriliza/cycletape/pkg/metrics"
	"github.com/steriliza/cycletape/pkg/model"
)

// Params holds the kinetic constants and column bindings for one
// chamber/sterilant combination.
type Params struct {
	// DRef is the reference D-value in minutes: time for one log of
	// reduction at TRef and CRef.
	DRef float64 `yaml:"d_ref"`
	// ZValue is the temperature change in °C that shifts the D-value by
	// one log.
	ZValue float64 `yaml:"z_value"`
	// TRef is the reference temperature in °C.
	TRef float64 `yaml:"t_ref"`
	// CRef is the reference sterilant concentration.
	CRef float64 `yaml:"c_ref"`
	// CScale is the concentration change that shifts the D-value by one
	// log.
	CScale float64 `yaml:"c_scale"`

	// ChamberVolumeM3 converts the measured sterilant mass into a
	// concentration: mass_kg / (volume_m3 * 1000).
	ChamberVolumeM3 float64 `yaml:"chamber_volume_m3"`

	// TempColumn and MassColumn index into MeasurementRow.Values for the
	// temperature and sterilant-mass quantities of the device profile.
	TempColumn int `yaml:"temp_column"`
	MassColumn int `yaml:"mass_column"`

	// MassSanityLimitKg guards against instrument error: raw mass readings
	// above it are replaced by FallbackMassKg instead of propagated.
	MassSanityLimitKg float64 `yaml:"mass_sanity_limit_kg"`
	FallbackMassKg    float64 `yaml:"fallback_mass_kg"`
}

// Validate checks that every constant the integration divides by or indexes
// with is usable.
func (p Params) Validate() error {
	switch {
	case p.DRef <= 0:
		return errors.New("lethality: d_ref must be positive")
	case p.ZValue <= 0:
		return errors.New("lethality: z_value must be positive")
	case p.CScale <= 0:
		return errors.New("lethality: c_scale must be positive")
	case p.ChamberVolumeM3 <= 0:
		return errors.New("lethality: chamber_volume_m3 must be positive")
	case p.TempColumn < 0 || p.MassColumn < 0:
		return errors.New("lethality: column indices must be non-negative")
	case p.MassSanityLimitKg <= 0:
		return errors.New("lethality: mass_sanity_limit_kg must be positive")
	}
	return nil
}

// Point is one sample of the surviving-population curve.
type Point struct {
	Timestamp  time.Time
	Population float64
}

// Curve integrates the survival model over the measurement rows, which
// must already be restricted to the phase window of interest. The curve is
// anchored at (first timestamp, n0) and recomputed from scratch on every
// call; nothing is cached or persisted.
func Curve(n0 float64, rows []model.MeasurementRow, p Params) ([]Point, error) {
	defer metrics.Timer(metrics.LethalityCompute)()

	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, model.ErrNoMeasurements
	}

	points := make([]Point, 0, len(rows))
	points = append(points, Point{Timestamp: rows[0].Timestamp, Population: n0})

	exposureMin := 0.0
	for i := 1; i < len(rows); i++ {
		prev := rows[i-1]
		if p.TempColumn >= len(prev.Values) || p.MassColumn >= len(prev.Values) {
			return nil, fmt.Errorf("lethality: row %d has %d values, need columns %d and %d",
				i-1, len(prev.Values), p.TempColumn, p.MassColumn)
		}
		exposureMin += rows[i].Timestamp.Sub(prev.Timestamp).Minutes()

		temp := prev.Values[p.TempColumn]
		conc := p.concentration(prev.Values[p.MassColumn])

		dAdj := p.DRef *
			math.Pow(10, (p.TRef-temp)/p.ZValue) *
			math.Pow(10, (p.CRef-conc)/p.CScale)
		logReduction := exposureMin / dAdj

		points = append(points, Point{
			Timestamp:  rows[i].Timestamp,
			Population: n0 * math.Pow(10, -logReduction),
		})
	}
	return points, nil
}

// concentration derives sterilant concentration from the measured mass,
// clamping readings beyond the sanity limit to the fallback constant.
func (p Params) concentration(massKg float64) float64 {
	if massKg > p.MassSanityLimitKg {
		massKg = p.FallbackMassKg
	}
	return massKg / (p.ChamberVolumeM3 * 1000)
}
