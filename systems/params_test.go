package systems

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultParamsValid(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("default params invalid: %v", err)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Params)
		wantErr bool
	}{
		{"zero subdivisions", func(p *Params) { p.GridSubdivisions = 0 }, true},
		{"negative subdivisions", func(p *Params) { p.GridSubdivisions = -3 }, true},
		{"zero contact radius", func(p *Params) { p.ContactRadius = 0 }, true},
		{"nan contact radius", func(p *Params) { p.ContactRadius = math.NaN() }, true},
		{"inverted mass range", func(p *Params) { p.MassRange = Range{Min: 5, Max: 1} }, true},
		{"zero mass", func(p *Params) { p.MassRange = Range{Min: 0, Max: 1} }, true},
		{"inverted speed range", func(p *Params) { p.InitialSpeedRange = Range{Min: 2, Max: 1} }, true},
		{"retention above one", func(p *Params) { p.CollisionMassRetention = 1.1 }, true},
		{"negative retention", func(p *Params) { p.CollisionMassRetention = -0.1 }, true},
		{"negative clamp", func(p *Params) { p.MaxAbsGravitationalConstant = -1 }, true},
		{"negative stretch", func(p *Params) { p.DistanceStretch = -1 }, true},
		{"infinite g", func(p *Params) { p.GravitationalConstant = math.Inf(1) }, true},
		{"negative g", func(p *Params) { p.GravitationalConstant = -2 }, false},
		{"zero stretch", func(p *Params) { p.DistanceStretch = 0 }, false},
		{"no clamp", func(p *Params) { p.MaxAbsGravitationalConstant = 0 }, false},
		{"single-cell grid", func(p *Params) { p.GridSubdivisions = 1 }, false},
		{"point mass range", func(p *Params) { p.MassRange = Range{Min: 3, Max: 3} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidParams) {
				t.Errorf("error %v does not wrap ErrInvalidParams", err)
			}
			if tt.wantErr {
				if _, err := NewUniverse(p); err == nil {
					t.Error("NewUniverse accepted invalid params")
				}
			}
		})
	}
}

func TestValidateReportsAll(t *testing.T) {
	p := DefaultParams()
	p.GridSubdivisions = 0
	p.ContactRadius = -1
	err := p.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) || len(joined.Unwrap()) != 2 {
		t.Errorf("expected two joined errors, got %v", err)
	}
}

func TestRange(t *testing.T) {
	r := Range{Min: 2, Max: 6}
	if r.Span() != 4 {
		t.Errorf("Span = %g", r.Span())
	}
	if !r.Contains(2) || !r.Contains(6) || r.Contains(6.5) {
		t.Error("Contains is not a closed interval")
	}
	if r.Lerp(0.25) != 3 {
		t.Errorf("Lerp(0.25) = %g, want 3", r.Lerp(0.25))
	}
}

func TestStretchSquared(t *testing.T) {
	p := DefaultParams()
	p.DistanceStretch = 0
	if p.stretchSquared() != 1 {
		t.Error("zero stretch should behave as 1")
	}
	p.DistanceStretch = 3
	if p.stretchSquared() != 9 {
		t.Errorf("stretchSquared = %g, want 9", p.stretchSquared())
	}
}
