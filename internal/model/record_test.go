package model

import "testing"

func TestRetractionSampleRate(t *testing.T) {
	tests := []struct {
		sample RetractionSample
		want   float64
	}{
		{RetractionSample{SampleSize: 200, Retracted: 2}, 0.01},
		{RetractionSample{SampleSize: 100, Retracted: 0}, 0},
		{RetractionSample{SampleSize: 0, Retracted: 0}, 0},
	}
	for _, tt := range tests {
		if got := tt.sample.Rate(); got != tt.want {
			t.Errorf("Rate(%d/%d) = %v, want %v", tt.sample.Retracted, tt.sample.SampleSize, got, tt.want)
		}
	}
}

func TestYearsSincePublication(t *testing.T) {
	year := 2020
	rec := PaperRecord{PublicationYear: &year}

	years, ok := rec.YearsSincePublication(2026)
	if !ok || years != 6 {
		t.Errorf("years = %d/%v, want 6/true", years, ok)
	}

	// Same-year publications count as one year, not zero.
	years, ok = rec.YearsSincePublication(2020)
	if !ok || years != 1 {
		t.Errorf("years = %d/%v, want 1/true", years, ok)
	}

	unknown := PaperRecord{}
	if _, ok := unknown.YearsSincePublication(2026); ok {
		t.Error("expected ok=false without a publication year")
	}
}

func TestSkippedChecks(t *testing.T) {
	report := ScoreReport{
		Checks: []CheckResult{
			{Name: "a", Status: CheckPassed},
			{Name: "b", Status: CheckSkipped},
			{Name: "c", Status: CheckSkipped},
			{Name: "d", Status: CheckFlagged},
		},
	}
	if got := report.SkippedChecks(); got != 2 {
		t.Errorf("SkippedChecks = %d, want 2", got)
	}
}
