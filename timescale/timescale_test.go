package timescale

import (
	"math"
	"testing"
	"time"
)

func TestTimeToJDUTC(t *testing.T) {
	j2000 := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	if jd := TimeToJDUTC(j2000); math.Abs(jd-J2000JD) > 1e-9 {
		t.Errorf("J2000 JD = %.10f, want %.1f", jd, J2000JD)
	}

	unix0 := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	if jd := TimeToJDUTC(unix0); math.Abs(jd-2440587.5) > 1e-9 {
		t.Errorf("Unix epoch JD = %.10f, want 2440587.5", jd)
	}
}

func TestJDUTCToTime_RoundTrip(t *testing.T) {
	// S5 (calendar round-trip): day, hour, minute must survive a round trip
	// across the full domain, per spec §4.A.
	cases := []time.Time{
		time.Date(-3000, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1582, 10, 4, 23, 59, 0, 0, time.UTC),
		time.Date(1582, 10, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 15, 18, 30, 0, 0, time.UTC),
		time.Date(3000, 12, 31, 23, 59, 0, 0, time.UTC),
	}
	for _, want := range cases {
		jd := TimeToJDUTC(want)
		got := JDUTCToTime(jd)
		if !got.Equal(want) {
			t.Errorf("round trip %v: got %v (jd=%.6f)", want, got, jd)
		}
	}
}

func TestTimeToJDUTC_Nanoseconds(t *testing.T) {
	t0 := time.Date(2024, 6, 15, 12, 0, 0, 500000000, time.UTC)
	t1 := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	diffSec := (TimeToJDUTC(t0) - TimeToJDUTC(t1)) * SecPerDay
	if math.Abs(diffSec-0.5) > 1e-3 {
		t.Errorf("nanosecond diff: got %.9f s, want 0.5 s", diffSec)
	}
}

func TestSecondsPastJ2000_Zero(t *testing.T) {
	// S5: centuries past J2000 at J2000.0 noon must be exactly 0.
	sec := SecondsPastJ2000(J2000JD)
	if math.Abs(sec) > 1e-14 {
		t.Errorf("SecondsPastJ2000(J2000JD) = %e, want 0", sec)
	}
	century2100 := J2000JD + 365.25*100
	centuries := SecondsPastJ2000(century2100) / SecPerDay / 36525.0
	if math.Abs(centuries-1.0) > 1e-13 {
		t.Errorf("centuries past J2000 at 2100 = %.14f, want 1", centuries)
	}
}

func TestSecondsPastJ2000_Inverse(t *testing.T) {
	jd := 2460000.125
	sec := SecondsPastJ2000(jd)
	if back := JDFromSecondsPastJ2000(sec); math.Abs(back-jd) > 1e-9 {
		t.Errorf("inverse mismatch: got %.10f want %.10f", back, jd)
	}
}

func TestLeapSecondOffset(t *testing.T) {
	tests := []struct {
		jdUTC float64
		want  float64
	}{
		{2441317.5, 10},
		{2441318.0, 10},
		{2441499.5, 11},
		{2457754.5, 37},
		{2460000.0, 37},
		{2400000.0, 10},
	}
	for _, tc := range tests {
		if got := LeapSecondOffset(tc.jdUTC); got != tc.want {
			t.Errorf("LeapSecondOffset(%.1f) = %v, want %v", tc.jdUTC, got, tc.want)
		}
	}
}

func TestUTCToTT(t *testing.T) {
	jdUTC := 2458849.5
	jdTT := UTCToTT(jdUTC)
	expectedOffset := (37.0 + 32.184) / SecPerDay
	if diff := jdTT - jdUTC - expectedOffset; math.Abs(diff) > 1e-9 {
		t.Errorf("UTCToTT offset error: %.15e days", diff)
	}
}

func TestUTCToTT_RoundTrip(t *testing.T) {
	jdUTC := 2451545.25
	got := TTToUTC(UTCToTT(jdUTC))
	if math.Abs(got-jdUTC) > 1e-9 {
		t.Errorf("UTC->TT->UTC round trip: got %.10f want %.10f", got, jdUTC)
	}
}

func TestDeltaT_KnownValue(t *testing.T) {
	if dt := DeltaT(2000.0); math.Abs(dt-63.829) > 0.001 {
		t.Errorf("DeltaT(2000) = %f, want ~63.829", dt)
	}
}

func TestDeltaT_BoundaryClamp(t *testing.T) {
	if dt, first := DeltaT(1700.0), DeltaT(1800.0); dt != first {
		t.Errorf("DeltaT(1700) = %f, want %f (first entry)", dt, first)
	}
	if dt, last := DeltaT(2300.0), DeltaT(2200.0); dt != last {
		t.Errorf("DeltaT(2300) = %f, want %f (last entry)", dt, last)
	}
}

func TestDeltaT_Interpolates(t *testing.T) {
	dt := DeltaT(2000.5)
	lo, hi := DeltaT(2000.0), DeltaT(2010.0)
	if dt < math.Min(lo, hi) || dt > math.Max(lo, hi) {
		t.Errorf("DeltaT(2000.5) = %f, not between %f and %f", dt, lo, hi)
	}
}

func TestTTToUT1_Inverse(t *testing.T) {
	jdTT := 2451545.0
	jdUT1 := TTToUT1(jdTT)
	back := UT1ToTT(jdUT1)
	if math.Abs(back-jdTT) > 1e-9 {
		t.Errorf("TT->UT1->TT round trip: got %.10f want %.10f", back, jdTT)
	}
}

func TestTDBMinusTT_Amplitude(t *testing.T) {
	for year := 1850.0; year <= 2150.0; year += 10.0 {
		jd := J2000JD + (year-2000.0)*365.25
		if dt := TDBMinusTT(jd); math.Abs(dt) > 0.002 {
			t.Errorf("TDB-TT at year %.0f = %f s, exceeds 2ms", year, dt)
		}
	}
}

func TestTDBMinusTT_VariesWithTime(t *testing.T) {
	dt1 := TDBMinusTT(J2000JD)
	dt2 := TDBMinusTT(J2000JD + 182.625)
	if dt1 == dt2 {
		t.Error("TDB-TT unchanged after half a year")
	}
}

func TestJulianCenturiesSinceJ2000(t *testing.T) {
	if c := JulianCenturiesSinceJ2000(J2000JD); c != 0 {
		t.Errorf("JulianCenturiesSinceJ2000(J2000) = %v, want 0", c)
	}
	if c := JulianCenturiesSinceJ2000(J2000JD + 36525); math.Abs(c-1) > 1e-12 {
		t.Errorf("JulianCenturiesSinceJ2000(+36525d) = %v, want 1", c)
	}
}
