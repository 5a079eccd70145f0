// internal/power/classify_test.go
package power

import (
	"encoding/json"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		a, b       float64
		want       Input
		wantVolts  float64
		wantFailed bool
	}{
		{"input A", 5.0, 0.0, TypeC, 5.0, false},
		{"input B", 0.0, 5.0, MicroUSB, 5.0, false},
		{"none", 0.0, 0.0, None, 0, true},
		{"tie resolves to A", 5.0, 5.1, TypeC, 5.0, false},
		{"threshold is exclusive", 4.0, 4.0, None, 0, true},
		{"just above threshold", 4.01, 0, TypeC, 4.01, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.a, tc.b)
			if got.Input != tc.want || got.Voltage != tc.wantVolts {
				t.Fatalf("Classify(%v, %v) = %+v, want %v@%v", tc.a, tc.b, got, tc.want, tc.wantVolts)
			}
			if got.Failed() != tc.wantFailed {
				t.Fatalf("Failed() = %v want %v", got.Failed(), tc.wantFailed)
			}
		})
	}
}

func TestVetoCurrent(t *testing.T) {
	c := Classify(5.1, 0)

	if got, vetoed := VetoCurrent(c, -0.2); !vetoed || got.Input != None {
		t.Fatalf("negative battery current: got %+v vetoed=%v", got, vetoed)
	}
	if got, vetoed := VetoCurrent(c, 0.3); vetoed || got != c {
		t.Fatalf("positive battery current: got %+v vetoed=%v", got, vetoed)
	}
	if got, vetoed := VetoCurrent(Classification{}, -1); vetoed || got.Input != None {
		t.Fatalf("None stays None without veto: got %+v vetoed=%v", got, vetoed)
	}
}

func TestInput_TextRoundTrip(t *testing.T) {
	for _, in := range []Input{None, TypeC, MicroUSB} {
		b, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("marshal %v: %v", in, err)
		}
		var out Input
		if err := json.Unmarshal(b, &out); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if out != in {
			t.Fatalf("round trip %v -> %s -> %v", in, b, out)
		}
	}

	var bad Input
	if err := json.Unmarshal([]byte(`"USB4"`), &bad); err == nil {
		t.Fatalf("expected error for unknown input")
	}
}
