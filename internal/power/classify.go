// internal/power/classify.go
package power

import "fmt"

// InputThreshold is the voltage above which a connector is delivering power.
const InputThreshold = 4.0

// Input is the power-input classification.
type Input int

const (
	None     Input = iota
	TypeC          // input A
	MicroUSB       // input B
)

func (i Input) String() string {
	switch i {
	case TypeC:
		return "TypeC"
	case MicroUSB:
		return "MicroUSB"
	default:
		return ""
	}
}

// MarshalText keeps the on-disk name of the classification ("" for None).
func (i Input) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Input) UnmarshalText(b []byte) error {
	switch string(b) {
	case "":
		*i = None
	case "TypeC":
		*i = TypeC
	case "MicroUSB":
		*i = MicroUSB
	default:
		return fmt.Errorf("power: unknown input type %q", string(b))
	}
	return nil
}

// Classification is the input in use and its voltage (0 for None).
type Classification struct {
	Input   Input
	Voltage float64
}

// Failed reports whether no input is delivering power.
func (c Classification) Failed() bool { return c.Input == None }

// Classify derives the classification from the two voltage-sense channels.
// Channel A (TypeC) wins when both exceed the threshold.
func Classify(typeC, microUSB float64) Classification {
	switch {
	case typeC > InputThreshold:
		return Classification{Input: TypeC, Voltage: typeC}
	case microUSB > InputThreshold:
		return Classification{Input: MicroUSB, Voltage: microUSB}
	default:
		return Classification{Input: None}
	}
}

// VetoCurrent forces None when an input is reported while the battery
// current is negative, which marks the reading as stale or erroneous.
// The second result reports whether the veto fired.
func VetoCurrent(c Classification, batteryCurrent float64) (Classification, bool) {
	if c.Input != None && batteryCurrent < 0 {
		return Classification{Input: None}, true
	}
	return c, false
}
