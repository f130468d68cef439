package diagram

import (
	"fmt"
	"strings"

	"github.com/tracewire/tracewire/pkg/harness"
)

// awgFromMM2 maps metric cross-sections to their closest AWG equivalent.
var awgFromMM2 = map[string]string{
	"0.09": "28",
	"0.14": "26",
	"0.25": "24",
	"0.34": "22",
	"0.5":  "21",
	"0.75": "20",
	"1":    "18",
	"1.5":  "16",
	"2.5":  "14",
	"4":    "12",
	"6":    "10",
	"10":   "8",
	"16":   "6",
	"25":   "4",
	"35":   "2",
	"50":   "0",
}

// mm2FromAWG is the reverse lookup.
var mm2FromAWG = func() map[string]string {
	m := make(map[string]string, len(awgFromMM2))
	for mm2, awg := range awgFromMM2 {
		m[awg] = mm2
	}
	return m
}()

// gaugeEquiv formats the parenthesized equivalent gauge for a cable header.
// Only mm² and AWG are converted; other units pass through without an
// equivalent.
func gaugeEquiv(c *harness.Cable) string {
	if !c.ShowEquiv {
		return ""
	}
	switch {
	case c.GaugeUnit == "mm2" || c.GaugeUnit == "mm²":
		if awg, ok := awgFromMM2[c.Gauge]; ok {
			return fmt.Sprintf(" (%s AWG)", awg)
		}
	case strings.EqualFold(c.GaugeUnit, "awg"):
		if mm2, ok := mm2FromAWG[c.Gauge]; ok {
			return fmt.Sprintf(" (%s mm²)", mm2)
		}
	}
	return ""
}
