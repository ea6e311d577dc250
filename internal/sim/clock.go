package sim

import (
	"fmt"
	"math"
)

const secondsPerDay = 86400.0

// FormatElapsed renders simulated seconds as "D days, hh:mm:ss", wrapping at
// one Julian year.
func FormatElapsed(seconds float64) string {
	seconds = math.Mod(seconds, JulianYear)
	days := int(seconds / secondsPerDay)
	seconds = math.Mod(seconds, secondsPerDay)
	hours := int(seconds / 3600)
	minutes := (int(seconds) % 3600) / 60
	secs := int(seconds) % 60
	return fmt.Sprintf("%d days, %02d:%02d:%02d", days, hours, minutes, secs)
}
