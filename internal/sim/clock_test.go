package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nbodysim/internal/sim"
)

var _ = DescribeTable("FormatElapsed",
	func(seconds float64, want string) {
		Expect(sim.FormatElapsed(seconds)).To(Equal(want))
	},
	Entry("zero", 0.0, "0 days, 00:00:00"),
	Entry("one of each", 90061.0, "1 days, 01:01:01"),
	Entry("fractional seconds", 59.9, "0 days, 00:00:59"),
	Entry("last day of the year", 365.0*86400, "365 days, 00:00:00"),
	Entry("wraps at one year", sim.JulianYear+61, "0 days, 00:01:01"),
)
