package physics_test

import (
	"bytes"
	"errors"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nbodysim/internal/physics"
)

const planets = `5
2.50e+11
 1.4960e+11  0.0000e+00  0.0000e+00  2.9800e+04  5.9740e+24    earth.gif
 2.2790e+11  0.0000e+00  0.0000e+00  2.4100e+04  6.4190e+23     mars.gif
 5.7900e+10  0.0000e+00  0.0000e+00  4.7900e+04  3.3020e+23  mercury.gif
 0.0000e+00  0.0000e+00  0.0000e+00  0.0000e+00  1.9890e+30      sun.gif
 1.0820e+11  0.0000e+00  0.0000e+00  3.5000e+04  4.8690e+24    venus.gif
`

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func expectSameSystem(got, want *physics.System) {
	GinkgoHelper()
	Expect(got.Len()).To(Equal(want.Len()))
	Expect(got.Radius()).To(BeNumerically("~", want.Radius(), want.Radius()*1e-6))
	for i := 0; i < want.Len(); i++ {
		g, _ := got.BodyAt(i)
		w, _ := want.BodyAt(i)
		closeTo := func(a, b float64) {
			GinkgoHelper()
			tol := 1e-6
			if b != 0 {
				tol *= max(1, abs(b))
			}
			Expect(a).To(BeNumerically("~", b, tol))
		}
		closeTo(g.Position().X, w.Position().X)
		closeTo(g.Position().Y, w.Position().Y)
		closeTo(g.Velocity().X, w.Velocity().X)
		closeTo(g.Velocity().Y, w.Velocity().Y)
		closeTo(g.Mass(), w.Mass())
		Expect(g.Asset()).To(Equal(w.Asset()))
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

var _ = Describe("Codec", func() {
	Describe("Load", func() {
		It("reads the planets file", func() {
			sys, err := physics.Load(strings.NewReader(planets))
			Expect(err).NotTo(HaveOccurred())
			Expect(sys.Len()).To(Equal(5))
			Expect(sys.Radius()).To(Equal(2.5e11))

			sun, err := sys.BodyAt(3)
			Expect(err).NotTo(HaveOccurred())
			Expect(sun.Mass()).To(Equal(1.989e30))
			Expect(sun.Asset()).To(Equal("sun.gif"))
		})

		It("accepts tokens split across lines", func() {
			sys, err := physics.Load(strings.NewReader("2 100.0\n1.0 2.0 3.0 4.0 5.0 mars.gif 6.0\n7.0 8.0 9.0\n10.0 mercury.gif"))
			Expect(err).NotTo(HaveOccurred())
			Expect(sys.Len()).To(Equal(2))
			b, _ := sys.BodyAt(1)
			Expect(b.Position()).To(Equal(physics.Vec2{X: 6, Y: 7}))
			Expect(b.Asset()).To(Equal("mercury.gif"))
		})

		It("accepts an empty system", func() {
			sys, err := physics.Load(strings.NewReader("0\n0.0\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(sys.Len()).To(BeZero())
		})

		It("applies options", func() {
			sys, err := physics.Load(strings.NewReader(planets), physics.WithMinSeparation(1e6))
			Expect(err).NotTo(HaveOccurred())
			Expect(sys.MinSeparation()).To(Equal(1e6))
		})

		It("rejects a negative mass without returning a system", func() {
			sys, err := physics.Load(strings.NewReader("1 100.0\n1.0 2.0 3.0 4.0 -5.0 earth.gif"))
			Expect(err).To(MatchError(physics.ErrInvalidMass))
			Expect(sys).To(BeNil())
		})

		DescribeTable("rejects malformed input",
			func(input, field string) {
				sys, err := physics.Load(strings.NewReader(input))
				Expect(sys).To(BeNil())
				Expect(err).To(MatchError(physics.ErrMalformedInput))

				var pe *physics.ParseError
				Expect(errors.As(err, &pe)).To(BeTrue())
				Expect(pe.Field).To(Equal(field))
			},
			Entry("empty stream", "", "count"),
			Entry("non-numeric count", "two 100.0", "count"),
			Entry("negative count", "-1 100.0", "count"),
			Entry("missing radius", "1", "radius"),
			Entry("non-numeric radius", "1 big", "radius"),
			Entry("zero radius with bodies", "1 0\n1 2 3 4 5 a.gif", "radius"),
			Entry("too few bodies", "2 100.0\n1 2 3 4 5 a.gif\n", "px"),
			Entry("truncated body", "1 100.0\n1 2 3 4", "mass"),
			Entry("missing asset", "1 100.0\n1 2 3 4 5", "asset"),
			Entry("non-numeric velocity", "1 100.0\n1 2 fast 4 5 a.gif", "vx"),
		)

		It("reports the offending body index", func() {
			_, err := physics.Load(strings.NewReader("2 1.0\n1 2 3 4 5 a.gif\n1 2 3 4 0 b.gif"))
			var pe *physics.ParseError
			Expect(errors.As(err, &pe)).To(BeTrue())
			Expect(pe.Body).To(Equal(1))
			Expect(err.Error()).To(ContainSubstring("body 1"))
		})

		It("surfaces reader failures", func() {
			_, err := physics.Load(failingReader{})
			Expect(err).To(MatchError(ContainSubstring("disk on fire")))
		})
	})

	Describe("encoding", func() {
		It("writes scientific notation with four decimals", func() {
			sys, err := physics.Load(strings.NewReader("2 100.0\n1.0 2.0 3.0 4.0 5.0 mars.gif\n6.0 7.0 8.0 9.0 10.0 mercury.gif"))
			Expect(err).NotTo(HaveOccurred())

			var buf bytes.Buffer
			_, err = sys.WriteTo(&buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(Equal("2\n1.0000e+02\n" +
				"1.0000e+00 2.0000e+00 3.0000e+00 4.0000e+00 5.0000e+00 mars.gif\n" +
				"6.0000e+00 7.0000e+00 8.0000e+00 9.0000e+00 1.0000e+01 mercury.gif\n"))
		})

		It("honours a custom precision", func() {
			sys := physics.New(1, []physics.Body{mustBody(1.23456789, 0, 0, 0, 1, "a")})
			var buf bytes.Buffer
			enc := physics.NewEncoder(&buf)
			enc.SetPrecision(8)
			_, err := enc.Encode(sys)
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(ContainSubstring("1.23456789e+00 "))
		})

		It("reports bytes written", func() {
			sys := physics.New(0, nil)
			n, err := sys.WriteTo(io.Discard)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(len("0\n0.0000e+00\n"))))
		})

		It("round-trips the planets file", func() {
			want, err := physics.Load(strings.NewReader(planets))
			Expect(err).NotTo(HaveOccurred())

			var buf bytes.Buffer
			_, err = want.WriteTo(&buf)
			Expect(err).NotTo(HaveOccurred())

			got, err := physics.Load(&buf)
			Expect(err).NotTo(HaveOccurred())
			expectSameSystem(got, want)
		})

		It("round-trips after stepping", func() {
			want, err := physics.Load(strings.NewReader(planets))
			Expect(err).NotTo(HaveOccurred())
			for range 100 {
				want.Step(25000)
			}

			var buf bytes.Buffer
			enc := physics.NewEncoder(&buf)
			enc.SetPrecision(12)
			_, err = enc.Encode(want)
			Expect(err).NotTo(HaveOccurred())

			got, err := physics.Load(&buf)
			Expect(err).NotTo(HaveOccurred())
			expectSameSystem(got, want)
		})

		It("round-trips an empty system", func() {
			var buf bytes.Buffer
			_, err := physics.New(5, nil).WriteTo(&buf)
			Expect(err).NotTo(HaveOccurred())

			got, err := physics.Load(&buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Len()).To(BeZero())
			Expect(got.Radius()).To(Equal(5.0))
		})
	})
})
