package pricing

import "math"

// Gauss-Legendre abscissae and weights used by the bivariate normal CDF,
// selected by the magnitude of the correlation.
var (
	gaussX = [3][]float64{
		{-0.9324695142031522, -0.6612093864662647, -0.2386191860831970},
		{-0.9815606342467191, -0.9041172563704748, -0.7699026741943050,
			-0.5873179542866171, -0.3678314989981802, -0.1252334085114692},
		{-0.9931285991850949, -0.9639719272779138, -0.9122344282513259,
			-0.8391169718222188, -0.7463319064601508, -0.6360536807265150,
			-0.5108670019508271, -0.3737060887154196, -0.2277858511416451,
			-0.0765265211334973},
	}
	gaussW = [3][]float64{
		{0.1713244923791704, 0.3607615730481386, 0.4679139345726910},
		{0.0471753363865118, 0.1069393259953184, 0.1600783285433462,
			0.2031674267230659, 0.2334925365383548, 0.2491470458134028},
		{0.0176140071391521, 0.0406014298003869, 0.0626720483341091,
			0.0832767415767048, 0.1019301198172404, 0.1181945319615184,
			0.1316886384491766, 0.1420961093183821, 0.1491729864726037,
			0.1527533871307259},
	}
)

// bivarCDF returns P(X <= x, Y <= y) for a standard bivariate normal pair
// with correlation rho, following Genz (2004).
func bivarCDF(x, y, rho float64) float64 {
	var ng int
	switch {
	case math.Abs(rho) < 0.3:
		ng = 0
	case math.Abs(rho) < 0.75:
		ng = 1
	default:
		ng = 2
	}
	xs, ws := gaussX[ng], gaussW[ng]

	h := -x
	k := -y
	hk := h * k
	bvn := 0.0

	if math.Abs(rho) < 0.925 {
		if math.Abs(rho) > 0 {
			hs := (h*h + k*k) / 2
			asr := math.Asin(rho)
			for i := range xs {
				for _, sign := range []float64{-1, 1} {
					sn := math.Sin(asr * (sign*xs[i] + 1) / 2)
					bvn += ws[i] * math.Exp((sn*hk-hs)/(1-sn*sn))
				}
			}
			bvn = bvn * asr / (4 * math.Pi)
		}
		return bvn + normCDF(-h)*normCDF(-k)
	}

	if rho < 0 {
		k = -k
		hk = -hk
	}
	if math.Abs(rho) < 1 {
		as := (1 - rho) * (1 + rho)
		a := math.Sqrt(as)
		bs := (h - k) * (h - k)
		c := (4 - hk) / 8
		d := (12 - hk) / 16
		asr := -(bs/as + hk) / 2
		if asr > -100 {
			bvn = a * math.Exp(asr) * (1 - c*(bs-as)*(1-d*bs/5)/3 + c*d*as*as/5)
		}
		if -hk < 100 {
			b := math.Sqrt(bs)
			bvn -= math.Exp(-hk/2) * math.Sqrt(2*math.Pi) * normCDF(-b/a) * b * (1 - c*bs*(1-d*bs/5)/3)
		}
		a = a / 2
		for i := range xs {
			for _, sign := range []float64{-1, 1} {
				xsq := a * (sign*xs[i] + 1)
				xsq *= xsq
				rs := math.Sqrt(1 - xsq)
				asr := -(bs/xsq + hk) / 2
				if asr > -100 {
					bvn += a * ws[i] * math.Exp(asr) *
						(math.Exp(-hk*(1-rs)/(2*(1+rs)))/rs - (1 + c*xsq*(1+d*xsq)))
				}
			}
		}
		bvn = -bvn / (2 * math.Pi)
	}
	if rho > 0 {
		return bvn + normCDF(-math.Max(h, k))
	}
	bvn = -bvn
	if k > h {
		bvn += normCDF(k) - normCDF(h)
	}
	return bvn
}
