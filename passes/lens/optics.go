package lens

import (
	"math"

	"github.com/mjettp/visual-system-simulator/pipeline"
)

// DioptresScaling converts a refractive error in dioptres into a blur
// intensity factor. Empirically fitted; shared by the myopia and hyperopia
// branches.
const DioptresScaling = 0.332763369417523

// OpticalUniforms is the derived numeric state driving the lens shader.
// NearPoint and FarPoint are the smallest and largest distances the simulated
// eye can focus on, in mm; the vision factors scale the blur of objects
// outside that range and stay within [0,2]. The zero impairment state is
// Active=false, NearPoint=0, FarPoint=+Inf, both factors 0: a pass-through.
type OpticalUniforms struct {
	Stereo           bool
	Active           bool
	DepthMin         float32
	DepthMax         float32
	NearPoint        float32
	FarPoint         float32
	NearVisionFactor float32
	FarVisionFactor  float32
}

// DefaultUniforms returns the pass-through state.
func DefaultUniforms() OpticalUniforms {
	return OpticalUniforms{
		DepthMin: 200.0,
		DepthMax: 5000.0,
		FarPoint: float32(math.Inf(1)),
	}
}

// ComputeUniforms maps the clinical simulation parameters to optical
// uniforms. Pure and idempotent; called once per frame. Presbyopia and
// myopia/hyperopia are independent and additive: each clamps or maxes
// against the other's contribution instead of overwriting it.
//
// Recognized parameters:
//
//	presbyopia_onoff          bool
//	presbyopia_near_point     number, 0-100
//	myopiahyperopia_onoff     bool
//	myopiahyperopia_mnh       number, 0-100
func ComputeUniforms(params pipeline.ValueMap) OpticalUniforms {
	u := DefaultUniforms()

	if on, _ := params.Bool("presbyopia_onoff"); on {
		// The near point dial runs 0-100 and scales to 0-1000 mm.
		if nearPoint, ok := params.Number("presbyopia_near_point"); ok {
			u.Active = true
			u.NearPoint = float32(nearPoint * 10.0)
			u.NearVisionFactor = 1.0
		}
	}

	if on, _ := params.Bool("myopiahyperopia_onoff"); on {
		if mnh, ok := params.Number("myopiahyperopia_mnh"); ok {
			u.Active = true
			// mnh runs 0-100 and represents a range of -3D to 3D.
			dioptres := float32((mnh/50.0 - 1.0) * 3.0)

			if dioptres < 0 {
				// Myopia: the far point moves in from infinity. As the
				// error approaches 0D the far point diverges back toward
				// +Inf, which is the valid "no far limit" state.
				u.FarPoint = -1000.0 / dioptres
				// The near point can never exceed the far point.
				if u.NearPoint > u.FarPoint {
					u.NearPoint = u.FarPoint
				}
				if v := 1.0 - dioptres*DioptresScaling; v > u.FarVisionFactor {
					u.FarVisionFactor = v
				}
			} else if dioptres > 0 {
				// Hyperopia: the near point moves out.
				if v := 1000.0 / (4.4 - dioptres); v > u.NearPoint {
					u.NearPoint = v
				}
				if v := 1.0 + dioptres*DioptresScaling; v > u.NearVisionFactor {
					u.NearVisionFactor = v
				}
			}
		}
	}

	return u
}
