package kinematics

// StepDiagnostics records one outer step of a Solve call.
type StepDiagnostics struct {
	// RotatedDistance is the first inner step vector length minus the last.
	RotatedDistance float64
	// RotatedAngleNorm is the summed rotation of all joints over the step, in degrees.
	RotatedAngleNorm float64
	// Rate is RotatedDistance per degree; +Inf when nothing turned.
	Rate            float64
	InnerIterations int
	InnerStepNorms  []float64
	RolledBack      bool
}

// Diagnostics describes the most recent Solve call, for tuning.
type Diagnostics struct {
	Status          Status
	InitialDistance float64
	FinalDistance   float64
	OuterSteps      int
	Steps           []StepDiagnostics
}

// TotalInnerIterations sums the inner iterations of every recorded step.
func (d Diagnostics) TotalInnerIterations() int {
	total := 0
	for _, s := range d.Steps {
		total += s.InnerIterations
	}
	return total
}

func (d Diagnostics) clone() Diagnostics {
	out := d
	out.Steps = make([]StepDiagnostics, len(d.Steps))
	for i, s := range d.Steps {
		s.InnerStepNorms = append([]float64(nil), s.InnerStepNorms...)
		out.Steps[i] = s
	}
	return out
}
