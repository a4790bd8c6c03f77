package InputParameters

import (
	"fmt"
	"math"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file, keys follow the json tags (ghodss/yaml)
type OptimizationParameters struct {
	Title           string  `json:"Title"`
	N               int     `json:"N"`          // Number of grid columns, spacestep = 1/N
	M               int     `json:"M"`          // Number of grid rows, defaults to 2N
	Level           int     `json:"Level"`      // Level of the fractal wall
	Wavenumber      float64 `json:"Wavenumber"` // Omega
	Source          string  `json:"Source"`     // planar or spherical
	SourceAmplitude float64 `json:"SourceAmplitude"`
	AlphaRe         float64 `json:"AlphaRe"` // Absorption coefficient of the material
	AlphaIm         float64 `json:"AlphaIm"`
	InitialDensity  float64 `json:"InitialDensity"`
	VObj            float64 `json:"VObj"` // Target volume fraction, defaults to the mean initial density
	Mu              float64 `json:"Mu"`   // Initial gradient step
	Mu1             float64 `json:"Mu1"`  // Weight of the domain volume term
	V0              float64 `json:"V0"`   // Reference domain volume
	MaxIterations   int     `json:"MaxIterations"`
	StepFloor       float64 `json:"StepFloor"`
	MaxStep         float64 `json:"MaxStep"` // Upper bound on the step, 0 for none
}

// Defaults reproduce the reference demonstration case
func NewOptimizationParameters() *OptimizationParameters {
	return &OptimizationParameters{
		Title:           "Fractal wall absorber",
		N:               50,
		Level:           2,
		Wavenumber:      10,
		Source:          "planar",
		SourceAmplitude: 1,
		AlphaRe:         10,
		AlphaIm:         -10,
		InitialDensity:  0.5,
		Mu:              5,
		Mu1:             1.e-5,
		V0:              1,
		MaxIterations:   100,
		StepFloor:       1.e-5,
	}
}

// Parse overlays the YAML data on the receiver, keys absent from data keep their values
func (ip *OptimizationParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

// Rows is the number of grid rows, M or 2N when M is unset
func (ip *OptimizationParameters) Rows() int {
	if ip.M == 0 {
		return 2 * ip.N
	}
	return ip.M
}

func (ip *OptimizationParameters) Validate() (err error) {
	switch {
	case ip.N < 3:
		err = fmt.Errorf("N must be at least 3, have %d", ip.N)
	case ip.Rows() < 5:
		err = fmt.Errorf("M must be at least 5, have %d", ip.Rows())
	case ip.Level < 0:
		err = fmt.Errorf("Level must be non-negative, have %d", ip.Level)
	case ip.InitialDensity < 0 || ip.InitialDensity > 1:
		err = fmt.Errorf("InitialDensity must be in [0,1], have %v", ip.InitialDensity)
	case ip.VObj < 0 || ip.VObj > 1:
		err = fmt.Errorf("VObj must be in (0,1] or 0 for the mean initial density, have %v", ip.VObj)
	case ip.MaxIterations <= 0:
		err = fmt.Errorf("MaxIterations must be positive, have %d", ip.MaxIterations)
	case ip.StepFloor <= 0:
		err = fmt.Errorf("StepFloor must be positive, have %v", ip.StepFloor)
	case ip.Mu < 0 || ip.MaxStep < 0:
		err = fmt.Errorf("Mu and MaxStep must be non-negative, have %v, %v", ip.Mu, ip.MaxStep)
	}
	if err != nil {
		return
	}
	for _, f := range []float64{ip.Wavenumber, ip.SourceAmplitude, ip.AlphaRe, ip.AlphaIm, ip.Mu, ip.Mu1, ip.V0} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("non-finite parameter in input")
		}
	}
	return
}

func (ip *OptimizationParameters) Alpha() complex128 {
	return complex(ip.AlphaRe, ip.AlphaIm)
}

func (ip *OptimizationParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d x %d]\t\t= Grid (M x N), spacestep = %8.5f\n", ip.Rows(), ip.N, 1./float64(ip.N))
	fmt.Printf("[%d]\t\t\t= Fractal Level\n", ip.Level)
	fmt.Printf("%8.5f\t\t= Wavenumber\n", ip.Wavenumber)
	fmt.Printf("[%s]\t\t= Source, amplitude %8.5f\n", ip.Source, ip.SourceAmplitude)
	fmt.Printf("%v\t\t= Alpha\n", ip.Alpha())
	fmt.Printf("%8.5f\t\t= Initial Density\n", ip.InitialDensity)
	if ip.VObj == 0 {
		fmt.Printf("[mean initial]\t\t= VObj\n")
	} else {
		fmt.Printf("%8.5f\t\t= VObj\n", ip.VObj)
	}
	fmt.Printf("%8.5f\t\t= Mu, floor %8.2e", ip.Mu, ip.StepFloor)
	if ip.MaxStep > 0 {
		fmt.Printf(", max %8.5f", ip.MaxStep)
	}
	fmt.Printf("\n")
	fmt.Printf("%8.2e\t\t= Mu1, V0 = %8.5f\n", ip.Mu1, ip.V0)
	fmt.Printf("[%d]\t\t\t= Max Iterations\n", ip.MaxIterations)
}
