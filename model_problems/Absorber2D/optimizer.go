package Absorber2D

import (
	"fmt"
	"log/slog"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/wallopt/model_problems/Helmholtz2D"
	"github.com/notargets/wallopt/types"
	"github.com/notargets/wallopt/utils"
)

const (
	DefaultMaxIterations = 100
	DefaultStepFloor     = 1.e-5
	StepGrowth           = 1.1 // Applied to mu after a trial lowers the energy
	StepShrink           = 2.  // mu is divided by this after a rejected trial
)

// Oracle solves the Helmholtz problem, it must be deterministic for fixed input
type Oracle interface {
	Solve(pb *Helmholtz2D.Problem) (u *mat.CDense, err error)
}

type Status uint8

const (
	Init Status = iota
	Iterating
	Converged     // The iteration cap was reached
	StepExhausted // mu fell to the floor, the last accepted density is returned
)

func (s Status) String() string {
	switch s {
	case Init:
		return "INIT"
	case Iterating:
		return "ITERATING"
	case Converged:
		return "CONVERGED"
	case StepExhausted:
		return "STEP_EXHAUSTED"
	}
	return "UNKNOWN"
}

type Options struct {
	Alpha         complex128 // Absorption coefficient of the material, AlphaRob = Alpha*chi
	Mu            float64    // Initial gradient step
	Mu1           float64    // Weight of the domain volume term of the objective
	V0            float64    // Reference domain volume
	VObj          float64    // Target mean density over the Robin nodes
	MaxIterations int
	StepFloor     float64
	MaxStep       float64 // Upper bound on mu after growth, zero leaves growth unbounded
	Logger        *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Alpha:         complex(10, -10),
		Mu:            5,
		Mu1:           1.e-5,
		V0:            1,
		MaxIterations: DefaultMaxIterations,
		StepFloor:     DefaultStepFloor,
	}
}

// EnergyTrace holds MaxIterations+1 slots, Values[0] is the energy of the initial
// density and Values[k+1] the accepted energy of outer iteration k. Only the first
// Len entries were written: Len is Iterations+1 once the loop has started, and 0
// when the step was already at the floor.
type EnergyTrace struct {
	Values []float64
	Len    int
}

func NewEnergyTrace(maxIterations int) EnergyTrace {
	return EnergyTrace{Values: make([]float64, maxIterations+1)}
}

func (et *EnergyTrace) record(k int, ene float64) {
	et.Values[k] = ene
	et.Len = k + 1
}

func (et EnergyTrace) Recorded() []float64 { return et.Values[:et.Len] }

type Result struct {
	Chi         *mat.Dense  // Final density, the last projection on a stall
	U           *mat.CDense // Forward field of the final density
	Gradient    *mat.Dense  // Gradient of the energy at the final density
	Energy      EnergyTrace // Accepted energies
	FinalEnergy float64     // Energy of U
	Status      Status
	Iterations  int     // Completed outer iterations
	Step        float64 // Value of mu on exit
	OracleCalls int
}

type Optimizer struct {
	oracle      Oracle
	pb          *Helmholtz2D.Problem
	nodes       types.NodeMap
	opts        Options
	chi0        *mat.Dense
	status      Status
	oracleCalls int
	logger      *slog.Logger
}

// NewOptimizer validates the configuration, pb supplies the geometry, coefficients
// and sources, its AlphaRob is replaced by Alpha*chi on every solve
func NewOptimizer(oracle Oracle, pb *Helmholtz2D.Problem, chi0 *mat.Dense, opts Options) (op *Optimizer, err error) {
	if err = validate(oracle, pb, chi0, opts); err != nil {
		return
	}
	op = &Optimizer{
		oracle: oracle,
		pb:     pb,
		nodes:  pb.Nodes,
		opts:   opts,
		chi0:   utils.Mask(utils.CopyField(chi0), pb.Nodes, densityNode),
		status: Init,
		logger: opts.Logger,
	}
	if op.logger == nil {
		op.logger = slog.New(slog.DiscardHandler)
	}
	return
}

func validate(oracle Oracle, pb *Helmholtz2D.Problem, chi0 *mat.Dense, opts Options) error {
	isBad := func(f float64) bool { return math.IsNaN(f) || math.IsInf(f, 0) }
	switch {
	case oracle == nil:
		return configErr("oracle", "is nil")
	case pb == nil:
		return configErr("problem", "is nil")
	case pb.Nodes.Count(densityNode) == 0:
		return configErr("nodes", "has no Robin nodes, the volume constraint is undefined")
	case !(pb.Spacestep > 0) || isBad(pb.Spacestep):
		return configErr("Spacestep", "must be positive, have %v", pb.Spacestep)
	case isBad(opts.VObj) || opts.VObj <= 0 || opts.VObj > 1:
		return configErr("VObj", "must be in (0,1], have %v", opts.VObj)
	case opts.MaxIterations <= 0:
		return configErr("MaxIterations", "must be positive, have %d", opts.MaxIterations)
	case isBad(opts.StepFloor) || opts.StepFloor <= 0:
		return configErr("StepFloor", "must be positive, have %v", opts.StepFloor)
	case isBad(opts.Mu) || opts.Mu < 0:
		return configErr("Mu", "must be non-negative, have %v", opts.Mu)
	case isBad(opts.MaxStep) || opts.MaxStep < 0:
		return configErr("MaxStep", "must be non-negative, have %v", opts.MaxStep)
	case cmplx.IsNaN(opts.Alpha) || cmplx.IsInf(opts.Alpha):
		return configErr("Alpha", "is not finite")
	case isBad(opts.Mu1) || isBad(opts.V0):
		return configErr("Mu1/V0", "are not finite")
	case chi0 == nil:
		return configErr("chi", "is nil")
	}
	if nr, nc := chi0.Dims(); nr != pb.Nodes.Nr || nc != pb.Nodes.Nc {
		return configErr("chi", "is %dx%d, node map is %dx%d", nr, nc, pb.Nodes.Nr, pb.Nodes.Nc)
	}
	if !utils.MaskedFinite(chi0, pb.Nodes, densityNode) {
		return configErr("chi", "has non-finite entries on Robin nodes")
	}
	return nil
}

func (op *Optimizer) Status() Status   { return op.status }
func (op *Optimizer) OracleCalls() int { return op.oracleCalls }

// Run performs the projected gradient descent, it can be called once
func (op *Optimizer) Run() (res *Result, err error) {
	if op.status != Init {
		return nil, configErr("Run", "called on an optimizer in state %s", op.status)
	}
	var (
		o     = op.opts
		trace = NewEnergyTrace(o.MaxIterations)
		chi   = op.chi0
		mu    = o.Mu
		k     int
		u, p  *mat.CDense
		Jd    *mat.Dense
	)
	op.status = Iterating
	for k < o.MaxIterations && mu > o.StepFloor {
		if u, err = op.forward(chi, k, "forward"); err != nil {
			return
		}
		if p, err = op.adjoint(chi, u, k); err != nil {
			return
		}
		ene := Energy(u, op.pb.Spacestep, o.Mu1, o.V0)
		if k == 0 {
			trace.record(0, ene)
		}
		baseline := trace.Values[k]
		Jd = op.gradient(u, p)

		// Each trial starts from the previous projection, accepted or not
		var (
			accepted bool
			eneTrial = baseline
		)
		for eneTrial >= baseline && mu > o.StepFloor {
			trial := mat.NewDense(op.nodes.Nr, op.nodes.Nc, nil)
			floats.AddScaledTo(utils.FieldData(trial), utils.FieldData(chi), -mu, utils.FieldData(Jd))
			utils.ClampShift(trial, trial, 0, 0, 1)
			var pr Projection
			if pr, err = Project(trial, op.nodes, o.VObj); err != nil {
				return
			}
			chi = pr.Chi
			var uTrial *mat.CDense
			if uTrial, err = op.forward(chi, k, "trial"); err != nil {
				return
			}
			eneTrial = Energy(uTrial, op.pb.Spacestep, o.Mu1, o.V0)
			muTried := mu
			if eneTrial < baseline {
				accepted = true
				mu *= StepGrowth
				if o.MaxStep > 0 {
					mu = math.Min(mu, o.MaxStep)
				}
			} else {
				mu /= StepShrink
			}
			op.logger.Debug("line search trial",
				"iteration", k, "mu", muTried, "energy", eneTrial, "baseline", baseline,
				"shift", pr.Shift, "bisections", pr.Steps)
		}
		// On a stall chi holds the last projection and the trace is not extended
		if !accepted {
			break
		}
		trace.record(k+1, eneTrial)
		k++
		op.logger.Info("iteration complete",
			"iteration", k, "energy", eneTrial, "mu", mu, "oracleCalls", op.oracleCalls)
	}
	if k >= o.MaxIterations {
		op.status = Converged
	} else {
		op.status = StepExhausted
	}

	res = &Result{
		Chi:        chi,
		Energy:     trace,
		Status:     op.status,
		Iterations: k,
		Step:       mu,
	}
	if res.U, err = op.forward(chi, k, "final"); err != nil {
		return nil, err
	}
	if p, err = op.adjoint(chi, res.U, k); err != nil {
		return nil, err
	}
	res.Gradient = op.gradient(res.U, p)
	res.FinalEnergy = Energy(res.U, op.pb.Spacestep, o.Mu1, o.V0)
	res.OracleCalls = op.oracleCalls
	op.logger.Info("optimization finished",
		"status", op.status.String(), "iterations", k, "energy", res.FinalEnergy,
		"mu", mu, "oracleCalls", op.oracleCalls)
	return
}

func (op *Optimizer) absorption(chi *mat.Dense) *mat.CDense {
	return utils.MaskC(utils.ScaleToC(op.opts.Alpha, chi), op.nodes, densityNode)
}

func (op *Optimizer) forward(chi *mat.Dense, k int, stage string) (u *mat.CDense, err error) {
	return op.solve(op.pb.WithAbsorption(op.absorption(chi)), k, stage)
}

// adjoint solves the same operator with source -2*conj(u) and homogeneous Dirichlet data
func (op *Optimizer) adjoint(chi *mat.Dense, u *mat.CDense, k int) (p *mat.CDense, err error) {
	pb := op.pb.WithAbsorption(op.absorption(chi)).WithAdjointSource(utils.ConjScaleC(-2, u))
	return op.solve(pb, k, "adjoint")
}

func (op *Optimizer) solve(pb *Helmholtz2D.Problem, k int, stage string) (u *mat.CDense, err error) {
	op.oracleCalls++
	if u, err = op.oracle.Solve(pb); err != nil {
		err = &OracleFailure{Iteration: k, Stage: stage, Err: err}
		return
	}
	if u == nil || !utils.AllFiniteC(u) {
		err = &OracleFailure{Iteration: k, Stage: stage,
			Err: fmt.Errorf("returned an empty or non-finite field")}
		return
	}
	if nr, nc := u.Dims(); nr != op.nodes.Nr || nc != op.nodes.Nc {
		err = &OracleFailure{Iteration: k, Stage: stage,
			Err: fmt.Errorf("returned a %dx%d field for a %dx%d grid", nr, nc, op.nodes.Nr, op.nodes.Nc)}
	}
	return
}

// gradient is Jd = -Re(Alpha * u * p) on every node
func (op *Optimizer) gradient(u, p *mat.CDense) (Jd *mat.Dense) {
	var (
		ud, pd = utils.CFieldData(u), utils.CFieldData(p)
	)
	Jd = mat.NewDense(op.nodes.Nr, op.nodes.Nc, nil)
	jd := utils.FieldData(Jd)
	for i := range jd {
		jd[i] = -real(op.opts.Alpha * ud[i] * pd[i])
	}
	return
}
