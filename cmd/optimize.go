/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/wallopt/InputParameters"
	"github.com/notargets/wallopt/geometry2D"
	"github.com/notargets/wallopt/model_problems/Absorber2D"
	"github.com/notargets/wallopt/model_problems/Helmholtz2D"
	"github.com/notargets/wallopt/utils"
)

type OptimizeRun struct {
	InputFile   string
	OutputFile  string
	TraceFile   string
	ProfilePath string
	Profile     bool
	Verbose     bool
}

// OptimizeCmd represents the optimize command
var OptimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Optimize the absorber density on the fractal wall",
	Long: `
Solves the Helmholtz problem in front of the fractal wall and runs the projected
gradient descent on the absorber density, subject to the volume constraint.

wallopt optimize -I input.yaml -o result.yaml --traceFile energy.csv`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		or := &OptimizeRun{
			InputFile:   viper.GetString("inputParametersFile"),
			OutputFile:  viper.GetString("output"),
			TraceFile:   viper.GetString("traceFile"),
			ProfilePath: viper.GetString("profilePath"),
			Profile:     viper.GetBool("profile"),
			Verbose:     viper.GetBool("verbose"),
		}
		var ip *InputParameters.OptimizationParameters
		if ip, err = processInput(or); err != nil {
			return
		}
		_, err = RunOptimize(or, ip)
		return
	},
}

func init() {
	rootCmd.AddCommand(OptimizeCmd)
	OptimizeCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file for input parameters like:\n\t- N, Level (grid and wall)\n\t- Wavenumber, AlphaRe, AlphaIm\n\t- Mu, VObj, MaxIterations")
	OptimizeCmd.Flags().StringP("output", "o", "", "YAML file receiving the final density, field magnitude, gradient and energy history")
	OptimizeCmd.Flags().String("traceFile", "", "CSV file receiving the energy history")
	OptimizeCmd.Flags().BoolP("verbose", "v", false, "log every line search trial")
	OptimizeCmd.Flags().Bool("profile", false, "write a CPU profile of the run")
	OptimizeCmd.Flags().String("profilePath", ".", "directory for the CPU profile")
	for _, name := range []string{"inputParametersFile", "output", "traceFile", "verbose", "profile", "profilePath"} {
		if err := viper.BindPFlag(name, OptimizeCmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func processInput(or *OptimizeRun) (ip *InputParameters.OptimizationParameters, err error) {
	ip = InputParameters.NewOptimizationParameters()
	if len(or.InputFile) != 0 {
		var data []byte
		if data, err = os.ReadFile(or.InputFile); err != nil {
			return
		}
		if err = ip.Parse(data); err != nil {
			err = fmt.Errorf("unable to parse %s: %w", or.InputFile, err)
			return
		}
	} else {
		exampleFile := `
########################################
Title: "Test Case"
N: 50
Level: 2
Wavenumber: 10.
Source: planar
AlphaRe: 10.
AlphaIm: -10.
InitialDensity: 0.5
Mu: 5.
MaxIterations: 100
########################################
`
		fmt.Printf("No input parameters file (-I, --inputParametersFile), running the default case\n")
		fmt.Printf("Example File:%s\n", exampleFile)
	}
	err = ip.Validate()
	return
}

func RunOptimize(or *OptimizeRun, ip *InputParameters.OptimizationParameters) (res *Absorber2D.Result, err error) {
	if or.Profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(or.ProfilePath)).Stop()
	}
	level := slog.LevelInfo
	if or.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	ip.Print()

	var (
		dom *geometry2D.Domain
		st  geometry2D.SourceType
	)
	if dom, err = geometry2D.NewDomain(ip.Rows(), ip.N, ip.Level); err != nil {
		return
	}
	if st, err = geometry2D.NewSourceType(ip.Source); err != nil {
		return
	}
	pb := Helmholtz2D.NewProblem(dom.Nodes, dom.Spacestep, ip.Wavenumber)
	pb.FDir = dom.DirichletData(st, ip.SourceAmplitude)
	chi0 := dom.InitialDensity(ip.InitialDensity)
	vObj := ip.VObj
	if vObj == 0 {
		vObj = Absorber2D.VolumeFraction(chi0, dom.Nodes)
	}
	fmt.Printf("Wall surface S = %d Robin nodes, %s, VObj = %8.5f\n", dom.RobinCount(), st.Print(), vObj)

	solver := Helmholtz2D.NewSolver()
	// Energy of the uncontrolled configuration, the initial density
	u0, err := solver.Solve(pb.WithAbsorption(utils.ScaleToC(ip.Alpha(), chi0)))
	if err != nil {
		return
	}
	E0 := Absorber2D.Energy(u0, dom.Spacestep, ip.Mu1, ip.V0)

	op, err := Absorber2D.NewOptimizer(solver, pb, chi0, Absorber2D.Options{
		Alpha:         ip.Alpha(),
		Mu:            ip.Mu,
		Mu1:           ip.Mu1,
		V0:            ip.V0,
		VObj:          vObj,
		MaxIterations: ip.MaxIterations,
		StepFloor:     ip.StepFloor,
		MaxStep:       ip.MaxStep,
		Logger:        logger,
	})
	if err != nil {
		return
	}
	start := time.Now()
	if res, err = op.Run(); err != nil {
		return
	}
	elapsed := time.Since(start)
	stats := solver.Stats()

	fmt.Printf("\nStatus: %s after %d iterations, final step mu = %8.3e\n", res.Status, res.Iterations, res.Step)
	fmt.Printf("Energy: uncontrolled = %12.6e, optimized = %12.6e, ratio = %8.5f\n",
		E0, res.FinalEnergy, res.FinalEnergy/E0)
	fmt.Printf("Volume fraction = %8.5f\n", Absorber2D.VolumeFraction(res.Chi, dom.Nodes))
	fmt.Printf("Oracle calls = %d, factorizations = %d, solver time = %v, total time = %v\n",
		res.OracleCalls, stats.Factorizations, stats.Runtime, elapsed)
	fmt.Printf("%s\n", utils.GetMemUsage())

	if len(or.OutputFile) != 0 {
		rep := NewReport(ip.Title, E0, res, dom, stats)
		if err = rep.Write(or.OutputFile); err != nil {
			return
		}
		fmt.Printf("Wrote %s\n", or.OutputFile)
	}
	if len(or.TraceFile) != 0 {
		if err = WriteTrace(or.TraceFile, res.Energy); err != nil {
			return
		}
		fmt.Printf("Wrote %s\n", or.TraceFile)
	}
	return
}
