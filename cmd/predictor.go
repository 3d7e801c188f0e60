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

	"github.com/notargets/gofvns/InputParameters"
	"github.com/notargets/gofvns/fv"
	"github.com/notargets/gofvns/mesh"
	"github.com/notargets/gofvns/model_problems/INSFV"
	"github.com/notargets/gofvns/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/spatial/r3"
)

type PredictorModel struct {
	MeshFile string    // SU2 or Gmsh mesh, when empty a Cartesian mesh is generated
	ICFile   string    // YAML or TOML input parameters
	Dim      int       // Cartesian mesh dimension
	N        []int     // Cartesian cells per direction
	Lengths  []float64 // Cartesian domain size
	Threads  int       // Overrides the input file's ParallelDegree when positive
	Passes   int       // Overrides the input file's MaxPasses when positive
}

var exampleFile = `
########################################
Title: "Channel"
Mu: 0.01
Rho: 1.
VelocityInterpMethod: rc # Can be "average"
AdvectedInterpMethod: upwind # Can be "average"
InitialVelocity: [1, 0]
MaxPasses: 1
BCs:
  InletVelocity:
      1:
         u: 1.
  OutletPressure:
      2:
         pressure: 0.
  FullyDevelopedFlow:
      2: {}
  NoSlipWall:
      3: {}
  Symmetry:
      4: {}
########################################
`

// PredictorCmd represents the predictor command
var PredictorCmd = &cobra.Command{
	Use:   "predictor",
	Short: "Assemble the Rhie-Chow momentum predictor residuals and Jacobian",
	Long: `
Builds the momentum predictor of every velocity component on a mesh and runs assembly
passes, reporting the residual norms of each component and the Jacobian size.

gofvns predictor -I input.yaml --dim 2 --n 20,10 --lengths 2,1`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		pm := &PredictorModel{
			MeshFile: viper.GetString("meshFile"),
			ICFile:   viper.GetString("inputConditionsFile"),
			Dim:      viper.GetInt("dim"),
			Threads:  viper.GetInt("threads"),
			Passes:   viper.GetInt("passes"),
		}
		if pm.N, err = cmd.Flags().GetIntSlice("n"); err != nil {
			return
		}
		if pm.Lengths, err = cmd.Flags().GetFloat64Slice("lengths"); err != nil {
			return
		}
		if len(pm.ICFile) == 0 {
			fmt.Printf("Example File:%s\n", exampleFile)
			return fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile)")
		}
		var ip *InputParameters.InputParameters
		if ip, err = InputParameters.ReadInputFile(pm.ICFile); err != nil {
			return
		}
		if viper.GetBool("verbose") {
			ip.Print()
		}
		_, err = RunPredictor(pm, ip, logrus.StandardLogger())
		return
	},
}

func init() {
	rootCmd.AddCommand(PredictorCmd)
	PredictorCmd.Flags().StringP("meshFile", "F", "", "Mesh file to read in SU2 (.su2) or Gmsh 2.2 (.msh) format")
	PredictorCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML or TOML file for input parameters like:\n\t- Mu, Rho\n\t- BCs")
	PredictorCmd.Flags().Int("dim", 2, "dimension of the generated Cartesian mesh")
	PredictorCmd.Flags().IntSlice("n", []int{10, 10, 10}, "cells per direction of the generated Cartesian mesh")
	PredictorCmd.Flags().Float64Slice("lengths", []float64{1, 1, 1}, "domain size of the generated Cartesian mesh")
	PredictorCmd.Flags().IntP("threads", "t", 0, "number of assembly workers, 0 uses the input file or every CPU")
	PredictorCmd.Flags().IntP("passes", "p", 0, "number of assembly passes, 0 uses the input file")
	for _, name := range []string{"meshFile", "inputConditionsFile", "dim", "threads", "passes"} {
		_ = viper.BindPFlag(name, PredictorCmd.Flags().Lookup(name))
	}
}

// RunPredictor builds the mesh, system and kernels and returns the result of the last pass
func RunPredictor(pm *PredictorModel, ip *InputParameters.InputParameters,
	log logrus.FieldLogger) (res *INSFV.Result, err error) {
	var m *mesh.Mesh
	if pm.MeshFile != "" {
		m, err = mesh.ReadMeshFile(pm.MeshFile)
	} else {
		m, err = mesh.NewCartesianMesh(pm.Dim, pm.N, pm.Lengths)
	}
	if err != nil {
		return
	}
	m.LogStatistics(log)
	var fvm *mesh.FVMesh
	if fvm, err = mesh.NewFVMesh(m); err != nil {
		return
	}
	var cs mesh.CoordSystem
	if cs, err = mesh.NewCoordSystem(ip.CoordSystem); err != nil {
		return
	}
	for _, c := range fvm.Cells {
		fvm.SetCoordSystem(c.Subdomain, cs)
	}

	var (
		velocity = []string{"u", "v", "w"}[:fvm.Dim]
		bcs      *fv.Warehouse
	)
	if bcs, err = ip.BuildBCs(fvm.BoundaryNames, velocity, "pressure"); err != nil {
		return
	}
	log.WithFields(logrus.Fields{
		"markers":    len(fvm.BoundaryNames),
		"conditions": len(bcs.All()),
	}).Debug("boundary conditions")
	sys := fv.NewSystem(fvm, bcs)
	for i, name := range velocity {
		var initial float64
		if i < len(ip.InitialVelocity) {
			initial = ip.InitialVelocity[i]
		}
		sys.AddVariable(name, initial)
	}
	pressure := sys.AddVariable("pressure", ip.InitialPressure)
	if len(ip.PressureGradient) != 0 {
		var g [3]float64
		copy(g[:], ip.PressureGradient)
		for k, c := range fvm.Cells {
			pressure.SetValue(k, pressure.Value(k)+r3.Dot(r3.Vec{X: g[0], Y: g[1], Z: g[2]}, c.Centroid))
		}
	}
	sys.AddProperty("mu", fv.Constant(ip.Mu))
	sys.AddProperty("rho", fv.Constant(ip.Rho))

	threads := ip.ParallelDegree
	if pm.Threads > 0 {
		threads = pm.Threads
	}
	cache := INSFV.NewCoefficientCache(utils.ParallelDegree(threads, fvm.NumCells()))
	var kernels []*INSFV.MomentumPredictor
	for _, component := range []string{"x", "y", "z"}[:fvm.Dim] {
		p := INSFV.NewParams(component)
		p.VelocityInterpMethod = ip.VelocityInterpMethod
		p.AdvectedInterpMethod = ip.AdvectedInterpMethod
		var mp *INSFV.MomentumPredictor
		if mp, err = INSFV.NewMomentumPredictor(sys, cache, p); err != nil {
			return
		}
		mp.Log = log
		kernels = append(kernels, mp)
	}
	var as *INSFV.Assembler
	if as, err = INSFV.NewAssembler(sys, kernels); err != nil {
		return
	}
	as.Log = log

	passes := ip.MaxPasses
	if pm.Passes > 0 {
		passes = pm.Passes
	}
	if passes < 1 {
		passes = 1
	}
	log.WithFields(logrus.Fields{
		"title":   ip.Title,
		"workers": cache.NumWorkers(),
		"dofs":    sys.NDoF(),
		"passes":  passes,
	}).Info("momentum predictor")
	for pass := 1; pass <= passes; pass++ {
		if res, err = as.Run(); err != nil {
			return nil, err
		}
		fields := logrus.Fields{
			"pass":         pass,
			"jacobian_nnz": res.Jacobian.NNZ(),
		}
		for k, kernel := range kernels {
			fields[kernel.Name] = res.Norms[k]
		}
		log.WithFields(fields).Info("residual norms")
	}
	return
}
