package InputParameters

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ghodss/yaml"
	"github.com/notargets/gofvns/fv"
	"github.com/notargets/gofvns/types"
	"github.com/spf13/cast"
)

// Parameters obtained from the YAML or TOML input file
type InputParameters struct {
	Title                string                                    `json:"Title"`
	Mu                   float64                                   `json:"Mu"`
	Rho                  float64                                   `json:"Rho"`
	VelocityInterpMethod string                                    `json:"VelocityInterpMethod"`
	AdvectedInterpMethod string                                    `json:"AdvectedInterpMethod"`
	CoordSystem          string                                    `json:"CoordSystem"`
	ParallelDegree       int                                       `json:"ParallelDegree"` // Zero uses every CPU
	MaxPasses            int                                       `json:"MaxPasses"`
	InitialVelocity      []float64                                 `json:"InitialVelocity"`
	InitialPressure      float64                                   `json:"InitialPressure"`
	PressureGradient     []float64                                 `json:"PressureGradient"`
	BCs                  map[string]map[int]map[string]interface{} `json:"BCs"` // First key is BC type, second is marker tag, third is parameter name
}

func NewInputParameters() *InputParameters {
	return &InputParameters{
		Title:                "Momentum Predictor",
		Mu:                   1,
		Rho:                  1,
		VelocityInterpMethod: "rc",
		AdvectedInterpMethod: "upwind",
		CoordSystem:          "XYZ",
		MaxPasses:            1,
	}
}

func (ip *InputParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

// ParseTOML decodes TOML input, marker tags are written as table keys, e.g. [BCs.Inflow.1]
func (ip *InputParameters) ParseTOML(data []byte) (err error) {
	var (
		raw map[string]interface{}
		js  []byte
	)
	if _, err = toml.Decode(string(data), &raw); err != nil {
		return
	}
	if js, err = json.Marshal(raw); err != nil {
		return
	}
	return json.Unmarshal(js, ip)
}

// ReadInputFile picks the parser by file extension, anything other than .toml is read as YAML
func ReadInputFile(filename string) (ip *InputParameters, err error) {
	var data []byte
	if data, err = os.ReadFile(filename); err != nil {
		return
	}
	ip = NewInputParameters()
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		err = ip.ParseTOML(data)
	default:
		err = ip.Parse(data)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%8.5f\t\t= Mu\n", ip.Mu)
	fmt.Printf("%8.5f\t\t= Rho\n", ip.Rho)
	fmt.Printf("[%s]\t\t\t= Velocity Interpolation\n", ip.VelocityInterpMethod)
	fmt.Printf("[%s]\t\t= Advected Interpolation\n", ip.AdvectedInterpMethod)
	fmt.Printf("[%s]\t\t\t= Coordinate System\n", ip.CoordSystem)
	fmt.Printf("[%d]\t\t\t\t= Max Passes\n", ip.MaxPasses)
	keys := make([]string, len(ip.BCs))
	i := 0
	for k := range ip.BCs {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = %v\n", key, ip.BCs[key])
	}
}

// BCParam looks up a parameter by case insensitive name, def is returned when it is absent
func BCParam(params map[string]interface{}, name string, def float64) (val float64, err error) {
	for k, v := range params {
		if strings.EqualFold(k, name) {
			if val, err = cast.ToFloat64E(v); err != nil {
				return 0, fmt.Errorf("parameter %s: %w", name, err)
			}
			return
		}
	}
	return def, nil
}

/*
BuildBCs creates the boundary conditions of the input file. Velocity type conditions are applied
to every velocity component, "InletVelocity" and "NoSlipWall" read the component values from
parameters named after the velocity variables. An "OutletPressure" fixes the pressure variable
(parameter "pressure", default zero). "Dirichlet" and "Flux" take one parameter per variable.

Marker tags without a condition in the input are inferred from their marker name when it has the
form "Type-label".
*/
func (ip *InputParameters) BuildBCs(markers map[int]string, velocity []string, pressure string) (w *fv.Warehouse, err error) {
	w = fv.NewWarehouse()
	bcTypes := make([]string, 0, len(ip.BCs))
	for name := range ip.BCs {
		bcTypes = append(bcTypes, name)
	}
	sort.Strings(bcTypes)
	for _, name := range bcTypes {
		var flag types.BCFLAG
		if flag, err = types.NewBCFLAG(name); err != nil {
			return nil, err
		}
		tags := make([]int, 0, len(ip.BCs[name]))
		for tag := range ip.BCs[name] {
			tags = append(tags, tag)
		}
		sort.Ints(tags)
		for _, tag := range tags {
			if _, ok := markers[tag]; !ok {
				return nil, fmt.Errorf("%s condition on tag %d, which is not a mesh marker", flag, tag)
			}
			var bcs []*fv.BoundaryCondition
			if bcs, err = newBCs(flag, tag, ip.BCs[name][tag], velocity, pressure); err != nil {
				return nil, fmt.Errorf("%s on tag %d: %w", flag, tag, err)
			}
			w.Add(bcs...)
		}
	}
	markerTags := make([]int, 0, len(markers))
	for tag := range markers {
		markerTags = append(markerTags, tag)
	}
	sort.Ints(markerTags)
	for _, tag := range markerTags {
		if w.HasTag(tag) {
			continue
		}
		flag := types.NewBCTAG(markers[tag]).GetFLAG()
		if flag == types.BC_None {
			continue
		}
		var bcs []*fv.BoundaryCondition
		if bcs, err = newBCs(flag, tag, nil, velocity, pressure); err != nil {
			return nil, fmt.Errorf("%s inferred on marker %s: %w", flag, markers[tag], err)
		}
		w.Add(bcs...)
	}
	return
}

func newBCs(flag types.BCFLAG, tag int, params map[string]interface{}, velocity []string,
	pressure string) (bcs []*fv.BoundaryCondition, err error) {
	switch flag {
	case types.BC_InletVelocity, types.BC_NoSlipWall:
		for _, name := range velocity {
			var val float64
			if val, err = BCParam(params, name, 0); err != nil {
				return nil, err
			}
			bcs = append(bcs, fv.NewBC(flag, name, val, tag))
		}
	case types.BC_FullyDevelopedFlow, types.BC_SlipWall, types.BC_Symmetry:
		for _, name := range velocity {
			bcs = append(bcs, fv.NewBC(flag, name, 0, tag))
		}
	case types.BC_OutletPressure:
		var val float64
		if val, err = BCParam(params, pressure, 0); err != nil {
			return nil, err
		}
		bcs = append(bcs, fv.NewBC(flag, pressure, val, tag))
	case types.BC_Dirichlet, types.BC_Flux:
		if len(params) == 0 {
			return nil, fmt.Errorf("no variables named")
		}
		names := make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			var val float64
			if val, err = cast.ToFloat64E(params[name]); err != nil {
				return nil, fmt.Errorf("parameter %s: %w", name, err)
			}
			bcs = append(bcs, fv.NewBC(flag, name, val, tag))
		}
	default:
		return nil, fmt.Errorf("unsupported condition type %s", flag)
	}
	return
}
