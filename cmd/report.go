package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/ghodss/yaml"

	"github.com/notargets/wallopt/geometry2D"
	"github.com/notargets/wallopt/model_problems/Absorber2D"
	"github.com/notargets/wallopt/model_problems/Helmholtz2D"
	"github.com/notargets/wallopt/utils"
)

// Report is the YAML document written by the optimize command, ghodss/yaml reads the json tags
type Report struct {
	Title          string      `json:"Title"`
	Status         string      `json:"Status"`
	Iterations     int         `json:"Iterations"`
	Step           float64     `json:"Step"`
	OracleCalls    int         `json:"OracleCalls"`
	Factorizations int         `json:"Factorizations"`
	InitialEnergy  float64     `json:"InitialEnergy"`
	FinalEnergy    float64     `json:"FinalEnergy"`
	VolumeFraction float64     `json:"VolumeFraction"`
	Spacestep      float64     `json:"Spacestep"`
	Wall           []int       `json:"Wall"`
	EnergyTrace    []float64   `json:"EnergyTrace"`
	Chi            [][]float64 `json:"Chi"`
	UAbs           [][]float64 `json:"UAbs"`
	Gradient       [][]float64 `json:"Gradient"`
}

func NewReport(title string, E0 float64, res *Absorber2D.Result, dom *geometry2D.Domain,
	stats Helmholtz2D.Stats) (rep *Report) {
	rep = &Report{
		Title:          title,
		Status:         res.Status.String(),
		Iterations:     res.Iterations,
		Step:           res.Step,
		OracleCalls:    res.OracleCalls,
		Factorizations: stats.Factorizations,
		InitialEnergy:  E0,
		FinalEnergy:    res.FinalEnergy,
		VolumeFraction: Absorber2D.VolumeFraction(res.Chi, dom.Nodes),
		Spacestep:      dom.Spacestep,
		Wall:           dom.Wall,
		EnergyTrace:    res.Energy.Recorded(),
		Chi:            utils.FieldRows(res.Chi),
		UAbs:           utils.FieldRows(utils.AbsC(res.U)),
		Gradient:       utils.FieldRows(res.Gradient),
	}
	return
}

func (rep *Report) Write(path string) (err error) {
	var data []byte
	if data, err = yaml.Marshal(rep); err != nil {
		return
	}
	return os.WriteFile(path, data, 0644)
}

// WriteTrace writes the recorded energies as "iteration,energy" rows
func WriteTrace(path string, trace Absorber2D.EnergyTrace) (err error) {
	var file *os.File
	if file, err = os.Create(path); err != nil {
		return
	}
	defer file.Close()
	w := csv.NewWriter(file)
	if err = w.Write([]string{"iteration", "energy"}); err != nil {
		return
	}
	for k, ene := range trace.Recorded() {
		if err = w.Write([]string{strconv.Itoa(k), strconv.FormatFloat(ene, 'e', 12, 64)}); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}
