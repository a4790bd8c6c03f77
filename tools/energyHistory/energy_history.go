package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
)

var (
	csvFile string
)

// Prints the energy history written by "wallopt optimize --traceFile"
func main() {
	csvFilePtr := flag.String("csvFile", csvFile, "file containing the energy trace of an optimization run")
	flag.Parse()
	csvFile = *csvFilePtr
	if len(csvFile) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	fmt.Printf("Input file: %v\n", csvFile)
	h, err := readCSV(csvFile)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	fmt.Printf("Iteration, Energy, Ratio to previous, Ratio to initial\n")
	for i := range h.iteration {
		fmt.Printf("%d, %12.6e, %8.5f, %8.5f\n",
			h.iteration[i], h.energy[i], h.RatioToPrevious(i), h.energy[i]/h.energy[0])
	}
}

type EnergyHistory struct {
	iteration []int
	energy    []float64
}

func (h *EnergyHistory) Add(iteration int, energy float64) {
	h.iteration = append(h.iteration, iteration)
	h.energy = append(h.energy, energy)
}

func (h *EnergyHistory) RatioToPrevious(i int) float64 {
	if i == 0 {
		return 1
	}
	return h.energy[i] / h.energy[i-1]
}

func readCSV(csvFile string) (h *EnergyHistory, err error) {
	var (
		records [][]string
		f       *os.File
	)
	h = &EnergyHistory{}
	if f, err = os.Open(csvFile); err != nil {
		return
	}
	defer f.Close()
	r := csv.NewReader(bufio.NewReader(f))
	if records, err = r.ReadAll(); err != nil {
		return
	}
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("line %d: expected iteration,energy, have %v", i+1, rec)
		}
		var (
			k   int
			ene float64
		)
		if k, err = strconv.Atoi(rec[0]); err != nil {
			return
		}
		if ene, err = strconv.ParseFloat(rec[1], 64); err != nil {
			return
		}
		h.Add(k, ene)
	}
	if len(h.energy) == 0 {
		err = fmt.Errorf("no energy entries in %s", csvFile)
	}
	return
}
