// cmd/tools/dose-calculator/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"cowin-slot-assistant/internal/beneficiary"
	"cowin-slot-assistant/internal/cowin"
)

func main() {
	vaccine := flag.String("vaccine", "", "Vaccine taken as dose 1 (e.g., COVISHIELD)")
	dose1 := flag.String("dose1", "", "Dose 1 date in DD-MM-YYYY")
	list := flag.Bool("list", false, "List the dose intervals and exit")
	flag.Parse()

	if *list {
		printIntervals()
		return
	}

	if *vaccine == "" || *dose1 == "" {
		fmt.Println("Error: vaccine and dose1 are required.")
		flag.Usage()
		os.Exit(1)
	}

	due, err := beneficiary.DueDate(strings.ToUpper(strings.TrimSpace(*vaccine)), strings.TrimSpace(*dose1))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Dose 2 due on: %s\n", due.Format(cowin.DateLayout))
}

func printIntervals() {
	names := make([]string, 0, len(beneficiary.DoseIntervals))
	for name := range beneficiary.DoseIntervals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%-12s %d days\n", name, beneficiary.DoseIntervals[name])
	}
}
