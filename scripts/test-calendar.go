package main

import (
	"fmt"
	"os"
	"time"

	"github.com/centresolea/solea-events/internal/calendar"
	"github.com/centresolea/solea-events/internal/event"
)

func main() {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading time zone: %v\n", err)
		os.Exit(1)
	}

	// One timed show and one all-day workshop
	events := []*event.Event{
		event.New("Tablao avec Ana Pérez au Centre Soléa", "", event.Date{Month: time.December, Day: 13}, "20h30"),
		event.New("Stage de sévillanes", "Salle Jean Vilar, Nîmes", event.Date{Month: time.December, Day: 14}, ""),
	}
	events[0].DetailURL = "https://isbitelecom.com/tablao-flamenco"

	icsContent := calendar.GenerateICS(events, time.Now(), loc)

	// Write to file (owner read/write only)
	filename := "test-solea-events.ics"
	if err := os.WriteFile(filename, []byte(icsContent), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated calendar file: %s\n\n", filename)
	fmt.Println("Import it into a calendar app to check the all-day and timed entries.")
	fmt.Println("\nFile contents preview:")
	fmt.Println("---")
	fmt.Println(icsContent)
}
