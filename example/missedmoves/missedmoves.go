package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	motionlite "github.com/dtrn/go-motionlite"
	"github.com/dtrn/go-motionlite/format"
	"github.com/dtrn/go-motionlite/motion"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	standardFile := flag.String("s", "../data/standard.act", "Action file of the reference performance")
	sampleFile := flag.String("c", "../data/sample.act", "Action file of the performance to grade")
	threshold := flag.Int("t", 64, "Score below which a connection counts as missed, 0 to 128")

	flag.Parse()

	if *threshold < 0 || *threshold > 128 {
		log.Fatal("Threshold must be between 0 and 128")
	}

	standard, err := loadAction(*standardFile)

	if err != nil {
		log.Fatalf("Error loading standard action: %v\n", err)
	}

	sample, err := loadAction(*sampleFile)

	if err != nil {
		log.Fatalf("Error loading sample action: %v\n", err)
	}

	length := len(standard)

	if len(sample) < length {
		length = len(sample)
	}

	scoreList := make([]map[motion.Connection]uint8, 0, length)

	for i := 0; i < length; i++ {
		scoreList = append(scoreList, motion.Score(standard[i][0], sample[i][0]))
	}

	misses, err := motion.MissedMoves(scoreList, uint8(*threshold))

	if err != nil {
		log.Fatalf("Error detecting missed moves: %v\n", err)
	}

	total := 0

	for i, frame := range misses {
		for conn, miss := range frame {
			total++

			log.Printf("frame %4d: %s-%s missed for %d frames, mean score %d\n",
				i, conn.From, conn.To, miss.Length, miss.MeanScore)
		}
	}

	log.Printf("Found %d missed moves over %d frames\n", total, length)
}

func loadAction(file string) ([]map[int]*motionlite.Human, error) {

	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening action file: %w", err)
	}

	defer f.Close()

	action, err := format.ReadAction(f)

	if err != nil {
		return nil, fmt.Errorf("error reading action data: %w", err)
	}

	return action, nil
}
