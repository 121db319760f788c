package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	motionlite "github.com/dtrn/go-motionlite"
	"github.com/dtrn/go-motionlite/format"
	"github.com/dtrn/go-motionlite/motion"
	"gonum.org/v1/gonum/stat"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	standardFile := flag.String("s", "../data/standard.act", "Action file of the reference performance")
	sampleFile := flag.String("c", "../data/sample.act", "Action file of the performance to grade")

	flag.Parse()

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

	if length == 0 {
		log.Fatal("No overlapping frames to score")
	}

	var frameMeans []float64

	for i := 0; i < length; i++ {
		scores := motion.Score(standard[i][0], sample[i][0])

		if len(scores) == 0 {
			continue
		}

		var values []float64

		for _, score := range scores {
			values = append(values, float64(score))
		}

		mean := stat.Mean(values, nil)
		frameMeans = append(frameMeans, mean)

		log.Printf("frame %4d: %2d connections, mean score %.1f\n",
			i, len(scores), mean)
	}

	if len(frameMeans) == 0 {
		log.Fatal("No scorable frames, both performances may be empty")
	}

	mean, std := stat.MeanStdDev(frameMeans, nil)

	log.Printf("Overall: %d scored frames, mean %.1f, stddev %.1f\n",
		len(frameMeans), mean, std)
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
