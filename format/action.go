package format

import (
	"fmt"
	"io"
	"math"
	"sort"

	motionlite "github.com/dtrn/go-motionlite"
)

// maxCount is the exclusive limit on serialized counts.  Counts at or above
// this value cannot appear on the wire; person indexes above it saturate.
const maxCount = 0x20000000

var magicBytes = []byte{'A', 'C', 'T', 0}

// Serialize encodes action data, one map of person index to human per frame.
// When magic is true the output starts with the "ACT\x00" marker.
func Serialize(action []map[int]*motionlite.Human, magic bool) ([]byte, error) {
	var out []byte

	if magic {
		out = append(out, magicBytes...)
	}

	if len(action) >= maxCount {
		return nil, fmt.Errorf("%w: %d frames", motionlite.ErrOverflow, len(action))
	}

	out = append(out, IntToBytes(uint32(len(action)))...)

	for _, humans := range action {
		var err error

		out, err = appendHumanMap(out, humans)

		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

func appendHumanMap(out []byte, humans map[int]*motionlite.Human) ([]byte, error) {
	if len(humans) >= maxCount {
		return nil, fmt.Errorf("%w: %d humans", motionlite.ErrOverflow, len(humans))
	}

	out = append(out, IntToBytes(uint32(len(humans)))...)

	indexes := make([]int, 0, len(humans))

	for index := range humans {
		indexes = append(indexes, index)
	}

	sort.Ints(indexes)

	for _, index := range indexes {
		if index < 0 {
			return nil, fmt.Errorf("%w: negative human index %d",
				motionlite.ErrInvalidArgument, index)
		}

		if humans[index] == nil {
			return nil, fmt.Errorf("%w: nil human at index %d",
				motionlite.ErrInvalidArgument, index)
		}

		if index > maxCount {
			index = maxCount
		}

		out = append(out, IntToBytes(uint32(index))...)
		out = appendHuman(out, humans[index])
	}

	return out, nil
}

func appendHuman(out []byte, human *motionlite.Human) []byte {
	var bitmap uint32

	for i := 0; i < int(motionlite.PartIndexEnd); i++ {
		if human.Has(motionlite.PartIndex(i)) {
			bitmap |= 1 << (31 - i)
		}
	}

	out = append(out, IntToBytes(bitmap)...)

	for i := 0; i < int(motionlite.PartIndexEnd); i++ {
		part, ok := human.Parts[motionlite.PartIndex(i)]

		if !ok {
			continue
		}

		out = append(out, FloatToBytes(part.X)...)
		out = append(out, FloatToBytes(part.Y)...)
		out = append(out, FloatToBytes(part.Score)...)
	}

	return out
}

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("%w: truncated action data at offset %d",
			motionlite.ErrInvalidArgument, r.pos)
	}

	b := r.data[r.pos : r.pos+n]
	r.pos += n

	return b, nil
}

func (r *byteReader) readUint32() (uint32, error) {
	b, err := r.take(4)

	if err != nil {
		return 0, err
	}

	return BytesToInt[uint32](b)
}

func (r *byteReader) readFloat() (float32, error) {
	b, err := r.take(4)

	if err != nil {
		return 0, err
	}

	return BytesToFloat(b)
}

// Deserialize decodes action data produced by Serialize.  When magic is true
// the leading 4 marker bytes are skipped without verification.  Body parts
// carrying NaN coordinates or scores are dropped.
func Deserialize(data []byte, magic bool) ([]map[int]*motionlite.Human, error) {
	r := &byteReader{data: data}

	if magic {
		if _, err := r.take(4); err != nil {
			return nil, err
		}
	}

	frames, err := r.readUint32()

	if err != nil {
		return nil, err
	}

	if frames >= maxCount {
		return nil, fmt.Errorf("%w: %d frames", motionlite.ErrOverflow, frames)
	}

	action := make([]map[int]*motionlite.Human, 0, frames)

	for i := uint32(0); i < frames; i++ {
		humans, err := readHumanMap(r)

		if err != nil {
			return nil, err
		}

		action = append(action, humans)
	}

	return action, nil
}

func readHumanMap(r *byteReader) (map[int]*motionlite.Human, error) {
	count, err := r.readUint32()

	if err != nil {
		return nil, err
	}

	if count >= maxCount {
		return nil, fmt.Errorf("%w: %d humans", motionlite.ErrOverflow, count)
	}

	humans := make(map[int]*motionlite.Human, count)

	for i := uint32(0); i < count; i++ {
		index, err := r.readUint32()

		if err != nil {
			return nil, err
		}

		if index > maxCount {
			index = maxCount
		}

		human, err := readHuman(r)

		if err != nil {
			return nil, err
		}

		// a duplicated index keeps the first human
		if _, found := humans[int(index)]; !found {
			humans[int(index)] = human
		}
	}

	return humans, nil
}

func readHuman(r *byteReader) (*motionlite.Human, error) {
	bitmap, err := r.readUint32()

	if err != nil {
		return nil, err
	}

	var parts []motionlite.BodyPart

	for i := 0; i < int(motionlite.PartIndexEnd); i++ {
		if bitmap&(1<<(31-i)) == 0 {
			continue
		}

		x, err := r.readFloat()

		if err != nil {
			return nil, err
		}

		y, err := r.readFloat()

		if err != nil {
			return nil, err
		}

		score, err := r.readFloat()

		if err != nil {
			return nil, err
		}

		if math.IsNaN(float64(x)) || math.IsNaN(float64(y)) ||
			math.IsNaN(float64(score)) {
			continue
		}

		parts = append(parts, motionlite.BodyPart{
			Part:  motionlite.PartIndex(i),
			X:     x,
			Y:     y,
			Score: score,
		})
	}

	return motionlite.NewHuman(parts), nil
}

// WriteAction serializes action data, with the magic marker, to w
func WriteAction(w io.Writer, action []map[int]*motionlite.Human) error {
	data, err := Serialize(action, true)

	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// ReadAction reads the whole of r and deserializes it as action data with
// the magic marker
func ReadAction(r io.Reader) ([]map[int]*motionlite.Human, error) {
	data, err := io.ReadAll(r)

	if err != nil {
		return nil, err
	}

	return Deserialize(data, true)
}
