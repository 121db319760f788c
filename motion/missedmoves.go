package motion

import (
	"fmt"
	"math"
	"sort"

	motionlite "github.com/dtrn/go-motionlite"
)

// MissedMove describes a span of frames where a connection consistently
// scored below the threshold.
type MissedMove struct {
	// Length is the number of frames the miss lasted
	Length uint32
	// MeanScore is the average score over the span, at most 128
	MeanScore uint8
}

// missTrack follows a connection currently scoring below the threshold.
type missTrack struct {
	start  uint32
	end    uint32
	frozen uint64
	run    uint64
}

type missCommit struct {
	conn   Connection
	start  uint32
	end    uint32
	frozen uint64
}

// MissedMoves scans per-frame connection scores for spans of sustained low
// scores.  Each returned frame maps the connections whose miss span ended at
// that frame to the span's length and mean score.
func MissedMoves(
	scoreList []map[Connection]uint8, threshold uint8,
) ([]map[Connection]MissedMove, error) {
	if len(scoreList) > math.MaxUint32-4 {
		return nil, fmt.Errorf("%w: %d frames",
			motionlite.ErrOverflow, len(scoreList))
	}

	tracks := make(map[Connection]*missTrack)

	var commits []missCommit

	commit := func(conn Connection, track *missTrack) {
		commits = append(commits, missCommit{
			conn:   conn,
			start:  track.start,
			end:    track.end,
			frozen: track.frozen,
		})
	}

	for i, scores := range scoreList {
		frame := uint32(i)

		for conn, track := range tracks {
			if _, present := scores[conn]; present {
				continue
			}

			// an absent connection counts as a full score against the
			// running mean
			if track.run+128 < uint64(threshold)*uint64(frame-track.start+1) {
				track.run += 128
			} else {
				commit(conn, track)
				delete(tracks, conn)
			}
		}

		for conn, score := range scores {
			if score > 128 {
				score = 128
			}

			track, tracked := tracks[conn]

			switch {
			case tracked && score < threshold:
				track.end = frame
				track.run += uint64(score)
				track.frozen = track.run
			case tracked:
				if track.run+uint64(score) <
					uint64(threshold)*uint64(frame-track.start+1) {
					track.run += uint64(score)
				} else {
					commit(conn, track)
					delete(tracks, conn)
				}
			case score < threshold:
				tracks[conn] = &missTrack{
					start:  frame,
					end:    frame,
					frozen: uint64(score),
					run:    uint64(score),
				}
			}
		}
	}

	for conn, track := range tracks {
		commit(conn, track)
	}

	sort.Slice(commits, func(a, b int) bool {
		if commits[a].end != commits[b].end {
			return commits[a].end < commits[b].end
		}

		if commits[a].start != commits[b].start {
			return commits[a].start < commits[b].start
		}

		return commits[a].frozen < commits[b].frozen
	})

	result := make([]map[Connection]MissedMove, len(scoreList))

	for i := range result {
		result[i] = make(map[Connection]MissedMove)
	}

	for _, c := range commits {
		frame := result[c.end]

		if _, exists := frame[c.conn]; exists {
			continue
		}

		length := c.end - c.start + 1
		mean := c.frozen / uint64(length)

		if mean > 128 {
			mean = 128
		}

		frame[c.conn] = MissedMove{
			Length:    length,
			MeanScore: uint8(mean),
		}
	}

	return result, nil
}
