package tune

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// LengthDB is a thin optional collaborator matching spec.md's "song
// length database lookup" external system: a checksum-keyed map of
// per-subtune durations, loaded from a YAML document shaped like the
// community HVSC sidlengths.md database (one MD5-ish key per tune,
// one duration string per subtune).
type LengthDB struct {
	entries map[string][]time.Duration
}

// rawLengthDB mirrors the on-disk YAML shape:
//
//	checksum-key:
//	  - "3:12"
//	  - "1:45"
type rawLengthDB map[string][]string

// LoadLengthDB parses a YAML song-length database from raw bytes.
func LoadLengthDB(data []byte) (*LengthDB, error) {
	var raw rawLengthDB
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("tune: decoding length database: %w", err)
	}

	db := &LengthDB{entries: make(map[string][]time.Duration, len(raw))}
	for key, durs := range raw {
		parsed := make([]time.Duration, len(durs))
		for i, d := range durs {
			v, err := parseMinutesSeconds(d)
			if err != nil {
				return nil, fmt.Errorf("tune: length database entry %q song %d: %w", key, i+1, err)
			}
			parsed[i] = v
		}
		db.entries[key] = parsed
	}
	return db, nil
}

// parseMinutesSeconds reads the HVSC-style "m:ss[.mmm]" duration format.
func parseMinutesSeconds(s string) (time.Duration, error) {
	var minutes, seconds int
	var millis int
	switch n, err := fmt.Sscanf(s, "%d:%d.%d", &minutes, &seconds, &millis); {
	case n == 3 && err == nil:
	default:
		if _, err := fmt.Sscanf(s, "%d:%d", &minutes, &seconds); err != nil {
			return 0, fmt.Errorf("malformed duration %q", s)
		}
	}
	return time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second + time.Duration(millis)*time.Millisecond, nil
}

// Lookup returns the recorded duration for one subtune (1-based), if
// the checksum key and song index are both present.
func (db *LengthDB) Lookup(checksum string, song int) (time.Duration, bool) {
	durs, ok := db.entries[checksum]
	if !ok || song < 1 || song > len(durs) {
		return 0, false
	}
	return durs[song-1], true
}
