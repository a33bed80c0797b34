package evallog

import (
	"fmt"
	"strings"
)

// Well-known archive members of an eval log
const (
	HeaderEntry         = "header.json"
	SummariesEntry      = "summaries.json"
	JournalStartEntry   = "_journal/start.json"
	JournalSummariesDir = "_journal/summaries/"
	SamplesDir          = "samples/"
)

// SampleEntryName returns the archive member holding one sample run
func SampleEntryName(id string, epoch int) string {
	return fmt.Sprintf("%s%s_epoch_%d.json", SamplesDir, id, epoch)
}

// ParseSampleEntryName extracts (id, epoch) from samples/<id>_epoch_<n>.json.
// Ids may themselves contain "_epoch_", so the rightmost marker wins
func ParseSampleEntryName(name string) (SampleKey, bool) {
	base, ok := strings.CutPrefix(name, SamplesDir)
	if !ok || strings.Contains(base, "/") {
		return SampleKey{}, false
	}
	base, ok = strings.CutSuffix(base, ".json")
	if !ok {
		return SampleKey{}, false
	}
	i := strings.LastIndex(base, "_epoch_")
	if i < 1 {
		return SampleKey{}, false
	}
	epoch, err := parseEpoch(base[i+len("_epoch_"):])
	if err != nil {
		return SampleKey{}, false
	}
	return SampleKey{ID: base[:i], Epoch: epoch}, true
}

func parseEpoch(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty epoch")
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("bad epoch %q", s)
		}
		n = n*10 + int(c-'0')
		if n > 1<<30 {
			return 0, fmt.Errorf("epoch %q out of range", s)
		}
	}
	return n, nil
}

// IsJournalSummary reports whether name is a summary fragment written while
// the run was still going
func IsJournalSummary(name string) bool {
	return strings.HasPrefix(name, JournalSummariesDir) &&
		strings.HasSuffix(name, ".json") &&
		len(name) > len(JournalSummariesDir)+len(".json")
}

// IsSampleEntry reports whether name addresses a sample body
func IsSampleEntry(name string) bool {
	_, ok := ParseSampleEntryName(name)
	return ok
}
