package history

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	. "github.com/warpfork/go-errcat"

	"go.polydawn.net/relgit"
)

/*
	Verify that every subject version's history reads the same no matter
	which release's document transcribed it.

	For each subject version, all recording releases' transcriptions are
	compared pairwise under token normalization: line breaks, spacing
	amount, and letter case are ignored, the word sequence is not.

	Any disagreement returns `relgit.ErrHistoryInconsistency`, carrying
	both transcriptions for diagnosis.
*/
func CheckConsistency(h Histories) (err error) {
	defer RequireErrorHasCategory(&err, relgit.ErrorCategory(""))

	// Deterministic iteration: subjects ascending, recordings ascending.
	transcriptions := map[string][]string{} // subject -> recording releases
	for recording, entries := range h {
		for subject := range entries {
			transcriptions[subject] = append(transcriptions[subject], recording)
		}
	}
	subjects := make([]string, 0, len(transcriptions))
	for subject := range transcriptions {
		subjects = append(subjects, subject)
	}
	sortVersions(subjects)

	for _, subject := range subjects {
		recordings := transcriptions[subject]
		sortVersions(recordings)
		first := recordings[0]
		firstTokens := normalizeTokens(h[first][subject].Lines)
		for _, other := range recordings[1:] {
			otherTokens := normalizeTokens(h[other][subject].Lines)
			if !tokensEqual(firstTokens, otherTokens) {
				return ErrorDetailed(relgit.ErrHistoryInconsistency,
					fmt.Sprintf("releases %s and %s disagree on the history of version %s", first, other, subject),
					map[string]string{
						"subject":        subject,
						"recording1":     first,
						"recording2":     other,
						"transcription1": strings.Join(h[first][subject].Lines, "\n"),
						"transcription2": strings.Join(h[other][subject].Lines, "\n"),
					})
			}
		}
	}
	return nil
}

// Token normalization: join all body lines with single spaces, lowercase,
// and re-split on whitespace.
func normalizeTokens(lines []string) []string {
	return strings.Fields(strings.ToLower(strings.Join(lines, " ")))
}

func tokensEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Sort version identifiers ascending by numeric value ("9.20" < "15.05").
func sortVersions(versions []string) {
	sort.Slice(versions, func(i, j int) bool {
		return versionValue(versions[i]) < versionValue(versions[j])
	})
}

func versionValue(version string) float64 {
	v, err := strconv.ParseFloat(version, 64)
	if err != nil {
		return 0
	}
	return v
}
