package load

import (
	"context"
	"fmt"
)

// Mismatch is a probe on which two targets disagree.
type Mismatch struct {
	Probe string
	Want  string
	Got   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: baseline %s, candidate %s", m.Probe, m.Want, m.Got)
}

// CheckEquivalence asks baseline and candidate the same questions and
// returns every disagreement: word-of-the-day first, then Exists for
// each probe word. An error from either target aborts the check.
func CheckEquivalence(ctx context.Context, baseline, candidate Target, probes []string) ([]Mismatch, error) {
	var out []Mismatch

	want, err := baseline.WordOfTheDay(ctx)
	if err != nil {
		return nil, fmt.Errorf("baseline word of the day: %w", err)
	}
	got, err := candidate.WordOfTheDay(ctx)
	if err != nil {
		return nil, fmt.Errorf("candidate word of the day: %w", err)
	}
	if want != got {
		out = append(out, Mismatch{Probe: "word-of-the-day", Want: want, Got: got})
	}

	for _, w := range probes {
		a, err := baseline.Exists(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("baseline exists %q: %w", w, err)
		}
		b, err := candidate.Exists(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("candidate exists %q: %w", w, err)
		}
		if a != b {
			out = append(out, Mismatch{
				Probe: "exists(" + w + ")",
				Want:  fmt.Sprint(a),
				Got:   fmt.Sprint(b),
			})
		}
	}
	return out, nil
}
