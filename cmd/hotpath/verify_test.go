package main

import (
	"strings"
	"testing"

	"github.com/discochess/hotpath/internal/dataset"
)

func TestVerifyWordList(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		manifest     *dataset.Manifest
		wantWords    int64
		wantUnique   int64
		wantProblems int
	}{
		{
			name:       "clean",
			input:      "apple\nbanana\napple\n",
			wantWords:  3,
			wantUnique: 2,
		},
		{
			name:         "blank and padded lines",
			input:        "apple\n\n banana\n",
			wantWords:    3,
			wantUnique:   3,
			wantProblems: 2,
		},
		{
			name:       "matches manifest",
			input:      "apple\nbanana\n",
			manifest:   &dataset.Manifest{File: "words.txt", WordCount: 2, UniqueWords: 2, RawBytes: 13},
			wantWords:  2,
			wantUnique: 2,
		},
		{
			name:         "disagrees with manifest",
			input:        "apple\n",
			manifest:     &dataset.Manifest{File: "words.txt", WordCount: 2, UniqueWords: 2, RawBytes: 13},
			wantWords:    1,
			wantUnique:   1,
			wantProblems: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, problems, err := verifyWordList(strings.NewReader(tt.input), tt.manifest, false)
			if err != nil {
				t.Fatalf("verifyWordList() error = %v", err)
			}
			if st.Words != tt.wantWords || st.Unique != tt.wantUnique {
				t.Errorf("stats = %+v, want %d words, %d unique", st, tt.wantWords, tt.wantUnique)
			}
			if len(problems) != tt.wantProblems {
				t.Errorf("problems = %v, want %d", problems, tt.wantProblems)
			}
		})
	}
}

func TestVerifyWordList_CapsProblems(t *testing.T) {
	input := strings.Repeat("\n", maxReported+5)

	_, problems, err := verifyWordList(strings.NewReader(input), nil, false)
	if err != nil {
		t.Fatalf("verifyWordList() error = %v", err)
	}
	if len(problems) != maxReported+1 {
		t.Fatalf("len(problems) = %d, want %d", len(problems), maxReported+1)
	}
	if problems[maxReported] != "5 more malformed lines" {
		t.Errorf("last problem = %q", problems[maxReported])
	}
}
