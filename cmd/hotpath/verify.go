package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/discochess/hotpath/internal/config"
	"github.com/discochess/hotpath/internal/dataset"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the integrity of a word list",
	Long: `Verify that a word list is readable and well formed.

This command checks:
- The list can be opened and decompressed
- No line is blank or carries surrounding whitespace
- Word and byte counts match the manifest, for data directories`,
	RunE: runVerify,
}

func init() {
	config.RegisterFlags(verifyCmd.Flags())
	rootCmd.AddCommand(verifyCmd)
}

type listStats struct {
	Words  int64
	Unique int64
	Bytes  int64
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	var m *dataset.Manifest
	if info, err := os.Stat(cfg.Dataset); err == nil && info.IsDir() {
		if m, err = dataset.ReadManifest(cfg.Dataset); err != nil {
			return err
		}
	}

	src, err := cfg.OpenSource(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	fmt.Printf("Verifying %s...\n", src.Name())

	rc, err := src.Open(ctx)
	if err != nil {
		return fmt.Errorf("opening word list: %w", err)
	}
	defer rc.Close()

	st, problems, err := verifyWordList(rc, m, cfg.Verbose)
	if err != nil {
		return err
	}
	fmt.Printf("  Words:  %d (%d unique)\n", st.Words, st.Unique)
	fmt.Printf("  Size:   %s\n", dataset.FormatBytes(st.Bytes))

	for _, p := range problems {
		fmt.Printf("  ERROR: %s\n", p)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d problems found", len(problems))
	}

	fmt.Println("Word list verified successfully.")
	return nil
}

// maxReported caps per-line problems unless verbose.
const maxReported = 10

// verifyWordList reads r to the end and reports malformed lines and any
// disagreement with m. m may be nil.
func verifyWordList(r io.Reader, m *dataset.Manifest, verbose bool) (listStats, []string, error) {
	var (
		st       listStats
		problems []string
		skipped  int
	)
	seen := make(map[string]struct{})

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for line := 1; sc.Scan(); line++ {
		w := sc.Text()
		st.Words++
		st.Bytes += int64(len(w)) + 1
		if _, ok := seen[w]; !ok {
			seen[w] = struct{}{}
			st.Unique++
		}

		var problem string
		switch {
		case w == "":
			problem = fmt.Sprintf("line %d: blank", line)
		case strings.TrimSpace(w) != w:
			problem = fmt.Sprintf("line %d: surrounding whitespace in %q", line, w)
		}
		if problem == "" {
			continue
		}
		if verbose || len(problems) < maxReported {
			problems = append(problems, problem)
		} else {
			skipped++
		}
	}
	if err := sc.Err(); err != nil {
		return st, nil, fmt.Errorf("reading word list: %w", err)
	}
	if skipped > 0 {
		problems = append(problems, fmt.Sprintf("%d more malformed lines", skipped))
	}

	if m != nil {
		if m.WordCount != st.Words {
			problems = append(problems, fmt.Sprintf("manifest lists %d words, found %d", m.WordCount, st.Words))
		}
		if m.UniqueWords != 0 && m.UniqueWords != st.Unique {
			problems = append(problems, fmt.Sprintf("manifest lists %d unique words, found %d", m.UniqueWords, st.Unique))
		}
		if m.RawBytes != 0 && m.RawBytes != st.Bytes {
			problems = append(problems, fmt.Sprintf("manifest lists %d bytes, found %d", m.RawBytes, st.Bytes))
		}
	}
	return st, problems, nil
}
