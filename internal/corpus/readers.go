package corpus

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const (
	SentimentLabelsFile = "sentiment_labels.txt"
	DictionaryFile      = "dictionary.txt"
	SentencesFile       = "datasetSentences.txt"
	SplitFile           = "datasetSplit.txt"

	maxLineSize = 1024 * 1024
)

type headerMode int

const (
	headerSkip headerMode = iota
	// headerDetect skips the first line only when it does not parse.
	headerDetect
)

type rowParser func(line string) error

// scanRows feeds every non-empty, trimmed line of path to parse. Rows that
// fail to parse abort the scan unless skipMalformed is set, in which case they
// are logged and counted.
func scanRows(path string, header headerMode, skipMalformed bool, parse rowParser) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	skipped := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if lineNo == 1 {
			if header == headerSkip {
				continue
			}
			if err := parse(line); err != nil {
				slog.Debug("[CorpusLoader] Treating first line as header",
					slog.String("file", path))
			}
			continue
		}

		if line == "" {
			continue
		}

		if err := parse(line); err != nil {
			if !skipMalformed {
				return 0, fmt.Errorf("%s line %d: %w", path, lineNo, err)
			}
			skipped++
			slog.Warn("[CorpusLoader] Skipping malformed row",
				slog.String("file", path),
				slog.Int("line", lineNo),
				slog.String("error", err.Error()))
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if skipped > 0 {
		slog.Warn("[CorpusLoader] Malformed rows skipped",
			slog.String("file", path),
			slog.Int("count", skipped))
	}
	return skipped, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedRow, fmt.Sprintf(format, args...))
}

func cut(line, sep string, last bool) (string, string, error) {
	var i int
	if last {
		i = strings.LastIndex(line, sep)
	} else {
		i = strings.Index(line, sep)
	}
	if i < 0 {
		return "", "", malformed("missing %q separator", sep)
	}
	return line[:i], line[i+len(sep):], nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, malformed("invalid id %q", s)
	}
	return id, nil
}

// readSentimentLabels parses "phrase id|score".
func readSentimentLabels(path string, skipMalformed bool) (map[int]float64, error) {
	labels := make(map[int]float64)
	_, err := scanRows(path, headerSkip, skipMalformed, func(line string) error {
		rawID, rawScore, err := cut(line, "|", false)
		if err != nil {
			return err
		}
		id, err := parseID(rawID)
		if err != nil {
			return err
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(rawScore), 64)
		if err != nil {
			return malformed("invalid score %q", rawScore)
		}
		labels[id] = score
		return nil
	})
	return labels, err
}

// readPhraseDictionary parses "phrase|phrase id". Phrases may themselves
// contain '|', so the id is taken after the last separator.
func readPhraseDictionary(path string, skipMalformed bool) (map[string]int, error) {
	phrases := make(map[string]int)
	_, err := scanRows(path, headerDetect, skipMalformed, func(line string) error {
		phrase, rawID, err := cut(line, "|", true)
		if err != nil {
			return err
		}
		id, err := parseID(rawID)
		if err != nil {
			return err
		}
		phrases[phrase] = id
		return nil
	})
	return phrases, err
}

// readSentences parses "sentence id<TAB>sentence".
func readSentences(path string, skipMalformed bool) (map[int]string, error) {
	sentences := make(map[int]string)
	_, err := scanRows(path, headerSkip, skipMalformed, func(line string) error {
		rawID, sentence, err := cut(line, "\t", false)
		if err != nil {
			return err
		}
		id, err := parseID(rawID)
		if err != nil {
			return err
		}
		sentences[id] = sentence
		return nil
	})
	return sentences, err
}

// readSplits parses "sentence id,split code".
func readSplits(path string, skipMalformed bool) (map[int]int, error) {
	splits := make(map[int]int)
	_, err := scanRows(path, headerSkip, skipMalformed, func(line string) error {
		rawID, rawCode, err := cut(line, ",", false)
		if err != nil {
			return err
		}
		id, err := parseID(rawID)
		if err != nil {
			return err
		}
		code, err := strconv.Atoi(strings.TrimSpace(rawCode))
		if err != nil {
			return malformed("invalid split code %q", rawCode)
		}
		splits[id] = code
		return nil
	})
	return splits, err
}
