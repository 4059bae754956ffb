// Package corpustest writes small treebank fixtures for tests.
package corpustest

import (
	"os"
	"path/filepath"
	"testing"
)

// Files maps a corpus file name to its contents.
type Files map[string]string

// Fragment is a four-sentence corpus: one very negative training sentence,
// one neutral test sentence, one very positive validation sentence and one
// mildly negative training sentence with a mis-decoded accent.
func Fragment() Files {
	return Files{
		"sentiment_labels.txt": "phrase ids|sentiment values\n" +
			"0|0.05\n" +
			"1|0.5\n" +
			"2|0.95\n" +
			"3|0.3\n" +
			"4|0.7\n",
		"dictionary.txt": "a dreadful mess|0\n" +
			"an ordinary film|1\n" +
			"a triumph ( truly )|2\n" +
			"the café scene drags|3\n" +
			"triumph|4\n",
		"datasetSentences.txt": "sentence_index\tsentence\n" +
			"1\ta dreadful   mess\n" +
			"2\tan ordinary film\n" +
			"3\ta triumph -LRB- truly -RRB-\n" +
			"4\tthe cafÃ© scene drags\n",
		"datasetSplit.txt": "sentence_index,splitset_label\n" +
			"1,1\n" +
			"2,2\n" +
			"3,3\n" +
			"4,1\n",
	}
}

// Write materialises files in a fresh temp dir and returns its path.
func Write(t *testing.T, files Files) string {
	t.Helper()
	dir := t.TempDir()
	for name, contents := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}
