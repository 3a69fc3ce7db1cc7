package newsbert

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeVocab(t *testing.T, tokens []string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.txt")
	content := ""
	for _, tok := range tokens {
		content += tok + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write vocab: %v", err)
	}
	return path
}

func testTokenizer(t *testing.T) *WordPieceTokenizer {
	t.Helper()
	path := writeVocab(t, []string{
		"[PAD]", "[UNK]", "[CLS]", "[SEP]",
		"the", "news", "is", "break", "##ing", "!", ".",
	})
	tok, err := LoadWordPieceTokenizer(path)
	if err != nil {
		t.Fatalf("load tokenizer: %v", err)
	}
	return tok
}

func TestEncodeKnownWords(t *testing.T) {
	tok := testTokenizer(t)

	ids, attn := tok.Encode("The news is breaking!", 10)
	// [CLS] the news is break ##ing ! [SEP] [PAD] [PAD]
	want := []int64{2, 4, 5, 6, 7, 8, 9, 3, 0, 0}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected ids %v, got %v", want, ids)
	}
	wantAttn := []int64{1, 1, 1, 1, 1, 1, 1, 1, 0, 0}
	if !reflect.DeepEqual(attn, wantAttn) {
		t.Fatalf("expected attention %v, got %v", wantAttn, attn)
	}
}

func TestEncodeUnknownWord(t *testing.T) {
	tok := testTokenizer(t)

	ids, _ := tok.Encode("zzzqqq", 6)
	// [CLS] [UNK] [SEP] [PAD] [PAD] [PAD]
	want := []int64{2, 1, 3, 0, 0, 0}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected ids %v, got %v", want, ids)
	}
}

func TestEncodeTruncates(t *testing.T) {
	tok := testTokenizer(t)

	ids, attn := tok.Encode("the news the news the news the news", 6)
	if len(ids) != 6 || len(attn) != 6 {
		t.Fatalf("expected length 6, got %d/%d", len(ids), len(attn))
	}
	if ids[0] != 2 {
		t.Fatalf("expected leading [CLS], got %d", ids[0])
	}
	if ids[5] != 3 {
		t.Fatalf("expected trailing [SEP], got %d", ids[5])
	}
	for _, a := range attn {
		if a != 1 {
			t.Fatal("full sequence must be fully attended")
		}
	}
}

func TestBasicTokenizeSplitsPunctuation(t *testing.T) {
	tok := testTokenizer(t)

	got := tok.basicTokenize("Breaking: the news!")
	want := []string{"breaking", ":", "the", "news", "!"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
