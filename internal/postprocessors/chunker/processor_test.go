package chunker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/custodia-labs/papermentor/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ChunkSize() != 1200 {
			t.Errorf("expected chunkSize 1200, got %d", p.ChunkSize())
		}
		if p.Overlap() != 200 {
			t.Errorf("expected overlap 200, got %d", p.Overlap())
		}
	})

	t.Run("custom values", func(t *testing.T) {
		p, err := New(WithChunkSize(500), WithOverlap(0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ChunkSize() != 500 || p.Overlap() != 0 {
			t.Errorf("expected 500/0, got %d/%d", p.ChunkSize(), p.Overlap())
		}
	})

	t.Run("overlap equal to chunk size is rejected", func(t *testing.T) {
		_, err := New(WithChunkSize(100), WithOverlap(100))
		if !errors.Is(err, domain.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("negative overlap is rejected", func(t *testing.T) {
		_, err := New(WithOverlap(-1))
		if !errors.Is(err, domain.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("zero chunk size is rejected", func(t *testing.T) {
		_, err := New(WithChunkSize(0))
		if !errors.Is(err, domain.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestSplit_Empty(t *testing.T) {
	if got := Split("", 1200, 200); len(got) != 0 {
		t.Errorf("expected no chunks, got %d", len(got))
	}
}

func TestSplit_ShortText(t *testing.T) {
	got := Split("hello", 1200, 200)
	if len(got) != 1 || got[0] != "hello" {
		t.Errorf("expected single chunk 'hello', got %q", got)
	}
}

func TestSplit_ExactLength(t *testing.T) {
	text := strings.Repeat("a", 1200)
	got := Split(text, 1200, 200)
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
}

func TestSplit_FifteenHundredChars(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 1500; i++ {
		b.WriteByte(byte('a' + i%26))
	}
	text := b.String()

	got := Split(text, 1200, 200)
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}
	if got[0] != text[0:1200] {
		t.Error("first chunk should be [0:1200)")
	}
	if got[1] != text[1000:1500] {
		t.Error("second chunk should be [1000:1500)")
	}
}

func TestSplit_Properties(t *testing.T) {
	cases := []struct {
		length, maxLen, overlap int
	}{
		{1, 10, 0},
		{10, 10, 3},
		{11, 10, 3},
		{97, 10, 3},
		{500, 64, 63},
		{1000, 7, 0},
		{3333, 1200, 200},
	}

	for _, c := range cases {
		var b strings.Builder
		for i := 0; i < c.length; i++ {
			b.WriteRune(rune('A' + i%50))
		}
		text := b.String()
		chunks := Split(text, c.maxLen, c.overlap)

		// Every chunk but the last is exactly maxLen; the last is at most maxLen.
		for i, ch := range chunks {
			n := len([]rune(ch))
			if i < len(chunks)-1 && n != c.maxLen {
				t.Errorf("len=%d max=%d ov=%d: chunk %d has %d runes", c.length, c.maxLen, c.overlap, i, n)
			}
			if n > c.maxLen || n == 0 {
				t.Errorf("len=%d max=%d ov=%d: chunk %d has invalid length %d", c.length, c.maxLen, c.overlap, i, n)
			}
		}

		// Consecutive chunks share exactly overlap characters.
		for i := 1; i < len(chunks); i++ {
			prev := []rune(chunks[i-1])
			cur := []rune(chunks[i])
			if string(prev[len(prev)-c.overlap:]) != string(cur[:c.overlap]) {
				t.Errorf("len=%d max=%d ov=%d: chunks %d and %d do not share overlap", c.length, c.maxLen, c.overlap, i-1, i)
			}
		}

		// Dropping the overlap prefix from every chunk after the first reconstructs the text.
		var rebuilt strings.Builder
		for i, ch := range chunks {
			r := []rune(ch)
			if i > 0 {
				r = r[c.overlap:]
			}
			rebuilt.WriteString(string(r))
		}
		if rebuilt.String() != text {
			t.Errorf("len=%d max=%d ov=%d: reconstruction mismatch", c.length, c.maxLen, c.overlap)
		}
	}
}

func TestSplit_CountsRunes(t *testing.T) {
	text := strings.Repeat("é", 15)
	got := Split(text, 10, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}
	if len([]rune(got[0])) != 10 {
		t.Errorf("expected 10 runes, got %d", len([]rune(got[0])))
	}
	if got[1] != strings.Repeat("é", 7) {
		t.Errorf("unexpected second chunk %q", got[1])
	}
}

func TestSplit_InvalidOverlapStillTerminates(t *testing.T) {
	got := Split(strings.Repeat("x", 100), 10, 10)
	if len(got) == 0 || len(got) > 100 {
		t.Errorf("unexpected chunk count %d", len(got))
	}
}

func TestChunkPages(t *testing.T) {
	pages := []string{"", strings.Repeat("b", 25), "", "short"}

	chunks := ChunkPages("sess", pages, 10, 2)

	// Page 2: 25 chars with step 8 -> [0:10) [8:18) [16:25)
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}

	for i, want := range []struct {
		page, idx int
	}{{2, 0}, {2, 1}, {2, 2}, {4, 0}} {
		md := chunks[i].Metadata
		if md.Page != want.page || md.ChunkIndex != want.idx {
			t.Errorf("chunk %d: expected p%d c%d, got p%d c%d", i, want.page, want.idx, md.Page, md.ChunkIndex)
		}
		if md.SessionID != "sess" {
			t.Errorf("chunk %d: expected session 'sess', got %q", i, md.SessionID)
		}
		if chunks[i].ID != domain.ChunkID("sess", want.page, want.idx) {
			t.Errorf("chunk %d: unexpected id %q", i, chunks[i].ID)
		}
	}
}

func TestChunkPages_AllEmpty(t *testing.T) {
	if got := ChunkPages("s", []string{"", "", ""}, 1200, 200); len(got) != 0 {
		t.Errorf("expected no chunks, got %d", len(got))
	}
}

func TestProcessor_Process(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	paper := &domain.Paper{
		SessionID: "abc",
		Pages:     []string{strings.Repeat("z", 1500), ""},
	}

	chunks, err := p.Process(context.Background(), paper, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if len(chunks[0].Text) != 1200 || len(chunks[1].Text) != 500 {
		t.Errorf("unexpected chunk lengths %d and %d", len(chunks[0].Text), len(chunks[1].Text))
	}
	for _, c := range chunks {
		if c.Metadata.Page != 1 {
			t.Errorf("expected all chunks on page 1, got page %d", c.Metadata.Page)
		}
	}
}

func TestProcessor_Name(t *testing.T) {
	p, _ := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}
