package split

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readPart(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestSplitBody(t *testing.T) {
	content := `# A Synthetic Study of Nothing

Jane Doe, John Roe

## Abstract

We did nothing, carefully.

## Results

The yield doubled.

## References

1. Doe, J. Nothing at scale. J. Null 12, 34 (2020).

## Acknowledgements

We thank the void.
`
	dir := t.TempDir()
	parts, err := SplitBody(content, "sample", dir)
	if err != nil {
		t.Fatalf("SplitBody: %v", err)
	}

	if filepath.Base(parts.Header) != "sample-header.md" {
		t.Errorf("header path = %s", parts.Header)
	}
	header := readPart(t, parts.Header)
	if !strings.Contains(header, "Jane Doe") {
		t.Error("header lost the author line")
	}
	if strings.Contains(header, "Abstract") {
		t.Error("header contains the abstract")
	}

	main := readPart(t, parts.Main)
	if !strings.HasPrefix(main, "## Abstract") {
		t.Errorf("main starts with %q, want the Abstract heading", firstLine(main))
	}
	if !strings.Contains(main, "The yield doubled.") {
		t.Error("main lost the results")
	}
	if strings.Contains(main, "References") {
		t.Error("main contains the references")
	}

	ref := readPart(t, parts.Reference)
	if !strings.Contains(ref, "J. Null 12") {
		t.Error("reference part lost the citation")
	}
	if strings.Contains(ref, "Acknowledgements") {
		t.Error("reference part contains backmatter")
	}

	if parts.Backmatter == "" {
		t.Fatal("backmatter path empty")
	}
	back := readPart(t, parts.Backmatter)
	if !strings.Contains(back, "We thank the void.") {
		t.Error("backmatter lost its text")
	}
}

func TestSplitBodyNoAbstract(t *testing.T) {
	content := `# Title Only

Authors here

Affiliations here

## Introduction

Opening text.
`
	dir := t.TempDir()
	parts, err := SplitBody(content, "sample", dir)
	if err != nil {
		t.Fatalf("SplitBody: %v", err)
	}

	main := readPart(t, parts.Main)
	if !strings.HasPrefix(main, "## Introduction") {
		t.Errorf("main starts with %q, want the first post-title heading", firstLine(main))
	}
	header := readPart(t, parts.Header)
	if !strings.Contains(header, "Title Only") {
		t.Error("header lost the title")
	}
	if parts.Backmatter != "" {
		t.Errorf("backmatter = %q, want empty", parts.Backmatter)
	}
}

func TestSplitBodyNoReferences(t *testing.T) {
	content := `# Title

## Abstract

Text.

## Results

More text.
`
	dir := t.TempDir()
	parts, err := SplitBody(content, "sample", dir)
	if err != nil {
		t.Fatalf("SplitBody: %v", err)
	}

	main := readPart(t, parts.Main)
	if !strings.Contains(main, "More text.") {
		t.Error("main truncated without a References heading")
	}
	ref := readPart(t, parts.Reference)
	if strings.TrimSpace(ref) != "" {
		t.Errorf("reference part = %q, want empty", ref)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
