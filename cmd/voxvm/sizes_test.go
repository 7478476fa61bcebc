package main

import "testing"

func TestParseSizeSuffixes(t *testing.T) {
	cases := map[string]uint64{
		"0":     0,
		"512":   512,
		"4KB":   4 * 1024,
		"1MB":   1 << 20,
		"2GB":   2 << 30,
		"10B":   10,
		"64kb":  64 * 1024,
	}
	for in, want := range cases {
		got, err := parseSize(in)
		if err != nil {
			t.Fatalf("parseSize(%q): unexpected error: %v", in, err)
		}
		if got != want {
			t.Errorf("parseSize(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseSizeRejectsGarbage(t *testing.T) {
	if _, err := parseSize("not-a-size"); err == nil {
		t.Fatalf("expected error for garbage input")
	}
	if _, err := parseSize(""); err == nil {
		t.Fatalf("expected error for empty input")
	}
}
