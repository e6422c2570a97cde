package utils

import "testing"

func TestHash(t *testing.T) {
	got := Hash("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://Example.COM/news/1", "https://example.com/news/1"},
		{"  https://example.com/news/1/  ", "https://example.com/news/1"},
		{"https://example.com/news/1#top", "https://example.com/news/1"},
		{"HTTPS://example.com/a?b=C", "https://example.com/a?b=C"},
		{"not a url", "not a url"},
		{"#", "#"},
	}

	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestURLKeyMatchesEquivalentLinks(t *testing.T) {
	if URLKey("https://example.com/a/") != URLKey("https://EXAMPLE.com/a#frag") {
		t.Error("Expected equivalent links to share a key")
	}
	if URLKey("https://example.com/a") == URLKey("https://example.com/b") {
		t.Error("Expected different links to have different keys")
	}
}
