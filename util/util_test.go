package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_MakeTextList(t *testing.T) {
	testCases := []struct {
		name  string
		items []string
		conj  string
		want  string
	}{
		{"empty", nil, "and", ""},
		{"single", []string{"a"}, "and", "a"},
		{"pair", []string{"a", "b"}, "and", "a and b"},
		{"three", []string{"a", "b", "c"}, "or", "a, b, or c"},
		{"four", []string{"a", "b", "c", "d"}, "and", "a, b, c, and d"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(tc.want, MakeTextList(tc.items, tc.conj))
		})
	}
}

func Test_OrderedKeys(t *testing.T) {
	assert := assert.New(t)

	m := map[string]int{"c": 3, "a": 1, "b": 2}
	assert.Equal([]string{"a", "b", "c"}, OrderedKeys(m))
}

func Test_ArticleFor(t *testing.T) {
	testCases := []struct {
		name     string
		noun     string
		capital  bool
		expected string
	}{
		{"consonant", "token", false, "a"},
		{"vowel", "identifier", false, "an"},
		{"capital vowel", "expression", true, "An"},
		{"user exception", "user", false, "a"},
		{"one exception", "one", false, "a"},
		{"empty", "", false, "a"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(tc.expected, ArticleFor(tc.noun, tc.capital))
		})
	}
}
