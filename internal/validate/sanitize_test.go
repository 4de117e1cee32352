package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeDogName(t *testing.T) {
	assert.Equal(t, "Biscuit", SanitizeDogName("  Biscuit  "))
	assert.Equal(t, "Señor Fluff", SanitizeDogName("Señor Fluff"))
	assert.Equal(t, "", SanitizeDogName("\t\n"))
}

func TestSanitizeDogNameStripsControlChars(t *testing.T) {
	assert.Equal(t, "Mochi", SanitizeDogName("Mo\x00chi\x07"))
	assert.Equal(t, "Rex", SanitizeDogName("Re\x1bx"))
}

func TestSanitizeActionName(t *testing.T) {
	assert.Equal(t, "vet visit", SanitizeActionName("  vet   visit "))
	assert.Equal(t, "brush teeth", SanitizeActionName("brush\tteeth"))
	assert.Equal(t, "walk", SanitizeActionName("wa\x00lk"))
	assert.Equal(t, "", SanitizeActionName("   "))
}

func TestSanitizeNote(t *testing.T) {
	assert.Equal(t, "heartworm pill", SanitizeNote("  heartworm pill  "))
	assert.Equal(t, "line one\nline two", SanitizeNote("line one\r\nline two"))
	assert.Equal(t, "line one\nline two", SanitizeNote("line one\rline two"))
	assert.Equal(t, "no nulls", SanitizeNote("no\x00 nulls"))
	assert.Equal(t, "", SanitizeNote(""))
}
