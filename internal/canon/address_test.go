package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddress_VariantsShareKey(t *testing.T) {
	want := "100 n 5th st springfield il 62701"
	for _, in := range []string{
		"100 N 5th St, Springfield, IL 62701",
		"100 N 5th Street, Springfield, Illinois 62701",
		"  100 n. 5th st springfield il 62701 ",
		"100 N 5th St Apt 4B, Springfield, IL 62701",
		"100 N 5TH ST., SPRINGFIELD, IL 62701",
	} {
		assert.Equal(t, want, Address(in), in)
	}
}

func TestAddress_StateNames(t *testing.T) {
	assert.Equal(t, "1 washington st seattle wa", Address("1 Washington Street, Seattle, Washington"))
	assert.Equal(t, "350 fifth ave new york ny usa", Address("350 Fifth Avenue, New York, New York, USA"))
}

func TestAddress_Empty(t *testing.T) {
	assert.Equal(t, "", Address("   "))
}

func TestZip(t *testing.T) {
	assert.Equal(t, "62701", Zip("62701-1234"))
	assert.Equal(t, "62701", Zip(" 62701 "))
	assert.Equal(t, "M5H 2N2", Zip("M5H 2N2"))
	assert.Equal(t, "", Zip(""))
}
