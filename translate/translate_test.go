package translate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("line 4: bad", From("line %d: %v", 4, "bad"))
}

func TestFprintf(t *testing.T) {
	assert := assert.New(t)

	buff := &bytes.Buffer{}
	n, err := Fprintf(buff, "ram[%d] = %d\n", 64, 55)
	assert.NoError(err)
	assert.Equal("ram[64] = 55\n", buff.String())
	assert.Equal(buff.Len(), n)

	buff.Reset()
	_, err = Fprintf(buff, "%02x: %04x\n", 0x40, uint16(0x37))
	assert.NoError(err)
	assert.Equal("40: 0037\n", buff.String())
}
