package svb

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ExampleCString() {
	var field [32]byte
	copy(field[:], "SVBONY SV305\x00garbage")
	fmt.Println(CString(field[:]))
	// Output: SVBONY SV305
}

func TestCString(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want string
	}{
		{"empty", nil, ""},
		{"all nul", make([]byte, 8), ""},
		{"no terminator", []byte("abc"), "abc"},
		{"stops at first nul", []byte("ab\x00cd\x00"), "ab"},
		{"utf8", []byte("カメラ\x00"), "カメラ"},
		{"invalid byte", []byte{'a', 0xff, 'b', 0}, "a�b"},
		{"bad continuation", []byte{0xc3, 0x28}, "�("},
		{"truncated rune", []byte{'x', 0xe3, 0x82}, "x��"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, CString(c.in))
		})
	}
}

func TestPutCString(t *testing.T) {
	var field [4]byte
	putCString(field[:], "toolong")
	assert.Equal(t, [4]byte{'t', 'o', 'o', 0}, field)
	assert.Equal(t, "too", CString(field[:]))

	putCString(field[:], "a")
	assert.Equal(t, [4]byte{'a', 0, 0, 0}, field)
}
