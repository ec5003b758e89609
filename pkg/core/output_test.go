package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZeroOutputIsInvalid(t *testing.T) {
	var out Output
	assert.False(t, out.Valid())
	assert.Equal(t, OutputInvalid, out.Kind())
	assert.Nil(t, out.Slots())
	assert.Equal(t, "invalid", out.Kind().String())
}

func TestSingle(t *testing.T) {
	out := Single(text{Value: "a"})
	assert.True(t, out.Valid())
	assert.Equal(t, OutputSingle, out.Kind())
	assert.Equal(t, text{Value: "a"}, out.Component())
	assert.Equal(t, []Output{out}, out.Slots())
	assert.Nil(t, out.Items())
}

func TestMultiCopiesItems(t *testing.T) {
	items := []Output{Single(text{Value: "a"}), Single(text{Value: "b"})}
	out := Multi(items...)
	items[0] = Single(box{})

	assert.Equal(t, OutputMulti, out.Kind())
	assert.Len(t, out.Slots(), 2)
	assert.Equal(t, text{Value: "a"}, out.Items()[0].Component())
}

func TestEmpty(t *testing.T) {
	out := Empty()
	assert.True(t, out.Valid())
	assert.Equal(t, OutputMulti, out.Kind())
	assert.Empty(t, out.Slots())
	assert.Nil(t, out.Component())
}

func TestGroupAndList(t *testing.T) {
	g := Group(text{Value: "a"}, box{Value: "b"})
	l := List([]text{{Value: "a"}, {Value: "b"}})

	assert.Len(t, g.Items(), 2)
	assert.Equal(t, box{Value: "b"}, g.Items()[1].Component())
	assert.Len(t, l.Items(), 2)
	assert.Equal(t, OutputSingle, l.Items()[1].Kind())
	assert.True(t, List[text](nil).Valid())
}

func TestOutputEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Output
		want bool
	}{
		{"same single", Single(text{Value: "a"}), Single(text{Value: "a"}), true},
		{"different field", Single(text{Value: "a"}), Single(text{Value: "b"}), false},
		{"different variant", Single(text{Value: "a"}), Single(box{Value: "a"}), false},
		{"shape change", Single(text{Value: "a"}), Group(text{Value: "a"}), false},
		{"same multi", Group(text{Value: "a"}, box{}), Group(text{Value: "a"}, box{}), true},
		{"different length", Group(text{Value: "a"}), Group(text{Value: "a"}, box{}), false},
		{"nested", Multi(Empty()), Multi(Empty()), true},
		{"nested mismatch", Multi(Empty()), Multi(Group(box{})), false},
		{"both invalid", Output{}, Output{}, true},
		{"empty vs nil list", Empty(), List[text](nil), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputEqual(tt.a, tt.b))
		})
	}
}

func TestOutputKindString(t *testing.T) {
	assert.Equal(t, "single", OutputSingle.String())
	assert.Equal(t, "multi", OutputMulti.String())
}
