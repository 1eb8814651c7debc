package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cowin-slot-assistant/internal/common/errors"
)

func TestParseIndices(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{name: "single", input: "2", want: []int{2}},
		{name: "comma separated with spaces", input: " 1, 3 ,4", want: []int{1, 3, 4}},
		{name: "trailing comma", input: "1,3,", want: []int{1, 3}},
		{name: "keeps zero and negatives for range checks", input: "0,-1", want: []int{0, -1}},
		{name: "not a number", input: "1,two", wantErr: true},
		{name: "empty", input: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIndices(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConsole_Ask(t *testing.T) {
	var out bytes.Buffer
	console := NewConsole(strings.NewReader("  hello \n1,2\nlast"), &out)

	answer, err := console.Ask("Say something: ")
	require.NoError(t, err)
	assert.Equal(t, "hello", answer)
	assert.Equal(t, "Say something: ", out.String())

	indices, err := console.AskIndices("Pick: ")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, indices)

	answer, err = console.Ask("Last: ")
	require.NoError(t, err)
	assert.Equal(t, "last", answer)

	_, err = console.Ask("Nothing left: ")
	assert.Error(t, err)
}

func TestScripted(t *testing.T) {
	s := NewScripted("3", " 1,2 ")

	answer, err := s.Ask("state? ")
	require.NoError(t, err)
	assert.Equal(t, "3", answer)

	indices, err := s.AskIndices("districts? ")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, indices)
	assert.Equal(t, []string{"state? ", "districts? "}, s.Questions)

	_, err = s.Ask("more? ")
	assert.Error(t, err)
}
