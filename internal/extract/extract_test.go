package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "marker and bare code",
			text: "BDNS: 123456 and also 98765",
			want: []string{"123456", "98765"},
		},
		{
			name: "no codes",
			text: "no codes here",
			want: []string{},
		},
		{
			name: "lowercase marker",
			text: "bdns 555123 disponible",
			want: []string{"555123"},
		},
		{
			name: "duplicates collapse keeping first occurrence order",
			text: "códigos 111222, 333444 y otra vez 111222",
			want: []string{"111222", "333444"},
		},
		{
			name: "short digit runs ignored",
			text: "solo 1234 dígitos",
			want: []string{},
		},
		{
			name: "empty input",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Codes(tt.text))
		})
	}
}
