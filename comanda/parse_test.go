package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taldoflemis/trattoria/cameriere"
)

func TestParseItems(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []itemQuantity
		wantErr bool
	}{
		{
			name: "pairs",
			args: []string{"2=1", "1=2"},
			want: []itemQuantity{{ItemID: 1, Quantity: 2}, {ItemID: 2, Quantity: 1}},
		},
		{
			name: "bare id is one unit",
			args: []string{"3"},
			want: []itemQuantity{{ItemID: 3, Quantity: 1}},
		},
		{
			name: "repeated ids are summed",
			args: []string{"1=2", " 1=3 "},
			want: []itemQuantity{{ItemID: 1, Quantity: 5}},
		},
		{
			name: "summed up to the cap",
			args: []string{"1=90", "1=9"},
			want: []itemQuantity{{ItemID: 1, Quantity: 99}},
		},
		{name: "zero quantity", args: []string{"1=0"}, wantErr: true},
		{name: "huge quantity", args: []string{"1=2000000000"}, wantErr: true},
		{name: "summed overflow", args: []string{"1=9223372036854775807", "1=1"}, wantErr: true},
		{name: "summed past the cap", args: []string{"1=60", "2=1", "1=40"}, wantErr: true},
		{name: "negative id", args: []string{"-1=2"}, wantErr: true},
		{name: "not a number", args: []string{"espresso=2"}, wantErr: true},
		{name: "empty", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got, err := parseItems(tt.args)

			// Assert
			if tt.wantErr {
				assert.ErrorIs(t, err, cameriere.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStatus(t *testing.T) {
	status, err := parseStatus("Preparing")
	require.NoError(t, err)
	assert.Equal(t, cameriere.StatusPreparing, status)

	_, err = parseStatus("served")
	assert.ErrorIs(t, err, cameriere.ErrValidation)

	all, err := parseStatusFilter("ALL")
	require.NoError(t, err)
	assert.Equal(t, cameriere.OrderStatus("all"), all)
}
