package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPick(t *testing.T) {
	tests := []struct {
		name   string
		doc    Document
		fields []string
		want   Document
	}{
		{
			name:   "partial body",
			doc:    Document{"name": "Rice"},
			fields: FoodUpdateFields,
			want: Document{
				"name":     "Rice",
				"image":    nil,
				"location": nil,
				"time":     nil,
				"notes":    nil,
			},
		},
		{
			name:   "fields outside the allow-list are dropped",
			doc:    Document{"status": "accepted", "userEmail": "x@y.z", "_id": "abc"},
			fields: FoodRequestUpdateFields,
			want:   Document{"status": "accepted"},
		},
		{
			name:   "nil body",
			doc:    nil,
			fields: FoodRequestUpdateFields,
			want:   Document{"status": nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Pick(tt.doc, tt.fields))
		})
	}
}
