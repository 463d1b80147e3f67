package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanMutate(t *testing.T) {
	tests := []struct {
		name        string
		principalID int
		ownerID     int
		want        bool
	}{
		{"owner may mutate", 7, 7, true},
		{"other user may not", 7, 9, false},
		{"anonymous may not", AnonymousID, 7, false},
		{"anonymous owner never matches", AnonymousID, AnonymousID, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanMutate(tt.principalID, tt.ownerID))
		})
	}
}
