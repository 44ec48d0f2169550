package timeslot

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsConflictError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"exclusion violation", &pq.Error{Code: "23P01"}, true},
		{"unique violation", &pq.Error{Code: "23505"}, true},
		{"serialization failure", &pq.Error{Code: "40001"}, true},
		{"foreign key violation", &pq.Error{Code: "23503"}, false},
		{"plain error", errors.New("connection reset"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isConflictError(tt.err))
		})
	}
}
