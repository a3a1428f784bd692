package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUserID(t *testing.T) {
	tests := []struct {
		name     string
		a        [3]string
		b        [3]string
		wantSame bool
	}{
		{
			name:     "identical inputs",
			a:        [3]string{"Ana", "ana@example.com", "secretpass"},
			b:        [3]string{"Ana", "ana@example.com", "secretpass"},
			wantSame: true,
		},
		{
			name:     "different name",
			a:        [3]string{"Ana", "ana@example.com", "secretpass"},
			b:        [3]string{"Anna", "ana@example.com", "secretpass"},
			wantSame: false,
		},
		{
			name:     "different email",
			a:        [3]string{"Ana", "ana@example.com", "secretpass"},
			b:        [3]string{"Ana", "ana2@example.com", "secretpass"},
			wantSame: false,
		},
		{
			name:     "different password",
			a:        [3]string{"Ana", "ana@example.com", "secretpass"},
			b:        [3]string{"Ana", "ana@example.com", "secretpass2"},
			wantSame: false,
		},
		{
			name:     "boundary shift between fields",
			a:        [3]string{"ab", "c@example.com", "passwordpass"},
			b:        [3]string{"a", "bc@example.com", "passwordpass"},
			wantSame: true, // concatenation is deliberately boundary-free
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idA := GenerateUserID(tt.a[0], tt.a[1], tt.a[2])
			idB := GenerateUserID(tt.b[0], tt.b[1], tt.b[2])

			assert.Len(t, idA, 64)
			assert.Len(t, idB, 64)
			if tt.wantSame {
				assert.Equal(t, idA, idB)
			} else {
				assert.NotEqual(t, idA, idB)
			}
		})
	}
}

func TestGenerateVerificationCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateVerificationCode()
		assert.NoError(t, err)
		assert.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "code %q contains non-digit", code)
		}
	}
}
