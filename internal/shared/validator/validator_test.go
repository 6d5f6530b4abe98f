package validator_test

import (
	"testing"

	"github.com/darregistry/member-registry/go-api-server/internal/shared/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string `binding:"notblank,max=10"`
	Birthday string `binding:"omitempty,isodate"`
}

func TestStruct(t *testing.T) {
	testCases := []struct {
		name    string
		input   sample
		wantErr bool
		message string
	}{
		{name: "valid", input: sample{Name: "Alice", Birthday: "1990-04-01"}},
		{name: "empty date allowed", input: sample{Name: "Alice"}},
		{name: "blank name", input: sample{Name: "   "}, wantErr: true, message: "Name cannot be empty."},
		{name: "too long", input: sample{Name: "Bartholomew Jr"}, wantErr: true, message: "Name must be at most 10 characters."},
		{name: "bad date", input: sample{Name: "Alice", Birthday: "04/01/1990"}, wantErr: true, message: "Birthday must be a date in yyyy-MM-dd format."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validator.Struct(&tc.input)
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			message, ok := validator.FirstMessage(err)
			require.True(t, ok)
			assert.Equal(t, tc.message, message)

			resp, ok := validator.ToErrorResponse(err)
			require.True(t, ok)
			assert.Equal(t, "ERROR-001", resp.Code)
			assert.Equal(t, tc.message, resp.Message)
		})
	}
}

func TestRegisterAll_Idempotent(t *testing.T) {
	require.NoError(t, validator.RegisterAll())
	require.NoError(t, validator.RegisterAll())
}
