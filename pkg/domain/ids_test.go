package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "medledger/pkg/domain-errors"
)

func TestParseIDs(t *testing.T) {
	t.Run("rejects empty and zero ids", func(t *testing.T) {
		for _, in := range []string{"", "   ", "0", "-1", "abc", "1.5"} {
			_, err := ParseDoctorID(in)
			require.Error(t, err, in)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), in)

			_, err = ParsePatientID(in)
			require.Error(t, err, in)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), in)
		}
	})

	t.Run("accepts positive ids", func(t *testing.T) {
		d, err := ParseDoctorID(" 42 ")
		require.NoError(t, err)
		assert.Equal(t, DoctorID(42), d)

		p, err := ParsePatientID("7")
		require.NoError(t, err)
		assert.Equal(t, PatientID(7), p)
		assert.Equal(t, "7", p.String())
	})

	t.Run("document index allows zero but not negatives", func(t *testing.T) {
		idx, err := ParseDocumentIndex("0")
		require.NoError(t, err)
		assert.Equal(t, DocumentIndex(0), idx)

		_, err = ParseDocumentIndex("-3")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("Doctor")
	require.NoError(t, err)
	assert.Equal(t, RoleDoctor, r)

	_, err = ParseRole("admin")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestParseContentRef(t *testing.T) {
	ref, err := ParseContentRef("QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG")
	require.NoError(t, err)
	assert.Equal(t, "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG", ref.String())

	_, err = ParseContentRef("has space")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = ParseContentRef(strings.Repeat("a", 129))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
