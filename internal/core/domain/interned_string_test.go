package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/stale/internal/core/domain"
)

func TestInternedString(t *testing.T) {
	a := domain.NewInternedString("out/a.o")
	b := domain.NewInternedString("out/a.o")

	require.Equal(t, a, b)
	require.Equal(t, "out/a.o", a.String())

	var zero domain.InternedString
	require.Equal(t, "", zero.String())
}

func TestInternedString_TextRoundTrip(t *testing.T) {
	type wrapper struct {
		Name domain.InternedString `json:"name"`
	}

	data, err := json.Marshal(wrapper{Name: domain.NewInternedString("compile")})
	require.NoError(t, err)

	var decoded wrapper
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "compile", decoded.Name.String())
}
