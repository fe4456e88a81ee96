package utils_test

import (
	"testing"

	"github.com/jrsteele09/go-itvx/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestScopeList(t *testing.T) {
	require.Equal(t, []string{"content", "profile"}, utils.ScopeList("content profile"))
	require.Equal(t, []string{"content"}, utils.ScopeList([]any{"content", 3}))
	require.Nil(t, utils.ScopeList(nil))
}

func TestPointerHelpers(t *testing.T) {
	var s *string
	require.Equal(t, "", utils.Value(s))
	require.Equal(t, "x", utils.Value(utils.Ptr("x")))
}

func TestNonEmpty(t *testing.T) {
	require.False(t, utils.NonEmpty(nil))
	require.False(t, utils.NonEmpty(utils.Ptr("")))
	require.True(t, utils.NonEmpty(utils.Ptr("tok")))
}
