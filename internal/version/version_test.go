package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetMinorVersion(t *testing.T) {
	require.Equal(t, "0.3", GetMinorVersion("0.3.1"))
	require.Equal(t, "1.0", GetMinorVersion("1.0.0"))
	require.Equal(t, "", GetMinorVersion("1"))
	require.Equal(t, "", GetMinorVersion(""))
}

func TestVersionComparisons(t *testing.T) {
	require.True(t, IsVersionGreaterOrEqualThan("0.3.1", "0.3.1"))
	require.True(t, IsVersionGreaterOrEqualThan("0.3.2", "0.3.1"))
	require.False(t, IsVersionGreaterOrEqualThan("0.3.0", "0.3.1"))

	require.True(t, IsVersionGreaterThan("0.4.0", "0.3.9"))
	require.False(t, IsVersionGreaterThan("0.3.1", "0.3.1"))
}

func TestGetCurrentVersion(t *testing.T) {
	require.Equal(t, DevVersion, GetCurrentVersion("dev"))
	require.Equal(t, DevVersion, GetCurrentVersion("demo"))
	require.Equal(t, Version, GetCurrentVersion("prod"))
}
