package http

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyRoute(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path    string
		class   RouteClass
		matched bool
	}{
		{"/api/login", RoutePublic, true},
		{"/api/fetch-code/42", RoutePublic, true},
		{"/api/delete/42", RouteBypassed, true},
		{"/api/save/42", RouteAuthenticated, true},
		{"/api/save-new-code", RouteAuthenticated, true},
		{"/api/export-zip", RouteAuthenticated, true},
		{"/api/exports", RouteAuthenticated, true},
		{"/api/unknown", RouteAuthenticated, false},
	}
	for _, tc := range cases {
		class, matched := classifyRoute(tc.path)
		require.Equal(t, tc.class, class, tc.path)
		require.Equal(t, tc.matched, matched, tc.path)
	}
}
