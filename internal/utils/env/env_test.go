package env_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/bkup/internal/utils/env"
)

func TestFromList(t *testing.T) {
	tests := map[string]struct {
		list   []string
		expEnv map[string]string
	}{
		"Empty list should return an empty map.": {
			expEnv: map[string]string{},
		},
		"KEY=VALUE entries should be parsed.": {
			list:   []string{"FOO=bar", "EMPTY="},
			expEnv: map[string]string{"FOO": "bar", "EMPTY": ""},
		},
		"Values with equal signs should be kept intact.": {
			list:   []string{"OPTS=a=b=c"},
			expEnv: map[string]string{"OPTS": "a=b=c"},
		},
		"Invalid entries should be ignored.": {
			list:   []string{"NOEQUAL", "=value", "OK=1"},
			expEnv: map[string]string{"OK": "1"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expEnv, env.FromList(test.list))
		})
	}
}

func TestToList(t *testing.T) {
	got := env.ToList(map[string]string{"B": "2", "A": "1"})
	assert.Equal(t, []string{"A=1", "B=2"}, got)
}

func TestMergeMaps(t *testing.T) {
	tests := map[string]struct {
		base     map[string]string
		override map[string]string
		expEnv   map[string]string
	}{
		"Both empty should return an empty map.": {
			expEnv: map[string]string{},
		},
		"Override should take precedence.": {
			base:     map[string]string{"A": "1", "B": "2"},
			override: map[string]string{"B": "3"},
			expEnv:   map[string]string{"A": "1", "B": "3"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expEnv, env.MergeMaps(test.base, test.override))
		})
	}
}

func TestAppendShared(t *testing.T) {
	tests := map[string]struct {
		current string
		names   []string
		exp     string
	}{
		"No current value should start with a separator.": {
			names: []string{"A", "B"},
			exp:   ":A:B",
		},
		"Existing values should be kept.": {
			current: "USERPROFILE/p",
			names:   []string{"RESTIC_PASSWORD"},
			exp:     "USERPROFILE/p:RESTIC_PASSWORD",
		},
		"No names should return the current value.": {
			current: "X",
			exp:     "X",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, env.AppendShared(test.current, test.names...))
		})
	}
}
