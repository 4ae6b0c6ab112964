package smtp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotifier(t *testing.T) {
	tests := map[string]struct {
		config NotifierConfig
		expErr bool
	}{
		"A valid config should create the notifier.": {
			config: NotifierConfig{Host: "smtp.example.com", Port: 465, Address: "me@example.com", Password: "p"},
		},
		"A missing host should fail.": {
			config: NotifierConfig{Port: 465, Address: "me@example.com"},
			expErr: true,
		},
		"A missing port should fail.": {
			config: NotifierConfig{Host: "smtp.example.com", Address: "me@example.com"},
			expErr: true,
		},
		"A missing address should fail.": {
			config: NotifierConfig{Host: "smtp.example.com", Port: 465},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			n, err := NewNotifier(test.config)
			if test.expErr {
				assert.Error(t, err)
				assert.Nil(t, n)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, n)
			}
		})
	}
}

func TestNotifierMessage(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	n, err := NewNotifier(NotifierConfig{Host: "smtp.example.com", Port: 465, Address: "me@example.com", Password: "p"})
	require.NoError(err)

	msg, err := n.message("Backup failed! 2 errors", "first\nsecond")
	require.NoError(err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(err)

	raw := buf.String()
	assert.Contains(raw, "Backup failed! 2 errors")
	assert.Contains(raw, "me@example.com")
	assert.Contains(raw, "first")
}

func TestNotifierInvalidAddress(t *testing.T) {
	n, err := NewNotifier(NotifierConfig{Host: "smtp.example.com", Port: 465, Address: "not an address"})
	require.NoError(t, err)

	_, err = n.message("s", "b")
	assert.Error(t, err)
}
