package apps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	source := map[string]string{
		"ding-app-1": "secret-1",
		"ding-app-2": "secret-2",
		"  ":         "ignored",
		"no-secret":  " ",
	}
	r := NewRegistry(source)

	t.Run("known app", func(t *testing.T) {
		creds, err := r.Lookup(" ding-app-1 ")
		require.NoError(t, err)
		assert.Equal(t, Credentials{AppKey: "ding-app-1", AppSecret: "secret-1"}, creds)
	})

	t.Run("unknown app", func(t *testing.T) {
		_, err := r.Lookup("missing")
		assert.ErrorIs(t, err, ErrUnknownApp)
	})

	t.Run("blank entries are dropped", func(t *testing.T) {
		assert.Equal(t, []string{"ding-app-1", "ding-app-2"}, r.AppKeys())
		assert.Equal(t, 2, r.Len())
		_, err := r.Lookup("no-secret")
		assert.ErrorIs(t, err, ErrUnknownApp)
	})

	t.Run("source changes do not leak in", func(t *testing.T) {
		source["late"] = "x"
		_, err := r.Lookup("late")
		assert.ErrorIs(t, err, ErrUnknownApp)
	})
}
