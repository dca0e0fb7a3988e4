package push

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotification(t *testing.T) {
	a := &APNs{topic: "com.example.photos"}
	n := a.notification("device-token", "Someone liked your photo", map[string]any{"photo_id": "p1", "photo_likes": 3})

	assert.Equal(t, "device-token", n.DeviceToken)
	assert.Equal(t, "com.example.photos", n.Topic)

	body, err := json.Marshal(n.Payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"aps": {"alert": "Someone liked your photo", "sound": "default"},
		"photo_id": "p1",
		"photo_likes": 3
	}`, string(body))
}

func TestNewAPNsMissingCertificate(t *testing.T) {
	_, err := NewAPNs("/nonexistent/cert.p12", "", "com.example.photos", false)
	require.Error(t, err)
}
