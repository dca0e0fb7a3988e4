package push

import (
	"context"
	"fmt"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"
)

// APNs sends alert notifications to iOS devices
type APNs struct {
	client *apns2.Client
	topic  string
}

// NewAPNs creates an APNs sender from a .p12 certificate
func NewAPNs(certFile, password, topic string, production bool) (*APNs, error) {
	cert, err := certificate.FromP12File(certFile, password)
	if err != nil {
		return nil, fmt.Errorf("failed to load push certificate: %w", err)
	}

	client := apns2.NewClient(cert)
	if production {
		client = client.Production()
	} else {
		client = client.Development()
	}
	return &APNs{client: client, topic: topic}, nil
}

// Send pushes an alert with custom data to deviceToken
func (a *APNs) Send(ctx context.Context, deviceToken, alert string, data map[string]any) error {
	res, err := a.client.PushWithContext(ctx, a.notification(deviceToken, alert, data))
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("push rejected: %d %s", res.StatusCode, res.Reason)
	}
	return nil
}

func (a *APNs) notification(deviceToken, alert string, data map[string]any) *apns2.Notification {
	p := payload.NewPayload().Alert(alert).Sound("default")
	for k, v := range data {
		p.Custom(k, v)
	}
	return &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       a.topic,
		Payload:     p,
	}
}
