// Package notify publishes the ongoing-silence notification over MQTT and
// relays the notification's "stop early" action back into the daemon.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// silencePayload is the retained state message the companion app renders as
// the countdown notification.
type silencePayload struct {
	Active           bool   `json:"active"`
	Label            string `json:"label,omitempty"`
	EndUnixMs        int64  `json:"end_unix_ms,omitempty"`
	RemainingSeconds int64  `json:"remaining_seconds,omitempty"`
}

type MQTTNotifier struct {
	client     mqtt.Client
	stateTopic string
	stopTopic  string
}

// NewMQTTNotifier connects to the broker. State is published retained on
// sukun/<device>/silence; the stop action arrives on
// sukun/<device>/silence/stop.
func NewMQTTNotifier(brokerURL, deviceID string) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(fmt.Sprintf("sukund-%s", deviceID))
	opts.SetAutoReconnect(true)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTNotifier{
		client:     client,
		stateTopic: fmt.Sprintf("sukun/%s/silence", deviceID),
		stopTopic:  fmt.Sprintf("sukun/%s/silence/stop", deviceID),
	}, nil
}

// SubscribeStop wires the notification's stop action to fn.
func (n *MQTTNotifier) SubscribeStop(fn func()) error {
	token := n.client.Subscribe(n.stopTopic, 1, func(client mqtt.Client, msg mqtt.Message) {
		log.Info().Str("topic", msg.Topic()).Msg("stop action received")
		fn()
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", n.stopTopic, token.Error())
	}
	return nil
}

func (n *MQTTNotifier) PublishActive(label string, end time.Time) {
	n.publish(silencePayload{
		Active:           true,
		Label:            label,
		EndUnixMs:        end.UnixMilli(),
		RemainingSeconds: int64(time.Until(end).Seconds()),
	})
}

func (n *MQTTNotifier) Clear() {
	n.publish(silencePayload{Active: false})
}

func (n *MQTTNotifier) publish(payload silencePayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode silence payload")
		return
	}
	token := n.client.Publish(n.stateTopic, 1, true, body)
	token.Wait()
	if token.Error() != nil {
		log.Error().Err(token.Error()).Str("topic", n.stateTopic).Msg("failed to publish silence state")
	}
}

func (n *MQTTNotifier) Close() {
	n.client.Disconnect(250)
}
