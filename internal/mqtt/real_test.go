package mqtt

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/thermostat/internal/logic"
)

// doneToken is a paho.Token that has already completed.
type doneToken struct {
	err error
}

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }

func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// scriptedClient stands in for a broker connection. onPublish runs before a
// message is recorded, so it can inject sends that race the one in flight.
// Only the methods the publisher uses are implemented.
type scriptedClient struct {
	paho.Client

	connected bool
	calls     int
	onPublish func(call int) error
	sent      []string // event names in broker order
}

func (c *scriptedClient) IsConnectionOpen() bool { return c.connected }

func (c *scriptedClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.calls++
	if c.onPublish != nil {
		if err := c.onPublish(c.calls); err != nil {
			return doneToken{err: err}
		}
	}
	c.sent = append(c.sent, eventName(payload.([]byte)))
	return doneToken{}
}

func eventName(payload []byte) string {
	var p struct {
		Thermostat struct{ Event string } `json:"thermostat"`
		System     struct{ Event string } `json:"system"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return "invalid"
	}
	if p.Thermostat.Event != "" {
		return p.Thermostat.Event
	}
	return p.System.Event
}

func newScriptedPublisher(connected bool) (*RealPublisher, *scriptedClient) {
	client := &scriptedClient{connected: connected}
	p := newRealPublisher(8, nil)
	p.client = client
	return p, client
}

func mustPublish(t *testing.T, p *RealPublisher, typ logic.EventType) {
	t.Helper()
	if err := p.Publish(heatEvent(typ, typ == logic.EventHeatOn)); err != nil {
		t.Fatalf("publish %s: %v", typ, err)
	}
}

func TestRealPublisherHoldsWhileDisconnected(t *testing.T) {
	p, client := newScriptedPublisher(false)

	mustPublish(t, p, logic.EventHeatOn)
	if err := p.PublishSystem(SystemEvent{Event: "HEARTBEAT", Retained: true}); err != nil {
		t.Fatal(err)
	}

	if client.calls != 0 {
		t.Errorf("expected no broker publishes while offline, got %d", client.calls)
	}
	if got := p.Buffered(); got != 2 {
		t.Errorf("expected 2 buffered, got %d", got)
	}

	client.connected = true
	p.onConnect(client)

	if want := []string{"HEAT_ON", "HEARTBEAT"}; !reflect.DeepEqual(client.sent, want) {
		t.Errorf("replay order: got %v, want %v", client.sent, want)
	}
	if got := p.Buffered(); got != 0 {
		t.Errorf("expected empty outbox after replay, got %d", got)
	}
}

func TestRealPublisherPublishesDirectlyWhenIdle(t *testing.T) {
	p, client := newScriptedPublisher(true)

	mustPublish(t, p, logic.EventHeatOff)

	if want := []string{"HEAT_OFF"}; !reflect.DeepEqual(client.sent, want) {
		t.Errorf("got %v, want %v", client.sent, want)
	}
	if got := p.Buffered(); got != 0 {
		t.Errorf("expected nothing buffered, got %d", got)
	}
}

// A live event produced while the reconnect replay is in flight must reach
// the broker after the held ones.
func TestRealPublisherReplayPrecedesLiveEvents(t *testing.T) {
	p, client := newScriptedPublisher(false)
	mustPublish(t, p, logic.EventHeatOn)
	client.connected = true

	client.onPublish = func(call int) error {
		if call == 1 {
			mustPublish(t, p, logic.EventHeatOff)
		}
		return nil
	}
	p.onConnect(client)

	if want := []string{"HEAT_ON", "HEAT_OFF"}; !reflect.DeepEqual(client.sent, want) {
		t.Errorf("broker order: got %v, want %v", client.sent, want)
	}
	if got := p.Buffered(); got != 0 {
		t.Errorf("expected empty outbox, got %d", got)
	}
}

// When replay fails part way, the unsent messages stay ahead of anything
// queued during the replay, and the next send flushes them first.
func TestRealPublisherReplayFailureKeepsOrder(t *testing.T) {
	p, client := newScriptedPublisher(false)
	if err := p.PublishSystem(SystemEvent{Event: "STARTUP", Retained: true}); err != nil {
		t.Fatal(err)
	}
	mustPublish(t, p, logic.EventHeatOn)
	client.connected = true

	client.onPublish = func(call int) error {
		switch call {
		case 1:
			mustPublish(t, p, logic.EventHeatOff)
		case 2:
			return errors.New("broker gone")
		}
		return nil
	}
	p.onConnect(client)

	if want := []string{"STARTUP"}; !reflect.DeepEqual(client.sent, want) {
		t.Fatalf("sent before failure: got %v, want %v", client.sent, want)
	}
	if got := p.Buffered(); got != 2 {
		t.Fatalf("expected HEAT_ON and HEAT_OFF still held, got %d", got)
	}

	client.onPublish = nil
	mustPublish(t, p, logic.EventSetPointChanged)

	want := []string{"STARTUP", "HEAT_ON", "HEAT_OFF", "SETPOINT_CHANGED"}
	if !reflect.DeepEqual(client.sent, want) {
		t.Errorf("broker order: got %v, want %v", client.sent, want)
	}
	if got := p.Buffered(); got != 0 {
		t.Errorf("expected empty outbox, got %d", got)
	}
}

func TestRealPublisherDirectFailureHolds(t *testing.T) {
	p, client := newScriptedPublisher(true)
	client.onPublish = func(int) error { return errors.New("timeout") }

	if err := p.Publish(heatEvent(logic.EventHeatOn, true)); err == nil {
		t.Fatal("expected publish error")
	}
	if got := p.Buffered(); got != 1 {
		t.Errorf("expected failed message held, got %d", got)
	}

	client.onPublish = nil
	p.onConnect(client)
	if want := []string{"HEAT_ON"}; !reflect.DeepEqual(client.sent, want) {
		t.Errorf("got %v, want %v", client.sent, want)
	}
}
