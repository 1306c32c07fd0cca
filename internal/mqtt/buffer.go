package mqtt

// pending is a serialized MQTT message held for replay after reconnection.
type pending struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a fixed-capacity FIFO of messages that could not be sent.
// When full, the oldest message is dropped.
// Not safe for concurrent use; caller must synchronize.
type outbox struct {
	msgs    []pending
	start   int // index of the oldest message
	count   int
	dropped int // dropped since the last drain
}

func newOutbox(capacity int) *outbox {
	if capacity < 1 {
		capacity = 1
	}
	return &outbox{msgs: make([]pending, capacity)}
}

// push appends msg and reports whether an older message was dropped for it.
func (o *outbox) push(msg pending) bool {
	n := len(o.msgs)
	if o.count == n {
		o.msgs[o.start] = msg
		o.start = (o.start + 1) % n
		o.dropped++
		return true
	}
	o.msgs[(o.start+o.count)%n] = msg
	o.count++
	return false
}

// drain removes and returns all messages, oldest first, with the number
// dropped since the previous drain.
func (o *outbox) drain() ([]pending, int) {
	dropped := o.dropped
	o.dropped = 0
	if o.count == 0 {
		return nil, dropped
	}
	n := len(o.msgs)
	out := make([]pending, o.count)
	for i := range out {
		j := (o.start + i) % n
		out[i] = o.msgs[j]
		o.msgs[j] = pending{}
	}
	o.start, o.count = 0, 0
	return out, dropped
}

func (o *outbox) len() int {
	return o.count
}
