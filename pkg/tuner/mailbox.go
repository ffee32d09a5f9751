package tuner

/*
 * A single-slot hand-off of frames from the audio goroutine to a consumer.
 *
 * Posting never blocks. A frame which has not been received when the next
 * one is posted is dropped.
 */
type Mailbox struct {
	ch chan *Frame
}

/*
 * Post the latest frame, replacing an unread one.
 *
 * Only one goroutine may post.
 */
func (this *Mailbox) Post(f *Frame) {

	/*
	 * Drain the slot, then fill it.
	 */
	select {
	case <-this.ch:
	default:
	}

	select {
	case this.ch <- f:
	default:
	}

}

/*
 * Returns the channel frames arrive on.
 */
func (this *Mailbox) C() <-chan *Frame {
	return this.ch
}

/*
 * Returns the unread frame, if any, without blocking.
 */
func (this *Mailbox) Latest() (*Frame, bool) {

	select {
	case f := <-this.ch:
		return f, true
	default:
		return nil, false
	}

}

/*
 * Creates an empty mailbox.
 */
func CreateMailbox() *Mailbox {
	m := Mailbox{
		ch: make(chan *Frame, 1),
	}

	return &m
}
