package uniws

import "github.com/uniws/uniws/transport"

// pendingOp is a deferred send or close recorded while the underlying
// connection does not exist yet.
type pendingOp func(conn transport.Conn)

// opQueue is the FIFO of deferred operations. It is guarded by the owning
// adapter's mutex, not its own: every access happens with that lock held.
//
// Invariant: the queue is only non-empty while the adapter is unbound. The
// moment binding occurs it is drained in order and permanently unused.
type opQueue struct {
	ops []pendingOp
}

func (q *opQueue) add(op pendingOp) {
	q.ops = append(q.ops, op)
}

func (q *opQueue) drain() []pendingOp {
	ops := q.ops
	q.ops = nil
	return ops
}

func (q *opQueue) discard() {
	q.ops = nil
}

func (q *opQueue) len() int { return len(q.ops) }
