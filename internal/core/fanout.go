package core

import "github.com/samber/lo"

// Delivery summarizes one fan-out.
type Delivery struct {
	Sent    int
	Absent  int
	Closed  int
	Dropped int
}

// DeliverToSet sends frame once to every recipient that currently has an open connection.
// Duplicate recipients are collapsed; absent or closed connections are skipped.
func DeliverToSet(reg *Registry, recipients []int64, frame []byte) Delivery {
	var d Delivery
	for _, userID := range lo.Uniq(recipients) {
		conn, ok := reg.Lookup(userID)
		if !ok {
			d.Absent++
			continue
		}
		if !reg.IsOpen(conn) {
			d.Closed++
			continue
		}
		if !conn.Send(frame) {
			d.Dropped++
			continue
		}
		d.Sent++
	}
	return d
}
